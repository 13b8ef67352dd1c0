package native

// NS is a namespace code.
type NS int32

// Namespace codes.
const (
	NSNull   NS = 0
	NSHTML   NS = 1
	NSMathML NS = 2
	NSSVG    NS = 3
	NSXLink  NS = 4
	NSXML    NS = 5
	NSXMLNS  NS = 6
)

// QuirksMode is a document quirks-mode code.
type QuirksMode int32

// Quirks-mode codes.
const (
	QuirksModeNone    QuirksMode = 0
	QuirksModeLimited QuirksMode = 1
	QuirksModeFull    QuirksMode = 2
)

// CharsetSource classifies how the active charset was chosen, in order of importance.
// A client-dictated charset overrides all others; a document-specified charset
// overrides autodetection or the default.
type CharsetSource int32

// Charset source codes.
const (
	CharsetUnknown   CharsetSource = 0
	CharsetTentative CharsetSource = 1
	CharsetConfident CharsetSource = 2
)

// ContentModel is the tokenizer content model flag.
type ContentModel int32

// Content model codes.
const (
	ContentModelPCDATA    ContentModel = 0
	ContentModelRCDATA    ContentModel = 1
	ContentModelCDATA     ContentModel = 2
	ContentModelPlaintext ContentModel = 3
)

// Node is an opaque client node handle. The engine stores and compares it but never
// interprets it. The zero value is the null node.
type Node uint64

// NullNode is the absent node.
const NullNode Node = 0

// String is a borrowed byte span. It aliases engine memory and is only valid until the
// callback that received it returns.
type String []byte

// Attribute is a borrowed attribute record.
type Attribute struct {
	NS    NS
	Name  String
	Value String
}

// Tag is a borrowed start or end tag record. Attributes is the engine's flat attribute
// array in source order.
type Tag struct {
	NS          NS
	Name        String
	Attributes  []Attribute
	SelfClosing bool
}

// Doctype is a borrowed doctype record. The identifiers are only meaningful when the
// matching *Missing flag is false; a present identifier may be empty.
type Doctype struct {
	Name          String
	PublicMissing bool
	PublicID      String
	SystemMissing bool
	SystemID      String
	ForceQuirks   bool
}
