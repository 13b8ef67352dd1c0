package htmlparse

// Namespace identifies the namespace of an element or attribute.
type Namespace uint8

// Namespaces known to the engine.
const (
	NamespaceNone Namespace = iota
	NamespaceHTML
	NamespaceMathML
	NamespaceSVG
	NamespaceXLink
	NamespaceXML
	NamespaceXMLNS
)

// String returns a short name for the namespace.
func (ns Namespace) String() string {
	switch ns {
	case NamespaceNone:
		return "none"
	case NamespaceHTML:
		return "html"
	case NamespaceMathML:
		return "mathml"
	case NamespaceSVG:
		return "svg"
	case NamespaceXLink:
		return "xlink"
	case NamespaceXML:
		return "xml"
	case NamespaceXMLNS:
		return "xmlns"
	default:
		return "invalid"
	}
}

// URI returns the namespace URI, or "" for NamespaceNone.
func (ns Namespace) URI() string {
	switch ns {
	case NamespaceHTML:
		return "http://www.w3.org/1999/xhtml"
	case NamespaceMathML:
		return "http://www.w3.org/1998/Math/MathML"
	case NamespaceSVG:
		return "http://www.w3.org/2000/svg"
	case NamespaceXLink:
		return "http://www.w3.org/1999/xlink"
	case NamespaceXML:
		return "http://www.w3.org/XML/1998/namespace"
	case NamespaceXMLNS:
		return "http://www.w3.org/2000/xmlns/"
	default:
		return ""
	}
}

// QuirksMode is the rendering mode chosen for a document.
type QuirksMode uint8

// Quirks modes.
const (
	NoQuirks QuirksMode = iota
	LimitedQuirks
	FullQuirks
)

func (m QuirksMode) String() string {
	switch m {
	case NoQuirks:
		return "no-quirks"
	case LimitedQuirks:
		return "limited-quirks"
	case FullQuirks:
		return "quirks"
	default:
		return "invalid"
	}
}

// CharsetSource tells how confident the engine is in its active charset.
type CharsetSource uint8

// Charset sources, least to most authoritative.
const (
	CharsetUnknown CharsetSource = iota
	CharsetTentative
	CharsetConfident
)

func (s CharsetSource) String() string {
	switch s {
	case CharsetTentative:
		return "tentative"
	case CharsetConfident:
		return "confident"
	default:
		return "unknown"
	}
}

// Attribute is an owned attribute.
type Attribute struct {
	Namespace Namespace
	Name      string
	Value     string
}

// Tag is an owned start tag. Attributes keep source order and may repeat a name.
type Tag struct {
	Namespace   Namespace
	Name        string
	Attributes  []Attribute
	SelfClosing bool
}

// Attr returns the value of the first attribute named name in the null namespace.
func (t Tag) Attr(name string) (string, bool) {
	for _, a := range t.Attributes {
		if a.Namespace == NamespaceNone && a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Doctype is an owned doctype. A nil identifier was missing from the source; a
// non-nil empty one was present but empty.
type Doctype struct {
	Name        string
	PublicID    *string
	SystemID    *string
	ForceQuirks bool
}

// ParseError is a recoverable syntax problem reported by the engine.
type ParseError struct {
	Line    uint32
	Column  uint32
	Message string
}
