package htmlparse

import (
	"fmt"

	"github.com/yaklabco/html5bridge/pkg/native"
)

// Conversions between engine-native values and owned Go values. Everything coming from
// the engine is copied; nothing returned here aliases engine memory.

func fromNativeNode(node native.Node) NodeID {
	return NodeID(node)
}

func toNativeNode(id NodeID) native.Node {
	return native.Node(id)
}

func fromNativeString(s native.String) string {
	return string(s)
}

func fromNativeNS(ns native.NS) Namespace {
	switch ns {
	case native.NSNull:
		return NamespaceNone
	case native.NSHTML:
		return NamespaceHTML
	case native.NSMathML:
		return NamespaceMathML
	case native.NSSVG:
		return NamespaceSVG
	case native.NSXLink:
		return NamespaceXLink
	case native.NSXML:
		return NamespaceXML
	case native.NSXMLNS:
		return NamespaceXMLNS
	default:
		panic(fmt.Sprintf("htmlparse: unknown namespace code %d", ns))
	}
}

func fromNativeQuirksMode(mode native.QuirksMode) QuirksMode {
	switch mode {
	case native.QuirksModeNone:
		return NoQuirks
	case native.QuirksModeLimited:
		return LimitedQuirks
	case native.QuirksModeFull:
		return FullQuirks
	default:
		panic(fmt.Sprintf("htmlparse: unknown quirks mode code %d", mode))
	}
}

func fromNativeCharsetSource(src native.CharsetSource) CharsetSource {
	switch src {
	case native.CharsetTentative:
		return CharsetTentative
	case native.CharsetConfident:
		return CharsetConfident
	default:
		return CharsetUnknown
	}
}

func fromNativeAttributes(attrs []native.Attribute) []Attribute {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]Attribute, len(attrs))
	for i := range attrs {
		out[i] = Attribute{
			Namespace: fromNativeNS(attrs[i].NS),
			Name:      fromNativeString(attrs[i].Name),
			Value:     fromNativeString(attrs[i].Value),
		}
	}
	return out
}

func fromNativeTag(tag *native.Tag) Tag {
	return Tag{
		Namespace:   fromNativeNS(tag.NS),
		Name:        fromNativeString(tag.Name),
		Attributes:  fromNativeAttributes(tag.Attributes),
		SelfClosing: tag.SelfClosing,
	}
}

func fromNativeDoctype(doctype *native.Doctype) Doctype {
	d := Doctype{
		Name:        fromNativeString(doctype.Name),
		ForceQuirks: doctype.ForceQuirks,
	}
	if !doctype.PublicMissing {
		id := fromNativeString(doctype.PublicID)
		d.PublicID = &id
	}
	if !doctype.SystemMissing {
		id := fromNativeString(doctype.SystemID)
		d.SystemID = &id
	}
	return d
}

func fromNativeParseError(line, col uint32, message string) ParseError {
	return ParseError{Line: line, Column: col, Message: message}
}
