package engine

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/yaklabco/html5bridge/pkg/native"
)

// The tokenizer lower-cases names; SVG wants some of them in mixed case.
var svgTagNames = map[string]string{
	"altglyph":            "altGlyph",
	"altglyphdef":         "altGlyphDef",
	"altglyphitem":        "altGlyphItem",
	"animatecolor":        "animateColor",
	"animatemotion":       "animateMotion",
	"animatetransform":    "animateTransform",
	"clippath":            "clipPath",
	"feblend":             "feBlend",
	"fecolormatrix":       "feColorMatrix",
	"fecomposite":         "feComposite",
	"fedropshadow":        "feDropShadow",
	"feflood":             "feFlood",
	"fegaussianblur":      "feGaussianBlur",
	"feimage":             "feImage",
	"femerge":             "feMerge",
	"feoffset":            "feOffset",
	"foreignobject":       "foreignObject",
	"glyphref":            "glyphRef",
	"lineargradient":      "linearGradient",
	"radialgradient":      "radialGradient",
	"textpath":            "textPath",
	"fespecularlighting":  "feSpecularLighting",
	"fediffuselighting":   "feDiffuseLighting",
	"fedisplacementmap":   "feDisplacementMap",
	"feconvolvematrix":    "feConvolveMatrix",
	"femorphology":        "feMorphology",
	"feturbulence":        "feTurbulence",
	"fecomponenttransfer": "feComponentTransfer",
}

var svgAttrNames = map[string]string{
	"attributename":       "attributeName",
	"attributetype":       "attributeType",
	"basefrequency":       "baseFrequency",
	"calcmode":            "calcMode",
	"clippathunits":       "clipPathUnits",
	"gradienttransform":   "gradientTransform",
	"gradientunits":       "gradientUnits",
	"keypoints":           "keyPoints",
	"keysplines":          "keySplines",
	"keytimes":            "keyTimes",
	"markerheight":        "markerHeight",
	"markerunits":         "markerUnits",
	"markerwidth":         "markerWidth",
	"patterntransform":    "patternTransform",
	"patternunits":        "patternUnits",
	"pathlength":          "pathLength",
	"preserveaspectratio": "preserveAspectRatio",
	"refx":                "refX",
	"refy":                "refY",
	"repeatcount":         "repeatCount",
	"repeatdur":           "repeatDur",
	"spreadmethod":        "spreadMethod",
	"stddeviation":        "stdDeviation",
	"textlength":          "textLength",
	"viewbox":             "viewBox",
}

// Attributes that move into a namespace on foreign elements, keyed by source name.
var foreignAttrs = map[string]struct {
	ns    native.NS
	local string
}{
	"xlink:actuate": {native.NSXLink, "actuate"},
	"xlink:arcrole": {native.NSXLink, "arcrole"},
	"xlink:href":    {native.NSXLink, "href"},
	"xlink:role":    {native.NSXLink, "role"},
	"xlink:show":    {native.NSXLink, "show"},
	"xlink:title":   {native.NSXLink, "title"},
	"xlink:type":    {native.NSXLink, "type"},
	"xml:lang":      {native.NSXML, "lang"},
	"xml:space":     {native.NSXML, "space"},
	"xmlns":         {native.NSXMLNS, "xmlns"},
	"xmlns:xlink":   {native.NSXMLNS, "xlink"},
}

// adjustForeign applies the name adjustments for an element created in ns.
func adjustForeign(ns native.NS, name string, attrs []attribute) (string, []attribute) {
	if ns == native.NSSVG {
		if adjusted, ok := svgTagNames[name]; ok {
			name = adjusted
		}
	}
	for i := range attrs {
		a := &attrs[i]
		switch ns {
		case native.NSSVG:
			if adjusted, ok := svgAttrNames[a.name]; ok {
				a.name = adjusted
			}
		case native.NSMathML:
			if a.name == "definitionurl" {
				a.name = "definitionURL"
			}
		}
		if f, ok := foreignAttrs[a.name]; ok {
			a.ns, a.name = f.ns, f.local
		}
	}
	return name, attrs
}

// HTML start tags that end foreign content.
var breakoutTags = []atom.Atom{
	atom.B, atom.Big, atom.Blockquote, atom.Body, atom.Br, atom.Center, atom.Code,
	atom.Dd, atom.Div, atom.Dl, atom.Dt, atom.Em, atom.Embed, atom.H1, atom.H2, atom.H3,
	atom.H4, atom.H5, atom.H6, atom.Head, atom.Hr, atom.I, atom.Img, atom.Li,
	atom.Listing, atom.Menu, atom.Meta, atom.Nobr, atom.Ol, atom.P, atom.Pre, atom.Ruby,
	atom.S, atom.Small, atom.Span, atom.Strong, atom.Strike, atom.Sub, atom.Sup,
	atom.Table, atom.Tt, atom.U, atom.Ul, atom.Var,
}

// integrationPoint reports whether HTML content is allowed directly inside el.
func integrationPoint(el element) bool {
	switch el.ns {
	case native.NSSVG:
		return el.name == "foreignObject" || el.name == "desc" || el.name == "title"
	case native.NSMathML:
		return slices.Contains([]string{"mi", "mo", "mn", "ms", "mtext"}, el.name)
	default:
		return false
	}
}

// inForeign reports whether tok is handled by the foreign content rules.
func (e *Engine) inForeign(tok *token) bool {
	if len(e.stack) == 0 || e.mode != modeInBody {
		return false
	}
	cur := e.current()
	if cur.ns == native.NSHTML || cur.ns == native.NSNull {
		return false
	}
	if integrationPoint(cur) && (tok.kind == html.StartTagToken || tok.kind == html.TextToken) {
		return false
	}
	return tok.kind != html.ErrorToken
}

func (e *Engine) foreignContent(tok *token) bool {
	switch tok.kind {
	case html.TextToken:
		e.insertText(strings.ReplaceAll(tok.data, "\x00", "�"))
	case html.CommentToken:
		e.insertComment(tok.data)
	case html.DoctypeToken:
		e.parseError(tok, "unexpected doctype in foreign content")
	case html.StartTagToken:
		if breaksOut(tok) {
			e.parseError(tok, "html start tag <"+tok.name+"> in foreign content")
			for len(e.stack) > 0 {
				cur := e.current()
				if cur.ns == native.NSHTML || integrationPoint(cur) {
					break
				}
				e.pop()
			}
			return true
		}
		e.insertElement(tok, e.current().ns)
		if tok.selfClosing && !e.failed() {
			e.pop()
		}
	case html.EndTagToken:
		for i := len(e.stack) - 1; i > 0; i-- {
			el := e.stack[i]
			if el.ns == native.NSHTML {
				return e.inBody(tok)
			}
			if strings.EqualFold(el.name, tok.name) {
				for len(e.stack) > i {
					e.pop()
				}
				return false
			}
		}
		e.parseError(tok, "stray end tag </"+tok.name+"> in foreign content")
	}
	return false
}

func breaksOut(tok *token) bool {
	if slices.Contains(breakoutTags, tok.atom) {
		return true
	}
	if tok.atom != atom.Font {
		return false
	}
	for _, key := range []string{"color", "face", "size"} {
		if _, ok := tok.attr(key); ok {
			return true
		}
	}
	return false
}
