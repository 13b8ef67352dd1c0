package engine

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/yaklabco/html5bridge/pkg/native"
)

var blockTags = []atom.Atom{
	atom.Address, atom.Article, atom.Aside, atom.Blockquote, atom.Center, atom.Details,
	atom.Dialog, atom.Dir, atom.Div, atom.Dl, atom.Fieldset, atom.Figcaption, atom.Figure,
	atom.Footer, atom.Header, atom.Hgroup, atom.Main, atom.Menu, atom.Nav, atom.Ol,
	atom.P, atom.Section, atom.Summary, atom.Ul,
}

var blockEndTags = []atom.Atom{
	atom.Address, atom.Article, atom.Aside, atom.Blockquote, atom.Button, atom.Center,
	atom.Details, atom.Dialog, atom.Dir, atom.Div, atom.Dl, atom.Fieldset,
	atom.Figcaption, atom.Figure, atom.Footer, atom.Header, atom.Hgroup, atom.Listing,
	atom.Main, atom.Menu, atom.Nav, atom.Ol, atom.Pre, atom.Section, atom.Summary,
	atom.Ul, atom.Applet, atom.Marquee, atom.Object,
}

var headingTags = []string{"h1", "h2", "h3", "h4", "h5", "h6"}

var formattingTags = []string{
	"a", "b", "big", "code", "em", "font", "i", "nobr", "s", "small", "strike", "strong", "tt", "u",
}

var tableContext = []string{"table", "tbody", "tfoot", "thead", "tr"}

func (e *Engine) inBody(tok *token) bool {
	if !e.fostering && e.currentIs(tableContext...) && fostered(tok) {
		e.parseError(tok, "misplaced content in table")
		e.fostering = true
		defer func() { e.fostering = false }()
	}

	switch tok.kind {
	case html.TextToken:
		e.insertText(strings.ReplaceAll(tok.data, "\x00", ""))
	case html.CommentToken:
		e.insertComment(tok.data)
	case html.DoctypeToken:
		e.parseError(tok, "unexpected doctype")
	case html.StartTagToken:
		return e.inBodyStart(tok)
	case html.EndTagToken:
		return e.inBodyEnd(tok)
	case html.ErrorToken:
		e.stop()
	}
	return false
}

// fostered reports whether tok is content that does not belong directly inside a
// table.
func fostered(tok *token) bool {
	switch tok.kind {
	case html.TextToken:
		return strings.Trim(tok.data, whitespace) != ""
	case html.StartTagToken:
		switch tok.atom {
		case atom.Caption, atom.Col, atom.Colgroup, atom.Tbody, atom.Td, atom.Tfoot,
			atom.Th, atom.Thead, atom.Tr, atom.Table, atom.Script, atom.Style,
			atom.Template, atom.Form:
			return false
		case atom.Input:
			typ, _ := tok.attr("type")
			return !strings.EqualFold(typ, "hidden")
		}
		return true
	default:
		return false
	}
}

func (e *Engine) inBodyStart(tok *token) bool {
	switch {
	case tok.atom == atom.Html:
		e.parseError(tok, "unexpected start tag <html>")
		if len(e.stack) > 0 {
			e.addAttributes(e.stack[0].node, tok.attrs)
		}
	case slices.Contains([]atom.Atom{atom.Base, atom.Basefont, atom.Bgsound, atom.Link,
		atom.Meta, atom.Noframes, atom.Script, atom.Style, atom.Title}, tok.atom):
		return e.inHead(tok)
	case tok.atom == atom.Body:
		e.parseError(tok, "unexpected start tag <body>")
		if len(e.stack) > 1 && e.stack[1].name == "body" {
			e.addAttributes(e.stack[1].node, tok.attrs)
		}
	case slices.Contains(blockTags, tok.atom):
		e.closePInButtonScope()
		e.insertElement(tok, native.NSHTML)
	case slices.Contains(headingTags, tok.name):
		e.closePInButtonScope()
		if e.currentIs(headingTags...) {
			e.parseError(tok, "nested heading <"+tok.name+">")
			e.pop()
		}
		e.insertElement(tok, native.NSHTML)
	case tok.atom == atom.Pre || tok.atom == atom.Listing:
		e.closePInButtonScope()
		e.insertElement(tok, native.NSHTML)
	case tok.atom == atom.Form:
		if e.form != native.NullNode {
			e.parseError(tok, "nested form")
			return false
		}
		e.closePInButtonScope()
		el := e.insertElement(tok, native.NSHTML)
		if !e.failed() {
			e.setForm(el.node)
		}
	case tok.atom == atom.Li:
		e.closeListItem(scopeListItem, "li")
		e.closePInButtonScope()
		e.insertElement(tok, native.NSHTML)
	case tok.atom == atom.Dd || tok.atom == atom.Dt:
		e.closeListItem(scopeDefault, "dd", "dt")
		e.closePInButtonScope()
		e.insertElement(tok, native.NSHTML)
	case tok.atom == atom.Plaintext:
		e.closePInButtonScope()
		e.insertElement(tok, native.NSHTML)
		e.rawTag = "plaintext"
	case tok.atom == atom.Button:
		if e.inScope(scopeDefault, "button") {
			e.parseError(tok, "nested button")
			e.generateImpliedEndTags("")
			e.popUntil("button")
		}
		e.insertElement(tok, native.NSHTML)
	case tok.atom == atom.A:
		if e.indexOf("a") >= 0 {
			e.parseError(tok, "nested <a>")
			e.adopt(&token{kind: html.EndTagToken, name: "a", atom: atom.A, line: tok.line, col: tok.col})
			if i := e.indexOf("a"); i >= 0 {
				e.removeFromStack(i)
			}
		}
		e.insertElement(tok, native.NSHTML)
	case tok.atom == atom.Nobr:
		if e.inScope(scopeDefault, "nobr") {
			e.parseError(tok, "nested <nobr>")
			e.adopt(&token{kind: html.EndTagToken, name: "nobr", atom: atom.Nobr, line: tok.line, col: tok.col})
		}
		e.insertElement(tok, native.NSHTML)
	case slices.Contains([]atom.Atom{atom.Area, atom.Br, atom.Embed, atom.Img, atom.Keygen,
		atom.Wbr, atom.Input, atom.Param, atom.Source, atom.Track}, tok.atom):
		e.insertVoid(tok)
	case tok.atom == atom.Hr:
		e.closePInButtonScope()
		e.insertVoid(tok)
	case tok.name == "image":
		e.parseError(tok, "<image> treated as <img>")
		tok.name, tok.atom = "img", atom.Img
		return true
	case tok.atom == atom.Textarea:
		e.startRawText(tok, "textarea")
	case tok.atom == atom.Xmp:
		e.closePInButtonScope()
		e.startRawText(tok, "xmp")
	case tok.atom == atom.Iframe || tok.atom == atom.Noembed:
		e.startRawText(tok, tok.name)
	case tok.atom == atom.Noscript && e.scripting:
		e.startRawText(tok, "noscript")
	case tok.atom == atom.Optgroup || tok.atom == atom.Option:
		if e.currentIs("option") {
			e.pop()
		}
		e.insertElement(tok, native.NSHTML)
	case tok.atom == atom.Rb || tok.atom == atom.Rtc:
		if e.inScope(scopeDefault, "ruby") {
			e.generateImpliedEndTags("")
		}
		e.insertElement(tok, native.NSHTML)
	case tok.atom == atom.Rp || tok.atom == atom.Rt:
		if e.inScope(scopeDefault, "ruby") {
			e.generateImpliedEndTags("rtc")
		}
		e.insertElement(tok, native.NSHTML)
	case tok.atom == atom.Math:
		e.insertForeign(tok, native.NSMathML)
	case tok.atom == atom.Svg:
		e.insertForeign(tok, native.NSSVG)
	case tok.atom == atom.Frame || tok.atom == atom.Frameset || tok.atom == atom.Head:
		e.parseError(tok, "unexpected start tag <"+tok.name+">")
	case tok.atom == atom.Table:
		if e.quirks != native.QuirksModeFull {
			e.closePInButtonScope()
		}
		e.insertElement(tok, native.NSHTML)
	case tok.atom == atom.Tbody || tok.atom == atom.Thead || tok.atom == atom.Tfoot:
		e.clearBackTo("table")
		e.insertElement(tok, native.NSHTML)
	case tok.atom == atom.Tr:
		e.clearBackTo("table", "tbody", "thead", "tfoot")
		if e.currentIs("table") {
			e.insertNamed(native.NSHTML, "tbody", nil)
		}
		e.insertElement(tok, native.NSHTML)
	case tok.atom == atom.Td || tok.atom == atom.Th:
		if e.inScope(scopeTable, "td", "th") {
			e.generateImpliedEndTags("")
			e.popUntil("td", "th")
		}
		e.clearBackTo("table", "tbody", "thead", "tfoot", "tr")
		if e.currentIs("table") {
			e.insertNamed(native.NSHTML, "tbody", nil)
		}
		if e.currentIs("tbody", "thead", "tfoot") {
			e.insertNamed(native.NSHTML, "tr", nil)
		}
		e.insertElement(tok, native.NSHTML)
	case tok.atom == atom.Col:
		e.insertVoid(tok)
	default:
		e.insertElement(tok, native.NSHTML)
	}
	return false
}

func (e *Engine) inBodyEnd(tok *token) bool {
	switch {
	case tok.atom == atom.Body || tok.atom == atom.Html:
		if !e.inScope(scopeDefault, "body") {
			e.parseError(tok, "unexpected end tag </"+tok.name+">")
			return false
		}
		e.mode = modeAfterBody
		return tok.atom == atom.Html
	case slices.Contains(blockEndTags, tok.atom):
		e.closeElement(tok, scopeDefault, tok.name)
	case tok.atom == atom.Form:
		node := e.form
		e.setForm(native.NullNode)
		i := e.indexOfNode(node)
		if node == native.NullNode || i < 0 || !e.inScope(scopeDefault, "form") {
			e.parseError(tok, "unexpected end tag </form>")
			return false
		}
		e.generateImpliedEndTags("")
		if i = e.indexOfNode(node); i >= 0 {
			e.removeFromStack(i)
		}
	case tok.atom == atom.P:
		if !e.inScope(scopeButton, "p") {
			e.parseError(tok, "unexpected end tag </p>")
			e.insertNamed(native.NSHTML, "p", nil)
		}
		e.closeP()
	case tok.atom == atom.Li:
		e.closeElement(tok, scopeListItem, "li")
	case tok.atom == atom.Dd || tok.atom == atom.Dt:
		e.closeElement(tok, scopeDefault, tok.name)
	case slices.Contains(headingTags, tok.name):
		if !e.inScope(scopeDefault, headingTags...) {
			e.parseError(tok, "unexpected end tag </"+tok.name+">")
			return false
		}
		e.generateImpliedEndTags("")
		e.popUntil(headingTags...)
	case slices.Contains(formattingTags, tok.name):
		e.adopt(tok)
	case tok.atom == atom.Br:
		e.parseError(tok, "end tag </br>")
		e.insertNamed(native.NSHTML, "br", nil)
		if !e.failed() {
			e.pop()
		}
	case tok.atom == atom.Table:
		if !e.inScope(scopeTable, "table") {
			e.parseError(tok, "unexpected end tag </table>")
			return false
		}
		e.popUntil("table")
	case slices.Contains([]atom.Atom{atom.Tbody, atom.Thead, atom.Tfoot, atom.Tr, atom.Td,
		atom.Th, atom.Caption, atom.Colgroup}, tok.atom):
		e.closeElement(tok, scopeTable, tok.name)
	default:
		e.anyOtherEnd(tok)
	}
	return false
}

func (e *Engine) closePInButtonScope() {
	if e.inScope(scopeButton, "p") {
		e.closeP()
	}
}

// closeElement handles an end tag whose element must be in scope s.
func (e *Engine) closeElement(tok *token, s scope, name string) {
	if !e.inScope(s, name) {
		e.parseError(tok, "unexpected end tag </"+name+">")
		return
	}
	except := ""
	if name == "li" || name == "dd" || name == "dt" {
		except = name
	}
	e.generateImpliedEndTags(except)
	if !e.currentIs(name) {
		e.parseError(tok, "end tag </"+name+"> closes other elements")
	}
	e.popUntil(name)
}

// closeListItem closes an open list item before a new one starts.
func (e *Engine) closeListItem(s scope, names ...string) {
	for i := len(e.stack) - 1; i >= 0; i-- {
		el := e.stack[i]
		if el.ns == native.NSHTML && slices.Contains(names, el.name) {
			e.generateImpliedEndTags(el.name)
			e.popUntil(el.name)
			return
		}
		if isSpecial(el) && !slices.Contains([]string{"address", "div", "p"}, el.name) {
			return
		}
		if s.stops(el) {
			return
		}
	}
}

// clearBackTo pops elements until the current node is one of names or html.
func (e *Engine) clearBackTo(names ...string) {
	for len(e.stack) > 0 && !e.currentIs(append(names, "html")...) {
		e.pop()
	}
}

func (e *Engine) insertForeign(tok *token, ns native.NS) {
	e.insertElement(tok, ns)
	if tok.selfClosing && !e.failed() {
		e.pop()
	}
}

func (e *Engine) anyOtherEnd(tok *token) {
	for i := len(e.stack) - 1; i >= 0; i-- {
		el := e.stack[i]
		if el.ns == native.NSHTML && el.name == tok.name {
			e.generateImpliedEndTags(tok.name)
			for len(e.stack) > i {
				e.pop()
			}
			return
		}
		if isSpecial(el) {
			e.parseError(tok, "stray end tag </"+tok.name+">")
			return
		}
	}
}
