package engine

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/yaklabco/html5bridge/pkg/native"
)

type insertionMode int

const (
	modeInitial insertionMode = iota
	modeBeforeHTML
	modeBeforeHead
	modeInHead
	modeInHeadNoscript
	modeAfterHead
	modeInBody
	modeText
	modeAfterBody
	modeAfterAfterBody
)

// process runs tok through the tree construction rules, reprocessing it while a
// handler asks for that.
func (e *Engine) process(tok *token) {
	for reprocess := true; reprocess && !e.failed() && !e.stopped; {
		if e.inForeign(tok) {
			reprocess = e.foreignContent(tok)
			continue
		}
		reprocess = e.dispatch(tok)
	}
}

func (e *Engine) dispatch(tok *token) bool {
	switch e.mode {
	case modeInitial:
		return e.initial(tok)
	case modeBeforeHTML:
		return e.beforeHTML(tok)
	case modeBeforeHead:
		return e.beforeHead(tok)
	case modeInHead:
		return e.inHead(tok)
	case modeInHeadNoscript:
		return e.inHeadNoscript(tok)
	case modeAfterHead:
		return e.afterHead(tok)
	case modeInBody:
		return e.inBody(tok)
	case modeText:
		return e.textMode(tok)
	case modeAfterBody:
		return e.afterBody(tok)
	default:
		return e.afterAfterBody(tok)
	}
}

// finish processes the end of input.
func (e *Engine) finish() {
	eof := token{kind: html.ErrorToken, line: e.line, col: e.col}
	e.process(&eof)
	if !e.stopped {
		e.stop()
	}
}

// skipWhitespace strips leading whitespace from a text token and reports whether
// anything is left.
func skipWhitespace(tok *token) bool {
	tok.data = strings.TrimLeft(tok.data, whitespace)
	return tok.data != ""
}

// splitWhitespace splits the leading whitespace off a text token.
func splitWhitespace(tok *token) string {
	rest := strings.TrimLeft(tok.data, whitespace)
	ws := tok.data[:len(tok.data)-len(rest)]
	tok.data = rest
	return ws
}

func (e *Engine) initial(tok *token) bool {
	switch tok.kind {
	case html.TextToken:
		if !skipWhitespace(tok) {
			return false
		}
	case html.CommentToken:
		e.appendComment(e.document, tok.data)
		return false
	case html.DoctypeToken:
		d := tok.doctype
		if d.name != "html" || d.hasPublic || (d.hasSystem && d.systemID != "about:legacy-compat") {
			e.parseError(tok, "unexpected doctype")
		}
		node := e.createDoctype(d)
		if !e.failed() {
			e.appendChild(e.document, node)
		}
		e.setQuirksMode(quirksFor(d))
		e.mode = modeBeforeHTML
		return false
	}
	e.parseError(tok, "missing doctype")
	e.setQuirksMode(native.QuirksModeFull)
	e.mode = modeBeforeHTML
	return true
}

func (e *Engine) beforeHTML(tok *token) bool {
	switch tok.kind {
	case html.DoctypeToken:
		e.parseError(tok, "unexpected doctype")
		return false
	case html.CommentToken:
		e.appendComment(e.document, tok.data)
		return false
	case html.TextToken:
		if !skipWhitespace(tok) {
			return false
		}
	case html.StartTagToken:
		if tok.atom == atom.Html {
			e.insertElement(tok, native.NSHTML)
			e.mode = modeBeforeHead
			return false
		}
	case html.EndTagToken:
		switch tok.atom {
		case atom.Head, atom.Body, atom.Html, atom.Br:
		default:
			e.parseError(tok, "unexpected end tag </"+tok.name+">")
			return false
		}
	}
	e.insertNamed(native.NSHTML, "html", nil)
	e.mode = modeBeforeHead
	return true
}

func (e *Engine) beforeHead(tok *token) bool {
	switch tok.kind {
	case html.TextToken:
		if !skipWhitespace(tok) {
			return false
		}
	case html.CommentToken:
		e.insertComment(tok.data)
		return false
	case html.DoctypeToken:
		e.parseError(tok, "unexpected doctype")
		return false
	case html.StartTagToken:
		switch tok.atom {
		case atom.Html:
			return e.inBody(tok)
		case atom.Head:
			el := e.insertElement(tok, native.NSHTML)
			e.setHead(el.node)
			e.mode = modeInHead
			return false
		}
	case html.EndTagToken:
		switch tok.atom {
		case atom.Head, atom.Body, atom.Html, atom.Br:
		default:
			e.parseError(tok, "unexpected end tag </"+tok.name+">")
			return false
		}
	}
	el := e.insertNamed(native.NSHTML, "head", nil)
	e.setHead(el.node)
	e.mode = modeInHead
	return true
}

func (e *Engine) inHead(tok *token) bool {
	switch tok.kind {
	case html.TextToken:
		e.insertText(splitWhitespace(tok))
		if tok.data == "" {
			return false
		}
	case html.CommentToken:
		e.insertComment(tok.data)
		return false
	case html.DoctypeToken:
		e.parseError(tok, "unexpected doctype")
		return false
	case html.StartTagToken:
		switch tok.atom {
		case atom.Html:
			return e.inBody(tok)
		case atom.Base, atom.Basefont, atom.Bgsound, atom.Link:
			e.insertVoid(tok)
			return false
		case atom.Meta:
			e.insertVoid(tok)
			if !tok.inserted {
				e.metaCharset(tok)
			}
			return false
		case atom.Title:
			e.startRawText(tok, "title")
			return false
		case atom.Noscript:
			if e.scripting {
				e.startRawText(tok, "noscript")
				return false
			}
			e.insertElement(tok, native.NSHTML)
			e.mode = modeInHeadNoscript
			return false
		case atom.Noframes, atom.Style:
			e.startRawText(tok, tok.name)
			return false
		case atom.Script:
			e.startRawText(tok, "script")
			return false
		case atom.Head:
			e.parseError(tok, "unexpected start tag <head>")
			return false
		}
	case html.EndTagToken:
		switch tok.atom {
		case atom.Head:
			e.pop()
			e.mode = modeAfterHead
			return false
		case atom.Body, atom.Html, atom.Br:
		default:
			e.parseError(tok, "unexpected end tag </"+tok.name+">")
			return false
		}
	}
	e.pop()
	e.mode = modeAfterHead
	return true
}

func (e *Engine) inHeadNoscript(tok *token) bool {
	switch tok.kind {
	case html.DoctypeToken:
		e.parseError(tok, "unexpected doctype")
		return false
	case html.CommentToken:
		return e.inHead(tok)
	case html.TextToken:
		if strings.Trim(tok.data, whitespace) == "" {
			return e.inHead(tok)
		}
	case html.StartTagToken:
		switch tok.atom {
		case atom.Html:
			return e.inBody(tok)
		case atom.Basefont, atom.Bgsound, atom.Link, atom.Meta, atom.Noframes, atom.Style:
			return e.inHead(tok)
		case atom.Head, atom.Noscript:
			e.parseError(tok, "unexpected start tag <"+tok.name+">")
			return false
		}
	case html.EndTagToken:
		switch tok.atom {
		case atom.Noscript:
			e.pop()
			e.mode = modeInHead
			return false
		case atom.Br:
		default:
			e.parseError(tok, "unexpected end tag </"+tok.name+">")
			return false
		}
	}
	if tok.kind != html.ErrorToken {
		e.parseError(tok, "unexpected content in noscript")
	}
	e.pop()
	e.mode = modeInHead
	return true
}

func (e *Engine) afterHead(tok *token) bool {
	switch tok.kind {
	case html.TextToken:
		e.insertText(splitWhitespace(tok))
		if tok.data == "" {
			return false
		}
	case html.CommentToken:
		e.insertComment(tok.data)
		return false
	case html.DoctypeToken:
		e.parseError(tok, "unexpected doctype")
		return false
	case html.StartTagToken:
		switch tok.atom {
		case atom.Html:
			return e.inBody(tok)
		case atom.Body:
			e.insertElement(tok, native.NSHTML)
			e.enterBody()
			return false
		case atom.Base, atom.Basefont, atom.Bgsound, atom.Link, atom.Meta,
			atom.Noframes, atom.Script, atom.Style, atom.Title:
			e.parseError(tok, "unexpected start tag <"+tok.name+"> after head")
			e.push(element{node: e.head, name: "head", ns: native.NSHTML})
			reprocess := e.inHead(tok)
			if i := e.indexOfNode(e.head); i >= 0 {
				e.removeFromStack(i)
			}
			return reprocess
		case atom.Head:
			e.parseError(tok, "unexpected start tag <head>")
			return false
		}
	case html.EndTagToken:
		switch tok.atom {
		case atom.Body, atom.Html, atom.Br:
		default:
			e.parseError(tok, "unexpected end tag </"+tok.name+">")
			return false
		}
	}
	e.insertNamed(native.NSHTML, "body", nil)
	e.enterBody()
	return true
}

// enterBody switches to the in-body mode. From here on a charset declaration is no
// longer honoured, so a tentative charset becomes final.
func (e *Engine) enterBody() {
	e.mode = modeInBody
	if e.source != native.CharsetConfident {
		e.source = native.CharsetConfident
	}
}

func (e *Engine) indexOfNode(node native.Node) int {
	for i := len(e.stack) - 1; i >= 0; i-- {
		if e.stack[i].node == node {
			return i
		}
	}
	return -1
}

// startRawText inserts the element for tok and reads its content as raw text.
func (e *Engine) startRawText(tok *token, rawTag string) {
	e.insertElement(tok, native.NSHTML)
	if e.failed() {
		return
	}
	e.rawTag = rawTag
	e.originalMode = e.mode
	e.mode = modeText
}

func (e *Engine) textMode(tok *token) bool {
	switch tok.kind {
	case html.TextToken:
		e.insertText(tok.data)
		return false
	case html.ErrorToken:
		e.parseError(tok, "eof in <"+e.current().name+">")
		e.rawTag = ""
		e.pop()
		e.mode = e.originalMode
		return true
	case html.EndTagToken:
		e.rawTag = ""
		e.mode = e.originalMode
		switch tok.atom {
		case atom.Script:
			el := e.popKeep()
			e.completeScript(el.node)
			e.unref(el.node)
		case atom.Style:
			el := e.popKeep()
			e.completeStyle(el.node)
			e.unref(el.node)
		default:
			e.pop()
		}
		return false
	}
	return false
}

// metaCharset honours a charset declared by a meta element.
func (e *Engine) metaCharset(tok *token) {
	if label, ok := tok.attr("charset"); ok {
		e.changeEncoding(strings.Trim(label, whitespace))
		return
	}
	equiv, ok := tok.attr("http-equiv")
	if !ok || !strings.EqualFold(strings.Trim(equiv, whitespace), "content-type") {
		return
	}
	content, ok := tok.attr("content")
	if !ok {
		return
	}
	if label := charsetFromContent(content); label != "" {
		e.changeEncoding(label)
	}
}

// charsetFromContent extracts the charset parameter of a content-type value.
func charsetFromContent(content string) string {
	i := strings.Index(strings.ToLower(content), "charset")
	if i < 0 {
		return ""
	}
	s := strings.TrimLeft(content[i+len("charset"):], whitespace)
	if !strings.HasPrefix(s, "=") {
		return charsetFromContent(s)
	}
	s = strings.TrimLeft(s[1:], whitespace)
	if s == "" {
		return ""
	}
	if q := s[0]; q == '"' || q == '\'' {
		if end := strings.IndexByte(s[1:], q); end >= 0 {
			return s[1 : 1+end]
		}
		return ""
	}
	if end := strings.IndexAny(s, whitespace+";"); end >= 0 {
		return s[:end]
	}
	return s
}

func (e *Engine) afterBody(tok *token) bool {
	switch tok.kind {
	case html.TextToken:
		if strings.Trim(tok.data, whitespace) == "" {
			return e.inBody(tok)
		}
	case html.CommentToken:
		if len(e.stack) > 0 {
			e.appendComment(e.stack[0].node, tok.data)
		}
		return false
	case html.DoctypeToken:
		e.parseError(tok, "unexpected doctype")
		return false
	case html.StartTagToken:
		if tok.atom == atom.Html {
			return e.inBody(tok)
		}
	case html.EndTagToken:
		if tok.atom == atom.Html {
			e.mode = modeAfterAfterBody
			return false
		}
	case html.ErrorToken:
		e.stop()
		return false
	}
	e.parseError(tok, "unexpected content after body")
	e.mode = modeInBody
	return true
}

func (e *Engine) afterAfterBody(tok *token) bool {
	switch tok.kind {
	case html.CommentToken:
		e.appendComment(e.document, tok.data)
		return false
	case html.DoctypeToken:
		return e.inBody(tok)
	case html.TextToken:
		if strings.Trim(tok.data, whitespace) == "" {
			return e.inBody(tok)
		}
	case html.StartTagToken:
		if tok.atom == atom.Html {
			return e.inBody(tok)
		}
	case html.ErrorToken:
		e.stop()
		return false
	}
	e.parseError(tok, "unexpected content after html")
	e.mode = modeInBody
	return true
}
