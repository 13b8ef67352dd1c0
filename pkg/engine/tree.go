package engine

import (
	"slices"

	"golang.org/x/net/html"

	"github.com/yaklabco/html5bridge/pkg/native"
)

// tree is the tree-construction state of an Engine.
type tree struct {
	mode         insertionMode
	originalMode insertionMode

	stack []element
	head  native.Node
	form  native.Node

	// rawTag names the raw text or RCDATA element whose content is being read.
	rawTag string
	// fostering redirects insertions next to the innermost table.
	fostering bool

	quirks      native.QuirksMode
	scriptDepth int
	scratch     []byte
}

type element struct {
	node native.Node
	name string
	ns   native.NS
}

type attribute struct {
	ns    native.NS
	name  string
	value string
}

func (e *Engine) failed() bool {
	return e.err != native.OK
}

// check records the first failing callback status.
func (e *Engine) check(code native.Error) bool {
	if code == native.OK {
		return true
	}
	if e.err == native.OK {
		e.err = code
	}
	return false
}

// reserve readies the scratch buffer for n bytes of spans so that every span of one
// callback shares a single backing array.
func (e *Engine) reserve(n int) {
	if cap(e.scratch) < n {
		e.scratch = make([]byte, 0, n)
	}
	e.scratch = e.scratch[:0]
}

func (e *Engine) span(s string) native.String {
	start := len(e.scratch)
	e.scratch = append(e.scratch, s...)
	return native.String(e.scratch[start:len(e.scratch):len(e.scratch)])
}

func (e *Engine) done() {
	e.scribble(e.scratch)
	e.scratch = e.scratch[:0]
}

func (e *Engine) createElement(ns native.NS, name string, attrs []attribute) native.Node {
	if e.failed() {
		return native.NullNode
	}
	size := len(name)
	for _, a := range attrs {
		size += len(a.name) + len(a.value)
	}
	e.reserve(size)
	tag := native.Tag{NS: ns, Name: e.span(name), Attributes: e.spanAttrs(attrs)}
	var node native.Node
	e.check(e.handler.CreateElement(&tag, &node))
	e.done()
	return node
}

func (e *Engine) spanAttrs(attrs []attribute) []native.Attribute {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]native.Attribute, len(attrs))
	for i, a := range attrs {
		out[i] = native.Attribute{NS: a.ns, Name: e.span(a.name), Value: e.span(a.value)}
	}
	return out
}

func (e *Engine) createComment(data string) native.Node {
	if e.failed() {
		return native.NullNode
	}
	e.reserve(len(data))
	var node native.Node
	e.check(e.handler.CreateComment(e.span(data), &node))
	e.done()
	return node
}

func (e *Engine) createDoctype(d doctype) native.Node {
	if e.failed() {
		return native.NullNode
	}
	e.reserve(len(d.name) + len(d.publicID) + len(d.systemID))
	rec := native.Doctype{
		Name:          e.span(d.name),
		PublicMissing: !d.hasPublic,
		PublicID:      e.span(d.publicID),
		SystemMissing: !d.hasSystem,
		SystemID:      e.span(d.systemID),
		ForceQuirks:   d.forceQuirks,
	}
	var node native.Node
	e.check(e.handler.CreateDoctype(&rec, &node))
	e.done()
	return node
}

func (e *Engine) createText(data string) native.Node {
	if e.failed() {
		return native.NullNode
	}
	e.reserve(len(data))
	var node native.Node
	e.check(e.handler.CreateText(e.span(data), &node))
	e.done()
	return node
}

// ref and unref run even after a failure so that references stay balanced.
func (e *Engine) ref(node native.Node) {
	if node != native.NullNode {
		e.check(e.handler.RefNode(node))
	}
}

func (e *Engine) unref(node native.Node) {
	if node != native.NullNode {
		e.check(e.handler.UnrefNode(node))
	}
}

func (e *Engine) appendChild(parent, child native.Node) native.Node {
	if e.failed() {
		return native.NullNode
	}
	var result native.Node
	e.check(e.handler.AppendChild(parent, child, &result))
	return result
}

func (e *Engine) insertBefore(parent, child, refChild native.Node) native.Node {
	if e.failed() {
		return native.NullNode
	}
	var result native.Node
	e.check(e.handler.InsertBefore(parent, child, refChild, &result))
	return result
}

func (e *Engine) removeChild(parent, child native.Node) native.Node {
	if e.failed() {
		return native.NullNode
	}
	var result native.Node
	e.check(e.handler.RemoveChild(parent, child, &result))
	return result
}

func (e *Engine) cloneNode(node native.Node, deep bool) native.Node {
	if e.failed() {
		return native.NullNode
	}
	var result native.Node
	e.check(e.handler.CloneNode(node, deep, &result))
	return result
}

func (e *Engine) reparentChildren(node, newParent native.Node) {
	if !e.failed() {
		e.check(e.handler.ReparentChildren(node, newParent))
	}
}

func (e *Engine) getParent(node native.Node, elementOnly bool) native.Node {
	if e.failed() {
		return native.NullNode
	}
	var result native.Node
	e.check(e.handler.GetParent(node, elementOnly, &result))
	return result
}

func (e *Engine) hasChildren(node native.Node) bool {
	if e.failed() {
		return false
	}
	var result bool
	e.check(e.handler.HasChildren(node, &result))
	return result
}

func (e *Engine) formAssociate(form, node native.Node) {
	if !e.failed() {
		e.check(e.handler.FormAssociate(form, node))
	}
}

func (e *Engine) addAttributes(node native.Node, attrs []html.Attribute) {
	if e.failed() || len(attrs) == 0 {
		return
	}
	converted := htmlAttributes(attrs)
	size := 0
	for _, a := range converted {
		size += len(a.name) + len(a.value)
	}
	e.reserve(size)
	spans := e.spanAttrs(converted)
	e.check(e.handler.AddAttributes(node, spans))
	e.done()
}

func (e *Engine) setQuirksMode(mode native.QuirksMode) {
	e.quirks = mode
	if !e.failed() {
		e.check(e.handler.SetQuirksMode(mode))
	}
}

func (e *Engine) encodingChange(name string) {
	if e.failed() {
		return
	}
	e.reserve(len(name))
	e.check(e.handler.EncodingChange(e.span(name)))
	e.done()
}

func (e *Engine) completeScript(node native.Node) {
	if e.failed() {
		return
	}
	e.scriptDepth++
	defer func() { e.scriptDepth-- }()
	e.check(e.handler.CompleteScript(node))
}

func (e *Engine) completeStyle(node native.Node) {
	if !e.failed() && e.styling {
		e.check(e.handler.CompleteStyle(node))
	}
}

func htmlAttributes(attrs []html.Attribute) []attribute {
	out := make([]attribute, len(attrs))
	for i, a := range attrs {
		out[i] = attribute{ns: native.NSNull, name: a.Key, value: a.Val}
	}
	return out
}

// Stack of open elements.

func (e *Engine) current() element {
	if len(e.stack) == 0 {
		return element{node: e.document}
	}
	return e.stack[len(e.stack)-1]
}

func (e *Engine) push(el element) {
	e.stack = append(e.stack, el)
	e.ref(el.node)
}

// popKeep removes the current node from the stack and hands its reference to the
// caller.
func (e *Engine) popKeep() element {
	el := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	return el
}

func (e *Engine) pop() element {
	el := e.popKeep()
	e.unref(el.node)
	return el
}

// popUntil pops elements up to and including the innermost HTML element named one
// of names.
func (e *Engine) popUntil(names ...string) {
	for len(e.stack) > 0 {
		el := e.pop()
		if el.ns == native.NSHTML && slices.Contains(names, el.name) {
			return
		}
	}
}

func (e *Engine) removeFromStack(i int) {
	node := e.stack[i].node
	e.stack = slices.Delete(e.stack, i, i+1)
	e.unref(node)
}

func (e *Engine) indexOf(name string) int {
	for i := len(e.stack) - 1; i >= 0; i-- {
		if e.stack[i].ns == native.NSHTML && e.stack[i].name == name {
			return i
		}
	}
	return -1
}

func (e *Engine) currentIs(names ...string) bool {
	cur := e.current()
	return cur.ns == native.NSHTML && slices.Contains(names, cur.name)
}

var defaultScope = []string{
	"applet", "caption", "html", "table", "td", "th", "marquee", "object", "template",
}

var foreignScope = map[native.NS][]string{
	native.NSMathML: {"mi", "mo", "mn", "ms", "mtext", "annotation-xml"},
	native.NSSVG:    {"foreignObject", "desc", "title"},
}

type scope int

const (
	scopeDefault scope = iota
	scopeListItem
	scopeButton
	scopeTable
)

func (s scope) stops(el element) bool {
	if el.ns != native.NSHTML {
		return slices.Contains(foreignScope[el.ns], el.name)
	}
	switch s {
	case scopeListItem:
		if el.name == "ol" || el.name == "ul" {
			return true
		}
	case scopeButton:
		if el.name == "button" {
			return true
		}
	case scopeTable:
		return el.name == "html" || el.name == "table" || el.name == "template"
	}
	return slices.Contains(defaultScope, el.name)
}

// inScope reports whether an HTML element named one of names is in scope s.
func (e *Engine) inScope(s scope, names ...string) bool {
	for i := len(e.stack) - 1; i >= 0; i-- {
		el := e.stack[i]
		if el.ns == native.NSHTML && slices.Contains(names, el.name) {
			return true
		}
		if s.stops(el) {
			return false
		}
	}
	return false
}

var impliedEndTags = []string{"dd", "dt", "li", "optgroup", "option", "p", "rb", "rp", "rt", "rtc"}

func (e *Engine) generateImpliedEndTags(except string) {
	for len(e.stack) > 0 {
		cur := e.current()
		if cur.ns != native.NSHTML || cur.name == except || !slices.Contains(impliedEndTags, cur.name) {
			return
		}
		e.pop()
	}
}

func (e *Engine) closeP() {
	e.generateImpliedEndTags("p")
	e.popUntil("p")
}

var specialElements = []string{
	"address", "applet", "area", "article", "aside", "base", "basefont", "bgsound",
	"blockquote", "body", "br", "button", "caption", "center", "col", "colgroup", "dd",
	"details", "dir", "div", "dl", "dt", "embed", "fieldset", "figcaption", "figure",
	"footer", "form", "frame", "frameset", "h1", "h2", "h3", "h4", "h5", "h6", "head",
	"header", "hgroup", "hr", "html", "iframe", "img", "input", "keygen", "li", "link",
	"listing", "main", "marquee", "menu", "meta", "nav", "noembed", "noframes", "noscript",
	"object", "ol", "p", "param", "plaintext", "pre", "script", "search", "section",
	"select", "source", "style", "summary", "table", "tbody", "td", "template", "textarea",
	"tfoot", "th", "thead", "title", "tr", "track", "ul", "wbr", "xmp",
}

func isSpecial(el element) bool {
	if el.ns != native.NSHTML {
		return slices.Contains(foreignScope[el.ns], el.name)
	}
	return slices.Contains(specialElements, el.name)
}

// Insertion.

// insertElement creates an element for tok in namespace ns, inserts it at the
// appropriate place and pushes it onto the stack.
func (e *Engine) insertElement(tok *token, ns native.NS) element {
	name := tok.name
	attrs := htmlAttributes(tok.attrs)
	if ns != native.NSHTML {
		name, attrs = adjustForeign(ns, name, attrs)
	}
	return e.insertNamed(ns, name, attrs)
}

func (e *Engine) insertNamed(ns native.NS, name string, attrs []attribute) element {
	node := e.createElement(ns, name, attrs)
	if e.failed() {
		return element{}
	}
	node = e.insertNode(node)
	if e.failed() {
		return element{}
	}
	el := element{node: node, name: name, ns: ns}
	e.push(el)
	if ns == native.NSHTML && e.form != native.NullNode && formAssociated(name) {
		e.formAssociate(e.form, node)
	}
	return el
}

// insertVoid inserts an element that never has content.
func (e *Engine) insertVoid(tok *token) {
	e.insertElement(tok, native.NSHTML)
	if !e.failed() {
		e.pop()
	}
}

func (e *Engine) insertNode(node native.Node) native.Node {
	if e.fostering {
		return e.fosterParent(node)
	}
	return e.appendChild(e.current().node, node)
}

// fosterParent inserts node immediately before the innermost open table, or into
// the element below the table when the table has been detached.
func (e *Engine) fosterParent(node native.Node) native.Node {
	i := e.indexOf("table")
	if i <= 0 {
		return e.appendChild(e.current().node, node)
	}
	table := e.stack[i].node
	if parent := e.getParent(table, false); parent != native.NullNode {
		return e.insertBefore(parent, node, table)
	}
	return e.appendChild(e.stack[i-1].node, node)
}

func (e *Engine) insertText(data string) {
	if data == "" {
		return
	}
	node := e.createText(data)
	if !e.failed() {
		e.insertNode(node)
	}
}

func (e *Engine) insertComment(data string) {
	node := e.createComment(data)
	if !e.failed() {
		e.insertNode(node)
	}
}

func (e *Engine) appendComment(parent native.Node, data string) {
	node := e.createComment(data)
	if !e.failed() {
		e.appendChild(parent, node)
	}
}

func formAssociated(name string) bool {
	switch name {
	case "button", "fieldset", "input", "object", "output", "select", "textarea", "img":
		return true
	default:
		return false
	}
}

// setForm replaces the form element pointer.
func (e *Engine) setForm(node native.Node) {
	old := e.form
	e.form = node
	e.ref(node)
	e.unref(old)
}

func (e *Engine) setHead(node native.Node) {
	e.head = node
	e.ref(node)
}

// stop ends parsing: every open element is popped and the element pointers are
// released.
func (e *Engine) stop() {
	e.release()
	e.stopped = true
}

func (e *Engine) release() {
	for len(e.stack) > 0 {
		e.pop()
	}
	if e.head != native.NullNode {
		e.unref(e.head)
		e.head = native.NullNode
	}
	if e.form != native.NullNode {
		e.unref(e.form)
		e.form = native.NullNode
	}
}
