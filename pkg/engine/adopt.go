package engine

import (
	"slices"

	"github.com/yaklabco/html5bridge/pkg/native"
)

func isFormatting(el element) bool {
	return el.ns == native.NSHTML && slices.Contains(formattingTags, el.name)
}

// adopt handles the end tag of a formatting element that may be misnested. It
// performs one pass of the adoption agency: the furthest block below the formatting
// element moves out of it and receives a clone of the formatting element that takes
// over its children.
func (e *Engine) adopt(tok *token) {
	fi := e.indexOf(tok.name)
	if fi < 0 {
		e.anyOtherEnd(tok)
		return
	}
	if e.currentIs(tok.name) {
		e.pop()
		return
	}
	if !e.inScope(scopeDefault, tok.name) {
		e.parseError(tok, "end tag </"+tok.name+"> out of scope")
		return
	}
	e.parseError(tok, "misnested end tag </"+tok.name+">")

	fb := -1
	for i := fi + 1; i < len(e.stack); i++ {
		if isSpecial(e.stack[i]) {
			fb = i
			break
		}
	}
	if fb < 0 {
		for len(e.stack) > fi {
			e.pop()
		}
		return
	}

	formatting := e.stack[fi]
	common := e.stack[fi-1]
	furthest := e.stack[fb]

	last := furthest.node
	for i := fb - 1; i > fi; i-- {
		el := e.stack[i]
		if !isFormatting(el) {
			e.removeFromStack(i)
			continue
		}
		clone := e.cloneNode(el.node, false)
		if e.failed() {
			return
		}
		e.stack[i] = element{node: clone, name: el.name, ns: el.ns}
		e.ref(clone)
		e.unref(el.node)
		e.detach(last)
		e.appendChild(clone, last)
		last = clone
	}

	e.detach(last)
	e.appendChild(common.node, last)

	clone := e.cloneNode(formatting.node, false)
	if e.failed() {
		return
	}
	if e.hasChildren(furthest.node) {
		e.reparentChildren(furthest.node, clone)
	}
	e.appendChild(furthest.node, clone)
	if e.failed() {
		return
	}

	// The clone goes immediately below the furthest block and the original leaves.
	fb = e.indexOfNode(furthest.node)
	e.stack = slices.Insert(e.stack, fb, element{node: clone, name: formatting.name, ns: formatting.ns})
	e.ref(clone)
	if i := e.indexOfNode(formatting.node); i >= 0 {
		e.removeFromStack(i)
	}
}

// detach removes node from its parent, if it has one.
func (e *Engine) detach(node native.Node) {
	if parent := e.getParent(node, false); parent != native.NullNode {
		e.removeChild(parent, node)
	}
}
