package htmlparse

import (
	"errors"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/html5bridge/internal/logging"
	"github.com/yaklabco/html5bridge/pkg/native"
)

// bridge adapts a TreeBuilder to the engine's callback vtable. It is created once per
// InstallTreeBuilder and handed to the engine as the tree handler; the builder it
// captures is never re-derived from anything the engine passes back.
type bridge struct {
	builder TreeBuilder
	logger  *log.Logger

	// scriptDepth counts CompleteScript notifications on the stack. Parser.Insert is
	// only valid while it is positive.
	scriptDepth int

	// err is the first builder failure since the last takeError.
	err error

	// changedTo is the charset named by the last EncodingChange notification.
	changedTo string
}

var _ native.TreeHandler = (*bridge)(nil)

func newBridge(builder TreeBuilder, logger *log.Logger) *bridge {
	return &bridge{builder: builder, logger: logger}
}

// fail records a builder failure and returns the status that makes the engine abort.
func (b *bridge) fail(op string, err error) native.Error {
	b.logger.Debug("tree callback failed", logging.FieldOp, op, logging.FieldError, err)
	if b.err == nil {
		b.err = &CallbackError{Op: op, Err: err}
	}
	if errors.Is(err, ErrNoMemory) {
		return native.NoMem
	}
	return native.Unknown
}

// takeError returns and clears the recorded builder failure.
func (b *bridge) takeError() error {
	err := b.err
	b.err = nil
	return err
}

func (b *bridge) inScript() bool {
	return b.scriptDepth > 0
}

func (b *bridge) created(op string, id NodeID, err error, result *native.Node) native.Error {
	if err != nil {
		return b.fail(op, err)
	}
	*result = toNativeNode(id)
	return native.OK
}

func (b *bridge) CreateComment(data native.String, result *native.Node) native.Error {
	text := fromNativeString(data)
	b.logger.Debug("tree callback", logging.FieldOp, "create_comment", logging.FieldBytes, len(text))
	id, err := b.builder.CreateComment(text)
	return b.created("create_comment", id, err, result)
}

func (b *bridge) CreateDoctype(doctype *native.Doctype, result *native.Node) native.Error {
	d := fromNativeDoctype(doctype)
	b.logger.Debug("tree callback", logging.FieldOp, "create_doctype", logging.FieldName, d.Name)
	id, err := b.builder.CreateDoctype(d)
	return b.created("create_doctype", id, err, result)
}

func (b *bridge) CreateElement(tag *native.Tag, result *native.Node) native.Error {
	t := fromNativeTag(tag)
	b.logger.Debug("tree callback",
		logging.FieldOp, "create_element",
		logging.FieldName, t.Name,
		logging.FieldNS, t.Namespace,
		logging.FieldAttrs, len(t.Attributes))
	id, err := b.builder.CreateElement(t)
	return b.created("create_element", id, err, result)
}

func (b *bridge) CreateText(data native.String, result *native.Node) native.Error {
	text := fromNativeString(data)
	b.logger.Debug("tree callback", logging.FieldOp, "create_text", logging.FieldBytes, len(text))
	id, err := b.builder.CreateText(text)
	return b.created("create_text", id, err, result)
}

func (b *bridge) RefNode(node native.Node) native.Error {
	id := fromNativeNode(node)
	b.logger.Debug("tree callback", logging.FieldOp, "ref_node", logging.FieldNode, id)
	b.builder.RefNode(id)
	return native.OK
}

func (b *bridge) UnrefNode(node native.Node) native.Error {
	id := fromNativeNode(node)
	b.logger.Debug("tree callback", logging.FieldOp, "unref_node", logging.FieldNode, id)
	b.builder.UnrefNode(id)
	return native.OK
}

func (b *bridge) AppendChild(parent, child native.Node, result *native.Node) native.Error {
	p, c := fromNativeNode(parent), fromNativeNode(child)
	b.logger.Debug("tree callback", logging.FieldOp, "append_child", logging.FieldParent, p, logging.FieldChild, c)
	id, err := b.builder.AppendChild(p, c)
	return b.created("append_child", id, err, result)
}

func (b *bridge) InsertBefore(parent, child, refChild native.Node, result *native.Node) native.Error {
	p, c, r := fromNativeNode(parent), fromNativeNode(child), fromNativeNode(refChild)
	b.logger.Debug("tree callback",
		logging.FieldOp, "insert_before",
		logging.FieldParent, p,
		logging.FieldChild, c,
		logging.FieldNode, r)
	id, err := b.builder.InsertBefore(p, c, r)
	return b.created("insert_before", id, err, result)
}

func (b *bridge) RemoveChild(parent, child native.Node, result *native.Node) native.Error {
	p, c := fromNativeNode(parent), fromNativeNode(child)
	b.logger.Debug("tree callback", logging.FieldOp, "remove_child", logging.FieldParent, p, logging.FieldChild, c)
	id, err := b.builder.RemoveChild(p, c)
	return b.created("remove_child", id, err, result)
}

func (b *bridge) CloneNode(node native.Node, deep bool, result *native.Node) native.Error {
	n := fromNativeNode(node)
	b.logger.Debug("tree callback", logging.FieldOp, "clone_node", logging.FieldNode, n, "deep", deep)
	id, err := b.builder.CloneNode(n, deep)
	return b.created("clone_node", id, err, result)
}

func (b *bridge) ReparentChildren(node, newParent native.Node) native.Error {
	n, p := fromNativeNode(node), fromNativeNode(newParent)
	b.logger.Debug("tree callback", logging.FieldOp, "reparent_children", logging.FieldNode, n, logging.FieldParent, p)
	if err := b.builder.ReparentChildren(n, p); err != nil {
		return b.fail("reparent_children", err)
	}
	return native.OK
}

func (b *bridge) GetParent(node native.Node, elementOnly bool, result *native.Node) native.Error {
	n := fromNativeNode(node)
	b.logger.Debug("tree callback", logging.FieldOp, "get_parent", logging.FieldNode, n, "element_only", elementOnly)
	id, err := b.builder.GetParent(n, elementOnly)
	return b.created("get_parent", id, err, result)
}

func (b *bridge) HasChildren(node native.Node, result *bool) native.Error {
	n := fromNativeNode(node)
	b.logger.Debug("tree callback", logging.FieldOp, "has_children", logging.FieldNode, n)
	has, err := b.builder.HasChildren(n)
	if err != nil {
		return b.fail("has_children", err)
	}
	*result = has
	return native.OK
}

func (b *bridge) FormAssociate(form, node native.Node) native.Error {
	f, n := fromNativeNode(form), fromNativeNode(node)
	b.logger.Debug("tree callback", logging.FieldOp, "form_associate", logging.FieldParent, f, logging.FieldNode, n)
	if err := b.builder.FormAssociate(f, n); err != nil {
		return b.fail("form_associate", err)
	}
	return native.OK
}

func (b *bridge) AddAttributes(node native.Node, attributes []native.Attribute) native.Error {
	n := fromNativeNode(node)
	attrs := fromNativeAttributes(attributes)
	b.logger.Debug("tree callback", logging.FieldOp, "add_attributes", logging.FieldNode, n, logging.FieldAttrs, len(attrs))
	if err := b.builder.AddAttributes(n, attrs); err != nil {
		return b.fail("add_attributes", err)
	}
	return native.OK
}

func (b *bridge) SetQuirksMode(mode native.QuirksMode) native.Error {
	m := fromNativeQuirksMode(mode)
	b.logger.Debug("tree callback", logging.FieldOp, "set_quirks_mode", logging.FieldQuirks, m)
	if err := b.builder.SetQuirksMode(m); err != nil {
		return b.fail("set_quirks_mode", err)
	}
	return native.OK
}

func (b *bridge) EncodingChange(encname native.String) native.Error {
	name := fromNativeString(encname)
	b.logger.Debug("tree callback", logging.FieldOp, "encoding_change", logging.FieldEncoding, name)
	b.changedTo = name
	if err := b.builder.EncodingChange(name); err != nil {
		return b.fail("encoding_change", err)
	}
	return native.OK
}

func (b *bridge) CompleteScript(script native.Node) native.Error {
	n := fromNativeNode(script)
	b.logger.Debug("tree callback", logging.FieldOp, "complete_script", logging.FieldNode, n)
	b.scriptDepth++
	defer func() { b.scriptDepth-- }()
	if err := b.builder.CompleteScript(n); err != nil {
		return b.fail("complete_script", err)
	}
	return native.OK
}

func (b *bridge) CompleteStyle(style native.Node) native.Error {
	n := fromNativeNode(style)
	b.logger.Debug("tree callback", logging.FieldOp, "complete_style", logging.FieldNode, n)
	if err := b.builder.CompleteStyle(n); err != nil {
		return b.fail("complete_style", err)
	}
	return native.OK
}
