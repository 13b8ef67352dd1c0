package native

// TreeHandler is the callback vtable the engine invokes while it builds a tree.
//
// Callbacks run synchronously on the stack of ParseChunk, InsertChunk, Completed,
// SetOpt(OptPause) or Destroy. Results are written to the output slot and the call
// reports OK; any other code makes the engine abandon the operation in progress and
// return that code to its caller.
type TreeHandler interface {
	CreateComment(data String, result *Node) Error
	CreateDoctype(doctype *Doctype, result *Node) Error
	CreateElement(tag *Tag, result *Node) Error
	CreateText(data String, result *Node) Error
	RefNode(node Node) Error
	UnrefNode(node Node) Error
	AppendChild(parent, child Node, result *Node) Error
	InsertBefore(parent, child, refChild Node, result *Node) Error
	RemoveChild(parent, child Node, result *Node) Error
	CloneNode(node Node, deep bool, result *Node) Error
	ReparentChildren(node, newParent Node) Error
	GetParent(node Node, elementOnly bool, result *Node) Error
	HasChildren(node Node, result *bool) Error
	FormAssociate(form, node Node) Error
	AddAttributes(node Node, attributes []Attribute) Error
	SetQuirksMode(mode QuirksMode) Error
	EncodingChange(encname String) Error
	CompleteScript(script Node) Error
	CompleteStyle(style Node) Error
}
