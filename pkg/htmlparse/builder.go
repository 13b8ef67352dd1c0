package htmlparse

// TreeBuilder is the client's tree-construction capability.
//
// The engine calls these methods one at a time, in document order, on the goroutine
// that is feeding the parser. Methods returning an error abort the feed call that
// triggered them; RefNode and UnrefNode must not fail.
type TreeBuilder interface {
	// CreateComment creates a comment node holding text.
	CreateComment(text string) (NodeID, error)
	// CreateDoctype creates a doctype node.
	CreateDoctype(doctype Doctype) (NodeID, error)
	// CreateElement creates an element node with the tag's namespace, name and attributes.
	CreateElement(tag Tag) (NodeID, error)
	// CreateText creates a text node holding text.
	CreateText(text string) (NodeID, error)

	// RefNode records one more engine reference to node.
	RefNode(node NodeID)
	// UnrefNode drops one engine reference. At zero the builder may reclaim the node.
	UnrefNode(node NodeID)

	// AppendChild appends child to parent and returns the node actually inserted,
	// which differs from child when the builder merged adjacent text.
	AppendChild(parent, child NodeID) (NodeID, error)
	// InsertBefore inserts child before ref under parent, with AppendChild's result contract.
	InsertBefore(parent, child, ref NodeID) (NodeID, error)
	// RemoveChild detaches child from parent and returns it.
	RemoveChild(parent, child NodeID) (NodeID, error)
	// CloneNode copies node, with its descendants when deep. Reference counts are not copied.
	CloneNode(node NodeID, deep bool) (NodeID, error)
	// ReparentChildren moves every child of node, in order, to the end of newParent.
	ReparentChildren(node, newParent NodeID) error
	// GetParent returns the parent of node, or the nearest element ancestor when
	// elementOnly is set. It returns NullNode when there is none.
	GetParent(node NodeID, elementOnly bool) (NodeID, error)
	// HasChildren reports whether node has children.
	HasChildren(node NodeID) (bool, error)
	// FormAssociate records that node belongs to form.
	FormAssociate(form, node NodeID) error
	// AddAttributes merges attrs into node. Names already present keep their value.
	AddAttributes(node NodeID, attrs []Attribute) error

	// SetQuirksMode records the document's quirks mode; the latest call wins.
	SetQuirksMode(mode QuirksMode) error
	// EncodingChange reports that the engine is restarting with charset name. Nodes
	// built so far were decoded with the wrong charset.
	EncodingChange(name string) error
	// CompleteScript reports a fully parsed script element. Parser.Insert is valid
	// until this method returns.
	CompleteScript(script NodeID) error
	// CompleteStyle reports a fully parsed style element.
	CompleteStyle(style NodeID) error
}
