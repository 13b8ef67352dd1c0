// Package dom is an arena-backed HTML document that implements htmlparse.TreeBuilder.
//
// Nodes live in slots addressed by htmlparse.NodeID values that pack a slot index with
// a generation counter. When a node is reclaimed its slot generation advances, so any
// id still held for it is reported as stale instead of aliasing a newer node.
package dom

import (
	"strings"

	"github.com/yaklabco/html5bridge/pkg/htmlparse"
)

// NodeKind classifies a node.
type NodeKind uint8

const (
	NodeDocument NodeKind = iota
	NodeDoctype
	NodeElement
	NodeText
	NodeComment
)

func (k NodeKind) String() string {
	switch k {
	case NodeDocument:
		return "Document"
	case NodeDoctype:
		return "Doctype"
	case NodeElement:
		return "Element"
	case NodeText:
		return "Text"
	case NodeComment:
		return "Comment"
	default:
		return "Unknown"
	}
}

// Node is one node of a Document.
type Node struct {
	// Kind identifies what type of node this is.
	Kind NodeKind

	// Tree structure pointers.
	Parent     *Node
	FirstChild *Node
	LastChild  *Node
	Prev       *Node
	Next       *Node

	// Namespace and Name identify an element. Name is also the doctype name.
	Namespace htmlparse.Namespace
	Name      string

	// Attributes of an element in source order.
	Attributes []htmlparse.Attribute

	// Data is the character data of a text or comment node.
	Data string

	// PublicID and SystemID of a doctype; nil when missing.
	PublicID *string
	SystemID *string

	id   htmlparse.NodeID
	refs int
	form htmlparse.NodeID
}

// ID returns the node's id within its document.
func (n *Node) ID() htmlparse.NodeID {
	return n.id
}

// Refs returns the number of outstanding engine references.
func (n *Node) Refs() int {
	return n.refs
}

// Attr returns the value of the attribute with the given name in no namespace.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attributes {
		if a.Namespace == htmlparse.NamespaceNone && a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasChildren returns true if this node has any children.
func (n *Node) HasChildren() bool {
	return n.FirstChild != nil
}

// Children returns a slice of all direct children.
func (n *Node) Children() []*Node {
	var children []*Node
	for child := n.FirstChild; child != nil; child = child.Next {
		children = append(children, child)
	}
	return children
}

// TextContent concatenates the data of every text node under n.
func (n *Node) TextContent() string {
	var b strings.Builder
	//nolint:errcheck // the visitor never fails
	Walk(n, func(c *Node, _ int) error {
		if c.Kind == NodeText {
			b.WriteString(c.Data)
		}
		return nil
	})
	return b.String()
}

// isAncestorOf reports whether n is other or one of its ancestors.
func (n *Node) isAncestorOf(other *Node) bool {
	for c := other; c != nil; c = c.Parent {
		if c == n {
			return true
		}
	}
	return false
}

// appendChild links child as the last child of parent, detaching it first.
func appendChild(parent, child *Node) {
	if child.Parent != nil {
		removeChild(child.Parent, child)
	}

	child.Parent = parent
	child.Prev = parent.LastChild
	child.Next = nil

	if parent.LastChild != nil {
		parent.LastChild.Next = child
	} else {
		parent.FirstChild = child
	}

	parent.LastChild = child
}

// insertBefore links newNode immediately before sibling, which must have a parent.
func insertBefore(sibling, newNode *Node) {
	if newNode.Parent != nil {
		removeChild(newNode.Parent, newNode)
	}

	parent := sibling.Parent
	newNode.Parent = parent
	newNode.Prev = sibling.Prev
	newNode.Next = sibling

	if sibling.Prev != nil {
		sibling.Prev.Next = newNode
	} else {
		parent.FirstChild = newNode
	}

	sibling.Prev = newNode
}

// removeChild unlinks child from parent.
func removeChild(parent, child *Node) {
	if child.Prev != nil {
		child.Prev.Next = child.Next
	} else {
		parent.FirstChild = child.Next
	}

	if child.Next != nil {
		child.Next.Prev = child.Prev
	} else {
		parent.LastChild = child.Prev
	}

	child.Parent = nil
	child.Prev = nil
	child.Next = nil
}
