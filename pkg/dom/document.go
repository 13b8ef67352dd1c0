package dom

import (
	"fmt"

	"github.com/yaklabco/html5bridge/pkg/htmlparse"
)

type slot struct {
	node *Node
	gen  uint32
}

// Document is a tree of nodes built through the htmlparse.TreeBuilder callbacks.
//
// A node is reclaimed when it is detached, is not the document node and its
// reference count drops to zero through UnrefNode. Nodes a merge absorbs are
// reclaimed immediately. Collect sweeps any remaining detached unreferenced nodes.
type Document struct {
	cfg config

	slots []slot
	free  []int
	live  int

	root     *Node
	quirks   htmlparse.QuirksMode
	encoding string
	restarts int
}

var _ htmlparse.TreeBuilder = (*Document)(nil)

// New creates an empty document holding only the document node.
func New(opts ...Option) *Document {
	d := &Document{}
	for _, opt := range opts {
		opt(&d.cfg)
	}
	d.root = &Node{Kind: NodeDocument}
	d.place(d.root)
	return d
}

// Root returns the id of the document node.
func (d *Document) Root() htmlparse.NodeID {
	return d.root.id
}

// RootNode returns the document node.
func (d *Document) RootNode() *Node {
	return d.root
}

// Quirks returns the quirks mode most recently set.
func (d *Document) Quirks() htmlparse.QuirksMode {
	return d.quirks
}

// Encoding returns the charset named by the last encoding change, or "".
func (d *Document) Encoding() string {
	return d.encoding
}

// Restarts returns how many encoding changes discarded the tree.
func (d *Document) Restarts() int {
	return d.restarts
}

// Live returns the number of nodes not yet reclaimed, the document node included.
func (d *Document) Live() int {
	return d.live
}

// Node resolves id.
func (d *Document) Node(id htmlparse.NodeID) (*Node, error) {
	if id.IsNull() {
		return nil, ErrNullNode
	}
	index, gen := unpackID(id)
	if index < 0 || index >= len(d.slots) || d.slots[index].gen != gen || d.slots[index].node == nil {
		return nil, fmt.Errorf("%w: %s", ErrStaleNode, id)
	}
	return d.slots[index].node, nil
}

// FormOwner returns the form element n was associated with, or nil.
func (d *Document) FormOwner(n *Node) *Node {
	if n.form.IsNull() {
		return nil
	}
	form, err := d.Node(n.form)
	if err != nil {
		return nil
	}
	return form
}

// Collect reclaims every detached node without references and returns the count.
func (d *Document) Collect() int {
	count := 0
	for i := range d.slots {
		n := d.slots[i].node
		if n != nil && d.reclaimable(n) {
			count += d.reclaim(n)
		}
	}
	return count
}

func packID(index int, gen uint32) htmlparse.NodeID {
	return htmlparse.NodeID(uint64(gen)<<32 | uint64(index+1))
}

func unpackID(id htmlparse.NodeID) (int, uint32) {
	return int(uint32(id)) - 1, uint32(id >> 32)
}

func (d *Document) place(n *Node) {
	var index int
	if k := len(d.free); k > 0 {
		index = d.free[k-1]
		d.free = d.free[:k-1]
	} else {
		index = len(d.slots)
		d.slots = append(d.slots, slot{gen: 1})
	}
	d.slots[index].node = n
	n.id = packID(index, d.slots[index].gen)
	d.live++
}

func (d *Document) alloc(n *Node) (htmlparse.NodeID, error) {
	if d.cfg.nodeLimit > 0 && d.live >= d.cfg.nodeLimit {
		return htmlparse.NullNode, ErrNodeLimit
	}
	d.place(n)
	return n.id, nil
}

func (d *Document) reclaimable(n *Node) bool {
	return n != d.root && n.Parent == nil && n.refs == 0
}

// reclaim frees n and every descendant that is not itself referenced. Referenced
// descendants are detached and stay live.
func (d *Document) reclaim(n *Node) int {
	count := 0
	for child := n.FirstChild; child != nil; {
		next := child.Next
		removeChild(n, child)
		if d.reclaimable(child) {
			count += d.reclaim(child)
		}
		child = next
	}

	index, _ := unpackID(n.id)
	d.slots[index].node = nil
	d.slots[index].gen++
	d.free = append(d.free, index)
	d.live--
	return count + 1
}

// lookup resolves id for the named callback.
func (d *Document) lookup(op string, id htmlparse.NodeID) (*Node, error) {
	n, err := d.Node(id)
	if err != nil {
		return nil, fmt.Errorf("dom: %s: %w", op, err)
	}
	return n, nil
}

func (d *Document) CreateComment(text string) (htmlparse.NodeID, error) {
	return d.alloc(&Node{Kind: NodeComment, Data: text})
}

func (d *Document) CreateDoctype(doctype htmlparse.Doctype) (htmlparse.NodeID, error) {
	return d.alloc(&Node{
		Kind:     NodeDoctype,
		Name:     doctype.Name,
		PublicID: doctype.PublicID,
		SystemID: doctype.SystemID,
	})
}

func (d *Document) CreateElement(tag htmlparse.Tag) (htmlparse.NodeID, error) {
	return d.alloc(&Node{
		Kind:       NodeElement,
		Namespace:  tag.Namespace,
		Name:       tag.Name,
		Attributes: append([]htmlparse.Attribute(nil), tag.Attributes...),
	})
}

func (d *Document) CreateText(text string) (htmlparse.NodeID, error) {
	return d.alloc(&Node{Kind: NodeText, Data: text})
}

// RefNode panics on an id that does not resolve; the engine only holds ids the
// document handed out.
func (d *Document) RefNode(id htmlparse.NodeID) {
	n, err := d.lookup("ref_node", id)
	if err != nil {
		panic(err)
	}
	n.refs++
}

func (d *Document) UnrefNode(id htmlparse.NodeID) {
	n, err := d.lookup("unref_node", id)
	if err != nil {
		panic(err)
	}
	if n.refs == 0 {
		panic(fmt.Sprintf("dom: unref_node: %s has no references", id))
	}
	n.refs--
	if d.reclaimable(n) {
		d.reclaim(n)
	}
}

func (d *Document) AppendChild(parentID, childID htmlparse.NodeID) (htmlparse.NodeID, error) {
	parent, err := d.lookup("append_child", parentID)
	if err != nil {
		return htmlparse.NullNode, err
	}
	child, err := d.lookup("append_child", childID)
	if err != nil {
		return htmlparse.NullNode, err
	}
	if child.isAncestorOf(parent) {
		return htmlparse.NullNode, fmt.Errorf("dom: append_child: %w", ErrHierarchy)
	}

	if last := parent.LastChild; last != nil && last != child {
		if merged, ok := d.mergeText(last, child); ok {
			return merged, nil
		}
	}
	appendChild(parent, child)
	return child.id, nil
}

func (d *Document) InsertBefore(parentID, childID, refID htmlparse.NodeID) (htmlparse.NodeID, error) {
	parent, err := d.lookup("insert_before", parentID)
	if err != nil {
		return htmlparse.NullNode, err
	}
	child, err := d.lookup("insert_before", childID)
	if err != nil {
		return htmlparse.NullNode, err
	}
	ref, err := d.lookup("insert_before", refID)
	if err != nil {
		return htmlparse.NullNode, err
	}
	if ref.Parent != parent {
		return htmlparse.NullNode, fmt.Errorf("dom: insert_before: %w", ErrNotChild)
	}
	if child.isAncestorOf(parent) {
		return htmlparse.NullNode, fmt.Errorf("dom: insert_before: %w", ErrHierarchy)
	}
	if child == ref {
		return child.id, nil
	}

	if prev := ref.Prev; prev != nil && prev != child {
		if merged, ok := d.mergeText(prev, child); ok {
			return merged, nil
		}
	}
	insertBefore(ref, child)
	return child.id, nil
}

// mergeText folds child's data into target when both are text nodes. The absorbed
// child is reclaimed unless something still holds it.
func (d *Document) mergeText(target, child *Node) (htmlparse.NodeID, bool) {
	if target.Kind != NodeText || child.Kind != NodeText {
		return htmlparse.NullNode, false
	}
	target.Data += child.Data
	if child.Parent != nil {
		removeChild(child.Parent, child)
	}
	if d.reclaimable(child) {
		d.reclaim(child)
	}
	return target.id, true
}

func (d *Document) RemoveChild(parentID, childID htmlparse.NodeID) (htmlparse.NodeID, error) {
	parent, err := d.lookup("remove_child", parentID)
	if err != nil {
		return htmlparse.NullNode, err
	}
	child, err := d.lookup("remove_child", childID)
	if err != nil {
		return htmlparse.NullNode, err
	}
	if child.Parent != parent {
		return htmlparse.NullNode, fmt.Errorf("dom: remove_child: %w", ErrNotChild)
	}
	removeChild(parent, child)
	return child.id, nil
}

func (d *Document) CloneNode(id htmlparse.NodeID, deep bool) (htmlparse.NodeID, error) {
	n, err := d.lookup("clone_node", id)
	if err != nil {
		return htmlparse.NullNode, err
	}
	clone, err := d.clone(n, deep)
	if err != nil {
		return htmlparse.NullNode, fmt.Errorf("dom: clone_node: %w", err)
	}
	return clone.id, nil
}

func (d *Document) clone(n *Node, deep bool) (*Node, error) {
	c := &Node{
		Kind:       n.Kind,
		Namespace:  n.Namespace,
		Name:       n.Name,
		Attributes: append([]htmlparse.Attribute(nil), n.Attributes...),
		Data:       n.Data,
		PublicID:   n.PublicID,
		SystemID:   n.SystemID,
	}
	if _, err := d.alloc(c); err != nil {
		return nil, err
	}
	if !deep {
		return c, nil
	}
	for child := n.FirstChild; child != nil; child = child.Next {
		cc, err := d.clone(child, true)
		if err != nil {
			d.reclaim(c)
			return nil, err
		}
		appendChild(c, cc)
	}
	return c, nil
}

func (d *Document) ReparentChildren(id, newParentID htmlparse.NodeID) error {
	n, err := d.lookup("reparent_children", id)
	if err != nil {
		return err
	}
	newParent, err := d.lookup("reparent_children", newParentID)
	if err != nil {
		return err
	}
	if n.isAncestorOf(newParent) {
		return fmt.Errorf("dom: reparent_children: %w", ErrHierarchy)
	}
	for child := n.FirstChild; child != nil; child = n.FirstChild {
		appendChild(newParent, child)
	}
	return nil
}

func (d *Document) GetParent(id htmlparse.NodeID, elementOnly bool) (htmlparse.NodeID, error) {
	n, err := d.lookup("get_parent", id)
	if err != nil {
		return htmlparse.NullNode, err
	}
	if n.Parent == nil || (elementOnly && n.Parent.Kind != NodeElement) {
		return htmlparse.NullNode, nil
	}
	return n.Parent.id, nil
}

func (d *Document) HasChildren(id htmlparse.NodeID) (bool, error) {
	n, err := d.lookup("has_children", id)
	if err != nil {
		return false, err
	}
	return n.HasChildren(), nil
}

func (d *Document) FormAssociate(formID, id htmlparse.NodeID) error {
	if _, err := d.lookup("form_associate", formID); err != nil {
		return err
	}
	n, err := d.lookup("form_associate", id)
	if err != nil {
		return err
	}
	n.form = formID
	return nil
}

// AddAttributes adds each attribute the node does not already carry. Existing values
// are kept, and among the new attributes the first of each name wins.
func (d *Document) AddAttributes(id htmlparse.NodeID, attrs []htmlparse.Attribute) error {
	n, err := d.lookup("add_attributes", id)
	if err != nil {
		return err
	}
	for _, a := range attrs {
		if !hasAttr(n.Attributes, a) {
			n.Attributes = append(n.Attributes, a)
		}
	}
	return nil
}

func hasAttr(attrs []htmlparse.Attribute, a htmlparse.Attribute) bool {
	for _, existing := range attrs {
		if existing.Namespace == a.Namespace && existing.Name == a.Name {
			return true
		}
	}
	return false
}

func (d *Document) SetQuirksMode(mode htmlparse.QuirksMode) error {
	d.quirks = mode
	return nil
}

// EncodingChange discards everything built so far; the parse restarts with the new
// charset and rebuilds the tree under the same document node.
func (d *Document) EncodingChange(name string) error {
	d.encoding = name
	d.restarts++
	d.quirks = htmlparse.NoQuirks
	for child := d.root.FirstChild; child != nil; child = d.root.FirstChild {
		removeChild(d.root, child)
		if d.reclaimable(child) {
			d.reclaim(child)
		}
	}
	return nil
}

func (d *Document) CompleteScript(id htmlparse.NodeID) error {
	if d.cfg.onScript == nil {
		return nil
	}
	return d.cfg.onScript(id)
}

func (d *Document) CompleteStyle(id htmlparse.NodeID) error {
	if d.cfg.onStyle == nil {
		return nil
	}
	return d.cfg.onStyle(id)
}
