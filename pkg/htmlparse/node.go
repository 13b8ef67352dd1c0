package htmlparse

import "strconv"

// NodeID is an opaque handle to a client-owned node. The parser and the engine store,
// compare and return it but never look inside; its layout belongs to the TreeBuilder
// that issued it.
type NodeID uint64

// NullNode is the absent node, returned by GetParent when a node has no parent.
const NullNode NodeID = 0

// IsNull reports whether id is the null node.
func (id NodeID) IsNull() bool {
	return id == NullNode
}

// String formats the id for logs.
func (id NodeID) String() string {
	if id.IsNull() {
		return "null"
	}
	return "#" + strconv.FormatUint(uint64(id), 16)
}
