// Package parsetest provides test helpers for code that drives an htmlparse.Parser.
package parsetest

import (
	"fmt"
	"strings"

	"github.com/yaklabco/html5bridge/pkg/htmlparse"
)

// Call is one recorded TreeBuilder invocation.
type Call struct {
	// Op is the callback name, e.g. "append_child".
	Op string
	// Args are the call arguments rendered as strings.
	Args []string
	// Result is the returned node, or NullNode for calls that return none.
	Result htmlparse.NodeID
	// Err is the error the wrapped builder returned.
	Err error
}

func (c Call) String() string {
	var b strings.Builder
	b.WriteString(c.Op)
	b.WriteByte('(')
	b.WriteString(strings.Join(c.Args, ", "))
	b.WriteByte(')')
	if !c.Result.IsNull() {
		b.WriteString(" = ")
		b.WriteString(c.Result.String())
	}
	if c.Err != nil {
		b.WriteString(" ! ")
		b.WriteString(c.Err.Error())
	}
	return b.String()
}

// Recorder is a TreeBuilder that forwards to another builder and records every call.
// It also tracks RefNode/UnrefNode balance per node.
type Recorder struct {
	next  htmlparse.TreeBuilder
	calls []Call
	refs  map[htmlparse.NodeID]int
}

var _ htmlparse.TreeBuilder = (*Recorder)(nil)

// NewRecorder wraps next.
func NewRecorder(next htmlparse.TreeBuilder) *Recorder {
	return &Recorder{next: next, refs: make(map[htmlparse.NodeID]int)}
}

// Calls returns the recorded calls in order.
func (r *Recorder) Calls() []Call {
	return r.calls
}

// Ops returns the names of the recorded calls in order.
func (r *Recorder) Ops() []string {
	ops := make([]string, len(r.calls))
	for i, c := range r.calls {
		ops[i] = c.Op
	}
	return ops
}

// Count returns how many calls named op were recorded.
func (r *Recorder) Count(op string) int {
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Find returns the recorded calls named op.
func (r *Recorder) Find(op string) []Call {
	var out []Call
	for _, c := range r.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Outstanding returns every node whose RefNode count exceeds its UnrefNode count.
// Nodes that were unreferenced more often than referenced appear with a negative count.
func (r *Recorder) Outstanding() map[htmlparse.NodeID]int {
	out := make(map[htmlparse.NodeID]int)
	for id, n := range r.refs {
		if n != 0 {
			out[id] = n
		}
	}
	return out
}

// Reset drops recorded calls but keeps ref tracking.
func (r *Recorder) Reset() {
	r.calls = nil
}

func (r *Recorder) record(op string, result htmlparse.NodeID, err error, args ...any) {
	rendered := make([]string, len(args))
	for i, a := range args {
		rendered[i] = fmt.Sprint(a)
	}
	r.calls = append(r.calls, Call{Op: op, Args: rendered, Result: result, Err: err})
}

func (r *Recorder) CreateComment(text string) (htmlparse.NodeID, error) {
	id, err := r.next.CreateComment(text)
	r.record("create_comment", id, err, fmt.Sprintf("%q", text))
	return id, err
}

func (r *Recorder) CreateDoctype(d htmlparse.Doctype) (htmlparse.NodeID, error) {
	id, err := r.next.CreateDoctype(d)
	r.record("create_doctype", id, err, d.Name)
	return id, err
}

func (r *Recorder) CreateElement(tag htmlparse.Tag) (htmlparse.NodeID, error) {
	id, err := r.next.CreateElement(tag)
	r.record("create_element", id, err, tag.Name)
	return id, err
}

func (r *Recorder) CreateText(text string) (htmlparse.NodeID, error) {
	id, err := r.next.CreateText(text)
	r.record("create_text", id, err, fmt.Sprintf("%q", text))
	return id, err
}

func (r *Recorder) RefNode(n htmlparse.NodeID) {
	r.next.RefNode(n)
	r.refs[n]++
	r.record("ref_node", htmlparse.NullNode, nil, n)
}

func (r *Recorder) UnrefNode(n htmlparse.NodeID) {
	r.next.UnrefNode(n)
	r.refs[n]--
	r.record("unref_node", htmlparse.NullNode, nil, n)
}

func (r *Recorder) AppendChild(parent, child htmlparse.NodeID) (htmlparse.NodeID, error) {
	id, err := r.next.AppendChild(parent, child)
	r.record("append_child", id, err, parent, child)
	return id, err
}

func (r *Recorder) InsertBefore(parent, child, ref htmlparse.NodeID) (htmlparse.NodeID, error) {
	id, err := r.next.InsertBefore(parent, child, ref)
	r.record("insert_before", id, err, parent, child, ref)
	return id, err
}

func (r *Recorder) RemoveChild(parent, child htmlparse.NodeID) (htmlparse.NodeID, error) {
	id, err := r.next.RemoveChild(parent, child)
	r.record("remove_child", id, err, parent, child)
	return id, err
}

func (r *Recorder) CloneNode(n htmlparse.NodeID, deep bool) (htmlparse.NodeID, error) {
	id, err := r.next.CloneNode(n, deep)
	r.record("clone_node", id, err, n, deep)
	return id, err
}

func (r *Recorder) ReparentChildren(n, newParent htmlparse.NodeID) error {
	err := r.next.ReparentChildren(n, newParent)
	r.record("reparent_children", htmlparse.NullNode, err, n, newParent)
	return err
}

func (r *Recorder) GetParent(n htmlparse.NodeID, elementOnly bool) (htmlparse.NodeID, error) {
	id, err := r.next.GetParent(n, elementOnly)
	r.record("get_parent", id, err, n, elementOnly)
	return id, err
}

func (r *Recorder) HasChildren(n htmlparse.NodeID) (bool, error) {
	has, err := r.next.HasChildren(n)
	r.record("has_children", htmlparse.NullNode, err, n, has)
	return has, err
}

func (r *Recorder) FormAssociate(form, n htmlparse.NodeID) error {
	err := r.next.FormAssociate(form, n)
	r.record("form_associate", htmlparse.NullNode, err, form, n)
	return err
}

func (r *Recorder) AddAttributes(n htmlparse.NodeID, attrs []htmlparse.Attribute) error {
	err := r.next.AddAttributes(n, attrs)
	names := make([]string, len(attrs))
	for i, a := range attrs {
		names[i] = a.Name
	}
	r.record("add_attributes", htmlparse.NullNode, err, n, strings.Join(names, " "))
	return err
}

func (r *Recorder) SetQuirksMode(m htmlparse.QuirksMode) error {
	err := r.next.SetQuirksMode(m)
	r.record("set_quirks_mode", htmlparse.NullNode, err, m)
	return err
}

func (r *Recorder) EncodingChange(name string) error {
	err := r.next.EncodingChange(name)
	r.record("encoding_change", htmlparse.NullNode, err, name)
	return err
}

func (r *Recorder) CompleteScript(n htmlparse.NodeID) error {
	// Recorded before forwarding so calls made by the script follow it.
	r.record("complete_script", htmlparse.NullNode, nil, n)
	return r.next.CompleteScript(n)
}

func (r *Recorder) CompleteStyle(n htmlparse.NodeID) error {
	r.record("complete_style", htmlparse.NullNode, nil, n)
	return r.next.CompleteStyle(n)
}
