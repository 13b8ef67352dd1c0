package htmlparse

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/html5bridge/internal/logging"
	"github.com/yaklabco/html5bridge/pkg/native"
)

// stubBuilder hands out sequential ids and keeps what it was given.
type stubBuilder struct {
	next  NodeID
	err   error
	texts []string
	tags  []Tag
	docs  []Doctype
	attrs []Attribute
	modes []QuirksMode
	inner func()
}

func (s *stubBuilder) create() (NodeID, error) {
	if s.err != nil {
		return NullNode, s.err
	}
	s.next++
	return s.next, nil
}

func (s *stubBuilder) CreateComment(text string) (NodeID, error) {
	s.texts = append(s.texts, text)
	return s.create()
}

func (s *stubBuilder) CreateDoctype(d Doctype) (NodeID, error) {
	s.docs = append(s.docs, d)
	return s.create()
}

func (s *stubBuilder) CreateElement(tag Tag) (NodeID, error) {
	s.tags = append(s.tags, tag)
	return s.create()
}

func (s *stubBuilder) CreateText(text string) (NodeID, error) {
	s.texts = append(s.texts, text)
	return s.create()
}

func (s *stubBuilder) RefNode(NodeID)   {}
func (s *stubBuilder) UnrefNode(NodeID) {}

func (s *stubBuilder) AppendChild(_, child NodeID) (NodeID, error) { return child, s.err }

func (s *stubBuilder) InsertBefore(_, child, _ NodeID) (NodeID, error) { return child, s.err }

func (s *stubBuilder) RemoveChild(_, child NodeID) (NodeID, error) { return child, s.err }

func (s *stubBuilder) CloneNode(NodeID, bool) (NodeID, error) { return s.create() }

func (s *stubBuilder) ReparentChildren(NodeID, NodeID) error { return s.err }

func (s *stubBuilder) GetParent(NodeID, bool) (NodeID, error) { return NullNode, s.err }

func (s *stubBuilder) HasChildren(NodeID) (bool, error) { return true, s.err }

func (s *stubBuilder) FormAssociate(NodeID, NodeID) error { return s.err }

func (s *stubBuilder) AddAttributes(_ NodeID, attrs []Attribute) error {
	s.attrs = append(s.attrs, attrs...)
	return s.err
}

func (s *stubBuilder) SetQuirksMode(mode QuirksMode) error {
	s.modes = append(s.modes, mode)
	return s.err
}

func (s *stubBuilder) EncodingChange(string) error { return s.err }

func (s *stubBuilder) CompleteScript(NodeID) error {
	if s.inner != nil {
		s.inner()
	}
	return s.err
}

func (s *stubBuilder) CompleteStyle(NodeID) error { return s.err }

func newTestBridge(b TreeBuilder) *bridge {
	return newBridge(b, logging.Discard())
}

func TestBridge_CopiesBorrowedStrings(t *testing.T) {
	t.Parallel()

	stub := &stubBuilder{}
	br := newTestBridge(stub)

	buf := []byte("divclassbig")
	tag := native.Tag{
		NS:   native.NSHTML,
		Name: native.String(buf[0:3]),
		Attributes: []native.Attribute{
			{NS: native.NSNull, Name: native.String(buf[3:8]), Value: native.String(buf[8:11])},
		},
	}
	var node native.Node
	require.Equal(t, native.OK, br.CreateElement(&tag, &node))
	assert.Equal(t, native.Node(1), node)

	text := []byte("hello")
	require.Equal(t, native.OK, br.CreateText(native.String(text), &node))

	// The engine reuses its buffers once a callback returns.
	copy(buf, "xxxxxxxxxxx")
	copy(text, "xxxxx")

	require.Len(t, stub.tags, 1)
	assert.Equal(t, Tag{
		Namespace:  NamespaceHTML,
		Name:       "div",
		Attributes: []Attribute{{Namespace: NamespaceNone, Name: "class", Value: "big"}},
	}, stub.tags[0])
	assert.Equal(t, []string{"hello"}, stub.texts)
}

func TestBridge_Doctype(t *testing.T) {
	t.Parallel()

	stub := &stubBuilder{}
	br := newTestBridge(stub)

	var node native.Node
	require.Equal(t, native.OK, br.CreateDoctype(&native.Doctype{
		Name:          native.String("html"),
		PublicMissing: true,
		SystemMissing: false,
		SystemID:      native.String(""),
		ForceQuirks:   true,
	}, &node))

	require.Len(t, stub.docs, 1)
	d := stub.docs[0]
	assert.Equal(t, "html", d.Name)
	assert.Nil(t, d.PublicID, "missing identifier")
	require.NotNil(t, d.SystemID, "present but empty identifier")
	assert.Empty(t, *d.SystemID)
	assert.True(t, d.ForceQuirks)
}

func TestBridge_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want native.Error
	}{
		{"plain error", errors.New("boom"), native.Unknown},
		{"out of memory", fmt.Errorf("arena full: %w", ErrNoMemory), native.NoMem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			br := newTestBridge(&stubBuilder{err: tt.err})

			var node native.Node
			assert.Equal(t, tt.want, br.CreateComment(native.String("c"), &node))
			assert.Equal(t, native.NullNode, node)
			assert.Equal(t, tt.want, br.FormAssociate(1, 2))

			err := br.takeError()
			var cbErr *CallbackError
			require.ErrorAs(t, err, &cbErr)
			assert.Equal(t, "create_comment", cbErr.Op, "the first failure is kept")
			assert.ErrorIs(t, err, tt.err)
			assert.NoError(t, br.takeError())
		})
	}
}

func TestBridge_ResultSlots(t *testing.T) {
	t.Parallel()

	br := newTestBridge(&stubBuilder{})

	var node native.Node
	require.Equal(t, native.OK, br.AppendChild(1, 5, &node))
	assert.Equal(t, native.Node(5), node)
	require.Equal(t, native.OK, br.InsertBefore(1, 6, 5, &node))
	assert.Equal(t, native.Node(6), node)
	require.Equal(t, native.OK, br.GetParent(6, true, &node))
	assert.Equal(t, native.NullNode, node)

	var has bool
	require.Equal(t, native.OK, br.HasChildren(1, &has))
	assert.True(t, has)
}

func TestBridge_ScriptWindow(t *testing.T) {
	t.Parallel()

	stub := &stubBuilder{}
	br := newTestBridge(stub)

	var inside bool
	stub.inner = func() { inside = br.inScript() }

	assert.False(t, br.inScript())
	require.Equal(t, native.OK, br.CompleteScript(3))
	assert.True(t, inside)
	assert.False(t, br.inScript())
}

func TestBridge_EncodingChange(t *testing.T) {
	t.Parallel()

	stub := &stubBuilder{}
	br := newTestBridge(stub)

	name := []byte("koi8-r")
	require.Equal(t, native.OK, br.EncodingChange(native.String(name)))
	copy(name, "xxxxxx")
	assert.Equal(t, "koi8-r", br.changedTo)

	require.Equal(t, native.OK, br.SetQuirksMode(native.QuirksModeLimited))
	assert.Equal(t, []QuirksMode{LimitedQuirks}, stub.modes)
}

func TestMarshal_Namespaces(t *testing.T) {
	t.Parallel()

	tests := map[native.NS]Namespace{
		native.NSNull:   NamespaceNone,
		native.NSHTML:   NamespaceHTML,
		native.NSMathML: NamespaceMathML,
		native.NSSVG:    NamespaceSVG,
		native.NSXLink:  NamespaceXLink,
		native.NSXML:    NamespaceXML,
		native.NSXMLNS:  NamespaceXMLNS,
	}
	for code, want := range tests {
		assert.Equal(t, want, fromNativeNS(code))
	}
	assert.Panics(t, func() { fromNativeNS(native.NS(99)) })
	assert.Panics(t, func() { fromNativeQuirksMode(native.QuirksMode(9)) })

	assert.Equal(t, "http://www.w3.org/2000/svg", NamespaceSVG.URI())
	assert.Empty(t, NamespaceNone.URI())
}

func TestMarshal_Nodes(t *testing.T) {
	t.Parallel()

	id := NodeID(0xdeadbeef12)
	assert.Equal(t, id, fromNativeNode(toNativeNode(id)))
	assert.True(t, fromNativeNode(native.NullNode).IsNull())
	assert.Equal(t, "null", NullNode.String())
	assert.Equal(t, "#deadbeef12", id.String())
	assert.Nil(t, fromNativeAttributes(nil))
	assert.Equal(t, CharsetUnknown, fromNativeCharsetSource(native.CharsetSource(7)))
}
