package parsetest_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/html5bridge/pkg/dom"
	"github.com/yaklabco/html5bridge/pkg/htmlparse"
	"github.com/yaklabco/html5bridge/pkg/htmlparse/parsetest"
)

func TestRecorder(t *testing.T) {
	t.Parallel()

	doc := dom.New()
	rec := parsetest.NewRecorder(doc)

	p, err := rec.CreateElement(htmlparse.Tag{Namespace: htmlparse.NamespaceHTML, Name: "p"})
	require.NoError(t, err)
	text, err := rec.CreateText("hi")
	require.NoError(t, err)
	_, err = rec.AppendChild(p, text)
	require.NoError(t, err)
	rec.RefNode(p)
	rec.RefNode(p)
	rec.UnrefNode(p)

	assert.Equal(t, []string{
		"create_element", "create_text", "append_child", "ref_node", "ref_node", "unref_node",
	}, rec.Ops())
	assert.Equal(t, 2, rec.Count("ref_node"))
	assert.Equal(t, map[htmlparse.NodeID]int{p: 1}, rec.Outstanding())

	calls := rec.Find("create_text")
	require.Len(t, calls, 1)
	assert.Equal(t, `create_text("hi") = `+text.String(), calls[0].String())

	rec.Reset()
	assert.Empty(t, rec.Calls())
	rec.UnrefNode(p)
	assert.Empty(t, rec.Outstanding(), "reset keeps reference tracking")
}

func TestRecorder_RecordsErrors(t *testing.T) {
	t.Parallel()

	rec := parsetest.NewRecorder(dom.New())
	_, err := rec.GetParent(htmlparse.NullNode, false)
	require.Error(t, err)

	calls := rec.Calls()
	require.Len(t, calls, 1)
	assert.True(t, errors.Is(calls[0].Err, dom.ErrNullNode))
	assert.Contains(t, calls[0].String(), "get_parent(null, false) ! ")
}
