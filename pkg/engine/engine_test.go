package engine_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/yaklabco/html5bridge/pkg/dom"
	"github.com/yaklabco/html5bridge/pkg/engine"
	"github.com/yaklabco/html5bridge/pkg/htmlparse"
	"github.com/yaklabco/html5bridge/pkg/native"
)

// refHandler only implements the reference callbacks; any other callback panics.
type refHandler struct {
	native.TreeHandler
	refs map[native.Node]int
}

func newRefHandler() *refHandler {
	return &refHandler{refs: make(map[native.Node]int)}
}

func (h *refHandler) RefNode(n native.Node) native.Error {
	h.refs[n]++
	return native.OK
}

func (h *refHandler) UnrefNode(n native.Node) native.Error {
	h.refs[n]--
	return native.OK
}

const docNode native.Node = 42

func newBound(t *testing.T, opts ...engine.Option) (*engine.Engine, *refHandler) {
	t.Helper()

	e, code := engine.New("utf-8", true, opts...)
	require.Equal(t, native.OK, code)
	h := newRefHandler()
	require.Equal(t, native.OK, e.SetOpt(native.OptTreeHandler, native.TreeHandlerParams{Handler: h}))
	require.Equal(t, native.OK, e.SetOpt(native.OptDocumentNode, native.DocumentNodeParams{Node: docNode}))
	return e, h
}

func TestNew_Charset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hint     string
		fix      bool
		wantName string
		wantSrc  native.CharsetSource
	}{
		{"", false, "windows-1252", native.CharsetUnknown},
		{"", true, "windows-1252", native.CharsetConfident},
		{"utf-8", false, "utf-8", native.CharsetTentative},
		{"UTF8", true, "utf-8", native.CharsetConfident},
		{"shift_jis", false, "shift_jis", native.CharsetTentative},
	}

	for _, tt := range tests {
		e, code := engine.New(tt.hint, tt.fix)
		require.Equal(t, native.OK, code, tt.hint)
		name, src := e.ReadCharset()
		assert.Equal(t, tt.wantName, name, tt.hint)
		assert.Equal(t, tt.wantSrc, src, tt.hint)
	}

	e, code := engine.New("no-such-charset", false)
	assert.Nil(t, e)
	assert.Equal(t, native.BadEncoding, code)

	_, code = engine.Factory()("no-such-charset", true)
	assert.Equal(t, native.BadEncoding, code)
}

func TestEngine_SetOpt(t *testing.T) {
	t.Parallel()

	t.Run("mismatched parameters", func(t *testing.T) {
		t.Parallel()
		e, _ := engine.New("utf-8", true)
		assert.Equal(t, native.BadParm, e.SetOpt(native.OptPause, native.EnableScriptingParams{}))
		assert.Equal(t, native.BadParm, e.SetOpt(native.OptPause, nil))
	})

	t.Run("unsupported options", func(t *testing.T) {
		t.Parallel()
		e, _ := engine.New("utf-8", true)
		assert.Equal(t, native.BadParm, e.SetOpt(native.OptTokenHandler, native.TokenHandlerParams{}))
		assert.Equal(t, native.BadParm, e.SetOpt(native.OptContentModel, native.ContentModelParams{Model: native.ContentModelRCDATA}))
	})

	t.Run("document node needs a tree handler", func(t *testing.T) {
		t.Parallel()
		e, _ := engine.New("utf-8", true)
		assert.Equal(t, native.BadParm, e.SetOpt(native.OptDocumentNode, native.DocumentNodeParams{Node: docNode}))
		assert.Equal(t, native.BadParm, e.SetOpt(native.OptTreeHandler, native.TreeHandlerParams{}))
	})

	t.Run("document node is referenced once", func(t *testing.T) {
		t.Parallel()
		e, h := newBound(t)
		const other native.Node = 7
		require.Equal(t, native.OK, e.SetOpt(native.OptDocumentNode, native.DocumentNodeParams{Node: other}))
		assert.Equal(t, 0, h.refs[docNode])
		assert.Equal(t, 1, h.refs[other])
		assert.Equal(t, native.BadParm, e.SetOpt(native.OptDocumentNode, native.DocumentNodeParams{}))

		require.Equal(t, native.OK, e.Destroy())
		assert.Equal(t, 0, h.refs[other])
	})

	t.Run("scripting before input only", func(t *testing.T) {
		t.Parallel()
		e, _ := newBound(t)
		require.Equal(t, native.OK, e.SetOpt(native.OptEnableScripting, native.EnableScriptingParams{Enable: true}))
		require.Equal(t, native.OK, e.SetOpt(native.OptPause, native.PauseParams{Paused: true}))
		require.Equal(t, native.Paused, e.ParseChunk([]byte("<p>")))
		assert.Equal(t, native.BadParm, e.SetOpt(native.OptEnableScripting, native.EnableScriptingParams{}))
		assert.Equal(t, native.OK, e.SetOpt(native.OptEnableStyling, native.EnableStylingParams{Enable: true}))
	})
}

func TestEngine_Feeding(t *testing.T) {
	t.Parallel()

	t.Run("requires a tree handler", func(t *testing.T) {
		t.Parallel()
		e, _ := engine.New("utf-8", true)
		assert.Equal(t, native.BadParm, e.ParseChunk([]byte("<p>")))
		assert.Equal(t, native.BadParm, e.Completed())
	})

	t.Run("insert outside a script", func(t *testing.T) {
		t.Parallel()
		e, _ := newBound(t)
		assert.Equal(t, native.BadParm, e.InsertChunk([]byte("<p>")))
	})

	t.Run("paused input is buffered", func(t *testing.T) {
		t.Parallel()
		e, h := newBound(t)
		require.Equal(t, native.OK, e.SetOpt(native.OptPause, native.PauseParams{Paused: true}))
		assert.Equal(t, native.Paused, e.ParseChunk([]byte("<p>a")))
		assert.Equal(t, native.Paused, e.Completed())
		assert.Equal(t, map[native.Node]int{docNode: 1}, h.refs)
	})

	t.Run("memory limit", func(t *testing.T) {
		t.Parallel()
		e, _ := newBound(t, engine.WithMemoryLimit(4))
		assert.Equal(t, native.NoMem, e.ParseChunk([]byte("<p>hello")))
		assert.Equal(t, native.NoMem, e.ParseChunk([]byte("x")), "the failure is sticky")
	})

	t.Run("destroyed", func(t *testing.T) {
		t.Parallel()
		e, h := newBound(t)
		require.Equal(t, native.OK, e.Destroy())
		assert.Equal(t, 0, h.refs[docNode])

		assert.Equal(t, native.Invalid, e.Destroy())
		assert.Equal(t, native.Invalid, e.ParseChunk([]byte("x")))
		assert.Equal(t, native.Invalid, e.InsertChunk([]byte("x")))
		assert.Equal(t, native.Invalid, e.SetOpt(native.OptPause, native.PauseParams{}))
	})
}

type treeCase struct {
	Name   string `yaml:"name"`
	Input  string `yaml:"input"`
	Quirks string `yaml:"quirks"`
	Tree   string `yaml:"tree"`
}

func loadTreeCases(t *testing.T) []treeCase {
	t.Helper()

	data, err := os.ReadFile("testdata/trees.yaml")
	require.NoError(t, err)

	var cases []treeCase
	require.NoError(t, yaml.Unmarshal(data, &cases))
	require.NotEmpty(t, cases)
	return cases
}

func buildTree(t *testing.T, chunks [][]byte) *dom.Document {
	t.Helper()

	doc := dom.New()
	err := htmlparse.WithParser("utf-8", true, doc, func(p *htmlparse.Parser) error {
		if err := p.SetDocumentRoot(doc.Root()); err != nil {
			return err
		}
		for _, chunk := range chunks {
			if _, err := p.Feed(chunk); err != nil {
				return err
			}
		}
		_, err := p.Complete()
		return err
	}, htmlparse.WithEngineFactory(engine.Factory(engine.WithScribble())))
	require.NoError(t, err)
	return doc
}

func TestEngine_Trees(t *testing.T) {
	t.Parallel()

	for _, tc := range loadTreeCases(t) {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			whole := buildTree(t, [][]byte{[]byte(tc.Input)})
			assert.Equal(t, tc.Tree, whole.Outline())
			assert.Equal(t, tc.Quirks, whole.Quirks().String())

			bytewise := make([][]byte, len(tc.Input))
			for i := range len(tc.Input) {
				bytewise[i] = []byte{tc.Input[i]}
			}
			split := buildTree(t, bytewise)
			assert.Equal(t, tc.Tree, split.Outline(), "byte by byte")
		})
	}
}
