package htmlparse_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/html5bridge/pkg/dom"
	"github.com/yaklabco/html5bridge/pkg/htmlparse"
	"github.com/yaklabco/html5bridge/pkg/htmlparse/parsetest"
	"github.com/yaklabco/html5bridge/pkg/native"
)

// newParser returns a parser bound to a fresh document through a recorder.
func newParser(t *testing.T, opts ...htmlparse.Option) (*htmlparse.Parser, *dom.Document, *parsetest.Recorder) {
	t.Helper()
	return newParserWith(t, dom.New(), opts...)
}

func newParserWith(t *testing.T, doc *dom.Document, opts ...htmlparse.Option) (*htmlparse.Parser, *dom.Document, *parsetest.Recorder) {
	t.Helper()

	p, err := htmlparse.New("utf-8", true, opts...)
	require.NoError(t, err)
	rec := parsetest.NewRecorder(doc)
	require.NoError(t, p.InstallTreeBuilder(rec))
	require.NoError(t, p.SetDocumentRoot(doc.Root()))
	return p, doc, rec
}

// parseAll feeds input in one chunk and completes it.
func parseAll(t *testing.T, p *htmlparse.Parser, input string) {
	t.Helper()

	status, err := p.Feed([]byte(input))
	require.NoError(t, err)
	require.Equal(t, htmlparse.StatusNeedsMoreData, status)
	status, err = p.Complete()
	require.NoError(t, err)
	require.Equal(t, htmlparse.StatusCompleted, status)
}

// requireViolation runs fn and requires it to panic with a *ProtocolViolation.
func requireViolation(t *testing.T, op string, fn func()) {
	t.Helper()

	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected a protocol violation")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		require.ErrorIs(t, err, htmlparse.ErrProtocolViolation)

		var pv *htmlparse.ProtocolViolation
		require.ErrorAs(t, err, &pv)
		assert.Equal(t, op, pv.Op)
	}()
	fn()
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("unknown charset", func(t *testing.T) {
		t.Parallel()
		p, err := htmlparse.New("no-such-charset", false)
		require.Error(t, err)
		assert.Nil(t, p)
		assert.ErrorIs(t, err, htmlparse.ErrBadEncoding)

		var engErr *htmlparse.EngineError
		require.ErrorAs(t, err, &engErr)
		assert.Equal(t, "new", engErr.Op)
		assert.Equal(t, native.BadEncoding, engErr.Code)
	})

	t.Run("hint and fixed charset", func(t *testing.T) {
		t.Parallel()
		p, err := htmlparse.New("latin1", true)
		require.NoError(t, err)
		defer p.Close()

		name, src := p.Charset()
		assert.Equal(t, "windows-1252", name)
		assert.Equal(t, htmlparse.CharsetConfident, src)
		assert.Equal(t, htmlparse.StateIdle, p.State())
	})

	t.Run("no hint", func(t *testing.T) {
		t.Parallel()
		p, err := htmlparse.New("", false)
		require.NoError(t, err)
		defer p.Close()

		_, src := p.Charset()
		assert.Equal(t, htmlparse.CharsetUnknown, src)
	})

	t.Run("error handler rejected", func(t *testing.T) {
		t.Parallel()
		ff := &fakeFactory{build: func() *fakeEngine {
			return &fakeEngine{setOpt: map[native.OptType]native.Error{native.OptErrorHandler: native.BadParm}}
		}}
		_, err := htmlparse.New("utf-8", true,
			htmlparse.WithEngineFactory(ff.factory()),
			htmlparse.WithParseErrorHandler(func(htmlparse.ParseError) {}),
		)
		require.ErrorIs(t, err, htmlparse.ErrBadOption)
		require.Len(t, ff.engines, 1)
		assert.Equal(t, 1, ff.engines[0].destroyed)
	})
}

func TestParser_InstallTreeBuilder(t *testing.T) {
	t.Parallel()

	t.Run("nil builder", func(t *testing.T) {
		t.Parallel()
		p, err := htmlparse.New("utf-8", true)
		require.NoError(t, err)
		defer p.Close()

		require.ErrorIs(t, p.InstallTreeBuilder(nil), htmlparse.ErrBadParameter)
	})

	t.Run("replaced before first feed", func(t *testing.T) {
		t.Parallel()
		p, err := htmlparse.New("utf-8", true)
		require.NoError(t, err)
		defer p.Close()

		first := dom.New()
		second := dom.New()
		require.NoError(t, p.InstallTreeBuilder(first))
		require.NoError(t, p.InstallTreeBuilder(second))
		require.NoError(t, p.SetDocumentRoot(second.Root()))
		parseAll(t, p, "<p>x</p>")

		assert.False(t, first.RootNode().HasChildren())
		assert.True(t, second.RootNode().HasChildren())
	})

	t.Run("after feed", func(t *testing.T) {
		t.Parallel()
		p, _, _ := newParser(t)
		defer p.Close()

		_, err := p.Feed([]byte("<p>"))
		require.NoError(t, err)
		requireViolation(t, "install_tree_builder", func() {
			_ = p.InstallTreeBuilder(dom.New())
		})
	})

	t.Run("after close", func(t *testing.T) {
		t.Parallel()
		p, err := htmlparse.New("utf-8", true)
		require.NoError(t, err)
		require.NoError(t, p.Close())

		require.ErrorIs(t, p.InstallTreeBuilder(dom.New()), htmlparse.ErrClosed)
	})
}

func TestParser_Options(t *testing.T) {
	t.Parallel()

	t.Run("document root requires a builder", func(t *testing.T) {
		t.Parallel()
		p, err := htmlparse.New("utf-8", true)
		require.NoError(t, err)
		defer p.Close()

		err = p.SetDocumentRoot(dom.New().Root())
		require.ErrorIs(t, err, htmlparse.ErrBadOption)

		var engErr *htmlparse.EngineError
		require.ErrorAs(t, err, &engErr)
		assert.Equal(t, "set_document_root", engErr.Op)
	})

	t.Run("null document root", func(t *testing.T) {
		t.Parallel()
		p, _, _ := newParser(t)
		defer p.Close()

		require.ErrorIs(t, p.SetDocumentRoot(htmlparse.NullNode), htmlparse.ErrBadOption)
	})

	t.Run("scripting is fixed once input starts", func(t *testing.T) {
		t.Parallel()
		p, _, _ := newParser(t)
		defer p.Close()

		require.NoError(t, p.EnableScripting(true))
		_, err := p.Feed([]byte("<p>"))
		require.NoError(t, err)
		require.ErrorIs(t, p.EnableScripting(false), htmlparse.ErrBadOption)
	})

	t.Run("scripting changes noscript", func(t *testing.T) {
		t.Parallel()
		p, doc, _ := newParser(t)
		defer p.Close()

		require.NoError(t, p.EnableScripting(true))
		parseAll(t, p, "<noscript><p>x</p></noscript>")

		want := `| <html>
|   <head>
|     <noscript>
|       "<p>x</p>"
|   <body>
`
		assert.Equal(t, want, doc.Outline())
	})

	t.Run("styling gates style notifications", func(t *testing.T) {
		t.Parallel()
		for _, enabled := range []bool{false, true} {
			p, _, rec := newParser(t)
			require.NoError(t, p.EnableStyling(enabled))
			parseAll(t, p, "<style>p{}</style><style></style>")
			require.NoError(t, p.Close())

			want := 0
			if enabled {
				want = 2
			}
			assert.Equal(t, want, rec.Count("complete_style"), "styling=%v", enabled)
		}
	})

	t.Run("parse errors", func(t *testing.T) {
		t.Parallel()
		var errs []htmlparse.ParseError
		p, _, _ := newParser(t, htmlparse.WithParseErrorHandler(func(pe htmlparse.ParseError) {
			errs = append(errs, pe)
		}))
		defer p.Close()

		parseAll(t, p, "<p>\n<p id=a id=b>")
		require.Len(t, errs, 2)
		assert.Equal(t, htmlparse.ParseError{Line: 1, Column: 1, Message: "missing doctype"}, errs[0])
		assert.Equal(t, uint32(2), errs[1].Line)
		assert.Contains(t, errs[1].Message, "duplicate attribute id")
	})
}

func TestParser_Close(t *testing.T) {
	t.Parallel()

	t.Run("idempotent and releases references", func(t *testing.T) {
		t.Parallel()
		p, doc, rec := newParser(t)
		_, err := p.Feed([]byte("<div><p>open"))
		require.NoError(t, err)
		assert.NotEmpty(t, rec.Outstanding())

		require.NoError(t, p.Close())
		require.NoError(t, p.Close())
		assert.Empty(t, rec.Outstanding())
		assert.Equal(t, htmlparse.StateClosed, p.State())

		name, src := p.Charset()
		assert.Empty(t, name)
		assert.Equal(t, htmlparse.CharsetUnknown, src)

		_, err = p.Feed([]byte("x"))
		require.ErrorIs(t, err, htmlparse.ErrClosed)
		_, err = p.Complete()
		require.ErrorIs(t, err, htmlparse.ErrClosed)

		// The tree stays with the builder.
		assert.Len(t, dom.Elements(doc.RootNode(), "p"), 1)
	})

	t.Run("destroy failure", func(t *testing.T) {
		t.Parallel()
		ff := &fakeFactory{build: func() *fakeEngine { return &fakeEngine{destroy: native.Invalid} }}
		p, err := htmlparse.New("utf-8", true, htmlparse.WithEngineFactory(ff.factory()))
		require.NoError(t, err)

		err = p.Close()
		require.ErrorIs(t, err, htmlparse.ErrInvalid)
		require.ErrorAs(t, err, new(*htmlparse.EngineError))
		assert.NoError(t, p.Close())
	})

	t.Run("from inside a callback", func(t *testing.T) {
		t.Parallel()
		var p *htmlparse.Parser
		doc := dom.New(dom.WithScriptHandler(func(htmlparse.NodeID) error {
			return p.Close()
		}))
		p, _, _ = newParserWith(t, doc)

		requireViolation(t, "close", func() {
			_, _ = p.Feed([]byte("<script></script>"))
		})
	})
}

func TestWithParser(t *testing.T) {
	t.Parallel()

	t.Run("closes after success", func(t *testing.T) {
		t.Parallel()
		doc := dom.New()
		rec := parsetest.NewRecorder(doc)

		err := htmlparse.WithParser("utf-8", true, rec, func(p *htmlparse.Parser) error {
			if err := p.SetDocumentRoot(doc.Root()); err != nil {
				return err
			}
			_, err := p.Feed([]byte("<ul><li>a<li>b</ul>"))
			return err
		})
		require.NoError(t, err)
		assert.Empty(t, rec.Outstanding())
		assert.Len(t, dom.Elements(doc.RootNode(), "li"), 2)
	})

	t.Run("returns the callback error", func(t *testing.T) {
		t.Parallel()
		sentinel := errors.New("stop")
		err := htmlparse.WithParser("utf-8", true, dom.New(), func(*htmlparse.Parser) error {
			return sentinel
		})
		require.ErrorIs(t, err, sentinel)
	})

	t.Run("nil builder", func(t *testing.T) {
		t.Parallel()
		err := htmlparse.WithParser("utf-8", true, nil, func(*htmlparse.Parser) error {
			t.Fatal("fn must not run")
			return nil
		})
		require.ErrorIs(t, err, htmlparse.ErrBadParameter)
	})
}

func TestErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		op   string
		code native.Error
		want error
	}{
		{"feed", native.NoMem, htmlparse.ErrNoMemory},
		{"feed", native.BadEncoding, htmlparse.ErrBadEncoding},
		{"feed", native.BadParm, htmlparse.ErrBadParameter},
		{"feed", native.Invalid, htmlparse.ErrInvalid},
		{"feed", native.Unknown, htmlparse.ErrUnknown},
		{"feed", native.FileNotFound, htmlparse.ErrUnknown},
		{"enable_scripting", native.BadParm, htmlparse.ErrBadOption},
		{"pause", native.Invalid, htmlparse.ErrBadOption},
	}

	for _, tt := range tests {
		t.Run(tt.op+"/"+tt.code.String(), func(t *testing.T) {
			t.Parallel()
			ff := &fakeFactory{build: func() *fakeEngine {
				return &fakeEngine{
					parse:  func(native.TreeHandler) native.Error { return tt.code },
					setOpt: map[native.OptType]native.Error{native.OptEnableScripting: tt.code, native.OptPause: tt.code},
				}
			}}
			p, err := htmlparse.New("utf-8", true, htmlparse.WithEngineFactory(ff.factory()))
			require.NoError(t, err)
			require.NoError(t, p.InstallTreeBuilder(dom.New()))

			switch tt.op {
			case "feed":
				var status htmlparse.Status
				status, err = p.Feed([]byte("x"))
				assert.Equal(t, htmlparse.StatusFailed, status)
			case "enable_scripting":
				err = p.EnableScripting(true)
			case "pause":
				err = p.Pause()
			}
			require.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.op)
		})
	}
}

func TestCallbackError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := &htmlparse.CallbackError{Op: "create_text", Err: cause}
	assert.ErrorIs(t, err, htmlparse.ErrCallbackFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "htmlparse: tree callback create_text: boom", err.Error())
}
