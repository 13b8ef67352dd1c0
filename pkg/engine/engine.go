// Package engine is a self-contained HTML5 tokenizer and tree-construction engine
// that speaks the native engine contract.
//
// Tokenization is delegated to golang.org/x/net/html one complete token at a time.
// Tree construction covers the insertion modes a document passes through outside
// tables, templates and framesets: doctype and quirks determination, implicit
// html/head/body, raw text and RCDATA elements, void elements, implied end tags,
// formatting element recovery, foster parenting next to tables, and foreign SVG and
// MathML content.
package engine

import (
	"bytes"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/html5bridge/internal/logging"
	"github.com/yaklabco/html5bridge/pkg/native"
)

// Engine is one parse of one document.
type Engine struct {
	cfg    config
	logger *log.Logger

	handler   native.TreeHandler
	onError   func(line, col uint32, message string)
	document  native.Node
	scripting bool
	styling   bool

	dec      *decoder
	source   native.CharsetSource
	text     []byte
	inserted int
	line     uint32
	col      uint32

	started   bool
	eof       bool
	paused    bool
	changed   bool
	stopped   bool
	destroyed bool

	// err is the first failing status a tree callback returned.
	err native.Error

	tree
}

var _ native.Engine = (*Engine)(nil)

// New creates an engine that decodes input as encoding. An empty encoding selects
// windows-1252 with an unknown source. With fixEncoding set the charset is never
// changed by a byte order mark or by document content.
func New(encoding string, fixEncoding bool, opts ...Option) (*Engine, native.Error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	source := native.CharsetTentative
	label := encoding
	switch {
	case fixEncoding:
		source = native.CharsetConfident
	case encoding == "":
		source = native.CharsetUnknown
		label = defaultCharset
	}
	if fixEncoding && encoding == "" {
		label = defaultCharset
	}

	dec, err := newDecoder(label, !fixEncoding)
	if err != nil {
		return nil, native.BadEncoding
	}

	e := &Engine{
		cfg:    cfg,
		logger: logging.OrDefault(cfg.logger),
		dec:    dec,
		source: source,
		line:   1,
		col:    1,
	}
	e.logger.Debug("engine created", logging.FieldEncoding, dec.name, logging.FieldFixed, fixEncoding)
	return e, native.OK
}

// Factory returns a native.Factory that creates engines with opts.
func Factory(opts ...Option) native.Factory {
	return func(encoding string, fixEncoding bool) (native.Engine, native.Error) {
		e, code := New(encoding, fixEncoding, opts...)
		if code != native.OK {
			return nil, code
		}
		return e, native.OK
	}
}

// SetOpt applies one option. Options that depend on input not having started, or
// that this engine does not implement, are rejected with BadParm.
func (e *Engine) SetOpt(opt native.OptType, params native.OptParams) native.Error {
	if e.destroyed {
		return native.Invalid
	}
	if params == nil || params.OptType() != opt {
		return native.BadParm
	}

	switch p := params.(type) {
	case native.ErrorHandlerParams:
		e.onError = p.Handler
	case native.TreeHandlerParams:
		if p.Handler == nil {
			return native.BadParm
		}
		e.handler = p.Handler
	case native.DocumentNodeParams:
		if p.Node == native.NullNode || e.handler == nil || e.started {
			return native.BadParm
		}
		if e.document != native.NullNode {
			e.unref(e.document)
		}
		e.document = p.Node
		e.ref(e.document)
	case native.EnableScriptingParams:
		if e.started {
			return native.BadParm
		}
		e.scripting = p.Enable
	case native.EnableStylingParams:
		e.styling = p.Enable
	case native.PauseParams:
		return e.setPaused(p.Paused)
	default:
		// Raw token delivery and forced content models only make sense without a
		// tree builder.
		return native.BadParm
	}
	return native.OK
}

func (e *Engine) setPaused(paused bool) native.Error {
	if !paused && e.paused {
		e.paused = false
		if e.started && !e.stopped {
			return e.run()
		}
	}
	e.paused = paused
	return native.OK
}

// ParseChunk appends data to the input and processes every complete token.
func (e *Engine) ParseChunk(data []byte) native.Error {
	if code := e.feedable(); code != native.OK {
		return code
	}
	e.started = true

	decoded, bom, err := e.dec.write(data, false)
	if err != nil {
		e.logger.Debug("decode failed", logging.FieldError, err)
		return native.Invalid
	}
	if bom {
		e.source = native.CharsetConfident
	}
	e.text = append(e.text, decoded...)

	if e.cfg.memoryLimit > 0 && len(e.text)+e.dec.buffered() > e.cfg.memoryLimit {
		e.logger.Debug("memory limit exceeded", logging.FieldBytes, len(e.text)+e.dec.buffered())
		e.err = native.NoMem
		return native.NoMem
	}
	if e.paused {
		return native.Paused
	}
	return e.run()
}

// InsertChunk places UTF-8 data ahead of the unprocessed input. It is only valid
// inside a CompleteScript callback; the data is processed once the callback returns.
func (e *Engine) InsertChunk(data []byte) native.Error {
	if e.destroyed || e.stopped || e.changed {
		return native.Invalid
	}
	if e.scriptDepth == 0 {
		return native.BadParm
	}
	text := make([]byte, 0, len(data)+len(e.text))
	text = append(text, data...)
	e.text = append(text, e.text...)
	e.inserted += len(data)
	return native.OK
}

// Completed marks the end of input and finishes the document. While paused the end
// of input is remembered and processed on resume.
func (e *Engine) Completed() native.Error {
	if code := e.feedable(); code != native.OK {
		return code
	}
	e.started = true
	e.eof = true

	decoded, bom, err := e.dec.write(nil, true)
	if err != nil {
		return native.Invalid
	}
	if bom {
		e.source = native.CharsetConfident
	}
	e.text = append(e.text, decoded...)

	if e.paused {
		return native.Paused
	}
	return e.run()
}

// ReadCharset returns the active charset and how it was chosen.
func (e *Engine) ReadCharset() (string, native.CharsetSource) {
	return e.dec.name, e.source
}

// Destroy releases every node the engine still references.
func (e *Engine) Destroy() native.Error {
	if e.destroyed {
		return native.Invalid
	}
	e.release()
	if e.document != native.NullNode {
		e.unref(e.document)
		e.document = native.NullNode
	}
	e.destroyed = true
	e.text = nil
	e.logger.Debug("engine destroyed")
	return native.OK
}

func (e *Engine) feedable() native.Error {
	switch {
	case e.destroyed, e.stopped, e.changed:
		return native.Invalid
	case e.err != native.OK:
		return e.err
	case e.handler == nil || e.document == native.NullNode:
		return native.BadParm
	case e.eof:
		return native.Invalid
	}
	return native.OK
}

// run processes complete tokens until the input runs dry, the engine pauses, the
// document changes charset or a callback fails.
func (e *Engine) run() native.Error {
	for {
		switch {
		case e.err != native.OK:
			return e.err
		case e.changed:
			return native.EncodingChange
		case e.paused:
			return native.Paused
		case e.stopped:
			return native.OK
		}

		tok, n, ok := e.next()
		if !ok {
			if !e.eof {
				return native.NeedData
			}
			e.finish()
			continue
		}
		e.consume(n)
		e.process(&tok)
	}
}

// parseError reports a recoverable error at tok's position.
func (e *Engine) parseError(tok *token, message string) {
	e.logger.Debug("parse error", logging.FieldLine, tok.line, logging.FieldColumn, tok.col, logging.FieldMessage, message)
	if e.onError != nil {
		e.onError(tok.line, tok.col, message)
	}
}

// changeEncoding handles a charset declared by the document. A declaration naming
// the active charset only makes it confident.
func (e *Engine) changeEncoding(label string) {
	if e.source != native.CharsetTentative && e.source != native.CharsetUnknown {
		return
	}
	name := lookupCharset(label)
	switch name {
	case "":
		return
	case "utf-16be", "utf-16le":
		name = "utf-8"
	case "x-user-defined":
		name = defaultCharset
	}
	if name == e.dec.name {
		e.source = native.CharsetConfident
		return
	}

	e.logger.Debug("document declared charset", logging.FieldEncoding, name)
	e.changed = true
	e.source = native.CharsetConfident
	e.dec.name = name
	e.encodingChange(name)
}

// scribble overwrites a span buffer after the callback that borrowed it returned.
func (e *Engine) scribble(buf []byte) {
	if e.cfg.scribble {
		copy(buf, bytes.Repeat([]byte{0xAA}, len(buf)))
	}
}
