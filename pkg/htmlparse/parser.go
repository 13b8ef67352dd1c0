package htmlparse

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/html5bridge/internal/logging"
	"github.com/yaklabco/html5bridge/pkg/native"
)

// Parser owns one engine instance and feeds it chunked input.
//
// A Parser is not safe for concurrent use. All TreeBuilder callbacks run on the
// goroutine that called Feed, Insert, Complete, Resume or Close.
type Parser struct {
	cfg    config
	logger *log.Logger

	engine   native.Engine
	encoding string
	fixed    bool
	bridge   *bridge

	// Options replayed onto a fresh engine after an encoding restart.
	docRoot      NodeID
	hasDocRoot   bool
	scripting    bool
	hasScripting bool
	styling      bool
	hasStyling   bool

	state      State
	started    bool
	active     int
	completing bool

	// history holds every fed byte while the charset is still tentative.
	history   []byte
	recording bool
	restarts  int

	failure error
	closed  bool
}

// New creates a parser whose engine starts decoding with encodingHint. When fixEncoding
// is set the charset is never overridden by document content.
func New(encodingHint string, fixEncoding bool, opts ...Option) (*Parser, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.resolve()

	eng, code := cfg.factory(encodingHint, fixEncoding)
	if code != native.OK {
		return nil, newEngineError("new", code)
	}

	p := &Parser{
		cfg:       cfg,
		logger:    cfg.logger,
		engine:    eng,
		encoding:  encodingHint,
		fixed:     fixEncoding,
		state:     StateIdle,
		recording: cfg.encodingRestarts && !fixEncoding,
	}
	if err := p.configure(); err != nil {
		_ = eng.Destroy()
		return nil, err
	}
	p.updateRecording()

	p.logger.Debug("parser created", logging.FieldEncoding, encodingHint, logging.FieldFixed, fixEncoding)
	return p, nil
}

// WithParser creates a parser, installs builder, runs fn and closes the parser, also
// when fn fails or panics. A Close failure is returned if fn succeeded.
func WithParser(
	encodingHint string,
	fixEncoding bool,
	builder TreeBuilder,
	fn func(*Parser) error,
	opts ...Option,
) (err error) {
	p, err := New(encodingHint, fixEncoding, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := p.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := p.InstallTreeBuilder(builder); err != nil {
		return err
	}
	return fn(p)
}

// InstallTreeBuilder binds builder as the target of every tree callback. Installing
// again before the first feed replaces the binding. Installing after input has been
// fed panics with a *ProtocolViolation.
func (p *Parser) InstallTreeBuilder(builder TreeBuilder) error {
	const op = "install_tree_builder"
	if builder == nil {
		return fmt.Errorf("htmlparse: %s: %w: nil tree builder", op, ErrBadParameter)
	}
	if p.active > 0 {
		violate(op, "called from inside a tree callback")
	}
	if err := p.usable(op); err != nil {
		return err
	}
	if p.started {
		violate(op, "input has already been fed")
	}

	br := newBridge(builder, p.logger)
	if err := p.setOpt(op, native.OptTreeHandler, native.TreeHandlerParams{Handler: br}); err != nil {
		return err
	}
	p.bridge = br
	return nil
}

// SetDocumentRoot sets the node that becomes the root of the constructed tree.
func (p *Parser) SetDocumentRoot(root NodeID) error {
	const op = "set_document_root"
	if p.active > 0 {
		violate(op, "called from inside a tree callback")
	}
	if err := p.usable(op); err != nil {
		return err
	}
	err := p.setOpt(op, native.OptDocumentNode, native.DocumentNodeParams{Node: toNativeNode(root)})
	if err != nil {
		return err
	}
	p.docRoot, p.hasDocRoot = root, true
	return nil
}

// EnableScripting sets the scripting flag, which changes how noscript is parsed.
func (p *Parser) EnableScripting(enable bool) error {
	const op = "enable_scripting"
	if p.active > 0 {
		violate(op, "called from inside a tree callback")
	}
	if err := p.usable(op); err != nil {
		return err
	}
	if err := p.setOpt(op, native.OptEnableScripting, native.EnableScriptingParams{Enable: enable}); err != nil {
		return err
	}
	p.scripting, p.hasScripting = enable, true
	return nil
}

// EnableStyling controls whether CompleteStyle notifications are delivered.
func (p *Parser) EnableStyling(enable bool) error {
	const op = "enable_styling"
	if p.active > 0 {
		violate(op, "called from inside a tree callback")
	}
	if err := p.usable(op); err != nil {
		return err
	}
	if err := p.setOpt(op, native.OptEnableStyling, native.EnableStylingParams{Enable: enable}); err != nil {
		return err
	}
	p.styling, p.hasStyling = enable, true
	return nil
}

// Charset returns the charset the engine is currently decoding with.
func (p *Parser) Charset() (string, CharsetSource) {
	if p.closed || p.engine == nil {
		return "", CharsetUnknown
	}
	name, src := p.engine.ReadCharset()
	return name, fromNativeCharsetSource(src)
}

// State returns the feeder state.
func (p *Parser) State() State {
	return p.state
}

// Close destroys the engine. The engine releases every node it still references,
// so UnrefNode callbacks may run. Close is idempotent. Calling it from inside a tree
// callback panics with a *ProtocolViolation.
func (p *Parser) Close() error {
	const op = "close"
	if p.closed {
		return nil
	}
	p.enter(op)
	defer p.leave()

	code := native.OK
	if p.engine != nil {
		code = p.engine.Destroy()
	}
	p.engine = nil
	p.closed = true
	p.state = StateClosed
	p.history = nil

	var cbErr error
	if p.bridge != nil {
		cbErr = p.bridge.takeError()
	}
	p.logger.Debug("parser closed", logging.FieldCode, code)
	if cbErr != nil {
		return cbErr
	}
	if code.Failed() {
		return newEngineError(op, code)
	}
	return nil
}

// configure applies the parse error sink and every option set so far to the current
// engine.
func (p *Parser) configure() error {
	if fn := p.cfg.onParseError; fn != nil {
		handler := native.ErrorHandlerParams{Handler: func(line, col uint32, message string) {
			fn(fromNativeParseError(line, col, message))
		}}
		if err := p.setOpt("set_error_handler", native.OptErrorHandler, handler); err != nil {
			return err
		}
	}
	if p.bridge != nil {
		if err := p.setOpt("install_tree_builder", native.OptTreeHandler, native.TreeHandlerParams{Handler: p.bridge}); err != nil {
			return err
		}
	}
	if p.hasDocRoot {
		if err := p.setOpt("set_document_root", native.OptDocumentNode, native.DocumentNodeParams{Node: toNativeNode(p.docRoot)}); err != nil {
			return err
		}
	}
	if p.hasScripting {
		if err := p.setOpt("enable_scripting", native.OptEnableScripting, native.EnableScriptingParams{Enable: p.scripting}); err != nil {
			return err
		}
	}
	if p.hasStyling {
		if err := p.setOpt("enable_styling", native.OptEnableStyling, native.EnableStylingParams{Enable: p.styling}); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) setOpt(op string, opt native.OptType, params native.OptParams) error {
	code := p.engine.SetOpt(opt, params)
	if code != native.OK {
		p.logger.Debug("option rejected", logging.FieldOption, op, logging.FieldCode, code)
		return newEngineError(op, code)
	}
	return nil
}

// usable reports why the parser cannot accept op, if it cannot.
func (p *Parser) usable(op string) error {
	if p.closed {
		return fmt.Errorf("htmlparse: %s: %w", op, ErrClosed)
	}
	if p.failure != nil {
		return fmt.Errorf("htmlparse: %s: %w: %w", op, ErrHandleFailed, p.failure)
	}
	return nil
}

func (p *Parser) enter(op string) {
	if p.active > 0 {
		violate(op, "called from inside a tree callback")
	}
	p.active++
}

func (p *Parser) leave() {
	p.active--
}

func isOptionOp(op string) bool {
	switch op {
	case "install_tree_builder", "set_document_root", "enable_scripting", "enable_styling",
		"set_error_handler", "pause":
		return true
	default:
		return false
	}
}
