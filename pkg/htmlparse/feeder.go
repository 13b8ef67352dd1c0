package htmlparse

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/yaklabco/html5bridge/internal/logging"
	"github.com/yaklabco/html5bridge/pkg/native"
)

// DefaultChunkSize is the read size FeedReader uses when given a non-positive size.
const DefaultChunkSize = 4096

// State is the feeder state of a Parser.
type State int

const (
	StateIdle State = iota
	StateFeeding
	StatePaused
	StateNeedsMoreData
	StateCompleted
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFeeding:
		return "feeding"
	case StatePaused:
		return "paused"
	case StateNeedsMoreData:
		return "needs-more-data"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Status is the outcome of a feeding call.
type Status int

const (
	// StatusFailed accompanies a non-nil error.
	StatusFailed Status = iota
	// StatusNeedsMoreData means the chunk was consumed and more input may follow.
	StatusNeedsMoreData
	// StatusPaused means processing is suspended; input is buffered until Resume.
	StatusPaused
	// StatusCompleted means end of input was processed.
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusFailed:
		return "failed"
	case StatusNeedsMoreData:
		return "needs-more-data"
	case StatusPaused:
		return "paused"
	case StatusCompleted:
		return "completed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Feed hands one chunk to the engine. The chunk is processed completely unless the
// parser is paused, in which case it is buffered. Calling Feed from inside a tree
// callback panics with a *ProtocolViolation.
func (p *Parser) Feed(chunk []byte) (Status, error) {
	const op = "feed"
	p.enter(op)
	defer p.leave()

	if err := p.feedable(op); err != nil {
		return StatusFailed, err
	}
	p.started = true
	if p.state != StatePaused {
		p.state = StateFeeding
	}
	if p.recording {
		p.history = append(p.history, chunk...)
	}

	p.logger.Debug("feeding chunk", logging.FieldBytes, len(chunk), logging.FieldState, p.state)
	return p.settle(op, p.engine.ParseChunk(chunk))
}

// Insert hands script-generated bytes to the engine, ahead of any buffered input. It
// is only valid while a CompleteScript notification is on the stack; anywhere else it
// panics with a *ProtocolViolation.
func (p *Parser) Insert(chunk []byte) error {
	const op = "insert"
	if p.bridge == nil || !p.bridge.inScript() {
		violate(op, "called outside a script completion notification")
	}
	if err := p.usable(op); err != nil {
		return err
	}
	if p.state == StateCompleted {
		return fmt.Errorf("htmlparse: %s: %w", op, ErrCompleted)
	}

	p.logger.Debug("inserting chunk", logging.FieldBytes, len(chunk), logging.FieldDepth, p.bridge.scriptDepth)
	code := p.engine.InsertChunk(chunk)

	// A builder failure stays recorded on the bridge so the enclosing feed reports it too.
	if err := p.bridge.err; err != nil {
		p.failure = err
		p.state = StateFailed
		return err
	}
	switch code {
	case native.OK, native.NeedData, native.Paused:
		return nil
	default:
		err := newEngineError(op, code)
		p.failure = err
		p.state = StateFailed
		return err
	}
}

// Complete signals end of input. If the parser is paused the end of input is
// deferred and Complete reports StatusPaused; Resume finishes the document.
func (p *Parser) Complete() (Status, error) {
	const op = "complete"
	p.enter(op)
	defer p.leave()

	if p.state == StateCompleted && p.failure == nil && !p.closed {
		return StatusCompleted, nil
	}
	if err := p.feedable(op); err != nil {
		return StatusFailed, err
	}
	p.started = true
	p.completing = true
	if p.state != StatePaused {
		p.state = StateFeeding
	}

	p.logger.Debug("completing input", logging.FieldState, p.state)
	return p.settle(op, p.engine.Completed())
}

// Pause suspends processing. It may be called from inside a tree callback, in which
// case the enclosing feeding call returns StatusPaused once the callback returns.
func (p *Parser) Pause() error {
	const op = "pause"
	if err := p.usable(op); err != nil {
		return err
	}
	if err := p.setOpt(op, native.OptPause, native.PauseParams{Paused: true}); err != nil {
		return err
	}
	if p.active == 0 && p.state != StateCompleted {
		p.state = StatePaused
	}
	return nil
}

// Resume processes input buffered while paused. It is not reentrant.
func (p *Parser) Resume() (Status, error) {
	const op = "resume"
	p.enter(op)
	defer p.leave()

	if err := p.usable(op); err != nil {
		return StatusFailed, err
	}
	switch p.state {
	case StateCompleted:
		return StatusCompleted, nil
	case StatePaused:
	default:
		return StatusNeedsMoreData, nil
	}

	p.state = StateFeeding
	p.logger.Debug("resuming")
	return p.settle(op, p.engine.SetOpt(native.OptPause, native.PauseParams{Paused: false}))
}

// FeedReader feeds r in chunks of chunkSize bytes, checking ctx between chunks, and
// completes the input at EOF. If a callback pauses the parser the remaining input is
// buffered and the returned status is StatusPaused.
func (p *Parser) FeedReader(ctx context.Context, r io.Reader, chunkSize int) (Status, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return StatusFailed, fmt.Errorf("htmlparse: feed reader: %w", err)
		}
		n, rerr := r.Read(buf)
		if n > 0 {
			if status, err := p.Feed(buf[:n]); err != nil {
				return status, err
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return StatusFailed, fmt.Errorf("htmlparse: read input: %w", rerr)
		}
	}
	return p.Complete()
}

// feedable reports why input cannot be fed for op.
func (p *Parser) feedable(op string) error {
	if err := p.usable(op); err != nil {
		return err
	}
	if p.state == StateCompleted || (p.completing && op != "complete") {
		return fmt.Errorf("htmlparse: %s: %w", op, ErrCompleted)
	}
	if p.bridge == nil {
		violate(op, "no tree builder installed")
	}
	return nil
}

// settle maps an engine status onto the feeder state, restarting on a charset change.
func (p *Parser) settle(op string, code native.Error) (Status, error) {
	for {
		if err := p.bridge.takeError(); err != nil {
			return p.fail(op, err)
		}
		switch code {
		case native.OK, native.NeedData:
			p.updateRecording()
			if !p.recording {
				p.history = nil
			}
			if p.completing {
				p.state = StateCompleted
				p.history = nil
				return StatusCompleted, nil
			}
			p.state = StateNeedsMoreData
			return StatusNeedsMoreData, nil
		case native.Paused:
			if !p.recording {
				p.history = nil
			}
			p.state = StatePaused
			return StatusPaused, nil
		case native.EncodingChange:
			next, err := p.restart(op)
			if err != nil {
				return p.fail(op, err)
			}
			code = next
		default:
			return p.fail(op, newEngineError(op, code))
		}
	}
}

// restart replaces the engine with one fixed to the charset the document declared and
// replays the recorded input through it.
func (p *Parser) restart(op string) (native.Error, error) {
	name := p.bridge.changedTo
	p.bridge.changedTo = ""
	if name == "" {
		name, _ = p.engine.ReadCharset()
	}
	if !p.cfg.encodingRestarts {
		return native.OK, fmt.Errorf("htmlparse: %s: %w to %q", op, ErrEncodingChanged, name)
	}
	if p.restarts >= maxEncodingRestarts {
		p.logger.Warn("encoding restart limit reached", logging.FieldEncoding, name, logging.FieldRestarts, p.restarts)
		return native.OK, fmt.Errorf("htmlparse: %s: %w to %q after %d restarts", op, ErrEncodingChanged, name, p.restarts)
	}
	p.restarts++

	p.logger.Debug("restarting on encoding change",
		logging.FieldEncoding, name,
		logging.FieldRestarts, p.restarts,
		logging.FieldBytes, len(p.history))

	// The old engine stays in place until its replacement exists so Close can still
	// release its references.
	eng, code := p.cfg.factory(name, true)
	if code != native.OK {
		return native.OK, newEngineError("restart", code)
	}
	if code := p.engine.Destroy(); code.Failed() {
		p.logger.Debug("destroying engine for restart failed", logging.FieldCode, code)
	}
	p.engine = eng
	if err := p.bridge.takeError(); err != nil {
		return native.OK, err
	}
	p.encoding = name
	p.fixed = true
	p.recording = false
	if err := p.configure(); err != nil {
		return native.OK, err
	}

	// The history stays until the new engine settles; another restart replays it again.
	code = p.engine.ParseChunk(p.history)
	if p.completing && (code == native.OK || code == native.NeedData || code == native.Paused) {
		code = p.engine.Completed()
	}
	return code, nil
}

// updateRecording stops keeping input once the engine is confident of its charset.
func (p *Parser) updateRecording() {
	if !p.recording {
		return
	}
	if _, src := p.engine.ReadCharset(); src == native.CharsetConfident {
		p.recording = false
		p.history = nil
	}
}

// fail poisons the parser with err.
func (p *Parser) fail(op string, err error) (Status, error) {
	p.failure = err
	p.history = nil
	p.state = StateFailed
	p.logger.Debug("parser failed", logging.FieldOp, op, logging.FieldError, err)
	return StatusFailed, err
}
