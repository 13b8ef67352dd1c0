package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/html5bridge/internal/logging"
	"github.com/yaklabco/html5bridge/pkg/dom"
	"github.com/yaklabco/html5bridge/pkg/htmlparse"
)

// errPaused is returned when a document is left paused after its input ran out.
var errPaused = errors.New("document left paused")

// Runner parses documents on a pool of workers. Every document gets its own parser
// and tree; nothing is shared between workers.
type Runner struct {
	cfg config
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.resolve()
	return &Runner{cfg: cfg}
}

// Logger returns the logger documents are logged through.
func (r *Runner) Logger() *log.Logger {
	return r.cfg.logger
}

type job struct {
	index  int
	source Source
}

type indexedOutcome struct {
	index   int
	outcome DocumentOutcome
}

// Run parses sources concurrently and returns their outcomes in source order with
// aggregate stats. On cancellation it returns what finished along with the context error.
func (r *Runner) Run(ctx context.Context, sources []Source) (*Result, error) {
	result := &Result{
		Documents: make([]DocumentOutcome, 0, len(sources)),
		Stats:     newStats(),
	}
	result.Stats.DocumentsQueued = len(sources)

	if len(sources) == 0 {
		return result, nil
	}

	jobs := r.cfg.jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	if jobs > len(sources) {
		jobs = len(sources)
	}

	workCh := make(chan job)
	outCh := make(chan indexedOutcome)

	var wg sync.WaitGroup

	for worker := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, worker, workCh, outCh)
		}()
	}

	go func() {
		defer close(workCh)
		for i, src := range sources {
			select {
			case <-ctx.Done():
				return
			case workCh <- job{index: i, source: src}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	// Workers finish out of order.
	outcomes := make(map[int]DocumentOutcome, len(sources))
	for out := range outCh {
		outcomes[out.index] = out.outcome
	}

	for i := range sources {
		if outcome, ok := outcomes[i]; ok {
			result.accumulate(outcome)
		}
	}

	r.cfg.logger.Debug("run finished",
		logging.FieldJobs, jobs,
		logging.FieldDocumentsParsed, result.Stats.DocumentsParsed,
		logging.FieldDocumentsErrored, result.Stats.DocumentsErrored,
		logging.FieldDocumentsRestarted, result.Stats.DocumentsRestarted)

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	return result, nil
}

func (r *Runner) worker(ctx context.Context, id int, workCh <-chan job, outCh chan<- indexedOutcome) {
	logger := r.cfg.logger.With(logging.FieldWorker, id)
	ctx = logging.WithLogger(ctx, logger)

	for j := range workCh {
		select {
		case <-ctx.Done():
			return
		default:
		}

		outcome := r.parse(ctx, j.source)
		logger.Debug("document done",
			logging.FieldDocument, outcome.Name,
			logging.FieldBytes, outcome.Bytes,
			logging.FieldError, outcome.Error)

		select {
		case <-ctx.Done():
			return
		case outCh <- indexedOutcome{index: j.index, outcome: outcome}:
		}
	}
}

// parse builds one document from src.
func (r *Runner) parse(ctx context.Context, src Source) DocumentOutcome {
	outcome := DocumentOutcome{Name: src.Name}

	rc, err := src.Open()
	if err != nil {
		outcome.Error = err
		return outcome
	}
	defer func() { _ = rc.Close() }()

	var domOpts []dom.Option
	if r.cfg.nodeLimit > 0 {
		domOpts = append(domOpts, dom.WithNodeLimit(r.cfg.nodeLimit))
	}
	doc := dom.New(domOpts...)
	outcome.Document = doc

	logger := logging.ForDocument(ctx, src.Name)
	in := &countingReader{r: rc}
	opts := append(r.cfg.parserOptions(logger), htmlparse.WithParseErrorHandler(func(pe htmlparse.ParseError) {
		outcome.ParseErrors = append(outcome.ParseErrors, pe)
	}))

	err = htmlparse.WithParser(r.cfg.encoding, r.cfg.fixEncoding, doc, func(p *htmlparse.Parser) error {
		if err := p.SetDocumentRoot(doc.Root()); err != nil {
			return err
		}
		if err := p.EnableScripting(r.cfg.scripting); err != nil {
			return err
		}
		if err := p.EnableStyling(r.cfg.styling); err != nil {
			return err
		}

		status, err := p.FeedReader(ctx, in, r.cfg.chunkSize)
		outcome.Charset, outcome.CharsetSource = p.Charset()
		if err != nil {
			return err
		}
		if status != htmlparse.StatusCompleted {
			return errPaused
		}
		return nil
	}, opts...)

	outcome.Bytes = in.n
	doc.Collect()
	if err != nil {
		outcome.Error = fmt.Errorf("parse %s: %w", src.Name, err)
	}
	return outcome
}
