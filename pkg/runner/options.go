// Package runner parses many HTML documents concurrently.
package runner

import (
	"github.com/charmbracelet/log"

	"github.com/yaklabco/html5bridge/internal/logging"
	"github.com/yaklabco/html5bridge/pkg/engine"
	"github.com/yaklabco/html5bridge/pkg/htmlparse"
)

// Option configures a Runner.
type Option func(*config)

type config struct {
	// jobs is the maximum number of concurrent workers.
	// 0 or negative means "auto" (runtime.NumCPU()).
	jobs int

	// chunkSize is the read size used to feed each document.
	chunkSize int

	encoding    string
	fixEncoding bool
	scripting   bool
	styling     bool
	nodeLimit   int
	memoryLimit int
	restarts    bool

	logger *log.Logger
}

func defaultConfig() config {
	return config{
		chunkSize: htmlparse.DefaultChunkSize,
		encoding:  "utf-8",
		restarts:  true,
	}
}

func (c *config) resolve() {
	c.logger = logging.OrDefault(c.logger)
	if c.chunkSize <= 0 {
		c.chunkSize = htmlparse.DefaultChunkSize
	}
}

// parserOptions returns the options a document's parser is built with.
func (c *config) parserOptions(logger *log.Logger) []htmlparse.Option {
	engineOpts := []engine.Option{engine.WithLogger(logger)}
	if c.memoryLimit > 0 {
		engineOpts = append(engineOpts, engine.WithMemoryLimit(c.memoryLimit))
	}
	return []htmlparse.Option{
		htmlparse.WithLogger(logger),
		htmlparse.WithEngineFactory(engine.Factory(engineOpts...)),
		htmlparse.WithEncodingRestarts(c.restarts),
	}
}

// WithJobs caps the number of documents parsed at once.
func WithJobs(n int) Option {
	return func(c *config) {
		c.jobs = n
	}
}

// WithChunkSize sets how many bytes are fed per Feed call.
func WithChunkSize(n int) Option {
	return func(c *config) {
		c.chunkSize = n
	}
}

// WithEncoding sets the charset hint for every document. With fixed set, document
// declarations never override it.
func WithEncoding(hint string, fixed bool) Option {
	return func(c *config) {
		c.encoding = hint
		c.fixEncoding = fixed
	}
}

// WithScripting parses documents as if scripting were enabled.
func WithScripting(enabled bool) Option {
	return func(c *config) {
		c.scripting = enabled
	}
}

// WithStyling enables style completion notifications.
func WithStyling(enabled bool) Option {
	return func(c *config) {
		c.styling = enabled
	}
}

// WithNodeLimit caps the live nodes of each document.
func WithNodeLimit(n int) Option {
	return func(c *config) {
		c.nodeLimit = n
	}
}

// WithMemoryLimit bounds the input each engine may buffer.
func WithMemoryLimit(n int) Option {
	return func(c *config) {
		c.memoryLimit = n
	}
}

// WithEncodingRestarts controls whether charset declarations restart a document.
func WithEncodingRestarts(enabled bool) Option {
	return func(c *config) {
		c.restarts = enabled
	}
}

// WithLogger sets the logger handed to every parser and engine.
func WithLogger(logger *log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithLogLevel logs logfmt lines to stderr at level ("debug", "info", "warn", "error").
// At "debug" every tree callback of every document is logged.
func WithLogLevel(level string) Option {
	return func(c *config) {
		c.logger = logging.New(level)
	}
}

// WithInteractiveLogging logs at level with colored output when stderr is a terminal.
func WithInteractiveLogging(level string) Option {
	return func(c *config) {
		c.logger = logging.NewInteractive(level)
	}
}

// WithoutLogging silences the runner and every parser and engine it creates.
func WithoutLogging() Option {
	return func(c *config) {
		c.logger = logging.Discard()
	}
}
