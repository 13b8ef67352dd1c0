package engine

import "github.com/charmbracelet/log"

// Option configures an Engine.
type Option func(*config)

type config struct {
	logger      *log.Logger
	scribble    bool
	memoryLimit int
}

// WithLogger sets the logger for engine diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithScribble makes the engine overwrite every string span it handed to a tree
// callback as soon as the callback returns. Clients that keep borrowed memory see
// garbage instead of plausible data.
func WithScribble() Option {
	return func(c *config) {
		c.scribble = true
	}
}

// WithMemoryLimit bounds the bytes of input the engine buffers. Exceeding it fails
// the feeding call with NoMem. Zero means unlimited.
func WithMemoryLimit(n int) Option {
	return func(c *config) {
		c.memoryLimit = n
	}
}
