package htmlparse

import (
	"github.com/charmbracelet/log"

	"github.com/yaklabco/html5bridge/internal/logging"
	"github.com/yaklabco/html5bridge/pkg/engine"
	"github.com/yaklabco/html5bridge/pkg/native"
)

// maxEncodingRestarts bounds how often one document may restart on a charset change.
const maxEncodingRestarts = 3

// Option configures a Parser.
type Option func(*config)

type config struct {
	logger           *log.Logger
	factory          native.Factory
	onParseError     func(ParseError)
	encodingRestarts bool
}

func defaultConfig() config {
	return config{
		encodingRestarts: true,
	}
}

func (c *config) resolve() {
	c.logger = logging.OrDefault(c.logger)
	if c.factory == nil {
		c.factory = engine.Factory()
	}
}

// WithLogger sets the logger for parser, bridge and feeder diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithEngineFactory replaces the engine constructor. The default is the reference engine.
func WithEngineFactory(factory native.Factory) Option {
	return func(c *config) {
		c.factory = factory
	}
}

// WithParseErrorHandler installs a sink for recoverable parse errors.
func WithParseErrorHandler(fn func(ParseError)) Option {
	return func(c *config) {
		c.onParseError = fn
	}
}

// WithEncodingRestarts controls whether a document charset declaration restarts the
// parse with the declared charset. When disabled, Feed reports ErrEncodingChanged.
func WithEncodingRestarts(enabled bool) Option {
	return func(c *config) {
		c.encodingRestarts = enabled
	}
}
