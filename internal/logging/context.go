package logging

import (
	"context"

	"github.com/charmbracelet/log"
)

type workerLoggerKey struct{}

// WithLogger returns a context carrying logger. A runner worker stores its
// worker-scoped logger here before parsing the documents handed to it.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, workerLoggerKey{}, logger)
}

// FromContext returns the logger stored by WithLogger, or the default logger.
func FromContext(ctx context.Context) *log.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(workerLoggerKey{}).(*log.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// ForDocument returns the context logger tagged with the document name, for the
// parser and engine of that one document.
func ForDocument(ctx context.Context, name string) *log.Logger {
	return FromContext(ctx).With(FieldDocument, name)
}
