package logging_test

import (
	"context"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/html5bridge/internal/logging"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		level    string
		expected log.Level
	}{
		{"debug level", "debug", log.DebugLevel},
		{"info level", "info", log.InfoLevel},
		{"warn level", "warn", log.WarnLevel},
		{"warning level", "warning", log.WarnLevel},
		{"error level", "error", log.ErrorLevel},
		{"invalid defaults to info", "invalid", log.InfoLevel},
		{"empty defaults to info", "", log.InfoLevel},
		{"case insensitive DEBUG", "DEBUG", log.DebugLevel},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			logger := logging.New(testCase.level)
			require.NotNil(t, logger)
			assert.Equal(t, testCase.expected, logger.GetLevel())
		})
	}
}

func TestNewInteractive(t *testing.T) {
	t.Parallel()

	// Test output is not a terminal, so the level is all that differs.
	logger := logging.NewInteractive("debug")
	require.NotNil(t, logger)
	assert.Equal(t, log.DebugLevel, logger.GetLevel())

	assert.Equal(t, log.InfoLevel, logging.NewInteractive("bogus").GetLevel())
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	logger := logging.Discard()
	require.NotNil(t, logger)
	assert.Equal(t, log.FatalLevel, logger.GetLevel())
}

func TestOrDefault(t *testing.T) {
	t.Parallel()

	custom := logging.New("warn")
	assert.Same(t, custom, logging.OrDefault(custom))
	assert.NotNil(t, logging.OrDefault(nil))
}

func TestContext(t *testing.T) {
	t.Parallel()

	custom := logging.New("debug")
	ctx := logging.WithLogger(context.Background(), custom)
	assert.Same(t, custom, logging.FromContext(ctx))

	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	assert.Same(t, logging.Default(), logging.FromContext(logging.WithLogger(context.Background(), nil)))
}

func TestForDocument(t *testing.T) {
	t.Parallel()

	worker := logging.New("debug")
	ctx := logging.WithLogger(context.Background(), worker)

	doc := logging.ForDocument(ctx, "index.html")
	require.NotNil(t, doc)
	assert.NotSame(t, worker, doc)
	assert.Equal(t, log.DebugLevel, doc.GetLevel())
}
