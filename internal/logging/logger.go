package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
)

// defaultLogger is the package-level default logger instance.
//
//nolint:gochecknoglobals // Package-level logger is intentional for convenience
var (
	defaultLogger     *log.Logger
	defaultLoggerOnce sync.Once
)

func getDefaultLogger() *log.Logger {
	defaultLoggerOnce.Do(func() {
		defaultLogger = New("info")
	})
	return defaultLogger
}

// New creates a new logger writing logfmt to stderr with the specified level.
// Valid levels: "debug", "info", "warn", "error".
func New(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
		Formatter:       log.LogfmtFormatter,
		Prefix:          "html5bridge",
	})

	setLoggerLevel(logger, level)

	return logger
}

// NewInteractive creates a logger for humans watching a run. When stderr is a terminal
// the output uses the colored text formatter with parser ops and errors highlighted;
// otherwise it is the same as New.
func NewInteractive(level string) *log.Logger {
	if !isTerminal(os.Stderr) {
		return New(level)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Formatter:       log.TextFormatter,
		Prefix:          "html5bridge",
	})
	logger.SetStyles(interactiveStyles())
	setLoggerLevel(logger, level)

	return logger
}

// Discard returns a logger that drops everything, for callers that want a silent run.
func Discard() *log.Logger {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	logger.SetLevel(log.FatalLevel)
	return logger
}

func interactiveStyles() *log.Styles {
	styles := log.DefaultStyles()
	styles.Prefix = lipgloss.NewStyle().Faint(true)
	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
		SetString("DEBU").
		Foreground(lipgloss.Color("63"))
	styles.Keys[FieldOp] = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	styles.Keys[FieldError] = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))
	styles.Values[FieldError] = lipgloss.NewStyle().Bold(true)
	return styles
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func setLoggerLevel(logger *log.Logger, level string) {
	switch strings.ToLower(level) {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn", "warning":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
}

// Default returns the package-level default logger.
func Default() *log.Logger {
	return getDefaultLogger()
}

// OrDefault returns logger, or the default logger when logger is nil.
func OrDefault(logger *log.Logger) *log.Logger {
	if logger == nil {
		return Default()
	}
	return logger
}
