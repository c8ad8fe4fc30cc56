// Package logging builds the charmbracelet/log loggers used across mirror.
//
// The TUI owns the terminal, so in that mode logs go to a file when --debug
// is set and are discarded otherwise. Plain commands log to stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w at level.
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "mirror",
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return New(io.Discard, log.FatalLevel)
}

// Stderr is the logger for non-interactive commands.
func Stderr(debug bool) *log.Logger {
	level := log.WarnLevel
	if debug {
		level = log.DebugLevel
	}
	return New(os.Stderr, level)
}

// OpenFile opens (creating if needed) the debug log at path and returns a
// debug-level logger on it. The caller closes the returned file.
func OpenFile(path string) (*log.Logger, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log %s: %w", path, err)
	}
	l := New(f, log.DebugLevel)
	l.SetReportCaller(true)
	return l, f, nil
}

// DefaultPath returns ~/.config/mirror/mirror.log
func DefaultPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "mirror", "mirror.log"), nil
}
