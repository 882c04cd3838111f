// Package logging sets up the charmbracelet/log logger shared by tada's
// packages. The TUI owns the terminal, so logs default to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/store/jsonstore"
)

const defaultFileName = "tada.log"

// Options control the logger.
type Options struct {
	Level string
	// File is the destination path; "-" is stderr, "" the default file.
	File string
}

// New returns a logger and a closer for its destination.
func New(opt Options) (*log.Logger, io.Closer, error) {
	w, closer, err := open(opt.File)
	if err != nil {
		return nil, nil, err
	}
	logger := log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(opt.Level),
		ReportTimestamp: true,
		Prefix:          "tada",
	})
	return logger, closer, nil
}

// Discard returns a logger that drops everything. Used by tests and as the
// fallback when nothing is configured.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// ParseLevel maps a level name to a log.Level, defaulting to info.
func ParseLevel(level string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func open(path string) (io.Writer, io.Closer, error) {
	if path == "-" {
		return os.Stderr, nopCloser{}, nil
	}
	if path == "" {
		p, err := jsonstore.Path(defaultFileName)
		if err != nil {
			return nil, nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, f, nil
}

// Stderr returns a logger writing to stderr at level.
func Stderr(level string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           ParseLevel(level),
		ReportTimestamp: true,
		Prefix:          "tada",
	})
}
