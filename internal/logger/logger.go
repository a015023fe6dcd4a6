// Package logger builds the slog logger shared by rktop components. The
// dashboard owns the terminal, so records go to a file or are dropped.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// New returns a text logger writing to w. Debug records are kept only when
// debug is set.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

// Open appends to the file at path. An empty path yields a discarding logger.
// The returned close func is never nil.
func Open(path string, debug bool) (*slog.Logger, func() error, error) {
	if path == "" {
		return Discard(), func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(f, debug), f.Close, nil
}
