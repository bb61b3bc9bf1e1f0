package slogutil

import (
	"io"
	"log/slog"
	"os"
)

// Options describes the process logger.
type Options struct {
	// Console receives human facing log lines; stderr when nil
	Console      io.Writer
	ConsoleLevel slog.Level

	// File, when set, also receives every record at FileLevel or above
	File       string
	FileLevel  slog.Level
	MaxSize    string
	MaxBackups int

	// Attrs are attached to every record
	Attrs []slog.Attr
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup builds the logger described by opts. The returned closer releases
// the log file, if any.
func Setup(opts Options) (*slog.Logger, io.Closer, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	var handler slog.Handler = NewLineHandler(console, &slog.HandlerOptions{Level: opts.ConsoleLevel})
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		fileLogger, c, err := NewRotatingFileLogger(opts.File, opts.FileLevel, opts.MaxSize, opts.MaxBackups)
		if err != nil {
			return nil, nil, err
		}
		handler = NewTeeHandler(handler, fileLogger.Handler())
		closer = c
	}

	if len(opts.Attrs) > 0 {
		handler = handler.WithAttrs(opts.Attrs)
	}
	return slog.New(handler), closer, nil
}
