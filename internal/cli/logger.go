package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LoggerOptions struct {
	Debug bool
	File  string
	// Quiet keeps stderr clean, for the full-screen TUI.
	Quiet bool
}

// NewLogger builds a slog logger on top of charmbracelet/log. The returned
// closer releases the log file, if any.
func NewLogger(opts LoggerOptions) (*slog.Logger, io.Closer) {
	var writers []io.Writer
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		writers = append(writers, fileWriter)
		closer = fileWriter
	}
	if !opts.Quiet {
		writers = append(writers, os.Stderr)
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = io.Discard
	case 1:
		writer = writers[0]
	default:
		writer = io.MultiWriter(writers...)
	}

	level := log.WarnLevel
	if opts.Debug {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(writer, log.Options{
		ReportCaller:    opts.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "classctl",
	})
	return slog.New(handler), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
