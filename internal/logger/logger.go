// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logger wraps charm/log with the records the converter emits.
package logger

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/sos-convert/pkg/types"
)

// Logger wraps charm/log for structured logging.
type Logger struct {
	*log.Logger
}

// New creates a logger writing to w at info level.
func New(w io.Writer) *Logger {
	return NewWithLevel(w, log.InfoLevel)
}

// NewWithLevel creates a logger with a specific level.
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// ParseLevel converts a configured level name. An empty name is info.
func ParseLevel(name string) (log.Level, error) {
	if name == "" {
		return log.InfoLevel, nil
	}
	level, err := log.ParseLevel(name)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("parsing log level: %w", err)
	}
	return level, nil
}

// Discard returns a logger that discards all output.
func Discard() *Logger {
	return New(io.Discard)
}

// Reporter returns a condition reporter that logs each condition as a
// warning attributed to source.
func (l *Logger) Reporter(source string) types.Reporter {
	return types.ReporterFunc(func(c types.Condition) {
		if c.Source == "" {
			c.Source = source
		}
		l.Warn("conversion condition",
			"kind", string(c.Kind),
			"source", c.Source,
			"line", c.Line,
			"detail", c.Detail)
	})
}

// Converted logs a written destination.
func (l *Logger) Converted(source, dest, direction string, cells int) {
	l.Info("converted",
		"source", source,
		"dest", dest,
		"direction", direction,
		"cells", cells)
}

// Skipped logs a source left alone.
func (l *Logger) Skipped(source, reason string) {
	l.Debug("skipped",
		"source", source,
		"reason", reason)
}

// ConversionError logs a failed conversion.
func (l *Logger) ConversionError(source, dest string, err error) {
	l.Error("conversion failed",
		"source", source,
		"dest", dest,
		"error", err)
}

// ConfigLoaded logs the configuration in effect.
func (l *Logger) ConfigLoaded(file string, cfg types.ConvertConfig) {
	l.Debug("config loaded",
		"file", file,
		"format_tag", cfg.Script.FormatTag,
		"host_kernel", cfg.Script.HostKernel,
		"markup_language", cfg.Markup.Language,
		"export_all", cfg.ExportAll,
		"ledger_dir", cfg.Ledger.Dir)
}
