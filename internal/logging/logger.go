// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the process logger with zerolog. The logger is
// created once at startup and handed to each stage; nothing here touches
// zerolog's global logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/zotero-html/pkg/types"
)

// nopCloser is returned when logging to stderr.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup returns a logger for cfg and a closer for its output. With no log
// file configured the logger writes to stderr. An unknown level is an error.
func Setup(cfg types.LoggingConfig, stderr io.Writer) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	var (
		out    = stderr
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("opening log file: %w", err)
		}
		out, closer = f, f
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, NoColor: cfg.File != ""}
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}

// ParseLevel converts a level name to a zerolog.Level. Empty means info.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info", "":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("%w: invalid log level %q", types.ErrConfig, level)
	}
}
