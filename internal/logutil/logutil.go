// Package logutil builds the slog loggers used by the command line tool.
package logutil

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

// LevelTrace is below Debug and logs per-span parser activity.
const LevelTrace slog.Level = -8

// NewLogger returns a text logger writing to w at level, with short source
// file names and TRACE shown by name.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				if lvl, ok := attr.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					attr.Value = slog.StringValue("TRACE")
				}
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok {
					src.File = filepath.Base(src.File)
				}
			}
			return attr
		},
	}))
}

// ParseLevel converts trace, debug, info, warn or error to a level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
