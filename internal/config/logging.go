package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// NewLogger builds the process logger. Format "auto" picks text on a
// terminal and JSON otherwise.
func (c LoggingConfig) NewLogger(out *os.File) *slog.Logger {
	return slog.New(c.handler(out, isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())))
}

func (c LoggingConfig) handler(w io.Writer, terminal bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: c.level()}
	format := c.Format
	if format == "auto" {
		format = "json"
		if terminal {
			format = "text"
		}
	}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func (c LoggingConfig) level() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
