// Package logger configures the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// New returns a colored tint logger at debug level when dev is set,
// and a JSON logger at info level otherwise.
func New(w io.Writer, dev bool) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if dev {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// Setup installs New(w, dev) as the default logger and returns it.
func Setup(w io.Writer, dev bool) *slog.Logger {
	l := New(w, dev)
	slog.SetDefault(l)
	return l
}
