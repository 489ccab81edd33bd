// Package logging owns the process-wide slog setup. Grading itself is a
// pure computation; logging exists for the surrounding surfaces (CLI,
// batch harness, evidence server), each of which tags its records with a
// component attribute via New.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Init installs the global slog default. Output goes to os.Stderr unless a
// writer override is given, which tests use to capture records. Format is
// "json" or "text"; anything else falls back to text.
func Init(level slog.Level, format string, w ...io.Writer) {
	var out io.Writer = os.Stderr
	if len(w) > 0 && w[0] != nil {
		out = w[0]
	}
	slog.SetDefault(slog.New(newHandler(level, format, out)))
}

func newHandler(level slog.Level, format string, out io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(out, opts)
	}
	return slog.NewTextHandler(out, opts)
}

// New returns a logger scoped to one component of the harness.
func New(component string) *slog.Logger {
	return slog.Default().With(slog.String("component", component))
}
