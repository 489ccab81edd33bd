package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_TagsComponent(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelDebug, "text", &buf)

	New("harness").Info("trial graded")

	out := buf.String()
	if !strings.Contains(out, "component=harness") {
		t.Errorf("expected component=harness in output, got: %s", out)
	}
	if !strings.Contains(out, "trial graded") {
		t.Errorf("expected message in output, got: %s", out)
	}
}

func TestInit_Formats(t *testing.T) {
	tests := []struct {
		format string
		wants  []string
	}{
		{"text", []string{"level=INFO", "component=fmt-check"}},
		{"json", []string{`"level":"INFO"`, `"component":"fmt-check"`}},
	}
	for _, tc := range tests {
		t.Run(tc.format, func(t *testing.T) {
			var buf bytes.Buffer
			Init(slog.LevelInfo, tc.format, &buf)
			New("fmt-check").Info("hello")
			for _, want := range tc.wants {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("expected %q in %s output, got: %s", want, tc.format, buf.String())
				}
			}
		})
	}
}

func TestInit_UnknownFormatFallsBackToText(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelInfo, "yaml", &buf)
	New("fallback").Info("hello")
	if !strings.Contains(buf.String(), "level=INFO") {
		t.Errorf("expected text output for unknown format, got: %s", buf.String())
	}
}

func TestInit_LevelGating(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelWarn, "text", &buf)

	logger := New("gate")
	logger.Info("suppressed info")
	logger.Warn("visible warning")

	out := buf.String()
	if strings.Contains(out, "suppressed info") {
		t.Error("info record emitted at warn level")
	}
	if !strings.Contains(out, "visible warning") {
		t.Error("warn record missing at warn level")
	}
}
