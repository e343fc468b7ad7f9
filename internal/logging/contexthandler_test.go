package logging_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/myrjola/skillplan/internal/logging"
)

func TestWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo)

	parent := logging.WithAttrs(t.Context(), slog.String("trace_id", "abc"))
	first := logging.WithAttrs(parent, slog.String("program_id", "first"))
	second := logging.WithAttrs(parent, slog.String("program_id", "second"))

	logger.InfoContext(first, "one")
	logger.InfoContext(second, "two")
	logger.DebugContext(first, "filtered")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d:\n%s", len(lines), buf.String())
	}
	for i, want := range []string{"trace_id=abc program_id=first", "trace_id=abc program_id=second"} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d = %q, want it to contain %q", i, lines[i], want)
		}
	}
	if strings.Contains(lines[1], "first") {
		t.Errorf("sibling context attributes leaked: %q", lines[1])
	}
}
