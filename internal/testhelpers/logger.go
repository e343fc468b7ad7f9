package testhelpers

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/myrjola/skillplan/internal/logging"
)

// NewLogger creates a debug level logger with the given log sink such as the Writer from NewWriter.
func NewLogger(logSink io.Writer) *slog.Logger {
	return logging.New(logSink, slog.LevelDebug)
}

// NewTestLogger creates a debug level logger whose output is shown only when t fails.
func NewTestLogger(t testing.TB) *slog.Logger {
	return NewLogger(NewWriter(t))
}

// Writer forwards every line written to it to t.Log.
type Writer struct {
	t        testing.TB
	mu       sync.Mutex
	finished bool
}

// NewWriter creates a Writer for t. Writing after t has finished panics because it means a server or goroutine
// outlived the test.
func NewWriter(t testing.TB) *Writer {
	w := &Writer{t: t, mu: sync.Mutex{}, finished: false}
	t.Cleanup(func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.finished = true
	})
	return w
}

func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.finished {
		panic("testhelpers: log written after the test finished, is the server shut down in t.Cleanup? log: " +
			string(p))
	}
	for line := range strings.Lines(string(p)) {
		if line = strings.TrimSuffix(line, "\n"); line != "" {
			w.t.Log(line)
		}
	}
	return len(p), nil
}
