package flightrecorder_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/myrjola/skillplan/internal/flightrecorder"
	"github.com/myrjola/skillplan/internal/testhelpers"
)

func newRecorder(t *testing.T, dir string, cooldown time.Duration) *flightrecorder.Recorder {
	t.Helper()
	recorder, err := flightrecorder.New(flightrecorder.Config{
		Logger:          testhelpers.NewTestLogger(t),
		TracesDirectory: dir,
		MinAge:          0,
		MaxBytes:        0,
		Cooldown:        cooldown,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err = recorder.Start(t.Context()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		recorder.Stop(t.Context())
	})
	return recorder
}

func readTraces(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read trace directory: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRecorder_Capture(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "traces")
	recorder := newRecorder(t, dir, 0)

	recorder.Capture(t.Context(), "timeout")

	names := readTraces(t, dir)
	if len(names) != 1 {
		t.Fatalf("Expected one trace file, got %v", names)
	}
	if !strings.HasPrefix(names[0], "timeout-") || !strings.HasSuffix(names[0], ".trace") {
		t.Errorf("Unexpected trace file name %s", names[0])
	}
}

func TestRecorder_CaptureCooldown(t *testing.T) {
	dir := t.TempDir()
	recorder := newRecorder(t, dir, time.Hour)

	recorder.Capture(t.Context(), "timeout")
	recorder.Capture(t.Context(), "timeout")

	if names := readTraces(t, dir); len(names) != 1 {
		t.Errorf("Expected the cooldown to prevent the second capture, got %v", names)
	}
}

func TestRecorder_CaptureAfterCooldown(t *testing.T) {
	dir := t.TempDir()
	recorder := newRecorder(t, dir, time.Millisecond)

	recorder.Capture(t.Context(), "first")
	time.Sleep(5 * time.Millisecond)
	recorder.Capture(t.Context(), "second")

	if names := readTraces(t, dir); len(names) != 2 {
		t.Errorf("Expected two trace files, got %v", names)
	}
}

func TestRecorder_NilCapturesNothing(t *testing.T) {
	var recorder *flightrecorder.Recorder
	recorder.Capture(t.Context(), "timeout")
}

func TestNew_invalidConfig(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	logger := testhelpers.NewTestLogger(t)

	tests := []struct {
		name string
		cfg  flightrecorder.Config
	}{
		{
			name: "no logger",
			cfg:  flightrecorder.Config{TracesDirectory: t.TempDir()}, //nolint:exhaustruct // defaults are fine.
		},
		{
			name: "no directory",
			cfg:  flightrecorder.Config{Logger: logger}, //nolint:exhaustruct // defaults are fine.
		},
		{
			name: "not a directory",
			cfg:  flightrecorder.Config{Logger: logger, TracesDirectory: file}, //nolint:exhaustruct // defaults are fine.
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := flightrecorder.New(tt.cfg); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}
