// Package flightrecorder keeps a rolling execution trace in memory and writes it to disk when a request is too slow.
package flightrecorder

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/trace"
	"sync/atomic"
	"time"
)

const (
	defaultMinAge   = 5 * time.Minute
	defaultMaxBytes = 64 << 20
	defaultCooldown = 30 * time.Minute
	tracesDirPerm   = 0o750
)

// Recorder captures flight recorder traces. A nil *Recorder is valid and captures nothing.
type Recorder struct {
	logger         *slog.Logger
	flightRecorder *trace.FlightRecorder
	dir            string
	minAge         time.Duration
	maxBytes       uint64
	cooldown       time.Duration
	// lastCapture is the UnixNano timestamp of the latest capture.
	lastCapture atomic.Int64
}

// Config configures a Recorder. Zero durations and sizes fall back to the defaults.
type Config struct {
	Logger          *slog.Logger
	TracesDirectory string
	MinAge          time.Duration
	MaxBytes        uint64
	// Cooldown is the minimum time between two captures.
	Cooldown time.Duration
}

// New creates the traces directory if needed and prepares a Recorder. Call Start to begin recording.
func New(cfg Config) (*Recorder, error) {
	if cfg.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if cfg.TracesDirectory == "" {
		return nil, errors.New("traces directory is required")
	}
	stat, err := os.Stat(cfg.TracesDirectory)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err = os.MkdirAll(cfg.TracesDirectory, tracesDirPerm); err != nil {
			return nil, fmt.Errorf("create traces directory: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("stat traces directory: %w", err)
	case !stat.IsDir():
		return nil, fmt.Errorf("traces path is not a directory: %s", cfg.TracesDirectory)
	}

	r := &Recorder{
		logger:         cfg.Logger,
		flightRecorder: nil,
		dir:            cfg.TracesDirectory,
		minAge:         cmp.Or(cfg.MinAge, defaultMinAge),
		maxBytes:       cmp.Or(cfg.MaxBytes, defaultMaxBytes),
		cooldown:       cmp.Or(cfg.Cooldown, defaultCooldown),
		lastCapture:    atomic.Int64{},
	}
	r.flightRecorder = trace.NewFlightRecorder(trace.FlightRecorderConfig{MinAge: r.minAge, MaxBytes: r.maxBytes})
	return r, nil
}

// Start begins recording. Only one flight recorder can be active in a process.
func (r *Recorder) Start(ctx context.Context) error {
	if err := r.flightRecorder.Start(); err != nil {
		return fmt.Errorf("start flight recorder: %w", err)
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder started",
		slog.String("dir", r.dir),
		slog.Duration("min_age", r.minAge),
		slog.Uint64("max_bytes", r.maxBytes),
		slog.Duration("cooldown", r.cooldown))
	return nil
}

// Stop ends recording.
func (r *Recorder) Stop(ctx context.Context) {
	r.flightRecorder.Stop()
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder stopped")
}

// Capture writes the recorded trace to {reason}-{timestamp}.trace unless another capture happened within the
// cooldown.
func (r *Recorder) Capture(ctx context.Context, reason string) {
	if r == nil || !r.flightRecorder.Enabled() {
		return
	}

	now := time.Now()
	last := r.lastCapture.Load()
	if last != 0 && now.Sub(time.Unix(0, last)) < r.cooldown {
		r.logger.LogAttrs(ctx, slog.LevelDebug, "skipping trace capture due to cooldown",
			slog.Time("last_capture", time.Unix(0, last)))
		return
	}
	if !r.lastCapture.CompareAndSwap(last, now.UnixNano()) {
		return
	}

	path := filepath.Join(r.dir, fmt.Sprintf("%s-%s.trace", reason, now.UTC().Format("20060102-150405.000")))
	if err := r.writeTrace(path); err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "failed to capture trace",
			slog.String("file", path), slog.Any("error", err))
		return
	}
	r.logger.LogAttrs(ctx, slog.LevelWarn, "captured trace", slog.String("reason", reason),
		slog.String("file", path))
}

func (r *Recorder) writeTrace(path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trace file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close trace file: %w", closeErr)
		}
	}()
	if _, err = r.flightRecorder.WriteTo(file); err != nil {
		return fmt.Errorf("write trace: %w", err)
	}
	return nil
}
