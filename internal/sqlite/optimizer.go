package sqlite

import (
	"context"
	"log/slog"
	"time"
)

const optimizeInterval = time.Hour

// startDatabaseOptimizer runs PRAGMA optimize on start and then every optimizeInterval until ctx is done.
// See https://www.sqlite.org/pragma.html#pragma_optimize.
func (db *Database) startDatabaseOptimizer(ctx context.Context) {
	// 0x10002 also analyzes tables that have not been queried yet on this connection.
	db.optimize(ctx, "PRAGMA optimize = 0x10002;")

	ticker := time.NewTicker(optimizeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			db.optimize(ctx, "PRAGMA optimize;")
		}
	}
}

func (db *Database) optimize(ctx context.Context, pragma string) {
	start := time.Now()
	_, err := db.ReadWrite.ExecContext(ctx, pragma)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		db.logger.LogAttrs(ctx, slog.LevelError, "failed to optimize database", slog.Any("error", err))
		return
	}
	db.logger.LogAttrs(ctx, slog.LevelDebug, "optimized database", slog.Duration("duration", time.Since(start)))
}
