package audit

import (
	"context"
	"log/slog"
	"time"
)

// Pruner deletes events created before a cutoff.
type Pruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RunRetention prunes events older than retention immediately and then on
// every tick of interval, until ctx ends.
func RunRetention(ctx context.Context, store Pruner, retention, interval time.Duration) {
	logger := slog.Default().With(slog.String("component", "audit.retention"))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		n, err := store.DeleteOlderThan(ctx, time.Now().Add(-retention))
		switch {
		case err != nil && ctx.Err() == nil:
			logger.Warn("audit pruning failed", slog.String("error", err.Error()))
		case n > 0:
			logger.Info("pruned audit events", slog.Int64("deleted", n))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
