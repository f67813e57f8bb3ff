package interview

import (
	"context"
	"log/slog"
	"time"
)

// Sweep removes sessions idle for longer than ttl and returns how many were removed.
// Finished sessions were archived when they reached a terminal state.
func (e *Engine) Sweep(ttl time.Duration) int {
	expired := e.repo.Expired(e.now().Add(-ttl))
	removed := 0
	for _, id := range expired {
		if e.repo.Remove(id) {
			removed++
			slog.Debug("session expired", "session_id", id)
		}
	}
	if removed > 0 {
		slog.Info("swept expired sessions", "count", removed, "remaining", e.repo.Len())
	}
	return removed
}

// StartSweeper runs a background goroutine that sweeps idle sessions every
// interval until ctx is cancelled.
func (e *Engine) StartSweeper(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("session sweeper started", "interval", interval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				e.Sweep(ttl)
			case <-ctx.Done():
				slog.Info("session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
