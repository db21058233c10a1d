package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/splitopus/internal/storage"
)

// DraftSweeper periodically deletes drafts older than their ttl.
type DraftSweeper struct {
	store    storage.Store
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
}

// NewDraftSweeper creates a sweeper that removes drafts older than ttl every interval.
func NewDraftSweeper(store storage.Store, ttl, interval time.Duration) *DraftSweeper {
	return &DraftSweeper{store: store, ttl: ttl, interval: interval, now: time.Now}
}

// Sweep deletes every expired draft once and returns how many were removed.
func (s *DraftSweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.ttl).Unix()
	return s.store.DeleteDraftsBefore(ctx, cutoff+1)
}

// Run sweeps every interval until ctx is done.
func (s *DraftSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("Draft sweeper started", "ttl", s.ttl, "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Draft sweeper stopped")
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				slog.Error("Draft sweep failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("Expired drafts removed", "count", n)
			}
		}
	}
}
