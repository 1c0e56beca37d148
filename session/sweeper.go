package session

import (
	"context"
	"time"
)

// DefaultSweepInterval is how often the sweeper runs when no interval is
// configured.
const DefaultSweepInterval = time.Minute

// Sweeper drives periodic expiry sweeps of a Store. The store itself never
// schedules anything; the sweeper is the external timer collaborator.
type Sweeper struct {
	store    *Store
	interval time.Duration
}

// NewSweeper creates a sweeper for the given store.
func NewSweeper(store *Store, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{store: store, interval: interval}
}

// Run sweeps on a fixed interval until ctx is cancelled. It blocks; run it
// in its own goroutine.
func (w *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.store.SweepExpired()
		}
	}
}
