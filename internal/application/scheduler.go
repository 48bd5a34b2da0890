package application

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// tickWorkers bounds how many raids one tick drives in parallel.
const tickWorkers = 4

// Scheduler drives due lifecycle transitions on a fixed cadence. Raids are
// processed in parallel but each raid's transitions stay serialized, and
// one raid's failure never aborts the others.
type Scheduler struct {
	registry  *Registry
	lifecycle *Lifecycle
	interval  time.Duration
}

func NewScheduler(registry *Registry, lifecycle *Lifecycle, interval time.Duration) *Scheduler {
	return &Scheduler{registry: registry, lifecycle: lifecycle, interval: interval}
}

// Run ticks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick evaluates every registered raid once.
func (s *Scheduler) Tick(ctx context.Context) {
	var g errgroup.Group
	g.SetLimit(tickWorkers)
	for _, id := range s.registry.IDs() {
		g.Go(func() error {
			if err := s.lifecycle.Advance(ctx, id); err != nil {
				slog.Error("scheduler tick failed", "raid", id, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
