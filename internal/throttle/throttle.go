// Package throttle schedules the fetch tasks of one pipeline stage. Task i
// starts no earlier than i×Interval after the stage starts, plus one full
// quota window for every QuotaCapacity tasks before it.
package throttle

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Schedule describes the start offsets of a stage's tasks.
type Schedule struct {
	// Interval separates consecutive task starts.
	Interval time.Duration
	// QuotaCapacity is the number of tasks allowed per QuotaWindow. Zero
	// disables quota windows.
	QuotaCapacity int
	// QuotaWindow is the extra delay added per exhausted quota.
	QuotaWindow time.Duration
}

// Delay returns the start offset of task i.
func (s Schedule) Delay(i int) time.Duration {
	d := time.Duration(i) * s.Interval
	if s.QuotaCapacity > 0 {
		d += time.Duration(i/s.QuotaCapacity) * s.QuotaWindow
	}
	return d
}

// Total returns the offset of the last of n tasks.
func (s Schedule) Total(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return s.Delay(n - 1)
}

// Run starts fn for every item at its scheduled offset and waits for all of
// them. The first error cancels the context passed to the remaining tasks and
// is returned; tasks not yet started are skipped.
func Run[T any](ctx context.Context, items []T, s Schedule, fn func(ctx context.Context, i int, item T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		delay := s.Delay(i)
		g.Go(func() error {
			if err := Sleep(gctx, delay); err != nil {
				return err
			}
			return fn(gctx, i, item)
		})
	}
	return g.Wait()
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
