package expopdf

import (
	"context"
	"time"
)

// waitFor polls predicate at the given interval until it reports true, the
// timeout elapses, or ctx is done. It returns whether the predicate became
// true. A predicate error aborts the poll and is returned as-is.
func waitFor(ctx context.Context, timeout, interval time.Duration, predicate func() (bool, error)) (bool, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Check once up front so an already-true predicate needs no full tick.
	ok, err := predicate()
	if err != nil || ok {
		return ok, err
	}

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-deadline.C:
			return false, nil
		case <-ticker.C:
			ok, err := predicate()
			if err != nil || ok {
				return ok, err
			}
		}
	}
}

// sleep pauses for d unless ctx is done first.
func sleep(ctx context.Context, d time.Duration) error {
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
