package retry

import (
	"context"
	"time"

	"github.com/jpillora/backoff"
)

// Policy — параметры повторов.
type Policy struct {
	Attempts int
	Min      time.Duration
	Max      time.Duration
}

// Default — 3 попытки, 200ms..2s.
var Default = Policy{Attempts: 3, Min: 200 * time.Millisecond, Max: 2 * time.Second}

// WithRetry выполняет op с повторами и экспоненциальным бэкоффом.
// Прекращает повторы при отмене ctx или если retryable(err) == false.
func WithRetry(ctx context.Context, p Policy, retryable func(error) bool, op func(ctx context.Context) error) error {
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	b := &backoff.Backoff{Min: p.Min, Max: p.Max, Factor: 2, Jitter: true}

	var err error
	for i := 0; i < p.Attempts; i++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if i == p.Attempts-1 {
			break
		}
		t := time.NewTimer(b.Duration())
		select {
		case <-ctx.Done():
			t.Stop()
			return err
		case <-t.C:
		}
	}
	return err
}
