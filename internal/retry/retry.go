package retry

import (
	"context"
	"time"

	"logmentor/internal/domain"
)

// Policy controls how external capability calls are retried. Only
// failures marked transient are retried; delay doubles per attempt up to
// MaxDelay.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultPolicy mirrors the configured retry defaults.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    8 * time.Second,
	}
}

// Do runs fn until it succeeds, fails permanently, exhausts attempts, or
// ctx is cancelled. It returns the number of attempts made and the last
// error.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) (int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	delay := p.BaseDelay
	var err error

	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return attempt - 1, ctx.Err()
		}

		err = fn(ctx)
		if err == nil {
			return attempt, nil
		}
		if !domain.IsTransient(err) || attempt == maxAttempts {
			return attempt, err
		}

		select {
		case <-ctx.Done():
			return attempt, ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
}
