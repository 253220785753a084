package fetcher

import (
	"context"
	"time"
)

// RetryPolicy describes the backoff schedule for retriable failures. The
// delay before attempt n+1 is BaseDelay * Multiplier^(n-1), capped at Cap.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	Cap         time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured:
// 3 attempts, 1s base delay doubling each attempt, capped at 30s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2,
		Cap:         30 * time.Second,
	}
}

// Delay returns the backoff delay after the given 1-based failed attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := float64(p.BaseDelay)
	for i := 1; i < attempt; i++ {
		d *= p.Multiplier
	}
	if p.Cap > 0 && d > float64(p.Cap) {
		d = float64(p.Cap)
	}
	return time.Duration(d)
}

// Do runs fn until it succeeds, fails terminally, or MaxAttempts is reached.
// retriable decides which errors are worth another attempt. It returns the
// number of attempts made together with the last error, nil on success.
func (p RetryPolicy) Do(ctx context.Context, retriable func(error) bool, fn func() error) (int, error) {
	attempts := 0
	for {
		attempts++
		err := fn()
		if err == nil {
			return attempts, nil
		}
		if !retriable(err) || attempts >= p.MaxAttempts {
			return attempts, err
		}
		select {
		case <-ctx.Done():
			return attempts, ctx.Err()
		case <-time.After(p.Delay(attempts)):
		}
	}
}
