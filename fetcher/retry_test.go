package fetcher

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryPolicyDelay(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Second, Multiplier: 2, Cap: 3 * time.Second}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 3 * time.Second}, // 4s capped at 3s
		{4, 3 * time.Second},
	}
	for _, tt := range tests {
		if got := p.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestRetryDoStopsOnSuccess(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond, Multiplier: 2}

	calls := 0
	attempts, err := p.Do(context.Background(), func(error) bool { return true }, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if attempts != 3 || calls != 3 {
		t.Errorf("attempts=%d calls=%d, want 3 and 3", attempts, calls)
	}
}

func TestRetryDoStopsOnTerminalError(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond, Multiplier: 2}

	terminal := errors.New("terminal")
	calls := 0
	attempts, err := p.Do(context.Background(), func(error) bool { return false }, func() error {
		calls++
		return terminal
	})
	if !errors.Is(err, terminal) {
		t.Fatalf("Do() error = %v, want %v", err, terminal)
	}
	if attempts != 1 || calls != 1 {
		t.Errorf("attempts=%d calls=%d, want 1 and 1", attempts, calls)
	}
}

func TestRetryDoExhaustsAttempts(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2}

	transient := errors.New("transient")
	attempts, err := p.Do(context.Background(), func(error) bool { return true }, func() error {
		return transient
	})
	if !errors.Is(err, transient) {
		t.Fatalf("Do() error = %v, want %v", err, transient)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryDoHonorsContextDuringBackoff(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Minute, Multiplier: 2}

	ctx, cancel := context.WithCancel(context.Background())
	transient := errors.New("transient")
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	attempts, err := p.Do(ctx, func(error) bool { return true }, func() error {
		return transient
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Do() error = %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}
