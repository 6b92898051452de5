package retry

import (
	"context"
	"time"
)

// Config configures the attempt loop.
type Config struct {
	// Attempts is the total number of attempts, including the first.
	// Values below 1 are treated as 1.
	Attempts int
	// Delay is the base backoff delay before the first retry.
	Delay time.Duration
	// ShouldRetry decides whether a failed attempt is retried. Nil retries
	// every error.
	ShouldRetry func(error) bool
	// OnRetry is called before each backoff wait with the 0-based index of
	// the attempt that just failed, its error, and the upcoming delay.
	OnRetry func(attempt int, err error, delay time.Duration)
	// Wait overrides the backoff wait. Nil uses a context-aware timer.
	// Intended for tests.
	Wait func(ctx context.Context, d time.Duration) error
}

// Backoff returns the delay after the given 0-based failed attempt:
// Delay * 2^attempt, exact, without jitter or cap.
func (c Config) Backoff(attempt int) time.Duration {
	return c.Delay * (1 << attempt)
}

// Do executes fn up to cfg.Attempts times. The last error is returned when
// all attempts fail or ShouldRetry declines; context cancellation during a
// backoff wait aborts with the context error. A successful attempt returns
// immediately.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if cfg.ShouldRetry != nil && !cfg.ShouldRetry(err) {
			return zero, err
		}
		if attempt == attempts-1 {
			break
		}

		delay := cfg.Backoff(attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, delay)
		}
		if err := wait(ctx, cfg, delay); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}

// DoFunc executes a function that returns only an error.
func DoFunc(ctx context.Context, cfg Config, fn func() error) error {
	_, err := Do(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

func wait(ctx context.Context, cfg Config, d time.Duration) error {
	if cfg.Wait != nil {
		return cfg.Wait(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
