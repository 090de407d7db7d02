package regeneration

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jonathan/resume-tailor/internal/llm"
)

// RetryConfig configures per-item retries with exponential backoff
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, including the first
	MaxAttempts int
	// InitialBackoff is the wait before the first retry
	InitialBackoff time.Duration
	// MaxBackoff caps the wait between retries
	MaxBackoff time.Duration
	// BackoffFactor multiplies the wait after each retry
	BackoffFactor float64
	// JitterFactor is the maximum jitter as a fraction of the wait (0-1)
	JitterFactor float64
}

// DefaultRetryConfig returns the retry policy used for LLM calls
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     8 * time.Second,
		BackoffFactor:  2.0,
		JitterFactor:   0.2,
	}
}

// Validate checks that the configuration can drive a retry loop
func (c RetryConfig) Validate() error {
	switch {
	case c.MaxAttempts < 1:
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	case c.InitialBackoff < 0:
		return fmt.Errorf("initial backoff must not be negative")
	case c.MaxBackoff < c.InitialBackoff:
		return fmt.Errorf("max backoff %s is below initial backoff %s", c.MaxBackoff, c.InitialBackoff)
	case c.BackoffFactor < 1.0:
		return fmt.Errorf("backoff factor must be at least 1, got %g", c.BackoffFactor)
	case c.JitterFactor < 0 || c.JitterFactor > 1:
		return fmt.Errorf("jitter factor must be within [0, 1], got %g", c.JitterFactor)
	}
	return nil
}

// attemptFunc is one try of a retried operation
type attemptFunc func(ctx context.Context, attempt int) error

// retry runs fn until it succeeds, returns a non-transient error, exhausts
// MaxAttempts, or ctx is done. It returns the attempts made and the last error.
func retry(ctx context.Context, cfg RetryConfig, fn attemptFunc) (int, error) {
	backoff := cfg.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}

		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return attempt, nil
		}
		if !llm.IsTransient(lastErr) || attempt == cfg.MaxAttempts {
			return attempt, lastErr
		}

		timer := time.NewTimer(withJitter(backoff, cfg.JitterFactor))
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, ctx.Err()
		case <-timer.C:
		}

		backoff = nextBackoff(backoff, cfg.BackoffFactor, cfg.MaxBackoff)
	}
	return cfg.MaxAttempts, lastErr
}

// withJitter spreads base over [base*(1-jitter), base*(1+jitter)]
func withJitter(base time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 || base <= 0 {
		return base
	}
	jitter := (rand.Float64()*2 - 1) * jitterFactor
	return time.Duration(float64(base) * (1.0 + jitter))
}

func nextBackoff(current time.Duration, factor float64, limit time.Duration) time.Duration {
	next := time.Duration(float64(current) * factor)
	if next > limit {
		return limit
	}
	return next
}
