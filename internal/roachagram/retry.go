package roachagram

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/five82/roachagram/internal/telemetry"
)

// RetryPolicy bounds the retry loop. The wait before retry n (1-based) is
// BaseDelay * 2^(n-1).
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultRetryPolicy retries three times, waiting 2s, 4s and 8s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, BaseDelay: 2 * time.Second}
}

// Delay returns the wait before the given retry.
func (p RetryPolicy) Delay(retry int) time.Duration {
	if retry < 1 || p.BaseDelay <= 0 {
		return 0
	}
	return p.BaseDelay * time.Duration(1<<(retry-1))
}

// MaxAttempts is the total number of attempts including the first.
func (p RetryPolicy) MaxAttempts() int {
	if p.MaxRetries < 0 {
		return 1
	}
	return p.MaxRetries + 1
}

func (c *Client) withRetry(ctx context.Context, attempt func(context.Context) (string, error)) (string, int, error) {
	var lastErr error
	attempts := 0

	for retry := 0; retry < c.policy.MaxAttempts(); retry++ {
		if retry > 0 {
			delay := c.policy.Delay(retry)
			c.metrics.RetryScheduled()
			c.sink.Emit(telemetry.Trace("retrying anagram request", map[string]string{
				"Component": "api",
				"Attempt":   strconv.Itoa(retry + 1),
				"Error":     lastErr.Error(),
			}))
			c.logger.Info("retrying anagram request",
				"attempt", retry+1,
				"max_attempts", c.policy.MaxAttempts(),
				"delay", delay,
				"error", lastErr,
			)
			if err := c.sleep(ctx, delay); err != nil {
				return "", attempts, err
			}
		}

		attempts++
		body, err := attempt(ctx)
		if err == nil {
			return body, attempts, nil
		}
		lastErr = err

		// A finished context ends the loop without further attempts.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", attempts, ctxErr
		}
	}

	return "", attempts, fmt.Errorf("%w after %d attempts: %w", ErrPersistentFailure, attempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
