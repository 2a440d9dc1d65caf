// Package retry drives serial retry-with-exponential-backoff over a
// single logical operation. Retryability is decided by the classifier;
// user cancellations and business-rule rejections are never retried.
package retry

import (
	"context"
	"math"
	"time"

	"github.com/repcard/engine/internal/core/domain"
	"github.com/repcard/engine/internal/engine/classify"
	"github.com/repcard/engine/internal/engine/metrics"
)

// Policy configures retry behavior. Pure configuration, no identity.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt, so the
	// operation runs at most MaxRetries+1 times.
	MaxRetries      int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64

	// OnRetry, if set, is invoked with the attempt number (1-based) just
	// before each retry sleep, so callers can surface "retrying...".
	OnRetry func(attempt int)
}

// DefaultPolicy provides sensible defaults.
var DefaultPolicy = Policy{
	MaxRetries:      3,
	InitialDelay:    1 * time.Second,
	MaxDelay:        30 * time.Second,
	BackoffMultiple: 2.0,
}

// Do runs op until it succeeds, fails non-retryably, exhausts the attempt
// budget, or ctx is cancelled. The returned error is always a
// *domain.ClassifiedError. Attempts are strictly serial.
func Do[T any](ctx context.Context, policy Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr *domain.ClassifiedError

	attempts := policy.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = classify.Classify(err)
		if !lastErr.Retryable {
			return zero, lastErr
		}
		if attempt == attempts-1 {
			break
		}

		metrics.RetriesTotal.WithLabelValues(string(lastErr.Code)).Inc()
		if policy.OnRetry != nil {
			policy.OnRetry(attempt + 1)
		}

		select {
		case <-ctx.Done():
			return zero, classify.Classify(ctx.Err())
		case <-time.After(backoffDelay(attempt, policy)):
		}
	}

	return zero, lastErr
}

func backoffDelay(attempt int, policy Policy) time.Duration {
	delay := float64(policy.InitialDelay) * math.Pow(policy.BackoffMultiple, float64(attempt))
	if policy.MaxDelay > 0 && delay > float64(policy.MaxDelay) {
		delay = float64(policy.MaxDelay)
	}
	return time.Duration(delay)
}
