package api

import (
	"context"
	"math"
	"time"
)

const backoffMultiplier = 1.5

// retryDelay returns the wait before retry number n (zero based):
// base * 1.5^n.
func retryDelay(base time.Duration, n int) time.Duration {
	if base <= 0 {
		return 0
	}
	if n < 0 {
		n = 0
	}
	return time.Duration(float64(base) * math.Pow(backoffMultiplier, float64(n)))
}

// shouldRetry applies the retry policy to a failure after `attempts` tries.
func shouldRetry(err *Error, attempts, limit int) bool {
	if err == nil || !err.Retryable() {
		return false
	}
	return attempts < limit
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
