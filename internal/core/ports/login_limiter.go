package ports

import "context"

// LoginLimiter throttles credential guessing per login key (the email).
// Implementations are best-effort: the service fails open when the limiter
// itself errors, so an unavailable backend never locks everyone out.
type LoginLimiter interface {
	// TooManyAttempts reports whether the key has exhausted its attempt budget.
	TooManyAttempts(ctx context.Context, key string) (bool, error)
	// RecordFailure counts one failed attempt against the key.
	RecordFailure(ctx context.Context, key string) error
	// Reset clears the counter, on successful login or administrative unlock.
	Reset(ctx context.Context, key string) error
}
