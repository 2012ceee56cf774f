package management

import (
	"context"
	"time"
)

// Store persists the management state. Implementations: redis for
// production, memory for tests.
type Store interface {
	// IncrementLoginCount bumps the counter atomically and returns the new
	// value.
	IncrementLoginCount(ctx context.Context) (int64, error)
	LoginCount(ctx context.Context) (int64, error)

	SaveSession(ctx context.Context, sessionID string, ttl time.Duration) error
	SessionExists(ctx context.Context, sessionID string) (bool, error)
	DeleteSession(ctx context.Context, sessionID string) error

	Term(ctx context.Context) (Term, error)
	SetTerm(ctx context.Context, term Term) error
}
