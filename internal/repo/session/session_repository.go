package session

import (
	"context"
	"time"

	"github.com/mkrupp/skillsphere/internal/domain"
)

// Repository persists the per-browser state that a single-page client would
// keep in local storage: the auth token and pending toast messages.
type Repository interface {
	// SaveToken stores the auth token for the session, replacing any earlier token.
	SaveToken(ctx context.Context, sessionID, token string) error

	// GetToken returns the session's token and true, or "" and false if none is stored.
	GetToken(ctx context.Context, sessionID string) (string, bool, error)

	// DeleteToken removes the session's token. Deleting a missing token is not an error.
	DeleteToken(ctx context.Context, sessionID string) error

	// PushFlash queues a notification for the session's next page.
	PushFlash(ctx context.Context, sessionID string, flash domain.Flash) error

	// PopFlashes returns and removes the session's queued notifications in order.
	PopFlashes(ctx context.Context, sessionID string) ([]domain.Flash, error)

	// PurgeIdle removes tokens and notifications untouched since before cutoff.
	// Returns the number of sessions whose token was removed.
	PurgeIdle(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases any resources held by the repository.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
type RepositoryFactory func() (Repository, error)
