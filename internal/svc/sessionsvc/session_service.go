package sessionsvc

import (
	"context"

	"github.com/mkrupp/skillsphere/internal/domain"
)

// Messages stored in State.Err when a profile fetch fails.
const (
	MsgNoToken      = "No authentication token found"
	MsgNoUserData   = "No user data found"
	MsgFetchProfile = "Failed to fetch profile"
)

// EventKind identifies a session state change.
type EventKind int

const (
	ProfileLoaded EventKind = iota + 1
	ProfileFailed
	LoggedOut
)

func (k EventKind) String() string {
	switch k {
	case ProfileLoaded:
		return "profile_loaded"
	case ProfileFailed:
		return "profile_failed"
	case LoggedOut:
		return "logged_out"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers after the session state changed.
type Event struct {
	Kind      EventKind
	SessionID string
	User      *domain.User
	Err       error
}

// State is a snapshot of one browser session.
type State struct {
	User    *domain.User
	View    domain.View
	Loading bool
	Err     string
}

// TokenSource looks up the token persisted for a browser session.
type TokenSource interface {
	// Token returns the session's persisted token or domain.ErrNoToken.
	Token(ctx context.Context, sessionID string) (string, error)
}

// SessionService holds the authenticated user per browser session.
type SessionService interface {
	// Establish persists a freshly issued token and forgets any cached profile.
	Establish(ctx context.Context, sessionID, token string) error

	TokenSource

	// FetchProfile loads the profile from the backend. Concurrent calls for the
	// same session share one backend request. Without a token it fails with
	// domain.ErrNoToken and makes no network call. On failure the user is cleared.
	FetchProfile(ctx context.Context, sessionID string) (domain.User, error)

	// Current returns the cached role view, fetching the profile only if none is cached.
	Current(ctx context.Context, sessionID string) (domain.View, error)

	// Refresh drops the cached profile and fetches it again.
	Refresh(ctx context.Context, sessionID string) (domain.View, error)

	// State returns a snapshot of the session without side effects.
	State(sessionID string) State

	// Logout removes the token and resets the user. It makes no network call
	// and may be called any number of times.
	Logout(ctx context.Context, sessionID string) error

	// Subscribe registers fn for state change events and returns a function
	// that removes it.
	Subscribe(fn func(context.Context, Event)) (unsubscribe func())
}
