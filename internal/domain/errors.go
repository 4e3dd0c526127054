package domain

import "errors"

var (
	// ErrNoToken is returned when an authenticated call is attempted without a persisted token.
	ErrNoToken = errors.New("no authentication token found")
	// ErrNoUserData is returned when a profile response carries no user object.
	ErrNoUserData = errors.New("no user data found")
	// ErrUnknownRole is returned when a user's role is neither seeker nor employer.
	ErrUnknownRole = errors.New("unknown role")
	// ErrUnauthorized is returned when a session touches data it does not own.
	ErrUnauthorized = errors.New("unauthorized")
)

// Backend failure classes. API errors match these through errors.Is.
var (
	// ErrBadRequest is returned for HTTP 400 responses.
	ErrBadRequest = errors.New("bad request")
	// ErrUnauthenticated is returned for HTTP 401 responses.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound is returned for HTTP 404 responses.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned for HTTP 409 responses.
	ErrConflict = errors.New("conflict")
	// ErrTimeout is returned when a backend call exceeds its deadline.
	ErrTimeout = errors.New("request timed out")
	// ErrNetwork is returned when a backend call fails without any response.
	ErrNetwork = errors.New("network error")
)
