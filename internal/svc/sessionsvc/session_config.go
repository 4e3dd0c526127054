package sessionsvc

import "time"

// SessionConfig holds configuration parameters for the session service.
type SessionConfig struct {
	// ProfileTTL is how long a fetched profile is served from memory before Current refetches it
	ProfileTTL time.Duration `env:"PROFILE_TTL" default:"5m"`
	// IdleTimeout is how long an untouched session token is kept
	IdleTimeout time.Duration `env:"IDLE_TIMEOUT" default:"720h"`
}
