package applicationsvc

import "time"

// ApplicationConfig holds configuration parameters for the application service.
type ApplicationConfig struct {
	// ListTimeout bounds fetching application lists
	ListTimeout time.Duration `env:"LIST_TIMEOUT" default:"10s"`
	// ApplyTimeout bounds submitting an application
	ApplyTimeout time.Duration `env:"APPLY_TIMEOUT" default:"15s"`
}
