package web

import (
	"time"

	http_ "github.com/mkrupp/skillsphere/internal/infra/transport/http"
)

// WebConfig holds configuration parameters for the page handlers.
type WebConfig struct {
	// Session configures the browser session cookie
	Session http_.SessionConfig `envPrefix:"SESSION_"`

	// RequestTimeout bounds a page request including its backend calls
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" default:"60s"`

	// MaxUploadSize caps a multipart request body; keep it above the resume and image limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" default:"16777216"`

	// MultipartMaxMemory is the part of a multipart form held in memory.
	// Default is 10MB.
	MultipartMaxMemory int64 `env:"MULTIPART_MAX_MEMORY" default:"10485760"`
}
