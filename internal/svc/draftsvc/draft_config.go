package draftsvc

// DraftConfig holds configuration parameters for the draft service.
type DraftConfig struct {
	// MaxSize is the maximum allowed size of a staged file in bytes.
	// Default is 5MB.
	MaxSize int64 `env:"MAX_SIZE" default:"5242880"`
}
