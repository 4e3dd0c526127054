package messagesvc

import "time"

// MessageConfig holds configuration parameters for the message service.
type MessageConfig struct {
	// SendTimeout bounds sending a message
	SendTimeout time.Duration `env:"SEND_TIMEOUT" default:"10s"`
}
