package messagesvc

import (
	"context"
	"errors"

	"github.com/mkrupp/skillsphere/internal/domain"
)

// Toast messages for the recruit composer.
const (
	MsgRequired   = "Message is required"
	MsgSent       = "Message sent successfully!"
	MsgSendFailed = "Failed to send message"
)

// ErrNoRecipient is returned when a message names no seeker or no job.
var ErrNoRecipient = errors.New("no recipient")

// MessageService reads and sends recruiter messages.
type MessageService interface {
	// Thread lists the messages sent to receiverID about jobID.
	Thread(ctx context.Context, sessionID, receiverID, jobID string) ([]domain.Message, error)

	// Send strips markup from the body and sends it. A body that is empty
	// afterwards fails with domain.ValidationErrors without a network call.
	Send(ctx context.Context, sessionID string, req domain.SendMessageRequest) error
}
