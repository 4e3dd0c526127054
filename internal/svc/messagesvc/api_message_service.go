package messagesvc

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/mkrupp/skillsphere/internal/apiclient"
	"github.com/mkrupp/skillsphere/internal/domain"
	"github.com/mkrupp/skillsphere/internal/infra/logging"
	"github.com/mkrupp/skillsphere/internal/svc/sessionsvc"
)

const messagesPath = "/api/messages"

// APIMessageService implements MessageService against the REST backend.
type APIMessageService struct {
	api    apiclient.Client
	tokens sessionsvc.TokenSource
	cfg    MessageConfig
	policy *bluemonday.Policy
	log    logging.Logger
}

var _ MessageService = (*APIMessageService)(nil)

// NewAPIMessageService creates a new APIMessageService.
func NewAPIMessageService(
	api apiclient.Client,
	tokens sessionsvc.TokenSource,
	cfg MessageConfig,
) *APIMessageService {
	return &APIMessageService{
		api:    api,
		tokens: tokens,
		cfg:    cfg,
		policy: bluemonday.StrictPolicy(),
		log:    logging.GetLogger("svc.messagesvc.api_message_service"),
	}
}

// Thread implements MessageService.Thread.
func (s *APIMessageService) Thread(
	ctx context.Context,
	sessionID, receiverID, jobID string,
) (messages []domain.Message, err error) {
	log := s.log.With(logging.Group("thread", "receiver", receiverID, "job", jobID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "fetch messages failed", "error", err)
		} else {
			log.DebugContext(ctx, "messages fetched", "count", len(messages))
		}
	}()

	if receiverID == "" || jobID == "" {
		return nil, ErrNoRecipient
	}

	token, err := s.tokens.Token(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	var thread domain.MessageThread

	if err := s.api.Do(ctx, apiclient.Call{
		Method: http.MethodGet,
		Path:   messagesPath + "/seeker/" + url.PathEscape(receiverID) + "/" + url.PathEscape(jobID),
		Token:  token,
	}, &thread); err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}

	return thread.Data, nil
}

// Send implements MessageService.Send.
func (s *APIMessageService) Send(ctx context.Context, sessionID string, req domain.SendMessageRequest) (err error) {
	log := s.log.With(logging.Group("message", "receiver", req.ReceiverID, "job", req.JobID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "send message failed", "error", err)
		} else {
			log.DebugContext(ctx, "message sent")
		}
	}()

	req.Message = s.Sanitize(req.Message)
	if req.Message == "" {
		return domain.ValidationErrors{"message": MsgRequired}
	}

	if req.ReceiverID == "" || req.JobID == "" {
		return ErrNoRecipient
	}

	token, err := s.tokens.Token(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("get token: %w", err)
	}

	if err := s.api.Do(ctx, apiclient.Call{
		Method:  http.MethodPost,
		Path:    messagesPath,
		Token:   token,
		Body:    req,
		Timeout: s.cfg.SendTimeout,
	}, nil); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// Sanitize strips markup and surrounding whitespace from a message body.
func (s *APIMessageService) Sanitize(body string) string {
	// The strict policy escapes what it keeps; the backend stores plain text.
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(body)))
}
