// Package apiclienttest provides an in-memory apiclient.Client for tests.
package apiclienttest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mkrupp/skillsphere/internal/apiclient"
	"github.com/mkrupp/skillsphere/internal/domain"
)

// Responder produces the decoded response body or the error for a call.
type Responder func(call apiclient.Call) (any, error)

// MockClient records every call and answers from a Responder.
type MockClient struct {
	mu      sync.Mutex
	calls   []apiclient.Call
	respond Responder
}

var _ apiclient.Client = (*MockClient)(nil)

// NewMockClient creates a MockClient. A nil respond answers every call with
// an empty JSON object.
func NewMockClient(respond Responder) *MockClient {
	if respond == nil {
		respond = func(apiclient.Call) (any, error) { return map[string]any{}, nil }
	}

	return &MockClient{respond: respond}
}

// Reply returns a Responder that answers every call with body.
func Reply(body any) Responder {
	return func(apiclient.Call) (any, error) { return body, nil }
}

// Fail returns a Responder that fails every call with err.
func Fail(err error) Responder {
	return func(apiclient.Call) (any, error) { return nil, err }
}

// Do implements apiclient.Client. The response body round-trips through JSON
// so decoding matches the real client.
func (m *MockClient) Do(ctx context.Context, call apiclient.Call, out any) error {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := m.respond(call)
	if err != nil {
		return err
	}

	if out == nil || body == nil {
		return nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

// Calls returns the recorded calls.
func (m *MockClient) Calls() []apiclient.Call {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]apiclient.Call(nil), m.calls...)
}

// StaticTokens is a sessionsvc.TokenSource over a fixed map.
type StaticTokens map[string]string

// Token returns the token for sessionID or domain.ErrNoToken.
func (t StaticTokens) Token(_ context.Context, sessionID string) (string, error) {
	if token, ok := t[sessionID]; ok {
		return token, nil
	}

	return "", domain.ErrNoToken
}
