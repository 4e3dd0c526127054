// Package apiclient issues requests against the SkillSphere REST backend.
package apiclient

import (
	"context"
	"net/url"
	"time"
)

const (
	TraceIDHeader       = "X-Request-ID"
	AuthorizationHeader = "Authorization"
	ContentTypeHeader   = "Content-Type"
	ContentTypeJSON     = "application/json"
)

// Client issues backend calls. All outbound traffic passes through it.
type Client interface {
	// Do sends call and decodes a successful JSON response into out, which may be nil.
	// Non-2xx responses are returned as *Error. Calls that get no response fail with
	// an error matching domain.ErrTimeout or domain.ErrNetwork.
	Do(ctx context.Context, call Call, out any) error
}

// Call describes one backend request. Body is sent as JSON unless Form is set.
type Call struct {
	Method  string
	Path    string
	Query   url.Values
	Token   string
	Body    any
	Form    *Form
	Timeout time.Duration
}
