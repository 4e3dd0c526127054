package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mkrupp/skillsphere/internal/domain"
	context_ "github.com/mkrupp/skillsphere/internal/infra/context"
	"github.com/mkrupp/skillsphere/internal/infra/logging"
)

const maxResponseSize = 10 << 20

// HTTPClientConfig holds configuration for the backend client.
type HTTPClientConfig struct {
	// BaseURL is the backend origin, e.g. http://localhost:5000
	BaseURL string `env:"BASE_URL"`
	// Timeout applies to calls that do not set their own
	Timeout time.Duration `env:"TIMEOUT" default:"30s"`
	// AuthScheme prefixes the token in the Authorization header; empty sends the raw token
	AuthScheme string `env:"AUTH_SCHEME" default:""`
}

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    *url.URL
	log        logging.Logger
	cfg        HTTPClientConfig
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTPClient with the given configuration.
// If httpClient is nil, http.DefaultClient will be used.
func NewHTTPClient(cfg HTTPClientConfig, httpClient *http.Client) (*HTTPClient, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	baseURL, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("parse base url: %q is not absolute", cfg.BaseURL) //nolint:err113
	}

	return &HTTPClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		log:        logging.GetLogger("apiclient.http_client"),
		cfg:        cfg,
	}, nil
}

// Do implements Client.Do.
//
//nolint:cyclop,funlen
func (c *HTTPClient) Do(ctx context.Context, call Call, out any) (err error) {
	timeout := call.Timeout
	if timeout <= 0 {
		timeout = c.cfg.Timeout
	}

	log := c.log.With(logging.Group("call",
		"method", call.Method,
		"path", call.Path,
		"timeout", timeout,
	))

	start := time.Now()

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "backend call failed", "error", err, "duration", time.Since(start))
		} else {
			log.DebugContext(ctx, "backend call done", "duration", time.Since(start))
		}
	}()

	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := c.newRequest(ctx, call)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classify(ctx, call, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return classify(ctx, call, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(call.Method, call.Path, resp.StatusCode, body)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", call.Method, call.Path, err)
	}

	return nil
}

func (c *HTTPClient) newRequest(ctx context.Context, call Call) (*http.Request, error) {
	target := c.baseURL.JoinPath(call.Path)
	if len(call.Query) > 0 {
		target.RawQuery = call.Query.Encode()
	}

	var (
		body        io.Reader
		contentType = ContentTypeJSON
	)

	switch {
	case call.Form != nil:
		buf, formType, err := call.Form.encode()
		if err != nil {
			return nil, fmt.Errorf("encode form: %w", err)
		}

		body, contentType = buf, formType
	case call.Body != nil:
		data, err := json.Marshal(call.Body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}

		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	req.Header.Set(ContentTypeHeader, contentType)
	req.Header.Set("Accept", ContentTypeJSON)

	if call.Token != "" {
		req.Header.Set(AuthorizationHeader, c.authorization(call.Token))
	}

	if traceID, ok := context_.TraceIDFromContext(ctx); ok {
		req.Header.Set(TraceIDHeader, traceID)
	}

	return req, nil
}

func (c *HTTPClient) authorization(token string) string {
	if c.cfg.AuthScheme == "" {
		return token
	}

	return c.cfg.AuthScheme + " " + token
}

// classify turns a failure without a response into a domain error. A caller
// that went away keeps its context error.
func classify(ctx context.Context, call Call, err error) error {
	var netErr net.Error

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%s %s: %w", call.Method, call.Path, errors.Join(domain.ErrTimeout, err))
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s %s: %w", call.Method, call.Path, err)
	default:
		return fmt.Errorf("%s %s: %w", call.Method, call.Path, errors.Join(domain.ErrNetwork, err))
	}
}
