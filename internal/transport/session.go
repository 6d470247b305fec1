package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/toodledo/internal/apierror"
	"github.com/teemow/toodledo/internal/instrumentation"
	"github.com/teemow/toodledo/internal/logging"
)

// maxResponseSize bounds how much of a response body is read.
const maxResponseSize = 32 << 20

// Transport performs Toodledo API requests and returns the decoded JSON body.
type Transport interface {
	Get(ctx context.Context, endpoint Endpoint, params url.Values) (json.RawMessage, error)
	Post(ctx context.Context, endpoint Endpoint, form url.Values) (json.RawMessage, error)
}

// StatusError is returned for a response with a non-2xx HTTP status.
type StatusError struct {
	StatusCode int
	Endpoint   Endpoint
	Body       string
	apiErr     error
}

// Error implements the error interface
func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: unexpected HTTP status %d %s", e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode))
	if e.apiErr != nil {
		msg += ": " + e.apiErr.Error()
	}
	return msg
}

// Unwrap returns the API error carried in the body, if any.
func (e *StatusError) Unwrap() error {
	return e.apiErr
}

// IsRateLimited reports whether err is an HTTP 429 response.
func IsRateLimited(err error) bool {
	return statusCode(err) == http.StatusTooManyRequests
}

// IsUnauthorized reports whether err is an HTTP 401 response.
func IsUnauthorized(err error) bool {
	return statusCode(err) == http.StatusUnauthorized
}

func statusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// Session is a Transport over an authenticated HTTP client.
type Session struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(baseURL string) SessionOption {
	return func(s *Session) {
		if baseURL != "" {
			s.baseURL = baseURL
		}
	}
}

// WithLogger sets the logger for request debug output.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records every request.
func WithMetrics(metrics *instrumentation.Metrics) SessionOption {
	return func(s *Session) {
		s.metrics = metrics
	}
}

// NewSession creates a Session sending requests through client.
func NewSession(client *http.Client, opts ...SessionOption) *Session {
	if client == nil {
		client = http.DefaultClient
	}
	s := &Session{
		client:  client,
		baseURL: DefaultBaseURL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get sends a GET request with params in the query string.
func (s *Session) Get(ctx context.Context, endpoint Endpoint, params url.Values) (json.RawMessage, error) {
	target := endpoint.URL(s.baseURL)
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	return s.do(ctx, req, endpoint, params)
}

// Post sends a POST request with a form encoded body.
func (s *Session) Post(ctx context.Context, endpoint Endpoint, form url.Values) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL(s.baseURL), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(ctx, req, endpoint, form)
}

func (s *Session) do(ctx context.Context, req *http.Request, endpoint Endpoint, params url.Values) (body json.RawMessage, err error) {
	ctx, span := instrumentation.StartAPISpan(ctx, endpoint.String())
	defer span.End()
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	defer func() {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		s.metrics.RecordAPIRequest(ctx, instrumentation.EndpointLabel(endpoint.String()), status, time.Since(start))
	}()

	s.logger.Debug("toodledo request",
		logging.Endpoint(endpoint.String()),
		slog.String("method", req.Method),
		slog.Any("params", logging.SanitizeParams(params)))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int(instrumentation.SpanAttrHTTPStatus, resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Endpoint: endpoint, Body: string(raw)}
		if json.Valid(raw) {
			statusErr.apiErr = apierror.Check(raw)
		}
		return nil, statusErr
	}

	if !json.Valid(raw) {
		return nil, fmt.Errorf("%s: response is not valid JSON", endpoint)
	}

	s.logger.Debug("toodledo response",
		logging.Endpoint(endpoint.String()),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(raw)))

	return json.RawMessage(raw), nil
}
