package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/toodledo/internal/instrumentation"
	"github.com/teemow/toodledo/internal/logging"
	"github.com/teemow/toodledo/internal/transport"
)

// ErrAuthorizationNeeded is returned when no usable token exists and the
// provider has no way to ask the user for a new one.
var ErrAuthorizationNeeded = errors.New("toodledo authorization needed: run 'toodledo auth login'")

// Provider hands out authenticated Toodledo sessions for one account and
// renews their authorization on demand.
type Provider struct {
	config       *oauth2.Config
	store        TokenStore
	reauthorizer Reauthorizer
	baseURL      string
	httpClient   *http.Client
	logger       *slog.Logger
	metrics      *instrumentation.Metrics

	mu      sync.Mutex
	session *transport.Session
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithReauthorizer sets how a new token is obtained once refreshing fails.
func WithReauthorizer(r Reauthorizer) ProviderOption {
	return func(p *Provider) {
		p.reauthorizer = r
	}
}

// WithBaseURL overrides the API base URL of created sessions.
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		p.baseURL = baseURL
	}
}

// WithHTTPClient sets the client used for token and API requests.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *Provider) {
		p.httpClient = client
	}
}

// WithLogger sets the provider logger.
func WithLogger(logger *slog.Logger) ProviderOption {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics records token refreshes and reauthorizations.
func WithMetrics(metrics *instrumentation.Metrics) ProviderOption {
	return func(p *Provider) {
		p.metrics = metrics
	}
}

// NewProvider creates a Provider for the application in config whose token
// lives in store.
func NewProvider(config *oauth2.Config, store TokenStore, opts ...ProviderOption) *Provider {
	p := &Provider{
		config: config,
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// oauthContext carries the configured HTTP client to the oauth2 package.
func (p *Provider) oauthContext(ctx context.Context) context.Context {
	if p.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

// Session returns an authenticated transport. The same session is returned
// until Reauthorize replaces it.
func (p *Provider) Session(ctx context.Context) (transport.Transport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session != nil {
		return p.session, nil
	}

	token, err := p.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	if token == nil {
		token, err = p.authorize(ctx)
		if err != nil {
			return nil, err
		}
	}

	p.session = p.newSession(ctx, token)
	return p.session, nil
}

// Reauthorize discards the current session and obtains a new token, first by
// refreshing and then through the reauthorizer.
func (p *Provider) Reauthorize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.session = nil

	token, err := p.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load token: %w", err)
	}

	if token != nil && token.RefreshToken != "" {
		refreshed, err := p.refresh(ctx, token)
		if err == nil {
			p.session = p.newSession(ctx, refreshed)
			return nil
		}
		p.logger.Warn("token refresh failed, authorization required", logging.Err(err))
	}

	token, err = p.authorize(ctx)
	if err != nil {
		return err
	}
	p.session = p.newSession(ctx, token)
	return nil
}

func (p *Provider) refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	expired := *token
	expired.Expiry = time.Now().Add(-time.Minute)

	refreshed, err := p.config.TokenSource(p.oauthContext(ctx), &expired).Token()
	if err != nil {
		p.metrics.RecordTokenRefresh(ctx, instrumentation.OAuthResultFailure)
		return nil, err
	}
	p.metrics.RecordTokenRefresh(ctx, instrumentation.OAuthResultSuccess)

	if err := p.store.Save(ctx, refreshed); err != nil {
		return nil, fmt.Errorf("failed to save token: %w", err)
	}
	return refreshed, nil
}

func (p *Provider) authorize(ctx context.Context) (*oauth2.Token, error) {
	if p.reauthorizer == nil {
		return nil, ErrAuthorizationNeeded
	}

	token, err := p.reauthorizer.Authorize(p.oauthContext(ctx))
	if err != nil {
		p.metrics.RecordReauthorization(ctx, instrumentation.OAuthResultFailure)
		return nil, fmt.Errorf("authorization failed: %w", err)
	}
	p.metrics.RecordReauthorization(ctx, instrumentation.OAuthResultSuccess)

	if err := p.store.Save(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to save token: %w", err)
	}
	p.logger.Info("toodledo authorization complete")
	return token, nil
}

func (p *Provider) newSession(ctx context.Context, token *oauth2.Token) *transport.Session {
	oauthCtx := p.oauthContext(ctx)
	source := newPersistingTokenSource(oauthCtx, p.config.TokenSource(oauthCtx, token), p.store, token, p.logger, p.metrics)
	client := oauth2.NewClient(context.WithoutCancel(oauthCtx), oauth2.ReuseTokenSource(token, source))

	return transport.NewSession(client,
		transport.WithBaseURL(p.baseURL),
		transport.WithLogger(p.logger),
		transport.WithMetrics(p.metrics))
}
