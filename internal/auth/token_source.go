package auth

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"

	"github.com/teemow/toodledo/internal/instrumentation"
	"github.com/teemow/toodledo/internal/logging"
)

// persistingTokenSource saves every token its base source hands out that
// differs from the previous one, so refreshed tokens survive the process.
type persistingTokenSource struct {
	ctx     context.Context
	base    oauth2.TokenSource
	store   TokenStore
	logger  *slog.Logger
	metrics *instrumentation.Metrics

	mu   sync.Mutex
	last *oauth2.Token
}

func newPersistingTokenSource(ctx context.Context, base oauth2.TokenSource, store TokenStore, initial *oauth2.Token, logger *slog.Logger, metrics *instrumentation.Metrics) *persistingTokenSource {
	return &persistingTokenSource{
		ctx:     context.WithoutCancel(ctx),
		base:    base,
		store:   store,
		logger:  logger,
		metrics: metrics,
		last:    initial,
	}
}

// Token implements oauth2.TokenSource.
func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.base.Token()
	if err != nil {
		s.metrics.RecordTokenRefresh(s.ctx, instrumentation.OAuthResultFailure)
		s.logger.Warn("token refresh failed", logging.Err(err))
		return nil, err
	}

	if s.last != nil && token.AccessToken == s.last.AccessToken {
		return token, nil
	}

	s.metrics.RecordTokenRefresh(s.ctx, instrumentation.OAuthResultSuccess)
	s.logger.Debug("token refreshed",
		slog.String("access_token", logging.SanitizeToken(token.AccessToken)),
		slog.Time("expiry", token.Expiry))

	if err := s.store.Save(s.ctx, token); err != nil {
		// The new token is still valid for this process.
		s.logger.Warn("failed to persist refreshed token", logging.Err(err))
	}
	s.last = token
	return token, nil
}
