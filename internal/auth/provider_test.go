package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/teemow/toodledo/internal/logging"
	"github.com/teemow/toodledo/internal/transport"
)

func newTestProvider(t *testing.T, srv *httptest.Server, store TokenStore, opts ...ProviderOption) *Provider {
	t.Helper()
	base := []ProviderOption{
		WithBaseURL(srv.URL + "/3"),
		WithHTTPClient(srv.Client()),
		WithLogger(logging.Discard()),
	}
	return NewProvider(OAuthConfig("client", "secret", srv.URL+"/3", nil), store, append(base, opts...)...)
}

func TestProvider_NoTokenNoReauthorizer(t *testing.T) {
	var grants []string
	srv := newTokenServer(t, &grants)

	p := newTestProvider(t, srv, NewMemoryTokenStore(nil))
	_, err := p.Session(context.Background())
	assert.ErrorIs(t, err, ErrAuthorizationNeeded)
}

func TestProvider_SessionUsesStoredToken(t *testing.T) {
	var authHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"userid":"u1"}`)
	}))
	t.Cleanup(srv.Close)

	store := NewMemoryTokenStore(&oauth2.Token{
		AccessToken: "stored",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	})
	p := newTestProvider(t, srv, store)

	session, err := p.Session(context.Background())
	require.NoError(t, err)

	_, err = session.Get(context.Background(), transport.AccountGet, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer stored", authHeader)

	again, err := p.Session(context.Background())
	require.NoError(t, err)
	assert.Same(t, session, again)
}

func TestProvider_FirstSessionAuthorizes(t *testing.T) {
	var grants []string
	srv := newTokenServer(t, &grants)
	store := NewMemoryTokenStore(nil)

	calls := 0
	reauth := ReauthorizerFunc(func(ctx context.Context) (*oauth2.Token, error) {
		calls++
		return &oauth2.Token{AccessToken: "fresh", Expiry: time.Now().Add(time.Hour)}, nil
	})
	p := newTestProvider(t, srv, store, WithReauthorizer(reauth))

	_, err := p.Session(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	saved, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", saved.AccessToken)
}

func TestProvider_ReauthorizeRefreshesFirst(t *testing.T) {
	var grants []string
	srv := newTokenServer(t, &grants)
	store := NewMemoryTokenStore(&oauth2.Token{
		AccessToken:  "old",
		RefreshToken: "good",
		Expiry:       time.Now().Add(time.Hour),
	})

	reauth := ReauthorizerFunc(func(ctx context.Context) (*oauth2.Token, error) {
		t.Fatal("reauthorizer must not run when refreshing works")
		return nil, nil
	})
	p := newTestProvider(t, srv, store, WithReauthorizer(reauth))

	require.NoError(t, p.Reauthorize(context.Background()))
	assert.Equal(t, []string{"refresh_token"}, grants)

	saved, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refreshed-access", saved.AccessToken)
}

func TestProvider_ReauthorizeFallsBackToAuthorizer(t *testing.T) {
	var grants []string
	srv := newTokenServer(t, &grants)
	store := NewMemoryTokenStore(&oauth2.Token{AccessToken: "old", RefreshToken: "revoked"})

	calls := 0
	reauth := ReauthorizerFunc(func(ctx context.Context) (*oauth2.Token, error) {
		calls++
		return &oauth2.Token{AccessToken: "interactive", Expiry: time.Now().Add(time.Hour)}, nil
	})
	p := newTestProvider(t, srv, store, WithReauthorizer(reauth))

	require.NoError(t, p.Reauthorize(context.Background()))
	assert.Equal(t, 1, calls)

	saved, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "interactive", saved.AccessToken)
}

func TestProvider_ReauthorizeFailure(t *testing.T) {
	var grants []string
	srv := newTokenServer(t, &grants)

	reauth := ReauthorizerFunc(func(ctx context.Context) (*oauth2.Token, error) {
		return nil, errors.New("user gave up")
	})
	p := newTestProvider(t, srv, NewMemoryTokenStore(nil), WithReauthorizer(reauth))

	err := p.Reauthorize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user gave up")
}

func TestPersistingTokenSource_SavesChangedTokens(t *testing.T) {
	store := NewMemoryTokenStore(nil)
	initial := &oauth2.Token{AccessToken: "a"}

	tokens := []*oauth2.Token{{AccessToken: "a"}, {AccessToken: "b"}, {AccessToken: "b"}}
	i := 0
	base := tokenSourceFunc(func() (*oauth2.Token, error) {
		tok := tokens[i]
		i++
		return tok, nil
	})

	s := newPersistingTokenSource(context.Background(), base, store, initial, logging.Discard(), nil)
	for range tokens {
		_, err := s.Token()
		require.NoError(t, err)
	}
	assert.Equal(t, 1, store.Saves())
}

func TestPersistingTokenSource_Error(t *testing.T) {
	base := tokenSourceFunc(func() (*oauth2.Token, error) {
		return nil, &oauth2.RetrieveError{ErrorCode: "invalid_grant"}
	})
	s := newPersistingTokenSource(context.Background(), base, NewMemoryTokenStore(nil), nil, logging.Discard(), nil)

	_, err := s.Token()
	var retrieveErr *oauth2.RetrieveError
	assert.ErrorAs(t, err, &retrieveErr)
}

type tokenSourceFunc func() (*oauth2.Token, error)

func (f tokenSourceFunc) Token() (*oauth2.Token, error) { return f() }
