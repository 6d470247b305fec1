package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/oauth2"
)

// DefaultAccount is the account name used when none is given.
const DefaultAccount = "default"

// lockRetryDelay is how often a blocked token file lock is retried.
const lockRetryDelay = 50 * time.Millisecond

// TokenStore persists the OAuth2 token of one account.
type TokenStore interface {
	// Load returns the stored token, or nil and no error when there is none.
	Load(ctx context.Context) (*oauth2.Token, error)
	// Save replaces the stored token.
	Save(ctx context.Context, token *oauth2.Token) error
}

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateAccountName checks that an account name is safe to use in a file name.
func ValidateAccountName(account string) error {
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: use 1-64 letters, digits, '-' or '_'", account)
	}
	return nil
}

// DefaultTokenPath returns the token file of account under the user cache directory.
func DefaultTokenPath(account string) (string, error) {
	if account == "" {
		account = DefaultAccount
	}
	if err := ValidateAccountName(account); err != nil {
		return "", err
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate cache directory: %w", err)
	}
	return filepath.Join(cacheDir, "toodledo", "tokens", account+".json"), nil
}

// FileTokenStore keeps the token as JSON in a file readable only by the user.
// Reads and writes hold an advisory lock on "<path>.lock", so separate
// processes sharing an account do not interleave a refresh with a read.
type FileTokenStore struct {
	path string
	lock *flock.Flock
}

// NewFileTokenStore returns a store backed by the file at path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the token file path.
func (s *FileTokenStore) Path() string {
	return s.path
}

// Load implements TokenStore.
func (s *FileTokenStore) Load(ctx context.Context) (*oauth2.Token, error) {
	if _, err := os.Stat(filepath.Dir(s.path)); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	locked, err := s.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to lock token file: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("failed to lock token file %s", s.path)
	}
	defer func() { _ = s.lock.Unlock() }()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid token file %s: %w", s.path, err)
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, nil
	}
	return &token, nil
}

// Save implements TokenStore. The file is replaced atomically.
func (s *FileTokenStore) Save(ctx context.Context, token *oauth2.Token) error {
	if token == nil {
		return errors.New("cannot save a nil token")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to lock token file: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to lock token file %s", s.path)
	}
	defer func() { _ = s.lock.Unlock() }()

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary token file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set token file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}

// MemoryTokenStore keeps the token in memory. It is safe for concurrent use.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token *oauth2.Token
	saves int
}

// NewMemoryTokenStore returns a store holding token, which may be nil.
func NewMemoryTokenStore(token *oauth2.Token) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

// Load implements TokenStore.
func (s *MemoryTokenStore) Load(context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil {
		return nil, nil
	}
	t := *s.token
	return &t, nil
}

// Save implements TokenStore.
func (s *MemoryTokenStore) Save(_ context.Context, token *oauth2.Token) error {
	if token == nil {
		return errors.New("cannot save a nil token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := *token
	s.token = &t
	s.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (s *MemoryTokenStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
