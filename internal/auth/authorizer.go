package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"golang.org/x/oauth2"
)

// Reauthorizer obtains a fresh token through the OAuth2 authorization code flow.
type Reauthorizer interface {
	Authorize(ctx context.Context) (*oauth2.Token, error)
}

// ReauthorizerFunc adapts a function to the Reauthorizer interface.
type ReauthorizerFunc func(ctx context.Context) (*oauth2.Token, error)

// Authorize implements Reauthorizer.
func (f ReauthorizerFunc) Authorize(ctx context.Context) (*oauth2.Token, error) {
	return f(ctx)
}

// CommandLineAuthorizer asks the user to open the authorization URL and paste
// back the URL Toodledo redirected the browser to.
type CommandLineAuthorizer struct {
	Config *oauth2.Config
	In     io.Reader
	Out    io.Writer

	// newState returns the anti-forgery state parameter; defaults to a random UUID.
	newState func() string
}

// NewCommandLineAuthorizer returns an authorizer prompting on out and reading from in.
func NewCommandLineAuthorizer(config *oauth2.Config, in io.Reader, out io.Writer) *CommandLineAuthorizer {
	return &CommandLineAuthorizer{
		Config:   config,
		In:       in,
		Out:      out,
		newState: uuid.NewString,
	}
}

// Authorize implements Reauthorizer.
func (a *CommandLineAuthorizer) Authorize(ctx context.Context) (*oauth2.Token, error) {
	state := a.newState()
	authURL := a.Config.AuthCodeURL(state)

	fmt.Fprintf(a.Out, "Go to the following URL and authorize the app:\n\n%s\n\n", authURL)
	fmt.Fprint(a.Out, "Paste the full redirect URL here: ")

	line, err := readLine(ctx, a.In)
	if err != nil {
		return nil, fmt.Errorf("failed to read redirect URL: %w", err)
	}

	code, err := codeFromRedirect(line, state)
	if err != nil {
		return nil, err
	}

	token, err := a.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}

func readLine(ctx context.Context, r io.Reader) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(r).ReadString('\n')
		if errors.Is(err, io.EOF) && line != "" {
			err = nil
		}
		ch <- result{strings.TrimSpace(line), err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.line, res.err
	}
}

// codeFromRedirect extracts the authorization code from the redirect URL and
// checks its state parameter. A bare code is accepted as well.
func codeFromRedirect(input, wantState string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.New("no redirect URL given")
	}

	if !strings.Contains(input, "?") && !strings.Contains(input, "=") {
		return input, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid redirect URL: %w", err)
	}
	q := u.Query()

	if e := q.Get("error"); e != "" {
		return "", fmt.Errorf("authorization denied: %s %s", e, q.Get("error_description"))
	}
	if got := q.Get("state"); got != wantState {
		return "", fmt.Errorf("state mismatch in redirect URL (got %q)", got)
	}
	code := q.Get("code")
	if code == "" {
		return "", errors.New("redirect URL has no code parameter")
	}
	return code, nil
}

// IsInteractive reports whether f is a terminal a user can type into.
func IsInteractive(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
