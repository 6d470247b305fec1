package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/teemow/toodledo/internal/logging"
)

// ErrMissingCredentials is returned by RequireCredentials when the client id
// or secret is not configured.
var ErrMissingCredentials = errors.New("toodledo client credentials are not configured")

// Validate ensures the configuration is usable. Credentials are checked
// separately by RequireCredentials since not every command needs them.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Toodledo.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("toodledo.base_url %q is not an absolute URL", c.Toodledo.BaseURL)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("toodledo.base_url must use http or https, got %q", u.Scheme)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Logging.Format != logging.FormatText && c.Logging.Format != logging.FormatJSON {
		return fmt.Errorf("logging.format must be %q or %q, got %q", logging.FormatText, logging.FormatJSON, c.Logging.Format)
	}
	if c.Watch.IntervalSeconds < 5 {
		return fmt.Errorf("watch.interval_seconds must be at least 5, got %d", c.Watch.IntervalSeconds)
	}
	if err := c.Instrumentation.Validate(); err != nil {
		return fmt.Errorf("instrumentation: %w", err)
	}
	return nil
}

// RequireCredentials reports whether the client id and secret are set.
func (c *Config) RequireCredentials() error {
	var missing []string
	if c.Toodledo.ClientID == "" {
		missing = append(missing, "toodledo.client_id (TOODLEDO_CLIENT_ID)")
	}
	if c.Toodledo.ClientSecret == "" {
		missing = append(missing, "toodledo.client_secret (TOODLEDO_CLIENT_SECRET)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: set %v", ErrMissingCredentials, missing)
	}
	return nil
}
