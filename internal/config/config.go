package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/teemow/toodledo/internal/auth"
	"github.com/teemow/toodledo/internal/instrumentation"
)

//go:embed sample_config.toml
var sampleConfig string

// Toodledo holds the registered application credentials.
type Toodledo struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	BaseURL      string   `toml:"base_url"`
	Scopes       []string `toml:"scopes"`
}

// Tokens configures where OAuth tokens are kept.
type Tokens struct {
	Dir string `toml:"dir"`
}

// Logging configures log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Watch configures the watch command.
type Watch struct {
	IntervalSeconds int    `toml:"interval_seconds"`
	MetricsAddr     string `toml:"metrics_addr"`
}

// Config is the complete CLI configuration.
type Config struct {
	Toodledo Toodledo `toml:"toodledo"`
	Tokens   Tokens   `toml:"tokens"`
	Logging  Logging  `toml:"logging"`
	Watch    Watch    `toml:"watch"`

	Instrumentation instrumentation.Config `toml:"instrumentation"`
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/toodledo/config.toml.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(dir, "toodledo", "config.toml"), nil
}

// Load reads the configuration file at path, or the default path when empty,
// then applies .env and environment overrides. A missing file is not an error;
// the returned bool reports whether it existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strictErr *toml.StrictMissingError
			if errors.As(err, &strictErr) {
				return nil, "", false, fmt.Errorf("parse config %s: %s", resolved, strictErr.String())
			}
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	if err := LoadDotEnv(".env"); err != nil {
		return nil, "", false, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

// LoadDotEnv loads variables from a .env file without overriding variables
// that are already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return "", false, err
		}
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return path, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", path)
	}
	return path, true, nil
}

func (c *Config) applyEnv() error {
	c.Toodledo.ClientID = getEnvOrDefault("TOODLEDO_CLIENT_ID", c.Toodledo.ClientID)
	c.Toodledo.ClientSecret = getEnvOrDefault("TOODLEDO_CLIENT_SECRET", c.Toodledo.ClientSecret)
	c.Toodledo.BaseURL = getEnvOrDefault("TOODLEDO_BASE_URL", c.Toodledo.BaseURL)
	c.Tokens.Dir = getEnvOrDefault("TOODLEDO_TOKEN_STORAGE", c.Tokens.Dir)
	if scope := os.Getenv("TOODLEDO_SCOPE"); scope != "" {
		c.Toodledo.Scopes = splitScopes(scope)
	}
	if err := c.Instrumentation.ApplyEnv(os.LookupEnv); err != nil {
		return fmt.Errorf("instrumentation environment: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	c.Toodledo.ClientID = strings.TrimSpace(c.Toodledo.ClientID)
	c.Toodledo.ClientSecret = strings.TrimSpace(c.Toodledo.ClientSecret)
	c.Toodledo.BaseURL = strings.TrimRight(strings.TrimSpace(c.Toodledo.BaseURL), "/")
	if c.Toodledo.BaseURL == "" {
		c.Toodledo.BaseURL = defaultBaseURL
	}
	if len(c.Toodledo.Scopes) == 0 {
		c.Toodledo.Scopes = append([]string(nil), auth.DefaultScopes...)
	}
	c.Tokens.Dir = expandHome(strings.TrimSpace(c.Tokens.Dir))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Instrumentation.MetricsExporter = strings.ToLower(strings.TrimSpace(c.Instrumentation.MetricsExporter))
	c.Instrumentation.TracingExporter = strings.ToLower(strings.TrimSpace(c.Instrumentation.TracingExporter))
	if c.Watch.IntervalSeconds == 0 {
		c.Watch.IntervalSeconds = defaultWatchInterval
	}
}

// TokenPath returns the token file of account.
func (c *Config) TokenPath(account string) (string, error) {
	if account == "" {
		account = auth.DefaultAccount
	}
	if c.Tokens.Dir == "" {
		return auth.DefaultTokenPath(account)
	}
	if err := auth.ValidateAccountName(account); err != nil {
		return "", err
	}
	return filepath.Join(c.Tokens.Dir, account+".json"), nil
}

// CreateSample writes the sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// splitScopes accepts space or comma separated scope lists.
func splitScopes(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
