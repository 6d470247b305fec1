// Package config loads the toodledo CLI configuration.
//
// Values come from, in increasing precedence: built-in defaults, the TOML file
// (by default $XDG_CONFIG_HOME/toodledo/config.toml), a .env file in the
// working directory and environment variables (TOODLEDO_CLIENT_ID,
// TOODLEDO_CLIENT_SECRET, TOODLEDO_TOKEN_STORAGE, TOODLEDO_BASE_URL,
// TOODLEDO_SCOPE).
package config
