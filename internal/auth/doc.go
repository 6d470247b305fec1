// Package auth manages Toodledo OAuth2 credentials.
//
// Tokens are kept per account in a TokenStore (a locked JSON file by default)
// and refreshed transparently. When refreshing fails, a Provider asks its
// Reauthorizer for a new token, which on the command line means walking the
// user through the authorization code flow.
package auth
