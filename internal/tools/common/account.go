package common

import (
	"strings"

	"github.com/teemow/toodledo/internal/auth"
)

// GetAccountFromArgs returns the trimmed "account" argument, or
// auth.DefaultAccount when it is missing, blank or not a string. The name is
// validated later, when the server context creates the account's client.
func GetAccountFromArgs(args map[string]any) string {
	if account, ok := args["account"].(string); ok {
		if account = strings.TrimSpace(account); account != "" {
			return account
		}
	}
	return auth.DefaultAccount
}
