package common

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teemow/toodledo/internal/auth"
)

func TestGetAccountFromArgs(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing", map[string]any{}, auth.DefaultAccount},
		{"nil args", nil, auth.DefaultAccount},
		{"named account", map[string]any{"account": "work"}, "work"},
		{"surrounding spaces", map[string]any{"account": "  home "}, "home"},
		{"blank", map[string]any{"account": "   "}, auth.DefaultAccount},
		{"not a string", map[string]any{"account": 42}, auth.DefaultAccount},
		// Invalid names pass through and are rejected by the server context.
		{"path traversal", map[string]any{"account": "../etc"}, "../etc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetAccountFromArgs(tt.args))
		})
	}
}
