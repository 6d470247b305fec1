package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCategoryFromToolName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"toodledo_get_account", "Account Tools"},
		{"toodledo_list_tasks", "Task Tools"},
		{"toodledo_list_deleted_tasks", "Task Tools"},
		{"toodledo_add_folder", "Folder Tools"},
		{"toodledo_delete_context", "Context Tools"},
		{"other_tool", "Other"},
		{"toodledo", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, getCategoryFromToolName(tt.name))
		})
	}
}

func TestToolsMarkdown(t *testing.T) {
	markdown, err := toolsMarkdown(context.Background())
	require.NoError(t, err)

	assert.Contains(t, markdown, "# MCP Tools Reference")
	for _, heading := range []string{"## Account Tools", "## Task Tools", "## Folder Tools", "## Context Tools"} {
		assert.Contains(t, markdown, heading)
	}
	assert.Contains(t, markdown, "### toodledo_add_tasks")
	assert.Contains(t, markdown, "- `tasks` (required): ")
	assert.NotContains(t, markdown, "## Other")
}
