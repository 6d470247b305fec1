package instrumentation

import "testing"

func TestEndpointLabel(t *testing.T) {
	tests := []struct {
		endpoint string
		expected string
	}{
		{"tasks/get.php", "tasks.get"},
		{"/tasks/deleted.php", "tasks.deleted"},
		{"account/token.php", "account.token"},
		{"/3/folders/add.php", "folders.add"},
		{"https://api.toodledo.com/3/contexts/edit.php", "contexts.edit"},
		{"tasks/get.php?start=1000&num=1000", "tasks.get"},
		{"tasks/12345.php", "other"},
		{"", "unknown"},
		{"/", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			result := EndpointLabel(tt.endpoint)
			if result != tt.expected {
				t.Errorf("EndpointLabel(%q) = %q, want %q", tt.endpoint, result, tt.expected)
			}
		})
	}
}
