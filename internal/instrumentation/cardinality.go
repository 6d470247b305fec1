package instrumentation

import "strings"

// Cardinality management helpers for metrics.
// These functions reduce label values to a small fixed set to prevent metrics explosion.
//
// Always use these helpers when recording metrics with values derived from
// request paths or user input.

// EndpointLabel turns a Toodledo endpoint path into a metric label.
//
// Example:
//
//	EndpointLabel("tasks/get.php")          // "tasks.get"
//	EndpointLabel("/3/account/token.php")   // "account.token"
//	EndpointLabel("tasks/get.php?start=0")  // "tasks.get"
//	EndpointLabel("")                       // "unknown"
func EndpointLabel(endpoint string) string {
	if i := strings.IndexAny(endpoint, "?#"); i >= 0 {
		endpoint = endpoint[:i]
	}
	endpoint = strings.Trim(endpoint, "/")
	endpoint = strings.TrimSuffix(endpoint, ".php")

	parts := strings.Split(endpoint, "/")
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}

	label := strings.Join(parts, ".")
	if label == "" {
		return "unknown"
	}
	for _, r := range label {
		if (r < 'a' || r > 'z') && r != '.' && r != '_' {
			return "other"
		}
	}
	return label
}

// Common operation names used by the client for metrics and spans.
const (
	OperationGetAccount    = "get_account"
	OperationGetTasks      = "get_tasks"
	OperationGetDeleted    = "get_deleted_tasks"
	OperationAddTasks      = "add_tasks"
	OperationEditTasks     = "edit_tasks"
	OperationDeleteTasks   = "delete_tasks"
	OperationGetFolders    = "get_folders"
	OperationAddFolder     = "add_folder"
	OperationEditFolder    = "edit_folder"
	OperationDeleteFolder  = "delete_folder"
	OperationGetContexts   = "get_contexts"
	OperationAddContext    = "add_context"
	OperationEditContext   = "edit_context"
	OperationDeleteContext = "delete_context"
)
