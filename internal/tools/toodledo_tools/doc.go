// Package toodledo_tools provides MCP tools for managing Toodledo tasks,
// folders and contexts.
//
// # Available Tools
//
// Account:
//   - toodledo_get_account: Get account information and last edit times
//
// Tasks:
//   - toodledo_list_tasks: List tasks (with completion and modification filters)
//   - toodledo_list_deleted_tasks: List tasks deleted after a point in time
//   - toodledo_add_tasks: Add one or more tasks
//   - toodledo_edit_tasks: Change fields of one or more tasks
//   - toodledo_complete_tasks: Mark tasks as completed
//   - toodledo_delete_tasks: Delete tasks
//
// Folders and contexts:
//   - toodledo_list_folders, toodledo_add_folder, toodledo_edit_folder, toodledo_delete_folder
//   - toodledo_list_contexts, toodledo_add_context, toodledo_edit_context, toodledo_delete_context
//
// Tools that change data are not registered in read-only mode. Batched task
// writes report how many records the server applied, so a partially applied
// batch can be told apart from one that failed outright.
//
// # Multi-Account Support
//
// All tools accept an optional 'account' parameter naming the stored token to
// use. If not provided, the 'default' account is used.
package toodledo_tools
