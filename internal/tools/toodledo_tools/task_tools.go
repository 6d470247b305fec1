package toodledo_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/toodledo/internal/batch"
	"github.com/teemow/toodledo/internal/instrumentation"
	"github.com/teemow/toodledo/internal/server"
	"github.com/teemow/toodledo/internal/toodledo"
	"github.com/teemow/toodledo/internal/tools/common"
)

const taskFieldsDescription = `JSON array of task objects (or a single object). Fields: id, title, tags (array), ` +
	`start_date and due_date (YYYY-MM-DD), start_time and due_time (HH:MM:SS), completed_date, star (bool), ` +
	`priority (negative, low, medium, high, top), due_date_modifier (due_by, due_on, due_after, optionally), ` +
	`status (none, next_action, active, planning, delegated, waiting, hold, postponed, someday, canceled, reference), ` +
	`length (minutes), note, folder_id, context_id. A zero date, time or folder_id clears the field.`

func registerTaskTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) {
	listTasksTool := mcp.NewTool("toodledo_list_tasks",
		mcp.WithDescription("List Toodledo tasks. Returns id, title, modified and completed_date plus any requested optional fields"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("fields",
			mcp.Description("Comma-separated optional fields to return: "+strings.Join(toodledo.OptionalTaskFields, ", ")+". Use 'all' for every field"),
		),
		mcp.WithString("completion",
			mcp.Description("Filter by completion: 'any' (default), 'incomplete' or 'complete'"),
		),
		mcp.WithString("modifiedAfter",
			mcp.Description("Only tasks modified after this time (RFC 3339, YYYY-MM-DD or unix seconds)"),
		),
		mcp.WithString("modifiedBefore",
			mcp.Description("Only tasks modified before this time (RFC 3339, YYYY-MM-DD or unix seconds)"),
		),
		mcp.WithNumber("id",
			mcp.Description("Return only the task with this id"),
		),
	)
	addTool(s, sc, listTasksTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListTasks(ctx, request, sc)
	})

	listDeletedTool := mcp.NewTool("toodledo_list_deleted_tasks",
		mcp.WithDescription("List the ids of tasks deleted after a point in time"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("after",
			mcp.Description("Only tasks deleted after this time (RFC 3339, YYYY-MM-DD or unix seconds)"),
		),
	)
	addTool(s, sc, listDeletedTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListDeletedTasks(ctx, request, sc)
	})

	if readOnly {
		return
	}

	addTasksTool := mcp.NewTool("toodledo_add_tasks",
		mcp.WithDescription("Add one or more tasks. Tasks are sent in batches of 50; the result reports how many were applied"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("tasks",
			mcp.Required(),
			mcp.Description(taskFieldsDescription+" Every task needs a title; ids are ignored."),
		),
	)
	addTool(s, sc, addTasksTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleWriteTasks(ctx, request, sc, "toodledo_add_tasks", instrumentation.OperationAddTasks)
	})

	editTasksTool := mcp.NewTool("toodledo_edit_tasks",
		mcp.WithDescription("Change fields of one or more tasks. Only the given fields are changed"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("tasks",
			mcp.Required(),
			mcp.Description(taskFieldsDescription+" Every task needs an id."),
		),
	)
	addTool(s, sc, editTasksTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleWriteTasks(ctx, request, sc, "toodledo_edit_tasks", instrumentation.OperationEditTasks)
	})

	completeTasksTool := mcp.NewTool("toodledo_complete_tasks",
		mcp.WithDescription("Mark one or more tasks as completed"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("ids",
			mcp.Required(),
			mcp.Description("Task id or JSON array of task ids"),
		),
		mcp.WithString("date",
			mcp.Description("Completion date as YYYY-MM-DD (default: today)"),
		),
	)
	addTool(s, sc, completeTasksTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCompleteTasks(ctx, request, sc)
	})

	deleteTasksTool := mcp.NewTool("toodledo_delete_tasks",
		mcp.WithDescription("Delete one or more tasks"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("ids",
			mcp.Required(),
			mcp.Description("Task id or JSON array of task ids"),
		),
	)
	addTool(s, sc, deleteTasksTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleDeleteTasks(ctx, request, sc)
	})
}

// taskQueryFromArgs builds the task query of a list request.
func taskQueryFromArgs(args map[string]interface{}) (toodledo.TaskQuery, error) {
	var q toodledo.TaskQuery

	if fields, ok := args["fields"].(string); ok && strings.TrimSpace(fields) != "" {
		if strings.TrimSpace(fields) == "all" {
			q.Fields = toodledo.OptionalTaskFields
		} else {
			for _, f := range strings.Split(fields, ",") {
				if f = strings.TrimSpace(f); f != "" {
					q.Fields = append(q.Fields, f)
				}
			}
		}
	}

	switch completion, _ := args["completion"].(string); completion {
	case "", "any":
	case "incomplete":
		q.Completion = toodledo.CompletionIncomplete
	case "complete", "completed":
		q.Completion = toodledo.CompletionComplete
	default:
		return q, fmt.Errorf("completion must be 'any', 'incomplete' or 'complete', got %q", completion)
	}

	for name, dst := range map[string]*time.Time{
		"modifiedAfter":  &q.ModifiedAfter,
		"modifiedBefore": &q.ModifiedBefore,
	} {
		s, ok := args[name].(string)
		if !ok || s == "" {
			continue
		}
		t, err := parseTime(s)
		if err != nil {
			return q, fmt.Errorf("%s: %w", name, err)
		}
		*dst = t
	}

	if id, ok := args["id"]; ok && id != nil {
		ids, err := batch.ParseIDs(id, "id")
		if err != nil {
			return q, err
		}
		q.ID = ids[0]
	}
	return q, nil
}

func handleListTasks(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	query, err := taskQueryFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, _, err := clientFromArgs(sc, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	tasks, err := client.GetTasks(ctx, query)
	if err != nil {
		return common.ErrorResult("list tasks", err)
	}
	if tasks == nil {
		tasks = []toodledo.Task{}
	}
	return common.JSONResult(tasks)
}

func handleListDeletedTasks(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	var after time.Time
	if s, ok := args["after"].(string); ok && s != "" {
		t, err := parseTime(s)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("after: %v", err)), nil
		}
		after = t
	}

	client, _, err := clientFromArgs(sc, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	deleted, err := client.GetDeletedTasks(ctx, after)
	if err != nil {
		return common.ErrorResult("list deleted tasks", err)
	}
	if deleted == nil {
		deleted = []toodledo.DeletedTask{}
	}
	return common.JSONResult(deleted)
}

func handleWriteTasks(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, toolName, operation string) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	tasks, err := decodeRecords[toodledo.Task](args["tasks"], "tasks")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, account, err := clientFromArgs(sc, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	invocation := common.Audit(ctx, toolName, operation, account).
		WithRecords(taskIDs(tasks), taskTitles(tasks))
	invocation.Requested = len(tasks)

	var written []toodledo.Task
	if operation == instrumentation.OperationAddTasks {
		for i, t := range tasks {
			if title, _ := t.Title.Get(); strings.TrimSpace(title) == "" {
				return mcp.NewToolResultError(fmt.Sprintf("tasks[%d]: title is required", i)), nil
			}
		}
		written, err = client.AddTasks(ctx, tasks)
	} else {
		written, err = client.EditTasks(ctx, tasks)
	}
	common.LogAudit(sc, invocation, len(written), err)

	return writeSummary(len(tasks), written, err)
}

func handleCompleteTasks(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	ids, err := batch.ParseIDs(args["ids"], "ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	on := time.Now()
	if s, ok := args["date"].(string); ok && s != "" {
		on, err = parseTime(s)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("date: %v", err)), nil
		}
	}

	client, account, err := clientFromArgs(sc, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	invocation := common.Audit(ctx, "toodledo_complete_tasks", instrumentation.OperationEditTasks, account).
		WithRecords(ids, nil)
	completed, err := client.CompleteTasks(ctx, ids, on)
	common.LogAudit(sc, invocation, len(completed), err)

	return writeSummary(len(ids), completed, err)
}

func handleDeleteTasks(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	ids, err := batch.ParseIDs(args["ids"], "ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, account, err := clientFromArgs(sc, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	invocation := common.Audit(ctx, "toodledo_delete_tasks", instrumentation.OperationDeleteTasks, account).
		WithRecords(ids, nil)
	err = client.DeleteTasks(ctx, ids)
	summary := batch.NewSummary(len(ids), nil, err)
	if err == nil {
		summary.IDs = ids
	} else {
		summary.IDs = ids[:summary.Applied]
	}
	common.LogAudit(sc, invocation, summary.Applied, err)

	return summaryResult(summary)
}

// writeSummary reports the outcome of a batched task write.
func writeSummary(requested int, written []toodledo.Task, err error) (*mcp.CallToolResult, error) {
	summary := batch.NewSummary(requested, taskIDs(written), err)
	if err != nil {
		summary.Applied = len(written)
	}
	return summaryResult(summary)
}

func summaryResult(summary batch.Summary) (*mcp.CallToolResult, error) {
	if summary.Error != "" {
		return mcp.NewToolResultError(summary.Format()), nil
	}
	return mcp.NewToolResultText(summary.Format()), nil
}
