package toodledo_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/toodledo/internal/batch"
	"github.com/teemow/toodledo/internal/instrumentation"
	"github.com/teemow/toodledo/internal/server"
	"github.com/teemow/toodledo/internal/toodledo"
	"github.com/teemow/toodledo/internal/tools/common"
)

func registerFolderTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) {
	listFoldersTool := mcp.NewTool("toodledo_list_folders",
		mcp.WithDescription("List all folders"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
	)
	addTool(s, sc, listFoldersTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, _, err := clientFromArgs(sc, request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		folders, err := client.GetFolders(ctx)
		if err != nil {
			return common.ErrorResult("list folders", err)
		}
		if folders == nil {
			folders = []toodledo.Folder{}
		}
		return common.JSONResult(folders)
	})

	if readOnly {
		return
	}

	addFolderTool := mcp.NewTool("toodledo_add_folder",
		mcp.WithDescription("Create a folder"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Folder name (at most 32 characters)"),
		),
		mcp.WithBoolean("private",
			mcp.Description("Whether the folder is private"),
		),
	)
	addTool(s, sc, addFolderTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleAddFolder(ctx, request, sc)
	})

	editFolderTool := mcp.NewTool("toodledo_edit_folder",
		mcp.WithDescription("Rename, archive or change the privacy of a folder"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Folder id"),
		),
		mcp.WithString("name",
			mcp.Description("New folder name"),
		),
		mcp.WithBoolean("private",
			mcp.Description("Whether the folder is private"),
		),
		mcp.WithBoolean("archived",
			mcp.Description("Whether the folder is archived"),
		),
	)
	addTool(s, sc, editFolderTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleEditFolder(ctx, request, sc)
	})

	deleteFolderTool := mcp.NewTool("toodledo_delete_folder",
		mcp.WithDescription("Delete a folder. Its tasks are moved to no folder"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Folder id"),
		),
	)
	addTool(s, sc, deleteFolderTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleDelete(ctx, request, sc, "toodledo_delete_folder", instrumentation.OperationDeleteFolder,
			(*toodledo.Client).DeleteFolder)
	})
}

func registerContextTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) {
	listContextsTool := mcp.NewTool("toodledo_list_contexts",
		mcp.WithDescription("List all contexts"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
	)
	addTool(s, sc, listContextsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, _, err := clientFromArgs(sc, request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		contexts, err := client.GetContexts(ctx)
		if err != nil {
			return common.ErrorResult("list contexts", err)
		}
		if contexts == nil {
			contexts = []toodledo.Context{}
		}
		return common.JSONResult(contexts)
	})

	if readOnly {
		return
	}

	addContextTool := mcp.NewTool("toodledo_add_context",
		mcp.WithDescription("Create a context"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Context name (at most 32 characters)"),
		),
		mcp.WithBoolean("private",
			mcp.Description("Whether the context is private"),
		),
	)
	addTool(s, sc, addContextTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleAddContext(ctx, request, sc)
	})

	editContextTool := mcp.NewTool("toodledo_edit_context",
		mcp.WithDescription("Rename a context or change its privacy"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Context id"),
		),
		mcp.WithString("name",
			mcp.Description("New context name"),
		),
		mcp.WithBoolean("private",
			mcp.Description("Whether the context is private"),
		),
	)
	addTool(s, sc, editContextTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleEditContext(ctx, request, sc)
	})

	deleteContextTool := mcp.NewTool("toodledo_delete_context",
		mcp.WithDescription("Delete a context. Its tasks are moved to no context"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Context id"),
		),
	)
	addTool(s, sc, deleteContextTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleDelete(ctx, request, sc, "toodledo_delete_context", instrumentation.OperationDeleteContext,
			(*toodledo.Client).DeleteContext)
	})
}

// listArgs holds the fields shared by folder and context requests.
type listArgs struct {
	id       int64
	name     toodledo.Opt[string]
	private  toodledo.Opt[bool]
	archived toodledo.Opt[bool]
}

func parseListArgs(args map[string]interface{}, requireID, requireName bool) (listArgs, error) {
	var la listArgs

	if requireID {
		ids, err := batch.ParseIDs(args["id"], "id")
		if err != nil {
			return la, err
		}
		la.id = ids[0]
	}

	if name, ok := args["name"].(string); ok && strings.TrimSpace(name) != "" {
		la.name = toodledo.Some(strings.TrimSpace(name))
	} else if requireName {
		return la, fmt.Errorf("name is required")
	}

	if private, ok := args["private"].(bool); ok {
		la.private = toodledo.Some(private)
	}
	if archived, ok := args["archived"].(bool); ok {
		la.archived = toodledo.Some(archived)
	}
	return la, nil
}

func handleAddFolder(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	la, err := parseListArgs(args, false, true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, account, err := clientFromArgs(sc, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	invocation := common.Audit(ctx, "toodledo_add_folder", instrumentation.OperationAddFolder, account).
		WithRecords(nil, []string{la.name.Value()})
	folder, err := client.AddFolder(ctx, toodledo.Folder{Name: la.name, Private: la.private})
	common.LogAudit(sc, invocation, appliedOne(err), err)
	if err != nil {
		return common.ErrorResult("add folder", err)
	}
	return common.JSONResult(folder)
}

func handleEditFolder(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	la, err := parseListArgs(args, true, false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !la.name.Present() && !la.private.Present() && !la.archived.Present() {
		return mcp.NewToolResultError("nothing to change: give name, private or archived"), nil
	}

	client, account, err := clientFromArgs(sc, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	invocation := common.Audit(ctx, "toodledo_edit_folder", instrumentation.OperationEditFolder, account).
		WithRecords([]int64{la.id}, nil)
	folder, err := client.EditFolder(ctx, toodledo.Folder{
		ID:       toodledo.Some(la.id),
		Name:     la.name,
		Private:  la.private,
		Archived: la.archived,
	})
	common.LogAudit(sc, invocation, appliedOne(err), err)
	if err != nil {
		return common.ErrorResult("edit folder", err)
	}
	return common.JSONResult(folder)
}

func handleAddContext(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	la, err := parseListArgs(args, false, true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, account, err := clientFromArgs(sc, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	invocation := common.Audit(ctx, "toodledo_add_context", instrumentation.OperationAddContext, account).
		WithRecords(nil, []string{la.name.Value()})
	cx, err := client.AddContext(ctx, toodledo.Context{Name: la.name, Private: la.private})
	common.LogAudit(sc, invocation, appliedOne(err), err)
	if err != nil {
		return common.ErrorResult("add context", err)
	}
	return common.JSONResult(cx)
}

func handleEditContext(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	la, err := parseListArgs(args, true, false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !la.name.Present() && !la.private.Present() {
		return mcp.NewToolResultError("nothing to change: give name or private"), nil
	}

	client, account, err := clientFromArgs(sc, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	invocation := common.Audit(ctx, "toodledo_edit_context", instrumentation.OperationEditContext, account).
		WithRecords([]int64{la.id}, nil)
	cx, err := client.EditContext(ctx, toodledo.Context{
		ID:      toodledo.Some(la.id),
		Name:    la.name,
		Private: la.private,
	})
	common.LogAudit(sc, invocation, appliedOne(err), err)
	if err != nil {
		return common.ErrorResult("edit context", err)
	}
	return common.JSONResult(cx)
}

func handleDelete(
	ctx context.Context,
	request mcp.CallToolRequest,
	sc *server.ServerContext,
	toolName, operation string,
	del func(*toodledo.Client, context.Context, int64) error,
) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	la, err := parseListArgs(args, true, false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, account, err := clientFromArgs(sc, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	invocation := common.Audit(ctx, toolName, operation, account).WithRecords([]int64{la.id}, nil)
	err = del(client, ctx, la.id)
	common.LogAudit(sc, invocation, appliedOne(err), err)
	if err != nil {
		return common.ErrorResult("delete "+strings.TrimPrefix(toolName, "toodledo_delete_"), err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted %d", la.id)), nil
}

func appliedOne(err error) int {
	if err != nil {
		return 0
	}
	return 1
}
