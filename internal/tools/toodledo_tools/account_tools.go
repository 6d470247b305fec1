package toodledo_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/toodledo/internal/server"
	"github.com/teemow/toodledo/internal/tools/common"
)

func registerAccountTools(s *mcpserver.MCPServer, sc *server.ServerContext, _ bool) {
	getAccountTool := mcp.NewTool("toodledo_get_account",
		mcp.WithDescription("Get the Toodledo account information, including when tasks, folders and contexts were last changed"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
	)

	addTool(s, sc, getAccountTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetAccount(ctx, request, sc)
	})
}

func handleGetAccount(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client, _, err := clientFromArgs(sc, request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	account, err := client.GetAccount(ctx)
	if err != nil {
		return common.ErrorResult("get account", err)
	}
	return common.JSONResult(account)
}
