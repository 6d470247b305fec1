package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/toodledo/internal/instrumentation"
	"github.com/teemow/toodledo/internal/logging"
	"github.com/teemow/toodledo/internal/server"
	"github.com/teemow/toodledo/internal/toodledo"
	"github.com/teemow/toodledo/internal/tools/toodledo_tools"
)

func newServeCmd(cc *commandContext) *cobra.Command {
	var yolo bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server on stdio to provide
Toodledo tools to AI assistants.

The server is read-only by default.
  Use --yolo to enable write operations (adding, completing and deleting tasks, etc.)

Accounts must be authorized beforehand with 'toodledo auth login'; the server
never prompts since stdin carries the MCP protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, cc, yolo)
		},
	}

	cmd.Flags().BoolVar(&yolo, "yolo", false, "Enable write operations (adding, completing and deleting tasks, etc.). Default is read-only mode.")
	return cmd
}

func runServe(cmd *cobra.Command, cc *commandContext, yolo bool) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrConfig := cc.cfg.Instrumentation
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.WithoutCancel(shutdownCtx)); err != nil {
			cc.logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	cc.metrics = provider.Metrics()
	opts := []server.Option{
		server.WithLogger(cc.logger),
		server.WithMetrics(cc.metrics),
		server.WithAuditLogger(instrumentation.NewAuditLoggerWithConfig(cc.logger, instrConfig.AuditLogging)),
	}

	factory := func(ctx context.Context, account string) (*toodledo.Client, error) {
		return cc.newClient(ctx, account, false)
	}
	serverContext, err := server.NewServerContext(shutdownCtx, factory, opts...)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	mcpSrv := mcpserver.NewMCPServer("toodledo", version,
		mcpserver.WithToolCapabilities(true),
	)

	// readOnly is the inverse of yolo
	readOnly := !yolo
	if readOnly {
		cc.logger.Info("starting MCP server in read-only mode (use --yolo to enable write operations)")
	} else {
		cc.logger.Info("starting MCP server with write operations enabled")
	}

	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}
	return runStdioServer(mcpSrv)
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers all MCP tools.
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := toodledo_tools.RegisterToodledoTools(mcpSrv, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register Toodledo tools: %w", err)
	}
	return nil
}
