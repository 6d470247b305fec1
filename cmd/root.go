package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/toodledo/internal/config"
	"github.com/teemow/toodledo/internal/instrumentation"
	"github.com/teemow/toodledo/internal/logging"
	"github.com/teemow/toodledo/internal/toodledo"
)

// version will be set by main
var version = "dev"

// SetVersion sets the version reported by the CLI.
func SetVersion(v string) {
	version = v
}

// commandContext carries the global flags and the loaded configuration to
// every subcommand.
type commandContext struct {
	configPath string
	account    string
	logLevel   string
	logFormat  string

	cfg     *config.Config
	logger  *slog.Logger
	metrics *instrumentation.Metrics

	stdin io.Reader

	// newClient builds the Toodledo client of an account. interactive allows
	// prompting on the terminal when authorization is needed.
	newClient func(ctx context.Context, account string, interactive bool) (*toodledo.Client, error)
}

// Execute is the main entry point for the CLI application
func Execute() error {
	return newRootCmd(&commandContext{stdin: os.Stdin}).Execute()
}

func newRootCmd(cc *commandContext) *cobra.Command {
	if cc.stdin == nil {
		cc.stdin = os.Stdin
	}
	if cc.newClient == nil {
		cc.newClient = cc.defaultClient
	}

	rootCmd := &cobra.Command{
		Use:   "toodledo",
		Short: "Manage Toodledo tasks, folders and contexts",
		Long: `toodledo is a client for the Toodledo v3 API.

It can run as:
  - A command line tool for tasks, folders and contexts
  - A watcher that reports account changes and exposes metrics
  - An MCP (Model Context Protocol) server for AI assistants`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cc.setup(cmd)
		},
	}
	rootCmd.SetVersionTemplate(`{{printf "toodledo version %s\n" .Version}}`)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cc.configPath, "config", "", "Configuration file (default: $XDG_CONFIG_HOME/toodledo/config.toml)")
	flags.StringVarP(&cc.account, "account", "a", "default", "Account name; each account keeps its own token")
	flags.StringVar(&cc.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	flags.StringVar(&cc.logFormat, "log-format", "", "Log format: text or json (overrides config)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(cc))
	rootCmd.AddCommand(newAuthCmd(cc))
	rootCmd.AddCommand(newAccountCmd(cc))
	rootCmd.AddCommand(newTasksCmd(cc))
	rootCmd.AddCommand(newFoldersCmd(cc))
	rootCmd.AddCommand(newContextsCmd(cc))
	rootCmd.AddCommand(newWatchCmd(cc))
	rootCmd.AddCommand(newServeCmd(cc))
	rootCmd.AddCommand(newGenerateDocsCmd(cc))

	return rootCmd
}

// setup loads the configuration and installs the logger. Commands annotated
// with skipConfigLoad only get a logger.
func (cc *commandContext) setup(cmd *cobra.Command) error {
	level, format := cc.logLevel, cc.logFormat

	if cmd.Annotations["skipConfigLoad"] != "true" {
		cfg, _, _, err := config.Load(cc.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cc.cfg = cfg
		if level == "" {
			level = cfg.Logging.Level
		}
		if format == "" {
			format = cfg.Logging.Format
		}
	}
	if level == "" {
		level = "info"
	}
	if format == "" {
		format = logging.FormatText
	}

	// Logs go to stderr so stdout stays clean for tables, JSON and MCP stdio.
	handler, err := logging.NewHandler(level, format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	cc.logger = slog.New(handler)
	slog.SetDefault(cc.logger)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version number",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "toodledo version %s\n", version)
		},
	}
}
