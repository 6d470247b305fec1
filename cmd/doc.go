// Package cmd implements the toodledo command line interface.
//
// The root command loads the configuration file and sets up logging before any
// subcommand runs. Subcommands cover authorization, tasks, folders, contexts,
// a change watcher with a metrics endpoint, and an MCP server over stdio.
package cmd
