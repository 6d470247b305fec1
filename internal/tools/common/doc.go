// Package common provides shared utilities for MCP tool implementations:
// account selection, result helpers and the instrumentation wrapper every
// tool handler is registered through.
package common
