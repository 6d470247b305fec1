// Package logging provides structured logging utilities for the toodledo client
// and command line tools.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - Text or JSON handlers selected by the --log-format flag
//   - Credential sanitization for tokens and request parameters
//   - Consistent attribute naming across the codebase
//   - Logger adapter interface for flexibility
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "get_tasks")
//	logger.Debug("fetched page",
//	    logging.Chunk(2, 3),
//	    logging.Count(1000))
//
// Sanitize sensitive data before logging:
//
//	logger.Debug("request", "params", logging.SanitizeParams(form))
//
// # Security Considerations
//
//   - Tokens are never logged directly
//   - Toodledo user ids are hashed before they reach the logs
package logging
