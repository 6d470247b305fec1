package instrumentation

import (
	"context"
	"log/slog"
	"time"
)

// ToolInvocation captures a tool call that changes Toodledo data, for audit logging.
//
// Batched writes can be partially applied: Requested is the number of records
// the tool tried to change and Applied the number the server accepted before a
// failure stopped the batch.
type ToolInvocation struct {
	// Tool name
	Tool string

	// Target
	Account   string // configured account name (default, work, ...)
	Operation string // client operation, e.g. add_tasks

	// Records
	IDs       []int64
	Titles    []string // user content, only logged when enabled
	Requested int
	Applied   int

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// Status returns "success" or "error" based on the Success field.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// Partial reports whether some but not all requested records were applied.
func (ti *ToolInvocation) Partial() bool {
	return !ti.Success && ti.Applied > 0 && ti.Applied < ti.Requested
}

// LogAttrs returns slog attributes for structured logging.
// Titles are only included when includeTitles is set.
func (ti *ToolInvocation) LogAttrs(includeTitles bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.String("operation", ti.Operation),
		slog.Int("requested", ti.Requested),
		slog.Int("applied", ti.Applied),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}

	// Add optional fields only if present
	if ti.Account != "" && ti.Account != "default" {
		attrs = append(attrs, slog.String("account", ti.Account))
	}
	if len(ti.IDs) > 0 {
		attrs = append(attrs, slog.Any("ids", ti.IDs))
	}
	if includeTitles && len(ti.Titles) > 0 {
		attrs = append(attrs, slog.Any("titles", ti.Titles))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}

	return attrs
}

// NewToolInvocation creates a new ToolInvocation with timing started.
// Call Complete() when the tool operation finishes.
func NewToolInvocation(tool, operation string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		Operation: operation,
		StartTime: time.Now(),
	}
}

// WithAccount sets the account name.
func (ti *ToolInvocation) WithAccount(account string) *ToolInvocation {
	ti.Account = account
	return ti
}

// WithRecords sets the ids and titles of the records the tool is about to change.
func (ti *ToolInvocation) WithRecords(ids []int64, titles []string) *ToolInvocation {
	ti.IDs = ids
	ti.Titles = titles
	ti.Requested = max(len(ids), len(titles))
	return ti
}

// WithSpanContext extracts trace context from the current span.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	ti.TraceID = GetTraceID(ctx)
	ti.SpanID = GetSpanID(ctx)
	return ti
}

// Complete marks the invocation as completed and calculates duration.
// Returns the same ToolInvocation for method chaining.
func (ti *ToolInvocation) Complete(applied int, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Applied = applied
	ti.Success = err == nil
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// AuditLogger provides structured audit logging for tool invocations.
// It wraps slog.Logger with convenience methods for logging tool operations.
type AuditLogger struct {
	logger        *slog.Logger
	includeTitles bool
	enabled       bool
}

// NewAuditLogger creates a new AuditLogger with the given slog.Logger.
// By default, titles are not included in logs.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:  logger,
		enabled: true,
	}
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	al := NewAuditLogger(logger)
	al.includeTitles = config.IncludeTitles
	al.enabled = config.Enabled
	return al
}

// LogToolInvocation logs a completed tool invocation. Partially applied
// batches are logged at error level since the account is left half changed.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.enabled {
		return
	}

	attrs := ti.LogAttrs(al.includeTitles)
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	switch {
	case ti.Success:
		al.logger.Info("toodledo_change_applied", args...)
	case ti.Partial():
		al.logger.Error("toodledo_change_partially_applied", args...)
	default:
		al.logger.Warn("toodledo_change_failed", args...)
	}
}
