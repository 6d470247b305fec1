package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency and DRY
const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrEndpoint  = "endpoint"
	attrKind      = "kind"
	attrResult    = "result"
	attrTool      = "tool"
	attrAccount   = "account"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// Toodledo API metrics
	apiRequestsTotal   metric.Int64Counter
	apiRequestDuration metric.Float64Histogram

	// Batch executor metrics
	batchChunksTotal metric.Int64Counter
	batchChunkSize   metric.Int64Histogram

	// OAuth metrics
	tokenRefreshTotal    metric.Int64Counter
	reauthorizationTotal metric.Int64Counter

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// Watch metrics
	watchPollsTotal metric.Int64Counter

	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	m.apiRequestsTotal, err = meter.Int64Counter(
		"toodledo_api_requests_total",
		metric.WithDescription("Total number of Toodledo API requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create toodledo_api_requests_total counter: %w", err)
	}

	m.apiRequestDuration, err = meter.Float64Histogram(
		"toodledo_api_request_duration_seconds",
		metric.WithDescription("Toodledo API request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create toodledo_api_request_duration_seconds histogram: %w", err)
	}

	m.batchChunksTotal, err = meter.Int64Counter(
		"toodledo_batch_chunks_total",
		metric.WithDescription("Total number of batch chunks and pages issued"),
		metric.WithUnit("{chunk}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create toodledo_batch_chunks_total counter: %w", err)
	}

	m.batchChunkSize, err = meter.Int64Histogram(
		"toodledo_batch_chunk_size",
		metric.WithDescription("Number of records per batch chunk or page"),
		metric.WithUnit("{record}"),
		metric.WithExplicitBucketBoundaries(1, 10, 25, 50, 100, 250, 500, 1000),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create toodledo_batch_chunk_size histogram: %w", err)
	}

	m.tokenRefreshTotal, err = meter.Int64Counter(
		"oauth_token_refresh_total",
		metric.WithDescription("Total number of OAuth token refresh attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_refresh_total counter: %w", err)
	}

	m.reauthorizationTotal, err = meter.Int64Counter(
		"oauth_reauthorization_total",
		metric.WithDescription("Total number of reauthorizations after an authorization failure"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_reauthorization_total counter: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	m.watchPollsTotal, err = meter.Int64Counter(
		"toodledo_watch_polls_total",
		metric.WithDescription("Total number of account polls by the watch command"),
		metric.WithUnit("{poll}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create toodledo_watch_polls_total counter: %w", err)
	}

	return m, nil
}

// RecordAPIRequest records one Toodledo API request.
//
// Parameters:
//   - endpoint: Endpoint label as returned by EndpointLabel (e.g. "tasks.get")
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the request
func (m *Metrics) RecordAPIRequest(ctx context.Context, endpoint, status string, duration time.Duration) {
	if m == nil || m.apiRequestsTotal == nil || m.apiRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrEndpoint, endpoint),
		attribute.String(attrStatus, status),
	}

	m.apiRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.apiRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordBatchChunk records one write chunk or read page issued by the batch executor.
// Kind is "write" or "page".
func (m *Metrics) RecordBatchChunk(ctx context.Context, operation, kind, status string, size int) {
	if m == nil || m.batchChunksTotal == nil || m.batchChunkSize == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrKind, kind),
		attribute.String(attrStatus, status),
	}

	m.batchChunksTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.batchChunkSize.Record(ctx, int64(size), metric.WithAttributes(attrs...))
}

// RecordTokenRefresh records an OAuth token refresh attempt with result.
// Result should be one of: "success", "failure"
func (m *Metrics) RecordTokenRefresh(ctx context.Context, result string) {
	if m == nil || m.tokenRefreshTotal == nil {
		return // Instrumentation not initialized
	}

	m.tokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordReauthorization records a reauthorization attempt with result.
func (m *Metrics) RecordReauthorization(ctx context.Context, result string) {
	if m == nil || m.reauthorizationTotal == nil {
		return // Instrumentation not initialized
	}

	m.reauthorizationTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	m.RecordToolInvocationWithAccount(ctx, toolName, status, "", duration)
}

// RecordToolInvocationWithAccount records an MCP tool invocation with account info.
// The account label is only added when detailedLabels is enabled.
func (m *Metrics) RecordToolInvocationWithAccount(ctx context.Context, toolName, status, account string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	// Only add high-cardinality labels if explicitly enabled
	if m.detailedLabels && account != "" {
		attrs = append(attrs, attribute.String(attrAccount, account))
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordWatchPoll records one poll of the account by the watch command.
// Result should be one of: "changed", "unchanged", "error"
func (m *Metrics) RecordWatchPoll(ctx context.Context, result string) {
	if m == nil || m.watchPollsTotal == nil {
		return // Instrumentation not initialized
	}

	m.watchPollsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}
