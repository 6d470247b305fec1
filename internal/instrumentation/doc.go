// Package instrumentation provides OpenTelemetry instrumentation for the
// toodledo client and its command line tools.
//
// This package enables observability through:
//   - OpenTelemetry metrics for API requests, batch chunks, OAuth and MCP tools
//   - Distributed tracing for API calls and tool invocations
//   - Prometheus metrics export via /metrics (used by `toodledo watch`)
//   - OTLP export support for modern observability platforms
//   - Audit logging of changes made through MCP tools
//
// # Metrics
//
// Toodledo API Metrics:
//   - toodledo_api_requests_total: Counter of API requests by endpoint and status
//   - toodledo_api_request_duration_seconds: Histogram of API request durations
//
// Batch Executor Metrics:
//   - toodledo_batch_chunks_total: Counter of write chunks and read pages by operation, kind, status
//   - toodledo_batch_chunk_size: Histogram of records per chunk or page
//
// OAuth Metrics:
//   - oauth_token_refresh_total: Counter of token refresh attempts by result
//   - oauth_reauthorization_total: Counter of reauthorizations by result
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// Watch Metrics:
//   - toodledo_watch_polls_total: Counter of account polls by result
//
// # Tracing
//
// Spans are created for:
//   - Toodledo API calls (toodledo.<area>.<action>, e.g. toodledo.tasks.get)
//   - MCP tool invocations (tool.<name>)
//
// # Configuration
//
// Config is the [instrumentation] section of the configuration file. These
// environment variables override it (see Config.ApplyEnv):
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: toodledo)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, cfg.Instrumentation)
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordAPIRequest(ctx, "tasks.get", instrumentation.StatusSuccess, time.Since(start))
package instrumentation
