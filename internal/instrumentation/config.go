package instrumentation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Config configures the OpenTelemetry provider. It is the [instrumentation]
// section of the CLI configuration file; environment variables override it.
type Config struct {
	ServiceName    string `toml:"service_name"`
	ServiceVersion string `toml:"-"`

	// Enabled turns metrics and tracing on. When false every recorder is a no-op.
	Enabled bool `toml:"enabled"`

	// MetricsExporter is one of prometheus, otlp or stdout.
	MetricsExporter string `toml:"metrics_exporter"`

	// TracingExporter is one of otlp, stdout or none.
	TracingExporter string `toml:"tracing_exporter"`

	// OTLPEndpoint is the collector host:port, without scheme.
	OTLPEndpoint string `toml:"otlp_endpoint"`
	OTLPInsecure bool   `toml:"otlp_insecure"`

	TraceSamplingRate float64 `toml:"trace_sampling_rate"`

	// DetailedLabels adds the account name to tool metrics.
	DetailedLabels bool `toml:"detailed_labels"`

	AuditLogging AuditLoggingConfig `toml:"audit"`
}

// AuditLoggingConfig configures the log of changes made through the MCP tools.
type AuditLoggingConfig struct {
	Enabled bool `toml:"enabled"`

	// IncludeTitles logs task, folder and context names. Names are user
	// content; by default only ids and counts are logged.
	IncludeTitles bool `toml:"include_titles"`
}

// DefaultConfig returns the defaults: Prometheus metrics, no tracing, audit
// logging without titles.
func DefaultConfig() Config {
	return Config{
		ServiceName:       "toodledo",
		ServiceVersion:    "unknown",
		Enabled:           true,
		MetricsExporter:   ExporterPrometheus,
		TracingExporter:   ExporterNone,
		TraceSamplingRate: 0.1,
		AuditLogging:      AuditLoggingConfig{Enabled: true},
	}
}

// envOverrides maps environment variables to the fields they set.
var envOverrides = []struct {
	key   string
	apply func(c *Config, value string) error
}{
	{"OTEL_SERVICE_NAME", func(c *Config, v string) error { c.ServiceName = v; return nil }},
	{"INSTRUMENTATION_ENABLED", boolField(func(c *Config) *bool { return &c.Enabled })},
	{"METRICS_EXPORTER", func(c *Config, v string) error { c.MetricsExporter = strings.ToLower(v); return nil }},
	{"TRACING_EXPORTER", func(c *Config, v string) error { c.TracingExporter = strings.ToLower(v); return nil }},
	{"OTEL_EXPORTER_OTLP_ENDPOINT", func(c *Config, v string) error { c.OTLPEndpoint = v; return nil }},
	{"OTEL_EXPORTER_OTLP_INSECURE", boolField(func(c *Config) *bool { return &c.OTLPInsecure })},
	{"OTEL_TRACES_SAMPLER_ARG", func(c *Config, v string) error {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.TraceSamplingRate = rate
		return nil
	}},
	{"METRICS_DETAILED_LABELS", boolField(func(c *Config) *bool { return &c.DetailedLabels })},
	{"AUDIT_LOGGING_ENABLED", boolField(func(c *Config) *bool { return &c.AuditLogging.Enabled })},
	{"AUDIT_LOGGING_INCLUDE_TITLES", boolField(func(c *Config) *bool { return &c.AuditLogging.IncludeTitles })},
}

func boolField(field func(c *Config) *bool) func(c *Config, value string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

// ApplyEnv overrides fields from environment variables found by lookup,
// usually os.LookupEnv. Empty values are ignored.
func (c *Config) ApplyEnv(lookup func(key string) (string, bool)) error {
	var errs []error
	for _, o := range envOverrides {
		value, ok := lookup(o.key)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		if err := o.apply(c, strings.TrimSpace(value)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.key, err))
		}
	}
	return errors.Join(errs...)
}

// Validate checks exporter names, the sampling rate and the OTLP endpoint.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %g", c.TraceSamplingRate)
	}
	switch c.MetricsExporter {
	case "", ExporterPrometheus, ExporterOTLP, ExporterStdout:
	default:
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}
	switch c.TracingExporter {
	case "", ExporterOTLP, ExporterStdout, ExporterNone:
	default:
		return fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter)
	}
	if c.OTLPEndpoint == "" && (c.MetricsExporter == ExporterOTLP || c.TracingExporter == ExporterOTLP) {
		return errors.New("an OTLP endpoint is required when exporting metrics or traces over OTLP")
	}
	return nil
}

// Metric label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	OAuthResultSuccess = "success"
	OAuthResultFailure = "failure"

	BatchKindWrite = "write"
	BatchKindPage  = "page"

	WatchResultChanged   = "changed"
	WatchResultUnchanged = "unchanged"
)

// Exporter names.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)
