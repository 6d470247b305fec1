package instrumentation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// recordSpans installs a sampling tracer provider that keeps finished spans
// in memory for the duration of the test.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSpanProcessor(recorder),
	)
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func attrMap(attrs []attribute.KeyValue) map[string]any {
	m := make(map[string]any, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value.AsInterface()
	}
	return m
}

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithTool("toodledo_list_tasks").
		WithEndpoint("tasks/get.php").
		WithOperation(OperationGetTasks).
		WithAccount("work").
		WithRecordCount(42).
		WithReadOnly(true).
		Build()

	assert.Equal(t, map[string]any{
		SpanAttrTool:        "toodledo_list_tasks",
		SpanAttrEndpoint:    "tasks/get.php",
		SpanAttrOperation:   OperationGetTasks,
		SpanAttrAccount:     "work",
		SpanAttrRecordCount: int64(42),
		SpanAttrReadOnly:    true,
	}, attrMap(attrs))
}

func TestSpanAttributeBuilder_SkipsEmptyAccount(t *testing.T) {
	attrs := NewSpanAttributeBuilder().WithTool("toodledo_get_account").WithAccount("").Build()
	require.Len(t, attrs, 1)
	assert.Equal(t, SpanAttrTool, string(attrs[0].Key))
}

func TestStartAPISpan(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartAPISpan(context.Background(), "tasks/get.php", attribute.String(SpanAttrAccount, "work"))
	SetSpanSuccess(span)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "toodledo.tasks.get", spans[0].Name())
	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)

	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "tasks/get.php", attrs[SpanAttrEndpoint])
	assert.Equal(t, "work", attrs[SpanAttrAccount])
}

func TestStartToolSpan(t *testing.T) {
	recorder := recordSpans(t)

	ctx, span := StartToolSpan(context.Background(), "toodledo_add_tasks")
	assert.NotEmpty(t, GetTraceID(ctx))
	assert.NotEmpty(t, GetSpanID(ctx))

	// Client calls made by the tool become children of the tool span.
	_, child := StartSpan(ctx, "toodledo."+OperationAddTasks)
	child.End()
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	tool := spans[1]
	assert.Equal(t, "tool.toodledo_add_tasks", tool.Name())
	assert.Equal(t, trace.SpanKindServer, tool.SpanKind())
	assert.Equal(t, "toodledo_add_tasks", attrMap(tool.Attributes())[SpanAttrTool])
	assert.Equal(t, tool.SpanContext().SpanID(), spans[0].Parent().SpanID())
}

func TestSetSpanError(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartSpan(context.Background(), "toodledo.delete_tasks")
	SetSpanError(span, nil)
	SetSpanError(span, errors.New("Invalid task id"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "Invalid task id", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestAddSpanEvent(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartSpan(context.Background(), "toodledo.get_tasks")
	AddSpanEvent(span, "reauthorize", attribute.Int("attempt", 1))
	span.End()

	events := recorder.Ended()[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "reauthorize", events[0].Name)
	assert.Equal(t, int64(1), attrMap(events[0].Attributes)["attempt"])
}

func TestTraceIDs_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Empty(t, GetSpanID(context.Background()))
}
