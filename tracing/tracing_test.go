package tracing

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var (
	exporterOnce sync.Once
	exporter     *tracetest.InMemoryExporter
)

func memoryExporter(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporterOnce.Do(func() {
		exporter = tracetest.NewInMemoryExporter()
		require.NoError(t, InitWithExporter("procsim", "test", exporter))
	})
	exporter.Reset()
	return exporter
}

func attributeValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, attr := range attrs {
		if string(attr.Key) == key {
			return attr.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestStartSpan(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		expectCode codes.Code
	}{
		{name: "procsim.create", expectCode: codes.Ok},
		{name: "procsim.kill", err: errors.New("no process found"), expectCode: codes.Error},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			exp := memoryExporter(t)
			_, span := StartSpan(context.Background(), tc.name, "SERVER")
			span.WithInt("pid", 7).WithAttributes(map[string]string{"op": tc.name})
			EndSpan(span, tc.err)

			spans := exp.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.name, spans[0].Name)
			assert.Equal(t, tc.expectCode, spans[0].Status.Code)
			pid, ok := attributeValue(spans[0].Attributes, "pid")
			require.True(t, ok)
			assert.EqualValues(t, 7, pid.AsInt64())
		})
	}
}

func TestStartSpan_Parent(t *testing.T) {
	exp := memoryExporter(t)
	ctx, parent := StartSpan(context.Background(), "shell.command", "SERVER")

	_, child := StartSpan(ctx, "procsim.list", "INTERNAL")
	EndSpan(child, nil)
	EndSpan(parent, nil)

	spans := exp.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "procsim.list", spans[0].Name)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	parentID, ok := attributeValue(spans[0].Attributes, "parent.span_id")
	require.True(t, ok)
	assert.Equal(t, spans[1].SpanContext.SpanID().String(), parentID.AsString())
}

func TestSpan_NilSafe(t *testing.T) {
	var span *Span
	assert.Nil(t, span.WithInt("pid", 1))
	assert.Nil(t, span.WithAttributes(map[string]string{"k": "v"}))
	span.SetStatus(errors.New("ignored"))
	EndSpan(nil, nil)
}

func TestInit_InvalidOutput(t *testing.T) {
	err := Init("procsim", "test", filepath.Join(t.TempDir(), "missing", "spans.txt"))
	assert.Error(t, err)
}
