package tracing

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func testSpanContext(t *testing.T, traceHex, spanHex string) trace.SpanContext {
	t.Helper()
	traceID, err := trace.TraceIDFromHex(traceHex)
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex(spanHex)
	require.NoError(t, err)
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
}

func TestNewFileExporter_CreatesParentDirectories(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "nested", "dir", "traces.jsonl")

	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	_, err = os.Stat(tracePath)
	require.NoError(t, err, "trace file should be created with parent dirs")

	require.NoError(t, exporter.Shutdown(context.Background()))
}

func TestNewFileExporter_AppendsToExistingFile(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")
	require.NoError(t, os.WriteFile(tracePath, []byte(`{"existing":"data"}`+"\n"), 0600))

	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	stub := tracetest.SpanStub{
		Name:        "appended",
		SpanContext: testSpanContext(t, "0102030405060708090a0b0c0d0e0f10", "0102030405060708"),
	}
	require.NoError(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
	require.NoError(t, exporter.Shutdown(context.Background()))

	data, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 2)
	require.Equal(t, `{"existing":"data"}`, string(lines[0]))
}

func TestFileExporter_WritesValidJSONL(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewWriterExporter(&buf)

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	parent := testSpanContext(t, "0102030405060708090a0b0c0d0e0f10", "a1a2a3a4a5a6a7a8")

	spans := []sdktrace.ReadOnlySpan{
		tracetest.SpanStub{
			Name:        SpanCommand,
			SpanContext: testSpanContext(t, "0102030405060708090a0b0c0d0e0f10", "0102030405060708"),
			Parent:      parent,
			SpanKind:    trace.SpanKindInternal,
			StartTime:   start,
			EndTime:     start.Add(1500 * time.Microsecond),
			Attributes: []attribute.KeyValue{
				attribute.String(AttrCommand, "StartupCommand"),
				attribute.String(AttrNotification, "startup"),
			},
			Status: sdktrace.Status{Code: codes.Error, Description: "boom"},
			Events: []sdktrace.Event{
				{Name: "exception", Time: start, Attributes: []attribute.KeyValue{attribute.String("exception.message", "boom")}},
			},
		}.Snapshot(),
		tracetest.SpanStub{
			Name:        "root",
			SpanContext: testSpanContext(t, "1112131415161718191a1b1c1d1e1f20", "1112131415161718"),
			SpanKind:    trace.SpanKindServer,
			StartTime:   start,
			EndTime:     start.Add(time.Millisecond),
			Status:      sdktrace.Status{Code: codes.Ok},
		}.Snapshot(),
	}

	require.NoError(t, exporter.ExportSpans(context.Background(), spans))

	var records []SpanRecord
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var record SpanRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &record))
		records = append(records, record)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, records, 2)

	first := records[0]
	require.Equal(t, SpanCommand, first.Name)
	require.Equal(t, "0102030405060708090a0b0c0d0e0f10", first.TraceID)
	require.Equal(t, "0102030405060708", first.SpanID)
	require.Equal(t, "a1a2a3a4a5a6a7a8", first.ParentSpanID)
	require.Equal(t, "INTERNAL", first.Kind)
	require.Equal(t, "ERROR", first.Status)
	require.Equal(t, "boom", first.StatusMsg)
	require.InDelta(t, 1.5, first.DurationMs, 0.001)
	require.Equal(t, "StartupCommand", first.Attributes[AttrCommand])
	require.Len(t, first.Events, 1)
	require.Equal(t, "exception", first.Events[0].Name)

	second := records[1]
	require.Empty(t, second.ParentSpanID)
	require.Equal(t, "SERVER", second.Kind)
	require.Equal(t, "OK", second.Status)
}

func TestFileExporter_EmptyBatchIsNoop(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewWriterExporter(&buf)

	require.NoError(t, exporter.ExportSpans(context.Background(), nil))
	require.Zero(t, buf.Len())
}

func TestFileExporter_ExportAfterShutdownFails(t *testing.T) {
	exporter := NewWriterExporter(&bytes.Buffer{})
	require.NoError(t, exporter.Shutdown(context.Background()))

	stub := tracetest.SpanStub{Name: "late"}
	err := exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()})
	require.Error(t, err)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestFileExporter_PropagatesWriteErrors(t *testing.T) {
	exporter := NewWriterExporter(failingWriter{})

	stub := tracetest.SpanStub{Name: "lost"}
	err := exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()})
	require.ErrorContains(t, err, "disk full")
}

func TestSpanKindToString(t *testing.T) {
	require.Equal(t, "CLIENT", spanKindToString(trace.SpanKindClient))
	require.Equal(t, "PRODUCER", spanKindToString(trace.SpanKindProducer))
	require.Equal(t, "CONSUMER", spanKindToString(trace.SpanKindConsumer))
	require.Equal(t, "UNSPECIFIED", spanKindToString(trace.SpanKindUnspecified))
}
