package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestHandler_AddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewHandler(&buf, "info", "json")).With("service", "unirenta-api")

	tid, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	sid, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: tid, SpanID: sid, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	l.InfoContext(ctx, "backend call")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["trace_id"] != "4bf92f3577b34da6a3ce929d0e0e4736" || rec["span_id"] != "00f067aa0ba902b7" {
		t.Errorf("missing trace ids: %v", rec)
	}
	if rec["service"] != "unirenta-api" {
		t.Errorf("missing service attr: %v", rec)
	}
}

func TestHandler_NoSpan(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewHandler(&buf, "debug", "text"))

	l.Debug("settled", "zoom", 14)

	out := buf.String()
	if strings.Contains(out, "trace_id") {
		t.Errorf("unexpected trace id without span: %s", out)
	}
	if !strings.Contains(out, "zoom=14") {
		t.Errorf("expected text output, got %s", out)
	}
}

func TestHandler_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewHandler(&buf, "warn", "json"))

	l.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %s", buf.String())
	}
}
