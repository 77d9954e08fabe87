package telemetry

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitTracingDisabledWithoutEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")

	core, logs := observer.New(zap.InfoLevel)
	prev := SetLogger(zap.New(core))
	defer SetLogger(prev)

	shutdown, err := InitTracing(context.Background())
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	entries := logs.FilterMessage("tracing.configured").All()
	if len(entries) != 1 || entries[0].ContextMap()["enabled"] != false {
		t.Fatalf("expected disabled tracing log, got %+v", entries)
	}
}

func TestInitTracingRejectsUnknownProtocol(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://127.0.0.1:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "carrier-pigeon")
	if _, err := InitTracing(context.Background()); err == nil {
		t.Fatalf("expected error for unknown protocol")
	}
}
