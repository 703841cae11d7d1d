package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestConfigFromEnv(t *testing.T) {
	env := map[string]string{
		envEndpoint:    " collector:4317 ",
		envInsecure:    "yes",
		envService:     "roomkit-dev",
		envDialTimeout: "250ms",
		envHeaders:     "authorization=Bearer x, =skip, team = chat",
	}
	cfg := ConfigFromEnv(func(k string) string { return env[k] })
	if !cfg.Enabled() || cfg.Endpoint != "collector:4317" {
		t.Fatalf("unexpected endpoint %q", cfg.Endpoint)
	}
	if !cfg.Insecure || cfg.ServiceName != "roomkit-dev" || cfg.DialTimeout != 250*time.Millisecond {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.Headers) != 2 || cfg.Headers["authorization"] != "Bearer x" || cfg.Headers["team"] != "chat" {
		t.Fatalf("unexpected headers %v", cfg.Headers)
	}
}

func TestConfigFromEnvKeepsDefaultsOnBadInput(t *testing.T) {
	env := map[string]string{
		envInsecure:    "maybe",
		envDialTimeout: "-1s",
	}
	cfg := ConfigFromEnv(func(k string) string { return env[k] })
	def := Default()
	if cfg.Enabled() || cfg.Insecure || cfg.DialTimeout != def.DialTimeout || cfg.Headers != nil {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if got := ConfigFromEnv(nil); got.ServiceName != "roomkit" {
		t.Fatalf("nil getenv should return defaults, got %+v", got)
	}
}

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), Default())
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	_, span := StartSpan(context.Background(), "noop")
	EndSpan(span, errors.New("boom"))
}

func TestMetricsCount(t *testing.T) {
	Init()
	Init()

	before := testutil.ToFloat64(EventsRouted.WithLabelValues("tip"))
	CountEvent("tip")
	CountEvent("tip")
	if got := testutil.ToFloat64(EventsRouted.WithLabelValues("tip")); got != before+2 {
		t.Fatalf("expected %v, got %v", before+2, got)
	}

	failed := testutil.ToFloat64(AppStarts.WithLabelValues("failed"))
	CountAppStart(false)
	if got := testutil.ToFloat64(AppStarts.WithLabelValues("failed")); got != failed+1 {
		t.Fatalf("expected failed start to be counted")
	}

	lines := testutil.ToFloat64(LinesAppended)
	CountLine()
	if got := testutil.ToFloat64(LinesAppended); got != lines+1 {
		t.Fatalf("expected line to be counted")
	}
	ObserveEvent("chat", 0.01)
}
