package tracer

import (
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/config"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInit_Disabled(t *testing.T) {
	tp, err := Init(config.TracingConfig{Enabled: false}, "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Shutdown(tp, time.Second); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{0, sdktrace.NeverSample().Description()},
		{-1, sdktrace.NeverSample().Description()},
		{1, sdktrace.AlwaysSample().Description()},
		{2.5, sdktrace.AlwaysSample().Description()},
		{0.25, sdktrace.TraceIDRatioBased(0.25).Description()},
	}
	for _, tt := range tests {
		if got := sampler(tt.rate).Description(); got != tt.want {
			t.Errorf("sampler(%v) = %s, want %s", tt.rate, got, tt.want)
		}
	}
}

func TestEndpointOptions(t *testing.T) {
	if n := len(endpointOptions("otel-collector:4318")); n != 2 {
		t.Errorf("host:port should add the insecure option, got %d options", n)
	}
	if n := len(endpointOptions("https://otel.example.org/v1/traces")); n != 1 {
		t.Errorf("full URL should be passed as is, got %d options", n)
	}
}
