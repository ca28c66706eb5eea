package telemetry

import (
	"context"
	"testing"
)

func TestNewProvider_DisabledIsNoop(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("disabled provider: %v", err)
	}
	if p.Enabled {
		t.Fatalf("provider should report disabled")
	}

	// Instruments exist and record without panicking against the no-op meter.
	p.RecordFilterMetrics("inlet", "blocked", "block", 1.5, 2, 1)
	p.RecordFilterMetrics("outlet", "pass", "redact", 0.2, 0, 0)
	p.Shutdown(context.Background())
}

func TestNewProvider_RejectsUnknownProtocol(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		Enabled:  true,
		Endpoint: "localhost:4317",
		Protocol: "udp",
	})
	if err == nil {
		t.Fatalf("expected error for unknown protocol")
	}
}
