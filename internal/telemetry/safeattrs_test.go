package telemetry

import (
	"testing"
)

func TestSafeAttributesFiltersSecrets(t *testing.T) {
	kvs := map[string]interface{}{
		"prompt":        "should drop",
		"message_text":  "drop",
		"matched_value": "123-45-6789",
		"api_key":       "sk-123",
		"authorization": "secret",
		"long_string":   string(make([]byte, 600)),
		"outcome":       "blocked",
		"latency_ms":    int64(12),
	}

	attrs := SafeAttributes(kvs)
	allowed := map[string]bool{"outcome": true, "latency_ms": true}
	for _, a := range attrs {
		if !allowed[string(a.Key)] {
			t.Fatalf("unexpected attribute %s", a.Key)
		}
	}
	if len(attrs) != 2 {
		t.Fatalf("expected 2 safe attributes, got %d", len(attrs))
	}
}

func TestSafeAttributesEmptyInput(t *testing.T) {
	if got := SafeAttributes(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}
