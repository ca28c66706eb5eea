package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dlpgate.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("expected defaults for missing file, got error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Server.Addr)
	}
	if !cfg.Filter.FilterEnabled() {
		t.Fatalf("filter must default to enabled")
	}
	if cfg.Filter.NormalizedMode() != "block" {
		t.Fatalf("mode must default to block, got %q", cfg.Filter.Mode)
	}
	if cfg.Filter.MaxFileSizeMB != 50 {
		t.Fatalf("expected default max file size 50, got %d", cfg.Filter.MaxFileSizeMB)
	}
	if cfg.Filter.CustomPatterns != "{}" {
		t.Fatalf("expected default custom_patterns {}, got %q", cfg.Filter.CustomPatterns)
	}
}

func TestLoad_AbsentTogglesDefaultTrue(t *testing.T) {
	path := writeTempConfig(t, `
filter:
  mode: redact
  block_ssn: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Filter.ToggleEnabled("block_ssn") {
		t.Fatalf("block_ssn explicitly false must stay false")
	}
	for _, key := range []string{"block_credit_cards", "block_phi", "block_credentials", "block_bank_accounts", "block_standalone_dates"} {
		if !cfg.Filter.ToggleEnabled(key) {
			t.Fatalf("absent toggle %q must default true", key)
		}
	}
	if !cfg.Filter.ToggleEnabled("toggle_nobody_knows") {
		t.Fatalf("unknown toggle keys must fail open to enabled")
	}
}

func TestValidate_RejectsBadMode(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Filter.Mode = "annihilate"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for invalid mode")
	}
}

func TestValidate_RejectsBadSink(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Audit.Sinks = []SinkConfig{{Type: "webhook", URL: "not-a-url"}}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for invalid webhook url")
	}
	cfg.Audit.Sinks = []SinkConfig{{Type: "carrier_pigeon"}}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for unknown sink type")
	}
}

func TestValidate_TelemetryNeedsEndpoint(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Telemetry.Enabled = true
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error when telemetry enabled without endpoint")
	}
	cfg.Telemetry.Endpoint = "collector:4317"
	cfg.Telemetry.Protocol = "smoke-signal"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for bad telemetry protocol")
	}
}

func TestStore_SnapshotAndReplace(t *testing.T) {
	first := &Config{}
	applyDefaults(first)
	store := NewStore(first)

	if store.Snapshot() != first {
		t.Fatalf("snapshot must return the seeded config")
	}

	second := &Config{}
	applyDefaults(second)
	second.Filter.Mode = "redact"
	store.Replace(second)

	if got := store.Snapshot(); got.Filter.NormalizedMode() != "redact" {
		t.Fatalf("expected replaced config, got mode %q", got.Filter.Mode)
	}

	store.Replace(nil)
	if store.Snapshot() != second {
		t.Fatalf("nil replace must be ignored")
	}
}
