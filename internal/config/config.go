package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds dlpgate configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Uploads   UploadsConfig   `yaml:"uploads"`
	Filter    FilterConfig    `yaml:"filter"`
	Audit     AuditConfig     `yaml:"audit"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"` // HTTP listen address, e.g. ":8080"
	// AdminTokens guard the console endpoints. Empty list disables them.
	AdminTokens []string `yaml:"admin_tokens"`
	// MaxBodyBytes caps inlet/outlet request bodies. 0 means the default.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

type UploadsConfig struct {
	// Dir is where the host pipeline stores uploaded files as
	// <dir>/<file_id>_<name> (or nested one level deeper by user).
	Dir string `yaml:"dir"`
}

// FilterConfig mirrors the admin-facing valves of the filter. Boolean fields
// are pointers so that "absent from YAML" defaults to true rather than false;
// applyDefaults fills them in.
type FilterConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Mode    string `yaml:"mode"` // block | redact

	BlockSSN             *bool `yaml:"block_ssn"`
	BlockCreditCards     *bool `yaml:"block_credit_cards"`
	BlockPHI             *bool `yaml:"block_phi"`
	BlockCredentials     *bool `yaml:"block_credentials"`
	BlockBankAccounts    *bool `yaml:"block_bank_accounts"`
	BlockStandaloneDates *bool `yaml:"block_standalone_dates"`

	ScanFileUploads *bool `yaml:"scan_file_uploads"`
	MaxFileSizeMB   int   `yaml:"max_file_size_mb"`
	// FileScanTimeoutMS bounds extraction time per file; a file that takes
	// longer is skipped, never failed.
	FileScanTimeoutMS int   `yaml:"file_scan_timeout_ms"`
	LogDetections     *bool `yaml:"log_detections"`

	// CustomPatterns is a JSON object of {"name": "regex"} kept as a string,
	// exactly as the admin surface supplies it.
	CustomPatterns string `yaml:"custom_patterns"`
}

type AuditConfig struct {
	QueueSize         int          `yaml:"queue_size"`
	Workers           int          `yaml:"workers"`
	ShutdownTimeoutMS int          `yaml:"shutdown_timeout_ms"`
	Sinks             []SinkConfig `yaml:"sinks"`
}

type SinkConfig struct {
	Type    string            `yaml:"type"` // file_jsonl | webhook
	Path    string            `yaml:"path"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
}

type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Protocol string `yaml:"protocol"` // grpc | http
	Service  string `yaml:"service"`
	Version  string `yaml:"version"`
}

// Load reads configuration from a YAML file.
// If the file doesn't exist, it returns a default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		cfg.Server.MaxBodyBytes = 10 * 1024 * 1024
	}
	if cfg.Uploads.Dir == "" {
		cfg.Uploads.Dir = "/app/backend/data/uploads"
	}

	f := &cfg.Filter
	defaultTrue(&f.Enabled)
	defaultTrue(&f.BlockSSN)
	defaultTrue(&f.BlockCreditCards)
	defaultTrue(&f.BlockPHI)
	defaultTrue(&f.BlockCredentials)
	defaultTrue(&f.BlockBankAccounts)
	defaultTrue(&f.BlockStandaloneDates)
	defaultTrue(&f.ScanFileUploads)
	defaultTrue(&f.LogDetections)
	if f.Mode == "" {
		f.Mode = "block"
	}
	if f.MaxFileSizeMB <= 0 {
		f.MaxFileSizeMB = 50
	}
	if f.FileScanTimeoutMS <= 0 {
		f.FileScanTimeoutMS = 10_000
	}
	if strings.TrimSpace(f.CustomPatterns) == "" {
		f.CustomPatterns = "{}"
	}

	if cfg.Audit.QueueSize <= 0 {
		cfg.Audit.QueueSize = 1000
	}
	if cfg.Audit.Workers <= 0 {
		cfg.Audit.Workers = 1
	}
	if cfg.Audit.ShutdownTimeoutMS <= 0 {
		cfg.Audit.ShutdownTimeoutMS = 2000
	}

	if cfg.Telemetry.Service == "" {
		cfg.Telemetry.Service = "dlpgate"
	}
}

func defaultTrue(b **bool) {
	if *b == nil {
		v := true
		*b = &v
	}
}

// FilterEnabled reports whether filtering runs at all.
func (f FilterConfig) FilterEnabled() bool { return boolVal(f.Enabled) }

// ScanUploads reports whether attached files are scanned.
func (f FilterConfig) ScanUploads() bool { return boolVal(f.ScanFileUploads) }

// LogDetectionsEnabled reports whether detection events are emitted.
func (f FilterConfig) LogDetectionsEnabled() bool { return boolVal(f.LogDetections) }

// NormalizedMode lowercases and trims the configured mode.
func (f FilterConfig) NormalizedMode() string {
	return strings.ToLower(strings.TrimSpace(f.Mode))
}

// MaxFileBytes converts the MB valve to bytes.
func (f FilterConfig) MaxFileBytes() int64 {
	return int64(f.MaxFileSizeMB) * 1024 * 1024
}

// FileScanTimeout converts the per-file timeout valve to a duration.
func (f FilterConfig) FileScanTimeout() time.Duration {
	return time.Duration(f.FileScanTimeoutMS) * time.Millisecond
}

// ToggleEnabled implements the detector toggle lookup. Unrecognized keys
// fail open to enabled, matching the permissive default of the original
// valve surface.
func (f FilterConfig) ToggleEnabled(key string) bool {
	switch key {
	case "block_ssn":
		return boolVal(f.BlockSSN)
	case "block_credit_cards":
		return boolVal(f.BlockCreditCards)
	case "block_phi":
		return boolVal(f.BlockPHI)
	case "block_credentials":
		return boolVal(f.BlockCredentials)
	case "block_bank_accounts":
		return boolVal(f.BlockBankAccounts)
	case "block_standalone_dates":
		return boolVal(f.BlockStandaloneDates)
	default:
		return true
	}
}

func boolVal(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}
