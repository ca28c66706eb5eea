package server

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/uniformedi/dlpgate/internal/config"
	"github.com/uniformedi/dlpgate/internal/redact"
)

const maxConsoleConfigBytes = 5 * 1024 * 1024

// handleConsoleConfig serves and replaces the YAML config. A successful POST
// persists the file atomically and swaps the live snapshot, so the next
// request runs under the new valves without a restart.
func (s *Server) handleConsoleConfig(w http.ResponseWriter, r *http.Request) {
	if !s.admin.Enabled() {
		writeError(w, http.StatusNotFound, "console is disabled", "invalid_request_error")
		return
	}
	if !s.admin.Authorize(r) {
		writeError(w, http.StatusUnauthorized, "invalid or missing admin token", "authentication_error")
		return
	}
	if strings.TrimSpace(s.configPath) == "" {
		writeError(w, http.StatusInternalServerError, "config path not set", "internal_error")
		return
	}

	switch r.Method {
	case http.MethodGet:
		data, err := os.ReadFile(s.configPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				writeError(w, http.StatusNotFound, "config file not found", "invalid_request_error")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to read config", "internal_error")
			return
		}
		w.Header().Set("Content-Type", "text/yaml")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(data)

	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, maxConsoleConfigBytes)
		payload, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read body", "invalid_request_error")
			return
		}
		if len(strings.TrimSpace(string(payload))) == 0 {
			writeError(w, http.StatusBadRequest, "config body is empty", "invalid_request_error")
			return
		}
		cfg, err := parseConfigPayload(payload)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), "invalid_request_error")
			return
		}
		if err := writeFileAtomic(s.configPath, payload, 0o644); err != nil {
			redact.Logf("console: config write failed: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to write config", "internal_error")
			return
		}
		s.cfgs.Replace(cfg)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "invalid_request_error")
	}
}

// parseConfigPayload round-trips the payload through a temp file so the
// exact Load+Validate path used at startup judges it.
func parseConfigPayload(payload []byte) (*config.Config, error) {
	tmp, err := os.CreateTemp(os.TempDir(), "dlpgate-config-*.yaml")
	if err != nil {
		return nil, err
	}
	name := tmp.Name()
	defer os.Remove(name)
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	cfg, err := config.Load(name)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".dlpgate-config-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
