package server

import (
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/uniformedi/dlpgate/internal/config"
)

const adminToken = "console-secret"

func newConsoleServer(t *testing.T) *testServer {
	t.Helper()
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.AdminTokens = []string{adminToken}
	})
	seed := "filter:\n  mode: block\n"
	if err := os.WriteFile(ts.configPath, []byte(seed), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}
	return ts
}

func withToken(extra map[string]string) map[string]string {
	h := map[string]string{"Authorization": "Bearer " + adminToken}
	for k, v := range extra {
		h[k] = v
	}
	return h
}

func TestConsoleConfig_DisabledWithoutTokens(t *testing.T) {
	ts := newTestServer(t, nil)
	w := ts.do(t, http.MethodGet, "/console/config", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestConsoleConfig_RejectsBadToken(t *testing.T) {
	ts := newConsoleServer(t)
	w := ts.do(t, http.MethodGet, "/console/config", "", map[string]string{"Authorization": "Bearer wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestConsoleConfig_GetReturnsYAML(t *testing.T) {
	ts := newConsoleServer(t)
	w := ts.do(t, http.MethodGet, "/console/config", "", withToken(nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/yaml" {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "mode: block") {
		t.Fatalf("unexpected config body: %s", w.Body.String())
	}
}

func TestConsoleConfig_PostRejectsInvalid(t *testing.T) {
	ts := newConsoleServer(t)

	w := ts.do(t, http.MethodPost, "/console/config", "filter:\n  mode: obliterate\n", withToken(nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	w = ts.do(t, http.MethodPost, "/console/config", "   ", withToken(nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty body status = %d", w.Code)
	}

	// Rejected payloads must not replace the file.
	data, err := os.ReadFile(ts.configPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "mode: block") {
		t.Fatalf("config file was overwritten by an invalid payload: %s", data)
	}
}

func TestConsoleConfig_PostSwapsLiveConfig(t *testing.T) {
	ts := newConsoleServer(t)

	w := ts.do(t, http.MethodPost, "/console/config", "filter:\n  mode: redact\n", withToken(nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	data, err := os.ReadFile(ts.configPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "mode: redact") {
		t.Fatalf("config file not persisted: %s", data)
	}

	if got := ts.store.Snapshot().Filter.NormalizedMode(); got != "redact" {
		t.Fatalf("live snapshot mode = %q, want redact", got)
	}

	// The very next inlet request runs under the new mode.
	in := `{"messages":[{"role":"user","content":"my ssn is 123-45-6789"}]}`
	resp := ts.do(t, http.MethodPost, "/v1/filter/inlet", in, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("inlet after swap status = %d body=%s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "[REDACTED-SSN]") {
		t.Fatalf("inlet did not pick up the swapped config: %s", resp.Body.String())
	}
}

func TestConsoleConfig_MethodNotAllowed(t *testing.T) {
	ts := newConsoleServer(t)
	w := ts.do(t, http.MethodDelete, "/console/config", "", withToken(nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", w.Code)
	}
}
