package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/uniformedi/dlpgate/internal/auth"
	"github.com/uniformedi/dlpgate/internal/config"
	"github.com/uniformedi/dlpgate/internal/files"
	"github.com/uniformedi/dlpgate/internal/filter"
)

type testServer struct {
	srv        *Server
	store      *config.Store
	configPath string
	uploads    string
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "dlpgate.yaml")

	cfg, err := config.Load(configPath) // absent file yields defaults
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	uploads := filepath.Join(dir, "uploads")
	if err := os.MkdirAll(uploads, 0o755); err != nil {
		t.Fatalf("mkdir uploads: %v", err)
	}
	cfg.Uploads.Dir = uploads
	if mutate != nil {
		mutate(cfg)
	}

	store := config.NewStore(cfg)
	engine := filter.New(store, files.NewDirResolver(uploads), nil)
	admin := auth.NewFromConfig(cfg)
	return &testServer{
		srv:        New(store, configPath, engine, admin, nil),
		store:      store,
		configPath: configPath,
		uploads:    uploads,
	}
}

func (ts *testServer) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(w, r)
	return w
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, nil)
	w := ts.do(t, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Fatalf("unexpected health payload: %v", resp)
	}
}

func TestInlet_PassEchoesBodyUnchanged(t *testing.T) {
	ts := newTestServer(t, nil)
	in := `{"zz_custom":1,"messages":[{"role":"user","content":"hello"}],"model":"llama3"}`
	w := ts.do(t, http.MethodPost, "/v1/filter/inlet", in, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if got := w.Body.String(); got != in {
		t.Fatalf("pass must echo the request bytes exactly:\n in: %s\nout: %s", in, got)
	}
	if w.Header().Get("X-DLP-Outcome") != "pass" {
		t.Fatalf("missing pass outcome header")
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing generated request id")
	}
}

func TestInlet_BlockedReturns422(t *testing.T) {
	ts := newTestServer(t, nil)
	in := `{"messages":[{"role":"user","content":"my ssn is 123-45-6789"}]}`
	w := ts.do(t, http.MethodPost, "/v1/filter/inlet", in, map[string]string{"X-Request-ID": "req-77"})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") != "req-77" {
		t.Fatalf("supplied request id must be echoed")
	}
	if w.Header().Get("X-DLP-Outcome") != "blocked" {
		t.Fatalf("missing blocked outcome header")
	}

	var resp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Type != "dlp_blocked" {
		t.Fatalf("error type = %q", resp.Error.Type)
	}
	if !strings.Contains(resp.Error.Message, "**DLP Filter Blocked This Message**") {
		t.Fatalf("unexpected message: %s", resp.Error.Message)
	}
	if strings.Contains(resp.Error.Message, "123-45-6789") {
		t.Fatalf("error message must never echo the matched value")
	}
}

func TestInlet_RedactReturnsRewrittenBody(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Filter.Mode = "redact"
	})
	in := `{"messages":[{"role":"user","content":"my ssn is 123-45-6789"}]}`
	w := ts.do(t, http.MethodPost, "/v1/filter/inlet", in, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	out := w.Body.String()
	if strings.Contains(out, "123-45-6789") {
		t.Fatalf("redacted body still carries the value: %s", out)
	}
	if !strings.Contains(out, "[REDACTED-SSN]") {
		t.Fatalf("expected placeholder in body: %s", out)
	}
	if w.Header().Get("X-DLP-Outcome") != "redacted" {
		t.Fatalf("missing redacted outcome header")
	}
}

func TestInlet_BlankContentNormalized(t *testing.T) {
	ts := newTestServer(t, nil)
	in := `{"messages":[{"role":"user","content":"  "}]}`
	w := ts.do(t, http.MethodPost, "/v1/filter/inlet", in, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Please analyze the attached file.") {
		t.Fatalf("blank content must be normalized: %s", w.Body.String())
	}
}

func TestInlet_InvalidJSON(t *testing.T) {
	ts := newTestServer(t, nil)
	w := ts.do(t, http.MethodPost, "/v1/filter/inlet", `{"messages": [`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestInlet_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, nil)
	w := ts.do(t, http.MethodGet, "/v1/filter/inlet", "", nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestInlet_BodyTooLarge(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.MaxBodyBytes = 64
	})
	in := `{"messages":[{"role":"user","content":"` + strings.Repeat("a", 200) + `"}]}`
	w := ts.do(t, http.MethodPost, "/v1/filter/inlet", in, nil)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestOutlet_RedactsAssistant(t *testing.T) {
	ts := newTestServer(t, nil)
	in := `{"messages":[{"role":"assistant","content":"record shows 123-45-6789"}]}`
	w := ts.do(t, http.MethodPost, "/v1/filter/outlet", in, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "123-45-6789") {
		t.Fatalf("assistant response still carries the value: %s", w.Body.String())
	}
	if w.Header().Get("X-DLP-Outcome") != "redacted" {
		t.Fatalf("missing redacted outcome header, got %q", w.Header().Get("X-DLP-Outcome"))
	}
}

func TestOutlet_CleanResponseEchoes(t *testing.T) {
	ts := newTestServer(t, nil)
	in := `{"messages":[{"role":"assistant","content":"all clear"}]}`
	w := ts.do(t, http.MethodPost, "/v1/filter/outlet", in, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Body.String() != in {
		t.Fatalf("clean outlet must echo bytes exactly, got %s", w.Body.String())
	}
}
