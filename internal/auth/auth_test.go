package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/uniformedi/dlpgate/internal/config"
)

func adminWith(tokens ...string) *Admin {
	cfg := &config.Config{}
	cfg.Server.AdminTokens = tokens
	return NewFromConfig(cfg)
}

func TestAuthorize(t *testing.T) {
	a := adminWith("tok-1", "tok-2")

	cases := []struct {
		name   string
		header string
		want   bool
	}{
		{"first token", "Bearer tok-1", true},
		{"second token", "Bearer tok-2", true},
		{"wrong token", "Bearer nope", false},
		{"missing header", "", false},
		{"wrong scheme", "Basic tok-1", false},
		{"bare bearer", "Bearer ", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/console/config", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			if got := a.Authorize(r); got != tc.want {
				t.Fatalf("Authorize = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDisabledWithoutTokens(t *testing.T) {
	a := adminWith()
	if a.Enabled() {
		t.Fatalf("no tokens must disable the console")
	}
	r := httptest.NewRequest("GET", "/console/config", nil)
	r.Header.Set("Authorization", "Bearer anything")
	if a.Authorize(r) {
		t.Fatalf("disabled console must reject every request")
	}
}

func TestEmptyTokensIgnored(t *testing.T) {
	a := adminWith("", "tok")
	r := httptest.NewRequest("GET", "/console/config", nil)
	r.Header.Set("Authorization", "Bearer ")
	if a.Authorize(r) {
		t.Fatalf("blank presented token must not match")
	}
}
