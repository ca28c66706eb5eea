// Package auth guards the admin console endpoints with bearer tokens.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/uniformedi/dlpgate/internal/config"
)

// Admin checks bearer tokens against the configured admin set.
type Admin struct {
	tokens []string
}

// NewFromConfig builds the admin token set. An empty set means the console
// endpoints are disabled entirely.
func NewFromConfig(cfg *config.Config) *Admin {
	tokens := make([]string, 0, len(cfg.Server.AdminTokens))
	for _, t := range cfg.Server.AdminTokens {
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return &Admin{tokens: tokens}
}

// Enabled reports whether any admin token is configured.
func (a *Admin) Enabled() bool {
	return a != nil && len(a.tokens) > 0
}

// Authorize checks the request's Authorization header. The comparison is
// constant time per token.
func (a *Admin) Authorize(r *http.Request) bool {
	if !a.Enabled() {
		return false
	}
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	presented := strings.TrimSpace(header[len(prefix):])
	if presented == "" {
		return false
	}
	for _, t := range a.tokens {
		if subtle.ConstantTimeCompare([]byte(presented), []byte(t)) == 1 {
			return true
		}
	}
	return false
}
