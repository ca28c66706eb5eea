package config

import (
	"sync/atomic"
)

// Store hands out immutable config snapshots. The admin surface replaces the
// whole config between requests; every request/response pass reads exactly
// one snapshot at its start, so a mid-flight update never tears a request.
type Store struct {
	current atomic.Pointer[Config]
}

// NewStore creates a store seeded with cfg.
func NewStore(cfg *Config) *Store {
	s := &Store{}
	if cfg == nil {
		cfg = &Config{}
		applyDefaults(cfg)
	}
	s.current.Store(cfg)
	return s
}

// Snapshot returns the current config. Callers must treat it as read-only.
func (s *Store) Snapshot() *Config {
	return s.current.Load()
}

// Replace swaps in a new config for subsequent requests.
func (s *Store) Replace(cfg *Config) {
	if cfg == nil {
		return
	}
	s.current.Store(cfg)
}
