package detect

import (
	"crypto/sha256"
	"encoding/json"
	"strings"
	"sync"

	regexp "github.com/wasilibs/go-re2"
)

// Custom detectors come from the custom_patterns config value: a JSON object
// of {name: pattern}. Every entry is always-active with severity high and id
// custom_<name>, so custom ids can never collide with built-ins. A malformed
// JSON document yields an empty set (no partial application); an entry whose
// pattern fails to compile is skipped on its own.
//
// Compiled sets are cached by content hash: config is re-read every request,
// but identical custom_patterns strings are overwhelmingly the common case.

const customIDPrefix = "custom_"

var customCache = struct {
	sync.RWMutex
	sets map[[32]byte][]Detector
}{sets: make(map[[32]byte][]Detector)}

// customCacheLimit bounds the cache; config churn is admin-driven and rare,
// so a full reset on overflow is fine.
const customCacheLimit = 64

func customDetectors(raw string) []Detector {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "{}" {
		return nil
	}

	key := sha256.Sum256([]byte(raw))
	customCache.RLock()
	cached, ok := customCache.sets[key]
	customCache.RUnlock()
	if ok {
		return cached
	}

	set := parseCustomPatterns(raw)

	customCache.Lock()
	if len(customCache.sets) >= customCacheLimit {
		customCache.sets = make(map[[32]byte][]Detector)
	}
	customCache.sets[key] = set
	customCache.Unlock()

	return set
}

// parseCustomPatterns decodes the JSON object token by token so that the
// document order of the entries is preserved; decoding into a Go map would
// randomize it, and registry order is the redaction tie-break.
func parseCustomPatterns(raw string) []Detector {
	dec := json.NewDecoder(strings.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}

	var out []Detector
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil
		}
		var pattern string
		if err := dec.Decode(&pattern); err != nil {
			// Non-string value: treat the whole set as malformed.
			return nil
		}
		re, err := regexp.Compile(`(?i)` + pattern)
		if err != nil {
			continue
		}
		out = append(out, Detector{
			ID:          customIDPrefix + name,
			Description: "Custom: " + name,
			ToggleKey:   "enabled",
			Severity:    SeverityHigh,
			re:          re,
		})
	}
	if _, err := dec.Token(); err != nil {
		return nil
	}
	return out
}
