// Package redact scrubs sensitive values from log output. Detection logs
// are supposed to carry only pattern names and severities, never the matched
// data; this is the backstop for the places where a raw value could slip
// into a formatted message (errors, paths, admin input).
package redact

import (
	"fmt"
	"log"
	"regexp"
	"strings"
)

var (
	bearerRe     = regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9._\-+/=]+)`)
	apiKeyRe     = regexp.MustCompile(`(?i)(api[_-]?key(?:s)?\s*[:=]\s*)["']?([A-Za-z0-9._\-+/=]{8,})`)
	skKeyRe      = regexp.MustCompile(`\bsk-[A-Za-z0-9]{8,}`)
	awsKeyRe     = regexp.MustCompile(`\b(?:AKIA|ASIA)[A-Z0-9]{16}\b`)
	passwordRe   = regexp.MustCompile(`(?i)((?:password|passwd|pwd)\s*[=:]+\s*)["']?(\S+)`)
	ssnRe        = regexp.MustCompile(`\b\d{3}[-\x{2013}\x{2014}\s]\d{2}[-\x{2013}\x{2014}\s]\d{4}\b`)
	cardRe       = regexp.MustCompile(`\b(?:\d{4}[-\s]){3}\d{4}\b`)
	longDigitsRe = regexp.MustCompile(`\b\d{13,19}\b`)
)

// String scrubs known secret shapes from a free-form string.
func String(s string) string {
	if s == "" {
		return s
	}

	out := s
	out = bearerRe.ReplaceAllString(out, "${1}[SCRUBBED]")
	out = apiKeyRe.ReplaceAllString(out, "${1}[SCRUBBED]")
	out = skKeyRe.ReplaceAllString(out, "[SCRUBBED]")
	out = awsKeyRe.ReplaceAllString(out, "[SCRUBBED]")
	out = passwordRe.ReplaceAllStringFunc(out, func(m string) string {
		parts := passwordRe.FindStringSubmatch(m)
		if len(parts) < 3 || strings.Contains(parts[2], "SCRUBBED") {
			return m
		}
		return parts[1] + "[SCRUBBED]"
	})
	out = ssnRe.ReplaceAllString(out, "[SCRUBBED]")
	out = cardRe.ReplaceAllString(out, "[SCRUBBED]")
	out = longDigitsRe.ReplaceAllString(out, "[SCRUBBED]")
	for strings.Contains(out, "[SCRUBBED][SCRUBBED]") {
		out = strings.ReplaceAll(out, "[SCRUBBED][SCRUBBED]", "[SCRUBBED]")
	}
	return out
}

// Sprintf formats like fmt.Sprintf and scrubs the result.
func Sprintf(format string, args ...interface{}) string {
	return String(fmt.Sprintf(format, args...))
}

// Logf prints a scrubbed log line.
func Logf(format string, args ...interface{}) {
	log.Print(Sprintf(format, args...))
}

// Fatalf prints a scrubbed fatal log line.
func Fatalf(format string, args ...interface{}) {
	log.Fatal(Sprintf(format, args...))
}
