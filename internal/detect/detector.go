// Package detect holds the sensitive-data detector registry and the
// scan/redact primitives that run over message and file text.
package detect

import (
	"strings"

	regexp "github.com/wasilibs/go-re2"
)

// Severity classifies how damaging a leaked match of a detector would be.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

var severityRank = map[Severity]int{
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Detector is one named rule flagging a single category of sensitive data.
// Built-in detectors are compiled once at process start and never mutated;
// custom detectors are compiled per configuration version (see custom.go).
type Detector struct {
	ID          string
	Description string
	ToggleKey   string
	Severity    Severity

	re *regexp.Regexp
}

// Placeholder is the literal the redactor substitutes for every match.
func (d Detector) Placeholder() string {
	return "[REDACTED-" + strings.ToUpper(d.ID) + "]"
}

// MatchString reports whether the detector matches anywhere in text.
func (d Detector) MatchString(text string) bool {
	return d.re.MatchString(text)
}

// Finding records that a detector matched at least once in a scanned text.
// Match count and position are deliberately not tracked.
type Finding struct {
	DetectorID  string   `json:"detector_id"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// MaxSeverity returns the highest severity across findings, or "" when the
// slice is empty.
func MaxSeverity(findings []Finding) Severity {
	var max Severity
	for _, f := range findings {
		if severityRank[f.Severity] > severityRank[max] {
			max = f.Severity
		}
	}
	return max
}

// Toggles reports whether a named detector toggle is enabled. Unknown keys
// must report true: an unrecognized toggle fails open to "included".
type Toggles interface {
	ToggleEnabled(key string) bool
}

// ActiveDetectors returns the detectors to run for one request: built-ins
// whose toggle is enabled, in registry-definition order, followed by custom
// detectors in their JSON document order. The result must not be mutated.
func ActiveDetectors(toggles Toggles, customPatterns string) []Detector {
	active := make([]Detector, 0, len(builtins))
	for _, d := range builtins {
		if toggles == nil || toggles.ToggleEnabled(d.ToggleKey) {
			active = append(active, d)
		}
	}
	return append(active, customDetectors(customPatterns)...)
}
