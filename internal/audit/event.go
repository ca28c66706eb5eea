// Package audit records filter decisions for compliance review. Events name
// what was detected and what happened to the request; they never contain the
// matched text itself.
package audit

import (
	"time"

	"github.com/uniformedi/dlpgate/internal/detect"
)

// Event is one filter decision.
type Event struct {
	Time      time.Time `json:"time"`
	RequestID string    `json:"request_id"`
	Direction string    `json:"direction"` // inlet | outlet
	Outcome   string    `json:"outcome"`   // pass | blocked | redacted
	Mode      string    `json:"mode"`
	// MaxSeverity is the highest severity across Findings, empty when the
	// event records skips only.
	MaxSeverity string `json:"max_severity,omitempty"`

	Findings     []Finding     `json:"findings,omitempty"`
	SkippedFiles []SkippedFile `json:"skipped_files,omitempty"`
	RemovedFiles []string      `json:"removed_files,omitempty"`

	LatencyMS int64 `json:"latency_ms"`
}

// Finding is one detector hit attributed to its source.
type Finding struct {
	Source      string `json:"source"` // "message" or the file name
	DetectorID  string `json:"detector_id"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// SkippedFile records a file the scanner could not inspect.
type SkippedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// NewFinding attributes a detector finding to a source.
func NewFinding(source string, f detect.Finding) Finding {
	return Finding{
		Source:      source,
		DetectorID:  f.DetectorID,
		Description: f.Description,
		Severity:    string(f.Severity),
	}
}
