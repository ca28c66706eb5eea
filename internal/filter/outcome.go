package filter

import (
	"github.com/uniformedi/dlpgate/internal/chat"
	"github.com/uniformedi/dlpgate/internal/detect"
)

// Outcome is the decision for one inlet or outlet pass. It is a value, not
// an error: a blocked request is a normal, expected result of scanning.
type Outcome interface {
	isOutcome()
	Summary() Report
}

// Pass lets the payload through. Modified reports whether blank-content
// normalization rewrote any message, in which case the caller must serialize
// Body instead of echoing the original bytes.
type Pass struct {
	Body     *chat.Body
	Modified bool
	Report   Report
}

// Blocked rejects the request. Reason is the user-facing explanation; it
// names the kinds of data found, never the data itself.
type Blocked struct {
	Reason string
	Report Report
}

// Redacted carries the rewritten payload. On inlet the body is a new value
// with placeholders substituted and flagged files stripped; RemovedFiles
// lists the stripped file names.
type Redacted struct {
	Body         *chat.Body
	RemovedFiles []string
	Report       Report
}

func (Pass) isOutcome()     {}
func (Blocked) isOutcome()  {}
func (Redacted) isOutcome() {}

func (o Pass) Summary() Report     { return o.Report }
func (o Blocked) Summary() Report  { return o.Report }
func (o Redacted) Summary() Report { return o.Report }

// Report accumulates what a pass observed, independent of the decision.
type Report struct {
	Detections   []Detection
	SkippedFiles []SkippedFile
}

// Detection attributes one finding to its source: "message", "response",
// or the name of an uploaded file.
type Detection struct {
	Source  string
	Finding detect.Finding
}

// SkippedFile records an uploaded file whose content was not scanned.
type SkippedFile struct {
	Name   string
	Reason string
}

// SourceMessage marks findings from user message text; SourceResponse marks
// findings from assistant output.
const (
	SourceMessage  = "message"
	SourceResponse = "response"
)
