// Package filter is the decision engine: it scans chat payloads and their
// attached files against the active detector set and decides whether the
// payload passes, is blocked, or is rewritten with redactions.
package filter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uniformedi/dlpgate/internal/audit"
	"github.com/uniformedi/dlpgate/internal/chat"
	"github.com/uniformedi/dlpgate/internal/config"
	"github.com/uniformedi/dlpgate/internal/detect"
	"github.com/uniformedi/dlpgate/internal/extract"
	"github.com/uniformedi/dlpgate/internal/files"
	"github.com/uniformedi/dlpgate/internal/redact"
)

// placeholderPrompt replaces blank message content. The upstream model API
// rejects empty text segments, so a message that only carries attachments
// still needs a prompt.
const placeholderPrompt = "Please analyze the attached file."

// Engine evaluates payloads against one config snapshot per call.
type Engine struct {
	cfgs     *config.Store
	resolver files.Resolver
	adapter  *extract.Adapter
	emitter  *audit.Emitter
}

// New builds an engine. emitter may be nil to disable audit events.
func New(cfgs *config.Store, resolver files.Resolver, emitter *audit.Emitter) *Engine {
	return &Engine{
		cfgs:     cfgs,
		resolver: resolver,
		adapter:  extract.New(),
		emitter:  emitter,
	}
}

// Inlet evaluates a user request before it reaches the model. Blank message
// content is normalized in place; everything else the decision needs is
// returned in the outcome without mutating body.
func (e *Engine) Inlet(ctx context.Context, body *chat.Body, requestID string) Outcome {
	cfg := e.cfgs.Snapshot()
	if !cfg.Filter.FilterEnabled() {
		return Pass{Body: body}
	}
	start := time.Now()

	modified := normalizeBlankContent(body)
	detectors := detect.ActiveDetectors(cfg.Filter, cfg.Filter.CustomPatterns)

	var report Report

	var msgFindings []detect.Finding
	for i := range body.Messages {
		m := &body.Messages[i]
		if m.Role != chat.RoleUser {
			continue
		}
		found := detect.Scan(m.Content.PlainText(), detectors)
		if len(found) == 0 {
			continue
		}
		msgFindings = append(msgFindings, found...)
		for _, f := range found {
			report.Detections = append(report.Detections, Detection{Source: SourceMessage, Finding: f})
		}
		if cfg.Filter.LogDetectionsEnabled() {
			redact.Logf("dlp: sensitive data in message text: %s", summarize(found))
		}
	}

	var flagged []flaggedFile
	if cfg.Filter.ScanUploads() {
		flagged = e.scanFiles(ctx, cfg, body, detectors, &report)
	}

	var outcome Outcome
	switch {
	case len(msgFindings) == 0 && len(flagged) == 0:
		outcome = Pass{Body: body, Modified: modified, Report: report}
	case cfg.Filter.NormalizedMode() == "redact":
		outcome = e.redactInlet(body, detectors, msgFindings, flagged, report)
	default:
		outcome = Blocked{Reason: blockReason(msgFindings, flagged), Report: report}
	}

	e.record(requestID, "inlet", cfg, outcome, time.Since(start))
	return outcome
}

// Outlet evaluates a model response before it reaches the user. Only
// assistant messages with plain string content are scanned; a response with
// block-list content passes through unmodified.
func (e *Engine) Outlet(ctx context.Context, body *chat.Body, requestID string) Outcome {
	cfg := e.cfgs.Snapshot()
	if !cfg.Filter.FilterEnabled() {
		return Pass{Body: body}
	}
	start := time.Now()

	detectors := detect.ActiveDetectors(cfg.Filter, cfg.Filter.CustomPatterns)

	var report Report
	modified := false
	for i := range body.Messages {
		m := &body.Messages[i]
		if m.Role != chat.RoleAssistant || m.Content.IsList() {
			continue
		}
		found := detect.Scan(m.Content.Text, detectors)
		if len(found) == 0 {
			continue
		}
		for _, f := range found {
			report.Detections = append(report.Detections, Detection{Source: SourceResponse, Finding: f})
		}
		m.Content = chat.NewString(detect.Redact(m.Content.Text, detectors))
		modified = true
		if cfg.Filter.LogDetectionsEnabled() {
			redact.Logf("dlp: redacted sensitive data in assistant response")
		}
	}

	var outcome Outcome
	if modified {
		outcome = Redacted{Body: body, Report: report}
	} else {
		outcome = Pass{Body: body, Report: report}
	}
	e.record(requestID, "outlet", cfg, outcome, time.Since(start))
	return outcome
}

type flaggedFile struct {
	name     string
	findings []detect.Finding
}

func (e *Engine) scanFiles(ctx context.Context, cfg *config.Config, body *chat.Body, detectors []detect.Detector, report *Report) []flaggedFile {
	var flagged []flaggedFile
	for _, ref := range body.Files {
		if ref.Type != "" && ref.Type != "file" {
			continue
		}
		if ref.ID == "" {
			continue
		}
		name := ref.Name
		if name == "" {
			name = "unknown"
		}

		path, ok := e.resolver.Resolve(ref.ID)
		if !ok {
			redact.Logf("dlp: could not locate file %q (id=%s) on disk", name, ref.ID)
			report.SkippedFiles = append(report.SkippedFiles, SkippedFile{Name: name, Reason: "not_found"})
			continue
		}

		fileCtx, cancel := context.WithTimeout(ctx, cfg.Filter.FileScanTimeout())
		res := e.adapter.Extract(fileCtx, path, name, cfg.Filter.MaxFileBytes())
		cancel()

		if res.Skipped {
			redact.Logf("dlp: skipping file %q: %s", name, res.Reason)
			report.SkippedFiles = append(report.SkippedFiles, SkippedFile{Name: name, Reason: string(res.Reason)})
			continue
		}
		if res.Text == "" {
			continue
		}

		found := detect.Scan(res.Text, detectors)
		if len(found) == 0 {
			continue
		}
		flagged = append(flagged, flaggedFile{name: name, findings: found})
		for _, f := range found {
			report.Detections = append(report.Detections, Detection{Source: name, Finding: f})
		}
		if cfg.Filter.LogDetectionsEnabled() {
			redact.Logf("dlp: sensitive data in file %q: %s", name, summarize(found))
		}
	}
	return flagged
}

func (e *Engine) redactInlet(body *chat.Body, detectors []detect.Detector, msgFindings []detect.Finding, flagged []flaggedFile, report Report) Outcome {
	out := body.Clone()

	if len(msgFindings) > 0 {
		for i := range out.Messages {
			m := &out.Messages[i]
			if m.Role != chat.RoleUser {
				continue
			}
			if m.Content.IsList() {
				for j := range m.Content.Blocks {
					if m.Content.Blocks[j].Type == "text" {
						m.Content.Blocks[j].Text = detect.Redact(m.Content.Blocks[j].Text, detectors)
					}
				}
			} else {
				m.Content = chat.NewString(detect.Redact(m.Content.Text, detectors))
			}
		}
	}

	var removed []string
	if len(flagged) > 0 {
		names := make(map[string]bool, len(flagged))
		for _, ff := range flagged {
			if !names[ff.name] {
				names[ff.name] = true
				removed = append(removed, ff.name)
			}
		}
		out.Files = dropNamed(out.Files, names)
		if out.Metadata.HasFiles() {
			out.Metadata.Files = dropNamed(out.Metadata.Files, names)
		}
		out.Messages = append(out.Messages, chat.Message{
			Role: chat.RoleSystem,
			Content: chat.NewString(fmt.Sprintf(
				"[DLP Notice] The following files were removed because they contain sensitive data: %s. The AI will not see these files.",
				strings.Join(removed, ", "))),
		})
	}

	return Redacted{Body: out, RemovedFiles: removed, Report: report}
}

func dropNamed(refs []chat.FileRef, names map[string]bool) []chat.FileRef {
	kept := make([]chat.FileRef, 0, len(refs))
	for _, r := range refs {
		if !names[r.Name] {
			kept = append(kept, r)
		}
	}
	return kept
}

func blockReason(msgFindings []detect.Finding, flagged []flaggedFile) string {
	var parts []string
	if len(msgFindings) > 0 {
		parts = append(parts, fmt.Sprintf(
			"Your message text contains sensitive information (%s).",
			distinctDescriptions(msgFindings)))
	}
	if len(flagged) > 0 {
		lines := make([]string, 0, len(flagged))
		for _, ff := range flagged {
			lines = append(lines, fmt.Sprintf("  - **%s**: %s", ff.name, distinctDescriptions(ff.findings)))
		}
		parts = append(parts, "Uploaded files contain sensitive information:\n"+strings.Join(lines, "\n"))
	}
	return "**DLP Filter Blocked This Message**\n\n" +
		strings.Join(parts, "\n\n") +
		"\n\nFor security and compliance, this message has been blocked from being sent to the AI service.\n\n" +
		"Please remove the sensitive data and try again."
}

// distinctDescriptions joins the unique finding descriptions in first-seen
// order.
func distinctDescriptions(findings []detect.Finding) string {
	seen := make(map[string]bool, len(findings))
	var out []string
	for _, f := range findings {
		if !seen[f.Description] {
			seen[f.Description] = true
			out = append(out, f.Description)
		}
	}
	return strings.Join(out, ", ")
}

// summarize renders findings for detection logs: descriptions and
// severities only, never matched text.
func summarize(findings []detect.Finding) string {
	parts := make([]string, 0, len(findings))
	for _, f := range findings {
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Description, f.Severity))
	}
	return strings.Join(parts, ", ")
}

// normalizeBlankContent rewrites whitespace-only message content to the
// placeholder prompt. Applies to every message and, for block lists, to each
// blank text block.
func normalizeBlankContent(body *chat.Body) bool {
	modified := false
	for i := range body.Messages {
		m := &body.Messages[i]
		if m.Content.IsList() {
			for j := range m.Content.Blocks {
				b := &m.Content.Blocks[j]
				if b.Type == "text" && strings.TrimSpace(b.Text) == "" {
					b.Text = placeholderPrompt
					modified = true
				}
			}
		} else if strings.TrimSpace(m.Content.Text) == "" {
			m.Content = chat.NewString(placeholderPrompt)
			modified = true
		}
	}
	return modified
}

// record emits an audit event when the pass observed anything worth keeping.
func (e *Engine) record(requestID, direction string, cfg *config.Config, outcome Outcome, elapsed time.Duration) {
	if e.emitter == nil {
		return
	}
	report := outcome.Summary()

	var name string
	var removed []string
	switch o := outcome.(type) {
	case Pass:
		name = "pass"
	case Blocked:
		name = "blocked"
	case Redacted:
		name = "redacted"
		removed = o.RemovedFiles
	}
	if name == "pass" && len(report.Detections) == 0 && len(report.SkippedFiles) == 0 {
		return
	}

	ev := &audit.Event{
		Time:         time.Now().UTC(),
		RequestID:    requestID,
		Direction:    direction,
		Outcome:      name,
		Mode:         cfg.Filter.NormalizedMode(),
		RemovedFiles: removed,
		LatencyMS:    elapsed.Milliseconds(),
	}
	found := make([]detect.Finding, 0, len(report.Detections))
	for _, d := range report.Detections {
		ev.Findings = append(ev.Findings, audit.NewFinding(d.Source, d.Finding))
		found = append(found, d.Finding)
	}
	ev.MaxSeverity = string(detect.MaxSeverity(found))
	for _, s := range report.SkippedFiles {
		ev.SkippedFiles = append(ev.SkippedFiles, audit.SkippedFile{Name: s.Name, Reason: s.Reason})
	}
	e.emitter.Emit(ev)
}
