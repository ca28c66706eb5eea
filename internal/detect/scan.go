package detect

// Scan tests every detector for presence anywhere in text, in registry
// order, and returns one Finding per detector that matched. It is pure: no
// input mutation, deterministic output, and empty text yields no findings.
func Scan(text string, detectors []Detector) []Finding {
	if text == "" {
		return nil
	}
	var findings []Finding
	for _, d := range detectors {
		if d.re.MatchString(text) {
			findings = append(findings, Finding{
				DetectorID:  d.ID,
				Description: d.Description,
				Severity:    d.Severity,
			})
		}
	}
	return findings
}

// Redact replaces every match of every detector with the detector's
// placeholder, applying detectors sequentially in registry order against the
// progressively rewritten text. A later detector therefore matches against
// earlier placeholders too; a broad digit-grouping pattern can rewrite digits
// inside an unrelated placeholder. That interaction is long-standing observed
// behavior and is kept for compatibility (see the ordering tests), which also
// means redaction is not byte-idempotent across the full detector set. The
// guaranteed property is weaker and is the one callers rely on: no text that
// matched an applied detector survives in the output.
func Redact(text string, detectors []Detector) string {
	if text == "" {
		return text
	}
	out := text
	for _, d := range detectors {
		out = d.re.ReplaceAllString(out, d.Placeholder())
	}
	return out
}
