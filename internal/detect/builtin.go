package detect

import (
	regexp "github.com/wasilibs/go-re2"
)

// Toggle keys exposed in the filter configuration. One toggle can cover
// several detectors (e.g. all PHI detectors share block_phi).
const (
	ToggleSSN             = "block_ssn"
	ToggleCreditCards     = "block_credit_cards"
	TogglePHI             = "block_phi"
	ToggleCredentials     = "block_credentials"
	ToggleBankAccounts    = "block_bank_accounts"
	ToggleStandaloneDates = "block_standalone_dates"
)

// builtins is the registry of built-in detectors, in definition order.
// Order matters: it is the tie-break for redaction application order and
// determines finding order in scan results, so reordering entries changes
// observable output. All matching is case-insensitive via the (?i) prefix
// added at compile time.
var builtins = compileBuiltins([]builtinSpec{
	{
		id:          "ssn",
		pattern:     `\b\d{3}[-\x{2013}\x{2014}\s]?\d{2}[-\x{2013}\x{2014}\s]?\d{4}\b`,
		description: "Social Security Number",
		toggle:      ToggleSSN,
		severity:    SeverityCritical,
	},
	{
		id:          "ssn_labeled",
		pattern:     `(?:social\s*security(?:\s*(?:number|no\.?|num\.?|#))?|ssn|ss\s*#|ss\s*no\.?)[\s:.=#]*\d{3}[-\x{2013}\x{2014}\s]?\d{2}[-\x{2013}\x{2014}\s]?\d{4}`,
		description: "Social Security Number (labeled)",
		toggle:      ToggleSSN,
		severity:    SeverityCritical,
	},
	{
		id:          "credit_card",
		pattern:     `\b(?:4\d{3}|5[1-5]\d{2}|3[47]\d{2}|6(?:011|5\d{2}))[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`,
		description: "Credit Card Number",
		toggle:      ToggleCreditCards,
		severity:    SeverityCritical,
	},
	{
		id:          "credit_card_generic",
		pattern:     `\b(?:\d{4}[-\s]){3}\d{4}\b`,
		description: "Potential Credit Card Number",
		toggle:      ToggleCreditCards,
		severity:    SeverityHigh,
	},
	{
		id:          "phi_mrn",
		pattern:     `\b(?:MRN|Medical Record|Patient ID)[\s:#]*\d{5,}\b`,
		description: "Medical Record Number",
		toggle:      TogglePHI,
		severity:    SeverityCritical,
	},
	{
		id:          "phi_dob",
		pattern:     `\b(?:DOB|D\.O\.B\.?|date\s+of\s+birth|birth\s*date|birth\s*day|b[-\s]?day|born(?:\s+on)?|fecha\s+de\s+nacimiento)[\s:]*\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}\b`,
		description: "Date of Birth (labeled)",
		toggle:      TogglePHI,
		severity:    SeverityHigh,
	},
	{
		id:          "phi_dob_iso",
		pattern:     `\b(?:DOB|D\.O\.B\.?|date\s+of\s+birth|birth\s*date|birth\s*day|b[-\s]?day|born(?:\s+on)?)[\s:]*\d{4}[/\-.]\d{1,2}[/\-.]\d{1,2}\b`,
		description: "Date of Birth - ISO format",
		toggle:      TogglePHI,
		severity:    SeverityHigh,
	},
	{
		id:          "phi_dob_text_month",
		pattern:     `\b(?:DOB|D\.O\.B\.?|date\s+of\s+birth|birth\s*date|birth\s*day|b[-\s]?day|born(?:\s+on)?)[\s:]*(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\.?\s+\d{1,2},?\s+\d{2,4}`,
		description: "Date of Birth - text month",
		toggle:      TogglePHI,
		severity:    SeverityHigh,
	},
	{
		id:          "phi_dob_standalone",
		pattern:     `\b(?:0?[1-9]|1[0-2])[/\-](?:0?[1-9]|[12]\d|3[01])[/\-](?:19|20)\d{2}\b`,
		description: "Date Pattern (MM/DD/YYYY)",
		toggle:      ToggleStandaloneDates,
		severity:    SeverityMedium,
	},
	{
		id:          "phi_dob_standalone_iso",
		pattern:     `\b(?:19|20)\d{2}[/\-](?:0?[1-9]|1[0-2])[/\-](?:0?[1-9]|[12]\d|3[01])\b`,
		description: "Date Pattern (YYYY-MM-DD)",
		toggle:      ToggleStandaloneDates,
		severity:    SeverityMedium,
	},
	{
		id:          "phi_diagnosis",
		pattern:     `\b(?:ICD[-\s]?(?:9|10)[-\s]?(?:CM|PCS)?[\s:#]*[A-Z]\d{2}(?:\.\d{1,4})?)\b`,
		description: "ICD Diagnosis Code",
		toggle:      TogglePHI,
		severity:    SeverityMedium,
	},
	{
		id:          "api_key",
		pattern:     `\b(?:sk-[a-zA-Z0-9]{20,}|api[_\-]?key[\s=:]+["']?[a-zA-Z0-9_\-]{16,})`,
		description: "API Key",
		toggle:      ToggleCredentials,
		severity:    SeverityCritical,
	},
	{
		id:          "password_inline",
		pattern:     `(?:password|passwd|pwd)[\s]*[=:]+[\s]*["']?[^\s"']{8,}`,
		description: "Inline Password",
		toggle:      ToggleCredentials,
		severity:    SeverityCritical,
	},
	{
		id:          "connection_string",
		pattern:     `(?:Server|Data Source|Host|Provider)=[^;\n]+;(?:.*?(?:Password|Pwd|User ID)=[^;\n]+)`,
		description: "Database Connection String",
		toggle:      ToggleCredentials,
		severity:    SeverityCritical,
	},
	{
		id:          "aws_key",
		pattern:     `\b(?:AKIA|ASIA)[A-Z0-9]{16}\b`,
		description: "AWS Access Key",
		toggle:      ToggleCredentials,
		severity:    SeverityCritical,
	},
	{
		id:          "private_key",
		pattern:     `-----BEGIN (?:RSA |EC |DSA )?PRIVATE KEY-----`,
		description: "Private Key",
		toggle:      ToggleCredentials,
		severity:    SeverityCritical,
	},
	{
		id:          "bank_routing",
		pattern:     `\b(?:routing|ABA)[\s#:]*\d{9}\b`,
		description: "Bank Routing Number",
		toggle:      ToggleBankAccounts,
		severity:    SeverityCritical,
	},
	{
		id:          "bank_account",
		pattern:     `\b(?:account|acct)[\s#:]*\d{8,17}\b`,
		description: "Bank Account Number",
		toggle:      ToggleBankAccounts,
		severity:    SeverityCritical,
	},
})

type builtinSpec struct {
	id          string
	pattern     string
	description string
	toggle      string
	severity    Severity
}

func compileBuiltins(specs []builtinSpec) []Detector {
	out := make([]Detector, 0, len(specs))
	for _, s := range specs {
		out = append(out, Detector{
			ID:          s.id,
			Description: s.description,
			ToggleKey:   s.toggle,
			Severity:    s.severity,
			re:          regexp.MustCompile(`(?i)` + s.pattern),
		})
	}
	return out
}

// Builtins returns a copy of the built-in registry, for introspection
// (console listing, bench tooling). Toggling never mutates the registry, so
// re-enabling a toggle always restores the original definition.
func Builtins() []Detector {
	out := make([]Detector, len(builtins))
	copy(out, builtins)
	return out
}
