package models

// CompanyInfo is the resolved identity of an accepted search result.
// Built once on acceptance and never mutated afterwards.
type CompanyInfo struct {
	Name  string `json:"name"`
	HRB   string `json:"hrb"`
	Query string `json:"query,omitempty"`
}

// DocumentError records one per-document failure. Errors accumulate
// here instead of aborting sibling document fetches.
type DocumentError struct {
	Type    DocumentType `json:"doc_type"`
	Stage   string       `json:"stage"` // "fetch" or "extract"
	Message string       `json:"message"`
}

// Diagnostics is what the diagnostics sink managed to capture at
// failure time. Every field is best effort; empty means not captured.
type Diagnostics struct {
	ScreenshotPath string
	HTMLPath       string
	UIMessages     []string
}

// DebugInfo is the outcome's diagnostic bag: messages surfaced by the
// site UI, per-document errors, and capture flags for manual triage.
type DebugInfo struct {
	UIMessages      []string        `json:"ui_messages,omitempty"`
	DocumentErrors  []DocumentError `json:"document_errors,omitempty"`
	ScreenshotSaved bool            `json:"screenshot_saved"`
	HTMLSaved       bool            `json:"html_saved"`
	ScreenshotPath  string          `json:"screenshot_path,omitempty"`
	HTMLPath        string          `json:"html_path,omitempty"`
	Attempts        int             `json:"attempts,omitempty"`
}

// MergeDiagnostics folds captured diagnostics into the debug bag.
// Messages already collected earlier in the run are not repeated; a
// failure capture usually re-reads the page the search already parsed.
func (d *DebugInfo) MergeDiagnostics(diag Diagnostics) {
	if diag.ScreenshotPath != "" {
		d.ScreenshotSaved = true
		d.ScreenshotPath = diag.ScreenshotPath
	}
	if diag.HTMLPath != "" {
		d.HTMLSaved = true
		d.HTMLPath = diag.HTMLPath
	}
	seen := make(map[string]bool, len(d.UIMessages))
	for _, m := range d.UIMessages {
		seen[m] = true
	}
	for _, m := range diag.UIMessages {
		if !seen[m] {
			d.UIMessages = append(d.UIMessages, m)
		}
	}
}

// ScrapeOutcome is the single terminal artifact of an orchestration
// run. Error is empty on success; RetryRecommended is the only
// machine-actionable retry signal.
type ScrapeOutcome struct {
	Success          bool             `json:"success"`
	Error            string           `json:"error,omitempty"`
	RetryRecommended bool             `json:"retry_recommended"`
	Company          *CompanyInfo     `json:"company_info,omitempty"`
	Documents        []DocumentResult `json:"documents"`
	Debug            *DebugInfo       `json:"debug_info,omitempty"`
}
