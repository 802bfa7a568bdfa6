package models

import "time"

// AuditStatus is the pass/fail outcome of a page audit.
type AuditStatus string

const (
	Pass AuditStatus = "Pass"
	Fail AuditStatus = "Fail"
)

// AuditResult is one row of the test summary sheet.
type AuditResult struct {
	Name    string      `json:"name"`
	Status  AuditStatus `json:"status"`
	Comment string      `json:"comment"`
}

// ScriptData holds the fields read from the page's window.ScriptData object.
type ScriptData struct {
	SiteURL     string `json:"site_url"`
	CampaignID  string `json:"campaign_id"`
	SiteName    string `json:"site_name"`
	Browser     string `json:"browser"`
	CountryCode string `json:"country_code"`
	IP          string `json:"ip"`
}

// Run is everything one QA pass over a listing page produced.
type Run struct {
	ID         int64         `json:"id,omitempty"`
	URL        string        `json:"url"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Audits     []AuditResult `json:"audits"`
	ScriptData *ScriptData   `json:"script_data,omitempty"`
	Results    *ResultsLog   `json:"results"`
	Err        string        `json:"error,omitempty"`
}
