package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"listing-qa/internal/domain"
	"listing-qa/models"
)

// ErrNoScriptData means the page does not define window.ScriptData.
var ErrNoScriptData = errors.New("window.ScriptData not defined")

const scriptDataExpr = `JSON.stringify(typeof ScriptData === "undefined" ? null : ScriptData)`

// flexString accepts JSON strings and numbers; campaign ids come as either.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

type rawScriptData struct {
	Config struct {
		SiteURL  flexString `json:"SiteUrl"`
		SiteName flexString `json:"SiteName"`
	} `json:"config"`
	PageData struct {
		CampaignID flexString `json:"CampaignId"`
	} `json:"pageData"`
	UserInfo struct {
		Browser     flexString `json:"Browser"`
		CountryCode flexString `json:"CountryCode"`
		IP          flexString `json:"IP"`
	} `json:"userInfo"`
}

// ScrapeScriptData reads the tracking fields of window.ScriptData.
func ScrapeScriptData(ctx context.Context, ev domain.Evaluator) (*models.ScriptData, error) {
	var raw *rawScriptData
	if err := ev.EvaluateJSON(ctx, scriptDataExpr, &raw); err != nil {
		return nil, fmt.Errorf("evaluate ScriptData: %w", err)
	}
	if raw == nil {
		return nil, ErrNoScriptData
	}
	return &models.ScriptData{
		SiteURL:     string(raw.Config.SiteURL),
		CampaignID:  string(raw.PageData.CampaignID),
		SiteName:    string(raw.Config.SiteName),
		Browser:     string(raw.UserInfo.Browser),
		CountryCode: string(raw.UserInfo.CountryCode),
		IP:          string(raw.UserInfo.IP),
	}, nil
}

// ScriptDataResult turns a ScrapeScriptData outcome into an audit row.
func ScriptDataResult(sd *models.ScriptData, err error) models.AuditResult {
	if err != nil {
		return models.AuditResult{Name: ScriptName, Status: models.Fail, Comment: err.Error()}
	}
	var missing []string
	for name, v := range map[string]string{
		"SiteUrl":    sd.SiteURL,
		"CampaignId": sd.CampaignID,
		"SiteName":   sd.SiteName,
	} {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return models.AuditResult{Name: ScriptName, Status: models.Fail, Comment: "Missing " + strings.Join(missing, ", ")}
	}
	return models.AuditResult{
		Name:    ScriptName,
		Status:  models.Pass,
		Comment: fmt.Sprintf("Site %s, campaign %s", sd.SiteName, sd.CampaignID),
	}
}
