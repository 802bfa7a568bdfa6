package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-qa/internal/domain/domaintest"
	"listing-qa/models"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []models.AuditResult
	}{
		{
			name:   "well formed",
			source: `<html><body><h1>Flat</h1><h2>Rooms</h2><h3>Bed</h3><h2>Area</h2><img src="a.jpg" alt="Front"></body></html>`,
			want: []models.AuditResult{
				{Name: H1Existence, Status: models.Pass, Comment: "H1 tag found"},
				{Name: TagSequence, Status: models.Pass, Comment: "Sequence correct: [1, 2, 3, 2]"},
				{Name: ImageAlt, Status: models.Pass, Comment: "All images have alt attributes"},
			},
		},
		{
			name:   "skipped level and missing alts",
			source: `<body><h1>Flat</h1><h3>Bed</h3><img src="a.jpg"><img src="b.jpg" alt="  "><img alt="ok"></body>`,
			want: []models.AuditResult{
				{Name: H1Existence, Status: models.Pass, Comment: "H1 tag found"},
				{Name: TagSequence, Status: models.Fail, Comment: "Sequence broken: [1, 3]"},
				{Name: ImageAlt, Status: models.Fail, Comment: "Missing alt attribute for 2 images"},
			},
		},
		{
			name:   "no headings",
			source: `<body><p>nothing</p></body>`,
			want: []models.AuditResult{
				{Name: H1Existence, Status: models.Fail, Comment: "H1 tag missing"},
				{Name: TagSequence, Status: models.Fail, Comment: "No headings found on the page"},
				{Name: ImageAlt, Status: models.Pass, Comment: "All images have alt attributes"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Run(tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSequenceAllowsClimbingBack(t *testing.T) {
	r := checkSequence([]int{2, 3, 4, 1, 2})
	assert.Equal(t, models.Pass, r.Status)
}

func group(label, availInitial string, verdict models.Verdict, errText string) models.ComparisonResult {
	opt := models.NewCurrencyOption(label, 0)
	return models.ComparisonResult{
		Currency:     opt,
		Elements:     []models.ElementResult{{Label: "Card 1", Verdict: verdict}},
		Availability: models.ElementResult{Label: models.AvailabilityLabel, Initial: availInitial, Verdict: verdict},
		Err:          errText,
	}
}

func TestCurrencyResult(t *testing.T) {
	build := func(groups ...models.ComparisonResult) *models.ResultsLog {
		l := models.NewResultsLog(1)
		for _, g := range groups {
			require.NoError(t, l.Append(g))
		}
		return l
	}

	t.Run("run error", func(t *testing.T) {
		r := CurrencyResult(build(), errors.New("currency control not found"))
		assert.Equal(t, models.Fail, r.Status)
		assert.Equal(t, "currency control not found", r.Comment)
	})

	t.Run("no options", func(t *testing.T) {
		r := CurrencyResult(build(), nil)
		assert.Equal(t, models.Pass, r.Status)
	})

	t.Run("active option is a no-op", func(t *testing.T) {
		r := CurrencyResult(build(
			group("€ (EUR)", "€120", models.Unchanged, ""),
			group("$ (USD)", "€120", models.Changed, ""),
		), nil)
		assert.Equal(t, models.Pass, r.Status)
		assert.Equal(t, "1 options changed every price", r.Comment)
	})

	t.Run("unchanged option fails", func(t *testing.T) {
		r := CurrencyResult(build(
			group("$ (USD)", "€120", models.Changed, ""),
			group("£ (GBP)", "$130", models.Unchanged, ""),
		), nil)
		assert.Equal(t, models.Fail, r.Status)
		assert.Contains(t, r.Comment, "£ (GBP)")
	})

	t.Run("failed options are listed", func(t *testing.T) {
		r := CurrencyResult(build(
			group("$ (USD)", "€120", models.Changed, ""),
			group("£ (GBP)", "$130", models.Failed, "price update timed out"),
		), nil)
		assert.Equal(t, models.Pass, r.Status)
		assert.Contains(t, r.Comment, "failed: £ (GBP)")
	})

	t.Run("only failures", func(t *testing.T) {
		r := CurrencyResult(build(group("£ (GBP)", "€120", models.Failed, "timeout")), nil)
		assert.Equal(t, models.Fail, r.Status)
	})
}

func TestScrapeScriptData(t *testing.T) {
	page := domaintest.NewListing("€ 90", "€ 100")
	page.ScriptJSON = `{
		"config": {"SiteUrl": "www.alojamiento.io", "SiteName": "Alojamiento"},
		"pageData": {"CampaignId": 1234},
		"userInfo": {"Browser": "Chrome", "CountryCode": "BD", "IP": "203.0.113.7"}
	}`

	sd, err := ScrapeScriptData(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, &models.ScriptData{
		SiteURL:     "www.alojamiento.io",
		CampaignID:  "1234",
		SiteName:    "Alojamiento",
		Browser:     "Chrome",
		CountryCode: "BD",
		IP:          "203.0.113.7",
	}, sd)

	r := ScriptDataResult(sd, nil)
	assert.Equal(t, models.Pass, r.Status)
	assert.Equal(t, "Site Alojamiento, campaign 1234", r.Comment)
}

func TestScrapeScriptDataMissing(t *testing.T) {
	page := domaintest.NewListing("€ 90", "€ 100")

	sd, err := ScrapeScriptData(context.Background(), page)
	require.ErrorIs(t, err, ErrNoScriptData)
	assert.Nil(t, sd)

	r := ScriptDataResult(sd, err)
	assert.Equal(t, models.Fail, r.Status)
}

func TestScriptDataResultMissingFields(t *testing.T) {
	r := ScriptDataResult(&models.ScriptData{SiteName: "Alojamiento"}, nil)
	assert.Equal(t, models.Fail, r.Status)
	assert.Equal(t, "Missing CampaignId, SiteUrl", r.Comment)
}

func TestFlexStringRejectsObjects(t *testing.T) {
	var f flexString
	require.Error(t, f.UnmarshalJSON([]byte(`{"a":1}`)))
	require.NoError(t, f.UnmarshalJSON([]byte(`null`)))
	assert.Equal(t, flexString(""), f)
}
