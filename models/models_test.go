package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(avail string, texts ...string) Snapshot {
	prices := make([]PriceEntry, len(texts))
	for i, t := range texts {
		prices[i] = PriceEntry{Label: "Card " + string(rune('1'+i)), Text: t}
	}
	return NewSnapshot(prices, avail)
}

func TestSnapshotIsImmutable(t *testing.T) {
	prices := []PriceEntry{{Label: "Card 1", Text: "€ 100"}}
	s := NewSnapshot(prices, "€ 90")
	prices[0].Text = "mutated"

	assert.Equal(t, "€ 100", s.Price(0).Text)

	got := s.Prices()
	got[0].Text = "mutated"
	assert.Equal(t, "€ 100", s.Price(0).Text)
	assert.Equal(t, AvailabilityLabel, s.Availability().Label)
	assert.Equal(t, "€ 90", s.Availability().Text)
}

func TestNewCurrencyOption(t *testing.T) {
	opt := NewCurrencyOption("  $ (USD) ", 2)
	assert.Equal(t, "$ (USD)", opt.Label)
	assert.Equal(t, "$", opt.Code)
	assert.Equal(t, 2, opt.Position)
	assert.False(t, opt.Empty())

	assert.True(t, NewCurrencyOption(" \n", 0).Empty())
}

func TestVerdictDescribe(t *testing.T) {
	assert.Equal(t, "PASS (Currency changed successfully)", Changed.Describe())
	assert.Equal(t, "FAIL (Currency did not change)", Unchanged.Describe())
	assert.Equal(t, "FAIL (Verification error)", Failed.Describe())
}

func TestFailedResultKeepsElementCount(t *testing.T) {
	before := snap("€ 90", "€ 100", "€ 200")
	r := FailedResult(before, NewCurrencyOption("$ (USD)", 0), errors.New("update timeout"))

	require.Len(t, r.Elements, 2)
	for _, e := range r.Elements {
		assert.Equal(t, Failed, e.Verdict)
	}
	assert.Equal(t, "€ 200", r.Elements[1].Initial)
	assert.Equal(t, Failed, r.Availability.Verdict)
	assert.Equal(t, "update timeout", r.Err)
	assert.False(t, r.Passed())
}

func TestResultsLogRejectsMismatchedGroups(t *testing.T) {
	log := NewResultsLog(2)
	ok := FailedResult(snap("a", "x", "y"), NewCurrencyOption("$ (USD)", 0), nil)
	require.NoError(t, log.Append(ok))

	bad := FailedResult(snap("a", "x"), NewCurrencyOption("£ (GBP)", 1), nil)
	require.Error(t, log.Append(bad))
	assert.Equal(t, 1, log.Len())
}

func TestResultsLogGroupsAreCopies(t *testing.T) {
	log := NewResultsLog(1)
	require.NoError(t, log.Append(FailedResult(snap("a", "x"), NewCurrencyOption("$ (USD)", 0), nil)))

	groups := log.Groups()
	groups[0].Currency.Label = "changed"
	assert.Equal(t, "$ (USD)", log.Groups()[0].Currency.Label)
}

func TestResultsLogRowsAndVerdicts(t *testing.T) {
	log := NewResultsLog(2)
	group := ComparisonResult{
		Currency: NewCurrencyOption("$ (USD)", 0),
		Elements: []ElementResult{
			{Label: "Card 1", Initial: "€ 100", Updated: "$ 110", Verdict: Changed},
			{Label: "Card 2", Initial: "€ 200", Updated: "€ 200", Verdict: Unchanged},
		},
		Availability: ElementResult{Label: AvailabilityLabel, Initial: "€ 90", Updated: "$ 99", Verdict: Changed},
	}
	require.NoError(t, log.Append(group))

	rows := log.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"$ (USD)", "Card 1", "€ 100", "$ 110", "PASS (Currency changed successfully)", ""}, rows[0].Values())
	assert.Equal(t, "FAIL (Currency did not change)", rows[1].Verdict)
	assert.Equal(t, AvailabilityLabel, rows[2].Element)

	assert.Equal(t, [][]Verdict{{Changed, Unchanged, Changed}}, log.Verdicts())
	assert.False(t, group.Passed())
}

func TestResultsLogMarshalJSON(t *testing.T) {
	log := NewResultsLog(1)
	require.NoError(t, log.Append(FailedResult(snap("a", "x"), NewCurrencyOption("$ (USD)", 0), nil)))

	raw, err := json.Marshal(log)
	require.NoError(t, err)

	var decoded struct {
		Tracked int `json:"tracked"`
		Groups  []struct {
			Currency CurrencyOption `json:"currency"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 1, decoded.Tracked)
	require.Len(t, decoded.Groups, 1)
	assert.Equal(t, "$", decoded.Groups[0].Currency.Code)
}

func TestNilResultsLogRows(t *testing.T) {
	var log *ResultsLog
	assert.Nil(t, log.Rows())
}
