package models

import (
	"encoding/json"
	"fmt"
)

// Verdict classifies one element's text across two snapshots.
type Verdict string

const (
	Changed   Verdict = "Changed"
	Unchanged Verdict = "Unchanged"
	// Failed marks elements of an option whose verification could not complete.
	Failed Verdict = "Failed"
)

// Describe renders the verdict the way the QA reports spell it.
func (v Verdict) Describe() string {
	switch v {
	case Changed:
		return "PASS (Currency changed successfully)"
	case Unchanged:
		return "FAIL (Currency did not change)"
	default:
		return "FAIL (Verification error)"
	}
}

// ElementResult is the before/after text of one element and its verdict.
type ElementResult struct {
	Label   string  `json:"label"`
	Initial string  `json:"initial"`
	Updated string  `json:"updated"`
	Verdict Verdict `json:"verdict"`
}

// ComparisonResult is the outcome of verifying one currency option.
type ComparisonResult struct {
	Currency     CurrencyOption  `json:"currency"`
	Elements     []ElementResult `json:"elements"`
	Availability ElementResult   `json:"availability"`
	Err          string          `json:"error,omitempty"`
}

// Passed reports whether every element, availability included, changed.
func (r ComparisonResult) Passed() bool {
	if r.Availability.Verdict != Changed {
		return false
	}
	for _, e := range r.Elements {
		if e.Verdict != Changed {
			return false
		}
	}
	return true
}

// FailedResult builds a group for an option that could not be verified. Every
// tracked element of before gets a Failed verdict so the group keeps the
// tracked element count.
func FailedResult(before Snapshot, opt CurrencyOption, err error) ComparisonResult {
	elems := make([]ElementResult, before.Len())
	for i, p := range before.prices {
		elems[i] = ElementResult{Label: p.Label, Initial: p.Text, Verdict: Failed}
	}
	r := ComparisonResult{
		Currency: opt,
		Elements: elems,
		Availability: ElementResult{
			Label:   AvailabilityLabel,
			Initial: before.availability.Text,
			Verdict: Failed,
		},
	}
	if err != nil {
		r.Err = err.Error()
	}
	return r
}

// ResultsLog is the append-only record of a verification run.
type ResultsLog struct {
	tracked int
	groups  []ComparisonResult
}

// NewResultsLog creates a log whose groups must each carry tracked elements.
func NewResultsLog(tracked int) *ResultsLog {
	return &ResultsLog{tracked: tracked}
}

// Append records a group. Groups with a different element count are rejected.
func (l *ResultsLog) Append(r ComparisonResult) error {
	if len(r.Elements) != l.tracked {
		return fmt.Errorf("results log: group %q has %d elements, want %d",
			r.Currency.Label, len(r.Elements), l.tracked)
	}
	l.groups = append(l.groups, r)
	return nil
}

func (l *ResultsLog) Len() int { return len(l.groups) }

func (l *ResultsLog) Tracked() int { return l.tracked }

// Groups returns a copy of the recorded groups in insertion order.
func (l *ResultsLog) Groups() []ComparisonResult {
	cp := make([]ComparisonResult, len(l.groups))
	copy(cp, l.groups)
	return cp
}

// Verdicts returns per-group verdict sequences, availability last.
func (l *ResultsLog) Verdicts() [][]Verdict {
	out := make([][]Verdict, 0, len(l.groups))
	for _, g := range l.groups {
		vs := make([]Verdict, 0, len(g.Elements)+1)
		for _, e := range g.Elements {
			vs = append(vs, e.Verdict)
		}
		out = append(out, append(vs, g.Availability.Verdict))
	}
	return out
}

func (l *ResultsLog) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Tracked int                `json:"tracked"`
		Groups  []ComparisonResult `json:"groups"`
	}{l.tracked, l.groups})
}
