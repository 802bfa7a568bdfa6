// Package audit runs static checks against a rendered listing page.
package audit

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"listing-qa/models"
)

const (
	H1Existence  = "H1 Tag Existence"
	TagSequence  = "HTML Tag Sequence"
	ImageAlt     = "Image Alt Attribute"
	CurrencyName = "Currency Filter"
	ScriptName   = "Scraped Data"
)

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

// Run parses source and returns the H1, heading sequence and image alt
// results in that order.
func Run(source string) ([]models.AuditResult, error) {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("parse page source: %w", err)
	}

	var (
		levels     []int
		missingAlt int
	)
	walk(doc, func(n *html.Node) {
		if lvl, ok := headingLevels[n.DataAtom]; ok {
			levels = append(levels, lvl)
		}
		if n.DataAtom == atom.Img && strings.TrimSpace(attr(n, "alt")) == "" {
			missingAlt++
		}
	})

	return []models.AuditResult{
		checkH1(levels),
		checkSequence(levels),
		checkImageAlt(missingAlt),
	}, nil
}

func checkH1(levels []int) models.AuditResult {
	for _, l := range levels {
		if l == 1 {
			return models.AuditResult{Name: H1Existence, Status: models.Pass, Comment: "H1 tag found"}
		}
	}
	return models.AuditResult{Name: H1Existence, Status: models.Fail, Comment: "H1 tag missing"}
}

// checkSequence fails when a heading is more than one level deeper than the
// heading before it.
func checkSequence(levels []int) models.AuditResult {
	if len(levels) == 0 {
		return models.AuditResult{Name: TagSequence, Status: models.Fail, Comment: "No headings found on the page"}
	}
	for i := 1; i < len(levels); i++ {
		if levels[i] > levels[i-1]+1 {
			return models.AuditResult{Name: TagSequence, Status: models.Fail, Comment: "Sequence broken: " + formatLevels(levels)}
		}
	}
	return models.AuditResult{Name: TagSequence, Status: models.Pass, Comment: "Sequence correct: " + formatLevels(levels)}
}

func checkImageAlt(missing int) models.AuditResult {
	if missing > 0 {
		return models.AuditResult{
			Name:    ImageAlt,
			Status:  models.Fail,
			Comment: fmt.Sprintf("Missing alt attribute for %d images", missing),
		}
	}
	return models.AuditResult{Name: ImageAlt, Status: models.Pass, Comment: "All images have alt attributes"}
}

// CurrencyResult summarises a currency run. Options whose availability price
// already showed their code before activation are no-ops and count neither
// way; the audit passes when every other verified option changed all prices.
func CurrencyResult(results *models.ResultsLog, runErr error) models.AuditResult {
	r := models.AuditResult{Name: CurrencyName, Status: models.Pass}
	if runErr != nil {
		r.Status = models.Fail
		r.Comment = runErr.Error()
		return r
	}
	if results == nil || results.Len() == 0 {
		r.Comment = "No currency options to verify"
		return r
	}

	var verified, unchanged, failed []string
	for _, g := range results.Groups() {
		switch {
		case g.Err != "":
			failed = append(failed, g.Currency.Label)
		case strings.Contains(g.Availability.Initial, g.Currency.Code):
			// already active
		case g.Passed():
			verified = append(verified, g.Currency.Label)
		default:
			unchanged = append(unchanged, g.Currency.Label)
		}
	}

	switch {
	case len(unchanged) > 0:
		r.Status = models.Fail
		r.Comment = "Currency did not change for " + strings.Join(unchanged, ", ")
	case len(verified) == 0 && len(failed) > 0:
		r.Status = models.Fail
		r.Comment = "No option could be verified"
	default:
		r.Comment = fmt.Sprintf("%d options changed every price", len(verified))
	}
	if len(failed) > 0 {
		r.Comment += "; failed: " + strings.Join(failed, ", ")
	}
	return r
}

func walk(n *html.Node, visit func(*html.Node)) {
	if n.Type == html.ElementNode {
		visit(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func formatLevels(levels []int) string {
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = strconv.Itoa(l)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
