package utils

import (
	"context"
	"strings"

	"github.com/chromedp/chromedp"
)

// SafeText reads the text of sel into val and never fails on a missing element.
func SafeText(sel string, val *string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_ = chromedp.Text(sel, val, chromedp.ByQuery).Do(ctx)
		return nil
	})
}

// NormalizeText collapses runs of whitespace into single spaces and trims.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FirstToken returns the first whitespace-delimited token of s, or "".
// "$ (USD)" yields "$".
func FirstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
