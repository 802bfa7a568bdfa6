package currency

import (
	"fmt"
	"strings"

	"listing-qa/models"
)

// Compare classifies every tracked element of after against before. An
// element is Changed only when its text differs and now shows the option's
// currency code.
func Compare(before, after models.Snapshot, opt models.CurrencyOption) (models.ComparisonResult, error) {
	if before.Len() != after.Len() {
		return models.ComparisonResult{}, fmt.Errorf("%w: baseline has %d prices, %q snapshot has %d",
			ErrSnapshotMismatch, before.Len(), opt.Label, after.Len())
	}

	elems := make([]models.ElementResult, before.Len())
	for i := range elems {
		b, a := before.Price(i), after.Price(i)
		elems[i] = compareEntry(b.Label, b.Text, a.Text, opt.Code)
	}
	return models.ComparisonResult{
		Currency:     opt,
		Elements:     elems,
		Availability: compareEntry(models.AvailabilityLabel, before.Availability().Text, after.Availability().Text, opt.Code),
	}, nil
}

func compareEntry(label, initial, updated, code string) models.ElementResult {
	return models.ElementResult{
		Label:   label,
		Initial: initial,
		Updated: updated,
		Verdict: verdict(initial, updated, code),
	}
}

func verdict(initial, updated, code string) models.Verdict {
	if updated != initial && code != "" && strings.Contains(updated, code) {
		return models.Changed
	}
	return models.Unchanged
}
