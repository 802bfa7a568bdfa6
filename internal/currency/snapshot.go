package currency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"listing-qa/internal/domain"
	"listing-qa/models"
)

// Capture waits until at least one price element and the availability price
// are present, then reads their trimmed texts. Price entries are labelled
// "Card 1".."Card N" in page order.
func Capture(ctx context.Context, page domain.Page, sel Selectors, timeout, interval time.Duration) (models.Snapshot, error) {
	var prices, avail []domain.Element
	err := AwaitCondition(ctx, func(ctx context.Context) (bool, error) {
		var err error
		if prices, err = page.Query(ctx, sel.Prices); err != nil {
			return false, err
		}
		if avail, err = page.Query(ctx, sel.Availability); err != nil {
			return false, err
		}
		return len(prices) > 0 && len(avail) > 0, nil
	}, timeout, interval)
	if errors.Is(err, ErrConditionTimeout) {
		return models.Snapshot{}, fmt.Errorf("%w: %s / %s: %w", ErrElementsNotLoaded, sel.Prices, sel.Availability, err)
	}
	if err != nil {
		return models.Snapshot{}, err
	}

	entries := make([]models.PriceEntry, len(prices))
	for i, el := range prices {
		text, err := page.Text(ctx, el)
		if err != nil {
			return models.Snapshot{}, fmt.Errorf("read price %d: %w", i+1, err)
		}
		entries[i] = models.PriceEntry{Label: fmt.Sprintf("Card %d", i+1), Text: strings.TrimSpace(text)}
	}

	availText, err := page.Text(ctx, avail[0])
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("read availability price: %w", err)
	}
	return models.NewSnapshot(entries, strings.TrimSpace(availText)), nil
}
