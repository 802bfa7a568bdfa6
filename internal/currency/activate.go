package currency

import (
	"context"
	"errors"
	"fmt"
	"log"

	"listing-qa/internal/domain"
)

// Activate scrolls el into view and clicks it. Only an obstructed click falls
// back to a forced click; any other click error is returned unchanged.
func Activate(ctx context.Context, page domain.Page, el domain.Element) error {
	if err := page.ScrollIntoView(ctx, el); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("[currency] scroll %s into view: %v", el.Describe(), err)
	}

	err := page.Click(ctx, el)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrObstructed) {
		return fmt.Errorf("click %s: %w", el.Describe(), err)
	}

	log.Printf("[currency] click on %s obstructed, forcing", el.Describe())
	if forceErr := page.ForceClick(ctx, el); forceErr != nil {
		return fmt.Errorf("%w: %s: %w", ErrActivationFailed, el.Describe(), errors.Join(err, forceErr))
	}
	return nil
}
