package currency

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"listing-qa/config"
	"listing-qa/internal/domain"
	"listing-qa/models"
)

// Strategy is one way of locating the currency control.
type Strategy struct {
	Name    string
	Locator domain.Locator
}

// Selectors holds every locator the workflow needs.
type Selectors struct {
	Prices       domain.Locator
	Availability domain.Locator
	Options      domain.Locator
	// Control strategies, tried in order
	Strategies []Strategy
}

var xpathStrategyNames = []string{"select-xpath", "selector-div-xpath", "text-xpath"}

// SelectorsFromConfig builds the locators: the control id first, then each
// configured XPath in order.
func SelectorsFromConfig(cfg config.SelectorsConfig) Selectors {
	var strategies []Strategy
	if cfg.ControlID != "" {
		strategies = append(strategies, Strategy{Name: "id", Locator: domain.ID(cfg.ControlID)})
	}
	for i, xp := range cfg.ControlXPaths {
		name := fmt.Sprintf("xpath-%d", i+1)
		if i < len(xpathStrategyNames) {
			name = xpathStrategyNames[i]
		}
		strategies = append(strategies, Strategy{Name: name, Locator: domain.XPath(xp)})
	}
	return Selectors{
		Prices:       domain.Query("." + cfg.PriceClass),
		Availability: domain.ID(cfg.AvailabilityID),
		Options:      domain.XPath(cfg.OptionXPath),
		Strategies:   strategies,
	}
}

// DefaultSelectors returns the locators of the reference listing site.
func DefaultSelectors() Selectors {
	return SelectorsFromConfig(config.Default().Selectors)
}

// ResolveControl tries each strategy once, in order, giving each its own
// timeout to produce an interactable element. The first hit wins. When all
// strategies fail the error wraps ErrControlNotFound and every strategy's
// failure.
func ResolveControl(ctx context.Context, page domain.Page, strategies []Strategy, timeout, interval time.Duration) (domain.Element, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("%w: no strategies configured", ErrControlNotFound)
	}

	var errs []error
	for _, s := range strategies {
		var found domain.Element
		err := AwaitCondition(ctx, func(ctx context.Context) (bool, error) {
			els, err := page.Query(ctx, s.Locator)
			if err != nil {
				return false, err
			}
			for _, el := range els {
				ok, err := page.Interactable(ctx, el)
				if err != nil {
					continue
				}
				if ok {
					found = el
					return true, nil
				}
			}
			if len(els) > 0 {
				return false, fmt.Errorf("%d matches, none interactable", len(els))
			}
			return false, nil
		}, timeout, interval)
		if err == nil {
			log.Printf("[currency] control resolved by strategy %s: %s", s.Name, found.Describe())
			return found, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Printf("[currency] strategy %s (%s) failed: %v", s.Name, s.Locator, err)
		errs = append(errs, fmt.Errorf("strategy %s (%s): %w", s.Name, s.Locator, err))
	}
	return nil, fmt.Errorf("%w: %w", ErrControlNotFound, errors.Join(errs...))
}

// Option is an enumerated currency option bound to its element handle.
// Handles go stale once the menu closes, so options are never reused across
// iterations.
type Option struct {
	models.CurrencyOption
	el domain.Element
}

func (o Option) Element() domain.Element { return o.el }

// EnumerateOptions lists the options of the opened control in page order.
// An option list that never appears within timeout yields no options and no
// error. Empty labels are returned as-is; callers skip them.
func EnumerateOptions(ctx context.Context, page domain.Page, loc domain.Locator, timeout, interval time.Duration) ([]Option, error) {
	var els []domain.Element
	err := AwaitCondition(ctx, func(ctx context.Context) (bool, error) {
		var err error
		els, err = page.Query(ctx, loc)
		return len(els) > 0, err
	}, timeout, interval)
	if errors.Is(err, ErrConditionTimeout) {
		log.Printf("[currency] no options under %s: %v", loc, err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	opts := make([]Option, 0, len(els))
	for i, el := range els {
		text, err := page.Text(ctx, el)
		if err != nil {
			return nil, fmt.Errorf("read option %d: %w", i, err)
		}
		opts = append(opts, Option{CurrencyOption: models.NewCurrencyOption(text, i), el: el})
	}
	return opts, nil
}
