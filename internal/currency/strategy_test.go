package currency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-qa/config"
	"listing-qa/internal/domain"
	"listing-qa/internal/domain/domaintest"
)

const (
	shortWait = 20 * time.Millisecond
	tick      = 2 * time.Millisecond
)

func TestSelectorsFromConfigOrder(t *testing.T) {
	sel := SelectorsFromConfig(config.Default().Selectors)

	names := make([]string, len(sel.Strategies))
	for i, s := range sel.Strategies {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"id", "select-xpath", "selector-div-xpath", "text-xpath"}, names)
	assert.Equal(t, domain.ID("js-currency-sort-footer"), sel.Strategies[0].Locator)
	assert.Equal(t, domain.Query(".js-price-value"), sel.Prices)
	assert.Equal(t, domain.ID("js-default-price"), sel.Availability)
}

func TestSelectorsFromConfigExtraXPaths(t *testing.T) {
	cfg := config.Default().Selectors
	cfg.ControlID = ""
	cfg.ControlXPaths = append(cfg.ControlXPaths, "//button[@data-currency]")

	sel := SelectorsFromConfig(cfg)
	require.Len(t, sel.Strategies, 4)
	assert.Equal(t, "select-xpath", sel.Strategies[0].Name)
	assert.Equal(t, "xpath-4", sel.Strategies[3].Name)
}

func TestResolveControlFallsThroughStrategies(t *testing.T) {
	page := domaintest.NewListing("€ 90", "€ 100")
	page.Controls = []domaintest.Control{
		{Locator: domain.ID("js-currency-sort-footer"), Hidden: true},
		{Locator: domain.XPath("//div[contains(@class, 'currency-selector')]")},
	}
	strategies := DefaultSelectors().Strategies

	el, err := ResolveControl(context.Background(), page, strategies, shortWait, tick)
	require.NoError(t, err)
	assert.Contains(t, el.Describe(), "currency-selector")
}

func TestResolveControlFirstMatchWins(t *testing.T) {
	page := domaintest.NewListing("€ 90", "€ 100")
	page.Controls = append(page.Controls, domaintest.Control{Locator: domain.XPath("//div[contains(@class, 'currency-selector')]")})

	el, err := ResolveControl(context.Background(), page, DefaultSelectors().Strategies, shortWait, tick)
	require.NoError(t, err)
	assert.Contains(t, el.Describe(), "js-currency-sort-footer")
}

func TestResolveControlExhausted(t *testing.T) {
	page := domaintest.NewListing("€ 90", "€ 100")
	page.Controls = []domaintest.Control{{Locator: domain.ID("js-currency-sort-footer"), Hidden: true}}

	_, err := ResolveControl(context.Background(), page, DefaultSelectors().Strategies, shortWait, tick)
	require.ErrorIs(t, err, ErrControlNotFound)
	msg := err.Error()
	for _, name := range []string{"id", "select-xpath", "selector-div-xpath", "text-xpath"} {
		assert.Contains(t, msg, "strategy "+name+" ")
	}
	assert.Contains(t, msg, "none interactable")
}

func TestResolveControlNoStrategies(t *testing.T) {
	page := domaintest.NewListing("€ 90", "€ 100")
	_, err := ResolveControl(context.Background(), page, nil, shortWait, tick)
	require.ErrorIs(t, err, ErrControlNotFound)
}

func TestResolveControlStopsOnContext(t *testing.T) {
	page := domaintest.NewListing("€ 90", "€ 100")
	page.Controls = nil
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ResolveControl(ctx, page, DefaultSelectors().Strategies, shortWait, tick)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrControlNotFound)
}

func TestEnumerateOptions(t *testing.T) {
	page := domaintest.NewListing("€ 90", "€ 100")
	page.Options = []string{" € (EUR) ", "", "$ (USD)"}
	sel := DefaultSelectors()
	sel.Options = page.OptionLocator

	ctx := context.Background()
	el, err := ResolveControl(ctx, page, sel.Strategies, shortWait, tick)
	require.NoError(t, err)
	require.NoError(t, Activate(ctx, page, el))

	opts, err := EnumerateOptions(ctx, page, sel.Options, shortWait, tick)
	require.NoError(t, err)
	require.Len(t, opts, 3)
	assert.Equal(t, "€ (EUR)", opts[0].Label)
	assert.Equal(t, "€", opts[0].Code)
	assert.True(t, opts[1].Empty())
	assert.Equal(t, 2, opts[2].Position)
	assert.NotNil(t, opts[2].Element())
}

func TestEnumerateOptionsClosedMenuIsEmpty(t *testing.T) {
	page := domaintest.NewListing("€ 90", "€ 100")
	page.Options = []string{"$ (USD)"}

	opts, err := EnumerateOptions(context.Background(), page, page.OptionLocator, shortWait, tick)
	require.NoError(t, err)
	assert.Empty(t, opts)
}
