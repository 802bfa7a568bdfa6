// Package domaintest provides an in-memory domain.Page for tests.
package domaintest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"listing-qa/internal/domain"
)

var (
	_ domain.Page          = (*FakePage)(nil)
	_ domain.Screenshotter = (*FakePage)(nil)
	_ domain.Evaluator     = (*FakePage)(nil)
)

// Target is the page state an option switches to once selected.
type Target struct {
	Prices       []string
	Availability string
}

// Control is one candidate element for the currency control.
type Control struct {
	Locator domain.Locator
	Hidden  bool
}

type kind int

const (
	kindControl kind = iota
	kindOption
	kindPrice
	kindAvailability
)

type element struct {
	kind  kind
	index int
	label string
}

func (e *element) Describe() string {
	switch e.kind {
	case kindControl:
		return "control " + e.label
	case kindOption:
		return fmt.Sprintf("option %d %q", e.index, e.label)
	case kindPrice:
		return fmt.Sprintf("price %d", e.index)
	default:
		return "availability"
	}
}

// FakePage models a listing page with a currency control. Clicking a visible
// control opens the option menu; clicking an option closes it and, when the
// option has a Target, swaps the price texts after Lag text reads.
type FakePage struct {
	mu sync.Mutex

	PriceLocator        domain.Locator
	AvailabilityLocator domain.Locator
	OptionLocator       domain.Locator
	Controls            []Control

	Prices       []string
	Availability string
	Options      []string
	Targets      map[string]Target
	// Text reads of prices or availability before a selected Target applies
	Lag int
	// Selected options move to the end of Options, as menus that list the
	// active currency last do
	MoveSelectedLast bool

	Obstructed map[string]bool
	ClickErrs  map[string]error
	ForceErrs  map[string]error
	// Opens allowed before the control disappears; 0 means unlimited
	MaxOpens int
	NavErr   error

	Source     string
	Shot       []byte
	ScriptJSON string

	Navigated   []string
	Clicks      []string
	ForceClicks []string
	Opens       int

	menuOpen bool
	pending  *Target
	lagLeft  int
}

// NewListing returns a page with the default locators, a single visible
// control and the given prices. Targets must be filled in by the caller.
func NewListing(availability string, prices ...string) *FakePage {
	return &FakePage{
		PriceLocator:        domain.Query(".js-price-value"),
		AvailabilityLocator: domain.ID("js-default-price"),
		OptionLocator:       domain.XPath("//ul[@class='select-ul']//li"),
		Controls:            []Control{{Locator: domain.ID("js-currency-sort-footer")}},
		Prices:              prices,
		Availability:        availability,
		Targets:             map[string]Target{},
		Obstructed:          map[string]bool{},
		ClickErrs:           map[string]error{},
		ForceErrs:           map[string]error{},
		Source:              "<html><body><h1>Listing</h1></body></html>",
	}
}

func (p *FakePage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Navigated = append(p.Navigated, url)
	return p.NavErr
}

func (p *FakePage) Query(ctx context.Context, loc domain.Locator) ([]domain.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []domain.Element
	switch loc {
	case p.PriceLocator:
		for i := range p.Prices {
			out = append(out, &element{kind: kindPrice, index: i})
		}
	case p.AvailabilityLocator:
		if p.Availability != "" {
			out = append(out, &element{kind: kindAvailability})
		}
	case p.OptionLocator:
		if p.menuOpen {
			for i, label := range p.Options {
				out = append(out, &element{kind: kindOption, index: i, label: label})
			}
		}
	default:
		if p.MaxOpens > 0 && p.Opens >= p.MaxOpens {
			return nil, nil
		}
		for i, c := range p.Controls {
			if c.Locator == loc {
				out = append(out, &element{kind: kindControl, index: i, label: loc.String()})
			}
		}
	}
	return out, nil
}

func (p *FakePage) Interactable(ctx context.Context, el domain.Element) (bool, error) {
	e, err := asElement(el)
	if err != nil {
		return false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if e.kind == kindControl {
		return !p.Controls[e.index].Hidden, nil
	}
	return true, nil
}

func (p *FakePage) Text(ctx context.Context, el domain.Element) (string, error) {
	e, err := asElement(el)
	if err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e.kind {
	case kindPrice, kindAvailability:
		p.tick()
	}
	switch e.kind {
	case kindPrice:
		if e.index >= len(p.Prices) {
			return "", fmt.Errorf("stale %s", e.Describe())
		}
		return p.Prices[e.index], nil
	case kindAvailability:
		return p.Availability, nil
	case kindOption:
		return e.label, nil
	default:
		return "Currency", nil
	}
}

// tick advances a pending selection; p.mu must be held.
func (p *FakePage) tick() {
	if p.pending == nil {
		return
	}
	if p.lagLeft > 0 {
		p.lagLeft--
		return
	}
	p.Prices = append([]string(nil), p.pending.Prices...)
	p.Availability = p.pending.Availability
	p.pending = nil
}

func (p *FakePage) ScrollIntoView(ctx context.Context, el domain.Element) error {
	_, err := asElement(el)
	return err
}

func (p *FakePage) Click(ctx context.Context, el domain.Element) error {
	e, err := asElement(el)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Clicks = append(p.Clicks, e.label)
	if err := p.ClickErrs[e.label]; err != nil {
		return err
	}
	if p.Obstructed[e.label] {
		return domain.ErrObstructed
	}
	p.activate(e)
	return nil
}

func (p *FakePage) ForceClick(ctx context.Context, el domain.Element) error {
	e, err := asElement(el)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ForceClicks = append(p.ForceClicks, e.label)
	if err := p.ForceErrs[e.label]; err != nil {
		return err
	}
	p.activate(e)
	return nil
}

// activate applies a successful click; p.mu must be held.
func (p *FakePage) activate(e *element) {
	switch e.kind {
	case kindControl:
		p.Opens++
		p.menuOpen = true
	case kindOption:
		p.menuOpen = false
		if p.MoveSelectedLast {
			p.moveLast(e.label)
		}
		if t, ok := p.Targets[e.label]; ok {
			p.pending = &t
			p.lagLeft = p.Lag
			p.tick()
		}
	}
}

func (p *FakePage) moveLast(label string) {
	for i, o := range p.Options {
		if o == label {
			rest := append(append([]string(nil), p.Options[:i]...), p.Options[i+1:]...)
			p.Options = append(rest, label)
			return
		}
	}
}

func (p *FakePage) HTML(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Source, nil
}

func (p *FakePage) Screenshot(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Shot == nil {
		return nil, errors.New("no screenshot configured")
	}
	return p.Shot, nil
}

// EvaluateJSON only understands expressions reading window.ScriptData.
func (p *FakePage) EvaluateJSON(ctx context.Context, expr string, out any) error {
	if !strings.Contains(expr, "ScriptData") {
		return fmt.Errorf("fake page cannot evaluate %q", expr)
	}
	p.mu.Lock()
	raw := p.ScriptJSON
	p.mu.Unlock()
	if raw == "" {
		raw = "null"
	}
	return json.Unmarshal([]byte(raw), out)
}

// MenuOpen reports whether the option menu is currently shown.
func (p *FakePage) MenuOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.menuOpen
}

func asElement(el domain.Element) (*element, error) {
	e, ok := el.(*element)
	if !ok {
		return nil, fmt.Errorf("foreign element %T", el)
	}
	return e, nil
}
