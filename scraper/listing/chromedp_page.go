// Package listing drives a property listing page through chromedp.
package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"listing-qa/config"
	"listing-qa/internal/domain"
	"listing-qa/scraper"
)

var (
	_ domain.Page          = (*ChromedpPage)(nil)
	_ domain.Screenshotter = (*ChromedpPage)(nil)
	_ domain.Evaluator     = (*ChromedpPage)(nil)
)

// ChromedpPage is a domain.Page backed by one chromedp tab.
type ChromedpPage struct {
	tab context.Context
	cfg *config.Config
}

// NewChromedpPage wraps a tab created with scraper.NewTab. The tab's
// lifetime stays with the caller.
func NewChromedpPage(tab context.Context, cfg *config.Config) *ChromedpPage {
	return &ChromedpPage{tab: tab, cfg: cfg}
}

// run executes actions on the tab. Cancelling ctx, or reaching its deadline,
// aborts the actions without closing the tab.
func (p *ChromedpPage) run(ctx context.Context, actions ...chromedp.Action) error {
	rctx, cancel := context.WithCancel(p.tab)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(rctx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

// runWithRetry executes actions with exponential backoff retries, each
// attempt bounded by timeout.
func (p *ChromedpPage) runWithRetry(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	return p.retryWithBackoff(ctx, func() error {
		actx, cancel := ctx, context.CancelFunc(func() {})
		if timeout > 0 {
			actx, cancel = context.WithTimeout(ctx, timeout)
		}
		defer cancel()
		return p.run(actx, actions...)
	})
}

// retryWithBackoff executes fn with exponential backoff.
func (p *ChromedpPage) retryWithBackoff(ctx context.Context, fn func() error) error {
	maxRetries := p.cfg.Retry.MaxRetries
	initialBackoff := p.cfg.Retry.InitialBackoff
	maxBackoff := p.cfg.Retry.MaxBackoff

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("[page-retry] attempt #%d of %d...", attempt+1, maxRetries+1)
		}

		lastErr = fn()
		if lastErr == nil {
			if attempt > 0 {
				log.Printf("[page-retry] attempt #%d succeeded", attempt+1)
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt < maxRetries {
			backoff := time.Duration(float64(initialBackoff) * math.Pow(2, float64(attempt)))
			if backoff > maxBackoff {
				backoff = maxBackoff
			}

			log.Printf("[page-retry] attempt #%d failed: %v; waiting %v before retry", attempt+1, lastErr, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	log.Printf("[page-retry] all %d attempts failed", maxRetries+1)
	return fmt.Errorf("failed after %d attempts: %w", maxRetries+1, lastErr)
}

// Navigate loads url, waits for the body and, when configured, scrolls the
// whole page once so lazily rendered prices exist before the first snapshot.
func (p *ChromedpPage) Navigate(ctx context.Context, url string) error {
	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(p.cfg.Timing.PageLoadWait),
	}
	if p.cfg.Scraper.ScrollOnLoad {
		actions = append(actions, scraper.ScrollToBottom(&p.cfg.Timing, p.cfg.Scraper.ScrollStep))
	}

	log.Printf("[page] navigating to %s", url)
	if err := p.runWithRetry(ctx, p.cfg.Timing.PageTimeout, actions...); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (p *ChromedpPage) Query(ctx context.Context, loc domain.Locator) ([]domain.Element, error) {
	sel, opts, err := queryOptions(loc)
	if err != nil {
		return nil, err
	}

	var nodes []*cdp.Node
	if err := p.run(ctx, chromedp.Nodes(sel, &nodes, opts...)); err != nil {
		return nil, fmt.Errorf("query %s: %w", loc, err)
	}

	els := make([]domain.Element, len(nodes))
	for i, n := range nodes {
		els[i] = &nodeElement{node: n}
	}
	return els, nil
}

// queryOptions maps a locator onto a chromedp selector that returns every
// match without waiting for one to appear.
func queryOptions(loc domain.Locator) (string, []chromedp.QueryOption, error) {
	switch loc.By {
	case domain.ByID:
		return loc.Value, []chromedp.QueryOption{chromedp.ByID, chromedp.AtLeast(0)}, nil
	case domain.ByQuery:
		return loc.Value, []chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}, nil
	case domain.ByXPath:
		return loc.Value, []chromedp.QueryOption{chromedp.BySearch, chromedp.AtLeast(0)}, nil
	default:
		return "", nil, fmt.Errorf("unsupported locator %s", loc)
	}
}

func (p *ChromedpPage) Interactable(ctx context.Context, el domain.Element) (bool, error) {
	n, err := asNode(el)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := p.run(ctx, callOn(n, interactableJS, &ok)); err != nil {
		return false, fmt.Errorf("interactable %s: %w", el.Describe(), err)
	}
	return ok, nil
}

func (p *ChromedpPage) Text(ctx context.Context, el domain.Element) (string, error) {
	n, err := asNode(el)
	if err != nil {
		return "", err
	}
	var text string
	if err := p.run(ctx, callOn(n, textJS, &text)); err != nil {
		return "", fmt.Errorf("text %s: %w", el.Describe(), err)
	}
	return text, nil
}

func (p *ChromedpPage) ScrollIntoView(ctx context.Context, el domain.Element) error {
	n, err := asNode(el)
	if err != nil {
		return err
	}
	return p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return dom.ScrollIntoViewIfNeeded().WithNodeID(n.NodeID).Do(ctx)
	}))
}

// Click hit-tests the node's centre first. If another element is on top the
// click is not sent and ErrObstructed is returned.
func (p *ChromedpPage) Click(ctx context.Context, el domain.Element) error {
	n, err := asNode(el)
	if err != nil {
		return err
	}

	var onTop string
	if err := p.run(ctx, callOn(n, hitTestJS, &onTop)); err != nil {
		return fmt.Errorf("hit-test %s: %w", el.Describe(), err)
	}
	if onTop != "" {
		return fmt.Errorf("%w: %s receives the click on %s", domain.ErrObstructed, onTop, el.Describe())
	}

	return p.run(ctx, chromedp.MouseClickNode(n))
}

func (p *ChromedpPage) ForceClick(ctx context.Context, el domain.Element) error {
	n, err := asNode(el)
	if err != nil {
		return err
	}
	if err := p.run(ctx, callOn(n, forceClickJS, nil)); err != nil {
		return fmt.Errorf("force click %s: %w", el.Describe(), err)
	}
	return nil
}

func (p *ChromedpPage) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("page source: %w", err)
	}
	return html, nil
}

func (p *ChromedpPage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := p.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return buf, nil
}

// EvaluateJSON runs expr, which must produce a JSON string, and decodes it.
func (p *ChromedpPage) EvaluateJSON(ctx context.Context, expr string, out any) error {
	var raw string
	if err := p.run(ctx, chromedp.Evaluate(expr, &raw)); err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode evaluation result: %w", err)
	}
	return nil
}

// ProbeEntry describes an element that looks currency related.
type ProbeEntry struct {
	Tag   string `json:"tag"`
	ID    string `json:"id"`
	Class string `json:"class"`
	Text  string `json:"text"`
}

// Probe lists elements whose id, class or text mention currency.
func (p *ChromedpPage) Probe(ctx context.Context) ([]ProbeEntry, error) {
	var entries []ProbeEntry
	if err := p.EvaluateJSON(ctx, currencyProbeJS, &entries); err != nil {
		return nil, fmt.Errorf("probe: %w", err)
	}
	return entries, nil
}

// nodeElement is a domain.Element holding a chromedp node handle.
type nodeElement struct {
	node *cdp.Node
}

func (e *nodeElement) Describe() string {
	d := "<" + strings.ToLower(e.node.NodeName)
	if id := e.node.AttributeValue("id"); id != "" {
		d += " id=" + id
	}
	if class := e.node.AttributeValue("class"); class != "" {
		d += " class=" + class
	}
	return d + ">"
}

func asNode(el domain.Element) (*cdp.Node, error) {
	e, ok := el.(*nodeElement)
	if !ok || e.node == nil {
		return nil, fmt.Errorf("element %T does not belong to a chromedp page", el)
	}
	return e.node, nil
}

// callOn invokes fn with `this` bound to n and decodes its return value into
// res when res is non-nil.
func callOn(n *cdp.Node, fn string, res any) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(n.NodeID).Do(ctx)
		if err != nil {
			return fmt.Errorf("resolve node: %w", err)
		}
		defer func() { _ = runtime.ReleaseObject(obj.ObjectID).Do(ctx) }()

		v, exc, err := runtime.CallFunctionOn(fn).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return exc
		}
		if res == nil || v == nil || len(v.Value) == 0 {
			return nil
		}
		return json.Unmarshal([]byte(v.Value), res)
	}
}
