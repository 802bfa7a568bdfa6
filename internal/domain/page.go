package domain

import (
	"context"
	"errors"
)

// ErrObstructed is returned by Page.Click when another element would receive
// the click. Callers may retry with ForceClick.
var ErrObstructed = errors.New("element obstructed")

// By selects how a Locator's Value is interpreted.
type By int

const (
	ByID By = iota
	ByQuery
	ByXPath
)

func (b By) String() string {
	switch b {
	case ByID:
		return "id"
	case ByQuery:
		return "css"
	case ByXPath:
		return "xpath"
	default:
		return "unknown"
	}
}

// Locator addresses zero or more elements on the page.
type Locator struct {
	By    By
	Value string
}

func (l Locator) String() string { return l.By.String() + "=" + l.Value }

// ID, Query and XPath build locators.
func ID(id string) Locator { return Locator{By: ByID, Value: id} }
func Query(sel string) Locator { return Locator{By: ByQuery, Value: sel} }
func XPath(expr string) Locator { return Locator{By: ByXPath, Value: expr} }

// Element is an opaque handle to a node the Page returned. Handles may go
// stale when the page re-renders.
type Element interface {
	Describe() string
}

// Page is the browser session a QA run drives. Implementations are not safe
// for concurrent use.
type Page interface {
	Navigate(ctx context.Context, url string) error
	// Query returns the elements currently matching loc without waiting.
	// No match is an empty slice, not an error.
	Query(ctx context.Context, loc Locator) ([]Element, error)
	// Interactable reports whether el is visible and enabled.
	Interactable(ctx context.Context, el Element) (bool, error)
	Text(ctx context.Context, el Element) (string, error)
	ScrollIntoView(ctx context.Context, el Element) error
	// Click performs a user-level click. It returns ErrObstructed when the
	// click would land on a different element.
	Click(ctx context.Context, el Element) error
	// ForceClick dispatches the click on the DOM node directly.
	ForceClick(ctx context.Context, el Element) error
	HTML(ctx context.Context) (string, error)
}

// Screenshotter is implemented by pages that can capture their viewport.
type Screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

// Evaluator is implemented by pages that can run a script. expr must evaluate
// to a JSON string, which is decoded into out.
type Evaluator interface {
	EvaluateJSON(ctx context.Context, expr string, out any) error
}
