package currency

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"listing-qa/config"
	"listing-qa/internal/domain"
	"listing-qa/models"
)

// State is the position of a Workflow in its verification loop.
type State int

const (
	Idle State = iota
	SelectorOpen
	OptionActivating
	AwaitingUpdate
	Snapshotted
	Recorded
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case SelectorOpen:
		return "selector-open"
	case OptionActivating:
		return "option-activating"
	case AwaitingUpdate:
		return "awaiting-update"
	case Snapshotted:
		return "snapshotted"
	case Recorded:
		return "recorded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const dumpTimeout = 10 * time.Second

// Options bounds every wait of the workflow.
type Options struct {
	SelectorTimeout time.Duration
	OptionsTimeout  time.Duration
	SnapshotTimeout time.Duration
	UpdateTimeout   time.Duration
	PollInterval    time.Duration
	// Page dumps are written here on abort; empty means the working directory
	DumpDir string
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		SelectorTimeout: cfg.Timing.SelectorTimeout,
		OptionsTimeout:  cfg.Timing.OptionsTimeout,
		SnapshotTimeout: cfg.Timing.SnapshotTimeout,
		UpdateTimeout:   cfg.Timing.UpdateTimeout,
		PollInterval:    cfg.Timing.PollInterval,
		DumpDir:         cfg.Report.DumpDir,
	}
}

// Workflow verifies that every option of the currency control converts the
// page's prices. A Workflow drives one page and is not safe for concurrent use.
type Workflow struct {
	page  domain.Page
	sel   Selectors
	opts  Options
	state State
	dumps []string
}

func New(page domain.Page, sel Selectors, opts Options) *Workflow {
	return &Workflow{page: page, sel: sel, opts: opts}
}

func (w *Workflow) State() State { return w.state }

// Dumps lists the files written by page dumps during the last Run.
func (w *Workflow) Dumps() []string { return append([]string(nil), w.dumps...) }

// Run snapshots the baseline, then activates each option in turn and records
// a comparison group per attempted option. Option-scoped failures are recorded
// as Failed groups and the loop continues. Abort-level failures dump the page
// and return the error together with the groups recorded so far; the log is
// never nil.
func (w *Workflow) Run(ctx context.Context) (*models.ResultsLog, error) {
	w.state = Idle
	w.dumps = nil

	before, err := w.capture(ctx)
	if err != nil {
		return models.NewResultsLog(0), w.abort(ctx, fmt.Errorf("baseline snapshot: %w", err))
	}
	results := models.NewResultsLog(before.Len())
	log.Printf("[currency] baseline: %d prices, availability %q", before.Len(), before.Availability().Text)

	if err := w.open(ctx); err != nil {
		return results, w.abort(ctx, fmt.Errorf("open currency control: %w", err))
	}

	processed := make(map[string]bool)
	prev := before
	for {
		if err := ctx.Err(); err != nil {
			return results, w.abort(ctx, err)
		}

		options, err := EnumerateOptions(ctx, w.page, w.sel.Options, w.opts.OptionsTimeout, w.opts.PollInterval)
		if err != nil {
			return results, w.abort(ctx, fmt.Errorf("enumerate options: %w", err))
		}
		opt, pending, ok := nextOption(options, processed)
		if !ok {
			break
		}
		processed[opt.Label] = true

		log.Printf("[currency] option %d/%d: %q", len(processed), len(processed)+pending-1, opt.Label)
		group, after, err := w.verify(ctx, prev, opt)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrElementsNotLoaded) {
				return results, w.abort(ctx, fmt.Errorf("option %q: %w", opt.Label, err))
			}
			log.Printf("[currency] option %q failed: %v", opt.Label, err)
			group = models.FailedResult(prev, opt.CurrencyOption, err)
		} else {
			prev = after
		}

		if err := results.Append(group); err != nil {
			return results, err
		}
		w.state = Recorded

		// The last enumeration had nothing else to try.
		if pending <= 1 {
			break
		}
		if err := w.open(ctx); err != nil {
			return results, w.abort(ctx, fmt.Errorf("reopen currency control: %w", err))
		}
	}

	w.state = Idle
	log.Printf("[currency] done: %d options recorded", results.Len())
	return results, nil
}

// nextOption returns the first option in options with a non-empty label that
// is not in processed, and the number of distinct such labels in the list.
// Options are matched by label so a menu that reorders between openings is
// still covered.
func nextOption(options []Option, processed map[string]bool) (Option, int, bool) {
	var (
		next  Option
		found bool
	)
	seen := make(map[string]bool)
	for _, opt := range options {
		if opt.Empty() || processed[opt.Label] || seen[opt.Label] {
			continue
		}
		seen[opt.Label] = true
		if !found {
			next, found = opt, true
		}
	}
	return next, len(seen), found
}

// verify activates opt and compares the resulting prices against prev.
func (w *Workflow) verify(ctx context.Context, prev models.Snapshot, opt Option) (models.ComparisonResult, models.Snapshot, error) {
	w.state = OptionActivating
	if err := Activate(ctx, w.page, opt.Element()); err != nil {
		return models.ComparisonResult{}, models.Snapshot{}, fmt.Errorf("activate: %w", err)
	}

	w.state = AwaitingUpdate
	if err := w.awaitUpdate(ctx, opt.CurrencyOption); err != nil {
		return models.ComparisonResult{}, models.Snapshot{}, err
	}

	after, err := w.capture(ctx)
	if err != nil {
		return models.ComparisonResult{}, models.Snapshot{}, err
	}
	w.state = Snapshotted

	group, err := Compare(prev, after, opt.CurrencyOption)
	if err != nil {
		return models.ComparisonResult{}, models.Snapshot{}, err
	}
	return group, after, nil
}

// awaitUpdate waits for the availability price and then at least one tracked
// price to show the option's currency code.
func (w *Workflow) awaitUpdate(ctx context.Context, opt models.CurrencyOption) error {
	availability := func(ctx context.Context) (bool, error) {
		return w.anyContains(ctx, w.sel.Availability, opt.Code, true)
	}
	if err := AwaitCondition(ctx, availability, w.opts.UpdateTimeout, w.opts.PollInterval); err != nil {
		return updateErr("availability price", opt, err)
	}

	prices := func(ctx context.Context) (bool, error) {
		return w.anyContains(ctx, w.sel.Prices, opt.Code, false)
	}
	if err := AwaitCondition(ctx, prices, w.opts.UpdateTimeout, w.opts.PollInterval); err != nil {
		return updateErr("prices", opt, err)
	}
	return nil
}

func updateErr(what string, opt models.CurrencyOption, err error) error {
	if errors.Is(err, ErrConditionTimeout) {
		return fmt.Errorf("%w: %s never showed %q: %w", ErrUpdateTimeout, what, opt.Code, err)
	}
	return err
}

// anyContains reports whether an element matching loc contains code. With
// firstOnly set only the first match is inspected.
func (w *Workflow) anyContains(ctx context.Context, loc domain.Locator, code string, firstOnly bool) (bool, error) {
	els, err := w.page.Query(ctx, loc)
	if err != nil {
		return false, err
	}
	if firstOnly && len(els) > 1 {
		els = els[:1]
	}
	for _, el := range els {
		text, err := w.page.Text(ctx, el)
		if err != nil {
			return false, err
		}
		if strings.Contains(text, code) {
			return true, nil
		}
	}
	return false, nil
}

func (w *Workflow) capture(ctx context.Context) (models.Snapshot, error) {
	return Capture(ctx, w.page, w.sel, w.opts.SnapshotTimeout, w.opts.PollInterval)
}

// open resolves the control afresh and activates it.
func (w *Workflow) open(ctx context.Context) error {
	el, err := ResolveControl(ctx, w.page, w.sel.Strategies, w.opts.SelectorTimeout, w.opts.PollInterval)
	if err != nil {
		return err
	}
	if err := Activate(ctx, w.page, el); err != nil {
		return err
	}
	w.state = SelectorOpen
	return nil
}

// abort dumps the page for diagnosis and returns err.
func (w *Workflow) abort(ctx context.Context, err error) error {
	log.Printf("[currency] aborting in state %s: %v", w.state, err)
	w.dump(ctx)
	w.state = Idle
	return err
}

// dump writes the page source and, when supported, a screenshot. It runs
// detached from ctx so an expired run budget still leaves a dump behind.
func (w *Workflow) dump(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dumpTimeout)
	defer cancel()

	dir := w.opts.DumpDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[currency] dump dir %s: %v", dir, err)
		return
	}
	stamp := time.Now().Unix()

	html, err := w.page.HTML(ctx)
	if err != nil {
		log.Printf("[currency] dump page source: %v", err)
	} else {
		path := filepath.Join(dir, fmt.Sprintf("page_source_%d.html", stamp))
		if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
			log.Printf("[currency] write %s: %v", path, err)
		} else {
			log.Printf("[currency] page source saved to %s", path)
			w.dumps = append(w.dumps, path)
		}
	}

	shooter, ok := w.page.(domain.Screenshotter)
	if !ok {
		return
	}
	png, err := shooter.Screenshot(ctx)
	if err != nil {
		log.Printf("[currency] dump screenshot: %v", err)
		return
	}
	path := filepath.Join(dir, fmt.Sprintf("page_%d.png", stamp))
	if err := os.WriteFile(path, png, 0o644); err != nil {
		log.Printf("[currency] write %s: %v", path, err)
		return
	}
	w.dumps = append(w.dumps, path)
}
