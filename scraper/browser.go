package scraper

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"

	"listing-qa/config"
)

// NewAllocator creates a shared Chrome process from the given browser config.
// All tabs (contexts) must be created from the returned context; cancel
// shuts the browser down.
func NewAllocator(parent context.Context, cfg *config.BrowserConfig) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", cfg.DisableGPU),
		chromedp.Flag("no-sandbox", cfg.NoSandbox),
		chromedp.Flag("disable-setuid-sandbox", cfg.NoSandbox),
		chromedp.Flag("disable-dev-shm-usage", cfg.DisableShm),
		chromedp.UserAgent(cfg.UserAgent),
	)
	if cfg.WindowWidth > 0 && cfg.WindowHeight > 0 {
		opts = append(opts, chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight))
	}
	return chromedp.NewExecAllocator(parent, opts...)
}

// NewTab opens a new browser tab from the allocator context. With debug set
// chromedp's protocol log goes through the standard logger.
func NewTab(allocCtx context.Context, debug bool) (context.Context, context.CancelFunc) {
	if debug {
		return chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Printf))
	}
	return chromedp.NewContext(allocCtx)
}

// NewTabWithTimeout opens a browser tab that auto-cancels after the given
// duration, so a hung page cannot hold a scheduled run open.
func NewTabWithTimeout(allocCtx context.Context, timeout time.Duration, debug bool) (context.Context, context.CancelFunc) {
	tCtx, tCancel := context.WithTimeout(allocCtx, timeout)
	bCtx, bCancel := NewTab(tCtx, debug)
	return bCtx, func() {
		bCancel()
		tCancel()
	}
}

// ScrollToBottom incrementally scrolls the page so lazy-loaded content renders,
// then returns to the top. Using ActionFunc (not async JS) ensures each step
// actually blocks.
func ScrollToBottom(cfg *config.TimingConfig, scrollStep int) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		if scrollStep <= 0 {
			return fmt.Errorf("scrollToBottom: invalid step %d", scrollStep)
		}

		var height int
		if err := chromedp.Evaluate(`document.body.scrollHeight`, &height).Do(ctx); err != nil {
			return fmt.Errorf("scrollToBottom: get height: %w", err)
		}

		for y := 0; y <= height; y += scrollStep {
			if err := chromedp.Evaluate(fmt.Sprintf(`window.scrollTo(0, %d)`, y), nil).Do(ctx); err != nil {
				return fmt.Errorf("scrollToBottom: scroll to %d: %w", y, err)
			}
			if err := sleep(ctx, cfg.ScrollStepDelay); err != nil {
				return err
			}
		}

		// Final pause so last lazy-loaded items have time to render
		if err := sleep(ctx, cfg.ScrollBottomWait); err != nil {
			return err
		}
		return chromedp.Evaluate(`window.scrollTo(0, 0)`, nil).Do(ctx)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
