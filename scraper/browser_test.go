package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-qa/config"
)

// Tabs are created lazily; none of these tests starts Chrome.

func TestNewTabWithTimeoutSetsDeadline(t *testing.T) {
	cfg := config.Default()
	allocCtx, cancelAlloc := NewAllocator(context.Background(), &cfg.Browser)
	defer cancelAlloc()

	tab, cancel := NewTabWithTimeout(allocCtx, time.Minute, false)
	require.NotNil(t, chromedp.FromContext(tab))

	deadline, ok := tab.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)

	cancel()
	assert.ErrorIs(t, tab.Err(), context.Canceled)
}

func TestNewTabWithTimeoutExpires(t *testing.T) {
	cfg := config.Default()
	allocCtx, cancelAlloc := NewAllocator(context.Background(), &cfg.Browser)
	defer cancelAlloc()

	tab, cancel := NewTabWithTimeout(allocCtx, 10*time.Millisecond, false)
	defer cancel()

	select {
	case <-tab.Done():
	case <-time.After(time.Second):
		t.Fatal("tab context did not expire")
	}
	assert.ErrorIs(t, tab.Err(), context.DeadlineExceeded)
}
