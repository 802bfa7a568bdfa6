package currency

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const defaultPollInterval = 250 * time.Millisecond

// Condition is polled by AwaitCondition. An error counts as "not yet" and is
// reported only if the wait times out.
type Condition func(ctx context.Context) (bool, error)

// AwaitCondition polls cond every interval until it reports true, timeout
// elapses or ctx is done. cond is always evaluated at least once, so a zero
// timeout is a single check. A positive timeout also bounds each call of
// cond through its context. Expiry returns ErrConditionTimeout wrapping the
// last condition error; a done ctx returns ctx.Err().
func AwaitCondition(ctx context.Context, cond Condition, timeout, interval time.Duration) error {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	deadline := time.Now().Add(timeout)

	wctx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		wctx, cancel = context.WithDeadline(ctx, deadline)
	}
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	expired := func() error {
		if lastErr != nil {
			return fmt.Errorf("%w after %v: %w", ErrConditionTimeout, timeout, lastErr)
		}
		return fmt.Errorf("%w after %v", ErrConditionTimeout, timeout)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		ok, err := cond(wctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		switch {
		case ok:
			return nil
		case err != nil && !(wctx.Err() != nil && errors.Is(err, context.DeadlineExceeded)):
			lastErr = err
		}

		if !time.Now().Before(deadline) || wctx.Err() != nil {
			return expired()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wctx.Done():
			if err := ctx.Err(); err != nil {
				return err
			}
			return expired()
		case <-ticker.C:
		}
	}
}
