package currency

import "errors"

var (
	// ErrControlNotFound means every locator strategy for the currency
	// control was exhausted.
	ErrControlNotFound = errors.New("currency control not found")
	// ErrElementsNotLoaded means no price element appeared in time.
	ErrElementsNotLoaded = errors.New("price elements not loaded")
	// ErrActivationFailed means both the primary and the forced click failed.
	ErrActivationFailed = errors.New("activation failed")
	// ErrUpdateTimeout means prices never showed the selected currency.
	ErrUpdateTimeout = errors.New("price update timed out")
	// ErrSnapshotMismatch means a snapshot tracked a different number of
	// price elements than the baseline.
	ErrSnapshotMismatch = errors.New("snapshot element count mismatch")
	// ErrConditionTimeout is returned by AwaitCondition when the deadline passes.
	ErrConditionTimeout = errors.New("condition not met before timeout")
)
