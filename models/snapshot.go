package models

// AvailabilityLabel names the availability price entry in snapshots and reports.
const AvailabilityLabel = "Availability Price"

// PriceEntry is one labelled price text read from the page.
type PriceEntry struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Snapshot holds the price texts captured at one point in time. The zero
// value is an empty snapshot; use NewSnapshot to build one.
type Snapshot struct {
	prices       []PriceEntry
	availability PriceEntry
}

// NewSnapshot copies prices so later changes to the caller's slice do not
// leak into the snapshot.
func NewSnapshot(prices []PriceEntry, availability string) Snapshot {
	cp := make([]PriceEntry, len(prices))
	copy(cp, prices)
	return Snapshot{
		prices:       cp,
		availability: PriceEntry{Label: AvailabilityLabel, Text: availability},
	}
}

// Len is the number of tracked price elements, availability excluded.
func (s Snapshot) Len() int { return len(s.prices) }

// Price returns the i-th tracked price entry.
func (s Snapshot) Price(i int) PriceEntry { return s.prices[i] }

// Prices returns a copy of the tracked price entries.
func (s Snapshot) Prices() []PriceEntry {
	cp := make([]PriceEntry, len(s.prices))
	copy(cp, s.prices)
	return cp
}

func (s Snapshot) Availability() PriceEntry { return s.availability }
