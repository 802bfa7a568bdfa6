package models

import (
	"strings"

	"listing-qa/utils"
)

// CurrencyOption is one entry of the currency selector, e.g. "$ (USD)".
// Options are re-enumerated on every iteration, so Position is only valid
// for the list it was read from.
type CurrencyOption struct {
	Label    string `json:"label"`
	Code     string `json:"code"`
	Position int    `json:"position"`
}

// NewCurrencyOption trims label and derives Code from its first token.
func NewCurrencyOption(label string, position int) CurrencyOption {
	label = strings.TrimSpace(label)
	return CurrencyOption{
		Label:    label,
		Code:     utils.FirstToken(label),
		Position: position,
	}
}

// Empty reports whether the option has no usable label.
func (o CurrencyOption) Empty() bool { return o.Label == "" }
