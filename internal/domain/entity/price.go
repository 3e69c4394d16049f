package entity

import "fmt"

// TokenPrice is the latest USD quote for a token. Superseded on every update.
type TokenPrice struct {
	Raw      float64 `json:"raw"`
	Currency string  `json:"currency"`
}

// FormattedUSD renders the price with precision scaled to its magnitude.
func (p TokenPrice) FormattedUSD() string {
	switch {
	case p.Raw >= 1:
		return fmt.Sprintf("$%.2f", p.Raw)
	case p.Raw >= 0.01:
		return fmt.Sprintf("$%.4f", p.Raw)
	case p.Raw > 0:
		return fmt.Sprintf("$%.6f", p.Raw)
	default:
		return "$0.00"
	}
}

// PriceSnapshot maps token id to its latest price at one point in time.
type PriceSnapshot map[string]TokenPrice

// Clone returns an independent copy of the snapshot.
func (s PriceSnapshot) Clone() PriceSnapshot {
	out := make(PriceSnapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
