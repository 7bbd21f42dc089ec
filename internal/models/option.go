// Package models defines the value objects shared across the engine:
// option contracts, strategy legs, resolved spreads, Greeks, and
// probability metrics. Everything here is produced by pure functions of
// chain/quote input and never holds a reference back to its source chain.
package models

import (
	"math"
	"time"
)

// OptionType represents the type of option contract.
type OptionType string

const (
	// OptionTypeCall represents a call option contract.
	OptionTypeCall OptionType = "call"
	// OptionTypePut represents a put option contract.
	OptionTypePut OptionType = "put"
)

// ExpirationType classifies an expiration as a monthly standard or a weekly.
type ExpirationType string

const (
	// ExpirationMonthly is a standard monthly expiration (~3rd Friday).
	ExpirationMonthly ExpirationType = "monthly"
	// ExpirationWeekly is any non-monthly listed expiration.
	ExpirationWeekly ExpirationType = "weekly"
)

// StrikeMatchEpsilon defines the precision tolerance for matching strike prices.
const StrikeMatchEpsilon = 1e-4

// OptionContract is the canonical representation of one listed option.
// Contracts are constructed fresh per chain fetch and treated as immutable,
// except for quote enrichment which fills the market fields after
// construction (see EnrichQuote).
type OptionContract struct {
	Symbol         string         `json:"symbol"`
	Underlying     string         `json:"underlying"`
	Strike         float64        `json:"strike"`
	Expiration     time.Time      `json:"expiration"`
	OptionType     OptionType     `json:"option_type"`
	DTE            int            `json:"days_to_expiration"`
	Bid            float64        `json:"bid"`
	Ask            float64        `json:"ask"`
	Mid            float64        `json:"mid"`
	Volume         int64          `json:"volume"`
	OpenInterest   int64          `json:"open_interest"`
	IV             float64        `json:"iv,omitempty"`
	IsMonthly      bool           `json:"is_monthly"`
	ExpirationType ExpirationType `json:"expiration_type"`
}

// NewOptionContract builds a contract with DTE derived from the expiration
// date and now. Negative DTE is clamped to zero.
func NewOptionContract(symbol, underlying string, strike float64, expiration time.Time,
	optType OptionType, now time.Time) OptionContract {
	return OptionContract{
		Symbol:     symbol,
		Underlying: underlying,
		Strike:     strike,
		Expiration: expiration,
		OptionType: optType,
		DTE:        DaysUntil(expiration, now),
	}
}

// DaysUntil returns the whole calendar days from now until the given date,
// clamped at zero.
func DaysUntil(date, now time.Time) int {
	f := now.UTC().Truncate(24 * time.Hour)
	t := date.UTC().Truncate(24 * time.Hour)
	d := int(t.Sub(f).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// EnrichQuote fills the market fields from a quote lookup. For a single
// contract the natural price is the bid and the opposite price is the ask,
// so the mid reduces to their average.
func (o *OptionContract) EnrichQuote(bid, ask float64, volume int64) {
	o.Bid = bid
	o.Ask = ask
	o.Mid = (bid + ask) / 2
	o.Volume = volume
}

// HasQuote reports whether the contract carries a usable two-sided quote.
func (o *OptionContract) HasQuote() bool {
	return o.Bid > 0 || o.Ask > 0
}

// StrikeMatches reports whether the contract's strike equals the given
// strike within the matching tolerance.
func (o *OptionContract) StrikeMatches(strike float64) bool {
	return math.Abs(o.Strike-strike) <= StrikeMatchEpsilon
}

// TimeToExpiryYears converts the contract's DTE to year fractions for the
// pricing engine.
func (o *OptionContract) TimeToExpiryYears() float64 {
	return float64(o.DTE) / 365.0
}
