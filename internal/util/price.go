// Package util provides common utility functions for price calculations.
package util

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundToTick rounds x to the nearest tick increment. A negative tick is
// treated as its absolute value; a zero tick returns x unchanged.
// For example, with tick=0.01, 1.2345 becomes 1.23 or 1.24 depending on rounding.
func RoundToTick(x, tick float64) float64 {
	if tick == 0 {
		return x
	}
	tick = math.Abs(tick)
	return math.Round(x/tick) * tick
}

// FloorToTick rounds x down to the nearest tick increment.
func FloorToTick(x, tick float64) float64 {
	if tick == 0 {
		return x
	}
	tick = math.Abs(tick)
	return math.Floor(x/tick) * tick
}

// CeilToTick rounds x up to the nearest tick increment.
func CeilToTick(x, tick float64) float64 {
	if tick == 0 {
		return x
	}
	tick = math.Abs(tick)
	return math.Ceil(x/tick) * tick
}

// DisplayPremium rounds a premium to cents with half-up rounding for
// reporting and scoring.
func DisplayPremium(x float64) float64 {
	v, _ := decimal.NewFromFloat(x).Round(2).Float64()
	return v
}

// TradingPremium rounds a premium to cents for order entry. Exact half-cent
// values round DOWN so the quoted credit is never overstated; all other
// values round to the nearest cent.
func TradingPremium(x float64) float64 {
	d := decimal.NewFromFloat(x)
	cents := d.Mul(decimal.NewFromInt(100))
	if cents.Sub(cents.Floor()).Equal(decimal.NewFromFloat(0.5)) {
		v, _ := cents.Floor().Div(decimal.NewFromInt(100)).Float64()
		return v
	}
	v, _ := d.Round(2).Float64()
	return v
}
