// Package pricing implements closed-form Black-Scholes pricing, Greeks and
// probability metrics for single options and defined spreads. Every function
// here is pure: no I/O, no logging, no shared state. Domain edge cases
// (T<=0, sigma<=0) return the documented zero/neutral outputs instead of
// raising; invalid numeric domains are rejected up front by ValidateInputs.
package pricing

import (
	"fmt"
	"math"

	"github.com/mhalpert/spreadscout/internal/models"
)

// MaxVolatility is the upper bound accepted by ValidateInputs (500% vol).
const MaxVolatility = 5.0

// OptionInputs bundles the Black-Scholes inputs for one contract.
type OptionInputs struct {
	Spot          float64
	Strike        float64
	TimeToExpiry  float64 // in years
	RiskFreeRate  float64
	Volatility    float64
	DividendYield float64
	OptionType    models.OptionType
}

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPDF is the standard normal density.
func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

// D1D2 computes the Black-Scholes d1 and d2 terms. When T<=0 or sigma<=0 it
// returns (0,0), which callers must treat as "cannot price" rather than a
// valid answer.
func D1D2(s, k, t, r, sigma, q float64) (float64, float64) {
	if t <= 0 || sigma <= 0 {
		return 0, 0
	}
	d1 := (math.Log(s/k) + (r-q+0.5*sigma*sigma)*t) / (sigma * math.Sqrt(t))
	d2 := d1 - sigma*math.Sqrt(t)
	return d1, d2
}

// Price returns the theoretical option price, floored at zero. Degenerate
// inputs (T<=0 or sigma<=0) price to zero.
func Price(in OptionInputs) float64 {
	s, k, t := in.Spot, in.Strike, in.TimeToExpiry
	r, sigma, q := in.RiskFreeRate, in.Volatility, in.DividendYield

	if t <= 0 || sigma <= 0 {
		return 0
	}

	d1, d2 := D1D2(s, k, t, r, sigma, q)

	var price float64
	if in.OptionType == models.OptionTypeCall {
		price = s*math.Exp(-q*t)*normCDF(d1) - k*math.Exp(-r*t)*normCDF(d2)
	} else {
		price = k*math.Exp(-r*t)*normCDF(-d2) - s*math.Exp(-q*t)*normCDF(-d1)
	}

	return math.Max(price, 0)
}

// Greeks returns delta, gamma, theta (per calendar day), vega (per 1% vol)
// and rho (per 1% rate). All Greeks are the zero vector when T<=0.
func Greeks(in OptionInputs) models.Greeks {
	s, k, t := in.Spot, in.Strike, in.TimeToExpiry
	r, sigma, q := in.RiskFreeRate, in.Volatility, in.DividendYield

	if t <= 0 || sigma <= 0 {
		return models.Greeks{}
	}

	d1, d2 := D1D2(s, k, t, r, sigma, q)

	var g models.Greeks

	if in.OptionType == models.OptionTypeCall {
		g.Delta = math.Exp(-q*t) * normCDF(d1)
	} else {
		g.Delta = -math.Exp(-q*t) * normCDF(-d1)
	}

	g.Gamma = (math.Exp(-q*t) * normPDF(d1)) / (s * sigma * math.Sqrt(t))

	thetaTerm1 := -(s * normPDF(d1) * sigma * math.Exp(-q*t)) / (2 * math.Sqrt(t))
	if in.OptionType == models.OptionTypeCall {
		thetaTerm2 := r * k * math.Exp(-r*t) * normCDF(d2)
		thetaTerm3 := -q * s * math.Exp(-q*t) * normCDF(d1)
		g.Theta = (thetaTerm1 - thetaTerm2 + thetaTerm3) / 365
	} else {
		thetaTerm2 := -r * k * math.Exp(-r*t) * normCDF(-d2)
		thetaTerm3 := q * s * math.Exp(-q*t) * normCDF(-d1)
		g.Theta = (thetaTerm1 + thetaTerm2 + thetaTerm3) / 365
	}

	g.Vega = s * math.Exp(-q*t) * normPDF(d1) * math.Sqrt(t) / 100

	if in.OptionType == models.OptionTypeCall {
		g.Rho = k * t * math.Exp(-r*t) * normCDF(d2) / 100
	} else {
		g.Rho = -k * t * math.Exp(-r*t) * normCDF(-d2) / 100
	}

	return g
}

// ValidateInputs rejects numeric domains the pricing formulas must never see:
// non-positive prices or time, and non-positive or excessive volatility.
func ValidateInputs(spot, strike, timeToExpiry, volatility float64) error {
	if spot <= 0 {
		return fmt.Errorf("underlying price must be positive, got %v", spot)
	}
	if strike <= 0 {
		return fmt.Errorf("strike price must be positive, got %v", strike)
	}
	if timeToExpiry <= 0 {
		return fmt.Errorf("time to expiry must be positive, got %v", timeToExpiry)
	}
	if volatility <= 0 || volatility > MaxVolatility {
		return fmt.Errorf("volatility must be in (0, %v], got %v", MaxVolatility, volatility)
	}
	return nil
}
