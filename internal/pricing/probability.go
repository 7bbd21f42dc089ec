package pricing

import (
	"math"

	"github.com/mhalpert/spreadscout/internal/models"
)

// kellyCap bounds the Kelly fraction for risk control.
const kellyCap = 0.25

// PositionSide tracks which side of a contract the position holds. The POP
// sign convention is driven by which side is short, not by option type alone.
type PositionSide string

const (
	// SideShort means premium was sold.
	SideShort PositionSide = "short"
	// SideLong means premium was bought.
	SideLong PositionSide = "long"
)

// SpreadKind enumerates the four two-leg spread probability branches
// explicitly: put/call crossed with credit/debit.
type SpreadKind int

const (
	// PutCreditSpread profits if price stays above the short strike.
	PutCreditSpread SpreadKind = iota
	// PutDebitSpread profits if price falls below the long strike.
	PutDebitSpread
	// CallCreditSpread profits if price stays below the short strike.
	CallCreditSpread
	// CallDebitSpread profits if price rises above the long strike.
	CallDebitSpread
)

// IsCredit reports whether the spread collects premium at entry.
func (k SpreadKind) IsCredit() bool {
	return k == PutCreditSpread || k == CallCreditSpread
}

// IsPut reports whether the spread is built from puts.
func (k SpreadKind) IsPut() bool {
	return k == PutCreditSpread || k == PutDebitSpread
}

// SpreadInputs bundles the inputs for two-leg spread probability metrics.
type SpreadInputs struct {
	Spot           float64
	ShortStrike    float64
	LongStrike     float64
	TimeToExpiry   float64 // in years
	RiskFreeRate   float64
	Volatility     float64
	DividendYield  float64
	Kind           SpreadKind
	CreditReceived float64
	DebitPaid      float64
}

// driftD2 computes the lognormal drift-adjusted d2 term against an arbitrary
// price level.
func driftD2(s, level, t, r, q, sigma float64) float64 {
	return (math.Log(s/level) + (r-q-0.5*sigma*sigma)*t) / (sigma * math.Sqrt(t))
}

// ProbabilityOfTouch approximates the probability the underlying touches the
// strike before expiry using the barrier-option doubling rule, capped at 100.
// Defined as 50 when spot equals the strike.
func ProbabilityOfTouch(s, k, t, sigma float64) float64 {
	if t <= 0 || sigma <= 0 {
		return 0
	}
	if s == k {
		return 50
	}
	barrier := 2 * normCDF(math.Abs(math.Log(k/s))/(sigma*math.Sqrt(t)))
	return math.Min(barrier*100, 100)
}

// confidenceBand returns the lognormal 95% band for the terminal price,
// rounded to cents.
func confidenceBand(s, t, r, q, sigma float64) (float64, float64) {
	mu := (r - q - 0.5*sigma*sigma) * t
	spread := 1.96 * sigma * math.Sqrt(t)
	low := roundCents(s * math.Exp(mu-spread))
	high := roundCents(s * math.Exp(mu+spread))
	return low, high
}

func roundCents(x float64) float64 {
	return math.Round(x*100) / 100
}

func clampPct(x float64) float64 {
	return math.Max(0, math.Min(x, 100))
}

// SingleOptionProbabilities computes the probability metrics for a single
// option position. creditReceived enables the P50 estimate for short premium.
// Degenerate inputs return the all-zero neutral metrics, never an error.
func SingleOptionProbabilities(in OptionInputs, side PositionSide, creditReceived float64) models.ProbabilityMetrics {
	s, k, t := in.Spot, in.Strike, in.TimeToExpiry
	r, sigma, q := in.RiskFreeRate, in.Volatility, in.DividendYield

	if t <= 0 || sigma <= 0 {
		return models.ProbabilityMetrics{}
	}

	_, d2 := D1D2(s, k, t, r, sigma, q)

	var m models.ProbabilityMetrics

	if in.OptionType == models.OptionTypeCall {
		m.ProbITM = normCDF(d2) * 100
		m.POP = normCDF(-d2) * 100 // short call: profit if price finishes below strike
	} else {
		m.ProbITM = normCDF(-d2) * 100
		m.POP = normCDF(d2) * 100 // short put: profit if price finishes above strike
	}
	if side == SideLong {
		m.POP = 100 - m.POP
	}

	m.POT = ProbabilityOfTouch(s, k, t, sigma)

	// P50 target price shifts the strike by half the credit. This is a
	// linear proxy for the 50%-of-credit retention level, not a solved
	// inverse of the credit/spot relationship; it degrades for deep
	// ITM/OTM positions but is kept for numerical parity.
	if creditReceived > 0 {
		targetProfit := creditReceived * 0.5
		if in.OptionType == models.OptionTypePut {
			targetPrice := k + targetProfit
			if targetPrice > 0 {
				m.P50 = normCDF(driftD2(s, targetPrice, t, r, q, sigma)) * 100
			}
		} else {
			targetPrice := k - targetProfit
			if targetPrice > 0 {
				m.P50 = normCDF(-driftD2(s, targetPrice, t, r, q, sigma)) * 100
			}
		}
	}

	m.ConfidenceLow, m.ConfidenceHigh = confidenceBand(s, t, r, q, sigma)

	return m
}

// SpreadProbabilities computes the probability metrics for a two-leg spread.
// The four put/call x credit/debit branches are enumerated explicitly: POP
// keys off the short strike and max-profit probability off the long strike,
// with the sign flipping per branch. Degenerate inputs return neutral
// metrics.
func SpreadProbabilities(in SpreadInputs) models.ProbabilityMetrics {
	s, t := in.Spot, in.TimeToExpiry
	r, sigma, q := in.RiskFreeRate, in.Volatility, in.DividendYield

	if t <= 0 || sigma <= 0 {
		return models.ProbabilityMetrics{}
	}

	var m models.ProbabilityMetrics

	d2Short := driftD2(s, in.ShortStrike, t, r, q, sigma)
	d2Long := driftD2(s, in.LongStrike, t, r, q, sigma)

	switch in.Kind {
	case PutCreditSpread:
		// Profit if price stays above the short strike; max profit above long.
		m.POP = normCDF(d2Short) * 100
		m.ProbMaxProfit = normCDF(d2Long) * 100
	case PutDebitSpread:
		// Profit if price falls below the long strike; max profit below short.
		m.POP = normCDF(-d2Long) * 100
		m.ProbMaxProfit = normCDF(-d2Short) * 100
	case CallCreditSpread:
		// Profit if price stays below the short strike; max profit below long.
		m.POP = normCDF(-d2Short) * 100
		m.ProbMaxProfit = normCDF(-d2Long) * 100
	case CallDebitSpread:
		// Profit if price rises above the long strike; max profit above short.
		m.POP = normCDF(d2Long) * 100
		m.ProbMaxProfit = normCDF(d2Short) * 100
	}

	// Touch probability on the short strike (early assignment risk). Unlike
	// ProbabilityOfTouch, the spread path leaves POT at zero when spot sits
	// exactly on the short strike; kept for numerical parity.
	if s != in.ShortStrike {
		m.POT = math.Min(2*normCDF(math.Abs(math.Log(in.ShortStrike/s))/(sigma*math.Sqrt(t)))*100, 100)
	}

	width := math.Abs(in.LongStrike - in.ShortStrike)

	// P50: interpolate the underlying level at which half the credit is
	// retained. Same linear approximation as the single-option case.
	if in.Kind.IsCredit() && in.CreditReceived > 0 && width > 0 {
		creditPerPoint := in.CreditReceived / width
		targetDistance := (in.CreditReceived * 0.5) / creditPerPoint
		if in.Kind.IsPut() {
			target := in.ShortStrike + targetDistance
			m.P50 = normCDF(driftD2(s, target, t, r, q, sigma)) * 100
		} else {
			target := in.ShortStrike - targetDistance
			m.P50 = normCDF(-driftD2(s, target, t, r, q, sigma)) * 100
		}
	}

	var maxProfit float64
	if in.Kind.IsCredit() {
		maxProfit = in.CreditReceived
	} else {
		maxProfit = width - in.DebitPaid
	}
	maxLoss := width - maxProfit

	if maxProfit > 0 && maxLoss > 0 {
		probProfit := m.POP / 100
		m.ExpectedValue = probProfit*maxProfit - (1-probProfit)*maxLoss
		kelly := (probProfit*maxProfit - (1-probProfit)*maxLoss) / maxLoss
		m.KellyCriterion = math.Max(0, math.Min(kelly, kellyCap))
	}

	m.ConfidenceLow, m.ConfidenceHigh = confidenceBand(s, t, r, q, sigma)

	return m
}

// IronCondorProbabilities computes POP, max-profit probability and touch
// probability for a four-leg iron condor: profit requires the price to
// finish between the two short strikes.
func IronCondorProbabilities(spot, putShort, putLong, callShort, callLong,
	timeToExpiry, volatility, riskFreeRate float64) models.ProbabilityMetrics {
	s, t, sigma, r := spot, timeToExpiry, volatility, riskFreeRate

	if t <= 0 || sigma <= 0 {
		return models.ProbabilityMetrics{}
	}

	var m models.ProbabilityMetrics

	d2Put := driftD2(s, putShort, t, r, 0, sigma)
	d2Call := driftD2(s, callShort, t, r, 0, sigma)

	probAbovePut := normCDF(d2Put)
	probBelowCall := normCDF(-d2Call)
	m.POP = clampPct((probAbovePut - (1 - probBelowCall)) * 100)

	d2PutLong := driftD2(s, putLong, t, r, 0, sigma)
	d2CallLong := driftD2(s, callLong, t, r, 0, sigma)

	probAbovePutLong := normCDF(d2PutLong)
	probBelowCallLong := normCDF(-d2CallLong)
	m.ProbMaxProfit = clampPct((probAbovePutLong - (1 - probBelowCallLong)) * 100)

	potPut := 1.0
	if s != putShort {
		potPut = 2 * normCDF(math.Abs(math.Log(putShort/s))/(sigma*math.Sqrt(t)))
	}
	potCall := 1.0
	if s != callShort {
		potCall = 2 * normCDF(math.Abs(math.Log(callShort/s))/(sigma*math.Sqrt(t)))
	}
	m.POT = math.Min((potPut+potCall)*100, 100)

	return m
}
