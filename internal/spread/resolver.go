// Package spread resolves abstract leg selections into concrete contracts
// and assembles multi-leg strategies, including the premium-targeted
// credit-spread search.
package spread

import (
	"math"
	"time"

	"github.com/mhalpert/spreadscout/internal/models"
)

// StraddleQuote is a precomputed ATM straddle price used by the atm_straddle
// selection method. The expiration is locked for every leg of the strategy
// once computed.
type StraddleQuote struct {
	Strike     float64
	Price      float64
	Expiration time.Time
}

// ResolveRequest carries everything a single leg resolution can need. Only
// Candidates, Leg and Spot are always required; ReferenceStrike feeds offset
// selections, MinPremium feeds premium selections, and Straddle feeds
// atm_straddle selections.
type ResolveRequest struct {
	Candidates      []models.OptionContract
	Leg             models.StrategyLeg
	Spot            float64
	ReferenceStrike float64 // 0 means "use spot"
	MinPremium      float64
	Straddle        *StraddleQuote
}

// ResolveLeg converts one leg selection into a concrete contract. It returns
// false when no candidate satisfies the method's constraint; the caller must
// abandon the strategy instance rather than substitute a default.
func ResolveLeg(req ResolveRequest) (models.OptionContract, bool) {
	candidates := filterByType(req.Candidates, req.Leg.OptionType)
	if len(candidates) == 0 {
		return models.OptionContract{}, false
	}

	switch sel := req.Leg.Selection.(type) {
	case models.SelectATM:
		return closestByStrike(candidates, req.Spot)

	case models.SelectOffset:
		ref := req.ReferenceStrike
		if ref == 0 {
			ref = req.Spot
		}
		pool := candidates
		if req.Straddle != nil {
			if restricted := filterByExpiration(candidates, req.Straddle.Expiration); len(restricted) > 0 {
				pool = restricted
			}
		}
		return closestByStrike(pool, ref+sel.Points)

	case models.SelectPercentage:
		target := req.Spot * (1 + sel.Percent/100)
		if req.Leg.OptionType == models.OptionTypePut {
			target = req.Spot * (1 - sel.Percent/100)
		}
		return closestByStrike(candidates, target)

	case models.SelectPremium:
		return closestPremiumAtLeast(candidates, req.MinPremium)

	case models.SelectATMStraddle:
		if req.Straddle == nil {
			return models.OptionContract{}, false
		}
		offset := req.Straddle.Price * sel.Percent / 100
		target := req.Spot + offset
		if req.Leg.OptionType == models.OptionTypePut {
			target = req.Spot - offset
		}
		pool := filterByExpiration(candidates, req.Straddle.Expiration)
		if len(pool) == 0 {
			return models.OptionContract{}, false
		}
		return closestByStrike(pool, target)
	}

	return models.OptionContract{}, false
}

// ComputeATMStraddle finds the strike nearest spot, then the expiration that
// carries both a call and a put at that strike with DTE closest to the
// target, and returns their combined mid price.
func ComputeATMStraddle(contracts []models.OptionContract, spot float64, targetDTE int) (StraddleQuote, bool) {
	atm, ok := closestByStrike(contracts, spot)
	if !ok {
		return StraddleQuote{}, false
	}

	type pair struct {
		call, put *models.OptionContract
		dte       int
	}
	pairs := make(map[time.Time]*pair)
	for i := range contracts {
		c := &contracts[i]
		if !c.StrikeMatches(atm.Strike) {
			continue
		}
		key := c.Expiration.UTC().Truncate(24 * time.Hour)
		p, ok := pairs[key]
		if !ok {
			p = &pair{dte: c.DTE}
			pairs[key] = p
		}
		if c.OptionType == models.OptionTypeCall {
			p.call = c
		} else {
			p.put = c
		}
	}

	var best *pair
	var bestExp time.Time
	for exp, p := range pairs {
		if p.call == nil || p.put == nil {
			continue
		}
		if best == nil || absInt(p.dte-targetDTE) < absInt(best.dte-targetDTE) {
			best = p
			bestExp = exp
		}
	}
	if best == nil {
		return StraddleQuote{}, false
	}
	return StraddleQuote{
		Strike:     atm.Strike,
		Price:      best.call.Mid + best.put.Mid,
		Expiration: bestExp,
	}, true
}

// SpreadMid computes the two-leg mid as the average of the natural price
// (shortBid - longAsk, what a seller actually receives) and the opposite
// price (shortAsk - longBid). This is deliberately more conservative than
// subtracting naive bid/ask midpoints.
func SpreadMid(short, long models.OptionContract) float64 {
	natural := short.Bid - long.Ask
	opposite := short.Ask - long.Bid
	return (natural + opposite) / 2
}

func filterByType(contracts []models.OptionContract, t models.OptionType) []models.OptionContract {
	out := make([]models.OptionContract, 0, len(contracts))
	for _, c := range contracts {
		if c.OptionType == t {
			out = append(out, c)
		}
	}
	return out
}

func filterByExpiration(contracts []models.OptionContract, exp time.Time) []models.OptionContract {
	exp = exp.UTC().Truncate(24 * time.Hour)
	out := make([]models.OptionContract, 0, len(contracts))
	for _, c := range contracts {
		if c.Expiration.UTC().Truncate(24 * time.Hour).Equal(exp) {
			out = append(out, c)
		}
	}
	return out
}

func closestByStrike(contracts []models.OptionContract, target float64) (models.OptionContract, bool) {
	if len(contracts) == 0 {
		return models.OptionContract{}, false
	}
	best := contracts[0]
	bestDiff := math.Abs(best.Strike - target)
	for _, c := range contracts[1:] {
		if diff := math.Abs(c.Strike - target); diff < bestDiff {
			best, bestDiff = c, diff
		}
	}
	return best, true
}

func closestPremiumAtLeast(contracts []models.OptionContract, minimum float64) (models.OptionContract, bool) {
	var best models.OptionContract
	bestDiff := math.Inf(1)
	found := false
	for _, c := range contracts {
		if c.Mid < minimum {
			continue
		}
		if diff := c.Mid - minimum; diff < bestDiff {
			best, bestDiff = c, diff
			found = true
		}
	}
	return best, found
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
