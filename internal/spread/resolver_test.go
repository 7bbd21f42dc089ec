package spread

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/mhalpert/spreadscout/internal/models"
)

var testNow = time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

// quoted builds a contract with a symmetric quote around mid.
func quoted(symbol string, strike float64, dte int, optType models.OptionType, mid float64) models.OptionContract {
	c := models.NewOptionContract(symbol, "SPY", strike, testNow.AddDate(0, 0, dte), optType, testNow)
	c.EnrichQuote(mid-0.05, mid+0.05, 100)
	return c
}

func putLadder(dte int, strikes ...float64) []models.OptionContract {
	out := make([]models.OptionContract, 0, len(strikes))
	for _, k := range strikes {
		out = append(out, quoted(fmt.Sprintf("P%.0f-%d", k, dte), k, dte, models.OptionTypePut, 1.0))
	}
	return out
}

func TestResolveLegATM(t *testing.T) {
	candidates := putLadder(45, 90, 95, 100, 105)
	got, ok := ResolveLeg(ResolveRequest{
		Candidates: candidates,
		Leg:        models.StrategyLeg{Action: models.ActionSell, OptionType: models.OptionTypePut, Selection: models.SelectATM{}},
		Spot:       101,
	})
	if !ok || got.Strike != 100 {
		t.Errorf("ATM resolved %v (ok=%v), want strike 100", got.Strike, ok)
	}
}

func TestResolveLegOffset(t *testing.T) {
	candidates := putLadder(45, 85, 90, 95, 100)

	t.Run("anchored to reference strike", func(t *testing.T) {
		got, ok := ResolveLeg(ResolveRequest{
			Candidates:      candidates,
			Leg:             models.StrategyLeg{Action: models.ActionBuy, OptionType: models.OptionTypePut, Selection: models.SelectOffset{Points: -5}},
			Spot:            102,
			ReferenceStrike: 95,
		})
		if !ok || got.Strike != 90 {
			t.Errorf("offset resolved %v (ok=%v), want strike 90", got.Strike, ok)
		}
	})

	t.Run("falls back to spot without reference", func(t *testing.T) {
		got, ok := ResolveLeg(ResolveRequest{
			Candidates: candidates,
			Leg:        models.StrategyLeg{Action: models.ActionBuy, OptionType: models.OptionTypePut, Selection: models.SelectOffset{Points: -5}},
			Spot:       100,
		})
		if !ok || got.Strike != 95 {
			t.Errorf("offset resolved %v (ok=%v), want strike 95", got.Strike, ok)
		}
	})
}

func TestResolveLegPercentage(t *testing.T) {
	puts := putLadder(45, 85, 90, 95, 100)
	got, ok := ResolveLeg(ResolveRequest{
		Candidates: puts,
		Leg:        models.StrategyLeg{Action: models.ActionSell, OptionType: models.OptionTypePut, Selection: models.SelectPercentage{Percent: 5}},
		Spot:       100,
	})
	if !ok || got.Strike != 95 {
		t.Errorf("put percentage resolved %v (ok=%v), want strike 95", got.Strike, ok)
	}

	calls := []models.OptionContract{
		quoted("C100", 100, 45, models.OptionTypeCall, 2.0),
		quoted("C105", 105, 45, models.OptionTypeCall, 1.0),
		quoted("C110", 110, 45, models.OptionTypeCall, 0.5),
	}
	got, ok = ResolveLeg(ResolveRequest{
		Candidates: calls,
		Leg:        models.StrategyLeg{Action: models.ActionSell, OptionType: models.OptionTypeCall, Selection: models.SelectPercentage{Percent: 5}},
		Spot:       100,
	})
	if !ok || got.Strike != 105 {
		t.Errorf("call percentage resolved %v (ok=%v), want strike 105", got.Strike, ok)
	}
}

func TestResolveLegPremium(t *testing.T) {
	candidates := []models.OptionContract{
		quoted("P80", 80, 45, models.OptionTypePut, 0.80),
		quoted("P90", 90, 45, models.OptionTypePut, 1.05),
		quoted("P95", 95, 45, models.OptionTypePut, 1.30),
	}

	got, ok := ResolveLeg(ResolveRequest{
		Candidates: candidates,
		Leg:        models.StrategyLeg{Action: models.ActionSell, OptionType: models.OptionTypePut, Selection: models.SelectPremium{}},
		Spot:       100,
		MinPremium: 1.00,
	})
	if !ok {
		t.Fatal("premium leg unresolved")
	}
	if math.Abs(got.Mid-1.05) > 1e-9 {
		t.Errorf("premium resolved mid %v, want 1.05 (closest above minimum)", got.Mid)
	}

	_, ok = ResolveLeg(ResolveRequest{
		Candidates: candidates,
		Leg:        models.StrategyLeg{Action: models.ActionSell, OptionType: models.OptionTypePut, Selection: models.SelectPremium{}},
		Spot:       100,
		MinPremium: 2.00,
	})
	if ok {
		t.Error("no contract meets a 2.00 minimum, expected not found")
	}
}

func TestResolveLegATMStraddle(t *testing.T) {
	lockedExp := testNow.AddDate(0, 0, 45)
	candidates := []models.OptionContract{
		quoted("P95-45", 95, 45, models.OptionTypePut, 1.0),
		quoted("P90-45", 90, 45, models.OptionTypePut, 0.6),
		quoted("P95-30", 95, 30, models.OptionTypePut, 0.9),
	}

	straddle := &StraddleQuote{Strike: 100, Price: 10, Expiration: lockedExp}

	// 50% of a 10.00 straddle puts the target at spot-5 = 95, restricted to
	// the locked expiration.
	got, ok := ResolveLeg(ResolveRequest{
		Candidates: candidates,
		Leg:        models.StrategyLeg{Action: models.ActionSell, OptionType: models.OptionTypePut, Selection: models.SelectATMStraddle{Percent: 50}},
		Spot:       100,
		Straddle:   straddle,
	})
	if !ok {
		t.Fatal("straddle leg unresolved")
	}
	if got.Strike != 95 || got.DTE != 45 {
		t.Errorf("resolved strike %v DTE %d, want 95 at the locked expiration", got.Strike, got.DTE)
	}

	_, ok = ResolveLeg(ResolveRequest{
		Candidates: candidates,
		Leg:        models.StrategyLeg{Action: models.ActionSell, OptionType: models.OptionTypePut, Selection: models.SelectATMStraddle{Percent: 50}},
		Spot:       100,
	})
	if ok {
		t.Error("straddle method without a straddle quote should fail")
	}
}

func TestResolveLegEmptyCandidates(t *testing.T) {
	_, ok := ResolveLeg(ResolveRequest{
		Leg:  models.StrategyLeg{Action: models.ActionSell, OptionType: models.OptionTypePut, Selection: models.SelectATM{}},
		Spot: 100,
	})
	if ok {
		t.Error("empty candidates should resolve nothing")
	}
}

func TestComputeATMStraddle(t *testing.T) {
	contracts := []models.OptionContract{
		quoted("P100-40", 100, 40, models.OptionTypePut, 4.0),
		quoted("C100-40", 100, 40, models.OptionTypeCall, 4.5),
		quoted("P100-60", 100, 60, models.OptionTypePut, 5.0),
		quoted("C100-60", 100, 60, models.OptionTypeCall, 5.5),
		// An expiration missing its call cannot host the straddle.
		quoted("P100-45", 100, 45, models.OptionTypePut, 4.2),
		quoted("P95-40", 95, 40, models.OptionTypePut, 2.0),
	}

	sq, ok := ComputeATMStraddle(contracts, 101, 45)
	if !ok {
		t.Fatal("straddle not computed")
	}
	if sq.Strike != 100 {
		t.Errorf("straddle strike = %v, want 100", sq.Strike)
	}
	if math.Abs(sq.Price-8.5) > 1e-9 {
		t.Errorf("straddle price = %v, want 8.5 (call mid + put mid at 40 DTE)", sq.Price)
	}
	if !sq.Expiration.Equal(testNow.AddDate(0, 0, 40)) {
		t.Errorf("straddle expiration = %s, want the 40 DTE listing", sq.Expiration)
	}

	if _, ok := ComputeATMStraddle(nil, 100, 45); ok {
		t.Error("empty chain should not produce a straddle")
	}
}

func TestSpreadMid(t *testing.T) {
	short := models.OptionContract{Bid: 1.20, Ask: 1.30}
	long := models.OptionContract{Bid: 0.20, Ask: 0.25}

	// natural = 1.20 - 0.25 = 0.95, opposite = 1.30 - 0.20 = 1.10
	if got := SpreadMid(short, long); math.Abs(got-1.025) > 1e-9 {
		t.Errorf("SpreadMid = %v, want 1.025", got)
	}
}
