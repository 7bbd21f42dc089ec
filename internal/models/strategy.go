package models

import "sort"

// LegAction indicates whether a leg is bought or sold.
type LegAction string

const (
	// ActionBuy opens the leg long.
	ActionBuy LegAction = "buy"
	// ActionSell opens the leg short.
	ActionSell LegAction = "sell"
)

// StrategyLeg is one abstract leg of a multi-leg strategy definition.
type StrategyLeg struct {
	Action     LegAction
	OptionType OptionType
	Selection  Selection
	Quantity   int
}

// ResolvedLeg binds a strategy leg to a concrete contract from the chain.
type ResolvedLeg struct {
	Action   LegAction      `json:"action"`
	Contract OptionContract `json:"contract"`
	Quantity int            `json:"quantity"`
}

// SpreadStrategy is a fully resolved and priced candidate structure.
// NetPremium is positive for credits and negative for debits. For a 2-leg
// credit spread MaxProfit+MaxLoss equals the strike width times the
// per-contract multiplier divided by 100 in per-share terms.
type SpreadStrategy struct {
	ID                  string          `json:"id"`
	StrategyType        string          `json:"strategy_type"`
	Underlying          string          `json:"underlying_symbol"`
	UnderlyingPrice     float64         `json:"underlying_price"`
	Legs                []ResolvedLeg   `json:"legs"`
	ShortLeg            *OptionContract `json:"short_leg,omitempty"`
	LongLeg             *OptionContract `json:"long_leg,omitempty"`
	NetPremium          float64         `json:"net_premium"`
	TradingPremium      float64         `json:"trading_premium"`
	MaxProfit           float64         `json:"max_profit"`
	MaxLoss             float64         `json:"max_loss"`
	BreakEven           float64         `json:"break_even"`
	ProbabilityOfProfit float64         `json:"probability_of_profit"`
	DTE                 int             `json:"days_to_expiration"`
	Score               float64         `json:"strategy_score"`
}

// Width returns the absolute distance between the short and long strikes,
// or 0 when the strategy is not a two-leg spread.
func (s *SpreadStrategy) Width() float64 {
	if s.ShortLeg == nil || s.LongLeg == nil {
		return 0
	}
	w := s.ShortLeg.Strike - s.LongLeg.Strike
	if w < 0 {
		return -w
	}
	return w
}

// ClassifyStrategyType derives a strategy-type label from a leg
// configuration: single-leg names, 2-leg credit/debit spreads, straddles and
// strangles, and the 4-leg iron condor.
func ClassifyStrategyType(legs []StrategyLeg) string {
	if len(legs) == 0 {
		return "unknown"
	}

	switch len(legs) {
	case 1:
		leg := legs[0]
		switch {
		case leg.Action == ActionSell && leg.OptionType == OptionTypePut:
			return "cash_secured_put"
		case leg.Action == ActionSell && leg.OptionType == OptionTypeCall:
			return "naked_call"
		case leg.Action == ActionBuy && leg.OptionType == OptionTypeCall:
			return "long_call"
		case leg.Action == ActionBuy && leg.OptionType == OptionTypePut:
			return "long_put"
		}
	case 2:
		sorted := make([]StrategyLeg, len(legs))
		copy(sorted, legs)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Action == ActionSell && sorted[j].Action != ActionSell
		})

		if sorted[0].Action == ActionSell && sorted[1].Action == ActionBuy {
			if sorted[0].OptionType == sorted[1].OptionType {
				if sorted[0].OptionType == OptionTypePut {
					return "put_credit_spread"
				}
				return "call_credit_spread"
			}
		}
		if sorted[0].Action == sorted[1].Action {
			if sorted[0].OptionType != sorted[1].OptionType {
				if _, ok := sorted[0].Selection.(SelectATM); ok {
					if _, ok := sorted[1].Selection.(SelectATM); ok {
						return "straddle"
					}
				}
				return "strangle"
			}
			// Same type, both bought or both sold: debit spread orientation.
			if sorted[0].Action == ActionBuy {
				if sorted[0].OptionType == OptionTypePut {
					return "put_debit_spread"
				}
				return "call_debit_spread"
			}
		}
	case 4:
		var putSells, putBuys, callSells, callBuys int
		for _, leg := range legs {
			switch {
			case leg.OptionType == OptionTypePut && leg.Action == ActionSell:
				putSells++
			case leg.OptionType == OptionTypePut && leg.Action == ActionBuy:
				putBuys++
			case leg.OptionType == OptionTypeCall && leg.Action == ActionSell:
				callSells++
			case leg.OptionType == OptionTypeCall && leg.Action == ActionBuy:
				callBuys++
			}
		}
		if putSells == 1 && putBuys == 1 && callSells == 1 && callBuys == 1 {
			return "iron_condor"
		}
	}

	return "custom_strategy"
}
