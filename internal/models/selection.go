package models

import "fmt"

// Selection describes how a strategy leg picks its concrete contract.
// Each method carries only the fields it needs; the premium method carries
// none because it always uses the strategy-level minimum premium.
type Selection interface {
	// Method returns the stable identifier used in configuration files.
	Method() string
}

// SelectATM picks the contract with strike closest to spot.
type SelectATM struct{}

// Method implements Selection.
func (SelectATM) Method() string { return "atm" }

// SelectOffset picks the strike closest to reference+Points, where the
// reference is the paired short leg's strike when one exists, else spot.
// Points may be negative.
type SelectOffset struct {
	Points float64
}

// Method implements Selection.
func (SelectOffset) Method() string { return "offset" }

// SelectPercentage picks the strike closest to spot scaled away by Percent:
// spot*(1-Percent/100) for puts, spot*(1+Percent/100) for calls. Unlike
// SelectOffset this scales with spot rather than adding a fixed amount.
type SelectPercentage struct {
	Percent float64
}

// Method implements Selection.
func (SelectPercentage) Method() string { return "percentage" }

// SelectPremium picks the contract whose mid price meets the strategy's
// minimum premium and is closest to it.
type SelectPremium struct{}

// Method implements Selection.
func (SelectPremium) Method() string { return "premium" }

// SelectATMStraddle picks the strike closest to spot offset by Percent of
// the ATM straddle price (call mid + put mid at the strike nearest spot),
// below spot for puts and above for calls. All straddle-based legs of a
// strategy share one locked expiration.
type SelectATMStraddle struct {
	Percent float64
}

// Method implements Selection.
func (SelectATMStraddle) Method() string { return "atm_straddle" }

// ParseSelection converts a (method, value) pair from configuration into the
// corresponding Selection. The premium method rejects a value since it
// always uses the strategy-level minimum.
func ParseSelection(method string, value float64) (Selection, error) {
	switch method {
	case "atm":
		return SelectATM{}, nil
	case "offset":
		return SelectOffset{Points: value}, nil
	case "percentage":
		return SelectPercentage{Percent: value}, nil
	case "premium":
		if value != 0 {
			return nil, fmt.Errorf("selection method %q takes no value (uses strategy minimum premium), got %v", method, value)
		}
		return SelectPremium{}, nil
	case "atm_straddle":
		return SelectATMStraddle{Percent: value}, nil
	default:
		return nil, fmt.Errorf("unknown selection method %q", method)
	}
}
