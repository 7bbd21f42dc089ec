package models

import (
	"math"
	"testing"
	"time"
)

func TestClassifyStrategyType(t *testing.T) {
	sellPut := StrategyLeg{Action: ActionSell, OptionType: OptionTypePut, Selection: SelectPremium{}, Quantity: 1}
	buyPut := StrategyLeg{Action: ActionBuy, OptionType: OptionTypePut, Selection: SelectOffset{Points: -5}, Quantity: 1}
	sellCall := StrategyLeg{Action: ActionSell, OptionType: OptionTypeCall, Selection: SelectPercentage{Percent: 5}, Quantity: 1}
	buyCall := StrategyLeg{Action: ActionBuy, OptionType: OptionTypeCall, Selection: SelectOffset{Points: 5}, Quantity: 1}

	tests := []struct {
		name string
		legs []StrategyLeg
		want string
	}{
		{name: "empty", legs: nil, want: "unknown"},
		{name: "cash secured put", legs: []StrategyLeg{sellPut}, want: "cash_secured_put"},
		{name: "naked call", legs: []StrategyLeg{sellCall}, want: "naked_call"},
		{name: "long call", legs: []StrategyLeg{buyCall}, want: "long_call"},
		{name: "long put", legs: []StrategyLeg{buyPut}, want: "long_put"},
		{name: "put credit spread", legs: []StrategyLeg{sellPut, buyPut}, want: "put_credit_spread"},
		{name: "put credit spread order independent", legs: []StrategyLeg{buyPut, sellPut}, want: "put_credit_spread"},
		{name: "call credit spread", legs: []StrategyLeg{sellCall, buyCall}, want: "call_credit_spread"},
		{name: "put debit spread", legs: []StrategyLeg{buyPut, buyPut}, want: "put_debit_spread"},
		{
			name: "straddle",
			legs: []StrategyLeg{
				{Action: ActionSell, OptionType: OptionTypePut, Selection: SelectATM{}, Quantity: 1},
				{Action: ActionSell, OptionType: OptionTypeCall, Selection: SelectATM{}, Quantity: 1},
			},
			want: "straddle",
		},
		{name: "strangle", legs: []StrategyLeg{sellPut, sellCall}, want: "strangle"},
		{name: "iron condor", legs: []StrategyLeg{sellPut, buyPut, sellCall, buyCall}, want: "iron_condor"},
		{name: "unbalanced four legs", legs: []StrategyLeg{sellPut, sellPut, sellCall, buyCall}, want: "custom_strategy"},
		{name: "three legs", legs: []StrategyLeg{sellPut, buyPut, sellCall}, want: "custom_strategy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyStrategyType(tt.legs); got != tt.want {
				t.Errorf("ClassifyStrategyType = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		value   float64
		want    string
		wantErr bool
	}{
		{name: "atm", method: "atm", want: "atm"},
		{name: "offset negative", method: "offset", value: -5, want: "offset"},
		{name: "percentage", method: "percentage", value: 5, want: "percentage"},
		{name: "premium", method: "premium", want: "premium"},
		{name: "premium rejects value", method: "premium", value: 1.0, wantErr: true},
		{name: "atm straddle", method: "atm_straddle", value: 50, want: "atm_straddle"},
		{name: "unknown method", method: "delta", value: 30, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := ParseSelection(tt.method, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSelection error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && sel.Method() != tt.want {
				t.Errorf("Method() = %q, want %q", sel.Method(), tt.want)
			}
		})
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, time.June, 1, 15, 30, 0, 0, time.UTC)

	if got := DaysUntil(now.AddDate(0, 0, 45), now); got != 45 {
		t.Errorf("DaysUntil 45 days out = %d", got)
	}
	if got := DaysUntil(now.AddDate(0, 0, -3), now); got != 0 {
		t.Errorf("past date should clamp to 0, got %d", got)
	}
	// Intraday times do not change the whole-day count.
	sameDay := time.Date(2026, time.June, 1, 2, 0, 0, 0, time.UTC)
	if got := DaysUntil(sameDay, now); got != 0 {
		t.Errorf("same day = %d, want 0", got)
	}
}

func TestEnrichQuote(t *testing.T) {
	c := NewOptionContract("X", "SPY", 100, time.Now().AddDate(0, 0, 30), OptionTypeCall, time.Now())
	if c.HasQuote() {
		t.Error("fresh contract should have no quote")
	}

	c.EnrichQuote(1.00, 1.20, 350)
	if !c.HasQuote() {
		t.Error("enriched contract should report a quote")
	}
	if math.Abs(c.Mid-1.10) > 1e-9 {
		t.Errorf("mid = %v, want 1.10", c.Mid)
	}
}

func TestStrikeMatches(t *testing.T) {
	c := OptionContract{Strike: 100}
	if !c.StrikeMatches(100.00005) {
		t.Error("strike within epsilon should match")
	}
	if c.StrikeMatches(100.001) {
		t.Error("strike beyond epsilon should not match")
	}
}

func TestSpreadStrategyWidth(t *testing.T) {
	short := OptionContract{Strike: 95}
	long := OptionContract{Strike: 90}
	s := SpreadStrategy{ShortLeg: &short, LongLeg: &long}
	if got := s.Width(); got != 5 {
		t.Errorf("Width = %v, want 5", got)
	}
	if got := (&SpreadStrategy{}).Width(); got != 0 {
		t.Errorf("Width without legs = %v, want 0", got)
	}
}

func TestStrategyTemplateDTE(t *testing.T) {
	tmpl := StrategyTemplate{DTERangeMin: 38, DTERangeMax: 52}
	if got := tmpl.TargetDTE(); got != 45 {
		t.Errorf("TargetDTE = %d, want 45", got)
	}
	if got := tmpl.DTETolerance(); got != 7 {
		t.Errorf("DTETolerance = %d, want 7", got)
	}

	exact := StrategyTemplate{DTERangeMin: 45, DTERangeMax: 45}
	if got := exact.DTETolerance(); got != 1 {
		t.Errorf("exact-range tolerance = %d, want floor of 1", got)
	}
}
