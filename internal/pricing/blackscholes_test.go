package pricing

import (
	"math"
	"testing"

	"github.com/mhalpert/spreadscout/internal/models"
)

func baseInputs(optType models.OptionType) OptionInputs {
	return OptionInputs{
		Spot:         100,
		Strike:       100,
		TimeToExpiry: 30.0 / 365.0,
		RiskFreeRate: 0.05,
		Volatility:   0.20,
		OptionType:   optType,
	}
}

func TestPutCallParity(t *testing.T) {
	tests := []struct {
		name          string
		spot, strike  float64
		dividendYield float64
	}{
		{name: "at the money", spot: 100, strike: 100},
		{name: "in the money call", spot: 110, strike: 100},
		{name: "out of the money call", spot: 90, strike: 100},
		{name: "with dividend yield", spot: 100, strike: 100, dividendYield: 0.02},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call := baseInputs(models.OptionTypeCall)
			call.Spot, call.Strike, call.DividendYield = tt.spot, tt.strike, tt.dividendYield
			put := call
			put.OptionType = models.OptionTypePut

			c := Price(call)
			p := Price(put)

			s, k, tm := tt.spot, tt.strike, call.TimeToExpiry
			want := s*math.Exp(-tt.dividendYield*tm) - k*math.Exp(-call.RiskFreeRate*tm)
			if got := c - p; math.Abs(got-want) > 1e-9 {
				t.Errorf("parity violated: C-P = %v, want %v", got, want)
			}
		})
	}
}

func TestPriceDegenerateInputs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*OptionInputs)
	}{
		{name: "zero time", mutate: func(in *OptionInputs) { in.TimeToExpiry = 0 }},
		{name: "negative time", mutate: func(in *OptionInputs) { in.TimeToExpiry = -0.1 }},
		{name: "zero volatility", mutate: func(in *OptionInputs) { in.Volatility = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInputs(models.OptionTypeCall)
			tt.mutate(&in)
			if got := Price(in); got != 0 {
				t.Errorf("Price = %v, want 0", got)
			}
			if d1, d2 := D1D2(in.Spot, in.Strike, in.TimeToExpiry, in.RiskFreeRate, in.Volatility, in.DividendYield); d1 != 0 || d2 != 0 {
				t.Errorf("D1D2 = (%v,%v), want (0,0)", d1, d2)
			}
			if g := Greeks(in); g != (models.Greeks{}) {
				t.Errorf("Greeks = %+v, want zero vector", g)
			}
		})
	}
}

func TestPriceNeverNegative(t *testing.T) {
	in := baseInputs(models.OptionTypePut)
	in.Spot = 1000
	in.Strike = 10
	if got := Price(in); got < 0 {
		t.Errorf("deep OTM put priced negative: %v", got)
	}
}

func TestGreeksSanity(t *testing.T) {
	call := Greeks(baseInputs(models.OptionTypeCall))
	put := Greeks(baseInputs(models.OptionTypePut))

	if call.Delta < 0 || call.Delta > 1 {
		t.Errorf("call delta out of [0,1]: %v", call.Delta)
	}
	if put.Delta < -1 || put.Delta > 0 {
		t.Errorf("put delta out of [-1,0]: %v", put.Delta)
	}
	// Same strike and expiry share gamma and vega.
	if math.Abs(call.Gamma-put.Gamma) > 1e-12 {
		t.Errorf("gamma differs: call %v put %v", call.Gamma, put.Gamma)
	}
	if math.Abs(call.Vega-put.Vega) > 1e-12 {
		t.Errorf("vega differs: call %v put %v", call.Vega, put.Vega)
	}
	if call.Gamma <= 0 || call.Vega <= 0 {
		t.Errorf("gamma/vega should be positive ATM: %v %v", call.Gamma, call.Vega)
	}
	if call.Theta >= 0 {
		t.Errorf("ATM call theta should be negative: %v", call.Theta)
	}
	if call.Rho <= 0 || put.Rho >= 0 {
		t.Errorf("rho signs wrong: call %v put %v", call.Rho, put.Rho)
	}
}

func TestValidateInputs(t *testing.T) {
	tests := []struct {
		name                          string
		spot, strike, tte, volatility float64
		wantErr                       bool
	}{
		{name: "valid", spot: 100, strike: 100, tte: 0.1, volatility: 0.2},
		{name: "zero spot", spot: 0, strike: 100, tte: 0.1, volatility: 0.2, wantErr: true},
		{name: "negative strike", spot: 100, strike: -5, tte: 0.1, volatility: 0.2, wantErr: true},
		{name: "zero time", spot: 100, strike: 100, tte: 0, volatility: 0.2, wantErr: true},
		{name: "zero vol", spot: 100, strike: 100, tte: 0.1, volatility: 0, wantErr: true},
		{name: "excessive vol", spot: 100, strike: 100, tte: 0.1, volatility: 5.1, wantErr: true},
		{name: "max vol accepted", spot: 100, strike: 100, tte: 0.1, volatility: 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInputs(tt.spot, tt.strike, tt.tte, tt.volatility)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInputs error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
