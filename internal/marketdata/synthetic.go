package marketdata

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/mhalpert/spreadscout/internal/chain"
	"github.com/mhalpert/spreadscout/internal/models"
	"github.com/mhalpert/spreadscout/internal/pricing"
)

// SyntheticProvider generates a realistic options chain around a randomized
// spot, pricing every contract with the Black-Scholes engine so downstream
// probability math sees self-consistent quotes.
type SyntheticProvider struct {
	currentPrice float64
	midIV        float64 // actual IV level for pricing, as a percentage
	riskFreeRate float64
}

// secureFloat64 generates a cryptographically secure random float64 between 0 and 1.
func secureFloat64() float64 {
	n, err := rand.Int(rand.Reader, big.NewInt(1<<53))
	if err != nil {
		// Fallback to a reasonable default if crypto/rand fails
		return 0.5
	}
	return float64(n.Int64()) / (1 << 53)
}

// secureInt63n generates a cryptographically secure random int64 between 0 and n-1.
func secureInt63n(n int64) int64 {
	max := big.NewInt(n)
	r, err := rand.Int(rand.Reader, max)
	if err != nil {
		// Fallback to a reasonable default if crypto/rand fails
		return n / 2
	}
	return r.Int64()
}

// NewSyntheticProvider seeds a provider with SPY-like levels.
func NewSyntheticProvider(riskFreeRate float64) *SyntheticProvider {
	return &SyntheticProvider{
		currentPrice: 450.0 + secureFloat64()*10, // around 450-460
		midIV:        12.0 + secureFloat64()*18,  // 12-30% actual volatility
		riskFreeRate: riskFreeRate,
	}
}

// GetSpotPrice returns the simulated underlying price with small random walk.
func (m *SyntheticProvider) GetSpotPrice(string) (float64, error) {
	m.currentPrice += (secureFloat64() - 0.5) * 2
	return m.currentPrice, nil
}

// GetOptionsChain builds contracts across every weekly Friday and monthly
// third Friday from 10 to 70 days out, with strikes bracketing the current
// price, all priced theoretically.
func (m *SyntheticProvider) GetOptionsChain(symbol string) ([]models.OptionContract, error) {
	now := time.Now().UTC().Truncate(24 * time.Hour)

	var expirations []time.Time
	for d := now.AddDate(0, 0, 1); d.Before(now.AddDate(0, 0, 71)); d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Friday {
			continue
		}
		if dte := int(d.Sub(now).Hours() / 24); dte >= 10 {
			expirations = append(expirations, d)
		}
	}
	if len(expirations) == 0 {
		return nil, fmt.Errorf("no synthetic expirations generated for %s", symbol)
	}

	strikeInterval := 5.0
	startStrike := math.Floor(m.currentPrice/strikeInterval)*strikeInterval - 100
	endStrike := startStrike + 200

	var contracts []models.OptionContract
	for _, exp := range expirations {
		for strike := startStrike; strike <= endStrike; strike += strikeInterval {
			for _, optType := range []models.OptionType{models.OptionTypePut, models.OptionTypeCall} {
				contracts = append(contracts, m.buildContract(symbol, strike, exp, optType, now))
			}
		}
	}
	return chain.ClassifyContracts(contracts), nil
}

// EnrichWithQuotes is a no-op for the synthetic provider; generated contracts
// already carry two-sided quotes.
func (m *SyntheticProvider) EnrichWithQuotes(contracts []models.OptionContract) ([]models.OptionContract, error) {
	return contracts, nil
}

func (m *SyntheticProvider) buildContract(symbol string, strike float64, exp time.Time,
	optType models.OptionType, now time.Time) models.OptionContract {
	dte := int(exp.Sub(now).Hours() / 24)
	t := float64(dte) / 365.0
	vol := m.midIV / 100.0

	theo := pricing.Price(pricing.OptionInputs{
		Spot:         m.currentPrice,
		Strike:       strike,
		TimeToExpiry: t,
		RiskFreeRate: m.riskFreeRate,
		Volatility:   vol,
		OptionType:   optType,
	})
	// Spread widens with price level; floor keeps far OTM quotes two-sided.
	halfSpread := math.Max(0.025, theo*0.02)
	bid := math.Max(0.01, theo-halfSpread)
	ask := theo + halfSpread

	typeCode := "P"
	if optType == models.OptionTypeCall {
		typeCode = "C"
	}
	occ := fmt.Sprintf("%s%s%s%08d", symbol, exp.Format("060102"), typeCode, int(strike*1000))

	c := models.NewOptionContract(occ, symbol, strike, exp, optType, now)
	c.EnrichQuote(bid, ask, secureInt63n(10000))
	c.OpenInterest = secureInt63n(50000)
	c.IV = vol
	return c
}

// NormalizedProvider serves a frozen reference chain, rescaled to a fixed
// validation spot. It backs validation mode where determinism matters more
// than freshness.
type NormalizedProvider struct {
	chain *chain.NormalizedChain
	spot  float64
}

// NewNormalizedProvider loads a saved reference chain and pins the spot it
// will rescale to.
func NewNormalizedProvider(path string, spot float64) (*NormalizedProvider, error) {
	nc, err := chain.LoadNormalizedChain(path)
	if err != nil {
		return nil, fmt.Errorf("loading reference chain: %w", err)
	}
	if spot <= 0 {
		return nil, fmt.Errorf("validation spot must be positive, got %v", spot)
	}
	return &NormalizedProvider{chain: nc, spot: spot}, nil
}

// GetOptionsChain rescales the reference chain to the pinned spot.
func (p *NormalizedProvider) GetOptionsChain(symbol string) ([]models.OptionContract, error) {
	if symbol != p.chain.Symbol {
		return nil, fmt.Errorf("reference chain covers %s, not %s", p.chain.Symbol, symbol)
	}
	return p.chain.Rescale(p.spot, time.Now())
}

// EnrichWithQuotes is a no-op; rescaled contracts carry their stored quotes.
func (p *NormalizedProvider) EnrichWithQuotes(contracts []models.OptionContract) ([]models.OptionContract, error) {
	return contracts, nil
}

// GetSpotPrice returns the pinned validation spot.
func (p *NormalizedProvider) GetSpotPrice(string) (float64, error) {
	return p.spot, nil
}

var (
	_ Provider = (*SyntheticProvider)(nil)
	_ Provider = (*NormalizedProvider)(nil)
)
