package spread

import (
	"log"
	"math"

	"github.com/google/uuid"

	"github.com/mhalpert/spreadscout/internal/models"
	"github.com/mhalpert/spreadscout/internal/pricing"
	"github.com/mhalpert/spreadscout/internal/util"
)

// Strike-band bounds for the credit-spread short-strike search, as fractions
// of spot.
const (
	putBandLow   = 0.75
	putBandHigh  = 1.05
	callBandLow  = 0.95
	callBandHigh = 1.25
	// widthTolerance is the allowed slack when matching the long strike at
	// shortStrike minus/plus the configured width.
	widthTolerance = 0.5
)

// Builder resolves strategy definitions against a filtered chain. Validation
// mode relaxes the liquidity gate so frozen reference chains with sparse
// quotes still produce candidates.
type Builder struct {
	logger         *log.Logger
	riskFreeRate   float64
	dividendYield  float64
	defaultIV      float64
	validationMode bool
}

// NewBuilder constructs a Builder. defaultIV is used when a contract carries
// no implied volatility of its own.
func NewBuilder(logger *log.Logger, riskFreeRate, dividendYield, defaultIV float64, validationMode bool) *Builder {
	return &Builder{
		logger:         logger,
		riskFreeRate:   riskFreeRate,
		dividendYield:  dividendYield,
		defaultIV:      defaultIV,
		validationMode: validationMode,
	}
}

// BuildStrategy resolves every leg of a strategy definition and returns the
// resolved legs with the net premium (positive credit, negative debit). Any
// unresolved leg aborts the whole build with empty legs and zero premium.
//
// Two-leg one-buy-one-sell definitions where a leg uses the premium method
// are routed to the specialized credit-spread search.
func (b *Builder) BuildStrategy(legs []models.StrategyLeg, contracts []models.OptionContract,
	spot float64, targetDTE int, minPremium float64) ([]models.ResolvedLeg, float64) {
	if len(legs) == 0 {
		return nil, 0
	}

	if isPremiumSpread(legs) {
		return b.buildPremiumSpread(legs, contracts, spot, minPremium)
	}

	var straddle *StraddleQuote
	if usesStraddle(legs) {
		sq, ok := ComputeATMStraddle(contracts, spot, targetDTE)
		if !ok {
			if b.logger != nil {
				b.logger.Printf("no ATM straddle available near %d DTE, abandoning strategy", targetDTE)
			}
			return nil, 0
		}
		straddle = &sq
	}

	// Short legs resolve first so buy legs using offsets can anchor to the
	// short strike rather than spot.
	refStrikes := make(map[models.OptionType]float64)
	resolved := make([]models.ResolvedLeg, len(legs))
	order := make([]int, 0, len(legs))
	for i, leg := range legs {
		if leg.Action == models.ActionSell {
			order = append(order, i)
		}
	}
	for i, leg := range legs {
		if leg.Action != models.ActionSell {
			order = append(order, i)
		}
	}

	netPremium := 0.0
	for _, i := range order {
		leg := legs[i]
		req := ResolveRequest{
			Candidates:      contracts,
			Leg:             leg,
			Spot:            spot,
			ReferenceStrike: refStrikes[leg.OptionType],
			MinPremium:      minPremium,
			Straddle:        straddle,
		}
		contract, ok := ResolveLeg(req)
		if !ok {
			if b.logger != nil {
				b.logger.Printf("leg unresolved (%s %s via %s), abandoning strategy",
					leg.Action, leg.OptionType, leg.Selection.Method())
			}
			return nil, 0
		}
		if leg.Action == models.ActionSell {
			refStrikes[leg.OptionType] = contract.Strike
			netPremium += contract.Mid * float64(leg.Quantity)
		} else {
			netPremium -= contract.Mid * float64(leg.Quantity)
		}
		resolved[i] = models.ResolvedLeg{Action: leg.Action, Contract: contract, Quantity: leg.Quantity}
	}

	return resolved, netPremium
}

// FindCreditSpreads enumerates short/long strike pairs per expiration for the
// given option type and width, prices each pair by the natural/opposite mid,
// and returns every candidate whose displayed premium meets the minimum. The
// caller scores and ranks the result.
func (b *Builder) FindCreditSpreads(contracts []models.OptionContract, underlying string,
	spot float64, optionType models.OptionType, width, minPremium float64) []models.SpreadStrategy {
	bandLow, bandHigh := putBandLow, putBandHigh
	if optionType == models.OptionTypeCall {
		bandLow, bandHigh = callBandLow, callBandHigh
	}

	_, groups := GroupByExpiration(filterByType(contracts, optionType))

	var out []models.SpreadStrategy
	for _, group := range groups {
		for _, short := range group {
			if short.Strike < bandLow*spot || short.Strike > bandHigh*spot {
				continue
			}
			long, ok := findLongAtWidth(group, short, optionType, width)
			if !ok {
				continue
			}
			if !b.validationMode && (short.Bid <= 0 || long.Ask <= 0) {
				continue
			}
			mid := SpreadMid(short, long)
			premium := util.DisplayPremium(mid)
			if premium < minPremium {
				continue
			}
			out = append(out, b.assembleCreditSpread(underlying, spot, short, long, mid))
		}
	}
	return out
}

// buildPremiumSpread is the specialized two-leg path: it runs the full
// credit-spread search and keeps the single candidate whose premium is
// closest to the minimum from above.
func (b *Builder) buildPremiumSpread(legs []models.StrategyLeg, contracts []models.OptionContract,
	spot float64, minPremium float64) ([]models.ResolvedLeg, float64) {
	short, width, ok := premiumSpreadShape(legs)
	if !ok {
		return nil, 0
	}

	candidates := b.FindCreditSpreads(contracts, "", spot, short.OptionType, width, minPremium)
	if len(candidates) == 0 {
		return nil, 0
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.NetPremium < best.NetPremium {
			best = c
		}
	}

	resolved := make([]models.ResolvedLeg, len(legs))
	for i, leg := range legs {
		contract := *best.ShortLeg
		if leg.Action == models.ActionBuy {
			contract = *best.LongLeg
		}
		resolved[i] = models.ResolvedLeg{Action: leg.Action, Contract: contract, Quantity: leg.Quantity}
	}
	return resolved, best.NetPremium
}

func (b *Builder) assembleCreditSpread(underlying string, spot float64,
	short, long models.OptionContract, rawMid float64) models.SpreadStrategy {
	premium := util.DisplayPremium(rawMid)
	width := math.Abs(short.Strike - long.Strike)

	kind := pricing.PutCreditSpread
	breakEven := short.Strike - premium
	strategyType := "put_credit_spread"
	if short.OptionType == models.OptionTypeCall {
		kind = pricing.CallCreditSpread
		breakEven = short.Strike + premium
		strategyType = "call_credit_spread"
	}

	vol := short.IV
	if vol <= 0 {
		vol = b.defaultIV
	}
	metrics := pricing.SpreadProbabilities(pricing.SpreadInputs{
		Spot:           spot,
		ShortStrike:    short.Strike,
		LongStrike:     long.Strike,
		TimeToExpiry:   short.TimeToExpiryYears(),
		RiskFreeRate:   b.riskFreeRate,
		Volatility:     vol,
		DividendYield:  b.dividendYield,
		Kind:           kind,
		CreditReceived: premium,
	})

	shortCopy, longCopy := short, long
	return models.SpreadStrategy{
		ID:              uuid.NewString(),
		StrategyType:    strategyType,
		Underlying:      underlying,
		UnderlyingPrice: spot,
		Legs: []models.ResolvedLeg{
			{Action: models.ActionSell, Contract: short, Quantity: 1},
			{Action: models.ActionBuy, Contract: long, Quantity: 1},
		},
		ShortLeg:            &shortCopy,
		LongLeg:             &longCopy,
		NetPremium:          premium,
		TradingPremium:      util.TradingPremium(rawMid),
		MaxProfit:           premium,
		MaxLoss:             width - premium,
		BreakEven:           breakEven,
		ProbabilityOfProfit: metrics.POP,
		DTE:                 short.DTE,
	}
}

// AssembleStrategy wraps resolved legs into a priced candidate. Two-leg
// spreads and iron condors get full probability metrics; other shapes carry
// the premium and DTE only.
func (b *Builder) AssembleStrategy(underlying string, spot float64,
	definition []models.StrategyLeg, resolved []models.ResolvedLeg, netPremium float64) models.SpreadStrategy {
	s := models.SpreadStrategy{
		ID:              uuid.NewString(),
		StrategyType:    models.ClassifyStrategyType(definition),
		Underlying:      underlying,
		UnderlyingPrice: spot,
		Legs:            resolved,
		NetPremium:      util.DisplayPremium(netPremium),
		TradingPremium:  util.TradingPremium(netPremium),
	}
	for i := range resolved {
		if resolved[i].Contract.DTE > s.DTE {
			s.DTE = resolved[i].Contract.DTE
		}
	}

	switch s.StrategyType {
	case "put_credit_spread", "call_credit_spread":
		var short, long *models.OptionContract
		for i := range resolved {
			if resolved[i].Action == models.ActionSell {
				short = &resolved[i].Contract
			} else {
				long = &resolved[i].Contract
			}
		}
		if short != nil && long != nil {
			assembled := b.assembleCreditSpread(underlying, spot, *short, *long, netPremium)
			assembled.ID = s.ID
			return assembled
		}
	case "iron_condor":
		b.attachCondorMetrics(&s, spot)
	}
	return s
}

// attachCondorMetrics fills max profit/loss and POP for a resolved iron
// condor. Max loss uses the wider wing.
func (b *Builder) attachCondorMetrics(s *models.SpreadStrategy, spot float64) {
	var putShort, putLong, callShort, callLong *models.OptionContract
	for i := range s.Legs {
		leg := &s.Legs[i]
		switch {
		case leg.Contract.OptionType == models.OptionTypePut && leg.Action == models.ActionSell:
			putShort = &leg.Contract
		case leg.Contract.OptionType == models.OptionTypePut && leg.Action == models.ActionBuy:
			putLong = &leg.Contract
		case leg.Contract.OptionType == models.OptionTypeCall && leg.Action == models.ActionSell:
			callShort = &leg.Contract
		default:
			callLong = &leg.Contract
		}
	}
	if putShort == nil || putLong == nil || callShort == nil || callLong == nil {
		return
	}

	putWidth := math.Abs(putShort.Strike - putLong.Strike)
	callWidth := math.Abs(callLong.Strike - callShort.Strike)
	s.MaxProfit = s.NetPremium
	s.MaxLoss = math.Max(putWidth, callWidth) - s.NetPremium
	s.BreakEven = putShort.Strike - s.NetPremium

	vol := putShort.IV
	if vol <= 0 {
		vol = b.defaultIV
	}
	metrics := pricing.IronCondorProbabilities(spot,
		putShort.Strike, putLong.Strike, callShort.Strike, callLong.Strike,
		putShort.TimeToExpiryYears(), vol, b.riskFreeRate)
	s.ProbabilityOfProfit = metrics.POP
}

// findLongAtWidth locates the long leg at shortStrike minus width for puts or
// plus width for calls, within the strike tolerance, on the same expiration.
func findLongAtWidth(group []models.OptionContract, short models.OptionContract,
	optionType models.OptionType, width float64) (models.OptionContract, bool) {
	target := short.Strike - width
	if optionType == models.OptionTypeCall {
		target = short.Strike + width
	}

	var best models.OptionContract
	bestDiff := math.Inf(1)
	found := false
	for _, c := range group {
		if c.Symbol == short.Symbol {
			continue
		}
		diff := math.Abs(c.Strike - target)
		if diff <= widthTolerance && diff < bestDiff {
			best, bestDiff = c, diff
			found = true
		}
	}
	return best, found
}

// PremiumSearchParams reports whether a leg definition qualifies for the
// specialized credit-spread search (exactly two legs, one buy one sell of the
// same option type, at least one premium selection) and, when it does,
// returns the short leg and the strike width derived from the buy leg's
// offset. Definitions using any other selection mix must go through
// BuildStrategy so every leg's method is honored.
func PremiumSearchParams(legs []models.StrategyLeg) (models.StrategyLeg, float64, bool) {
	if !isPremiumSpread(legs) {
		return models.StrategyLeg{}, 0, false
	}
	return premiumSpreadShape(legs)
}

// isPremiumSpread reports whether a definition is exactly two legs, one buy
// and one sell of the same option type, with at least one premium selection.
func isPremiumSpread(legs []models.StrategyLeg) bool {
	if len(legs) != 2 {
		return false
	}
	if legs[0].OptionType != legs[1].OptionType {
		return false
	}
	buys, sells, premiums := 0, 0, 0
	for _, leg := range legs {
		switch leg.Action {
		case models.ActionBuy:
			buys++
		case models.ActionSell:
			sells++
		}
		if _, ok := leg.Selection.(models.SelectPremium); ok {
			premiums++
		}
	}
	return buys == 1 && sells == 1 && premiums >= 1
}

func usesStraddle(legs []models.StrategyLeg) bool {
	for _, leg := range legs {
		if _, ok := leg.Selection.(models.SelectATMStraddle); ok {
			return true
		}
	}
	return false
}

// premiumSpreadShape extracts the sell leg of a premium spread and derives
// the strike width from the buy leg's offset when present.
func premiumSpreadShape(legs []models.StrategyLeg) (short models.StrategyLeg, width float64, ok bool) {
	width = 5 // conventional default when the buy leg carries no offset
	hasBuy := false
	for _, leg := range legs {
		switch leg.Action {
		case models.ActionSell:
			short = leg
			ok = true
		case models.ActionBuy:
			hasBuy = true
			if off, isOff := leg.Selection.(models.SelectOffset); isOff {
				width = math.Abs(off.Points)
			}
		}
	}
	return short, width, ok && hasBuy
}

// GroupByExpiration splits contracts into per-expiration slices keyed by the
// truncated UTC date. Order of keys is unspecified; iterate the map.
func GroupByExpiration(contracts []models.OptionContract) ([]string, map[string][]models.OptionContract) {
	groups := make(map[string][]models.OptionContract)
	keys := make([]string, 0)
	for _, c := range contracts {
		key := c.Expiration.UTC().Format("2006-01-02")
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], c)
	}
	return keys, groups
}
