package chain

import "github.com/mhalpert/spreadscout/internal/models"

// Quote is a minimal two-sided quote used to enrich contracts that came off
// the chain endpoint without market data.
type Quote struct {
	Bid    float64
	Ask    float64
	Volume int64
}

// EnrichWithQuotes fills bid/ask/mid/volume on contracts from a symbol-keyed
// quote lookup. Contracts without a matching quote pass through unchanged.
// Returns a new slice; the input snapshot is not mutated.
func EnrichWithQuotes(contracts []models.OptionContract, quotes map[string]Quote) []models.OptionContract {
	out := make([]models.OptionContract, len(contracts))
	for i, c := range contracts {
		if q, ok := quotes[c.Symbol]; ok {
			c.EnrichQuote(q.Bid, q.Ask, q.Volume)
		}
		out[i] = c
	}
	return out
}
