package chain

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mhalpert/spreadscout/internal/models"
)

// normalizedBase is the spot level every reference chain is scaled to.
const normalizedBase = 100.0

// NormalizedContract is one reference contract with every strike and price
// divided by the capture spot and rebased to 100. DTE is stored instead of
// an absolute expiration so a frozen chain stays usable after its real
// expirations pass.
type NormalizedContract struct {
	Symbol       string            `json:"symbol"`
	OptionType   models.OptionType `json:"option_type"`
	Strike       float64           `json:"strike"`
	DTE          int               `json:"dte"`
	Bid          float64           `json:"bid"`
	Ask          float64           `json:"ask"`
	Mid          float64           `json:"mid"`
	Volume       int64             `json:"volume"`
	OpenInterest int64             `json:"open_interest"`
	IV           float64           `json:"iv"`
}

// NormalizedChain is a price-normalized reference chain captured once and
// rescaled linearly to the current spot at analysis time, so the whole
// engine can run deterministically without live quotes.
type NormalizedChain struct {
	Symbol      string               `json:"symbol"`
	CaptureSpot float64              `json:"capture_spot"`
	CapturedAt  time.Time            `json:"captured_at"`
	Contracts   []NormalizedContract `json:"contracts"`
}

// Normalize captures a chain snapshot against the given spot price. Strikes
// and prices are divided by the spot and rebased to 100; volumes, open
// interest and implied vols carry through unscaled.
func Normalize(symbol string, contracts []models.OptionContract, captureSpot float64) (*NormalizedChain, error) {
	if captureSpot <= 0 {
		return nil, fmt.Errorf("capture spot must be positive, got %v", captureSpot)
	}

	n := &NormalizedChain{
		Symbol:      symbol,
		CaptureSpot: captureSpot,
		CapturedAt:  time.Now().UTC(),
		Contracts:   make([]NormalizedContract, 0, len(contracts)),
	}
	scale := normalizedBase / captureSpot
	for _, c := range contracts {
		n.Contracts = append(n.Contracts, NormalizedContract{
			Symbol:       c.Symbol,
			OptionType:   c.OptionType,
			Strike:       c.Strike * scale,
			DTE:          c.DTE,
			Bid:          c.Bid * scale,
			Ask:          c.Ask * scale,
			Mid:          c.Mid * scale,
			Volume:       c.Volume,
			OpenInterest: c.OpenInterest,
			IV:           c.IV,
		})
	}
	return n, nil
}

// Rescale produces a live-shaped chain for the current spot. Every
// normalized value is multiplied by currentSpot/100; expirations are
// synthesized from the stored DTEs relative to now, then reclassified.
func (n *NormalizedChain) Rescale(currentSpot float64, now time.Time) ([]models.OptionContract, error) {
	if currentSpot <= 0 {
		return nil, fmt.Errorf("current spot must be positive, got %v", currentSpot)
	}

	scale := currentSpot / normalizedBase
	out := make([]models.OptionContract, 0, len(n.Contracts))
	for _, c := range n.Contracts {
		exp := now.UTC().Truncate(24*time.Hour).AddDate(0, 0, c.DTE)
		out = append(out, models.OptionContract{
			Symbol:       c.Symbol,
			Underlying:   n.Symbol,
			Strike:       c.Strike * scale,
			Expiration:   exp,
			OptionType:   c.OptionType,
			DTE:          c.DTE,
			Bid:          c.Bid * scale,
			Ask:          c.Ask * scale,
			Mid:          c.Mid * scale,
			Volume:       c.Volume,
			OpenInterest: c.OpenInterest,
			IV:           c.IV,
		})
	}
	return ClassifyContracts(out), nil
}

// Save writes the normalized chain as JSON, using a temp file and atomic
// rename so a crash never leaves a torn reference chain.
func (n *NormalizedChain) Save(path string) error {
	data, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding normalized chain: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing normalized chain: %w", err)
	}
	return os.Rename(tmp, path)
}

// LoadNormalizedChain reads a reference chain saved by Save.
func LoadNormalizedChain(path string) (*NormalizedChain, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("reading normalized chain: %w", err)
	}
	var n NormalizedChain
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("parsing normalized chain: %w", err)
	}
	if n.CaptureSpot <= 0 {
		return nil, fmt.Errorf("normalized chain %s has invalid capture spot %v", path, n.CaptureSpot)
	}
	return &n, nil
}
