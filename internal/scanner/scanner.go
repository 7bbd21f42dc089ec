// Package scanner orchestrates one analysis pass: fetch the chain, classify
// expirations, filter by DTE, instantiate strategy templates, and rank the
// resulting candidates.
package scanner

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mhalpert/spreadscout/internal/chain"
	"github.com/mhalpert/spreadscout/internal/config"
	"github.com/mhalpert/spreadscout/internal/marketdata"
	"github.com/mhalpert/spreadscout/internal/models"
	"github.com/mhalpert/spreadscout/internal/spread"
)

// Report is the output of one scan: the ranked candidates for one template
// plus enough context to reproduce the run.
type Report struct {
	ID                string                  `json:"id"`
	Symbol            string                  `json:"symbol"`
	UnderlyingPrice   float64                 `json:"underlying_price"`
	Template          string                  `json:"template"`
	StrategyType      string                  `json:"strategy_type"`
	Strategies        []models.SpreadStrategy `json:"strategies"`
	Best              *models.SpreadStrategy  `json:"best,omitempty"`
	Summary           spread.ScoreSummary     `json:"score_summary"`
	GeneratedAt       time.Time               `json:"generated_at"`
	ToleranceExpanded bool                    `json:"tolerance_expanded"`
	DegradedToWeekly  bool                    `json:"degraded_to_weekly"`
}

// Scanner runs strategy templates against a market-data provider.
type Scanner struct {
	provider marketdata.Provider
	cfg      *config.Config
	builder  *spread.Builder
	logger   *log.Logger
}

// New constructs a Scanner. The builder inherits the config's pricing inputs
// and validation mode.
func New(provider marketdata.Provider, cfg *config.Config, logger *log.Logger) *Scanner {
	return &Scanner{
		provider: provider,
		cfg:      cfg,
		builder: spread.NewBuilder(logger, cfg.Pricing.RiskFreeRate, cfg.Pricing.DividendYield,
			cfg.Pricing.DefaultIV, cfg.IsValidation()),
		logger: logger,
	}
}

// Scan runs every configured template and returns one report per template.
// Per-template failures are logged and skipped; the scan only fails when the
// chain itself cannot be fetched or the context expires.
func (s *Scanner) Scan(ctx context.Context) ([]*Report, error) {
	symbol := s.cfg.Scanner.Symbol

	spot, err := s.provider.GetSpotPrice(symbol)
	if err != nil {
		return nil, fmt.Errorf("fetching spot price for %s: %w", symbol, err)
	}

	contracts, err := s.provider.GetOptionsChain(symbol)
	if err != nil {
		return nil, fmt.Errorf("fetching options chain for %s: %w", symbol, err)
	}
	contracts = chain.ClassifyContracts(contracts)

	if needsQuotes(contracts) {
		contracts, err = s.provider.EnrichWithQuotes(contracts)
		if err != nil {
			return nil, fmt.Errorf("enriching quotes for %s: %w", symbol, err)
		}
	}
	contracts = s.applyLiquidityFloor(contracts)

	templates, err := s.cfg.StrategyTemplates()
	if err != nil {
		return nil, err
	}

	reports := make([]*Report, 0, len(templates))
	for _, tmpl := range templates {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report, err := s.runTemplate(ctx, tmpl, contracts, symbol, spot)
		if err != nil {
			s.logger.Printf("template %q produced no report: %v", tmpl.Name, err)
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// runTemplate instantiates one template against the filtered chain.
func (s *Scanner) runTemplate(ctx context.Context, tmpl models.StrategyTemplate,
	contracts []models.OptionContract, symbol string, spot float64) (*Report, error) {
	if tmpl.MinimumUnderlyingPrice > 0 && spot < tmpl.MinimumUnderlyingPrice {
		return nil, fmt.Errorf("underlying %.2f below template minimum %.2f", spot, tmpl.MinimumUnderlyingPrice)
	}

	targetDTE := tmpl.TargetDTE()
	filtered, expanded := chain.FilterWithFallback(s.logger, contracts, "", targetDTE, tmpl.DTETolerance())
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no contracts within %d days of %d DTE", chain.ExpandedTolerance, targetDTE)
	}
	filtered, degraded := chain.SelectByExpirationPreference(s.logger, filtered, targetDTE)

	minPremium := tmpl.MinimumPremium
	if minPremium <= 0 {
		minPremium = s.cfg.Scanner.MinimumPremium
	}

	// Only premium-method definitions take the enumerating credit-spread
	// search; every other leg mix resolves through the universal resolver so
	// the template's selection methods are honored. The search width comes
	// from the template's own buy-leg offset, not the scanner config.
	var candidates []models.SpreadStrategy
	if short, width, ok := spread.PremiumSearchParams(tmpl.Legs); ok {
		candidates = s.builder.FindCreditSpreads(filtered, symbol, spot, short.OptionType,
			width, minPremium)
	} else {
		resolved, netPremium := s.builder.BuildStrategy(tmpl.Legs, filtered, spot, targetDTE, minPremium)
		if len(resolved) == 0 {
			return nil, fmt.Errorf("template legs could not be resolved")
		}
		if netPremium < minPremium {
			return nil, fmt.Errorf("net premium %.2f below minimum %.2f", netPremium, minPremium)
		}
		candidates = []models.SpreadStrategy{
			s.builder.AssembleStrategy(symbol, spot, tmpl.Legs, resolved, netPremium),
		}
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("no candidates met the %.2f minimum premium", minPremium)
	}

	targetPremium := s.cfg.Scanner.TargetPremium
	if targetPremium <= 0 {
		targetPremium = minPremium
	}
	ranked, err := spread.RankStrategies(ctx, candidates, targetPremium, targetDTE, s.cfg.Scanner.TopK)
	if err != nil {
		return nil, err
	}

	report := &Report{
		ID:                uuid.NewString(),
		Symbol:            symbol,
		UnderlyingPrice:   spot,
		Template:          tmpl.Name,
		StrategyType:      tmpl.StrategyType,
		Strategies:        ranked,
		Summary:           spread.SummarizeScores(ranked),
		GeneratedAt:       time.Now().UTC(),
		ToleranceExpanded: expanded,
		DegradedToWeekly:  degraded,
	}
	if len(ranked) > 0 {
		report.Best = &ranked[0]
	}
	s.logger.Printf("template %q: %d candidates, %d ranked, best score %.3f",
		tmpl.Name, len(candidates), len(ranked), report.Summary.Max)
	return report, nil
}

// applyLiquidityFloor drops contracts under the configured volume and open
// interest floors. Validation mode keeps everything; frozen chains have no
// meaningful flow data.
func (s *Scanner) applyLiquidityFloor(contracts []models.OptionContract) []models.OptionContract {
	if s.cfg.IsValidation() || (s.cfg.Scanner.MinVolume == 0 && s.cfg.Scanner.MinOpenInterest == 0) {
		return contracts
	}
	out := make([]models.OptionContract, 0, len(contracts))
	for _, c := range contracts {
		if c.Volume < s.cfg.Scanner.MinVolume || c.OpenInterest < s.cfg.Scanner.MinOpenInterest {
			continue
		}
		out = append(out, c)
	}
	return out
}

func needsQuotes(contracts []models.OptionContract) bool {
	for i := range contracts {
		if !contracts[i].HasQuote() {
			return true
		}
	}
	return false
}
