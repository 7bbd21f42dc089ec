// Package export writes scan reports to CSV for spreadsheet review.
package export

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/mhalpert/spreadscout/internal/scanner"
)

// Row is one flattened ranked candidate.
type Row struct {
	ReportID     string  `csv:"report_id"`
	Template     string  `csv:"template"`
	Symbol       string  `csv:"symbol"`
	Spot         float64 `csv:"spot"`
	StrategyType string  `csv:"strategy_type"`
	Rank         int     `csv:"rank"`
	ShortStrike  float64 `csv:"short_strike"`
	LongStrike   float64 `csv:"long_strike"`
	DTE          int     `csv:"dte"`
	NetPremium   float64 `csv:"net_premium"`
	TradingPrem  float64 `csv:"trading_premium"`
	MaxProfit    float64 `csv:"max_profit"`
	MaxLoss      float64 `csv:"max_loss"`
	BreakEven    float64 `csv:"break_even"`
	POP          float64 `csv:"pop"`
	Score        float64 `csv:"score"`
}

// Flatten converts reports into CSV rows, one per ranked candidate.
func Flatten(reports []*scanner.Report) []Row {
	var rows []Row
	for _, r := range reports {
		for i, s := range r.Strategies {
			row := Row{
				ReportID:     r.ID,
				Template:     r.Template,
				Symbol:       r.Symbol,
				Spot:         r.UnderlyingPrice,
				StrategyType: s.StrategyType,
				Rank:         i + 1,
				DTE:          s.DTE,
				NetPremium:   s.NetPremium,
				TradingPrem:  s.TradingPremium,
				MaxProfit:    s.MaxProfit,
				MaxLoss:      s.MaxLoss,
				BreakEven:    s.BreakEven,
				POP:          s.ProbabilityOfProfit,
				Score:        s.Score,
			}
			if s.ShortLeg != nil {
				row.ShortStrike = s.ShortLeg.Strike
			}
			if s.LongLeg != nil {
				row.LongStrike = s.LongLeg.Strike
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// WriteCSV writes the reports to path, overwriting any previous export.
func WriteCSV(reports []*scanner.Report, path string) error {
	rows := Flatten(reports)

	f, err := os.Create(path) // #nosec G304 -- path comes from operator config
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("writing export rows: %w", err)
	}
	return nil
}
