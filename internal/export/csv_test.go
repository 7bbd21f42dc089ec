package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mhalpert/spreadscout/internal/models"
	"github.com/mhalpert/spreadscout/internal/scanner"
)

func sampleReports() []*scanner.Report {
	short := models.OptionContract{Strike: 95}
	long := models.OptionContract{Strike: 90}
	return []*scanner.Report{
		{
			ID:              "r1",
			Symbol:          "SPY",
			UnderlyingPrice: 100,
			Template:        "pcs",
			Strategies: []models.SpreadStrategy{
				{ID: "a", StrategyType: "put_credit_spread", ShortLeg: &short, LongLeg: &long,
					NetPremium: 1.20, MaxLoss: 3.80, BreakEven: 93.80, ProbabilityOfProfit: 72, DTE: 45, Score: 0.81},
				{ID: "b", StrategyType: "put_credit_spread", NetPremium: 1.05, MaxLoss: 3.95, DTE: 45, Score: 0.74},
			},
		},
		{ID: "r2", Symbol: "SPY", Template: "condor"},
	}
}

func TestFlatten(t *testing.T) {
	rows := Flatten(sampleReports())
	if len(rows) != 2 {
		t.Fatalf("flattened %d rows, want 2", len(rows))
	}

	first := rows[0]
	if first.Rank != 1 || first.ReportID != "r1" || first.ShortStrike != 95 || first.LongStrike != 90 {
		t.Errorf("first row wrong: %+v", first)
	}
	if rows[1].Rank != 2 {
		t.Errorf("second row rank = %d, want 2", rows[1].Rank)
	}
	if rows[1].ShortStrike != 0 {
		t.Errorf("missing legs should leave strikes zero, got %v", rows[1].ShortStrike)
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteCSV(sampleReports(), path); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	content := string(data)

	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) != 3 { // header + 2 rows
		t.Fatalf("export has %d lines, want 3", len(lines))
	}
	if !strings.Contains(lines[0], "net_premium") || !strings.Contains(lines[0], "pop") {
		t.Errorf("header missing expected columns: %s", lines[0])
	}
	if !strings.Contains(content, "put_credit_spread") {
		t.Error("rows missing strategy type")
	}
}
