package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"

	"github.com/mhalpert/spreadscout/internal/config"
	"github.com/mhalpert/spreadscout/internal/dashboard"
	"github.com/mhalpert/spreadscout/internal/export"
	"github.com/mhalpert/spreadscout/internal/marketdata"
	"github.com/mhalpert/spreadscout/internal/scanner"
)

const scanTimeout = 2 * time.Minute

func main() {
	var configPath, symbol string
	var offline bool
	flag.StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	flag.StringVar(&symbol, "symbol", "", "Override the configured underlying symbol")
	flag.BoolVar(&offline, "offline", false, "Use the synthetic data provider instead of the configured source")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if symbol != "" {
		cfg.Scanner.Symbol = symbol
	}

	logger := log.New(os.Stdout, "[SCAN] ", log.LstdFlags|log.Lshortfile)
	logger.Printf("Starting spread scan for %s in %s mode", cfg.Scanner.Symbol, cfg.Environment.Mode)

	provider, err := buildProvider(cfg, offline)
	if err != nil {
		logger.Fatalf("Failed to build market data provider: %v", err)
	}

	s := scanner.New(provider, cfg, logger)

	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	reports, err := s.Scan(ctx)
	if err != nil {
		logger.Fatalf("Scan failed: %v", err)
	}
	if len(reports) == 0 {
		logger.Println("Scan produced no candidates")
		return
	}

	printReports(reports)

	if cfg.Export.Enabled {
		if err := export.WriteCSV(reports, cfg.Export.Path); err != nil {
			logger.Printf("CSV export failed: %v", err)
		} else {
			logger.Printf("Exported %d reports to %s", len(reports), cfg.Export.Path)
		}
	}

	if cfg.Dashboard.Enabled {
		serveDashboard(cfg, reports, logger)
	}
}

// buildProvider picks the data source: synthetic for offline runs, the
// frozen reference chain in validation mode, synthetic otherwise. Every
// source is wrapped in a circuit breaker.
func buildProvider(cfg *config.Config, offline bool) (marketdata.Provider, error) {
	var inner marketdata.Provider
	switch {
	case cfg.IsValidation() && !offline:
		p, err := marketdata.NewNormalizedProvider(cfg.Reference.ChainPath, cfg.Reference.ValidationSpot)
		if err != nil {
			return nil, err
		}
		inner = p
	default:
		inner = marketdata.NewSyntheticProvider(cfg.Pricing.RiskFreeRate)
	}
	return marketdata.NewCircuitBreakerProvider(inner), nil
}

func printReports(reports []*scanner.Report) {
	for _, r := range reports {
		fmt.Printf("\n%s (%s)  spot=%.2f  generated=%s\n",
			r.Template, r.StrategyType, r.UnderlyingPrice, r.GeneratedAt.Format(time.RFC3339))
		if r.ToleranceExpanded {
			fmt.Println("  note: DTE tolerance was widened to find enough contracts")
		}
		if r.DegradedToWeekly {
			fmt.Println("  note: no monthly expirations matched, weekly candidates used")
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"#", "Short", "Long", "DTE", "Premium", "Max Loss", "Break Even", "POP %", "Score"})
		for i, s := range r.Strategies {
			shortStrike, longStrike := "-", "-"
			if s.ShortLeg != nil {
				shortStrike = fmt.Sprintf("%.2f", s.ShortLeg.Strike)
			}
			if s.LongLeg != nil {
				longStrike = fmt.Sprintf("%.2f", s.LongLeg.Strike)
			}
			table.Append([]string{
				fmt.Sprintf("%d", i+1),
				shortStrike,
				longStrike,
				fmt.Sprintf("%d", s.DTE),
				fmt.Sprintf("%.2f", s.NetPremium),
				fmt.Sprintf("%.2f", s.MaxLoss),
				fmt.Sprintf("%.2f", s.BreakEven),
				fmt.Sprintf("%.1f", s.ProbabilityOfProfit),
				fmt.Sprintf("%.3f", s.Score),
			})
		}
		table.Render()
		fmt.Printf("  scores: mean=%.3f stddev=%.3f\n", r.Summary.Mean, r.Summary.StdDev)
	}
}

// serveDashboard publishes the reports over HTTP and blocks until SIGINT or
// SIGTERM.
func serveDashboard(cfg *config.Config, reports []*scanner.Report, logger *log.Logger) {
	dashLogger := logrus.New()
	if cfg.Environment.LogLevel == "debug" {
		dashLogger.SetLevel(logrus.DebugLevel)
	}

	srv := dashboard.NewServer(dashboard.Config{Addr: cfg.Dashboard.Addr}, dashLogger)
	srv.SetReports(reports)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Printf("Received %s, shutting down dashboard", sig)
	case err := <-errCh:
		if err != nil {
			logger.Printf("Dashboard server stopped: %v", err)
			return
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Dashboard shutdown error: %v", err)
	}
}
