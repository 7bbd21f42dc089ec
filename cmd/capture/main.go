// Command capture snapshots an options chain, normalizes it to base 100 and
// saves it as a reference chain for validation-mode scans.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/mhalpert/spreadscout/internal/chain"
	"github.com/mhalpert/spreadscout/internal/config"
	"github.com/mhalpert/spreadscout/internal/marketdata"
)

func main() {
	var configPath, symbol, outPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	flag.StringVar(&symbol, "symbol", "", "Override the configured underlying symbol")
	flag.StringVar(&outPath, "out", "reference_chain.json", "Where to write the normalized chain")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if symbol == "" {
		symbol = cfg.Scanner.Symbol
	}

	logger := log.New(os.Stdout, "[CAPTURE] ", log.LstdFlags)

	provider := marketdata.NewCircuitBreakerProvider(
		marketdata.NewSyntheticProvider(cfg.Pricing.RiskFreeRate))

	spot, err := provider.GetSpotPrice(symbol)
	if err != nil {
		logger.Fatalf("Failed to fetch spot price: %v", err)
	}
	contracts, err := provider.GetOptionsChain(symbol)
	if err != nil {
		logger.Fatalf("Failed to fetch options chain: %v", err)
	}

	normalized, err := chain.Normalize(symbol, contracts, spot)
	if err != nil {
		logger.Fatalf("Failed to normalize chain: %v", err)
	}
	if err := normalized.Save(outPath); err != nil {
		logger.Fatalf("Failed to save reference chain: %v", err)
	}

	logger.Printf("Captured %d contracts for %s at spot %.2f into %s",
		len(normalized.Contracts), symbol, spot, outPath)
}
