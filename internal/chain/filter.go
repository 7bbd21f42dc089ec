// Package chain filters option-chain snapshots, classifies expirations as
// monthly or weekly, and rescales normalized reference chains for offline
// analysis. The chain itself is a read-only snapshot owned by the caller;
// every function here returns freshly allocated slices.
package chain

import (
	"log"
	"sort"
	"time"

	"github.com/mhalpert/spreadscout/internal/models"
)

const (
	// MinStrictMatches is the contract count below which the strict DTE
	// filter must be retried with ExpandedTolerance. Real listed chains
	// are sparse, so the widening fallback is mandatory.
	MinStrictMatches = 20
	// ExpandedTolerance is the widened DTE tolerance in days.
	ExpandedTolerance = 15
	// monthlyDTEThreshold splits DTE targets into monthly-preferred
	// (30/45/60) and weekly-allowed (0/7/14) buckets.
	monthlyDTEThreshold = 21
)

// FilterOptions returns the contracts of the requested type (or both types
// when optionType is empty) whose DTE is within tolerance of targetDTE.
func FilterOptions(contracts []models.OptionContract, optionType models.OptionType,
	targetDTE, tolerance int) []models.OptionContract {
	out := make([]models.OptionContract, 0, len(contracts))
	for _, c := range contracts {
		if optionType != "" && c.OptionType != optionType {
			continue
		}
		diff := c.DTE - targetDTE
		if diff < 0 {
			diff = -diff
		}
		if diff <= tolerance {
			out = append(out, c)
		}
	}
	return out
}

// FilterWithFallback applies FilterOptions and, when the strict window
// yields fewer than MinStrictMatches contracts, retries with
// ExpandedTolerance. It reports whether the tolerance was expanded.
func FilterWithFallback(logger *log.Logger, contracts []models.OptionContract,
	optionType models.OptionType, targetDTE, tolerance int) ([]models.OptionContract, bool) {
	strict := FilterOptions(contracts, optionType, targetDTE, tolerance)
	if len(strict) >= MinStrictMatches || tolerance >= ExpandedTolerance {
		return strict, false
	}

	widened := FilterOptions(contracts, optionType, targetDTE, ExpandedTolerance)
	if len(widened) > len(strict) {
		if logger != nil {
			logger.Printf("strict DTE filter matched %d contracts (< %d), widened tolerance %d -> %d days: %d contracts",
				len(strict), MinStrictMatches, tolerance, ExpandedTolerance, len(widened))
		}
		return widened, true
	}
	return strict, false
}

// GroupByExpiration splits contracts into per-expiration slices, with the
// expirations returned in ascending date order.
func GroupByExpiration(contracts []models.OptionContract) ([]time.Time, map[time.Time][]models.OptionContract) {
	groups := make(map[time.Time][]models.OptionContract)
	for _, c := range contracts {
		key := c.Expiration.UTC().Truncate(24 * time.Hour)
		groups[key] = append(groups[key], c)
	}
	dates := make([]time.Time, 0, len(groups))
	for d := range groups {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, groups
}

// PrefersMonthly reports whether a DTE target belongs to the
// monthly-preferred bucket (30/45/60-style targets) rather than the
// weekly-allowed bucket (0/7/14-style targets).
func PrefersMonthly(targetDTE int) bool {
	return targetDTE >= monthlyDTEThreshold
}

// SelectByExpirationPreference keeps only monthly contracts when the target
// DTE prefers monthlies and any exist; otherwise it returns the input with a
// logged degradation to weeklies. It reports whether the weekly fallback was
// taken for a monthly-preferred target.
func SelectByExpirationPreference(logger *log.Logger, contracts []models.OptionContract,
	targetDTE int) ([]models.OptionContract, bool) {
	if !PrefersMonthly(targetDTE) {
		return contracts, false
	}

	monthlies := make([]models.OptionContract, 0, len(contracts))
	for _, c := range contracts {
		if c.IsMonthly {
			monthlies = append(monthlies, c)
		}
	}
	if len(monthlies) > 0 {
		return monthlies, false
	}
	if len(contracts) > 0 && logger != nil {
		logger.Printf("no monthly expirations near %d DTE, degrading to weekly candidates (%d contracts)",
			targetDTE, len(contracts))
	}
	return contracts, true
}
