// Package marketdata supplies option chains, quotes and spot prices to the
// analysis pipeline, either from a synthetic generator or a frozen
// normalized reference chain.
package marketdata

import (
	"errors"
	"log"
	"time"

	"github.com/sony/gobreaker"

	"github.com/mhalpert/spreadscout/internal/models"
)

// Provider is the market-data surface the scanner depends on. Chain
// contracts may come back without quotes; EnrichWithQuotes fills them in a
// second pass.
type Provider interface {
	// GetOptionsChain returns every listed contract for the underlying.
	GetOptionsChain(symbol string) ([]models.OptionContract, error)

	// EnrichWithQuotes fills bid/ask/mid/volume on contracts lacking them.
	EnrichWithQuotes(contracts []models.OptionContract) ([]models.OptionContract, error)

	// GetSpotPrice returns the underlying's current price.
	GetSpotPrice(symbol string) (float64, error)
}

// CircuitBreakerProvider wraps a Provider with circuit breaker functionality
// so a flapping data source fails fast instead of stalling every scan.
type CircuitBreakerProvider struct {
	provider Provider
	breaker  *gobreaker.CircuitBreaker
}

// CircuitBreakerSettings configures circuit breaker behavior.
type CircuitBreakerSettings struct {
	MaxRequests  uint32        // Max requests when half-open
	Interval     time.Duration // Reset counts interval
	Timeout      time.Duration // Open circuit duration
	MinRequests  uint32        // Min requests before tripping
	FailureRatio float64       // Failure ratio threshold
}

// NewCircuitBreakerProvider wraps the provider with sensible defaults.
func NewCircuitBreakerProvider(provider Provider) *CircuitBreakerProvider {
	return NewCircuitBreakerProviderWithSettings(provider, CircuitBreakerSettings{
		MaxRequests:  3,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		MinRequests:  5,
		FailureRatio: 0.6,
	})
}

// NewCircuitBreakerProviderWithSettings wraps the provider with custom
// breaker settings.
func NewCircuitBreakerProviderWithSettings(provider Provider, settings CircuitBreakerSettings) *CircuitBreakerProvider {
	gbSettings := gobreaker.Settings{
		Name:        "MarketDataCircuitBreaker",
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 || counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit breaker %s state changed from %s to %s", name, from, to)
		},
	}

	return &CircuitBreakerProvider{
		provider: provider,
		breaker:  gobreaker.NewCircuitBreaker(gbSettings),
	}
}

// execCircuitBreaker is a generic helper for circuit breaker wrapper methods.
func execCircuitBreaker[T any](
	breaker *gobreaker.CircuitBreaker,
	provider Provider,
	fn func(Provider) (T, error),
) (T, error) {
	var zero T
	res, err := breaker.Execute(func() (interface{}, error) { return fn(provider) })
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}
	v, ok := res.(T)
	if !ok {
		return zero, errors.New("circuit breaker: type assertion failed")
	}
	return v, nil
}

// GetOptionsChain wraps the underlying provider call with circuit breaker.
func (c *CircuitBreakerProvider) GetOptionsChain(symbol string) ([]models.OptionContract, error) {
	return execCircuitBreaker(c.breaker, c.provider, func(p Provider) ([]models.OptionContract, error) {
		return p.GetOptionsChain(symbol)
	})
}

// EnrichWithQuotes wraps the underlying provider call with circuit breaker.
func (c *CircuitBreakerProvider) EnrichWithQuotes(contracts []models.OptionContract) ([]models.OptionContract, error) {
	return execCircuitBreaker(c.breaker, c.provider, func(p Provider) ([]models.OptionContract, error) {
		return p.EnrichWithQuotes(contracts)
	})
}

// GetSpotPrice wraps the underlying provider call with circuit breaker.
func (c *CircuitBreakerProvider) GetSpotPrice(symbol string) (float64, error) {
	return execCircuitBreaker(c.breaker, c.provider, func(p Provider) (float64, error) {
		return p.GetSpotPrice(symbol)
	})
}

// Compile-time interface check.
var _ Provider = (*CircuitBreakerProvider)(nil)
