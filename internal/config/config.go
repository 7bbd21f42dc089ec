// Package config provides configuration management for the spread scanner.
package config

import (
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/mhalpert/spreadscout/internal/models"
)

// Defaults applied when the corresponding field is unset.
const (
	defaultTargetDTE    = 45
	defaultDTETolerance = 7
	defaultTopK         = 5
	defaultRiskFreeRate = 0.05
	defaultIV           = 0.20
	defaultSpreadWidth  = 5.0
)

// Config represents the complete application configuration.
type Config struct {
	Environment EnvironmentConfig `yaml:"environment"`
	Scanner     ScannerConfig     `yaml:"scanner"`
	Pricing     PricingConfig     `yaml:"pricing"`
	Reference   ReferenceConfig   `yaml:"reference"`
	Dashboard   DashboardConfig   `yaml:"dashboard"`
	Export      ExportConfig      `yaml:"export"`
	Templates   []TemplateConfig  `yaml:"templates"`
}

// EnvironmentConfig defines the environment settings.
type EnvironmentConfig struct {
	Mode     string `yaml:"mode"`      // live | validation
	LogLevel string `yaml:"log_level"` // debug | info | warn | error
}

// ScannerConfig defines what the scanner searches for.
type ScannerConfig struct {
	Symbol          string  `yaml:"symbol"`
	TargetDTE       int     `yaml:"target_dte"`
	DTETolerance    int     `yaml:"dte_tolerance"`
	TargetPremium   float64 `yaml:"target_premium"`
	MinimumPremium  float64 `yaml:"minimum_premium"`
	SpreadWidth     float64 `yaml:"spread_width"`
	TopK            int     `yaml:"top_k"`
	MinVolume       int64   `yaml:"min_volume"`
	MinOpenInterest int64   `yaml:"min_open_interest"`
}

// PricingConfig feeds the probability engine.
type PricingConfig struct {
	RiskFreeRate  float64 `yaml:"risk_free_rate"`
	DividendYield float64 `yaml:"dividend_yield"`
	DefaultIV     float64 `yaml:"default_iv"`
}

// ReferenceConfig points at a frozen normalized chain for validation mode.
type ReferenceConfig struct {
	ChainPath      string  `yaml:"chain_path"`
	ValidationSpot float64 `yaml:"validation_spot"`
}

// DashboardConfig defines the optional JSON API server.
type DashboardConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// ExportConfig defines the optional CSV report sink.
type ExportConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// TemplateConfig is the YAML shape of a strategy template.
type TemplateConfig struct {
	Name            string                  `yaml:"name"`
	Description     string                  `yaml:"description"`
	Legs            []LegConfig             `yaml:"legs"`
	DTERangeMin     int                     `yaml:"dte_range_min"`
	DTERangeMax     int                     `yaml:"dte_range_max"`
	ProfitTargetPct float64                 `yaml:"profit_target_pct"`
	MinimumPremium  float64                 `yaml:"minimum_premium"`
	MinUnderlying   float64                 `yaml:"min_underlying_price"`
	DeltaBiases     []string                `yaml:"delta_biases"`
	ManagementRules []models.ManagementRule `yaml:"management_rules"`
}

// LegConfig is the YAML shape of one abstract leg.
type LegConfig struct {
	Action     string  `yaml:"action"`      // buy | sell
	OptionType string  `yaml:"option_type"` // call | put
	Method     string  `yaml:"method"`      // atm | offset | percentage | premium | atm_straddle
	Value      float64 `yaml:"value"`
	Quantity   int     `yaml:"quantity"`
}

// ToStrategyLeg converts the YAML leg into the model representation.
func (l LegConfig) ToStrategyLeg() (models.StrategyLeg, error) {
	sel, err := models.ParseSelection(l.Method, l.Value)
	if err != nil {
		return models.StrategyLeg{}, err
	}

	var action models.LegAction
	switch l.Action {
	case "buy":
		action = models.ActionBuy
	case "sell":
		action = models.ActionSell
	default:
		return models.StrategyLeg{}, fmt.Errorf("leg action must be 'buy' or 'sell', got %q", l.Action)
	}

	var optType models.OptionType
	switch l.OptionType {
	case "call":
		optType = models.OptionTypeCall
	case "put":
		optType = models.OptionTypePut
	default:
		return models.StrategyLeg{}, fmt.Errorf("leg option_type must be 'call' or 'put', got %q", l.OptionType)
	}

	qty := l.Quantity
	if qty == 0 {
		qty = 1
	}
	return models.StrategyLeg{Action: action, OptionType: optType, Selection: sel, Quantity: qty}, nil
}

// ToTemplate converts the YAML template into the model representation.
func (t TemplateConfig) ToTemplate() (models.StrategyTemplate, error) {
	legs := make([]models.StrategyLeg, 0, len(t.Legs))
	for i, lc := range t.Legs {
		leg, err := lc.ToStrategyLeg()
		if err != nil {
			return models.StrategyTemplate{}, fmt.Errorf("template %q leg %d: %w", t.Name, i, err)
		}
		legs = append(legs, leg)
	}

	tmpl := models.StrategyTemplate{
		Name:                   t.Name,
		Description:            t.Description,
		Legs:                   legs,
		DTERangeMin:            t.DTERangeMin,
		DTERangeMax:            t.DTERangeMax,
		ProfitTargetPct:        t.ProfitTargetPct,
		MinimumPremium:         t.MinimumPremium,
		MinimumUnderlyingPrice: t.MinUnderlying,
		DeltaBiases:            t.DeltaBiases,
		ManagementRules:        t.ManagementRules,
	}
	tmpl.Classify()
	return tmpl, nil
}

// Load reads and parses the configuration file from the specified path.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- configPath is a user-provided config file path
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var config Config
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Environment.Mode == "" {
		c.Environment.Mode = "live"
	}
	if c.Scanner.TargetDTE == 0 {
		c.Scanner.TargetDTE = defaultTargetDTE
	}
	if c.Scanner.DTETolerance == 0 {
		c.Scanner.DTETolerance = defaultDTETolerance
	}
	if c.Scanner.TopK == 0 {
		c.Scanner.TopK = defaultTopK
	}
	if c.Scanner.SpreadWidth == 0 {
		c.Scanner.SpreadWidth = defaultSpreadWidth
	}
	if c.Pricing.RiskFreeRate == 0 {
		c.Pricing.RiskFreeRate = defaultRiskFreeRate
	}
	if c.Pricing.DefaultIV == 0 {
		c.Pricing.DefaultIV = defaultIV
	}
}

// Validate checks that all configuration values are valid and consistent.
func (c *Config) Validate() error {
	if c.Environment.Mode != "live" && c.Environment.Mode != "validation" {
		return fmt.Errorf("environment.mode must be 'live' or 'validation'")
	}

	if c.Scanner.Symbol == "" {
		return fmt.Errorf("scanner.symbol is required")
	}
	if c.Scanner.TargetDTE <= 0 {
		return fmt.Errorf("scanner.target_dte must be > 0")
	}
	if c.Scanner.DTETolerance <= 0 {
		return fmt.Errorf("scanner.dte_tolerance must be > 0")
	}
	if c.Scanner.MinimumPremium <= 0 {
		return fmt.Errorf("scanner.minimum_premium must be > 0")
	}
	if c.Scanner.TargetPremium < c.Scanner.MinimumPremium {
		return fmt.Errorf("scanner.target_premium (%.2f) must be >= scanner.minimum_premium (%.2f)",
			c.Scanner.TargetPremium, c.Scanner.MinimumPremium)
	}
	if c.Scanner.SpreadWidth <= 0 {
		return fmt.Errorf("scanner.spread_width must be > 0")
	}
	if c.Scanner.TopK <= 0 {
		return fmt.Errorf("scanner.top_k must be > 0")
	}

	if c.Pricing.RiskFreeRate < 0 || c.Pricing.RiskFreeRate > 0.2 {
		return fmt.Errorf("pricing.risk_free_rate must be in [0, 0.2]")
	}
	if c.Pricing.DividendYield < 0 || c.Pricing.DividendYield > 0.2 {
		return fmt.Errorf("pricing.dividend_yield must be in [0, 0.2]")
	}
	if c.Pricing.DefaultIV <= 0 || c.Pricing.DefaultIV > 5.0 {
		return fmt.Errorf("pricing.default_iv must be in (0, 5.0]")
	}

	if c.IsValidation() {
		if c.Reference.ChainPath == "" {
			return fmt.Errorf("reference.chain_path is required in validation mode")
		}
		if c.Reference.ValidationSpot <= 0 {
			return fmt.Errorf("reference.validation_spot must be > 0 in validation mode")
		}
	}

	if c.Dashboard.Enabled && c.Dashboard.Addr == "" {
		return fmt.Errorf("dashboard.addr is required when dashboard.enabled")
	}
	if c.Export.Enabled && c.Export.Path == "" {
		return fmt.Errorf("export.path is required when export.enabled")
	}

	for _, t := range c.Templates {
		if t.Name == "" {
			return fmt.Errorf("every template needs a name")
		}
		if len(t.Legs) == 0 {
			return fmt.Errorf("template %q has no legs", t.Name)
		}
		if t.DTERangeMin < 0 || t.DTERangeMax < t.DTERangeMin {
			return fmt.Errorf("template %q dte range [%d,%d] invalid", t.Name, t.DTERangeMin, t.DTERangeMax)
		}
		if _, err := t.ToTemplate(); err != nil {
			return err
		}
	}

	return nil
}

// IsValidation reports whether the scanner runs against a frozen reference
// chain instead of a live data source.
func (c *Config) IsValidation() bool {
	return c.Environment.Mode == "validation"
}

// StrategyTemplates converts every configured template. When none are
// configured it falls back to the built-in set: the premium-targeted put
// credit spread search and the ATM-straddle iron condor.
func (c *Config) StrategyTemplates() ([]models.StrategyTemplate, error) {
	if len(c.Templates) == 0 {
		return []models.StrategyTemplate{
			DefaultPutCreditSpread(c.Scanner),
			DefaultIronCondor(c.Scanner),
		}, nil
	}
	out := make([]models.StrategyTemplate, 0, len(c.Templates))
	for _, tc := range c.Templates {
		t, err := tc.ToTemplate()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// DefaultPutCreditSpread is the built-in premium-targeted search template.
func DefaultPutCreditSpread(sc ScannerConfig) models.StrategyTemplate {
	t := models.StrategyTemplate{
		Name:        "put_credit_spread_search",
		Description: "Premium-targeted put credit spread search",
		Legs: []models.StrategyLeg{
			{Action: models.ActionSell, OptionType: models.OptionTypePut, Selection: models.SelectPremium{}, Quantity: 1},
			{Action: models.ActionBuy, OptionType: models.OptionTypePut, Selection: models.SelectOffset{Points: -sc.SpreadWidth}, Quantity: 1},
		},
		DTERangeMin:    sc.TargetDTE - sc.DTETolerance,
		DTERangeMax:    sc.TargetDTE + sc.DTETolerance,
		MinimumPremium: sc.MinimumPremium,
	}
	t.Classify()
	return t
}

// DefaultIronCondor is a straddle-sized iron condor template: short strikes
// one full ATM straddle price away from spot, long wings at one and a half.
func DefaultIronCondor(sc ScannerConfig) models.StrategyTemplate {
	t := models.StrategyTemplate{
		Name:        "atm_straddle_iron_condor",
		Description: "Iron condor with strikes based on the ATM straddle price",
		Legs: []models.StrategyLeg{
			{Action: models.ActionSell, OptionType: models.OptionTypePut, Selection: models.SelectATMStraddle{Percent: 100}, Quantity: 1},
			{Action: models.ActionBuy, OptionType: models.OptionTypePut, Selection: models.SelectATMStraddle{Percent: 150}, Quantity: 1},
			{Action: models.ActionSell, OptionType: models.OptionTypeCall, Selection: models.SelectATMStraddle{Percent: 100}, Quantity: 1},
			{Action: models.ActionBuy, OptionType: models.OptionTypeCall, Selection: models.SelectATMStraddle{Percent: 150}, Quantity: 1},
		},
		DTERangeMin:     40,
		DTERangeMax:     50,
		ProfitTargetPct: 25,
		MinimumPremium:  sc.MinimumPremium,
		DeltaBiases:     []string{"neutral"},
		ManagementRules: []models.ManagementRule{
			{RuleType: "profit_target", TriggerCondition: "gte", TriggerValue: 25, Action: "close_position", QuantityPct: 100, Priority: 1},
			{RuleType: "stop_loss", TriggerCondition: "lte", TriggerValue: -200, Action: "close_position", QuantityPct: 100, Priority: 1},
		},
	}
	t.Classify()
	return t
}
