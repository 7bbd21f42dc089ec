package models

// ManagementRule is a position management trigger attached to a strategy
// template. The engine only carries these through to consumers; evaluating
// them against live positions is a collaborator concern.
type ManagementRule struct {
	RuleType         string  `yaml:"rule_type" json:"rule_type"`                 // profit_target | stop_loss | time_exit | delta_breach
	TriggerCondition string  `yaml:"trigger_condition" json:"trigger_condition"` // gte | lte | equals
	TriggerValue     float64 `yaml:"trigger_value" json:"trigger_value"`
	Action           string  `yaml:"action" json:"action"` // close_position | partial_close | roll | adjust
	QuantityPct      float64 `yaml:"quantity_pct" json:"quantity_pct"`
	Priority         int     `yaml:"priority" json:"priority"`
}

// StrategyTemplate is a reusable strategy definition: the abstract legs plus
// the entry constraints the scanner applies when instantiating it against a
// chain snapshot.
type StrategyTemplate struct {
	Name                   string
	Description            string
	Legs                   []StrategyLeg
	DTERangeMin            int
	DTERangeMax            int
	ProfitTargetPct        float64
	MinimumPremium         float64
	MinimumUnderlyingPrice float64
	DeltaBiases            []string
	ManagementRules        []ManagementRule
	StrategyType           string
}

// Classify fills and returns the template's strategy type from its legs.
func (t *StrategyTemplate) Classify() string {
	if t.StrategyType == "" {
		t.StrategyType = ClassifyStrategyType(t.Legs)
	}
	return t.StrategyType
}

// TargetDTE returns the midpoint of the template's DTE range.
func (t *StrategyTemplate) TargetDTE() int {
	return (t.DTERangeMin + t.DTERangeMax) / 2
}

// DTETolerance returns half the width of the template's DTE range, with a
// floor of one day so an exact-DTE template still matches same-day listings.
func (t *StrategyTemplate) DTETolerance() int {
	tol := (t.DTERangeMax - t.DTERangeMin) / 2
	if tol < 1 {
		tol = 1
	}
	return tol
}
