package models

// Greeks holds the option sensitivities. Delta is within [-1,1] without
// leverage multipliers; theta is per calendar day, vega per 1% vol move,
// rho per 1% rate move.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
}

// ProbabilityMetrics carries the probability analysis for a position.
// All probabilities are 0-100 percentages; the confidence interval is in
// price units (95% lognormal band). KellyCriterion is clamped to [0, 0.25].
// The zero value is the documented neutral default returned for degenerate
// inputs (T<=0 or sigma<=0).
type ProbabilityMetrics struct {
	POP            float64 `json:"pop"`
	P50            float64 `json:"p50"`
	POT            float64 `json:"pot"`
	ProbITM        float64 `json:"prob_itm"`
	ProbMaxProfit  float64 `json:"prob_max_profit"`
	ExpectedValue  float64 `json:"expected_value"`
	KellyCriterion float64 `json:"kelly_criterion"`
	ConfidenceLow  float64 `json:"confidence_low"`
	ConfidenceHigh float64 `json:"confidence_high"`
}
