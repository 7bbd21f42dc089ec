package spread

import (
	"context"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"github.com/mhalpert/spreadscout/internal/models"
)

// Scoring weights. Premium proximity and probability of profit dominate.
const (
	premiumWeight = 0.3
	dteWeight     = 0.2
	probWeight    = 0.3
	rrWeight      = 0.2

	// DefaultTopK is how many ranked candidates are returned when the
	// caller does not say otherwise.
	DefaultTopK = 5

	// rrTarget is the reward/risk ratio that earns a full rrScore.
	rrTarget = 0.5
)

// ScoreInputs are the per-candidate values the scorer weighs.
type ScoreInputs struct {
	NetPremium    float64
	TargetPremium float64
	DTE           int
	TargetDTE     int
	POP           float64 // 0-100
	MaxLoss       float64
}

// Score computes the weighted candidate score in [0,1]. Components degrade
// to zero rather than going negative, so one bad dimension cannot cancel a
// good one.
func Score(in ScoreInputs) float64 {
	var premiumScore float64
	if in.TargetPremium > 0 {
		premiumScore = math.Max(0, 1-math.Abs(in.NetPremium-in.TargetPremium)/in.TargetPremium)
	}

	var dteScore float64
	if in.TargetDTE > 0 {
		dteScore = math.Max(0, 1-math.Abs(float64(in.DTE-in.TargetDTE))/float64(in.TargetDTE))
	}

	probScore := in.POP / 100

	var rrScore float64
	if in.MaxLoss > 0 {
		rrScore = math.Min(1, (in.NetPremium/in.MaxLoss)/rrTarget)
	}

	return premiumWeight*premiumScore + dteWeight*dteScore + probWeight*probScore + rrWeight*rrScore
}

// RankStrategies scores every candidate, sorts descending by score with ties
// kept in discovery order, and returns the top K (DefaultTopK when topK <= 0).
// Scoring is independent per candidate and runs in parallel; the context
// bounds the work when the caller's deadline expires mid-batch.
func RankStrategies(ctx context.Context, candidates []models.SpreadStrategy,
	targetPremium float64, targetDTE, topK int) ([]models.SpreadStrategy, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	scored := make([]models.SpreadStrategy, len(candidates))
	g, ctx := errgroup.WithContext(ctx)
	for i := range candidates {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c := candidates[i]
			c.Score = Score(ScoreInputs{
				NetPremium:    c.NetPremium,
				TargetPremium: targetPremium,
				DTE:           c.DTE,
				TargetDTE:     targetDTE,
				POP:           c.ProbabilityOfProfit,
				MaxLoss:       c.MaxLoss,
			})
			scored[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

// ScoreSummary holds distribution statistics over a ranked batch, used in
// reports to show how tight the candidate field was.
type ScoreSummary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Max    float64 `json:"max"`
	Min    float64 `json:"min"`
}

// SummarizeScores computes the score distribution for a candidate batch.
// Empty input returns the zero summary.
func SummarizeScores(candidates []models.SpreadStrategy) ScoreSummary {
	if len(candidates) == 0 {
		return ScoreSummary{}
	}
	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		scores[i] = c.Score
	}
	mean, _ := stats.Mean(scores)
	sd, _ := stats.StandardDeviation(scores)
	maxV, _ := stats.Max(scores)
	minV, _ := stats.Min(scores)
	return ScoreSummary{Mean: mean, StdDev: sd, Max: maxV, Min: minV}
}
