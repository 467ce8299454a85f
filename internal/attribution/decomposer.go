package attribution

import (
	"math"
	"sort"
)

// FeatureContribution is one feature's renormalized share of a score delta.
type FeatureContribution struct {
	Feature      string  `json:"feature"`
	Contribution float64 `json:"contribution"`
	Share        float64 `json:"share"`
}

// CausalChain is a ranked group of features whose combined contribution
// pushes a dimension in the same direction.
type CausalChain struct {
	Direction string                `json:"direction"`
	Features  []FeatureContribution `json:"features"`
	Strength  float64               `json:"strength"`
}

// Decomposition explains one dimension's score delta feature by feature.
// The contributions are rescaled so they sum exactly to Delta, enforcing
// the additivity contract rather than assuming the explainer honored it.
type Decomposition struct {
	Dimension     string                `json:"dimension"`
	Baseline      float64               `json:"baseline"`
	Predicted     float64               `json:"predicted"`
	Delta         float64               `json:"delta"`
	Contributions []FeatureContribution `json:"contributions"`
	Chains        []CausalChain         `json:"chains"`
}

// ExplainedShare is the fraction of total contribution magnitude covered
// by the causal chains.
func (d Decomposition) ExplainedShare() float64 {
	total := 0.0
	for _, c := range d.Contributions {
		total += math.Abs(c.Contribution)
	}
	if total == 0 {
		return 0
	}
	explained := 0.0
	for _, chain := range d.Chains {
		for _, f := range chain.Features {
			explained += math.Abs(f.Contribution)
		}
	}
	return explained / total
}

// Decomposer turns raw attributions into per-dimension decompositions and
// causal chains. Stateless; safe for concurrent use.
type Decomposer struct {
	minChainStrength float64
}

// DefaultMinChainStrength is the minimum share of total contribution
// magnitude a feature needs to join a causal chain.
const DefaultMinChainStrength = 0.05

// NewDecomposer creates a decomposer; strength <= 0 selects the default.
func NewDecomposer(minChainStrength float64) *Decomposer {
	if minChainStrength <= 0 {
		minChainStrength = DefaultMinChainStrength
	}
	return &Decomposer{minChainStrength: minChainStrength}
}

// Decompose rescales attr's contributions so they sum exactly to
// (predicted - baseline) and extracts the causal chains.
func (d *Decomposer) Decompose(dimension string, baseline, predicted float64, attr Attribution) (Decomposition, error) {
	if err := attr.Validate(); err != nil {
		return Decomposition{}, err
	}

	delta := predicted - baseline
	raw := attr.Contributions
	rawSum := 0.0
	for _, c := range raw {
		rawSum += c
	}

	// Renormalize so additivity holds for this dimension's delta. When the
	// raw sum is numerically zero the delta cannot be apportioned, so the
	// contributions stay zero and additivity holds trivially for delta 0.
	scaled := make([]float64, len(raw))
	if math.Abs(rawSum) > 1e-12 {
		scale := delta / rawSum
		for i, c := range raw {
			scaled[i] = c * scale
		}
	}

	total := 0.0
	for _, c := range scaled {
		total += math.Abs(c)
	}

	contributions := make([]FeatureContribution, len(scaled))
	for i, c := range scaled {
		share := 0.0
		if total > 0 {
			share = math.Abs(c) / total
		}
		contributions[i] = FeatureContribution{
			Feature:      attr.FeatureNames[i],
			Contribution: c,
			Share:        share,
		}
	}

	sort.SliceStable(contributions, func(i, j int) bool {
		return math.Abs(contributions[i].Contribution) > math.Abs(contributions[j].Contribution)
	})

	return Decomposition{
		Dimension:     dimension,
		Baseline:      baseline,
		Predicted:     predicted,
		Delta:         delta,
		Contributions: contributions,
		Chains:        d.chains(contributions, total),
	}, nil
}

// chains groups the ranked contributions by direction, keeping only
// features whose individual share clears the minimum strength threshold.
// Chains are ranked by combined strength.
func (d *Decomposer) chains(ranked []FeatureContribution, total float64) []CausalChain {
	if total == 0 {
		return nil
	}

	var increasing, decreasing []FeatureContribution
	for _, fc := range ranked {
		if fc.Share < d.minChainStrength {
			continue
		}
		if fc.Contribution >= 0 {
			increasing = append(increasing, fc)
		} else {
			decreasing = append(decreasing, fc)
		}
	}

	chains := make([]CausalChain, 0, 2)
	if len(increasing) > 0 {
		chains = append(chains, CausalChain{
			Direction: "increasing",
			Features:  increasing,
			Strength:  chainStrength(increasing, total),
		})
	}
	if len(decreasing) > 0 {
		chains = append(chains, CausalChain{
			Direction: "decreasing",
			Features:  decreasing,
			Strength:  chainStrength(decreasing, total),
		})
	}

	sort.SliceStable(chains, func(i, j int) bool {
		return chains[i].Strength > chains[j].Strength
	})
	return chains
}

func chainStrength(features []FeatureContribution, total float64) float64 {
	sum := 0.0
	for _, f := range features {
		sum += math.Abs(f.Contribution)
	}
	return sum / total
}
