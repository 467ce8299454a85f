package attribution

import (
	"fmt"
	"math"
	"sort"
)

// FeatureImportance is one entry of the global importance ranking.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
	Share      float64 `json:"share"`
}

// Interaction is a pairwise feature interaction by absolute strength.
type Interaction struct {
	FeatureA string  `json:"feature_a"`
	FeatureB string  `json:"feature_b"`
	Strength float64 `json:"strength"`
}

// AnalyzerConfig holds the threshold rules for recommendation text.
type AnalyzerConfig struct {
	DominanceShare      float64 // single feature share that flags data-quality review
	NegligibleShare     float64 // share below which features count as inert
	StrongInteraction   float64 // interaction strength worth surfacing
	TopInteractionCount int
}

// DefaultAnalyzerConfig returns the shipped thresholds.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		DominanceShare:      0.5,
		NegligibleShare:     0.01,
		StrongInteraction:   0.1,
		TopInteractionCount: 5,
	}
}

// Analyzer aggregates attribution batches into importance rankings,
// interaction lists, and advisory text. Stateless; safe for concurrent use.
type Analyzer struct {
	cfg AnalyzerConfig
}

// NewAnalyzer creates an analyzer with the given thresholds.
func NewAnalyzer(cfg AnalyzerConfig) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Rank computes the global feature importance ranking: mean absolute
// contribution per feature across the batch, descending.
func (a *Analyzer) Rank(batch []Attribution) ([]FeatureImportance, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	order := make([]string, 0)
	seen := make(map[string]bool)

	for _, attr := range batch {
		if err := attr.Validate(); err != nil {
			return nil, err
		}
		for i, name := range attr.FeatureNames {
			sums[name] += math.Abs(attr.Contributions[i])
			counts[name]++
			if !seen[name] {
				seen[name] = true
				order = append(order, name)
			}
		}
	}

	ranking := make([]FeatureImportance, 0, len(order))
	total := 0.0
	for _, name := range order {
		mean := sums[name] / float64(counts[name])
		total += mean
		ranking = append(ranking, FeatureImportance{Feature: name, Importance: mean})
	}
	if total > 0 {
		for i := range ranking {
			ranking[i].Share = ranking[i].Importance / total
		}
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Importance > ranking[j].Importance
	})
	return ranking, nil
}

// TopInteractions extracts the strongest pairwise interactions from an
// attribution's interaction matrix, if one was supplied.
func (a *Analyzer) TopInteractions(attr Attribution) []Interaction {
	n := len(attr.FeatureNames)
	if len(attr.Interactions) != n {
		return nil
	}

	interactions := make([]Interaction, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		if len(attr.Interactions[i]) != n {
			return nil
		}
		for j := i + 1; j < n; j++ {
			interactions = append(interactions, Interaction{
				FeatureA: attr.FeatureNames[i],
				FeatureB: attr.FeatureNames[j],
				Strength: math.Abs(attr.Interactions[i][j]),
			})
		}
	}

	sort.SliceStable(interactions, func(i, j int) bool {
		return interactions[i].Strength > interactions[j].Strength
	})
	if len(interactions) > a.cfg.TopInteractionCount {
		interactions = interactions[:a.cfg.TopInteractionCount]
	}
	return interactions
}

// Recommendations derives advisory text from threshold rules over the
// ranking and interactions. Advisory only: no further modeling happens here.
func (a *Analyzer) Recommendations(ranking []FeatureImportance, interactions []Interaction) []string {
	recs := make([]string, 0, 4)

	if len(ranking) == 0 {
		return recs
	}

	if ranking[0].Share > a.cfg.DominanceShare {
		recs = append(recs, fmt.Sprintf(
			"feature %s accounts for %.0f%% of total importance; review its data quality before trusting the model",
			ranking[0].Feature, ranking[0].Share*100))
	}

	inert := 0
	for _, fi := range ranking {
		if fi.Share < a.cfg.NegligibleShare {
			inert++
		}
	}
	if inert > len(ranking)/2 {
		recs = append(recs, fmt.Sprintf(
			"%d of %d features contribute under %.0f%% each; consider pruning the feature set",
			inert, len(ranking), a.cfg.NegligibleShare*100))
	}

	for _, in := range interactions {
		if in.Strength >= a.cfg.StrongInteraction {
			recs = append(recs, fmt.Sprintf(
				"features %s and %s interact strongly (%.3f); their effects should not be read in isolation",
				in.FeatureA, in.FeatureB, in.Strength))
			break
		}
	}

	return recs
}
