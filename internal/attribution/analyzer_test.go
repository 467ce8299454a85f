package attribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankOrdersByMeanAbsoluteContribution(t *testing.T) {
	analyzer := NewAnalyzer(DefaultAnalyzerConfig())

	batch := []Attribution{
		{
			FeatureNames:  []string{"temperature", "humidity", "no2"},
			Contributions: []float64{0.4, -0.1, 0.2},
			BaseValue:     0.5,
			Prediction:    1.0,
		},
		{
			FeatureNames:  []string{"temperature", "humidity", "no2"},
			Contributions: []float64{-0.6, 0.1, 0.0},
			BaseValue:     0.5,
			Prediction:    0.0,
		},
	}

	ranking, err := analyzer.Rank(batch)
	require.NoError(t, err)
	require.Len(t, ranking, 3)

	assert.Equal(t, "temperature", ranking[0].Feature)
	assert.InDelta(t, 0.5, ranking[0].Importance, 1e-9)
	assert.Equal(t, "no2", ranking[1].Feature)
	assert.Equal(t, "humidity", ranking[2].Feature)

	// Shares sum to one.
	total := 0.0
	for _, fi := range ranking {
		total += fi.Share
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestRankEmptyBatch(t *testing.T) {
	analyzer := NewAnalyzer(DefaultAnalyzerConfig())

	ranking, err := analyzer.Rank(nil)
	require.NoError(t, err)
	assert.Empty(t, ranking)
}

func TestRankRejectsMalformedAttribution(t *testing.T) {
	analyzer := NewAnalyzer(DefaultAnalyzerConfig())

	_, err := analyzer.Rank([]Attribution{{
		FeatureNames:  []string{"a", "b"},
		Contributions: []float64{0.1},
	}})
	assert.Error(t, err)
}

func TestTopInteractions(t *testing.T) {
	analyzer := NewAnalyzer(AnalyzerConfig{TopInteractionCount: 2})

	attr := Attribution{
		FeatureNames:  []string{"a", "b", "c"},
		Contributions: []float64{0.1, 0.2, 0.3},
		Interactions: [][]float64{
			{0.0, 0.05, -0.30},
			{0.05, 0.0, 0.10},
			{-0.30, 0.10, 0.0},
		},
	}

	interactions := analyzer.TopInteractions(attr)
	require.Len(t, interactions, 2)

	assert.Equal(t, "a", interactions[0].FeatureA)
	assert.Equal(t, "c", interactions[0].FeatureB)
	assert.InDelta(t, 0.30, interactions[0].Strength, 1e-9)
	assert.InDelta(t, 0.10, interactions[1].Strength, 1e-9)
}

func TestTopInteractionsMissingMatrix(t *testing.T) {
	analyzer := NewAnalyzer(DefaultAnalyzerConfig())

	attr := Attribution{
		FeatureNames:  []string{"a", "b"},
		Contributions: []float64{0.1, 0.2},
	}
	assert.Nil(t, analyzer.TopInteractions(attr))

	// Ragged matrix is treated as absent.
	attr.Interactions = [][]float64{{0, 1}}
	assert.Nil(t, analyzer.TopInteractions(attr))
}

func TestRecommendations(t *testing.T) {
	analyzer := NewAnalyzer(DefaultAnalyzerConfig())

	t.Run("dominant feature flagged", func(t *testing.T) {
		ranking := []FeatureImportance{
			{Feature: "temperature", Importance: 0.9, Share: 0.75},
			{Feature: "humidity", Importance: 0.3, Share: 0.25},
		}
		recs := analyzer.Recommendations(ranking, nil)
		require.NotEmpty(t, recs)
		assert.Contains(t, recs[0], "temperature")
	})

	t.Run("inert majority flagged", func(t *testing.T) {
		ranking := []FeatureImportance{
			{Feature: "a", Share: 0.97},
			{Feature: "b", Share: 0.005},
			{Feature: "c", Share: 0.005},
		}
		recs := analyzer.Recommendations(ranking, nil)

		found := false
		for _, r := range recs {
			if r == "2 of 3 features contribute under 1% each; consider pruning the feature set" {
				found = true
			}
		}
		assert.True(t, found, "expected pruning recommendation, got %v", recs)
	})

	t.Run("strong interaction flagged once", func(t *testing.T) {
		ranking := []FeatureImportance{{Feature: "a", Share: 0.4}, {Feature: "b", Share: 0.6}}
		interactions := []Interaction{
			{FeatureA: "a", FeatureB: "b", Strength: 0.2},
			{FeatureA: "a", FeatureB: "c", Strength: 0.15},
		}
		recs := analyzer.Recommendations(ranking, interactions)

		count := 0
		for _, r := range recs {
			if len(r) > 8 && r[:8] == "features" {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("empty ranking yields nothing", func(t *testing.T) {
		assert.Empty(t, analyzer.Recommendations(nil, nil))
	})
}
