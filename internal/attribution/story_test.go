package attribution

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDecomposition(dimension string, delta float64, explained float64) Decomposition {
	// One chain covering `explained` of the magnitude, remainder loose.
	chainPart := delta * explained
	loosePart := delta * (1 - explained)
	return Decomposition{
		Dimension: dimension,
		Baseline:  0.0,
		Predicted: delta,
		Delta:     delta,
		Contributions: []FeatureContribution{
			{Feature: "temperature_current", Contribution: chainPart, Share: explained},
			{Feature: "humidity_current", Contribution: loosePart, Share: 1 - explained},
		},
		Chains: []CausalChain{{
			Direction: "increasing",
			Features: []FeatureContribution{
				{Feature: "temperature_current", Contribution: chainPart, Share: explained},
			},
			Strength: explained,
		}},
	}
}

func TestGenerateStory(t *testing.T) {
	gen := NewStoryGenerator(0)

	ranking := []FeatureImportance{
		{Feature: "temperature_current", Importance: 0.5, Share: 0.42},
		{Feature: "humidity_current", Importance: 0.3, Share: 0.25},
	}
	decomps := []Decomposition{
		testDecomposition("climate", 0.8, 0.9),
		testDecomposition("geographic", 0.2, 0.8),
	}

	story := gen.Generate(ranking, decomps)

	assert.Equal(t, "Environmental improvement driven by the climate dimension", story.Title)
	require.NotEmpty(t, story.Elements)
	assert.LessOrEqual(t, len(story.Elements), 6)

	// Lead element names the dominant feature with underscores humanized.
	assert.Contains(t, story.Elements[0], "temperature current")
	assert.Contains(t, story.Elements[0], "42%")

	assert.Equal(t, "high", story.Confidence)
}

func TestGenerateStoryDeclineTitle(t *testing.T) {
	gen := NewStoryGenerator(0)

	decomps := []Decomposition{testDecomposition("economic", -0.5, 0.6)}
	story := gen.Generate(nil, decomps)

	assert.Equal(t, "Environmental decline driven by the economic dimension", story.Title)
}

func TestGenerateStoryEmpty(t *testing.T) {
	gen := NewStoryGenerator(0)

	story := gen.Generate(nil, nil)
	assert.Equal(t, "No measurable environmental change", story.Title)
	assert.Empty(t, story.Elements)
	assert.Equal(t, "low", story.Confidence)
}

func TestGenerateStoryCapsElements(t *testing.T) {
	gen := NewStoryGenerator(3)

	ranking := []FeatureImportance{{Feature: "a", Share: 0.5}}
	decomps := []Decomposition{
		testDecomposition("climate", 0.4, 0.9),
		testDecomposition("geographic", 0.3, 0.9),
		testDecomposition("economic", 0.2, 0.9),
	}

	story := gen.Generate(ranking, decomps)
	assert.Len(t, story.Elements, 3)
}

func TestConfidenceLabels(t *testing.T) {
	tests := []struct {
		name      string
		explained float64
		expected  string
	}{
		{"high at threshold", 0.75, "high"},
		{"medium at threshold", 0.5, "medium"},
		{"low below", 0.49, "low"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decomps := []Decomposition{testDecomposition("climate", 1.0, tt.explained)}
			assert.Equal(t, tt.expected, confidenceLabel(decomps))
		})
	}
}

func TestDescribeChainDirectionVerbs(t *testing.T) {
	up := CausalChain{
		Direction: "increasing",
		Features:  []FeatureContribution{{Feature: "no2"}},
		Strength:  0.6,
	}
	down := CausalChain{
		Direction: "decreasing",
		Features:  []FeatureContribution{{Feature: "wind_speed"}},
		Strength:  0.4,
	}

	assert.True(t, strings.Contains(describeChain("climate", up), "pushed"))
	assert.True(t, strings.Contains(describeChain("climate", down), "pulled"))
	assert.Contains(t, describeChain("climate", down), "wind speed")
}
