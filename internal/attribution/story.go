package attribution

import (
	"fmt"
	"strings"
)

// Story is the template-based narrative built from rankings and chains.
// Pure text assembly over the decomposed numbers; any LLM flavor text is a
// separate integration outside this package.
type Story struct {
	Title      string   `json:"title"`
	Elements   []string `json:"story_elements"`
	Confidence string   `json:"confidence"`
}

// Confidence labels, by share of attribution magnitude the chains explain.
const (
	confidenceHighShare   = 0.75
	confidenceMediumShare = 0.5
)

// StoryGenerator synthesizes narratives from decompositions.
type StoryGenerator struct {
	maxElements int
}

// NewStoryGenerator creates a generator capped at maxElements story lines;
// values <= 0 select the default of 6.
func NewStoryGenerator(maxElements int) *StoryGenerator {
	if maxElements <= 0 {
		maxElements = 6
	}
	return &StoryGenerator{maxElements: maxElements}
}

// Generate builds the narrative for a set of per-dimension decompositions
// and the global importance ranking.
func (g *StoryGenerator) Generate(ranking []FeatureImportance, decomps []Decomposition) Story {
	elements := make([]string, 0, g.maxElements)

	if len(ranking) > 0 {
		elements = append(elements, fmt.Sprintf(
			"%s is the dominant signal, carrying %.0f%% of overall feature importance.",
			humanize(ranking[0].Feature), ranking[0].Share*100))
	}

	for _, dec := range decomps {
		if len(elements) >= g.maxElements {
			break
		}
		elements = append(elements, describeDimension(dec))
		for _, chain := range dec.Chains {
			if len(elements) >= g.maxElements {
				break
			}
			elements = append(elements, describeChain(dec.Dimension, chain))
		}
	}

	return Story{
		Title:      title(decomps),
		Elements:   elements,
		Confidence: confidenceLabel(decomps),
	}
}

func title(decomps []Decomposition) string {
	var strongest *Decomposition
	for i := range decomps {
		if strongest == nil || absFloat(decomps[i].Delta) > absFloat(strongest.Delta) {
			strongest = &decomps[i]
		}
	}
	if strongest == nil {
		return "No measurable environmental change"
	}
	direction := "improvement"
	if strongest.Delta < 0 {
		direction = "decline"
	}
	return fmt.Sprintf("Environmental %s driven by the %s dimension", direction, strongest.Dimension)
}

func describeDimension(dec Decomposition) string {
	verb := "rose"
	if dec.Delta < 0 {
		verb = "fell"
	}
	return fmt.Sprintf("The %s score %s by %.2f (from %.2f to %.2f).",
		dec.Dimension, verb, absFloat(dec.Delta), dec.Baseline, dec.Predicted)
}

func describeChain(dimension string, chain CausalChain) string {
	names := make([]string, 0, len(chain.Features))
	for _, f := range chain.Features {
		names = append(names, humanize(f.Feature))
	}
	verb := "pushed"
	if chain.Direction == "decreasing" {
		verb = "pulled"
	}
	return fmt.Sprintf("%s %s the %s score %s, explaining %.0f%% of its movement.",
		strings.Join(names, ", "), verb, dimension, chain.Direction, chain.Strength*100)
}

// confidenceLabel rates the narrative by how much of the total attribution
// magnitude the chains cover, averaged across dimensions.
func confidenceLabel(decomps []Decomposition) string {
	if len(decomps) == 0 {
		return "low"
	}
	share := 0.0
	for _, dec := range decomps {
		share += dec.ExplainedShare()
	}
	share /= float64(len(decomps))

	switch {
	case share >= confidenceHighShare:
		return "high"
	case share >= confidenceMediumShare:
		return "medium"
	default:
		return "low"
	}
}

func humanize(feature string) string {
	return strings.ReplaceAll(feature, "_", " ")
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
