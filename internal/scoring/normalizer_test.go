package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := NewNormalizer(DefaultConfig(), nil)
	require.NoError(t, err)
	return n
}

func TestNewNormalizerRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights[Climate] = 0.9

	_, err := NewNormalizer(cfg, nil)
	assert.Error(t, err)
}

func TestNormalizeKnownValues(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name      string
		raw       float64
		dimension Dimension
		expected  float64
	}{
		{"climate zero", 0, Climate, 60.9756},
		{"climate min", -2.5, Climate, 0},
		{"climate max", 1.6, Climate, 100},
		{"geographic zero", 0, Geographic, 17.3913},
		{"economic midpoint", 0.65, Economic, 50.0},
		{"economic min", 0.1, Economic, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Normalize(tt.raw, tt.dimension)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-3)
		})
	}
}

func TestNormalizeClampsOutOfRange(t *testing.T) {
	n := newTestNormalizer(t)

	low, err := n.Normalize(-10.0, Climate)
	require.NoError(t, err)
	assert.Equal(t, 0.0, low)

	high, err := n.Normalize(10.0, Climate)
	require.NoError(t, err)
	assert.Equal(t, 100.0, high)
}

func TestNormalizeUnknownDimension(t *testing.T) {
	n := newTestNormalizer(t)

	_, err := n.Normalize(0.5, Dimension("sentiment"))
	assert.Error(t, err)
}

func TestCompositeKnownValue(t *testing.T) {
	n := newTestNormalizer(t)

	climate, _ := n.Normalize(0, Climate)
	geographic, _ := n.Normalize(0, Geographic)
	economic, _ := n.Normalize(0.65, Economic)

	composite := n.Composite(climate, economic, geographic)
	assert.InDelta(t, 43.51, composite, 0.01)
}

func TestCompositeBounded(t *testing.T) {
	n := newTestNormalizer(t)

	assert.Equal(t, 100.0, n.Composite(100, 100, 100))
	assert.Equal(t, 0.0, n.Composite(0, 0, 0))

	composite := n.Composite(73.2, 18.9, 55.1)
	assert.GreaterOrEqual(t, composite, 0.0)
	assert.LessOrEqual(t, composite, 100.0)
}

func TestEnrichSuccess(t *testing.T) {
	n := newTestNormalizer(t)

	o := n.Enrich(Outcome{Scores: &RawScores{Climate: 0, Geographic: 0, Economic: 0.65}})

	require.NotNil(t, o.Normalized)
	require.NotNil(t, o.EnvironmentChangeOutcome)
	require.NotNil(t, o.ContributionBreakdown)
	require.NotNil(t, o.Metadata)

	assert.InDelta(t, 60.9756, o.Normalized.Climate, 1e-3)
	assert.InDelta(t, 17.3913, o.Normalized.Geographic, 1e-3)
	assert.InDelta(t, 50.0, o.Normalized.Economic, 1e-3)
	assert.InDelta(t, 43.51, *o.EnvironmentChangeOutcome, 0.01)

	// The breakdown re-sums to the composite.
	sum := o.ContributionBreakdown.Climate + o.ContributionBreakdown.Economic + o.ContributionBreakdown.Geographic
	assert.InDelta(t, *o.EnvironmentChangeOutcome, sum, 1e-9)

	assert.Equal(t, 1, o.Metadata.ConfigVersion)
}

func TestEnrichPassesFailureThrough(t *testing.T) {
	n := newTestNormalizer(t)

	failure := NewFailure("climate model: connection refused")
	assert.Equal(t, failure, n.Enrich(failure))
	assert.True(t, failure.Failed())
}

func TestEnrichPassesEmptyOutcomeThrough(t *testing.T) {
	n := newTestNormalizer(t)

	empty := Outcome{}
	assert.Equal(t, empty, n.Enrich(empty))
}

func TestEnrichUsesOneSnapshotUnderRecalibration(t *testing.T) {
	n := newTestNormalizer(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			width := 2.0 + float64(i%7)
			_, err := n.UpdateScoreRanges(map[Dimension]Range{
				Climate: {Min: -width, Max: width},
			})
			require.NoError(t, err)
		}
	}()

	// Every enriched outcome must be self-consistent: recomputing the
	// normalization from its own recorded metadata reproduces the values,
	// so one enrichment never mixes two calibration versions.
	for i := 0; i < 500; i++ {
		o := n.Enrich(Outcome{Scores: &RawScores{Climate: 0.5, Geographic: 0.3, Economic: 0.65}})
		require.NotNil(t, o.Metadata)

		r := o.Metadata.Ranges[Climate]
		expected := (o.Scores.Climate - r.Min) / (r.Max - r.Min) * 100
		assert.InDelta(t, expected, o.Normalized.Climate, 1e-9)

		w := o.Metadata.Weights
		composite := w[Climate]*o.Normalized.Climate +
			w[Economic]*o.Normalized.Economic +
			w[Geographic]*o.Normalized.Geographic
		assert.InDelta(t, composite, *o.EnvironmentChangeOutcome, 1e-9)
	}
	<-done
}

func TestUpdateScoreRanges(t *testing.T) {
	n := newTestNormalizer(t)

	next, err := n.UpdateScoreRanges(map[Dimension]Range{
		Climate: {Min: -5.0, Max: 5.0},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, next.Version)

	// New calibration is visible to subsequent calls.
	got, err := n.Normalize(0, Climate)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, got, 1e-9)

	// Untouched dimensions keep their ranges.
	assert.Equal(t, Range{Min: 0.1, Max: 1.2}, n.Config().Ranges[Economic])
}

func TestUpdateScoreRangesRejectsUnknownDimension(t *testing.T) {
	n := newTestNormalizer(t)

	_, err := n.UpdateScoreRanges(map[Dimension]Range{"sentiment": {Min: 0, Max: 1}})
	assert.Error(t, err)
	assert.Equal(t, 1, n.Config().Version)
}

func TestUpdateScoreRangesRejectsInvertedRange(t *testing.T) {
	n := newTestNormalizer(t)

	_, err := n.UpdateScoreRanges(map[Dimension]Range{Climate: {Min: 2.0, Max: -2.0}})
	assert.Error(t, err)
	assert.Equal(t, 1, n.Config().Version)
}
