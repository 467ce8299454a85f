package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obscura-collective/obscura-score/internal/attribution"
	"github.com/obscura-collective/obscura-score/internal/economic"
	"github.com/obscura-collective/obscura-score/internal/features"
	"github.com/obscura-collective/obscura-score/internal/scoring"
)

// stubCollector returns the same flat snapshot for every lag.
type stubCollector struct {
	value float64
}

func (s *stubCollector) Fetch(context.Context, float64, float64, int, int) (map[features.Variable]float64, error) {
	snap := make(map[features.Variable]float64, len(features.Variables()))
	for _, v := range features.Variables() {
		snap[v] = s.value
	}
	return snap, nil
}

// stubPredictor returns a fixed score, or fails on demand.
type stubPredictor struct {
	score   float64
	err     error
	baseVal float64
}

func (s *stubPredictor) Predict(context.Context, features.Vector) (float64, error) {
	return s.score, s.err
}

func (s *stubPredictor) Explain(_ context.Context, vec features.Vector) (attribution.Attribution, error) {
	if s.err != nil {
		return attribution.Attribution{}, s.err
	}
	contributions := make([]float64, vec.Len())
	if vec.Len() > 0 {
		// All movement on the first feature keeps the math easy to follow.
		contributions[0] = s.score - s.baseVal
	}
	return attribution.Attribution{
		FeatureNames:  vec.Names,
		FeatureValues: vec.Values,
		Contributions: contributions,
		BaseValue:     s.baseVal,
		Prediction:    s.score,
	}, nil
}

func newTestService(t *testing.T, climate, geographic *stubPredictor) *Service {
	t.Helper()

	normalizer, err := scoring.NewNormalizer(scoring.DefaultConfig(), nil)
	require.NoError(t, err)

	return NewService(
		features.NewBuilder(&stubCollector{value: 15.0}, nil),
		climate,
		geographic,
		economic.NewEstimator(nil, nil),
		normalizer,
		attribution.NewAnalyzer(attribution.DefaultAnalyzerConfig()),
		attribution.NewDecomposer(0),
		attribution.NewStoryGenerator(0),
		nil,
		nil,
	)
}

func TestPredictSuccess(t *testing.T) {
	svc := newTestService(t,
		&stubPredictor{score: 0.0},
		&stubPredictor{score: 0.0},
	)

	pred, err := svc.Predict(context.Background(), 51.5074, -0.1278, 7)
	require.NoError(t, err)

	assert.NotEmpty(t, pred.ID)
	assert.Equal(t, 66, pred.FeatureLen)
	assert.False(t, pred.Outcome.Failed())

	require.NotNil(t, pred.Outcome.Scores)
	assert.Equal(t, 0.0, pred.Outcome.Scores.Climate)
	assert.Equal(t, 0.0, pred.Outcome.Scores.Geographic)

	require.NotNil(t, pred.Economic)
	assert.Equal(t, "london", pred.Economic.NearestCity)
	assert.Equal(t, pred.Economic.Score, pred.Outcome.Scores.Economic)

	require.NotNil(t, pred.Outcome.Normalized)
	assert.InDelta(t, 60.9756, pred.Outcome.Normalized.Climate, 1e-3)
	assert.InDelta(t, 17.3913, pred.Outcome.Normalized.Geographic, 1e-3)
	require.NotNil(t, pred.Outcome.EnvironmentChangeOutcome)
	assert.GreaterOrEqual(t, *pred.Outcome.EnvironmentChangeOutcome, 0.0)
	assert.LessOrEqual(t, *pred.Outcome.EnvironmentChangeOutcome, 100.0)
}

func TestPredictClimateFailureBecomesOutcome(t *testing.T) {
	svc := newTestService(t,
		&stubPredictor{err: fmt.Errorf("connection refused")},
		&stubPredictor{score: 0.5},
	)

	pred, err := svc.Predict(context.Background(), 51.5074, -0.1278, 7)
	require.NoError(t, err)

	require.True(t, pred.Outcome.Failed())
	assert.Contains(t, pred.Outcome.Failure.Reason, "climate model")
	assert.Nil(t, pred.Outcome.Scores)
	assert.Nil(t, pred.Outcome.Normalized)
	assert.Nil(t, pred.Outcome.EnvironmentChangeOutcome)
}

func TestPredictGeographicFailureBecomesOutcome(t *testing.T) {
	svc := newTestService(t,
		&stubPredictor{score: 0.5},
		&stubPredictor{err: fmt.Errorf("timeout")},
	)

	pred, err := svc.Predict(context.Background(), 40.7128, -74.0060, 3)
	require.NoError(t, err)

	require.True(t, pred.Outcome.Failed())
	assert.Contains(t, pred.Outcome.Failure.Reason, "geographic model")
}

func TestPredictInvalidInputIsAnError(t *testing.T) {
	svc := newTestService(t, &stubPredictor{}, &stubPredictor{})

	_, err := svc.Predict(context.Background(), 91.0, 0.0, 7)
	assert.Error(t, err)

	_, err = svc.Predict(context.Background(), 0.0, 0.0, 0)
	assert.Error(t, err)
}

func TestExplainSuccess(t *testing.T) {
	svc := newTestService(t,
		&stubPredictor{score: 0.8, baseVal: 0.2},
		&stubPredictor{score: 0.4, baseVal: 0.5},
	)

	exp, err := svc.Explain(context.Background(), 51.5074, -0.1278, 7)
	require.NoError(t, err)

	assert.NotEmpty(t, exp.ID)
	require.Len(t, exp.Decompositions, 2)

	climate := exp.Decompositions[0]
	assert.Equal(t, "climate", climate.Dimension)
	assert.InDelta(t, 0.6, climate.Delta, 1e-9)

	// Additivity holds per dimension after decomposition.
	for _, dec := range exp.Decompositions {
		sum := 0.0
		for _, c := range dec.Contributions {
			sum += c.Contribution
		}
		assert.InDelta(t, dec.Delta, sum, 1e-9)
	}

	require.NotEmpty(t, exp.Ranking)
	assert.NotEmpty(t, exp.Story.Title)
	assert.NotEmpty(t, exp.Story.Elements)
}

func TestExplainPredictorFailureIsAnError(t *testing.T) {
	svc := newTestService(t,
		&stubPredictor{err: fmt.Errorf("boom")},
		&stubPredictor{score: 0.4},
	)

	_, err := svc.Explain(context.Background(), 51.5074, -0.1278, 7)
	assert.Error(t, err)
}
