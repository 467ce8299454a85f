package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/obscura-collective/obscura-score/internal/attribution"
	"github.com/obscura-collective/obscura-score/internal/economic"
	"github.com/obscura-collective/obscura-score/internal/features"
	"github.com/obscura-collective/obscura-score/internal/monitoring"
	"github.com/obscura-collective/obscura-score/internal/predictor"
	"github.com/obscura-collective/obscura-score/internal/scoring"
)

// Prediction is the full scoring result for one (lat, lon, month) request.
type Prediction struct {
	ID          string             `json:"id"`
	Latitude    float64            `json:"latitude"`
	Longitude   float64            `json:"longitude"`
	Month       int                `json:"month"`
	Outcome     scoring.Outcome    `json:"outcome"`
	Economic    *economic.Estimate `json:"economic_explanation,omitempty"`
	FeatureLen  int                `json:"feature_count"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// Explanation is the attribution narrative for one prediction.
type Explanation struct {
	ID              string                          `json:"id"`
	Latitude        float64                         `json:"latitude"`
	Longitude       float64                         `json:"longitude"`
	Month           int                             `json:"month"`
	Ranking         []attribution.FeatureImportance `json:"feature_importance"`
	Interactions    []attribution.Interaction       `json:"interactions,omitempty"`
	Decompositions  []attribution.Decomposition     `json:"decompositions"`
	Recommendations []string                        `json:"recommendations,omitempty"`
	Story           attribution.Story               `json:"story"`
	GeneratedAt     time.Time                       `json:"generated_at"`
}

// Service runs the sequential per-request pipeline: features, predictors,
// economic estimate, normalization, and optionally attribution. It holds
// only immutable collaborators and is safe for concurrent use.
type Service struct {
	builder    *features.Builder
	climate    predictor.Predictor
	geographic predictor.Predictor
	economic   *economic.Estimator
	normalizer *scoring.Normalizer
	analyzer   *attribution.Analyzer
	decomposer *attribution.Decomposer
	stories    *attribution.StoryGenerator
	logger     *monitoring.Logger
	metrics    *monitoring.Metrics
}

// NewService wires the pipeline from its collaborators.
func NewService(
	builder *features.Builder,
	climate predictor.Predictor,
	geographic predictor.Predictor,
	estimator *economic.Estimator,
	normalizer *scoring.Normalizer,
	analyzer *attribution.Analyzer,
	decomposer *attribution.Decomposer,
	stories *attribution.StoryGenerator,
	logger *monitoring.Logger,
	metrics *monitoring.Metrics,
) *Service {
	return &Service{
		builder:    builder,
		climate:    climate,
		geographic: geographic,
		economic:   estimator,
		normalizer: normalizer,
		analyzer:   analyzer,
		decomposer: decomposer,
		stories:    stories,
		logger:     logger,
		metrics:    metrics,
	}
}

// Predict runs the scoring pipeline. Upstream failures surface as a
// failure outcome, not an error; only invalid inputs return an error.
func (s *Service) Predict(ctx context.Context, latitude, longitude float64, month int) (Prediction, error) {
	start := time.Now()

	vec, err := s.builder.Build(ctx, latitude, longitude, month, features.ExpectedLength())
	if err != nil {
		return Prediction{}, err
	}

	pred := Prediction{
		ID:          uuid.NewString(),
		Latitude:    latitude,
		Longitude:   longitude,
		Month:       month,
		FeatureLen:  vec.Len(),
		GeneratedAt: time.Now().UTC(),
	}

	outcome := s.score(ctx, vec, latitude, longitude, month, &pred)
	pred.Outcome = s.normalizer.Enrich(outcome)

	if s.metrics != nil {
		s.metrics.RecordPrediction(pred.Outcome.Failed())
	}
	if s.logger != nil {
		composite := 0.0
		if pred.Outcome.EnvironmentChangeOutcome != nil {
			composite = *pred.Outcome.EnvironmentChangeOutcome
		}
		s.logger.PredictionLogger(latitude, longitude, month, composite, pred.Outcome.Failed(), time.Since(start))
	}

	return pred, nil
}

// score gathers the three raw dimension scores. The first upstream
// failure short-circuits into a failure outcome that is passed through
// unchanged downstream.
func (s *Service) score(ctx context.Context, vec features.Vector, latitude, longitude float64, month int, pred *Prediction) scoring.Outcome {
	climateScore, err := s.climate.Predict(ctx, vec)
	if err != nil {
		return scoring.NewFailure("climate model: " + err.Error())
	}

	geographicScore, err := s.geographic.Predict(ctx, vec)
	if err != nil {
		return scoring.NewFailure("geographic model: " + err.Error())
	}

	estimate, err := s.economic.Estimate(latitude, longitude, month)
	if err != nil {
		return scoring.NewFailure("economic estimator: " + err.Error())
	}
	pred.Economic = &estimate

	return scoring.Outcome{
		Scores: &scoring.RawScores{
			Climate:    climateScore,
			Geographic: geographicScore,
			Economic:   estimate.Score,
		},
	}
}

// Explain runs the attribution path: per-dimension SHAP explanations,
// additivity-enforcing decomposition, and the narrative.
func (s *Service) Explain(ctx context.Context, latitude, longitude float64, month int) (Explanation, error) {
	vec, err := s.builder.Build(ctx, latitude, longitude, month, features.ExpectedLength())
	if err != nil {
		return Explanation{}, err
	}

	climateAttr, err := s.climate.Explain(ctx, vec)
	if err != nil {
		return Explanation{}, err
	}
	geographicAttr, err := s.geographic.Explain(ctx, vec)
	if err != nil {
		return Explanation{}, err
	}

	batch := []attribution.Attribution{climateAttr, geographicAttr}
	ranking, err := s.analyzer.Rank(batch)
	if err != nil {
		return Explanation{}, err
	}

	climateDec, err := s.decomposer.Decompose(string(scoring.Climate), climateAttr.BaseValue, climateAttr.Prediction, climateAttr)
	if err != nil {
		return Explanation{}, err
	}
	geographicDec, err := s.decomposer.Decompose(string(scoring.Geographic), geographicAttr.BaseValue, geographicAttr.Prediction, geographicAttr)
	if err != nil {
		return Explanation{}, err
	}

	decomps := []attribution.Decomposition{climateDec, geographicDec}
	interactions := s.analyzer.TopInteractions(climateAttr)

	return Explanation{
		ID:              uuid.NewString(),
		Latitude:        latitude,
		Longitude:       longitude,
		Month:           month,
		Ranking:         ranking,
		Interactions:    interactions,
		Decompositions:  decomps,
		Recommendations: s.analyzer.Recommendations(ranking, interactions),
		Story:           s.stories.Generate(ranking, decomps),
		GeneratedAt:     time.Now().UTC(),
	}, nil
}
