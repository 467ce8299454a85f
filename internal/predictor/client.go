package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/obscura-collective/obscura-score/internal/attribution"
	"github.com/obscura-collective/obscura-score/internal/errors"
	"github.com/obscura-collective/obscura-score/internal/features"
	"github.com/obscura-collective/obscura-score/internal/monitoring"
	"github.com/obscura-collective/obscura-score/internal/resilience"
)

// Predictor is the contract of an external regression model service: a
// raw score in the model's native range, and optionally a SHAP-style
// explanation of that score.
type Predictor interface {
	Predict(ctx context.Context, vec features.Vector) (float64, error)
	Explain(ctx context.Context, vec features.Vector) (attribution.Attribution, error)
}

// HTTPPredictor talks to one model server over REST.
type HTTPPredictor struct {
	name    string
	baseURL string
	client  *http.Client
	metrics *monitoring.Metrics
}

// NewHTTPPredictor creates a model client. name labels metrics and errors
// (e.g. "climate_model").
func NewHTTPPredictor(name, baseURL string, metrics *monitoring.Metrics) *HTTPPredictor {
	return &HTTPPredictor{
		name:    name,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		metrics: metrics,
	}
}

type predictRequest struct {
	FeatureNames []string  `json:"feature_names"`
	Features     []float64 `json:"features"`
}

type predictResponse struct {
	Score float64 `json:"score"`
}

type explainResponse struct {
	Contributions []float64   `json:"shap_values"`
	BaseValue     float64     `json:"base_value"`
	Prediction    float64     `json:"prediction"`
	Interactions  [][]float64 `json:"interaction_values,omitempty"`
}

// Predict returns the model's raw score for the feature vector.
func (p *HTTPPredictor) Predict(ctx context.Context, vec features.Vector) (float64, error) {
	var payload predictResponse
	err := p.post(ctx, "/predict", vec, &payload)
	if err != nil {
		return 0, err
	}
	return payload.Score, nil
}

// Explain returns the model's SHAP attribution for the feature vector.
func (p *HTTPPredictor) Explain(ctx context.Context, vec features.Vector) (attribution.Attribution, error) {
	var payload explainResponse
	if err := p.post(ctx, "/explain", vec, &payload); err != nil {
		return attribution.Attribution{}, err
	}

	attr := attribution.Attribution{
		FeatureNames:  vec.Names,
		FeatureValues: vec.Values,
		Contributions: payload.Contributions,
		BaseValue:     payload.BaseValue,
		Prediction:    payload.Prediction,
		Interactions:  payload.Interactions,
	}
	if err := attr.Validate(); err != nil {
		return attribution.Attribution{}, errors.WrapError(err, "%s returned malformed attribution", p.name)
	}
	return attr, nil
}

func (p *HTTPPredictor) post(ctx context.Context, path string, vec features.Vector, out interface{}) error {
	body, err := json.Marshal(predictRequest{
		FeatureNames: vec.Names,
		Features:     vec.Values,
	})
	if err != nil {
		return errors.NewInternalError("failed to marshal model request", err)
	}

	err = resilience.Retry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return errors.NewInternalError("failed to create model request", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			return errors.NewExternalAPIError(p.name, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return errors.NewExternalAPIError(p.name,
				fmt.Errorf("unexpected status code: %d", resp.StatusCode))
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.NewExternalAPIError(p.name,
				errors.WrapError(err, "failed to decode model response"))
		}
		return nil
	})

	if p.metrics != nil {
		p.metrics.IncrementExternalCall(p.name, err != nil)
	}
	return err
}
