package predictor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obscura-collective/obscura-score/internal/features"
)

func testVector() features.Vector {
	return features.Vector{
		Names:  []string{"temperature_current", "humidity_current"},
		Values: []float64{15.0, 0.7},
	}
}

func TestPredict(t *testing.T) {
	var gotBody struct {
		FeatureNames []string  `json:"feature_names"`
		Features     []float64 `json:"features"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predict", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]float64{"score": -0.42})
	}))
	defer srv.Close()

	p := NewHTTPPredictor("climate_model", srv.URL, nil)
	score, err := p.Predict(context.Background(), testVector())
	require.NoError(t, err)

	assert.Equal(t, -0.42, score)
	assert.Equal(t, []string{"temperature_current", "humidity_current"}, gotBody.FeatureNames)
	assert.Equal(t, []float64{15.0, 0.7}, gotBody.Features)
}

func TestExplain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/explain", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"shap_values": []float64{0.3, -0.1},
			"base_value":  0.2,
			"prediction":  0.4,
		})
	}))
	defer srv.Close()

	p := NewHTTPPredictor("climate_model", srv.URL, nil)
	attr, err := p.Explain(context.Background(), testVector())
	require.NoError(t, err)

	assert.Equal(t, []float64{0.3, -0.1}, attr.Contributions)
	assert.Equal(t, 0.2, attr.BaseValue)
	assert.Equal(t, 0.4, attr.Prediction)
	assert.Equal(t, testVector().Names, attr.FeatureNames)
}

func TestExplainRejectsMismatchedContributions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"shap_values": []float64{0.3},
			"base_value":  0.2,
			"prediction":  0.5,
		})
	}))
	defer srv.Close()

	p := NewHTTPPredictor("climate_model", srv.URL, nil)
	_, err := p.Explain(context.Background(), testVector())
	assert.Error(t, err)
}

func TestPredictServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewHTTPPredictor("climate_model", srv.URL, nil)
	_, err := p.Predict(context.Background(), testVector())
	assert.Error(t, err)
}

func TestPredictRetriesTransientFailures(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]float64{"score": 0.9})
	}))
	defer srv.Close()

	p := NewHTTPPredictor("geographic_model", srv.URL, nil)
	score, err := p.Predict(context.Background(), testVector())
	require.NoError(t, err)
	assert.Equal(t, 0.9, score)
	assert.Equal(t, 2, attempts)
}
