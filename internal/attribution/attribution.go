package attribution

import (
	"fmt"
	"math"

	"github.com/obscura-collective/obscura-score/internal/errors"
)

// Attribution is the per-prediction output of an external SHAP-style
// explainer, consumed here as a black box: one signed contribution per
// feature plus the explainer's base (expected) value.
type Attribution struct {
	FeatureNames  []string    `json:"feature_names"`
	FeatureValues []float64   `json:"feature_values"`
	Contributions []float64   `json:"contributions"`
	BaseValue     float64     `json:"base_value"`
	Prediction    float64     `json:"prediction"`
	Interactions  [][]float64 `json:"interactions,omitempty"`
}

// Validate checks the structural invariants of an attribution record.
func (a Attribution) Validate() error {
	if len(a.FeatureNames) == 0 {
		return errors.NewValidationError("attribution has no features")
	}
	if len(a.Contributions) != len(a.FeatureNames) {
		return errors.NewValidationError(fmt.Sprintf(
			"attribution has %d contributions for %d features",
			len(a.Contributions), len(a.FeatureNames)))
	}
	if len(a.FeatureValues) != 0 && len(a.FeatureValues) != len(a.FeatureNames) {
		return errors.NewValidationError(fmt.Sprintf(
			"attribution has %d feature values for %d features",
			len(a.FeatureValues), len(a.FeatureNames)))
	}
	return nil
}

// AdditivityGap returns |base + sum(contributions) - prediction|, the
// residual of the SHAP additivity contract.
func (a Attribution) AdditivityGap() float64 {
	sum := a.BaseValue
	for _, c := range a.Contributions {
		sum += c
	}
	return math.Abs(sum - a.Prediction)
}

// TotalMagnitude is the sum of absolute contributions.
func (a Attribution) TotalMagnitude() float64 {
	total := 0.0
	for _, c := range a.Contributions {
		total += math.Abs(c)
	}
	return total
}
