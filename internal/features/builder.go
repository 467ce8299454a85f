package features

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/obscura-collective/obscura-score/internal/errors"
)

const (
	// Change rates are clamped to this band so a single noisy reading
	// cannot dominate the downstream regressors.
	changeRateMin = -2.0
	changeRateMax = 2.0
)

// Collector supplies raw per-variable observations for a location at a
// given number of months in the past. Implementations may return a partial
// or empty map when data is unavailable; they should not treat "no data"
// as an error.
type Collector interface {
	Fetch(ctx context.Context, latitude, longitude float64, month, monthsBack int) (map[Variable]float64, error)
}

// Vector is an ordered, named feature vector. It is built once per
// prediction request and not mutated afterwards.
type Vector struct {
	Names  []string
	Values []float64
}

// Len returns the number of features.
func (v Vector) Len() int { return len(v.Values) }

// Builder assembles feature vectors from collector snapshots. It holds no
// per-request state and is safe for concurrent use.
type Builder struct {
	collector Collector
	logger    *slog.Logger
}

// NewBuilder creates a feature builder backed by the given collector.
func NewBuilder(collector Collector, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{collector: collector, logger: logger}
}

// Build constructs the feature vector for (latitude, longitude, month).
// targetLen is the feature count the downstream model expects; a mismatch
// is logged as a soft contract violation and never fails the call.
func (b *Builder) Build(ctx context.Context, latitude, longitude float64, month int, targetLen int) (Vector, error) {
	if err := ValidateInputs(latitude, longitude, month); err != nil {
		return Vector{}, err
	}

	snapshots := b.fetchSnapshots(ctx, latitude, longitude, month)
	current := snapshots[LagCurrent]

	vars := Variables()
	lags := Lags()
	vec := Vector{
		Names:  make([]string, 0, ExpectedLength()),
		Values: make([]float64, 0, ExpectedLength()),
	}

	// Block (a): lag features, lag-major then variable-minor.
	for _, lag := range lags {
		snap := snapshots[lag]
		for _, v := range vars {
			val, ok := snap[v]
			if !ok {
				// Backfill from the current snapshot so the vector
				// never carries undefined entries.
				val = current[v]
			}
			vec.Names = append(vec.Names, fmt.Sprintf("%s_%s", v, lag))
			vec.Values = append(vec.Values, val)
		}
	}

	// Block (b): change-rate features, yearly then monthly per variable.
	for _, v := range vars {
		cur := current[v]
		yearly := changeRate(cur, valueOrCurrent(snapshots[Lag12Month], current, v))
		monthly := changeRate(cur, valueOrCurrent(snapshots[Lag1Month], current, v))

		vec.Names = append(vec.Names, fmt.Sprintf("%s_yearly_change", v))
		vec.Values = append(vec.Values, yearly)
		vec.Names = append(vec.Names, fmt.Sprintf("%s_monthly_change", v))
		vec.Values = append(vec.Values, monthly)
	}

	if targetLen > 0 && vec.Len() != targetLen {
		b.logger.Warn("feature vector length disagrees with model expectation",
			"actual", vec.Len(),
			"expected", targetLen,
		)
	}

	return vec, nil
}

// fetchSnapshots loads one snapshot per lag. A failed or empty historical
// fetch degrades to the current snapshot; a failed current fetch degrades
// to an empty map (all features zero), both logged at WARN.
func (b *Builder) fetchSnapshots(ctx context.Context, latitude, longitude float64, month int) map[Lag]map[Variable]float64 {
	snapshots := make(map[Lag]map[Variable]float64, len(Lags()))

	for _, lag := range Lags() {
		snap, err := b.collector.Fetch(ctx, latitude, longitude, month, lag.MonthsBack())
		if err != nil {
			b.logger.Warn("snapshot fetch failed, backfilling from current",
				"lag", string(lag),
				"error", err,
			)
			snap = nil
		}
		if snap == nil {
			snap = map[Variable]float64{}
		}
		snapshots[lag] = snap
	}

	return snapshots
}

func valueOrCurrent(snap, current map[Variable]float64, v Variable) float64 {
	if val, ok := snap[v]; ok {
		return val
	}
	return current[v]
}

// changeRate computes (current - lagged) / |lagged|, clamped. A zero lag
// value yields zero change rather than a division error.
func changeRate(current, lagged float64) float64 {
	if lagged == 0 {
		return 0
	}
	rate := (current - lagged) / math.Abs(lagged)
	if rate < changeRateMin {
		return changeRateMin
	}
	if rate > changeRateMax {
		return changeRateMax
	}
	return rate
}

// ValidateInputs checks the coordinate and month ranges. This is the only
// fatal path in the builder: bad inputs indicate a caller bug, not a data
// quality issue.
func ValidateInputs(latitude, longitude float64, month int) error {
	if latitude < -90 || latitude > 90 {
		return errors.NewValidationError(fmt.Sprintf("latitude %.4f outside [-90, 90]", latitude))
	}
	if longitude < -180 || longitude > 180 {
		return errors.NewValidationError(fmt.Sprintf("longitude %.4f outside [-180, 180]", longitude))
	}
	if month < 1 || month > 12 {
		return errors.NewValidationError(fmt.Sprintf("month %d outside [1, 12]", month))
	}
	return nil
}
