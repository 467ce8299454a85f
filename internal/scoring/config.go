package scoring

import (
	"fmt"
	"math"

	"github.com/obscura-collective/obscura-score/internal/errors"
)

// Dimension identifies one of the three score axes.
type Dimension string

const (
	Climate    Dimension = "climate"
	Geographic Dimension = "geographic"
	Economic   Dimension = "economic"
)

// Dimensions returns the fixed dimension set.
func Dimensions() []Dimension {
	return []Dimension{Climate, Geographic, Economic}
}

// Range is the empirically calibrated [Min, Max] band of a dimension's raw
// model output. These bounds come from one training run of one model;
// re-derive them whenever the underlying predictor changes.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Config is an immutable snapshot of the normalization calibration. The
// normalizer swaps whole snapshots atomically, so readers always observe a
// consistent version.
type Config struct {
	Version int                   `json:"version"`
	Ranges  map[Dimension]Range   `json:"ranges"`
	Weights map[Dimension]float64 `json:"weights"`
}

// DefaultConfig returns the calibration derived from the shipped models.
func DefaultConfig() Config {
	return Config{
		Version: 1,
		Ranges: map[Dimension]Range{
			Climate:    {Min: -2.5, Max: 1.6},
			Geographic: {Min: -0.4, Max: 1.9},
			Economic:   {Min: 0.1, Max: 1.2},
		},
		Weights: map[Dimension]float64{
			Climate:    0.3,
			Economic:   0.4,
			Geographic: 0.3,
		},
	}
}

// Validate fails fast on a misconfigured deployment: missing dimensions,
// inverted ranges, or weights that do not sum to 1.
func (c Config) Validate() error {
	for _, d := range Dimensions() {
		r, ok := c.Ranges[d]
		if !ok {
			return errors.NewConfigurationError(fmt.Sprintf("missing score range for dimension %q", d), nil)
		}
		if r.Max <= r.Min {
			return errors.NewConfigurationError(
				fmt.Sprintf("invalid score range for dimension %q: [%.4f, %.4f]", d, r.Min, r.Max), nil)
		}
		if _, ok := c.Weights[d]; !ok {
			return errors.NewConfigurationError(fmt.Sprintf("missing weight for dimension %q", d), nil)
		}
	}
	if len(c.Ranges) != len(Dimensions()) || len(c.Weights) != len(Dimensions()) {
		return errors.NewConfigurationError("score configuration contains unknown dimensions", nil)
	}

	sum := 0.0
	for _, w := range c.Weights {
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return errors.NewConfigurationError(fmt.Sprintf("dimension weights sum to %.6f, want 1.0", sum), nil)
	}
	return nil
}

// withRanges derives a new snapshot with the given ranges overlaid and the
// version bumped. The receiver is not mutated.
func (c Config) withRanges(updates map[Dimension]Range) Config {
	next := Config{
		Version: c.Version + 1,
		Ranges:  make(map[Dimension]Range, len(c.Ranges)),
		Weights: make(map[Dimension]float64, len(c.Weights)),
	}
	for d, r := range c.Ranges {
		next.Ranges[d] = r
	}
	for d, w := range c.Weights {
		next.Weights[d] = w
	}
	for d, r := range updates {
		next.Ranges[d] = r
	}
	return next
}
