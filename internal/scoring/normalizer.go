package scoring

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/obscura-collective/obscura-score/internal/errors"
)

// RawScores carries the three model-native scores before rescaling.
type RawScores struct {
	Climate    float64 `json:"climate"`
	Geographic float64 `json:"geographic"`
	Economic   float64 `json:"economic"`
}

// NormalizedScores carries the per-dimension scores rescaled to [0, 100].
type NormalizedScores struct {
	Climate    float64 `json:"climate"`
	Geographic float64 `json:"geographic"`
	Economic   float64 `json:"economic"`
}

// Breakdown is each dimension's weighted share of the composite outcome.
type Breakdown struct {
	Climate    float64 `json:"climate"`
	Economic   float64 `json:"economic"`
	Geographic float64 `json:"geographic"`
}

// Metadata records the calibration used for a normalization, for audit.
type Metadata struct {
	Ranges        map[Dimension]Range   `json:"ranges"`
	Weights       map[Dimension]float64 `json:"weights"`
	ConfigVersion int                   `json:"config_version"`
	NormalizedAt  time.Time             `json:"normalized_at"`
}

// Failure describes an upstream error carried through the pipeline.
type Failure struct {
	Reason string `json:"reason"`
}

// Outcome is the tagged result of a scoring run: either Scores is set (a
// successful prediction, possibly enriched with normalized fields) or
// Failure is set. The normalizer passes failures through untouched so the
// HTTP layer decides how to present them.
type Outcome struct {
	Scores                   *RawScores        `json:"raw_scores,omitempty"`
	Failure                  *Failure          `json:"failure,omitempty"`
	Normalized               *NormalizedScores `json:"normalized_scores,omitempty"`
	EnvironmentChangeOutcome *float64          `json:"environment_change_outcome,omitempty"`
	ContributionBreakdown    *Breakdown        `json:"contribution_breakdown,omitempty"`
	Metadata                 *Metadata         `json:"normalization_metadata,omitempty"`
}

// Failed reports whether the outcome carries an upstream failure.
func (o Outcome) Failed() bool { return o.Failure != nil }

// NewFailure wraps an upstream error reason in an Outcome.
func NewFailure(reason string) Outcome {
	return Outcome{Failure: &Failure{Reason: reason}}
}

// Normalizer rescales raw scores into [0, 100] and aggregates them into
// the composite environment change outcome. Calibration lives in an
// atomically swapped snapshot, so concurrent requests always read a
// consistent old-or-new configuration.
type Normalizer struct {
	config atomic.Pointer[Config]
	logger *slog.Logger
}

// NewNormalizer creates a normalizer from a validated config snapshot.
func NewNormalizer(cfg Config, logger *slog.Logger) (*Normalizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	n := &Normalizer{logger: logger}
	n.config.Store(&cfg)
	return n, nil
}

// Config returns the current calibration snapshot.
func (n *Normalizer) Config() Config {
	return *n.config.Load()
}

// UpdateScoreRanges installs a new snapshot with the given ranges overlaid.
// The swap is atomic and takes effect for all subsequent calls.
func (n *Normalizer) UpdateScoreRanges(updates map[Dimension]Range) (Config, error) {
	for d := range updates {
		if !knownDimension(d) {
			return Config{}, errors.NewValidationError(fmt.Sprintf("unknown dimension %q", d))
		}
	}
	next := n.config.Load().withRanges(updates)
	if err := next.Validate(); err != nil {
		return Config{}, err
	}
	n.config.Store(&next)
	n.logger.Info("score ranges updated", "config_version", next.Version)
	return next, nil
}

// Normalize linearly rescales a raw score into [0, 100] using the
// dimension's calibrated range. Out-of-range raw scores are clamped and
// logged, never propagated.
func (n *Normalizer) Normalize(raw float64, dimension Dimension) (float64, error) {
	return n.normalizeWith(n.config.Load(), raw, dimension)
}

func (n *Normalizer) normalizeWith(cfg *Config, raw float64, dimension Dimension) (float64, error) {
	r, ok := cfg.Ranges[dimension]
	if !ok {
		return 0, errors.NewValidationError(fmt.Sprintf("unknown dimension %q", dimension))
	}

	normalized := (raw - r.Min) / (r.Max - r.Min) * 100
	if normalized < 0 || normalized > 100 {
		n.logger.Warn("raw score outside calibrated range",
			"dimension", string(dimension),
			"raw", raw,
			"range_min", r.Min,
			"range_max", r.Max,
		)
		normalized = clamp(normalized, 0, 100)
	}
	return normalized, nil
}

// Composite computes the weighted environment change outcome from the
// three normalized scores, clamped to [0, 100].
func (n *Normalizer) Composite(climate, economic, geographic float64) float64 {
	return compositeWith(n.config.Load(), climate, economic, geographic)
}

func compositeWith(cfg *Config, climate, economic, geographic float64) float64 {
	w := cfg.Weights
	composite := w[Climate]*climate + w[Economic]*economic + w[Geographic]*geographic
	return clamp(composite, 0, 100)
}

// Enrich attaches normalized scores, the composite outcome, the
// contribution breakdown, and audit metadata to a successful outcome.
// Failures and outcomes without raw scores are returned unchanged. One
// snapshot is loaded up front so a concurrent recalibration cannot mix
// versions between the normalized values and the recorded metadata.
func (n *Normalizer) Enrich(o Outcome) Outcome {
	if o.Failed() || o.Scores == nil {
		return o
	}

	cfg := n.config.Load()
	climate, _ := n.normalizeWith(cfg, o.Scores.Climate, Climate)
	geographic, _ := n.normalizeWith(cfg, o.Scores.Geographic, Geographic)
	economic, _ := n.normalizeWith(cfg, o.Scores.Economic, Economic)
	composite := compositeWith(cfg, climate, economic, geographic)

	o.Normalized = &NormalizedScores{
		Climate:    climate,
		Geographic: geographic,
		Economic:   economic,
	}
	o.EnvironmentChangeOutcome = &composite
	o.ContributionBreakdown = &Breakdown{
		Climate:    cfg.Weights[Climate] * climate,
		Economic:   cfg.Weights[Economic] * economic,
		Geographic: cfg.Weights[Geographic] * geographic,
	}
	o.Metadata = &Metadata{
		Ranges:        cfg.Ranges,
		Weights:       cfg.Weights,
		ConfigVersion: cfg.Version,
		NormalizedAt:  time.Now().UTC(),
	}
	return o
}

func knownDimension(d Dimension) bool {
	for _, known := range Dimensions() {
		if d == known {
			return true
		}
	}
	return false
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
