package economic

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/obscura-collective/obscura-score/internal/features"
)

// Sub-index aggregation weights.
const (
	weightGDP        = 0.35
	weightDiversity  = 0.25
	weightInnovation = 0.25
	weightEmployment = 0.15
)

// Distance band boundaries, in raw degree-space distance. Degree-space
// rather than great-circle distance is intentional: switching to haversine
// would shift every city-boundary classification, so the original behavior
// is preserved.
const (
	urbanCoreRadius = 0.5
	urbanRadius     = 1.5
	suburbanRadius  = 3.0
)

// Estimate is the economic score plus its explanation payload.
type Estimate struct {
	Score          float64 `json:"score"`
	Label          string  `json:"label"`
	NearestCity    string  `json:"nearest_city"`
	Distance       float64 `json:"distance_degrees"`
	Band           string  `json:"band"`
	LocationFactor float64 `json:"location_factor"`
	SeasonalFactor float64 `json:"seasonal_factor"`
	CityBaseScore  float64 `json:"city_base_score"`
}

// Estimator computes a closed-form economic vitality score from location
// and month. It is a pure function over the static profile table and safe
// for concurrent use.
type Estimator struct {
	profiles []Profile
	logger   *slog.Logger
}

// NewEstimator creates an estimator over the given city profiles, falling
// back to the built-in table when profiles is empty.
func NewEstimator(profiles []Profile, logger *slog.Logger) *Estimator {
	if len(profiles) == 0 {
		profiles = DefaultProfiles()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Estimator{profiles: profiles, logger: logger}
}

// Estimate computes the economic score for (latitude, longitude, month).
// The score lands in [0.1, 1.0] after clamping; month seeds the seasonal
// perturbation so repeated calls for the same month are reproducible.
func (e *Estimator) Estimate(latitude, longitude float64, month int) (Estimate, error) {
	if err := features.ValidateInputs(latitude, longitude, month); err != nil {
		return Estimate{}, err
	}

	city, dist := e.nearestCity(latitude, longitude)
	band, locationFactor := locationFactor(dist)
	seasonal := seasonalFactor(month)

	base := weightGDP*city.BaseGDPScore +
		weightDiversity*city.Diversity +
		weightInnovation*city.Innovation +
		weightEmployment*city.EmploymentRate

	score := clamp(base*locationFactor*seasonal, 0.1, 1.0)

	return Estimate{
		Score:          score,
		Label:          label(score),
		NearestCity:    city.Name,
		Distance:       dist,
		Band:           band,
		LocationFactor: locationFactor,
		SeasonalFactor: seasonal,
		CityBaseScore:  base,
	}, nil
}

// nearestCity picks the profile with minimum Euclidean distance in
// (lat, lon) degree-space.
func (e *Estimator) nearestCity(latitude, longitude float64) (Profile, float64) {
	best := e.profiles[0]
	bestDist := degreeDistance(latitude, longitude, best.Latitude, best.Longitude)
	for _, p := range e.profiles[1:] {
		d := degreeDistance(latitude, longitude, p.Latitude, p.Longitude)
		if d < bestDist {
			best = p
			bestDist = d
		}
	}
	return best, bestDist
}

func degreeDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := lat1 - lat2
	dLon := lon1 - lon2
	return math.Sqrt(dLat*dLat + dLon*dLon)
}

// Per-degree decay slopes, strictly steeper with each band outward:
// urban cores decay slowest, rural areas fastest.
const (
	urbanCoreDecay = 0.10
	urbanDecay     = 0.15
	suburbanDecay  = 0.20
	ruralDecay     = 0.25
)

// locationFactor classifies the distance into a band and applies that
// band's linear decay.
func locationFactor(dist float64) (string, float64) {
	var band string
	var factor float64

	switch {
	case dist < urbanCoreRadius:
		band = "urban_core"
		factor = 1.0 - urbanCoreDecay*dist
	case dist < urbanRadius:
		band = "urban"
		factor = 0.9 - urbanDecay*(dist-urbanCoreRadius)
	case dist < suburbanRadius:
		band = "suburban"
		factor = 0.75 - suburbanDecay*(dist-urbanRadius)
	default:
		band = "rural"
		factor = 0.45 - ruralDecay*(dist-suburbanRadius)
	}

	return band, clamp(factor, 0.1, 1.0)
}

// seasonalFactor looks up the month multiplier and applies a +-5%
// perturbation from a PRNG seeded by the month itself. The local PRNG
// keeps parallel calls from interfering with each other's randomness.
func seasonalFactor(month int) float64 {
	base := seasonalMultipliers[month]
	rng := rand.New(rand.NewSource(int64(month)))
	perturbation := 1.0 + (rng.Float64()*0.10 - 0.05)
	return base * perturbation
}

func label(score float64) string {
	switch {
	case score >= 0.8:
		return "strong"
	case score >= 0.6:
		return "good"
	case score >= 0.4:
		return "moderate"
	default:
		return "weak"
	}
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
