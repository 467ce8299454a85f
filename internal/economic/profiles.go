package economic

// Profile holds the static economic sub-indices for a reference city.
// All sub-indices are in [0, 1]. The table is calibration data, not code:
// recalibrate by editing values, not the estimator.
type Profile struct {
	Name           string
	Latitude       float64
	Longitude      float64
	BaseGDPScore   float64
	Diversity      float64
	Innovation     float64
	EmploymentRate float64
}

// DefaultProfiles returns the built-in city reference table.
func DefaultProfiles() []Profile {
	return []Profile{
		{Name: "london", Latitude: 51.5074, Longitude: -0.1278, BaseGDPScore: 0.92, Diversity: 0.88, Innovation: 0.85, EmploymentRate: 0.76},
		{Name: "new_york", Latitude: 40.7128, Longitude: -74.0060, BaseGDPScore: 0.95, Diversity: 0.90, Innovation: 0.88, EmploymentRate: 0.74},
		{Name: "tokyo", Latitude: 35.6762, Longitude: 139.6503, BaseGDPScore: 0.90, Diversity: 0.82, Innovation: 0.86, EmploymentRate: 0.78},
		{Name: "paris", Latitude: 48.8566, Longitude: 2.3522, BaseGDPScore: 0.85, Diversity: 0.84, Innovation: 0.78, EmploymentRate: 0.70},
		{Name: "berlin", Latitude: 52.5200, Longitude: 13.4050, BaseGDPScore: 0.78, Diversity: 0.80, Innovation: 0.81, EmploymentRate: 0.73},
		{Name: "shanghai", Latitude: 31.2304, Longitude: 121.4737, BaseGDPScore: 0.82, Diversity: 0.75, Innovation: 0.79, EmploymentRate: 0.77},
		{Name: "san_francisco", Latitude: 37.7749, Longitude: -122.4194, BaseGDPScore: 0.93, Diversity: 0.72, Innovation: 0.95, EmploymentRate: 0.72},
		{Name: "singapore", Latitude: 1.3521, Longitude: 103.8198, BaseGDPScore: 0.91, Diversity: 0.77, Innovation: 0.87, EmploymentRate: 0.80},
	}
}

// seasonalMultipliers is the per-month consumption-cycle factor. February
// is the yearly low and December the high.
var seasonalMultipliers = map[int]float64{
	1:  0.95,
	2:  0.85,
	3:  0.92,
	4:  0.96,
	5:  1.00,
	6:  1.02,
	7:  1.04,
	8:  1.03,
	9:  0.98,
	10: 1.00,
	11: 1.02,
	12: 1.08,
}
