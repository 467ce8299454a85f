package features

// Variable is one of the environmental signals the models were trained on.
// The declaration order below is the positional contract shared with the
// regressors: reordering or renaming entries silently breaks every model
// that consumes feature vectors by index.
type Variable string

const (
	Temperature         Variable = "temperature"
	Humidity            Variable = "humidity"
	WindSpeed           Variable = "wind_speed"
	Precipitation       Variable = "precipitation"
	AtmosphericPressure Variable = "atmospheric_pressure"
	SolarRadiation      Variable = "solar_radiation"
	SoilTemperature     Variable = "soil_temperature_0_7cm"
	SoilMoisture        Variable = "soil_moisture_7_28cm"
	Evapotranspiration  Variable = "reference_evapotranspiration"
	UrbanFloodRisk      Variable = "urban_flood_risk"
	NitrogenDioxide     Variable = "no2"
)

// Variables returns the fixed variable ordering.
func Variables() []Variable {
	return []Variable{
		Temperature,
		Humidity,
		WindSpeed,
		Precipitation,
		AtmosphericPressure,
		SolarRadiation,
		SoilTemperature,
		SoilMoisture,
		Evapotranspiration,
		UrbanFloodRisk,
		NitrogenDioxide,
	}
}

// Lag identifies how far back a snapshot was taken.
type Lag string

const (
	LagCurrent Lag = "current"
	Lag1Month  Lag = "lag_1m"
	Lag3Month  Lag = "lag_3m"
	Lag12Month Lag = "lag_12m"
)

// Lags returns the fixed lag ordering used for the lag feature block.
func Lags() []Lag {
	return []Lag{LagCurrent, Lag1Month, Lag3Month, Lag12Month}
}

// MonthsBack maps a lag label to its offset in months.
func (l Lag) MonthsBack() int {
	switch l {
	case Lag1Month:
		return 1
	case Lag3Month:
		return 3
	case Lag12Month:
		return 12
	default:
		return 0
	}
}

// ExpectedLength is the feature count produced by the builder: one feature
// per variable per lag, plus yearly and monthly change rates per variable.
func ExpectedLength() int {
	return len(Variables()) * (len(Lags()) + 2)
}
