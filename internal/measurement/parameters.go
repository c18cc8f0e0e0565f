package measurement

// Parameter is a pollutant type code.
type Parameter string

const (
	ParamNO2  Parameter = "no2"
	ParamO3   Parameter = "o3"
	ParamCO   Parameter = "co"
	ParamPM10 Parameter = "pm10"
	ParamPM25 Parameter = "pm25"
	ParamSO2  Parameter = "so2"
)

// AcceptedParameters is the closed set of pollutants the canonical schema
// recognizes, in a stable order.
var AcceptedParameters = []Parameter{
	ParamNO2,
	ParamO3,
	ParamCO,
	ParamPM10,
	ParamPM25,
	ParamSO2,
}

// parameterUnits fixes the reporting unit per pollutant. Units are always
// assigned from this table, never inferred from input.
var parameterUnits = map[Parameter]string{
	ParamNO2:  "ppm",
	ParamO3:   "ppm",
	ParamCO:   "ppm",
	ParamPM10: "µg/m³",
	ParamPM25: "µg/m³",
	ParamSO2:  "ppm",
}

// UnitFor returns the canonical unit for a pollutant, or "" for codes outside
// the accepted set.
func UnitFor(p Parameter) string {
	return parameterUnits[p]
}

// Accepted reports whether p belongs to the closed parameter enumeration.
func Accepted(p Parameter) bool {
	_, ok := parameterUnits[p]
	return ok
}
