package measurement

// FilterParameters drops measurements whose parameter falls outside the
// accepted enumeration. Order of the surviving records is preserved.
func FilterParameters(in []Measurement) []Measurement {
	out := make([]Measurement, 0, len(in))
	for _, m := range in {
		if Accepted(m.Parameter) {
			out = append(out, m)
		}
	}
	return out
}

// ConvertUnits rewrites source-reported units into canonical ones.
// Known conversions: pphm -> ppm, mg/m³ -> µg/m³. Anything already canonical
// passes through untouched.
func ConvertUnits(in []Measurement) []Measurement {
	out := make([]Measurement, 0, len(in))
	for _, m := range in {
		switch m.Unit {
		case "pphm":
			m.Value = m.Value / 100
			m.Unit = "ppm"
		case "mg/m³", "mg/m3":
			m.Value = m.Value * 1000
			m.Unit = "µg/m³"
		}
		out = append(out, m)
	}
	return out
}
