package measurement

import "testing"

func TestFilterParameters(t *testing.T) {
	in := []Measurement{
		{Parameter: ParamNO2},
		{Parameter: Parameter("visibility")},
		{Parameter: ParamPM25},
	}

	out := FilterParameters(in)
	if len(out) != 2 {
		t.Fatalf("got %d measurements, want 2", len(out))
	}
	if out[0].Parameter != ParamNO2 || out[1].Parameter != ParamPM25 {
		t.Errorf("unexpected surviving parameters: %v, %v", out[0].Parameter, out[1].Parameter)
	}
}

func TestConvertUnits(t *testing.T) {
	in := []Measurement{
		{Parameter: ParamNO2, Value: 2.5, Unit: "pphm"},
		{Parameter: ParamCO, Value: 1.2, Unit: "mg/m³"},
		{Parameter: ParamPM10, Value: 15, Unit: "µg/m³"},
	}

	out := ConvertUnits(in)

	if out[0].Value != 0.025 || out[0].Unit != "ppm" {
		t.Errorf("pphm conversion = %v %s, want 0.025 ppm", out[0].Value, out[0].Unit)
	}
	if out[1].Value != 1200 || out[1].Unit != "µg/m³" {
		t.Errorf("mg/m³ conversion = %v %s, want 1200 µg/m³", out[1].Value, out[1].Unit)
	}
	// Already canonical units pass through untouched.
	if out[2].Value != 15 || out[2].Unit != "µg/m³" {
		t.Errorf("canonical unit changed: %v %s", out[2].Value, out[2].Unit)
	}
}

func TestUnitForClosedEnumeration(t *testing.T) {
	for _, p := range AcceptedParameters {
		if UnitFor(p) == "" {
			t.Errorf("parameter %q has no unit mapping", p)
		}
	}
	if UnitFor(Parameter("bc")) != "" {
		t.Error("unknown parameter should map to empty unit")
	}
	if Accepted(Parameter("bc")) {
		t.Error("unknown parameter should not be accepted")
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := Measurement{
		Coordinates: &Coordinates{Latitude: -35.3, Longitude: 149.1},
		Attribution: []Attribution{{Name: "ACT Health"}},
	}

	clone := orig.Clone()
	clone.Coordinates.Latitude = 0
	clone.Attribution[0].Name = "changed"

	if orig.Coordinates.Latitude != -35.3 {
		t.Error("clone shares coordinates with original")
	}
	if orig.Attribution[0].Name != "ACT Health" {
		t.Error("clone shares attribution slice with original")
	}
}
