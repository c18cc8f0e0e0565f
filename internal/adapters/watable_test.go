package adapters

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aqcollect/aq-adapters/internal/measurement"
)

const waFixture = `<html><body>
<table>
<tr>
  <td colspan="2">Air quality index for 24 August 2020, 3pm to 4pm</td>
  <td><a href="#o3">O3</a> (pphm)</td>
  <td colspan="2"><a href="#pm10">PM10</a> (ug/m3)</td>
  <td><a href="#no2">NO2</a> (pphm)</td>
</tr>
<tr>
  <td colspan="2">Region / Site</td>
  <td>1 hour avg</td>
  <td>1 hour avg</td>
  <td>24 hour avg</td>
  <td>1 hour avg</td>
</tr>
<tr>
  <td rowspan="2">Perth Metro</td>
  <td>Caversham</td>
  <td>2.1</td>
  <td>15.0</td>
  <td>12.0</td>
  <td>0.8</td>
</tr>
<tr>
  <td>Duncraig</td>
  <td>1.5</td>
  <td>-</td>
  <td>10.0</td>
  <td></td>
</tr>
<tr>
  <td>South West</td>
  <td>Mystery Park</td>
  <td>0.9</td>
  <td>8.0</td>
  <td>7.5</td>
  <td>0.3</td>
</tr>
</table>
</body></html>`

func fetchWAFixture(t *testing.T, body string) (*measurement.Result, error) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(body))
	}))
	defer server.Close()

	adapter := NewWATableAdapter(server.Client())
	return adapter.Fetch(context.Background(), measurement.Source{Name: "watable", URL: server.URL})
}

func findMeasurement(ms []measurement.Measurement, location string, param measurement.Parameter) (measurement.Measurement, bool) {
	for _, m := range ms {
		if m.Location == location && m.Parameter == param {
			return m, true
		}
	}
	return measurement.Measurement{}, false
}

func TestWATableFetch(t *testing.T) {
	result, err := fetchWAFixture(t, waFixture)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Three sites, with Caversham's duplicate PM10 collapsed:
	// Caversham o3/pm10/no2, Duncraig o3/pm10, Mystery Park o3/pm10/no2.
	if len(result.Measurements) != 8 {
		t.Fatalf("got %d measurements, want 8: %+v", len(result.Measurements), result.Measurements)
	}

	m, ok := findMeasurement(result.Measurements, "Caversham", measurement.ParamO3)
	if !ok {
		t.Fatal("missing Caversham o3")
	}
	if m.City != "Perth Metro" {
		t.Errorf("Caversham city = %q, want Perth Metro", m.City)
	}
	// 2.1 pphm converted to ppm.
	if m.Value != 0.021 || m.Unit != "ppm" {
		t.Errorf("Caversham o3 = %v %s, want 0.021 ppm", m.Value, m.Unit)
	}
	if m.Coordinates == nil {
		t.Error("Caversham should have fixed coordinates")
	}
}

func TestWATableShortestPeriodWins(t *testing.T) {
	result, err := fetchWAFixture(t, waFixture)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m, ok := findMeasurement(result.Measurements, "Caversham", measurement.ParamPM10)
	if !ok {
		t.Fatal("missing Caversham pm10")
	}
	if m.AveragingPeriod.Value != 1 {
		t.Errorf("averaging period = %v hours, want 1", m.AveragingPeriod.Value)
	}
	if m.Value != 15.0 {
		t.Errorf("pm10 value = %v, want the 1-hour reading 15.0", m.Value)
	}
}

func TestWATableRegionCarriedForward(t *testing.T) {
	result, err := fetchWAFixture(t, waFixture)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Duncraig's row has no region cell; it inherits Perth Metro.
	m, ok := findMeasurement(result.Measurements, "Duncraig", measurement.ParamO3)
	if !ok {
		t.Fatal("missing Duncraig o3")
	}
	if m.City != "Perth Metro" {
		t.Errorf("Duncraig city = %q, want Perth Metro", m.City)
	}

	// Duncraig's pm10 1-hour cell is "-", so only the 24-hour entry exists
	// and survives dedup.
	pm, ok := findMeasurement(result.Measurements, "Duncraig", measurement.ParamPM10)
	if !ok {
		t.Fatal("missing Duncraig pm10")
	}
	if pm.AveragingPeriod.Value != 24 {
		t.Errorf("Duncraig pm10 period = %v, want 24", pm.AveragingPeriod.Value)
	}

	// The next region row resets the carried value.
	mp, ok := findMeasurement(result.Measurements, "Mystery Park", measurement.ParamO3)
	if !ok {
		t.Fatal("missing Mystery Park o3")
	}
	if mp.City != "South West" {
		t.Errorf("Mystery Park city = %q, want South West", mp.City)
	}
	if mp.Coordinates != nil {
		t.Errorf("unknown site should have no coordinates, got %+v", mp.Coordinates)
	}
}

func TestWATableDocumentTimestamp(t *testing.T) {
	result, err := fetchWAFixture(t, waFixture)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tz, err := time.LoadLocation("Australia/Perth")
	if err != nil {
		t.Fatalf("load timezone: %v", err)
	}
	// The "to" boundary of the 3pm-4pm range.
	want := time.Date(2020, 8, 24, 16, 0, 0, 0, tz)

	m := result.Measurements[0]
	if !m.Date.UTC.Equal(want) {
		t.Errorf("date.utc = %v, want instant %v", m.Date.UTC, want)
	}
}

func TestWATableMidnightRollover(t *testing.T) {
	adapter := NewWATableAdapter(nil)

	ts, err := adapter.parseTableTimestamp("Air quality index for 24 August 2020, 11pm to 12am")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tz, err := time.LoadLocation("Australia/Perth")
	if err != nil {
		t.Fatalf("load timezone: %v", err)
	}
	want := time.Date(2020, 8, 25, 0, 0, 0, 0, tz)
	if !ts.Equal(want) {
		t.Errorf("rollover timestamp = %v, want %v", ts, want)
	}
}

func TestWATableTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	adapter := NewWATableAdapter(server.Client())
	result, err := adapter.Fetch(context.Background(), measurement.Source{Name: "watable", URL: server.URL})
	if !errors.Is(err, ErrFailedToLoad) {
		t.Fatalf("error = %v, want ErrFailedToLoad", err)
	}
	if result != nil {
		t.Errorf("expected no result on transport failure, got %+v", result)
	}
}

func TestWATableMissingTable(t *testing.T) {
	result, err := fetchWAFixture(t, "<html><body><p>maintenance</p></body></html>")
	if !errors.Is(err, ErrUnknownAdapter) {
		t.Fatalf("error = %v, want ErrUnknownAdapter", err)
	}
	if result != nil {
		t.Errorf("expected no result on parse failure, got %+v", result)
	}
}

func TestDedupeShortestPeriod(t *testing.T) {
	in := []measurement.Measurement{
		{Location: "A", Parameter: measurement.ParamPM10, AveragingPeriod: measurement.AveragingPeriod{Value: 24, Unit: "hours"}},
		{Location: "A", Parameter: measurement.ParamPM10, AveragingPeriod: measurement.AveragingPeriod{Value: 1, Unit: "hours"}},
		{Location: "A", Parameter: measurement.ParamO3, AveragingPeriod: measurement.AveragingPeriod{Value: 8, Unit: "hours"}},
		{Location: "B", Parameter: measurement.ParamPM10, AveragingPeriod: measurement.AveragingPeriod{Value: 24, Unit: "hours"}},
	}

	out := dedupeShortestPeriod(in)
	if len(out) != 3 {
		t.Fatalf("got %d measurements, want 3", len(out))
	}
	if out[0].AveragingPeriod.Value != 1 {
		t.Errorf("A/pm10 period = %v, want 1", out[0].AveragingPeriod.Value)
	}
}
