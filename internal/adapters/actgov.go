package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/aqcollect/aq-adapters/internal/measurement"
)

const (
	actTimezone   = "Australia/Canberra"
	actDateLayout = "2006-01-02T15:04:05"
	actRowLimit   = 1000
)

// ACTGovAdapter normalizes the ACT government open-data (SODA) air-quality
// feed: a JSON array of per-station rows with named pollutant fields and a
// nested GPS object, all string-valued.
type ACTGovAdapter struct {
	name    string
	tz      *time.Location
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewACTGovAdapter(client *http.Client) *ACTGovAdapter {
	tz, err := time.LoadLocation(actTimezone)
	if err != nil {
		tz = time.UTC
	}

	return &ACTGovAdapter{
		name:    "actgov",
		tz:      tz,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuit("actgov"),
	}
}

func (a *ACTGovAdapter) Name() string {
	return a.name
}

// actRow is one raw SODA row. Pollutant fields are pointers so a missing key
// is distinguishable from a present-but-zero reading.
type actRow struct {
	Name    string `json:"name"`
	Station string `json:"station"`
	Date    string `json:"date"`
	GPS     struct {
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	} `json:"gps"`
	NO2  *string `json:"no2"`
	O3   *string `json:"o3"`
	CO   *string `json:"co"`
	PM10 *string `json:"pm10"`
	PM25 *string `json:"pm2_5"`
}

// pollutantFields returns the row's recognized pollutant readings in the
// fixed mapping order. Absent keys are skipped.
func (r actRow) pollutantFields() []struct {
	param measurement.Parameter
	raw   *string
} {
	return []struct {
		param measurement.Parameter
		raw   *string
	}{
		{measurement.ParamNO2, r.NO2},
		{measurement.ParamO3, r.O3},
		{measurement.ParamCO, r.CO},
		{measurement.ParamPM10, r.PM10},
		{measurement.ParamPM25, r.PM25},
	}
}

func (a *ACTGovAdapter) Fetch(ctx context.Context, source measurement.Source) (*measurement.Result, error) {
	buildRequest := func() (*http.Request, error) {
		// Rows newer than yesterday (ACT local time), newest first,
		// capped at the SODA row limit.
		since := time.Now().In(a.tz).AddDate(0, 0, -1)

		values := url.Values{}
		values.Set("$query", fmt.Sprintf(
			"SELECT * WHERE date > '%s' ORDER BY date DESC LIMIT %d",
			since.Format(actDateLayout), actRowLimit,
		))

		u := fmt.Sprintf("%s?%s", source.URL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		return req, nil
	}

	resp, err := doRequest(ctx, a.httpCfg, a.circuit, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToLoad, err)
	}
	defer resp.Body.Close()

	var rows []actRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownAdapter, err)
	}

	measurements, err := a.formatRows(source, rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownAdapter, err)
	}

	return &measurement.Result{
		Name:         source.Name,
		Measurements: measurements,
	}, nil
}

// formatRows maps raw rows to canonical measurements: one base template per
// row, one clone per recognized pollutant present.
func (a *ACTGovAdapter) formatRows(source measurement.Source, rows []actRow) ([]measurement.Measurement, error) {
	measurements := make([]measurement.Measurement, 0, len(rows))

	for _, row := range rows {
		ts, err := time.ParseInLocation(actDateLayout, row.Date, a.tz)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %v", row.Date, err)
		}

		lat, err := strconv.ParseFloat(row.GPS.Latitude, 64)
		if err != nil {
			return nil, fmt.Errorf("parse latitude %q: %v", row.GPS.Latitude, err)
		}
		lon, err := strconv.ParseFloat(row.GPS.Longitude, 64)
		if err != nil {
			return nil, fmt.Errorf("parse longitude %q: %v", row.GPS.Longitude, err)
		}

		location := row.Name
		if location == "" {
			location = row.Station
		}

		base := measurement.Measurement{
			Location:   location,
			City:       "Canberra",
			Country:    "AU",
			Date:       measurement.NewDate(ts),
			SourceName: source.Name,
			SourceType: "government",
			Coordinates: &measurement.Coordinates{
				Latitude:  lat,
				Longitude: lon,
			},
			Attribution: []measurement.Attribution{
				{Name: "ACT Health", URL: "https://www.data.act.gov.au"},
			},
			AveragingPeriod: measurement.AveragingPeriod{Value: 1, Unit: "hours"},
		}

		for _, pf := range row.pollutantFields() {
			if pf.raw == nil {
				continue
			}
			value, err := strconv.ParseFloat(*pf.raw, 64)
			if err != nil {
				return nil, fmt.Errorf("parse %s value %q: %v", pf.param, *pf.raw, err)
			}

			m := base.Clone()
			m.Parameter = pf.param
			m.Value = value
			m.Unit = measurement.UnitFor(pf.param)
			measurements = append(measurements, m)
		}
	}

	return measurements, nil
}
