package adapters

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sony/gobreaker"

	"github.com/aqcollect/aq-adapters/internal/measurement"
)

const (
	waTimezone   = "Australia/Perth"
	waDateLayout = "2 January 2006"
)

var (
	// "24 August 2020 ... 3pm to 4pm" — date, range start, range end.
	waTimestampPattern = regexp.MustCompile(`(\d{1,2} [A-Za-z]+ \d{4}).*?(\d{1,2}\s*[ap]m)\s+to\s+(\d{1,2}\s*[ap]m)`)
	waClockPattern     = regexp.MustCompile(`(\d{1,2})\s*([ap]m)`)
	waPeriodPattern    = regexp.MustCompile(`(\d+)\s*hour`)
)

// waPollutantLabels maps the table's anchor text to canonical parameters.
var waPollutantLabels = map[string]measurement.Parameter{
	"NO2":   measurement.ParamNO2,
	"O3":    measurement.ParamO3,
	"CO":    measurement.ParamCO,
	"PM10":  measurement.ParamPM10,
	"PM2.5": measurement.ParamPM25,
	"SO2":   measurement.ParamSO2,
}

// waSourceUnits fixes the unit each pollutant is reported in by this source.
// ConvertUnits rewrites these into canonical units afterwards.
var waSourceUnits = map[measurement.Parameter]string{
	measurement.ParamNO2:  "pphm",
	measurement.ParamO3:   "pphm",
	measurement.ParamCO:   "ppm",
	measurement.ParamSO2:  "pphm",
	measurement.ParamPM10: "µg/m³",
	measurement.ParamPM25: "µg/m³",
}

// waColumn records what a resolved column index means for data rows.
type waColumn struct {
	param  measurement.Parameter
	period measurement.AveragingPeriod
}

// waTableState is the only state threaded through the row pass: the region
// carried forward from a site's first row, and the column map built from the
// two header rows.
type waTableState struct {
	currentRegion string
	columns       map[int]waColumn
	width         int
}

// WATableAdapter scrapes the Western Australia hourly air-quality results
// page: an HTML table whose first row names pollutants, second row gives
// per-column averaging periods, and remaining rows give per-site readings
// with region labels only on a region's first row.
type WATableAdapter struct {
	name    string
	tz      *time.Location
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWATableAdapter(client *http.Client) *WATableAdapter {
	tz, err := time.LoadLocation(waTimezone)
	if err != nil {
		tz = time.UTC
	}

	return &WATableAdapter{
		name:    "watable",
		tz:      tz,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuit("watable"),
	}
}

func (a *WATableAdapter) Name() string {
	return a.name
}

func (a *WATableAdapter) Fetch(ctx context.Context, source measurement.Source) (*measurement.Result, error) {
	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, source.URL, nil)
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

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownAdapter, err)
	}

	measurements, err := a.formatDocument(source, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownAdapter, err)
	}

	return &measurement.Result{
		Name:         source.Name,
		Measurements: measurements,
	}, nil
}

// formatDocument runs the single linear pass over the results table and the
// post-processing steps: shortest-period dedup, coordinate lookup, parameter
// filter, unit conversion.
func (a *WATableAdapter) formatDocument(source measurement.Source, doc *goquery.Document) ([]measurement.Measurement, error) {
	rows := doc.Find("table").First().Find("tr")
	if rows.Length() < 3 {
		return nil, fmt.Errorf("results table has %d rows, need at least 3", rows.Length())
	}

	ts, err := a.headerTimestamp(rows.Eq(0))
	if err != nil {
		return nil, err
	}

	state := &waTableState{columns: make(map[int]waColumn)}
	a.readPollutantHeader(rows.Eq(0), state)
	a.readPeriodHeader(rows.Eq(1), state)
	if len(state.columns) == 0 {
		return nil, fmt.Errorf("no recognized pollutant columns in header")
	}

	base := measurement.Measurement{
		Country:    "AU",
		Date:       measurement.NewDate(ts),
		SourceName: source.Name,
		SourceType: "government",
		Attribution: []measurement.Attribution{
			{Name: "Western Australia Department of Water and Environmental Regulation", URL: "https://www.der.wa.gov.au"},
		},
	}

	var measurements []measurement.Measurement
	rows.Slice(2, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		measurements = append(measurements, a.readDataRow(row, state, base)...)
	})

	measurements = dedupeShortestPeriod(measurements)

	for i := range measurements {
		measurements[i].Coordinates = coordinatesFor(measurements[i].Location)
	}

	measurements = measurement.FilterParameters(measurements)
	measurements = measurement.ConvertUnits(measurements)
	return measurements, nil
}

// headerTimestamp parses the document's single timestamp from the first
// header cell, which holds a date plus an hour range. The "to" boundary of
// the range is the measurement time; an end time of 12am belongs to the
// following day.
func (a *WATableAdapter) headerTimestamp(headerRow *goquery.Selection) (time.Time, error) {
	text := strings.TrimSpace(headerRow.Find("td,th").First().Text())
	return a.parseTableTimestamp(text)
}

func (a *WATableAdapter) parseTableTimestamp(text string) (time.Time, error) {
	m := waTimestampPattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, fmt.Errorf("no date range in header %q", text)
	}

	day, err := time.ParseInLocation(waDateLayout, m[1], a.tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse header date %q: %v", m[1], err)
	}

	hour, err := parseClockHour(m[3])
	if err != nil {
		return time.Time{}, err
	}

	// A range ending at 12am reads as the start of the next day.
	if hour == 0 {
		day = day.AddDate(0, 0, 1)
	}

	return day.Add(time.Duration(hour) * time.Hour), nil
}

// parseClockHour converts "4pm" style text to a 24h hour value.
func parseClockHour(text string) (int, error) {
	m := waClockPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, fmt.Errorf("no clock time in %q", text)
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour < 1 || hour > 12 {
		return 0, fmt.Errorf("bad clock hour in %q", text)
	}
	if hour == 12 {
		hour = 0
	}
	if m[2] == "pm" {
		hour += 12
	}
	return hour, nil
}

// readPollutantHeader records which absolute column index carries which
// pollutant, expanding colspans. Pollutant names are the anchor text inside
// each header cell; cells without a recognized anchor contribute nothing.
func (a *WATableAdapter) readPollutantHeader(row *goquery.Selection, state *waTableState) {
	col := 0
	row.Find("td,th").Each(func(_ int, cell *goquery.Selection) {
		span := cellSpan(cell)

		label := strings.TrimSpace(cell.Find("a").First().Text())
		if param, ok := waPollutantLabels[label]; ok {
			for i := 0; i < span; i++ {
				state.columns[col+i] = waColumn{param: param}
			}
		}
		col += span
	})
	state.width = col
}

// readPeriodHeader attaches an averaging period to every pollutant column,
// matching the digit-hour text of the second header row. Columns whose period
// cell does not parse are dropped from the map.
func (a *WATableAdapter) readPeriodHeader(row *goquery.Selection, state *waTableState) {
	col := 0
	row.Find("td,th").Each(func(_ int, cell *goquery.Selection) {
		span := cellSpan(cell)

		m := waPeriodPattern.FindStringSubmatch(cell.Text())
		for i := 0; i < span; i++ {
			c, ok := state.columns[col+i]
			if !ok {
				continue
			}
			if m == nil {
				delete(state.columns, col+i)
				continue
			}
			hours, _ := strconv.Atoi(m[1])
			c.period = measurement.AveragingPeriod{Value: float64(hours), Unit: "hours"}
			state.columns[col+i] = c
		}
		col += span
	})
}

// readDataRow emits measurements for one site row. Rows opening a new region
// carry an extra leading cell; rows continuing a region start directly at the
// site column, so cells are aligned against the right edge of the table.
func (a *WATableAdapter) readDataRow(row *goquery.Selection, state *waTableState, base measurement.Measurement) []measurement.Measurement {
	cells := row.Find("td,th")

	rowWidth := 0
	cells.Each(func(_ int, cell *goquery.Selection) {
		rowWidth += cellSpan(cell)
	})
	col := state.width - rowWidth
	if col < 0 || col > 1 {
		// Footer or malformed row; contributes nothing.
		return nil
	}

	var out []measurement.Measurement
	site := ""

	cells.Each(func(_ int, cell *goquery.Selection) {
		span := cellSpan(cell)
		text := strings.TrimSpace(cell.Text())

		switch {
		case col == 0:
			state.currentRegion = text
		case col == 1:
			site = text
		default:
			column, ok := state.columns[col]
			if !ok || site == "" {
				break
			}
			value, err := strconv.ParseFloat(text, 64)
			if err != nil {
				// Empty or non-numeric cell; site did not report
				// this pollutant for the hour.
				break
			}

			m := base.Clone()
			m.Location = site
			m.City = state.currentRegion
			m.Parameter = column.param
			m.Value = value
			m.Unit = waSourceUnits[column.param]
			m.AveragingPeriod = column.period
			out = append(out, m)
		}
		col += span
	})

	return out
}

func cellSpan(cell *goquery.Selection) int {
	span, err := strconv.Atoi(cell.AttrOr("colspan", "1"))
	if err != nil || span < 1 {
		return 1
	}
	return span
}

// dedupeShortestPeriod keeps, for every (location, parameter) pair, only the
// entry with the smallest averaging-period value. First-seen order of the
// surviving pairs is preserved.
func dedupeShortestPeriod(in []measurement.Measurement) []measurement.Measurement {
	type pairKey struct {
		location  string
		parameter measurement.Parameter
	}

	index := make(map[pairKey]int, len(in))
	out := make([]measurement.Measurement, 0, len(in))

	for _, m := range in {
		k := pairKey{m.Location, m.Parameter}
		if i, ok := index[k]; ok {
			if m.AveragingPeriod.Value < out[i].AveragingPeriod.Value {
				out[i] = m
			}
			continue
		}
		index[k] = len(out)
		out = append(out, m)
	}

	return out
}
