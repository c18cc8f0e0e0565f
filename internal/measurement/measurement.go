package measurement

import (
	"time"
)

// Source identifies a data endpoint to fetch from. Externally supplied,
// never mutated by adapters.
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Date carries the same instant twice: once in UTC and once formatted in the
// source's local timezone (RFC3339 with offset).
type Date struct {
	UTC   time.Time `json:"utc"`
	Local string    `json:"local"`
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Attribution credits the organization publishing the underlying data.
type Attribution struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// AveragingPeriod is the time window a reported value is averaged over.
type AveragingPeriod struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Measurement is the canonical record shape shared across all adapters.
// One raw source row may yield zero or more measurements, one per recognized
// pollutant field present.
type Measurement struct {
	Location        string          `json:"location"`
	City            string          `json:"city"`
	Country         string          `json:"country"`
	Date            Date            `json:"date"`
	SourceName      string          `json:"sourceName"`
	SourceType      string          `json:"sourceType"`
	Mobile          bool            `json:"mobile"`
	Coordinates     *Coordinates    `json:"coordinates,omitempty"`
	Attribution     []Attribution   `json:"attribution,omitempty"`
	AveragingPeriod AveragingPeriod `json:"averagingPeriod"`
	Parameter       Parameter       `json:"parameter"`
	Value           float64         `json:"value"`
	Unit            string          `json:"unit"`
}

// Result is what an adapter hands back to its caller: the source name plus
// the normalized measurement list.
type Result struct {
	Name         string        `json:"name"`
	Measurements []Measurement `json:"measurements"`
}

// Clone returns a deep copy of m. Adapters build one base template per raw
// row and clone it per emitted pollutant so no slices or nested structs are
// shared between records.
func (m Measurement) Clone() Measurement {
	out := m
	if m.Coordinates != nil {
		coords := *m.Coordinates
		out.Coordinates = &coords
	}
	if m.Attribution != nil {
		out.Attribution = make([]Attribution, len(m.Attribution))
		copy(out.Attribution, m.Attribution)
	}
	return out
}

// NewDate builds the canonical date pair from a single timezone-aware parse.
// Both fields represent the same instant.
func NewDate(t time.Time) Date {
	return Date{
		UTC:   t.UTC(),
		Local: t.Format(time.RFC3339),
	}
}
