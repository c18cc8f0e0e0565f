package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/aqcollect/aq-adapters/internal/measurement"
)

var (
	// ErrFailedToLoad covers any transport failure: network error, timeout,
	// or a non-success HTTP status. The body is not inspected in that case.
	ErrFailedToLoad = errors.New("failed to load data url")

	// ErrUnknownAdapter covers any failure while interpreting a response
	// body, malformed structure and missing fields included. No partial
	// results accompany it.
	ErrUnknownAdapter = errors.New("unknown adapter error")
)

// Adapter normalizes one source's payload into canonical measurements.
// Fetch completes exactly once: either a result or an error, never both.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, source measurement.Source) (*measurement.Result, error)
}

// Batch is one fetch cycle's worth of measurements for a source.
type Batch struct {
	ID           string                    `json:"id"`
	FetchedAt    time.Time                 `json:"fetchedAt"`
	Measurements []measurement.Measurement `json:"measurements"`
}

// Store is the contract the in-memory batch store (and any future persistent
// store) must satisfy.
type Store interface {
	SaveBatch(sourceName string, measurements []measurement.Measurement) Batch
	GetLatest(sourceName string) (Batch, error)
	GetRange(sourceName string, from, to time.Time) ([]Batch, error)
}
