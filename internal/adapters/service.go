package adapters

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aqcollect/aq-adapters/internal/measurement"
)

// Service runs configured sources through their adapters and persists the
// resulting batches. Adapters stay independent: one source failing does not
// abort the others.
type Service struct {
	store    Store
	adapters map[string]Adapter
	sources  []measurement.Source
}

// NewService creates a new Service. Sources are matched to adapters by name.
func NewService(store Store, adapters []Adapter, sources []measurement.Source) *Service {
	byName := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		byName[a.Name()] = a
	}
	return &Service{
		store:    store,
		adapters: byName,
		sources:  sources,
	}
}

// Sources returns the configured source descriptors.
func (s *Service) Sources() []measurement.Source {
	return s.sources
}

// FetchSource runs one source through its adapter and stores the batch.
func (s *Service) FetchSource(ctx context.Context, source measurement.Source) error {
	adapter, ok := s.adapters[source.Name]
	if !ok {
		return fmt.Errorf("no adapter registered for source %q", source.Name)
	}

	result, err := adapter.Fetch(ctx, source)
	if err != nil {
		return err
	}

	batch := s.store.SaveBatch(result.Name, result.Measurements)
	log.Printf("INFO: stored batch %s for %s (%d measurements)", batch.ID, result.Name, len(result.Measurements))
	return nil
}

// FetchAll runs every configured source, logging and skipping failures.
func (s *Service) FetchAll(ctx context.Context) {
	for _, source := range s.sources {
		if err := s.FetchSource(ctx, source); err != nil {
			log.Printf("ERROR: fetch failed for %s: %v", source.Name, err)
		}
	}
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(sourceName string) (Batch, error) {
	return s.store.GetLatest(sourceName)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(sourceName string, from, to time.Time) ([]Batch, error) {
	return s.store.GetRange(sourceName, from, to)
}
