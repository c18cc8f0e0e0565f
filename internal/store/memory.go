package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aqcollect/aq-adapters/internal/adapters"
	"github.com/aqcollect/aq-adapters/internal/measurement"
)

var (
	// ErrNotFound is returned when no data is available for a given source.
	ErrNotFound = errors.New("no measurement data for source")
)

// batchHistory holds a time-ordered list of fetch batches for a source.
type batchHistory struct {
	Batches []adapters.Batch
}

// MemoryStore is a concurrency-safe in-memory implementation of the batch store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: source name, value: history
	data map[string]*batchHistory

	// retention configuration
	maxHistory int           // max number of batches per source
	maxAge     time.Duration // optional max age for batches
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*batchHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// SaveBatch appends a new fetch batch for a source and enforces retention.
func (s *MemoryStore) SaveBatch(sourceName string, measurements []measurement.Measurement) adapters.Batch {
	batch := adapters.Batch{
		ID:           uuid.NewString(),
		FetchedAt:    time.Now().UTC(),
		Measurements: measurements,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[sourceName]
	if !ok {
		history = &batchHistory{}
		s.data[sourceName] = history
	}

	history.Batches = append(history.Batches, batch)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Batches) > s.maxHistory {
		over := len(history.Batches) - s.maxHistory
		history.Batches = history.Batches[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Batches); i++ {
			if !history.Batches[i].FetchedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 && i < len(history.Batches) {
			history.Batches = history.Batches[i:]
		}
	}

	return batch
}

// GetLatest returns the most recent batch for a source.
func (s *MemoryStore) GetLatest(sourceName string) (adapters.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[sourceName]
	if !ok || len(history.Batches) == 0 {
		return adapters.Batch{}, ErrNotFound
	}
	return history.Batches[len(history.Batches)-1], nil
}

// GetRange returns all batches for a source fetched between from and to (inclusive).
func (s *MemoryStore) GetRange(sourceName string, from, to time.Time) ([]adapters.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[sourceName]
	if !ok || len(history.Batches) == 0 {
		return nil, ErrNotFound
	}

	var result []adapters.Batch
	for _, batch := range history.Batches {
		if !batch.FetchedAt.Before(from) && !batch.FetchedAt.After(to) {
			result = append(result, batch)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
