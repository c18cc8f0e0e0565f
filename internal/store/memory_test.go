package store

import (
	"errors"
	"testing"
	"time"

	"github.com/aqcollect/aq-adapters/internal/measurement"
)

func TestMemoryStoreLatest(t *testing.T) {
	s := NewMemoryStore(10, time.Hour)

	if _, err := s.GetLatest("actgov"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}

	first := s.SaveBatch("actgov", []measurement.Measurement{{Parameter: measurement.ParamNO2}})
	second := s.SaveBatch("actgov", []measurement.Measurement{{Parameter: measurement.ParamO3}})

	if first.ID == "" || first.ID == second.ID {
		t.Errorf("batch IDs not unique: %q vs %q", first.ID, second.ID)
	}

	latest, err := s.GetLatest("actgov")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest.ID != second.ID {
		t.Errorf("latest batch = %q, want %q", latest.ID, second.ID)
	}
	if len(latest.Measurements) != 1 || latest.Measurements[0].Parameter != measurement.ParamO3 {
		t.Errorf("unexpected latest measurements: %+v", latest.Measurements)
	}
}

func TestMemoryStoreRetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)

	s.SaveBatch("watable", nil)
	kept1 := s.SaveBatch("watable", nil)
	kept2 := s.SaveBatch("watable", nil)

	batches, err := s.GetRange("watable", time.Now().Add(-time.Minute), time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2", len(batches))
	}
	if batches[0].ID != kept1.ID || batches[1].ID != kept2.ID {
		t.Errorf("retention kept wrong batches: %q, %q", batches[0].ID, batches[1].ID)
	}
}

func TestMemoryStoreRetentionByAge(t *testing.T) {
	s := NewMemoryStore(0, 50*time.Millisecond)

	stale := s.SaveBatch("actgov", nil)
	time.Sleep(80 * time.Millisecond)
	fresh := s.SaveBatch("actgov", nil)

	batches, err := s.GetRange("actgov", time.Now().Add(-time.Minute), time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("got %d batches, want 1 after age pruning", len(batches))
	}
	if batches[0].ID == stale.ID {
		t.Error("expired batch survived age pruning")
	}
	if batches[0].ID != fresh.ID {
		t.Errorf("surviving batch = %q, want %q", batches[0].ID, fresh.ID)
	}
}

func TestMemoryStoreRangeNotFound(t *testing.T) {
	s := NewMemoryStore(10, 0)
	s.SaveBatch("actgov", nil)

	from := time.Now().Add(time.Hour)
	to := time.Now().Add(2 * time.Hour)
	if _, err := s.GetRange("actgov", from, to); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound for empty range", err)
	}

	if _, err := s.GetRange("unknown", from, to); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound for unknown source", err)
	}
}
