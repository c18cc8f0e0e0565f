package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/aqcollect/aq-adapters/internal/adapters"
	"github.com/aqcollect/aq-adapters/internal/measurement"
)

// Scheduler periodically fetches measurements for configured sources.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *adapters.Service
	sources   []measurement.Source
	interval  time.Duration
}

// New creates a new Scheduler.
func New(sources []measurement.Source, interval time.Duration, service *adapters.Service) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		sources:   sources,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.sources) == 0 {
		log.Println("scheduler: no sources configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: running measurement fetch job")

		var wg sync.WaitGroup
		for _, source := range s.sources {
			source := source
			wg.Add(1)
			go func() {
				defer wg.Done()

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := s.service.FetchSource(ctx, source); err != nil {
					log.Printf("scheduler: fetch failed for %s: %v", source.Name, err)
				}
			}()
		}
		wg.Wait()
		log.Println("scheduler: completed measurement fetch job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
