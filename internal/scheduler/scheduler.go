// Package scheduler keeps the SIQS scores of configured coordinates warm
// by recomputing them periodically, so interactive requests for popular
// spots are served from cache.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/astropoint/skyquality/internal/geo"
	"github.com/astropoint/skyquality/internal/siqs"
)

// Scheduler periodically refreshes scores for configured coordinates.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *siqs.Service
	coords    []geo.Coordinate
	interval  time.Duration
}

// New creates a new Scheduler.
func New(coords []geo.Coordinate, interval time.Duration, service *siqs.Service) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		coords:    coords,
		interval:  interval,
	}
}

// Start schedules the periodic refresh job and starts the underlying
// scheduler.
func (s *Scheduler) Start() error {
	if len(s.coords) == 0 {
		log.Println("scheduler: no refresh coordinates configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: running score refresh job")

		today := time.Now().UTC()

		var wg sync.WaitGroup
		for _, coord := range s.coords {
			coord := coord
			wg.Add(1)
			go func() {
				defer wg.Done()

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if _, err := s.service.ComputeSiqs(ctx, coord, today); err != nil {
					log.Printf("scheduler: refresh failed for %s: %v", coord.Key(4), err)
				}
			}()
		}
		wg.Wait()
		log.Println("scheduler: completed score refresh job")
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
