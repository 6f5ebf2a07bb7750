package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/valleyviewvt/snowline/internal/digest"
	"github.com/valleyviewvt/snowline/internal/mountain"
)

// DigestRunner triggers one digest delivery run.
type DigestRunner interface {
	Run(ctx context.Context) (digest.Stats, error)
}

// Scheduler keeps the resort cache warm and fires the daily digest.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	service    *mountain.Service
	digest     DigestRunner
	interval   time.Duration
	digestHour int
}

// New creates a Scheduler. digest may be nil when no subscriber store is
// configured; only the prewarm job is scheduled then.
func New(service *mountain.Service, interval time.Duration, dig DigestRunner, digestHour int) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler:  s,
		service:    service,
		digest:     dig,
		interval:   interval,
		digestHour: digestHour,
	}
}

// Start schedules the jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: running resort prewarm job")

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		data := s.service.GetAllMountainData(ctx)
		log.Printf("scheduler: prewarmed %d/%d resorts", len(data), len(s.service.Slugs()))
	})
	if err != nil {
		return err
	}

	if s.digest != nil {
		at := fmt.Sprintf("%02d:00", s.digestHour)
		_, err := s.scheduler.Every(1).Day().At(at).Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			if _, err := s.digest.Run(ctx); err != nil {
				log.Printf("scheduler: digest run failed: %v", err)
			}
		})
		if err != nil {
			return err
		}
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
