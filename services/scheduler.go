package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"linkedin-content-platform/internal/logger"
)

// Scheduler drives the periodic all-clients sweep. The sweep itself checks
// the daily cap and weekday gate, so firing on a quiet day is harmless.
type Scheduler struct {
	scheduler *gocron.Scheduler
	processor *Processor
}

func NewScheduler(processor *Processor) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()
	return &Scheduler{scheduler: s, processor: processor}
}

// Start schedules the sweep at the given interval and runs async.
func (s *Scheduler) Start(interval time.Duration) error {
	_, err := s.scheduler.Every(interval).Tag("auto-sweep").Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		results, err := s.processor.ProcessAllClients(ctx)
		if err != nil {
			logger.Error("scheduled sweep failed", "error", err.Error())
			return
		}
		for _, res := range results {
			if res.Status == ProcessStatusPosted || res.Status == ProcessStatusStaged || res.Status == ProcessStatusFailed {
				logger.Info("sweep result", "client", res.Client, "status", res.Status, "url", res.URL)
			}
		}
	})
	if err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}
