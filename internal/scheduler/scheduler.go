// Package scheduler keeps the dashboard cache warm on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/farxc/gestao-fretes/internal/logger"
	"github.com/robfig/cron/v3"
)

const component = "Scheduler"

// warmTimeout bounds one warm-up run.
const warmTimeout = 30 * time.Second

// Warmer recomputes and caches the dashboard aggregates.
type Warmer interface {
	Warm(ctx context.Context) error
}

type Scheduler struct {
	cron   *cron.Cron
	warmer Warmer
	log    *logger.Logger

	enabled bool
}

// New registers the warm-up job on schedule, a standard five-field cron
// expression or a descriptor such as "@every 1m". An empty schedule
// yields a scheduler whose Start and Stop do nothing.
func New(schedule string, warmer Warmer, log *logger.Logger) (*Scheduler, error) {
	if log == nil {
		log = logger.Nop()
	}

	s := &Scheduler{
		cron:   cron.New(),
		warmer: warmer,
		log:    log,
	}
	if schedule == "" {
		return s, nil
	}

	if _, err := s.cron.AddFunc(schedule, s.warm); err != nil {
		return nil, fmt.Errorf("invalid warm schedule %q: %w", schedule, err)
	}
	s.enabled = true
	return s, nil
}

// Enabled reports whether a job was registered.
func (s *Scheduler) Enabled() bool {
	return s.enabled
}

func (s *Scheduler) Start() {
	if !s.enabled {
		s.log.Info(component, "dashboard warm-up disabled")
		return
	}
	s.log.Info(component, "starting dashboard warm-up")
	s.cron.Start()
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	if !s.enabled {
		return
	}
	s.log.Info(component, "stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) warm() {
	ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
	defer cancel()

	start := time.Now()
	if err := s.warmer.Warm(ctx); err != nil {
		s.log.Error(component, "dashboard warm-up failed: %v", err)
		return
	}
	s.log.Debug(component, "dashboard cache warmed in %s", time.Since(start))
}
