// Package jobs runs scheduled maintenance work for the worker binary.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs jobs on six-field cron schedules (seconds first).
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
	ctx  context.Context
}

func NewScheduler(ctx context.Context, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:  log,
		ctx:  ctx,
	}
}

func (s *Scheduler) Add(spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() { s.RunNow(job) })
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", job.Name(), spec, err)
	}
	s.log.Info().Str("job", job.Name()).Str("schedule", spec).Msg("job scheduled")
	return nil
}

// RunNow runs job synchronously with the scheduler's context.
func (s *Scheduler) RunNow(job Job) {
	start := time.Now()
	log := s.log.With().Str("job", job.Name()).Logger()
	log.Info().Msg("job started")

	if err := job.Run(log.WithContext(s.ctx)); err != nil {
		log.Error().Err(err).Dur("took", time.Since(start)).Msg("job failed")
		return
	}
	log.Info().Dur("took", time.Since(start)).Msg("job completed")
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop stops scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
