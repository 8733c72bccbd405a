// Package scheduler runs recurring jobs on cron schedules.
package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: logger,
	}
}

// AddJob schedules a named job. The job's panics are not recovered; jobs are
// expected to report failures through their own logging.
func (s *Scheduler) AddJob(spec, name string, job func()) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.logger.Info("scheduled job starting", zap.String("job", name))
		job()
		s.logger.Info("scheduled job finished", zap.String("job", name))
	})
	if err != nil {
		return fmt.Errorf("schedule job %s (%q): %w", name, spec, err)
	}

	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling new runs and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
