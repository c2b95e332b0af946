package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"osrs-toolkit/pkg/config"
	"osrs-toolkit/pkg/logging"

	"github.com/robfig/cron/v3"
)

// Executor runs one report job; pkg/report provides the real one
type Executor interface {
	ExecuteJob(ctx context.Context, job config.JobConfig) error
}

// jobTimeout bounds a single run, commentary generation included
const jobTimeout = 10 * time.Minute

// Scheduler runs report jobs on cron schedules
type Scheduler struct {
	cron     *cron.Cron
	executor Executor
	logger   *logging.Logger
	jobs     map[string]config.JobConfig
	mu       sync.RWMutex
}

// NewScheduler creates a new job scheduler
func NewScheduler(logger *logging.Logger, executor Executor) *Scheduler {
	cronLogger := cron.VerbosePrintfLogger(logger.WithComponent("scheduler").Logger)
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger)),
	)

	return &Scheduler{
		cron:     c,
		executor: executor,
		logger:   logger,
		jobs:     make(map[string]config.JobConfig),
	}
}

// LoadJobs registers job presets and their schedules
func (s *Scheduler) LoadJobs(cfg *config.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range cfg.Jobs {
		s.jobs[job.Name] = job
	}

	for _, schedule := range cfg.Schedules {
		if !schedule.Enabled {
			s.logger.WithComponent("scheduler").WithField("job_name", schedule.JobName).Debug("Schedule disabled, skipping")
			continue
		}

		job, exists := s.jobs[schedule.JobName]
		if !exists {
			s.logger.WithComponent("scheduler").WithField("job_name", schedule.JobName).Error("Job not found for schedule")
			continue
		}

		if !job.Enabled {
			s.logger.WithComponent("scheduler").WithField("job_name", schedule.JobName).Debug("Job disabled, skipping schedule")
			continue
		}

		_, err := s.cron.AddFunc(schedule.Cron, func() {
			s.executeJob(job)
		})
		if err != nil {
			return fmt.Errorf("failed to add cron job for %s: %w", schedule.JobName, err)
		}

		s.logger.WithComponent("scheduler").WithFields(map[string]interface{}{
			"job_name": schedule.JobName,
			"cron":     schedule.Cron,
		}).Info("Scheduled job added")
	}

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.logger.WithComponent("scheduler").Info("Starting job scheduler")
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	s.logger.WithComponent("scheduler").Info("Stopping job scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// ExecuteJob triggers a job immediately by name
func (s *Scheduler) ExecuteJob(jobName string) error {
	s.mu.RLock()
	job, exists := s.jobs[jobName]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", jobName)
	}

	go s.executeJob(job)
	return nil
}

func (s *Scheduler) executeJob(job config.JobConfig) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	s.logger.WithComponent("scheduler").WithField("job_name", job.Name).Info("Executing scheduled job")

	if err := s.executor.ExecuteJob(ctx, job); err != nil {
		s.logger.WithComponent("scheduler").WithField("job_name", job.Name).WithError(err).Error("Job execution failed")
	}
}

// GetJobNames returns all configured job names
func (s *Scheduler) GetJobNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// GetJobStatus returns enabled state per job
func (s *Scheduler) GetJobStatus() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := make(map[string]bool, len(s.jobs))
	for name, job := range s.jobs {
		status[name] = job.Enabled
	}
	return status
}

// IsRunning reports whether any schedules are registered and active
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}
