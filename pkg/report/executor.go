package report

import (
	"context"
	"fmt"
	"time"

	"osrs-toolkit/pkg/config"
	"osrs-toolkit/pkg/llm"
	"osrs-toolkit/pkg/logging"
	"osrs-toolkit/pkg/market"
)

// Result is the outcome of one report job run
type Result struct {
	JobName     string
	Description string
	Report      *market.Report
	Commentary  string
	Duration    time.Duration
	Success     bool
	Error       error
}

// Store abstracts run persistence so the executor also works without a
// database configured.
type Store interface {
	SaveRun(ctx context.Context, jobName string, report *market.Report) (int64, error)
}

// Executor runs configured analysis presets and decorates the results
// with optional commentary and persistence.
type Executor struct {
	cfg      *config.Config
	logger   *logging.Logger
	analyzer *market.Analyzer
	llm      *llm.Client // nil disables commentary
	store    Store       // nil disables persistence
}

// NewExecutor creates a report executor. llmClient and store may be nil.
func NewExecutor(cfg *config.Config, logger *logging.Logger, analyzer *market.Analyzer, llmClient *llm.Client, store Store) *Executor {
	return &Executor{
		cfg:      cfg,
		logger:   logger,
		analyzer: analyzer,
		llm:      llmClient,
		store:    store,
	}
}

// Run executes one job preset and returns its result. Analysis failures
// come back as both an error and a failed Result so callers can report
// either way.
func (e *Executor) Run(ctx context.Context, job config.JobConfig) (*Result, error) {
	start := time.Now()
	executionID := fmt.Sprintf("%s-%d", job.Name, start.Unix())
	e.logger.JobStart(job.Name, executionID)

	result := &Result{JobName: job.Name, Description: job.Description}

	report, err := e.analyzer.Analyze(ctx, job.Settings())
	if err != nil {
		result.Duration = time.Since(start)
		result.Error = err
		e.logger.JobError(job.Name, executionID, err, result.Duration.Seconds())
		return result, err
	}
	result.Report = report

	if e.store != nil {
		if _, err := e.store.SaveRun(ctx, job.Name, report); err != nil {
			// persistence is best-effort; the report is still good
			e.logger.WithJob(job.Name).WithError(err).Warn("Failed to persist analysis run")
		}
	}

	if e.llm != nil && job.Commentary && len(report.Items) > 0 {
		commentary, err := llm.Commentary(ctx, e.llm, e.cfg.LLM.ModelConfig(), report)
		if err != nil {
			e.logger.WithJob(job.Name).WithError(err).Warn("Commentary generation failed")
		} else {
			result.Commentary = commentary
		}
	}

	result.Duration = time.Since(start)
	result.Success = true
	e.logger.JobComplete(job.Name, executionID, result.Duration.Seconds(), len(report.Items))

	return result, nil
}

// ExecuteJob runs a job and discards the result, for the scheduler
func (e *Executor) ExecuteJob(ctx context.Context, job config.JobConfig) error {
	_, err := e.Run(ctx, job)
	return err
}

// ExecuteAllJobs runs every enabled job sequentially
func (e *Executor) ExecuteAllJobs(ctx context.Context) error {
	for _, job := range e.cfg.EnabledJobs() {
		if err := e.ExecuteJob(ctx, job); err != nil {
			return fmt.Errorf("job %s: %w", job.Name, err)
		}
	}
	return nil
}
