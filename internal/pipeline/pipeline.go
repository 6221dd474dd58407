package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/ghcrawler/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each one replacing the records the
// previous one produced.
type Step interface {
	// Do executes the pipeline step.
	// Any error is fatal to the whole crawl.
	Do(ctx context.Context, result *model.CrawlResult) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// StageRecorder receives per-stage record counts. *metrics.Collector
// implements it.
type StageRecorder interface {
	SetStageRecords(stage string, n int)
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// recorder is optional.
	recorder StageRecorder
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithStageRecorder reports each finished stage's record count.
func WithStageRecorder(r StageRecorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
// Cancellation is checked before each step; steps handle it while running.
// The first error is returned and no further steps run.
func (p *Pipeline) Execute(ctx context.Context, result *model.CrawlResult) error {
	if result.StartedAt.IsZero() {
		result.StartedAt = time.Now()
	}

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"type", result.Type.String(),
		)

		start := time.Now()
		if err := step.Do(ctx, result); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"error", err,
			)
			return err
		}

		summary := model.StageSummary{
			Name:     step.Name(),
			Records:  len(result.Records),
			Duration: time.Since(start),
		}
		result.Stages = append(result.Stages, summary)
		if p.recorder != nil {
			p.recorder.SetStageRecords(summary.Name, summary.Records)
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"records", summary.Records,
			"elapsed", summary.Duration,
		)
	}

	result.FinishedAt = time.Now()
	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
