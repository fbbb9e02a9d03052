// Package pipeline sequences agent invocations, feeding the accumulated
// output of each stage into the next. Stages are strictly ordered by data
// dependency: stage N+1 never starts before stage N returns.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"a2apipe/internal/metrics"
	"a2apipe/relay"
)

// Invoker is one remote stage invocation. *relay.Client satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, input string) (string, error)
}

// Stage is one agent invocation within the pipeline.
type Stage struct {
	// Name identifies the stage in errors, logs, and metrics.
	Name string
	// Invoker performs the stage's invocation.
	Invoker Invoker
}

// StageError reports which stage failed and why. The remainder of the
// pipeline is never attempted after the first failure.
type StageError struct {
	Stage string
	Index int
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline: stage %d (%s) failed: %v", e.Index+1, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Config holds pipeline configuration.
type Config struct {
	// Logger is the logger instance. Defaults to a no-op logger.
	Logger *zap.Logger
	// Metrics is the optional metrics collector.
	Metrics *metrics.Collector
}

// Pipeline executes stages sequentially, carrying the current text payload
// across stages. The carried payload is replaced after each stage, never
// mutated in place.
type Pipeline struct {
	name      string
	stages    []Stage
	recoverer *relay.Recoverer
	logger    *zap.Logger
	metrics   *metrics.Collector
}

// New creates a pipeline with the given stages. cfg may be nil.
func New(name string, cfg *Config, stages ...Stage) *Pipeline {
	if cfg == nil {
		cfg = &Config{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("pipeline", name))
	return &Pipeline{
		name:      name,
		stages:    stages,
		recoverer: relay.NewRecoverer(logger, cfg.Metrics),
		logger:    logger,
		metrics:   cfg.Metrics,
	}
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string { return p.name }

// Run executes every stage in order and returns the final stage's output.
// On failure it returns a *StageError identifying the failing stage; later
// stages are not attempted with stale or partial input.
//
// Before a stage's output is fed into the next stage, it is passed through
// envelope recovery if it still contains the statusUpdate marker. This guards
// against an upstream stage forwarding raw envelope noise instead of
// extracted text.
func (p *Pipeline) Run(ctx context.Context, input string) (string, error) {
	current := input

	for i, stage := range p.stages {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		if i > 0 && strings.Contains(current, relay.StatusUpdateMarker) {
			p.logger.Warn("stage output still carries raw envelopes, recovering",
				zap.String("stage", stage.Name),
			)
			current = p.recoverer.Recover(current)
		}

		started := time.Now()
		p.logger.Info("stage starting",
			zap.String("stage", stage.Name),
			zap.Int("input_chars", len(current)),
		)

		output, err := stage.Invoker.Invoke(ctx, current)
		if err != nil {
			p.metrics.RecordStageFailure(stage.Name)
			p.logger.Error("stage failed",
				zap.String("stage", stage.Name),
				zap.Duration("elapsed", time.Since(started)),
				zap.Error(err),
			)
			return "", &StageError{Stage: stage.Name, Index: i, Err: err}
		}

		p.logger.Info("stage complete",
			zap.String("stage", stage.Name),
			zap.Duration("elapsed", time.Since(started)),
			zap.Int("output_chars", len(output)),
		)
		current = output
	}

	return current, nil
}
