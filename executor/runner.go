package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/zne/extrapolation"
	"github.com/arloliu/zne/internal/options"
	"github.com/arloliu/zne/metrics"
	"github.com/arloliu/zne/sample"
)

// Runner scales and executes a circuit at every declared scale factor of an engine,
// pushes the results and reduces them.
//
// A Runner holds no per-run state and may be shared between goroutines.
type Runner struct {
	exec        Executor
	scaler      Scaler
	concurrency int
	repetitions int
	logger      *slog.Logger
	metrics     *metrics.Collector
}

// NewRunner creates a runner around exec.
//
// Example:
//
//	runner, err := executor.NewRunner(backend,
//	    executor.WithConcurrency(4),
//	    executor.WithRepetitions(3),
//	)
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Run(ctx, circuit, engine)
func NewRunner(exec Executor, opts ...RunnerOption) (*Runner, error) {
	if exec == nil {
		return nil, fmt.Errorf("executor must not be nil")
	}

	cfg := defaultRunnerConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &Runner{
		exec:        exec,
		scaler:      cfg.scaler,
		concurrency: cfg.concurrency,
		repetitions: cfg.repetitions,
		logger:      cfg.logger,
		metrics:     cfg.metrics,
	}, nil
}

// Collect executes circuit at every declared scale factor of engine and pushes each
// value as a sample. It does not reduce.
//
// Each scale factor is scaled once and executed Repetitions times. Executions run
// with up to Concurrency calls in flight; the first failure cancels the context
// passed to the remaining calls and is returned. Samples pushed before a failure
// stay in the engine.
func (r *Runner) Collect(ctx context.Context, circuit Circuit, engine *extrapolation.Engine) error {
	scaleFactors := engine.ScaleFactors()

	scaled := make([]Circuit, len(scaleFactors))
	for i, sf := range scaleFactors {
		c, err := r.scaler.Scale(ctx, circuit, sf)
		if err != nil {
			return fmt.Errorf("scale circuit by %v: %w", sf, err)
		}
		scaled[i] = c
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, sf := range scaleFactors {
		for rep := range r.repetitions {
			g.Go(func() error {
				if err := gCtx.Err(); err != nil {
					return err
				}

				return r.executeOne(gCtx, scaled[i], sf, rep, engine)
			})
		}
	}

	return g.Wait()
}

func (r *Runner) executeOne(ctx context.Context, c Circuit, sf float64, rep int, engine *extrapolation.Engine) error {
	start := time.Now()
	value, err := r.exec.Execute(ctx, c)
	if err == nil {
		err = sample.ValidateValue(value)
	}
	r.metrics.RecordExecution(time.Since(start), err)

	if err != nil {
		r.logger.Debug("execution failed",
			slog.Float64("scale_factor", sf),
			slog.Int("repetition", rep),
			slog.Any("error", err),
		)

		return fmt.Errorf("execute at scale factor %v (repetition %d): %w", sf, rep, err)
	}

	r.logger.Debug("executed",
		slog.Float64("scale_factor", sf),
		slog.Int("repetition", rep),
		slog.Float64("value", value),
	)

	return engine.Push(sf, value)
}

// Run collects samples into engine and reduces them.
//
// engine should normally be freshly created or cleared; samples already present are
// included in the reduction.
func (r *Runner) Run(ctx context.Context, circuit Circuit, engine *extrapolation.Engine) (*extrapolation.Result, error) {
	if err := r.Collect(ctx, circuit, engine); err != nil {
		return nil, err
	}

	model := engine.Model().Kind.String()
	res, err := engine.Reduce()
	if err != nil {
		r.metrics.RecordReduction(model, 0, err)
		return nil, err
	}
	r.metrics.RecordReduction(model, res.ZeroNoiseValue, nil)

	r.logger.Info("zero-noise extrapolation complete",
		slog.String("model", res.Model.String()),
		slog.Int("samples", engine.Len()),
		slog.Float64("zero_noise", res.ZeroNoiseValue),
		slog.Float64("std_err", res.ZeroNoiseError),
	)

	return res, nil
}
