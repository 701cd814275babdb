// Package zne provides zero-noise extrapolation (ZNE) for noisy quantum expectation values.
//
// ZNE executes a circuit at several deliberately amplified noise levels (scale factors
// λ ≥ 1, where λ = 1 is the native noise of the device), fits a curve through the
// measured expectation values, and evaluates it at λ = 0 to estimate the noiseless value.
//
// # Core Features
//
//   - Linear, polynomial, Richardson and exponential fit models
//   - Standard error of the zero-noise estimate from the parameter covariance
//   - Concurrent execution across scale factors with repetitions
//   - Compressed, checksummed sample archives for re-reduction
//   - Prometheus metrics and structured logging hooks
//
// # Basic Usage
//
// One call with a user-supplied executor:
//
//	import "github.com/arloliu/zne"
//
//	backend := executor.ExecutorFunc(func(ctx context.Context, c executor.Circuit) (float64, error) {
//	    sc := c.(executor.ScaledCircuit)
//	    return runOnDevice(ctx, sc.Base, sc.ScaleFactor)
//	})
//
//	result, err := zne.Execute(ctx, circuit, backend, extrapolation.Richardson(), []float64{1, 2, 3})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.ZeroNoiseValue)
//
// Reducing samples that were collected elsewhere:
//
//	result, err := zne.Reduce(extrapolation.Linear(), []float64{1, 2, 3}, samples)
//
// # Package Structure
//
// This package provides convenient top-level wrappers. For fine-grained control use
// the extrapolation, executor and archive packages directly.
package zne

import (
	"context"

	"github.com/google/uuid"

	"github.com/arloliu/zne/archive"
	"github.com/arloliu/zne/executor"
	"github.com/arloliu/zne/extrapolation"
	"github.com/arloliu/zne/sample"
)

// DefaultScaleFactors are the noise scale factors used when none are configured.
var DefaultScaleFactors = []float64{1, 2, 3}

// NewEngine creates an extrapolation engine.
//
// Parameters:
//   - model: Fit model (extrapolation.Linear(), Richardson(), Polynomial(d) or Exponential(a))
//   - scaleFactors: Declared noise scale factors, finite and positive
//   - opts: Optional engine options
//
// Returns:
//   - *extrapolation.Engine: Engine in the idle state
//   - error: ErrInvalidScaleFactor, ErrInsufficientScaleFactors or ErrInvalidFitModel
func NewEngine(model extrapolation.FitModel, scaleFactors []float64, opts ...extrapolation.EngineOption) (*extrapolation.Engine, error) {
	return extrapolation.NewEngine(model, scaleFactors, opts...)
}

// NewLinearEngine creates a linear-fit engine over DefaultScaleFactors.
func NewLinearEngine(opts ...extrapolation.EngineOption) (*extrapolation.Engine, error) {
	return extrapolation.NewEngine(extrapolation.Linear(), DefaultScaleFactors, opts...)
}

// NewRichardsonEngine creates a Richardson engine over the given scale factors.
func NewRichardsonEngine(scaleFactors []float64, opts ...extrapolation.EngineOption) (*extrapolation.Engine, error) {
	return extrapolation.NewEngine(extrapolation.Richardson(), scaleFactors, opts...)
}

// Reduce builds a temporary engine, pushes samples in order and reduces them.
//
// Returns:
//   - *extrapolation.Result: Fit result
//   - error: Any construction, push or reduce error
func Reduce(model extrapolation.FitModel, scaleFactors []float64, samples []sample.Sample) (*extrapolation.Result, error) {
	engine, err := extrapolation.NewEngine(model, scaleFactors, extrapolation.WithStoreCapacity(len(samples)))
	if err != nil {
		return nil, err
	}
	for _, s := range samples {
		if err := engine.Push(s.ScaleFactor, s.Value); err != nil {
			return nil, err
		}
	}

	return engine.Reduce()
}

// Execute runs circuit through exec at every scale factor and extrapolates to zero noise.
//
// Parameters:
//   - ctx: Cancels outstanding executions
//   - circuit: Opaque circuit passed to the runner's Scaler
//   - exec: Backend returning one expectation value per call
//   - model: Fit model
//   - scaleFactors: Declared noise scale factors
//   - opts: Runner options such as executor.WithConcurrency
//
// Returns:
//   - *extrapolation.Result: Fit result
//   - error: Construction, execution or reduction error
func Execute(
	ctx context.Context,
	circuit executor.Circuit,
	exec executor.Executor,
	model extrapolation.FitModel,
	scaleFactors []float64,
	opts ...executor.RunnerOption,
) (*extrapolation.Result, error) {
	engine, err := extrapolation.NewEngine(model, scaleFactors)
	if err != nil {
		return nil, err
	}

	runner, err := executor.NewRunner(exec, opts...)
	if err != nil {
		return nil, err
	}

	return runner.Run(ctx, circuit, engine)
}

// Archive encodes the declaration and samples of engine under a fresh run ID.
func Archive(engine *extrapolation.Engine, opts ...archive.EncodeOption) ([]byte, error) {
	return archive.Encode(archive.FromEngine(uuid.New(), engine), opts...)
}

// Restore decodes an archive into an engine holding the archived samples.
func Restore(data []byte, opts ...extrapolation.EngineOption) (*extrapolation.Engine, error) {
	rec, err := archive.Decode(data)
	if err != nil {
		return nil, err
	}

	return rec.Engine(opts...)
}
