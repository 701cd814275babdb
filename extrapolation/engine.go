package extrapolation

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/arloliu/zne/errs"
	"github.com/arloliu/zne/internal/options"
	"github.com/arloliu/zne/sample"
)

// State is the lifecycle state of an Engine.
type State int

const (
	// StateIdle means no samples are recorded: right after construction or Clear.
	StateIdle State = iota
	// StateAccumulating means samples were pushed since the last successful Reduce.
	StateAccumulating
	// StateReduced means a Reduce succeeded and its result is cached.
	StateReduced
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAccumulating:
		return "accumulating"
	case StateReduced:
		return "reduced"
	default:
		return "unknown"
	}
}

// Engine accumulates noise-scaled samples and extrapolates them to the zero-noise limit.
//
// An Engine owns its sample store exclusively. All methods are safe to call from
// several goroutines; Push, Clear and Reduce serialize on one mutex, so the state
// always matches the store contents.
//
// State transitions:
//
//	Idle --Push--> Accumulating --Reduce--> Reduced
//	Reduced --Push--> Accumulating (cached result dropped)
//	any --Clear--> Idle
//
// A failed Reduce leaves the state unchanged.
type Engine struct {
	mu           sync.Mutex
	model        FitModel
	scaleFactors []float64
	store        *sample.Store
	state        State
	cached       *Result
	logger       *slog.Logger
}

// NewEngine creates an engine for the given fit model and declared scale factors.
//
// Every scale factor must be finite and positive (errs.ErrInvalidScaleFactor).
// Scale factors must be distinct: a repeated one would leave the fit with fewer
// points than it was declared with, so it fails with errs.ErrNumericalFitFailure.
// The number of scale factors must be at least model.MinPoints()
// (errs.ErrInsufficientScaleFactors):
//   - Linear: 2 or more
//   - Richardson: n ≥ 2, interpolated with a degree-(n-1) polynomial
//   - Polynomial(d): d+1 or more
//   - Exponential: 2 or more
//
// Example:
//
//	engine, err := extrapolation.NewEngine(extrapolation.Richardson(), []float64{1, 2, 3})
//	if err != nil {
//	    return err
//	}
//	for i, v := range []float64{0.9, 0.8, 0.7} {
//	    if err := engine.Push(float64(i+1), v); err != nil {
//	        return err
//	    }
//	}
//	result, err := engine.Reduce() // result.ZeroNoiseValue ≈ 1.0
func NewEngine(model FitModel, scaleFactors []float64, opts ...EngineOption) (*Engine, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}

	cfg := defaultEngineConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	distinct := make([]float64, 0, len(scaleFactors))
	for _, sf := range scaleFactors {
		if err := sample.ValidateScaleFactor(sf); err != nil {
			return nil, err
		}
		if slices.Contains(distinct, sf) {
			return nil, fmt.Errorf("%w: scale factor %v declared more than once for %s",
				errs.ErrNumericalFitFailure, sf, model)
		}
		distinct = append(distinct, sf)
	}

	if len(distinct) < model.MinPoints() {
		return nil, fmt.Errorf("%w: %s needs at least %d distinct scale factors, got %d",
			errs.ErrInsufficientScaleFactors, model, model.MinPoints(), len(distinct))
	}

	if model.Kind == KindRichardson {
		model.Degree = len(distinct) - 1
	}

	return &Engine{
		model:        model,
		scaleFactors: distinct,
		store:        sample.NewStore(cfg.storeCapacity),
		state:        StateIdle,
		logger:       cfg.logger,
	}, nil
}

// Model returns the fit model. For Richardson the degree is resolved.
func (e *Engine) Model() FitModel {
	return e.model
}

// ScaleFactors returns a copy of the distinct declared scale factors.
func (e *Engine) ScaleFactors() []float64 {
	return slices.Clone(e.scaleFactors)
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state
}

// Push records a sample and invalidates any cached result.
//
// Samples at scale factors that were not declared are retained but do not take
// part in the fit.
func (e *Engine) Push(scaleFactor, value float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.Push(scaleFactor, value); err != nil {
		return err
	}

	if e.state == StateReduced {
		e.logger.Debug("push after reduce, dropping cached result",
			slog.Float64("scale_factor", scaleFactor))
	}
	e.state = StateAccumulating
	e.cached = nil

	return nil
}

// Samples returns all recorded samples in insertion order.
func (e *Engine) Samples() []sample.Sample {
	return e.store.Samples()
}

// Len returns the number of recorded samples.
func (e *Engine) Len() int {
	return e.store.Len()
}

// Clear drops all samples and any cached result, returning the engine to StateIdle.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.store.Clear()
	e.state = StateIdle
	e.cached = nil
}

// Reduce extrapolates the recorded samples to scale factor zero.
//
// Each declared scale factor must have at least one sample (errs.ErrMissingSamples).
// Multiple samples at one scale factor are averaged. A singular or ill-conditioned
// solve, or a non-finite estimate, fails with errs.ErrNumericalFitFailure.
//
// The result is cached until the next Push or Clear, so repeated calls return
// bit-identical values. Each call returns its own copy of the result.
func (e *Engine) Reduce() (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cached != nil {
		return e.cached.clone(), nil
	}

	means, counts := e.store.Group(e.scaleFactors)
	for i, c := range counts {
		if c == 0 {
			return nil, fmt.Errorf("%w: scale factor %v has no samples", errs.ErrMissingSamples, e.scaleFactors[i])
		}
	}

	res, err := fit(e.model, e.scaleFactors, means)
	if err != nil {
		e.logger.Debug("reduce failed", slog.String("model", e.model.String()), slog.Any("error", err))
		return nil, err
	}

	res.Model = e.model
	res.ScaleFactors = slices.Clone(e.scaleFactors)
	res.Values = means
	res.Counts = counts

	e.cached = res
	e.state = StateReduced
	e.logger.Debug("reduced",
		slog.String("model", e.model.String()),
		slog.Float64("zero_noise", res.ZeroNoiseValue),
		slog.Float64("std_err", res.ZeroNoiseError),
		slog.Float64("r_squared", res.RSquared),
	)

	return res.clone(), nil
}
