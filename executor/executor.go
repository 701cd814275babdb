// Package executor connects the extrapolation engine to the outside world.
//
// Circuits are opaque to zne. A Scaler amplifies the noise of a circuit by a scale
// factor (typically by unitary folding) and an Executor runs a circuit and returns
// one noisy expectation value. Runner drives both over the declared scale factors
// of an extrapolation.Engine and reduces the collected samples.
package executor

import "context"

// Circuit is an opaque circuit description owned by the caller.
type Circuit = any

// Executor runs a circuit and returns its noisy expectation value.
//
// Implementations must return a finite value or an error. Errors are propagated to
// the caller of Runner.Run unchanged apart from wrapping; they are never retried.
type Executor interface {
	Execute(ctx context.Context, circuit Circuit) (float64, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, circuit Circuit) (float64, error)

// Execute calls f(ctx, circuit).
func (f ExecutorFunc) Execute(ctx context.Context, circuit Circuit) (float64, error) {
	return f(ctx, circuit)
}

// Scaler produces a noise-amplified version of a circuit.
type Scaler interface {
	Scale(ctx context.Context, circuit Circuit, scaleFactor float64) (Circuit, error)
}

// ScalerFunc adapts a function to the Scaler interface.
type ScalerFunc func(ctx context.Context, circuit Circuit, scaleFactor float64) (Circuit, error)

// Scale calls f(ctx, circuit, scaleFactor).
func (f ScalerFunc) Scale(ctx context.Context, circuit Circuit, scaleFactor float64) (Circuit, error) {
	return f(ctx, circuit, scaleFactor)
}

// ScaledCircuit is produced by the default scaler. Executors that amplify noise
// themselves, e.g. by stretching pulses or raising a simulator's error rate, read
// ScaleFactor from it.
type ScaledCircuit struct {
	Base        Circuit
	ScaleFactor float64
}

// TagScaler is the default Scaler. It does not transform the circuit and only
// attaches the scale factor as a ScaledCircuit.
var TagScaler Scaler = ScalerFunc(func(_ context.Context, circuit Circuit, scaleFactor float64) (Circuit, error) {
	return ScaledCircuit{Base: circuit, ScaleFactor: scaleFactor}, nil
})
