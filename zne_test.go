package zne

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/zne/archive"
	"github.com/arloliu/zne/errs"
	"github.com/arloliu/zne/executor"
	"github.com/arloliu/zne/extrapolation"
	"github.com/arloliu/zne/format"
	"github.com/arloliu/zne/sample"
)

// depolarizing models a single-qubit expectation under global depolarizing noise,
// which decays exponentially with the number of noisy layers.
func depolarizing(ideal, rate float64) executor.ExecutorFunc {
	return func(_ context.Context, c executor.Circuit) (float64, error) {
		sc := c.(executor.ScaledCircuit)
		return ideal * math.Exp(-rate*sc.ScaleFactor), nil
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("Exponential", func(t *testing.T) {
		res, err := Execute(ctx, "x-gate", depolarizing(0.8, 0.3), extrapolation.Exponential(0), []float64{1, 2, 3},
			executor.WithConcurrency(3))
		require.NoError(t, err)
		require.InDelta(t, 0.8, res.ZeroNoiseValue, 1e-9)
	})

	t.Run("RichardsonBeatsUnmitigated", func(t *testing.T) {
		res, err := Execute(ctx, nil, depolarizing(1, 0.1), extrapolation.Richardson(), []float64{1, 2, 3})
		require.NoError(t, err)
		unmitigated := math.Exp(-0.1)
		require.Less(t, math.Abs(res.ZeroNoiseValue-1), math.Abs(unmitigated-1))
	})

	t.Run("InvalidScaleFactors", func(t *testing.T) {
		_, err := Execute(ctx, nil, depolarizing(1, 0.1), extrapolation.Linear(), []float64{1})
		require.ErrorIs(t, err, errs.ErrInsufficientScaleFactors)
	})

	t.Run("InvalidRunnerOption", func(t *testing.T) {
		_, err := Execute(ctx, nil, depolarizing(1, 0.1), extrapolation.Linear(), DefaultScaleFactors,
			executor.WithConcurrency(-1))
		require.Error(t, err)
	})

	t.Run("ExecutorError", func(t *testing.T) {
		boom := errors.New("queue full")
		exec := executor.ExecutorFunc(func(context.Context, executor.Circuit) (float64, error) {
			return 0, boom
		})
		_, err := Execute(ctx, nil, exec, extrapolation.Linear(), DefaultScaleFactors)
		require.ErrorIs(t, err, boom)
	})
}

func TestReduce(t *testing.T) {
	samples := []sample.Sample{
		{ScaleFactor: 1, Value: 0.9},
		{ScaleFactor: 2, Value: 0.8},
		{ScaleFactor: 3, Value: 0.7},
	}

	for _, m := range []extrapolation.FitModel{extrapolation.Linear(), extrapolation.Richardson()} {
		res, err := Reduce(m, []float64{1, 2, 3}, samples)
		require.NoError(t, err)
		require.InDelta(t, 1.0, res.ZeroNoiseValue, 1e-9, m.String())
	}

	_, err := Reduce(extrapolation.Linear(), []float64{1, 2, 3}, samples[:2])
	require.ErrorIs(t, err, errs.ErrMissingSamples)

	_, err = Reduce(extrapolation.Linear(), []float64{1, 2}, []sample.Sample{{ScaleFactor: -1, Value: 0}})
	require.ErrorIs(t, err, errs.ErrInvalidScaleFactor)
}

func TestEngineConstructors(t *testing.T) {
	e, err := NewLinearEngine()
	require.NoError(t, err)
	require.Equal(t, DefaultScaleFactors, e.ScaleFactors())

	e, err = NewRichardsonEngine([]float64{1, 3, 5})
	require.NoError(t, err)
	require.Equal(t, 2, e.Model().Degree)

	_, err = NewEngine(extrapolation.Polynomial(2), []float64{1, 2})
	require.ErrorIs(t, err, errs.ErrInsufficientScaleFactors)
}

func TestArchiveRestore(t *testing.T) {
	e, err := NewRichardsonEngine([]float64{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, e.Push(1, 1))
	require.NoError(t, e.Push(2, 4))
	require.NoError(t, e.Push(3, 9))

	data, err := Archive(e, archive.WithCompression(format.CompressionS2))
	require.NoError(t, err)

	restored, err := Restore(data)
	require.NoError(t, err)
	res, err := restored.Reduce()
	require.NoError(t, err)
	require.InDelta(t, 0.0, res.ZeroNoiseValue, 1e-9)

	data[len(data)-1] ^= 0xFF
	_, err = Restore(data)
	require.Error(t, err)
}
