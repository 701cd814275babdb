package extrapolation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/zne/errs"
)

func TestKindFromString(t *testing.T) {
	tests := []struct {
		name     string
		expected Kind
	}{
		{"linear", KindLinear},
		{"LINEAR", KindLinear},
		{" polynomial ", KindPolynomial},
		{"poly", KindPolynomial},
		{"richardson", KindRichardson},
		{"exponential", KindExponential},
		{"exp", KindExponential},
		{"cubic-spline", Kind(-1)},
		{"", Kind(-1)},
	}

	for _, tt := range tests {
		require.Equal(t, tt.expected, KindFromString(tt.name), "name %q", tt.name)
	}
	require.Equal(t, "unknown", Kind(-1).String())
}

func TestFitModelFromString(t *testing.T) {
	m, err := FitModelFromString("polynomial", 3, 0)
	require.NoError(t, err)
	require.Equal(t, Polynomial(3), m)
	require.Equal(t, 4, m.MinPoints())

	m, err = FitModelFromString("exp", 0, 0.25)
	require.NoError(t, err)
	require.Equal(t, Exponential(0.25), m)

	m, err = FitModelFromString("Richardson", 7, 0)
	require.NoError(t, err)
	require.Equal(t, Richardson(), m)

	_, err = FitModelFromString("spline", 0, 0)
	require.ErrorIs(t, err, errs.ErrInvalidFitModel)
	require.Contains(t, err.Error(), "exponential, linear, polynomial, richardson")

	_, err = FitModelFromString("polynomial", 0, 0)
	require.ErrorIs(t, err, errs.ErrInvalidFitModel)

	_, err = FitModelFromString("exponential", 0, math.NaN())
	require.ErrorIs(t, err, errs.ErrInvalidFitModel)
}

func TestFitModel_MinPointsAndString(t *testing.T) {
	require.Equal(t, 2, Linear().MinPoints())
	require.Equal(t, 2, Richardson().MinPoints())
	require.Equal(t, 2, Exponential(0).MinPoints())
	require.Equal(t, 3, Polynomial(2).MinPoints())

	require.Equal(t, "linear", Linear().String())
	require.Equal(t, "richardson", Richardson().String())
	require.Equal(t, "polynomial(degree=2)", Polynomial(2).String())
	require.Equal(t, "exponential(asymptote=0.5)", Exponential(0.5).String())
}

func TestEstimators(t *testing.T) {
	lin := NewLinearEstimator(1, -0.1)
	require.InDelta(t, 0.8, lin.Estimate(2), 1e-12)
	require.Equal(t, KindLinear, lin.Type())
	require.Equal(t, []float64{1, -0.1}, lin.Coefficients())

	poly := NewPolynomialEstimator(1, -0.1, 0.02)
	require.InDelta(t, 1-0.2+0.08, poly.Estimate(2), 1e-12)
	require.Equal(t, 2, poly.Degree())

	exp := NewExponentialEstimator(0.1, 0.8, -0.5)
	require.InDelta(t, 0.9, exp.Estimate(0), 1e-12)
	require.InDelta(t, 0.1+0.8*math.Exp(-1), exp.Estimate(2), 1e-12)

	coeffs := poly.Coefficients()
	coeffs[0] = 100
	require.InDelta(t, 1.0, poly.Estimate(0), 1e-12)
}

func TestNewEstimator(t *testing.T) {
	est, err := NewEstimator("richardson", []float64{2, 0, 1})
	require.NoError(t, err)
	require.Equal(t, KindPolynomial, est.Type())
	require.InDelta(t, 6.0, est.Estimate(2), 1e-12)

	est, err = NewEstimator("exponential", []float64{0, 1, -1})
	require.NoError(t, err)
	require.InDelta(t, 1.0, est.Estimate(0), 1e-12)

	_, err = NewEstimator("linear", []float64{1})
	require.Error(t, err)

	_, err = NewEstimator("polynomial", nil)
	require.Error(t, err)

	_, err = NewEstimator("exponential", []float64{1, 2})
	require.Error(t, err)

	_, err = NewEstimator("gaussian", []float64{1})
	require.ErrorIs(t, err, errs.ErrInvalidFitModel)
}

func TestResult_String(t *testing.T) {
	res, err := fit(Linear(), []float64{1, 2}, []float64{0.9, 0.8})
	require.NoError(t, err)
	require.Contains(t, res.String(), "Model: linear")
	require.Contains(t, res.String(), "E(s) = 1.0000 - 0.1000*s")
}
