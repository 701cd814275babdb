package extrapolation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/arloliu/zne/errs"
)

// fit dispatches on the model kind. x holds the distinct scale factors and y the mean
// observed value for each of them.
func fit(model FitModel, x, y []float64) (*Result, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("mismatched data lengths: %d scale factors vs %d values", len(x), len(y))
	}
	if len(x) < model.MinPoints() {
		return nil, fmt.Errorf("%w: %s needs %d, got %d",
			errs.ErrInsufficientScaleFactors, model, model.MinPoints(), len(x))
	}

	var (
		res *Result
		err error
	)
	switch model.Kind {
	case KindLinear:
		res, err = fitLinear(x, y)
	case KindPolynomial:
		res, err = fitPolynomial(x, y, model.Degree)
	case KindRichardson:
		res, err = fitRichardson(x, y)
	case KindExponential:
		res, err = fitExponential(x, y, model.Asymptote)
	default:
		return nil, fmt.Errorf("%w: unknown fit kind %d", errs.ErrInvalidFitModel, int(model.Kind))
	}
	if err != nil {
		return nil, err
	}

	if !isFinite(res.ZeroNoiseValue) || !isFinite(res.ZeroNoiseError) || !allFinite(res.Coefficients) {
		return nil, fmt.Errorf("%w: %s fit produced non-finite parameters", errs.ErrNumericalFitFailure, model)
	}

	return res, nil
}

// fitLinear fits E(s) = a + b*s by ordinary least squares.
//
// The slope is computed from centered sums, which is better conditioned than the
// raw normal equations for scale factors far from zero. The zero-noise estimate is
// the intercept a.
func fitLinear(x, y []float64) (*Result, error) {
	n := len(x)
	meanX := calculateMean(x)
	meanY := calculateMean(y)

	var sxx, sxy float64
	for i := range n {
		dx := x[i] - meanX
		sxx += dx * dx
		sxy += dx * (y[i] - meanY)
	}
	if sxx == 0 {
		return nil, fmt.Errorf("%w: linear fit needs at least two distinct scale factors", errs.ErrNumericalFitFailure)
	}

	b := sxy / sxx
	a := meanY - b*meanX

	predicted := make([]float64, n)
	for i := range n {
		predicted[i] = a + b*x[i]
	}

	dof := n - 2
	stdErr := 0.0
	if dof > 0 {
		sigma2 := sumSquaredResiduals(y, predicted) / float64(dof)
		stdErr = math.Sqrt(sigma2 * (1/float64(n) + meanX*meanX/sxx))
	}

	return &Result{
		Model:            Linear(),
		ZeroNoiseValue:   a,
		ZeroNoiseError:   stdErr,
		DegreesOfFreedom: dof,
		Coefficients:     []float64{a, b},
		RSquared:         calculateRSquared(y, predicted),
		RMSE:             calculateRMSE(y, predicted),
		Formula:          polynomialFormula([]float64{a, b}),
		Estimator:        NewLinearEstimator(a, b),
	}, nil
}

// fitPolynomial fits a least-squares polynomial of the given degree.
//
// The Vandermonde system is solved through a QR factorization rather than the
// normal equations, which would square its condition number. The zero-noise
// estimate is the constant coefficient.
func fitPolynomial(x, y []float64, degree int) (*Result, error) {
	n := len(x)
	p := degree + 1

	v := vandermonde(x, p)
	b := mat.NewVecDense(n, append([]float64(nil), y...))

	var qr mat.QR
	qr.Factorize(v)

	var c mat.VecDense
	if err := qr.SolveVecTo(&c, false, b); err != nil {
		return nil, fmt.Errorf("%w: polynomial degree %d: %w", errs.ErrNumericalFitFailure, degree, err)
	}
	coeffs := vecToSlice(&c)

	predicted := make([]float64, n)
	est := NewPolynomialEstimator(coeffs...)
	for i := range n {
		predicted[i] = est.Estimate(x[i])
	}

	dof := n - p
	stdErr, err := interceptStdErr(v, y, predicted, dof)
	if err != nil {
		return nil, err
	}

	return &Result{
		Model:            Polynomial(degree),
		ZeroNoiseValue:   coeffs[0],
		ZeroNoiseError:   stdErr,
		DegreesOfFreedom: dof,
		Coefficients:     coeffs,
		RSquared:         calculateRSquared(y, predicted),
		RMSE:             calculateRMSE(y, predicted),
		Formula:          polynomialFormula(coeffs),
		Estimator:        est,
	}, nil
}

// fitRichardson constructs the unique degree-(n-1) polynomial through the n points
// by solving the square Vandermonde system with an LU factorization, and evaluates
// it at zero.
//
// A singular or ill-conditioned system, e.g. from scale factors that are equal up
// to rounding, is reported as errs.ErrNumericalFitFailure.
func fitRichardson(x, y []float64) (*Result, error) {
	n := len(x)

	v := vandermonde(x, n)
	b := mat.NewVecDense(n, append([]float64(nil), y...))

	var lu mat.LU
	lu.Factorize(v)

	var c mat.VecDense
	if err := lu.SolveVecTo(&c, false, b); err != nil {
		return nil, fmt.Errorf("%w: richardson interpolation through %d points: %w", errs.ErrNumericalFitFailure, n, err)
	}
	coeffs := vecToSlice(&c)

	est := NewPolynomialEstimator(coeffs...)
	predicted := make([]float64, n)
	for i := range n {
		predicted[i] = est.Estimate(x[i])
	}

	model := Richardson()
	model.Degree = n - 1

	return &Result{
		Model:            model,
		ZeroNoiseValue:   coeffs[0],
		ZeroNoiseError:   0,
		DegreesOfFreedom: 0,
		Coefficients:     coeffs,
		RSquared:         calculateRSquared(y, predicted),
		RMSE:             calculateRMSE(y, predicted),
		Formula:          polynomialFormula(coeffs),
		Estimator:        est,
	}, nil
}

// fitExponential fits E(s) = asymptote + a*e^(b*s) with a known asymptote.
//
// The model is linearized as ln|y - asymptote| = ln|a| + b*s and fitted by ordinary
// least squares. Every y - asymptote must be non-zero and share one sign, otherwise
// the transform is undefined and errs.ErrNumericalFitFailure is returned. The
// zero-noise estimate is asymptote + a.
func fitExponential(x, y []float64, asymptote float64) (*Result, error) {
	n := len(x)

	sign := 0.0
	logY := make([]float64, n)
	for i := range n {
		d := y[i] - asymptote
		if d == 0 {
			return nil, fmt.Errorf("%w: exponential fit: value %v equals the asymptote", errs.ErrNumericalFitFailure, y[i])
		}
		s := math.Copysign(1, d)
		if sign == 0 {
			sign = s
		} else if s != sign {
			return nil, fmt.Errorf("%w: exponential fit: values lie on both sides of asymptote %v",
				errs.ErrNumericalFitFailure, asymptote)
		}
		logY[i] = math.Log(math.Abs(d))
	}

	lin, err := fitLinear(x, logY)
	if err != nil {
		return nil, err
	}
	logA, b := lin.Coefficients[0], lin.Coefficients[1]
	a := sign * math.Exp(logA)

	est := NewExponentialEstimator(asymptote, a, b)
	predicted := make([]float64, n)
	for i := range n {
		predicted[i] = est.Estimate(x[i])
	}

	return &Result{
		Model:            Exponential(asymptote),
		ZeroNoiseValue:   asymptote + a,
		ZeroNoiseError:   math.Abs(a) * lin.ZeroNoiseError, // delta method on ln|a|
		DegreesOfFreedom: lin.DegreesOfFreedom,
		Coefficients:     []float64{asymptote, a, b},
		RSquared:         calculateRSquared(y, predicted),
		RMSE:             calculateRMSE(y, predicted),
		Formula:          fmt.Sprintf("E(s) = %.4f %s %.4f*e^(%.4f*s)", asymptote, signChar(a), math.Abs(a), b),
		Estimator:        est,
	}, nil
}

// vandermonde builds the len(x) x cols matrix with V[i][j] = x[i]^j.
func vandermonde(x []float64, cols int) *mat.Dense {
	v := mat.NewDense(len(x), cols, nil)
	for i, xi := range x {
		pow := 1.0
		for j := range cols {
			v.Set(i, j, pow)
			pow *= xi
		}
	}

	return v
}

// interceptStdErr returns the standard error of the constant coefficient of a
// least-squares fit with design matrix v: sqrt(sigma² * [(VᵀV)⁻¹]₀₀).
// It returns zero when there are no residual degrees of freedom.
func interceptStdErr(v *mat.Dense, observed, predicted []float64, dof int) (float64, error) {
	if dof <= 0 {
		return 0, nil
	}

	var vtv, inv mat.Dense
	vtv.Mul(v.T(), v)
	if err := inv.Inverse(&vtv); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return 0, fmt.Errorf("%w: parameter covariance: %w", errs.ErrNumericalFitFailure, err)
		}
		// An ill-conditioned but non-singular inverse is still usable for an error bar.
	}

	variance := sumSquaredResiduals(observed, predicted) / float64(dof) * inv.At(0, 0)
	if variance < 0 || math.IsNaN(variance) {
		return 0, fmt.Errorf("%w: negative parameter variance %v", errs.ErrNumericalFitFailure, variance)
	}

	return math.Sqrt(variance), nil
}

func vecToSlice(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}

	return out
}

// polynomialFormula renders coefficients in ascending order of power.
func polynomialFormula(coeffs []float64) string {
	var sb strings.Builder
	sb.WriteString("E(s) = ")
	for i, c := range coeffs {
		switch {
		case i == 0:
			fmt.Fprintf(&sb, "%.4f", c)
		default:
			fmt.Fprintf(&sb, " %s %.4f*s", signChar(c), math.Abs(c))
			if i > 1 {
				fmt.Fprintf(&sb, "^%d", i)
			}
		}
	}

	return sb.String()
}

func signChar(v float64) string {
	if math.Signbit(v) {
		return "-"
	}

	return "+"
}

// calculateRSquared calculates the coefficient of determination (R²).
//
// Formula: R² = 1 - (SS_res / SS_tot). When the observations are constant SS_tot is
// zero; the result is then 1 for a perfect fit and 0 otherwise.
func calculateRSquared(observed, predicted []float64) float64 {
	if len(observed) == 0 {
		return 0
	}

	mean := calculateMean(observed)
	ssTot := 0.0
	ssRes := 0.0
	for i := range observed {
		ssTot += (observed[i] - mean) * (observed[i] - mean)
		ssRes += (observed[i] - predicted[i]) * (observed[i] - predicted[i])
	}

	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}

		return 0
	}

	return 1.0 - (ssRes / ssTot)
}

// calculateRMSE calculates the root mean square error: √(Σ(observed - predicted)² / n).
func calculateRMSE(observed, predicted []float64) float64 {
	if len(observed) == 0 {
		return 0
	}

	return math.Sqrt(sumSquaredResiduals(observed, predicted) / float64(len(observed)))
}

func sumSquaredResiduals(observed, predicted []float64) float64 {
	sumSq := 0.0
	for i := range observed {
		diff := observed[i] - predicted[i]
		sumSq += diff * diff
	}

	return sumSq
}

// calculateMean calculates the arithmetic mean (0 for an empty slice).
func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if !isFinite(v) {
			return false
		}
	}

	return true
}
