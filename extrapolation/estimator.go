package extrapolation

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/arloliu/zne/errs"
)

// Estimator evaluates a fitted extrapolation curve.
type Estimator interface {
	// Estimate evaluates the curve at the given scale factor. Estimate(0) is the
	// zero-noise value.
	Estimate(scaleFactor float64) float64
	// Type returns the curve family.
	Type() Kind
	// Coefficients returns a copy of the curve coefficients.
	Coefficients() []float64
	// SetCoefficients replaces the coefficients. The count must match the curve family:
	// 2 for linear, at least 1 for polynomial, 3 for exponential.
	SetCoefficients(coeffs []float64) error
}

// LinearEstimator implements E(s) = a + b*s.
type LinearEstimator struct {
	a, b float64
}

// NewLinearEstimator creates a linear estimator with intercept a and slope b.
func NewLinearEstimator(a, b float64) *LinearEstimator {
	return &LinearEstimator{a: a, b: b}
}

// Estimate calculates a + b*s.
func (l *LinearEstimator) Estimate(scaleFactor float64) float64 {
	return l.a + l.b*scaleFactor
}

// Type returns KindLinear.
func (l *LinearEstimator) Type() Kind {
	return KindLinear
}

// Coefficients returns [a, b].
func (l *LinearEstimator) Coefficients() []float64 {
	return []float64{l.a, l.b}
}

// SetCoefficients expects exactly 2 coefficients: [a, b].
func (l *LinearEstimator) SetCoefficients(coeffs []float64) error {
	if len(coeffs) != 2 {
		return fmt.Errorf("linear model expects exactly 2 coefficients, got %d", len(coeffs))
	}
	l.a = coeffs[0]
	l.b = coeffs[1]

	return nil
}

// PolynomialEstimator implements E(s) = c0 + c1*s + ... + cd*s^d.
type PolynomialEstimator struct {
	coeffs []float64 // ascending powers
}

// NewPolynomialEstimator creates a polynomial estimator from coefficients in
// ascending order of power.
func NewPolynomialEstimator(coeffs ...float64) *PolynomialEstimator {
	return &PolynomialEstimator{coeffs: slices.Clone(coeffs)}
}

// Estimate evaluates the polynomial with Horner's method.
func (p *PolynomialEstimator) Estimate(scaleFactor float64) float64 {
	result := 0.0
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		result = result*scaleFactor + p.coeffs[i]
	}

	return result
}

// Type returns KindPolynomial.
func (p *PolynomialEstimator) Type() Kind {
	return KindPolynomial
}

// Degree returns the polynomial degree.
func (p *PolynomialEstimator) Degree() int {
	return len(p.coeffs) - 1
}

// Coefficients returns the coefficients in ascending order of power.
func (p *PolynomialEstimator) Coefficients() []float64 {
	return slices.Clone(p.coeffs)
}

// SetCoefficients expects at least one coefficient, in ascending order of power.
func (p *PolynomialEstimator) SetCoefficients(coeffs []float64) error {
	if len(coeffs) == 0 {
		return fmt.Errorf("polynomial model expects at least 1 coefficient, got 0")
	}
	p.coeffs = slices.Clone(coeffs)

	return nil
}

// ExponentialEstimator implements E(s) = asymptote + a*e^(b*s).
type ExponentialEstimator struct {
	asymptote, a, b float64
}

// NewExponentialEstimator creates an exponential estimator.
func NewExponentialEstimator(asymptote, a, b float64) *ExponentialEstimator {
	return &ExponentialEstimator{asymptote: asymptote, a: a, b: b}
}

// Estimate calculates asymptote + a*e^(b*s).
func (e *ExponentialEstimator) Estimate(scaleFactor float64) float64 {
	return e.asymptote + e.a*math.Exp(e.b*scaleFactor)
}

// Type returns KindExponential.
func (e *ExponentialEstimator) Type() Kind {
	return KindExponential
}

// Coefficients returns [asymptote, a, b].
func (e *ExponentialEstimator) Coefficients() []float64 {
	return []float64{e.asymptote, e.a, e.b}
}

// SetCoefficients expects exactly 3 coefficients: [asymptote, a, b].
func (e *ExponentialEstimator) SetCoefficients(coeffs []float64) error {
	if len(coeffs) != 3 {
		return fmt.Errorf("exponential model expects exactly 3 coefficients, got %d", len(coeffs))
	}
	e.asymptote = coeffs[0]
	e.a = coeffs[1]
	e.b = coeffs[2]

	return nil
}

// NewEstimator creates an estimator by curve name and coefficients.
//
// Supported names (case-insensitive):
//   - "linear": 2 coefficients [a, b]
//   - "polynomial" or "richardson": 1 or more coefficients in ascending order of power
//   - "exponential": 3 coefficients [asymptote, a, b]
//
// Example:
//
//	est, err := extrapolation.NewEstimator("polynomial", []float64{1.0, -0.1, 0.02})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	zeroNoise := est.Estimate(0)
func NewEstimator(name string, coeffs []float64) (Estimator, error) {
	var est Estimator
	switch KindFromString(name) {
	case KindLinear:
		est = &LinearEstimator{}
	case KindPolynomial, KindRichardson:
		est = &PolynomialEstimator{}
	case KindExponential:
		est = &ExponentialEstimator{}
	default:
		return nil, fmt.Errorf("%w: unknown estimator %q, supported: %s",
			errs.ErrInvalidFitModel, name, strings.Join([]string{"exponential", "linear", "polynomial", "richardson"}, ", "))
	}

	if err := est.SetCoefficients(coeffs); err != nil {
		return nil, err
	}

	return est, nil
}
