package extrapolation

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/arloliu/zne/errs"
)

// Kind identifies a fit strategy.
type Kind int

const (
	// KindLinear fits E(s) = a + b*s by ordinary least squares.
	KindLinear Kind = iota
	// KindPolynomial fits E(s) = c0 + c1*s + ... + cd*s^d by least squares.
	KindPolynomial
	// KindRichardson interpolates the unique degree-(n-1) polynomial through n points.
	KindRichardson
	// KindExponential fits E(s) = asymptote + a*e^(b*s) with a known asymptote.
	KindExponential
)

var kindNames = map[Kind]string{
	KindLinear:      "linear",
	KindPolynomial:  "polynomial",
	KindRichardson:  "richardson",
	KindExponential: "exponential",
}

var kindFromString = map[string]Kind{
	"linear":      KindLinear,
	"polynomial":  KindPolynomial,
	"poly":        KindPolynomial,
	"richardson":  KindRichardson,
	"exponential": KindExponential,
	"exp":         KindExponential,
}

// String returns the string representation of the fit kind.
func (k Kind) String() string {
	if name, exists := kindNames[k]; exists {
		return name
	}

	return "unknown"
}

// KindFromString returns the Kind for a case-insensitive name.
// Returns Kind(-1) for unknown names.
func KindFromString(name string) Kind {
	if kind, exists := kindFromString[strings.ToLower(strings.TrimSpace(name))]; exists {
		return kind
	}

	return Kind(-1)
}

// supportedKinds lists the canonical kind names in sorted order, for error messages.
func supportedKinds() string {
	names := make([]string, 0, len(kindNames))
	for _, name := range kindNames {
		names = append(names, name)
	}
	slices.Sort(names)

	return strings.Join(names, ", ")
}

// FitModel is a tagged variant describing how samples are reduced to a zero-noise estimate.
//
// Degree is only meaningful for KindPolynomial and Asymptote only for KindExponential.
// Use the Linear, Polynomial, Richardson and Exponential constructors rather than
// building the struct by hand.
type FitModel struct {
	Kind      Kind
	Degree    int
	Asymptote float64
}

// Linear returns the ordinary least-squares line model.
func Linear() FitModel {
	return FitModel{Kind: KindLinear, Degree: 1}
}

// Polynomial returns the least-squares polynomial model of the given degree.
func Polynomial(degree int) FitModel {
	return FitModel{Kind: KindPolynomial, Degree: degree}
}

// Richardson returns the interpolating polynomial model. Its degree is one less than
// the number of declared scale factors and is fixed when the engine is constructed.
func Richardson() FitModel {
	return FitModel{Kind: KindRichardson}
}

// Exponential returns the exponential decay model E(s) = asymptote + a*e^(b*s).
//
// The asymptote is the value the expectation decays to in the infinite-noise limit,
// e.g. 0 for a Pauli expectation on a fully depolarized state.
func Exponential(asymptote float64) FitModel {
	return FitModel{Kind: KindExponential, Asymptote: asymptote}
}

// FitModelFromString builds a FitModel from its name and parameters.
//
// degree is used by "polynomial" and asymptote by "exponential"; both are ignored
// otherwise. The returned model is validated.
func FitModelFromString(name string, degree int, asymptote float64) (FitModel, error) {
	var m FitModel
	switch KindFromString(name) {
	case KindLinear:
		m = Linear()
	case KindPolynomial:
		m = Polynomial(degree)
	case KindRichardson:
		m = Richardson()
	case KindExponential:
		m = Exponential(asymptote)
	default:
		return FitModel{}, fmt.Errorf("%w: unknown fit model %q, supported: %s",
			errs.ErrInvalidFitModel, name, supportedKinds())
	}

	if err := m.Validate(); err != nil {
		return FitModel{}, err
	}

	return m, nil
}

// Validate checks the model parameters, independent of any scale factors.
func (m FitModel) Validate() error {
	switch m.Kind {
	case KindLinear, KindRichardson:
		return nil
	case KindPolynomial:
		if m.Degree < 1 {
			return fmt.Errorf("%w: polynomial degree must be at least 1, got %d", errs.ErrInvalidFitModel, m.Degree)
		}

		return nil
	case KindExponential:
		if math.IsNaN(m.Asymptote) || math.IsInf(m.Asymptote, 0) {
			return fmt.Errorf("%w: exponential asymptote must be finite, got %v", errs.ErrInvalidFitModel, m.Asymptote)
		}

		return nil
	default:
		return fmt.Errorf("%w: unknown fit kind %d", errs.ErrInvalidFitModel, int(m.Kind))
	}
}

// MinPoints returns the number of free parameters of the model, which is the minimum
// number of distinct scale factors a fit needs.
func (m FitModel) MinPoints() int {
	switch m.Kind {
	case KindPolynomial:
		return m.Degree + 1
	default:
		return 2
	}
}

// String returns a human-readable description of the model.
func (m FitModel) String() string {
	switch m.Kind {
	case KindPolynomial:
		return fmt.Sprintf("polynomial(degree=%d)", m.Degree)
	case KindExponential:
		return fmt.Sprintf("exponential(asymptote=%g)", m.Asymptote)
	default:
		return m.Kind.String()
	}
}

// Result is the outcome of one reduction.
//
// A Result is produced per Engine.Reduce call and is never persisted by the engine.
type Result struct {
	// Model is the fit model that produced the result. For Richardson, Degree holds
	// the interpolation degree actually used.
	Model FitModel
	// ZeroNoiseValue is the extrapolated expectation value at scale factor 0.
	ZeroNoiseValue float64
	// ZeroNoiseError is the standard error of ZeroNoiseValue derived from the parameter
	// covariance. It is zero when the fit has no residual degrees of freedom.
	ZeroNoiseError float64
	// DegreesOfFreedom is the number of fitted points minus the number of parameters.
	DegreesOfFreedom int
	// Coefficients are the fitted parameters: ascending powers of the scale factor for
	// polynomial models, [asymptote, a, b] for the exponential model.
	Coefficients []float64
	// RSquared is the coefficient of determination of the fit.
	RSquared float64
	// RMSE is the root mean square error of the fit.
	RMSE float64
	// Formula is a human-readable representation of the fitted curve.
	Formula string
	// Estimator evaluates the fitted curve at any scale factor.
	Estimator Estimator
	// ScaleFactors are the distinct declared scale factors that were fitted.
	ScaleFactors []float64
	// Values are the mean observed values per scale factor, aligned with ScaleFactors.
	Values []float64
	// Counts are the number of samples averaged per scale factor.
	Counts []int
}

// String returns a short summary of the result.
func (r *Result) String() string {
	return fmt.Sprintf("Result{Model: %s, ZeroNoise: %.6f ± %.6f, R²: %.4f, Formula: %s}",
		r.Model, r.ZeroNoiseValue, r.ZeroNoiseError, r.RSquared, r.Formula)
}

// clone returns a deep copy so callers cannot mutate a cached result.
func (r *Result) clone() *Result {
	out := *r
	out.Coefficients = slices.Clone(r.Coefficients)
	out.ScaleFactors = slices.Clone(r.ScaleFactors)
	out.Values = slices.Clone(r.Values)
	out.Counts = slices.Clone(r.Counts)
	if r.Estimator != nil {
		est, err := NewEstimator(r.Estimator.Type().String(), r.Estimator.Coefficients())
		if err == nil {
			out.Estimator = est
		}
	}

	return &out
}
