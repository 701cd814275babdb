// Package extrapolation implements the zero-noise extrapolation inference engine.
//
// Zero-noise extrapolation (ZNE) runs a circuit at several deliberately amplified noise
// levels, measures an expectation value at each level, and fits a curve through the
// (scale factor, value) points. The curve evaluated at scale factor 0 is the estimate of
// the noiseless expectation value.
//
// # Fit Models
//
// FitModel is a tagged variant; the engine dispatches on its Kind:
//
//   - **Linear**: E(s) = a + b*s, ordinary least squares, estimate = a
//   - **Polynomial(d)**: least-squares polynomial of degree d, estimate = c0
//   - **Richardson**: the unique degree-(n-1) polynomial through n points, estimate = c0
//   - **Exponential(asymptote)**: E(s) = asymptote + a*e^(b*s), estimate = asymptote + a
//
// Each model needs at least MinPoints() distinct scale factors. Richardson is exact for
// polynomial data of degree n-1; Linear and Polynomial average out noise when there are
// more points than parameters, and report a standard error for the estimate.
//
// # Usage
//
//	engine, err := extrapolation.NewEngine(extrapolation.Linear(), []float64{1, 2, 3})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, sf := range engine.ScaleFactors() {
//	    value := runNoisyCircuit(sf) // external executor
//	    if err := engine.Push(sf, value); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
//	result, err := engine.Reduce()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("zero-noise estimate: %.4f ± %.4f\n", result.ZeroNoiseValue, result.ZeroNoiseError)
//
// # Repeated Measurements
//
// Several samples may be pushed for the same scale factor. All are retained in the
// store; Reduce fits the arithmetic mean per scale factor.
//
// # Errors
//
// Invalid input is reported immediately and is never retried: errs.ErrInvalidScaleFactor,
// errs.ErrInsufficientScaleFactors, errs.ErrMissingSamples and errs.ErrNumericalFitFailure.
// Use errors.Is to match them.
//
// # Thread Safety
//
// Push may be called concurrently, e.g. from parallel executor calls. Push, Reduce and
// Clear serialize on the engine mutex, so a Clear never interleaves with a sample
// being recorded.
package extrapolation
