// Package errs defines the sentinel errors shared by the zne packages.
//
// All errors are reported synchronously at the point of the offending call and
// are never retried internally. Callers match them with errors.Is; the packages
// wrap them with call-site context using fmt.Errorf("...: %w", err).
package errs

import "errors"

// Sample store and engine input errors.
var (
	// ErrInvalidScaleFactor is returned when a scale factor is zero, negative, NaN or infinite.
	ErrInvalidScaleFactor = errors.New("invalid scale factor: must be a finite positive number")
	// ErrInvalidValue is returned when an expectation value is NaN or infinite.
	ErrInvalidValue = errors.New("invalid expectation value: must be finite")
	// ErrInsufficientScaleFactors is returned when a fit model needs more distinct scale factors than supplied.
	ErrInsufficientScaleFactors = errors.New("insufficient distinct scale factors for fit model")
	// ErrInvalidFitModel is returned for an unknown fit kind or invalid model parameters.
	ErrInvalidFitModel = errors.New("invalid fit model")
)

// Reduction errors.
var (
	// ErrMissingSamples is returned by Reduce when a declared scale factor has no recorded samples.
	ErrMissingSamples = errors.New("missing samples for declared scale factor")
	// ErrNumericalFitFailure is returned when the underlying solve is singular, ill-conditioned
	// or produces a non-finite estimate.
	ErrNumericalFitFailure = errors.New("numerical fit failure")
)

// Archive errors.
var (
	ErrInvalidArchive         = errors.New("invalid sample archive")
	ErrInvalidArchiveHeader   = errors.New("invalid sample archive header")
	ErrChecksumMismatch       = errors.New("sample archive checksum mismatch")
	ErrUnsupportedCompression = errors.New("unsupported compression type")
	// ErrDecompressLimit is returned when a compressed block would decode to more bytes
	// than the caller allows.
	ErrDecompressLimit = errors.New("decompressed size exceeds limit")
)
