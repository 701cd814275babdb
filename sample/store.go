// Package sample provides the noise-scaled sample store used by the extrapolation engine.
//
// A Store accumulates (scale factor, expectation value) pairs observed while executing
// a circuit at several noise-amplification levels. It is append-only: samples are never
// mutated or removed individually, only the whole store can be cleared. Insertion order
// is preserved so that a run can be replayed or inspected exactly as it was recorded.
//
// Store is safe for concurrent use; callers that fan out executor calls across scale
// factors may push from several goroutines.
package sample

import (
	"fmt"
	"iter"
	"math"
	"slices"
	"sync"

	"github.com/arloliu/zne/errs"
	"github.com/arloliu/zne/internal/pool"
)

// Sample is a single observation: the expectation value measured for a circuit whose
// noise was amplified by ScaleFactor.
type Sample struct {
	ScaleFactor float64 `yaml:"scale_factor" json:"scale_factor"`
	Value       float64 `yaml:"value" json:"value"`
}

// Store is an append-only, insertion-ordered sequence of samples.
//
// The zero value is an empty store ready for use.
type Store struct {
	mu      sync.RWMutex
	samples []Sample
}

// NewStore creates an empty store with room for capacity samples.
func NewStore(capacity int) *Store {
	if capacity < 0 {
		capacity = 0
	}

	return &Store{samples: make([]Sample, 0, capacity)}
}

// ValidateScaleFactor reports errs.ErrInvalidScaleFactor for zero, negative or non-finite factors.
func ValidateScaleFactor(scaleFactor float64) error {
	if math.IsNaN(scaleFactor) || math.IsInf(scaleFactor, 0) || scaleFactor <= 0 {
		return fmt.Errorf("%w: %v", errs.ErrInvalidScaleFactor, scaleFactor)
	}

	return nil
}

// ValidateValue reports errs.ErrInvalidValue for NaN or infinite values.
func ValidateValue(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %v", errs.ErrInvalidValue, value)
	}

	return nil
}

// Push appends a sample.
//
// Returns errs.ErrInvalidScaleFactor if scaleFactor is not a finite positive number and
// errs.ErrInvalidValue if value is not finite. Nothing is recorded on error.
func (s *Store) Push(scaleFactor, value float64) error {
	if err := ValidateScaleFactor(scaleFactor); err != nil {
		return err
	}
	if err := ValidateValue(value); err != nil {
		return err
	}

	s.mu.Lock()
	s.samples = append(s.samples, Sample{ScaleFactor: scaleFactor, Value: value})
	s.mu.Unlock()

	return nil
}

// Samples returns a copy of all recorded samples in insertion order.
func (s *Store) Samples() []Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Sample, len(s.samples))
	copy(out, s.samples)

	return out
}

// All returns an iterator over a snapshot of the recorded samples.
//
// Pushes that happen while iterating are not observed.
func (s *Store) All() iter.Seq[Sample] {
	snapshot := s.Samples()

	return func(yield func(Sample) bool) {
		for _, smp := range snapshot {
			if !yield(smp) {
				return
			}
		}
	}
}

// Len returns the number of recorded samples.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.samples)
}

// Clear removes all samples so the store can be reused for an independent run.
func (s *Store) Clear() {
	s.mu.Lock()
	s.samples = s.samples[:0]
	s.mu.Unlock()
}

// Group computes the arithmetic mean of the samples recorded for each of the given
// scale factors.
//
// means[i] and counts[i] correspond to scaleFactors[i]. A scale factor without samples
// has a count of zero and a mean of zero. Samples whose scale factor is not listed are
// ignored. Matching is by exact float equality, which is what Push records.
//
// Values are summed in ascending order, so the means are bit-identical regardless of
// the order in which samples were pushed.
func (s *Store) Group(scaleFactors []float64) (means []float64, counts []int) {
	index := make(map[float64]int, len(scaleFactors))
	for i, sf := range scaleFactors {
		if _, dup := index[sf]; !dup {
			index[sf] = i
		}
	}

	means = make([]float64, len(scaleFactors))
	counts = make([]int, len(scaleFactors))

	s.mu.RLock()
	defer s.mu.RUnlock()

	// owner[j] is the group of sample j, or -1 when its scale factor is not listed.
	owner, releaseOwner := pool.GetIntSlice(len(s.samples))
	defer releaseOwner()
	for j, smp := range s.samples {
		owner[j] = -1
		if i, ok := index[smp.ScaleFactor]; ok {
			owner[j] = i
			counts[i]++
		}
	}

	scratch, releaseScratch := pool.GetFloat64Slice(len(s.samples))
	defer releaseScratch()
	for i, sf := range scaleFactors {
		g := index[sf]
		if g != i {
			// duplicate of an earlier entry
			counts[i] = counts[g]
			means[i] = means[g]

			continue
		}
		if counts[i] == 0 {
			continue
		}

		values := scratch[:0]
		for j, o := range owner {
			if o == g {
				values = append(values, s.samples[j].Value)
			}
		}
		slices.Sort(values)
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		means[i] = sum / float64(len(values))
	}

	return means, counts
}
