package clips

import (
	"errors"
	"fmt"
)

// Sentinel errors for the clip algebra. Every typed error below matches one of
// them through errors.Is.
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrOutOfBounds      = errors.New("out of bounds")
	ErrEmptyRange       = errors.New("empty range")
	ErrType             = errors.New("unsupported index type")
)

// ParameterError is returned when a transform is constructed with a value it
// cannot accept (non-positive rate, zero step, mismatched mask).
type ParameterError struct {
	Op     string
	Name   string
	Value  any
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: invalid %s %v: %s", e.Op, e.Name, e.Value, e.Reason)
}

func (e *ParameterError) Is(target error) bool { return target == ErrInvalidParameter }

// OutOfBoundsError is returned when a time lies outside the valid range of a
// clip, either at lookup time or when a subclip bound exceeds its source.
type OutOfBoundsError struct {
	Op       string
	T        float64
	Duration float64
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("%s: time %g outside [0, %g)", e.Op, e.T, e.Duration)
}

func (e *OutOfBoundsError) Is(target error) bool { return target == ErrOutOfBounds }

// RangeError is returned when start >= end after default substitution.
type RangeError struct {
	Op    string
	Start float64
	End   float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: empty range [%g, %g)", e.Op, e.Start, e.End)
}

func (e *RangeError) Is(target error) bool { return target == ErrEmptyRange }

// TypeError is returned by the indexer for values that are neither times nor
// slices.
type TypeError struct {
	Value any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("cannot index a clip with %T (%v)", e.Value, e.Value)
}

func (e *TypeError) Is(target error) bool { return target == ErrType }
