package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Structural errors, raised before any computation starts
	ErrReference    = errors.New("reference error")
	ErrPrecondition = errors.New("precondition failed")

	// Statistical primitive failures; callers degrade these to warnings
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrDegenerate       = errors.New("degenerate input")
)

// NewReferenceError reports an unknown or duplicated variable reference
func NewReferenceError(ref string, reason string) error {
	return fmt.Errorf("%w: variable %s: %s", ErrReference, ref, reason)
}

// NewPreconditionError reports an input that cannot be tabulated as requested
func NewPreconditionError(variable string, reason string) error {
	if variable == "" {
		return fmt.Errorf("%w: %s", ErrPrecondition, reason)
	}
	return fmt.Errorf("%w: variable %s: %s", ErrPrecondition, variable, reason)
}

// NewInsufficientDataError reports a statistic that needs more observations
func NewInsufficientDataError(test string, need, got int) error {
	return fmt.Errorf("%w: %s needs at least %d observations, got %d", ErrInsufficientData, test, need, got)
}

// Error checking helpers
func IsReferenceError(err error) bool {
	return errors.Is(err, ErrReference)
}

func IsPreconditionError(err error) bool {
	return errors.Is(err, ErrPrecondition)
}

func IsStatisticalError(err error) bool {
	return errors.Is(err, ErrInsufficientData) || errors.Is(err, ErrDegenerate)
}
