package gps

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch is returned when input dimensions are inconsistent
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrSingular is returned when a matrix is not invertible or not positive definite
	ErrSingular = errors.New("singular matrix")
	// ErrInvalidParam is returned when a scalar parameter or weight is out of range
	ErrInvalidParam = errors.New("invalid parameter")
)

// FitError is returned when fitting fails at a particular timestep.
type FitError struct {
	// Step is the failing timestep
	Step int
	// Op names the failing operation
	Op string
	// Err is the underlying error
	Err error
}

// Error implements error interface.
func (e *FitError) Error() string {
	return fmt.Sprintf("timestep %d: %s: %v", e.Step, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *FitError) Unwrap() error {
	return e.Err
}
