package noise

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Zero is action noise which is always zero.
// Policies driven by Zero noise act with their mean action.
type Zero struct {
	size int
}

// NewZero creates zero noise of dimension size.
// It returns error if size is negative.
func NewZero(size int) (*Zero, error) {
	if size < 0 {
		return nil, fmt.Errorf("invalid noise dimension: %d", size)
	}

	return &Zero{size: size}, nil
}

// Sample returns zero vector.
func (z *Zero) Sample() mat.Vector {
	return mat.NewVecDense(z.size, nil)
}

// Cov returns zero covariance.
func (z *Zero) Cov() mat.Symmetric {
	return mat.NewSymDense(z.size, nil)
}

// Mean returns zero mean.
func (z *Zero) Mean() []float64 {
	return make([]float64, z.size)
}

// Reset is a no-op.
func (z *Zero) Reset() error {
	return nil
}

// String implements the Stringer interface.
func (z *Zero) String() string {
	return fmt.Sprintf("Zero{\nMean=%v\nCov=%v\n}", z.Mean(), mat.Formatted(z.Cov(), mat.Prefix("    "), mat.Squeeze()))
}
