package gps

import "gonum.org/v1/gonum/mat"

// LinGauss is a time-varying linear-Gaussian model.
// At every timestep t it maps an input x to a Gaussian with mean Gain(t)*x + Bias(t)
// and a constant covariance Cov(t).
type LinGauss interface {
	// Horizon returns the number of timesteps
	Horizon() int
	// Dims returns output and input dimensions
	Dims() (out int, in int)
	// Gain returns gain matrix at timestep t
	Gain(t int) mat.Matrix
	// Bias returns bias vector at timestep t
	Bias(t int) mat.Vector
	// Cov returns covariance at timestep t
	Cov(t int) mat.Symmetric
	// Chol returns lower Cholesky factor of Cov(t)
	Chol(t int) mat.Triangular
	// Inv returns (pseudo-)inverse of Cov(t)
	Inv(t int) mat.Symmetric
}

// Policy maps states to actions
type Policy interface {
	// Act returns action for state x at timestep t perturbed by standard normal noise
	Act(t int, x, noise mat.Vector) (mat.Vector, error)
}

// PriorStats are sufficient statistics of a joint Gaussian prior
type PriorStats interface {
	// Mean returns prior mean mu0
	Mean() mat.Vector
	// Scatter returns prior scatter matrix Phi
	Scatter() mat.Symmetric
	// Strength returns pseudo-counts on the mean (m) and the covariance (n0)
	Strength() (m float64, n0 float64)
}

// Prior supplies prior statistics for a set of joint points
type Prior interface {
	// Eval returns prior statistics for points stored in rows of pts
	Eval(pts mat.Matrix) (PriorStats, error)
}

// Noise is a source of action noise
type Noise interface {
	// Mean returns noise mean
	Mean() []float64
	// Cov returns covariance matrix of the noise
	Cov() mat.Symmetric
	// Sample returns a sample of the noise
	Sample() mat.Vector
	// Reset resets the noise
	Reset() error
}
