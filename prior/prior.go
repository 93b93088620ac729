package prior

import (
	"fmt"

	gps "github.com/milosgajdos/go-gps"
	"github.com/milosgajdos/go-gps/matrix"
	"gonum.org/v1/gonum/mat"
)

// Stats are sufficient statistics of a normal-inverse-Wishart prior
// over a joint Gaussian. It implements gps.PriorStats.
type Stats struct {
	// mu0 is prior mean
	mu0 *mat.VecDense
	// phi is prior scatter matrix
	phi *mat.SymDense
	// m is pseudo-count on the mean
	m float64
	// n0 is pseudo-count on the covariance
	n0 float64
}

// NewStats creates new prior statistics and returns it.
// It returns error if the dimensions of mu0 and phi do not agree or if either of the pseudo-counts is negative.
func NewStats(mu0 mat.Vector, phi mat.Symmetric, m, n0 float64) (*Stats, error) {
	if mu0 == nil || phi == nil {
		return nil, fmt.Errorf("%w: nil prior mean or scatter", gps.ErrShapeMismatch)
	}

	if mu0.Len() != phi.SymmetricDim() {
		return nil, fmt.Errorf("%w: mean: %d, scatter: [%d x %d]", gps.ErrShapeMismatch, mu0.Len(), phi.SymmetricDim(), phi.SymmetricDim())
	}

	if m < 0 || n0 < 0 {
		return nil, fmt.Errorf("%w: pseudo-counts m: %f, n0: %f", gps.ErrInvalidParam, m, n0)
	}

	mu := &mat.VecDense{}
	mu.CloneFromVec(mu0)

	p := mat.NewSymDense(phi.SymmetricDim(), nil)
	p.CopySym(phi)

	return &Stats{
		mu0: mu,
		phi: p,
		m:   m,
		n0:  n0,
	}, nil
}

// FromGaussian creates prior statistics from a Gaussian with mean mu and covariance sigma
// trusted as if it was estimated from strength samples: Phi = strength*sigma, m = n0 = strength.
func FromGaussian(mu mat.Vector, sigma mat.Symmetric, strength float64) (*Stats, error) {
	if sigma == nil {
		return nil, fmt.Errorf("%w: nil covariance", gps.ErrShapeMismatch)
	}

	phi := mat.NewSymDense(sigma.SymmetricDim(), nil)
	phi.ScaleSym(strength, sigma)

	return NewStats(mu, phi, strength, strength)
}

// FromMoments creates prior statistics from first moment ev and per-sample second moments em
// of a joint distribution: the covariance is mean(em) - ev*ev' and it is trusted as if it was
// estimated from strength samples.
// It returns error if em is empty or if the dimensions do not agree.
func FromMoments(ev mat.Vector, em []*mat.SymDense, strength float64) (*Stats, error) {
	if len(em) == 0 {
		return nil, fmt.Errorf("%w: no second moments", gps.ErrShapeMismatch)
	}

	d := ev.Len()
	cov := mat.NewSymDense(d, nil)
	for n, m := range em {
		if m.SymmetricDim() != d {
			return nil, fmt.Errorf("%w: second moment %d: [%d x %d], expected [%d x %d]", gps.ErrShapeMismatch, n, m.SymmetricDim(), m.SymmetricDim(), d, d)
		}
		cov.AddSym(cov, m)
	}
	cov.ScaleSym(1/float64(len(em)), cov)
	cov.SymRankOne(cov, -1, ev)

	return FromGaussian(ev, cov, strength)
}

// Mean returns prior mean
func (s *Stats) Mean() mat.Vector {
	mu := &mat.VecDense{}
	mu.CloneFromVec(s.mu0)

	return mu
}

// Scatter returns prior scatter matrix
func (s *Stats) Scatter() mat.Symmetric {
	phi := mat.NewSymDense(s.phi.SymmetricDim(), nil)
	phi.CopySym(s.phi)

	return phi
}

// Strength returns pseudo-counts on the mean and the covariance
func (s *Stats) Strength() (float64, float64) {
	return s.m, s.n0
}

// String implements the Stringer interface.
func (s *Stats) String() string {
	return fmt.Sprintf("Prior{\nMu0=%v\nPhi=%v\nm=%v\nn0=%v\n}",
		mat.Formatted(s.mu0.T(), mat.Prefix("    "), mat.Squeeze()),
		mat.Formatted(s.phi, mat.Prefix("    "), mat.Squeeze()), s.m, s.n0)
}

// Static is a prior which returns the same statistics for every point set
type Static struct {
	stats *Stats
}

// NewStatic creates new static prior from stats and returns it
func NewStatic(stats *Stats) (*Static, error) {
	if stats == nil {
		return nil, fmt.Errorf("%w: nil prior statistics", gps.ErrInvalidParam)
	}

	return &Static{stats: stats}, nil
}

// Eval returns prior statistics.
// It returns error if the point dimension does not match prior dimension.
func (s *Static) Eval(pts mat.Matrix) (gps.PriorStats, error) {
	if _, c := pts.Dims(); c != s.stats.mu0.Len() {
		return nil, fmt.Errorf("%w: point dimension %d, prior dimension %d", gps.ErrShapeMismatch, c, s.stats.mu0.Len())
	}

	return s.stats, nil
}

// Weak returns a weak prior of dimension d: zero mean, identity scatter scaled by
// scale, and pseudo-counts m = n0 = 1.
func Weak(d int, scale float64) (*Stats, error) {
	if d <= 0 {
		return nil, fmt.Errorf("%w: dimension %d", gps.ErrInvalidParam, d)
	}

	phi, err := matrix.ScaledIdentity(d, scale)
	if err != nil {
		return nil, err
	}

	return NewStats(mat.NewVecDense(d, nil), phi, 1, 1)
}
