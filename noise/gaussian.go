package noise

import (
	"fmt"
	"time"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Gaussian is gaussian action noise
type Gaussian struct {
	// dist is a multivariate normal distribution
	dist *distmv.Normal
	// mean is Gaussian mean
	mean []float64
	// cov is Gaussian covariance
	cov mat.Symmetric
	// seed seeds the noise source; zero means time based seed
	seed uint64
}

// NewGaussian creates new Gaussian noise with given mean and covariance seeded by current time.
// It returns error if it fails to create Gaussian.
func NewGaussian(mean []float64, cov mat.Symmetric) (*Gaussian, error) {
	return NewSeededGaussian(mean, cov, 0)
}

// NewSeededGaussian creates new Gaussian noise with given mean and covariance whose samples are
// generated from a source seeded with seed. Zero seed is replaced by current time.
// It returns error if it fails to create Gaussian.
func NewSeededGaussian(mean []float64, cov mat.Symmetric, seed uint64) (*Gaussian, error) {
	dist, ok := newGaussianDist(mean, cov, seed)
	if !ok {
		return nil, fmt.Errorf("failed to create new Gaussian noise")
	}

	return &Gaussian{
		dist: dist,
		mean: mean,
		cov:  cov,
		seed: seed,
	}, nil
}

// StandardNormal creates new zero mean, identity covariance noise of dimension size.
// Its samples drive linear-Gaussian policies.
func StandardNormal(size int, seed uint64) (*Gaussian, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid noise dimension: %d", size)
	}

	cov := mat.NewSymDense(size, nil)
	for i := 0; i < size; i++ {
		cov.SetSym(i, i, 1.0)
	}

	return NewSeededGaussian(make([]float64, size), cov, seed)
}

// Sample generates a sample from Gaussian noise and returns it.
func (g *Gaussian) Sample() mat.Vector {
	r := g.dist.Rand(nil)
	return mat.NewVecDense(len(r), r)
}

// Cov returns covariance matrix of Gaussian noise.
func (g *Gaussian) Cov() mat.Symmetric {
	return g.cov
}

// Mean returns Gaussian mean.
func (g *Gaussian) Mean() []float64 {
	return g.mean
}

// Reset resets Gaussian noise: seeded noise restarts its sequence of samples.
// It returns error if it fails to reset the noise.
func (g *Gaussian) Reset() error {
	dist, ok := newGaussianDist(g.mean, g.cov, g.seed)
	if !ok {
		return fmt.Errorf("failed to reset Gaussian noise")
	}
	g.dist = dist

	return nil
}

func newGaussianDist(mean []float64, cov mat.Symmetric, seed uint64) (*distmv.Normal, bool) {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	src := rand.NewSource(seed)

	return distmv.NewNormal(mean, cov, src)
}

// String implements the Stringer interface.
func (g *Gaussian) String() string {
	return fmt.Sprintf("Gaussian{\nMean=%v\nCov=%v\n}", g.mean, mat.Formatted(g.cov, mat.Prefix("    "), mat.Squeeze()))
}
