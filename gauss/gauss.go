package gauss

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	gps "github.com/milosgajdos/go-gps"
	"github.com/milosgajdos/go-gps/lingauss"
	"github.com/milosgajdos/go-gps/matrix"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// weightTol is tolerance on the sum of point weights
const weightTol = 1e-6

// Stats are weighted empirical statistics of joint points
type Stats struct {
	// Mean is weighted empirical mean
	Mean *mat.VecDense
	// Cov is weighted empirical covariance
	Cov *mat.SymDense
	// Weights are point weights
	Weights []float64
}

// Cond is a linear-Gaussian conditional distribution: N(Gain*x + Bias, Cov)
type Cond struct {
	// Gain is conditional gain matrix
	Gain *mat.Dense
	// Bias is conditional bias vector
	Bias *mat.VecDense
	// Cov is conditional covariance
	Cov *mat.SymDense
}

// NewStats computes weighted mean and covariance of points stored in rows of pts and returns them.
// If w is nil every point is weighted by 1/N.
// It returns error if the number of weights differs from the number of points,
// if any weight is negative or if the weights do not sum to 1.
func NewStats(pts mat.Matrix, w []float64) (*Stats, error) {
	n, d := pts.Dims()
	if n == 0 {
		return nil, fmt.Errorf("%w: no points", gps.ErrShapeMismatch)
	}

	if w == nil {
		w = make([]float64, n)
		for i := range w {
			w[i] = 1 / float64(n)
		}
	} else {
		w = append([]float64(nil), w...)
	}

	if len(w) != n {
		return nil, fmt.Errorf("%w: %d weights for %d points", gps.ErrShapeMismatch, len(w), n)
	}

	if floats.Min(w) < 0 {
		return nil, fmt.Errorf("%w: negative weight", gps.ErrInvalidParam)
	}

	if sum := floats.Sum(w); math.Abs(sum-1) > weightTol {
		return nil, fmt.Errorf("%w: weights sum to %f", gps.ErrInvalidParam, sum)
	}

	mean := mat.NewVecDense(d, nil)
	for i := 0; i < n; i++ {
		mean.AddScaledVec(mean, w[i], mat.NewVecDense(d, mat.Row(nil, i, pts)))
	}

	// SymDense keeps the scatter symmetric by construction
	cov := mat.NewSymDense(d, nil)
	diff := mat.NewVecDense(d, nil)
	for i := 0; i < n; i++ {
		diff.SubVec(mat.NewVecDense(d, mat.Row(nil, i, pts)), mean)
		cov.SymRankOne(cov, w[i], diff)
	}

	return &Stats{
		Mean:    mean,
		Cov:     cov,
		Weights: w,
	}, nil
}

// MAP computes maximum a posteriori estimate of joint Gaussian given empirical statistics s and prior p.
// The covariance is a blend of the empirical covariance and the prior scatter:
//
//	sigma = (N*empsig + Phi + N*m/(N+m) * (mun-mu0)*(mun-mu0)') / (N+n0)
//
// The mean is the empirical mean: the prior shifts the covariance, not the location.
// It returns error if the prior dimension does not match the statistics dimension.
func MAP(s *Stats, p gps.PriorStats) (*mat.VecDense, *mat.SymDense, error) {
	d := s.Mean.Len()

	mu0, phi := p.Mean(), p.Scatter()
	if mu0.Len() != d || phi.SymmetricDim() != d {
		return nil, nil, fmt.Errorf("%w: prior dimension %d, statistics dimension %d", gps.ErrShapeMismatch, mu0.Len(), d)
	}

	m, n0 := p.Strength()
	N := float64(len(s.Weights))

	diff := mat.NewVecDense(d, nil)
	diff.SubVec(s.Mean, mu0)

	sigma := mat.NewSymDense(d, nil)
	sigma.ScaleSym(N, s.Cov)
	sigma.AddSym(sigma, phi)
	sigma.SymRankOne(sigma, N*m/(N+m), diff)
	sigma.ScaleSym(1/(N+n0), sigma)

	mu := mat.VecDenseCopyOf(s.Mean)

	return mu, matrix.Symmetrize(sigma), nil
}

// Condition conditions joint Gaussian N(mu, sigma) over [x y] on its first dX dimensions.
// It returns the conditional distribution of y (dU dimensions) given x:
//
//	Gain = (sigma_xx^-1 * sigma_xy)'
//	Bias = mu_y - Gain*mu_x
//	Cov  = sigma_yy - Gain*sigma_xx*Gain'
//
// It returns error if the dimensions do not agree or if sigma_xx is singular.
func Condition(mu mat.Vector, sigma mat.Symmetric, dX, dU int) (*Cond, error) {
	if dX <= 0 || dU <= 0 {
		return nil, fmt.Errorf("%w: dX: %d, dU: %d", gps.ErrInvalidParam, dX, dU)
	}

	if mu.Len() != dX+dU || sigma.SymmetricDim() != dX+dU {
		return nil, fmt.Errorf("%w: mean: %d, covariance: %d, expected: %d", gps.ErrShapeMismatch, mu.Len(), sigma.SymmetricDim(), dX+dU)
	}

	s := mat.DenseCopyOf(sigma)
	sxx := s.Slice(0, dX, 0, dX)
	sxy := s.Slice(0, dX, dX, dX+dU)
	syy := s.Slice(dX, dX+dU, dX, dX+dU)

	sol := &mat.Dense{}
	if err := sol.Solve(sxx, sxy); err != nil {
		// ill-conditioned systems are still solved: only exact singularity fails
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, fmt.Errorf("%w: sigma_xx: %v", gps.ErrSingular, err)
		}
	}

	gain := mat.DenseCopyOf(sol.T())

	muX := mat.NewVecDense(dX, nil)
	muY := mat.NewVecDense(dU, nil)
	for i := 0; i < dX; i++ {
		muX.SetVec(i, mu.AtVec(i))
	}
	for i := 0; i < dU; i++ {
		muY.SetVec(i, mu.AtVec(dX+i))
	}

	bias := mat.NewVecDense(dU, nil)
	bias.MulVec(gain, muX)
	bias.SubVec(muY, bias)

	gs := &mat.Dense{}
	gs.Mul(gain, sxx)
	gsg := &mat.Dense{}
	gsg.Mul(gs, gain.T())

	cov := &mat.Dense{}
	cov.Sub(syy, gsg)

	return &Cond{
		Gain: gain,
		Bias: bias,
		Cov:  matrix.Symmetrize(cov),
	}, nil
}

// Fit fits a linear-Gaussian model of the last dU dimensions of points pts given their first dX dimensions.
// It accepts the following parameters:
//   - pts:    N x (dX+dU) matrix which stores points in its rows
//   - w:      point weights which sum to 1; nil means uniform weights
//   - p:      prior statistics of the joint distribution
//   - dX, dU: dimensions of the conditioning and the conditioned variables
//   - sigReg: regularization added to the joint covariance before conditioning; may be nil
//
// It returns error if the dimensions do not agree or if the regularized state covariance is singular.
func Fit(pts mat.Matrix, w []float64, p gps.PriorStats, dX, dU int, sigReg mat.Symmetric) (*Cond, error) {
	cond, _, err := fit(pts, w, p, dX, dU, sigReg)
	return cond, err
}

// fit runs Fit and on failure also returns the name of the failing stage
func fit(pts mat.Matrix, w []float64, p gps.PriorStats, dX, dU int, sigReg mat.Symmetric) (*Cond, string, error) {
	if _, c := pts.Dims(); c != dX+dU {
		return nil, "stats", fmt.Errorf("%w: point dimension %d, expected %d", gps.ErrShapeMismatch, c, dX+dU)
	}

	stats, err := NewStats(pts, w)
	if err != nil {
		return nil, "stats", err
	}

	mu, sigma, err := MAP(stats, p)
	if err != nil {
		return nil, "map", err
	}

	if sigReg != nil {
		if sigReg.SymmetricDim() != dX+dU {
			return nil, "regularize", fmt.Errorf("%w: regularization [%d x %d], expected [%d x %d]", gps.ErrShapeMismatch,
				sigReg.SymmetricDim(), sigReg.SymmetricDim(), dX+dU, dX+dU)
		}
		sigma.AddSym(sigma, sigReg)
	}

	cond, err := Condition(mu, sigma, dX, dU)
	if err != nil {
		return nil, "condition", err
	}

	return cond, "", nil
}

// FitSeries fits a time-varying linear-Gaussian model: one Fit per timestep.
// pts[t] stores the joint points of timestep t and p supplies prior statistics for every timestep.
// Timesteps are fitted concurrently. The returned model stores Cholesky factor and inverse of every covariance.
// It returns gps.FitError naming the first failing timestep.
func FitSeries(pts []*mat.Dense, w []float64, p gps.Prior, dX, dU int, sigReg mat.Symmetric) (*lingauss.Model, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil prior", gps.ErrInvalidParam)
	}

	model, err := lingauss.New(len(pts), dU, dX)
	if err != nil {
		return nil, err
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for t := range pts {
		t := t
		g.Go(func() error {
			stats, err := p.Eval(pts[t])
			if err != nil {
				return &gps.FitError{Step: t, Op: "prior", Err: err}
			}

			cond, op, err := fit(pts[t], w, stats, dX, dU, sigReg)
			if err != nil {
				return &gps.FitError{Step: t, Op: op, Err: err}
			}

			if err := model.Set(t, cond.Gain, cond.Bias, cond.Cov); err != nil {
				return &gps.FitError{Step: t, Op: "factorize", Err: err}
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return model, nil
}
