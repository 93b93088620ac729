package moments

import (
	"fmt"
	"runtime"

	gps "github.com/milosgajdos/go-gps"
	"github.com/milosgajdos/go-gps/matrix"
	"github.com/milosgajdos/go-gps/sample"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Covar is action noise covariance of sampled trajectories
type Covar interface {
	// Cov returns action noise covariance of sample n at timestep t
	Cov(n, t int) mat.Symmetric
	// check verifies covariance matches n samples of horizon t with action dimension du
	check(n, t, du int) error
}

// Shared is action noise covariance shared by all samples: one dU x dU matrix per timestep
type Shared []mat.Symmetric

// Cov returns covariance at timestep t regardless of n
func (s Shared) Cov(n, t int) mat.Symmetric {
	return s[t]
}

func (s Shared) check(n, t, du int) error {
	return checkSteps(s, t, du)
}

// PerSample is action noise covariance of every sample at every timestep
type PerSample [][]mat.Symmetric

// Cov returns covariance of sample n at timestep t
func (p PerSample) Cov(n, t int) mat.Symmetric {
	return p[n][t]
}

func (p PerSample) check(n, t, du int) error {
	if len(p) != n {
		return fmt.Errorf("%w: covariance for %d samples, expected %d", gps.ErrShapeMismatch, len(p), n)
	}

	for i := range p {
		if err := checkSteps(p[i], t, du); err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
	}

	return nil
}

func checkSteps(covs []mat.Symmetric, t, du int) error {
	if len(covs) != t {
		return fmt.Errorf("%w: covariance for %d timesteps, expected %d", gps.ErrShapeMismatch, len(covs), t)
	}

	for i, c := range covs {
		if c == nil || c.SymmetricDim() != du {
			return fmt.Errorf("%w: timestep %d: invalid covariance dimensions, expected [%d x %d]", gps.ErrShapeMismatch, i, du, du)
		}
	}

	return nil
}

// Estimate estimates moments of a linearized policy.
// It accepts the following parameters:
//   - x:     N state trajectories, T x dX each
//   - mu:    N mean action trajectories, T x dU each
//   - covar: action noise covariance, either Shared across samples or PerSample
//
// It returns T x (dX+dU) matrix ev whose rows are sample means of concatenated states and actions,
// and N x T second moments em[n][t] = xu*xu' + covariance padded into the action block.
// It returns error wrapping gps.ErrShapeMismatch if the inputs dimensions do not agree.
func Estimate(x, mu []*mat.Dense, covar Covar) (*mat.Dense, [][]*mat.SymDense, error) {
	b, err := sample.NewBatch(x, mu)
	if err != nil {
		return nil, nil, err
	}

	if covar == nil {
		return nil, nil, fmt.Errorf("%w: nil covariance", gps.ErrShapeMismatch)
	}

	N, T, dx, du := b.Dims()
	if err := covar.check(N, T, du); err != nil {
		return nil, nil, err
	}

	ev := mat.NewDense(T, dx+du, nil)
	em := make([][]*mat.SymDense, N)
	for n := range em {
		em[n] = make([]*mat.SymDense, T)
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for t := 0; t < T; t++ {
		t := t
		g.Go(func() error {
			pts := b.Points(t)
			ev.SetRow(t, matrix.ColMeans(pts).RawVector().Data)

			for n := 0; n < N; n++ {
				m := matrix.PadSym(covar.Cov(n, t), dx)
				m.SymRankOne(m, 1.0, pts.RowView(n))
				em[n][t] = m
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return ev, em, nil
}
