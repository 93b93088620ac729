package controller

import (
	"fmt"
	"runtime"

	gps "github.com/milosgajdos/go-gps"
	"github.com/milosgajdos/go-gps/lingauss"
	"github.com/milosgajdos/go-gps/matrix"
	"github.com/milosgajdos/go-gps/sample"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// CovFloor is added to the diagonal of every residual covariance
const CovFloor = 1e-12

// Fitter fits time-varying linear-Gaussian controllers to demonstrations
type Fitter struct {
	// Logger receives warnings about underdetermined fits.
	// zap development logger is used if nil.
	Logger *zap.Logger
}

// Underdetermined returns true if n samples can not determine a unique
// affine map from dX dimensional states.
func Underdetermined(n, dX int) bool {
	return n < dX+1
}

// Fit fits linear-Gaussian controller to demonstrations in b using default Fitter.
func Fit(b *sample.Batch) (*lingauss.Model, error) {
	var f Fitter
	return f.Fit(b)
}

// Fit fits linear-Gaussian controller u = K_t*x + k_t + e, e ~ N(0, S_t) to demonstrations in b.
// Every timestep is fitted independently by least squares regression of actions on states augmented with 1.
// S_t is the mean outer product of the regression residuals plus CovFloor on its diagonal.
// If the batch has fewer than dX+1 samples the regression returns the minimum norm solution and a warning is logged.
// It returns gps.FitError naming the first timestep which fails.
func (f *Fitter) Fit(b *sample.Batch) (*lingauss.Model, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil sample batch", gps.ErrShapeMismatch)
	}

	N, T, dx, du := b.Dims()

	if Underdetermined(N, dx) {
		f.logger().Warn("underdetermined controller regression: minimum norm solution",
			zap.Int("samples", N),
			zap.Int("dx", dx),
			zap.Int("timesteps", T),
		)
	}

	model, err := lingauss.New(T, du, dx)
	if err != nil {
		return nil, err
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for t := 0; t < T; t++ {
		t := t
		g.Go(func() error {
			K, k, err := regress(b.States(t), b.Actions(t))
			if err != nil {
				return &gps.FitError{Step: t, Op: "regression", Err: err}
			}

			cov, err := residualCov(b, t, K, k)
			if err != nil {
				return &gps.FitError{Step: t, Op: "covariance", Err: err}
			}

			if err := model.Set(t, K, k, cov); err != nil {
				return &gps.FitError{Step: t, Op: "cholesky", Err: err}
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return model, nil
}

func (f *Fitter) logger() *zap.Logger {
	if f.Logger != nil {
		return f.Logger
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}

	return logger.Named("controller")
}

// regress solves [x 1] * W = u in the least squares sense and returns W' split into gain and bias
func regress(x, u *mat.Dense) (*mat.Dense, *mat.VecDense, error) {
	n, dx := x.Dims()
	_, du := u.Dims()

	xa := mat.NewDense(n, dx+1, nil)
	xa.Slice(0, n, 0, dx).(*mat.Dense).Copy(x)
	for i := 0; i < n; i++ {
		xa.Set(i, dx, 1)
	}

	pinv, err := matrix.Pinv(xa)
	if err != nil {
		return nil, nil, err
	}

	// (dX+1) x dU
	w := &mat.Dense{}
	w.Mul(pinv, u)

	K := mat.DenseCopyOf(w.Slice(0, dx, 0, du).T())
	k := mat.VecDenseCopyOf(w.RowView(dx))

	return K, k, nil
}

// residualCov returns mean outer product of residuals u - (K*x + k) at timestep t plus CovFloor*I
func residualCov(b *sample.Batch, t int, K *mat.Dense, k *mat.VecDense) (*mat.SymDense, error) {
	N, _, _, du := b.Dims()

	cov := mat.NewSymDense(du, nil)
	diff := mat.NewVecDense(du, nil)
	for n := 0; n < N; n++ {
		diff.MulVec(K, b.State(n, t))
		diff.AddVec(diff, k)
		diff.SubVec(b.Action(n, t), diff)
		cov.SymRankOne(cov, 1/float64(N), diff)
	}

	if err := matrix.AddDiag(cov, CovFloor); err != nil {
		return nil, err
	}

	return cov, nil
}
