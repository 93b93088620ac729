package sim

import (
	"fmt"

	gps "github.com/milosgajdos/go-gps"
	"github.com/milosgajdos/go-gps/sample"
	"gonum.org/v1/gonum/mat"
)

// Discrete is a linear, discrete-time, dynamical system
//
//	x[t+1] = A*x[t] + B*u[t] + wd[t]
type Discrete struct {
	// A is system matrix
	A *mat.Dense
	// B is control matrix
	B *mat.Dense
}

// NewDiscrete creates a linear discrete-time system and returns it.
// It returns error if either matrix is nil or if their dimensions do not agree.
func NewDiscrete(A, B *mat.Dense) (*Discrete, error) {
	if A == nil || B == nil {
		return nil, fmt.Errorf("system and control matrices must be defined")
	}

	ra, ca := A.Dims()
	rb, _ := B.Dims()
	if ra != ca || rb != ra {
		return nil, fmt.Errorf("%w: A [%d x %d], B rows %d", gps.ErrShapeMismatch, ra, ca, rb)
	}

	return &Discrete{A: A, B: B}, nil
}

// Dims returns state and input dimensions
func (d *Discrete) Dims() (nx, nu int) {
	nx, _ = d.A.Dims()
	_, nu = d.B.Dims()

	return nx, nu
}

// Propagate returns the next state given state x, input u and process noise wd.
// wd may be nil.
func (d *Discrete) Propagate(x, u, wd mat.Vector) (mat.Vector, error) {
	nx, nu := d.Dims()
	if u.Len() != nu {
		return nil, fmt.Errorf("invalid input vector")
	}

	if x.Len() != nx {
		return nil, fmt.Errorf("invalid state vector")
	}

	out := mat.NewVecDense(nx, nil)
	out.MulVec(d.A, x)

	outU := mat.NewVecDense(nx, nil)
	outU.MulVec(d.B, u)
	out.AddVec(out, outU)

	if wd != nil && wd.Len() == nx {
		out.AddVec(out, wd)
	}

	return out, nil
}

// Rollout runs policy p on system d for T timesteps from every initial state stored in rows of x0.
// Policy actions are perturbed by samples of n; nil n runs the policy mean.
// It returns the sampled trajectories or error if the policy or propagation fail.
func (d *Discrete) Rollout(p gps.Policy, x0 *mat.Dense, T int, n gps.Noise) (*sample.Batch, error) {
	if T <= 0 {
		return nil, fmt.Errorf("%w: horizon %d", gps.ErrInvalidParam, T)
	}

	N, dx := x0.Dims()
	nx, nu := d.Dims()
	if dx != nx {
		return nil, fmt.Errorf("%w: initial state dimension %d, expected %d", gps.ErrShapeMismatch, dx, nx)
	}

	xs := make([]*mat.Dense, N)
	us := make([]*mat.Dense, N)
	for i := 0; i < N; i++ {
		xs[i] = mat.NewDense(T, nx, nil)
		us[i] = mat.NewDense(T, nu, nil)

		var x mat.Vector = mat.VecDenseCopyOf(x0.RowView(i))
		for t := 0; t < T; t++ {
			var noise mat.Vector
			if n != nil {
				noise = n.Sample()
			}

			u, err := p.Act(t, x, noise)
			if err != nil {
				return nil, fmt.Errorf("sample %d: policy action failed: %v", i, err)
			}

			xs[i].SetRow(t, mat.Row(nil, 0, x.T()))
			us[i].SetRow(t, mat.Row(nil, 0, u.T()))

			x, err = d.Propagate(x, u, nil)
			if err != nil {
				return nil, fmt.Errorf("sample %d: state propagation failed: %v", i, err)
			}
		}
	}

	return sample.NewBatch(xs, us)
}
