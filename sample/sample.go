package sample

import (
	"fmt"

	gps "github.com/milosgajdos/go-gps"
	"gonum.org/v1/gonum/mat"
)

// Batch is a batch of sampled trajectories.
// Every trajectory stores T states and T actions in the rows of its state and action matrices.
type Batch struct {
	// x stores N state trajectories: T x dX each
	x []*mat.Dense
	// u stores N action trajectories: T x dU each
	u []*mat.Dense
	// t is the trajectory horizon
	t int
	// dx is state dimension
	dx int
	// du is action dimension
	du int
}

// NewBatch creates new sample batch from state trajectories x and action trajectories u and returns it.
// x[n] and u[n] must have the same number of rows. All state and all action trajectories must have the same dimensions.
// It returns error wrapping gps.ErrShapeMismatch if either of the conditions is not met.
func NewBatch(x, u []*mat.Dense) (*Batch, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: empty batch", gps.ErrShapeMismatch)
	}

	if len(x) != len(u) {
		return nil, fmt.Errorf("%w: %d state trajectories, %d action trajectories", gps.ErrShapeMismatch, len(x), len(u))
	}

	if x[0] == nil || u[0] == nil || x[0].IsEmpty() || u[0].IsEmpty() {
		return nil, fmt.Errorf("%w: empty trajectory", gps.ErrShapeMismatch)
	}

	T, dx := x[0].Dims()
	_, du := u[0].Dims()

	for n := range x {
		if x[n] == nil || u[n] == nil {
			return nil, fmt.Errorf("%w: sample %d: nil trajectory", gps.ErrShapeMismatch, n)
		}
		if r, c := x[n].Dims(); r != T || c != dx {
			return nil, fmt.Errorf("%w: sample %d: states [%d x %d], expected [%d x %d]", gps.ErrShapeMismatch, n, r, c, T, dx)
		}
		if r, c := u[n].Dims(); r != T || c != du {
			return nil, fmt.Errorf("%w: sample %d: actions [%d x %d], expected [%d x %d]", gps.ErrShapeMismatch, n, r, c, T, du)
		}
	}

	bx := make([]*mat.Dense, len(x))
	bu := make([]*mat.Dense, len(u))
	for n := range x {
		bx[n] = mat.DenseCopyOf(x[n])
		bu[n] = mat.DenseCopyOf(u[n])
	}

	return &Batch{
		x:  bx,
		u:  bu,
		t:  T,
		dx: dx,
		du: du,
	}, nil
}

// Dims returns number of samples, horizon, state and action dimensions
func (b *Batch) Dims() (n, t, dx, du int) {
	return len(b.x), b.t, b.dx, b.du
}

// State returns state of sample n at timestep t
func (b *Batch) State(n, t int) mat.Vector {
	return b.x[n].RowView(t)
}

// Action returns action of sample n at timestep t
func (b *Batch) Action(n, t int) mat.Vector {
	return b.u[n].RowView(t)
}

// States returns N x dX matrix of states at timestep t
func (b *Batch) States(t int) *mat.Dense {
	return b.rows(b.x, t, b.dx)
}

// Actions returns N x dU matrix of actions at timestep t
func (b *Batch) Actions(t int) *mat.Dense {
	return b.rows(b.u, t, b.du)
}

// Points returns N x (dX+dU) matrix whose rows are concatenated states and actions at timestep t
func (b *Batch) Points(t int) *mat.Dense {
	pts := mat.NewDense(len(b.x), b.dx+b.du, nil)
	for n := range b.x {
		row := pts.RawRowView(n)
		copy(row[:b.dx], b.x[n].RawRowView(t))
		copy(row[b.dx:], b.u[n].RawRowView(t))
	}

	return pts
}

// Transitions returns N x (dX+dU+dX) matrix whose rows are concatenated
// states and actions at timestep t followed by states at timestep t+1.
// It panics if t is not smaller than T-1.
func (b *Batch) Transitions(t int) *mat.Dense {
	if t < 0 || t >= b.t-1 {
		panic(mat.ErrRowAccess)
	}

	pts := mat.NewDense(len(b.x), 2*b.dx+b.du, nil)
	for n := range b.x {
		row := pts.RawRowView(n)
		copy(row[:b.dx], b.x[n].RawRowView(t))
		copy(row[b.dx:b.dx+b.du], b.u[n].RawRowView(t))
		copy(row[b.dx+b.du:], b.x[n].RawRowView(t+1))
	}

	return pts
}

func (b *Batch) rows(src []*mat.Dense, t, d int) *mat.Dense {
	m := mat.NewDense(len(src), d, nil)
	for n := range src {
		m.SetRow(n, src[n].RawRowView(t))
	}

	return m
}
