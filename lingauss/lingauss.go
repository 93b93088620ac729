package lingauss

import (
	"fmt"

	gps "github.com/milosgajdos/go-gps"
	"github.com/milosgajdos/go-gps/matrix"
	"gonum.org/v1/gonum/mat"
)

// Model is a time-varying linear-Gaussian model.
// At timestep t it maps input x to a Gaussian with mean K_t*x + k_t and covariance S_t.
// The same type stores fitted controllers (u given x) and fitted dynamics (x' given [x u]).
// Cholesky factor and inverse of S_t are recomputed whenever S_t is set.
type Model struct {
	// gain stores K_t matrices: dU x dX
	gain []*mat.Dense
	// bias stores k_t vectors: dU
	bias []*mat.VecDense
	// cov stores S_t covariances: dU x dU
	cov []*mat.SymDense
	// chol stores lower Cholesky factors of S_t
	chol []*mat.TriDense
	// inv stores (pseudo-)inverses of S_t
	inv []*mat.SymDense
	// du is output dimension
	du int
	// dx is input dimension
	dx int
}

// New creates new model with horizon T, output dimension dU and input dimension dX and returns it.
// All gains, biases and covariances are initialized to zero.
// It returns error if either of the dimensions is not positive.
func New(T, dU, dX int) (*Model, error) {
	if T <= 0 || dU <= 0 || dX <= 0 {
		return nil, fmt.Errorf("%w: invalid model dimensions: T: %d, dU: %d, dX: %d", gps.ErrInvalidParam, T, dU, dX)
	}

	m := &Model{
		gain: make([]*mat.Dense, T),
		bias: make([]*mat.VecDense, T),
		cov:  make([]*mat.SymDense, T),
		chol: make([]*mat.TriDense, T),
		inv:  make([]*mat.SymDense, T),
		du:   dU,
		dx:   dX,
	}

	for t := 0; t < T; t++ {
		m.gain[t] = mat.NewDense(dU, dX, nil)
		m.bias[t] = mat.NewVecDense(dU, nil)
		m.cov[t] = mat.NewSymDense(dU, nil)
		m.chol[t] = mat.NewTriDense(dU, mat.Lower, nil)
		m.inv[t] = mat.NewSymDense(dU, nil)
	}

	return m, nil
}

// Set sets gain K, bias k and covariance cov at timestep t.
// It factorizes cov and stores its Cholesky factor and pseudo-inverse.
// It returns error if the dimensions do not match the model or if cov is not positive definite.
// Set may be called concurrently for distinct timesteps.
func (m *Model) Set(t int, K mat.Matrix, k mat.Vector, cov mat.Symmetric) error {
	if t < 0 || t >= len(m.gain) {
		return fmt.Errorf("%w: timestep %d out of range [0, %d)", gps.ErrShapeMismatch, t, len(m.gain))
	}

	if r, c := K.Dims(); r != m.du || c != m.dx {
		return fmt.Errorf("%w: gain [%d x %d], expected [%d x %d]", gps.ErrShapeMismatch, r, c, m.du, m.dx)
	}

	if k.Len() != m.du {
		return fmt.Errorf("%w: bias length %d, expected %d", gps.ErrShapeMismatch, k.Len(), m.du)
	}

	if cov.SymmetricDim() != m.du {
		return fmt.Errorf("%w: covariance [%d x %d], expected [%d x %d]", gps.ErrShapeMismatch, cov.SymmetricDim(), cov.SymmetricDim(), m.du, m.du)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(cov); !ok {
		return fmt.Errorf("%w: covariance is not positive definite", gps.ErrSingular)
	}
	l := mat.NewTriDense(m.du, mat.Lower, nil)
	chol.LTo(l)

	inv, err := matrix.Pinv(cov)
	if err != nil {
		return fmt.Errorf("covariance pseudo-inverse failed: %v", err)
	}

	c := mat.NewSymDense(m.du, nil)
	c.CopySym(cov)

	m.gain[t] = mat.DenseCopyOf(K)
	m.bias[t] = mat.VecDenseCopyOf(k)
	m.cov[t] = c
	m.chol[t] = l
	m.inv[t] = matrix.Symmetrize(inv)

	return nil
}

// Horizon returns number of model timesteps
func (m *Model) Horizon() int {
	return len(m.gain)
}

// Dims returns output and input dimensions
func (m *Model) Dims() (int, int) {
	return m.du, m.dx
}

// Gain returns gain matrix at timestep t
func (m *Model) Gain(t int) mat.Matrix {
	return mat.DenseCopyOf(m.gain[t])
}

// Bias returns bias vector at timestep t
func (m *Model) Bias(t int) mat.Vector {
	return mat.VecDenseCopyOf(m.bias[t])
}

// Cov returns covariance at timestep t
func (m *Model) Cov(t int) mat.Symmetric {
	cov := mat.NewSymDense(m.du, nil)
	cov.CopySym(m.cov[t])

	return cov
}

// Chol returns lower Cholesky factor of covariance at timestep t
func (m *Model) Chol(t int) mat.Triangular {
	l := mat.NewTriDense(m.du, mat.Lower, nil)
	for i := 0; i < m.du; i++ {
		for j := 0; j <= i; j++ {
			l.SetTri(i, j, m.chol[t].At(i, j))
		}
	}

	return l
}

// Inv returns pseudo-inverse of covariance at timestep t
func (m *Model) Inv(t int) mat.Symmetric {
	inv := mat.NewSymDense(m.du, nil)
	inv.CopySym(m.inv[t])

	return inv
}

// Act returns K_t*x + k_t + L_t*noise where L_t is the Cholesky factor of the covariance.
// noise is expected to be a standard normal sample; nil noise returns the mean action.
// It returns error if t is out of range or if the vector dimensions do not match the model.
func (m *Model) Act(t int, x, noise mat.Vector) (mat.Vector, error) {
	if t < 0 || t >= len(m.gain) {
		return nil, fmt.Errorf("%w: timestep %d out of range [0, %d)", gps.ErrShapeMismatch, t, len(m.gain))
	}

	if x.Len() != m.dx {
		return nil, fmt.Errorf("%w: invalid input vector length: %d", gps.ErrShapeMismatch, x.Len())
	}

	u := mat.NewVecDense(m.du, nil)
	u.MulVec(m.gain[t], x)
	u.AddVec(u, m.bias[t])

	if noise != nil {
		if noise.Len() != m.du {
			return nil, fmt.Errorf("%w: invalid noise vector length: %d", gps.ErrShapeMismatch, noise.Len())
		}
		n := mat.NewVecDense(m.du, nil)
		n.MulVec(m.chol[t], noise)
		u.AddVec(u, n)
	}

	return u, nil
}

// Clone returns a deep copy of the model
func (m *Model) Clone() *Model {
	T := len(m.gain)
	c := &Model{
		gain: make([]*mat.Dense, T),
		bias: make([]*mat.VecDense, T),
		cov:  make([]*mat.SymDense, T),
		chol: make([]*mat.TriDense, T),
		inv:  make([]*mat.SymDense, T),
		du:   m.du,
		dx:   m.dx,
	}

	for t := 0; t < T; t++ {
		c.gain[t] = m.Gain(t).(*mat.Dense)
		c.bias[t] = m.Bias(t).(*mat.VecDense)
		c.cov[t] = m.Cov(t).(*mat.SymDense)
		c.chol[t] = m.Chol(t).(*mat.TriDense)
		c.inv[t] = m.Inv(t).(*mat.SymDense)
	}

	return c
}
