package sim

import (
	"errors"
	"testing"

	gps "github.com/milosgajdos/go-gps"
	"github.com/milosgajdos/go-gps/lingauss"
	"github.com/milosgajdos/go-gps/noise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewDiscrete(t *testing.T) {
	assert := assert.New(t)

	A := mat.NewDense(2, 2, []float64{1.0, 1.0, 0.0, 1.0})
	B := mat.NewDense(2, 1, []float64{0.5, 1.0})

	d, err := NewDiscrete(A, B)
	assert.NotNil(d)
	assert.NoError(err)

	nx, nu := d.Dims()
	assert.Equal(2, nx)
	assert.Equal(1, nu)

	d, err = NewDiscrete(nil, B)
	assert.Nil(d)
	assert.Error(err)

	d, err = NewDiscrete(A, mat.NewDense(3, 1, nil))
	assert.Nil(d)
	assert.True(errors.Is(err, gps.ErrShapeMismatch))
}

func TestPropagate(t *testing.T) {
	assert := assert.New(t)

	A := mat.NewDense(2, 2, []float64{1.0, 1.0, 0.0, 1.0})
	B := mat.NewDense(2, 1, []float64{0.5, 1.0})
	d, err := NewDiscrete(A, B)
	require.NoError(t, err)

	x := mat.NewVecDense(2, []float64{0.5, 0.6})
	u := mat.NewVecDense(1, []float64{-1.0})

	next, err := d.Propagate(x, u, nil)
	assert.NoError(err)
	assert.InDelta(0.6, next.AtVec(0), 1e-12)
	assert.InDelta(-0.4, next.AtVec(1), 1e-12)

	next, err = d.Propagate(x, u, mat.NewVecDense(2, []float64{1, 1}))
	assert.NoError(err)
	assert.InDelta(1.6, next.AtVec(0), 1e-12)

	_, err = d.Propagate(mat.NewVecDense(3, nil), u, nil)
	assert.Error(err)
	_, err = d.Propagate(x, mat.NewVecDense(2, nil), nil)
	assert.Error(err)
}

func TestRollout(t *testing.T) {
	assert := assert.New(t)

	A := mat.NewDense(2, 2, []float64{1.0, 0.1, 0.0, 1.0})
	B := mat.NewDense(2, 1, []float64{0.0, 0.1})
	d, err := NewDiscrete(A, B)
	require.NoError(t, err)

	T := 5
	pol, err := lingauss.New(T, 1, 2)
	require.NoError(t, err)
	for ts := 0; ts < T; ts++ {
		require.NoError(t, pol.Set(ts, mat.NewDense(1, 2, []float64{-1, -1}), mat.NewVecDense(1, nil), mat.NewSymDense(1, []float64{0.01})))
	}

	x0 := mat.NewDense(3, 2, []float64{1, 0, 0, 1, -1, -1})

	b, err := d.Rollout(pol, x0, T, nil)
	require.NoError(t, err)
	N, bt, dx, du := b.Dims()
	assert.Equal(3, N)
	assert.Equal(T, bt)
	assert.Equal(2, dx)
	assert.Equal(1, du)

	// mean policy: u = -x0 - x1
	for n := 0; n < N; n++ {
		for ts := 0; ts < T; ts++ {
			x := b.State(n, ts)
			assert.InDelta(-x.AtVec(0)-x.AtVec(1), b.Action(n, ts).AtVec(0), 1e-12)
		}
	}

	// zero noise rolls out the mean policy
	z, err := noise.NewZero(1)
	require.NoError(t, err)
	zb, err := d.Rollout(pol, x0, T, z)
	require.NoError(t, err)
	for n := 0; n < N; n++ {
		for ts := 0; ts < T; ts++ {
			assert.True(mat.Equal(b.State(n, ts), zb.State(n, ts)))
			assert.True(mat.Equal(b.Action(n, ts), zb.Action(n, ts)))
		}
	}

	n, err := noise.StandardNormal(1, 3)
	require.NoError(t, err)
	b, err = d.Rollout(pol, x0, T, n)
	require.NoError(t, err)
	x := b.State(0, 0)
	assert.NotEqual(-x.AtVec(0)-x.AtVec(1), b.Action(0, 0).AtVec(0))

	_, err = d.Rollout(pol, x0, 0, nil)
	assert.True(errors.Is(err, gps.ErrInvalidParam))
	_, err = d.Rollout(pol, mat.NewDense(1, 3, nil), T, nil)
	assert.True(errors.Is(err, gps.ErrShapeMismatch))
	// policy horizon is shorter than rollout
	_, err = d.Rollout(pol, x0, T+1, nil)
	assert.Error(err)
}
