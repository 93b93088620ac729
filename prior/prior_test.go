package prior

import (
	"errors"
	"testing"

	gps "github.com/milosgajdos/go-gps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewStats(t *testing.T) {
	assert := assert.New(t)

	mu0 := mat.NewVecDense(2, []float64{1, 2})
	phi := mat.NewSymDense(2, []float64{2, 0.5, 0.5, 3})

	s, err := NewStats(mu0, phi, 1, 2)
	assert.NotNil(s)
	assert.NoError(err)

	m, n0 := s.Strength()
	assert.Equal(1.0, m)
	assert.Equal(2.0, n0)
	assert.True(mat.Equal(mu0, s.Mean()))
	assert.True(mat.Equal(phi, s.Scatter()))

	// stats do not share memory with inputs
	phi.SetSym(0, 0, 100)
	assert.Equal(2.0, s.Scatter().At(0, 0))

	for _, test := range []struct {
		mu0   mat.Vector
		phi   mat.Symmetric
		m, n0 float64
		err   error
	}{
		{mu0: nil, phi: phi, m: 1, n0: 1, err: gps.ErrShapeMismatch},
		{mu0: mat.NewVecDense(3, nil), phi: phi, m: 1, n0: 1, err: gps.ErrShapeMismatch},
		{mu0: mu0, phi: phi, m: -1, n0: 1, err: gps.ErrInvalidParam},
		{mu0: mu0, phi: phi, m: 1, n0: -1, err: gps.ErrInvalidParam},
	} {
		s, err := NewStats(test.mu0, test.phi, test.m, test.n0)
		assert.Nil(s)
		assert.True(errors.Is(err, test.err))
	}
}

func TestFromGaussian(t *testing.T) {
	assert := assert.New(t)

	mu := mat.NewVecDense(2, []float64{1, -1})
	sigma := mat.NewSymDense(2, []float64{1, 0.2, 0.2, 2})

	s, err := FromGaussian(mu, sigma, 4)
	require.NoError(t, err)

	m, n0 := s.Strength()
	assert.Equal(4.0, m)
	assert.Equal(4.0, n0)
	assert.InDelta(4.0, s.Scatter().At(0, 0), 1e-12)
	assert.InDelta(0.8, s.Scatter().At(0, 1), 1e-12)
	assert.InDelta(8.0, s.Scatter().At(1, 1), 1e-12)
}

func TestFromMoments(t *testing.T) {
	assert := assert.New(t)

	// two samples [1 0] and [3 2] with no noise
	ev := mat.NewVecDense(2, []float64{2, 1})
	em := []*mat.SymDense{
		mat.NewSymDense(2, []float64{1, 0, 0, 0}),
		mat.NewSymDense(2, []float64{9, 6, 6, 4}),
	}

	s, err := FromMoments(ev, em, 2)
	require.NoError(t, err)

	// covariance [[1 1] [1 1]] scaled by strength
	phi := s.Scatter()
	assert.InDelta(2.0, phi.At(0, 0), 1e-12)
	assert.InDelta(2.0, phi.At(0, 1), 1e-12)
	assert.InDelta(2.0, phi.At(1, 1), 1e-12)
	assert.True(mat.Equal(ev, s.Mean()))

	_, err = FromMoments(ev, nil, 1)
	assert.True(errors.Is(err, gps.ErrShapeMismatch))

	_, err = FromMoments(ev, []*mat.SymDense{mat.NewSymDense(3, nil)}, 1)
	assert.True(errors.Is(err, gps.ErrShapeMismatch))
}

func TestStatic(t *testing.T) {
	assert := assert.New(t)

	s, err := Weak(3, 0.5)
	require.NoError(t, err)

	p, err := NewStatic(s)
	require.NoError(t, err)

	var _ gps.Prior = p

	stats, err := p.Eval(mat.NewDense(10, 3, nil))
	assert.NoError(err)
	assert.Equal(0.5, stats.Scatter().At(2, 2))

	stats, err = p.Eval(mat.NewDense(10, 2, nil))
	assert.Nil(stats)
	assert.True(errors.Is(err, gps.ErrShapeMismatch))

	p, err = NewStatic(nil)
	assert.Nil(p)
	assert.Error(err)

	_, err = Weak(0, 1)
	assert.Error(err)
}

func TestString(t *testing.T) {
	assert := assert.New(t)

	str := `Prior{
Mu0=[1  2]
Phi=⎡2  0⎤
    ⎣0  3⎦
m=1
n0=2
}`
	s, err := NewStats(mat.NewVecDense(2, []float64{1, 2}), mat.NewSymDense(2, []float64{2, 0, 0, 3}), 1, 2)
	require.NoError(t, err)
	assert.Equal(str, s.String())
}
