package algorithm

import (
	"errors"
	"math"
	"testing"

	gps "github.com/milosgajdos/go-gps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewIterationData(t *testing.T) {
	assert := assert.New(t)

	d := NewIterationData()
	assert.Equal(1.0, d.StepMult)
	assert.Equal(1.0, d.Eta)
	assert.Nil(d.Samples)
	assert.Nil(d.Traj)
}

func TestNewTrajectoryInfo(t *testing.T) {
	assert := assert.New(t)

	ti := NewTrajectoryInfo()
	assert.True(math.IsInf(ti.LastKLStep, 1))
	assert.Nil(ti.Dynamics)
}

func TestNewPolicyInfo(t *testing.T) {
	assert := assert.New(t)

	c := Config{T: 5, DU: 2, DX: 3, InitPolWt: 0.01}
	p, err := NewPolicyInfo(c)
	require.NoError(t, err)

	r, cols := p.LambdaK.Dims()
	assert.Equal(5, r)
	assert.Equal(2, cols)
	assert.Len(p.LambdaKK, 5)
	r, cols = p.LambdaKK[4].Dims()
	assert.Equal(2, r)
	assert.Equal(3, cols)
	assert.Equal([]float64{0.01, 0.01, 0.01, 0.01, 0.01}, p.PolWt)

	assert.Equal(5, p.Pol.Horizon())
	du, dx := p.Pol.Dims()
	assert.Equal(2, du)
	assert.Equal(3, dx)
	assert.Equal(0.0, mat.Sum(p.Pol.Gain(0)))
	assert.Equal(0.0, mat.Sum(p.Pol.Chol(0)))

	for _, c := range []Config{{T: 0, DU: 1, DX: 1}, {T: 1, DU: 0, DX: 1}, {T: 1, DU: 1, DX: 0}} {
		p, err := NewPolicyInfo(c)
		assert.Nil(p)
		assert.True(errors.Is(err, gps.ErrInvalidParam))
	}
}
