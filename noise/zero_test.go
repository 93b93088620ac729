package noise

import (
	"testing"

	gps "github.com/milosgajdos/go-gps"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestZero(t *testing.T) {
	assert := assert.New(t)

	for _, size := range []int{1, 3} {
		z, err := NewZero(size)
		assert.NoError(err)

		var n gps.Noise = z

		assert.Equal(make([]float64, size), n.Mean())
		assert.Equal(size, n.Cov().SymmetricDim())
		assert.Equal(0.0, mat.Norm(n.Cov(), 1))

		s := n.Sample()
		assert.Equal(size, s.Len())
		assert.Equal(0.0, mat.Norm(s, 2))

		assert.NoError(n.Reset())
		assert.Equal(s, n.Sample())
	}

	z, err := NewZero(-10)
	assert.Nil(z)
	assert.Error(err)
}

func TestZeroString(t *testing.T) {
	assert := assert.New(t)

	str := `Zero{
Mean=[0 0]
Cov=⎡0  0⎤
    ⎣0  0⎦
}`

	z, err := NewZero(2)
	assert.NoError(err)
	assert.Equal(str, z.String())
}
