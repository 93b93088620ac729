package matrix

import (
	"fmt"

	mx "github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// pinvRcond is relative cutoff for small singular values in Pinv
const pinvRcond = 1e-15

// ColSums returns a slice containing m column sums.
// It panics if m is nil.
func ColSums(m *mat.Dense) []float64 {
	_, cols := m.Dims()
	sum := make([]float64, cols)

	for i := 0; i < cols; i++ {
		sum[i] = mat.Sum(m.ColView(i))
	}

	return sum
}

// ColMeans returns a vector of m column means.
// It panics if m is nil or has no rows.
func ColMeans(m *mat.Dense) *mat.VecDense {
	rows, _ := m.Dims()
	sum := ColSums(m)
	floats.Scale(1/float64(rows), sum)

	return mat.NewVecDense(len(sum), sum)
}

// Symmetrize returns 0.5*(a + a') as a symmetric matrix.
// It panics if a is not square.
func Symmetrize(a mat.Matrix) *mat.SymDense {
	r, c := a.Dims()
	if r != c {
		panic(mat.ErrShape)
	}

	s := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			s.SetSym(i, j, 0.5*(a.At(i, j)+a.At(j, i)))
		}
	}

	return s
}

// Concat returns a vector which contains elements of a followed by elements of b
func Concat(a, b mat.Vector) *mat.VecDense {
	na, nb := a.Len(), b.Len()
	v := mat.NewVecDense(na+nb, nil)
	for i := 0; i < na; i++ {
		v.SetVec(i, a.AtVec(i))
	}
	for i := 0; i < nb; i++ {
		v.SetVec(na+i, b.AtVec(i))
	}

	return v
}

// PadSym returns a symmetric matrix of size off+n which contains s
// in its lower right n x n block and zeros everywhere else.
func PadSym(s mat.Symmetric, off int) *mat.SymDense {
	n := s.SymmetricDim()
	p := mat.NewSymDense(off+n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			p.SetSym(off+i, off+j, s.At(i, j))
		}
	}

	return p
}

// ScaledIdentity returns n x n symmetric matrix with val on its diagonal.
// It returns error if n is not positive.
func ScaledIdentity(n int, val float64) (*mat.SymDense, error) {
	eye, err := mx.NewDenseValIdentity(n, val)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity matrix: %v", err)
	}

	return mat.NewSymDense(n, eye.RawMatrix().Data), nil
}

// BlockDiagSym places blocks along the diagonal of a new symmetric matrix.
func BlockDiagSym(blocks ...mat.Symmetric) *mat.SymDense {
	n := 0
	for _, b := range blocks {
		n += b.SymmetricDim()
	}

	d := mat.NewSymDense(n, nil)
	off := 0
	for _, b := range blocks {
		k := b.SymmetricDim()
		for i := 0; i < k; i++ {
			for j := i; j < k; j++ {
				d.SetSym(off+i, off+j, b.At(i, j))
			}
		}
		off += k
	}

	return d
}

// AddDiag adds val to every diagonal element of s in place.
func AddDiag(s *mat.SymDense, val float64) error {
	eye, err := ScaledIdentity(s.SymmetricDim(), val)
	if err != nil {
		return err
	}
	s.AddSym(s, eye)

	return nil
}

// Pinv computes Moore-Penrose pseudo-inverse of a using SVD.
// Singular values smaller than 1e-15 times the largest one are treated as zero,
// so rank deficient a yields the minimum norm solution.
// It returns error if SVD factorization fails.
func Pinv(a mat.Matrix) (*mat.Dense, error) {
	r, c := a.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, fmt.Errorf("SVD factorization failed")
	}

	u, v := &mat.Dense{}, &mat.Dense{}
	svd.UTo(u)
	svd.VTo(v)

	vals := svd.Values(nil)
	inv := make([]float64, len(vals))
	if len(vals) > 0 {
		cutoff := pinvRcond * floats.Max(vals)
		for i, s := range vals {
			if s > cutoff {
				inv[i] = 1 / s
			}
		}
	}

	// V * S^+ * U'
	vs := &mat.Dense{}
	vs.Mul(v, mat.NewDiagDense(len(inv), inv))

	out := mat.NewDense(c, r, nil)
	out.Mul(vs, u.T())

	return out, nil
}
