package rand

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// WithCovN draws n random samples from a zero-mean Normal (aka Gaussian) distribution with covariance cov.
// It returns matrix which contains the randomly generated samples stored in its rows.
// src is the source of randomness; if src is nil the global source is used.
// It fails with error if n is non-positive or if SVD factorization of cov fails.
func WithCovN(cov mat.Symmetric, n int, src rand.Source) (*mat.Dense, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid number of samples requested: %d", n)
	}

	// Use SVD instead of Cholesky as Cholesky can be numerically unstable if cov is (almost) singular
	var svd mat.SVD
	ok := svd.Factorize(cov, mat.SVDFull)
	if !ok {
		return nil, fmt.Errorf("SVD factorization failed")
	}

	U := new(mat.Dense)
	svd.UTo(U)
	vals := svd.Values(nil)
	for i := range vals {
		vals[i] = math.Sqrt(vals[i])
	}
	diag := mat.NewDiagDense(len(vals), vals)
	U.Mul(U, diag)

	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	rows := cov.SymmetricDim()
	data := make([]float64, n*rows)
	for i := range data {
		data[i] = norm.Rand()
	}
	samples := mat.NewDense(n, rows, data)
	// x' = z' * (U*sqrt(S))'
	samples.Mul(samples, U.T())

	return samples, nil
}

// WithMeanCovN draws n random samples from a Normal distribution with mean mu and covariance cov.
// It returns matrix which contains the samples stored in its rows.
// It fails with error if the dimensions of mu and cov differ or if WithCovN fails.
func WithMeanCovN(mu []float64, cov mat.Symmetric, n int, src rand.Source) (*mat.Dense, error) {
	if len(mu) != cov.SymmetricDim() {
		return nil, fmt.Errorf("invalid mean length: %d, covariance: [%d x %d]", len(mu), cov.SymmetricDim(), cov.SymmetricDim())
	}

	samples, err := WithCovN(cov, n, src)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		row := samples.RawRowView(i)
		for j := range row {
			row[j] += mu[j]
		}
	}

	return samples, nil
}
