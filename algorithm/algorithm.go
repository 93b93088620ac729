package algorithm

import (
	"fmt"
	"math"

	gps "github.com/milosgajdos/go-gps"
	"github.com/milosgajdos/go-gps/lingauss"
	"github.com/milosgajdos/go-gps/sample"
	"gonum.org/v1/gonum/mat"
)

// Config contains dimensions and initial hyperparameters of the optimization
type Config struct {
	// T is the time horizon
	T int
	// DU is action dimension
	DU int
	// DX is state dimension
	DX int
	// InitPolWt is initial policy weight of every timestep
	InitPolWt float64
}

// IterationData stores variables of a single optimization iteration
type IterationData struct {
	// Samples are samples of the current iteration
	Samples *sample.Batch
	// Traj stores trajectory related variables
	Traj *TrajectoryInfo
	// PrevCostTraj stores trajectory variables computed with the previous cost
	PrevCostTraj *TrajectoryInfo
	// Pol stores policy related variables
	Pol *PolicyInfo
	// TrajDistr is the initial trajectory distribution
	TrajDistr *lingauss.Model
	// Costs stores sample costs: N x T
	Costs *mat.Dense
	// TrueCosts stores ground truth sample costs: N x T
	TrueCosts *mat.Dense
	// StepMult is KL step multiplier
	StepMult float64
	// Eta is dual variable used in LQR backward pass
	Eta float64
}

// NewIterationData returns iteration data with step multiplier and eta set to 1
func NewIterationData() *IterationData {
	return &IterationData{
		StepMult: 1.0,
		Eta:      1.0,
	}
}

// TrajectoryInfo stores trajectory related variables
type TrajectoryInfo struct {
	// Dynamics is fitted dynamics of the current iteration
	Dynamics *lingauss.Model
	// X0Mu is initial state mean
	X0Mu *mat.VecDense
	// X0Sigma is initial state covariance
	X0Sigma *mat.SymDense
	// CC stores constant terms of cost estimate
	CC []float64
	// CV stores vector terms of cost estimate
	CV []*mat.VecDense
	// CM stores matrix terms of cost estimate
	CM []*mat.SymDense
	// LastKLStep is KL step of the previous iteration
	LastKLStep float64
}

// NewTrajectoryInfo returns trajectory info whose last KL step is +Inf
func NewTrajectoryInfo() *TrajectoryInfo {
	return &TrajectoryInfo{
		LastKLStep: math.Inf(1),
	}
}

// PolicyInfo stores policy related variables
type PolicyInfo struct {
	// LambdaK stores dual variables on policy bias: T x dU
	LambdaK *mat.Dense
	// LambdaKK stores dual variables on policy gains: T of dU x dX
	LambdaKK []*mat.Dense
	// PolWt stores policy weights: T
	PolWt []float64
	// PolMu is mean of the current policy output: N x T x dU
	PolMu []*mat.Dense
	// PolSig is covariance of the current policy output: N x T x dU x dU
	PolSig [][]*mat.SymDense
	// Pol is policy linearization with its covariance factors
	Pol *lingauss.Model
	// PrevKL is previous KL divergence: T
	PrevKL []float64
	// PolicySamples are current policy samples
	PolicySamples *sample.Batch
	// PolicyPrior is the current prior for policy linearization
	PolicyPrior gps.Prior
}

// NewPolicyInfo returns policy info for config c.
// Dual variables and policy linearization are zero and every policy weight is c.InitPolWt.
// It returns error if any of the dimensions is not positive.
func NewPolicyInfo(c Config) (*PolicyInfo, error) {
	if c.T <= 0 || c.DU <= 0 || c.DX <= 0 {
		return nil, fmt.Errorf("%w: T: %d, dU: %d, dX: %d", gps.ErrInvalidParam, c.T, c.DU, c.DX)
	}

	pol, err := lingauss.New(c.T, c.DU, c.DX)
	if err != nil {
		return nil, err
	}

	lambdaK := make([]*mat.Dense, c.T)
	polWt := make([]float64, c.T)
	for t := 0; t < c.T; t++ {
		lambdaK[t] = mat.NewDense(c.DU, c.DX, nil)
		polWt[t] = c.InitPolWt
	}

	return &PolicyInfo{
		LambdaK:  mat.NewDense(c.T, c.DU, nil),
		LambdaKK: lambdaK,
		PolWt:    polWt,
		Pol:      pol,
	}, nil
}
