// Package kernel provides covariance functions for Gaussian-process
// regression and helpers that turn them into Gram matrices.
package kernel

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gpsearch/core/parallel"
	"github.com/YuminosukeSato/gpsearch/pkg/errors"
)

// Kernel is a symmetric positive semi-definite covariance function.
type Kernel interface {
	// Evaluate returns the covariance between a and b. It panics if the
	// vectors differ in length.
	Evaluate(a, b []float64) float64
	// Params reports the hyperparameters the kernel was built from.
	Params() Params
}

// Params is one hyperparameter configuration of a search.
// Noise is not used by the kernel itself; it is the observation noise added
// to the Gram diagonal by the regression model.
type Params struct {
	LengthScale float64
	Sigma       float64
	Noise       float64
}

// String formats the configuration the way trial logs print it.
func (p Params) String() string {
	return fmt.Sprintf("lscale=%g sigma=%g noise=%g", p.LengthScale, p.Sigma, p.Noise)
}

// Validate checks that LengthScale and Sigma are strictly positive and
// finite and that Noise is finite and non-negative.
func (p Params) Validate() error {
	if !positiveFinite(p.LengthScale) {
		return errors.NewValidationError("lscale", "must be positive and finite", p.LengthScale)
	}
	if !positiveFinite(p.Sigma) {
		return errors.NewValidationError("sigma", "must be positive and finite", p.Sigma)
	}
	if p.Noise < 0 || math.IsNaN(p.Noise) || math.IsInf(p.Noise, 0) {
		return errors.NewValidationError("noise", "must be non-negative and finite", p.Noise)
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// SquaredExp is the squared exponential (RBF) kernel
//
//	k(a, b) = sigma² · exp(−‖a − b‖² / (2·lscale²))
type SquaredExp struct {
	params Params
	// 1 / (2·lscale²), cached
	invTwoL2 float64
	sigma2   float64
}

// NewSquaredExp returns a squared exponential kernel for p.
func NewSquaredExp(p Params) (*SquaredExp, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &SquaredExp{
		params:   p,
		invTwoL2: 1 / (2 * p.LengthScale * p.LengthScale),
		sigma2:   p.Sigma * p.Sigma,
	}, nil
}

// Evaluate implements Kernel.
func (k *SquaredExp) Evaluate(a, b []float64) float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("kernel: vector length mismatch: %d != %d", len(a), len(b)))
	}
	d := floats.Distance(a, b, 2)
	return k.sigma2 * math.Exp(-d*d*k.invTwoL2)
}

// Params implements Kernel.
func (k *SquaredExp) Params() Params {
	return k.params
}

// ParallelThreshold is the number of rows above which Gram and Cross fan out
// over CPU cores.
const ParallelThreshold = 64

func rows(X mat.Matrix) [][]float64 {
	r, _ := X.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, X)
	}
	return out
}

// Gram returns the N×N matrix K[i][j] = k(X_i, X_j).
func Gram(k Kernel, X mat.Matrix) *mat.SymDense {
	K, _ := GramContext(context.Background(), k, X)
	return K
}

// GramContext is Gram that stops filling rows once ctx is done and returns
// ctx.Err() in that case.
func GramContext(ctx context.Context, k Kernel, X mat.Matrix) (*mat.SymDense, error) {
	n, _ := X.Dims()
	K := mat.NewSymDense(n, nil)
	if err := GramIntoContext(ctx, k, X, K); err != nil {
		return nil, err
	}
	return K, nil
}

// GramIntoContext fills dst with the Gram matrix of X. dst must be N×N.
func GramIntoContext(ctx context.Context, k Kernel, X mat.Matrix, dst *mat.SymDense) error {
	xs := rows(X)
	n := len(xs)
	if dst.SymmetricDim() != n {
		return errors.NewDimensionError("kernel.Gram", n, dst.SymmetricDim(), 0)
	}

	// Each worker owns whole rows of the upper triangle.
	parallel.ParallelizeWithThreshold(n, ParallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			if ctx.Err() != nil {
				return
			}
			for j := i; j < n; j++ {
				dst.SetSym(i, j, k.Evaluate(xs[i], xs[j]))
			}
		}
	})
	return ctx.Err()
}

// Cross returns the M×N matrix C[i][j] = k(Xq_i, X_j) between query rows
// and training rows.
func Cross(k Kernel, Xq, X mat.Matrix) *mat.Dense {
	qs := rows(Xq)
	xs := rows(X)
	C := mat.NewDense(len(qs), len(xs), nil)

	parallel.ParallelizeWithThreshold(len(qs), ParallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := range xs {
				C.Set(i, j, k.Evaluate(qs[i], xs[j]))
			}
		}
	})
	return C
}
