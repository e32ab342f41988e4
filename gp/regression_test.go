package gp

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gpsearch/kernel"
	"github.com/YuminosukeSato/gpsearch/performance"
	"github.com/YuminosukeSato/gpsearch/pkg/errors"
)

func squaredExp(t testing.TB, l, s float64) kernel.Kernel {
	t.Helper()
	k, err := kernel.NewSquaredExp(kernel.Params{LengthScale: l, Sigma: s})
	require.NoError(t, err)
	return k
}

func lineData() (*mat.Dense, *mat.VecDense) {
	return mat.NewDense(3, 1, []float64{0, 1, 2}), mat.NewVecDense(3, []float64{0, 1, 2})
}

func TestFitPredictLength(t *testing.T) {
	X, y := lineData()
	model := New(squaredExp(t, 1, 1))

	require.NoError(t, model.Fit(X, y))
	assert.True(t, model.IsFitted())
	assert.Greater(t, model.Condition(), 1.0)

	pred, err := model.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, y.Len(), pred.Len())

	Xq := mat.NewDense(5, 1, []float64{-1, 0.5, 1.5, 3, 10})
	pred, err = model.Predict(Xq)
	require.NoError(t, err)
	assert.Equal(t, 5, pred.Len())
}

func TestPredictInterpolatesWithSmallNoise(t *testing.T) {
	X, y := lineData()
	model := New(squaredExp(t, 1, 1), WithNoise(1e-8))
	require.NoError(t, model.Fit(X, y))

	pred, err := model.Predict(X)
	require.NoError(t, err)
	for i := 0; i < y.Len(); i++ {
		assert.InDelta(t, y.AtVec(i), pred.AtVec(i), 1e-4)
	}
}

func TestPredictRevertsToMeanFarAway(t *testing.T) {
	X, y := lineData()
	model := New(squaredExp(t, 0.1, 1), WithMean(5))
	require.NoError(t, model.Fit(X, y))

	pred, err := model.Predict(mat.NewDense(1, 1, []float64{100}))
	require.NoError(t, err)
	assert.InDelta(t, 5.0, pred.AtVec(0), 1e-12)
}

func TestFitDoesNotMutateInputs(t *testing.T) {
	X, y := lineData()
	model := New(squaredExp(t, 1, 1))
	require.NoError(t, model.Fit(X, y))

	assert.Equal(t, []float64{0, 1, 2}, X.RawMatrix().Data)
	assert.Equal(t, []float64{0, 1, 2}, y.RawVector().Data)

	// Later changes to X do not affect the fitted model.
	before, err := model.Predict(mat.NewDense(1, 1, []float64{1}))
	require.NoError(t, err)
	X.Set(1, 0, 50)
	after, err := model.Predict(mat.NewDense(1, 1, []float64{1}))
	require.NoError(t, err)
	assert.Equal(t, before.AtVec(0), after.AtVec(0))
}

func TestFitSingularWithoutNoise(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 1, 2})
	y := mat.NewVecDense(3, []float64{1, 1, 2})

	model := New(squaredExp(t, 1, 1), WithNoise(0))
	err := model.Fit(X, y)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSingularMatrix))

	var smErr *errors.SingularMatrixError
	require.True(t, errors.As(err, &smErr))
	assert.Equal(t, 3, smErr.Size)
	assert.False(t, model.IsFitted())

	_, err = model.Predict(X)
	var nfErr *errors.NotFittedError
	assert.True(t, errors.As(err, &nfErr))

	// The same rows fit once noise is added.
	require.NoError(t, New(squaredExp(t, 1, 1), WithNoise(0.1)).Fit(X, y))
}

func TestFitIllConditioned(t *testing.T) {
	X, y := lineData()
	// With a huge length scale every entry is almost sigma², so K is close to rank one.
	model := New(squaredExp(t, 1e3, 1), WithNoise(0), WithMaxCondition(1e6))
	err := model.Fit(X, y)
	assert.True(t, errors.Is(err, errors.ErrSingularMatrix), "got %v", err)
}

func TestFitDimensionMismatch(t *testing.T) {
	X, _ := lineData()
	model := New(squaredExp(t, 1, 1))

	err := model.Fit(X, mat.NewVecDense(2, []float64{0, 1}))
	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 3, dimErr.Expected)
	assert.Equal(t, 2, dimErr.Got)
}

func TestFitRejectsInvalidNoise(t *testing.T) {
	X, y := lineData()
	err := New(squaredExp(t, 1, 1), WithNoise(-1)).Fit(X, y)
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))
}

func TestPredictErrors(t *testing.T) {
	model := New(squaredExp(t, 1, 1))
	_, err := model.Predict(mat.NewDense(1, 1, []float64{0}))
	var nfErr *errors.NotFittedError
	require.True(t, errors.As(err, &nfErr))

	X, y := lineData()
	require.NoError(t, model.Fit(X, y))

	_, err = model.Predict(mat.NewDense(1, 2, []float64{0, 0}))
	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 1, dimErr.Axis)
}

func TestFitContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	X, y := lineData()
	model := New(squaredExp(t, 1, 1))
	err := model.FitContext(ctx, X, y)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, model.IsFitted())
}

func TestPredictVariance(t *testing.T) {
	X, y := lineData()
	model := New(squaredExp(t, 1, 1), WithNoise(1e-6))
	require.NoError(t, model.Fit(X, y))

	variance, err := model.PredictVariance(mat.NewDense(2, 1, []float64{1, 100}))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, variance.AtVec(0), 1e-4, "training points are almost certain")
	assert.InDelta(t, 1.0, variance.AtVec(1), 1e-9, "far points fall back to the prior sigma²")
	for i := 0; i < variance.Len(); i++ {
		assert.GreaterOrEqual(t, variance.AtVec(i), 0.0)
	}
}

func TestLogMarginalLikelihood(t *testing.T) {
	// Single point, K = sigma² + noise = 2, y = 1:
	// −½·1·(1/2) − ½·log 2 − ½·log 2π
	model := New(squaredExp(t, 1, 1), WithNoise(1))
	require.NoError(t, model.Fit(mat.NewDense(1, 1, []float64{0}), mat.NewVecDense(1, []float64{1})))

	got, err := model.LogMarginalLikelihood()
	require.NoError(t, err)
	want := -0.25 - 0.5*math.Log(2) - 0.5*math.Log(2*math.Pi)
	assert.InDelta(t, want, got, 1e-12)

	_, err = New(squaredExp(t, 1, 1)).LogMarginalLikelihood()
	assert.Error(t, err)
}

func BenchmarkFit(b *testing.B) {
	n := 200
	X := mat.NewDense(n, 1, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i)/10)
		y.SetVec(i, math.Sin(float64(i)/10))
	}
	k := squaredExp(b, 1, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = New(k, WithNoise(0.1)).Fit(X, y)
	}
}

func TestFitWithPool(t *testing.T) {
	X, y := lineData()
	pool := performance.NewSymPool()

	plain := New(squaredExp(t, 1, 1))
	require.NoError(t, plain.Fit(X, y))
	want, err := plain.Predict(X)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		pooled := New(squaredExp(t, 1, 1), WithPool(pool))
		require.NoError(t, pooled.Fit(X, y))
		got, err := pooled.Predict(X)
		require.NoError(t, err)
		assert.InDeltaSlice(t, want.RawVector().Data, got.RawVector().Data, 1e-12)
	}

	stats := pool.Stats()
	assert.Equal(t, int64(0), stats.CurrentInUse)
	assert.Equal(t, int64(3), stats.TotalRecycled)
}

func TestFitWithPoolReleasesOnFailure(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{0, 0, 1})
	y := mat.NewVecDense(3, []float64{0, 0, 1})
	pool := performance.NewSymPool()

	model := New(squaredExp(t, 1, 1), WithNoise(0), WithPool(pool))
	err := model.Fit(X, y)
	require.Error(t, err)
	assert.False(t, model.IsFitted())
	assert.Equal(t, int64(0), pool.Stats().CurrentInUse)
}
