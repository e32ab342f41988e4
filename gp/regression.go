// Package gp はガウス過程回帰モデルを提供する。
//
// 学習はグラム行列 K + noise·I のコレスキー分解で行い、分解に失敗した場合や
// 条件数が上限を超えた場合は SingularMatrixError を返す。
package gp

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gpsearch/core/model"
	"github.com/YuminosukeSato/gpsearch/kernel"
	"github.com/YuminosukeSato/gpsearch/performance"
	"github.com/YuminosukeSato/gpsearch/pkg/errors"
)

const (
	// DefaultNoise は観測ノイズの既定値
	DefaultNoise = 1.0
	// DefaultMaxCondition は許容する条件数の既定値
	DefaultMaxCondition = 1e12
)

// GaussianProcess はガウス過程回帰モデル
type GaussianProcess struct {
	model.BaseEstimator

	kernel       kernel.Kernel
	noise        float64
	mean         float64
	maxCondition float64
	pool         *performance.SymPool

	// 学習結果
	xTrain    *mat.Dense
	chol      mat.Cholesky
	alpha     *mat.VecDense
	centered  *mat.VecDense
	condition float64
}

var _ model.Regressor = (*GaussianProcess)(nil)

// New は新しいガウス過程回帰モデルを作成する
//
// 使用例:
//
//	k, _ := kernel.NewSquaredExp(kernel.Params{LengthScale: 1, Sigma: 1})
//	model := gp.New(k, gp.WithNoise(0.1))
//	err := model.Fit(X, y)
//	yPred, err := model.Predict(Xq)
func New(k kernel.Kernel, opts ...Option) *GaussianProcess {
	gp := &GaussianProcess{
		kernel:       k,
		noise:        DefaultNoise,
		maxCondition: DefaultMaxCondition,
	}
	for _, opt := range opts {
		opt(gp)
	}
	return gp
}

// Kernel は使用しているカーネルを返す
func (gp *GaussianProcess) Kernel() kernel.Kernel {
	return gp.kernel
}

// Noise は観測ノイズを返す
func (gp *GaussianProcess) Noise() float64 {
	return gp.noise
}

// Condition は直近の学習で推定された条件数を返す
func (gp *GaussianProcess) Condition() float64 {
	return gp.condition
}

// Fit はモデルを訓練データで学習させる
func (gp *GaussianProcess) Fit(X mat.Matrix, y *mat.VecDense) error {
	return gp.FitContext(context.Background(), X, y)
}

// FitContext はキャンセル可能な Fit
// α = (K + noise·I)⁻¹ (y − mean) を計算する
func (gp *GaussianProcess) FitContext(ctx context.Context, X mat.Matrix, y *mat.VecDense) error {
	const op = "GaussianProcess.Fit"

	gp.Reset()
	gp.condition = 0

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if y == nil || y.Len() != r {
		got := 0
		if y != nil {
			got = y.Len()
		}
		return errors.NewDimensionError(op, r, got, 0)
	}
	if gp.noise < 0 || math.IsNaN(gp.noise) || math.IsInf(gp.noise, 0) {
		return errors.NewValidationError("noise", "must be non-negative and finite", gp.noise)
	}

	var K *mat.SymDense
	if gp.pool != nil {
		// 分解はKをコピーするので、分解後にプールへ返す
		K = gp.pool.Get(r)
		defer gp.pool.Put(K)
	} else {
		K = mat.NewSymDense(r, nil)
	}
	if err := kernel.GramIntoContext(ctx, gp.kernel, X, K); err != nil {
		return err
	}
	for i := 0; i < r; i++ {
		K.SetSym(i, i, K.At(i, i)+gp.noise)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(K); !ok {
		return errors.NewSingularMatrixError(op, r, 0, gp.maxCondition)
	}
	cond := chol.Cond()
	if math.IsNaN(cond) || cond > gp.maxCondition {
		return errors.NewSingularMatrixError(op, r, cond, gp.maxCondition)
	}

	// 事前平均を引いたターゲット
	centered := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		centered.SetVec(i, y.AtVec(i)-gp.mean)
	}

	alpha := mat.NewVecDense(r, nil)
	if err := chol.SolveVecTo(alpha, centered); err != nil {
		return errors.NewSingularMatrixError(op, r, cond, gp.maxCondition)
	}
	if err := errors.CheckVector(op, alpha, -1); err != nil {
		return err
	}

	gp.xTrain = mat.DenseCopyOf(X)
	gp.chol = chol
	gp.alpha = alpha
	gp.centered = centered
	gp.condition = cond
	gp.SetFitted(r, c)

	return nil
}

func (gp *GaussianProcess) checkQuery(op string, Xq mat.Matrix) error {
	if !gp.IsFitted() {
		return errors.NewNotFittedError("GaussianProcess", op)
	}
	r, c := Xq.Dims()
	if r == 0 {
		return errors.NewValueError("GaussianProcess."+op, "empty query matrix")
	}
	if _, nFeatures := gp.Dims(); c != nFeatures {
		return errors.NewDimensionError("GaussianProcess."+op, nFeatures, c, 1)
	}
	return nil
}

// Predict は入力データの各行に対する事後平均 mean + K*ᵀα を返す
func (gp *GaussianProcess) Predict(Xq mat.Matrix) (*mat.VecDense, error) {
	if err := gp.checkQuery("Predict", Xq); err != nil {
		return nil, err
	}

	Ks := kernel.Cross(gp.kernel, Xq, gp.xTrain)
	r, _ := Ks.Dims()

	pred := mat.NewVecDense(r, nil)
	pred.MulVec(Ks, gp.alpha)
	for i := 0; i < r; i++ {
		pred.SetVec(i, pred.AtVec(i)+gp.mean)
	}
	return pred, nil
}

// PredictVariance は各クエリ点の事後分散 k(x,x) − k*ᵀ(K + noise·I)⁻¹k* を返す。
// 丸め誤差による負の値は 0 に切り上げる。
func (gp *GaussianProcess) PredictVariance(Xq mat.Matrix) (*mat.VecDense, error) {
	if err := gp.checkQuery("PredictVariance", Xq); err != nil {
		return nil, err
	}

	Ks := kernel.Cross(gp.kernel, Xq, gp.xTrain)
	r, n := Ks.Dims()

	variance := mat.NewVecDense(r, nil)
	ks := mat.NewVecDense(n, nil)
	v := mat.NewVecDense(n, nil)
	for i := 0; i < r; i++ {
		ks.CopyVec(Ks.RowView(i))
		if err := gp.chol.SolveVecTo(v, ks); err != nil {
			return nil, errors.Wrap(err, "GaussianProcess.PredictVariance")
		}
		x := mat.Row(nil, i, Xq)
		variance.SetVec(i, math.Max(0, gp.kernel.Evaluate(x, x)-mat.Dot(ks, v)))
	}
	return variance, nil
}

// LogMarginalLikelihood は学習データの対数周辺尤度
// −½ (y−m)ᵀα − ½ log|K + noise·I| − n/2 log 2π を返す
func (gp *GaussianProcess) LogMarginalLikelihood() (float64, error) {
	if !gp.IsFitted() {
		return 0, errors.NewNotFittedError("GaussianProcess", "LogMarginalLikelihood")
	}
	n, _ := gp.Dims()
	fit := mat.Dot(gp.centered, gp.alpha)
	return -0.5*fit - 0.5*gp.chol.LogDet() - 0.5*float64(n)*math.Log(2*math.Pi), nil
}
