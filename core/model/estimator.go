package model

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// Fitter は学習可能な回帰モデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X mat.Matrix, y *mat.VecDense) error
}

// ContextFitter はキャンセル可能な学習をサポートするモデル
type ContextFitter interface {
	FitContext(ctx context.Context, X mat.Matrix, y *mat.VecDense) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データの各行に対する予測値を返す
	Predict(X mat.Matrix) (*mat.VecDense, error)
}

// Regressor はグリッドサーチの1トライアルで使われる回帰モデル
type Regressor interface {
	Fitter
	ContextFitter
	Predictor
}
