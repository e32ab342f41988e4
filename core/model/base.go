package model

// EstimatorState はモデルの学習状態を表す
type EstimatorState int

const (
	// NotFitted はモデルが未学習の状態
	NotFitted EstimatorState = iota
	// Fitted はモデルが学習済みの状態
	Fitted
)

// String は状態名を返す
func (s EstimatorState) String() string {
	if s == Fitted {
		return "fitted"
	}
	return "not_fitted"
}

// BaseEstimator は全てのモデルの基底となる構造体
// 学習済みかどうかに加えて、学習時の特徴量数とサンプル数を保持する
type BaseEstimator struct {
	state     EstimatorState
	nFeatures int
	nSamples  int
}

// IsFitted はモデルが学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted はモデルを学習済み状態に設定し、学習データの形状を記録する
func (e *BaseEstimator) SetFitted(nSamples, nFeatures int) {
	e.state = Fitted
	e.nSamples = nSamples
	e.nFeatures = nFeatures
}

// Dims は学習時のサンプル数と特徴量数を返す
func (e *BaseEstimator) Dims() (nSamples, nFeatures int) {
	return e.nSamples, e.nFeatures
}

// Reset はモデルを初期状態にリセットする
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
	e.nSamples = 0
	e.nFeatures = 0
}
