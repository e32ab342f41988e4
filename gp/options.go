package gp

import "github.com/YuminosukeSato/gpsearch/performance"

// Option は GaussianProcess を設定する関数
type Option func(*GaussianProcess)

// WithNoise は観測ノイズ（グラム行列の対角に加える値）を設定する
func WithNoise(noise float64) Option {
	return func(gp *GaussianProcess) {
		gp.noise = noise
	}
}

// WithMean は定数の事前平均を設定する
func WithMean(mean float64) Option {
	return func(gp *GaussianProcess) {
		gp.mean = mean
	}
}

// WithMaxCondition はコレスキー分解後に許容する条件数の上限を設定する
func WithMaxCondition(maxCond float64) Option {
	return func(gp *GaussianProcess) {
		gp.maxCondition = maxCond
	}
}

// WithPool はグラム行列のバッファを共有するプールを設定する
func WithPool(pool *performance.SymPool) Option {
	return func(gp *GaussianProcess) {
		gp.pool = pool
	}
}
