// Package preprocessing は特徴量のスケーリングを提供する。
// 長さスケールは全ての特徴量に共通なので、単位の異なる特徴量を持つデータでは
// 探索の前に標準化しておくとグリッドの意味が揃う。
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/gpsearch/core/model"
	"github.com/YuminosukeSato/gpsearch/pkg/errors"
)

// Scaler は学習データから統計量を求めて特徴量を変換する
type Scaler interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
	FitTransform(X mat.Matrix) (mat.Matrix, error)
	InverseTransform(X mat.Matrix) (mat.Matrix, error)
}

var (
	_ Scaler = (*StandardScaler)(nil)
	_ Scaler = (*MinMaxScaler)(nil)
)

// 分散がこれより小さい特徴量はスケール 1 として扱う
const zeroScale = 1e-8

// StandardScaler はデータを平均0、標準偏差1に変換する
type StandardScaler struct {
	model.BaseEstimator

	// Mean は各特徴量の平均値
	Mean []float64

	// Scale は各特徴量の標準偏差
	Scale []float64

	// WithMean は平均を引くかどうか (デフォルト: true)
	WithMean bool

	// WithStd は標準偏差で割るかどうか (デフォルト: true)
	WithStd bool
}

// NewStandardScaler は新しいStandardScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	err := scaler.Fit(X)
//	XScaled, err := scaler.Transform(X)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault はデフォルト設定でStandardScalerを作成する
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit は訓練データから平均と母標準偏差を計算する
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		mean, std := stat.PopMeanStdDev(col, nil)

		if s.WithMean {
			s.Mean[j] = mean
		}
		s.Scale[j] = 1.0
		if s.WithStd && std >= zeroScale {
			s.Scale[j] = std
		}
	}

	s.SetFitted(r, c)
	return nil
}

// Transform は学習済みの統計情報を使ってデータを標準化する
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	return s.apply("Transform", X, func(v float64, j int) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	})
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	return s.apply("InverseTransform", X, func(v float64, j int) float64 {
		return v*s.Scale[j] + s.Mean[j]
	})
}

func (s *StandardScaler) apply(method string, X mat.Matrix, fn func(v float64, j int) float64) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", method)
	}
	return applyColumns("StandardScaler."+method, X, &s.BaseEstimator, fn)
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	_, nFeatures := s.Dims()
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, nFeatures)
}

// MinMaxScaler はデータを指定した範囲（デフォルト[0,1]）にスケーリングする
type MinMaxScaler struct {
	model.BaseEstimator

	// DataMin は学習データの最小値
	DataMin []float64

	// DataMax は学習データの最大値
	DataMax []float64

	// Scale は各特徴量のスケール (max - min)
	Scale []float64

	// FeatureRange はスケーリング後の範囲 [min, max]
	FeatureRange [2]float64
}

// NewMinMaxScaler は新しいMinMaxScalerを作成する
func NewMinMaxScaler(featureRange [2]float64) *MinMaxScaler {
	return &MinMaxScaler{
		FeatureRange: featureRange,
	}
}

// NewMinMaxScalerDefault はデフォルト設定([0,1]範囲)でMinMaxScalerを作成する
func NewMinMaxScalerDefault() *MinMaxScaler {
	return NewMinMaxScaler([2]float64{0.0, 1.0})
}

// Fit は訓練データから最小値・最大値を計算する
func (m *MinMaxScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("MinMaxScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	if !(m.FeatureRange[0] < m.FeatureRange[1]) {
		return errors.NewValidationError("feature_range", "min must be smaller than max", m.FeatureRange)
	}

	m.DataMin = make([]float64, c)
	m.DataMax = make([]float64, c)
	m.Scale = make([]float64, c)

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		m.DataMin[j] = floats.Min(col)
		m.DataMax[j] = floats.Max(col)

		// 定数特徴量の場合、スケールを1に設定
		m.Scale[j] = 1.0
		if dataRange := m.DataMax[j] - m.DataMin[j]; math.Abs(dataRange) >= zeroScale {
			m.Scale[j] = dataRange
		}
	}

	m.SetFitted(r, c)
	return nil
}

// Transform は学習済みの統計情報を使ってデータをスケーリングする
func (m *MinMaxScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	featureRange := m.FeatureRange[1] - m.FeatureRange[0]
	return m.apply("Transform", X, func(v float64, j int) float64 {
		return (v-m.DataMin[j])/m.Scale[j]*featureRange + m.FeatureRange[0]
	})
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (m *MinMaxScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

// InverseTransform はスケーリングされたデータを元の範囲に戻す
func (m *MinMaxScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	featureRange := m.FeatureRange[1] - m.FeatureRange[0]
	return m.apply("InverseTransform", X, func(v float64, j int) float64 {
		return (v-m.FeatureRange[0])/featureRange*m.Scale[j] + m.DataMin[j]
	})
}

func (m *MinMaxScaler) apply(method string, X mat.Matrix, fn func(v float64, j int) float64) (mat.Matrix, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("MinMaxScaler", method)
	}
	return applyColumns("MinMaxScaler."+method, X, &m.BaseEstimator, fn)
}

func applyColumns(op string, X mat.Matrix, base *model.BaseEstimator, fn func(v float64, j int) float64) (mat.Matrix, error) {
	r, c := X.Dims()
	if _, nFeatures := base.Dims(); c != nFeatures {
		return nil, errors.NewDimensionError(op, nFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return fn(v, j)
	}, X)
	return result, nil
}
