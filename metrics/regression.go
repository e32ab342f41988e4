// Package metrics は予測値と正解値の誤差指標を提供します。
// 探索では値が小さいほど良い指標だけを Lookup で選択できます。
package metrics

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gpsearch/pkg/errors"
)

// Func は誤差指標のシグネチャです。値が小さいほど良いことを前提とします。
type Func func(yTrue, yPred *mat.VecDense) (float64, error)

var registry = map[string]Func{
	"mse":  MSE,
	"rmse": RMSE,
	"mae":  MAE,
}

// Lookup は名前から誤差指標を返します。名前は大文字小文字を区別しません。
func Lookup(name string) (Func, error) {
	fn, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.NewValidationError("metric", "unknown metric, expected one of "+strings.Join(Names(), ", "), name)
	}
	return fn, nil
}

// Names は Lookup が受け付ける指標名をソートして返します。
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil || yTrue.IsEmpty() {
		return 0, errors.NewValueError(op, "empty vector")
	}
	n := yTrue.Len()
	if yPred.IsEmpty() || yPred.Len() != n {
		got := 0
		if !yPred.IsEmpty() {
			got = yPred.Len()
		}
		return 0, errors.NewDimensionError(op, n, got, 0)
	}
	return n, nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}

	return sum / float64(n), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MAE = (1/n) * Σ|yTrue - yPred|
	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}

	return sum / float64(n), nil
}

// R2Score は決定係数（R²）を計算する。大きいほど良い指標なので Lookup には含めない。
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var yMean float64
	for i := 0; i < n; i++ {
		yMean += yTrue.AtVec(i)
	}
	yMean /= float64(n)

	// 全変動（TSS）と残差変動（RSS）
	var tss, rss float64
	for i := 0; i < n; i++ {
		t, p := yTrue.AtVec(i), yPred.AtVec(i)
		tss += (t - yMean) * (t - yMean)
		rss += (t - p) * (t - p)
	}

	if tss == 0 {
		return 0, errors.Newf("R2Score: total sum of squares is zero (no variance in yTrue)")
	}

	return 1 - rss/tss, nil
}
