// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// グリッドサーチの各トライアルで発生する失敗を構造化された情報として扱えるようにします。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("gpsearch-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nil を渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// TrialFailedWarning はグリッドのあるセルで学習または評価が失敗したことを示す警告です。
// サーチ自体は継続されます。
type TrialFailedWarning struct {
	Trial  int
	Params string
	Reason string
}

func (w *TrialFailedWarning) Error() string {
	return fmt.Sprintf("trial %d (%s) failed and was recorded with an infinite error: %s", w.Trial, w.Params, w.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *TrialFailedWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Int("trial", w.Trial).
		Str("params", w.Params).
		Str("reason", w.Reason).
		Str("type", "TrialFailedWarning")
}

// NewTrialFailedWarning は新しいTrialFailedWarningを作成します。
func NewTrialFailedWarning(trial int, params string, cause error) *TrialFailedWarning {
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	return &TrialFailedWarning{Trial: trial, Params: params, Reason: reason}
}

// NoValidTrialWarning はすべてのトライアルが失敗し、最良の設定が存在しない場合の警告です。
type NoValidTrialWarning struct {
	Trials int
}

func (w *NoValidTrialWarning) Error() string {
	return fmt.Sprintf("all %d trials failed; no best configuration was selected", w.Trials)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *NoValidTrialWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Int("trials", w.Trials).
		Str("type", "NoValidTrialWarning")
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// DataFormatError は入力テーブルが空、壊れている、または行の長さが揃っていない場合のエラーです。
// サーチ開始前に検出され、致命的なエラーとして扱われます。
type DataFormatError struct {
	Op     string
	Reason string
	Row    int   // 問題のある行 (-1 は行に依存しない)
	Err    error // 元のエラー（JSONデコード失敗など）
}

func (e *DataFormatError) Error() string {
	msg := fmt.Sprintf("gpsearch: %s: invalid data: %s", e.Op, e.Reason)
	if e.Row >= 0 {
		msg = fmt.Sprintf("%s (row %d)", msg, e.Row)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *DataFormatError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DataFormatError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("reason", e.Reason).
		Int("row", e.Row).
		Str("type", "DataFormatError")
}

// NewDataFormatError は新しいDataFormatErrorを作成し、スタックトレースを付与します。
// row に -1 を渡すと行番号は表示されません。
func NewDataFormatError(op, reason string, row int) error {
	err := &DataFormatError{Op: op, Reason: reason, Row: row}
	return errors.WithStack(err)
}

// WrapDataFormatError は元のエラーを保持したDataFormatErrorを作成します。
func WrapDataFormatError(op, reason string, cause error) error {
	err := &DataFormatError{Op: op, Reason: reason, Row: -1, Err: cause}
	return errors.WithStack(err)
}

// SingularMatrixError はグラム行列の分解が数値的に不可能な場合のエラーです。
// Condition が 0 の場合はコレスキー分解そのものが失敗したことを示します。
type SingularMatrixError struct {
	Op        string
	Size      int
	Condition float64
	Threshold float64
}

func (e *SingularMatrixError) Error() string {
	if e.Condition == 0 {
		return fmt.Sprintf("gpsearch: %s: %dx%d matrix is not positive definite", e.Op, e.Size, e.Size)
	}
	return fmt.Sprintf("gpsearch: %s: %dx%d matrix is ill-conditioned (condition %.3g exceeds %.3g)",
		e.Op, e.Size, e.Size, e.Condition, e.Threshold)
}

// Unwrap により errors.Is(err, ErrSingularMatrix) が成立します。
func (e *SingularMatrixError) Unwrap() error {
	return ErrSingularMatrix
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *SingularMatrixError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("size", e.Size).
		Float64("condition", e.Condition).
		Float64("threshold", e.Threshold).
		Str("type", "SingularMatrixError")
}

// NewSingularMatrixError は新しいSingularMatrixErrorを作成し、スタックトレースを付与します。
func NewSingularMatrixError(op string, size int, condition, threshold float64) error {
	err := &SingularMatrixError{Op: op, Size: size, Condition: condition, Threshold: threshold}
	return errors.WithStack(err)
}

// NotFittedError はモデルが未学習の状態で `Predict` を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("gpsearch: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
// 予測値とターゲットの長さの不一致もこのエラーになります。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("gpsearch: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, e.axisName(), e.Expected, e.Got)
}

func (e *DimensionError) axisName() string {
	if e.Axis == 0 {
		return "rows"
	}
	return "features"
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", e.axisName()).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
// グリッドの値やカーネルのハイパーパラメータが不正な場合に使われます。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("gpsearch: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("gpsearch: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError はモデルに関する一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gpsearch: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("gpsearch: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// NumericalInstabilityError は数値計算が不安定になった場合のエラーです。
// 予測値に NaN や Inf が含まれる場合などに検出されます。
type NumericalInstabilityError struct {
	Operation string    // 発生した操作（例: "gp.predict", "metrics.mse"）
	Values    []float64 // 問題のある値
	Iteration int       // 発生したトライアル番号などの位置情報
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("gpsearch: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	err := &NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix は特異行列の場合のエラーです。
	ErrSingularMatrix = New("singular matrix")

	// ErrAlreadyRun は同じハーネスで二度 Run を呼んだ場合のエラーです。
	ErrAlreadyRun = New("search harness has already been run")
)
