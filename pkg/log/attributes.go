// Package log defines standard attribute keys for search and regression operations.
//
// Using these keys keeps every trial line filterable by the same names
// (e.g. "hyperparams.lscale", "search.trial") regardless of which package
// emitted it.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the regression model type.
	// Examples: "GaussianProcess", "StandardScaler"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score", "search"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "search", "gp", "dataset"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of a trial.
	// Examples: "training", "evaluation"
	PhaseKey = "ml.phase"
)

// Data Shape
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// EvalSamplesKey indicates the number of rows used to score a trial.
	// Equal to SamplesKey for in-sample evaluation.
	EvalSamplesKey = "data.eval_samples"
)

// Search Progress
const (
	// TrialKey is the enumeration index of a grid cell, starting at 0.
	TrialKey = "search.trial"

	// TrialsKey is the total number of grid cells.
	TrialsKey = "search.trials"

	// FailedTrialsKey counts trials recorded with an infinite error.
	FailedTrialsKey = "search.failed_trials"

	// WorkersKey records how many trials may run at once.
	WorkersKey = "search.workers"

	// MetricKey names the error metric ("mse", "rmse", "mae").
	MetricKey = "metrics.name"

	// MetricValueKey records the error value of a trial. Lower is better.
	MetricValueKey = "metrics.value"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Hyperparameters
const (
	// LengthScaleKey records the kernel length-scale.
	LengthScaleKey = "hyperparams.lscale"

	// SigmaKey records the kernel signal standard deviation.
	SigmaKey = "hyperparams.sigma"

	// NoiseKey records the diagonal noise added to the Gram matrix.
	NoiseKey = "hyperparams.noise"
)

// Regression Diagnostics
const (
	// ConditionKey records the condition-number estimate of the Gram matrix.
	ConditionKey = "gp.condition"

	// LogLikelihoodKey records the log marginal likelihood of a fit.
	LogLikelihoodKey = "gp.log_marginal_likelihood"
)

// Error and Warning Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// SuggestionKey provides a hint for resolving an issue.
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"
	OperationSearch  = "search"

	PhaseTraining   = "training"
	PhaseEvaluation = "evaluation"

	ErrorDataFormat        = "DATA_FORMAT"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorSingularMatrix    = "SINGULAR_MATRIX"
	ErrorNumerical         = "NUMERICAL_INSTABILITY"
	ErrorTimeout           = "TRIAL_TIMEOUT"
	ErrorPanic             = "PANIC"
	ErrorUnknown           = "UNKNOWN"
)
