package search

import (
	"time"

	"github.com/YuminosukeSato/gpsearch/core/model"
	"github.com/YuminosukeSato/gpsearch/dataset"
	"github.com/YuminosukeSato/gpsearch/kernel"
	"github.com/YuminosukeSato/gpsearch/metrics"
	"github.com/YuminosukeSato/gpsearch/pkg/log"
)

// Option configures a Harness.
type Option func(*Harness)

// WithEvaluationSet scores every trial on ds instead of the training set.
func WithEvaluationSet(ds *dataset.DataSet) Option {
	return func(h *Harness) {
		h.eval = ds
	}
}

// WithMetric selects a scoring function by name, see metrics.Lookup.
func WithMetric(name string) Option {
	return func(h *Harness) {
		h.metricName = name
		h.scorer = nil
	}
}

// WithScorer installs a custom lower-is-better scoring function.
func WithScorer(name string, fn metrics.Func) Option {
	return func(h *Harness) {
		h.metricName = name
		h.scorer = fn
	}
}

// WithNoise sets the observation noise used when the grid has no noise axis.
func WithNoise(noise float64) Option {
	return func(h *Harness) {
		h.noise = noise
	}
}

// WithMaxCondition sets the condition-number limit passed to every model.
func WithMaxCondition(maxCond float64) Option {
	return func(h *Harness) {
		h.maxCondition = maxCond
	}
}

// WithLogger sets the logger for trial records.
func WithLogger(logger log.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// WithProgress sends a TrialEvent after every trial. Sends never block; an
// event is dropped when the channel is full. The harness never closes ch.
func WithProgress(ch chan<- TrialEvent) Option {
	return func(h *Harness) {
		h.progress = ch
	}
}

// WithTrialTimeout bounds the fit and evaluation of a single trial. A trial
// that exceeds it is recorded as failed and the search continues.
func WithTrialTimeout(d time.Duration) Option {
	return func(h *Harness) {
		h.trialTimeout = d
	}
}

// WithWorkers evaluates up to n trials concurrently. n <= 0 uses one worker
// per CPU. The Result is identical to a sequential run.
func WithWorkers(n int) Option {
	return func(h *Harness) {
		h.workers = n
	}
}

// ModelFactory builds the regression model for one configuration.
type ModelFactory func(p kernel.Params, maxCondition float64) (model.Regressor, error)

// WithModelFactory replaces the Gaussian-process model built per trial.
func WithModelFactory(f ModelFactory) Option {
	return func(h *Harness) {
		h.newModel = f
	}
}
