// Package search runs exhaustive grid searches over Gaussian-process
// hyperparameters.
//
// A Harness takes a DataSet and a Grid, fits one model per configuration,
// scores its predictions and keeps the configuration with the lowest error.
// Trials that cannot be fitted are recorded as failed with error +Inf; only
// invalid input data, an invalid grid or cancellation of the run's context
// stop a search.
//
//	h, err := search.New(ds, search.ReferenceGrid())
//	if err != nil {
//		return err
//	}
//	res, err := h.Run(ctx)
//	if err != nil {
//		return err
//	}
//	fmt.Println(res.Best.Config, res.Best.Error)
package search

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/YuminosukeSato/gpsearch/core/model"
	"github.com/YuminosukeSato/gpsearch/core/parallel"
	"github.com/YuminosukeSato/gpsearch/dataset"
	"github.com/YuminosukeSato/gpsearch/gp"
	"github.com/YuminosukeSato/gpsearch/kernel"
	"github.com/YuminosukeSato/gpsearch/metrics"
	"github.com/YuminosukeSato/gpsearch/performance"
	"github.com/YuminosukeSato/gpsearch/pkg/errors"
	"github.com/YuminosukeSato/gpsearch/pkg/log"
)

// DefaultMetric is the scoring function used without WithMetric.
const DefaultMetric = "mse"

// Harness evaluates every configuration of a Grid. It runs once.
type Harness struct {
	train *dataset.DataSet
	eval  *dataset.DataSet
	grid  Grid

	metricName   string
	scorer       metrics.Func
	noise        float64
	maxCondition float64
	logger       log.Logger
	progress     chan<- TrialEvent
	trialTimeout time.Duration
	workers      int
	newModel     ModelFactory
	pool         *performance.SymPool

	configs []kernel.Params

	state atomic.Int32

	mu     sync.Mutex
	result *Result
}

// New validates ds and grid and returns an Idle harness. A DataFormatError
// or ValidationError here means no trial will ever run.
func New(ds *dataset.DataSet, grid Grid, opts ...Option) (*Harness, error) {
	h := &Harness{
		train:        ds,
		grid:         grid,
		metricName:   DefaultMetric,
		noise:        gp.DefaultNoise,
		maxCondition: gp.DefaultMaxCondition,
		workers:      1,
	}
	for _, opt := range opts {
		opt(h)
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if h.eval == nil {
		h.eval = ds
	} else {
		if err := h.eval.Validate(); err != nil {
			return nil, errors.Wrap(err, "evaluation set")
		}
		if h.eval.Features() != ds.Features() {
			return nil, errors.NewDataFormatError("search.New",
				"evaluation set has a different number of features than the training set", -1)
		}
	}

	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if h.scorer == nil {
		fn, err := metrics.Lookup(h.metricName)
		if err != nil {
			return nil, err
		}
		h.scorer = fn
	}
	if h.newModel == nil {
		h.pool = performance.NewSymPool()
		h.newModel = h.gaussianProcess
	}

	defaults := kernel.Params{Noise: h.noise}
	h.configs = grid.Configs(defaults)
	for _, p := range h.configs {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	if h.logger == nil {
		h.logger = log.GetLoggerWithName("search")
	}
	return h, nil
}

// gaussianProcess is the default ModelFactory. Every trial fits the same
// training set, so the Gram buffers are shared through h.pool.
func (h *Harness) gaussianProcess(p kernel.Params, maxCondition float64) (model.Regressor, error) {
	k, err := kernel.NewSquaredExp(p)
	if err != nil {
		return nil, err
	}
	return gp.New(k,
		gp.WithNoise(p.Noise),
		gp.WithMaxCondition(maxCondition),
		gp.WithPool(h.pool),
	), nil
}

// State reports the lifecycle state.
func (h *Harness) State() State {
	return State(h.state.Load())
}

// Configs returns the configurations in the order they are evaluated.
func (h *Harness) Configs() []kernel.Params {
	out := make([]kernel.Params, len(h.configs))
	copy(out, h.configs)
	return out
}

// Result returns the outcome of Run, or nil before Run has returned.
func (h *Harness) Result() *Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result
}

// Run evaluates every configuration and returns the Result. A second call
// returns ErrAlreadyRun. When ctx is cancelled, Run stops handing out
// trials and returns the trials that finished together with ctx.Err().
func (h *Harness) Run(ctx context.Context) (*Result, error) {
	if !h.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return nil, errors.Wrapf(errors.ErrAlreadyRun, "harness is %s", h.State())
	}
	defer h.state.Store(int32(Done))

	n := len(h.configs)
	logger := h.logger.With(log.OperationKey, log.OperationSearch)
	logger.Info("grid search started",
		log.TrialsKey, n,
		log.SamplesKey, h.train.Len(),
		log.FeaturesKey, h.train.Features(),
		log.EvalSamplesKey, h.eval.Len(),
		log.MetricKey, h.metricName,
		log.WorkersKey, parallel.Workers(h.workers),
	)
	start := time.Now()

	trials := make([]Trial, n)
	finished := make([]bool, n)

	var (
		progressMu  sync.Mutex
		completed   int
		runningBest *Trial
	)
	record := func(t Trial) {
		progressMu.Lock()
		defer progressMu.Unlock()
		trials[t.Index] = t
		finished[t.Index] = true
		completed++
		if !t.Failed() && (runningBest == nil || better(t, *runningBest)) {
			b := t
			runningBest = &b
		}
		if h.progress != nil {
			event := TrialEvent{Trial: t, Completed: completed, Total: n}
			if runningBest != nil {
				b := *runningBest
				event.Best = &b
			}
			select {
			case h.progress <- event:
			default:
				// Skip update if channel is full.
			}
		}
	}

	var runErr error
	if h.workers == 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				runErr = err
				break
			}
			t := h.runTrial(ctx, i, logger)
			if err := ctx.Err(); err != nil {
				runErr = err
				break
			}
			record(t)
		}
	} else {
		runErr = parallel.ForEach(ctx, n, h.workers, func(i int) {
			t := h.runTrial(ctx, i, logger)
			if ctx.Err() != nil {
				return
			}
			record(t)
		})
		if runErr == nil && completed < n {
			runErr = ctx.Err()
		}
	}

	res := &Result{Metric: h.metricName, Total: n}
	for i := range trials {
		if finished[i] {
			res.Trials = append(res.Trials, trials[i])
		}
	}
	res.Best = bestOf(res.Trials)

	h.mu.Lock()
	h.result = res
	h.mu.Unlock()

	elapsed := time.Since(start)
	if h.pool != nil && logger.Enabled(ctx, log.LevelDebug) {
		stats := h.pool.Stats()
		logger.Debug("gram buffer pool",
			"pool.allocated", stats.TotalAllocated,
			"pool.recycled", stats.TotalRecycled,
			"pool.peak", stats.PeakUsage,
		)
	}
	if runErr != nil {
		logger.Warn("grid search aborted",
			log.TrialsKey, len(res.Trials),
			log.FailedTrialsKey, res.Failed(),
			log.DurationMsKey, elapsed.Milliseconds(),
			log.ErrAttrKey, runErr,
		)
		return res, runErr
	}

	if res.Best == nil {
		errors.Warn(&errors.NoValidTrialWarning{Trials: n})
		logger.Warn("grid search found no valid configuration",
			log.TrialsKey, n,
			log.FailedTrialsKey, res.Failed(),
			log.DurationMsKey, elapsed.Milliseconds(),
		)
		return res, nil
	}

	logger.Info("grid search finished",
		log.TrialsKey, n,
		log.FailedTrialsKey, res.Failed(),
		log.TrialKey, res.Best.Index,
		log.LengthScaleKey, res.Best.Config.LengthScale,
		log.SigmaKey, res.Best.Config.Sigma,
		log.NoiseKey, res.Best.Config.Noise,
		log.MetricValueKey, res.Best.Error,
		log.DurationMsKey, elapsed.Milliseconds(),
	)
	return res, nil
}

// better orders successful trials by error, then by enumeration index.
func better(a, b Trial) bool {
	if a.Error != b.Error {
		return a.Error < b.Error
	}
	return a.Index < b.Index
}

// runTrial never returns an error: failures are folded into the Trial.
func (h *Harness) runTrial(parent context.Context, i int, logger log.Logger) Trial {
	p := h.configs[i]
	trial := Trial{Index: i, Config: p, Error: math.Inf(1)}

	ctx := parent
	if h.trialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, h.trialTimeout)
		defer cancel()
	}

	start := time.Now()
	err := errors.SafeExecute("search.trial", func() error {
		return h.evaluate(ctx, &trial)
	})
	trial.Duration = time.Since(start)

	tl := logger.With(
		log.TrialKey, i,
		log.LengthScaleKey, p.LengthScale,
		log.SigmaKey, p.Sigma,
		log.NoiseKey, p.Noise,
	)

	if err != nil {
		if parent.Err() != nil {
			// The whole run is being cancelled; the caller drops this trial.
			trial.Err = parent.Err()
			return trial
		}
		trial.Err = err
		trial.Error = math.Inf(1)
		tl.Warn("trial failed",
			log.ErrAttrKey, err,
			log.ErrorCodeKey, errorCode(err),
			log.MetricValueKey, trial.Error,
			log.DurationMsKey, trial.Duration.Milliseconds(),
		)
		errors.Warn(errors.NewTrialFailedWarning(i, p.String(), err))
		return trial
	}

	tl.Info("trial finished",
		log.MetricKey, h.metricName,
		log.MetricValueKey, trial.Error,
		log.ConditionKey, trial.Condition,
		log.LogLikelihoodKey, trial.LogLikelihood,
		log.DurationMsKey, trial.Duration.Milliseconds(),
	)
	return trial
}

// evaluate fits one model on the training set and scores it on the
// evaluation set.
func (h *Harness) evaluate(ctx context.Context, trial *Trial) error {
	m, err := h.newModel(trial.Config, h.maxCondition)
	if err != nil {
		return err
	}
	if err := m.FitContext(ctx, h.train.Inputs(), h.train.Targets()); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	pred, err := m.Predict(h.eval.Inputs())
	if err != nil {
		return err
	}
	if err := errors.CheckVector("search.predict", pred, trial.Index); err != nil {
		return err
	}

	score, err := h.scorer(h.eval.Targets(), pred)
	if err != nil {
		return err
	}
	if err := errors.CheckScalar("search.score", score, trial.Index); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	trial.Error = score
	if c, ok := m.(interface{ Condition() float64 }); ok {
		trial.Condition = c.Condition()
	}
	if l, ok := m.(interface {
		LogMarginalLikelihood() (float64, error)
	}); ok {
		if ll, err := l.LogMarginalLikelihood(); err == nil {
			trial.LogLikelihood = ll
		}
	}
	return nil
}

func errorCode(err error) string {
	var (
		smErr    *errors.SingularMatrixError
		numErr   *errors.NumericalInstabilityError
		dimErr   *errors.DimensionError
		panicErr *errors.PanicError
	)
	switch {
	case errors.As(err, &smErr):
		return log.ErrorSingularMatrix
	case errors.Is(err, context.DeadlineExceeded):
		return log.ErrorTimeout
	case errors.As(err, &numErr):
		return log.ErrorNumerical
	case errors.As(err, &dimErr):
		return log.ErrorDimensionMismatch
	case errors.As(err, &panicErr):
		return log.ErrorPanic
	default:
		return log.ErrorUnknown
	}
}
