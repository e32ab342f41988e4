package search

import (
	"math"
	"time"

	"github.com/YuminosukeSato/gpsearch/kernel"
)

// State is the lifecycle of a Harness.
type State int32

const (
	// Idle means Run has not been called.
	Idle State = iota
	// Running means trials are being evaluated.
	Running
	// Done means Run returned; the Result is available.
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Trial is the outcome of one grid cell.
type Trial struct {
	// Index is the position of Config in grid enumeration order.
	Index  int
	Config kernel.Params
	// Error is the metric value, +Inf when the trial failed.
	Error float64
	// Err is the reason the trial failed, nil on success.
	Err error

	Condition     float64
	LogLikelihood float64
	Duration      time.Duration
}

// Failed reports whether the trial produced no usable error value.
func (t Trial) Failed() bool {
	return t.Err != nil || math.IsInf(t.Error, 1)
}

// Result is what a search run produced.
type Result struct {
	// Metric is the name of the scoring function.
	Metric string
	// Best is the trial with the lowest error; the earliest one wins a tie.
	// Nil when every trial failed.
	Best *Trial
	// Trials are ordered by enumeration index. After a cancelled run only
	// the trials that finished are present.
	Trials []Trial
	// Total is the grid size.
	Total int
}

// Failed counts the trials that failed.
func (r *Result) Failed() int {
	n := 0
	for _, t := range r.Trials {
		if t.Failed() {
			n++
		}
	}
	return n
}

// Complete reports whether every grid cell was evaluated.
func (r *Result) Complete() bool {
	return len(r.Trials) == r.Total
}

// bestOf returns the first trial with the strictly smallest error.
func bestOf(trials []Trial) *Trial {
	var best *Trial
	for i := range trials {
		t := &trials[i]
		if t.Failed() {
			continue
		}
		if best == nil || t.Error < best.Error {
			best = t
		}
	}
	if best == nil {
		return nil
	}
	b := *best
	return &b
}

// TrialEvent is sent on the progress channel after each trial.
type TrialEvent struct {
	Trial     Trial
	Completed int
	Total     int
	// Best is the best trial among those completed so far, nil if none
	// succeeded yet.
	Best *Trial
}
