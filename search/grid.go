package search

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/gpsearch/kernel"
	"github.com/YuminosukeSato/gpsearch/pkg/errors"
)

// Axis names recognized by Grid.
const (
	AxisLengthScale = "lscale"
	AxisSigma       = "sigma"
	AxisNoise       = "noise"
)

// Axis is one hyperparameter and its candidate values.
type Axis struct {
	Name   string
	Values []float64
}

// Grid is the Cartesian product of its axes. The first axis varies slowest.
type Grid struct {
	Axes []Axis
}

// NewGrid is a shorthand for the usual two-axis grid.
func NewGrid(lscales, sigmas []float64) Grid {
	return Grid{Axes: []Axis{
		{Name: AxisLengthScale, Values: lscales},
		{Name: AxisSigma, Values: sigmas},
	}}
}

// ReferenceGrid returns lscale = sigma = {0.1, 1, 10}.
func ReferenceGrid() Grid {
	return NewGrid([]float64{0.1, 1.0, 10.0}, []float64{0.1, 1.0, 10.0})
}

// Validate rejects empty axes, unknown or duplicate names, and values that
// no kernel could be built from. lscale and sigma are required; noise is
// optional.
func (g Grid) Validate() error {
	seen := make(map[string]bool, len(g.Axes))
	for _, axis := range g.Axes {
		name := axis.Name
		switch name {
		case AxisLengthScale, AxisSigma, AxisNoise:
		default:
			return errors.NewValidationError("grid", fmt.Sprintf("unknown axis, expected %s, %s or %s",
				AxisLengthScale, AxisSigma, AxisNoise), name)
		}
		if seen[name] {
			return errors.NewValidationError("grid", "duplicate axis", name)
		}
		seen[name] = true

		if len(axis.Values) == 0 {
			return errors.NewValidationError(name, "axis has no values", axis.Values)
		}
		for _, v := range axis.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.NewValidationError(name, "values must be finite", v)
			}
			if name == AxisNoise {
				if v < 0 {
					return errors.NewValidationError(name, "values must be non-negative", v)
				}
			} else if v <= 0 {
				return errors.NewValidationError(name, "values must be positive", v)
			}
		}
	}
	for _, required := range []string{AxisLengthScale, AxisSigma} {
		if !seen[required] {
			return errors.NewValidationError("grid", "missing required axis", required)
		}
	}
	return nil
}

// Size returns the number of configurations, the product of axis lengths.
func (g Grid) Size() int {
	if len(g.Axes) == 0 {
		return 0
	}
	n := 1
	for _, axis := range g.Axes {
		n *= len(axis.Values)
	}
	return n
}

// Configs enumerates every combination in declaration order, the last axis
// varying fastest. Axes absent from the grid take their value from
// defaults. Configs does not validate the grid.
func (g Grid) Configs(defaults kernel.Params) []kernel.Params {
	size := g.Size()
	if size == 0 {
		return nil
	}

	configs := make([]kernel.Params, size)
	idx := make([]int, len(g.Axes))
	for c := range configs {
		p := defaults
		for a, axis := range g.Axes {
			v := axis.Values[idx[a]]
			switch axis.Name {
			case AxisLengthScale:
				p.LengthScale = v
			case AxisSigma:
				p.Sigma = v
			case AxisNoise:
				p.Noise = v
			}
		}
		configs[c] = p

		// odometer increment, innermost axis first
		for a := len(idx) - 1; a >= 0; a-- {
			idx[a]++
			if idx[a] < len(g.Axes[a].Values) {
				break
			}
			idx[a] = 0
		}
	}
	return configs
}

// String renders the grid as "lscale=[0.1 1 10] sigma=[...]".
func (g Grid) String() string {
	parts := make([]string, len(g.Axes))
	for i, axis := range g.Axes {
		parts[i] = fmt.Sprintf("%s=%v", axis.Name, axis.Values)
	}
	return strings.Join(parts, " ")
}

// LinSpace returns n evenly spaced values from min to max inclusive.
func LinSpace[T constraints.Float](min, max T, n int) []T {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []T{min}
	}
	tmp := floats.Span(make([]float64, n), float64(min), float64(max))
	out := make([]T, n)
	for i, v := range tmp {
		out[i] = T(v)
	}
	return out
}

// LogSpace returns n values evenly spaced on a log scale from min to max
// inclusive. min and max must be positive.
func LogSpace[T constraints.Float](min, max T, n int) []T {
	if n <= 0 || min <= 0 || max <= 0 {
		return nil
	}
	if n == 1 {
		return []T{min}
	}
	tmp := floats.LogSpan(make([]float64, n), float64(min), float64(max))
	out := make([]T, n)
	for i, v := range tmp {
		out[i] = T(v)
	}
	return out
}
