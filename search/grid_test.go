package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/gpsearch/kernel"
	"github.com/YuminosukeSato/gpsearch/pkg/errors"
)

func TestGridConfigsOrder(t *testing.T) {
	g := NewGrid([]float64{0.1, 1}, []float64{1, 2, 3})
	require.NoError(t, g.Validate())
	assert.Equal(t, 6, g.Size())

	got := g.Configs(kernel.Params{Noise: 1})
	want := []kernel.Params{
		{LengthScale: 0.1, Sigma: 1, Noise: 1},
		{LengthScale: 0.1, Sigma: 2, Noise: 1},
		{LengthScale: 0.1, Sigma: 3, Noise: 1},
		{LengthScale: 1, Sigma: 1, Noise: 1},
		{LengthScale: 1, Sigma: 2, Noise: 1},
		{LengthScale: 1, Sigma: 3, Noise: 1},
	}
	assert.Equal(t, want, got)
}

func TestGridConfigsDeclarationOrder(t *testing.T) {
	// sigma declared first varies slowest.
	g := Grid{Axes: []Axis{
		{Name: AxisSigma, Values: []float64{1, 2}},
		{Name: AxisLengthScale, Values: []float64{5}},
		{Name: AxisNoise, Values: []float64{0, 0.5}},
	}}
	require.NoError(t, g.Validate())

	got := g.Configs(kernel.Params{Noise: 1})
	want := []kernel.Params{
		{LengthScale: 5, Sigma: 1, Noise: 0},
		{LengthScale: 5, Sigma: 1, Noise: 0.5},
		{LengthScale: 5, Sigma: 2, Noise: 0},
		{LengthScale: 5, Sigma: 2, Noise: 0.5},
	}
	assert.Equal(t, want, got)
}

func TestGridCompleteness(t *testing.T) {
	g := NewGrid(LogSpace(0.01, 100.0, 5), LinSpace(0.5, 3.0, 4))
	configs := g.Configs(kernel.Params{})
	require.Len(t, configs, 20)

	seen := map[kernel.Params]int{}
	for _, c := range configs {
		seen[c]++
	}
	assert.Len(t, seen, 20, "every combination appears exactly once")
}

func TestGridValidate(t *testing.T) {
	tests := []struct {
		name string
		grid Grid
	}{
		{"no axes", Grid{}},
		{"missing sigma", Grid{Axes: []Axis{{Name: AxisLengthScale, Values: []float64{1}}}}},
		{"empty axis", NewGrid([]float64{1}, nil)},
		{"unknown axis", Grid{Axes: []Axis{
			{Name: AxisLengthScale, Values: []float64{1}},
			{Name: AxisSigma, Values: []float64{1}},
			{Name: "period", Values: []float64{1}},
		}}},
		{"duplicate axis", Grid{Axes: []Axis{
			{Name: AxisLengthScale, Values: []float64{1}},
			{Name: AxisLengthScale, Values: []float64{2}},
			{Name: AxisSigma, Values: []float64{1}},
		}}},
		{"zero lscale", NewGrid([]float64{0}, []float64{1})},
		{"negative sigma", NewGrid([]float64{1}, []float64{-1})},
		{"NaN lscale", NewGrid([]float64{math.NaN()}, []float64{1})},
		{"negative noise", Grid{Axes: []Axis{
			{Name: AxisLengthScale, Values: []float64{1}},
			{Name: AxisSigma, Values: []float64{1}},
			{Name: AxisNoise, Values: []float64{-0.1}},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.grid.Validate()
			var valErr *errors.ValidationError
			assert.True(t, errors.As(err, &valErr), "got %v", err)
		})
	}

	zeroNoise := Grid{Axes: []Axis{
		{Name: AxisLengthScale, Values: []float64{1}},
		{Name: AxisSigma, Values: []float64{1}},
		{Name: AxisNoise, Values: []float64{0}},
	}}
	assert.NoError(t, zeroNoise.Validate(), "zero noise is allowed")
}

func TestReferenceGrid(t *testing.T) {
	g := ReferenceGrid()
	require.NoError(t, g.Validate())
	assert.Equal(t, 9, g.Size())
	assert.Equal(t, "lscale=[0.1 1 10] sigma=[0.1 1 10]", g.String())
}

func TestLinSpace(t *testing.T) {
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, LinSpace(0.0, 1.0, 5))
	assert.Equal(t, []float32{2}, LinSpace[float32](2, 5, 1))
	assert.Nil(t, LinSpace(0.0, 1.0, 0))
}

func TestLogSpace(t *testing.T) {
	got := LogSpace(0.1, 10.0, 3)
	require.Len(t, got, 3)
	assert.InDeltaSlice(t, []float64{0.1, 1, 10}, got, 1e-12)

	assert.Nil(t, LogSpace(0.0, 10.0, 3))
	assert.Nil(t, LogSpace(1.0, 10.0, -1))
}
