// Package config loads the settings of a grid-search run.
//
// Values are resolved with the precedence flags > environment > config file
// > defaults. Environment variables use the GPSEARCH_ prefix with dots
// replaced by underscores, e.g. GPSEARCH_GRID_LSCALE=0.1,1,10.
package config

import (
	"io"
	"math"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/gpsearch/metrics"
	"github.com/YuminosukeSato/gpsearch/pkg/errors"
	"github.com/YuminosukeSato/gpsearch/pkg/log"
	"github.com/YuminosukeSato/gpsearch/preprocessing"
	"github.com/YuminosukeSato/gpsearch/report"
	"github.com/YuminosukeSato/gpsearch/search"
)

// GridConfig holds the candidate values of each axis. An empty Noise list
// means the grid has no noise axis and Config.Noise is used.
type GridConfig struct {
	LScale []float64 `yaml:"lscale"`
	Sigma  []float64 `yaml:"sigma"`
	Noise  []float64 `yaml:"noise,omitempty"`
}

// Config is the effective configuration of one run.
type Config struct {
	Data            string        `yaml:"data"`
	Grid            GridConfig    `yaml:"grid"`
	Noise           float64       `yaml:"noise"`
	Metric          string        `yaml:"metric"`
	MaxCondition    float64       `yaml:"max_condition"`
	Workers         int           `yaml:"workers"`
	TrialTimeout    time.Duration `yaml:"trial_timeout"`
	HoldoutFraction float64       `yaml:"holdout_fraction"`
	HoldoutSeed     uint64        `yaml:"holdout_seed"`
	Scaler          string        `yaml:"scaler"`
	LogLevel        string        `yaml:"log_level"`
	LogPretty       bool          `yaml:"log_pretty"`
	Plot            string        `yaml:"plot,omitempty"`
	Format          string        `yaml:"format"`
}

// Defaults returns the configuration used when nothing else is set:
// the 3×3 grid {0.1, 1, 10}², noise 1, MSE, one worker and no hold-out.
func Defaults() Config {
	return Config{
		Data: "data.json",
		Grid: GridConfig{
			LScale: []float64{0.1, 1.0, 10.0},
			Sigma:  []float64{0.1, 1.0, 10.0},
		},
		Noise:        1.0,
		Metric:       search.DefaultMetric,
		MaxCondition: 1e12,
		Workers:      1,
		Scaler:       "none",
		LogLevel:     "info",
		Format:       string(report.FormatLines),
	}
}

// Validate checks the values that the search packages would otherwise
// reject later, so a bad config fails before any data is read.
func (c *Config) Validate() error {
	if c.Data == "" {
		return errors.NewValidationError("data", "path is required", c.Data)
	}
	if err := c.SearchGrid().Validate(); err != nil {
		return err
	}
	if c.Noise < 0 || math.IsNaN(c.Noise) || math.IsInf(c.Noise, 0) {
		return errors.NewValidationError("noise", "must be non-negative and finite", c.Noise)
	}
	if _, err := metrics.Lookup(c.Metric); err != nil {
		return err
	}
	if !(c.MaxCondition > 0) {
		return errors.NewValidationError("max_condition", "must be positive", c.MaxCondition)
	}
	if c.Workers < 0 {
		return errors.NewValidationError("workers", "must be >= 0 (0 means one per CPU)", c.Workers)
	}
	if c.TrialTimeout < 0 {
		return errors.NewValidationError("trial_timeout", "must not be negative", c.TrialTimeout)
	}
	if c.HoldoutFraction < 0 || c.HoldoutFraction >= 1 || math.IsNaN(c.HoldoutFraction) {
		return errors.NewValidationError("holdout_fraction", "must be in [0, 1)", c.HoldoutFraction)
	}
	if _, err := preprocessing.ScalerByName(c.Scaler); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := report.ParseFormat(c.Format); err != nil {
		return err
	}
	return nil
}

// SearchGrid converts the grid section into a search.Grid.
func (c *Config) SearchGrid() search.Grid {
	g := search.NewGrid(c.Grid.LScale, c.Grid.Sigma)
	if len(c.Grid.Noise) > 0 {
		g.Axes = append(g.Axes, search.Axis{Name: search.AxisNoise, Values: c.Grid.Noise})
	}
	return g
}

// SearchOptions returns the harness options implied by the config.
func (c *Config) SearchOptions() []search.Option {
	opts := []search.Option{
		search.WithMetric(c.Metric),
		search.WithNoise(c.Noise),
		search.WithMaxCondition(c.MaxCondition),
		search.WithWorkers(c.Workers),
	}
	if c.TrialTimeout > 0 {
		opts = append(opts, search.WithTrialTimeout(c.TrialTimeout))
	}
	return opts
}

// Write dumps c as YAML. The output can be fed back with --config.
func Write(w io.Writer, c *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "encode config")
	}
	return enc.Close()
}
