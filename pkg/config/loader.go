package config

import (
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/YuminosukeSato/gpsearch/pkg/errors"
)

// EnvPrefix is prepended to every environment variable.
const EnvPrefix = "GPSEARCH"

// ConfigFlag names the flag that points at a YAML or JSON config file.
const ConfigFlag = "config"

// flagBindings maps viper keys to pflag names.
var flagBindings = map[string]string{
	"data":             "data",
	"grid.lscale":      "lscale",
	"grid.sigma":       "sigma",
	"grid.noise":       "grid-noise",
	"noise":            "noise",
	"metric":           "metric",
	"max_condition":    "max-condition",
	"workers":          "workers",
	"trial_timeout":    "trial-timeout",
	"holdout_fraction": "holdout-fraction",
	"holdout_seed":     "holdout-seed",
	"scaler":           "scaler",
	"log_level":        "log-level",
	"log_pretty":       "log-pretty",
	"plot":             "plot",
	"format":           "format",
}

// RegisterFlags defines every configuration flag on fs. Flag defaults match
// Defaults so --help shows real values.
func RegisterFlags(fs *flag.FlagSet) {
	d := Defaults()
	fs.String(ConfigFlag, "", "path to a YAML or JSON config file")
	fs.String("data", d.Data, "JSON file of rows, last column is the target")
	fs.Float64Slice("lscale", d.Grid.LScale, "length-scale candidates")
	fs.Float64Slice("sigma", d.Grid.Sigma, "signal standard deviation candidates")
	fs.Float64Slice("grid-noise", nil, "observation noise candidates (adds a noise axis)")
	fs.Float64("noise", d.Noise, "observation noise when there is no noise axis")
	fs.String("metric", d.Metric, "scoring metric: mse, rmse or mae")
	fs.Float64("max-condition", d.MaxCondition, "largest accepted condition number of K + noise·I")
	fs.Int("workers", d.Workers, "trials evaluated concurrently (0 = one per CPU)")
	fs.Duration("trial-timeout", d.TrialTimeout, "time limit per trial (0 = none)")
	fs.Float64("holdout-fraction", d.HoldoutFraction, "fraction of rows held out for scoring (0 = score in-sample)")
	fs.Uint64("holdout-seed", d.HoldoutSeed, "seed of the hold-out shuffle")
	fs.String("scaler", d.Scaler, "feature scaling: none, standard or minmax")
	fs.String("log-level", d.LogLevel, "debug, info, warn or error")
	fs.Bool("log-pretty", d.LogPretty, "human-readable console logs instead of JSON")
	fs.String("plot", d.Plot, "write a bar chart of trial errors to this .png, .svg or .pdf file")
	fs.String("format", d.Format, "report layout: lines or table")
}

// Load resolves the configuration and validates it.
// Precedence: flags > env > config file > defaults.
// fs may be nil, e.g. in tests that set no flags.
func Load(fs *flag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if fs != nil {
		if f := fs.Lookup(ConfigFlag); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.Wrapf(err, "failed to read config file %s", f.Value.String())
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for key, name := range flagBindings {
			if f := fs.Lookup(name); f != nil {
				_ = v.BindPFlag(key, f)
			}
		}
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("data", d.Data)
	v.SetDefault("grid.lscale", d.Grid.LScale)
	v.SetDefault("grid.sigma", d.Grid.Sigma)
	v.SetDefault("grid.noise", []float64{})
	v.SetDefault("noise", d.Noise)
	v.SetDefault("metric", d.Metric)
	v.SetDefault("max_condition", d.MaxCondition)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("trial_timeout", d.TrialTimeout)
	v.SetDefault("holdout_fraction", d.HoldoutFraction)
	v.SetDefault("holdout_seed", d.HoldoutSeed)
	v.SetDefault("scaler", d.Scaler)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_pretty", d.LogPretty)
	v.SetDefault("plot", d.Plot)
	v.SetDefault("format", d.Format)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Data:            v.GetString("data"),
		Noise:           v.GetFloat64("noise"),
		Metric:          v.GetString("metric"),
		MaxCondition:    v.GetFloat64("max_condition"),
		Workers:         v.GetInt("workers"),
		TrialTimeout:    v.GetDuration("trial_timeout"),
		HoldoutFraction: v.GetFloat64("holdout_fraction"),
		HoldoutSeed:     v.GetUint64("holdout_seed"),
		Scaler:          v.GetString("scaler"),
		LogLevel:        v.GetString("log_level"),
		LogPretty:       v.GetBool("log_pretty"),
		Plot:            v.GetString("plot"),
		Format:          v.GetString("format"),
	}

	var err error
	if cfg.Grid.LScale, err = floatList(v, "grid.lscale"); err != nil {
		return nil, err
	}
	if cfg.Grid.Sigma, err = floatList(v, "grid.sigma"); err != nil {
		return nil, err
	}
	if cfg.Grid.Noise, err = floatList(v, "grid.noise"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// floatList reads a list of numbers from whichever source won: a YAML or
// JSON sequence, a pflag slice ("[0.1,1,10]") or an environment string
// ("0.1,1,10" or "0.1 1 10").
func floatList(v *viper.Viper, key string) ([]float64, error) {
	out, err := parseFloatList(key, v.Get(key))
	if len(out) == 0 {
		return nil, err
	}
	return out, err
}

func parseFloatList(key string, value interface{}) ([]float64, error) {
	switch raw := value.(type) {
	case nil:
		return nil, nil
	case []float64:
		out := make([]float64, len(raw))
		copy(out, raw)
		return out, nil
	case []interface{}:
		out := make([]float64, 0, len(raw))
		for _, item := range raw {
			f, err := toFloat(item)
			if err != nil {
				return nil, errors.NewValidationError(key, "list items must be numbers", item)
			}
			out = append(out, f)
		}
		return out, nil
	case string:
		fields := strings.FieldsFunc(strings.Trim(raw, "[] "), func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		out := make([]float64, 0, len(fields))
		for _, field := range fields {
			f, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.NewValidationError(key, "list items must be numbers", field)
			}
			out = append(out, f)
		}
		return out, nil
	default:
		f, err := toFloat(raw)
		if err != nil {
			return nil, errors.NewValidationError(key, "expected a list of numbers", raw)
		}
		return []float64{f}, nil
	}
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, errors.Newf("not a number: %v", v)
	}
}
