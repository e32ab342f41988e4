package preprocessing

import (
	"strings"

	"github.com/YuminosukeSato/gpsearch/dataset"
	"github.com/YuminosukeSato/gpsearch/pkg/errors"
)

// ScaleFeatures fits s on the inputs of train and returns train and every
// other DataSet with transformed inputs. Targets are left untouched and the
// arguments are not modified.
func ScaleFeatures(s Scaler, train *dataset.DataSet, others ...*dataset.DataSet) ([]*dataset.DataSet, error) {
	if err := train.Validate(); err != nil {
		return nil, err
	}
	if err := s.Fit(train.Inputs()); err != nil {
		return nil, errors.Wrap(err, "fit scaler")
	}

	out := make([]*dataset.DataSet, 0, 1+len(others))
	for _, ds := range append([]*dataset.DataSet{train}, others...) {
		X, err := s.Transform(ds.Inputs())
		if err != nil {
			return nil, err
		}
		scaled, err := ds.WithInputs(X)
		if err != nil {
			return nil, err
		}
		out = append(out, scaled)
	}
	return out, nil
}

// StandardizeFeatures is ScaleFeatures with a default StandardScaler.
func StandardizeFeatures(train *dataset.DataSet, others ...*dataset.DataSet) ([]*dataset.DataSet, error) {
	return ScaleFeatures(NewStandardScalerDefault(), train, others...)
}

// ScalerByName returns a fresh scaler for "standard" or "minmax", and nil
// for "" or "none".
func ScalerByName(name string) (Scaler, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return nil, nil
	case "standard":
		return NewStandardScalerDefault(), nil
	case "minmax":
		return NewMinMaxScalerDefault(), nil
	default:
		return nil, errors.NewValidationError("scaler", "expected none, standard or minmax", name)
	}
}
