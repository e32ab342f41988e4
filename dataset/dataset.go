// Package dataset holds the immutable training table used by a search run.
//
// A DataSet is N feature vectors of dimension D plus N scalar targets. Rows
// coming from a tabular source carry the target in their last column.
package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gpsearch/pkg/errors"
)

// DataSet is an in-memory table of inputs and targets. It is never mutated
// after construction; accessors return read-only views or copies.
type DataSet struct {
	inputs  *mat.Dense
	targets *mat.VecDense
}

// New builds a DataSet from feature vectors and index-aligned targets.
// The inputs are copied.
func New(inputs [][]float64, targets []float64) (*DataSet, error) {
	const op = "dataset.New"

	if len(inputs) == 0 {
		return nil, errors.NewDataFormatError(op, "table is empty", -1)
	}
	if len(inputs) != len(targets) {
		return nil, errors.NewDataFormatError(op,
			fmt.Sprintf("%d feature rows but %d targets", len(inputs), len(targets)), -1)
	}

	d := len(inputs[0])
	if d == 0 {
		return nil, errors.NewDataFormatError(op, "rows must have at least one feature", 0)
	}

	data := make([]float64, 0, len(inputs)*d)
	for i, row := range inputs {
		if len(row) != d {
			return nil, errors.NewDataFormatError(op,
				fmt.Sprintf("expected %d features, got %d", d, len(row)), i)
		}
		if err := checkFinite(op, row, i); err != nil {
			return nil, err
		}
		data = append(data, row...)
	}
	if err := checkFinite(op, targets, -1); err != nil {
		return nil, err
	}

	y := make([]float64, len(targets))
	copy(y, targets)

	return &DataSet{
		inputs:  mat.NewDense(len(inputs), d, data),
		targets: mat.NewVecDense(len(y), y),
	}, nil
}

// FromRows splits each row into features (all but the last column) and the
// target (last column). Every row needs at least two columns and all rows
// must have the same length.
func FromRows(rows [][]float64) (*DataSet, error) {
	const op = "dataset.FromRows"

	if len(rows) == 0 {
		return nil, errors.NewDataFormatError(op, "table is empty", -1)
	}
	cols := len(rows[0])
	if cols < 2 {
		return nil, errors.NewDataFormatError(op,
			fmt.Sprintf("need at least 2 columns (features and target), got %d", cols), 0)
	}

	inputs := make([][]float64, len(rows))
	targets := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) != cols {
			return nil, errors.NewDataFormatError(op,
				fmt.Sprintf("expected %d columns, got %d", cols, len(row)), i)
		}
		inputs[i] = row[:cols-1]
		targets[i] = row[cols-1]
	}

	return New(inputs, targets)
}

// FromMatrix builds a DataSet from a gonum matrix of inputs and a target
// vector. Both are copied.
func FromMatrix(X mat.Matrix, y mat.Vector) (*DataSet, error) {
	r, c := X.Dims()
	inputs := make([][]float64, r)
	for i := range inputs {
		inputs[i] = make([]float64, c)
		for j := range inputs[i] {
			inputs[i][j] = X.At(i, j)
		}
	}
	targets := make([]float64, y.Len())
	for i := range targets {
		targets[i] = y.AtVec(i)
	}
	return New(inputs, targets)
}

func checkFinite(op string, values []float64, row int) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.NewDataFormatError(op, fmt.Sprintf("non-finite value %v", v), row)
		}
	}
	return nil
}

// Len returns the number of rows N.
func (d *DataSet) Len() int {
	return d.targets.Len()
}

// Features returns the feature dimension D.
func (d *DataSet) Features() int {
	_, c := d.inputs.Dims()
	return c
}

// Inputs returns the N×D feature matrix. The returned matrix must not be
// modified; use InputsCopy for a mutable copy.
func (d *DataSet) Inputs() mat.Matrix {
	return d.inputs
}

// Targets returns the target vector. The returned vector must not be modified.
func (d *DataSet) Targets() *mat.VecDense {
	return d.targets
}

// InputsCopy returns a mutable copy of the feature matrix.
func (d *DataSet) InputsCopy() *mat.Dense {
	return mat.DenseCopyOf(d.inputs)
}

// Row returns a copy of feature row i.
func (d *DataSet) Row(i int) []float64 {
	return mat.Row(nil, i, d.inputs)
}

// Validate re-checks the DataSet invariants. It guards against zero-value
// DataSets reaching the search harness.
func (d *DataSet) Validate() error {
	const op = "dataset.Validate"
	if d == nil || d.inputs == nil || d.targets == nil {
		return errors.NewDataFormatError(op, "dataset is nil or empty", -1)
	}
	r, c := d.inputs.Dims()
	if r < 1 || c < 1 {
		return errors.NewDataFormatError(op, fmt.Sprintf("shape %dx%d has no rows or features", r, c), -1)
	}
	if d.targets.Len() != r {
		return errors.NewDataFormatError(op,
			fmt.Sprintf("%d feature rows but %d targets", r, d.targets.Len()), -1)
	}
	return nil
}

// Subset returns a new DataSet made of the given rows, in the given order.
func (d *DataSet) Subset(indices []int) (*DataSet, error) {
	inputs := make([][]float64, len(indices))
	targets := make([]float64, len(indices))
	for k, i := range indices {
		if i < 0 || i >= d.Len() {
			return nil, errors.NewValueError("dataset.Subset", fmt.Sprintf("row index %d out of range [0, %d)", i, d.Len()))
		}
		inputs[k] = d.Row(i)
		targets[k] = d.targets.AtVec(i)
	}
	return New(inputs, targets)
}

// WithInputs returns a new DataSet with the same targets and replaced
// inputs. The row count must match.
func (d *DataSet) WithInputs(X mat.Matrix) (*DataSet, error) {
	r, _ := X.Dims()
	if r != d.Len() {
		return nil, errors.NewDimensionError("dataset.WithInputs", d.Len(), r, 0)
	}
	return FromMatrix(X, d.targets)
}

// Split shuffles the rows with a PCG source seeded by seed and returns a
// training and a test DataSet. testFraction must be in (0, 1) and both
// sides must keep at least one row.
func (d *DataSet) Split(testFraction float64, seed uint64) (train, test *DataSet, err error) {
	const op = "dataset.Split"

	if !(testFraction > 0 && testFraction < 1) {
		return nil, nil, errors.NewValidationError("holdout_fraction", "must be in (0, 1)", testFraction)
	}

	n := d.Len()
	nTest := int(math.Round(float64(n) * testFraction))
	if nTest < 1 || nTest >= n {
		return nil, nil, errors.NewDataFormatError(op,
			fmt.Sprintf("cannot hold out %d of %d rows; both sides need at least one row", nTest, n), -1)
	}

	r := rand.New(rand.NewPCG(seed, seed))
	perm := r.Perm(n)

	test, err = d.Subset(perm[:nTest])
	if err != nil {
		return nil, nil, err
	}
	train, err = d.Subset(perm[nTest:])
	if err != nil {
		return nil, nil, err
	}
	return train, test, nil
}
