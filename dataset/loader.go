package dataset

import (
	"encoding/json"
	"io"
	"os"

	"github.com/YuminosukeSato/gpsearch/pkg/errors"
)

// LoadJSON reads a JSON array of equal-length numeric arrays, e.g.
//
//	[[0, 0], [1, 1], [2, 2]]
//
// and returns it as a DataSet with the last column as target.
// Any decode or shape problem is a DataFormatError.
func LoadJSON(r io.Reader) (*DataSet, error) {
	var rows [][]float64

	dec := json.NewDecoder(r)
	if err := dec.Decode(&rows); err != nil {
		if err == io.EOF {
			return nil, errors.NewDataFormatError("dataset.LoadJSON", "table is empty", -1)
		}
		return nil, errors.WrapDataFormatError("dataset.LoadJSON", "cannot decode rows", err)
	}
	if dec.More() {
		return nil, errors.NewDataFormatError("dataset.LoadJSON", "trailing data after the row array", -1)
	}

	return FromRows(rows)
}

// LoadJSONFile opens path and calls LoadJSON.
func LoadJSONFile(path string) (*DataSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer file.Close()

	ds, err := LoadJSON(file)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return ds, nil
}
