// Package gpsearch tunes Gaussian-process regression by exhaustive grid
// search over the hyperparameters of a squared-exponential kernel.
//
// A run loads a table of rows (features followed by the target), fits one
// Gaussian process per (lscale, sigma[, noise]) configuration, scores each
// fit with a regression metric and reports the configuration with the
// lowest error. Configurations whose covariance matrix cannot be factorized
// are recorded as failed trials and do not stop the search.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/gpsearch/dataset"
//	    "github.com/YuminosukeSato/gpsearch/search"
//	)
//
//	func main() {
//	    ds, err := dataset.FromRows([][]float64{{0, 0}, {1, 1}, {2, 2}})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    h, err := search.New(ds, search.ReferenceGrid())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    res, err := h.Run(context.Background())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(res.Best.Config, res.Best.Error)
//	}
//
// The gp_grid_search command under examples/ wires the same steps to a
// config file, GPSEARCH_* environment variables and flags.
//
// # Packages
//
//   - dataset: Loading and validating tabular data, hold-out splits
//   - kernel: Squared-exponential kernel and covariance matrices
//   - gp: Gaussian-process regression (Cholesky fit, mean and variance)
//   - metrics: Regression metrics (MSE, RMSE, MAE, R²)
//   - preprocessing: Feature scaling (StandardScaler, MinMaxScaler)
//   - search: Grid definition and the search harness
//   - report: Text tables and bar charts of search results
//   - pkg/config: Layered configuration (flags, env, file, defaults)
//   - pkg/errors, pkg/log: Error types and structured logging
//   - core/model, core/parallel: Estimator interfaces and worker pools
package gpsearch
