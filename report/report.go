// Package report renders search results for people: a text table of
// trials and a bar chart of their errors.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/YuminosukeSato/gpsearch/pkg/errors"
	"github.com/YuminosukeSato/gpsearch/search"
)

// Format selects how WriteTrials lays out trials.
type Format string

const (
	// FormatTable is an aligned table, one row per trial.
	FormatTable Format = "table"
	// FormatLines prints "lscale: 0.1, sigma: 1, mse: 0.5" per trial.
	FormatLines Format = "lines"
)

// ParseFormat accepts "table" and "lines"; the empty string means table.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatLines:
		return FormatLines, nil
	default:
		return "", errors.NewValidationError("format", "expected table or lines", s)
	}
}

// WriteTrials writes every trial of res followed by the best configuration.
func WriteTrials(w io.Writer, res *search.Result, format Format) error {
	if res == nil {
		return errors.NewValueError("report.WriteTrials", "nil result")
	}

	var err error
	switch format {
	case FormatLines:
		err = writeLines(w, res)
	case FormatTable, "":
		err = writeTable(w, res)
	default:
		return errors.NewValidationError("format", "expected table or lines", string(format))
	}
	if err != nil {
		return err
	}
	return WriteBest(w, res)
}

func writeLines(w io.Writer, res *search.Result) error {
	metric := strings.ToLower(res.Metric)
	for _, t := range res.Trials {
		var err error
		if t.Failed() {
			_, err = fmt.Fprintf(w, "lscale: %g, sigma: %g, noise: %g, %s: failed: %v\n",
				t.Config.LengthScale, t.Config.Sigma, t.Config.Noise, metric, t.Err)
		} else {
			_, err = fmt.Fprintf(w, "lscale: %g, sigma: %g, noise: %g, %s: %g\n",
				t.Config.LengthScale, t.Config.Sigma, t.Config.Noise, metric, t.Error)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func writeTable(w io.Writer, res *search.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "TRIAL\tLSCALE\tSIGMA\tNOISE\t%s\tLOG-LIKELIHOOD\n", strings.ToUpper(res.Metric))
	for _, t := range res.Trials {
		if t.Failed() {
			fmt.Fprintf(tw, "%d\t%g\t%g\t%g\tfailed: %s\t-\n",
				t.Index, t.Config.LengthScale, t.Config.Sigma, t.Config.Noise, failureReason(t.Err))
			continue
		}
		fmt.Fprintf(tw, "%d\t%g\t%g\t%g\t%.6g\t%.6g\n",
			t.Index, t.Config.LengthScale, t.Config.Sigma, t.Config.Noise, t.Error, t.LogLikelihood)
	}
	return tw.Flush()
}

// WriteBest writes the best configuration and its error, or a line saying
// no configuration succeeded.
func WriteBest(w io.Writer, res *search.Result) error {
	if res.Best == nil {
		_, err := fmt.Fprintf(w, "No valid configuration: %d of %d trials failed\n", res.Failed(), len(res.Trials))
		return err
	}
	b := res.Best
	_, err := fmt.Fprintf(w, "Best params - lscale: %g, sigma: %g, noise: %g\nBest %s: %g\n",
		b.Config.LengthScale, b.Config.Sigma, b.Config.Noise, strings.ToUpper(res.Metric), b.Error)
	return err
}

// failureReason keeps the table on one line per trial.
func failureReason(err error) string {
	if err == nil {
		return "non-finite error"
	}
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return strings.TrimPrefix(msg, "gpsearch: ")
}
