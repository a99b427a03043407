// Package output provides utilities for formatting and displaying dashboard results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/iwvelando/commodity-forecast/internal/accuracy"
	"github.com/iwvelando/commodity-forecast/pkg/datetime"
	"github.com/iwvelando/commodity-forecast/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, r Report) error {
	p := message.NewPrinter(language.English)
	ew := &errWriter{w: w}

	ew.printf(p, "--- Dashboard for %s ---\n", r.Selection)
	for _, warning := range r.Warnings {
		ew.printf(p, "warning: %s\n", warning)
	}

	s := r.Summary
	ew.printf(p, "Average MAPE    | %s\n", format.OptionalPercent(s.AverageMAPE))
	ew.printf(p, "Latest actual   | %s (%s)\n", format.OptionalRupiah(s.LatestActual), optionalDate(s.LatestActualDate))
	ew.printf(p, "Next prediction | %s (%s)\n", format.OptionalRupiah(s.NextPredicted), optionalDate(s.NextPredictedDate))
	ew.printf(p, "Series          | %d\n", s.SeriesCount)

	ew.printf(p, "\nLocation | Commodity | MAPE | Valid pairs | Reported MAPE\n")
	ew.printf(p, "________ | _________ | ____ | ___________ | _____________\n")
	for _, m := range r.Metrics {
		ew.printf(p, "%s | %s | %s | %d | %s\n",
			m.Location, m.Commodity, format.OptionalPercent(m.MAPEPercent), m.ValidPairs, format.OptionalPercent(m.Reported))
	}

	for _, section := range []struct {
		title  string
		groups []accuracy.GroupMAPE
	}{
		{"commodity", r.ByCommodity},
		{"location", r.ByLocation},
	} {
		ew.printf(p, "\nMAPE by %s\n", section.title)
		for _, g := range section.groups {
			ew.printf(p, "%s | %s | %d series\n", g.Name, format.Percent(g.MAPEPercent), g.Series)
		}
	}

	ew.printf(p, "\nDate       | Location | Commodity | Actual | Predicted | Difference\n")
	ew.printf(p, "__________ | ________ | _________ | ______ | _________ | __________\n")
	for _, row := range r.Comparison {
		ew.printf(p, "%s | %s | %s | %s | %s | %s\n",
			datetime.Format(row.Date), row.Location, row.Commodity,
			format.Rupiah(row.Actual), format.Rupiah(row.Predicted), format.OptionalPercent(row.DifferencePercent))
	}
	return ew.err
}

// CsvFormat outputs the comparison table, a blank line and the metrics table
// in comma-separated value format.
func CsvFormat(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)

	records := [][]string{{"date", "location", "commodity", "actual_price", "predicted_price", "difference_percent"}}
	for _, row := range r.Comparison {
		records = append(records, []string{
			datetime.Format(row.Date),
			row.Location,
			row.Commodity,
			strconv.FormatFloat(row.Actual, 'f', -1, 64),
			strconv.FormatFloat(row.Predicted, 'f', -1, 64),
			csvNumber(row.DifferencePercent),
		})
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write comparison table: %w", err)
	}

	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	records = [][]string{{"location", "commodity", "mape_percent", "valid_pairs", "reported_mape_percent"}}
	for _, m := range r.Metrics {
		records = append(records, []string{
			m.Location,
			m.Commodity,
			csvNumber(m.MAPEPercent),
			strconv.Itoa(m.ValidPairs),
			csvNumber(m.Reported),
		})
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write metrics table: %w", err)
	}
	return nil
}

// JSONFormat outputs the report as an indented JSON document.
func JSONFormat(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(r)); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

func optionalDate(value *time.Time) string {
	if value == nil {
		return format.NoValue
	}
	return datetime.Format(*value)
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(p *message.Printer, key string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = p.Fprintf(ew.w, key, args...)
}
