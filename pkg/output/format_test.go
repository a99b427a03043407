package output

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/commodity-forecast/internal/accuracy"
	"github.com/iwvelando/commodity-forecast/internal/dashboard"
	"github.com/iwvelando/commodity-forecast/internal/dataset"
	"github.com/iwvelando/commodity-forecast/internal/selection"
	"github.com/iwvelando/commodity-forecast/pkg/datetime"
	"github.com/iwvelando/commodity-forecast/pkg/mathutil"
)

func observation(date, location, commodity string, actual, predicted *float64) dataset.Observation {
	return dataset.Observation{
		Date:      datetime.MustParseDate(date),
		Location:  location,
		Commodity: commodity,
		Actual:    actual,
		Predicted: predicted,
	}
}

func testReport(t *testing.T, sel selection.Selection) Report {
	t.Helper()
	table := &dataset.Table{Observations: []dataset.Observation{
		observation("2024-01-01", "Bandung", "Cabai", mathutil.Float(0), mathutil.Float(5)),
		observation("2024-01-01", "Jakarta", "Beras", mathutil.Float(12000), mathutil.Float(13200)),
		observation("2024-01-02", "Jakarta", "Beras", mathutil.Float(15000), mathutil.Float(13500)),
		observation("2024-01-03", "Jakarta", "Beras", nil, mathutil.Float(14000)),
	}}
	d := dashboard.Build(table, accuracy.ExcludeZeroActual)
	v, err := d.Filter(sel)
	return NewReport(v, err)
}

func TestNewReportReportedMismatch(t *testing.T) {
	tests := []struct {
		name     string
		reported float64
		warning  bool
	}{
		{name: "Matches computed", reported: 10.005, warning: false},
		{name: "Differs from computed", reported: 9.87, warning: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := &dataset.Table{
				Observations: []dataset.Observation{
					observation("2024-01-01", "Jakarta", "Beras", mathutil.Float(12000), mathutil.Float(13200)),
					observation("2024-01-02", "Jakarta", "Beras", mathutil.Float(15000), mathutil.Float(13500)),
				},
				Reported: []dataset.ReportedMetric{
					{Key: dataset.SeriesKey{Location: "Jakarta", Commodity: "Beras"}, MAPEPercent: tt.reported},
				},
			}
			v, err := dashboard.Build(table, accuracy.ExcludeZeroActual).Filter(selection.Everything())
			report := NewReport(v, err)

			want := "Jakarta/Beras: reported MAPE 9.87% differs from computed 10.00%"
			found := false
			for _, w := range report.Warnings {
				if w == want {
					found = true
				}
			}
			if found != tt.warning {
				t.Fatalf("warning %q present = %v, want %v (warnings %v)", want, found, tt.warning, report.Warnings)
			}
		})
	}
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := PrettyFormat(&buf, testReport(t, selection.Everything())); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	output := buf.String()

	expected := []string{
		"--- Dashboard for locations=all commodities=all ---",
		"warning: Bandung/Cabai: metric undefined",
		"Average MAPE    | 10.00%",
		"Latest actual   | Rp 15,000 (2024-01-02)",
		"Next prediction | Rp 14,000 (2024-01-03)",
		"Series          | 2",
		"Bandung | Cabai | - | 0 | -",
		"Jakarta | Beras | 10.00% | 2 | -",
		"MAPE by commodity",
		"Beras | 10.00% | 1 series",
		"2024-01-01 | Bandung | Cabai | Rp 0 | Rp 5 | -",
		"2024-01-02 | Jakarta | Beras | Rp 15,000 | Rp 13,500 | -10.00%",
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyFormat output missing %q\n%s", want, output)
		}
	}
}

func TestPrettyFormatEmptySelection(t *testing.T) {
	var buf bytes.Buffer
	if err := PrettyFormat(&buf, testReport(t, selection.Parse("Surabaya", "all"))); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "warning: no data for locations=Surabaya commodities=all") {
		t.Errorf("PrettyFormat missing empty selection warning\n%s", output)
	}
	if !strings.Contains(output, "Average MAPE    | -") {
		t.Errorf("PrettyFormat should show no average for an empty selection\n%s", output)
	}
}

func TestCsvFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, testReport(t, selection.Everything())); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	if len(lines) != 8 {
		t.Fatalf("CsvFormat() produced %d lines, want 8:\n%s", len(lines), buf.String())
	}
	if lines[0] != "date,location,commodity,actual_price,predicted_price,difference_percent" {
		t.Errorf("unexpected comparison header %q", lines[0])
	}
	if lines[1] != "2024-01-01,Bandung,Cabai,0,5," {
		t.Errorf("zero actual row = %q, want empty difference", lines[1])
	}
	if lines[3] != "2024-01-02,Jakarta,Beras,15000,13500,-10" {
		t.Errorf("comparison row = %q", lines[3])
	}
	if lines[4] != "" {
		t.Errorf("expected blank separator line, got %q", lines[4])
	}
	if lines[5] != "location,commodity,mape_percent,valid_pairs,reported_mape_percent" {
		t.Errorf("unexpected metrics header %q", lines[5])
	}
	if lines[6] != "Bandung,Cabai,,0," {
		t.Errorf("undefined metric row = %q", lines[6])
	}
	if !strings.HasPrefix(lines[7], "Jakarta,Beras,10") || !strings.HasSuffix(lines[7], ",2,") {
		t.Errorf("metric row = %q", lines[7])
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := JSONFormat(&buf, testReport(t, selection.Everything())); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("JSONFormat() produced invalid JSON: %v", err)
	}

	if doc.Selection.Location != "all" || doc.Selection.Commodity != "all" {
		t.Errorf("selection = %+v", doc.Selection)
	}
	if doc.Summary.AverageMAPE == nil || math.Abs(*doc.Summary.AverageMAPE-10) > 1e-9 {
		t.Errorf("averageMapePercent = %v, want 10", doc.Summary.AverageMAPE)
	}
	if doc.Summary.NextPredictedDate != "2024-01-03" {
		t.Errorf("nextPredictedDate = %q", doc.Summary.NextPredictedDate)
	}
	if len(doc.Metrics) != 2 {
		t.Fatalf("metrics = %d, want 2", len(doc.Metrics))
	}
	if doc.Metrics[0].Status != StatusUndefined || doc.Metrics[0].MAPEPercent != nil {
		t.Errorf("undefined metric = %+v", doc.Metrics[0])
	}
	if doc.Comparison[0].DifferencePercent != nil {
		t.Errorf("difference for zero actual = %v, want null", *doc.Comparison[0].DifferencePercent)
	}
}

func TestJSONFormatNonFinite(t *testing.T) {
	r := Report{
		Selection: selection.Everything(),
		Metrics: []accuracy.Metric{
			{Location: "Bandung", Commodity: "Cabai", MAPEPercent: mathutil.Float(math.Inf(1)), ValidPairs: 1},
			{Location: "Bogor", Commodity: "Cabai", MAPEPercent: mathutil.Float(math.NaN()), ValidPairs: 1},
		},
	}

	var buf bytes.Buffer
	if err := JSONFormat(&buf, r); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}
	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("JSONFormat() produced invalid JSON: %v", err)
	}
	if doc.Metrics[0].Status != StatusInf || doc.Metrics[1].Status != StatusNaN {
		t.Errorf("statuses = %q, %q", doc.Metrics[0].Status, doc.Metrics[1].Status)
	}
	if doc.Summary.AverageMAPEStatus != StatusUndefined {
		t.Errorf("averageMapeStatus = %q, want undefined", doc.Summary.AverageMAPEStatus)
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name  string
		value *float64
		want  string
	}{
		{"nil", nil, StatusUndefined},
		{"finite", mathutil.Float(1.5), StatusOK},
		{"zero", mathutil.Float(0), StatusOK},
		{"nan", mathutil.Float(math.NaN()), StatusNaN},
		{"negative infinity", mathutil.Float(math.Inf(-1)), StatusInf},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.value); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}
