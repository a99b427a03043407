package output

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/iwvelando/commodity-forecast/internal/accuracy"
	"github.com/iwvelando/commodity-forecast/internal/dashboard"
	"github.com/iwvelando/commodity-forecast/internal/dataset"
	"github.com/iwvelando/commodity-forecast/internal/selection"
	"github.com/iwvelando/commodity-forecast/pkg/constants"
	"github.com/iwvelando/commodity-forecast/pkg/datetime"
	"github.com/iwvelando/commodity-forecast/pkg/format"
	"github.com/iwvelando/commodity-forecast/pkg/mathutil"
)

// Report is everything the presenters show for one selection.
type Report struct {
	Selection   selection.Selection
	Summary     dashboard.Summary
	Metrics     []accuracy.Metric
	ByCommodity []accuracy.GroupMAPE
	ByLocation  []accuracy.GroupMAPE
	Comparison  []dataset.ComparisonRow
	Warnings    []string
}

// NewReport assembles the report of a view. filterErr is the error returned
// alongside the view; an empty selection becomes a warning.
func NewReport(v *dashboard.View, filterErr error) Report {
	r := Report{
		Selection:   v.Selection,
		Summary:     dashboard.Summarize(v),
		Metrics:     v.Metrics,
		ByCommodity: accuracy.Breakdown(v.Metrics, accuracy.ByCommodity),
		ByLocation:  accuracy.Breakdown(v.Metrics, accuracy.ByLocation),
		Comparison:  v.Comparison,
	}
	if errors.Is(filterErr, selection.ErrEmptySelection) {
		r.Warnings = append(r.Warnings, "no data for "+v.Selection.String())
	}
	for _, m := range v.Metrics {
		if !m.Defined() {
			r.Warnings = append(r.Warnings, m.Key().String()+": "+accuracy.ErrUndefinedMetric.Error())
			continue
		}
		if m.Reported != nil && mathutil.IsFinite(*m.MAPEPercent) &&
			!mathutil.WithinTolerance(*m.MAPEPercent, *m.Reported, constants.ReportedMAPETolerance) {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s: reported MAPE %s differs from computed %s",
				m.Key(), format.Percent(*m.Reported), format.Percent(*m.MAPEPercent)))
		}
	}
	return r
}

// Value status strings used by Document.
const (
	StatusOK        = "ok"
	StatusUndefined = "undefined"
	StatusNaN       = "nan"
	StatusInf       = "inf"
)

// Document is the JSON form of a Report. Numbers that JSON cannot carry are
// null and explained by a status field.
type Document struct {
	Selection   SelectionDocument  `json:"selection"`
	Summary     SummaryDocument    `json:"summary"`
	Metrics     []MetricDocument   `json:"metrics"`
	ByCommodity []GroupDocument    `json:"byCommodity"`
	ByLocation  []GroupDocument    `json:"byLocation"`
	Comparison  []ComparisonRecord `json:"comparison"`
	Warnings    []string           `json:"warnings,omitempty"`
}

// SelectionDocument echoes the applied filter.
type SelectionDocument struct {
	Location  string `json:"location"`
	Commodity string `json:"commodity"`
}

// SummaryDocument holds the headline figures.
type SummaryDocument struct {
	AverageMAPE       *float64 `json:"averageMapePercent"`
	AverageMAPEStatus string   `json:"averageMapeStatus"`
	LatestActualDate  string   `json:"latestActualDate,omitempty"`
	LatestActual      *float64 `json:"latestActual"`
	NextPredictedDate string   `json:"nextPredictedDate,omitempty"`
	NextPredicted     *float64 `json:"nextPredicted"`
	SeriesCount       int      `json:"seriesCount"`
}

// MetricDocument is the accuracy of one series.
type MetricDocument struct {
	Location    string   `json:"location"`
	Commodity   string   `json:"commodity"`
	MAPEPercent *float64 `json:"mapePercent"`
	Status      string   `json:"status"`
	ValidPairs  int      `json:"validPairs"`
	Reported    *float64 `json:"reportedMapePercent,omitempty"`
}

// GroupDocument is one bar of a breakdown.
type GroupDocument struct {
	Name        string   `json:"name"`
	MAPEPercent *float64 `json:"mapePercent"`
	Status      string   `json:"status"`
	Series      int      `json:"series"`
}

// ComparisonRecord is one actual-versus-predicted row.
type ComparisonRecord struct {
	Date              string   `json:"date"`
	Location          string   `json:"location"`
	Commodity         string   `json:"commodity"`
	Actual            float64  `json:"actual"`
	Predicted         float64  `json:"predicted"`
	DifferencePercent *float64 `json:"differencePercent"`
}

// NewDocument converts r into its JSON form.
func NewDocument(r Report) Document {
	doc := Document{
		Selection: SelectionDocument{
			Location:  r.Selection.Locations.String(),
			Commodity: r.Selection.Commodities.String(),
		},
		Metrics:     make([]MetricDocument, 0, len(r.Metrics)),
		ByCommodity: GroupDocuments(r.ByCommodity),
		ByLocation:  GroupDocuments(r.ByLocation),
		Comparison:  make([]ComparisonRecord, 0, len(r.Comparison)),
		Warnings:    r.Warnings,
	}

	s := r.Summary
	doc.Summary = SummaryDocument{
		AverageMAPE:       percent(s.AverageMAPE),
		AverageMAPEStatus: Status(s.AverageMAPE),
		LatestActual:      finite(s.LatestActual),
		NextPredicted:     finite(s.NextPredicted),
		SeriesCount:       s.SeriesCount,
	}
	if s.LatestActualDate != nil {
		doc.Summary.LatestActualDate = datetime.Format(*s.LatestActualDate)
	}
	if s.NextPredictedDate != nil {
		doc.Summary.NextPredictedDate = datetime.Format(*s.NextPredictedDate)
	}

	for _, m := range r.Metrics {
		doc.Metrics = append(doc.Metrics, MetricDocument{
			Location:    m.Location,
			Commodity:   m.Commodity,
			MAPEPercent: percent(m.MAPEPercent),
			Status:      Status(m.MAPEPercent),
			ValidPairs:  m.ValidPairs,
			Reported:    percent(m.Reported),
		})
	}
	for _, row := range r.Comparison {
		doc.Comparison = append(doc.Comparison, ComparisonRecord{
			Date:              datetime.Format(row.Date),
			Location:          row.Location,
			Commodity:         row.Commodity,
			Actual:            row.Actual,
			Predicted:         row.Predicted,
			DifferencePercent: percent(row.DifferencePercent),
		})
	}
	return doc
}

// GroupDocuments converts breakdown groups into their JSON form.
func GroupDocuments(groups []accuracy.GroupMAPE) []GroupDocument {
	out := make([]GroupDocument, 0, len(groups))
	for _, g := range groups {
		value := g.MAPEPercent
		out = append(out, GroupDocument{
			Name:        g.Name,
			MAPEPercent: percent(&value),
			Status:      Status(&value),
			Series:      g.Series,
		})
	}
	return out
}

// Status classifies an optional number for JSON consumers.
func Status(value *float64) string {
	switch {
	case value == nil:
		return StatusUndefined
	case math.IsNaN(*value):
		return StatusNaN
	case math.IsInf(*value, 0):
		return StatusInf
	}
	return StatusOK
}

func finite(value *float64) *float64 {
	if Status(value) != StatusOK {
		return nil
	}
	v := *value
	return &v
}

// percent is finite rounded to two decimals.
func percent(value *float64) *float64 {
	v := finite(value)
	if v != nil {
		*v = mathutil.Round(*v)
	}
	return v
}

// csvNumber renders an optional number for CSV; absent values are empty.
func csvNumber(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}
