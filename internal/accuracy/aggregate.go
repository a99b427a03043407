package accuracy

import (
	"sort"

	"github.com/iwvelando/commodity-forecast/internal/dataset"
	"github.com/iwvelando/commodity-forecast/pkg/mathutil"
)

// Metric is the accuracy of one series. MAPEPercent is nil when the series
// has no valid pairs; it may hold +Inf or NaN under IncludeZeroActual.
type Metric struct {
	Location    string
	Commodity   string
	MAPEPercent *float64
	ValidPairs  int
	Reported    *float64 // figure from the metrics file, if any
}

// Key returns the series of the metric.
func (m Metric) Key() dataset.SeriesKey {
	return dataset.SeriesKey{Location: m.Location, Commodity: m.Commodity}
}

// Defined reports whether the metric has a value.
func (m Metric) Defined() bool {
	return m.MAPEPercent != nil
}

// Err returns ErrUndefinedMetric for a metric without value.
func (m Metric) Err() error {
	if m.MAPEPercent == nil {
		return ErrUndefinedMetric
	}
	return nil
}

// Aggregate computes one Metric per distinct series of rows, never across
// series. Series without valid pairs are kept with a nil MAPEPercent.
func Aggregate(rows []dataset.Observation, policy ZeroActualPolicy) []Metric {
	groups := make(map[dataset.SeriesKey][]Pair)
	for _, row := range rows {
		key := row.Key()
		groups[key] = append(groups[key], Pair{Actual: row.Actual, Predicted: row.Predicted})
	}

	metrics := make([]Metric, 0, len(groups))
	for key, pairs := range groups {
		m := Metric{
			Location:   key.Location,
			Commodity:  key.Commodity,
			ValidPairs: CountValid(pairs, policy),
		}
		if value, ok := ComputeMAPE(pairs, policy); ok {
			m.MAPEPercent = mathutil.Float(value)
		}
		metrics = append(metrics, m)
	}
	SortMetrics(metrics)
	return metrics
}

// AttachReported copies reported figures onto the metrics of matching
// series. Reported series without observations are ignored.
func AttachReported(metrics []Metric, reported []dataset.ReportedMetric) []Metric {
	if len(reported) == 0 {
		return metrics
	}
	byKey := make(map[dataset.SeriesKey]float64, len(reported))
	for _, r := range reported {
		byKey[r.Key] = r.MAPEPercent
	}
	out := make([]Metric, len(metrics))
	for i, m := range metrics {
		if v, ok := byKey[m.Key()]; ok {
			m.Reported = mathutil.Float(v)
		}
		out[i] = m
	}
	return out
}

// SortMetrics orders metrics by location, then commodity.
func SortMetrics(metrics []Metric) {
	sort.Slice(metrics, func(i, j int) bool {
		return metrics[i].Key().Less(metrics[j].Key())
	})
}
