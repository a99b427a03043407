// Package dataset loads commodity price forecasts from CSV or XLSX sources and
// reshapes them into one observation table keyed by location and commodity.
package dataset

import (
	"sort"
	"time"
)

// SeriesKey identifies one price series.
type SeriesKey struct {
	Location  string
	Commodity string
}

// String renders the key in the composite "location/commodity" form.
func (k SeriesKey) String() string {
	return k.Location + "/" + k.Commodity
}

// Less orders keys by location, then commodity.
func (k SeriesKey) Less(other SeriesKey) bool {
	if k.Location != other.Location {
		return k.Location < other.Location
	}
	return k.Commodity < other.Commodity
}

// Observation is one row of the cleaned price table. At least one of Actual
// and Predicted is set.
type Observation struct {
	Date      time.Time
	Location  string
	Commodity string
	Actual    *float64
	Predicted *float64
}

// Key returns the series the observation belongs to.
func (o Observation) Key() SeriesKey {
	return SeriesKey{Location: o.Location, Commodity: o.Commodity}
}

// ComparisonRow is one date on which both an actual and a predicted price exist.
type ComparisonRow struct {
	Date              time.Time
	Location          string
	Commodity         string
	Actual            float64
	Predicted         float64
	DifferencePercent *float64 // nil when Actual is zero
}

// Key returns the series the row belongs to.
func (r ComparisonRow) Key() SeriesKey {
	return SeriesKey{Location: r.Location, Commodity: r.Commodity}
}

// ReportedMetric is an accuracy figure read from a metrics file rather than
// computed from observations.
type ReportedMetric struct {
	Key         SeriesKey
	MAPEPercent float64
}

// Kind distinguishes actual from predicted rows in the tagged-rows shape.
type Kind int

const (
	KindActual Kind = iota
	KindPredicted
)

func (k Kind) String() string {
	if k == KindPredicted {
		return "predicted"
	}
	return "actual"
}

// TaggedRow is one row of the tagged-rows shape before pivoting.
type TaggedRow struct {
	Date  time.Time
	Key   SeriesKey
	Kind  Kind
	Price float64
}

// SortObservations orders observations by location, commodity and date.
func SortObservations(rows []Observation) {
	sort.SliceStable(rows, func(i, j int) bool {
		ki, kj := rows[i].Key(), rows[j].Key()
		if ki != kj {
			return ki.Less(kj)
		}
		return rows[i].Date.Before(rows[j].Date)
	})
}

// Keys returns the distinct series keys of rows in sorted order.
func Keys(rows []Observation) []SeriesKey {
	seen := make(map[SeriesKey]struct{})
	var keys []SeriesKey
	for _, row := range rows {
		key := row.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}
