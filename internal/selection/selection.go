// Package selection restricts price series to a chosen set of locations and
// commodities.
package selection

import (
	"errors"
	"sort"
	"strings"

	"github.com/iwvelando/commodity-forecast/internal/dataset"
	"github.com/iwvelando/commodity-forecast/pkg/constants"
)

// ErrEmptySelection is returned when a selection excludes all data. It only
// affects the current view.
var ErrEmptySelection = errors.New("selection matches no data")

// Axis constrains one dimension. The zero Axis selects nothing; All selects
// everything.
type Axis struct {
	all    bool
	values map[string]struct{}
}

// All returns an Axis without constraint.
func All() Axis {
	return Axis{all: true}
}

// Of returns an Axis matching exactly the given values.
func Of(values ...string) Axis {
	a := Axis{values: make(map[string]struct{}, len(values))}
	for _, v := range values {
		a.values[v] = struct{}{}
	}
	return a
}

// ParseAxis reads "" or "all" as All, otherwise a comma-separated list of values.
func ParseAxis(raw string) Axis {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, constants.SelectAll) {
		return All()
	}
	var values []string
	for _, part := range strings.Split(trimmed, constants.SelectionSeparator) {
		if v := strings.TrimSpace(part); v != "" {
			values = append(values, v)
		}
	}
	return Of(values...)
}

// IsAll reports whether the axis is unconstrained.
func (a Axis) IsAll() bool {
	return a.all
}

// Values returns the selected values in sorted order; nil for All.
func (a Axis) Values() []string {
	if a.all {
		return nil
	}
	out := make([]string, 0, len(a.values))
	for v := range a.values {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Match reports whether value passes the axis.
func (a Axis) Match(value string) bool {
	if a.all {
		return true
	}
	_, ok := a.values[value]
	return ok
}

// single returns the only selected value.
func (a Axis) single() (string, bool) {
	if a.all || len(a.values) != 1 {
		return "", false
	}
	for v := range a.values {
		return v, true
	}
	return "", false
}

func (a Axis) String() string {
	if a.all {
		return constants.SelectAll
	}
	return strings.Join(a.Values(), constants.SelectionSeparator)
}

// Selection is a choice of locations and commodities.
type Selection struct {
	Locations   Axis
	Commodities Axis
}

// Everything selects all series.
func Everything() Selection {
	return Selection{Locations: All(), Commodities: All()}
}

// Parse builds a Selection from raw axis strings, see ParseAxis.
func Parse(locations, commodities string) Selection {
	return Selection{Locations: ParseAxis(locations), Commodities: ParseAxis(commodities)}
}

// Match reports whether the series passes both axes.
func (s Selection) Match(key dataset.SeriesKey) bool {
	return s.Locations.Match(key.Location) && s.Commodities.Match(key.Commodity)
}

// Single returns the one series selected when both axes name exactly one value.
func (s Selection) Single() (dataset.SeriesKey, bool) {
	loc, ok := s.Locations.single()
	if !ok {
		return dataset.SeriesKey{}, false
	}
	comm, ok := s.Commodities.single()
	if !ok {
		return dataset.SeriesKey{}, false
	}
	return dataset.SeriesKey{Location: loc, Commodity: comm}, true
}

func (s Selection) String() string {
	return "locations=" + s.Locations.String() + " commodities=" + s.Commodities.String()
}

// Keep returns a new slice with the rows whose series passes sel. rows is
// never modified.
func Keep[T any](rows []T, sel Selection, key func(T) dataset.SeriesKey) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if sel.Match(key(row)) {
			out = append(out, row)
		}
	}
	return out
}
