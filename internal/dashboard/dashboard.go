// Package dashboard builds the read-only tables the presenters consume: the
// cleaned observations, the per-series accuracy metrics and the
// actual-versus-predicted comparison, plus filtered views over them.
package dashboard

import (
	"sort"

	"github.com/iwvelando/commodity-forecast/internal/accuracy"
	"github.com/iwvelando/commodity-forecast/internal/dataset"
	"github.com/iwvelando/commodity-forecast/internal/selection"
)

// Dataset is the immutable result of one load. Callers must not modify it;
// filtering always produces a new View.
type Dataset struct {
	Observations []dataset.Observation
	Metrics      []accuracy.Metric
	Comparison   []dataset.ComparisonRow
	Locations    []string
	Commodities  []string
	Policy       accuracy.ZeroActualPolicy
}

// Build derives the metrics, comparison and filter options from a loaded table.
func Build(table *dataset.Table, policy accuracy.ZeroActualPolicy) *Dataset {
	metrics := accuracy.Aggregate(table.Observations, policy)
	metrics = accuracy.AttachReported(metrics, table.Reported)

	locations := make(map[string]struct{})
	commodities := make(map[string]struct{})
	for _, o := range table.Observations {
		locations[o.Location] = struct{}{}
		commodities[o.Commodity] = struct{}{}
	}

	return &Dataset{
		Observations: table.Observations,
		Metrics:      metrics,
		Comparison:   dataset.Compare(table.Observations),
		Locations:    sortedKeys(locations),
		Commodities:  sortedKeys(commodities),
		Policy:       policy,
	}
}

// View is a filtered projection of a Dataset.
type View struct {
	Selection    selection.Selection
	Observations []dataset.Observation
	Metrics      []accuracy.Metric
	Comparison   []dataset.ComparisonRow
}

// Empty reports whether the view holds no observations.
func (v *View) Empty() bool {
	return len(v.Observations) == 0
}

// Filter returns the rows of every table whose series passes sel. An empty
// result comes back together with selection.ErrEmptySelection so callers can
// show a placeholder; the view is still usable.
func (d *Dataset) Filter(sel selection.Selection) (*View, error) {
	v := &View{
		Selection:    sel,
		Observations: selection.Keep(d.Observations, sel, dataset.Observation.Key),
		Metrics:      selection.Keep(d.Metrics, sel, accuracy.Metric.Key),
		Comparison:   selection.Keep(d.Comparison, sel, dataset.ComparisonRow.Key),
	}
	if v.Empty() {
		return v, selection.ErrEmptySelection
	}
	return v, nil
}

// Filter narrows an existing view further. Filtering by the same selection
// twice yields the same view.
func (v *View) Filter(sel selection.Selection) (*View, error) {
	d := Dataset{Observations: v.Observations, Metrics: v.Metrics, Comparison: v.Comparison}
	return d.Filter(sel)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
