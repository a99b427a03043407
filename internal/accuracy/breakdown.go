package accuracy

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/iwvelando/commodity-forecast/pkg/mathutil"
)

// Dimension is the axis a Breakdown groups by.
type Dimension int

const (
	ByCommodity Dimension = iota
	ByLocation
)

func (d Dimension) String() string {
	if d == ByLocation {
		return "location"
	}
	return "commodity"
}

// ParseDimension maps "commodity" or "location".
func ParseDimension(name string) (Dimension, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "commodity", "":
		return ByCommodity, nil
	case "location":
		return ByLocation, nil
	}
	return ByCommodity, fmt.Errorf("unknown breakdown dimension %q", name)
}

// GroupMAPE is the mean MAPE of the series sharing one location or commodity.
type GroupMAPE struct {
	Name        string
	MAPEPercent float64
	Series      int
}

// Breakdown averages defined metrics per commodity or per location and
// sorts the groups from least to most accurate. Undefined metrics are left
// out; a non-finite metric makes its group mean non-finite, and NaN groups
// sort first. Groups without a defined metric are dropped.
func Breakdown(metrics []Metric, by Dimension) []GroupMAPE {
	values := make(map[string][]float64)
	for _, m := range metrics {
		if !m.Defined() {
			continue
		}
		name := m.Commodity
		if by == ByLocation {
			name = m.Location
		}
		values[name] = append(values[name], *m.MAPEPercent)
	}

	groups := make([]GroupMAPE, 0, len(values))
	for name, vs := range values {
		groups = append(groups, GroupMAPE{Name: name, MAPEPercent: mathutil.Mean(vs), Series: len(vs)})
	}
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i].MAPEPercent, groups[j].MAPEPercent
		if math.IsNaN(a) != math.IsNaN(b) {
			return math.IsNaN(a)
		}
		if a != b && !math.IsNaN(a) {
			return a > b
		}
		return groups[i].Name < groups[j].Name
	})
	return groups
}

// Average is the mean of the defined metrics and false when there is none.
func Average(metrics []Metric) (float64, bool) {
	var vs []float64
	for _, m := range metrics {
		if m.Defined() {
			vs = append(vs, *m.MAPEPercent)
		}
	}
	if len(vs) == 0 {
		return math.NaN(), false
	}
	return mathutil.Mean(vs), true
}
