package dataset

import (
	"fmt"
	"time"

	"github.com/iwvelando/commodity-forecast/pkg/datetime"
	"github.com/iwvelando/commodity-forecast/pkg/mathutil"
)

type pivotKey struct {
	date time.Time
	key  SeriesKey
}

// PivotTagged folds tagged rows into one observation per (date, location,
// commodity). It is an outer union: a date tagged only actual keeps a nil
// Predicted and vice versa. Two rows of the same kind for one date and
// series are a DataFormatError.
func PivotTagged(rows []TaggedRow) ([]Observation, error) {
	index := make(map[pivotKey]int, len(rows))
	out := make([]Observation, 0, len(rows))

	for _, row := range rows {
		pk := pivotKey{date: row.Date, key: row.Key}
		i, ok := index[pk]
		if !ok {
			i = len(out)
			index[pk] = i
			out = append(out, Observation{
				Date:      row.Date,
				Location:  row.Key.Location,
				Commodity: row.Key.Commodity,
			})
		}

		slot := &out[i].Actual
		if row.Kind == KindPredicted {
			slot = &out[i].Predicted
		}
		if *slot != nil {
			return nil, &DataFormatError{
				Value:  row.Key.String(),
				Reason: fmt.Sprintf("duplicate %s price on %s", row.Kind, datetime.Format(row.Date)),
			}
		}
		*slot = mathutil.Float(row.Price)
	}

	SortObservations(out)
	return out, nil
}

// Compare is the strict inner join of actual and predicted prices on
// (date, location, commodity): only observations carrying both appear.
// Forecast-only and history-only dates are left out.
func Compare(rows []Observation) []ComparisonRow {
	out := make([]ComparisonRow, 0, len(rows))
	for _, row := range rows {
		if row.Actual == nil || row.Predicted == nil {
			continue
		}
		cr := ComparisonRow{
			Date:      row.Date,
			Location:  row.Location,
			Commodity: row.Commodity,
			Actual:    *row.Actual,
			Predicted: *row.Predicted,
		}
		if diff, ok := mathutil.PercentDifference(cr.Actual, cr.Predicted); ok {
			cr.DifferencePercent = &diff
		}
		out = append(out, cr)
	}
	return out
}

// SplitKinds separates observations into their actual-only and
// predicted-only halves, the inverse of PivotTagged.
func SplitKinds(rows []Observation) []TaggedRow {
	var out []TaggedRow
	for _, row := range rows {
		if row.Actual != nil {
			out = append(out, TaggedRow{Date: row.Date, Key: row.Key(), Kind: KindActual, Price: *row.Actual})
		}
		if row.Predicted != nil {
			out = append(out, TaggedRow{Date: row.Date, Key: row.Key(), Kind: KindPredicted, Price: *row.Predicted})
		}
	}
	return out
}
