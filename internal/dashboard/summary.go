package dashboard

import (
	"time"

	"github.com/iwvelando/commodity-forecast/internal/accuracy"
	"github.com/iwvelando/commodity-forecast/internal/dataset"
	"github.com/iwvelando/commodity-forecast/internal/selection"
	"github.com/iwvelando/commodity-forecast/pkg/mathutil"
)

// Summary holds the headline figures of a view.
type Summary struct {
	AverageMAPE       *float64
	LatestActualDate  *time.Time
	LatestActual      *float64 // mean actual price on LatestActualDate
	NextPredictedDate *time.Time
	NextPredicted     *float64 // mean predicted price on NextPredictedDate
	SeriesCount       int
}

// Summarize computes the headline figures of v. The next prediction is the
// first predicted date after the last actual date, or the first predicted
// date at all when every prediction overlaps the history.
func Summarize(v *View) Summary {
	var s Summary
	if avg, ok := accuracy.Average(v.Metrics); ok {
		s.AverageMAPE = mathutil.Float(avg)
	}
	s.SeriesCount = len(v.Metrics)

	var lastActual time.Time
	for _, o := range v.Observations {
		if o.Actual != nil && o.Date.After(lastActual) {
			lastActual = o.Date
		}
	}
	if !lastActual.IsZero() {
		var prices []float64
		for _, o := range v.Observations {
			if o.Actual != nil && o.Date.Equal(lastActual) {
				prices = append(prices, *o.Actual)
			}
		}
		s.LatestActualDate = &lastActual
		s.LatestActual = mathutil.Float(mathutil.Mean(prices))
	}

	var next, first time.Time
	for _, o := range v.Observations {
		if o.Predicted == nil {
			continue
		}
		if first.IsZero() || o.Date.Before(first) {
			first = o.Date
		}
		if o.Date.After(lastActual) && (next.IsZero() || o.Date.Before(next)) {
			next = o.Date
		}
	}
	if next.IsZero() {
		next = first
	}
	if !next.IsZero() {
		var prices []float64
		for _, o := range v.Observations {
			if o.Predicted != nil && o.Date.Equal(next) {
				prices = append(prices, *o.Predicted)
			}
		}
		s.NextPredictedDate = &next
		s.NextPredicted = mathutil.Float(mathutil.Mean(prices))
	}
	return s
}

// Point is one dated price.
type Point struct {
	Date  time.Time
	Price float64
}

// Trend is the actual and predicted price line of one series.
type Trend struct {
	Key       dataset.SeriesKey
	Actual    []Point
	Predicted []Point
}

// Trend extracts the price lines of key from v. A key without observations
// in the view yields selection.ErrEmptySelection.
func (v *View) Trend(key dataset.SeriesKey) (Trend, error) {
	t := Trend{Key: key}
	for _, row := range dataset.SplitKinds(v.Observations) {
		if row.Key != key {
			continue
		}
		p := Point{Date: row.Date, Price: row.Price}
		if row.Kind == dataset.KindPredicted {
			t.Predicted = append(t.Predicted, p)
		} else {
			t.Actual = append(t.Actual, p)
		}
	}
	if len(t.Actual) == 0 && len(t.Predicted) == 0 {
		return t, selection.ErrEmptySelection
	}
	return t, nil
}
