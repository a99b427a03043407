package dataset

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/commodity-forecast/pkg/constants"
	"github.com/iwvelando/commodity-forecast/pkg/datetime"
	"github.com/iwvelando/commodity-forecast/pkg/mathutil"
	"github.com/xuri/excelize/v2"
)

// decimalPattern is a non-negative decimal number with a point separator.
var decimalPattern = regexp.MustCompile(`^[0-9]+([.][0-9]+)?$`)

// parseDecimal parses a non-negative decimal with either a point or a comma
// as separator. Signs, exponents and spellings such as NaN or Inf are rejected.
func parseDecimal(value string) (float64, bool) {
	number := strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	if !decimalPattern.MatchString(number) {
		return 0, false
	}
	f, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParsePercent normalizes a locale-formatted percentage such as "12,34%" into
// 12.34. The trailing "%" is required.
func ParsePercent(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if !strings.HasSuffix(trimmed, "%") {
		return 0, formatError(value, "percentage lacks a % suffix")
	}
	f, ok := parseDecimal(strings.TrimSuffix(trimmed, "%"))
	if !ok {
		return 0, formatError(value, "percentage is not numeric")
	}
	return f, nil
}

// SplitSeriesID splits a composite "location/commodity" identifier on its
// first separator. Later separators stay in the commodity.
func SplitSeriesID(id string) (SeriesKey, error) {
	location, commodity, ok := strings.Cut(strings.TrimSpace(id), constants.SeriesIDSeparator)
	if !ok {
		return SeriesKey{}, formatError(id, "series identifier lacks a / separator")
	}
	location = strings.TrimSpace(location)
	commodity = strings.TrimSpace(commodity)
	if location == "" || commodity == "" {
		return SeriesKey{}, formatError(id, "series identifier has an empty location or commodity")
	}
	return SeriesKey{Location: location, Commodity: commodity}, nil
}

// parseDate accepts the textual layouts of datetime.ParseDate and, when
// serial is set, raw spreadsheet serial day numbers.
func parseDate(value string, serial bool) (time.Time, error) {
	t, err := datetime.ParseDate(value)
	if err == nil {
		return t, nil
	}
	if !serial {
		return time.Time{}, formatError(value, "unparseable date")
	}
	if days, serr := strconv.ParseFloat(strings.TrimSpace(value), 64); serr == nil && days > 0 {
		st, xerr := excelize.ExcelDateToTime(days, false)
		if xerr == nil {
			return datetime.Truncate(st), nil
		}
	}
	return time.Time{}, formatError(value, "unparseable date")
}

// parsePrice returns nil for an empty cell.
func parsePrice(value string) (*float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.EqualFold(trimmed, "nan") {
		return nil, nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil, formatError(value, "price is not numeric")
	}
	if f < 0 || !mathutil.IsFinite(f) {
		return nil, formatError(value, "price must be a non-negative number")
	}
	return &f, nil
}

// parseMetric parses a reported MAPE cell: locale-formatted percentages go
// through ParsePercent, anything else is a plain number with an optional
// decimal comma. An empty cell yields nil.
func parseMetric(value string) (*float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.EqualFold(trimmed, "nan") {
		return nil, nil
	}
	if strings.Contains(trimmed, "%") {
		f, err := ParsePercent(trimmed)
		if err != nil {
			return nil, err
		}
		return &f, nil
	}
	f, ok := parseDecimal(trimmed)
	if !ok {
		return nil, formatError(value, "metric is not a non-negative number")
	}
	return &f, nil
}

func parseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "aktual", "actual":
		return KindActual, nil
	case "prediksi", "predicted", "prediction", "forecast":
		return KindPredicted, nil
	}
	return 0, formatError(value, "kind must be Aktual or Prediksi")
}
