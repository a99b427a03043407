package dataset

import (
	"fmt"
	"strings"

	"github.com/iwvelando/commodity-forecast/pkg/constants"
	"go.uber.org/zap"
)

// Shape declares how a source encodes actual and predicted prices.
type Shape string

const (
	// ShapeTaggedSplitFiles is a tagged-rows forecast file (ds, harga, tipe)
	// plus a metrics file keyed by unique_id.
	ShapeTaggedSplitFiles Shape = constants.ShapeTaggedSplitFiles
	// ShapeTaggedSingleFile is one wide-rows file (harga_aktual, harga_prediksi).
	ShapeTaggedSingleFile Shape = constants.ShapeTaggedSingleFile
	// ShapeTaggedTwoFiles is the single-file shape plus a metrics file.
	ShapeTaggedTwoFiles Shape = constants.ShapeTaggedTwoFiles
)

// ParseShape validates a configured shape name.
func ParseShape(name string) (Shape, error) {
	switch shape := Shape(strings.ToLower(strings.TrimSpace(name))); shape {
	case ShapeTaggedSplitFiles, ShapeTaggedSingleFile, ShapeTaggedTwoFiles:
		return shape, nil
	}
	return "", fmt.Errorf("unknown input shape %q, expected %s, %s or %s",
		name, ShapeTaggedSplitFiles, ShapeTaggedSingleFile, ShapeTaggedTwoFiles)
}

// Tagged reports whether actual and predicted prices sit on separate rows.
func (s Shape) Tagged() bool {
	return s == ShapeTaggedSplitFiles
}

// UsesMetrics reports whether the shape carries a separate metrics file.
func (s Shape) UsesMetrics() bool {
	return s == ShapeTaggedSplitFiles || s == ShapeTaggedTwoFiles
}

// Column aliases, matched case-insensitively. The first name of each list is
// the one reported in errors.
var (
	colDate      = []string{"ds", "date", "tanggal"}
	colLocation  = []string{"lokasi", "location"}
	colCommodity = []string{"komoditas", "commodity"}
	colSeriesID  = []string{"unique_id", "series_id"}
	colPrice     = []string{"harga", "price"}
	colKind      = []string{"tipe", "kind", "type"}
	colActual    = []string{"harga_aktual", "actual_price"}
	colPredicted = []string{"harga_prediksi", "predicted_price"}
	colMAPE      = []string{"MAPE (%)", "mape", "mape_percent"}
)

// Source names the files of one input and their shape.
type Source struct {
	Shape        Shape
	Observations string
	Metrics      string
	Sheet        string // worksheet of an XLSX observations file
	MetricsSheet string // worksheet of an XLSX metrics file
}

// Paths returns the files Load reads for s.
func (s Source) Paths() []string {
	paths := []string{s.Observations}
	if s.Shape.UsesMetrics() && s.Metrics != "" {
		paths = append(paths, s.Metrics)
	}
	return paths
}

// Table is the result of a load: the reshaped observations and, for shapes
// with a metrics file, the reported accuracy figures.
type Table struct {
	Observations []Observation
	Reported     []ReportedMetric
}

// Load reads and reshapes every file of src. Any error fails the whole load.
func Load(logger *zap.Logger, src Source) (*Table, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if src.Observations == "" {
		return nil, fmt.Errorf("no observations file configured")
	}
	if src.Shape.UsesMetrics() && src.Metrics == "" {
		return nil, fmt.Errorf("shape %s requires a metrics file", src.Shape)
	}

	obsSheet, err := readSheet(src.Observations, src.Sheet)
	if err != nil {
		return nil, err
	}

	var table Table
	switch src.Shape {
	case ShapeTaggedSplitFiles:
		tagged, err := readTagged(obsSheet)
		if err != nil {
			return nil, err
		}
		table.Observations, err = PivotTagged(tagged)
		if err != nil {
			return nil, locate(err, src.Observations, 0, "")
		}
		logger.Debug("pivoted tagged rows",
			zap.String("op", "dataset.Load"),
			zap.String("path", src.Observations),
			zap.Int("tagged", len(tagged)),
			zap.Int("observations", len(table.Observations)),
		)
	case ShapeTaggedSingleFile, ShapeTaggedTwoFiles:
		table.Observations, err = readWide(logger, obsSheet)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown input shape %q", src.Shape)
	}

	if src.Shape.UsesMetrics() {
		metricsSheet, err := readSheet(src.Metrics, src.MetricsSheet)
		if err != nil {
			return nil, err
		}
		table.Reported, err = readReported(metricsSheet)
		if err != nil {
			return nil, err
		}
	}

	logger.Info("loaded price data",
		zap.String("op", "dataset.Load"),
		zap.String("shape", string(src.Shape)),
		zap.String("observations", src.Observations),
		zap.Int("rows", len(table.Observations)),
		zap.Int("reported", len(table.Reported)),
	)
	return &table, nil
}

type identityFunc func(record []string) (SeriesKey, error)

// identity resolves the series columns of s: lokasi and komoditas when
// present, otherwise a composite unique_id.
func (s *sheet) identity() (identityFunc, error) {
	if li, ok := s.column(colLocation...); ok {
		ci, err := s.require(colCommodity...)
		if err != nil {
			return nil, err
		}
		return func(record []string) (SeriesKey, error) {
			key := SeriesKey{Location: cell(record, li), Commodity: cell(record, ci)}
			if key.Location == "" {
				return key, &DataFormatError{Column: colLocation[0], Reason: "location is empty"}
			}
			if key.Commodity == "" {
				return key, &DataFormatError{Column: colCommodity[0], Reason: "commodity is empty"}
			}
			return key, nil
		}, nil
	}
	if ui, ok := s.column(colSeriesID...); ok {
		return func(record []string) (SeriesKey, error) {
			key, err := SplitSeriesID(cell(record, ui))
			return key, locate(err, "", 0, colSeriesID[0])
		}, nil
	}
	return nil, &DataFormatError{
		Path:   s.path,
		Row:    1,
		Column: colLocation[0],
		Reason: "required column is missing (expected lokasi and komoditas, or unique_id)",
	}
}

func readTagged(s *sheet) ([]TaggedRow, error) {
	dateIdx, err := s.require(colDate...)
	if err != nil {
		return nil, err
	}
	priceIdx, err := s.require(colPrice...)
	if err != nil {
		return nil, err
	}
	kindIdx, err := s.require(colKind...)
	if err != nil {
		return nil, err
	}
	identify, err := s.identity()
	if err != nil {
		return nil, err
	}

	rows := make([]TaggedRow, 0, len(s.rows))
	for i, record := range s.rows {
		line := s.line(i)
		date, err := parseDate(cell(record, dateIdx), s.serialDates)
		if err != nil {
			return nil, locate(err, s.path, line, colDate[0])
		}
		key, err := identify(record)
		if err != nil {
			return nil, locate(err, s.path, line, "")
		}
		kind, err := parseKind(cell(record, kindIdx))
		if err != nil {
			return nil, locate(err, s.path, line, colKind[0])
		}
		price, err := parsePrice(cell(record, priceIdx))
		if err != nil {
			return nil, locate(err, s.path, line, colPrice[0])
		}
		if price == nil {
			continue
		}
		rows = append(rows, TaggedRow{Date: date, Key: key, Kind: kind, Price: *price})
	}
	return rows, nil
}

func readWide(logger *zap.Logger, s *sheet) ([]Observation, error) {
	dateIdx, err := s.require(colDate...)
	if err != nil {
		return nil, err
	}
	actualIdx, err := s.require(colActual...)
	if err != nil {
		return nil, err
	}
	predictedIdx, err := s.require(colPredicted...)
	if err != nil {
		return nil, err
	}
	identify, err := s.identity()
	if err != nil {
		return nil, err
	}

	rows := make([]Observation, 0, len(s.rows))
	dropped := 0
	for i, record := range s.rows {
		line := s.line(i)
		date, err := parseDate(cell(record, dateIdx), s.serialDates)
		if err != nil {
			return nil, locate(err, s.path, line, colDate[0])
		}
		key, err := identify(record)
		if err != nil {
			return nil, locate(err, s.path, line, "")
		}
		actual, err := parsePrice(cell(record, actualIdx))
		if err != nil {
			return nil, locate(err, s.path, line, colActual[0])
		}
		predicted, err := parsePrice(cell(record, predictedIdx))
		if err != nil {
			return nil, locate(err, s.path, line, colPredicted[0])
		}
		if actual == nil && predicted == nil {
			dropped++
			continue
		}
		rows = append(rows, Observation{
			Date:      date,
			Location:  key.Location,
			Commodity: key.Commodity,
			Actual:    actual,
			Predicted: predicted,
		})
	}
	if dropped > 0 {
		logger.Debug("dropped rows without prices",
			zap.String("op", "dataset.readWide"),
			zap.String("path", s.path),
			zap.Int("dropped", dropped),
		)
	}
	SortObservations(rows)
	return rows, nil
}

func readReported(s *sheet) ([]ReportedMetric, error) {
	mapeIdx, err := s.require(colMAPE...)
	if err != nil {
		return nil, err
	}
	identify, err := s.identity()
	if err != nil {
		return nil, err
	}

	seen := make(map[SeriesKey]struct{})
	var reported []ReportedMetric
	for i, record := range s.rows {
		line := s.line(i)
		key, err := identify(record)
		if err != nil {
			return nil, locate(err, s.path, line, "")
		}
		value, err := parseMetric(cell(record, mapeIdx))
		if err != nil {
			return nil, locate(err, s.path, line, colMAPE[0])
		}
		if value == nil {
			continue
		}
		if _, dup := seen[key]; dup {
			return nil, &DataFormatError{Path: s.path, Row: line, Value: key.String(), Reason: "duplicate series in metrics file"}
		}
		seen[key] = struct{}{}
		reported = append(reported, ReportedMetric{Key: key, MAPEPercent: *value})
	}
	return reported, nil
}
