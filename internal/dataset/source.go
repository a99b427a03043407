package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// sheet is one tabular source held in memory: a normalized header index and
// the data rows below it.
type sheet struct {
	path   string
	header map[string]int
	rows   [][]string
	// serialDates is set for spreadsheet sources, whose raw date cells are
	// serial day numbers.
	serialDates bool
}

// readSheet reads a CSV or XLSX file, picked by extension. sheetName selects
// a worksheet for XLSX files; the first worksheet is used when it is empty.
func readSheet(path, sheetName string) (*sheet, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &InputNotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	var (
		records [][]string
		err     error
		serial  bool
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		records, err = readXLSX(path, sheetName)
		serial = true
	case ".csv":
		records, err = readCSV(path)
	default:
		return nil, &DataFormatError{Path: path, Reason: fmt.Sprintf("unsupported file type %q", filepath.Ext(path))}
	}
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, &DataFormatError{Path: path, Row: 1, Reason: "missing header row"}
	}

	s := &sheet{path: path, header: make(map[string]int), serialDates: serial}
	for i, name := range records[0] {
		key := normalizeColumn(name)
		if key == "" {
			continue
		}
		if _, dup := s.header[key]; dup {
			return nil, &DataFormatError{Path: path, Row: 1, Column: name, Reason: "duplicate column"}
		}
		s.header[key] = i
	}
	s.rows = records[1:]
	return s, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, &DataFormatError{Path: path, Row: parseErr.Line, Reason: parseErr.Err.Error()}
			}
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if isBlank(record) {
			continue
		}
		records = append(records, record)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

func readXLSX(path, sheetName string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &DataFormatError{Path: path, Reason: fmt.Sprintf("unreadable workbook: %v", err)}
	}
	defer func() {
		_ = f.Close()
	}()

	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, &DataFormatError{Path: path, Reason: "workbook has no sheets"}
		}
		sheetName = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, &DataFormatError{Path: path, Reason: fmt.Sprintf("sheet %q not found", sheetName)}
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &DataFormatError{Path: path, Reason: fmt.Sprintf("unreadable sheet %q: %v", sheetName, err)}
	}

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		records = append(records, row)
	}
	return records, nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func normalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// column returns the index of the first of names present in the header.
func (s *sheet) column(names ...string) (int, bool) {
	for _, name := range names {
		if idx, ok := s.header[normalizeColumn(name)]; ok {
			return idx, true
		}
	}
	return 0, false
}

// require is column for a mandatory column; the first name is reported.
func (s *sheet) require(names ...string) (int, error) {
	idx, ok := s.column(names...)
	if !ok {
		return 0, &DataFormatError{Path: s.path, Row: 1, Column: names[0], Reason: "required column is missing"}
	}
	return idx, nil
}

// line returns the 1-based source line of data row i. Blank lines skipped on
// read are not counted.
func (s *sheet) line(i int) int {
	return i + 2
}

// cell returns the value at idx, or "" for a short row.
func cell(record []string, idx int) string {
	if idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}
