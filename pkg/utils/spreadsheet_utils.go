package utils

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFile is returned for uploads that are not csv, xlsx or xls.
var ErrUnsupportedFile = errors.New("unsupported file type, expected .csv, .xlsx or .xls")

// Sheet is a parsed upload: normalized headers plus the data rows below them.
type Sheet struct {
	Headers []string
	Rows    [][]string
	index   map[string]int
}

// Has reports whether the header row contains column.
func (s *Sheet) Has(column string) bool {
	_, ok := s.index[NormalizeHeader(column)]
	return ok
}

// Missing lists the required columns absent from the header row.
func (s *Sheet) Missing(columns ...string) []string {
	var missing []string
	for _, col := range columns {
		if !s.Has(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// Value returns the trimmed cell of row under column, or "".
func (s *Sheet) Value(row []string, column string) string {
	idx, ok := s.index[NormalizeHeader(column)]
	if !ok {
		return ""
	}
	return CellValue(row, idx)
}

// ReadSpreadsheet reads the first worksheet of a csv, xlsx or xls upload.
// maxRows caps the number of data rows; 0 means no cap.
func ReadSpreadsheet(reader io.Reader, filename string, maxRows int) (*Sheet, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
		r.FieldsPerRecord = -1
		r.TrimLeadingSpace = true
		rows, err = r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, err
		}
		if workbook.NumSheets() == 0 {
			return nil, fmt.Errorf("no worksheet found")
		}
		rows = workbook.ReadAllCells(100000)
	case ".xlsx", ".xlsm":
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("no worksheet found")
		}
		// Raw values keep date cells as serial numbers instead of their display format.
		rows, err = file.GetRows(sheetName, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnsupportedFile
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("worksheet is empty")
	}

	sheet := &Sheet{index: make(map[string]int)}
	for i, h := range rows[0] {
		name := NormalizeHeader(h)
		sheet.Headers = append(sheet.Headers, name)
		if _, dup := sheet.index[name]; !dup && name != "" {
			sheet.index[name] = i
		}
	}
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		if maxRows > 0 && len(sheet.Rows) >= maxRows {
			return nil, fmt.Errorf("file has more than %d data rows", maxRows)
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

// NormalizeHeader lower-cases and trims a header cell.
func NormalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

// CellValue returns the trimmed cell at idx, or "" when the row is short.
func CellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

var spreadsheetDateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
	"2006/01/02",
}

// ParseSpreadsheetDate understands ISO dates, day-first dates and Excel serial numbers.
func ParseSpreadsheetDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial >= 20000 && serial <= 80000 {
			return excelize.ExcelDateToTime(serial, false)
		}
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	for _, layout := range spreadsheetDateFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

// WriteCSV renders a header-only template or a small report as CSV bytes.
func WriteCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
