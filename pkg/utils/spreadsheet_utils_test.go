package utils

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestReadSpreadsheetCSV(t *testing.T) {
	input := "\xef\xbb\xbf Date ,School,Employee\n2024-03-04, Oak School ,Dana\n,,\n2024-03-05,Pine,Avi\n"
	sheet, err := ReadSpreadsheet(strings.NewReader(input), "activities.csv", 0)
	if err != nil {
		t.Fatalf("ReadSpreadsheet returned error: %v", err)
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("expected 2 data rows (blank row skipped), got %d", len(sheet.Rows))
	}
	if missing := sheet.Missing("date", "school", "employee"); len(missing) != 0 {
		t.Fatalf("unexpected missing columns: %v", missing)
	}
	if got := sheet.Value(sheet.Rows[0], "School"); got != "Oak School" {
		t.Fatalf("expected trimmed school name, got %q", got)
	}
	if got := sheet.Value(sheet.Rows[0], "hours"); got != "" {
		t.Fatalf("expected empty value for absent column, got %q", got)
	}
}

func TestReadSpreadsheetXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheetName := f.GetSheetName(0)
	_ = f.SetCellValue(sheetName, "A1", "name")
	_ = f.SetCellValue(sheetName, "B1", "price")
	_ = f.SetCellValue(sheetName, "A2", "Oak School")
	_ = f.SetCellValue(sheetName, "B2", "1200")
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	sheet, err := ReadSpreadsheet(bytes.NewReader(buf.Bytes()), "schools.xlsx", 0)
	if err != nil {
		t.Fatalf("ReadSpreadsheet returned error: %v", err)
	}
	if len(sheet.Rows) != 1 {
		t.Fatalf("expected 1 data row, got %d", len(sheet.Rows))
	}
	if got := sheet.Value(sheet.Rows[0], "price"); got != "1200" {
		t.Fatalf("expected price 1200, got %q", got)
	}
}

func TestReadSpreadsheetXLSXDateCells(t *testing.T) {
	f := excelize.NewFile()
	sheetName := f.GetSheetName(0)
	_ = f.SetCellValue(sheetName, "A1", "date")
	_ = f.SetCellValue(sheetName, "B1", "amount")
	_ = f.SetCellValue(sheetName, "A2", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))
	_ = f.SetCellValue(sheetName, "B2", 1500)
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	sheet, err := ReadSpreadsheet(bytes.NewReader(buf.Bytes()), "records.xlsx", 0)
	if err != nil {
		t.Fatalf("ReadSpreadsheet returned error: %v", err)
	}
	raw := sheet.Value(sheet.Rows[0], "date")
	date, err := ParseSpreadsheetDate(raw)
	if err != nil {
		t.Fatalf("date cell %q not parsed: %v", raw, err)
	}
	if got := FormatDate(date); got != "2024-03-04" {
		t.Fatalf("expected 2024-03-04, got %s (cell %q)", got, raw)
	}
	if got := sheet.Value(sheet.Rows[0], "amount"); got != "1500" {
		t.Fatalf("expected amount 1500, got %q", got)
	}
}

func TestReadSpreadsheetRejectsUnknownExtension(t *testing.T) {
	if _, err := ReadSpreadsheet(strings.NewReader("x"), "notes.txt", 0); err != ErrUnsupportedFile {
		t.Fatalf("expected ErrUnsupportedFile, got %v", err)
	}
}

func TestReadSpreadsheetRowCap(t *testing.T) {
	input := "name\na\nb\nc\n"
	if _, err := ReadSpreadsheet(strings.NewReader(input), "s.csv", 2); err == nil {
		t.Fatalf("expected error when exceeding the row cap")
	}
}

func TestParseSpreadsheetDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-03-04", "2024-03-04"},
		{"04/03/2024", "2024-03-04"},
		{"2024-03-04 00:00:00", "2024-03-04"},
		{"45355", "2024-03-04"},
	}
	for _, tt := range tests {
		got, err := ParseSpreadsheetDate(tt.in)
		if err != nil {
			t.Fatalf("ParseSpreadsheetDate(%q) error: %v", tt.in, err)
		}
		if FormatDate(got) != tt.want {
			t.Errorf("ParseSpreadsheetDate(%q) = %s, want %s", tt.in, FormatDate(got), tt.want)
		}
	}
	if _, err := ParseSpreadsheetDate("yesterday"); err == nil {
		t.Fatalf("expected error for free text date")
	}
}
