// Package importer parses bulk student spreadsheets (.xlsx) into records the
// student service can enroll.
package importer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Record is one parsed spreadsheet row. Identifiers, status and enrollment
// date are assigned by the student service at enrollment time.
type Record struct {
	Name         string
	GuardianName string
	Contact      string
	Email        string
	Batch        string
	TotalFees    float64
	Discount     float64
}

// expectedHeaders are the required spreadsheet columns, matched
// case-insensitively against the first row.
var expectedHeaders = []string{"Name", "Guardian Name", "Contact", "Email", "Batch", "Total Fees", "Discount"}

var ErrNoSheets = errors.New("spreadsheet contains no sheets")

// Students parses the first sheet of an .xlsx workbook. Rows with an empty
// Name cell are skipped; a malformed fee cell fails the whole import.
func Students(r io.Reader) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("Failed to close spreadsheet", "error", cerr)
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrNoSheets
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	cols, err := mapHeaders(rows[0])
	if err != nil {
		return nil, err
	}

	var records []Record
	for i, row := range rows[1:] {
		name := cell(row, cols["name"])
		if name == "" {
			continue
		}
		totalFees, err := parseAmount(cell(row, cols["total fees"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: total fees: %w", i+2, err)
		}
		discount, err := parseAmount(cell(row, cols["discount"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: discount: %w", i+2, err)
		}
		records = append(records, Record{
			Name:         name,
			GuardianName: cell(row, cols["guardian name"]),
			Contact:      cell(row, cols["contact"]),
			Email:        cell(row, cols["email"]),
			Batch:        cell(row, cols["batch"]),
			TotalFees:    totalFees,
			Discount:     discount,
		})
	}
	return records, nil
}

func mapHeaders(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, want := range expectedHeaders {
		if _, ok := cols[strings.ToLower(want)]; !ok {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing column headers: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseAmount accepts plain numbers with optional thousands separators.
// An empty cell counts as zero.
func parseAmount(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative amount %q", s)
	}
	return v, nil
}
