package workbook

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"unicode/utf16"

	"github.com/xuri/excelize/v2"

	"github.com/dtroode/examcert-server/internal/model"
)

// defaultSheet is the placeholder sheet of a workbook created by excelize.NewFile.
const defaultSheet = "Sheet1"

// recordRowHeight is the default row height in points, set explicitly on record rows.
const recordRowHeight = 15

// pendingSheet holds the new content of a sheet until it replaces the old one.
const pendingSheet = "_pending"

// ErrValueTooLong is returned when a value does not fit into a single cell.
var ErrValueTooLong = errors.New("value exceeds workbook cell limit")

func hasSheet(f *excelize.File, sheet string) bool {
	idx, err := f.GetSheetIndex(sheet)
	return err == nil && idx != -1
}

// decodeSheet reads a sheet whose first row holds field names.
// Cell types are preserved: booleans stay bool, numbers become int or float64.
// Every row element below the header is a record, including rows with no values.
func decodeSheet(f *excelize.File, sheet string) ([]model.Record, error) {
	rows, err := readRows(f, sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []model.Record{}, nil
	}

	header := rows[0]
	records := make([]model.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header
		rec := make(model.Record, len(header))

		for colIdx, field := range header {
			if field == "" {
				continue
			}
			if colIdx >= len(row) || row[colIdx] == "" {
				rec[field] = ""
				continue
			}

			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowNum)
			if err != nil {
				return nil, err
			}
			cellType, err := f.GetCellType(sheet, cell)
			if err != nil {
				return nil, fmt.Errorf("failed to get type of cell %s!%s: %w", sheet, cell, err)
			}
			rec[field] = typedValue(cellType, row[colIdx])
		}

		records = append(records, rec)
	}

	return records, nil
}

// readRows returns the raw values of every row element in the sheet.
// Unlike GetRows it keeps trailing rows that carry no values.
func readRows(f *excelize.File, sheet string) ([][]string, error) {
	it, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheet, err)
	}

	var rows [][]string
	for it.Next() {
		cols, err := it.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			_ = it.Close()
			return nil, fmt.Errorf("failed to read row %d of sheet %q: %w", len(rows)+1, sheet, err)
		}
		rows = append(rows, cols)
	}
	if err := it.Error(); err != nil {
		_ = it.Close()
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheet, err)
	}
	if err := it.Close(); err != nil {
		return nil, fmt.Errorf("failed to close rows of sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func typedValue(cellType excelize.CellType, raw string) any {
	switch cellType {
	case excelize.CellTypeBool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
		return raw
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if i, err := strconv.Atoi(raw); err == nil {
			return i
		}
		if fv, err := strconv.ParseFloat(raw, 64); err == nil {
			return fv
		}
		return raw
	default:
		return raw
	}
}

// columns returns the schema fields followed by any extra record keys in sorted order.
func columns(fields []string, records []model.Record) []string {
	known := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		known[f] = struct{}{}
	}

	var extras []string
	for _, rec := range records {
		for k := range rec {
			if _, ok := known[k]; !ok {
				known[k] = struct{}{}
				extras = append(extras, k)
			}
		}
	}
	sort.Strings(extras)

	out := make([]string, 0, len(fields)+len(extras))
	out = append(out, fields...)
	return append(out, extras...)
}

// encodeSheet writes a header row and one row per record. Empty values leave the
// cell unset; every record row gets an explicit height so a row with no values
// still exists in the saved sheet.
func encodeSheet(f *excelize.File, sheet string, fields []string, records []model.Record) error {
	for colIdx, field := range fields {
		cell, err := excelize.CoordinatesToCellName(colIdx+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, field); err != nil {
			return fmt.Errorf("failed to write header %q: %w", field, err)
		}
	}

	for i, rec := range records {
		rowNum := i + 2
		if err := f.SetRowHeight(sheet, rowNum, recordRowHeight); err != nil {
			return fmt.Errorf("failed to mark row %d: %w", rowNum, err)
		}
		for colIdx, field := range fields {
			v, ok := rec[field]
			if !ok || v == nil || v == "" {
				continue
			}
			value := cellValue(v)
			if s, ok := value.(string); ok {
				if n := cellChars(s); n > excelize.TotalCellChars {
					return fmt.Errorf("%w: field %q of record %d has %d characters, limit %d",
						ErrValueTooLong, field, i, n, excelize.TotalCellChars)
				}
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}
	return nil
}

// cellChars counts UTF-16 code units, the unit of the workbook cell limit.
func cellChars(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func cellValue(v any) any {
	switch v.(type) {
	case string, bool, int, int64, float64:
		return v
	default:
		return model.FormatValue(v)
	}
}

// replaceSheet swaps the content of sheet for the given records, leaving every other sheet untouched.
func replaceSheet(f *excelize.File, sheet string, fields []string, records []model.Record) error {
	if hasSheet(f, pendingSheet) {
		if err := f.DeleteSheet(pendingSheet); err != nil {
			return fmt.Errorf("failed to drop stale pending sheet: %w", err)
		}
	}
	if _, err := f.NewSheet(pendingSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := encodeSheet(f, pendingSheet, fields, records); err != nil {
		return err
	}

	if hasSheet(f, sheet) {
		if err := f.DeleteSheet(sheet); err != nil {
			return fmt.Errorf("failed to drop sheet %q: %w", sheet, err)
		}
	}
	if err := f.SetSheetName(pendingSheet, sheet); err != nil {
		return fmt.Errorf("failed to rename sheet to %q: %w", sheet, err)
	}
	return nil
}
