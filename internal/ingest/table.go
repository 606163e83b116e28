package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

// columnGapMin is the horizontal gap, in PDF points, that separates two
// table cells on the same row. Word spacing inside a cell stays well below
// this; column gutters in statement layouts stay well above it.
const columnGapMin = 8.0

// RawTable is a rectangular table of string cells produced by a source
// extractor. Headers are normalized and kept in source order; each row maps
// a normalized header to the cell text. Cells are plain text with no type
// coercion, so currency formatting and leading zeros survive into the
// money and date parsers unchanged.
type RawTable struct {
	Headers []string
	Rows    []map[string]string
}

// ExtractTable produces a raw table from file bytes, dispatching on the
// file extension. An unrecognized extension is a fatal input error.
func ExtractTable(data []byte, filename string) (*RawTable, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		return extractCSV(data)
	case ".xls", ".xlsx":
		return extractWorkbook(data)
	case ".pdf":
		return extractPDF(data)
	default:
		return nil, &Error{
			Code:    ErrUnsupportedFormat,
			Message: fmt.Sprintf("unsupported file type %q", ext),
		}
	}
}

func extractCSV(data []byte) (*RawTable, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // bank exports have ragged footer rows
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, &Error{Code: ErrUnreadableSource, Message: "read delimited text", Cause: err}
	}
	if len(records) < 1 {
		return nil, &Error{Code: ErrEmptyTable, Message: "no rows in delimited text"}
	}
	return buildTable(records[0], records[1:]), nil
}

func extractWorkbook(data []byte) (*RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &Error{Code: ErrUnreadableSource, Message: "open workbook", Cause: err}
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &Error{Code: ErrUnreadableSource, Message: "read workbook rows", Cause: err}
	}
	if len(rows) < 1 {
		return nil, &Error{Code: ErrEmptyTable, Message: "no rows in workbook"}
	}
	return buildTable(rows[0], rows[1:]), nil
}

// extractPDF scans each page independently for one extractable table and
// concatenates the page tables. The first detected row of each page is that
// page's header; pages contributing no extractable table are skipped
// silently. The pdf library panics on malformed documents, so the whole
// pass runs behind a recover.
func extractPDF(data []byte) (t *RawTable, err error) {
	defer func() {
		if r := recover(); r != nil {
			t = nil
			err = &Error{
				Code:    ErrUnreadableSource,
				Message: fmt.Sprintf("panic during PDF table extraction: %v", r),
			}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &Error{Code: ErrUnreadableSource, Message: "open PDF", Cause: err}
	}

	var headers []string
	var rows []map[string]string

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		cells := pageTableCells(page)
		if len(cells) < 2 {
			// No header plus at least one data row: not a table.
			continue
		}

		pageHeaders := make([]string, len(cells[0]))
		for i, h := range cells[0] {
			pageHeaders[i] = NormalizeHeader(h)
		}
		for _, h := range pageHeaders {
			if !containsString(headers, h) {
				headers = append(headers, h)
			}
		}

		for _, cellRow := range cells[1:] {
			row := make(map[string]string, len(pageHeaders))
			for i := 0; i < len(pageHeaders) && i < len(cellRow); i++ {
				row[pageHeaders[i]] = cellRow[i]
			}
			rows = append(rows, row)
		}
	}

	if len(rows) == 0 {
		return nil, &Error{Code: ErrEmptyTable, Message: "no extractable table on any page"}
	}
	return dropEmptyColumns(&RawTable{Headers: headers, Rows: rows}), nil
}

// pageTableCells reconstructs table cells from one PDF page. Words on a row
// are already sorted left to right; a new cell starts wherever the gap to
// the previous word exceeds the column gutter threshold.
func pageTableCells(page pdf.Page) [][]string {
	rows, err := page.GetTextByRow()
	if err != nil {
		return nil
	}

	var out [][]string
	for _, row := range rows {
		var cells []string
		var cell []string
		var prevEnd float64

		for i, word := range row.Content {
			if strings.TrimSpace(word.S) == "" {
				continue
			}
			if i > 0 && len(cell) > 0 && word.X-prevEnd > columnGapMin {
				cells = append(cells, strings.Join(cell, " "))
				cell = cell[:0]
			}
			cell = append(cell, strings.TrimSpace(word.S))
			prevEnd = word.X + word.W
		}
		if len(cell) > 0 {
			cells = append(cells, strings.Join(cell, " "))
		}
		if len(cells) > 1 {
			out = append(out, cells)
		}
	}
	return out
}

// buildTable normalizes headers, zips data rows against them and drops
// columns that are empty across every row.
func buildTable(headerCells []string, dataRows [][]string) *RawTable {
	headers := make([]string, len(headerCells))
	for i, h := range headerCells {
		headers[i] = NormalizeHeader(h)
	}

	rows := make([]map[string]string, 0, len(dataRows))
	for _, record := range dataRows {
		row := make(map[string]string, len(headers))
		for i := 0; i < len(headers) && i < len(record); i++ {
			row[headers[i]] = record[i]
		}
		rows = append(rows, row)
	}

	return dropEmptyColumns(&RawTable{Headers: headers, Rows: rows})
}

func dropEmptyColumns(t *RawTable) *RawTable {
	kept := t.Headers[:0]
	for _, h := range t.Headers {
		empty := true
		for _, row := range t.Rows {
			if strings.TrimSpace(row[h]) != "" {
				empty = false
				break
			}
		}
		if !empty {
			kept = append(kept, h)
		} else {
			for _, row := range t.Rows {
				delete(row, h)
			}
		}
	}
	t.Headers = kept
	return t
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
