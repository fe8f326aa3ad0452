package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andreyxaxa/Candidate-Verifier/internal/dto"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/types/errs"
	"github.com/xuri/excelize/v2"
)

const (
	extXLSX = ".xlsx"
	extCSV  = ".csv"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extensions lists the file extensions Read understands.
var Extensions = []string{extXLSX, extCSV}

type Reader struct{}

func New() *Reader {
	return &Reader{}
}

// Read parses the first worksheet of an .xlsx workbook or a .csv file.
// The first non-blank row is the header; blank data rows are skipped.
// When a header repeats, the leftmost column wins.
func (r *Reader) Read(fileName string, data []byte) (*dto.Table, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case extXLSX:
		t, err := readXLSX(data)
		if err != nil {
			return nil, fmt.Errorf("Reader - Read - readXLSX: %w", err)
		}
		return t, nil
	case extCSV:
		t, err := readCSV(data)
		if err != nil {
			return nil, fmt.Errorf("Reader - Read - readCSV: %w", err)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("Reader - Read - %q: %w", filepath.Ext(fileName), errs.ErrUnsupportedFormat)
	}
}

func readXLSX(data []byte) (*dto.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: excelize.OpenReader: %w", errs.ErrUnsupportedFormat, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &dto.Table{}, nil
	}
	sheet := sheets[0]

	formatted, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("f.GetRows: %w", err)
	}

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("f.GetRows raw: %w", err)
	}

	// numeric cells shown in General format keep their raw number, so long
	// phone numbers never come back in exponent form; dates stay formatted
	cell := func(row, col int) (any, error) {
		v := formatted[row][col]
		if v == "" {
			return v, nil
		}

		name, err := excelize.CoordinatesToCellName(col+1, row+1)
		if err != nil {
			return nil, fmt.Errorf("excelize.CoordinatesToCellName: %w", err)
		}

		typ, err := f.GetCellType(sheet, name)
		if err != nil {
			return nil, fmt.Errorf("f.GetCellType: %w", err)
		}

		switch typ {
		case excelize.CellTypeBool:
			return v == "TRUE" || v == "1", nil
		case excelize.CellTypeNumber, excelize.CellTypeUnset:
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				return v, nil
			}
			if row < len(raw) && col < len(raw[row]) {
				if n, err := strconv.ParseFloat(raw[row][col], 64); err == nil {
					return n, nil
				}
			}
		}

		return v, nil
	}

	return buildTable(formatted, cell)
}

func readCSV(data []byte) (*dto.Table, error) {
	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: csv.Read: %w", errs.ErrUnsupportedFormat, err)
		}
		records = append(records, rec)
	}

	return buildTable(records, func(row, col int) (any, error) {
		return records[row][col], nil
	})
}

func buildTable(rows [][]string, cell func(row, col int) (any, error)) (*dto.Table, error) {
	t := &dto.Table{}

	headerRow := -1
	for i, row := range rows {
		if !isBlank(row) {
			headerRow = i
			break
		}
	}
	if headerRow < 0 {
		return t, nil
	}

	t.Header = rows[headerRow]

	for i := headerRow + 1; i < len(rows); i++ {
		if isBlank(rows[i]) {
			continue
		}

		values := make(map[string]any, len(t.Header))
		for col, name := range t.Header {
			if name == "" {
				continue
			}
			if _, dup := values[name]; dup {
				continue
			}

			if col >= len(rows[i]) {
				values[name] = ""
				continue
			}

			v, err := cell(i, col)
			if err != nil {
				return nil, err
			}
			values[name] = v
		}

		t.Rows = append(t.Rows, values)
	}

	return t, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}

	return true
}
