package dto

// Table is a parsed spreadsheet. Row values keep whatever type the parser
// produced (string, float64, bool, time.Time) and must be coerced before use.
type Table struct {
	Header []string
	Rows   []map[string]any
}
