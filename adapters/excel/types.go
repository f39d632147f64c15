package excel

// RawRowData represents a row of raw data as header-keyed string values
type RawRowData map[string]string

// ExcelData represents the complete dataset read from a sheet or delimited file
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// Maps returns the rows as plain maps.
func (d *ExcelData) Maps() []map[string]string {
	out := make([]map[string]string, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r
	}
	return out
}
