package excel

import (
	"fmt"

	"asepower/domain/core"
	"asepower/domain/design"
)

// LoadDesign reads a CSV, TSV or XLSX design file.
func LoadDesign(path string) (*design.Table, error) {
	data, err := NewDataReader(path).ReadData()
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", core.ErrInvalidDesign, path, err)
	}
	return design.FromRows(path, data.Headers, data.Maps())
}
