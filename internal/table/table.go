// Package table reads and writes the delimited wide tables exchanged with
// the simulator and the fitting engine.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"asepower/domain/core"
)

// Delimiters used by the pipeline.
const (
	TSV = '\t'
	CSV = ','
)

// Table is a header plus string rows, all rows as wide as the header.
type Table struct {
	Path   string
	Header []string
	Rows   [][]string
}

// New creates an empty table with the given header.
func New(header []string) *Table {
	return &Table{Header: append([]string(nil), header...)}
}

// Read loads a delimited file.
func Read(path string, comma rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table %s: %w", path, err)
	}
	defer f.Close()

	t, err := Parse(f, comma)
	if err != nil {
		return nil, fmt.Errorf("%w in %s", err, path)
	}
	t.Path = path
	return t, nil
}

// Parse reads a delimited table from r.
func Parse(r io.Reader, comma rune) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSchemaMismatch, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no header row", core.ErrSchemaMismatch)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	return &Table{Header: header, Rows: records[1:]}, nil
}

// Len is the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of column name.
func (t *Table) Index(name string) (int, bool) {
	for i, h := range t.Header {
		if h == name {
			return i, true
		}
	}
	return -1, false
}

// Has reports whether column name exists.
func (t *Table) Has(name string) bool {
	_, ok := t.Index(name)
	return ok
}

// Column returns the raw values of column name.
func (t *Table) Column(name string) ([]string, error) {
	idx, ok := t.Index(name)
	if !ok {
		return nil, core.NewMissingColumnError(t.name(), name)
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Floats parses column name as numbers.
func (t *Table) Floats(name string) ([]float64, error) {
	raw, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(raw))
	for i, v := range raw {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, core.NewSchemaMismatchError(t.name(), fmt.Sprintf("row %d column %q value %q is not a number", i+1, name, v))
		}
		out[i] = f
	}
	return out, nil
}

// Append adds a row; it must be as wide as the header.
func (t *Table) Append(row []string) error {
	if len(row) != len(t.Header) {
		return core.NewSchemaMismatchError(t.name(), fmt.Sprintf("row has %d fields, header has %d", len(row), len(t.Header)))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Encode writes the table to w.
func (t *Table) Encode(w io.Writer, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// Write stores the table at path through a temporary file in the same
// directory, so readers never see a partial table.
func (t *Table) Write(path string, comma rune) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.temp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := t.Encode(tmp, comma); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move table into %s: %w", path, err)
	}
	return nil
}

func (t *Table) name() string {
	if t.Path == "" {
		return "<table>"
	}
	return t.Path
}
