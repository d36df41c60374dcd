package dataset

import (
	"fmt"
	"strings"

	"datadigest/domain/core"
)

// ColumnType is the declared or inferred type of a column
type ColumnType string

const (
	TypeNumber  ColumnType = "number"
	TypeString  ColumnType = "string"
	TypeDate    ColumnType = "date"
	TypeBoolean ColumnType = "boolean"
)

// Valid reports whether t is one of the four supported column types
func (t ColumnType) Valid() bool {
	switch t {
	case TypeNumber, TypeString, TypeDate, TypeBoolean:
		return true
	}
	return false
}

// Kind returns the value variant that columns of type t hold
func (t ColumnType) Kind() Kind {
	switch t {
	case TypeNumber:
		return KindNumber
	case TypeDate:
		return KindTemporal
	case TypeBoolean:
		return KindFlag
	default:
		return KindText
	}
}

// Dataset is an immutable in-memory table. A new upload replaces it wholesale;
// nothing mutates it after NewDataset returns.
type Dataset struct {
	id      core.ID
	name    string
	columns []string
	index   map[string]int
	types   map[string]ColumnType
	cells   [][]Value
}

// NewDataset validates the column list and copies rows into a new Dataset.
// Cells whose variant does not match the column type are stored as Missing.
// Short rows are padded with Missing.
func NewDataset(name string, columns []string, types map[string]ColumnType, rows [][]Value) (*Dataset, error) {
	ds := &Dataset{
		id:      core.NewID(),
		name:    name,
		columns: make([]string, len(columns)),
		index:   make(map[string]int, len(columns)),
		types:   make(map[string]ColumnType, len(columns)),
		cells:   make([][]Value, 0, len(rows)),
	}

	for i, col := range columns {
		if strings.TrimSpace(col) == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, dup := ds.index[col]; dup {
			return nil, fmt.Errorf("duplicate column name %q", col)
		}
		t, ok := types[col]
		if !ok {
			return nil, fmt.Errorf("column %q has no type", col)
		}
		if !t.Valid() {
			return nil, fmt.Errorf("column %q has unsupported type %q", col, t)
		}
		ds.columns[i] = col
		ds.index[col] = i
		ds.types[col] = t
	}

	for r, row := range rows {
		if len(row) > len(columns) {
			return nil, fmt.Errorf("row %d has %d values for %d columns", r, len(row), len(columns))
		}
		cells := make([]Value, len(columns))
		for c := range row {
			if row[c].Kind() == ds.types[columns[c]].Kind() {
				cells[c] = row[c]
			}
		}
		ds.cells = append(ds.cells, cells)
	}

	return ds, nil
}

// ID returns the dataset identity used for memoization
func (d *Dataset) ID() core.ID { return d.id }

// Name returns the dataset display name
func (d *Dataset) Name() string { return d.name }

// Columns returns a copy of the ordered column names
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// ColumnTypes returns a copy of the column type mapping
func (d *Dataset) ColumnTypes() map[string]ColumnType {
	out := make(map[string]ColumnType, len(d.types))
	for k, v := range d.types {
		out[k] = v
	}
	return out
}

// Type returns the type of col
func (d *Dataset) Type(col string) (ColumnType, bool) {
	t, ok := d.types[col]
	return t, ok
}

// ColumnsOfType returns the columns of type t in column order
func (d *Dataset) ColumnsOfType(t ColumnType) []string {
	var out []string
	for _, col := range d.columns {
		if d.types[col] == t {
			out = append(out, col)
		}
	}
	return out
}

// RowCount returns the number of rows
func (d *Dataset) RowCount() int { return len(d.cells) }

// ColumnCount returns the number of columns
func (d *Dataset) ColumnCount() int { return len(d.columns) }

// Value returns the cell at row r in column col. Unknown columns and
// out-of-range rows yield Missing.
func (d *Dataset) Value(r int, col string) Value {
	c, ok := d.index[col]
	if !ok || r < 0 || r >= len(d.cells) {
		return Missing()
	}
	return d.cells[r][c]
}

// Column returns a copy of all cells of col in row order
func (d *Dataset) Column(col string) []Value {
	c, ok := d.index[col]
	if !ok {
		return nil
	}
	out := make([]Value, len(d.cells))
	for r := range d.cells {
		out[r] = d.cells[r][c]
	}
	return out
}

// Records renders up to limit rows as plain JSON records. limit <= 0 means all rows.
func (d *Dataset) Records(limit int) []map[string]interface{} {
	n := len(d.cells)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]map[string]interface{}, n)
	for r := 0; r < n; r++ {
		rec := make(map[string]interface{}, len(d.columns))
		for c, col := range d.columns {
			rec[col] = d.cells[r][c].Interface()
		}
		out[r] = rec
	}
	return out
}
