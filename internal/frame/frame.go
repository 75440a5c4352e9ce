// Package frame holds small in-memory record batches and moves them between
// CSV, JSON and Parquet representations. It is the staging format for data
// on its way into the object store; anything analytical happens in the lake,
// not here.
package frame

import "fmt"

type Type int

const (
	TypeString Type = iota
	TypeInt64
	TypeFloat64
	TypeBool
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt64:
		return "int64"
	case TypeFloat64:
		return "float64"
	case TypeBool:
		return "bool"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

type Column struct {
	Name string
	Type Type
}

// Frame is an ordered set of typed columns with row-major storage.
type Frame struct {
	columns []Column
	rows    [][]any
}

func New(columns ...Column) (*Frame, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("at least one column is required")
	}
	seen := make(map[string]struct{}, len(columns))
	for _, column := range columns {
		if column.Name == "" {
			return nil, fmt.Errorf("column name is required")
		}
		if _, ok := seen[column.Name]; ok {
			return nil, fmt.Errorf("duplicate column %q", column.Name)
		}
		seen[column.Name] = struct{}{}
	}
	return &Frame{columns: append([]Column(nil), columns...)}, nil
}

func (f *Frame) Columns() []Column {
	return append([]Column(nil), f.columns...)
}

func (f *Frame) Len() int {
	return len(f.rows)
}

// AppendRow adds one row. Values must match the column count and types;
// plain ints are widened to int64.
func (f *Frame) AppendRow(values ...any) error {
	if len(values) != len(f.columns) {
		return fmt.Errorf("row has %d values, frame has %d columns", len(values), len(f.columns))
	}
	row := make([]any, len(values))
	for i, value := range values {
		coerced, err := coerceValue(value, f.columns[i].Type)
		if err != nil {
			return fmt.Errorf("column %q: %w", f.columns[i].Name, err)
		}
		row[i] = coerced
	}
	f.rows = append(f.rows, row)
	return nil
}

func (f *Frame) Row(index int) []any {
	return append([]any(nil), f.rows[index]...)
}

// Value returns the value at the given row for the named column.
func (f *Frame) Value(rowIndex int, column string) (any, bool) {
	for i, col := range f.columns {
		if col.Name == column {
			return f.rows[rowIndex][i], true
		}
	}
	return nil, false
}

func coerceValue(value any, columnType Type) (any, error) {
	switch columnType {
	case TypeString:
		if text, ok := value.(string); ok {
			return text, nil
		}
	case TypeInt64:
		switch typed := value.(type) {
		case int64:
			return typed, nil
		case int:
			return int64(typed), nil
		}
	case TypeFloat64:
		if number, ok := value.(float64); ok {
			return number, nil
		}
	case TypeBool:
		if flag, ok := value.(bool); ok {
			return flag, nil
		}
	}
	return nil, fmt.Errorf("value %v (%T) does not match column type %s", value, value, columnType)
}
