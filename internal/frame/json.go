package frame

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// WriteJSON writes the frame as an array of records.
func (f *Frame) WriteJSON(filePath string) error {
	records := make([]map[string]any, 0, len(f.rows))
	for _, row := range f.rows {
		record := make(map[string]any, len(f.columns))
		for i, column := range f.columns {
			record[column.Name] = row[i]
		}
		records = append(records, record)
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal json records: %w", err)
	}
	if err := os.WriteFile(filePath, payload, 0o644); err != nil {
		return fmt.Errorf("write json file %q: %w", filePath, err)
	}
	return nil
}

// ReadJSON reads an array-of-records file into a frame.
func ReadJSON(filePath string) (*Frame, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open json file %q: %w", filePath, err)
	}
	defer func() { _ = file.Close() }()

	frame, err := DecodeJSON(file)
	if err != nil {
		return nil, fmt.Errorf("json %q: %w", filePath, err)
	}
	return frame, nil
}

// DecodeJSON reads an array-of-records stream into a frame. Column order is
// the first record's keys sorted alphabetically (JSON objects carry no
// order); types are inferred from the first record's values. Records missing
// a column are an error.
func DecodeJSON(r io.Reader) (*Frame, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	var records []map[string]any
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode json records: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no records")
	}

	names := make([]string, 0, len(records[0]))
	for name := range records[0] {
		names = append(names, name)
	}
	sort.Strings(names)

	columns := make([]Column, len(names))
	for i, name := range names {
		columnType, err := jsonValueType(records[0][name])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		columns[i] = Column{Name: name, Type: columnType}
	}

	frame, err := New(columns...)
	if err != nil {
		return nil, err
	}
	for recordIndex, record := range records {
		row := make([]any, len(columns))
		for i, column := range columns {
			raw, ok := record[column.Name]
			if !ok {
				return nil, fmt.Errorf("record %d missing column %q", recordIndex, column.Name)
			}
			value, err := jsonValue(raw, column.Type)
			if err != nil {
				return nil, fmt.Errorf("record %d column %q: %w", recordIndex, column.Name, err)
			}
			row[i] = value
		}
		if err := frame.AppendRow(row...); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

func jsonValueType(value any) (Type, error) {
	switch typed := value.(type) {
	case string:
		return TypeString, nil
	case bool:
		return TypeBool, nil
	case json.Number:
		if _, err := typed.Int64(); err == nil {
			return TypeInt64, nil
		}
		return TypeFloat64, nil
	default:
		return TypeString, fmt.Errorf("unsupported json value %v (%T)", value, value)
	}
}

func jsonValue(value any, columnType Type) (any, error) {
	switch columnType {
	case TypeInt64:
		number, ok := value.(json.Number)
		if !ok {
			return nil, fmt.Errorf("expected number, got %T", value)
		}
		return number.Int64()
	case TypeFloat64:
		number, ok := value.(json.Number)
		if !ok {
			return nil, fmt.Errorf("expected number, got %T", value)
		}
		return number.Float64()
	case TypeBool:
		flag, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", value)
		}
		return flag, nil
	default:
		text, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", value)
		}
		return text, nil
	}
}
