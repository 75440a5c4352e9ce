package frame

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// WriteCSV writes the frame to a CSV file with a header row.
func (f *Frame) WriteCSV(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("create csv file %q: %w", filePath, err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	header := make([]string, len(f.columns))
	for i, column := range f.columns {
		header[i] = column.Name
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(f.columns))
	for _, row := range f.rows {
		for i, value := range row {
			record[i] = formatValue(value)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return file.Close()
}

// ReadCSV reads a headered CSV file into a frame, inferring each column's
// type from its values: int64, then float64, then bool, falling back to
// string.
func ReadCSV(filePath string) (*Frame, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open csv file %q: %w", filePath, err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %q: %w", filePath, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv %q has no header row", filePath)
	}

	header := records[0]
	body := records[1:]
	columns := make([]Column, len(header))
	for i, name := range header {
		values := make([]string, 0, len(body))
		for _, record := range body {
			values = append(values, record[i])
		}
		columns[i] = Column{Name: name, Type: inferType(values)}
	}

	frame, err := New(columns...)
	if err != nil {
		return nil, err
	}
	for rowIndex, record := range body {
		row := make([]any, len(columns))
		for i, raw := range record {
			value, err := parseValue(raw, columns[i].Type)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", rowIndex+1, columns[i].Name, err)
			}
			row[i] = value
		}
		if err := frame.AppendRow(row...); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

func formatValue(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return fmt.Sprint(typed)
	}
}

func inferType(values []string) Type {
	if len(values) == 0 {
		return TypeString
	}
	allInt, allFloat, allBool := true, true, true
	for _, raw := range values {
		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			allInt = false
		}
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			allFloat = false
		}
		if raw != "true" && raw != "false" {
			allBool = false
		}
	}
	switch {
	case allInt:
		return TypeInt64
	case allFloat:
		return TypeFloat64
	case allBool:
		return TypeBool
	default:
		return TypeString
	}
}

func parseValue(raw string, columnType Type) (any, error) {
	switch columnType {
	case TypeInt64:
		return strconv.ParseInt(raw, 10, 64)
	case TypeFloat64:
		return strconv.ParseFloat(raw, 64)
	case TypeBool:
		return strconv.ParseBool(raw)
	default:
		return raw, nil
	}
}
