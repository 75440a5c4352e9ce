package frame

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// EncodeParquet renders the frame as an in-memory parquet payload.
func (f *Frame) EncodeParquet() ([]byte, error) {
	schema, err := parquetSchema(f.columns)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]any, len(f.rows))
	for i, row := range f.rows {
		record := make(map[string]any, len(f.columns))
		for j, column := range f.columns {
			record[column.Name] = row[j]
		}
		rows[i] = record
	}

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[map[string]any](buf, schema)
	if _, err := writer.Write(rows); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteParquet writes the frame to a parquet file.
func (f *Frame) WriteParquet(filePath string) error {
	payload, err := f.EncodeParquet()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filePath, payload, 0o644); err != nil {
		return fmt.Errorf("write parquet file %q: %w", filePath, err)
	}
	return nil
}

// DecodeParquet reads a parquet payload into a frame. Columns follow the
// file schema's field order.
func DecodeParquet(data []byte) (*Frame, error) {
	file, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open parquet payload: %w", err)
	}

	fields := file.Schema().Fields()
	columns := make([]Column, len(fields))
	for i, field := range fields {
		columnType, err := typeForParquetKind(field.Type().Kind())
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", field.Name(), err)
		}
		columns[i] = Column{Name: field.Name(), Type: columnType}
	}

	frame, err := New(columns...)
	if err != nil {
		return nil, err
	}

	// The reader cannot derive a schema from a map type; hand it the
	// file's own schema.
	reader := parquet.NewGenericReader[map[string]any](bytes.NewReader(data), file.Schema())
	defer func() { _ = reader.Close() }()

	batch := make([]map[string]any, 64)
	for {
		for i := range batch {
			batch[i] = make(map[string]any, len(columns))
		}
		count, err := reader.Read(batch)
		for _, record := range batch[:count] {
			row := make([]any, len(columns))
			for i, column := range columns {
				row[i] = normalizeParquetValue(record[column.Name])
			}
			if err := frame.AppendRow(row...); err != nil {
				return nil, err
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read parquet rows: %w", err)
		}
	}
	return frame, nil
}

// ReadParquet reads a parquet file into a frame.
func ReadParquet(filePath string) (*Frame, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read parquet file %q: %w", filePath, err)
	}
	return DecodeParquet(data)
}

func parquetSchema(columns []Column) (*parquet.Schema, error) {
	group := parquet.Group{}
	for _, column := range columns {
		switch column.Type {
		case TypeString:
			group[column.Name] = parquet.String()
		case TypeInt64:
			group[column.Name] = parquet.Int(64)
		case TypeFloat64:
			group[column.Name] = parquet.Leaf(parquet.DoubleType)
		case TypeBool:
			group[column.Name] = parquet.Leaf(parquet.BooleanType)
		default:
			return nil, fmt.Errorf("column %q has unsupported type %s", column.Name, column.Type)
		}
	}
	return parquet.NewSchema("frame", group), nil
}

func typeForParquetKind(kind parquet.Kind) (Type, error) {
	switch kind {
	case parquet.ByteArray:
		return TypeString, nil
	case parquet.Int64:
		return TypeInt64, nil
	case parquet.Double:
		return TypeFloat64, nil
	case parquet.Boolean:
		return TypeBool, nil
	default:
		return TypeString, fmt.Errorf("unsupported parquet kind %v", kind)
	}
}

func normalizeParquetValue(value any) any {
	if raw, ok := value.([]byte); ok {
		return string(raw)
	}
	return value
}
