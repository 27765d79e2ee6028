package core

import (
	"fmt"
	"io"
	"time"

	"github.com/parquet-go/parquet-go"

	"colhash/vectorized"
)

// WriteParquet writes equal-length columns as one parquet file. STRUCT
// columns become optional groups; every leaf is optional so nulls survive.
// options are applied after the schema, e.g. parquet.Compression(&parquet.Zstd).
func WriteParquet(w io.Writer, names []string, columns []*vectorized.Vector, options ...parquet.WriterOption) error {
	tracer := GetTracer()
	startTime := time.Now()

	if len(names) != len(columns) {
		return fmt.Errorf("%d column names for %d columns", len(names), len(columns))
	}
	rows := 0
	if len(columns) > 0 {
		rows = columns[0].Length
	}

	group := parquet.Group{}
	for i, col := range columns {
		if col.Length != rows {
			return fmt.Errorf("column %s has %d rows, expected %d", names[i], col.Length, rows)
		}
		node, err := parquetNode(col)
		if err != nil {
			return fmt.Errorf("column %s: %w", names[i], err)
		}
		group[names[i]] = node
	}
	schema := parquet.NewSchema("ColhashResult", group)

	writerOptions := append([]parquet.WriterOption{&parquet.WriterConfig{Schema: schema}}, options...)
	writer := parquet.NewGenericWriter[map[string]interface{}](w, writerOptions...)

	records := make([]map[string]interface{}, rows)
	for r := 0; r < rows; r++ {
		record := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			record[names[i]] = rowValue(col, r)
		}
		records[r] = record
	}

	if _, err := writer.Write(records); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write records: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}

	tracer.Info(TraceComponentParquet, "Parquet result written", TraceContext(
		"columns", names,
		"rows", rows,
		"elapsed_ms", time.Since(startTime).Milliseconds(),
	))
	return nil
}

func parquetNode(v *vectorized.Vector) (parquet.Node, error) {
	switch v.DataType {
	case vectorized.STRING:
		return parquet.Optional(parquet.String()), nil
	case vectorized.BINARY, vectorized.FIXED_BINARY:
		return parquet.Optional(parquet.Leaf(parquet.ByteArrayType)), nil
	case vectorized.INT8:
		return parquet.Optional(parquet.Int(8)), nil
	case vectorized.INT16:
		return parquet.Optional(parquet.Int(16)), nil
	case vectorized.INT32:
		return parquet.Optional(parquet.Leaf(parquet.Int32Type)), nil
	case vectorized.INT64:
		return parquet.Optional(parquet.Leaf(parquet.Int64Type)), nil
	case vectorized.UINT32:
		return parquet.Optional(parquet.Uint(32)), nil
	case vectorized.UINT64:
		return parquet.Optional(parquet.Uint(64)), nil
	case vectorized.FLOAT32:
		return parquet.Optional(parquet.Leaf(parquet.FloatType)), nil
	case vectorized.FLOAT64:
		return parquet.Optional(parquet.Leaf(parquet.DoubleType)), nil
	case vectorized.BOOLEAN:
		return parquet.Optional(parquet.Leaf(parquet.BooleanType)), nil
	case vectorized.STRUCT:
		group := parquet.Group{}
		for i, child := range v.Children {
			node, err := parquetNode(child)
			if err != nil {
				return nil, err
			}
			group[v.Schema.Fields[i].Name] = node
		}
		return parquet.Optional(group), nil
	default:
		return nil, fmt.Errorf("unsupported type %s", v.DataType)
	}
}

// rowValue returns the Go value of row r, nil when null
func rowValue(v *vectorized.Vector, r int) interface{} {
	if v.IsNull(r) {
		return nil
	}
	switch data := v.Data.(type) {
	case []string:
		return data[r]
	case [][]byte:
		return data[r]
	case []int8:
		return data[r]
	case []int16:
		return data[r]
	case []int32:
		return data[r]
	case []int64:
		return data[r]
	case []uint32:
		return data[r]
	case []uint64:
		return data[r]
	case []float32:
		return data[r]
	case []float64:
		return data[r]
	case []bool:
		return data[r]
	}
	if v.DataType == vectorized.STRUCT {
		record := make(map[string]interface{}, len(v.Children))
		for i, child := range v.Children {
			record[v.Schema.Fields[i].Name] = rowValue(child, r)
		}
		return record
	}
	return nil
}
