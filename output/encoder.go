// Package output encodes result columns as CSV, JSON lines or parquet,
// optionally compressed.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"colhash/vectorized"
)

// Format is the encoding of a result stream
type Format int

const (
	FormatCSV Format = iota
	FormatJSONL
	FormatParquet
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatJSONL:
		return "jsonl"
	case FormatParquet:
		return "parquet"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ParseFormat maps a name such as "jsonl" to its Format
func ParseFormat(name string) (Format, error) {
	for f := FormatCSV; f <= FormatParquet; f++ {
		if strings.EqualFold(f.String(), name) {
			return f, nil
		}
	}
	return FormatCSV, fmt.Errorf("unsupported format: %s", name)
}

func checkColumns(names []string, columns []*vectorized.Vector) (int, error) {
	if len(names) != len(columns) {
		return 0, fmt.Errorf("%d column names for %d columns", len(names), len(columns))
	}
	rows := 0
	if len(columns) > 0 {
		rows = columns[0].Length
	}
	for i, c := range columns {
		if c.Length != rows {
			return 0, fmt.Errorf("column %s has %d rows, expected %d", names[i], c.Length, rows)
		}
	}
	return rows, nil
}

// EncodeCSV writes a header and one record per row. STRUCT columns are
// flattened to name.field columns; nulls are empty cells.
func EncodeCSV(w io.Writer, names []string, columns []*vectorized.Vector) error {
	rows, err := checkColumns(names, columns)
	if err != nil {
		return err
	}

	var header []string
	var leaves []leaf
	for i, c := range columns {
		header, leaves = flatten(names[i], c, nil, header, leaves)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, len(leaves))
	for r := 0; r < rows; r++ {
		for i, l := range leaves {
			record[i] = l.text(r)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// leaf is a non-struct column together with the structs enclosing it
type leaf struct {
	v       *vectorized.Vector
	parents []*vectorized.Vector
}

func (l leaf) text(r int) string {
	for _, p := range l.parents {
		if p.IsNull(r) {
			return ""
		}
	}
	return cellText(l.v, r)
}

func flatten(name string, v *vectorized.Vector, parents []*vectorized.Vector, header []string, leaves []leaf) ([]string, []leaf) {
	if v.DataType != vectorized.STRUCT {
		return append(header, name), append(leaves, leaf{v: v, parents: parents})
	}
	nested := append(append([]*vectorized.Vector(nil), parents...), v)
	for i, child := range v.Children {
		header, leaves = flatten(name+"."+v.Schema.Fields[i].Name, child, nested, header, leaves)
	}
	return header, leaves
}

func cellText(v *vectorized.Vector, r int) string {
	if v.IsNull(r) {
		return ""
	}
	switch data := v.Data.(type) {
	case []string:
		return data[r]
	case [][]byte:
		return hex.EncodeToString(data[r])
	case []int8:
		return strconv.FormatInt(int64(data[r]), 10)
	case []int16:
		return strconv.FormatInt(int64(data[r]), 10)
	case []int32:
		return strconv.FormatInt(int64(data[r]), 10)
	case []int64:
		return strconv.FormatInt(data[r], 10)
	case []uint32:
		return strconv.FormatUint(uint64(data[r]), 10)
	case []uint64:
		return strconv.FormatUint(data[r], 10)
	case []float32:
		return strconv.FormatFloat(float64(data[r]), 'g', -1, 32)
	case []float64:
		return strconv.FormatFloat(data[r], 'g', -1, 64)
	case []bool:
		return strconv.FormatBool(data[r])
	}
	return ""
}

// EncodeJSONL writes one JSON object per row with keys in column order.
// STRUCT columns become nested objects and binary values hex strings.
func EncodeJSONL(w io.Writer, names []string, columns []*vectorized.Vector) error {
	rows, err := checkColumns(names, columns)
	if err != nil {
		return err
	}
	var line bytes.Buffer
	for r := 0; r < rows; r++ {
		line.Reset()
		if err := writeObject(&line, names, columns, r); err != nil {
			return fmt.Errorf("row %d: %w", r, err)
		}
		line.WriteByte('\n')
		if _, err := w.Write(line.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func writeObject(buf *bytes.Buffer, names []string, columns []*vectorized.Vector, r int) error {
	buf.WriteByte('{')
	for i, c := range columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(names[i])
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := writeValue(buf, c, r); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeValue(buf *bytes.Buffer, v *vectorized.Vector, r int) error {
	if v.IsNull(r) {
		buf.WriteString("null")
		return nil
	}
	if v.DataType == vectorized.STRUCT {
		names := make([]string, len(v.Schema.Fields))
		for i, f := range v.Schema.Fields {
			names[i] = f.Name
		}
		return writeObject(buf, names, v.Children, r)
	}

	var value interface{}
	switch data := v.Data.(type) {
	case [][]byte:
		value = hex.EncodeToString(data[r])
	case []float64:
		if math.IsNaN(data[r]) || math.IsInf(data[r], 0) {
			buf.WriteString("null")
			return nil
		}
		value = data[r]
	case []float32:
		f := float64(data[r])
		if math.IsNaN(f) || math.IsInf(f, 0) {
			buf.WriteString("null")
			return nil
		}
		value = data[r]
	default:
		text := cellText(v, r)
		if v.DataType == vectorized.STRING {
			value = text
		} else {
			buf.WriteString(text)
			return nil
		}
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(raw)
	return nil
}
