package core

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"reflect"
	"time"

	"github.com/parquet-go/parquet-go"
	"howett.net/ranger"

	"colhash/vectorized"
)

// ParquetReader loads parquet columns from a local file or an HTTP(S) URL
// into vectors.
type ParquetReader struct {
	filePath string
	schema   *parquet.Schema
	reader   *parquet.File
	closer   io.Closer
}

// NewParquetReader opens filePath, which may be a local path or an http(s) URL
func NewParquetReader(filePath string) (*ParquetReader, error) {
	if IsHTTPURL(filePath) {
		return newHTTPParquetReader(filePath)
	}
	return newLocalParquetReader(filePath)
}

// IsHTTPURL reports whether path is an http or https URL
func IsHTTPURL(path string) bool {
	u, err := url.Parse(path)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// NewParquetReaderFrom reads parquet data of the given size from r
func NewParquetReaderFrom(r io.ReaderAt, size int64, name string) (*ParquetReader, error) {
	file, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	return &ParquetReader{
		filePath: name,
		schema:   file.Schema(),
		reader:   file,
	}, nil
}

func newLocalParquetReader(filePath string) (*ParquetReader, error) {
	tracer := GetTracer()
	startTime := time.Now()

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to get file stats: %w", err)
	}

	pr, err := NewParquetReaderFrom(file, stat.Size(), filePath)
	if err != nil {
		file.Close()
		return nil, err
	}
	pr.closer = file

	tracer.Info(TraceComponentParquet, "Parquet reader initialized", TraceContext(
		"file", filePath,
		"size_bytes", stat.Size(),
		"row_groups", len(pr.reader.RowGroups()),
		"total_rows", pr.reader.NumRows(),
		"elapsed_ms", time.Since(startTime).Milliseconds(),
	))
	return pr, nil
}

func newHTTPParquetReader(urlStr string) (*ParquetReader, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	httpRanger := &ranger.HTTPRanger{URL: parsedURL}
	reader, err := ranger.NewReader(httpRanger)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP reader: %w", err)
	}
	length, err := reader.Length()
	if err != nil {
		return nil, fmt.Errorf("failed to get HTTP content length: %w", err)
	}

	GetTracer().Info(TraceComponentParquet, "Opening remote Parquet file", TraceContext(
		"url", urlStr,
		"size_bytes", length,
	))
	return NewParquetReaderFrom(reader, length, urlStr)
}

// Close releases the underlying file, if any
func (pr *ParquetReader) Close() error {
	if pr.closer != nil {
		return pr.closer.Close()
	}
	return nil
}

// GetColumnNames returns the top-level column names
func (pr *ParquetReader) GetColumnNames() []string {
	var names []string
	for _, field := range pr.schema.Fields() {
		names = append(names, field.Name())
	}
	return names
}

// GetRowCount returns the number of rows in the file
func (pr *ParquetReader) GetRowCount() int {
	return int(pr.reader.NumRows())
}

// Fields maps the top-level parquet columns to vector fields
func (pr *ParquetReader) Fields() ([]*vectorized.Field, error) {
	var fields []*vectorized.Field
	for _, f := range pr.schema.Fields() {
		field, err := fieldFromParquet(f)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// Field returns the vector field of a top-level column
func (pr *ParquetReader) Field(name string) (*vectorized.Field, error) {
	fields, err := pr.Fields()
	if err != nil {
		return nil, err
	}
	for _, f := range fields {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("column %q not found in %s", name, pr.filePath)
}

// ReadColumns reads the named top-level columns into vectors, in the order given
func (pr *ParquetReader) ReadColumns(names ...string) ([]*vectorized.Vector, error) {
	tracer := GetTracer()
	startTime := time.Now()

	fields := make([]*vectorized.Field, len(names))
	for i, name := range names {
		f, err := pr.Field(name)
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}

	values := make([][]interface{}, len(names))
	reader := parquet.NewReader(pr.reader)
	defer reader.Close()

	count := 0
	for {
		rowData := make(map[string]interface{})
		if err := reader.Read(&rowData); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to read row %d: %w", count, err)
		}
		for i, name := range names {
			values[i] = append(values[i], rowData[name])
		}
		count++
	}

	columns := make([]*vectorized.Vector, len(names))
	for i, f := range fields {
		v, err := buildVector(f, values[i])
		if err != nil {
			return nil, fmt.Errorf("failed to load column %s: %w", f.Name, err)
		}
		columns[i] = v
	}

	tracer.Debug(TraceComponentParquet, "Columns loaded", TraceContext(
		"file", pr.filePath,
		"columns", names,
		"rows", count,
		"elapsed_ms", time.Since(startTime).Milliseconds(),
	))
	return columns, nil
}

// fieldFromParquet maps a parquet node onto a vector field
func fieldFromParquet(f parquet.Field) (*vectorized.Field, error) {
	field := &vectorized.Field{Name: f.Name(), Nullable: f.Optional()}
	if f.Repeated() {
		return nil, fmt.Errorf("repeated column %s is not supported", f.Name())
	}
	if !f.Leaf() {
		field.DataType = vectorized.STRUCT
		for _, child := range f.Fields() {
			c, err := fieldFromParquet(child)
			if err != nil {
				return nil, err
			}
			field.Children = append(field.Children, c)
		}
		return field, nil
	}

	t := f.Type()
	lt := t.LogicalType()
	switch t.Kind() {
	case parquet.Boolean:
		field.DataType = vectorized.BOOLEAN
	case parquet.Int32:
		field.DataType = vectorized.INT32
		if lt != nil && lt.Integer != nil {
			switch {
			case !lt.Integer.IsSigned:
				field.DataType = vectorized.UINT32
			case lt.Integer.BitWidth == 8:
				field.DataType = vectorized.INT8
			case lt.Integer.BitWidth == 16:
				field.DataType = vectorized.INT16
			}
		}
	case parquet.Int64:
		field.DataType = vectorized.INT64
		if lt != nil && lt.Integer != nil && !lt.Integer.IsSigned {
			field.DataType = vectorized.UINT64
		}
	case parquet.Float:
		field.DataType = vectorized.FLOAT32
	case parquet.Double:
		field.DataType = vectorized.FLOAT64
	case parquet.ByteArray:
		field.DataType = vectorized.BINARY
		if lt != nil && lt.UTF8 != nil {
			field.DataType = vectorized.STRING
		}
	case parquet.FixedLenByteArray:
		field.DataType = vectorized.FIXED_BINARY
		field.Width = t.Length()
	default:
		return nil, fmt.Errorf("column %s has unsupported type %s", f.Name(), t)
	}
	return field, nil
}

// buildVector assembles row values read from parquet into a vector of field's type
func buildVector(field *vectorized.Field, values []interface{}) (*vectorized.Vector, error) {
	if field.DataType == vectorized.STRUCT {
		names := make([]string, len(field.Children))
		children := make([]*vectorized.Vector, len(field.Children))
		for c, child := range field.Children {
			names[c] = child.Name
			childValues := make([]interface{}, len(values))
			for i, v := range values {
				if m, ok := v.(map[string]interface{}); ok {
					childValues[i] = m[child.Name]
				}
			}
			vec, err := buildVector(child, childValues)
			if err != nil {
				return nil, err
			}
			children[c] = vec
		}
		v, err := vectorized.Compose(names, children)
		if err != nil {
			return nil, err
		}
		v.Length = len(values)
		for i, x := range values {
			if x == nil {
				v.SetNull(i)
			}
		}
		return v, nil
	}

	v := vectorized.NewVector(field.DataType, len(values))
	v.Width = field.Width
	for i, x := range values {
		if x == nil {
			v.SetNull(i)
			continue
		}
		if err := assign(v, i, x); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return v, nil
}

func assign(v *vectorized.Vector, i int, x interface{}) error {
	switch data := v.Data.(type) {
	case []string:
		switch s := x.(type) {
		case string:
			data[i] = s
		case []byte:
			data[i] = string(s)
		default:
			return fmt.Errorf("cannot convert %T to string", x)
		}
	case [][]byte:
		switch b := x.(type) {
		case []byte:
			data[i] = b
		case string:
			data[i] = []byte(b)
		default:
			rv := reflect.ValueOf(x)
			if rv.Kind() != reflect.Array || rv.Type().Elem().Kind() != reflect.Uint8 {
				return fmt.Errorf("cannot convert %T to bytes", x)
			}
			out := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(out), rv)
			data[i] = out
		}
	case []bool:
		b, ok := x.(bool)
		if !ok {
			return fmt.Errorf("cannot convert %T to bool", x)
		}
		data[i] = b
	case []float32:
		f, err := toFloat64(x)
		if err != nil {
			return err
		}
		data[i] = float32(f)
	case []float64:
		f, err := toFloat64(x)
		if err != nil {
			return err
		}
		data[i] = f
	case []int8, []int16, []int32, []int64, []uint32, []uint64:
		n, err := toInt64(x)
		if err != nil {
			return err
		}
		switch data := data.(type) {
		case []int8:
			data[i] = int8(n)
		case []int16:
			data[i] = int16(n)
		case []int32:
			data[i] = int32(n)
		case []int64:
			data[i] = n
		case []uint32:
			data[i] = uint32(n)
		case []uint64:
			data[i] = uint64(n)
		}
	default:
		return fmt.Errorf("unsupported vector type %s", v.DataType)
	}
	return nil
}

func toInt64(x interface{}) (int64, error) {
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to integer", x)
	}
}

func toFloat64(x interface{}) (float64, error) {
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to float", x)
	}
}
