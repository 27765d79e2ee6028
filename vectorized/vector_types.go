package vectorized

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// Schema defines the named fields of a struct vector or a result set
type Schema struct {
	Fields []*Field
}

// Field represents a column definition in the schema
type Field struct {
	Name     string
	DataType DataType
	Nullable bool
	Width    int      // Byte width for FIXED_BINARY
	Children []*Field // Sub-fields for STRUCT
}

// DataType represents the supported column kinds
type DataType int

const (
	INT8 DataType = iota
	INT16
	INT32
	INT64
	UINT32
	UINT64
	FLOAT32
	FLOAT64
	STRING
	BINARY
	FIXED_BINARY
	BOOLEAN
	STRUCT
)

// Vector represents a columnar, null-aware sequence of values.
//
// Data holds the type-specific backing slice ([]string, [][]byte, []int64, ...)
// whose length always equals Length. STRUCT vectors carry no Data; their rows
// live in Children, one vector per field of Schema, each of the parent's length.
type Vector struct {
	DataType DataType
	Data     interface{}
	Nulls    *NullMask
	Length   int
	Width    int
	Schema   *Schema
	Children []*Vector
}

// NullMask tracks null row positions in a roaring bitmap
type NullMask struct {
	bits *roaring.Bitmap
}

// Primitive enumerates the Go element types a non-struct vector can hold
type Primitive interface {
	int8 | int16 | int32 | int64 | uint32 | uint64 | float32 | float64 | string | bool | []byte
}

// NewNullMask creates an empty null mask
func NewNullMask() *NullMask {
	return &NullMask{bits: roaring.New()}
}

// IsNull checks if a position is marked null
func (nm *NullMask) IsNull(index int) bool {
	if nm == nil || nm.bits == nil {
		return false
	}
	return nm.bits.Contains(uint32(index))
}

// SetNull marks a position as null
func (nm *NullMask) SetNull(index int) {
	nm.bits.Add(uint32(index))
}

// SetNotNull clears the null mark of a position
func (nm *NullMask) SetNotNull(index int) {
	nm.bits.Remove(uint32(index))
}

// NullCount returns the number of null positions
func (nm *NullMask) NullCount() int {
	if nm == nil || nm.bits == nil {
		return 0
	}
	return int(nm.bits.GetCardinality())
}

// HasNulls returns true if there are any null values
func (nm *NullMask) HasNulls() bool {
	return nm.NullCount() > 0
}

// Clone returns an independent copy of the mask
func (nm *NullMask) Clone() *NullMask {
	if nm == nil || nm.bits == nil {
		return NewNullMask()
	}
	return &NullMask{bits: nm.bits.Clone()}
}

// Positions returns the null row indices in ascending order
func (nm *NullMask) Positions() []int {
	if nm == nil || nm.bits == nil {
		return nil
	}
	out := make([]int, 0, nm.bits.GetCardinality())
	it := nm.bits.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// nullMaskFromMissing builds a mask from a per-row missing flag slice
func nullMaskFromMissing(missing []bool) *NullMask {
	nm := NewNullMask()
	for i, m := range missing {
		if m {
			nm.bits.Add(uint32(i))
		}
	}
	return nm
}

// NewVector creates a new all-valid vector of the specified type and length
func NewVector(dataType DataType, length int) *Vector {
	vector := &Vector{
		DataType: dataType,
		Length:   length,
		Nulls:    NewNullMask(),
	}

	switch dataType {
	case INT8:
		vector.Data = make([]int8, length)
	case INT16:
		vector.Data = make([]int16, length)
	case INT32:
		vector.Data = make([]int32, length)
	case INT64:
		vector.Data = make([]int64, length)
	case UINT32:
		vector.Data = make([]uint32, length)
	case UINT64:
		vector.Data = make([]uint64, length)
	case FLOAT32:
		vector.Data = make([]float32, length)
	case FLOAT64:
		vector.Data = make([]float64, length)
	case STRING:
		vector.Data = make([]string, length)
	case BINARY, FIXED_BINARY:
		vector.Data = make([][]byte, length)
	case BOOLEAN:
		vector.Data = make([]bool, length)
	case STRUCT:
		vector.Schema = &Schema{}
	}

	return vector
}

// FromSlice wraps values in a vector with no nulls
func FromSlice[T Primitive](values []T) *Vector {
	return &Vector{
		DataType: dataTypeOf[T](),
		Data:     values,
		Length:   len(values),
		Nulls:    NewNullMask(),
	}
}

// FromOptional builds a vector where nil entries are null
func FromOptional[T Primitive](values []*T) *Vector {
	data := make([]T, len(values))
	nulls := NewNullMask()
	for i, v := range values {
		if v == nil {
			nulls.SetNull(i)
			continue
		}
		data[i] = *v
	}
	return &Vector{
		DataType: dataTypeOf[T](),
		Data:     data,
		Length:   len(values),
		Nulls:    nulls,
	}
}

// NewFixedBinaryVector creates a FIXED_BINARY vector; every non-null value must be width bytes
func NewFixedBinaryVector(width int, values [][]byte) (*Vector, error) {
	nulls := NewNullMask()
	for i, v := range values {
		if v == nil {
			nulls.SetNull(i)
			continue
		}
		if len(v) != width {
			return nil, fmt.Errorf("fixed binary value at row %d has %d bytes, expected %d", i, len(v), width)
		}
	}
	return &Vector{
		DataType: FIXED_BINARY,
		Data:     values,
		Length:   len(values),
		Width:    width,
		Nulls:    nulls,
	}, nil
}

// Values returns the typed backing slice of a vector
func Values[T Primitive](v *Vector) ([]T, error) {
	data, ok := v.Data.([]T)
	if !ok {
		return nil, fmt.Errorf("vector of type %s does not hold %T values", v.DataType, *new(T))
	}
	return data, nil
}

// Value retrieves row index of a vector; ok is false for null or out of range rows
func Value[T Primitive](v *Vector, index int) (T, bool) {
	var zero T
	if index < 0 || index >= v.Length || v.IsNull(index) {
		return zero, false
	}
	data, ok := v.Data.([]T)
	if !ok {
		return zero, false
	}
	return data[index], true
}

func dataTypeOf[T Primitive]() DataType {
	var zero T
	switch any(zero).(type) {
	case int8:
		return INT8
	case int16:
		return INT16
	case int32:
		return INT32
	case int64:
		return INT64
	case uint32:
		return UINT32
	case uint64:
		return UINT64
	case float32:
		return FLOAT32
	case float64:
		return FLOAT64
	case string:
		return STRING
	case bool:
		return BOOLEAN
	default:
		return BINARY
	}
}

// GetInt64 retrieves an int64 value from the vector
func (v *Vector) GetInt64(index int) (int64, bool) {
	if v.DataType != INT64 {
		return 0, false
	}
	return Value[int64](v, index)
}

// GetFloat64 retrieves a float64 value from the vector
func (v *Vector) GetFloat64(index int) (float64, bool) {
	if v.DataType != FLOAT64 {
		return 0, false
	}
	return Value[float64](v, index)
}

// GetString retrieves a string value from the vector
func (v *Vector) GetString(index int) (string, bool) {
	if v.DataType != STRING {
		return "", false
	}
	return Value[string](v, index)
}

// GetBytes retrieves a BINARY or FIXED_BINARY value from the vector
func (v *Vector) GetBytes(index int) ([]byte, bool) {
	if v.DataType != BINARY && v.DataType != FIXED_BINARY {
		return nil, false
	}
	return Value[[]byte](v, index)
}

// SetNull marks a position as null
func (v *Vector) SetNull(index int) {
	if index < v.Length {
		v.Nulls.SetNull(index)
	}
}

// IsNull checks if a position is null; a struct row is null when the parent mask says so
func (v *Vector) IsNull(index int) bool {
	return v.Nulls.IsNull(index)
}

// NullCount returns the number of null rows
func (v *Vector) NullCount() int {
	return v.Nulls.NullCount()
}

// FieldByName returns the child vector of a STRUCT vector by exact name
func (v *Vector) FieldByName(name string) (*Vector, bool) {
	if v.DataType != STRUCT || v.Schema == nil {
		return nil, false
	}
	for i, field := range v.Schema.Fields {
		if field.Name == name {
			return v.Children[i], true
		}
	}
	return nil, false
}

// Field describes the vector as a schema field with the given name
func (v *Vector) Field(name string) *Field {
	field := &Field{
		Name:     name,
		DataType: v.DataType,
		Nullable: true,
		Width:    v.Width,
	}
	if v.DataType == STRUCT && v.Schema != nil {
		for i, child := range v.Schema.Fields {
			field.Children = append(field.Children, v.Children[i].Field(child.Name))
		}
	}
	return field
}

// String returns the string representation of a data type
func (dt DataType) String() string {
	switch dt {
	case INT8:
		return "INT8"
	case INT16:
		return "INT16"
	case INT32:
		return "INT32"
	case INT64:
		return "INT64"
	case UINT32:
		return "UINT32"
	case UINT64:
		return "UINT64"
	case FLOAT32:
		return "FLOAT32"
	case FLOAT64:
		return "FLOAT64"
	case STRING:
		return "STRING"
	case BINARY:
		return "BINARY"
	case FIXED_BINARY:
		return "FIXED_BINARY"
	case BOOLEAN:
		return "BOOLEAN"
	case STRUCT:
		return "STRUCT"
	default:
		return "UNKNOWN"
	}
}

// ParseDataType maps a type name back to its DataType
func ParseDataType(name string) (DataType, error) {
	for dt := INT8; dt <= STRUCT; dt++ {
		if dt.String() == name {
			return dt, nil
		}
	}
	return 0, fmt.Errorf("unknown data type: %s", name)
}

// IsSignedInteger returns true for the signed integer kinds
func (dt DataType) IsSignedInteger() bool {
	switch dt {
	case INT8, INT16, INT32, INT64:
		return true
	default:
		return false
	}
}

// IsFloatingPoint returns true if the data type is floating point
func (dt DataType) IsFloatingPoint() bool {
	switch dt {
	case FLOAT32, FLOAT64:
		return true
	default:
		return false
	}
}
