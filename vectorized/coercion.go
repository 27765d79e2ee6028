package vectorized

// ToFloat64 normalizes a floating point column to FLOAT64.
//
// field names the operand in the error message, e.g. "Latitude".
func ToFloat64(v *Vector, field string) (*Vector, error) {
	switch v.DataType {
	case FLOAT64:
		return v, nil
	case FLOAT32:
		return widen[float32, float64](v, FLOAT64)
	default:
		return nil, InvalidOperation("%s input needs to be float", field)
	}
}

// ToInt64 normalizes a signed integer column to INT64
func ToInt64(v *Vector) (*Vector, error) {
	switch v.DataType {
	case INT64:
		return v, nil
	case INT32:
		return widen[int32, int64](v, INT64)
	case INT16:
		return widen[int16, int64](v, INT64)
	case INT8:
		return widen[int8, int64](v, INT64)
	default:
		return nil, InvalidOperation("Length input needs to be integer")
	}
}

func widen[From int8 | int16 | int32 | float32, To int64 | float64](v *Vector, to DataType) (*Vector, error) {
	src, err := Values[From](v)
	if err != nil {
		return nil, InvalidOperation("%v", err)
	}
	dst := make([]To, len(src))
	for i, x := range src {
		dst[i] = To(x)
	}
	return &Vector{
		DataType: to,
		Data:     dst,
		Length:   v.Length,
		Nulls:    v.Nulls.Clone(),
	}, nil
}
