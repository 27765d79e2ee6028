package vectorized

// GeometryNaming is the versioned field naming of a coordinate composite.
// Callers pick one explicitly; lookups never fall back to the other.
type GeometryNaming struct {
	Version   string
	Latitude  string
	Longitude string
}

var (
	// NamingV1 is the lat/long convention of early releases.
	NamingV1 = GeometryNaming{Version: "v1", Latitude: "lat", Longitude: "long"}
	// NamingV2 is the latitude/longitude convention, the default.
	NamingV2 = GeometryNaming{Version: "v2", Latitude: "latitude", Longitude: "longitude"}
)

// ParseGeometryNaming returns the naming for a version string ("v1" or "v2", "" is v2)
func ParseGeometryNaming(version string) (GeometryNaming, error) {
	switch version {
	case "", NamingV2.Version:
		return NamingV2, nil
	case NamingV1.Version:
		return NamingV1, nil
	default:
		return GeometryNaming{}, InvalidOperation("unknown geometry naming %q", version)
	}
}

// DecodeFields is the field order of decoded coordinates
var DecodeFields = []string{"longitude", "latitude"}

// NeighborFields is the field order of neighbor codes
var NeighborFields = []string{"n", "ne", "e", "se", "s", "sw", "w", "nw"}

// Coordinates is a geometry composite split into its two sub-columns
type Coordinates struct {
	Latitude  *Vector
	Longitude *Vector
}

// Decompose extracts the latitude and longitude sub-columns of a STRUCT
// vector by exact name. A missing field is an error, not a null.
func Decompose(v *Vector, naming GeometryNaming) (*Coordinates, error) {
	if v.DataType != STRUCT {
		return nil, InvalidOperation("expected struct input with fields %q and %q, got %s",
			naming.Latitude, naming.Longitude, v.DataType)
	}
	lat, ok := v.FieldByName(naming.Latitude)
	if !ok {
		return nil, InvalidOperation("field %q not found in struct", naming.Latitude)
	}
	long, ok := v.FieldByName(naming.Longitude)
	if !ok {
		return nil, InvalidOperation("field %q not found in struct", naming.Longitude)
	}
	coords := &Coordinates{Latitude: lat, Longitude: long}
	if v.Nulls.HasNulls() {
		coords.Latitude = withParentNulls(lat, v.Nulls)
		coords.Longitude = withParentNulls(long, v.Nulls)
	}
	return coords, nil
}

// Float64 coerces both sub-columns to FLOAT64
func (c *Coordinates) Float64() (*Coordinates, error) {
	lat, err := ToFloat64(c.Latitude, "Latitude")
	if err != nil {
		return nil, err
	}
	long, err := ToFloat64(c.Longitude, "Longitude")
	if err != nil {
		return nil, err
	}
	return &Coordinates{Latitude: lat, Longitude: long}, nil
}

// Compose assembles equal-length columns into a STRUCT vector, keeping the
// given field names and order.
func Compose(names []string, fields []*Vector) (*Vector, error) {
	if len(names) != len(fields) {
		return nil, InvalidOperation("%d field names for %d columns", len(names), len(fields))
	}
	length := 0
	if len(fields) > 0 {
		length = fields[0].Length
	}
	schema := &Schema{Fields: make([]*Field, len(fields))}
	for i, f := range fields {
		if f.Length != length {
			return nil, InvalidOperation("field %q has %d rows, expected %d", names[i], f.Length, length)
		}
		schema.Fields[i] = f.Field(names[i])
	}
	return &Vector{
		DataType: STRUCT,
		Length:   length,
		Nulls:    NewNullMask(),
		Schema:   schema,
		Children: fields,
	}, nil
}

// withParentNulls returns a shallow copy of child whose mask also holds the
// parent's null rows.
func withParentNulls(child *Vector, parent *NullMask) *Vector {
	merged := child.Nulls.Clone()
	merged.bits.Or(parent.bits)
	clone := *child
	clone.Nulls = merged
	return &clone
}
