package functions

import (
	"colhash/codec"
	"colhash/vectorized"
)

// precisionName is the operand name of a geohash precision or H3 resolution
const precisionName = "Length"

// GeohashEncode encodes a latitude/longitude composite as geohash codes.
//
// precision may be nil (precision 12), a length-1 column broadcast to every
// row, or a column with one precision per row. Any missing latitude,
// longitude or precision fails the whole call.
func GeohashEncode(coords, precision *vectorized.Vector, opts ...Option) (*vectorized.Vector, error) {
	return geohashEncode(coords, precision, vectorized.FailOnMissingOperand, opts)
}

func geohashEncode(coords, precision *vectorized.Vector, policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
	lat, long, p, err := encodeOperands(coords, precision, codec.DefaultGeohashPrecision, opts)
	if err != nil {
		return nil, err
	}
	if v, ok := p.Broadcasted(); ok && (v < 1 || v > codec.MaxGeohashPrecision) {
		return nil, vectorized.InvalidOperation("invalid length specified: %d", v)
	}
	return vectorized.Ternary(lat, long, p, policy,
		func(lat, long float64, precision int64) (string, bool, error) {
			code, err := codec.GeohashEncode(lat, long, precision)
			return code, err == nil, err
		}, coordinateNames(opts)...)
}

// H3Encode returns the hex H3 cell of every coordinate at the given resolution (default 12).
// Like GeohashEncode, any missing operand fails the whole call.
func H3Encode(coords, resolution *vectorized.Vector, opts ...Option) (*vectorized.Vector, error) {
	return h3Encode(coords, resolution, vectorized.FailOnMissingOperand, opts)
}

func h3Encode(coords, resolution *vectorized.Vector, policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
	lat, long, p, err := encodeOperands(coords, resolution, codec.DefaultH3Resolution, opts)
	if err != nil {
		return nil, err
	}
	if v, ok := p.Broadcasted(); ok {
		if err := codec.CheckH3Resolution(v); err != nil {
			return nil, vectorized.InvalidOperation("%v", err)
		}
	}
	return vectorized.Ternary(lat, long, p, policy,
		func(lat, long float64, resolution int64) (string, bool, error) {
			if err := codec.CheckH3Resolution(resolution); err != nil {
				return "", false, vectorized.InvalidOperation("%v", err)
			}
			cell, err := codec.H3Encode(lat, long, resolution)
			return cell, err == nil, err
		}, coordinateNames(opts)...)
}

// GeohashDecode returns the cell centers of geohash codes as a composite of
// longitude and latitude, in that order.
func GeohashDecode(v *vectorized.Vector, opts ...Option) (*vectorized.Vector, error) {
	return geohashDecode(v, vectorized.Propagate, opts)
}

func geohashDecode(v *vectorized.Vector, policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
	return vectorized.UnaryComposite(v, vectorized.DecodeFields, policy,
		func(code string) ([]float64, error) {
			long, lat, err := codec.GeohashDecode(code)
			if err != nil {
				return nil, err
			}
			return []float64{long, lat}, nil
		}, opts...)
}

// GeohashNeighbors returns the eight neighbors of geohash codes as a composite
// of n, ne, e, se, s, sw, w and nw.
func GeohashNeighbors(v *vectorized.Vector, opts ...Option) (*vectorized.Vector, error) {
	return geohashNeighbors(v, vectorized.Propagate, opts)
}

func geohashNeighbors(v *vectorized.Vector, policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
	return vectorized.UnaryComposite(v, vectorized.NeighborFields, policy,
		codec.GeohashNeighbors, opts...)
}

// encodeOperands resolves the precision first, then the coordinates, so the
// integer check is reported before any field lookup.
func encodeOperands(coords, precision *vectorized.Vector, def int64, opts []Option) (lat, long *vectorized.Vector, p vectorized.Param[int64], err error) {
	p = vectorized.Broadcast(precisionName, def)
	if precision != nil {
		ints, err := vectorized.ToInt64(precision)
		if err != nil {
			return nil, nil, p, err
		}
		if p, err = vectorized.ResolveParam[int64](precisionName, ints, coords.Length); err != nil {
			return nil, nil, p, err
		}
	}

	c, err := vectorized.Decompose(coords, vectorized.GeometryNamingOf(opts...))
	if err != nil {
		return nil, nil, p, err
	}
	if c, err = c.Float64(); err != nil {
		return nil, nil, p, err
	}
	return c.Latitude, c.Longitude, p, nil
}

func coordinateNames(opts []Option) []Option {
	naming := vectorized.GeometryNamingOf(opts...)
	out := make([]Option, 0, len(opts)+1)
	out = append(out, opts...)
	return append(out, vectorized.WithOperandNames(naming.Latitude, naming.Longitude))
}
