package functions

import "colhash/vectorized"

// GeohashDecodeOutput declares the output of ghash_decode for an input field:
// a struct named like the input with FLOAT64 fields longitude and latitude.
func GeohashDecodeOutput(input *vectorized.Field) *vectorized.Field {
	return compositeField(input.Name, vectorized.DecodeFields, vectorized.FLOAT64)
}

// GeohashNeighborsOutput declares the output of ghash_neighbors for an input
// field: a struct named like the input with STRING fields n, ne, e, se, s, sw, w, nw.
func GeohashNeighborsOutput(input *vectorized.Field) *vectorized.Field {
	return compositeField(input.Name, vectorized.NeighborFields, vectorized.STRING)
}

func compositeField(name string, fields []string, dataType vectorized.DataType) *vectorized.Field {
	out := &vectorized.Field{
		Name:     name,
		DataType: vectorized.STRUCT,
		Nullable: true,
		Children: make([]*vectorized.Field, len(fields)),
	}
	for i, f := range fields {
		out.Children[i] = &vectorized.Field{Name: f, DataType: dataType, Nullable: true}
	}
	return out
}
