package vectorized

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coordinates(t *testing.T, naming GeometryNaming, lat, long *Vector) *Vector {
	t.Helper()
	v, err := Compose([]string{naming.Latitude, naming.Longitude}, []*Vector{lat, long})
	require.NoError(t, err)
	return v
}

func TestDecompose(t *testing.T) {
	lat := FromSlice([]float64{57.64911, 1})
	long := FromSlice([]float32{10.5, 2})
	v := coordinates(t, NamingV2, lat, long)

	coords, err := Decompose(v, NamingV2)
	require.NoError(t, err)
	assert.Same(t, lat, coords.Latitude)
	assert.Same(t, long, coords.Longitude)

	widened, err := coords.Float64()
	require.NoError(t, err)
	assert.Equal(t, []float64{10.5, 2}, widened.Longitude.Data)
}

func TestDecomposeNamingIsExplicit(t *testing.T) {
	v := coordinates(t, NamingV1, FromSlice([]float64{1}), FromSlice([]float64{2}))

	_, err := Decompose(v, NamingV2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.Contains(t, err.Error(), `"latitude"`)

	coords, err := Decompose(v, NamingV1)
	require.NoError(t, err)
	f, _ := coords.Longitude.GetFloat64(0)
	assert.Equal(t, 2.0, f)
}

func TestDecomposeRejectsPlainColumn(t *testing.T) {
	_, err := Decompose(FromSlice([]float64{1}), NamingV2)
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestDecomposeRejectsNonFloat(t *testing.T) {
	v := coordinates(t, NamingV2, FromSlice([]float64{1}), FromSlice([]int64{2}))
	coords, err := Decompose(v, NamingV2)
	require.NoError(t, err)

	_, err = coords.Float64()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Longitude input needs to be float")
}

func TestDecomposeParentNulls(t *testing.T) {
	v := coordinates(t, NamingV2, FromSlice([]float64{1, 2}), FromSlice([]float64{3, 4}))
	v.SetNull(1)

	coords, err := Decompose(v, NamingV2)
	require.NoError(t, err)
	assert.True(t, coords.Latitude.IsNull(1))
	assert.True(t, coords.Longitude.IsNull(1))
	assert.False(t, coords.Latitude.IsNull(0))

	child, _ := v.FieldByName("latitude")
	assert.False(t, child.IsNull(1))
}

func TestComposeKeepsOrder(t *testing.T) {
	fields := make([]*Vector, len(NeighborFields))
	for i := range fields {
		fields[i] = FromSlice([]string{NeighborFields[i]})
	}
	v, err := Compose(NeighborFields, fields)
	require.NoError(t, err)

	names := make([]string, len(v.Schema.Fields))
	for i, f := range v.Schema.Fields {
		names[i] = f.Name
		assert.Equal(t, STRING, f.DataType)
	}
	assert.Equal(t, []string{"n", "ne", "e", "se", "s", "sw", "w", "nw"}, names)
}

func TestComposeLengthMismatch(t *testing.T) {
	_, err := Compose(DecodeFields, []*Vector{FromSlice([]float64{1}), FromSlice([]float64{1, 2})})
	assert.ErrorIs(t, err, ErrInvalidOperation)

	_, err = Compose(DecodeFields, []*Vector{FromSlice([]float64{1})})
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestParseGeometryNaming(t *testing.T) {
	n, err := ParseGeometryNaming("")
	require.NoError(t, err)
	assert.Equal(t, NamingV2, n)

	n, err = ParseGeometryNaming("v1")
	require.NoError(t, err)
	assert.Equal(t, "long", n.Longitude)

	_, err = ParseGeometryNaming("v3")
	assert.ErrorIs(t, err, ErrInvalidOperation)

	assert.Equal(t, NamingV1, GeometryNamingOf(WithGeometryNaming(NamingV1)))
	assert.Equal(t, NamingV2, GeometryNamingOf())
}
