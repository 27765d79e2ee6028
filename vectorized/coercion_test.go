package vectorized

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFloat64(t *testing.T) {
	t.Run("Float64PassesThrough", func(t *testing.T) {
		in := FromSlice([]float64{1.25, -3})
		out, err := ToFloat64(in, "Latitude")
		require.NoError(t, err)
		assert.Same(t, in, out)
	})

	t.Run("Float32Widened", func(t *testing.T) {
		in := FromOptional([]*float32{ptr(float32(1.5)), nil, ptr(float32(-0.25))})
		out, err := ToFloat64(in, "Latitude")
		require.NoError(t, err)
		assert.Equal(t, FLOAT64, out.DataType)
		assert.Equal(t, []float64{1.5, 0, -0.25}, out.Data)
		assert.Equal(t, []int{1}, out.Nulls.Positions())
		// the input mask is not shared
		out.SetNull(0)
		assert.False(t, in.IsNull(0))
	})

	t.Run("Idempotent", func(t *testing.T) {
		in := FromSlice([]float32{0.1, 2.5, 1e10})
		once, err := ToFloat64(in, "Longitude")
		require.NoError(t, err)
		twice, err := ToFloat64(once, "Longitude")
		require.NoError(t, err)
		assert.Equal(t, once.Data, twice.Data)
	})

	t.Run("Rejected", func(t *testing.T) {
		_, err := ToFloat64(FromSlice([]int64{1}), "Longitude")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidOperation)
		assert.Contains(t, err.Error(), "Longitude input needs to be float")
	})
}

func TestToInt64(t *testing.T) {
	tests := []struct {
		name string
		in   *Vector
	}{
		{"Int8", FromSlice([]int8{1, -2, 3})},
		{"Int16", FromSlice([]int16{1, -2, 3})},
		{"Int32", FromSlice([]int32{1, -2, 3})},
		{"Int64", FromSlice([]int64{1, -2, 3})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ToInt64(tt.in)
			require.NoError(t, err)
			assert.Equal(t, INT64, out.DataType)
			assert.Equal(t, []int64{1, -2, 3}, out.Data)
		})
	}

	for _, in := range []*Vector{FromSlice([]uint64{1}), FromSlice([]float64{1}), FromSlice([]string{"1"})} {
		_, err := ToInt64(in)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidOperation)
		assert.Contains(t, err.Error(), "Length input needs to be integer")
	}
}

func TestToInt64KeepsNulls(t *testing.T) {
	out, err := ToInt64(FromOptional([]*int16{nil, ptr(int16(4))}))
	require.NoError(t, err)
	assert.Equal(t, 2, out.Length)
	assert.True(t, out.IsNull(0))
	v, ok := out.GetInt64(1)
	assert.True(t, ok)
	assert.Equal(t, int64(4), v)
}
