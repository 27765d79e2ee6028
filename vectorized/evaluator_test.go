package vectorized

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func upper(s string) string { return strings.ToUpper(s) }

func TestUnaryPreservesLength(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100} {
		t.Run(fmt.Sprintf("rows_%d", n), func(t *testing.T) {
			in := FromSlice(make([]string, n))
			out, err := Unary(in, Propagate, Total(upper))
			require.NoError(t, err)
			assert.Equal(t, n, out.Length)
			assert.Equal(t, STRING, out.DataType)
			assert.Equal(t, 0, out.NullCount())
		})
	}
}

func TestUnaryPropagateSkipsCodec(t *testing.T) {
	in := FromOptional([]*string{ptr("a"), nil, ptr("c"), nil})

	var calls int
	codec := func(s string) (string, bool, error) {
		calls++
		return upper(s), true, nil
	}

	out, err := Unary(in, Propagate, codec)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []int{1, 3}, out.Nulls.Positions())

	v, ok := out.GetString(0)
	assert.True(t, ok)
	assert.Equal(t, "A", v)
	_, ok = out.GetString(1)
	assert.False(t, ok)
}

func TestUnaryCodecMissing(t *testing.T) {
	in := FromSlice([]string{"keep", "drop"})
	out, err := Unary(in, Propagate, func(s string) (string, bool, error) {
		return s, s != "drop", nil
	})
	require.NoError(t, err)
	assert.False(t, out.IsNull(0))
	assert.True(t, out.IsNull(1))
}

func TestUnaryComputeError(t *testing.T) {
	in := FromSlice([]string{"ok", "bad", "bad"})
	_, err := Unary(in, Propagate, Fallible(func(s string) (string, error) {
		if s == "bad" {
			return "", errors.New("cannot encode")
		}
		return s, nil
	}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCompute)
	assert.Equal(t, 1, RowOf(err))
	assert.Contains(t, err.Error(), "cannot encode")
}

func TestUnaryWrongInputKind(t *testing.T) {
	_, err := Unary(FromSlice([]int64{1}), Propagate, Total(upper))
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestBinaryMismatchedLengths(t *testing.T) {
	a := FromSlice([]string{"a", "b", "c"})
	b := FromSlice([]string{"a", "b", "c", "d", "e"})
	concat := func(x, y string) (string, bool, error) { return x + y, true, nil }

	_, err := Binary(a, b, Propagate, concat)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.Contains(t, err.Error(), "3 vs 5")
}

func TestBinaryPolicies(t *testing.T) {
	a := FromOptional([]*string{ptr("a"), ptr("b"), nil})
	b := FromOptional([]*string{ptr("x"), nil, ptr("z")})
	concat := func(x, y string) (string, bool, error) { return x + y, true, nil }

	t.Run("Propagate", func(t *testing.T) {
		out, err := Binary(a, b, Propagate, concat)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, out.Nulls.Positions())
		v, _ := out.GetString(0)
		assert.Equal(t, "ax", v)
	})

	t.Run("FailOnMissingOperand", func(t *testing.T) {
		_, err := Binary(a, b, FailOnMissingOperand, concat, WithOperandNames("name", "suffix"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingOperand)

		var oe *OperationError
		require.ErrorAs(t, err, &oe)
		assert.Equal(t, 1, oe.Row)
		assert.Equal(t, "suffix", oe.Field)
		assert.Equal(t, "suffix cannot be null. Provided name: b, suffix: null", oe.Msg)
	})
}

func TestBinaryParamBroadcastEquivalence(t *testing.T) {
	in := FromOptional([]*string{ptr("a"), nil, ptr("ccc")})
	repeat := func(s string, n int64) (string, bool, error) {
		return strings.Repeat(s, int(n)), true, nil
	}

	scalar, err := ResolveParam[int64]("Length", FromSlice([]int64{3}), in.Length)
	require.NoError(t, err)
	require.True(t, scalar.IsBroadcast())

	column, err := ResolveParam[int64]("Length", FromSlice([]int64{3, 3, 3}), in.Length)
	require.NoError(t, err)
	require.False(t, column.IsBroadcast())

	fromScalar, err := BinaryParam(in, scalar, Propagate, repeat)
	require.NoError(t, err)
	fromColumn, err := BinaryParam(in, column, Propagate, repeat)
	require.NoError(t, err)

	assert.Equal(t, fromColumn.Data, fromScalar.Data)
	assert.Equal(t, fromColumn.Nulls.Positions(), fromScalar.Nulls.Positions())
}

func TestTernaryFailFast(t *testing.T) {
	lat := FromOptional([]*float64{ptr(1.0), ptr(2.0), nil, ptr(4.0)})
	long := FromSlice([]float64{1, 2, 3, 4})
	precision := Broadcast[int64]("Length", 5)

	var calls atomic.Int32
	codec := func(a, b float64, p int64) (string, bool, error) {
		calls.Add(1)
		return fmt.Sprint(a, b, p), true, nil
	}

	out, err := Ternary(lat, long, precision, FailOnMissingOperand, codec,
		WithOperandNames("latitude", "longitude"))
	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrMissingOperand)
	assert.Equal(t, 2, RowOf(err))
	assert.Contains(t, err.Error(), "latitude: null, longitude: 3, Length: 5")
	assert.Equal(t, int32(2), calls.Load())
}

func TestTernaryPerRowParameterMissing(t *testing.T) {
	lat := FromSlice([]float64{1, 2})
	long := FromSlice([]float64{1, 2})
	p, err := ResolveParam[int64]("Length", FromOptional([]*int64{ptr(int64(5)), nil}), 2)
	require.NoError(t, err)

	codec := func(a, b float64, p int64) (string, bool, error) { return "x", true, nil }

	_, err = Ternary(lat, long, p, FailOnMissingOperand, codec)
	require.Error(t, err)
	var oe *OperationError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "Length", oe.Field)
	assert.Equal(t, 1, oe.Row)

	out, err := Ternary(lat, long, p, Propagate, codec)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, out.Nulls.Positions())
}

func TestTernaryParamLengthMismatch(t *testing.T) {
	a := FromSlice([]float64{1, 2, 3})
	p, err := ResolveParam[int64]("Length", FromSlice([]int64{1, 2, 3}), 3)
	require.NoError(t, err)

	codec := func(a, b float64, p int64) (string, bool, error) { return "", true, nil }
	_, err = Ternary(a, FromSlice([]float64{1, 2}), p, Propagate, codec)
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestUnaryComposite(t *testing.T) {
	in := FromOptional([]*string{ptr("ab"), nil, ptr("cd")})
	split := func(s string) ([]string, error) {
		return []string{s[:1], s[1:]}, nil
	}

	out, err := UnaryComposite(in, []string{"head", "tail"}, Propagate, split)
	require.NoError(t, err)
	require.Equal(t, STRUCT, out.DataType)
	assert.Equal(t, 3, out.Length)
	assert.Equal(t, "head", out.Schema.Fields[0].Name)
	assert.Equal(t, "tail", out.Schema.Fields[1].Name)
	assert.True(t, out.IsNull(1))

	tail, ok := out.FieldByName("tail")
	require.True(t, ok)
	assert.True(t, tail.IsNull(1))
	v, _ := tail.GetString(2)
	assert.Equal(t, "d", v)
}

func TestUnaryCompositeEmpty(t *testing.T) {
	out, err := UnaryComposite(FromSlice([]string{}), NeighborFields, Propagate,
		func(s string) ([]string, error) { return nil, nil })
	require.NoError(t, err)
	assert.Equal(t, 0, out.Length)
	assert.Len(t, out.Children, len(NeighborFields))
}

func TestShardedRunLowestRowWins(t *testing.T) {
	n := 10_000
	in := FromSlice(make([]int64, n))
	values, _ := Values[int64](in)
	for i := range values {
		values[i] = int64(i)
	}

	codec := Fallible(func(v int64) (int64, error) {
		if v == 250 || v == 7_000 || v == 9_999 {
			return 0, fmt.Errorf("bad value %d", v)
		}
		return v * 2, nil
	})

	for i := 0; i < 20; i++ {
		_, err := Unary(in, Propagate, codec, WithParallelism(8), WithShardSize(100))
		require.Error(t, err)
		assert.Equal(t, 250, RowOf(err))
	}
}

func TestShardedRunMatchesSequential(t *testing.T) {
	n := 5_000
	ptrs := make([]*string, n)
	for i := range ptrs {
		if i%7 != 0 {
			ptrs[i] = ptr(fmt.Sprintf("row-%d", i))
		}
	}
	in := FromOptional(ptrs)

	seq, err := Unary(in, Propagate, Total(upper))
	require.NoError(t, err)
	par, err := Unary(in, Propagate, Total(upper), WithParallelism(4), WithShardSize(64))
	require.NoError(t, err)

	assert.Equal(t, seq.Data, par.Data)
	assert.Equal(t, seq.Nulls.Positions(), par.Nulls.Positions())
}

func TestShardedRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := FromSlice(make([]string, 1_000))
	_, err := Unary(in, Propagate, Total(upper),
		WithContext(ctx), WithParallelism(2), WithShardSize(10))
	assert.ErrorIs(t, err, context.Canceled)
}
