package vectorized

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveParam(t *testing.T) {
	t.Run("Broadcast", func(t *testing.T) {
		p, err := ResolveParam[int64]("Length", FromSlice([]int64{5}), 100)
		require.NoError(t, err)
		v, ok := p.Broadcasted()
		assert.True(t, ok)
		assert.Equal(t, int64(5), v)
		assert.Equal(t, "Length", p.Name())
	})

	t.Run("BroadcastNull", func(t *testing.T) {
		_, err := ResolveParam[int64]("Length", FromOptional([]*int64{nil}), 100)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingOperand)
		assert.Equal(t, -1, RowOf(err))
		assert.Contains(t, err.Error(), "Length may not be null")
	})

	t.Run("PerRow", func(t *testing.T) {
		p, err := ResolveParam[int64]("Length", FromOptional([]*int64{ptr(int64(1)), nil}), 2)
		require.NoError(t, err)
		assert.False(t, p.IsBroadcast())
		_, ok := p.at(1)
		assert.False(t, ok)
		v, ok := p.at(0)
		assert.True(t, ok)
		assert.Equal(t, int64(1), v)
	})

	t.Run("WrongLength", func(t *testing.T) {
		_, err := ResolveParam[int64]("Length", FromSlice([]int64{1, 2}), 3)
		assert.ErrorIs(t, err, ErrInvalidOperation)
	})

	t.Run("WrongKind", func(t *testing.T) {
		_, err := ResolveParam[int64]("seed", FromSlice([]string{"1"}), 1)
		assert.ErrorIs(t, err, ErrInvalidOperation)
	})
}

func TestOperationError(t *testing.T) {
	err := WithOp(MissingOperand(3, "Length", "Length cannot be null"), "ghash_encode")
	assert.Equal(t, "missing operand: ghash_encode: row 3: Length cannot be null", err.Error())

	cause := assert.AnError
	err = ComputeError(2, cause)
	assert.ErrorIs(t, err, ErrCompute)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrMissingOperand)

	// a codec may classify its own failure
	err = ComputeError(4, InvalidOperation("expected resolution between 1 and 15, got 16"))
	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.Equal(t, 4, RowOf(err))

	assert.Equal(t, -1, RowOf(assert.AnError))
	assert.Same(t, cause, WithOp(cause, "md5"))
}

func TestNullPolicyString(t *testing.T) {
	assert.Equal(t, "PROPAGATE", Propagate.String())
	assert.Equal(t, "FAIL_ON_MISSING_OPERAND", FailOnMissingOperand.String())
	assert.Equal(t, "UNKNOWN", NullPolicy(9).String())
}
