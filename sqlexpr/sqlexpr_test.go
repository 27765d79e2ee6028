package sqlexpr

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colhash/codec"
	"colhash/functions"
	"colhash/vectorized"
)

type memorySource map[string]*vectorized.Vector

func (m memorySource) ReadColumns(names ...string) ([]*vectorized.Vector, error) {
	out := make([]*vectorized.Vector, len(names))
	for i, name := range names {
		v, ok := m[name]
		if !ok {
			return nil, fmt.Errorf("column %q not found", name)
		}
		out[i] = v
	}
	return out, nil
}

func testSource(t *testing.T) memorySource {
	t.Helper()
	coords, err := vectorized.Compose([]string{"latitude", "longitude"}, []*vectorized.Vector{
		vectorized.FromSlice([]float64{57.64911, 57.64911}),
		vectorized.FromSlice([]float64{10.40744, 10.40744}),
	})
	require.NoError(t, err)
	return memorySource{
		"name":   vectorized.FromSlice([]string{"abc", ""}),
		"coords": coords,
	}
}

func TestParse(t *testing.T) {
	q, err := Parse(`SELECT md5(name) AS h, murmur32(name, 7), sha3_shake128(name, length => 16), name FROM people`)
	require.NoError(t, err)
	assert.Equal(t, "people", q.Source)
	require.Len(t, q.Projections, 4)

	assert.Equal(t, "md5", q.Projections[0].Function)
	assert.Equal(t, "h", q.Projections[0].OutputName())

	seeded := q.Projections[1]
	require.Len(t, seeded.Args, 2)
	assert.Equal(t, ColumnArg, seeded.Args[0].Kind)
	assert.Equal(t, ConstArg, seeded.Args[1].Kind)
	assert.Equal(t, int64(7), seeded.Args[1].Const)
	assert.Equal(t, "murmur32", seeded.OutputName())

	assert.Equal(t, map[string]interface{}{"length": int64(16)}, q.Projections[2].Kwargs)
	assert.Equal(t, "name", q.Projections[3].OutputName())
	assert.Equal(t, []string{"name"}, q.Columns())
}

func TestParseRejectsUnsupported(t *testing.T) {
	for _, sql := range []string{
		"SELECT md5(name) FROM t WHERE name = 'a'",
		"SELECT md5(name) FROM t LIMIT 1",
		"INSERT INTO t VALUES (1)",
		"SELECT md5(t.name) FROM t",
		"SELECT 1 + 2 FROM t",
		"SELECT md5(name) FROM t, u",
		"SELEC md5(name)",
	} {
		_, err := Parse(sql)
		assert.Error(t, err, sql)
	}
}

func TestExecute(t *testing.T) {
	exec := NewExecutor(functions.NewRegistry())
	res, err := exec.Execute(context.Background(),
		`SELECT md5(name) AS h, md5(name), xxhash64(name, 42), ghash_encode(coords, 11) AS g, name FROM t`,
		testSource(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"h", "md5", "xxhash64", "g", "name"}, res.Names)
	h, _ := res.Columns[0].GetString(0)
	assert.Equal(t, codec.Md5("abc"), h)

	x, _ := vectorized.Value[uint64](res.Columns[2], 1)
	assert.Equal(t, codec.Xxhash64("", 42), x)

	g, _ := res.Columns[3].GetString(1)
	assert.Equal(t, "u4pruydqqvj", g)
}

func TestExecuteBroadcastsLiterals(t *testing.T) {
	exec := NewExecutor(functions.NewRegistry())
	ctx := context.Background()
	src := testSource(t)

	res, err := exec.Execute(ctx, `SELECT uuid5_concat(name, '.org', namespace => 'dns') AS u FROM t`, src)
	require.NoError(t, err)
	ns, err := codec.ParseNamespace("dns")
	require.NoError(t, err)
	first, _ := res.Columns[0].GetString(0)
	assert.Equal(t, codec.UUID5(ns, "abc.org"), first)
	second, _ := res.Columns[0].GetString(1)
	assert.Equal(t, codec.UUID5(ns, ".org"), second)

	_, err = exec.Execute(ctx, `SELECT uuid5_concat(name, NULL, namespace => 'dns') FROM t`, src)
	assert.ErrorIs(t, err, vectorized.ErrMissingOperand)

	res, err = exec.Execute(ctx, `SELECT murmur32(name, 7) FROM t`, src)
	require.NoError(t, err)
	h, _ := vectorized.Value[uint32](res.Columns[0], 0)
	assert.Equal(t, codec.Murmur32("abc", 7), h)

	_, err = exec.Execute(ctx, `SELECT murmur32(name, 1099511627776) FROM t`, src)
	assert.ErrorIs(t, err, vectorized.ErrInvalidOperation)
}

func TestExecuteDuplicateNames(t *testing.T) {
	exec := NewExecutor(functions.NewRegistry())
	res, err := exec.Execute(context.Background(), `SELECT md5(name), md5(name) FROM t`, testSource(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"md5", "md5_1"}, res.Names)
}

func TestExecuteErrors(t *testing.T) {
	exec := NewExecutor(functions.NewRegistry())
	ctx := context.Background()
	src := testSource(t)

	_, err := exec.Execute(ctx, `SELECT md5(missing) FROM t`, src)
	assert.Error(t, err)

	_, err = exec.Execute(ctx, `SELECT nope(name) FROM t`, src)
	assert.ErrorIs(t, err, vectorized.ErrInvalidOperation)

	_, err = exec.Execute(ctx, `SELECT ghash_encode(coords, NULL) FROM t`, src)
	assert.ErrorIs(t, err, vectorized.ErrMissingOperand)

	_, err = exec.Execute(ctx, `SELECT uuid5(name, namespace => 'dns') FROM t`, src)
	assert.NoError(t, err)
}

func TestPlanCache(t *testing.T) {
	exec := NewExecutor(functions.NewRegistry())
	ctx := context.Background()
	src := testSource(t)
	sql := `SELECT md5(name) FROM t`

	_, err := exec.Execute(ctx, sql, src)
	require.NoError(t, err)
	_, err = exec.Execute(ctx, sql, src)
	require.NoError(t, err)

	stats := exec.Cache().Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate(), 1e-9)

	_, err = exec.Execute(ctx, `SELECT nope(`, src)
	assert.Error(t, err)
	assert.Equal(t, 1, exec.Cache().Len())
}

func TestPlanCacheEviction(t *testing.T) {
	cache := NewPlanCache(CacheConfig{MaxEntries: 2, Enabled: true})
	for _, sql := range []string{"a", "b", "c"} {
		cache.Put(&Query{RawSQL: sql})
	}
	_, ok := cache.Get("a")
	assert.False(t, ok)
	_, ok = cache.Get("c")
	assert.True(t, ok)
	assert.Equal(t, int64(1), cache.Stats().Evictions)

	cache.Clear()
	assert.Equal(t, 0, cache.Len())

	disabled := NewPlanCache(CacheConfig{})
	disabled.Put(&Query{RawSQL: "a"})
	_, ok = disabled.Get("a")
	assert.False(t, ok)
}
