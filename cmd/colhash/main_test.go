package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colhash/codec"
	"colhash/core"
	"colhash/vectorized"
)

func createTestParquet(t *testing.T, dir string) string {
	t.Helper()
	coords, err := vectorized.Compose([]string{"latitude", "longitude"}, []*vectorized.Vector{
		vectorized.FromSlice([]float64{57.64911, 57.64911}),
		vectorized.FromSlice([]float64{10.40744, 10.40744}),
	})
	require.NoError(t, err)

	path := filepath.Join(dir, "input.parquet")
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, core.WriteParquet(file, []string{"name", "coords"}, []*vectorized.Vector{
		vectorized.FromSlice([]string{"abc", "colhash"}),
		coords,
	}))
	return path
}

// run parses args and runs the selected command, returning what it printed
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	stdout = &out
	defer func() { stdout = os.Stdout }()

	var cli CLI
	parser, err := newParser(&cli)
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	if err != nil {
		return "", err
	}
	err = ctx.Run(&cli.Globals)
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	out, err := run(t, "list", "--family", "geohash")
	require.NoError(t, err)
	assert.Contains(t, out, "ghash_encode")
	assert.Contains(t, out, "STRUCT{longitude,latitude}")
	assert.NotContains(t, out, "md5")
}

func TestSchemaCommand(t *testing.T) {
	out, err := run(t, "schema", "ghash_neighbors", "--input", "code:string")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "code STRUCT", lines[0])
	assert.Equal(t, "  n STRING", lines[1])

	_, err = run(t, "schema", "md5", "--input", "code")
	assert.Error(t, err)
}

func TestApplyCommand(t *testing.T) {
	dir := t.TempDir()
	input := createTestParquet(t, dir)

	out, err := run(t, "apply", "md5", "--file", input, "--column", "name", "--as", "h")
	require.NoError(t, err)
	assert.Equal(t, "h\n"+codec.Md5("abc")+"\n"+codec.Md5("colhash")+"\n", out)

	out, err = run(t, "apply", "ghash_encode", "-f", input, "-c", "coords", "--precision", "11", "--format", "jsonl")
	require.NoError(t, err)
	assert.Contains(t, out, `{"coords":"u4pruydqqvj"}`)

	out, err = run(t, "apply", "xxhash64", "-f", input, "-c", "name", "--seed", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "name\n")

	_, err = run(t, "apply", "sha3_shake128", "-f", input, "-c", "name")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing keyword argument: length")

	_, err = run(t, "apply", "md5", "-f", input, "-c", "name", "--format", "xml")
	assert.Error(t, err)
}

func TestQueryCommandToFile(t *testing.T) {
	dir := t.TempDir()
	input := createTestParquet(t, dir)
	target := filepath.Join(dir, "out.csv.zst")

	_, err := run(t, "query", "-f", input, "--out", target, "--compress", "zstd",
		"SELECT md5(name) AS h, ghash_encode(coords, 5) AS g FROM t")
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "colhash version "+version+"\n", out)
}
