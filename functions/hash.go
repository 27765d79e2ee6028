package functions

import (
	"fmt"
	"math"

	"colhash/codec"
	"colhash/vectorized"
)

// Option configures a single evaluation call
type Option = vectorized.Option

// digest hashes a STRING column, or a BINARY one when bin is set
func digest[R vectorized.Primitive](v *vectorized.Vector, text func(string) R, bin func([]byte) R, policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
	if bin != nil && isBinary(v) {
		return vectorized.Unary(v, policy, vectorized.Total(bin), opts...)
	}
	return vectorized.Unary(v, policy, vectorized.Total(text), opts...)
}

// Sha1 hashes a STRING column with SHA-1
func Sha1(v *vectorized.Vector, opts ...Option) (*vectorized.Vector, error) {
	return digest[string](v, codec.Sha1, nil, vectorized.Propagate, opts)
}

// Sha2_224 hashes a STRING column with SHA-224
func Sha2_224(v *vectorized.Vector, opts ...Option) (*vectorized.Vector, error) {
	return digest[string](v, codec.Sha2_224, nil, vectorized.Propagate, opts)
}

// Sha2_256 hashes a STRING column with SHA-256
func Sha2_256(v *vectorized.Vector, opts ...Option) (*vectorized.Vector, error) {
	return digest[string](v, codec.Sha2_256, nil, vectorized.Propagate, opts)
}

// Sha2_384 hashes a STRING column with SHA-384
func Sha2_384(v *vectorized.Vector, opts ...Option) (*vectorized.Vector, error) {
	return digest[string](v, codec.Sha2_384, nil, vectorized.Propagate, opts)
}

// Sha2_512 hashes a STRING column with SHA-512
func Sha2_512(v *vectorized.Vector, opts ...Option) (*vectorized.Vector, error) {
	return digest[string](v, codec.Sha2_512, nil, vectorized.Propagate, opts)
}

// Sha3_224 hashes a STRING column with SHA3-224
func Sha3_224(v *vectorized.Vector, opts ...Option) (*vectorized.Vector, error) {
	return digest[string](v, codec.Sha3_224, nil, vectorized.Propagate, opts)
}

// Sha3_256 hashes a STRING column with SHA3-256
func Sha3_256(v *vectorized.Vector, opts ...Option) (*vectorized.Vector, error) {
	return digest[string](v, codec.Sha3_256, nil, vectorized.Propagate, opts)
}

// Sha3_384 hashes a STRING column with SHA3-384
func Sha3_384(v *vectorized.Vector, opts ...Option) (*vectorized.Vector, error) {
	return digest[string](v, codec.Sha3_384, nil, vectorized.Propagate, opts)
}

// Sha3_512 hashes a STRING column with SHA3-512
func Sha3_512(v *vectorized.Vector, opts ...Option) (*vectorized.Vector, error) {
	return digest[string](v, codec.Sha3_512, nil, vectorized.Propagate, opts)
}

// Sha3Shake128 returns cfg.Length bytes of SHAKE128 output per row, hex encoded.
func Sha3Shake128(v *vectorized.Vector, cfg LengthConfig, opts ...Option) (*vectorized.Vector, error) {
	return shake128(v, cfg, vectorized.Propagate, opts)
}

func shake128(v *vectorized.Vector, cfg LengthConfig, policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return vectorized.Unary(v, policy, vectorized.Fallible(func(s string) (string, error) {
		return codec.Shake128(s, cfg.Length)
	}), opts...)
}

// Blake3 hashes a STRING or BINARY column
func Blake3(v *vectorized.Vector, opts ...Option) (*vectorized.Vector, error) {
	return digest(v, codec.Blake3, codec.Blake3Bytes, vectorized.Propagate, opts)
}

// Md5 hashes a STRING or BINARY column
func Md5(v *vectorized.Vector, opts ...Option) (*vectorized.Vector, error) {
	return digest(v, codec.Md5, codec.Md5Bytes, vectorized.Propagate, opts)
}

// Wyhash hashes a STRING or BINARY column to UINT64
func Wyhash(v *vectorized.Vector, opts ...Option) (*vectorized.Vector, error) {
	return digest(v, codec.WyhashString, codec.Wyhash, vectorized.Propagate, opts)
}

func isBinary(v *vectorized.Vector) bool {
	return v.DataType == vectorized.BINARY || v.DataType == vectorized.FIXED_BINARY
}

// Murmur32 is MurmurHash3 x86 32-bit with a 32-bit seed
func Murmur32(v *vectorized.Vector, cfg SeedConfig, opts ...Option) (*vectorized.Vector, error) {
	if _, err := cfg.seed32(); err != nil {
		return nil, err
	}
	return murmur32(v, vectorized.Broadcast("seed", cfg.Seed), vectorized.Propagate, opts)
}

// Murmur128 is MurmurHash3 x64 128-bit with a 32-bit seed, as 16 bytes
func Murmur128(v *vectorized.Vector, cfg SeedConfig, opts ...Option) (*vectorized.Vector, error) {
	if _, err := cfg.seed32(); err != nil {
		return nil, err
	}
	return murmur128(v, vectorized.Broadcast("seed", cfg.Seed), vectorized.Propagate, opts)
}

// Xxhash32 is XXH32 with a 32-bit seed
func Xxhash32(v *vectorized.Vector, cfg SeedConfig, opts ...Option) (*vectorized.Vector, error) {
	if _, err := cfg.seed32(); err != nil {
		return nil, err
	}
	return xxhash32(v, vectorized.Broadcast("seed", cfg.Seed), vectorized.Propagate, opts)
}

// Xxhash64 is XXH64 with a 64-bit seed
func Xxhash64(v *vectorized.Vector, cfg SeedConfig, opts ...Option) (*vectorized.Vector, error) {
	return xxhash64(v, vectorized.Broadcast("seed", cfg.Seed), vectorized.Propagate, opts)
}

// Xxh3_64 is XXH3 64-bit with a 64-bit seed
func Xxh3_64(v *vectorized.Vector, cfg SeedConfig, opts ...Option) (*vectorized.Vector, error) {
	return xxh3_64(v, vectorized.Broadcast("seed", cfg.Seed), vectorized.Propagate, opts)
}

// Xxh3_128 is XXH3 128-bit with a 64-bit seed, as 16 bytes
func Xxh3_128(v *vectorized.Vector, cfg SeedConfig, opts ...Option) (*vectorized.Vector, error) {
	return xxh3_128(v, vectorized.Broadcast("seed", cfg.Seed), vectorized.Propagate, opts)
}

type seededFn func(*vectorized.Vector, vectorized.Param[uint64], vectorized.NullPolicy, []Option) (*vectorized.Vector, error)

func murmur32(v *vectorized.Vector, seed vectorized.Param[uint64], policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
	return seeded32(v, seed, codec.Murmur32, policy, opts)
}

func murmur128(v *vectorized.Vector, seed vectorized.Param[uint64], policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
	return seeded32(v, seed, codec.Murmur128, policy, opts)
}

func xxhash32(v *vectorized.Vector, seed vectorized.Param[uint64], policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
	return seeded32(v, seed, codec.Xxhash32, policy, opts)
}

func xxhash64(v *vectorized.Vector, seed vectorized.Param[uint64], policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
	return seeded64(v, seed, codec.Xxhash64, policy, opts)
}

func xxh3_64(v *vectorized.Vector, seed vectorized.Param[uint64], policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
	return seeded64(v, seed, codec.Xxh3_64, policy, opts)
}

func xxh3_128(v *vectorized.Vector, seed vectorized.Param[uint64], policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
	return seeded64(v, seed, codec.Xxh3_128, policy, opts)
}

func seeded32[R vectorized.Primitive](v *vectorized.Vector, seed vectorized.Param[uint64], fn func(string, uint32) R, policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
	if s, ok := seed.Broadcasted(); ok && s > math.MaxUint32 {
		return nil, vectorized.InvalidOperation("seed %d does not fit 32 bits", s)
	}
	return vectorized.BinaryParam(v, seed, policy, func(s string, seed uint64) (R, bool, error) {
		if seed > math.MaxUint32 {
			var zero R
			return zero, false, fmt.Errorf("seed %d does not fit 32 bits", seed)
		}
		return fn(s, uint32(seed)), true, nil
	}, opts...)
}

func seeded64[R vectorized.Primitive](v *vectorized.Vector, seed vectorized.Param[uint64], fn func(string, uint64) R, policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
	return vectorized.BinaryParam(v, seed, policy, func(s string, seed uint64) (R, bool, error) {
		return fn(s, seed), true, nil
	}, opts...)
}

// seedColumn turns an integer seed column into a seed parameter for rows rows.
// Negative seeds are rejected with their row.
func seedColumn(v *vectorized.Vector, rows int) (vectorized.Param[uint64], error) {
	ints, err := vectorized.ToInt64(v)
	if err != nil {
		return vectorized.Param[uint64]{}, vectorized.InvalidOperation("seed input needs to be integer")
	}
	values, _ := vectorized.Values[int64](ints)
	seeds := make([]uint64, len(values))
	for i, s := range values {
		if ints.IsNull(i) {
			continue
		}
		if s < 0 {
			return vectorized.Param[uint64]{}, vectorized.InvalidOperationAt(i, "seed must not be negative, got %d", s)
		}
		seeds[i] = uint64(s)
	}
	column := vectorized.FromSlice(seeds)
	column.Nulls = ints.Nulls.Clone()
	return vectorized.ResolveParam[uint64]("seed", column, rows)
}
