package codec

import (
	"encoding/binary"

	oneofone "github.com/OneOfOne/xxhash"
	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/wyhash"
	"github.com/zeebo/xxh3"
)

// Wyhash hashes b with seed 0
func Wyhash(b []byte) uint64 {
	return wyhash.Hash(b, 0)
}

// WyhashString hashes s with seed 0
func WyhashString(s string) uint64 {
	return wyhash.HashString(s, 0)
}

// Murmur32 is MurmurHash3 x86 32-bit
func Murmur32(s string, seed uint32) uint32 {
	return murmur3.Sum32WithSeed([]byte(s), seed)
}

// Murmur128 is MurmurHash3 x64 128-bit, both halves little-endian, first half first.
func Murmur128(s string, seed uint32) []byte {
	h1, h2 := murmur3.Sum128WithSeed([]byte(s), seed)
	return putHalves(h1, h2)
}

// Xxhash32 is XXH32
func Xxhash32(s string, seed uint32) uint32 {
	return oneofone.Checksum32S([]byte(s), seed)
}

// Xxhash64 is XXH64
func Xxhash64(s string, seed uint64) uint64 {
	if seed == 0 {
		return xxhash.Sum64String(s)
	}
	d := xxhash.NewWithSeed(seed)
	_, _ = d.WriteString(s)
	return d.Sum64()
}

// Xxh3_64 is XXH3 64-bit
func Xxh3_64(s string, seed uint64) uint64 {
	return xxh3.HashStringSeed(s, seed)
}

// Xxh3_128 is XXH3 128-bit, low half first, both halves little-endian.
func Xxh3_128(s string, seed uint64) []byte {
	h := xxh3.HashString128Seed(s, seed)
	return putHalves(h.Lo, h.Hi)
}

func putHalves(first, second uint64) []byte {
	out := make([]byte, 16)
	binary.LittleEndian.PutUint64(out[:8], first)
	binary.LittleEndian.PutUint64(out[8:], second)
	return out
}
