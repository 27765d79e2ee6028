// Package codec binds the scalar algorithms driven by the vectorized engine.
// Every function works on a single row value and is safe for concurrent use.
package codec

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

// Sha1 returns the lowercase hex SHA-1 digest of s
func Sha1(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Sha2_224 returns the lowercase hex SHA-224 digest of s
func Sha2_224(s string) string {
	sum := sha256.Sum224([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Sha2_256 returns the lowercase hex SHA-256 digest of s
func Sha2_256(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Sha2_384 returns the lowercase hex SHA-384 digest of s
func Sha2_384(s string) string {
	sum := sha512.Sum384([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Sha2_512 returns the lowercase hex SHA-512 digest of s
func Sha2_512(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Sha3_224 returns the lowercase hex SHA3-224 digest of s
func Sha3_224(s string) string {
	sum := sha3.Sum224([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Sha3_256 returns the lowercase hex SHA3-256 digest of s
func Sha3_256(s string) string {
	sum := sha3.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Sha3_384 returns the lowercase hex SHA3-384 digest of s
func Sha3_384(s string) string {
	sum := sha3.Sum384([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Sha3_512 returns the lowercase hex SHA3-512 digest of s
func Sha3_512(s string) string {
	sum := sha3.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}

// MaxShakeLength bounds the output size of Shake128 in bytes
const MaxShakeLength = 1 << 16

// Shake128 reads length bytes from the SHAKE128 XOF of s and returns them as hex.
func Shake128(s string, length int) (string, error) {
	if err := CheckShakeLength(length); err != nil {
		return "", err
	}
	out := make([]byte, length)
	sha3.ShakeSum128(out, []byte(s))
	return hex.EncodeToString(out), nil
}

// CheckShakeLength validates a SHAKE128 output length
func CheckShakeLength(length int) error {
	if length < 0 || length > MaxShakeLength {
		return fmt.Errorf("shake128 length must be between 0 and %d, got %d", MaxShakeLength, length)
	}
	return nil
}

// Blake3 returns the hex BLAKE3-256 digest of s
func Blake3(s string) string {
	return Blake3Bytes([]byte(s))
}

// Blake3Bytes returns the hex BLAKE3-256 digest of b
func Blake3Bytes(b []byte) string {
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Md5 returns the lowercase hex MD5 digest of s
func Md5(s string) string {
	return Md5Bytes([]byte(s))
}

// Md5Bytes returns the lowercase hex MD5 digest of b
func Md5Bytes(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}
