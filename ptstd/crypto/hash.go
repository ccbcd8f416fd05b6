package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hex renders bytes as lowercase hex, two characters per byte.
func Hex(b []byte) string {
	return hex.EncodeToString(b)
}

// SHA256 returns the 32-byte SHA-256 digest of data.
func SHA256(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:]
}

// SHA256Hex returns the digest of data as a 64-character hex string.
func SHA256Hex(data []byte) string {
	return Hex(SHA256(data))
}

// Hashable is anything Sum256 accepts.
type Hashable interface {
	~string | ~[]byte
}

// Sum256 hashes any string or byte slice.
func Sum256[T Hashable](v T) []byte {
	return SHA256([]byte(v))
}

// Sum256Hex is Sum256 rendered as hex.
func Sum256Hex[T Hashable](v T) string {
	return Hex(Sum256(v))
}
