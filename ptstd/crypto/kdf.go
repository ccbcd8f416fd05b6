package crypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveKey derives a key of the specified length using HKDF-SHA256.
// salt can be nil (uses zero salt), info provides context binding.
func DeriveKey(secret, salt, info []byte, length int) ([]byte, error) {
	hk := hkdf.New(sha256.New, secret, salt, info)
	key := make([]byte, length)
	if _, err := io.ReadFull(hk, key); err != nil {
		return nil, err
	}
	return key, nil
}

// DeriveAESKeyIV derives a deterministic AES key and IV from a shared secret,
// so two parties holding the same secret and salt build matching ciphers.
func DeriveAESKeyIV(secret, salt []byte) (*AESCipher, error) {
	keyIV, err := DeriveKey(secret, salt, []byte("ptstd-aes-key-iv"), AESKeyIVSize)
	if err != nil {
		return nil, err
	}
	return ParseAESKeyIV(keyIV)
}
