package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

const (
	AESKeySize   = 32
	AESIVSize    = aes.BlockSize
	AESKeyIVSize = AESKeySize + AESIVSize
)

var (
	ErrInvalidKeySize   = errors.New("crypto: key is not 256 bits")
	ErrInvalidIVSize    = errors.New("crypto: iv is not 128 bits")
	ErrInvalidKeyIVSize = errors.New("crypto: key||iv is not 48 bytes")
	ErrDecrypt          = errors.New("crypto: can't decrypt")
)

// AESCipher is AES-256 in CBC mode with PKCS#7 padding.
// Every Encrypt/Decrypt call starts from the configured IV, so ciphers built
// from the same key and IV are interchangeable and order independent.
type AESCipher struct {
	key   [AESKeySize]byte
	iv    [AESIVSize]byte
	block cipher.Block
}

// NewAES creates a cipher with a random key and IV.
func NewAES() (*AESCipher, error) {
	var keyIV [AESKeyIVSize]byte
	if _, err := io.ReadFull(rand.Reader, keyIV[:]); err != nil {
		return nil, err
	}
	return NewAESWithKeyIV(keyIV[:AESKeySize], keyIV[AESKeySize:])
}

// NewAESWithKeyIV creates a cipher from an explicit 32-byte key and 16-byte IV.
func NewAESWithKeyIV(key, iv []byte) (*AESCipher, error) {
	if len(key) != AESKeySize {
		return nil, ErrInvalidKeySize
	}
	if len(iv) != AESIVSize {
		return nil, ErrInvalidIVSize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	c := &AESCipher{block: block}
	copy(c.key[:], key)
	copy(c.iv[:], iv)
	return c, nil
}

// ParseAESKeyIV builds a cipher from the 48-byte key||iv form returned by KeyIV.
func ParseAESKeyIV(keyIV []byte) (*AESCipher, error) {
	if len(keyIV) != AESKeyIVSize {
		return nil, ErrInvalidKeyIVSize
	}
	return NewAESWithKeyIV(keyIV[:AESKeySize], keyIV[AESKeySize:])
}

// KeyIV returns key || iv.
func (c *AESCipher) KeyIV() []byte {
	out := make([]byte, 0, AESKeyIVSize)
	out = append(out, c.key[:]...)
	return append(out, c.iv[:]...)
}

// Clone returns an independent cipher with the same key and IV.
func (c *AESCipher) Clone() *AESCipher {
	clone, err := NewAESWithKeyIV(c.key[:], c.iv[:])
	if err != nil {
		// key and iv were validated on construction
		panic(err)
	}
	return clone
}

// Encrypt pads and encrypts plaintext.
// 15 bytes become 16, 16 bytes become 32, and empty input stays empty.
func (c *AESCipher) Encrypt(plaintext []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return []byte{}, nil
	}
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, c.iv[:]).CryptBlocks(out, padded)
	return out, nil
}

// Decrypt decrypts and unpads ciphertext produced by Encrypt.
func (c *AESCipher) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 {
		return []byte{}, nil
	}
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrDecrypt
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, c.iv[:]).CryptBlocks(out, ciphertext)
	return pkcs7Unpad(out, aes.BlockSize)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data), len(data)+n)
	copy(out, data)
	return append(out, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrDecrypt
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, ErrDecrypt
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrDecrypt
		}
	}
	return data[:len(data)-n], nil
}
