package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

// RSABits is the default modulus size (256-byte blocks).
const RSABits = 2048

var (
	ErrNoPrivateKey      = errors.New("crypto: rsa key pair has no private key")
	ErrMessageTooLong    = errors.New("crypto: message too long for rsa key size")
	ErrInvalidPublicPEM  = errors.New("crypto: invalid rsa public key pem")
	ErrInvalidPrivatePEM = errors.New("crypto: invalid rsa private key pem")
)

// RSAKeyPair holds a public key and, when generated locally, the private key.
// A pair parsed from a peer's PEM can only encrypt.
//
// The intended flow: generate a pair, send PublicKeyPEM to the peer, the peer
// encrypts with ParseRSAPublicKeyPEM(...).Encrypt, the owner decrypts.
type RSAKeyPair struct {
	private *rsa.PrivateKey
	public  *rsa.PublicKey
}

// GenerateRSAKeyPair generates a 2048-bit key pair.
func GenerateRSAKeyPair() (*RSAKeyPair, error) {
	return GenerateRSAKeyPairBits(RSABits)
}

// GenerateRSAKeyPairBits generates a key pair with the given modulus size.
func GenerateRSAKeyPairBits(bits int) (*RSAKeyPair, error) {
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, err
	}
	return &RSAKeyPair{private: priv, public: &priv.PublicKey}, nil
}

// ParseRSAPublicKeyPEM parses an SPKI "PUBLIC KEY" block into a public-only pair.
func ParseRSAPublicKeyPEM(s string) (*RSAKeyPair, error) {
	block, _ := pem.Decode([]byte(s))
	if block == nil || block.Type != "PUBLIC KEY" {
		return nil, ErrInvalidPublicPEM
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicPEM, err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an rsa key", ErrInvalidPublicPEM)
	}
	return &RSAKeyPair{public: rsaPub}, nil
}

// PublicKeyPEM encodes the public key as SPKI PEM with LF line endings.
func (kp *RSAKeyPair) PublicKeyPEM() (string, error) {
	der, err := x509.MarshalPKIXPublicKey(kp.public)
	if err != nil {
		return "", err
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

// PrivateKeyPEM encodes the private key as PKCS#8 PEM.
func (kp *RSAKeyPair) PrivateKeyPEM() (string, error) {
	if kp.private == nil {
		return "", ErrNoPrivateKey
	}
	der, err := x509.MarshalPKCS8PrivateKey(kp.private)
	if err != nil {
		return "", err
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})), nil
}

// ParseRSAPrivateKeyPEM parses a PKCS#8 "PRIVATE KEY" block into a full pair.
func ParseRSAPrivateKeyPEM(s string) (*RSAKeyPair, error) {
	block, _ := pem.Decode([]byte(s))
	if block == nil || block.Type != "PRIVATE KEY" {
		return nil, ErrInvalidPrivatePEM
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivatePEM, err)
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an rsa key", ErrInvalidPrivatePEM)
	}
	return &RSAKeyPair{private: priv, public: &priv.PublicKey}, nil
}

// HasPrivateKey reports whether the pair can decrypt.
func (kp *RSAKeyPair) HasPrivateKey() bool { return kp.private != nil }

// MaxMessageSize is k-11 bytes: 245 for a 2048-bit key.
func (kp *RSAKeyPair) MaxMessageSize() int { return kp.public.Size() - 11 }

// Encrypt encrypts with the public key using PKCS#1 v1.5 padding.
func (kp *RSAKeyPair) Encrypt(plaintext []byte) ([]byte, error) {
	if len(plaintext) > kp.MaxMessageSize() {
		return nil, ErrMessageTooLong
	}
	return rsa.EncryptPKCS1v15(rand.Reader, kp.public, plaintext)
}

// Decrypt decrypts with the private key.
func (kp *RSAKeyPair) Decrypt(ciphertext []byte) ([]byte, error) {
	if kp.private == nil {
		return nil, ErrNoPrivateKey
	}
	pt, err := rsa.DecryptPKCS1v15(rand.Reader, kp.private, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return pt, nil
}

// SealKeyIV encrypts an AES cipher's key||iv for the owner of this public key.
func (kp *RSAKeyPair) SealKeyIV(c *AESCipher) ([]byte, error) {
	return kp.Encrypt(c.KeyIV())
}

// OpenKeyIV recovers an AES cipher sealed with SealKeyIV.
func (kp *RSAKeyPair) OpenKeyIV(sealed []byte) (*AESCipher, error) {
	keyIV, err := kp.Decrypt(sealed)
	if err != nil {
		return nil, err
	}
	return ParseAESKeyIV(keyIV)
}
