// Package crypto provides the symmetric, asymmetric and hashing helpers used across ptstd.
//
// Primitives:
//   - AES-256-CBC with PKCS#7 padding for bulk payloads (key 32 bytes, IV 16 bytes)
//   - RSA-2048 with PKCS#1 v1.5 padding for small secrets such as an AES key/IV
//   - SHA-256 digests with lowercase hex rendering
//   - HKDF-SHA256 key derivation
//   - ChaCha20-Poly1305 AEAD with counter nonces
//
// Both AESCipher and AEADCipher satisfy Cipher, which is what the net package
// accepts to protect message bodies.
package crypto
