package crypto

// Cipher encrypts and decrypts whole messages.
// Implementations must be usable in either direction with the same parameters.
type Cipher interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

var (
	_ Cipher = (*AESCipher)(nil)
	_ Cipher = AEADCipher{}
)
