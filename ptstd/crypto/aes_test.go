package crypto

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestAESRoundTrip(t *testing.T) {
	c, err := NewAES()
	if err != nil {
		t.Fatalf("NewAES: %v", err)
	}

	text := []byte(strings.Repeat("a", 15))
	ct, err := c.Encrypt(text)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if len(ct) != 16 {
		t.Fatalf("15 bytes should pad to 16, got %d", len(ct))
	}

	pt, err := c.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(pt, text) {
		t.Fatalf("decrypted != plaintext")
	}
}

func TestAESPaddingLengths(t *testing.T) {
	c, _ := NewAES()
	cases := map[int]int{0: 0, 1: 16, 15: 16, 16: 32, 17: 32, 32: 48}
	for in, want := range cases {
		ct, err := c.Encrypt(make([]byte, in))
		if err != nil {
			t.Fatalf("Encrypt(%d): %v", in, err)
		}
		if len(ct) != want {
			t.Fatalf("Encrypt(%d): got %d bytes, want %d", in, len(ct), want)
		}
	}
}

func TestAESKeyIVTransfer(t *testing.T) {
	c1, _ := NewAES()
	c2, err := ParseAESKeyIV(c1.KeyIV())
	if err != nil {
		t.Fatalf("ParseAESKeyIV: %v", err)
	}

	enc1, _ := c1.Encrypt([]byte("123"))
	enc2, _ := c1.Encrypt([]byte("abc"))

	// Decrypt out of order with the second cipher.
	dec2, err := c2.Decrypt(enc2)
	if err != nil {
		t.Fatalf("Decrypt enc2: %v", err)
	}
	dec1, err := c2.Decrypt(enc1)
	if err != nil {
		t.Fatalf("Decrypt enc1: %v", err)
	}
	if string(dec1) != "123" || string(dec2) != "abc" {
		t.Fatalf("unexpected plaintexts %q %q", dec1, dec2)
	}

	clone := c1.Clone()
	if !bytes.Equal(clone.KeyIV(), c1.KeyIV()) {
		t.Fatalf("clone key/iv mismatch")
	}
}

func TestAESInvalidParameters(t *testing.T) {
	if _, err := NewAESWithKeyIV(make([]byte, 16), make([]byte, 16)); err != ErrInvalidKeySize {
		t.Fatalf("expected ErrInvalidKeySize, got %v", err)
	}
	if _, err := NewAESWithKeyIV(make([]byte, 32), make([]byte, 8)); err != ErrInvalidIVSize {
		t.Fatalf("expected ErrInvalidIVSize, got %v", err)
	}
	if _, err := ParseAESKeyIV(make([]byte, 47)); err != ErrInvalidKeyIVSize {
		t.Fatalf("expected ErrInvalidKeyIVSize, got %v", err)
	}
}

func TestAESDecryptRejectsGarbage(t *testing.T) {
	c, _ := NewAES()
	if _, err := c.Decrypt(make([]byte, 17)); !errors.Is(err, ErrDecrypt) {
		t.Fatalf("expected ErrDecrypt for partial block, got %v", err)
	}

	// The final block is pure padding; flipping the previous block flips it too.
	ct, _ := c.Encrypt([]byte("sixteen byte msg"))
	ct[15] ^= 0xff
	if _, err := c.Decrypt(ct); !errors.Is(err, ErrDecrypt) {
		t.Fatalf("expected ErrDecrypt for corrupted padding block, got %v", err)
	}
}

func TestDeriveAESKeyIVDeterministic(t *testing.T) {
	a, err := DeriveAESKeyIV([]byte("eryu"), []byte("yxy"))
	if err != nil {
		t.Fatalf("DeriveAESKeyIV: %v", err)
	}
	b, _ := DeriveAESKeyIV([]byte("eryu"), []byte("yxy"))
	if !bytes.Equal(a.KeyIV(), b.KeyIV()) {
		t.Fatalf("derivation is not deterministic")
	}
	c, _ := DeriveAESKeyIV([]byte("eryu"), []byte("other"))
	if bytes.Equal(a.KeyIV(), c.KeyIV()) {
		t.Fatalf("different salts should give different keys")
	}

	ct, _ := a.Encrypt([]byte("shared secret"))
	pt, err := b.Decrypt(ct)
	if err != nil || string(pt) != "shared secret" {
		t.Fatalf("derived ciphers do not interoperate: %v", err)
	}
}

func BenchmarkAESEncrypt(b *testing.B) {
	c, _ := NewAES()
	plaintext := make([]byte, 64*1024)
	b.SetBytes(int64(len(plaintext)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Encrypt(plaintext)
	}
}
