package net

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/TheusHen/ptstd/ptstd/crypto"
)

// handshakeReady is the first sealed message; it proves both sides hold the same key.
var handshakeReady = []byte("ptstd/1 ready")

var (
	ErrHandshake       = errors.New("net: handshake failed")
	ErrAlreadySealed   = errors.New("net: message center already has a cipher")
	ErrHandshakeNoKeys = errors.New("net: server handshake needs an RSA private key")
)

// HandshakeServer runs the key exchange from the listening side:
//
//  1. send the RSA public key (SPKI PEM)
//  2. receive an AES-256 key and IV sealed under that key
//  3. switch to the AES cipher and send a sealed ready message
func HandshakeServer(ctx context.Context, mc *MessageCenter, keys *crypto.RSAKeyPair) error {
	if keys == nil || !keys.HasPrivateKey() {
		return ErrHandshakeNoKeys
	}
	if mc.Sealed() {
		return ErrAlreadySealed
	}

	pub, err := keys.PublicKeyPEM()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHandshake, err)
	}
	if err := mc.SendBytes(ctx, []byte(pub)); err != nil {
		return fmt.Errorf("%w: send public key: %w", ErrHandshake, err)
	}

	sealed, err := mc.ReceiveBytes(ctx)
	if err != nil {
		return fmt.Errorf("%w: receive session key: %w", ErrHandshake, err)
	}
	aes, err := keys.OpenKeyIV(sealed)
	if err != nil {
		return fmt.Errorf("%w: open session key: %w", ErrHandshake, err)
	}

	mc.SetCipher(aes)
	if err := mc.SendBytes(ctx, handshakeReady); err != nil {
		mc.SetCipher(nil)
		return fmt.Errorf("%w: send ready: %w", ErrHandshake, err)
	}
	mc.log.Debug().Msg("handshake complete (server)")
	return nil
}

// HandshakeClient runs the key exchange from the dialing side and returns the
// negotiated cipher, already installed on mc.
func HandshakeClient(ctx context.Context, mc *MessageCenter) (*crypto.AESCipher, error) {
	if mc.Sealed() {
		return nil, ErrAlreadySealed
	}

	pem, err := mc.ReceiveBytes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: receive public key: %w", ErrHandshake, err)
	}
	server, err := crypto.ParseRSAPublicKeyPEM(string(pem))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHandshake, err)
	}

	aes, err := crypto.NewAES()
	if err != nil {
		return nil, err
	}
	sealed, err := server.SealKeyIV(aes)
	if err != nil {
		return nil, fmt.Errorf("%w: seal session key: %w", ErrHandshake, err)
	}
	if err := mc.SendBytes(ctx, sealed); err != nil {
		return nil, fmt.Errorf("%w: send session key: %w", ErrHandshake, err)
	}

	mc.SetCipher(aes)
	ready, err := mc.ReceiveBytes(ctx)
	if err != nil {
		mc.SetCipher(nil)
		return nil, fmt.Errorf("%w: receive ready: %w", ErrHandshake, err)
	}
	if !bytes.Equal(ready, handshakeReady) {
		mc.SetCipher(nil)
		return nil, fmt.Errorf("%w: unexpected ready message", ErrHandshake)
	}
	mc.log.Debug().Msg("handshake complete (client)")
	return aes, nil
}
