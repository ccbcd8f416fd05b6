package net

import (
	"crypto/tls"
	"hash/crc32"
	"time"

	"github.com/rs/zerolog"

	"github.com/TheusHen/ptstd/ptstd/crypto"
)

const (
	DefaultSliceSize      = 1024
	DefaultMaxRetries     = 8
	DefaultMaxMessageSize = 64 << 20
)

// Checksum computes the per-slice check value.
type Checksum func(data []byte) uint32

// CRC32 is the default slice checksum (IEEE polynomial).
func CRC32(data []byte) uint32 { return crc32.ChecksumIEEE(data) }

type options struct {
	sliceSize      int
	maxRetries     int
	maxMessageSize int
	checksum       Checksum
	compression    CompressionLevel
	cipher         crypto.Cipher
	logger         *zerolog.Logger
	tlsCert        *tls.Certificate
	certLifetime   time.Duration
}

func defaultOptions() options {
	return options{
		sliceSize:      DefaultSliceSize,
		maxRetries:     DefaultMaxRetries,
		maxMessageSize: DefaultMaxMessageSize,
		checksum:       CRC32,
		certLifetime:   DefaultCertLifetime,
	}
}

// Option configures a MessageCenter.
type Option func(*options)

// WithSliceSize sets the data bytes carried per slice. Values <= 0 keep the default.
func WithSliceSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.sliceSize = n
		}
	}
}

// WithMaxRetries bounds retransmissions of a single slice.
func WithMaxRetries(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithMaxMessageSize bounds the body accepted by ReceiveBytes and sent by SendBytes.
func WithMaxMessageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxMessageSize = n
		}
	}
}

// WithChecksum replaces the slice checksum. Both peers must agree.
func WithChecksum(fn Checksum) Option {
	return func(o *options) {
		if fn != nil {
			o.checksum = fn
		}
	}
}

// WithCompression LZ4-compresses outgoing bodies when that makes them smaller.
func WithCompression(level CompressionLevel) Option {
	return func(o *options) { o.compression = level }
}

// WithCipher seals outgoing bodies and requires incoming bodies to be sealed.
func WithCipher(c crypto.Cipher) Option {
	return func(o *options) { o.cipher = c }
}

// WithLogger overrides the logger (defaults to the "net" target of ptstd/log).
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// WithTLSCertificate makes ListenQUIC present cert instead of a generated one.
func WithTLSCertificate(cert tls.Certificate) Option {
	return func(o *options) { o.tlsCert = &cert }
}

// WithCertLifetime sets the validity of the certificate ListenQUIC generates.
func WithCertLifetime(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.certLifetime = d
		}
	}
}
