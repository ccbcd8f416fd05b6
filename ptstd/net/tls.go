package net

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	stdnet "net"
	"time"
)

// ALPN is the protocol negotiated by the QUIC transport.
const ALPN = "ptstd/1"

// DefaultCertLifetime is how long a generated listener certificate stays valid.
const DefaultCertLifetime = 24 * time.Hour

// selfSignedCert issues an ed25519 certificate naming host, as an IP SAN when
// host is an address and as a DNS SAN otherwise.
func selfSignedCert(host string, lifetime time.Duration) (tls.Certificate, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return tls.Certificate{}, err
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 127))
	if err != nil {
		return tls.Certificate{}, err
	}

	now := time.Now()
	tpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: host, Organization: []string{"ptstd"}},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(lifetime),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	if ip := stdnet.ParseIP(host); ip != nil {
		tpl.IPAddresses = []stdnet.IP{ip}
	} else if host != "" {
		tpl.DNSNames = []string{host}
	}

	der, err := x509.CreateCertificate(rand.Reader, tpl, tpl, pub, priv)
	if err != nil {
		return tls.Certificate{}, err
	}
	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: priv, Leaf: leaf}, nil
}

// serverTLSConfig uses the configured certificate, or issues one for the
// host part of addr.
func serverTLSConfig(addr string, o options) (*tls.Config, error) {
	cert := o.tlsCert
	if cert == nil {
		host, _, err := stdnet.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("net: listen address %q: %w", addr, err)
		}
		generated, err := selfSignedCert(host, o.certLifetime)
		if err != nil {
			return nil, fmt.Errorf("net: issue certificate: %w", err)
		}
		cert = &generated
	}
	return &tls.Config{
		Certificates: []tls.Certificate{*cert},
		MinVersion:   tls.VersionTLS13,
		NextProtos:   []string{ALPN},
	}, nil
}

// clientTLSConfig does not verify the listener: message bodies are
// authenticated by the configured Cipher, not by PKI.
func clientTLSConfig(addr string) *tls.Config {
	host, _, err := stdnet.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	return &tls.Config{
		ServerName:         host,
		MinVersion:         tls.VersionTLS13,
		NextProtos:         []string{ALPN},
		InsecureSkipVerify: true,
	}
}
