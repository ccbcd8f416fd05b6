package net

import (
	"context"
	"testing"
	"time"
)

func TestSelfSignedCertNamesHost(t *testing.T) {
	cert, err := selfSignedCert("127.0.0.1", time.Hour)
	if err != nil {
		t.Fatalf("selfSignedCert: %v", err)
	}
	if len(cert.Leaf.IPAddresses) != 1 || cert.Leaf.IPAddresses[0].String() != "127.0.0.1" {
		t.Fatalf("IP SANs = %v", cert.Leaf.IPAddresses)
	}
	if err := cert.Leaf.VerifyHostname("127.0.0.1"); err != nil {
		t.Fatalf("VerifyHostname: %v", err)
	}
	if life := cert.Leaf.NotAfter.Sub(cert.Leaf.NotBefore); life < time.Hour || life > time.Hour+2*time.Minute {
		t.Fatalf("lifetime = %v, want about an hour", life)
	}

	cert, err = selfSignedCert("localhost", time.Hour)
	if err != nil {
		t.Fatalf("selfSignedCert: %v", err)
	}
	if len(cert.Leaf.DNSNames) != 1 || cert.Leaf.DNSNames[0] != "localhost" {
		t.Fatalf("DNS SANs = %v", cert.Leaf.DNSNames)
	}
}

func TestServerTLSConfigLifetime(t *testing.T) {
	o := defaultOptions()
	WithCertLifetime(2 * time.Hour)(&o)
	conf, err := serverTLSConfig("127.0.0.1:0", o)
	if err != nil {
		t.Fatalf("serverTLSConfig: %v", err)
	}
	leaf := conf.Certificates[0].Leaf
	if leaf.NotAfter.Before(time.Now().Add(time.Hour + 50*time.Minute)) {
		t.Fatalf("NotAfter = %v, want two hours out", leaf.NotAfter)
	}
	if _, err := serverTLSConfig("no-port", o); err == nil {
		t.Fatal("expected an error for an address without a port")
	}
}

func TestQUICPresentsConfiguredCertificate(t *testing.T) {
	if testing.Short() {
		t.Skip("quic loopback in short mode")
	}
	cert, err := selfSignedCert("ptstd.test", time.Hour)
	if err != nil {
		t.Fatalf("selfSignedCert: %v", err)
	}
	ln, err := ListenQUIC("127.0.0.1:0", quiet, WithTLSCertificate(cert))
	if err != nil {
		t.Fatalf("ListenQUIC: %v", err)
	}
	defer ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() {
		if mc, err := ln.Accept(ctx); err == nil {
			_, _ = mc.ReceiveBytes(ctx)
			_ = mc.Close()
		}
	}()

	mc, err := DialQUIC(ctx, ln.Addr().String(), quiet)
	if err != nil {
		t.Fatalf("DialQUIC: %v", err)
	}
	defer mc.Close()
	if err := mc.SendBytes(ctx, []byte("hi")); err != nil {
		t.Fatalf("SendBytes: %v", err)
	}
	state := mc.stream.(*quicStream).conn.ConnectionState().TLS
	if len(state.PeerCertificates) == 0 || state.PeerCertificates[0].Subject.CommonName != "ptstd.test" {
		t.Fatalf("listener presented %v", state.PeerCertificates)
	}
	if state.NegotiatedProtocol != ALPN {
		t.Fatalf("ALPN = %q", state.NegotiatedProtocol)
	}
}
