package ptstd

import (
	"context"
	"errors"
	stdnet "net"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/TheusHen/ptstd/ptstd/crypto"
	"github.com/TheusHen/ptstd/ptstd/feature"
	"github.com/TheusHen/ptstd/ptstd/net"
)

func TestModulesDefault(t *testing.T) {
	mods, err := Modules()
	if err != nil {
		t.Fatalf("Modules: %v", err)
	}
	if len(mods) != 7 {
		t.Fatalf("expected 7 modules, got %d", len(mods))
	}
	if mods[0].Feature != feature.Chrono || mods[len(mods)-1].Feature != feature.Thread {
		t.Fatalf("unexpected order: %v", mods)
	}
}

func TestModulesStd(t *testing.T) {
	mods, err := Modules(feature.Std)
	if err != nil {
		t.Fatalf("Modules: %v", err)
	}
	var got []feature.Name
	for _, m := range mods {
		got = append(got, m.Feature)
	}
	if len(got) != 3 || got[0] != feature.Net || got[1] != feature.Ptr || got[2] != feature.Thread {
		t.Fatalf("std modules = %v", got)
	}
}

func TestModulesUnknown(t *testing.T) {
	if _, err := Modules("gpu"); !errors.Is(err, feature.ErrUnknownFeature) {
		t.Fatalf("expected ErrUnknownFeature, got %v", err)
	}
}

func TestPeerDialAccept(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	keys, err := crypto.GenerateRSAKeyPair()
	if err != nil {
		t.Fatalf("GenerateRSAKeyPair: %v", err)
	}
	quiet := net.WithLogger(zerolog.Nop())

	server := NewSecurePeer(keys, TCP, quiet)
	if err := server.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer server.Close()

	errCh := make(chan error, 1)
	go func() {
		mc, err := server.Accept(ctx)
		if err != nil {
			errCh <- err
			return
		}
		defer mc.Close()
		msg, err := mc.ReceiveBytes(ctx)
		if err != nil {
			errCh <- err
			return
		}
		errCh <- mc.SendBytes(ctx, append([]byte("echo: "), msg...))
	}()

	client := NewSecurePeer(nil, TCP, quiet)
	mc, err := client.Dial(ctx, server.ListenAddr())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer mc.Close()
	if !mc.Sealed() {
		t.Fatal("dialled center should be sealed")
	}
	if err := mc.SendBytes(ctx, []byte("hi")); err != nil {
		t.Fatalf("SendBytes: %v", err)
	}
	reply, err := mc.ReceiveBytes(ctx)
	if err != nil {
		t.Fatalf("ReceiveBytes: %v", err)
	}
	if string(reply) != "echo: hi" {
		t.Fatalf("reply = %q", reply)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("server: %v", err)
	}
}

func TestPeerNotListening(t *testing.T) {
	p := NewPeer(TCP)
	if _, err := p.Accept(context.Background()); !errors.Is(err, ErrNotListening) {
		t.Fatalf("expected ErrNotListening, got %v", err)
	}
	if p.ListenAddr() != "" {
		t.Fatal("ListenAddr should be empty")
	}
	if err := NewPeer("carrier-pigeon").Listen(":0"); !errors.Is(err, ErrUnknownTransport) {
		t.Fatalf("expected ErrUnknownTransport, got %v", err)
	}
}

func TestPlainPeerOverQUIC(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	quiet := net.WithLogger(zerolog.Nop())

	server := NewPeer(QUIC, quiet)
	if err := server.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer server.Close()

	errCh := make(chan error, 1)
	go func() {
		mc, err := server.Accept(ctx)
		if err != nil {
			errCh <- err
			return
		}
		defer mc.Close()
		_, err = mc.ReceiveBytes(ctx)
		if err == nil {
			err = mc.SendBytes(ctx, []byte("ack"))
		}
		errCh <- err
	}()

	mc, err := NewPeer(QUIC, quiet).Dial(ctx, server.ListenAddr())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer mc.Close()
	if mc.Sealed() {
		t.Fatal("plain peer should not seal")
	}
	if err := mc.SendBytes(ctx, []byte("ping")); err != nil {
		t.Fatalf("SendBytes: %v", err)
	}
	if reply, err := mc.ReceiveBytes(ctx); err != nil || string(reply) != "ack" {
		t.Fatalf("reply = %q, %v", reply, err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("server: %v", err)
	}
}

func newSecureServer(t *testing.T) *Peer {
	t.Helper()
	keys, err := crypto.GenerateRSAKeyPair()
	if err != nil {
		t.Fatalf("GenerateRSAKeyPair: %v", err)
	}
	server := NewSecurePeer(keys, TCP, net.WithLogger(zerolog.Nop()))
	if err := server.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	t.Cleanup(func() { _ = server.Close() })
	return server
}

func dialSilent(t *testing.T, addr string) {
	t.Helper()
	c, err := stdnet.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
}

func dialAndPing(ctx context.Context, addr string) error {
	mc, err := NewSecurePeer(nil, TCP, net.WithLogger(zerolog.Nop())).Dial(ctx, addr)
	if err != nil {
		return err
	}
	defer mc.Close()
	if err := mc.SendBytes(ctx, []byte("ping")); err != nil {
		return err
	}
	reply, err := mc.ReceiveBytes(ctx)
	if err != nil {
		return err
	}
	if string(reply) != "ping" {
		return errors.New("bad reply " + string(reply))
	}
	return nil
}

func TestSilentConnectionDoesNotBlockEstablish(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	server := newSecureServer(t)

	go func() {
		for {
			mc, err := server.AcceptConn(ctx)
			if err != nil {
				return
			}
			go func() {
				defer mc.Close()
				if err := server.Establish(ctx, mc); err != nil {
					return
				}
				if msg, err := mc.ReceiveBytes(ctx); err == nil {
					_ = mc.SendBytes(ctx, msg)
				}
			}()
		}
	}()

	dialSilent(t, server.ListenAddr())

	clientCtx, clientCancel := context.WithTimeout(ctx, 3*time.Second)
	defer clientCancel()
	if err := dialAndPing(clientCtx, server.ListenAddr()); err != nil {
		t.Fatalf("client behind a silent connection: %v", err)
	}
}

func TestAcceptBoundsHandshake(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	server := newSecureServer(t)
	server.HandshakeTimeout = 200 * time.Millisecond

	dialSilent(t, server.ListenAddr())
	start := time.Now()
	if _, err := server.Accept(ctx); !errors.Is(err, net.ErrHandshake) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Accept on a silent connection = %v, want a handshake deadline error", err)
	}
	if waited := time.Since(start); waited > 5*time.Second {
		t.Fatalf("Accept waited %v on a silent connection", waited)
	}

	errCh := make(chan error, 1)
	go func() {
		mc, err := server.Accept(ctx)
		if err != nil {
			errCh <- err
			return
		}
		defer mc.Close()
		msg, err := mc.ReceiveBytes(ctx)
		if err == nil {
			err = mc.SendBytes(ctx, msg)
		}
		errCh <- err
	}()
	if err := dialAndPing(ctx, server.ListenAddr()); err != nil {
		t.Fatalf("client after a timed out handshake: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("server: %v", err)
	}
}
