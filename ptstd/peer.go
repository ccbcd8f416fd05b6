package ptstd

import (
	"context"
	"errors"
	"fmt"
	stdnet "net"
	"time"

	"github.com/TheusHen/ptstd/ptstd/crypto"
	"github.com/TheusHen/ptstd/ptstd/net"
)

var (
	ErrNotListening     = errors.New("ptstd: peer is not listening")
	ErrUnknownTransport = errors.New("ptstd: unknown transport")
)

// Transport selects the stream a Peer runs the message protocol over.
type Transport string

const (
	TCP  Transport = "tcp"
	QUIC Transport = "quic"
)

// DefaultHandshakeTimeout bounds the key exchange when Peer.HandshakeTimeout is zero.
const DefaultHandshakeTimeout = 10 * time.Second

type acceptor interface {
	Accept(ctx context.Context) (*net.MessageCenter, error)
	Addr() stdnet.Addr
	Close() error
}

// Peer listens for and dials message centers. A secure peer seals every
// connection with an AES key negotiated under the listening side's RSA key.
type Peer struct {
	Keys      *crypto.RSAKeyPair
	Transport Transport
	Secure    bool

	// HandshakeTimeout bounds each key exchange, independently of the
	// context passed to Accept or Dial.
	HandshakeTimeout time.Duration

	opts     []net.Option
	listener acceptor
}

// NewPeer returns a plain peer using transport.
func NewPeer(transport Transport, opts ...net.Option) *Peer {
	return &Peer{Transport: transport, opts: opts}
}

// NewSecurePeer returns a peer that runs the key exchange on every
// connection. keys may be nil for a dial-only peer.
func NewSecurePeer(keys *crypto.RSAKeyPair, transport Transport, opts ...net.Option) *Peer {
	return &Peer{Keys: keys, Transport: transport, Secure: true, opts: opts}
}

func (p *Peer) Listen(addr string) error {
	var (
		ln  acceptor
		err error
	)
	switch p.Transport {
	case TCP, "":
		ln, err = net.Listen(addr, p.opts...)
	case QUIC:
		ln, err = net.ListenQUIC(addr, p.opts...)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTransport, p.Transport)
	}
	if err != nil {
		return err
	}
	p.listener = ln
	return nil
}

func (p *Peer) Close() error {
	if p.listener == nil {
		return nil
	}
	return p.listener.Close()
}

func (p *Peer) ListenAddr() string {
	if p.listener == nil {
		return ""
	}
	return p.listener.Addr().String()
}

// Accept waits for a connection and, for a secure peer, runs the server
// side of the handshake. A peer that stays silent holds Accept for at most
// HandshakeTimeout; servers that must not wait at all use AcceptConn and run
// Establish elsewhere.
func (p *Peer) Accept(ctx context.Context) (*net.MessageCenter, error) {
	mc, err := p.AcceptConn(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.Establish(ctx, mc); err != nil {
		return nil, err
	}
	return mc, nil
}

// AcceptConn waits for a connection and returns it without a handshake.
func (p *Peer) AcceptConn(ctx context.Context) (*net.MessageCenter, error) {
	if p.listener == nil {
		return nil, ErrNotListening
	}
	return p.listener.Accept(ctx)
}

// Establish runs the server side of the handshake on a connection from
// AcceptConn. It does nothing for a plain peer and closes mc on failure.
func (p *Peer) Establish(ctx context.Context, mc *net.MessageCenter) error {
	if !p.Secure {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.handshakeTimeout())
	defer cancel()
	if err := net.HandshakeServer(ctx, mc, p.Keys); err != nil {
		_ = mc.Close()
		return err
	}
	return nil
}

func (p *Peer) handshakeTimeout() time.Duration {
	if p.HandshakeTimeout > 0 {
		return p.HandshakeTimeout
	}
	return DefaultHandshakeTimeout
}

// Dial connects to addr and, for a secure peer, runs the client side of the
// handshake.
func (p *Peer) Dial(ctx context.Context, addr string) (*net.MessageCenter, error) {
	var (
		mc  *net.MessageCenter
		err error
	)
	switch p.Transport {
	case TCP, "":
		mc, err = net.Dial(ctx, addr, p.opts...)
	case QUIC:
		mc, err = net.DialQUIC(ctx, addr, p.opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, p.Transport)
	}
	if err != nil {
		return nil, err
	}
	if !p.Secure {
		return mc, nil
	}
	hsCtx, cancel := context.WithTimeout(ctx, p.handshakeTimeout())
	defer cancel()
	if _, err := net.HandshakeClient(hsCtx, mc); err != nil {
		_ = mc.Close()
		return nil, err
	}
	return mc, nil
}
