package net

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	stdnet "net"
	"time"

	q "github.com/quic-go/quic-go"
)

// quicPreamble opens every QUIC stream; a peer only sees a stream once data
// has been written on it.
var quicPreamble = []byte{'p', 't', 's', '1'}

var ErrBadPreamble = errors.New("net: bad stream preamble")

const (
	quicLinger        = 2 * time.Second
	quicStreamTimeout = 10 * time.Second
)

// quicStream adapts one bidirectional stream to io.ReadWriteCloser and owns
// its connection.
type quicStream struct {
	q.Stream
	conn q.Connection
}

func (s *quicStream) RemoteAddr() stdnet.Addr { return s.conn.RemoteAddr() }

func (s *quicStream) Close() error {
	err := s.Stream.Close()
	// Give the peer a chance to read the final frames before tearing down.
	select {
	case <-s.conn.Context().Done():
	case <-time.After(quicLinger):
	}
	_ = s.conn.CloseWithError(0, "")
	return err
}

// DialQUIC connects to a QUIC message center at addr.
func DialQUIC(ctx context.Context, addr string, opts ...Option) (*MessageCenter, error) {
	conn, err := q.DialAddr(ctx, addr, clientTLSConfig(addr), &q.Config{})
	if err != nil {
		return nil, fmt.Errorf("net: dial quic %s: %w", addr, err)
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "")
		return nil, fmt.Errorf("net: open stream: %w", err)
	}
	if _, err := stream.Write(quicPreamble); err != nil {
		_ = conn.CloseWithError(0, "")
		return nil, fmt.Errorf("net: write preamble: %w", err)
	}
	return NewMessageCenter(&quicStream{Stream: stream, conn: conn}, opts...), nil
}

// QUICListener accepts QUIC connections, one message stream per connection.
// Connections are set up in the background, so one that never opens its
// stream does not hold up the others.
type QUICListener struct {
	inner  *q.Listener
	opts   []Option
	ready  chan *MessageCenter
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	err    error // written before done is closed
}

// ListenQUIC binds a UDP address for QUIC.
func ListenQUIC(addr string, opts ...Option) (*QUICListener, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	tlsConf, err := serverTLSConfig(addr, o)
	if err != nil {
		return nil, err
	}
	ln, err := q.ListenAddr(addr, tlsConf, &q.Config{})
	if err != nil {
		return nil, fmt.Errorf("net: listen quic %s: %w", addr, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	l := &QUICListener{
		inner:  ln,
		opts:   opts,
		ready:  make(chan *MessageCenter),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go l.acceptLoop()
	return l, nil
}

func (l *QUICListener) acceptLoop() {
	defer close(l.done)
	for {
		conn, err := l.inner.Accept(l.ctx)
		if err != nil {
			if !errors.Is(err, q.ErrServerClosed) && l.ctx.Err() == nil {
				l.err = fmt.Errorf("net: accept quic: %w", err)
			}
			l.cancel()
			return
		}
		go l.openStream(conn)
	}
}

// openStream waits up to quicStreamTimeout for the dialer's stream and preamble.
func (l *QUICListener) openStream(conn q.Connection) {
	ctx, cancel := context.WithTimeout(l.ctx, quicStreamTimeout)
	defer cancel()

	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "")
		return
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}
	var pre [4]byte
	if _, err := io.ReadFull(stream, pre[:]); err != nil || !bytes.Equal(pre[:], quicPreamble) {
		_ = conn.CloseWithError(1, ErrBadPreamble.Error())
		return
	}
	_ = stream.SetReadDeadline(time.Time{})

	mc := NewMessageCenter(&quicStream{Stream: stream, conn: conn}, l.opts...)
	select {
	case l.ready <- mc:
	case <-l.ctx.Done():
		_ = mc.Close()
	}
}

// Accept waits for the next connection whose stream is open.
func (l *QUICListener) Accept(ctx context.Context) (*MessageCenter, error) {
	select {
	case mc := <-l.ready:
		return mc, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.done:
		if l.err != nil {
			return nil, l.err
		}
		return nil, ErrClosed
	}
}

func (l *QUICListener) Addr() stdnet.Addr { return l.inner.Addr() }

func (l *QUICListener) Close() error {
	l.cancel()
	return l.inner.Close()
}
