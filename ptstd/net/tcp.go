package net

import (
	"context"
	"errors"
	"fmt"
	stdnet "net"
	"time"
)

// Dial connects to a TCP message center at addr.
func Dial(ctx context.Context, addr string, opts ...Option) (*MessageCenter, error) {
	var d stdnet.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("net: dial %s: %w", addr, err)
	}
	return NewMessageCenter(conn, opts...), nil
}

// Listener accepts TCP connections and wraps each one in a MessageCenter.
type Listener struct {
	inner *stdnet.TCPListener
	opts  []Option
}

// Listen binds a TCP listener. Use "127.0.0.1:0" for an ephemeral port.
func Listen(addr string, opts ...Option) (*Listener, error) {
	tcpAddr, err := stdnet.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("net: resolve %s: %w", addr, err)
	}
	ln, err := stdnet.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return nil, fmt.Errorf("net: listen %s: %w", addr, err)
	}
	return &Listener{inner: ln, opts: opts}, nil
}

// Accept waits for the next connection or for ctx to end.
func (l *Listener) Accept(ctx context.Context) (*MessageCenter, error) {
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		_ = l.inner.SetDeadline(time.Unix(1, 0))
		close(fired)
	})
	defer func() {
		if !stop() {
			<-fired
		}
		_ = l.inner.SetDeadline(time.Time{})
	}()

	conn, err := l.inner.AcceptTCP()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, stdnet.ErrClosed) {
			return nil, ErrClosed
		}
		return nil, fmt.Errorf("net: accept: %w", err)
	}
	_ = conn.SetNoDelay(true)
	return NewMessageCenter(conn, l.opts...), nil
}

func (l *Listener) Addr() stdnet.Addr { return l.inner.Addr() }

func (l *Listener) Close() error { return l.inner.Close() }
