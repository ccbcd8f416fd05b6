package net

import (
	"context"
	"encoding"
	"errors"
	"fmt"
	"io"
	stdnet "net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/TheusHen/ptstd/ptstd/crypto"
	plog "github.com/TheusHen/ptstd/ptstd/log"
)

var (
	ErrTooManyRetries     = errors.New("net: slice retransmitted too many times")
	ErrMessageTooLarge    = errors.New("net: message too large")
	ErrOutOfOrder         = errors.New("net: slice out of order")
	ErrUnexpectedResponse = errors.New("net: unexpected response header")
	ErrNoCipher           = errors.New("net: sealed message but no cipher configured")
	ErrNotSealed          = errors.New("net: message is not sealed")
	ErrClosed             = errors.New("net: message center closed")
)

// Message is anything that can travel as a message body.
type Message interface {
	encoding.BinaryMarshaler
}

type deadliner interface {
	SetDeadline(t time.Time) error
}

// MessageCenter runs the stop-and-wait protocol over one stream.
// Operations are serialized; the protocol is half duplex, so both peers must
// agree on who sends next.
type MessageCenter struct {
	mu     sync.Mutex
	stream io.ReadWriteCloser
	opts   options
	log    zerolog.Logger
	closed atomic.Bool
}

// NewMessageCenter wraps an already open stream (a TCP connection, a QUIC stream, a pipe).
func NewMessageCenter(stream io.ReadWriteCloser, opts ...Option) *MessageCenter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := plog.WithTarget("net")
	if o.logger != nil {
		logger = *o.logger
	}
	return &MessageCenter{stream: stream, opts: o, log: logger}
}

// RemoteAddr returns the peer address when the stream knows it.
func (mc *MessageCenter) RemoteAddr() stdnet.Addr {
	if ra, ok := mc.stream.(interface{ RemoteAddr() stdnet.Addr }); ok {
		return ra.RemoteAddr()
	}
	return nil
}

// SetCipher replaces the body cipher for later messages. nil disables sealing.
func (mc *MessageCenter) SetCipher(c crypto.Cipher) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.opts.cipher = c
}

// Sealed reports whether a cipher is configured.
func (mc *MessageCenter) Sealed() bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.opts.cipher != nil
}

// Close closes the underlying stream, unblocking any pending operation.
func (mc *MessageCenter) Close() error {
	if !mc.closed.CompareAndSwap(false, true) {
		return nil
	}
	return mc.stream.Close()
}

// bind makes the stream fail fast once ctx is done. The returned func
// detaches ctx again.
func (mc *MessageCenter) bind(ctx context.Context) (func(), error) {
	if mc.closed.Load() {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, ok := mc.stream.(deadliner)
	if !ok {
		return func() {}, nil
	}
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		_ = d.SetDeadline(time.Unix(1, 0))
		close(fired)
	})
	return func() {
		if !stop() {
			<-fired
		}
		_ = d.SetDeadline(time.Time{})
	}, nil
}

// violation closes the center after a protocol error and returns err.
func (mc *MessageCenter) violation(err error) error {
	mc.log.Debug().Err(err).Msg("protocol violation, closing")
	_ = mc.Close()
	return err
}

// ioErr prefers the context error when ctx ended the I/O.
func ioErr(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("net: %s: %w", op, err)
}

// SendBytes sends msg and returns once every slice has been acknowledged.
func (mc *MessageCenter) SendBytes(ctx context.Context, msg []byte) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	release, err := mc.bind(ctx)
	if err != nil {
		return err
	}
	defer release()

	body, flags, err := mc.encodeBody(msg)
	if err != nil {
		return err
	}
	if len(body) > mc.opts.maxMessageSize {
		return ErrMessageTooLarge
	}

	whole := uint64(len(body))
	slice := uint64(mc.opts.sliceSize)
	if whole > slice {
		flags |= FlagSliced
	}

	var sent uint64
	for {
		n := min(slice, whole-sent)
		data := body[sent : sent+n]
		h := Header{
			Version:     Version,
			Flags:       flags,
			Begin:       sent,
			Length:      n,
			WholeLength: whole,
			Check:       mc.opts.checksum(data),
		}

		for attempt := 0; ; attempt++ {
			if attempt > mc.opts.maxRetries {
				return fmt.Errorf("%w: begin=%d", ErrTooManyRetries, h.Begin)
			}
			if err := WriteHeader(mc.stream, h, data); err != nil {
				return ioErr(ctx, "send slice", err)
			}
			resp, err := ReadHeader(mc.stream)
			if err != nil {
				return ioErr(ctx, "read response", err)
			}
			if resp.IsResponse() && resp.IsCorrect() && resp.Begin == h.Begin && resp.Length == h.Length {
				break
			}
			mc.log.Debug().
				Uint64("begin", h.Begin).
				Uint64("length", h.Length).
				Int("attempt", attempt+1).
				Msg("slice rejected, retransmitting")
		}

		sent += n
		if sent >= whole {
			break
		}
	}

	mc.log.Trace().Int("bytes", len(msg)).Int("wire_bytes", len(body)).Msg("message sent")
	return nil
}

// SendMessage sends the binary form of m.
func (mc *MessageCenter) SendMessage(ctx context.Context, m Message) error {
	b, err := m.MarshalBinary()
	if err != nil {
		return fmt.Errorf("net: encode message: %w", err)
	}
	return mc.SendBytes(ctx, b)
}

// ReceiveBytes waits for the next complete message.
func (mc *MessageCenter) ReceiveBytes(ctx context.Context) ([]byte, error) {
	return mc.ReceiveInto(ctx, nil)
}

// ReceiveInto is ReceiveBytes reusing buf's storage. The result aliases buf
// unless the body was compressed or sealed.
//
// A protocol violation (a response header, an oversized message, a slice out
// of sequence, an unknown version) leaves the stream unsynchronized, so it
// closes the MessageCenter; the sender then fails instead of waiting for an
// acknowledgement.
func (mc *MessageCenter) ReceiveInto(ctx context.Context, buf []byte) ([]byte, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	release, err := mc.bind(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	out := buf[:0]
	var (
		first    = true
		flags    uint8
		whole    uint64
		expected uint64
		scratch  []byte
	)
	for {
		h, err := ReadHeader(mc.stream)
		if errors.Is(err, ErrVersion) {
			return nil, mc.violation(err)
		}
		if err != nil {
			return nil, ioErr(ctx, "read header", err)
		}
		if h.IsResponse() {
			return nil, mc.violation(ErrUnexpectedResponse)
		}
		if first {
			if h.WholeLength > uint64(mc.opts.maxMessageSize) {
				return nil, mc.violation(fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, h.WholeLength))
			}
			flags, whole, first = h.Flags, h.WholeLength, false
		}
		if h.WholeLength != whole || h.Begin != expected || h.Length > whole-h.Begin {
			return nil, mc.violation(fmt.Errorf("%w: begin=%d length=%d expected=%d", ErrOutOfOrder, h.Begin, h.Length, expected))
		}

		if uint64(cap(scratch)) < h.Length {
			scratch = make([]byte, h.Length)
		}
		data := scratch[:h.Length]
		if _, err := io.ReadFull(mc.stream, data); err != nil {
			return nil, ioErr(ctx, "read slice", err)
		}

		ack := Header{Version: Version, Begin: h.Begin, Length: h.Length, WholeLength: h.WholeLength}
		ack.SetResponse()
		ok := mc.opts.checksum(data) == h.Check
		if ok {
			ack.SetCorrect()
			out = append(out, data...)
			expected += h.Length
		} else {
			mc.log.Debug().Uint64("begin", h.Begin).Msg("slice checksum mismatch, requesting retransmit")
		}
		if err := WriteHeader(mc.stream, ack, nil); err != nil {
			return nil, ioErr(ctx, "send response", err)
		}
		if ok && expected == whole {
			break
		}
	}

	body, err := mc.decodeBody(out, flags)
	if err != nil {
		return nil, err
	}
	mc.log.Trace().Int("bytes", len(body)).Msg("message received")
	return body, nil
}

// ReceiveMessage receives the next message and decodes it into m.
func (mc *MessageCenter) ReceiveMessage(ctx context.Context, m encoding.BinaryUnmarshaler) error {
	b, err := mc.ReceiveBytes(ctx)
	if err != nil {
		return err
	}
	if err := m.UnmarshalBinary(b); err != nil {
		return fmt.Errorf("net: decode message: %w", err)
	}
	return nil
}

func (mc *MessageCenter) encodeBody(msg []byte) ([]byte, uint8, error) {
	var flags uint8
	body := msg
	if mc.opts.compression != CompressionNone && len(body) > 0 {
		compressed, err := compress(body, mc.opts.compression)
		if err != nil {
			return nil, 0, err
		}
		if len(compressed) < len(body) {
			body = compressed
			flags |= FlagCompressed
		}
	}
	if mc.opts.cipher != nil {
		sealed, err := mc.opts.cipher.Encrypt(body)
		if err != nil {
			return nil, 0, fmt.Errorf("net: seal body: %w", err)
		}
		body = sealed
		flags |= FlagSealed
	}
	return body, flags, nil
}

func (mc *MessageCenter) decodeBody(body []byte, flags uint8) ([]byte, error) {
	sealed := flags&FlagSealed != 0
	switch {
	case sealed && mc.opts.cipher == nil:
		return nil, ErrNoCipher
	case !sealed && mc.opts.cipher != nil:
		return nil, ErrNotSealed
	case sealed:
		opened, err := mc.opts.cipher.Decrypt(body)
		if err != nil {
			return nil, fmt.Errorf("net: open body: %w", err)
		}
		body = opened
	}
	if flags&FlagCompressed != 0 {
		return decompress(body, mc.opts.maxMessageSize)
	}
	return body, nil
}
