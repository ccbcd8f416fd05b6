package net

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// Version is the only header version spoken.
	Version uint8 = 1
	// HeaderSize is the encoded size of a Header.
	HeaderSize = 32
)

// Header flag bits.
const (
	FlagResponse   uint8 = 0x01
	FlagSliced     uint8 = 0x02
	FlagCompressed uint8 = 0x04
	FlagSealed     uint8 = 0x08
	FlagCorrect    uint8 = 0x10
)

var (
	ErrVersion     = errors.New("net: unsupported header version")
	ErrShortHeader = errors.New("net: short header")
)

// Header precedes every slice and every response.
// Format (big endian):
//
//	1 byte:  version
//	1 byte:  flags
//	2 bytes: reserved
//	8 bytes: begin (offset of this slice in the message)
//	8 bytes: length (data bytes following the header)
//	8 bytes: whole length of the message
//	4 bytes: checksum of the slice data
type Header struct {
	Version     uint8
	Flags       uint8
	Reserved    uint16
	Begin       uint64
	Length      uint64
	WholeLength uint64
	Check       uint32
}

func (h Header) IsResponse() bool   { return h.Flags&FlagResponse != 0 }
func (h Header) IsSliced() bool     { return h.Flags&FlagSliced != 0 }
func (h Header) IsCompressed() bool { return h.Flags&FlagCompressed != 0 }
func (h Header) IsSealed() bool     { return h.Flags&FlagSealed != 0 }
func (h Header) IsCorrect() bool    { return h.Flags&FlagCorrect != 0 }

func (h *Header) SetResponse()   { h.Flags |= FlagResponse }
func (h *Header) SetSliced()     { h.Flags |= FlagSliced }
func (h *Header) SetCompressed() { h.Flags |= FlagCompressed }
func (h *Header) SetSealed()     { h.Flags |= FlagSealed }
func (h *Header) SetCorrect()    { h.Flags |= FlagCorrect }

// MarshalBinary encodes the header into HeaderSize bytes.
func (h Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	h.put(buf)
	return buf, nil
}

func (h Header) put(buf []byte) {
	buf[0] = h.Version
	buf[1] = h.Flags
	binary.BigEndian.PutUint16(buf[2:4], h.Reserved)
	binary.BigEndian.PutUint64(buf[4:12], h.Begin)
	binary.BigEndian.PutUint64(buf[12:20], h.Length)
	binary.BigEndian.PutUint64(buf[20:28], h.WholeLength)
	binary.BigEndian.PutUint32(buf[28:32], h.Check)
}

// UnmarshalBinary decodes a header and rejects unknown versions.
func (h *Header) UnmarshalBinary(b []byte) error {
	if len(b) < HeaderSize {
		return ErrShortHeader
	}
	if b[0] != Version {
		return fmt.Errorf("%w: %d", ErrVersion, b[0])
	}
	h.Version = b[0]
	h.Flags = b[1]
	h.Reserved = binary.BigEndian.Uint16(b[2:4])
	h.Begin = binary.BigEndian.Uint64(b[4:12])
	h.Length = binary.BigEndian.Uint64(b[12:20])
	h.WholeLength = binary.BigEndian.Uint64(b[20:28])
	h.Check = binary.BigEndian.Uint32(b[28:32])
	return nil
}

// WriteHeader writes a header, optionally followed by slice data, in one write.
func WriteHeader(w io.Writer, h Header, data []byte) error {
	buf := make([]byte, HeaderSize+len(data))
	h.put(buf)
	copy(buf[HeaderSize:], data)
	_, err := w.Write(buf)
	return err
}

// ReadHeader reads exactly one header.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, ErrShortHeader
		}
		return Header{}, err
	}
	var h Header
	if err := h.UnmarshalBinary(buf[:]); err != nil {
		return Header{}, err
	}
	return h, nil
}
