// Package net implements a small-message protocol over a reliable byte stream.
//
// Design goals:
//   - Small payloads; loss and timeout retransmission stay with the transport (TCP or QUIC)
//   - Message delimiting on top of a stream protocol
//   - A per-slice checksum with stop-and-wait acknowledgement
//
// A message is split into slices (1024 bytes by default). Each slice travels
// behind a fixed 32-byte header; the receiver answers every slice with a
// response header, flagged correct when the checksum matched. The sender only
// moves on after a correct response and retransmits the slice otherwise.
//
// Bodies can optionally be LZ4 compressed and sealed with a crypto.Cipher
// before slicing. The receiver learns both from the header flags.
package net
