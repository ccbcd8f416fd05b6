// Package ptstd bundles small utility packages behind a feature graph.
//
// The capability packages live next to this one:
//
//	ptstd/crypto   AES-256-CBC, RSA-2048, SHA-256, HKDF, ChaCha20-Poly1305
//	ptstd/net      stop-and-wait message protocol over TCP or QUIC
//	ptstd/thread   fixed worker pool
//	ptstd/log      leveled line logger on zerolog
//	ptstd/linear   row-literal matrices and chained products on gonum
//	ptstd/ptr      reference-counted and nullable pointer helpers
//
// ptstd/feature describes which of them a feature name selects, and Peer
// combines net and crypto into an RSA-negotiated, AES-sealed connection.
package ptstd
