// Package ptr holds two small pointer helpers.
//
// Shared is a reference-counted mutable cell: every holder sees the same
// value, and the last holder may take the value back out. Object is a
// nullable pointer with copy semantics for the handle and a few conveniences
// for the null case.
//
// Neither type synchronizes access to the pointed-to value; only the
// reference count is safe for concurrent use.
package ptr
