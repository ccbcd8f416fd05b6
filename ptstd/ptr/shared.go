package ptr

import (
	"errors"
	"fmt"
	"sync/atomic"
)

var ErrReleased = errors.New("ptr: use of released reference")

type cell[T any] struct {
	value T
	refs  atomic.Int64
}

// Shared is one reference to a shared value. Copy references with Clone,
// not by copying the struct.
type Shared[T any] struct {
	c *cell[T]
}

// NewShared wraps v with a reference count of one.
func NewShared[T any](v T) *Shared[T] {
	c := &cell[T]{value: v}
	c.refs.Store(1)
	return &Shared[T]{c: c}
}

// Clone returns a new reference to the same value.
func (s *Shared[T]) Clone() *Shared[T] {
	c := s.cell()
	c.refs.Add(1)
	return &Shared[T]{c: c}
}

// Get returns a pointer to the shared value. Writes are seen by every reference.
func (s *Shared[T]) Get() *T {
	return &s.cell().value
}

// Count returns the number of live references, or 0 once s is released.
func (s *Shared[T]) Count() int {
	if s.c == nil {
		return 0
	}
	return int(s.c.refs.Load())
}

// Released reports whether s has been released or unwrapped.
func (s *Shared[T]) Released() bool { return s.c == nil }

// Release drops this reference. Releasing twice is a no-op.
func (s *Shared[T]) Release() {
	if s.c == nil {
		return
	}
	s.c.refs.Add(-1)
	s.c = nil
}

// TryUnwrap takes the value out when s is the only reference, releasing s.
// Otherwise s is left untouched and ok is false.
func (s *Shared[T]) TryUnwrap() (v T, ok bool) {
	c := s.cell()
	if !c.refs.CompareAndSwap(1, 0) {
		return v, false
	}
	s.c = nil
	return c.value, true
}

// UnwrapOrClone takes the value out when s is the only reference, and
// otherwise releases s and returns clone of the value.
func (s *Shared[T]) UnwrapOrClone(clone func(T) T) T {
	if v, ok := s.TryUnwrap(); ok {
		return v
	}
	v := clone(s.c.value)
	s.Release()
	return v
}

func (s *Shared[T]) String() string {
	if s.c == nil {
		return "<released>"
	}
	return fmt.Sprint(s.c.value)
}

func (s *Shared[T]) cell() *cell[T] {
	if s.c == nil {
		panic(ErrReleased)
	}
	return s.c
}
