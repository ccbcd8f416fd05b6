package ptr

import "fmt"

// Object is a nullable pointer. Copies of an Object point at the same value.
type Object[T any] struct {
	p *T
}

// Null returns the null Object.
func Null[T any]() Object[T] { return Object[T]{} }

// New allocates v and points at it.
func New[T any](v T) Object[T] { return Object[T]{p: &v} }

// FromRef points at an existing value.
func FromRef[T any](p *T) Object[T] { return Object[T]{p: p} }

// IsNull reports whether o points nowhere.
func (o Object[T]) IsNull() bool { return o.p == nil }

// Get copies the pointed-to value out.
func (o Object[T]) Get() (T, bool) {
	if o.p == nil {
		var zero T
		return zero, false
	}
	return *o.p, true
}

// Ptr returns the raw pointer, nil when o is null.
func (o Object[T]) Ptr() *T { return o.p }

// OkThen calls fn with o unless o is null.
func (o Object[T]) OkThen(fn func(Object[T])) {
	if o.p != nil {
		fn(o)
	}
}

// Duplicate returns another Object pointing at the same value.
func (o Object[T]) Duplicate() Object[T] { return Object[T]{p: o.p} }

func (o Object[T]) String() string {
	if o.p == nil {
		return "<nil>"
	}
	return fmt.Sprint(*o.p)
}
