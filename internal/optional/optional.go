// Package optional carries values that may be absent: the next code point or
// token of an exhausted stream, or a setting the caller left unset.
package optional

// Optional is either a value or nothing. The zero value is nothing.
type Optional[T any] struct {
	present bool
	value   T
}

func (self Optional[T]) IsPresent() bool {
	return self.present
}

// Value returns the held value, or the zero value of T when absent.
func (self Optional[T]) Value() T {
	return self.value
}

// ValueOr returns the held value, or fallback when absent.
func (self Optional[T]) ValueOr(fallback T) T {
	if !self.present {
		return fallback
	}
	return self.value
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{
		present: true,
		value:   v,
	}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}
