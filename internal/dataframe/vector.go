package dataframe

import (
	"fmt"
	"slices"
	"time"
)

// Values is a single column of a Frame. Implementations never share their
// backing arrays with the results of Slice, Reverse or Concat.
type Values interface {
	Len() int
	Slice(from, to int) Values
	Reverse() Values
	Concat(other Values) (Values, error)
	At(i int) any
}

// Vector is the typed column used by every field type.
type Vector[T any] []T

func (v Vector[T]) Len() int {
	return len(v)
}

func (v Vector[T]) At(i int) any {
	return v[i]
}

// Slice returns a copy of rows [from, to).
func (v Vector[T]) Slice(from, to int) Values {
	out := make(Vector[T], to-from)
	copy(out, v[from:to])
	return out
}

func (v Vector[T]) Reverse() Values {
	out := slices.Clone(v)
	slices.Reverse(out)
	return out
}

// Concat appends other after v. Both columns must hold the same element type.
func (v Vector[T]) Concat(other Values) (Values, error) {
	o, ok := other.(Vector[T])
	if !ok {
		return nil, fmt.Errorf("cannot concat %T onto %T", other, v)
	}

	out := make(Vector[T], 0, len(v)+len(o))
	out = append(out, v...)
	out = append(out, o...)
	return out, nil
}

// Times returns the column as time values, if it holds them.
func Times(v Values) (Vector[time.Time], bool) {
	t, ok := v.(Vector[time.Time])
	return t, ok
}
