package vectorized

// Param is a precision, seed or length operand: either one value broadcast to
// every row or a full-length column. It is resolved once, before any row runs.
type Param[T Primitive] struct {
	name      string
	broadcast bool
	value     T
	column    *Vector
	values    []T
}

// Broadcast returns a parameter whose value applies to every row
func Broadcast[T Primitive](name string, value T) Param[T] {
	return Param[T]{name: name, broadcast: true, value: value}
}

// ResolveParam turns a parameter column into a Param for a call over rows rows.
//
// A length-1 column is broadcast; its value may never be null. Any other
// length must equal rows.
func ResolveParam[T Primitive](name string, v *Vector, rows int) (Param[T], error) {
	values, err := Values[T](v)
	if err != nil {
		return Param[T]{}, InvalidOperation("%s: %v", name, err)
	}
	if v.Length == 1 {
		if v.IsNull(0) {
			return Param[T]{}, MissingOperand(-1, name, name+" may not be null")
		}
		return Broadcast(name, values[0]), nil
	}
	if v.Length != rows {
		return Param[T]{}, InvalidOperation("%s has %d rows, expected %d", name, v.Length, rows)
	}
	return Param[T]{name: name, column: v, values: values}, nil
}

// Name returns the operand name of the parameter
func (p Param[T]) Name() string {
	return p.name
}

// IsBroadcast reports whether the parameter is a single value
func (p Param[T]) IsBroadcast() bool {
	return p.broadcast
}

// Broadcasted returns the single value of a broadcast parameter
func (p Param[T]) Broadcasted() (T, bool) {
	return p.value, p.broadcast
}

func (p Param[T]) at(i int) (T, bool) {
	if p.broadcast {
		return p.value, true
	}
	if p.column.IsNull(i) {
		var zero T
		return zero, false
	}
	return p.values[i], true
}

func (p Param[T]) length() int {
	if p.broadcast {
		return -1
	}
	return p.column.Length
}
