package dynamo

// Codec maps a named-field state aggregate onto a flat State and back.
// Encode writes exactly Dim() components into dst.
type Codec[T any] interface {
	Dim() int
	Encode(v T, dst State)
	Decode(src State) T
}

// Typed lifts a derivative function over T into a System over State, so the
// integrators never see the aggregate type.
func Typed[T any](c Codec[T], fn func(t float64, v T) T) System {
	return typedSystem[T]{codec: c, fn: fn}
}

type typedSystem[T any] struct {
	codec Codec[T]
	fn    func(t float64, v T) T
}

func (s typedSystem[T]) Dim() int { return s.codec.Dim() }

func (s typedSystem[T]) Derive(t float64, x State) State {
	dx := make(State, s.codec.Dim())
	s.codec.Encode(s.fn(t, s.codec.Decode(x)), dx)
	return dx
}

// Encode is a convenience wrapper returning a fresh State.
func Encode[T any](c Codec[T], v T) State {
	x := make(State, c.Dim())
	c.Encode(v, x)
	return x
}
