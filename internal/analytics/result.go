package analytics

// ErrorKind classifies why an evaluator returned a default value instead of
// a computed one. The engine never raises for these conditions: callers get
// a typed default plus the kind, and decide how to surface it.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorInsufficientData
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorNone:
		return "none"
	case ErrorInsufficientData:
		return "insufficient_data"
	}
	return "unknown"
}

// Result pairs an evaluator's value with the soft-failure kind. When Kind is
// not ErrorNone, Value holds the documented zero/default for that evaluator
// and Detail carries a human-readable explanation.
type Result[T any] struct {
	Value  T
	Kind   ErrorKind
	Detail string
}

// OK reports whether the value was fully computed.
func (r Result[T]) OK() bool {
	return r.Kind == ErrorNone
}

func ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func insufficient[T any](v T, detail string) Result[T] {
	return Result[T]{Value: v, Kind: ErrorInsufficientData, Detail: detail}
}
