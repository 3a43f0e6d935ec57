package reactive

import "reflect"

// defaultEquals provides type-appropriate equality checking.
// Uses == for scalar kinds and reflect.DeepEqual for everything else.
func defaultEquals[T any](a, b T) bool {
	switch reflect.ValueOf(&a).Elem().Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.String, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return any(a) == any(b)
	default:
		return reflect.DeepEqual(a, b)
	}
}

// equality is the change-detection policy shared by Signal and Memo.
type equality[T any] struct {
	fn     func(T, T) bool
	always bool
}

// equals reports whether a and b should be treated as the same value.
// An always-notify policy never reports equality.
func (e *equality[T]) equals(a, b T) bool {
	if e.always {
		return false
	}
	if e.fn != nil {
		return e.fn(a, b)
	}
	return defaultEquals(a, b)
}
