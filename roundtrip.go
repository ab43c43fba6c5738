// Package roundtrip checks that a value survives an encode/decode round trip
// through a textual codec without losing information.
//
// The heart of the package is the structural Comparator, which walks a
// "before" and an "after" value side by side and reports every discrepancy as
// a human-readable record such as
//
//	count was '1337' is '1338'
//	tags collection length was 2 is 1
//	name is null but was not null
//
// Which fields take part in the walk is decided by an Introspector. The
// default one selects exported struct fields carrying a json tag, but callers
// may register per-type extractors in a Registry instead.
package roundtrip

import "reflect"

// Kind classifies a value for the purposes of structural comparison.
type Kind int

const (
	KindNull Kind = iota
	KindScalar
	KindArray
	KindCollection
	KindStructured
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindCollection:
		return "collection"
	case KindStructured:
		return "structured"
	default:
		return "unknown"
	}
}

// kindOf classifies v without consulting an introspector, so structured values
// come back as KindScalar. The returned value has pointers and interfaces
// stripped.
func kindOf(v any) (reflect.Value, Kind) {
	rv, ok := indirect(v)
	switch {
	case !ok:
		return rv, KindNull
	case rv.Kind() == reflect.Array:
		return rv, KindArray
	case rv.Kind() == reflect.Slice:
		return rv, KindCollection
	default:
		return rv, KindScalar
	}
}

// indirect strips pointers and interfaces. It reports false when a nil is
// reached at any level of indirection.
func indirect(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	for rv.IsValid() {
		switch rv.Kind() {
		case reflect.Pointer, reflect.Interface:
			if rv.IsNil() {
				return rv, false
			}
			rv = rv.Elem()
		case reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return rv, !rv.IsNil()
		default:
			return rv, true
		}
	}
	return rv, false
}
