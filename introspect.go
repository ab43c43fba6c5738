package roundtrip

import (
	"fmt"
	"reflect"
	"strings"
)

// Introspector exposes the comparable fields of a value. An empty (or nil)
// mapping means the value has no comparable fields and is compared by
// equality instead.
//
// The comparator hands over values with pointers and interfaces already
// stripped, so implementations only see the underlying value.
type Introspector interface {
	Fields(v any) (map[string]any, error)
}

// IntrospectorFunc adapts an ordinary function to the Introspector interface.
type IntrospectorFunc func(v any) (map[string]any, error)

func (f IntrospectorFunc) Fields(v any) (map[string]any, error) { return f(v) }

// NoFields is an Introspector that never reports comparable fields, turning
// every comparison into a plain equality test.
var NoFields Introspector = IntrospectorFunc(func(any) (map[string]any, error) { return nil, nil })

// FieldSelector decides whether a struct field takes part in the comparison.
type FieldSelector func(f reflect.StructField) bool

// JSONTagged selects fields carrying a json tag that is not "-".
func JSONTagged(f reflect.StructField) bool {
	tag, ok := f.Tag.Lookup("json")
	return ok && tag != "-"
}

// Exported selects every exported field.
func Exported(reflect.StructField) bool { return true }

// Tagged returns a selector accepting fields that carry the given tag key
// with any value other than "-".
func Tagged(key string) FieldSelector {
	return func(f reflect.StructField) bool {
		tag, ok := f.Tag.Lookup(key)
		return ok && tag != "-"
	}
}

// StructFields returns a reflection based Introspector. It considers the
// exported fields of a struct, including fields promoted from embedded
// structs, and keeps those accepted by sel. A nil selector means JSONTagged.
//
// Fields are keyed by their json name when one is set, otherwise by their Go
// name. Non-struct values have no fields.
func StructFields(sel FieldSelector) Introspector {
	if sel == nil {
		sel = JSONTagged
	}
	return &structFields{sel: sel}
}

type structFields struct {
	sel FieldSelector
}

func (s *structFields) Fields(v any) (map[string]any, error) {
	rv, ok := indirect(v)
	if !ok || rv.Kind() != reflect.Struct {
		return nil, nil
	}
	var out map[string]any
	for _, f := range reflect.VisibleFields(rv.Type()) {
		if f.Anonymous || !f.IsExported() || !s.sel(f) {
			continue
		}
		fv, err := rv.FieldByIndexErr(f.Index)
		if err != nil {
			return nil, fmt.Errorf("read field %s.%s: %w", rv.Type(), f.Name, err)
		}
		if out == nil {
			out = make(map[string]any)
		}
		name := fieldName(f)
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("read field %s.%s: duplicate field name %q", rv.Type(), f.Name, name)
		}
		out[name] = fv.Interface()
	}
	return out, nil
}

func fieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if idx := strings.IndexByte(tag, ','); idx >= 0 {
		tag = tag[:idx]
	}
	if tag == "" || tag == "-" {
		return f.Name
	}
	return tag
}
