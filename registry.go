package roundtrip

import (
	"fmt"
	"reflect"
	"sync"
)

type fieldsEntry struct {
	fn reflect.Value
}

// Registry is an Introspector backed by per-type field extractors registered
// by the caller. Values of unregistered types are handed to the fallback
// introspector, if any.
type Registry struct {
	mu       sync.RWMutex
	entries  map[reflect.Type]fieldsEntry
	fallback Introspector
}

func newRegistry() *Registry {
	return &Registry{entries: make(map[reflect.Type]fieldsEntry)}
}

var (
	fieldMapType = reflect.TypeOf((map[string]any)(nil))
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
)

func validateFuncSignature(fn any) (reflect.Value, reflect.Type, error) {
	fnVal := reflect.ValueOf(fn)
	if fnVal.Kind() != reflect.Func {
		return fnVal, nil, fmt.Errorf("invalid extractor signature (got %T)", fn)
	}
	typ := fnVal.Type()
	if typ.NumIn() != 1 || typ.NumOut() != 2 {
		return fnVal, nil, fmt.Errorf("invalid extractor signature (expected 1 input, 2 outputs; got %d, %d)", typ.NumIn(), typ.NumOut())
	}
	arg := typ.In(0)
	switch arg.Kind() {
	case reflect.Pointer, reflect.Interface:
		return fnVal, nil, fmt.Errorf("invalid extractor signature (param must be a concrete non-pointer type; got %s)", arg)
	}
	if typ.Out(0) != fieldMapType {
		return fnVal, nil, fmt.Errorf("invalid extractor signature (first return must be map[string]any; got %s)", typ.Out(0))
	}
	if typ.Out(1) != errorType {
		return fnVal, nil, fmt.Errorf("invalid extractor signature (second return must be error; got %s)", typ.Out(1))
	}
	return fnVal, arg, nil
}

// Register adds an extractor of the form func(T) (map[string]any, error) for
// the concrete type T. Pointer and interface types are rejected because the
// comparator always introspects dereferenced values.
func (r *Registry) Register(fn any) error {
	fnVal, typ, err := validateFuncSignature(fn)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[typ]; exists {
		return fmt.Errorf("extractor for %s already registered", typ)
	}
	r.entries[typ] = fieldsEntry{fn: fnVal}
	return nil
}

// Fallback sets the introspector consulted for unregistered types.
func (r *Registry) Fallback(in Introspector) {
	r.mu.Lock()
	r.fallback = in
	r.mu.Unlock()
}

// Fields implements Introspector.
func (r *Registry) Fields(v any) (map[string]any, error) {
	rv, ok := indirect(v)
	if !ok {
		return nil, nil
	}

	r.mu.RLock()
	ent, found := r.entries[rv.Type()]
	fallback := r.fallback
	r.mu.RUnlock()

	if !found {
		if fallback == nil {
			return nil, nil
		}
		return fallback.Fields(rv.Interface())
	}

	results := ent.fn.Call([]reflect.Value{rv})
	if errVal := results[1].Interface(); errVal != nil {
		return nil, fmt.Errorf("extract fields of %s: %w", rv.Type(), errVal.(error))
	}
	fields, _ := results[0].Interface().(map[string]any)
	return fields, nil
}

// Register is the typed form of (*Registry).Register.
func Register[T any](r *Registry, fn func(v T) (map[string]any, error)) error {
	return r.Register(fn)
}

// MustRegister is like Register but panics on error.
func MustRegister[T any](r *Registry, fn func(v T) (map[string]any, error)) {
	if err := Register(r, fn); err != nil {
		panic(err)
	}
}
