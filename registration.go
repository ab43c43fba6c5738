package roundtrip

// Registration is a deferred extractor registration. Packages that own
// data-transfer types expose values of this type so test code opts in
// explicitly instead of relying on import side-effects (init functions).
//
// For example, in a package "order":
//
//	var Compare = roundtrip.Fields(func(o Order) (map[string]any, error) {
//		return map[string]any{"id": o.ID, "lines": o.Lines}, nil
//	})
//
// Usage:
//
//	r, _ := roundtrip.NewRegistry(order.Compare /* , other types... */)
type Registration func(r *Registry) error

// Fields wraps an extractor for type T into a Registration.
func Fields[T any](fn func(v T) (map[string]any, error)) Registration {
	return func(r *Registry) error {
		return Register(r, fn)
	}
}

// FallbackTo makes the registry hand unregistered types to in, e.g.
//
//	roundtrip.NewRegistry(roundtrip.FallbackTo(roundtrip.StructFields(nil)), order.Compare)
func FallbackTo(in Introspector) Registration {
	return func(r *Registry) error {
		r.Fallback(in)
		return nil
	}
}

// Group groups multiple registrations into one:
//
//	roundtrip.Apply(r, roundtrip.Group(order.Compare, invoice.Compare), other)
func Group(regs ...Registration) Registration {
	return func(r *Registry) error { return Apply(r, regs...) }
}

// Apply applies one or more registrations to an existing registry. Stops at the
// first error and returns it.
func Apply(r *Registry, regs ...Registration) error {
	for _, reg := range regs {
		if err := reg(r); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry constructs a new registry and applies the provided registrations.
func NewRegistry(regs ...Registration) (*Registry, error) {
	r := newRegistry()
	if err := Apply(r, regs...); err != nil {
		return nil, err
	}
	return r, nil
}
