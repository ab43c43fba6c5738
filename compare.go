package roundtrip

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/google/go-cmp/cmp"
)

// ErrMaxDepth is returned when a comparison descends deeper than the limit set
// with WithMaxDepth.
var ErrMaxDepth = errors.New("maximum comparison depth exceeded")

// ComparatorOption configures a Comparator.
type ComparatorOption func(c *Comparator)

// WithIntrospector sets the introspector deciding which fields are compared.
// The default is StructFields(JSONTagged).
func WithIntrospector(in Introspector) ComparatorOption {
	return func(c *Comparator) { c.in = in }
}

// WithMaxDepth bounds how many structured levels a comparison may descend.
// Zero, the default, means unlimited; the walk then relies on the graph being
// acyclic.
func WithMaxDepth(n int) ComparatorOption {
	return func(c *Comparator) { c.maxDepth = n }
}

// WithEqual replaces the equality test applied to values without comparable
// fields.
func WithEqual(eq func(before, after any) bool) ComparatorOption {
	return func(c *Comparator) { c.equal = eq }
}

// Comparator reports the structural differences between two values. A
// Comparator holds no per-call state and may be used concurrently.
type Comparator struct {
	in       Introspector
	maxDepth int
	equal    func(before, after any) bool
}

// NewComparator returns a Comparator configured by opts.
func NewComparator(opts ...ComparatorOption) *Comparator {
	c := &Comparator{
		in:    StructFields(JSONTagged),
		equal: nativeEqual,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.in == nil {
		c.in = NoFields
	}
	if c.equal == nil {
		c.equal = nativeEqual
	}
	return c
}

var exportAll = cmp.Exporter(func(reflect.Type) bool { return true })

// nativeEqual defers to an Equal method when the type has one and otherwise
// compares deeply, unexported state included.
func nativeEqual(before, after any) bool {
	return cmp.Equal(before, after, exportAll)
}

// Compare walks before and after in lockstep and returns one record per
// discrepancy, in a deterministic order. An empty result means the values are
// equivalent. The error is reserved for introspection failures and the depth
// limit; on error no records are returned.
//
// Arrays and collections are matched before the introspector is consulted, at
// the root as at any other level.
func (c *Comparator) Compare(before, after any) ([]string, error) {
	w := &walker{c: c}
	if w.compareNulls("", before, after) {
		return w.errs, nil
	}
	if sequencePair(before, after) {
		if err := w.compareValues("", before, after, 0); err != nil {
			return nil, err
		}
		return w.errs, nil
	}
	fields, err := w.fields("", before)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		err = w.compareObjects("", fields, after, 0)
	} else {
		err = w.compareValues("", before, after, 0)
	}
	if err != nil {
		return nil, err
	}
	return w.errs, nil
}

// Kind classifies v the way Compare does. A value is KindStructured when the
// comparator's introspector reports comparable fields for it; arrays and
// collections are never structured.
func (c *Comparator) Kind(v any) (Kind, error) {
	rv, k := kindOf(v)
	if k != KindScalar {
		return k, nil
	}
	fields, err := c.in.Fields(rv.Interface())
	if err != nil {
		return k, fmt.Errorf("introspect %T: %w", v, err)
	}
	if len(fields) > 0 {
		return KindStructured, nil
	}
	return KindScalar, nil
}

type walker struct {
	c    *Comparator
	errs []string
}

func (w *walker) addf(path, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if path != "" {
		msg = path + " " + msg
	}
	w.errs = append(w.errs, msg)
}

func (w *walker) fields(path string, v any) (map[string]any, error) {
	rv, ok := indirect(v)
	if !ok {
		return nil, nil
	}
	fields, err := w.c.in.Fields(rv.Interface())
	if err != nil {
		if path == "" {
			return nil, fmt.Errorf("introspect %T: %w", v, err)
		}
		return nil, fmt.Errorf("introspect %s: %w", path, err)
	}
	return fields, nil
}

// compareObjects reconciles the field set of before (already introspected)
// with the one of after.
func (w *walker) compareObjects(path string, beforeFields map[string]any, after any, depth int) error {
	if w.c.maxDepth > 0 && depth > w.c.maxDepth {
		return fmt.Errorf("compare %q: %w", path, ErrMaxDepth)
	}
	afterFields, err := w.fields(path, after)
	if err != nil {
		return err
	}

	union := maps.Clone(beforeFields)
	if union == nil {
		union = make(map[string]any, len(afterFields))
	}
	maps.Copy(union, afterFields)

	for _, key := range slices.Sorted(maps.Keys(union)) {
		b, inBefore := beforeFields[key]
		a, inAfter := afterFields[key]
		p := joinPath(path, key)
		switch {
		case inBefore && inAfter:
			if err := w.compareValues(p, b, a, depth); err != nil {
				return err
			}
		case inBefore:
			w.addf(p, "does not exist anymore")
		default:
			w.addf(p, "did not exist before")
		}
	}
	return nil
}

// compareNulls reports whether the pair was settled by null handling alone.
func (w *walker) compareNulls(path string, before, after any) bool {
	_, bk := kindOf(before)
	_, ak := kindOf(after)
	beforeSet, afterSet := bk != KindNull, ak != KindNull
	switch {
	case !beforeSet && !afterSet:
		return true
	case beforeSet != afterSet:
		w.addf(path, "is %snull but was %snull", notNull(afterSet), notNull(beforeSet))
		return true
	}
	return false
}

func notNull(set bool) string {
	if set {
		return "not "
	}
	return ""
}

func (w *walker) compareValues(path string, before, after any, depth int) error {
	if w.compareNulls(path, before, after) {
		return nil
	}
	bv, bk := kindOf(before)
	av, ak := kindOf(after)

	switch {
	case bk == KindArray && ak == KindArray:
		return w.compareSequences(path, bv, av, arrays, depth)
	case bk == KindCollection && ak == KindCollection:
		return w.compareSequences(path, bv, av, collections, depth)
	}
	_, err := w.compareLeaves(path, bv, av, depth)
	return err
}

// sequencePair reports whether before and after are both arrays or both
// collections.
func sequencePair(before, after any) bool {
	_, bk := kindOf(before)
	_, ak := kindOf(after)
	return bk == ak && (bk == KindArray || bk == KindCollection)
}

type sequence struct {
	length   string
	mismatch string
}

var (
	arrays      = sequence{length: "array length was %d is %d", mismatch: "arrays do not match"}
	collections = sequence{length: "collection length was %d is %d", mismatch: "collections do not match"}
)

// compareSequences compares element by element and stops at the first
// difference so that one divergence does not cascade into a record per
// element.
func (w *walker) compareSequences(path string, before, after reflect.Value, seq sequence, depth int) error {
	lenBefore, lenAfter := before.Len(), after.Len()
	if lenBefore != lenAfter {
		w.addf(path, seq.length, lenBefore, lenAfter)
		return nil
	}

	for i := range lenBefore {
		p := fmt.Sprintf("%s[%d]", path, i)
		b, a := before.Index(i).Interface(), after.Index(i).Interface()

		switch {
		case isNull(b) && isNull(a):
			continue
		case w.compareNulls(p, b, a):
			// exactly one side is null, already reported
		default:
			bv, _ := indirect(b)
			av, _ := indirect(a)
			equal, err := w.compareLeaves(p, bv, av, depth)
			if err != nil {
				return err
			}
			if equal {
				continue
			}
		}
		w.addf(path, "%s", seq.mismatch)
		return nil
	}
	return nil
}

// compareLeaves recurses into values exposing comparable fields and falls back
// to equality for everything else. Both values must be non-null.
func (w *walker) compareLeaves(path string, before, after reflect.Value, depth int) (bool, error) {
	b, a := before.Interface(), after.Interface()
	fields, err := w.fields(path, b)
	if err != nil {
		return false, err
	}

	if len(fields) > 0 {
		mark := len(w.errs)
		if err := w.compareObjects(path, fields, a, depth+1); err != nil {
			return false, err
		}
		if len(w.errs) == mark {
			return true, nil
		}
	} else if w.c.equal(b, a) {
		return true, nil
	}
	w.addf(path, "was '%v' is '%v'", b, a)
	return false, nil
}

func isNull(v any) bool {
	_, k := kindOf(v)
	return k == KindNull
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
