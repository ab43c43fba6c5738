package roundtrip

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/stretchr/testify/require"
)

// Option configures a Checker.
type Option func(c *Checker)

// WithCodec sets the codec used for the round trip. The default is JSON().
func WithCodec(codec Codec) Option {
	return func(c *Checker) { c.codec = codec }
}

// WithComparator sets the comparator applied to the original and the decoded
// copy.
func WithComparator(cmp *Comparator) Option {
	return func(c *Checker) { c.cmp = cmp }
}

// WithCompareOptions builds the checker's comparator from opts.
func WithCompareOptions(opts ...ComparatorOption) Option {
	return func(c *Checker) { c.cmp = NewComparator(opts...) }
}

// WithDebugOutput sends this checker's trace to w instead of the process-wide
// writer set by SetDebugOutput.
func WithDebugOutput(w io.Writer) Option {
	return func(c *Checker) {
		if w == nil {
			w = io.Discard
		}
		c.debug = &lockedWriter{w: w}
	}
}

// Checker round-trips values through a codec and compares the result with
// the original.
type Checker struct {
	codec Codec
	cmp   *Comparator
	debug *lockedWriter
}

// New returns a Checker configured by opts.
func New(opts ...Option) *Checker {
	c := &Checker{}
	for _, opt := range opts {
		opt(c)
	}
	if c.codec == nil {
		c.codec = JSON()
	}
	if c.cmp == nil {
		c.cmp = NewComparator()
	}
	return c
}

func (c *Checker) out() *lockedWriter {
	if c.debug != nil {
		return c.debug
	}
	return debugOut
}

var errNilValue = errors.New("nil value has no type to decode into")

// RoundTrip encodes v and decodes the text into a fresh value of the dynamic
// type of v. Codec failures are returned as is, wrapped with the step that
// failed.
func (c *Checker) RoundTrip(v any) (any, error) {
	if v == nil {
		return nil, fmt.Errorf("round trip: %w", errNilValue)
	}
	data, err := c.codec.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T as %s: %w", v, c.codec.Name(), err)
	}
	tracef(c.out(), "serialized:\n%s\n", data)

	out := reflect.New(reflect.TypeOf(v))
	if err := c.codec.Unmarshal(data, out.Interface()); err != nil {
		return nil, fmt.Errorf("decode %T from %s: %w", v, c.codec.Name(), err)
	}
	decoded := out.Elem().Interface()

	if w := c.out(); w.enabled() {
		again, err := c.codec.Marshal(decoded)
		if err != nil {
			return nil, fmt.Errorf("encode decoded %T as %s: %w", decoded, c.codec.Name(), err)
		}
		tracef(w, "deserialized:\n%s\n", again)
		traceDump(w, "decoded", decoded)
	}
	return decoded, nil
}

// Check round-trips v and returns the discrepancy records between v and its
// decoded copy.
func (c *Checker) Check(v any) ([]string, error) {
	decoded, err := c.RoundTrip(v)
	if err != nil {
		return nil, err
	}
	records, err := c.cmp.Compare(v, decoded)
	if err != nil {
		return nil, err
	}
	tracef(c.out(), "errors:\n%q\n", records)
	return records, nil
}

// Assert is like Check but folds the records into a single *MismatchError.
// It returns nil when v survived the round trip unchanged.
func (c *Checker) Assert(v any) error {
	records, err := c.Check(v)
	if err != nil {
		return err
	}
	if len(records) > 0 {
		return &MismatchError{Records: records}
	}
	return nil
}

// RoundTripAs is the typed form of (*Checker).RoundTrip.
func RoundTripAs[T any](c *Checker, v T) (T, error) {
	var zero T
	decoded, err := c.RoundTrip(v)
	if err != nil {
		return zero, err
	}
	return decoded.(T), nil
}

// AssertRoundTrip checks v with a Checker built from opts.
func AssertRoundTrip(v any, opts ...Option) error {
	return New(opts...).Assert(v)
}

// RequireRoundTrip fails the test immediately unless v survives the round
// trip unchanged. The failure message lists every discrepancy, one per line.
func RequireRoundTrip(t require.TestingT, v any, opts ...Option) {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	require.NoError(t, AssertRoundTrip(v, opts...))
}
