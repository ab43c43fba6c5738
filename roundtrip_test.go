package roundtrip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind(t *testing.T) {
	t.Run("string names", func(t *testing.T) {
		assert.Equal(t, "null", KindNull.String())
		assert.Equal(t, "scalar", KindScalar.String())
		assert.Equal(t, "array", KindArray.String())
		assert.Equal(t, "collection", KindCollection.String())
		assert.Equal(t, "structured", KindStructured.String())
		assert.Equal(t, "unknown", Kind(42).String())
	})

	t.Run("classification", func(t *testing.T) {
		c := NewComparator()
		var nilMap map[string]int
		cases := []struct {
			in   any
			want Kind
		}{
			{nil, KindNull},
			{(*inner)(nil), KindNull},
			{nilMap, KindNull},
			{[]int(nil), KindNull},
			{1, KindScalar},
			{"s", KindScalar},
			{map[string]int{}, KindScalar},
			{struct{ A int }{}, KindScalar},
			{[2]int{}, KindArray},
			{[]int{}, KindCollection},
			{inner{}, KindStructured},
			{&inner{}, KindStructured},
		}
		for _, tc := range cases {
			got, err := c.Kind(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got, "input %#v", tc.in)
		}
	})

	t.Run("introspection error", func(t *testing.T) {
		c := NewComparator(WithIntrospector(IntrospectorFunc(func(any) (map[string]any, error) {
			return nil, assert.AnError
		})))
		_, err := c.Kind(1)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestIndirect(t *testing.T) {
	s := "x"
	ps := &s
	var iface any = &ps

	rv, ok := indirect(iface)
	require.True(t, ok)
	assert.Equal(t, "x", rv.Interface())

	var nilPtr *string
	_, ok = indirect(&nilPtr)
	assert.False(t, ok)
}
