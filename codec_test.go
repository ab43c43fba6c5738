package roundtrip

import (
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tags struct {
	Tags []string       `json:"tags"`
	Meta map[string]int `json:"meta"`
}

func TestJSON(t *testing.T) {
	t.Run("name", func(t *testing.T) {
		assert.Equal(t, "json", JSON().Name())
	})

	t.Run("nil slices and maps are written as null", func(t *testing.T) {
		data, err := JSON().Marshal(tags{})
		require.NoError(t, err)
		assert.JSONEq(t, `{"tags":null,"meta":null}`, string(data))

		var out tags
		require.NoError(t, JSON().Unmarshal(data, &out))
		assert.Nil(t, out.Tags)
		assert.Nil(t, out.Meta)
	})

	t.Run("options override defaults", func(t *testing.T) {
		data, err := JSON(json.FormatNilSliceAsNull(false)).Marshal(tags{})
		require.NoError(t, err)
		assert.JSONEq(t, `{"tags":[],"meta":null}`, string(data))
	})

	t.Run("malformed input returns error", func(t *testing.T) {
		var out tags
		require.Error(t, JSON().Unmarshal([]byte(`{"tags":`), &out))
	})
}

func TestYAML(t *testing.T) {
	t.Run("name", func(t *testing.T) {
		assert.Equal(t, "yaml", YAML().Name())
	})

	t.Run("round trip", func(t *testing.T) {
		in := tags{Tags: []string{"a", "b"}, Meta: map[string]int{"x": 1}}
		data, err := YAML().Marshal(in)
		require.NoError(t, err)

		var out tags
		require.NoError(t, YAML().Unmarshal(data, &out))
		assert.Equal(t, in, out)
	})

	t.Run("malformed input returns error", func(t *testing.T) {
		var out tags
		require.Error(t, YAML().Unmarshal([]byte("tags: [a"), &out))
	})
}
