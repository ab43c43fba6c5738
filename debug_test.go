package roundtrip

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDebugOutput(t *testing.T) {
	t.Run("traces serialized forms and records", func(t *testing.T) {
		var buf bytes.Buffer
		records, err := New(WithDebugOutput(&buf)).Check(holder{V: 7})
		require.NoError(t, err)
		require.Len(t, records, 1)

		out := buf.String()
		assert.Contains(t, out, "serialized:\n{\"v\":7}\n")
		assert.Contains(t, out, "deserialized:\n{\"v\":7}\n")
		assert.Contains(t, out, "decoded:\n")
		assert.Contains(t, out, "float64")
		assert.Contains(t, out, "errors:\n[\"v was '7' is '7'\"]\n")
	})

	t.Run("nil writer discards", func(t *testing.T) {
		_, err := New(WithDebugOutput(nil)).Check(newEntity())
		require.NoError(t, err)
	})
}

func TestSetDebugOutput(t *testing.T) {
	t.Run("redirects and restores", func(t *testing.T) {
		var buf bytes.Buffer
		restore := SetDebugOutput(&buf)

		require.NoError(t, AssertRoundTrip(newEntity()))
		assert.Contains(t, buf.String(), "serialized:")

		restore()
		n := buf.Len()
		require.NoError(t, AssertRoundTrip(newEntity()))
		assert.Equal(t, n, buf.Len(), "output written after restore")
	})

	t.Run("checker writer takes precedence", func(t *testing.T) {
		var global, local bytes.Buffer
		t.Cleanup(SetDebugOutput(&global))

		require.NoError(t, AssertRoundTrip(newEntity(), WithDebugOutput(&local)))
		assert.Zero(t, global.Len())
		assert.NotZero(t, local.Len())
	})

	t.Run("concurrent checks keep entries whole", func(t *testing.T) {
		var buf bytes.Buffer
		t.Cleanup(SetDebugOutput(&buf))

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, AssertRoundTrip(newEntity()))
			}()
		}
		wg.Wait()

		assert.Equal(t, 8, strings.Count(buf.String(), "deserialized:\n"))
		assert.Equal(t, 8, strings.Count(buf.String(), "errors:\n[]\n"))
	})
}
