package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderIsFixed(t *testing.T) {
	assert.Equal(t, []string{"flash", "pro", "dreamer", "director", "opus", "resonator"}, Order())
}

func TestLookup(t *testing.T) {
	d, ok := Lookup("flash")
	require.True(t, ok)
	assert.Equal(t, VendorGenerative, d.Vendor)
	assert.Equal(t, "flashed", d.DefaultVerb)
	assert.False(t, d.CanRender)

	d, ok = Lookup("opus")
	require.True(t, ok)
	assert.Equal(t, VendorMessages, d.Vendor)
	assert.Equal(t, "claude-3-opus-20240229", d.Model)

	_, ok = Lookup("trickster")
	assert.False(t, ok)
}

func TestListByVendor(t *testing.T) {
	assert.Equal(t, []string{"opus"}, List(VendorMessages))
	assert.Equal(t, []string{"flash", "pro", "dreamer", "director", "resonator"}, List(VendorGenerative))
	assert.Len(t, List(""), 6)
}

func TestSorted(t *testing.T) {
	t.Run("reorders into registry order", func(t *testing.T) {
		assert.Equal(t, []string{"flash", "dreamer", "opus"}, Sorted([]string{"opus", "dreamer", "flash"}))
	})

	t.Run("drops unknown and duplicate tags", func(t *testing.T) {
		assert.Equal(t, []string{"pro"}, Sorted([]string{"pro", "pro", "nobody"}))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Sorted(nil))
	})
}

func TestRenderCapability(t *testing.T) {
	for _, name := range []string{"dreamer", "director", "resonator"} {
		d, ok := Lookup(name)
		require.True(t, ok)
		assert.True(t, d.CanRender, name)
	}
	for _, name := range []string{"flash", "pro", "opus"} {
		d, ok := Lookup(name)
		require.True(t, ok)
		assert.False(t, d.CanRender, name)
	}
}
