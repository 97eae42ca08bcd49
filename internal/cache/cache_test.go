package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_PutGetInvalidate(t *testing.T) {
	c := New()

	_, ok := c.Get(KindCurrentGame, "tok")
	assert.False(t, ok)

	c.Put(KindCurrentGame, "tok", "v1")
	v, ok := c.Get(KindCurrentGame, "tok")
	require.True(t, ok)
	assert.Equal(t, "v1", v)

	// Puts replace wholesale.
	c.Put(KindCurrentGame, "tok", "v2")
	v, _ = c.Get(KindCurrentGame, "tok")
	assert.Equal(t, "v2", v)

	c.Invalidate(KindCurrentGame, "tok")
	_, ok = c.Get(KindCurrentGame, "tok")
	assert.False(t, ok)
}

func TestCache_NilIsAPresentEntry(t *testing.T) {
	c := New()
	c.Put(KindCurrentGame, "tok", nil)

	v, ok := c.Get(KindCurrentGame, "tok")
	require.True(t, ok, "cached absence is still an entry")
	assert.Nil(t, v)
}

func TestCache_InvalidateKeySpansKinds(t *testing.T) {
	c := New()
	c.Put(KindCurrentGame, "old", 1)
	c.Put(KindStats, "old", 2)
	c.Put(KindCurrentGame, "other", 3)

	c.InvalidateKey("old")

	_, ok := c.Get(KindCurrentGame, "old")
	assert.False(t, ok)
	_, ok = c.Get(KindStats, "old")
	assert.False(t, ok)

	v, ok := c.Get(KindCurrentGame, "other")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}
