package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRing_KeepsLatestInArrivalOrder(t *testing.T) {
	r := NewRing[int](100)
	for i := 0; i < 250; i++ {
		r.Push(i)
		require.LessOrEqual(t, r.Len(), 100)
	}

	items := r.Items()
	require.Len(t, items, 100)
	for i, v := range items {
		assert.Equal(t, 150+i, v)
	}
	last, ok := r.Last()
	assert.True(t, ok)
	assert.Equal(t, 249, last)
}

func TestRing_PartiallyFilled(t *testing.T) {
	r := NewRing[string](3)
	_, ok := r.Last()
	assert.False(t, ok)

	r.Push("a")
	r.Push("b")
	assert.Equal(t, []string{"a", "b"}, r.Items())

	r.Push("c")
	r.Push("d")
	assert.Equal(t, []string{"b", "c", "d"}, r.Items())
	assert.Equal(t, 3, r.Cap())
}
