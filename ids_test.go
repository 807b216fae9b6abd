// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBodyIdIndexAndSequence(t *testing.T) {
	id := newBodyId(7, 3)
	assert.Equal(t, uint32(7), id.Index())
	assert.Equal(t, uint32(3), id.Sequence())
}

func TestInvalidBodyIdNeverMatches(t *testing.T) {
	id := newBodyId(0, 0)
	assert.NotEqual(t, InvalidBodyId, id)
}

func TestSubShapeIDBuilderRoundTrips(t *testing.T) {
	b := NewSubShapeIDBuilder()
	b = b.PushID(2, 2)
	b = b.PushID(5, 3)
	assert.False(t, b.IsOverflowed())

	id := b.GetID()
	first, rest := PopID(id, 2)
	assert.Equal(t, uint32(2), first)
	second, _ := PopID(rest, 3)
	assert.Equal(t, uint32(5), second)
}

func TestSubShapeIDBuilderOverflowsToEmpty(t *testing.T) {
	b := NewSubShapeIDBuilder()
	for i := 0; i < 20; i++ {
		b = b.PushID(1, 2)
	}
	assert.True(t, b.IsOverflowed())
	assert.Equal(t, EmptySubShapeID, b.GetID())
}

func TestBitsForChildren(t *testing.T) {
	cases := map[int]uint{0: 0, 1: 0, 2: 1, 3: 2, 4: 2, 5: 3, 8: 3, 9: 4}
	for n, want := range cases {
		assert.Equal(t, want, bitsForChildren(n), "n=%d", n)
	}
}
