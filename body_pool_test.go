// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyPoolAllocateAndGet(t *testing.T) {
	p := newBodyPool()
	id, body := p.allocate()
	require.NotNil(t, body)
	body.MotionType = Dynamic

	got := p.get(id)
	require.NotNil(t, got)
	assert.Equal(t, Dynamic, got.MotionType)
}

func TestBodyPoolStaleIdAfterRelease(t *testing.T) {
	p := newBodyPool()
	id, _ := p.allocate()
	assert.True(t, p.release(id))
	assert.Nil(t, p.get(id), "a released body's old id must no longer resolve")
}

func TestBodyPoolReusesSlotWithNewSequence(t *testing.T) {
	p := newBodyPool()
	first, _ := p.allocate()
	p.release(first)
	second, _ := p.allocate()

	assert.Equal(t, first.Index(), second.Index(), "the freed slot should be reused")
	assert.NotEqual(t, first.Sequence(), second.Sequence(), "reuse must bump the sequence so the old id stays stale")
	assert.Nil(t, p.get(first))
	assert.NotNil(t, p.get(second))
}

func TestBodyPoolEachVisitsOnlyLiveBodies(t *testing.T) {
	p := newBodyPool()
	_, a := p.allocate()
	a.ObjectLayer = 1
	dead, _ := p.allocate()
	p.release(dead)
	_, c := p.allocate()
	c.ObjectLayer = 3

	var seen []int
	p.each(func(b *RigidBody) { seen = append(seen, b.ObjectLayer) })
	assert.ElementsMatch(t, []int{1, 3}, seen)
}
