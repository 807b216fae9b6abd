// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterGroupMaskGatesBodies(t *testing.T) {
	body := &RigidBody{CollisionGroup: 0b01, CollisionMask: 0b01}

	assert.True(t, Filter{Group: 0b01, Mask: 0b01}.Accepts(body))
	assert.False(t, Filter{Group: 0b10, Mask: 0b10}.Accepts(body))
	assert.True(t, Filter{}.Accepts(body), "zero group/mask means no filtering")
}

func TestFilterPredicateHasFinalSay(t *testing.T) {
	body := &RigidBody{UserData: "skip me"}
	f := Filter{Predicate: func(b *RigidBody) bool { return b.UserData != "skip me" }}
	assert.False(t, f.Accepts(body))
	assert.True(t, f.Accepts(&RigidBody{}))
}

func TestAnyShapeCastCollectorStopsAtFirstHit(t *testing.T) {
	c := &AnyShapeCastCollector{}
	assert.False(t, c.AddHit(ShapeCastResult{Fraction: 0.7}))
	assert.True(t, c.Found)
	assert.Equal(t, 0.7, c.Hit.Fraction)
}

func TestClosestCollideShapeCollectorKeepsDeepestOverlap(t *testing.T) {
	c := &ClosestCollideShapeCollector{}
	c.AddHit(CollideShapeResult{PenetrationDepth: 0.1})
	c.AddHit(CollideShapeResult{PenetrationDepth: 0.5})
	c.AddHit(CollideShapeResult{PenetrationDepth: 0.2})
	assert.Equal(t, 0.5, c.Hit.PenetrationDepth)
}

func TestAnyCollideShapeCollectorStopsAtFirstHit(t *testing.T) {
	c := &AnyCollideShapeCollector{}
	assert.False(t, c.AddHit(CollideShapeResult{PenetrationDepth: 0.3}))
	assert.True(t, c.Found)
}
