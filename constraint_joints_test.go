// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointConstraintPullsAnchorsTogether(t *testing.T) {
	w, movers, _ := newTestWorld(t)
	w.settings.GravityEnabled = false

	sphere, err := NewSphere(0.5)
	require.NoError(t, err)

	sA := NewBodyCreationSettings(sphere, Dynamic, movers)
	sA.Position = mgl64.Vec3{-2, 0, 0}
	idA, err := w.CreateBody(sA)
	require.NoError(t, err)

	sB := NewBodyCreationSettings(sphere, Dynamic, movers)
	sB.Position = mgl64.Vec3{2, 0, 0}
	idB, err := w.CreateBody(sB)
	require.NoError(t, err)

	joint := NewPointConstraint(idA, idB, mgl64.Vec3{}, mgl64.Vec3{})
	w.AddConstraint(joint)

	dt := 1.0 / 60.0
	for i := 0; i < 120; i++ {
		w.Update(dt)
	}

	bodyA, bodyB := w.Body(idA), w.Body(idB)
	gap := bodyB.Position.Sub(bodyA.Position).Len()
	assert.Less(t, gap, 0.5, "a point constraint should pull both bodies' anchors toward each other")
}

func TestDistanceConstraintEnforcesMaxDistance(t *testing.T) {
	w, movers, statics := newTestWorld(t)

	anchor, err := NewSphere(0.1)
	require.NoError(t, err)
	anchorSettings := NewBodyCreationSettings(anchor, Static, statics)
	anchorId, err := w.CreateBody(anchorSettings)
	require.NoError(t, err)

	ball, err := NewSphere(0.5)
	require.NoError(t, err)
	ballSettings := NewBodyCreationSettings(ball, Dynamic, movers)
	ballSettings.Position = mgl64.Vec3{0, -1, 0}
	ballId, err := w.CreateBody(ballSettings)
	require.NoError(t, err)

	joint := NewDistanceConstraint(anchorId, ballId, mgl64.Vec3{}, mgl64.Vec3{}, 0, 2)
	w.AddConstraint(joint)

	dt := 1.0 / 60.0
	for i := 0; i < 300; i++ {
		w.Update(dt)
	}

	anchorBody, ballBody := w.Body(anchorId), w.Body(ballId)
	dist := ballBody.Position.Sub(anchorBody.Position).Len()
	assert.LessOrEqual(t, dist, 2.1, "the ball should never hang further than MaxDistance from its anchor")
}

func TestRemoveConstraintStopsEnforcement(t *testing.T) {
	w, movers, _ := newTestWorld(t)
	w.settings.GravityEnabled = false

	sphere, err := NewSphere(0.5)
	require.NoError(t, err)
	sA := NewBodyCreationSettings(sphere, Dynamic, movers)
	sA.Position = mgl64.Vec3{-2, 0, 0}
	idA, err := w.CreateBody(sA)
	require.NoError(t, err)
	sB := NewBodyCreationSettings(sphere, Dynamic, movers)
	sB.Position = mgl64.Vec3{2, 0, 0}
	idB, err := w.CreateBody(sB)
	require.NoError(t, err)

	joint := NewPointConstraint(idA, idB, mgl64.Vec3{}, mgl64.Vec3{})
	handle := w.AddConstraint(joint)
	w.RemoveConstraint(handle)

	dt := 1.0 / 60.0
	for i := 0; i < 60; i++ {
		w.Update(dt)
	}

	bodyA, bodyB := w.Body(idA), w.Body(idB)
	gap := bodyB.Position.Sub(bodyA.Position).Len()
	assert.InDelta(t, 4.0, gap, 1e-6, "with the constraint removed the bodies should not have been pulled together")
}
