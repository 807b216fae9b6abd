// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveIslandStopsPenetrationGrowth(t *testing.T) {
	w, movers, statics := newTestWorld(t)

	ground, err := NewBox(50, 1, 50)
	require.NoError(t, err)
	groundSettings := NewBodyCreationSettings(ground, Static, statics)
	groundSettings.Position = mgl64.Vec3{0, -1, 0}
	_, err = w.CreateBody(groundSettings)
	require.NoError(t, err)

	box, err := NewBox(0.5, 0.5, 0.5)
	require.NoError(t, err)
	boxSettings := NewBodyCreationSettings(box, Dynamic, movers)
	boxSettings.Position = mgl64.Vec3{0, 0.4, 0} // starts slightly penetrating the ground.
	id, err := w.CreateBody(boxSettings)
	require.NoError(t, err)

	dt := 1.0 / 60.0
	for i := 0; i < 60; i++ {
		w.Update(dt)
	}

	body := w.Body(id)
	require.NotNil(t, body)
	assert.Greater(t, body.Position[1], 0.0, "position solver should push the box back up out of the ground")
	assert.Less(t, body.Position[1], 1.0, "box should settle near the ground surface, not fly off")
}

func TestSolveIslandAppliesRestitution(t *testing.T) {
	w, movers, statics := newTestWorld(t)

	ground, err := NewBox(50, 1, 50)
	require.NoError(t, err)
	groundSettings := NewBodyCreationSettings(ground, Static, statics)
	groundSettings.Position = mgl64.Vec3{0, -1, 0}
	groundSettings.Restitution = 0.8
	_, err = w.CreateBody(groundSettings)
	require.NoError(t, err)

	sphere, err := NewSphere(0.5)
	require.NoError(t, err)
	sphereSettings := NewBodyCreationSettings(sphere, Dynamic, movers)
	sphereSettings.Position = mgl64.Vec3{0, 5, 0}
	sphereSettings.Restitution = 0.8
	id, err := w.CreateBody(sphereSettings)
	require.NoError(t, err)

	dt := 1.0 / 120.0
	bounced := false
	for i := 0; i < 600; i++ {
		w.Update(dt)
		body := w.Body(id)
		if body.Motion != nil && body.Motion.LinearVelocity[1] > 0.5 {
			bounced = true
			break
		}
	}
	assert.True(t, bounced, "a sphere with high restitution dropped onto a bouncy floor should rebound upward")
}
