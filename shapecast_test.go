// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeCastConvexSphereIntoStationarySphere(t *testing.T) {
	moving, err := NewSphere(1)
	require.NoError(t, err)
	target, err := NewSphere(1)
	require.NoError(t, err)

	poseA := pose{Position: mgl64.Vec3{-10, 0, 0}, Rotation: mgl64.QuatIdent()}
	poseB := pose{Position: mgl64.Vec3{0, 0, 0}, Rotation: mgl64.QuatIdent()}
	hit, frac, normal := shapeCastConvex(moving, poseA, mgl64.Vec3{20, 0, 0}, target, poseB, NewWorldSettings())

	require.True(t, hit)
	// The spheres touch once centers are 2 units apart, i.e. after moving 8
	// of the available 20 units of travel.
	assert.InDelta(t, 0.4, frac, 1e-2)
	assert.Greater(t, normal.Dot(mgl64.Vec3{-1, 0, 0}), 0.0, "normal should point back toward the incoming sphere")
}

func TestShapeCastConvexMissesWhenPathClears(t *testing.T) {
	moving, err := NewSphere(0.5)
	require.NoError(t, err)
	target, err := NewSphere(0.5)
	require.NoError(t, err)

	poseA := pose{Position: mgl64.Vec3{-10, 5, 0}, Rotation: mgl64.QuatIdent()}
	poseB := pose{Position: mgl64.Vec3{0, 0, 0}, Rotation: mgl64.QuatIdent()}
	hit, _, _ := shapeCastConvex(moving, poseA, mgl64.Vec3{20, 0, 0}, target, poseB, NewWorldSettings())
	assert.False(t, hit)
}

func TestShapeCastConvexZeroDisplacementDetectsOverlap(t *testing.T) {
	a, err := NewSphere(1)
	require.NoError(t, err)
	b, err := NewSphere(1)
	require.NoError(t, err)

	poseA := pose{Position: mgl64.Vec3{0, 0, 0}, Rotation: mgl64.QuatIdent()}
	poseB := pose{Position: mgl64.Vec3{0.5, 0, 0}, Rotation: mgl64.QuatIdent()}
	hit, frac, _ := shapeCastConvex(a, poseA, mgl64.Vec3{}, b, poseB, NewWorldSettings())
	assert.True(t, hit)
	assert.Equal(t, 0.0, frac)
}
