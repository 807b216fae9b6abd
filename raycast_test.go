// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaySphereHitsAndMisses(t *testing.T) {
	hit, frac := raySphere(mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{10, 0, 0}, mgl64.Vec3{}, 1)
	require.True(t, hit)
	assert.InDelta(t, 0.4, frac, 1e-9)

	miss, _ := raySphere(mgl64.Vec3{-5, 5, 0}, mgl64.Vec3{10, 0, 0}, mgl64.Vec3{}, 1)
	assert.False(t, miss)
}

func TestRayBoxHitsAndMisses(t *testing.T) {
	hit, frac := rayBox(mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{10, 0, 0}, mgl64.Vec3{1, 1, 1})
	require.True(t, hit)
	assert.InDelta(t, 0.4, frac, 1e-9)

	miss, _ := rayBox(mgl64.Vec3{-5, 5, 0}, mgl64.Vec3{10, 0, 0}, mgl64.Vec3{1, 1, 1})
	assert.False(t, miss)
}

func TestRayCylinderHitsSideWall(t *testing.T) {
	hit, frac := rayCylinder(mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{10, 0, 0}, 2, 1)
	require.True(t, hit)
	assert.InDelta(t, 0.4, frac, 1e-9)
}

func TestRayCylinderHitsEndCap(t *testing.T) {
	hit, frac := rayCylinder(mgl64.Vec3{0, -5, 0}, mgl64.Vec3{0, 10, 0}, 2, 1)
	require.True(t, hit)
	assert.InDelta(t, 0.3, frac, 1e-9)
}

func TestRayCapsuleHitsHemisphereCap(t *testing.T) {
	hit, frac := rayCapsule(mgl64.Vec3{0, -10, 0}, mgl64.Vec3{0, 20, 0}, 1, 1)
	require.True(t, hit)
	assert.Greater(t, frac, 0.0)
	assert.Less(t, frac, 1.0)
}

func TestRayTriangleMollerTrumbore(t *testing.T) {
	v0 := mgl64.Vec3{-1, 0, -1}
	v1 := mgl64.Vec3{1, 0, -1}
	v2 := mgl64.Vec3{0, 0, 1}
	hit, frac := rayTriangle(mgl64.Vec3{0, 5, 0}, mgl64.Vec3{0, -10, 0}, v0, v1, v2)
	require.True(t, hit)
	assert.InDelta(t, 0.5, frac, 1e-9)

	miss, _ := rayTriangle(mgl64.Vec3{10, 5, 0}, mgl64.Vec3{0, -10, 0}, v0, v1, v2)
	assert.False(t, miss)
}

func TestRayConvexMarchAgainstSphereMatchesAnalytic(t *testing.T) {
	sphere, err := NewSphere(1)
	require.NoError(t, err)
	hit, frac := rayConvexMarch(sphere, mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{10, 0, 0})
	require.True(t, hit)
	assert.InDelta(t, 0.4, frac, 1e-3)
}

func TestRaycastShapeDispatchesToAnalyticSphere(t *testing.T) {
	sphere, err := NewSphere(1)
	require.NoError(t, err)
	bodyPose := pose{Position: mgl64.Vec3{0, 0, 0}, Rotation: mgl64.QuatIdent()}
	ray := Ray{Origin: mgl64.Vec3{-5, 0, 0}, Direction: mgl64.Vec3{10, 0, 0}}
	hit, frac, _ := raycastShape(sphere, bodyPose, ray)
	require.True(t, hit)
	assert.InDelta(t, 0.4, frac, 1e-9)
}

func TestRayBoundsOfCoversFullSegment(t *testing.T) {
	r := Ray{Origin: mgl64.Vec3{5, 0, 0}, Direction: mgl64.Vec3{-10, 2, 1}}
	b := r.boundsOf()
	assert.Equal(t, mgl64.Vec3{-5, 0, 0}, b.Min)
	assert.Equal(t, mgl64.Vec3{5, 2, 1}, b.Max)
}
