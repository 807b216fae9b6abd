// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollideConvexMeshSphereRestingOnFloorProducesContact(t *testing.T) {
	mesh, err := NewTriangleMesh(groundPlaneTriangles())
	require.NoError(t, err)
	meshPose := pose{Rotation: mgl64.QuatIdent()}

	sphere, err := NewSphere(0.5)
	require.NoError(t, err)
	spherePose := pose{Position: mgl64.Vec3{2, 0.4, 2}, Rotation: mgl64.QuatIdent()}

	settings := NewWorldSettings()
	points := collideConvexMesh(sphere, spherePose, mesh, meshPose, settings)
	require.NotEmpty(t, points)
	for _, p := range points {
		assert.InDelta(t, 1.0, p.Normal.Len(), 1e-6)
	}
}

func TestCollideConvexMeshNoContactWhenFarAboveFloor(t *testing.T) {
	mesh, err := NewTriangleMesh(groundPlaneTriangles())
	require.NoError(t, err)
	meshPose := pose{Rotation: mgl64.QuatIdent()}

	sphere, err := NewSphere(0.5)
	require.NoError(t, err)
	spherePose := pose{Position: mgl64.Vec3{2, 10, 2}, Rotation: mgl64.QuatIdent()}

	settings := NewWorldSettings()
	points := collideConvexMesh(sphere, spherePose, mesh, meshPose, settings)
	assert.Empty(t, points)
}

func TestCorrectActiveEdgeNormalUsesFaceNormalWhenReportedDivergesTooMuch(t *testing.T) {
	tri := &MeshTriangle{V0: mgl64.Vec3{0, 0, 0}, V1: mgl64.Vec3{0, 0, 1}, V2: mgl64.Vec3{1, 0, 0}}
	points := []ManifoldPoint{{Normal: mgl64.Vec3{1, 0, 0}}}

	corrected := correctActiveEdgeNormal(points, tri, nil, 0.99)
	assert.InDelta(t, 1.0, corrected[1], 1e-6) // snapped to the triangle's own (up) face normal.
}

func TestCorrectActiveEdgeNormalKeepsReportedNormalWhenCloseToFace(t *testing.T) {
	tri := &MeshTriangle{V0: mgl64.Vec3{0, 0, 0}, V1: mgl64.Vec3{0, 0, 1}, V2: mgl64.Vec3{1, 0, 0}}
	points := []ManifoldPoint{{Normal: mgl64.Vec3{0, 1, 0}}}

	corrected := correctActiveEdgeNormal(points, tri, nil, 0.99)
	assert.InDelta(t, 1.0, corrected[1], 1e-6)
}

func TestRecomputeLocalBoundsCoversRotatedSphere(t *testing.T) {
	sphere, err := NewSphere(1)
	require.NoError(t, err)
	p := pose{Position: mgl64.Vec3{5, 0, 0}, Rotation: mgl64.QuatIdent()}

	b := recomputeLocalBounds(sphere, p)
	assert.InDelta(t, 4, b.Min[0], 1e-9)
	assert.InDelta(t, 6, b.Max[0], 1e-9)
}

func TestNormalizeAABBSwapsInvertedMinMax(t *testing.T) {
	inverted := AABB{Min: mgl64.Vec3{5, 5, 5}, Max: mgl64.Vec3{-5, -5, -5}}
	normalized := normalizeAABB(inverted)
	assert.InDelta(t, -5, normalized.Min[0], 1e-9)
	assert.InDelta(t, 5, normalized.Max[0], 1e-9)
}
