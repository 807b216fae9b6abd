// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenShapeSinglePrimitiveYieldsOneLeaf(t *testing.T) {
	sphere, err := NewSphere(1)
	require.NoError(t, err)
	leaves := flattenShape(sphere, pose{Rotation: mgl64.QuatIdent()}, NewSubShapeIDBuilder(), nil)
	require.Len(t, leaves, 1)
	assert.Equal(t, sphere, leaves[0].convex)
	assert.Nil(t, leaves[0].mesh)
}

func TestFlattenShapeCompoundYieldsOneLeafPerChild(t *testing.T) {
	sphere, err := NewSphere(1)
	require.NoError(t, err)
	box, err := NewBox(1, 1, 1)
	require.NoError(t, err)

	compound, err := NewCompound([]CompoundChild{
		{Shape: sphere, Position: mgl64.Vec3{-2, 0, 0}, Rotation: mgl64.QuatIdent()},
		{Shape: box, Position: mgl64.Vec3{2, 0, 0}, Rotation: mgl64.QuatIdent()},
	})
	require.NoError(t, err)

	leaves := flattenShape(compound, pose{Rotation: mgl64.QuatIdent()}, NewSubShapeIDBuilder(), nil)
	require.Len(t, leaves, 2)
	assert.InDelta(t, -2, leaves[0].pose.Position[0], 1e-9)
	assert.InDelta(t, 2, leaves[1].pose.Position[0], 1e-9)
}

func TestFlattenShapePassesThroughScaledAndTransformed(t *testing.T) {
	sphere, err := NewSphere(1)
	require.NoError(t, err)
	scaled, err := NewScaled(sphere, mgl64.Vec3{1, 1, 1})
	require.NoError(t, err)
	transformed := NewTransformed(scaled, mgl64.Vec3{3, 0, 0}, mgl64.QuatIdent())

	leaves := flattenShape(transformed, pose{Rotation: mgl64.QuatIdent()}, NewSubShapeIDBuilder(), nil)
	require.Len(t, leaves, 1)
	assert.Equal(t, sphere, leaves[0].convex)
	assert.InDelta(t, 3, leaves[0].pose.Position[0], 1e-9)
}

func TestFlattenShapeMeshYieldsMeshLeaf(t *testing.T) {
	mesh, err := NewTriangleMesh(groundPlaneTriangles())
	require.NoError(t, err)
	leaves := flattenShape(mesh, pose{Rotation: mgl64.QuatIdent()}, NewSubShapeIDBuilder(), nil)
	require.Len(t, leaves, 1)
	assert.Nil(t, leaves[0].convex)
	assert.Same(t, mesh, leaves[0].mesh)
}

func TestNarrowPhaseFindsOverlappingCompoundChild(t *testing.T) {
	sphereA, err := NewSphere(1)
	require.NoError(t, err)
	sphereFar, err := NewSphere(1)
	require.NoError(t, err)
	sphereNear, err := NewSphere(1)
	require.NoError(t, err)

	compound, err := NewCompound([]CompoundChild{
		{Shape: sphereFar, Position: mgl64.Vec3{-10, 0, 0}, Rotation: mgl64.QuatIdent()},
		{Shape: sphereNear, Position: mgl64.Vec3{0, 0, 0}, Rotation: mgl64.QuatIdent()},
	})
	require.NoError(t, err)

	bodyA := &RigidBody{Shape: sphereA, Rotation: mgl64.QuatIdent(), Position: mgl64.Vec3{1.5, 0, 0}}
	bodyB := &RigidBody{Shape: compound, Rotation: mgl64.QuatIdent()}

	candidates := narrowPhase(bodyA, bodyB, NewWorldSettings())
	require.Len(t, candidates, 1)
	assert.Equal(t, compound.ChildSubShapeID(1, EmptySubShapeID), candidates[0].SubB)
}

func TestNarrowPhaseSkipsStaticMeshVsMeshPair(t *testing.T) {
	meshA, err := NewTriangleMesh(groundPlaneTriangles())
	require.NoError(t, err)
	meshB, err := NewTriangleMesh(groundPlaneTriangles())
	require.NoError(t, err)

	bodyA := &RigidBody{Shape: meshA, Rotation: mgl64.QuatIdent()}
	bodyB := &RigidBody{Shape: meshB, Rotation: mgl64.QuatIdent()}

	assert.Empty(t, narrowPhase(bodyA, bodyB, NewWorldSettings()))
}
