// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScaledRejectsNonPositiveScale(t *testing.T) {
	sphere, err := NewSphere(1)
	require.NoError(t, err)

	_, err = NewScaled(sphere, mgl64.Vec3{1, 0, 1})
	assert.Error(t, err)

	_, err = NewScaled(sphere, mgl64.Vec3{1, -2, 1})
	assert.Error(t, err)
}

func TestScaledLocalBoundsAppliesPerAxisScale(t *testing.T) {
	box, err := NewBox(1, 1, 1)
	require.NoError(t, err)
	scaled, err := NewScaled(box, mgl64.Vec3{2, 3, 4})
	require.NoError(t, err)

	b := scaled.LocalBounds()
	assert.InDelta(t, -2, b.Min[0], 1e-9)
	assert.InDelta(t, -3, b.Min[1], 1e-9)
	assert.InDelta(t, -4, b.Min[2], 1e-9)
	assert.InDelta(t, 2, b.Max[0], 1e-9)
	assert.InDelta(t, 3, b.Max[1], 1e-9)
	assert.InDelta(t, 4, b.Max[2], 1e-9)
}

func TestScaledMassPropertiesScalesVolumeAndInertia(t *testing.T) {
	box, err := NewBox(1, 1, 1)
	require.NoError(t, err)
	unscaled := box.MassProperties(1)

	scaled, err := NewScaled(box, mgl64.Vec3{2, 2, 2})
	require.NoError(t, err)
	mp := scaled.MassProperties(1)

	assert.InDelta(t, unscaled.Mass*8, mp.Mass, 1e-6)
}

func TestScaledSurfaceNormalReturnsUnitLength(t *testing.T) {
	sphere, err := NewSphere(1)
	require.NoError(t, err)
	scaled, err := NewScaled(sphere, mgl64.Vec3{2, 1, 1})
	require.NoError(t, err)

	n := scaled.SurfaceNormal(mgl64.Vec3{2, 0, 0}, EmptySubShapeID)
	assert.InDelta(t, 1.0, n.Len(), 1e-6)
}

func TestNewCompoundRejectsEmptyChildren(t *testing.T) {
	_, err := NewCompound(nil)
	assert.Error(t, err)
}

func TestCompoundMassPropertiesSumsChildrenViaParallelAxis(t *testing.T) {
	sphereA, err := NewSphere(1)
	require.NoError(t, err)
	sphereB, err := NewSphere(1)
	require.NoError(t, err)

	compound, err := NewCompound([]CompoundChild{
		{Shape: sphereA, Position: mgl64.Vec3{-2, 0, 0}, Rotation: mgl64.QuatIdent()},
		{Shape: sphereB, Position: mgl64.Vec3{2, 0, 0}, Rotation: mgl64.QuatIdent()},
	})
	require.NoError(t, err)

	single := sphereA.MassProperties(1)
	mp := compound.MassProperties(1)
	assert.InDelta(t, single.Mass*2, mp.Mass, 1e-6)
	// each sphere sits 2 units off the shared center of mass, so the
	// parallel-axis term must inflate inertia well past a single sphere's.
	assert.Greater(t, mp.InertiaDiagonal[1], single.InertiaDiagonal[1]*2)
}

func TestCompoundSurfaceNormalDispatchesToCorrectChild(t *testing.T) {
	sphereA, err := NewSphere(1)
	require.NoError(t, err)
	boxB, err := NewBox(1, 1, 1)
	require.NoError(t, err)

	compound, err := NewCompound([]CompoundChild{
		{Shape: sphereA, Position: mgl64.Vec3{-2, 0, 0}, Rotation: mgl64.QuatIdent()},
		{Shape: boxB, Position: mgl64.Vec3{2, 0, 0}, Rotation: mgl64.QuatIdent()},
	})
	require.NoError(t, err)

	subID := compound.ChildSubShapeID(1, EmptySubShapeID)
	// localPoint expressed in the compound's own local space, on boxB's
	// +X face once re-centered on its own local origin.
	n := compound.SurfaceNormal(mgl64.Vec3{2.5, 0, 0}, subID)
	assert.InDelta(t, 1.0, n[0], 1e-6)
	assert.InDelta(t, 0.0, n[1], 1e-6)
	assert.InDelta(t, 0.0, n[2], 1e-6)
}

func TestCompoundSurfaceNormalOutOfRangeIndexFallsBackToUp(t *testing.T) {
	sphereA, err := NewSphere(1)
	require.NoError(t, err)
	compound, err := NewCompound([]CompoundChild{
		{Shape: sphereA, Position: mgl64.Vec3{}, Rotation: mgl64.QuatIdent()},
		{Shape: sphereA, Position: mgl64.Vec3{3, 0, 0}, Rotation: mgl64.QuatIdent()},
		{Shape: sphereA, Position: mgl64.Vec3{-3, 0, 0}, Rotation: mgl64.QuatIdent()},
	})
	require.NoError(t, err)

	// Three children take 2 index bits; all-ones bits decode to index 3.
	builder := NewSubShapeIDBuilder().PushID(7, 3)
	n := compound.SurfaceNormal(mgl64.Vec3{1, 0, 0}, builder.GetID())
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, n)
}

func TestTransformedLocalBoundsAccountsForRotation(t *testing.T) {
	box, err := NewBox(1, 0.5, 0.5)
	require.NoError(t, err)
	// 90 degree rotation about Z swaps the X and Y half-extents.
	rot := mgl64.QuatRotate(mgl64.DegToRad(90), mgl64.Vec3{0, 0, 1})
	transformed := NewTransformed(box, mgl64.Vec3{}, rot)

	b := transformed.LocalBounds()
	assert.InDelta(t, 0.5, b.Max[0], 1e-6)
	assert.InDelta(t, 1.0, b.Max[1], 1e-6)
}

func TestTransformedSurfaceNormalRoundTrips(t *testing.T) {
	sphere, err := NewSphere(1)
	require.NoError(t, err)
	rot := mgl64.QuatRotate(mgl64.DegToRad(90), mgl64.Vec3{0, 1, 0})
	transformed := NewTransformed(sphere, mgl64.Vec3{5, 0, 0}, rot)

	n := transformed.SurfaceNormal(mgl64.Vec3{0, 0, -1}, EmptySubShapeID)
	assert.InDelta(t, 1.0, n.Len(), 1e-6)
}

func TestEmptyShapeHasZeroBoundsAndMass(t *testing.T) {
	e := NewEmpty()
	assert.Equal(t, AABB{}, e.LocalBounds())
	assert.Equal(t, 0.0, e.MassProperties(1).Mass)
}
