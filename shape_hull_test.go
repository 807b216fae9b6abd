// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boxHull(t *testing.T, half float64) *ConvexHull {
	t.Helper()
	vertices := []mgl64.Vec3{
		{-half, -half, -half}, {half, -half, -half},
		{-half, half, -half}, {half, half, -half},
		{-half, -half, half}, {half, -half, half},
		{-half, half, half}, {half, half, half},
	}
	faces := []HullFace{
		{Normal: mgl64.Vec3{1, 0, 0}, Distance: half},
		{Normal: mgl64.Vec3{-1, 0, 0}, Distance: half},
		{Normal: mgl64.Vec3{0, 1, 0}, Distance: half},
		{Normal: mgl64.Vec3{0, -1, 0}, Distance: half},
		{Normal: mgl64.Vec3{0, 0, 1}, Distance: half},
		{Normal: mgl64.Vec3{0, 0, -1}, Distance: half},
	}
	hull, err := NewConvexHull(vertices, faces)
	require.NoError(t, err)
	return hull
}

func TestNewConvexHullRejectsTooFewVerticesOrFaces(t *testing.T) {
	_, err := NewConvexHull([]mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, []HullFace{
		{Normal: mgl64.Vec3{1, 0, 0}}, {Normal: mgl64.Vec3{0, 1, 0}},
		{Normal: mgl64.Vec3{0, 0, 1}}, {Normal: mgl64.Vec3{-1, 0, 0}},
	})
	assert.Error(t, err)
}

func TestConvexHullLocalBoundsCoversAllVertices(t *testing.T) {
	hull := boxHull(t, 1)
	b := hull.LocalBounds()
	assert.InDelta(t, -1, b.Min[0], 1e-9)
	assert.InDelta(t, 1, b.Max[0], 1e-9)
}

func TestConvexHullCenterOfMassIsVertexAverage(t *testing.T) {
	hull := boxHull(t, 1)
	com := hull.CenterOfMass()
	assert.InDelta(t, 0, com[0], 1e-9)
	assert.InDelta(t, 0, com[1], 1e-9)
	assert.InDelta(t, 0, com[2], 1e-9)
}

func TestConvexHullSupportPicksFarthestVertex(t *testing.T) {
	hull := boxHull(t, 1)
	support := hull.Support(mgl64.Vec3{1, 1, 1})
	assert.InDelta(t, 1, support[0], 1e-9)
	assert.InDelta(t, 1, support[1], 1e-9)
	assert.InDelta(t, 1, support[2], 1e-9)
}

func TestConvexHullSurfaceNormalPicksDominantFace(t *testing.T) {
	hull := boxHull(t, 1)
	n := hull.SurfaceNormal(mgl64.Vec3{1, 0.1, 0.1}, EmptySubShapeID)
	assert.InDelta(t, 1.0, n[0], 1e-6)
}

func TestConvexHullMassPropertiesApproximatesBoxInertia(t *testing.T) {
	hull := boxHull(t, 1)
	hullMP := hull.MassProperties(1)
	box, err := NewBox(1, 1, 1)
	require.NoError(t, err)
	boxMP := box.MassProperties(1)

	assert.InDelta(t, boxMP.Mass, hullMP.Mass, 1e-6)
	assert.InDelta(t, boxMP.InertiaDiagonal[0], hullMP.InertiaDiagonal[0], 1e-6)
}
