// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groundPlaneTriangles() []MeshTriangle {
	var triangles []MeshTriangle
	const n = 6
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x0, z0 := float64(i), float64(j)
			triangles = append(triangles,
				MeshTriangle{
					V0: mgl64.Vec3{x0, 0, z0},
					V1: mgl64.Vec3{x0 + 1, 0, z0},
					V2: mgl64.Vec3{x0, 0, z0 + 1},
				},
				MeshTriangle{
					V0: mgl64.Vec3{x0 + 1, 0, z0},
					V1: mgl64.Vec3{x0 + 1, 0, z0 + 1},
					V2: mgl64.Vec3{x0, 0, z0 + 1},
				},
			)
		}
	}
	return triangles
}

func TestNewTriangleMeshRejectsEmptyTriangleList(t *testing.T) {
	_, err := NewTriangleMesh(nil)
	assert.Error(t, err)
}

func TestTriangleMeshLocalBoundsCoversAllTriangles(t *testing.T) {
	mesh, err := NewTriangleMesh(groundPlaneTriangles())
	require.NoError(t, err)
	b := mesh.LocalBounds()
	assert.InDelta(t, 0, b.Min[0], 1e-9)
	assert.InDelta(t, 6, b.Max[0], 1e-9)
	assert.InDelta(t, 0, b.Min[1], 1e-9)
	assert.InDelta(t, 0, b.Max[1], 1e-9)
}

func TestTriangleMeshMassPropertiesIsZero(t *testing.T) {
	mesh, err := NewTriangleMesh(groundPlaneTriangles())
	require.NoError(t, err)
	assert.Equal(t, 0.0, mesh.MassProperties(1).Mass)
}

func TestTriangleMeshSurfaceNormalReturnsTriangleFaceNormal(t *testing.T) {
	triangles := []MeshTriangle{
		{V0: mgl64.Vec3{0, 0, 0}, V1: mgl64.Vec3{1, 0, 0}, V2: mgl64.Vec3{0, 0, 1}},
	}
	mesh, err := NewTriangleMesh(triangles)
	require.NoError(t, err)
	n := mesh.SurfaceNormal(mgl64.Vec3{}, SubShapeID(0))
	assert.InDelta(t, 1.0, n.Len(), 1e-6)
}

func TestGetTrianglesInBoundsOnlyReturnsOverlapping(t *testing.T) {
	mesh, err := NewTriangleMesh(groundPlaneTriangles())
	require.NoError(t, err)

	query := AABB{Min: mgl64.Vec3{0, -0.1, 0}, Max: mgl64.Vec3{1, 0.1, 1}}
	hits := mesh.GetTrianglesInBounds(query, nil)
	require.NotEmpty(t, hits)
	for _, idx := range hits {
		assert.True(t, mesh.Triangles[idx].bounds().Overlaps(query))
	}

	far := AABB{Min: mgl64.Vec3{100, -0.1, 100}, Max: mgl64.Vec3{101, 0.1, 101}}
	assert.Empty(t, mesh.GetTrianglesInBounds(far, nil))
}

func TestMarkActiveEdgesDeactivatesSharedCoplanarEdges(t *testing.T) {
	triangles := []MeshTriangle{
		{V0: mgl64.Vec3{0, 0, 0}, V1: mgl64.Vec3{1, 0, 0}, V2: mgl64.Vec3{0, 0, 1}},
		{V0: mgl64.Vec3{1, 0, 0}, V1: mgl64.Vec3{1, 0, 1}, V2: mgl64.Vec3{0, 0, 1}},
	}
	MarkActiveEdges(triangles, 0.99)

	// the shared diagonal edge (V1{1,0,0}->V2{0,0,1} of triangle 0) is
	// coplanar with its neighbor and must be marked inactive.
	assert.False(t, triangles[0].ActiveEdge[1])
	// the two outer edges of triangle 0 have no coplanar neighbor.
	assert.True(t, triangles[0].ActiveEdge[0])
	assert.True(t, triangles[0].ActiveEdge[2])
}
