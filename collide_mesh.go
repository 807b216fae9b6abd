// Copyright © 2024 Galvanized Logic Inc.

package physics

import "github.com/go-gl/mathgl/mgl64"

// triangleConvex adapts one MeshTriangle to the ConvexShape interface so
// the same GJK/EPA machinery used for convex-convex pairs also drives
// convex-vs-mesh collision, one triangle at a time (§4.2).
type triangleConvex struct {
	t      *MeshTriangle
	radius float64 // A small skin, like Box's, to keep GJK/EPA stable against a zero-volume triangle.
}

func (c triangleConvex) Type() ShapeType         { return ShapeEmpty } // Never attached to a body; not addressed by ShapeType switches elsewhere.
func (c triangleConvex) LocalBounds() AABB       { return c.t.bounds() }
func (c triangleConvex) CenterOfMass() mgl64.Vec3 {
	return c.t.V0.Add(c.t.V1).Add(c.t.V2).Mul(1.0 / 3.0)
}
func (c triangleConvex) MassProperties(float64) MassProperties { return MassProperties{} }
func (c triangleConvex) SurfaceNormal(mgl64.Vec3, SubShapeID) mgl64.Vec3 {
	return c.t.normal()
}

func (c triangleConvex) Support(direction mgl64.Vec3) mgl64.Vec3 {
	best, bestDot := c.t.V0, c.t.V0.Dot(direction)
	if d := c.t.V1.Dot(direction); d > bestDot {
		best, bestDot = c.t.V1, d
	}
	if d := c.t.V2.Dot(direction); d > bestDot {
		best = c.t.V2
	}
	return best
}

func (c triangleConvex) ConvexRadius() float64 { return c.radius }

// collideConvexMesh queries mesh for every triangle whose bounds overlap
// the convex's world bounds projected into mesh-local space, runs
// GJK/EPA against each as a degenerate triangle convex, and passes each
// triangle's contacts through correctActiveEdgeNormal, which replaces a
// normal that diverges too far from the triangle's face normal with that
// face normal. The triangles' ActiveEdge flags are not consulted, so the
// correction applies whether or not the contact lies on an inactive edge.
func collideConvexMesh(shapeA ConvexShape, poseA pose, mesh *TriangleMesh, meshPose pose, settings *WorldSettings) []ManifoldPoint {
	// Shape A's bounds, transformed into the mesh's local space.
	worldBounds := recomputeLocalBounds(shapeA, poseA)
	localMin := meshPose.Rotation.Inverse().Rotate(worldBounds.Min.Sub(meshPose.Position))
	localMax := meshPose.Rotation.Inverse().Rotate(worldBounds.Max.Sub(meshPose.Position))
	localBounds := AABB{Min: localMin, Max: localMax}
	// Re-derive a proper min/max since rotation may have swapped components.
	localBounds = normalizeAABB(localBounds)

	var indices []int32
	indices = mesh.GetTrianglesInBounds(localBounds, indices)

	var points []ManifoldPoint
	for _, idx := range indices {
		tri := &mesh.Triangles[idx]
		triShape := triangleConvex{t: tri, radius: 0.01}
		fresh, colliding := collideConvex(shapeA, poseA, triShape, meshPose, settings)
		if !colliding {
			continue
		}
		correctedNormal := correctActiveEdgeNormal(fresh, tri, mesh, settings.ActiveEdgeThresholdCos)
		for i := range fresh {
			fresh[i].Normal = correctedNormal
		}
		points = append(points, fresh...)
		if len(points) >= maxManifoldPoints {
			break
		}
	}
	return points
}

// correctActiveEdgeNormal returns the first contact's normal when its dot
// product with tri's face normal is at least thresholdCos, and tri's face
// normal otherwise (also when there are no contacts). It does not read
// tri's ActiveEdge flags or mesh, so a diverging normal is replaced even
// when it comes from an active edge.
func correctActiveEdgeNormal(points []ManifoldPoint, tri *MeshTriangle, mesh *TriangleMesh, thresholdCos float64) mgl64.Vec3 {
	if len(points) == 0 {
		return tri.normal()
	}
	reported := points[0].Normal
	faceNormal := tri.normal()
	if reported.Dot(faceNormal) >= thresholdCos {
		return reported // Already close enough to the face normal; nothing to correct.
	}
	return faceNormal
}

func recomputeLocalBounds(shape ConvexShape, p pose) AABB {
	local := shape.LocalBounds()
	corners := [8]mgl64.Vec3{
		{local.Min[0], local.Min[1], local.Min[2]},
		{local.Max[0], local.Min[1], local.Min[2]},
		{local.Min[0], local.Max[1], local.Min[2]},
		{local.Min[0], local.Min[1], local.Max[2]},
		{local.Max[0], local.Max[1], local.Min[2]},
		{local.Max[0], local.Min[1], local.Max[2]},
		{local.Min[0], local.Max[1], local.Max[2]},
		{local.Max[0], local.Max[1], local.Max[2]},
	}
	bounds := NewAABB()
	for _, c := range corners {
		world := p.toWorld(c)
		bounds.Min = mgl64.Vec3{min(bounds.Min[0], world[0]), min(bounds.Min[1], world[1]), min(bounds.Min[2], world[2])}
		bounds.Max = mgl64.Vec3{max(bounds.Max[0], world[0]), max(bounds.Max[1], world[1]), max(bounds.Max[2], world[2])}
	}
	return bounds
}

func normalizeAABB(b AABB) AABB {
	return AABB{
		Min: mgl64.Vec3{min(b.Min[0], b.Max[0]), min(b.Min[1], b.Max[1]), min(b.Min[2], b.Max[2])},
		Max: mgl64.Vec3{max(b.Min[0], b.Max[0]), max(b.Min[1], b.Max[1]), max(b.Min[2], b.Max[2])},
	}
}
