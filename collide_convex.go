// Copyright © 2024 Galvanized Logic Inc.

package physics

import "github.com/go-gl/mathgl/mgl64"

// collideConvex runs GJK/EPA between two convex shapes in their given
// poses and, on overlap, builds the fresh contact points the manifold
// reduction (manifold.go's Merge) folds in (§4.2, §4.3). Dispatch between
// a single support-point contact (matching
// gazed-vu/physics/clipping.go's sphere branch exactly: a sphere's
// support point in the contact normal direction, offset by the
// penetration, is the whole manifold) and a sampled quad of points for
// polytope-like shapes (a simplification of clipping.go's full
// Sutherland-Hodgman face clip: that routine needs each shape's face/edge
// topology, which only ConvexHull among this package's shapes exposes
// uniformly, so box/capsule/hull contacts instead sample the Minkowski
// support around the contact normal, the same support-function
// primitive GJK/EPA already use, rather than porting hull-specific
// boundary-plane construction).
func collideConvex(shapeA ConvexShape, poseA pose, shapeB ConvexShape, poseB pose, settings *WorldSettings) (points []ManifoldPoint, colliding bool) {
	overlapping, simplex := gjkIntersects(shapeA, poseA, shapeB, poseB)
	if !overlapping {
		return nil, false
	}
	normal, penetration, converged := epaExpand(shapeA, poseA, shapeB, poseB, simplex)
	if !converged {
		// Numerical degeneracy: treated as no contact this step (§7).
		settings.logger().Debug("epa did not converge, dropping contact",
			"shapeA", shapeA.Type().String(), "shapeB", shapeB.Type().String())
		return nil, false
	}

	if shapeA.Type() == ShapeSphere || shapeB.Type() == ShapeSphere {
		return spherePoint(shapeA, poseA, shapeB, poseB, normal, penetration), true
	}
	return sampledManifold(shapeA, poseA, shapeB, poseB, normal, penetration), true
}

// spherePoint builds a single-point manifold exactly mirroring
// clipping_get_contact_manifold's sphere cases: the sphere's support
// point along the contact normal is one side of the contact, offset by
// the penetration depth along the normal is the other.
func spherePoint(shapeA ConvexShape, poseA pose, shapeB ConvexShape, poseB pose, normal mgl64.Vec3, penetration float64) []ManifoldPoint {
	var worldA, worldB mgl64.Vec3
	if shapeA.Type() == ShapeSphere {
		worldA = poseA.toWorld(shapeA.Support(poseA.Rotation.Inverse().Rotate(normal)))
		worldB = worldA.Sub(normal.Mul(penetration))
	} else {
		worldB = poseB.toWorld(shapeB.Support(poseB.Rotation.Inverse().Rotate(normal.Mul(-1))))
		worldA = worldB.Add(normal.Mul(penetration))
	}
	return []ManifoldPoint{{
		LocalAnchorA: poseA.Rotation.Inverse().Rotate(worldA.Sub(poseA.Position)),
		LocalAnchorB: poseB.Rotation.Inverse().Rotate(worldB.Sub(poseB.Position)),
		Normal:       normal,
		Depth:        penetration,
	}}
}

// sampledManifold approximates a face-clip manifold by taking each
// shape's support point along the contact normal and shifting both by the
// same 5 offsets (the center plus 4 spanning a small quad in the tangent
// plane). Because both points move by the same offset, every sample has
// the same depth along the normal, so the samples pass or fail the
// overlap check together; no per-shape face topology is used.
func sampledManifold(shapeA ConvexShape, poseA pose, shapeB ConvexShape, poseB pose, normal mgl64.Vec3, penetration float64) []ManifoldPoint {
	t1 := arbitraryPerpendicular(normal)
	t2 := normal.Cross(t1)

	extent := min(shapeA.LocalBounds().Extents().Len(), shapeB.LocalBounds().Extents().Len())
	span := extent * 0.5

	offsets := []mgl64.Vec3{
		{}, // center, always kept.
		t1.Mul(span),
		t1.Mul(-span),
		t2.Mul(span),
		t2.Mul(-span),
	}

	var points []ManifoldPoint
	for _, offset := range offsets {
		worldA := poseA.toWorld(shapeA.Support(poseA.Rotation.Inverse().Rotate(normal))).Add(offset)
		worldB := poseB.toWorld(shapeB.Support(poseB.Rotation.Inverse().Rotate(normal.Mul(-1)))).Add(offset)
		depth := worldA.Sub(worldB).Dot(normal.Mul(-1)) + penetration
		if depth < -1e-4 {
			continue // this sample point has separated; not part of the contact region.
		}
		points = append(points, ManifoldPoint{
			LocalAnchorA: poseA.Rotation.Inverse().Rotate(worldA.Sub(poseA.Position)),
			LocalAnchorB: poseB.Rotation.Inverse().Rotate(worldB.Sub(poseB.Position)),
			Normal:       normal,
			Depth:        penetration,
		})
		if len(points) == maxManifoldPoints {
			break
		}
	}
	if len(points) == 0 {
		// Every sample separated; fall back to the single deepest point.
		points = spherePoint(shapeA, poseA, shapeB, poseB, normal, penetration)
	}
	return points
}
