// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const shapeCastIterations = 32
const shapeCastEpsilon = 1e-6

// shapeCastConvex sweeps shapeA from poseA along direction (a full
// displacement vector; fraction 0 at poseA, 1 at poseA shifted by
// direction) against the stationary shapeB at poseB, returning the first
// time of impact via conservative advancement (§4.4): at each step the
// GJK-reported separation is a safe lower bound on how far shapeA can
// advance without possibly crossing shapeB's surface, the same technique
// raycast.go's rayConvexMarch applies to a degenerate point shape.
func shapeCastConvex(shapeA ConvexShape, poseA pose, direction mgl64.Vec3, shapeB ConvexShape, poseB pose, settings *WorldSettings) (hit bool, fraction float64, normal mgl64.Vec3) {
	speed := direction.Len()
	if speed < 1e-12 {
		overlapping, simplex := gjkIntersects(shapeA, poseA, shapeB, poseB)
		if !overlapping {
			return false, 0, mgl64.Vec3{}
		}
		n, _, converged := epaExpand(shapeA, poseA, shapeB, poseB, simplex)
		if !converged {
			// Numerical degeneracy: reported as a miss (§7).
			settings.logger().Debug("epa did not converge on penetrating shape cast, reporting miss",
				"shapeA", shapeA.Type().String(), "shapeB", shapeB.Type().String())
			return false, 0, mgl64.Vec3{}
		}
		return true, 0, n
	}

	t := 0.0
	for iter := 0; iter < shapeCastIterations; iter++ {
		sweptPose := pose{Position: poseA.Position.Add(direction.Mul(t)), Rotation: poseA.Rotation}
		separated, dist, onA, onB := gjkClosestPoints(shapeA, sweptPose, shapeB, poseB)
		if !separated {
			n := onB.Sub(onA)
			if l := n.Len(); l > 1e-12 {
				n = n.Mul(1 / l)
			} else {
				n = direction.Mul(-1 / speed)
			}
			return true, math.Max(0, math.Min(1, t)), n
		}
		if dist < shapeCastEpsilon {
			n := onA.Sub(onB)
			if l := n.Len(); l > 1e-12 {
				n = n.Mul(1 / l)
			} else {
				n = direction.Mul(-1 / speed)
			}
			return true, math.Max(0, math.Min(1, t)), n
		}
		t += dist / speed
		if t > 1 {
			return false, 0, mgl64.Vec3{}
		}
	}
	return false, 0, mgl64.Vec3{}
}

// shapeCastShape generalizes shapeCastConvex to a possibly composite
// shapeB by sweeping against every flattened convex/mesh leaf and keeping
// the nearest time of impact, mirroring narrow-phase's leaf dispatch in
// collide_dispatch.go.
func shapeCastShape(shapeA ConvexShape, poseA pose, direction mgl64.Vec3, shapeB Shape, poseB pose, settings *WorldSettings) (hit bool, fraction float64, normal mgl64.Vec3, subID SubShapeID) {
	leaves := flattenShape(shapeB, poseB, NewSubShapeIDBuilder(), nil)
	best := math.Inf(1)
	for _, leaf := range leaves {
		if leaf.mesh != nil {
			if ok, f, n, tri := shapeCastMesh(shapeA, poseA, direction, leaf.mesh, leaf.pose, settings); ok && f < best {
				hit, best, normal, subID = true, f, n, SubShapeID(tri)
			}
			continue
		}
		if ok, f, n := shapeCastConvex(shapeA, poseA, direction, leaf.convex, leaf.pose, settings); ok && f < best {
			hit, best, normal, subID = true, f, n, leaf.subID
		}
	}
	return hit, best, normal, subID
}

// shapeCastMesh sweeps shapeA against every triangle of mesh whose bounds
// overlap the swept AABB, via each triangle's triangleConvex adapter.
func shapeCastMesh(shapeA ConvexShape, poseA pose, direction mgl64.Vec3, mesh *TriangleMesh, meshPose pose, settings *WorldSettings) (hit bool, fraction float64, normal mgl64.Vec3, triangleIndex int32) {
	sweptBounds := recomputeLocalBounds(shapeA, poseA)
	endBounds := AABB{Min: sweptBounds.Min.Add(direction), Max: sweptBounds.Max.Add(direction)}
	worldBounds := normalizeAABB(sweptBounds.Union(endBounds))
	localMin := meshPose.Rotation.Inverse().Rotate(worldBounds.Min.Sub(meshPose.Position))
	localMax := meshPose.Rotation.Inverse().Rotate(worldBounds.Max.Sub(meshPose.Position))
	localBounds := normalizeAABB(AABB{Min: localMin, Max: localMax})

	var indices []int32
	indices = mesh.GetTrianglesInBounds(localBounds, indices)

	best := math.Inf(1)
	found := false
	for _, idx := range indices {
		tri := &mesh.Triangles[idx]
		triShape := triangleConvex{t: tri, radius: 0.01}
		if ok, f, n := shapeCastConvex(shapeA, poseA, direction, triShape, meshPose, settings); ok && f < best {
			best, found, normal, triangleIndex = f, true, n, idx
		}
	}
	return found, best, normal, triangleIndex
}
