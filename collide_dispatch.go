// Copyright © 2024 Galvanized Logic Inc.

package physics

// shapeLeaf is one convex (or mesh) piece of a possibly-composite Shape,
// with its accumulated world pose and the SubShapeID addressing it from
// the root shape, produced by flattenShape's recursive walk (§3, §9).
type shapeLeaf struct {
	convex ConvexShape // nil if this leaf is a mesh.
	mesh   *TriangleMesh
	pose   pose
	subID  SubShapeID
}

// flattenShape walks shape's composite structure (Scaled/Transformed pass
// through, Compound fans out to each child pushing its index onto
// builder) and appends every convex or mesh leaf it bottoms out at, in
// the world pose basePose places the root shape at (§4.2's composite
// dispatch contract: narrow-phase always runs against convex or mesh
// leaves, never a composite shape directly).
func flattenShape(shape Shape, basePose pose, builder SubShapeIDBuilder, out []shapeLeaf) []shapeLeaf {
	switch s := shape.(type) {
	case *Compound:
		bits := bitsForChildren(len(s.Children))
		for i, child := range s.Children {
			childPose := pose{
				Position: basePose.toWorld(child.Position),
				Rotation: basePose.Rotation.Mul(child.Rotation),
			}
			out = flattenShape(child.Shape, childPose, builder.PushID(uint32(i), bits), out)
		}
		return out
	case *Scaled:
		// Scale is not applied here: the inner shape is flattened at
		// its unscaled size, so a Scaled shape collides exactly like its
		// inner shape, whether the scale is uniform or not.
		return flattenShape(s.Inner, basePose, builder, out)
	case *Transformed:
		childPose := pose{
			Position: basePose.toWorld(s.Position),
			Rotation: basePose.Rotation.Mul(s.Rotation),
		}
		return flattenShape(s.Inner, childPose, builder, out)
	case *TriangleMesh:
		return append(out, shapeLeaf{mesh: s, pose: basePose, subID: builder.GetID()})
	case ConvexShape:
		return append(out, shapeLeaf{convex: s, pose: basePose, subID: builder.GetID()})
	default:
		return out
	}
}

// contactCandidate is one sub-shape pair narrowPhase found overlapping,
// ready to become (or update) a Contact.
type contactCandidate struct {
	SubA, SubB SubShapeID
	Points     []ManifoldPoint
}

// narrowPhase runs every convex/mesh leaf of bodyA's shape against every
// leaf of bodyB's shape and returns one contactCandidate per overlapping
// pair (§4.2). The common case — both bodies carry a single primitive
// shape — flattens to exactly one leaf each and costs one GJK/EPA (or
// GJK/EPA-per-triangle) run.
func narrowPhase(bodyA, bodyB *RigidBody, settings *WorldSettings) []contactCandidate {
	poseA := pose{Position: bodyA.Position, Rotation: bodyA.Rotation}
	poseB := pose{Position: bodyB.Position, Rotation: bodyB.Rotation}

	leavesA := flattenShape(bodyA.Shape, poseA, NewSubShapeIDBuilder(), nil)
	leavesB := flattenShape(bodyB.Shape, poseB, NewSubShapeIDBuilder(), nil)

	var candidates []contactCandidate
	for _, la := range leavesA {
		for _, lb := range leavesB {
			points := collideLeaves(la, lb, settings)
			if len(points) == 0 {
				continue
			}
			candidates = append(candidates, contactCandidate{SubA: la.subID, SubB: lb.subID, Points: points})
		}
	}
	return candidates
}

func collideLeaves(la, lb shapeLeaf, settings *WorldSettings) []ManifoldPoint {
	switch {
	case la.mesh != nil && lb.mesh != nil:
		return nil // Static-vs-static mesh pairs never need solving.
	case la.mesh != nil:
		points := collideConvexMesh(lb.convex, lb.pose, la.mesh, la.pose, settings)
		for i := range points {
			points[i].Normal = points[i].Normal.Mul(-1)
			points[i].LocalAnchorA, points[i].LocalAnchorB = points[i].LocalAnchorB, points[i].LocalAnchorA
		}
		return points
	case lb.mesh != nil:
		return collideConvexMesh(la.convex, la.pose, lb.mesh, lb.pose, settings)
	default:
		points, colliding := collideConvex(la.convex, la.pose, lb.convex, lb.pose, settings)
		if !colliding {
			return nil
		}
		return points
	}
}
