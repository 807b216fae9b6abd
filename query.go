// Copyright © 2024 Galvanized Logic Inc.

package physics

import "github.com/go-gl/mathgl/mgl64"

// CastRay walks every body whose broadphase AABB overlaps ray's segment
// (the coarse pass, via broadphase.QueryBounds) and reports each exact
// ray/shape hit to collector (§4.4). Bodies failing filter are skipped
// before any geometric test runs.
func (w *World) CastRay(ray Ray, filter Filter, collector RayCastCollector) {
	var candidates []int32
	candidates = w.broadphase.QueryBounds(ray.boundsOf(), candidates)
	for _, idx := range candidates {
		if int(idx) < 0 || int(idx) >= len(w.bodies.bodies) || !w.bodies.alive[idx] {
			continue
		}
		body := &w.bodies.bodies[idx]
		if !filter.Accepts(body) {
			continue
		}
		bodyPose := pose{Position: body.Position, Rotation: body.Rotation}
		if ok, fraction, subID := raycastShape(body.Shape, bodyPose, ray); ok {
			if !collector.AddHit(RayCastResult{Body: body.id, SubShapeID: subID, Fraction: fraction}) {
				return
			}
		}
	}
}

// CastShape sweeps shape from origin along direction (a full displacement
// vector) against every body whose broadphase AABB overlaps the swept
// bounds, reporting each hit to collector (§4.4).
func (w *World) CastShape(shape ConvexShape, origin mgl64.Vec3, rotation mgl64.Quat, direction mgl64.Vec3, filter Filter, collector ShapeCastCollector) {
	castPose := pose{Position: origin, Rotation: rotation}
	startWorld := recomputeLocalBounds(shape, castPose)
	endWorld := AABB{Min: startWorld.Min.Add(direction), Max: startWorld.Max.Add(direction)}
	queryBounds := normalizeAABB(startWorld.Union(endWorld))

	var candidates []int32
	candidates = w.broadphase.QueryBounds(queryBounds, candidates)
	for _, idx := range candidates {
		if int(idx) < 0 || int(idx) >= len(w.bodies.bodies) || !w.bodies.alive[idx] {
			continue
		}
		body := &w.bodies.bodies[idx]
		if !filter.Accepts(body) {
			continue
		}
		bodyPose := pose{Position: body.Position, Rotation: body.Rotation}
		if ok, fraction, normal, subID := shapeCastShape(shape, castPose, direction, body.Shape, bodyPose, w.settings); ok {
			result := ShapeCastResult{Body: body.id, SubShapeID: subID, Fraction: fraction, ContactNormal: normal}
			if !collector.AddHit(result) {
				return
			}
		}
	}
}

// CollidePoint reports every body whose shape contains point (§4.4),
// implemented as a CollideShape with a Sphere whose radius is a small
// numerical tolerance (1e-4) so the same GJK/EPA overlap path
// serves both queries.
func (w *World) CollidePoint(point mgl64.Vec3, filter Filter, collector CollideShapeCollector) {
	probe := &Sphere{Radius: 1e-4}
	w.CollideShape(probe, point, mgl64.QuatIdent(), filter, collector)
}

// CollideShape reports every body whose shape overlaps shape at the given
// pose (§4.4), walking shapeB's composite leaves the same way narrow-phase
// does.
func (w *World) CollideShape(shape ConvexShape, origin mgl64.Vec3, rotation mgl64.Quat, filter Filter, collector CollideShapeCollector) {
	shapePose := pose{Position: origin, Rotation: rotation}
	queryBounds := recomputeLocalBounds(shape, shapePose)

	var candidates []int32
	candidates = w.broadphase.QueryBounds(queryBounds, candidates)
	for _, idx := range candidates {
		if int(idx) < 0 || int(idx) >= len(w.bodies.bodies) || !w.bodies.alive[idx] {
			continue
		}
		body := &w.bodies.bodies[idx]
		if !filter.Accepts(body) {
			continue
		}
		bodyPose := pose{Position: body.Position, Rotation: body.Rotation}
		leaves := flattenShape(body.Shape, bodyPose, NewSubShapeIDBuilder(), nil)
		for _, leaf := range leaves {
			depth, overlapping := overlapDepth(shape, shapePose, leaf, w.settings)
			if !overlapping {
				continue
			}
			result := CollideShapeResult{Body: body.id, SubShapeID: leaf.subID, PenetrationDepth: depth}
			if !collector.AddHit(result) {
				return
			}
		}
	}
}

// overlapDepth tests shape against one flattened leaf, dispatching to
// per-triangle GJK/EPA for a mesh leaf exactly as collide_mesh.go does.
func overlapDepth(shape ConvexShape, shapePose pose, leaf shapeLeaf, settings *WorldSettings) (depth float64, overlapping bool) {
	if leaf.mesh != nil {
		points := collideConvexMesh(shape, shapePose, leaf.mesh, leaf.pose, settings)
		if len(points) == 0 {
			return 0, false
		}
		best := 0.0
		for _, p := range points {
			if p.Depth > best {
				best = p.Depth
			}
		}
		return best, true
	}
	points, colliding := collideConvex(shape, shapePose, leaf.convex, leaf.pose, settings)
	if !colliding {
		return 0, false
	}
	best := 0.0
	for _, p := range points {
		if p.Depth > best {
			best = p.Depth
		}
	}
	return best, true
}
