// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a line segment cast for intersection queries (§4.4): Origin at
// fraction 0, Origin+Direction at fraction 1, matching RayCastResult's
// Fraction convention.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// boundsOf returns the tight AABB enclosing the ray's full segment, used
// as the broadphase's coarse-pass query box (§4.4 step 1).
func (r Ray) boundsOf() AABB {
	end := r.Origin.Add(r.Direction)
	return AABB{
		Min: mgl64.Vec3{min(r.Origin[0], end[0]), min(r.Origin[1], end[1]), min(r.Origin[2], end[2])},
		Max: mgl64.Vec3{max(r.Origin[0], end[0]), max(r.Origin[1], end[1]), max(r.Origin[2], end[2])},
	}
}

// raycastShape finds the nearest intersection of ray (in the shape's own
// world placement, via bodyPose) against shape, walking composite
// wrappers down to convex/mesh leaves with flattenShape the same way
// narrow-phase does (§4.2, §4.4). Returns the winning leaf's SubShapeID.
func raycastShape(shape Shape, bodyPose pose, ray Ray) (hit bool, fraction float64, subID SubShapeID) {
	leaves := flattenShape(shape, bodyPose, NewSubShapeIDBuilder(), nil)
	best := math.Inf(1)
	for _, leaf := range leaves {
		if leaf.mesh != nil {
			if ok, f, tri := raycastMesh(leaf.mesh, leaf.pose, ray); ok && f < best {
				hit, best, subID = true, f, SubShapeID(tri)
			}
			continue
		}
		localOrigin := leaf.pose.Rotation.Inverse().Rotate(ray.Origin.Sub(leaf.pose.Position))
		localDir := leaf.pose.Rotation.Inverse().Rotate(ray.Direction)
		if ok, f := raycastConvex(leaf.convex, localOrigin, localDir); ok && f < best {
			hit, best, subID = true, f, leaf.subID
		}
	}
	return hit, best, subID
}

// raycastConvex dispatches to the exact analytic test for primitive
// shapes and falls back to a conservative-advancement march against the
// shape's support function for hulls and tapered capsules, reusing the
// same Minkowski-support machinery gjk.go's overlap test is built on
// rather than deriving a second closed-form solution per shape.
func raycastConvex(shape ConvexShape, origin, direction mgl64.Vec3) (hit bool, fraction float64) {
	switch s := shape.(type) {
	case *Sphere:
		return raySphere(origin, direction, mgl64.Vec3{}, s.Radius)
	case *Box:
		return rayBox(origin, direction, s.HalfExtents)
	case *Capsule:
		return rayCapsule(origin, direction, s.HalfHeight, s.Radius)
	case *Cylinder:
		return rayCylinder(origin, direction, s.HalfHeight, s.Radius)
	default:
		return rayConvexMarch(shape, origin, direction)
	}
}

// raySphere solves |o + t*d|^2 = r^2 for the smallest t in [0,1].
func raySphere(origin, direction, center mgl64.Vec3, radius float64) (bool, float64) {
	oc := origin.Sub(center)
	a := direction.Dot(direction)
	if a < 1e-18 {
		return false, 0
	}
	b := 2 * oc.Dot(direction)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return false, 0
	}
	sq := math.Sqrt(disc)
	t := (-b - sq) / (2 * a)
	if t < 0 {
		t = (-b + sq) / (2 * a)
	}
	if t < 0 || t > 1 {
		return false, 0
	}
	return true, t
}

// rayBox is the classic slab method against an axis-aligned box centered
// at the origin with the given half-extents.
func rayBox(origin, direction, halfExtents mgl64.Vec3) (bool, float64) {
	tMin, tMax := 0.0, 1.0
	for axis := 0; axis < 3; axis++ {
		if math.Abs(direction[axis]) < 1e-18 {
			if origin[axis] < -halfExtents[axis] || origin[axis] > halfExtents[axis] {
				return false, 0
			}
			continue
		}
		inv := 1 / direction[axis]
		t1 := (-halfExtents[axis] - origin[axis]) * inv
		t2 := (halfExtents[axis] - origin[axis]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false, 0
		}
	}
	return true, tMin
}

// rayCapsule tests the ray against the capsule's cylindrical side wall
// (an infinite-cylinder test clipped to the segment) and its two
// hemisphere caps, keeping the smallest valid fraction.
func rayCapsule(origin, direction mgl64.Vec3, halfHeight, radius float64) (bool, float64) {
	best := math.Inf(1)
	found := false

	// Side wall: treat as a ray-cylinder test along Y, then clip the hit
	// point's Y to the segment range.
	ox, oz := origin[0], origin[2]
	dx, dz := direction[0], direction[2]
	a := dx*dx + dz*dz
	if a > 1e-18 {
		b := 2 * (ox*dx + oz*dz)
		c := ox*ox + oz*oz - radius*radius
		disc := b*b - 4*a*c
		if disc >= 0 {
			sq := math.Sqrt(disc)
			for _, t := range []float64{(-b - sq) / (2 * a), (-b + sq) / (2 * a)} {
				if t < 0 || t > 1 {
					continue
				}
				y := origin[1] + t*direction[1]
				if y >= -halfHeight && y <= halfHeight && t < best {
					best, found = t, true
				}
			}
		}
	}

	top := mgl64.Vec3{0, halfHeight, 0}
	bottom := mgl64.Vec3{0, -halfHeight, 0}
	if ok, t := raySphere(origin, direction, top, radius); ok && t < best {
		best, found = t, true
	}
	if ok, t := raySphere(origin, direction, bottom, radius); ok && t < best {
		best, found = t, true
	}
	return found, best
}

// rayCylinder tests the ray against the finite cylinder's side wall
// (clipped to its height) and its two flat end caps.
func rayCylinder(origin, direction mgl64.Vec3, halfHeight, radius float64) (bool, float64) {
	best := math.Inf(1)
	found := false

	ox, oz := origin[0], origin[2]
	dx, dz := direction[0], direction[2]
	a := dx*dx + dz*dz
	if a > 1e-18 {
		b := 2 * (ox*dx + oz*dz)
		c := ox*ox + oz*oz - radius*radius
		disc := b*b - 4*a*c
		if disc >= 0 {
			sq := math.Sqrt(disc)
			for _, t := range []float64{(-b - sq) / (2 * a), (-b + sq) / (2 * a)} {
				if t < 0 || t > 1 {
					continue
				}
				y := origin[1] + t*direction[1]
				if y >= -halfHeight && y <= halfHeight && t < best {
					best, found = t, true
				}
			}
		}
	}

	if math.Abs(direction[1]) > 1e-18 {
		for _, capY := range []float64{halfHeight, -halfHeight} {
			t := (capY - origin[1]) / direction[1]
			if t < 0 || t > 1 {
				continue
			}
			x, z := origin[0]+t*direction[0], origin[2]+t*direction[2]
			if x*x+z*z <= radius*radius && t < best {
				best, found = t, true
			}
		}
	}
	return found, best
}

const rayMarchIterations = 32
const rayMarchEpsilon = 1e-6

// rayPoint adapts a single moving point to the ConvexShape interface so
// rayConvexMarch can reuse gjk.go's Minkowski-support machinery instead of
// a bespoke point/hull intersection routine.
type rayPoint struct{}

func (rayPoint) Type() ShapeType                                    { return ShapeEmpty }
func (rayPoint) LocalBounds() AABB                                  { return AABB{} }
func (rayPoint) CenterOfMass() mgl64.Vec3                           { return mgl64.Vec3{} }
func (rayPoint) MassProperties(float64) MassProperties              { return MassProperties{} }
func (rayPoint) SurfaceNormal(mgl64.Vec3, SubShapeID) mgl64.Vec3    { return mgl64.Vec3{0, 1, 0} }
func (rayPoint) Support(mgl64.Vec3) mgl64.Vec3                      { return mgl64.Vec3{} }
func (rayPoint) ConvexRadius() float64                              { return 0 }

// rayConvexMarch walks the point origin+t*direction forward by conservative
// advancement: at each step the GJK-reported separation from shape is a
// safe lower bound on how far the point can move without possibly
// crossing the surface, so advancing by that distance (projected onto the
// ray's speed) never skips past a hit. Converges in a bounded number of
// iterations for any convex shape, at the cost of being approximate
// rather than a closed-form root (the same accuracy tradeoff
// gjkClosestPoints already accepts elsewhere in this package).
func rayConvexMarch(shape ConvexShape, origin, direction mgl64.Vec3) (bool, float64) {
	speed := direction.Len()
	if speed < 1e-12 {
		return false, 0
	}
	shapePose := pose{Rotation: mgl64.QuatIdent()}
	t := 0.0
	for iter := 0; iter < rayMarchIterations; iter++ {
		pointPose := pose{Position: origin.Add(direction.Mul(t)), Rotation: mgl64.QuatIdent()}
		separated, dist, _, _ := gjkClosestPoints(rayPoint{}, pointPose, shape, shapePose)
		if !separated || dist < rayMarchEpsilon {
			if t > 1 {
				return false, 0
			}
			return true, math.Max(0, math.Min(1, t))
		}
		t += dist / speed
		if t > 1 {
			return false, 0
		}
	}
	return false, 0
}

// raycastMesh queries mesh for every triangle whose bounds overlap the
// ray's segment AABB (projected into the mesh's local space via pose) and
// keeps the nearest Möller-Trumbore hit.
func raycastMesh(mesh *TriangleMesh, meshPose pose, ray Ray) (hit bool, fraction float64, triangleIndex int32) {
	localOrigin := meshPose.Rotation.Inverse().Rotate(ray.Origin.Sub(meshPose.Position))
	localDir := meshPose.Rotation.Inverse().Rotate(ray.Direction)
	segment := Ray{Origin: localOrigin, Direction: localDir}

	var indices []int32
	indices = mesh.GetTrianglesInBounds(segment.boundsOf(), indices)

	best := math.Inf(1)
	found := false
	for _, idx := range indices {
		tri := &mesh.Triangles[idx]
		if ok, t := rayTriangle(localOrigin, localDir, tri.V0, tri.V1, tri.V2); ok && t < best {
			best, found, triangleIndex = t, true, idx
		}
	}
	return found, best, triangleIndex
}

// rayTriangle is the standard Möller-Trumbore ray/triangle intersection
// test, clipped to fraction range [0,1].
func rayTriangle(origin, direction, v0, v1, v2 mgl64.Vec3) (bool, float64) {
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	pvec := direction.Cross(e2)
	det := e1.Dot(pvec)
	if math.Abs(det) < 1e-12 {
		return false, 0
	}
	invDet := 1 / det
	tvec := origin.Sub(v0)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return false, 0
	}
	qvec := tvec.Cross(e1)
	v := direction.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return false, 0
	}
	t := e2.Dot(qvec) * invDet
	if t < 0 || t > 1 {
		return false, 0
	}
	return true, t
}
