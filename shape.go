// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeType enumerates the concrete variants of Shape, mirroring §3's
// tagged-variant data model.
type ShapeType int

const (
	ShapeSphere ShapeType = iota
	ShapeBox
	ShapeCapsule
	ShapeTaperedCapsule
	ShapeCylinder
	ShapeConvexHull
	ShapeTriangleMesh
	ShapeEmpty
	ShapeScaled
	ShapeTransformed
	ShapeCompound
)

// MassProperties is the output of a shape's mass computation: total mass,
// the diagonal of the (already principal-axis-aligned) inertia tensor, and
// the rotation that carries the shape's local axes onto its principal
// inertia axes. §3 calls out that the full 4x4 form carries diagnostics in
// its last row/column; we keep only the parts the solver consumes plus a
// Diagnostic string for the rest, which is all any caller has ever needed
// from it.
type MassProperties struct {
	Mass            float64
	InertiaDiagonal mgl64.Vec3
	InertiaRotation mgl64.Quat
	CenterOfMass    mgl64.Vec3
	Diagnostic      string
}

// Shape is a physics collision primitive. A Shape is always expressed in
// its own local space; combine it with a RigidBody's pose to place it in
// world space. Shapes are immutable once attached to a body (§3), so
// sharing a *Shape between bodies is safe and expected — Compound keeps
// plain Shape references rather than deep copies.
type Shape interface {
	Type() ShapeType

	// LocalBounds returns the shape's AABB in its own local space.
	LocalBounds() AABB

	// CenterOfMass returns the local-space center of mass.
	CenterOfMass() mgl64.Vec3

	// MassProperties derives mass/inertia from the given density. Shapes
	// with zero enclosed volume (Empty, and degenerate meshes) return a
	// zero Mass; rigidBody.create rejects that for Dynamic bodies unless
	// a MassPropertiesOverride was supplied (§3, §6).
	MassProperties(density float64) MassProperties

	// SurfaceNormal returns the unit outward normal at localPoint,
	// addressed via subShapeID for composite shapes (§4.2's "surface
	// normal contract"). Always unit length (§8).
	SurfaceNormal(localPoint mgl64.Vec3, subShapeID SubShapeID) mgl64.Vec3
}

// ConvexShape is implemented by every Shape whose support function is
// well defined: the primitives GJK/EPA operate on directly. Composite
// shapes are not convex in general and are handled by dispatch instead
// (collide_dispatch.go).
type ConvexShape interface {
	Shape
	// Support returns the point on the shape's surface, in local space,
	// furthest in the given direction. direction need not be normalized.
	Support(direction mgl64.Vec3) mgl64.Vec3
	// ConvexRadius is the margin used to keep GJK/EPA numerically stable
	// (Sphere and Capsule report their full radius/half-capsule radius;
	// polyhedral shapes report a small constant skin).
	ConvexRadius() float64
}

func (t ShapeType) String() string {
	names := [...]string{"Sphere", "Box", "Capsule", "TaperedCapsule", "Cylinder", "ConvexHull", "TriangleMesh", "Empty", "Scaled", "Transformed", "Compound"}
	if int(t) < len(names) {
		return names[t]
	}
	return "Unknown"
}

// ============================================================================
// Sphere

// Sphere is a convex primitive shape defined by a radius around the
// local-space origin.
type Sphere struct {
	Radius float64
}

// NewSphere creates a Sphere shape. Negative radii are rejected with a
// ConstructionError per §7's "negative radius" case.
func NewSphere(radius float64) (*Sphere, error) {
	if radius <= 0 {
		return nil, newConstructionError("radius", "must be positive")
	}
	return &Sphere{Radius: radius}, nil
}

func (s *Sphere) Type() ShapeType { return ShapeSphere }

func (s *Sphere) LocalBounds() AABB {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{Min: r.Mul(-1), Max: r}
}

func (s *Sphere) CenterOfMass() mgl64.Vec3 { return mgl64.Vec3{} }

func (s *Sphere) MassProperties(density float64) MassProperties {
	volume := 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * s.Radius
	mass := volume * density
	i := 0.4 * mass * s.Radius * s.Radius
	return MassProperties{
		Mass:            mass,
		InertiaDiagonal: mgl64.Vec3{i, i, i},
		InertiaRotation: mgl64.QuatIdent(),
	}
}

// SurfaceNormal implements the sphere contract of §4.2: normalize the
// local point, falling back to +Y at the origin.
func (s *Sphere) SurfaceNormal(localPoint mgl64.Vec3, _ SubShapeID) mgl64.Vec3 {
	if localPoint.Dot(localPoint) < 1e-18 {
		return mgl64.Vec3{0, 1, 0}
	}
	return localPoint.Normalize()
}

func (s *Sphere) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if direction.Dot(direction) < 1e-18 {
		return mgl64.Vec3{}
	}
	return direction.Normalize().Mul(s.Radius)
}

func (s *Sphere) ConvexRadius() float64 { return s.Radius }

// ============================================================================
// Box

// Box is a convex primitive defined by its half-extents, centered at the
// local-space origin. A box has 6 faces, 8 vertices, 12 edges.
type Box struct {
	HalfExtents mgl64.Vec3
}

// NewBox creates a Box shape from half-extents. Non-positive extents are
// rejected.
func NewBox(hx, hy, hz float64) (*Box, error) {
	if hx <= 0 || hy <= 0 || hz <= 0 {
		return nil, newConstructionError("halfExtents", "must be positive on every axis")
	}
	return &Box{HalfExtents: mgl64.Vec3{hx, hy, hz}}, nil
}

func (b *Box) Type() ShapeType { return ShapeBox }

func (b *Box) LocalBounds() AABB {
	return AABB{Min: b.HalfExtents.Mul(-1), Max: b.HalfExtents}
}

func (b *Box) CenterOfMass() mgl64.Vec3 { return mgl64.Vec3{} }

func (b *Box) MassProperties(density float64) MassProperties {
	h := b.HalfExtents
	mass := h[0] * 2 * h[1] * 2 * h[2] * 2 * density
	lx2, ly2, lz2 := 4*h[0]*h[0], 4*h[1]*h[1], 4*h[2]*h[2]
	return MassProperties{
		Mass: mass,
		InertiaDiagonal: mgl64.Vec3{
			mass / 12 * (ly2 + lz2),
			mass / 12 * (lx2 + lz2),
			mass / 12 * (lx2 + ly2),
		},
		InertiaRotation: mgl64.QuatIdent(),
	}
}

// SurfaceNormal snaps to the dominant face: the axis whose component,
// relative to the half-extent on that axis, has the largest magnitude
// (§4.2).
func (b *Box) SurfaceNormal(localPoint mgl64.Vec3, _ SubShapeID) mgl64.Vec3 {
	rx := math.Abs(localPoint[0]) / b.HalfExtents[0]
	ry := math.Abs(localPoint[1]) / b.HalfExtents[1]
	rz := math.Abs(localPoint[2]) / b.HalfExtents[2]
	switch {
	case rx >= ry && rx >= rz:
		return mgl64.Vec3{math.Copysign(1, localPoint[0]), 0, 0}
	case ry >= rx && ry >= rz:
		return mgl64.Vec3{0, math.Copysign(1, localPoint[1]), 0}
	default:
		return mgl64.Vec3{0, 0, math.Copysign(1, localPoint[2])}
	}
}

func (b *Box) Support(direction mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		math.Copysign(b.HalfExtents[0], direction[0]),
		math.Copysign(b.HalfExtents[1], direction[1]),
		math.Copysign(b.HalfExtents[2], direction[2]),
	}
}

// ConvexRadius is a small skin used only to stabilize GJK/EPA iteration
// near flat faces; it does not inflate the reported geometry.
func (b *Box) ConvexRadius() float64 { return 0.01 }
