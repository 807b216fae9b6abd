// Copyright © 2024 Galvanized Logic Inc.

package physics

import "github.com/go-gl/mathgl/mgl64"

// Empty is the shape of a body with no collision geometry — useful as a
// constraint anchor or a sensor trigger volume whose trigger logic lives
// entirely in application code via onContactAdded.
type Empty struct{}

// NewEmpty creates an Empty shape.
func NewEmpty() *Empty { return &Empty{} }

func (e *Empty) Type() ShapeType                                         { return ShapeEmpty }
func (e *Empty) LocalBounds() AABB                                       { return AABB{} }
func (e *Empty) CenterOfMass() mgl64.Vec3                                { return mgl64.Vec3{} }
func (e *Empty) MassProperties(float64) MassProperties                   { return MassProperties{} }
func (e *Empty) SurfaceNormal(mgl64.Vec3, SubShapeID) mgl64.Vec3         { return mgl64.Vec3{0, 1, 0} }

// ============================================================================
// Scaled

// Scaled wraps an inner shape with a non-uniform local scale applied
// before the owning body's pose.
type Scaled struct {
	Inner Shape
	Scale mgl64.Vec3
}

// NewScaled wraps inner with scale. Zero or negative scale components are
// rejected (a scale of zero on any axis collapses the shape to a
// degenerate, unusable volume).
func NewScaled(inner Shape, scale mgl64.Vec3) (*Scaled, error) {
	if scale[0] <= 0 || scale[1] <= 0 || scale[2] <= 0 {
		return nil, newConstructionError("scale", "components must be positive")
	}
	return &Scaled{Inner: inner, Scale: scale}, nil
}

func (s *Scaled) Type() ShapeType { return ShapeScaled }

func (s *Scaled) LocalBounds() AABB {
	b := s.Inner.LocalBounds()
	return AABB{
		Min: mgl64.Vec3{b.Min[0] * s.Scale[0], b.Min[1] * s.Scale[1], b.Min[2] * s.Scale[2]},
		Max: mgl64.Vec3{b.Max[0] * s.Scale[0], b.Max[1] * s.Scale[1], b.Max[2] * s.Scale[2]},
	}
}

func (s *Scaled) CenterOfMass() mgl64.Vec3 {
	c := s.Inner.CenterOfMass()
	return mgl64.Vec3{c[0] * s.Scale[0], c[1] * s.Scale[1], c[2] * s.Scale[2]}
}

// MassProperties scales the inner shape's mass by the scale volume factor
// and multiplies each inertia axis by the product of the other two axes'
// scales — exact under uniform scale and an approximation under
// non-uniform scale, the same tradeoff ConvexHull's box-approximated
// inertia makes.
func (s *Scaled) MassProperties(density float64) MassProperties {
	inner := s.Inner.MassProperties(density * s.Scale[0] * s.Scale[1] * s.Scale[2])
	return MassProperties{
		Mass: inner.Mass,
		InertiaDiagonal: mgl64.Vec3{
			inner.InertiaDiagonal[0] * s.Scale[1] * s.Scale[2],
			inner.InertiaDiagonal[1] * s.Scale[0] * s.Scale[2],
			inner.InertiaDiagonal[2] * s.Scale[0] * s.Scale[1],
		},
		InertiaRotation: inner.InertiaRotation,
		Diagnostic:      "scaled shape inertia approximated via per-axis scale factors",
	}
}

// SurfaceNormal takes the inner shape's normal at the unscaled point,
// divides it by the scale per axis (which turns it under non-uniform
// scale) and re-normalizes, per §4.2.
func (s *Scaled) SurfaceNormal(localPoint mgl64.Vec3, subShapeID SubShapeID) mgl64.Vec3 {
	unscaled := mgl64.Vec3{localPoint[0] / s.Scale[0], localPoint[1] / s.Scale[1], localPoint[2] / s.Scale[2]}
	n := s.Inner.SurfaceNormal(unscaled, subShapeID)
	scaledNormal := mgl64.Vec3{n[0] / s.Scale[0], n[1] / s.Scale[1], n[2] / s.Scale[2]}
	if l := scaledNormal.Len(); l > 1e-12 {
		return scaledNormal.Mul(1 / l)
	}
	return n
}

// ============================================================================
// Transformed

// Transformed wraps an inner shape with an additional local-space
// position and rotation, applied before the owning body's pose — used to
// offset a single shape from its body's origin.
type Transformed struct {
	Inner    Shape
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransformed wraps inner with a local position/rotation offset.
func NewTransformed(inner Shape, position mgl64.Vec3, rotation mgl64.Quat) *Transformed {
	return &Transformed{Inner: inner, Position: position, Rotation: rotation}
}

func (t *Transformed) Type() ShapeType { return ShapeTransformed }

func (t *Transformed) LocalBounds() AABB {
	b := t.Inner.LocalBounds()
	corners := aabbCorners(b)
	out := NewAABB()
	for _, c := range corners {
		w := t.Rotation.Rotate(c).Add(t.Position)
		out.Min = mgl64.Vec3{min(out.Min[0], w[0]), min(out.Min[1], w[1]), min(out.Min[2], w[2])}
		out.Max = mgl64.Vec3{max(out.Max[0], w[0]), max(out.Max[1], w[1]), max(out.Max[2], w[2])}
	}
	return out
}

func (t *Transformed) CenterOfMass() mgl64.Vec3 {
	return t.Rotation.Rotate(t.Inner.CenterOfMass()).Add(t.Position)
}

func (t *Transformed) MassProperties(density float64) MassProperties {
	inner := t.Inner.MassProperties(density)
	rotM := t.Rotation.Mat4().Mat3()
	rotMT := rotM.Transpose()
	d := inner.InertiaDiagonal
	inertia := mgl64.Mat3{d[0], 0, 0, 0, d[1], 0, 0, 0, d[2]}
	world := rotM.Mul3(inertia).Mul3(rotMT)
	return MassProperties{
		Mass:            inner.Mass,
		InertiaDiagonal: mgl64.Vec3{world.At(0, 0), world.At(1, 1), world.At(2, 2)},
		InertiaRotation: t.Rotation.Mul(inner.InertiaRotation),
		CenterOfMass:    t.CenterOfMass(),
		Diagnostic:      "transformed shape inertia re-expressed on the diagonal only",
	}
}

// SurfaceNormal inverse-transforms the point, recurses, then rotates the
// resulting normal back into this shape's local frame, per §4.2.
func (t *Transformed) SurfaceNormal(localPoint mgl64.Vec3, subShapeID SubShapeID) mgl64.Vec3 {
	inv := t.Rotation.Inverse()
	innerPoint := inv.Rotate(localPoint.Sub(t.Position))
	n := t.Inner.SurfaceNormal(innerPoint, subShapeID)
	return t.Rotation.Rotate(n)
}

func aabbCorners(b AABB) [8]mgl64.Vec3 {
	return [8]mgl64.Vec3{
		{b.Min[0], b.Min[1], b.Min[2]}, {b.Max[0], b.Min[1], b.Min[2]},
		{b.Min[0], b.Max[1], b.Min[2]}, {b.Max[0], b.Max[1], b.Min[2]},
		{b.Min[0], b.Min[1], b.Max[2]}, {b.Max[0], b.Min[1], b.Max[2]},
		{b.Min[0], b.Max[1], b.Max[2]}, {b.Max[0], b.Max[1], b.Max[2]},
	}
}

// ============================================================================
// Compound

// CompoundChild is one entry of a Compound shape: a sub-shape and its
// local placement relative to the compound's own local space.
type CompoundChild struct {
	Shape    Shape
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// Compound holds an ordered list of children (§3). SubShapeID addressing
// consumes ceil(log2(n)) bits to pick a child and passes the remainder
// down, per §3 and §9.
type Compound struct {
	Children []CompoundChild
	bounds   AABB
	com      mgl64.Vec3
	mass     float64
}

// NewCompound builds a Compound from children, pre-computing its combined
// AABB, mass and center of mass (mass-weighted average of each child's
// COM, offset by the child's placement).
func NewCompound(children []CompoundChild) (*Compound, error) {
	if len(children) == 0 {
		return nil, newConstructionError("compound", "must have at least one child")
	}
	c := &Compound{Children: children}
	c.bounds = NewAABB()
	var massSum float64
	var comSum mgl64.Vec3
	for _, child := range children {
		childBounds := child.Shape.LocalBounds()
		for _, corner := range aabbCorners(childBounds) {
			w := child.Rotation.Rotate(corner).Add(child.Position)
			c.bounds.Min = mgl64.Vec3{min(c.bounds.Min[0], w[0]), min(c.bounds.Min[1], w[1]), min(c.bounds.Min[2], w[2])}
			c.bounds.Max = mgl64.Vec3{max(c.bounds.Max[0], w[0]), max(c.bounds.Max[1], w[1]), max(c.bounds.Max[2], w[2])}
		}
		mp := child.Shape.MassProperties(1)
		childCOM := child.Rotation.Rotate(child.Shape.CenterOfMass()).Add(child.Position)
		massSum += mp.Mass
		comSum = comSum.Add(childCOM.Mul(mp.Mass))
	}
	if massSum > 0 {
		c.com = comSum.Mul(1 / massSum)
	}
	c.mass = massSum
	return c, nil
}

func (c *Compound) Type() ShapeType { return ShapeCompound }

func (c *Compound) LocalBounds() AABB { return c.bounds }

func (c *Compound) CenterOfMass() mgl64.Vec3 { return c.com }

// MassProperties sums each child's mass properties, parallel-axis shifted
// to the compound's own center of mass.
func (c *Compound) MassProperties(density float64) MassProperties {
	var massSum float64
	var inertiaSum mgl64.Vec3
	for _, child := range c.Children {
		mp := child.Shape.MassProperties(density)
		childCOM := child.Rotation.Rotate(child.Shape.CenterOfMass()).Add(child.Position)
		offset := childCOM.Sub(c.com)
		d2 := offset.Dot(offset)
		// Parallel axis theorem applied per-axis using the offset's
		// perpendicular distance to each axis (an approximation when the
		// child's own inertia frame isn't axis aligned with the
		// compound's, acceptable at this shape's level of fidelity).
		inertiaSum[0] += mp.InertiaDiagonal[0] + mp.Mass*(d2-offset[0]*offset[0])
		inertiaSum[1] += mp.InertiaDiagonal[1] + mp.Mass*(d2-offset[1]*offset[1])
		inertiaSum[2] += mp.InertiaDiagonal[2] + mp.Mass*(d2-offset[2]*offset[2])
		massSum += mp.Mass
	}
	return MassProperties{
		Mass:            massSum,
		InertiaDiagonal: inertiaSum,
		InertiaRotation: mgl64.QuatIdent(),
		CenterOfMass:    c.com,
		Diagnostic:      "compound inertia summed via parallel-axis theorem per child",
	}
}

// SurfaceNormal pops the next index bits off subShapeID, dispatches to
// that child with its local transform applied, per §4.2 and §9.
func (c *Compound) SurfaceNormal(localPoint mgl64.Vec3, subShapeID SubShapeID) mgl64.Vec3 {
	bits := bitsForChildren(len(c.Children))
	index, remainder := PopID(subShapeID, bits)
	if int(index) >= len(c.Children) {
		return mgl64.Vec3{0, 1, 0}
	}
	child := c.Children[index]
	inv := child.Rotation.Inverse()
	childPoint := inv.Rotate(localPoint.Sub(child.Position))
	n := child.Shape.SurfaceNormal(childPoint, remainder)
	return child.Rotation.Rotate(n)
}

// ChildSubShapeID builds the SubShapeID that addresses childIndex,
// combined with that child's own subID (EmptySubShapeID for a primitive
// child), the inverse of SurfaceNormal's PopID dispatch.
func (c *Compound) ChildSubShapeID(childIndex int, childSubID SubShapeID) SubShapeID {
	bits := bitsForChildren(len(c.Children))
	b := NewSubShapeIDBuilder().PushID(uint32(childIndex), bits)
	if childSubID != EmptySubShapeID {
		b.value |= childSubID << b.bits
	}
	return b.GetID()
}
