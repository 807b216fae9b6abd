// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Capsule is a convex primitive: a cylinder of HalfHeight capped by two
// hemispheres of Radius, its axis along local Y.
type Capsule struct {
	HalfHeight float64
	Radius     float64
}

// NewCapsule creates a Capsule. Non-positive dimensions are rejected.
func NewCapsule(halfHeight, radius float64) (*Capsule, error) {
	if halfHeight <= 0 || radius <= 0 {
		return nil, newConstructionError("capsule", "halfHeight and radius must be positive")
	}
	return &Capsule{HalfHeight: halfHeight, Radius: radius}, nil
}

func (c *Capsule) Type() ShapeType { return ShapeCapsule }

func (c *Capsule) LocalBounds() AABB {
	h := c.HalfHeight + c.Radius
	return AABB{Min: mgl64.Vec3{-c.Radius, -h, -c.Radius}, Max: mgl64.Vec3{c.Radius, h, c.Radius}}
}

func (c *Capsule) CenterOfMass() mgl64.Vec3 { return mgl64.Vec3{} }

func (c *Capsule) MassProperties(density float64) MassProperties {
	r, h := c.Radius, c.HalfHeight
	cylVolume := math.Pi * r * r * (2 * h)
	sphVolume := 4.0 / 3.0 * math.Pi * r * r * r
	mass := (cylVolume + sphVolume) * density
	cylMass := cylVolume * density
	sphMass := sphVolume * density

	// Cylinder about its own axis and the transverse axis, plus the two
	// hemisphere caps via the parallel axis theorem (standard capsule
	// inertia composition).
	iyCyl := 0.5 * cylMass * r * r
	ixCyl := cylMass * (3*r*r+ (2*h)*(2*h)) / 12
	d := h + 3.0/8.0*r
	sphereAboutCenter := 2.0 / 5.0 * sphMass * r * r
	ixSph := sphereAboutCenter + sphMass*d*d
	iySph := 2.0 / 5.0 * sphMass * r * r

	return MassProperties{
		Mass:            mass,
		InertiaDiagonal: mgl64.Vec3{ixCyl + ixSph, iyCyl + iySph, ixCyl + ixSph},
		InertiaRotation: mgl64.QuatIdent(),
	}
}

// SurfaceNormal performs the "closest-feature analysis against axis"
// described in §4.2: project the point onto the capsule's central
// segment, then normalize the vector from that projection to the point.
func (c *Capsule) SurfaceNormal(localPoint mgl64.Vec3, _ SubShapeID) mgl64.Vec3 {
	y := math.Max(-c.HalfHeight, math.Min(c.HalfHeight, localPoint[1]))
	axisPoint := mgl64.Vec3{0, y, 0}
	d := localPoint.Sub(axisPoint)
	if d.Dot(d) < 1e-18 {
		return mgl64.Vec3{0, 1, 0}
	}
	return d.Normalize()
}

func (c *Capsule) Support(direction mgl64.Vec3) mgl64.Vec3 {
	d := direction
	if d.Dot(d) < 1e-18 {
		d = mgl64.Vec3{0, 1, 0}
	} else {
		d = d.Normalize()
	}
	y := c.HalfHeight
	if d[1] < 0 {
		y = -c.HalfHeight
	}
	return mgl64.Vec3{0, y, 0}.Add(d.Mul(c.Radius))
}

func (c *Capsule) ConvexRadius() float64 { return c.Radius }

// Cylinder is a convex primitive with a circular cross-section, flat
// end-caps, axis along local Y.
type Cylinder struct {
	HalfHeight float64
	Radius     float64
}

// NewCylinder creates a Cylinder. Non-positive dimensions are rejected.
func NewCylinder(halfHeight, radius float64) (*Cylinder, error) {
	if halfHeight <= 0 || radius <= 0 {
		return nil, newConstructionError("cylinder", "halfHeight and radius must be positive")
	}
	return &Cylinder{HalfHeight: halfHeight, Radius: radius}, nil
}

func (c *Cylinder) Type() ShapeType { return ShapeCylinder }

func (c *Cylinder) LocalBounds() AABB {
	return AABB{
		Min: mgl64.Vec3{-c.Radius, -c.HalfHeight, -c.Radius},
		Max: mgl64.Vec3{c.Radius, c.HalfHeight, c.Radius},
	}
}

func (c *Cylinder) CenterOfMass() mgl64.Vec3 { return mgl64.Vec3{} }

func (c *Cylinder) MassProperties(density float64) MassProperties {
	r, h := c.Radius, c.HalfHeight
	mass := math.Pi * r * r * (2 * h) * density
	iy := 0.5 * mass * r * r
	ix := mass * (3*r*r + (2*h)*(2*h)) / 12
	return MassProperties{
		Mass:            mass,
		InertiaDiagonal: mgl64.Vec3{ix, iy, ix},
		InertiaRotation: mgl64.QuatIdent(),
	}
}

// SurfaceNormal picks between the side wall and the end caps depending on
// which feature the point is closest to, per the "closest-feature
// analysis against axis" contract of §4.2.
func (c *Cylinder) SurfaceNormal(localPoint mgl64.Vec3, _ SubShapeID) mgl64.Vec3 {
	radial := mgl64.Vec3{localPoint[0], 0, localPoint[2]}
	radialLen := radial.Len()
	onCap := math.Abs(math.Abs(localPoint[1]) - c.HalfHeight)
	onSide := math.Abs(radialLen - c.Radius)
	if onCap <= onSide {
		if localPoint[1] >= 0 {
			return mgl64.Vec3{0, 1, 0}
		}
		return mgl64.Vec3{0, -1, 0}
	}
	if radialLen < 1e-12 {
		return mgl64.Vec3{1, 0, 0}
	}
	return radial.Normalize()
}

func (c *Cylinder) Support(direction mgl64.Vec3) mgl64.Vec3 {
	radial := mgl64.Vec3{direction[0], 0, direction[2]}
	var xz mgl64.Vec3
	if l := radial.Len(); l > 1e-12 {
		xz = radial.Mul(c.Radius / l)
	}
	y := c.HalfHeight
	if direction[1] < 0 {
		y = -c.HalfHeight
	}
	return mgl64.Vec3{xz[0], y, xz[2]}
}

func (c *Cylinder) ConvexRadius() float64 { return 0.01 }

// TaperedCapsule is a capsule whose two end radii differ, i.e. the convex
// hull of two spheres of different radius separated along local Y.
type TaperedCapsule struct {
	HalfHeight  float64
	TopRadius   float64
	BottomRadius float64
}

// NewTaperedCapsule creates a TaperedCapsule. Non-positive dimensions are
// rejected.
func NewTaperedCapsule(halfHeight, topRadius, bottomRadius float64) (*TaperedCapsule, error) {
	if halfHeight <= 0 || topRadius <= 0 || bottomRadius <= 0 {
		return nil, newConstructionError("taperedCapsule", "halfHeight and both radii must be positive")
	}
	return &TaperedCapsule{HalfHeight: halfHeight, TopRadius: topRadius, BottomRadius: bottomRadius}, nil
}

func (c *TaperedCapsule) Type() ShapeType { return ShapeTaperedCapsule }

func (c *TaperedCapsule) LocalBounds() AABB {
	r := math.Max(c.TopRadius, c.BottomRadius)
	h := c.HalfHeight + r
	return AABB{Min: mgl64.Vec3{-r, -h, -r}, Max: mgl64.Vec3{r, h, r}}
}

func (c *TaperedCapsule) CenterOfMass() mgl64.Vec3 { return mgl64.Vec3{} }

// MassProperties approximates the tapered capsule as a uniform-radius
// capsule using the average radius; acceptable for a convex wrapper whose
// main consumer is character/ragdoll-style bodies with a small taper.
func (c *TaperedCapsule) MassProperties(density float64) MassProperties {
	avg := &Capsule{HalfHeight: c.HalfHeight, Radius: (c.TopRadius + c.BottomRadius) / 2}
	mp := avg.MassProperties(density)
	mp.Diagnostic = "tapered capsule approximated via average-radius capsule inertia"
	return mp
}

func (c *TaperedCapsule) SurfaceNormal(localPoint mgl64.Vec3, _ SubShapeID) mgl64.Vec3 {
	y := math.Max(-c.HalfHeight, math.Min(c.HalfHeight, localPoint[1]))
	axisPoint := mgl64.Vec3{0, y, 0}
	d := localPoint.Sub(axisPoint)
	if d.Dot(d) < 1e-18 {
		return mgl64.Vec3{0, 1, 0}
	}
	return d.Normalize()
}

func (c *TaperedCapsule) Support(direction mgl64.Vec3) mgl64.Vec3 {
	top := mgl64.Vec3{0, c.HalfHeight, 0}
	bottom := mgl64.Vec3{0, -c.HalfHeight, 0}
	var d mgl64.Vec3
	if ln := direction.Len(); ln > 1e-12 {
		d = direction.Mul(1 / ln)
	} else {
		d = mgl64.Vec3{0, 1, 0}
	}
	topSupport := top.Add(d.Mul(c.TopRadius))
	bottomSupport := bottom.Add(d.Mul(c.BottomRadius))
	if topSupport.Dot(direction) >= bottomSupport.Dot(direction) {
		return topSupport
	}
	return bottomSupport
}

func (c *TaperedCapsule) ConvexRadius() float64 { return math.Min(c.TopRadius, c.BottomRadius) }
