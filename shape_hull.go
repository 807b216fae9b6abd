// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ConvexHull is a convex primitive built from a pre-computed set of
// vertices and face planes. §1 places hull *construction* out of scope:
// callers are expected to hand in a hull already built by an external
// tool (matching gazed-vu/physics/physics.go's NewBox, which hand-builds
// a convex hull from a fixed vertex/index list for its box shape).
type ConvexHull struct {
	Vertices []mgl64.Vec3
	// Faces are plane equations (normal, and the plane's distance from
	// the origin along that normal) used by SurfaceNormal; EPA does not
	// read them.
	Faces []HullFace
	bounds AABB
	com    mgl64.Vec3
}

// HullFace is one face plane of a ConvexHull.
type HullFace struct {
	Normal   mgl64.Vec3
	Distance float64
}

// NewConvexHull wraps pre-built vertices and faces. At least 4 vertices
// and 4 faces are required to enclose a volume; fewer is a construction
// error.
func NewConvexHull(vertices []mgl64.Vec3, faces []HullFace) (*ConvexHull, error) {
	if len(vertices) < 4 || len(faces) < 4 {
		return nil, newConstructionError("convexHull", "need at least 4 vertices and 4 faces to enclose a volume")
	}
	h := &ConvexHull{Vertices: vertices, Faces: faces}
	h.bounds = NewAABB()
	var sum mgl64.Vec3
	for _, v := range vertices {
		h.bounds.Min = mgl64.Vec3{min(h.bounds.Min[0], v[0]), min(h.bounds.Min[1], v[1]), min(h.bounds.Min[2], v[2])}
		h.bounds.Max = mgl64.Vec3{max(h.bounds.Max[0], v[0]), max(h.bounds.Max[1], v[1]), max(h.bounds.Max[2], v[2])}
		sum = sum.Add(v)
	}
	h.com = sum.Mul(1 / float64(len(vertices)))
	return h, nil
}

func (h *ConvexHull) Type() ShapeType { return ShapeConvexHull }

func (h *ConvexHull) LocalBounds() AABB { return h.bounds }

func (h *ConvexHull) CenterOfMass() mgl64.Vec3 { return h.com }

// MassProperties approximates the hull as a uniform-density box matching
// its AABB extents. A tighter tetrahedral-decomposition volume integral
// is a reasonable follow-on but is not needed for any seed scenario in
// §8, all of which use primitive shapes.
func (h *ConvexHull) MassProperties(density float64) MassProperties {
	e := h.bounds.Extents()
	mass := e[0] * 2 * e[1] * 2 * e[2] * 2 * density
	lx2, ly2, lz2 := 4*e[0]*e[0], 4*e[1]*e[1], 4*e[2]*e[2]
	return MassProperties{
		Mass: mass,
		InertiaDiagonal: mgl64.Vec3{
			mass / 12 * (ly2 + lz2),
			mass / 12 * (lx2 + lz2),
			mass / 12 * (lx2 + ly2),
		},
		InertiaRotation: mgl64.QuatIdent(),
		CenterOfMass:    h.com,
		Diagnostic:      "convex hull inertia approximated via bounding box",
	}
}

// SurfaceNormal chooses the face plane with the largest dot product
// against localPoint, per §4.2.
func (h *ConvexHull) SurfaceNormal(localPoint mgl64.Vec3, _ SubShapeID) mgl64.Vec3 {
	best := -math.MaxFloat64
	var normal mgl64.Vec3
	for _, f := range h.Faces {
		d := f.Normal.Dot(localPoint)
		if d > best {
			best = d
			normal = f.Normal
		}
	}
	if normal.Dot(normal) < 1e-18 {
		return mgl64.Vec3{0, 1, 0}
	}
	return normal.Normalize()
}

func (h *ConvexHull) Support(direction mgl64.Vec3) mgl64.Vec3 {
	best := -math.MaxFloat64
	var support mgl64.Vec3
	for _, v := range h.Vertices {
		d := v.Dot(direction)
		if d > best {
			best = d
			support = v
		}
	}
	return support
}

func (h *ConvexHull) ConvexRadius() float64 { return 0.01 }
