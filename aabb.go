// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB is an axis aligned bounding box. It is not a collision primitive
// in its own right (use Box for that) — it surrounds arbitrary shapes
// during broadphase and is the node payload of the dynamic AABB tree.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// NewAABB returns the empty (inverted) box: any Expand call establishes
// real bounds from the first point or box merged in.
func NewAABB() AABB {
	const inf = math.MaxFloat64
	return AABB{Min: mgl64.Vec3{inf, inf, inf}, Max: mgl64.Vec3{-inf, -inf, -inf}}
}

// Overlaps returns true if a and b intersect on all three axes. Boxes that
// only touch along a point, edge, or face are not considered overlapping.
func (a AABB) Overlaps(b AABB) bool {
	return a.Max[0] > b.Min[0] && a.Min[0] < b.Max[0] &&
		a.Max[1] > b.Min[1] && a.Min[1] < b.Max[1] &&
		a.Max[2] > b.Min[2] && a.Min[2] < b.Max[2]
}

// Contains returns true if b fits entirely inside a.
func (a AABB) Contains(b AABB) bool {
	return a.Min[0] <= b.Min[0] && a.Min[1] <= b.Min[1] && a.Min[2] <= b.Min[2] &&
		a.Max[0] >= b.Max[0] && a.Max[1] >= b.Max[1] && a.Max[2] >= b.Max[2]
}

// Union returns the smallest box containing both a and b.
func (a AABB) Union(b AABB) AABB {
	return AABB{
		Min: mgl64.Vec3{min(a.Min[0], b.Min[0]), min(a.Min[1], b.Min[1]), min(a.Min[2], b.Min[2])},
		Max: mgl64.Vec3{max(a.Max[0], b.Max[0]), max(a.Max[1], b.Max[1]), max(a.Max[2], b.Max[2])},
	}
}

// Expand returns a grown by margin on every side.
func (a AABB) Expand(margin float64) AABB {
	m := mgl64.Vec3{margin, margin, margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

// Center returns the midpoint of the box.
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Extents returns the half-widths of the box along each axis.
func (a AABB) Extents() mgl64.Vec3 {
	return a.Max.Sub(a.Min).Mul(0.5)
}

// SurfaceArea returns the surface area of the box, used by the broadphase
// tree's SAH insertion cost heuristic.
func (a AABB) SurfaceArea() float64 {
	d := a.Max.Sub(a.Min)
	return 2 * (d[0]*d[1] + d[1]*d[2] + d[2]*d[0])
}

// Volume returns the box volume.
func (a AABB) Volume() float64 {
	d := a.Max.Sub(a.Min)
	return d[0] * d[1] * d[2]
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
