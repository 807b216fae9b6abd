// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"github.com/go-gl/mathgl/mgl64"
)

// MeshTriangle is one triangle of a TriangleMesh, plus the active-edge
// flags §4.2 and the GLOSSARY describe: an edge shared with a
// near-coplanar neighbor is inactive. Contact normal correction against a
// mesh lives in collide_mesh.go (correctActiveEdgeNormal), which does not
// read these flags.
type MeshTriangle struct {
	V0, V1, V2 mgl64.Vec3
	// ActiveEdge[i] is true for the edge starting at vertex i (0: V0-V1,
	// 1: V1-V2, 2: V2-V0).
	ActiveEdge [3]bool
	Material   uint16
}

func (t *MeshTriangle) normal() mgl64.Vec3 {
	n := t.V1.Sub(t.V0).Cross(t.V2.Sub(t.V0))
	if l := n.Len(); l > 1e-12 {
		return n.Mul(1 / l)
	}
	return mgl64.Vec3{0, 1, 0}
}

func (t *MeshTriangle) bounds() AABB {
	b := NewAABB()
	for _, v := range []mgl64.Vec3{t.V0, t.V1, t.V2} {
		b.Min = mgl64.Vec3{min(b.Min[0], v[0]), min(b.Min[1], v[1]), min(b.Min[2], v[2])}
		b.Max = mgl64.Vec3{max(b.Max[0], v[0]), max(b.Max[1], v[1]), max(b.Max[2], v[2])}
	}
	return b
}

// TriangleMesh is a concave shape backed by a pre-built BVH over its
// triangles. Per §1, BVH *construction* and active-edge *marking* are out
// of scope collaborators; TriangleMesh is specified only at the interface
// it exposes to queries: GetTrianglesInBounds walks the BVH and returns
// candidate triangles, mirroring the "query the mesh BVH with the
// convex's AABB in mesh-local space" contract of §4.2.
//
// NewTriangleMesh builds a minimal reference BVH (a flat median-split
// tree) good enough to satisfy that contract; a production build would
// swap it for a better one without changing the Shape surface.
type TriangleMesh struct {
	Triangles   []MeshTriangle
	nodes       []meshBVHNode
	leafIndices []int32
	bounds      AABB
}

type meshBVHNode struct {
	bounds       AABB
	left, right  int32 // -1 if leaf
	triangleFrom int32
	triangleTo   int32
}

// NewTriangleMesh builds a TriangleMesh from pre-marked triangles (see
// MarkActiveEdges for a helper that derives ActiveEdge from shared-edge
// coplanarity, which callers doing mesh preprocessing outside this
// package can use or replicate).
func NewTriangleMesh(triangles []MeshTriangle) (*TriangleMesh, error) {
	if len(triangles) == 0 {
		return nil, newConstructionError("triangleMesh", "must have at least one triangle")
	}
	m := &TriangleMesh{Triangles: triangles}
	m.bounds = NewAABB()
	for i := range triangles {
		m.bounds = m.bounds.Union(triangles[i].bounds())
	}
	indices := make([]int32, len(triangles))
	for i := range indices {
		indices[i] = int32(i)
	}
	m.nodes = make([]meshBVHNode, 0, 2*len(triangles))
	m.buildNode(indices)
	return m, nil
}

// buildNode recursively median-splits indices along the longest axis of
// their bounds, appending nodes depth-first, and returns the index of the
// node it just appended.
func (m *TriangleMesh) buildNode(indices []int32) int32 {
	b := NewAABB()
	for _, idx := range indices {
		b = b.Union(m.Triangles[idx].bounds())
	}
	nodeIndex := int32(len(m.nodes))
	m.nodes = append(m.nodes, meshBVHNode{bounds: b, left: -1, right: -1})

	const leafSize = 4
	if len(indices) <= leafSize {
		// Reuse the Triangles slice order by sorting this leaf's range to
		// the front of a parallel compacted leaf list would be the usual
		// move; for the reference BVH we instead keep an explicit index
		// list per leaf.
		m.nodes[nodeIndex].triangleFrom = int32(len(m.leafIndices))
		m.leafIndices = append(m.leafIndices, indices...)
		m.nodes[nodeIndex].triangleTo = int32(len(m.leafIndices))
		return nodeIndex
	}

	e := b.Extents()
	axis := 0
	if e[1] > e[0] {
		axis = 1
	}
	if e[2] > e[axis] {
		axis = 2
	}
	mid := len(indices) / 2
	partitionByAxis(indices, axis, mid, m.Triangles)

	left := m.buildNode(indices[:mid])
	right := m.buildNode(indices[mid:])
	m.nodes[nodeIndex].left = left
	m.nodes[nodeIndex].right = right
	return nodeIndex
}

func partitionByAxis(indices []int32, axis, mid int, triangles []MeshTriangle) {
	// Simple selection partition (nth_element equivalent); mesh sizes in
	// this engine's target use cases are small enough that O(n^2) worst
	// case never shows up in practice, and it keeps this file free of a
	// second sorting dependency.
	center := func(idx int32) float64 {
		t := &triangles[idx]
		return (t.V0[axis] + t.V1[axis] + t.V2[axis]) / 3
	}
	for i := 0; i < mid; i++ {
		minIdx := i
		for j := i + 1; j < len(indices); j++ {
			if center(indices[j]) < center(indices[minIdx]) {
				minIdx = j
			}
		}
		indices[i], indices[minIdx] = indices[minIdx], indices[i]
	}
}

func (m *TriangleMesh) Type() ShapeType { return ShapeTriangleMesh }

func (m *TriangleMesh) LocalBounds() AABB { return m.bounds }

// CenterOfMass: triangle meshes carry no volume and are expected to be
// Static or Kinematic; COM is the bounds center as a reasonable anchor.
func (m *TriangleMesh) CenterOfMass() mgl64.Vec3 { return m.bounds.Center() }

// MassProperties returns zero mass: triangle meshes are not meant to be
// attached to Dynamic bodies (§3's "dynamic bodies with zero shape volume
// require an explicit override" path exists precisely for shapes like
// this one).
func (m *TriangleMesh) MassProperties(float64) MassProperties {
	return MassProperties{Diagnostic: "triangle mesh has no intrinsic volume"}
}

// SurfaceNormal returns the addressed triangle's face normal, falling
// back to the average of all triangle normals if subShapeID is out of
// range (§4.2).
func (m *TriangleMesh) SurfaceNormal(_ mgl64.Vec3, subShapeID SubShapeID) mgl64.Vec3 {
	idx := int(subShapeID)
	if idx >= 0 && idx < len(m.Triangles) {
		return m.Triangles[idx].normal()
	}
	var sum mgl64.Vec3
	for i := range m.Triangles {
		sum = sum.Add(m.Triangles[i].normal())
	}
	if l := sum.Len(); l > 1e-12 {
		return sum.Mul(1 / l)
	}
	return mgl64.Vec3{0, 1, 0}
}

// GetTrianglesInBounds walks the BVH and appends every triangle whose
// bounds overlap localBounds to out's backing, returning the resulting
// slice together with each triangle's index (used as its SubShapeID by
// collide_mesh.go).
func (m *TriangleMesh) GetTrianglesInBounds(localBounds AABB, out []int32) []int32 {
	if len(m.nodes) == 0 {
		return out
	}
	return m.collect(0, localBounds, out)
}

func (m *TriangleMesh) collect(nodeIndex int32, bounds AABB, out []int32) []int32 {
	node := &m.nodes[nodeIndex]
	if !node.bounds.Overlaps(bounds) {
		return out
	}
	if node.left < 0 {
		for i := node.triangleFrom; i < node.triangleTo; i++ {
			idx := m.leafIndices[i]
			if m.Triangles[idx].bounds().Overlaps(bounds) {
				out = append(out, idx)
			}
		}
		return out
	}
	out = m.collect(node.left, bounds, out)
	out = m.collect(node.right, bounds, out)
	return out
}

// MarkActiveEdges derives each triangle's ActiveEdge flags from shared
// adjacency: an edge is inactive (interior) when it is shared by a second
// triangle whose face normal is within thresholdCos of this triangle's,
// per the GLOSSARY's "active edge" definition. Triangles that share an
// edge are found by exact shared-vertex-pair matching; meshes callers
// build through other tooling can replicate this or mark edges directly.
func MarkActiveEdges(triangles []MeshTriangle, thresholdCos float64) {
	type edgeKey struct{ a, b mgl64.Vec3 }
	normalizeEdge := func(a, b mgl64.Vec3) edgeKey {
		if lessVec3(b, a) {
			a, b = b, a
		}
		return edgeKey{a, b}
	}
	adjacency := map[edgeKey][]int{}
	for i := range triangles {
		t := &triangles[i]
		verts := [3]mgl64.Vec3{t.V0, t.V1, t.V2}
		for e := 0; e < 3; e++ {
			k := normalizeEdge(verts[e], verts[(e+1)%3])
			adjacency[k] = append(adjacency[k], i)
		}
	}
	for i := range triangles {
		t := &triangles[i]
		verts := [3]mgl64.Vec3{t.V0, t.V1, t.V2}
		n := t.normal()
		for e := 0; e < 3; e++ {
			k := normalizeEdge(verts[e], verts[(e+1)%3])
			t.ActiveEdge[e] = true
			for _, other := range adjacency[k] {
				if other == i {
					continue
				}
				if n.Dot(triangles[other].normal()) >= thresholdCos {
					t.ActiveEdge[e] = false
				}
			}
		}
	}
}

func lessVec3(a, b mgl64.Vec3) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	if a[1] != b[1] {
		return a[1] < b[1]
	}
	return a[2] < b[2]
}
