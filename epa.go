// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// epaFace indexes three polytope vertices, winding outward.
type epaFace struct{ x, y, z int }

// epaEdge indexes two polytope vertices.
type epaEdge struct{ x, y int }

const epaEpsilon = 0.0001
const epaMaxIterations = 100

// epaExpand runs the expanding-polytope algorithm against the tetrahedron
// left behind by a GJK intersection, returning the world-space contact
// normal (pointing from shapeA toward shapeB) and penetration depth
// (§4.2's overlapping-case contract). A direct renamed port of
// gazed-vu/physics/epa.go, which is itself a close port of the
// van den Bergen EPA formulation.
func epaExpand(shapeA ConvexShape, poseA pose, shapeB ConvexShape, poseB pose, simplex gjkSimplex) (normal mgl64.Vec3, penetration float64, converged bool) {
	polytope := []mgl64.Vec3{simplex.a, simplex.b, simplex.c, simplex.d}
	faces := []epaFace{
		{0, 1, 2},
		{0, 2, 3},
		{0, 3, 1},
		{1, 2, 3},
	}

	normals := make([]mgl64.Vec3, len(faces))
	distances := make([]float64, len(faces))
	minNormal := mgl64.Vec3{}
	minDistance := math.MaxFloat64
	for i, f := range faces {
		n, d := epaFaceNormal(f, polytope)
		normals[i] = n
		distances[i] = d
		if d < minDistance {
			minDistance = d
			minNormal = n
		}
	}

	var edges []epaEdge
	for it := 0; it < epaMaxIterations; it++ {
		support := minkowskiSupport(shapeA, poseA, shapeB, poseB, minNormal)

		d := minNormal.Dot(support)
		if math.Abs(d-minDistance) < epaEpsilon {
			return minNormal, minDistance, true
		}

		newIndex := len(polytope)
		polytope = append(polytope, support)

		edges = edges[:0]
		for i := 0; i < len(normals); i++ {
			centroid := epaCentroid(polytope[faces[i].x], polytope[faces[i].y], polytope[faces[i].z])
			if normals[i].Dot(support.Sub(centroid)) > 0 {
				f := faces[i]
				edges = epaAddEdge(edges, epaEdge{f.x, f.y}, polytope)
				edges = epaAddEdge(edges, epaEdge{f.y, f.z}, polytope)
				edges = epaAddEdge(edges, epaEdge{f.z, f.x}, polytope)

				faces = slices.Delete(faces, i, i+1)
				distances = slices.Delete(distances, i, i+1)
				normals = slices.Delete(normals, i, i+1)
				i--
			}
		}

		for _, e := range edges {
			f := epaFace{e.x, e.y, newIndex}
			faces = append(faces, f)
			n, d := epaFaceNormal(f, polytope)
			normals = append(normals, n)
			distances = append(distances, d)
		}

		minDistance = math.MaxFloat64
		for i, d := range distances {
			if d < minDistance {
				minDistance = d
				minNormal = normals[i]
			}
		}
	}
	// Non-convergence is a numerical degeneracy; callers report it at
	// debug level with the owning world's logger and treat the pair as
	// not colliding this step.
	return minNormal, minDistance, false
}

// epaFaceNormal returns the outward unit normal of face and the
// perpendicular distance from its plane to the origin, flipping the
// normal (and negating the distance) if it happened to point inward.
func epaFaceNormal(face epaFace, polytope []mgl64.Vec3) (normal mgl64.Vec3, distance float64) {
	a, b, c := polytope[face.x], polytope[face.y], polytope[face.z]
	n := b.Sub(a).Cross(c.Sub(a))
	if l := n.Len(); l > 1e-12 {
		n = n.Mul(1 / l)
	}
	d := n.Dot(a)
	if d < 0 {
		return n.Mul(-1), -d
	}
	if d == 0 {
		for _, v := range polytope {
			aux := n.Dot(v)
			if aux != 0 {
				if aux >= 0 {
					n = n.Mul(-1)
				}
				break
			}
		}
	}
	return n, d
}

func epaCentroid(a, b, c mgl64.Vec3) mgl64.Vec3 {
	return a.Add(b).Add(c).Mul(1.0 / 3.0)
}

// epaAddEdge toggles edge into edges: if its reverse is already present
// (a shared interior edge between two removed faces) it is cancelled out,
// otherwise it is appended as a boundary edge of the removed region.
func epaAddEdge(edges []epaEdge, edge epaEdge, polytope []mgl64.Vec3) []epaEdge {
	for i, e := range edges {
		if e.x == edge.y && e.y == edge.x {
			return slices.Delete(edges, i, i+1)
		}
	}
	return append(edges, edge)
}
