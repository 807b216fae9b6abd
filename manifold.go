// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const maxManifoldPoints = 4

// ManifoldPoint is one persistent point of contact between two bodies
// (§4.3). LocalAnchorA/B are expressed in each body's local space so the
// point survives small relative motion between solver steps and can be
// refreshed without a full narrow-phase re-run; WarmImpulse carries the
// accumulated normal and friction impulses from the previous step into
// the next for warm-starting (§4.6).
type ManifoldPoint struct {
	LocalAnchorA mgl64.Vec3
	LocalAnchorB mgl64.Vec3
	Normal       mgl64.Vec3 // World space, points from A toward B.
	Depth        float64

	WarmNormalImpulse   float64
	WarmFriction1Impulse float64
	WarmFriction2Impulse float64
}

// Manifold holds up to maxManifoldPoints persistent contact points
// between one pair of bodies (§4.3). Ported from the
// closestPoint/mergeContacts/largestArea logic in
// gazed-vu/physics/contact.go, generalized from a fixed contactPair.pocs
// array to a growable slice and renamed to the manifold-reduction
// vocabulary the spec uses.
type Manifold struct {
	Points []ManifoldPoint
}

// Refresh recomputes each point's world anchors from the bodies' current
// poses and discards points that drifted beyond persistenceDistanceSqr,
// mirroring contactPair.refreshContacts.
func (m *Manifold) Refresh(poseA, poseB pose, persistenceDistanceSqr float64) {
	kept := m.Points[:0]
	for _, p := range m.Points {
		worldA := poseA.toWorld(p.LocalAnchorA)
		worldB := poseB.toWorld(p.LocalAnchorB)
		separation := worldB.Sub(worldA)
		along := separation.Dot(p.Normal)
		lateral := separation.Sub(p.Normal.Mul(along))
		if lateral.Dot(lateral) > persistenceDistanceSqr {
			continue
		}
		kept = append(kept, p)
	}
	m.Points = kept
}

// Merge folds freshly generated contact points into the manifold,
// preferring to update an existing point whose local anchor on A is
// close to the new one (so warm-start impulses survive), and otherwise
// inserting or replacing to maximize the manifold's covered area
// (§4.3's up-to-4-point reduction), mirroring mergeContacts.
func (m *Manifold) Merge(fresh []ManifoldPoint, persistenceDistanceSqr float64) {
	for _, p := range fresh {
		if idx := m.closest(p, persistenceDistanceSqr); idx >= 0 {
			warm := m.Points[idx]
			p.WarmNormalImpulse = warm.WarmNormalImpulse
			p.WarmFriction1Impulse = warm.WarmFriction1Impulse
			p.WarmFriction2Impulse = warm.WarmFriction2Impulse
			m.Points[idx] = p
			continue
		}
		if len(m.Points) < maxManifoldPoints {
			m.Points = append(m.Points, p)
			continue
		}
		idx := largestAreaIndex(m.Points, p)
		m.Points[idx] = p
	}
}

func (m *Manifold) closest(p ManifoldPoint, persistenceDistanceSqr float64) int {
	best := -1
	bestDistSqr := persistenceDistanceSqr
	for i, existing := range m.Points {
		d := existing.LocalAnchorA.Sub(p.LocalAnchorA)
		distSqr := d.Dot(d)
		if distSqr < bestDistSqr {
			bestDistSqr = distSqr
			best = i
		}
	}
	return best
}

// largestAreaIndex picks which of 4 existing points to evict so that
// keeping the new point plus the 3 survivors covers the largest possible
// quadrilateral area, mirroring contactPair.largestArea / area.
func largestAreaIndex(points []ManifoldPoint, fresh ManifoldPoint) int {
	area := func(p0, p1, p2, p3 mgl64.Vec3) float64 {
		l0 := p0.Sub(p1).Cross(p2.Sub(p3)).Dot(p0.Sub(p1).Cross(p2.Sub(p3)))
		l1 := p0.Sub(p2).Cross(p1.Sub(p3)).Dot(p0.Sub(p2).Cross(p1.Sub(p3)))
		l2 := p0.Sub(p3).Cross(p1.Sub(p2)).Dot(p0.Sub(p3).Cross(p1.Sub(p2)))
		return math.Max(math.Max(l0, l1), l2)
	}
	a0 := area(fresh.LocalAnchorA, points[1].LocalAnchorA, points[2].LocalAnchorA, points[3].LocalAnchorA)
	a1 := area(fresh.LocalAnchorA, points[0].LocalAnchorA, points[2].LocalAnchorA, points[3].LocalAnchorA)
	a2 := area(fresh.LocalAnchorA, points[0].LocalAnchorA, points[1].LocalAnchorA, points[3].LocalAnchorA)
	a3 := area(fresh.LocalAnchorA, points[0].LocalAnchorA, points[1].LocalAnchorA, points[2].LocalAnchorA)
	best, bestArea := 0, a0
	if a1 > bestArea {
		best, bestArea = 1, a1
	}
	if a2 > bestArea {
		best, bestArea = 2, a2
	}
	if a3 > bestArea {
		best = 3
	}
	return best
}
