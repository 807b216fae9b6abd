// Copyright © 2024 Galvanized Logic Inc.

package physics

import "github.com/go-gl/mathgl/mgl64"

// Filter narrows which bodies a query considers before any geometric
// test runs (§4.4): ObjectLayer restricts by layer (a nil filter accepts
// every layer compatible with the query's own object layer), and Exclude
// skips an explicit body (e.g. the caster's own body during a character
// controller sweep).
type Filter struct {
	ObjectLayer int
	HasLayer    bool
	Exclude     BodyId

	// Group/Mask apply the same gating as body-vs-body collision (§4.1
	// step 3): the query hits a body only if the query's group intersects
	// the body's mask and vice versa. Both zero means no group filtering.
	Group uint32
	Mask  uint32

	// Predicate, when non-nil, is the final say on each candidate body.
	Predicate func(*RigidBody) bool
}

// Accepts reports whether body passes this filter.
func (f Filter) Accepts(body *RigidBody) bool {
	if body.Id() == f.Exclude && f.Exclude != InvalidBodyId && f.Exclude != 0 {
		return false
	}
	if f.HasLayer && body.ObjectLayer != f.ObjectLayer {
		return false
	}
	if f.Group != 0 || f.Mask != 0 {
		if f.Group&body.CollisionMask == 0 || body.CollisionGroup&f.Mask == 0 {
			return false
		}
	}
	if f.Predicate != nil && !f.Predicate(body) {
		return false
	}
	return true
}

// RayCastResult is one hit reported to a ray-cast collector (§4.4).
type RayCastResult struct {
	Body       BodyId
	SubShapeID SubShapeID
	Fraction   float64 // 0 at the ray origin, 1 at origin+direction.
}

// ShapeCastResult is one hit reported to a shape-cast collector (§4.4).
type ShapeCastResult struct {
	Body       BodyId
	SubShapeID SubShapeID
	Fraction   float64
	ContactNormal mgl64.Vec3
}

// CollideShapeResult is one overlap reported by a collide-shape or
// collide-point query (§4.4).
type CollideShapeResult struct {
	Body       BodyId
	SubShapeID SubShapeID
	PenetrationDepth float64
}

// RayCastCollector receives ray-cast hits as CastRay walks broadphase and
// narrow-phase candidates; AddHit returning false stops the cast early
// (used by a "closest" collector once it has a confirmed nearer hit than
// any remaining candidate could produce).
type RayCastCollector interface {
	AddHit(RayCastResult) (keepGoing bool)
}

// ClosestRayCastCollector keeps only the lowest-Fraction hit seen (§4.4's
// "Closest" collector flavor).
type ClosestRayCastCollector struct {
	Hit   RayCastResult
	Found bool
}

func (c *ClosestRayCastCollector) AddHit(r RayCastResult) bool {
	if !c.Found || r.Fraction < c.Hit.Fraction {
		c.Hit = r
		c.Found = true
	}
	return true
}

// AnyRayCastCollector stops at the first hit reported (§4.4's "Any"
// flavor) — useful for line-of-sight checks that only need a boolean.
type AnyRayCastCollector struct {
	Hit   RayCastResult
	Found bool
}

func (c *AnyRayCastCollector) AddHit(r RayCastResult) bool {
	c.Hit, c.Found = r, true
	return false
}

// AllRayCastCollector accumulates every hit reported (§4.4's "All"
// flavor).
type AllRayCastCollector struct {
	Hits []RayCastResult
}

func (c *AllRayCastCollector) AddHit(r RayCastResult) bool {
	c.Hits = append(c.Hits, r)
	return true
}

// ShapeCastCollector mirrors RayCastCollector for shape casts.
type ShapeCastCollector interface {
	AddHit(ShapeCastResult) (keepGoing bool)
}

// ClosestShapeCastCollector keeps only the lowest-Fraction hit.
type ClosestShapeCastCollector struct {
	Hit   ShapeCastResult
	Found bool
}

func (c *ClosestShapeCastCollector) AddHit(r ShapeCastResult) bool {
	if !c.Found || r.Fraction < c.Hit.Fraction {
		c.Hit = r
		c.Found = true
	}
	return true
}

// AnyShapeCastCollector stops at the first shape-cast hit reported.
type AnyShapeCastCollector struct {
	Hit   ShapeCastResult
	Found bool
}

func (c *AnyShapeCastCollector) AddHit(r ShapeCastResult) bool {
	c.Hit, c.Found = r, true
	return false
}

// AllShapeCastCollector accumulates every shape-cast hit.
type AllShapeCastCollector struct {
	Hits []ShapeCastResult
}

func (c *AllShapeCastCollector) AddHit(r ShapeCastResult) bool {
	c.Hits = append(c.Hits, r)
	return true
}

// CollideShapeCollector receives overlap results from CollideShape /
// CollidePoint.
type CollideShapeCollector interface {
	AddHit(CollideShapeResult) (keepGoing bool)
}

// AllCollideShapeCollector accumulates every overlap found (§4.4's "All"
// flavor, the common case for overlap queries since most callers want
// every overlapping body, not just one).
type AllCollideShapeCollector struct {
	Hits []CollideShapeResult
}

func (c *AllCollideShapeCollector) AddHit(r CollideShapeResult) bool {
	c.Hits = append(c.Hits, r)
	return true
}

// ClosestCollideShapeCollector keeps the deepest overlap seen — "closest"
// for an overlap query means the most penetrating hit.
type ClosestCollideShapeCollector struct {
	Hit   CollideShapeResult
	Found bool
}

func (c *ClosestCollideShapeCollector) AddHit(r CollideShapeResult) bool {
	if !c.Found || r.PenetrationDepth > c.Hit.PenetrationDepth {
		c.Hit = r
		c.Found = true
	}
	return true
}

// AnyCollideShapeCollector stops at the first overlap reported.
type AnyCollideShapeCollector struct {
	Hit   CollideShapeResult
	Found bool
}

func (c *AnyCollideShapeCollector) AddHit(r CollideShapeResult) bool {
	c.Hit, c.Found = r, true
	return false
}
