// Copyright © 2024 Galvanized Logic Inc.

package physics

import "github.com/go-gl/mathgl/mgl64"

// contactConstraint holds one manifold's sequential-impulse solve: warm start
// once, then velocity iterations with a Baumgarte-free restitution bias,
// then a position-correction pass — the same three-phase shape as
// gazed-vu/physics/solver.go's per-contact loop, generalized from a
// single contact point to a persistent multi-point manifold and from the
// teacher's position-only correction to a proper velocity solve.
type contactConstraint struct {
	contact  *Contact
	settings *WorldSettings

	ra, rb []mgl64.Vec3 // world-space anchor offsets from each body's Position, per manifold point.
	t1, t2 []mgl64.Vec3 // friction tangent basis, per manifold point.
}

func prepareContactConstraint(bodies *bodyPool, contact *Contact, settings *WorldSettings) *contactConstraint {
	a, b := bodies.get(contact.BodyA), bodies.get(contact.BodyB)
	n := len(contact.Manifold.Points)
	cc := &contactConstraint{
		contact:  contact,
		settings: settings,
		ra:       make([]mgl64.Vec3, n),
		rb:       make([]mgl64.Vec3, n),
		t1:       make([]mgl64.Vec3, n),
		t2:       make([]mgl64.Vec3, n),
	}
	for i, p := range contact.Manifold.Points {
		worldA := a.Position.Add(a.Rotation.Rotate(p.LocalAnchorA))
		worldB := b.Position.Add(b.Rotation.Rotate(p.LocalAnchorB))
		cc.ra[i] = worldA.Sub(a.Position)
		cc.rb[i] = worldB.Sub(b.Position)
		cc.t1[i] = arbitraryPerpendicular(p.Normal)
		cc.t2[i] = p.Normal.Cross(cc.t1[i])
	}
	return cc
}

// relativeVelocity is the contact-point relative velocity with the
// listener-supplied surface velocity subtracted (§4.6), so a conveyor
// style contact sees apparent sliding even between resting bodies.
func (cc *contactConstraint) relativeVelocity(a, b *RigidBody, i int) mgl64.Vec3 {
	v := pointVelocity(b, cc.rb[i]).Sub(pointVelocity(a, cc.ra[i]))
	s := cc.contact.Settings
	return v.Sub(s.RelativeLinearSurfaceVelocity).Sub(s.RelativeAngularSurfaceVelocity.Cross(cc.rb[i]))
}

// warmStart reapplies each point's previous-step accumulated impulses
// before the first velocity iteration, the core of sequential-impulse
// warm starting (§4.6).
func (cc *contactConstraint) warmStart(bodies *bodyPool) {
	a, b := bodies.get(cc.contact.BodyA), bodies.get(cc.contact.BodyB)
	for i := range cc.contact.Manifold.Points {
		p := &cc.contact.Manifold.Points[i]
		impulse := p.Normal.Mul(p.WarmNormalImpulse).
			Add(cc.t1[i].Mul(p.WarmFriction1Impulse)).
			Add(cc.t2[i].Mul(p.WarmFriction2Impulse))
		applyPointImpulse(a, b, cc.ra[i], cc.rb[i], impulse)
	}
}

// solveVelocity runs one velocity iteration over every point in the
// manifold: normal impulse (with a restitution bias for points
// approaching faster than RestitutionVelocityThreshold, §4.6) clamped to
// non-negative, then Coulomb friction clamped to the normal impulse's
// magnitude times the contact's friction coefficient.
func (cc *contactConstraint) solveVelocity(bodies *bodyPool, dt float64) {
	a, b := bodies.get(cc.contact.BodyA), bodies.get(cc.contact.BodyB)
	restitution := cc.contact.Restitution
	friction := cc.contact.Friction

	for i := range cc.contact.Manifold.Points {
		p := &cc.contact.Manifold.Points[i]
		ra, rb := cc.ra[i], cc.rb[i]

		relVel := cc.relativeVelocity(a, b, i)
		vn := relVel.Dot(p.Normal)

		bias := 0.0
		if restitution > 0 && -vn > cc.settings.RestitutionVelocityThreshold {
			bias = -restitution * vn
		}

		k := effectiveMass(a, b, ra, rb, p.Normal)
		if k > 0 {
			lambda := -(vn - bias) * k
			newImpulse := p.WarmNormalImpulse + lambda
			if newImpulse < 0 {
				newImpulse = 0
			}
			delta := newImpulse - p.WarmNormalImpulse
			p.WarmNormalImpulse = newImpulse
			applyPointImpulse(a, b, ra, rb, p.Normal.Mul(delta))
		}

		maxFriction := friction * p.WarmNormalImpulse

		relVel = cc.relativeVelocity(a, b, i)
		kt1 := effectiveMass(a, b, ra, rb, cc.t1[i])
		if kt1 > 0 {
			lambda := -relVel.Dot(cc.t1[i]) * kt1
			newImpulse := clampFloat(p.WarmFriction1Impulse+lambda, -maxFriction, maxFriction)
			delta := newImpulse - p.WarmFriction1Impulse
			p.WarmFriction1Impulse = newImpulse
			applyPointImpulse(a, b, ra, rb, cc.t1[i].Mul(delta))
		}

		relVel = cc.relativeVelocity(a, b, i)
		kt2 := effectiveMass(a, b, ra, rb, cc.t2[i])
		if kt2 > 0 {
			lambda := -relVel.Dot(cc.t2[i]) * kt2
			newImpulse := clampFloat(p.WarmFriction2Impulse+lambda, -maxFriction, maxFriction)
			delta := newImpulse - p.WarmFriction2Impulse
			p.WarmFriction2Impulse = newImpulse
			applyPointImpulse(a, b, ra, rb, cc.t2[i].Mul(delta))
		}
	}
}

// solvePosition pushes the two bodies apart along each point's normal by
// PenetrationSlop-relieved depth scaled by BaumgarteFactor, the
// position-correction pass that keeps resting contacts from sinking
// (§4.6), recomputed against current positions each iteration rather than
// the depth captured at narrow-phase time.
func (cc *contactConstraint) solvePosition(bodies *bodyPool, settings *WorldSettings) {
	a, b := bodies.get(cc.contact.BodyA), bodies.get(cc.contact.BodyB)
	for i := range cc.contact.Manifold.Points {
		p := &cc.contact.Manifold.Points[i]
		worldA := a.Position.Add(a.Rotation.Rotate(p.LocalAnchorA))
		worldB := b.Position.Add(b.Rotation.Rotate(p.LocalAnchorB))
		depth := worldB.Sub(worldA).Dot(p.Normal.Mul(-1))
		correction := depth - settings.PenetrationSlop
		if correction <= 0 {
			continue
		}
		ra, rb := cc.ra[i], cc.rb[i]
		k := effectiveMass(a, b, ra, rb, p.Normal)
		if k == 0 {
			continue
		}
		lambda := correction * settings.BaumgarteFactor * k
		correctivePositionImpulse(a, b, ra, rb, p.Normal.Mul(-lambda))
	}
}

// solveIslandVelocity runs the velocity half of one island's solve: all
// constraints and contacts prepare and warm-start once, then iterate
// the island's velocity step count, matching gazed-vu/physics/solver.go's
// fixed-iteration-count outer loop. The prepared contact constraints are
// returned so solveIslandPosition can finish the step after positions
// have been integrated (§4.6 steps 3-4).
func solveIslandVelocity(bodies *bodyPool, island *Island, settings *WorldSettings, dt float64) []*contactConstraint {
	velocitySteps := settings.Solver.VelocityIterations
	if island.NumVelocitySteps > 0 {
		velocitySteps = island.NumVelocitySteps
	}

	contactConstraints := make([]*contactConstraint, len(island.Contacts))
	for i, c := range island.Contacts {
		contactConstraints[i] = prepareContactConstraint(bodies, c, settings)
	}
	for _, c := range island.Constraints {
		c.Prepare(bodies, dt)
	}

	for _, cc := range contactConstraints {
		cc.warmStart(bodies)
	}
	for _, c := range island.Constraints {
		c.WarmStart(bodies)
	}

	for iter := 0; iter < velocitySteps; iter++ {
		for _, cc := range contactConstraints {
			cc.solveVelocity(bodies, dt)
		}
		for _, c := range island.Constraints {
			c.SolveVelocity(bodies, dt)
		}
	}
	return contactConstraints
}

// solveIslandPosition runs the position half against the freshly
// integrated poses, resolving residual penetration and constraint drift
// (§4.6 step 4). Contact and joint corrections recompute world anchors
// from current positions each iteration, so they see the post-integration
// state, not the one captured at prepare time.
func solveIslandPosition(bodies *bodyPool, island *Island, contactConstraints []*contactConstraint, settings *WorldSettings, dt float64) {
	positionSteps := settings.Solver.PositionIterations
	if island.NumPositionSteps > 0 {
		positionSteps = island.NumPositionSteps
	}

	for iter := 0; iter < positionSteps; iter++ {
		for _, cc := range contactConstraints {
			cc.solvePosition(bodies, settings)
		}
		for _, c := range island.Constraints {
			c.SolvePosition(bodies, dt)
		}
	}

	// Position corrections moved bodies without going through the
	// integrator; refresh the cached centers of mass they invalidated.
	for _, idx := range island.Bodies {
		bodies.bodies[idx].updateCenterOfMass()
	}
}
