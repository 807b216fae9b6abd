// Copyright © 2024 Galvanized Logic Inc.

package physics

// ContactKey canonically identifies one contact between two sub-shapes,
// always stored with the smaller BodyId first so (A,B) and (B,A) collapse
// to the same key (§4.3).
type ContactKey struct {
	BodyA BodyId
	BodyB BodyId
	SubA  SubShapeID
	SubB  SubShapeID
}

func newContactKey(bodyA, bodyB BodyId, subA, subB SubShapeID) ContactKey {
	if bodyA > bodyB {
		bodyA, bodyB, subA, subB = bodyB, bodyA, subB, subA
	}
	return ContactKey{BodyA: bodyA, BodyB: bodyB, SubA: subA, SubB: subB}
}

// contactEdge is one node of a body's intrusive singly-linked contact
// list (§4.3): every RigidBody's contactHead points at the first edge,
// and each edge links to the next edge sharing that same body, letting
// island building and wake propagation walk a body's contacts without a
// separate per-body slice allocation.
type contactEdge struct {
	contact *Contact
	other   BodyId // the body on the far end of this edge, from the owner's perspective.
	next    *contactEdge
}

// Contact is one persistent contact between two bodies, tracked across
// steps so the solver can warm-start from the previous step's impulses
// (§4.3, §4.6).
type Contact struct {
	Key ContactKey

	BodyA, BodyB BodyId
	Manifold     Manifold

	Friction    float64
	Restitution float64

	// Settings carries the surface velocities the listener's validate
	// callback wrote for this contact (§4.3).
	Settings ContactSettings

	// stale is set at the start of each step and cleared when the pair
	// is still found overlapping by the broadphase; anything left stale
	// at the end of the step is removed (§4.3's "stale-mark and sweep"
	// lifecycle).
	stale bool

	// sensor contacts fire listener callbacks but are never handed to
	// the solver and never seed an island (§4.5).
	sensor bool

	edgeA, edgeB contactEdge
}

// contactPool owns every live Contact keyed by ContactKey, with the
// stale-marking lifecycle driven by the world step (§4.3). Modeled after
// gazed-vu/physics/contact.go's newContactPair/prepForSolver lifecycle,
// generalized from a single contactPair into a map-backed pool supporting
// arbitrary pair churn per step.
type contactPool struct {
	byKey map[ContactKey]*Contact
}

func newContactPool() *contactPool {
	return &contactPool{byKey: map[ContactKey]*Contact{}}
}

// markAllStale flags every tracked contact stale, ahead of a fresh
// broadphase pass (§4.3 step 1 of contact update).
func (p *contactPool) markAllStale() {
	for _, c := range p.byKey {
		c.stale = true
	}
}

// getOrCreate returns the contact for key, creating and linking it into
// both bodies' intrusive contact lists if it doesn't exist yet. Returns
// the contact and whether it was newly created.
func (p *contactPool) getOrCreate(key ContactKey, bodyA, bodyB *RigidBody, friction, restitution float64) (*Contact, bool) {
	if c, ok := p.byKey[key]; ok {
		c.stale = false
		return c, false
	}
	c := &Contact{Key: key, BodyA: key.BodyA, BodyB: key.BodyB, Friction: friction, Restitution: restitution}
	c.edgeA = contactEdge{contact: c, other: key.BodyB}
	c.edgeB = contactEdge{contact: c, other: key.BodyA}
	c.edgeA.next = bodyA.contactHead
	bodyA.contactHead = &c.edgeA
	c.edgeB.next = bodyB.contactHead
	bodyB.contactHead = &c.edgeB
	p.byKey[key] = c
	return c, true
}

// sweepStale removes every contact still marked stale (the broadphase no
// longer reports the pair as overlapping), unlinking it from both
// bodies' contact lists, and invokes onRemoved for each.
func (p *contactPool) sweepStale(bodies *bodyPool, onRemoved func(*Contact)) {
	for key, c := range p.byKey {
		if !c.stale {
			continue
		}
		delete(p.byKey, key)
		if a := bodies.get(c.BodyA); a != nil {
			unlinkContactEdge(&a.contactHead, &c.edgeA)
		}
		if b := bodies.get(c.BodyB); b != nil {
			unlinkContactEdge(&b.contactHead, &c.edgeB)
		}
		if onRemoved != nil {
			onRemoved(c)
		}
	}
}

// keepPairContacts clears the stale flag on every contact linking bodyA
// and bodyB, used when a pair is skipped (both sides inert) but its
// contacts should survive the end-of-step sweep.
func keepPairContacts(bodyA, bodyB *RigidBody) {
	for e := bodyA.contactHead; e != nil; e = e.next {
		if e.other == bodyB.id {
			e.contact.stale = false
		}
	}
}

func unlinkContactEdge(head **contactEdge, edge *contactEdge) {
	for cur := head; *cur != nil; cur = &(*cur).next {
		if *cur == edge {
			*cur = edge.next
			return
		}
	}
}

// each calls fn for every live contact.
func (p *contactPool) each(fn func(*Contact)) {
	for _, c := range p.byKey {
		fn(c)
	}
}
