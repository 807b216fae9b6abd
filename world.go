// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// World owns every body, the broadphase, the live contact set, and the
// constraint set, and drives the fixed-step pipeline described in §4:
// integrate forces, update broadphase, narrow-phase candidate pairs,
// refresh and merge contact manifolds, build islands, solve, integrate
// positions, update sleep state. Modeled on gazed-vu/physics/physics.go's
// Physics struct, generalized from its fixed single-layer body slice to
// the layered broadphase and pluggable ContactListener this package adds.
type World struct {
	settings *WorldSettings

	bodies      *bodyPool
	broadphase  *broadphase
	contacts    *contactPool
	constraints map[int64]Constraint
	nextConstraintId int64

	Listener ContactListener

	log *slog.Logger
	id  string
}

// NewWorld constructs a World from settings, which must already have its
// broadphase/object layers and collision matrix configured (§6).
func NewWorld(settings *WorldSettings) *World {
	w := &World{
		settings:    settings,
		bodies:      newBodyPool(),
		broadphase:  newBroadphase(settings),
		contacts:    newContactPool(),
		constraints: map[int64]Constraint{},
		log:         slog.Default(),
		id:          uuid.NewString(),
	}
	settings.log = w.log.With("world", w.id)
	return w
}

// SetLogger redirects the world's diagnostic output; every line it emits
// carries the world's debug id as a "world" field (§10.6).
func (w *World) SetLogger(logger *slog.Logger) {
	w.log = logger
	w.settings.log = logger.With("world", w.id)
}

// CreateBody validates settings, derives motion properties from the
// shape's mass properties, and adds the resulting body to the broadphase
// (§3, §6). A Static body never gets a MotionProperties.
func (w *World) CreateBody(settings BodyCreationSettings) (BodyId, error) {
	if settings.Shape == nil {
		return InvalidBodyId, newConstructionError("shape", "body creation settings require a non-nil shape")
	}
	if settings.ObjectLayer < 0 || settings.ObjectLayer >= len(w.settings.Layers.ObjectLayers) {
		return InvalidBodyId, newConstructionError("objectLayer", "object layer is not registered on this world's settings")
	}

	id, body := w.bodies.allocate()
	body.Position = settings.Position
	body.Rotation = settings.Rotation
	if body.Rotation == (mgl64.Quat{}) {
		body.Rotation = mgl64.QuatIdent()
	}
	body.Shape = settings.Shape
	body.MotionType = settings.MotionType
	body.ObjectLayer = settings.ObjectLayer
	body.Restitution = settings.Restitution
	body.Friction = settings.Friction
	body.Sensor = settings.Sensor
	body.CollideKinematicVsNonDynamic = settings.CollideKinematicVsNonDynamic
	body.CollisionGroup = settings.CollisionGroup
	body.CollisionMask = settings.CollisionMask
	if body.CollisionGroup == 0 && body.CollisionMask == 0 {
		// A zero-valued settings literal means "no group filtering", not
		// "collides with nothing".
		body.CollisionGroup, body.CollisionMask = 0xffffffff, 0xffffffff
	}
	body.UserData = settings.UserData

	if settings.MotionType != Static {
		motion, err := buildMotionProperties(&settings)
		if err != nil {
			w.bodies.release(id)
			return InvalidBodyId, err
		}
		body.Motion = motion
	}

	body.updateCenterOfMass()
	body.worldBounds = recomputeWorldBounds(body)
	w.broadphase.Add(body, int32(id.Index()))

	w.log.Debug("body created", "world", w.id, "body", id, "motionType", body.MotionType.String())
	return id, nil
}

// DestroyBody removes body from the broadphase, drops every contact
// touching it, and frees its pool slot (§3).
func (w *World) DestroyBody(id BodyId) {
	body := w.bodies.get(id)
	if body == nil {
		return
	}
	for edge := body.contactHead; edge != nil; {
		next := edge.next
		w.removeContact(edge.contact)
		edge = next
	}
	for handle, c := range w.constraints {
		a, b := c.BodyIds()
		if a == id || b == id {
			w.RemoveConstraint(handle)
		}
	}
	w.broadphase.Remove(body, int32(id.Index()))
	w.bodies.release(id)
	w.log.Debug("body destroyed", "world", w.id, "body", id)
}

// Body returns the RigidBody for id, or nil if id is stale or unknown.
// Callers may mutate fields like Restitution/Friction directly; shape and
// motion type changes should go through DestroyBody/CreateBody instead.
func (w *World) Body(id BodyId) *RigidBody { return w.bodies.get(id) }

// WakeBody clears a sleeping dynamic body's sleep state, called when an
// application applies a force or velocity change directly (§4.8).
func (w *World) WakeBody(id BodyId) {
	if body := w.bodies.get(id); body != nil {
		wakeBody(body)
	}
}

// AddConstraint registers a joint to be solved every step and returns a
// handle for later removal.
func (w *World) AddConstraint(c Constraint) int64 {
	id := w.nextConstraintId
	w.nextConstraintId++
	w.constraints[id] = c
	a, b := c.BodyIds()
	if ba := w.bodies.get(a); ba != nil {
		ba.constraints = append(ba.constraints, c)
		wakeBody(ba)
	}
	if bb := w.bodies.get(b); bb != nil {
		bb.constraints = append(bb.constraints, c)
		wakeBody(bb)
	}
	return id
}

// RemoveConstraint unregisters a previously added joint, detaching its
// back-references from both bodies.
func (w *World) RemoveConstraint(handle int64) {
	c, ok := w.constraints[handle]
	if !ok {
		return
	}
	delete(w.constraints, handle)
	a, b := c.BodyIds()
	for _, id := range []BodyId{a, b} {
		body := w.bodies.get(id)
		if body == nil {
			continue
		}
		for i, attached := range body.constraints {
			if attached == c {
				body.constraints = append(body.constraints[:i], body.constraints[i+1:]...)
				break
			}
		}
	}
}

func (w *World) removeContact(c *Contact) {
	delete(w.contacts.byKey, c.Key)
	if a := w.bodies.get(c.BodyA); a != nil {
		unlinkContactEdge(&a.contactHead, &c.edgeA)
	}
	if b := w.bodies.get(c.BodyB); b != nil {
		unlinkContactEdge(&b.contactHead, &c.edgeB)
	}
	if w.Listener != nil {
		w.Listener.OnContactRemoved(c.BodyA, c.BodyB)
	}
}

// Update advances the simulation by dt: the single fixed-step pipeline
// every op in §4 is a stage of, in order — integrate forces, broadphase
// refresh, narrow-phase, contact lifecycle with listener callbacks,
// island build, velocity solve, integrate positions, position solve,
// sleep bookkeeping. Mirrors
// the stage order of gazed-vu/physics/physics.go's Update, generalized
// from its single collision pass into the layered broadphase plus
// persistent-manifold pipeline this package implements.
func (w *World) Update(dt float64) {
	w.integrateForces(dt)
	w.updateBroadphase()
	pairs := w.broadphase.FindPairs()
	w.updateContacts(pairs)
	islands := w.buildActiveIslands()
	prepared := make([][]*contactConstraint, len(islands))
	for i := range islands {
		prepared[i] = solveIslandVelocity(w.bodies, &islands[i], w.settings, dt)
	}
	w.integratePositions(dt)
	for i := range islands {
		solveIslandPosition(w.bodies, &islands[i], prepared[i], w.settings, dt)
	}
	w.updateSleep(dt)
}

func (w *World) integrateForces(dt float64) {
	w.bodies.each(func(b *RigidBody) {
		applyGravityAndDamping(b, w.settings, dt)
	})
}

func (w *World) updateBroadphase() {
	w.bodies.each(func(b *RigidBody) {
		if b.MotionType == Static {
			return
		}
		tight := recomputeWorldBounds(b)
		w.broadphase.Update(b, int32(b.id.Index()), tight)
	})
}

// updateContacts runs narrow-phase over every broadphase-reported pair,
// creates or refreshes the persistent Contact for each, and sweeps
// anything no longer overlapping, invoking the listener's callbacks at
// each stage (§4.3, §4.7).
func (w *World) updateContacts(pairs []broadphasePair) {
	w.contacts.markAllStale()

	for _, pr := range pairs {
		bodyA, bodyB := &w.bodies.bodies[pr.a], &w.bodies.bodies[pr.b]
		if !w.bodies.alive[pr.a] || !w.bodies.alive[pr.b] {
			continue
		}
		if bodyA.MotionType == Static && bodyB.MotionType == Static {
			continue
		}
		if !w.settings.CollidesObjectLayers(bodyA.ObjectLayer, bodyB.ObjectLayer) {
			continue
		}
		if bodyA.CollisionGroup&bodyB.CollisionMask == 0 || bodyB.CollisionGroup&bodyA.CollisionMask == 0 {
			continue
		}
		// A kinematic body ignores static and other kinematic bodies
		// unless either side opts in (§3).
		if !bodyA.IsDynamic() && !bodyB.IsDynamic() &&
			!bodyA.CollideKinematicVsNonDynamic && !bodyB.CollideKinematicVsNonDynamic {
			continue
		}
		// A kinematic body moving into a sleeping dynamic must wake it
		// before narrow-phase so the contact forms this step (§4.8). A
		// kinematic at rest does not: a sleeper may keep sleeping against
		// a stationary platform.
		if kinematicMoving(bodyA) && bodyB.sleeping {
			wakeBody(bodyB)
		}
		if kinematicMoving(bodyB) && bodyA.sleeping {
			wakeBody(bodyA)
		}
		// With no awake body on either side there is nothing to resolve;
		// keep the pair's existing contacts alive rather than letting the
		// stale sweep fire a spurious removal (§4.1 step 4).
		inertA := bodyA.MotionType == Static || bodyA.sleeping
		inertB := bodyB.MotionType == Static || bodyB.sleeping
		if inertA && inertB {
			keepPairContacts(bodyA, bodyB)
			continue
		}
		if w.Listener != nil && !w.Listener.OnBodyPairValidate(bodyA.id, bodyB.id) {
			continue
		}

		candidates := narrowPhase(bodyA, bodyB, w.settings)
		for _, cand := range candidates {
			w.applyContactCandidate(bodyA, bodyB, cand)
		}
	}

	w.contacts.sweepStale(w.bodies, func(c *Contact) {
		if w.Listener != nil {
			w.Listener.OnContactRemoved(c.BodyA, c.BodyB)
		}
	})
}

func kinematicMoving(b *RigidBody) bool {
	return b.MotionType == Kinematic && b.Motion != nil &&
		(b.Motion.LinearVelocity.Len() > 1e-9 || b.Motion.AngularVelocity.Len() > 1e-9)
}

func (w *World) applyContactCandidate(bodyA, bodyB *RigidBody, cand contactCandidate) {
	key := newContactKey(bodyA.id, bodyB.id, cand.SubA, cand.SubB)
	fresh := Manifold{Points: cand.Points}
	var contactSettings ContactSettings
	if w.Listener != nil && !w.Listener.OnContactValidate(bodyA.id, bodyB.id, &fresh, &contactSettings) {
		return
	}

	friction := (bodyA.Friction + bodyB.Friction) * 0.5
	restitution := max(bodyA.Restitution, bodyB.Restitution)

	contact, created := w.contacts.getOrCreate(key, bodyA, bodyB, friction, restitution)
	contact.sensor = bodyA.Sensor || bodyB.Sensor
	contact.Settings = contactSettings
	poseA := pose{Position: bodyA.Position, Rotation: bodyA.Rotation}
	poseB := pose{Position: bodyB.Position, Rotation: bodyB.Rotation}
	contact.Manifold.Refresh(poseA, poseB, w.settings.ManifoldPersistenceDistanceSqr)
	contact.Manifold.Merge(fresh.Points, w.settings.ManifoldPersistenceDistanceSqr)

	if created {
		if bodyA.sleeping || bodyB.sleeping {
			wakeBody(bodyA)
			wakeBody(bodyB)
		}
		if w.Listener != nil {
			w.Listener.OnContactAdded(bodyA.id, bodyB.id, &contact.Manifold)
		}
	} else if w.Listener != nil {
		w.Listener.OnContactPersisted(bodyA.id, bodyB.id, &contact.Manifold)
	}
}

// buildActiveIslands collects every non-sleeping dynamic body's pool
// index, unions them across live contacts and constraints, and returns
// the resulting islands (§4.5).
func (w *World) buildActiveIslands() []Island {
	var active []int32
	indexOf := map[BodyId]int32{}
	w.bodies.each(func(b *RigidBody) {
		if b.MotionType != Dynamic || b.sleeping {
			return
		}
		idx := int32(b.id.Index())
		active = append(active, idx)
		indexOf[b.id] = idx
	})

	var contacts []*Contact
	w.contacts.each(func(c *Contact) { contacts = append(contacts, c) })

	constraints := make([]Constraint, 0, len(w.constraints))
	for _, c := range w.constraints {
		constraints = append(constraints, c)
	}

	return buildIslands(active, w.bodies, contacts, constraints, indexOf)
}

func (w *World) integratePositions(dt float64) {
	w.bodies.each(func(b *RigidBody) {
		integratePosition(b, dt)
	})
}

func (w *World) updateSleep(dt float64) {
	w.bodies.each(func(b *RigidBody) {
		updateSleepState(b, &w.settings.Sleeping, dt)
	})
}
