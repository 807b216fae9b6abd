// Copyright © 2024 Galvanized Logic Inc.

package physics

import "github.com/go-gl/mathgl/mgl64"

// ContactSettings lets OnContactValidate adjust how a contact is solved:
// surface velocities model conveyor-belt style contacts where the
// surfaces slide relative to each other even while the bodies rest
// (§4.3, §4.6).
type ContactSettings struct {
	RelativeLinearSurfaceVelocity  mgl64.Vec3
	RelativeAngularSurfaceVelocity mgl64.Vec3
}

// ContactListener receives notifications as the contact pipeline
// discovers, persists, and discards contacts (§4.3, §4.7). World makes no
// calls while its Listener is nil; a listener that handles only some
// events can embed BaseContactListener for the rest.
type ContactListener interface {
	// OnBodyPairValidate is called once per body pair the broadphase
	// reports as overlapping, before narrow-phase runs. Returning false
	// suppresses the pair for the rest of this step (e.g. application
	// level "these two never collide" logic finer than layer filtering).
	OnBodyPairValidate(bodyA, bodyB BodyId) bool

	// OnContactValidate is called after narrow-phase confirms an actual
	// manifold, before the contact is added or persisted. Returning false
	// discards the manifold entirely (no OnContactAdded/Persisted fires).
	// The listener may write surface velocities into settings; they apply
	// to this contact until the next validate call.
	OnContactValidate(bodyA, bodyB BodyId, manifold *Manifold, settings *ContactSettings) bool

	OnContactAdded(bodyA, bodyB BodyId, manifold *Manifold)
	OnContactPersisted(bodyA, bodyB BodyId, manifold *Manifold)
	OnContactRemoved(bodyA, bodyB BodyId)
}

// BaseContactListener implements ContactListener with permissive
// defaults (always validate, no-op callbacks); embed it to override only
// the methods a caller cares about, the same partial-implementation
// convenience pattern the teacher's device/input listener interfaces use.
type BaseContactListener struct{}

func (BaseContactListener) OnBodyPairValidate(BodyId, BodyId) bool { return true }
func (BaseContactListener) OnContactValidate(BodyId, BodyId, *Manifold, *ContactSettings) bool {
	return true
}
func (BaseContactListener) OnContactAdded(BodyId, BodyId, *Manifold)     {}
func (BaseContactListener) OnContactPersisted(BodyId, BodyId, *Manifold) {}
func (BaseContactListener) OnContactRemoved(BodyId, BodyId)              {}
