// Copyright © 2024 Galvanized Logic Inc.

package physics

import "github.com/go-gl/mathgl/mgl64"

// applyGravityAndDamping is the force-integration half of a step (§4.6):
// it advances velocities by gravity and damping (v *= 1/(1+damping*dt)) but does not
// touch position. Run once per step before the velocity solver so warm
// starting and the solver itself see post-gravity velocities, matching
// gazed-vu/physics/physics.go's predict-velocities-then-solve ordering.
func applyGravityAndDamping(body *RigidBody, settings *WorldSettings, dt float64) {
	m := body.Motion
	if m == nil || body.MotionType != Dynamic || body.sleeping {
		return
	}
	if settings.GravityEnabled {
		m.LinearVelocity = m.LinearVelocity.Add(settings.Gravity.Mul(m.GravityFactor * dt))
	}
	m.LinearVelocity = m.LinearVelocity.Add(m.force.Mul(dt * m.InverseMass))
	m.AngularVelocity = m.AngularVelocity.Add(m.worldInverseInertia(body.Rotation).Mul3x1(m.torque).Mul(dt))
	m.force, m.torque = mgl64.Vec3{}, mgl64.Vec3{}
	m.LinearVelocity = m.LinearVelocity.Mul(1 / (1 + dt*m.LinearDamping))
	m.AngularVelocity = m.AngularVelocity.Mul(1 / (1 + dt*m.AngularDamping))
	clampVelocities(m)
	maskMotionProperties(m)
}

// clampVelocities enforces MaxLinearVelocity/MaxAngularVelocity (§3), the
// same runaway-velocity guard gazed-vu/physics/body.go applies after every
// impulse.
func clampVelocities(m *MotionProperties) {
	if l := m.LinearVelocity.Len(); l > m.MaxLinearVelocity && l > 0 {
		m.LinearVelocity = m.LinearVelocity.Mul(m.MaxLinearVelocity / l)
	}
	if a := m.AngularVelocity.Len(); a > m.MaxAngularVelocity && a > 0 {
		m.AngularVelocity = m.AngularVelocity.Mul(m.MaxAngularVelocity / a)
	}
}

// integratePosition advances position and rotation by the current
// velocities over dt, the kinematic half of §4.6's integrator. Kinematic
// bodies integrate too (they are driven by velocity, not forces); static
// bodies never do.
func integratePosition(body *RigidBody, dt float64) {
	if body.MotionType == Static || body.sleeping {
		return
	}
	m := body.Motion
	if m == nil {
		return
	}
	if body.MotionType == Dynamic {
		// Solver impulses may have produced velocity on a locked axis or
		// beyond the body's speed caps; both are enforced before any of
		// it turns into motion (§4.6).
		clampVelocities(m)
		maskMotionProperties(m)
	}
	body.Position = body.Position.Add(m.LinearVelocity.Mul(dt))
	body.Rotation = integrateRotation(body.Rotation, m.AngularVelocity, dt)
	body.updateCenterOfMass()
}

// recomputeWorldBounds refreshes a body's tight-fitting world AABB from
// its shape and current pose; the broadphase separately maintains a
// fatter hysteresis box derived from this (broadphase.go's Update).
func recomputeWorldBounds(body *RigidBody) AABB {
	local := body.Shape.LocalBounds()
	corners := [8]mgl64.Vec3{
		{local.Min[0], local.Min[1], local.Min[2]},
		{local.Max[0], local.Min[1], local.Min[2]},
		{local.Min[0], local.Max[1], local.Min[2]},
		{local.Min[0], local.Min[1], local.Max[2]},
		{local.Max[0], local.Max[1], local.Min[2]},
		{local.Max[0], local.Min[1], local.Max[2]},
		{local.Min[0], local.Max[1], local.Max[2]},
		{local.Max[0], local.Max[1], local.Max[2]},
	}
	bounds := NewAABB()
	for _, c := range corners {
		world := body.Position.Add(body.Rotation.Rotate(c))
		bounds.Min = mgl64.Vec3{min(bounds.Min[0], world[0]), min(bounds.Min[1], world[1]), min(bounds.Min[2], world[2])}
		bounds.Max = mgl64.Vec3{max(bounds.Max[0], world[0]), max(bounds.Max[1], world[1]), max(bounds.Max[2], world[2])}
	}
	return bounds
}
