// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// This file is the body mutation and inspection surface of §6: forces,
// impulses, teleports, kinematic targets, wake control, and the
// point-velocity / surface-normal queries. All of it is valid only
// between steps (§5); none of it may be called from inside Update.

// AddForce accumulates a force through the body's center of mass, applied
// over the next step. Ignored on non-dynamic bodies.
func (w *World) AddForce(id BodyId, force mgl64.Vec3) {
	body := w.bodies.get(id)
	if body == nil || !body.IsDynamic() {
		return
	}
	body.Motion.force = body.Motion.force.Add(force)
	wakeBody(body)
}

// AddTorque accumulates a torque, applied over the next step. Ignored on
// non-dynamic bodies.
func (w *World) AddTorque(id BodyId, torque mgl64.Vec3) {
	body := w.bodies.get(id)
	if body == nil || !body.IsDynamic() {
		return
	}
	body.Motion.torque = body.Motion.torque.Add(torque)
	wakeBody(body)
}

// AddForceAtPosition accumulates a force acting at a world-space point,
// splitting it into a center-of-mass force plus the induced torque.
func (w *World) AddForceAtPosition(id BodyId, force, worldPoint mgl64.Vec3) {
	body := w.bodies.get(id)
	if body == nil || !body.IsDynamic() {
		return
	}
	body.Motion.force = body.Motion.force.Add(force)
	body.Motion.torque = body.Motion.torque.Add(worldPoint.Sub(body.comPosition).Cross(force))
	wakeBody(body)
}

// AddImpulse changes the body's linear velocity immediately by
// impulse * inverseMass. Ignored on non-dynamic bodies.
func (w *World) AddImpulse(id BodyId, impulse mgl64.Vec3) {
	body := w.bodies.get(id)
	if body == nil || !body.IsDynamic() {
		return
	}
	m := body.Motion
	m.LinearVelocity = m.LinearVelocity.Add(impulse.Mul(m.InverseMass))
	clampVelocities(m)
	maskMotionProperties(m)
	wakeBody(body)
}

// AddAngularImpulse changes the body's angular velocity immediately.
// Ignored on non-dynamic bodies.
func (w *World) AddAngularImpulse(id BodyId, impulse mgl64.Vec3) {
	body := w.bodies.get(id)
	if body == nil || !body.IsDynamic() {
		return
	}
	m := body.Motion
	m.AngularVelocity = m.AngularVelocity.Add(m.worldInverseInertia(body.Rotation).Mul3x1(impulse))
	clampVelocities(m)
	maskMotionProperties(m)
	wakeBody(body)
}

// AddImpulseAtPosition applies an impulse at a world-space point, changing
// both linear and angular velocity. Ignored on non-dynamic bodies.
func (w *World) AddImpulseAtPosition(id BodyId, impulse, worldPoint mgl64.Vec3) {
	body := w.bodies.get(id)
	if body == nil || !body.IsDynamic() {
		return
	}
	m := body.Motion
	m.LinearVelocity = m.LinearVelocity.Add(impulse.Mul(m.InverseMass))
	r := worldPoint.Sub(body.comPosition)
	m.AngularVelocity = m.AngularVelocity.Add(m.worldInverseInertia(body.Rotation).Mul3x1(r.Cross(impulse)))
	clampVelocities(m)
	maskMotionProperties(m)
	wakeBody(body)
}

// SetTransform teleports the body to a new pose, refreshing its bounds in
// the broadphase. When activate is true a sleeping dynamic body wakes.
func (w *World) SetTransform(id BodyId, position mgl64.Vec3, rotation mgl64.Quat, activate bool) {
	body := w.bodies.get(id)
	if body == nil {
		return
	}
	body.Position = position
	body.Rotation = rotation
	body.updateCenterOfMass()
	w.broadphase.Update(body, int32(id.Index()), recomputeWorldBounds(body))
	if activate {
		wakeBody(body)
	}
}

// SetPosition teleports the body keeping its current rotation.
func (w *World) SetPosition(id BodyId, position mgl64.Vec3, activate bool) {
	body := w.bodies.get(id)
	if body == nil {
		return
	}
	w.SetTransform(id, position, body.Rotation, activate)
}

// SetLinearVelocity overwrites the body's linear velocity and wakes it.
// Ignored on static bodies, which have no velocity to set.
func (w *World) SetLinearVelocity(id BodyId, velocity mgl64.Vec3) {
	body := w.bodies.get(id)
	if body == nil || body.Motion == nil {
		return
	}
	body.Motion.LinearVelocity = velocity
	clampVelocities(body.Motion)
	maskMotionProperties(body.Motion)
	wakeBody(body)
}

// SetAngularVelocity overwrites the body's angular velocity and wakes it.
func (w *World) SetAngularVelocity(id BodyId, velocity mgl64.Vec3) {
	body := w.bodies.get(id)
	if body == nil || body.Motion == nil {
		return
	}
	body.Motion.AngularVelocity = velocity
	clampVelocities(body.Motion)
	maskMotionProperties(body.Motion)
	wakeBody(body)
}

// MoveKinematic sets a kinematic body's velocities such that integrating
// them over dt lands the body exactly on the target pose (§4.7). The body
// is not teleported; the next Update moves it, pushing dynamic bodies on
// the way.
func (w *World) MoveKinematic(id BodyId, targetPosition mgl64.Vec3, targetRotation mgl64.Quat, dt float64) {
	body := w.bodies.get(id)
	if body == nil || body.MotionType != Kinematic || dt <= 0 {
		return
	}
	m := body.Motion
	m.LinearVelocity = targetPosition.Sub(body.Position).Mul(1 / dt)

	delta := targetRotation.Mul(body.Rotation.Inverse())
	if delta.W < 0 {
		delta = delta.Scale(-1)
	}
	sin := delta.V.Len()
	if sin < 1e-12 {
		m.AngularVelocity = mgl64.Vec3{}
		return
	}
	angle := 2 * math.Atan2(sin, delta.W)
	m.AngularVelocity = delta.V.Mul(angle / (sin * dt))
}

// SleepBody forces a dynamic body to sleep immediately, zeroing its
// velocities. No-op if the body disallows sleeping.
func (w *World) SleepBody(id BodyId) {
	body := w.bodies.get(id)
	if body == nil || !body.IsDynamic() || !body.Motion.allowSleep {
		return
	}
	body.sleeping = true
	body.Motion.LinearVelocity = mgl64.Vec3{}
	body.Motion.AngularVelocity = mgl64.Vec3{}
}

// WakeBodiesInAABB wakes every non-static body whose fat AABB intersects
// region (§4.8's wakeInAABB).
func (w *World) WakeBodiesInAABB(region AABB) {
	for _, idx := range w.broadphase.QueryBounds(region, nil) {
		if int(idx) < len(w.bodies.bodies) && w.bodies.alive[idx] {
			wakeBody(&w.bodies.bodies[idx])
		}
	}
}

// VelocityAtPoint returns the world-space velocity of the body's material
// point at worldPoint, combining linear and angular motion. Zero for
// static bodies.
func (w *World) VelocityAtPoint(id BodyId, worldPoint mgl64.Vec3) mgl64.Vec3 {
	body := w.bodies.get(id)
	if body == nil || body.Motion == nil {
		return mgl64.Vec3{}
	}
	return pointVelocity(body, worldPoint.Sub(body.comPosition))
}

// VelocityAtPointCOM is VelocityAtPoint with the point given relative to
// the body's center of mass instead of in world space.
func (w *World) VelocityAtPointCOM(id BodyId, comRelativePoint mgl64.Vec3) mgl64.Vec3 {
	body := w.bodies.get(id)
	if body == nil || body.Motion == nil {
		return mgl64.Vec3{}
	}
	return pointVelocity(body, comRelativePoint)
}

// SurfaceNormal returns the unit outward normal of the body's surface at
// worldPoint on the sub-shape addressed by subShapeID (§4.2's surface
// normal contract), rotated into world space.
func (w *World) SurfaceNormal(id BodyId, worldPoint mgl64.Vec3, subShapeID SubShapeID) mgl64.Vec3 {
	body := w.bodies.get(id)
	if body == nil {
		return mgl64.Vec3{0, 1, 0}
	}
	local := body.Rotation.Inverse().Rotate(worldPoint.Sub(body.Position))
	return body.Rotation.Rotate(body.Shape.SurfaceNormal(local, subShapeID)).Normalize()
}

// UpdateCenterOfMassPosition refreshes the body's cached world-space
// center of mass. Needed only after a caller mutates Position/Rotation
// fields directly instead of going through SetTransform.
func (w *World) UpdateCenterOfMassPosition(id BodyId) {
	if body := w.bodies.get(id); body != nil {
		body.updateCenterOfMass()
	}
}

// BodiesShareConstraint reports whether any registered joint links bodies
// a and b, answered by scanning a's constraint back-references (§3).
func (w *World) BodiesShareConstraint(a, b BodyId) bool {
	body := w.bodies.get(a)
	if body == nil {
		return false
	}
	for _, c := range body.constraints {
		ca, cb := c.BodyIds()
		if (ca == a && cb == b) || (ca == b && cb == a) {
			return true
		}
	}
	return false
}
