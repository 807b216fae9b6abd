// Copyright © 2024 Galvanized Logic Inc.

package physics

import "github.com/go-gl/mathgl/mgl64"

// MotorMode selects how a constraint's motor drives its free axis. Of
// the eight joint types, HingeConstraint, SliderConstraint and
// SixDOFConstraint carry a Motor.
type MotorMode int

const (
	MotorOff MotorMode = iota
	MotorVelocity
	MotorPosition
)

// Motor drives a constraint's free axis toward a target velocity or
// position, subject to force limits.
type Motor struct {
	Mode           MotorMode
	TargetVelocity float64
	TargetPosition float64
	MaxForce       float64
	MaxTorque      float64
}

// SpringMode selects how SpringSettings values are interpreted.
type SpringMode int

const (
	SpringFrequencyAndDamping SpringMode = iota
	SpringStiffnessAndDamping
)

// SpringSettings describes a soft spring for a constraint axis. It is
// stored on DistanceConstraint.Spring, but no joint's solve reads it:
// every joint limit in this package acts as a hard stop.
type SpringSettings struct {
	Mode      SpringMode
	Frequency float64
	Stiffness float64
	Damping   float64
}

// Constraint is implemented by every joint type (§4.5). The solver calls
// Prepare once per step, WarmStart once, then SolveVelocity
// Solver.VelocityIterations times and SolvePosition
// Solver.PositionIterations times — the common contract every joint in
// this package follows, modeled on the setup/warm-start/iterate shape of
// gazed-vu/physics/solver.go generalized from contacts-only to arbitrary
// joints. SolvePosition applies a pseudo-impulse that removes a fixed
// fraction (0.2) of the remaining position or angle error per pass.
type Constraint interface {
	BodyIds() (BodyId, BodyId)
	Prepare(bodies *bodyPool, dt float64)
	WarmStart(bodies *bodyPool)
	SolveVelocity(bodies *bodyPool, dt float64)
	SolvePosition(bodies *bodyPool, dt float64)
}

// jointBase holds the fields every joint needs: the two bodies and their
// local-space anchor points. Embedded by every concrete joint type below.
type jointBase struct {
	BodyA, BodyB BodyId
	LocalAnchorA mgl64.Vec3
	LocalAnchorB mgl64.Vec3

	// scratch, recomputed each Prepare.
	worldAnchorA mgl64.Vec3
	worldAnchorB mgl64.Vec3
	ra, rb       mgl64.Vec3 // anchor offsets from each body's Position, world space.
}

func (j *jointBase) BodyIds() (BodyId, BodyId) { return j.BodyA, j.BodyB }

func (j *jointBase) prepareAnchors(a, b *RigidBody) {
	j.worldAnchorA = a.Position.Add(a.Rotation.Rotate(j.LocalAnchorA))
	j.worldAnchorB = b.Position.Add(b.Rotation.Rotate(j.LocalAnchorB))
	j.ra = j.worldAnchorA.Sub(a.Position)
	j.rb = j.worldAnchorB.Sub(b.Position)
}

// effectiveMass returns the scalar effective mass along direction for a
// point constraint between bodies a and b anchored at ra/rb (world-space
// offsets from each body's Position) — the shared building block every
// joint's point-to-point or per-axis solve reduces to.
func effectiveMass(a, b *RigidBody, ra, rb, direction mgl64.Vec3) float64 {
	var invMassA, invMassB float64
	var angA, angB mgl64.Vec3
	if a.Motion != nil {
		invMassA = a.Motion.InverseMass
		invInertiaA := a.Motion.worldInverseInertia(a.Rotation)
		angA = invInertiaA.Mul3x1(ra.Cross(direction))
	}
	if b.Motion != nil {
		invMassB = b.Motion.InverseMass
		invInertiaB := b.Motion.worldInverseInertia(b.Rotation)
		angB = invInertiaB.Mul3x1(rb.Cross(direction))
	}
	k := invMassA + invMassB + angA.Cross(ra).Dot(direction) + angB.Cross(rb).Dot(direction)
	if k < 1e-12 {
		return 0
	}
	return 1 / k
}

// applyPointImpulse applies impulse (a full vector, not just a scalar
// along one axis) at ra/rb to bodies a and b's linear and angular
// velocities in opposite directions.
func applyPointImpulse(a, b *RigidBody, ra, rb, impulse mgl64.Vec3) {
	if a.Motion != nil && a.IsDynamic() {
		a.Motion.LinearVelocity = a.Motion.LinearVelocity.Sub(impulse.Mul(a.Motion.InverseMass))
		invInertiaA := a.Motion.worldInverseInertia(a.Rotation)
		a.Motion.AngularVelocity = a.Motion.AngularVelocity.Sub(invInertiaA.Mul3x1(ra.Cross(impulse)))
	}
	if b.Motion != nil && b.IsDynamic() {
		b.Motion.LinearVelocity = b.Motion.LinearVelocity.Add(impulse.Mul(b.Motion.InverseMass))
		invInertiaB := b.Motion.worldInverseInertia(b.Rotation)
		b.Motion.AngularVelocity = b.Motion.AngularVelocity.Add(invInertiaB.Mul3x1(rb.Cross(impulse)))
	}
}

// pointVelocity returns the world-space velocity of the material point at
// offset r from body's Position.
func pointVelocity(body *RigidBody, r mgl64.Vec3) mgl64.Vec3 {
	if body.Motion == nil {
		return mgl64.Vec3{}
	}
	return body.Motion.LinearVelocity.Add(body.Motion.AngularVelocity.Cross(r))
}
