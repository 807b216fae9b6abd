// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// orientationError returns a small-angle axis-angle vector driving
// current toward target: the vector part of the relative quaternion,
// doubled, the standard linearization used by every generic-6DOF-style
// constraint (Bullet's btGeneric6DofConstraint, among others) since an
// exact log-map is unnecessary at the angles a single solver step
// corrects.
func orientationError(current, target mgl64.Quat) mgl64.Vec3 {
	rel := target.Mul(current.Inverse())
	if rel.W < 0 {
		rel.W, rel.V = -rel.W, rel.V.Mul(-1)
	}
	return rel.V.Mul(2)
}

// ============================================================================
// PointConstraint — locks two anchor points together, 3 linear DOF
// removed, rotation free (§4.5).

type PointConstraint struct {
	jointBase
	impulse mgl64.Vec3 // accumulated, for warm starting.
}

func NewPointConstraint(bodyA, bodyB BodyId, localAnchorA, localAnchorB mgl64.Vec3) *PointConstraint {
	return &PointConstraint{jointBase: jointBase{BodyA: bodyA, BodyB: bodyB, LocalAnchorA: localAnchorA, LocalAnchorB: localAnchorB}}
}

func (c *PointConstraint) Prepare(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	c.prepareAnchors(a, b)
}

func (c *PointConstraint) WarmStart(bodies *bodyPool) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	applyPointImpulse(a, b, c.ra, c.rb, c.impulse)
}

func (c *PointConstraint) SolveVelocity(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	relVel := pointVelocity(b, c.rb).Sub(pointVelocity(a, c.ra))
	for axis := 0; axis < 3; axis++ {
		var dir mgl64.Vec3
		dir[axis] = 1
		k := effectiveMass(a, b, c.ra, c.rb, dir)
		if k == 0 {
			continue
		}
		lambda := -relVel[axis] * k
		impulse := dir.Mul(lambda)
		applyPointImpulse(a, b, c.ra, c.rb, impulse)
		c.impulse = c.impulse.Add(impulse)
		relVel = pointVelocity(b, c.rb).Sub(pointVelocity(a, c.ra))
	}
}

func (c *PointConstraint) SolvePosition(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	c.prepareAnchors(a, b)
	err := c.worldAnchorB.Sub(c.worldAnchorA)
	if err.Dot(err) < 1e-10 {
		return
	}
	const beta = 0.2
	for axis := 0; axis < 3; axis++ {
		var dir mgl64.Vec3
		dir[axis] = 1
		k := effectiveMass(a, b, c.ra, c.rb, dir)
		if k == 0 {
			continue
		}
		lambda := -err[axis] * beta * k
		correctivePositionImpulse(a, b, c.ra, c.rb, dir.Mul(lambda))
	}
}

// correctivePositionImpulse nudges position/rotation directly (not
// velocity) by a pseudo-impulse, the position-level half of the
// velocity+position solver split every joint and contact share (§4.6).
func correctivePositionImpulse(a, b *RigidBody, ra, rb, impulse mgl64.Vec3) {
	if a.Motion != nil && a.IsDynamic() {
		a.Position = a.Position.Sub(impulse.Mul(a.Motion.InverseMass))
		invInertiaA := a.Motion.worldInverseInertia(a.Rotation)
		angularDisp := invInertiaA.Mul3x1(ra.Cross(impulse)).Mul(-1)
		a.Rotation = integrateRotation(a.Rotation, angularDisp, 1)
	}
	if b.Motion != nil && b.IsDynamic() {
		b.Position = b.Position.Add(impulse.Mul(b.Motion.InverseMass))
		invInertiaB := b.Motion.worldInverseInertia(b.Rotation)
		angularDisp := invInertiaB.Mul3x1(rb.Cross(impulse))
		b.Rotation = integrateRotation(b.Rotation, angularDisp, 1)
	}
}

// ============================================================================
// DistanceConstraint — keeps two anchors between MinDistance and
// MaxDistance apart as hard limits (§4.5); the Spring field is not read.

type DistanceConstraint struct {
	jointBase
	MinDistance float64
	MaxDistance float64
	Spring      SpringSettings
	impulse     float64
}

func NewDistanceConstraint(bodyA, bodyB BodyId, localAnchorA, localAnchorB mgl64.Vec3, minDist, maxDist float64) *DistanceConstraint {
	return &DistanceConstraint{
		jointBase:   jointBase{BodyA: bodyA, BodyB: bodyB, LocalAnchorA: localAnchorA, LocalAnchorB: localAnchorB},
		MinDistance: minDist,
		MaxDistance: maxDist,
	}
}

func (c *DistanceConstraint) Prepare(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	c.prepareAnchors(a, b)
}

func (c *DistanceConstraint) axis() (dir mgl64.Vec3, dist float64) {
	d := c.worldAnchorB.Sub(c.worldAnchorA)
	dist = d.Len()
	if dist < 1e-9 {
		return mgl64.Vec3{1, 0, 0}, 0
	}
	return d.Mul(1 / dist), dist
}

func (c *DistanceConstraint) WarmStart(bodies *bodyPool) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	dir, _ := c.axis()
	applyPointImpulse(a, b, c.ra, c.rb, dir.Mul(c.impulse))
}

func (c *DistanceConstraint) SolveVelocity(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	dir, dist := c.axis()
	if dist >= c.MinDistance && dist <= c.MaxDistance {
		return
	}
	relVel := pointVelocity(b, c.rb).Sub(pointVelocity(a, c.ra)).Dot(dir)
	k := effectiveMass(a, b, c.ra, c.rb, dir)
	if k == 0 {
		return
	}
	lambda := -relVel * k
	c.impulse += lambda
	applyPointImpulse(a, b, c.ra, c.rb, dir.Mul(lambda))
}

func (c *DistanceConstraint) SolvePosition(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	c.prepareAnchors(a, b)
	dir, dist := c.axis()
	var err float64
	switch {
	case dist < c.MinDistance:
		err = dist - c.MinDistance
	case dist > c.MaxDistance:
		err = dist - c.MaxDistance
	default:
		return
	}
	const beta = 0.2
	k := effectiveMass(a, b, c.ra, c.rb, dir)
	if k == 0 {
		return
	}
	lambda := -err * beta * k
	correctivePositionImpulse(a, b, c.ra, c.rb, dir.Mul(lambda))
}

// ============================================================================
// HingeConstraint — point constraint plus a single free rotation axis,
// with optional limits and motor around it (§4.5).

type HingeConstraint struct {
	jointBase
	LocalAxisA mgl64.Vec3
	LocalAxisB mgl64.Vec3
	MinAngle   float64
	MaxAngle   float64
	HasLimits  bool
	Motor      Motor

	pointImpulse   mgl64.Vec3
	angularImpulse mgl64.Vec3 // perpendicular-plane angular lock.
}

func NewHingeConstraint(bodyA, bodyB BodyId, localAnchorA, localAnchorB, localAxisA, localAxisB mgl64.Vec3) *HingeConstraint {
	return &HingeConstraint{jointBase: jointBase{BodyA: bodyA, BodyB: bodyB, LocalAnchorA: localAnchorA, LocalAnchorB: localAnchorB}, LocalAxisA: localAxisA, LocalAxisB: localAxisB}
}

func (c *HingeConstraint) Prepare(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	c.prepareAnchors(a, b)
}

func (c *HingeConstraint) axes(a, b *RigidBody) (axisA, perp1, perp2 mgl64.Vec3) {
	axisA = a.Rotation.Rotate(c.LocalAxisA).Normalize()
	perp1 = arbitraryPerpendicular(axisA)
	perp2 = axisA.Cross(perp1)
	return
}

func (c *HingeConstraint) WarmStart(bodies *bodyPool) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	applyPointImpulse(a, b, c.ra, c.rb, c.pointImpulse)
	_, p1, p2 := c.axes(a, b)
	angular := p1.Mul(c.angularImpulse[0]).Add(p2.Mul(c.angularImpulse[1]))
	applyAngularImpulse(a, b, angular)
}

func (c *HingeConstraint) SolveVelocity(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)

	relVel := pointVelocity(b, c.rb).Sub(pointVelocity(a, c.ra))
	for axis := 0; axis < 3; axis++ {
		var dir mgl64.Vec3
		dir[axis] = 1
		k := effectiveMass(a, b, c.ra, c.rb, dir)
		if k == 0 {
			continue
		}
		lambda := -relVel[axis] * k
		impulse := dir.Mul(lambda)
		applyPointImpulse(a, b, c.ra, c.rb, impulse)
		c.pointImpulse = c.pointImpulse.Add(impulse)
		relVel = pointVelocity(b, c.rb).Sub(pointVelocity(a, c.ra))
	}

	axisA, p1, p2 := c.axes(a, b)
	relAngVel := angularVelocityOf(b).Sub(angularVelocityOf(a))
	for i, perp := range []mgl64.Vec3{p1, p2} {
		k := angularEffectiveMass(a, b, perp)
		if k == 0 {
			continue
		}
		lambda := -relAngVel.Dot(perp) * k
		applyAngularImpulse(a, b, perp.Mul(lambda))
		c.angularImpulse[i] += lambda
		relAngVel = angularVelocityOf(b).Sub(angularVelocityOf(a))
	}

	if c.Motor.Mode != MotorOff {
		k := angularEffectiveMass(a, b, axisA)
		if k != 0 {
			target := c.Motor.TargetVelocity
			if c.Motor.Mode == MotorPosition {
				// Servo: close the remaining angle over the next step.
				target = (c.Motor.TargetPosition - c.angle(a, b)) / dt
			}
			current := angularVelocityOf(b).Sub(angularVelocityOf(a)).Dot(axisA)
			lambda := (target - current) * k
			maxImpulse := c.Motor.MaxTorque * dt
			lambda = clampFloat(lambda, -maxImpulse, maxImpulse)
			applyAngularImpulse(a, b, axisA.Mul(lambda))
		}
	}
}

// angle measures the current rotation about the hinge axis, the signed
// angle between the two bodies' reference directions in the hinge plane.
func (c *HingeConstraint) angle(a, b *RigidBody) float64 {
	_, p1, p2 := c.axes(a, b)
	refB := b.Rotation.Rotate(c.LocalAxisB.Cross(arbitraryPerpendicular(c.LocalAxisB)))
	return math.Atan2(p2.Dot(refB), p1.Dot(refB))
}

// CurrentAngle returns the hinge's rotation angle about its axis (§6's
// getCurrentPosition for hinge joints).
func (c *HingeConstraint) CurrentAngle(w *World) float64 {
	a, b := w.bodies.get(c.BodyA), w.bodies.get(c.BodyB)
	if a == nil || b == nil {
		return 0
	}
	return c.angle(a, b)
}

// SetMotorState switches the hinge motor between Off, Velocity, and
// Position drive. Transitions take effect at the next step (§5).
func (c *HingeConstraint) SetMotorState(mode MotorMode) { c.Motor.Mode = mode }

// SetTargetAngularVelocity sets the velocity-mode motor target, rad/s
// about the hinge axis.
func (c *HingeConstraint) SetTargetAngularVelocity(v float64) { c.Motor.TargetVelocity = v }

// SetTargetAngle sets the position-mode motor target angle.
func (c *HingeConstraint) SetTargetAngle(angle float64) { c.Motor.TargetPosition = angle }

func (c *HingeConstraint) SolvePosition(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	c.prepareAnchors(a, b)
	err := c.worldAnchorB.Sub(c.worldAnchorA)
	const beta = 0.2
	if err.Dot(err) > 1e-10 {
		for axis := 0; axis < 3; axis++ {
			var dir mgl64.Vec3
			dir[axis] = 1
			k := effectiveMass(a, b, c.ra, c.rb, dir)
			if k == 0 {
				continue
			}
			lambda := -err[axis] * beta * k
			correctivePositionImpulse(a, b, c.ra, c.rb, dir.Mul(lambda))
		}
	}
	// Align the two hinge axes: drive out any component of B's axis
	// perpendicular to A's.
	axisA := a.Rotation.Rotate(c.LocalAxisA).Normalize()
	axisB := b.Rotation.Rotate(c.LocalAxisB).Normalize()
	correction := axisA.Cross(axisB)
	if correction.Dot(correction) > 1e-10 {
		correctiveAngularImpulse(a, b, correction.Mul(beta))
	}
	if !c.HasLimits {
		return
	}
	angle := c.angle(a, b)
	if angle < c.MinAngle {
		correctiveAngularImpulse(a, b, axisA.Mul((c.MinAngle-angle)*beta))
	} else if angle > c.MaxAngle {
		correctiveAngularImpulse(a, b, axisA.Mul((c.MaxAngle-angle)*beta))
	}
}

// ============================================================================
// SliderConstraint — one free translation axis, rotation fully locked,
// with optional limits and motor along the axis (§4.5).

type SliderConstraint struct {
	jointBase
	LocalAxisA mgl64.Vec3
	MinDistance float64
	MaxDistance float64
	HasLimits   bool
	Motor       Motor

	referenceRotation mgl64.Quat // Set at Prepare time from the first step's relative rotation.
	initialized       bool
}

func NewSliderConstraint(bodyA, bodyB BodyId, localAnchorA, localAnchorB, localAxisA mgl64.Vec3) *SliderConstraint {
	return &SliderConstraint{jointBase: jointBase{BodyA: bodyA, BodyB: bodyB, LocalAnchorA: localAnchorA, LocalAnchorB: localAnchorB}, LocalAxisA: localAxisA}
}

func (c *SliderConstraint) Prepare(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	c.prepareAnchors(a, b)
	if !c.initialized {
		c.referenceRotation = b.Rotation.Mul(a.Rotation.Inverse())
		c.initialized = true
	}
}

func (c *SliderConstraint) WarmStart(bodies *bodyPool) {}

func (c *SliderConstraint) SolveVelocity(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	axis := a.Rotation.Rotate(c.LocalAxisA).Normalize()
	p1 := arbitraryPerpendicular(axis)
	p2 := axis.Cross(p1)

	relVel := pointVelocity(b, c.rb).Sub(pointVelocity(a, c.ra))
	for _, dir := range []mgl64.Vec3{p1, p2} {
		k := effectiveMass(a, b, c.ra, c.rb, dir)
		if k == 0 {
			continue
		}
		lambda := -relVel.Dot(dir) * k
		applyPointImpulse(a, b, c.ra, c.rb, dir.Mul(lambda))
		relVel = pointVelocity(b, c.rb).Sub(pointVelocity(a, c.ra))
	}

	relAngVel := angularVelocityOf(b).Sub(angularVelocityOf(a))
	for axisIdx := 0; axisIdx < 3; axisIdx++ {
		var dir mgl64.Vec3
		dir[axisIdx] = 1
		k := angularEffectiveMass(a, b, dir)
		if k == 0 {
			continue
		}
		lambda := -relAngVel[axisIdx] * k
		applyAngularImpulse(a, b, dir.Mul(lambda))
		relAngVel = angularVelocityOf(b).Sub(angularVelocityOf(a))
	}

	if c.Motor.Mode != MotorOff {
		k := effectiveMass(a, b, c.ra, c.rb, axis)
		if k != 0 {
			target := c.Motor.TargetVelocity
			if c.Motor.Mode == MotorPosition {
				target = (c.Motor.TargetPosition - c.distance(a, b)) / dt
			}
			current := relVel.Dot(axis)
			lambda := (target - current) * k
			maxImpulse := c.Motor.MaxForce * dt
			lambda = clampFloat(lambda, -maxImpulse, maxImpulse)
			applyPointImpulse(a, b, c.ra, c.rb, axis.Mul(lambda))
		}
	}
}

// distance measures the anchor separation along the slide axis.
func (c *SliderConstraint) distance(a, b *RigidBody) float64 {
	axis := a.Rotation.Rotate(c.LocalAxisA).Normalize()
	worldA := a.Position.Add(a.Rotation.Rotate(c.LocalAnchorA))
	worldB := b.Position.Add(b.Rotation.Rotate(c.LocalAnchorB))
	return worldB.Sub(worldA).Dot(axis)
}

// CurrentDistance returns the slider's translation along its axis (§6's
// getCurrentPosition for slider joints).
func (c *SliderConstraint) CurrentDistance(w *World) float64 {
	a, b := w.bodies.get(c.BodyA), w.bodies.get(c.BodyB)
	if a == nil || b == nil {
		return 0
	}
	return c.distance(a, b)
}

// SetMotorState switches the slider motor between Off, Velocity, and
// Position drive.
func (c *SliderConstraint) SetMotorState(mode MotorMode) { c.Motor.Mode = mode }

// SetTargetVelocity sets the velocity-mode motor target, m/s along the
// slide axis.
func (c *SliderConstraint) SetTargetVelocity(v float64) { c.Motor.TargetVelocity = v }

// SetTargetDistance sets the position-mode motor target translation.
func (c *SliderConstraint) SetTargetDistance(d float64) { c.Motor.TargetPosition = d }

func (c *SliderConstraint) SolvePosition(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	c.prepareAnchors(a, b)
	axis := a.Rotation.Rotate(c.LocalAxisA).Normalize()
	d := c.worldAnchorB.Sub(c.worldAnchorA)
	perpErr := d.Sub(axis.Mul(d.Dot(axis)))
	const beta = 0.2
	if perpErr.Dot(perpErr) > 1e-10 {
		for axisIdx := 0; axisIdx < 3; axisIdx++ {
			var dir mgl64.Vec3
			dir[axisIdx] = 1
			k := effectiveMass(a, b, c.ra, c.rb, dir)
			if k == 0 {
				continue
			}
			lambda := -perpErr[axisIdx] * beta * k
			correctivePositionImpulse(a, b, c.ra, c.rb, dir.Mul(lambda))
		}
	}
	if c.HasLimits {
		dist := d.Dot(axis)
		var err float64
		if dist < c.MinDistance {
			err = dist - c.MinDistance
		} else if dist > c.MaxDistance {
			err = dist - c.MaxDistance
		}
		if err != 0 {
			k := effectiveMass(a, b, c.ra, c.rb, axis)
			lambda := -err * beta * k
			correctivePositionImpulse(a, b, c.ra, c.rb, axis.Mul(lambda))
		}
	}
	target := c.referenceRotation.Mul(a.Rotation)
	angErr := orientationError(b.Rotation, target)
	if angErr.Dot(angErr) > 1e-10 {
		correctiveAngularImpulse(a, b, angErr.Mul(beta))
	}
}

// ============================================================================
// ConeConstraint — point constraint plus a swing cone limit between two
// reference axes (§4.5).

type ConeConstraint struct {
	jointBase
	LocalAxisA  mgl64.Vec3
	LocalAxisB  mgl64.Vec3
	MaxHalfAngleCos float64 // cos(half-angle); smaller means a wider allowed cone.
}

func NewConeConstraint(bodyA, bodyB BodyId, localAnchorA, localAnchorB, localAxisA, localAxisB mgl64.Vec3, maxHalfAngle float64) *ConeConstraint {
	return &ConeConstraint{
		jointBase:       jointBase{BodyA: bodyA, BodyB: bodyB, LocalAnchorA: localAnchorA, LocalAnchorB: localAnchorB},
		LocalAxisA:      localAxisA,
		LocalAxisB:      localAxisB,
		MaxHalfAngleCos: math.Cos(maxHalfAngle),
	}
}

func (c *ConeConstraint) Prepare(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	c.prepareAnchors(a, b)
}

func (c *ConeConstraint) WarmStart(bodies *bodyPool) {}

func (c *ConeConstraint) SolveVelocity(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	relVel := pointVelocity(b, c.rb).Sub(pointVelocity(a, c.ra))
	for axis := 0; axis < 3; axis++ {
		var dir mgl64.Vec3
		dir[axis] = 1
		k := effectiveMass(a, b, c.ra, c.rb, dir)
		if k == 0 {
			continue
		}
		lambda := -relVel[axis] * k
		applyPointImpulse(a, b, c.ra, c.rb, dir.Mul(lambda))
		relVel = pointVelocity(b, c.rb).Sub(pointVelocity(a, c.ra))
	}

	axisA := a.Rotation.Rotate(c.LocalAxisA).Normalize()
	axisB := b.Rotation.Rotate(c.LocalAxisB).Normalize()
	cos := axisA.Dot(axisB)
	if cos >= c.MaxHalfAngleCos {
		return // inside the cone.
	}
	limitNormal := axisA.Cross(axisB)
	if l := limitNormal.Len(); l > 1e-9 {
		limitNormal = limitNormal.Mul(1 / l)
	} else {
		return
	}
	relAngVel := angularVelocityOf(b).Sub(angularVelocityOf(a)).Dot(limitNormal)
	if relAngVel >= 0 {
		return
	}
	k := angularEffectiveMass(a, b, limitNormal)
	if k == 0 {
		return
	}
	lambda := -relAngVel * k
	applyAngularImpulse(a, b, limitNormal.Mul(lambda))
}

func (c *ConeConstraint) SolvePosition(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	c.prepareAnchors(a, b)
	err := c.worldAnchorB.Sub(c.worldAnchorA)
	const beta = 0.2
	if err.Dot(err) > 1e-10 {
		for axis := 0; axis < 3; axis++ {
			var dir mgl64.Vec3
			dir[axis] = 1
			k := effectiveMass(a, b, c.ra, c.rb, dir)
			if k == 0 {
				continue
			}
			lambda := -err[axis] * beta * k
			correctivePositionImpulse(a, b, c.ra, c.rb, dir.Mul(lambda))
		}
	}
	axisA := a.Rotation.Rotate(c.LocalAxisA).Normalize()
	axisB := b.Rotation.Rotate(c.LocalAxisB).Normalize()
	angle := math.Acos(clampFloat(axisA.Dot(axisB), -1, 1))
	maxAngle := math.Acos(clampFloat(c.MaxHalfAngleCos, -1, 1))
	if angle <= maxAngle {
		return
	}
	limitNormal := axisA.Cross(axisB)
	if l := limitNormal.Len(); l > 1e-9 {
		limitNormal = limitNormal.Mul(1 / l)
	} else {
		return
	}
	correctiveAngularImpulse(a, b, limitNormal.Mul(-(angle - maxAngle) * beta))
}

// ============================================================================
// SwingTwistConstraint — point constraint plus an independent swing cone
// and twist angle limit (§4.5), the most common "ragdoll joint" shape.

type SwingTwistConstraint struct {
	jointBase
	LocalTwistAxisA mgl64.Vec3
	LocalTwistAxisB mgl64.Vec3
	LocalPlaneAxisA mgl64.Vec3 // Reference for measuring twist, perpendicular to the twist axis.
	MaxSwingCos     float64
	MinTwistAngle   float64
	MaxTwistAngle   float64
}

func NewSwingTwistConstraint(bodyA, bodyB BodyId, localAnchorA, localAnchorB, twistAxisA, twistAxisB, planeAxisA mgl64.Vec3, maxSwingAngle, minTwist, maxTwist float64) *SwingTwistConstraint {
	return &SwingTwistConstraint{
		jointBase:       jointBase{BodyA: bodyA, BodyB: bodyB, LocalAnchorA: localAnchorA, LocalAnchorB: localAnchorB},
		LocalTwistAxisA: twistAxisA,
		LocalTwistAxisB: twistAxisB,
		LocalPlaneAxisA: planeAxisA,
		MaxSwingCos:     math.Cos(maxSwingAngle),
		MinTwistAngle:   minTwist,
		MaxTwistAngle:   maxTwist,
	}
}

func (c *SwingTwistConstraint) Prepare(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	c.prepareAnchors(a, b)
}

func (c *SwingTwistConstraint) WarmStart(bodies *bodyPool) {}

func (c *SwingTwistConstraint) SolveVelocity(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	relVel := pointVelocity(b, c.rb).Sub(pointVelocity(a, c.ra))
	for axis := 0; axis < 3; axis++ {
		var dir mgl64.Vec3
		dir[axis] = 1
		k := effectiveMass(a, b, c.ra, c.rb, dir)
		if k == 0 {
			continue
		}
		lambda := -relVel[axis] * k
		applyPointImpulse(a, b, c.ra, c.rb, dir.Mul(lambda))
		relVel = pointVelocity(b, c.rb).Sub(pointVelocity(a, c.ra))
	}

	twistA := a.Rotation.Rotate(c.LocalTwistAxisA).Normalize()
	twistB := b.Rotation.Rotate(c.LocalTwistAxisB).Normalize()
	cos := twistA.Dot(twistB)
	if cos < c.MaxSwingCos {
		swingNormal := twistA.Cross(twistB)
		if l := swingNormal.Len(); l > 1e-9 {
			swingNormal = swingNormal.Mul(1 / l)
			relAngVel := angularVelocityOf(b).Sub(angularVelocityOf(a)).Dot(swingNormal)
			if relAngVel < 0 {
				k := angularEffectiveMass(a, b, swingNormal)
				if k != 0 {
					applyAngularImpulse(a, b, swingNormal.Mul(-relAngVel*k))
				}
			}
		}
	}
}

func (c *SwingTwistConstraint) SolvePosition(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	c.prepareAnchors(a, b)
	err := c.worldAnchorB.Sub(c.worldAnchorA)
	const beta = 0.2
	if err.Dot(err) > 1e-10 {
		for axis := 0; axis < 3; axis++ {
			var dir mgl64.Vec3
			dir[axis] = 1
			k := effectiveMass(a, b, c.ra, c.rb, dir)
			if k == 0 {
				continue
			}
			lambda := -err[axis] * beta * k
			correctivePositionImpulse(a, b, c.ra, c.rb, dir.Mul(lambda))
		}
	}
	twistA := a.Rotation.Rotate(c.LocalTwistAxisA).Normalize()
	twistB := b.Rotation.Rotate(c.LocalTwistAxisB).Normalize()
	angle := math.Acos(clampFloat(twistA.Dot(twistB), -1, 1))
	maxAngle := math.Acos(clampFloat(c.MaxSwingCos, -1, 1))
	if angle > maxAngle {
		swingNormal := twistA.Cross(twistB)
		if l := swingNormal.Len(); l > 1e-9 {
			swingNormal = swingNormal.Mul(1 / l)
			correctiveAngularImpulse(a, b, swingNormal.Mul(-(angle-maxAngle)*beta))
		}
	}
	// Twist limit measured as the angle between each body's plane-axis
	// projected into the plane perpendicular to the twist axis.
	planeA := a.Rotation.Rotate(c.LocalPlaneAxisA)
	planeB := b.Rotation.Rotate(c.LocalPlaneAxisA) // same reference vector, rotated by B's orientation.
	proj := func(v, axis mgl64.Vec3) mgl64.Vec3 {
		return v.Sub(axis.Mul(v.Dot(axis)))
	}
	pa := proj(planeA, twistA)
	pb := proj(planeB, twistA)
	if pa.Dot(pa) < 1e-10 || pb.Dot(pb) < 1e-10 {
		return
	}
	pa = pa.Normalize()
	pb = pb.Normalize()
	twistAngle := math.Atan2(twistA.Cross(pa).Dot(pb), pa.Dot(pb))
	if twistAngle < c.MinTwistAngle {
		correctiveAngularImpulse(a, b, twistA.Mul((c.MinTwistAngle-twistAngle)*beta))
	} else if twistAngle > c.MaxTwistAngle {
		correctiveAngularImpulse(a, b, twistA.Mul((c.MaxTwistAngle-twistAngle)*beta))
	}
}

// ============================================================================
// SixDOFConstraint — the general case: each of 6 relative DOFs
// (translation x/y/z, rotation x/y/z) has its own state (§4.5). A
// translation axis is free, limited to [TranslationMin, TranslationMax],
// or locked. A rotation axis is locked or free: RotationMin/RotationMax
// are not read, and DOFLimited leaves a rotation axis free. Each axis's
// motor acts only in MotorVelocity mode; MotorPosition is not handled.

type DOFState int

const (
	DOFFree DOFState = iota
	DOFLimited
	DOFLocked
)

type SixDOFConstraint struct {
	jointBase
	TranslationState [3]DOFState
	TranslationMin   [3]float64
	TranslationMax   [3]float64
	RotationState    [3]DOFState
	RotationMin      [3]float64
	RotationMax      [3]float64
	Motors           [6]Motor // index 0-2 translation, 3-5 rotation.

	referenceRotation mgl64.Quat
	initialized       bool
}

func NewSixDOFConstraint(bodyA, bodyB BodyId, localAnchorA, localAnchorB mgl64.Vec3) *SixDOFConstraint {
	return &SixDOFConstraint{jointBase: jointBase{BodyA: bodyA, BodyB: bodyB, LocalAnchorA: localAnchorA, LocalAnchorB: localAnchorB}}
}

func (c *SixDOFConstraint) Prepare(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	c.prepareAnchors(a, b)
	if !c.initialized {
		c.referenceRotation = b.Rotation.Mul(a.Rotation.Inverse())
		c.initialized = true
	}
}

func (c *SixDOFConstraint) WarmStart(bodies *bodyPool) {}

func (c *SixDOFConstraint) SolveVelocity(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	relVel := pointVelocity(b, c.rb).Sub(pointVelocity(a, c.ra))
	for axis := 0; axis < 3; axis++ {
		if c.TranslationState[axis] != DOFLocked {
			continue
		}
		var dir mgl64.Vec3
		dir[axis] = 1
		k := effectiveMass(a, b, c.ra, c.rb, dir)
		if k == 0 {
			continue
		}
		lambda := -relVel[axis] * k
		applyPointImpulse(a, b, c.ra, c.rb, dir.Mul(lambda))
		relVel = pointVelocity(b, c.rb).Sub(pointVelocity(a, c.ra))
	}
	for axis := 0; axis < 3; axis++ {
		m := c.Motors[axis]
		if m.Mode != MotorVelocity {
			continue
		}
		var dir mgl64.Vec3
		dir[axis] = 1
		k := effectiveMass(a, b, c.ra, c.rb, dir)
		if k == 0 {
			continue
		}
		current := relVel.Dot(dir)
		lambda := (m.TargetVelocity - current) * k
		maxImpulse := m.MaxForce * dt
		lambda = clampFloat(lambda, -maxImpulse, maxImpulse)
		applyPointImpulse(a, b, c.ra, c.rb, dir.Mul(lambda))
		relVel = pointVelocity(b, c.rb).Sub(pointVelocity(a, c.ra))
	}

	relAngVel := angularVelocityOf(b).Sub(angularVelocityOf(a))
	for axis := 0; axis < 3; axis++ {
		if c.RotationState[axis] != DOFLocked {
			continue
		}
		var dir mgl64.Vec3
		dir[axis] = 1
		k := angularEffectiveMass(a, b, dir)
		if k == 0 {
			continue
		}
		lambda := -relAngVel[axis] * k
		applyAngularImpulse(a, b, dir.Mul(lambda))
		relAngVel = angularVelocityOf(b).Sub(angularVelocityOf(a))
	}
	for axis := 0; axis < 3; axis++ {
		m := c.Motors[3+axis]
		if m.Mode != MotorVelocity {
			continue
		}
		var dir mgl64.Vec3
		dir[axis] = 1
		k := angularEffectiveMass(a, b, dir)
		if k == 0 {
			continue
		}
		current := relAngVel.Dot(dir)
		lambda := (m.TargetVelocity - current) * k
		maxImpulse := m.MaxTorque * dt
		lambda = clampFloat(lambda, -maxImpulse, maxImpulse)
		applyAngularImpulse(a, b, dir.Mul(lambda))
		relAngVel = angularVelocityOf(b).Sub(angularVelocityOf(a))
	}
}

func (c *SixDOFConstraint) SolvePosition(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	c.prepareAnchors(a, b)
	err := c.worldAnchorB.Sub(c.worldAnchorA)
	const beta = 0.2
	for axis := 0; axis < 3; axis++ {
		var axisErr float64
		switch c.TranslationState[axis] {
		case DOFLocked:
			axisErr = err[axis]
		case DOFLimited:
			if err[axis] < c.TranslationMin[axis] {
				axisErr = err[axis] - c.TranslationMin[axis]
			} else if err[axis] > c.TranslationMax[axis] {
				axisErr = err[axis] - c.TranslationMax[axis]
			}
		default:
			continue
		}
		if axisErr == 0 {
			continue
		}
		var dir mgl64.Vec3
		dir[axis] = 1
		k := effectiveMass(a, b, c.ra, c.rb, dir)
		if k == 0 {
			continue
		}
		correctivePositionImpulse(a, b, c.ra, c.rb, dir.Mul(-axisErr*beta*k))
	}

	target := c.referenceRotation.Mul(a.Rotation)
	angErr := orientationError(b.Rotation, target)
	for axis := 0; axis < 3; axis++ {
		if c.RotationState[axis] != DOFLocked {
			angErr[axis] = 0
		}
	}
	if angErr.Dot(angErr) > 1e-10 {
		correctiveAngularImpulse(a, b, angErr.Mul(beta))
	}
}

// ============================================================================
// FixedConstraint — anchors and full relative orientation locked; the two
// bodies move as a single rigid unit (§4.5).

type FixedConstraint struct {
	jointBase
	referenceRotation mgl64.Quat
	initialized       bool
}

func NewFixedConstraint(bodyA, bodyB BodyId, localAnchorA, localAnchorB mgl64.Vec3) *FixedConstraint {
	return &FixedConstraint{jointBase: jointBase{BodyA: bodyA, BodyB: bodyB, LocalAnchorA: localAnchorA, LocalAnchorB: localAnchorB}}
}

func (c *FixedConstraint) Prepare(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	c.prepareAnchors(a, b)
	if !c.initialized {
		c.referenceRotation = b.Rotation.Mul(a.Rotation.Inverse())
		c.initialized = true
	}
}

func (c *FixedConstraint) WarmStart(bodies *bodyPool) {}

func (c *FixedConstraint) SolveVelocity(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	relVel := pointVelocity(b, c.rb).Sub(pointVelocity(a, c.ra))
	for axis := 0; axis < 3; axis++ {
		var dir mgl64.Vec3
		dir[axis] = 1
		k := effectiveMass(a, b, c.ra, c.rb, dir)
		if k == 0 {
			continue
		}
		lambda := -relVel[axis] * k
		applyPointImpulse(a, b, c.ra, c.rb, dir.Mul(lambda))
		relVel = pointVelocity(b, c.rb).Sub(pointVelocity(a, c.ra))
	}
	relAngVel := angularVelocityOf(b).Sub(angularVelocityOf(a))
	for axis := 0; axis < 3; axis++ {
		var dir mgl64.Vec3
		dir[axis] = 1
		k := angularEffectiveMass(a, b, dir)
		if k == 0 {
			continue
		}
		lambda := -relAngVel[axis] * k
		applyAngularImpulse(a, b, dir.Mul(lambda))
		relAngVel = angularVelocityOf(b).Sub(angularVelocityOf(a))
	}
}

func (c *FixedConstraint) SolvePosition(bodies *bodyPool, dt float64) {
	a, b := bodies.get(c.BodyA), bodies.get(c.BodyB)
	c.prepareAnchors(a, b)
	err := c.worldAnchorB.Sub(c.worldAnchorA)
	const beta = 0.2
	if err.Dot(err) > 1e-10 {
		for axis := 0; axis < 3; axis++ {
			var dir mgl64.Vec3
			dir[axis] = 1
			k := effectiveMass(a, b, c.ra, c.rb, dir)
			if k == 0 {
				continue
			}
			lambda := -err[axis] * beta * k
			correctivePositionImpulse(a, b, c.ra, c.rb, dir.Mul(lambda))
		}
	}
	target := c.referenceRotation.Mul(a.Rotation)
	angErr := orientationError(b.Rotation, target)
	if angErr.Dot(angErr) > 1e-10 {
		correctiveAngularImpulse(a, b, angErr.Mul(beta))
	}
}

// ============================================================================
// shared helpers

func arbitraryPerpendicular(v mgl64.Vec3) mgl64.Vec3 {
	var candidate mgl64.Vec3
	if math.Abs(v[0]) < 0.9 {
		candidate = mgl64.Vec3{1, 0, 0}
	} else {
		candidate = mgl64.Vec3{0, 1, 0}
	}
	p := candidate.Sub(v.Mul(candidate.Dot(v)))
	if l := p.Len(); l > 1e-9 {
		return p.Mul(1 / l)
	}
	return mgl64.Vec3{0, 0, 1}
}

func angularVelocityOf(body *RigidBody) mgl64.Vec3 {
	if body.Motion == nil {
		return mgl64.Vec3{}
	}
	return body.Motion.AngularVelocity
}

func angularEffectiveMass(a, b *RigidBody, axis mgl64.Vec3) float64 {
	var k float64
	if a.Motion != nil {
		invInertiaA := a.Motion.worldInverseInertia(a.Rotation)
		k += invInertiaA.Mul3x1(axis).Dot(axis)
	}
	if b.Motion != nil {
		invInertiaB := b.Motion.worldInverseInertia(b.Rotation)
		k += invInertiaB.Mul3x1(axis).Dot(axis)
	}
	if k < 1e-12 {
		return 0
	}
	return 1 / k
}

func applyAngularImpulse(a, b *RigidBody, impulse mgl64.Vec3) {
	if a.Motion != nil && a.IsDynamic() {
		invInertiaA := a.Motion.worldInverseInertia(a.Rotation)
		a.Motion.AngularVelocity = a.Motion.AngularVelocity.Sub(invInertiaA.Mul3x1(impulse))
	}
	if b.Motion != nil && b.IsDynamic() {
		invInertiaB := b.Motion.worldInverseInertia(b.Rotation)
		b.Motion.AngularVelocity = b.Motion.AngularVelocity.Add(invInertiaB.Mul3x1(impulse))
	}
}

func correctiveAngularImpulse(a, b *RigidBody, angularDisp mgl64.Vec3) {
	if a.Motion != nil && a.IsDynamic() {
		a.Rotation = integrateRotation(a.Rotation, angularDisp.Mul(-1), 1)
	}
	if b.Motion != nil && b.IsDynamic() {
		b.Rotation = integrateRotation(b.Rotation, angularDisp, 1)
	}
}

// integrateRotation advances rotation by the angular displacement
// angularVelocity*dt using the small-angle quaternion update common to
// every physics integrator (half the angular velocity quaternion,
// applied multiplicatively, then renormalized). Shared by the position
// integrator and every joint's position-correction pass above.
func integrateRotation(rotation mgl64.Quat, angularVelocity mgl64.Vec3, dt float64) mgl64.Quat {
	theta := angularVelocity.Mul(dt)
	deltaQuat := mgl64.Quat{W: 1, V: theta.Mul(0.5)}
	result := deltaQuat.Mul(rotation)
	return result.Normalize()
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
