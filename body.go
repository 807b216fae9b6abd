// Copyright © 2024 Galvanized Logic Inc.

package physics

import "github.com/go-gl/mathgl/mgl64"

// MotionType classifies how a RigidBody participates in simulation (§3).
type MotionType int

const (
	// Static bodies never move and are never integrated or put to sleep.
	Static MotionType = iota
	// Kinematic bodies are moved directly by the application and push
	// dynamic bodies around but are never themselves affected by forces
	// or contacts.
	Kinematic
	// Dynamic bodies are fully simulated: integrated, solved, and put to
	// sleep when quiescent.
	Dynamic
)

func (m MotionType) String() string {
	switch m {
	case Static:
		return "Static"
	case Kinematic:
		return "Kinematic"
	case Dynamic:
		return "Dynamic"
	default:
		return "Unknown"
	}
}

// AllowedDOFs is a bitmask restricting which translation/rotation axes a
// Dynamic body's velocity integration is allowed to touch (§3's "degrees
// of freedom mask"), used for e.g. 2D-plane characters.
type AllowedDOFs uint8

const (
	DOFTranslationX AllowedDOFs = 1 << iota
	DOFTranslationY
	DOFTranslationZ
	DOFRotationX
	DOFRotationY
	DOFRotationZ

	DOFAll = DOFTranslationX | DOFTranslationY | DOFTranslationZ |
		DOFRotationX | DOFRotationY | DOFRotationZ
)

// MotionProperties holds the velocity-integration state that only
// Kinematic and Dynamic bodies need (§3). Static bodies never allocate
// one.
type MotionProperties struct {
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3

	// force/torque accumulate between steps via World.AddForce et al and
	// are consumed (and zeroed) by the integrator at the start of the
	// next step (§4.6).
	force  mgl64.Vec3
	torque mgl64.Vec3

	InverseMass    float64
	InverseInertia mgl64.Vec3 // Diagonal, in body-local principal axes.
	InertiaRotation mgl64.Quat

	LinearDamping  float64
	AngularDamping float64
	GravityFactor  float64
	MaxLinearVelocity  float64
	MaxAngularVelocity float64

	AllowedDOFs AllowedDOFs

	// Per-body solver iteration overrides; 0 means use the world's
	// solver settings (§4.5's island iteration-count rule).
	VelocityStepsOverride int
	PositionStepsOverride int

	// Sleep bookkeeping (§4.8).
	sleepTimer float64
	allowSleep bool
}

// RigidBody is one simulated (or static) body (§3). Bodies are never
// constructed directly by callers; World.CreateBody returns a BodyId that
// indexes into the owning World's body pool, mirroring the handle-based
// ownership gazed-vu/physics/body.go uses for its Body values.
type RigidBody struct {
	id BodyId

	Position mgl64.Vec3
	Rotation mgl64.Quat

	Shape       Shape
	MotionType  MotionType
	ObjectLayer int

	Motion *MotionProperties // nil for Static bodies.

	Restitution float64
	Friction    float64

	// Sensor bodies detect overlap (contact callbacks fire) but generate
	// no collision response and never seed an island (§3, §4.5).
	Sensor bool

	// CollideKinematicVsNonDynamic lets a kinematic body report contacts
	// against static and other kinematic bodies, which are otherwise
	// skipped (§3).
	CollideKinematicVsNonDynamic bool

	// CollisionGroup/CollisionMask gate pairs after the layer matrix: two
	// bodies collide only if each body's group intersects the other's
	// mask (§4.1 step 3).
	CollisionGroup uint32
	CollisionMask  uint32

	// comPosition caches the world-space center of mass (pose plus the
	// shape-local COM rotated into world, §3); refreshed on every pose
	// change the engine makes, and by UpdateCenterOfMassPosition for
	// poses mutated directly by the caller.
	comPosition mgl64.Vec3

	// constraints backs BodiesShareConstraint: every joint attached to
	// this body, maintained by AddConstraint/RemoveConstraint.
	constraints []Constraint

	worldBounds AABB // Fat AABB, maintained by the broadphase.
	bphNode     int32 // Index into the owning broadphase tree; -1 if untracked.

	// contactHead is the first edge in this body's intrusive contact
	// list (contact.go), or nil.
	contactHead *contactEdge

	// islandIndex is assigned by the island builder each step and is
	// only meaningful for Dynamic bodies (island.go).
	islandIndex int32

	sleeping bool

	// UserData is opaque application state, never read by the engine.
	UserData any
}

// Id returns the body's stable BodyId.
func (b *RigidBody) Id() BodyId { return b.id }

// IsDynamic reports whether the body is simulated under forces/contacts.
func (b *RigidBody) IsDynamic() bool { return b.MotionType == Dynamic }

// IsStatic reports whether the body never moves.
func (b *RigidBody) IsStatic() bool { return b.MotionType == Static }

// IsSleeping reports whether the body is currently excluded from
// integration and solving (§4.8). Static bodies always report false;
// they are never "asleep", just immovable.
func (b *RigidBody) IsSleeping() bool { return b.sleeping }

// WorldBounds returns the body's current fat AABB as tracked by the
// broadphase.
func (b *RigidBody) WorldBounds() AABB { return b.worldBounds }

// CenterOfMassPosition returns the world-space center of mass (§3).
func (b *RigidBody) CenterOfMassPosition() mgl64.Vec3 { return b.comPosition }

// updateCenterOfMass recomputes the cached world-space COM from the
// current pose and the shape's local COM.
func (b *RigidBody) updateCenterOfMass() {
	if b.Shape == nil {
		b.comPosition = b.Position
		return
	}
	b.comPosition = b.Position.Add(b.Rotation.Rotate(b.Shape.CenterOfMass()))
}

// BodyCreationSettings is the input to World.CreateBody (§3, §6).
type BodyCreationSettings struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat

	Shape       Shape
	MotionType  MotionType
	ObjectLayer int

	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3

	Density        float64 // Used unless MassOverride is non-nil.
	MassOverride   *MassProperties
	Restitution    float64
	Friction       float64
	LinearDamping  float64
	AngularDamping float64
	GravityFactor  float64
	AllowedDOFs    AllowedDOFs
	AllowSleeping  bool

	MaxLinearVelocity  float64 // 0 means the engine default.
	MaxAngularVelocity float64 // 0 means the engine default.

	VelocityStepsOverride int // 0 means the world's solver setting.
	PositionStepsOverride int

	Sensor                       bool
	CollideKinematicVsNonDynamic bool
	CollisionGroup               uint32
	CollisionMask                uint32

	UserData any
}

// NewBodyCreationSettings returns defaults matching §3/§6: unit rotation,
// density 1, restitution 0, friction 0.2, no damping, gravity factor 1,
// all DOFs free, sleeping allowed.
func NewBodyCreationSettings(shape Shape, motionType MotionType, objectLayer int) BodyCreationSettings {
	return BodyCreationSettings{
		Rotation:       mgl64.QuatIdent(),
		Shape:          shape,
		MotionType:     motionType,
		ObjectLayer:    objectLayer,
		Density:        1,
		Friction:       0.2,
		GravityFactor:  1,
		AllowedDOFs:    DOFAll,
		AllowSleeping:  true,
		CollisionGroup: 0xffffffff,
		CollisionMask:  0xffffffff,
	}
}

// buildMotionProperties derives a MotionProperties from creation settings
// and the shape's mass properties, honoring MassOverride when present and
// masking translation/rotation per AllowedDOFs (§3).
func buildMotionProperties(s *BodyCreationSettings) (*MotionProperties, error) {
	m := &MotionProperties{
		LinearVelocity:        s.LinearVelocity,
		AngularVelocity:       s.AngularVelocity,
		LinearDamping:         s.LinearDamping,
		AngularDamping:        s.AngularDamping,
		GravityFactor:         s.GravityFactor,
		MaxLinearVelocity:     500,
		MaxAngularVelocity:    47, // ~ π/4 rad (1/8 turn) per simulation step at 60Hz; matches Jolt-style defaults.
		AllowedDOFs:           s.AllowedDOFs,
		VelocityStepsOverride: s.VelocityStepsOverride,
		PositionStepsOverride: s.PositionStepsOverride,
		allowSleep:            s.AllowSleeping,
		InertiaRotation:       mgl64.QuatIdent(),
	}
	if s.MaxLinearVelocity > 0 {
		m.MaxLinearVelocity = s.MaxLinearVelocity
	}
	if s.MaxAngularVelocity > 0 {
		m.MaxAngularVelocity = s.MaxAngularVelocity
	}

	// Kinematic bodies carry velocity but have infinite effective mass:
	// forces and impulses never move them (§3).
	if s.MotionType == Kinematic {
		return m, nil
	}

	mp := s.Shape.MassProperties(s.Density)
	if s.MassOverride != nil {
		mp = *s.MassOverride
	}
	if mp.Mass <= 0 {
		return nil, newConstructionError("mass", "dynamic body requires positive mass; supply MassOverride for zero-volume shapes")
	}
	m.InverseMass = 1 / mp.Mass
	m.InertiaRotation = mp.InertiaRotation
	for axis := 0; axis < 3; axis++ {
		if mp.InertiaDiagonal[axis] > 1e-12 {
			m.InverseInertia[axis] = 1 / mp.InertiaDiagonal[axis]
		}
	}
	maskMotionProperties(m)
	return m, nil
}

// maskMotionProperties zeroes linear velocity along each disallowed
// translation axis, and inverse inertia and angular velocity about each
// disallowed rotation axis (§3). Inverse mass is left unchanged.
func maskMotionProperties(m *MotionProperties) {
	if m.AllowedDOFs&DOFTranslationX == 0 {
		m.LinearVelocity[0] = 0
	}
	if m.AllowedDOFs&DOFTranslationY == 0 {
		m.LinearVelocity[1] = 0
	}
	if m.AllowedDOFs&DOFTranslationZ == 0 {
		m.LinearVelocity[2] = 0
	}
	if m.AllowedDOFs&DOFRotationX == 0 {
		m.InverseInertia[0] = 0
		m.AngularVelocity[0] = 0
	}
	if m.AllowedDOFs&DOFRotationY == 0 {
		m.InverseInertia[1] = 0
		m.AngularVelocity[1] = 0
	}
	if m.AllowedDOFs&DOFRotationZ == 0 {
		m.InverseInertia[2] = 0
		m.AngularVelocity[2] = 0
	}
}

// worldInverseInertia returns the inverse inertia tensor rotated into
// world space, the form the solver actually needs (§4.6).
func (m *MotionProperties) worldInverseInertia(bodyRotation mgl64.Quat) mgl64.Mat3 {
	rot := bodyRotation.Mul(m.InertiaRotation).Mat4().Mat3()
	rotT := rot.Transpose()
	d := m.InverseInertia
	local := mgl64.Mat3{d[0], 0, 0, 0, d[1], 0, 0, 0, d[2]}
	return rot.Mul3(local).Mul3(rotT)
}
