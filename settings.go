// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
)

// SolverSettings configures the sequential-impulse solver (§4.6, §6).
type SolverSettings struct {
	VelocityIterations int // Default 10.
	PositionIterations int // Default 5.
}

// SleepSettings configures sleep detection (§4.8, §6).
type SleepSettings struct {
	TimeBeforeSleep   float64 // Seconds of sub-threshold motion before sleeping. Default 0.5.
	LinearThreshold   float64 // m/s. Default 0.05.
	AngularThreshold  float64 // rad/s. Default 0.05.
}

// BroadphaseLayerSettings names one broadphase layer (§4.1, §6).
type BroadphaseLayerSettings struct {
	Name string
}

// ObjectLayerSettings names one object layer and the broadphase layer it
// maps to (§4.1, §6).
type ObjectLayerSettings struct {
	Name             string
	BroadphaseLayer  int
}

// LayerSettings bundles every configured broadphase layer, object layer,
// and their collision matrices (§6's addBroadphaseLayer/addObjectLayer/
// enableCollision surface).
type LayerSettings struct {
	BroadphaseLayers []BroadphaseLayerSettings
	ObjectLayers     []ObjectLayerSettings

	// objectMatrix[a][b] mirrors objectMatrix[b][a]; set via EnableCollision.
	objectMatrix [][]bool
	// broadphaseMatrix[i][j] mirrors broadphaseMatrix[j][i]; derived from
	// which object layers collide and which broadphase layer each maps to.
	broadphaseMatrix [][]bool
}

// WorldSettings configures a World (§6). NewWorldSettings returns the
// documented defaults; callers add layers with AddBroadphaseLayer /
// AddObjectLayer and open collisions with EnableCollision before calling
// NewWorld.
type WorldSettings struct {
	Gravity        mgl64.Vec3
	GravityEnabled bool
	Solver         SolverSettings
	Sleeping       SleepSettings
	Layers         LayerSettings

	// FatAABBMargin inflates a body's tight AABB before it is stored in
	// the broadphase tree (§4.1's "Fat AABB"). See SPEC_FULL.md §12 for
	// the chosen default.
	FatAABBMargin float64

	// ActiveEdgeThresholdCos is the minimum cosine of the angle between a
	// reported contact normal and an adjoining face normal for the
	// normal to be trusted as coming from an active edge (§4.2, §9).
	ActiveEdgeThresholdCos float64

	// ManifoldPersistenceDistanceSqr bounds how far a new contact
	// point's local anchor may be from a prior point and still be
	// treated as "the same point" for warm-starting (§4.3).
	ManifoldPersistenceDistanceSqr float64

	// RestitutionVelocityThreshold is the minimum incoming normal
	// velocity magnitude below which restitution bias is not applied
	// (§4.6).
	RestitutionVelocityThreshold float64

	// PenetrationSlop is the allowed penetration before the position
	// solver starts correcting it (Baumgarte-style; §4.6).
	PenetrationSlop float64

	// BaumgarteFactor scales how aggressively the contact position solve
	// corrects residual penetration each pass (§4.6); the velocity solve
	// does not use it.
	BaumgarteFactor float64

	// OptimizeCount is stored with the settings but not read by the
	// broadphase: the DBVT has no incremental leaf re-insertion pass.
	OptimizeCount int

	// log carries the owning World's logger into the narrow-phase
	// kernels, which otherwise have no path back to the World; set by
	// NewWorld and World.SetLogger, already tagged with the world's
	// debug id.
	log *slog.Logger
}

// logger returns the world-tagged logger, or slog's default before a
// World has adopted these settings.
func (s *WorldSettings) logger() *slog.Logger {
	if s.log != nil {
		return s.log
	}
	return slog.Default()
}

// NewWorldSettings returns the documented defaults (§6): gravity
// (0,-9.81,0), 10 velocity iterations, 5 position iterations.
func NewWorldSettings() *WorldSettings {
	return &WorldSettings{
		Gravity:        mgl64.Vec3{0, -9.81, 0},
		GravityEnabled: true,
		Solver:         SolverSettings{VelocityIterations: 10, PositionIterations: 5},
		Sleeping: SleepSettings{
			TimeBeforeSleep:  0.5,
			LinearThreshold:  0.05,
			AngularThreshold: 0.05,
		},
		FatAABBMargin:                  0.05,
		ActiveEdgeThresholdCos:         0.9962,
		ManifoldPersistenceDistanceSqr: 0.0004,
		RestitutionVelocityThreshold:   1.0,
		PenetrationSlop:                0.005,
		BaumgarteFactor:                0.2,
		OptimizeCount:                  4,
	}
}

// AddBroadphaseLayer registers a new broadphase layer and returns its
// index (§6).
func (s *WorldSettings) AddBroadphaseLayer(name string) int {
	idx := len(s.Layers.BroadphaseLayers)
	s.Layers.BroadphaseLayers = append(s.Layers.BroadphaseLayers, BroadphaseLayerSettings{Name: name})
	s.growBroadphaseMatrix()
	return idx
}

// AddObjectLayer registers a new object layer mapped to bpLayer and
// returns its index (§6).
func (s *WorldSettings) AddObjectLayer(name string, bpLayer int) int {
	idx := len(s.Layers.ObjectLayers)
	s.Layers.ObjectLayers = append(s.Layers.ObjectLayers, ObjectLayerSettings{Name: name, BroadphaseLayer: bpLayer})
	s.growObjectMatrix()
	return idx
}

// EnableCollision marks object layers a and b as allowed to collide,
// symmetric in the matrix (§6).
func (s *WorldSettings) EnableCollision(a, b int) {
	s.Layers.objectMatrix[a][b] = true
	s.Layers.objectMatrix[b][a] = true
	bpA, bpB := s.Layers.ObjectLayers[a].BroadphaseLayer, s.Layers.ObjectLayers[b].BroadphaseLayer
	s.Layers.broadphaseMatrix[bpA][bpB] = true
	s.Layers.broadphaseMatrix[bpB][bpA] = true
}

// CollidesObjectLayers reports whether object layers a and b are allowed
// to collide.
func (s *WorldSettings) CollidesObjectLayers(a, b int) bool {
	if a < 0 || b < 0 || a >= len(s.Layers.objectMatrix) || b >= len(s.Layers.objectMatrix) {
		return false
	}
	return s.Layers.objectMatrix[a][b]
}

// CollidesBroadphaseLayers reports whether broadphase layers i and j are
// allowed to collide, per §4.1 step 1.
func (s *WorldSettings) CollidesBroadphaseLayers(i, j int) bool {
	if i < 0 || j < 0 || i >= len(s.Layers.broadphaseMatrix) || j >= len(s.Layers.broadphaseMatrix) {
		return false
	}
	return s.Layers.broadphaseMatrix[i][j]
}

func (s *WorldSettings) growObjectMatrix() {
	n := len(s.Layers.ObjectLayers)
	m := make([][]bool, n)
	for i := range m {
		m[i] = make([]bool, n)
		if i < len(s.Layers.objectMatrix) {
			copy(m[i], s.Layers.objectMatrix[i])
		}
	}
	s.Layers.objectMatrix = m
}

func (s *WorldSettings) growBroadphaseMatrix() {
	n := len(s.Layers.BroadphaseLayers)
	m := make([][]bool, n)
	for i := range m {
		m[i] = make([]bool, n)
		if i < len(s.Layers.broadphaseMatrix) {
			copy(m[i], s.Layers.broadphaseMatrix[i])
		}
	}
	s.Layers.broadphaseMatrix = m
}
