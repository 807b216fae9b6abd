// Copyright © 2024 Galvanized Logic Inc.

package physics

import "github.com/go-gl/mathgl/mgl64"

// updateSleepState advances a dynamic body's sleep timer and puts it to
// sleep once it has stayed below both velocity thresholds for
// SleepSettings.TimeBeforeSleep (§4.8), mirroring
// gazed-vu/physics/physics.go's per-body quiescence timer.
func updateSleepState(body *RigidBody, settings *SleepSettings, dt float64) {
	m := body.Motion
	if m == nil || body.MotionType != Dynamic || !m.allowSleep {
		return
	}
	quiet := m.LinearVelocity.Len() < settings.LinearThreshold &&
		m.AngularVelocity.Len() < settings.AngularThreshold
	if quiet {
		m.sleepTimer += dt
		if m.sleepTimer >= settings.TimeBeforeSleep {
			body.sleeping = true
			m.LinearVelocity = mgl64.Vec3{}
			m.AngularVelocity = mgl64.Vec3{}
		}
	} else {
		m.sleepTimer = 0
	}
}

// wakeBody clears a body's sleep state and resets its quiescence timer,
// called whenever a new contact, constraint, or application force touches
// a sleeping body (§4.8's wake propagation).
func wakeBody(body *RigidBody) {
	if body.MotionType != Dynamic {
		return
	}
	body.sleeping = false
	if body.Motion != nil {
		body.Motion.sleepTimer = 0
	}
}

// wakeIsland wakes every dynamic body in bodies whose pool index appears
// in indices — used when any member of an island receives an external
// force or a new contact appears against a sleeping body, so the whole
// connected group wakes together rather than just the touched body.
func wakeIsland(bodies *bodyPool, indices []int32) {
	for _, idx := range indices {
		if int(idx) < 0 || int(idx) >= len(bodies.bodies) {
			continue
		}
		wakeBody(&bodies.bodies[idx])
	}
}
