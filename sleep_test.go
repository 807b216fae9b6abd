// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func quietBody() *RigidBody {
	return &RigidBody{
		MotionType: Dynamic,
		Motion:     &MotionProperties{allowSleep: true},
	}
}

func TestUpdateSleepStateAccumulatesThenSleeps(t *testing.T) {
	settings := &SleepSettings{TimeBeforeSleep: 1.0, LinearThreshold: 0.05, AngularThreshold: 0.05}
	b := quietBody()

	updateSleepState(b, settings, 0.6)
	assert.False(t, b.IsSleeping(), "should not sleep before TimeBeforeSleep elapses")

	updateSleepState(b, settings, 0.6)
	assert.True(t, b.IsSleeping())
	assert.Equal(t, mgl64.Vec3{}, b.Motion.LinearVelocity)
}

func TestUpdateSleepStateResetsTimerOnMotion(t *testing.T) {
	settings := &SleepSettings{TimeBeforeSleep: 1.0, LinearThreshold: 0.05, AngularThreshold: 0.05}
	b := quietBody()
	updateSleepState(b, settings, 0.9)

	b.Motion.LinearVelocity = mgl64.Vec3{1, 0, 0}
	updateSleepState(b, settings, 0.1)
	assert.Equal(t, 0.0, b.Motion.sleepTimer)

	b.Motion.LinearVelocity = mgl64.Vec3{}
	updateSleepState(b, settings, 0.9)
	assert.False(t, b.IsSleeping(), "timer should have restarted from zero after motion")
}

func TestUpdateSleepStateIgnoresBodyThatDisallowsSleep(t *testing.T) {
	settings := &SleepSettings{TimeBeforeSleep: 0.1, LinearThreshold: 0.05, AngularThreshold: 0.05}
	b := &RigidBody{MotionType: Dynamic, Motion: &MotionProperties{allowSleep: false}}
	updateSleepState(b, settings, 10)
	assert.False(t, b.IsSleeping())
}

func TestWakeBodyClearsSleepAndTimer(t *testing.T) {
	b := quietBody()
	b.sleeping = true
	b.Motion.sleepTimer = 5
	wakeBody(b)
	assert.False(t, b.IsSleeping())
	assert.Equal(t, 0.0, b.Motion.sleepTimer)
}

func TestWakeBodyIgnoresStaticBodies(t *testing.T) {
	b := &RigidBody{MotionType: Static}
	b.sleeping = true
	wakeBody(b)
	assert.True(t, b.sleeping, "wakeBody must not touch non-dynamic bodies")
}

func TestWakeIslandWakesAllListedIndices(t *testing.T) {
	pool := newBodyPool()
	idA, bodyA := pool.allocate()
	bodyA.MotionType = Dynamic
	bodyA.Motion = &MotionProperties{}
	bodyA.sleeping = true
	idB, bodyB := pool.allocate()
	bodyB.MotionType = Dynamic
	bodyB.Motion = &MotionProperties{}
	bodyB.sleeping = true
	bodyA = pool.get(idA) // the second allocate may have moved the pool's storage.

	wakeIsland(pool, []int32{int32(idA.Index()), int32(idB.Index())})
	assert.False(t, bodyA.sleeping)
	assert.False(t, bodyB.sleeping)
}
