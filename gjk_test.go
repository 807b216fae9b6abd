// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGJKIntersectsDetectsOverlap(t *testing.T) {
	a, err := NewSphere(1)
	require.NoError(t, err)
	b, err := NewSphere(1)
	require.NoError(t, err)

	poseA := pose{Rotation: mgl64.QuatIdent()}
	poseB := pose{Position: mgl64.Vec3{0.5, 0, 0}, Rotation: mgl64.QuatIdent()}
	overlapping, _ := gjkIntersects(a, poseA, b, poseB)
	assert.True(t, overlapping)
}

func TestGJKIntersectsDetectsSeparation(t *testing.T) {
	a, err := NewSphere(1)
	require.NoError(t, err)
	b, err := NewSphere(1)
	require.NoError(t, err)

	poseA := pose{Rotation: mgl64.QuatIdent()}
	poseB := pose{Position: mgl64.Vec3{10, 0, 0}, Rotation: mgl64.QuatIdent()}
	overlapping, _ := gjkIntersects(a, poseA, b, poseB)
	assert.False(t, overlapping)
}

func TestGJKClosestPointsReportsSeparationDistance(t *testing.T) {
	a, err := NewSphere(1)
	require.NoError(t, err)
	b, err := NewSphere(1)
	require.NoError(t, err)

	poseA := pose{Rotation: mgl64.QuatIdent()}
	poseB := pose{Position: mgl64.Vec3{5, 0, 0}, Rotation: mgl64.QuatIdent()}
	separated, dist, _, _ := gjkClosestPoints(a, poseA, b, poseB)
	require.True(t, separated)
	assert.InDelta(t, 3.0, dist, 1e-6)
}

func TestGJKClosestPointsReturnsUnseparatedWhenOverlapping(t *testing.T) {
	a, err := NewSphere(1)
	require.NoError(t, err)
	b, err := NewSphere(1)
	require.NoError(t, err)

	poseA := pose{Rotation: mgl64.QuatIdent()}
	poseB := pose{Position: mgl64.Vec3{0.1, 0, 0}, Rotation: mgl64.QuatIdent()}
	separated, _, _, _ := gjkClosestPoints(a, poseA, b, poseB)
	assert.False(t, separated)
}

func TestPoseToWorldAppliesRotationThenTranslation(t *testing.T) {
	p := pose{Position: mgl64.Vec3{1, 0, 0}, Rotation: mgl64.QuatIdent()}
	got := p.toWorld(mgl64.Vec3{0, 1, 0})
	assert.Equal(t, mgl64.Vec3{1, 1, 0}, got)
}
