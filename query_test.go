// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleLayerWorld(t *testing.T) (*World, int) {
	t.Helper()
	settings := NewWorldSettings()
	bp := settings.AddBroadphaseLayer("default")
	layer := settings.AddObjectLayer("default", bp)
	settings.EnableCollision(layer, layer)
	return NewWorld(settings), layer
}

func TestCastRayFindsBodyAlongSegment(t *testing.T) {
	w, layer := singleLayerWorld(t)
	sphere, err := NewSphere(1)
	require.NoError(t, err)
	s := NewBodyCreationSettings(sphere, Static, layer)
	s.Position = mgl64.Vec3{0, 0, 0}
	id, err := w.CreateBody(s)
	require.NoError(t, err)

	ray := Ray{Origin: mgl64.Vec3{-10, 0, 0}, Direction: mgl64.Vec3{20, 0, 0}}
	collector := &ClosestRayCastCollector{}
	w.CastRay(ray, Filter{}, collector)

	require.True(t, collector.Found)
	assert.Equal(t, id, collector.Hit.Body)
}

func TestCastRayRespectsFilterExclude(t *testing.T) {
	w, layer := singleLayerWorld(t)
	sphere, err := NewSphere(1)
	require.NoError(t, err)
	s := NewBodyCreationSettings(sphere, Static, layer)
	id, err := w.CreateBody(s)
	require.NoError(t, err)

	ray := Ray{Origin: mgl64.Vec3{-10, 0, 0}, Direction: mgl64.Vec3{20, 0, 0}}
	collector := &AllRayCastCollector{}
	w.CastRay(ray, Filter{Exclude: id}, collector)
	assert.Empty(t, collector.Hits)
}

func TestCastRayMissesWhenNoBodyInPath(t *testing.T) {
	w, layer := singleLayerWorld(t)
	sphere, err := NewSphere(1)
	require.NoError(t, err)
	s := NewBodyCreationSettings(sphere, Static, layer)
	s.Position = mgl64.Vec3{0, 100, 0}
	_, err = w.CreateBody(s)
	require.NoError(t, err)

	ray := Ray{Origin: mgl64.Vec3{-10, 0, 0}, Direction: mgl64.Vec3{20, 0, 0}}
	collector := &AllRayCastCollector{}
	w.CastRay(ray, Filter{}, collector)
	assert.Empty(t, collector.Hits)
}

func TestCollidePointFindsOverlappingBody(t *testing.T) {
	w, layer := singleLayerWorld(t)
	box, err := NewBox(1, 1, 1)
	require.NoError(t, err)
	s := NewBodyCreationSettings(box, Static, layer)
	s.Position = mgl64.Vec3{0, 0, 0}
	id, err := w.CreateBody(s)
	require.NoError(t, err)

	collector := &AllCollideShapeCollector{}
	w.CollidePoint(mgl64.Vec3{0.2, 0.2, 0.2}, Filter{}, collector)
	require.NotEmpty(t, collector.Hits)
	assert.Equal(t, id, collector.Hits[0].Body)
}

func TestCollidePointMissesBodyOutsideShape(t *testing.T) {
	w, layer := singleLayerWorld(t)
	box, err := NewBox(1, 1, 1)
	require.NoError(t, err)
	s := NewBodyCreationSettings(box, Static, layer)
	_, err = w.CreateBody(s)
	require.NoError(t, err)

	collector := &AllCollideShapeCollector{}
	w.CollidePoint(mgl64.Vec3{10, 10, 10}, Filter{}, collector)
	assert.Empty(t, collector.Hits)
}

func TestCollideShapeFindsOverlappingSphere(t *testing.T) {
	w, layer := singleLayerWorld(t)
	box, err := NewBox(1, 1, 1)
	require.NoError(t, err)
	s := NewBodyCreationSettings(box, Static, layer)
	id, err := w.CreateBody(s)
	require.NoError(t, err)

	probe, err := NewSphere(0.5)
	require.NoError(t, err)
	collector := &AllCollideShapeCollector{}
	w.CollideShape(probe, mgl64.Vec3{0, 0, 0}, mgl64.QuatIdent(), Filter{}, collector)
	require.NotEmpty(t, collector.Hits)
	assert.Equal(t, id, collector.Hits[0].Body)
	assert.Greater(t, collector.Hits[0].PenetrationDepth, 0.0)
}

func TestCastShapeSweepsIntoStaticBox(t *testing.T) {
	w, layer := singleLayerWorld(t)
	box, err := NewBox(1, 1, 1)
	require.NoError(t, err)
	s := NewBodyCreationSettings(box, Static, layer)
	id, err := w.CreateBody(s)
	require.NoError(t, err)

	probe, err := NewSphere(0.5)
	require.NoError(t, err)
	collector := &ClosestShapeCastCollector{}
	w.CastShape(probe, mgl64.Vec3{-10, 0, 0}, mgl64.QuatIdent(), mgl64.Vec3{20, 0, 0}, Filter{}, collector)

	require.True(t, collector.Found)
	assert.Equal(t, id, collector.Hit.Body)
	assert.Greater(t, collector.Hit.Fraction, 0.0)
	assert.Less(t, collector.Hit.Fraction, 1.0)
}
