// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package physics is a real-time simulation of real-world rigid body
// physics. It maintains a population of bodies with convex and concave
// geometry, advances them under gravity and user-applied impulses,
// resolves contacts and joint constraints, and answers spatial queries
// (ray, shape-cast, overlap, point-in-shape).
//
// The pipeline driven once per call to World.Update is:
//
//	integrate forces -> broadphase update + pair find -> narrowphase ->
//	contact cache update -> island build -> solve velocity ->
//	integrate positions -> solve positions -> sleep detection
//
// Math primitives (Vec3, Quat, Mat3/Mat4) are github.com/go-gl/mathgl/mgl64
// types; this package treats them as an external collaborator and never
// reimplements them.
//
//	body.go            : RigidBody, MotionProperties, lifecycle.
//	ids.go              : BodyId and SubShapeID packing.
//	shape*.go           : the Shape variant family.
//	dbvt.go, broadphase.go : the per-layer dynamic AABB tree and pair finder.
//	gjk.go, epa.go      : convex separation and penetration depth.
//	collide*.go         : shape-vs-shape dispatch and specialized pairs.
//	raycast.go, shapecast.go : ray casts and shape casts.
//	contact.go          : the contact cache.
//	manifold.go         : manifold persistence.
//	constraint_*.go     : the eight joint types.
//	island.go           : union-find island building.
//	solver.go           : the sequential-impulse velocity/position solver.
//	integrator.go       : force/gravity/damping integration and DOF masking.
//	sleep.go            : sleep detection and waking.
//	world.go            : World, owning all pools and driving Update.
package physics
