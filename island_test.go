// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildIslandsMergesBodiesSharingAContact(t *testing.T) {
	pool := newBodyPool()
	idA, bodyA := pool.allocate()
	bodyA.MotionType = Dynamic
	idB, bodyB := pool.allocate()
	bodyB.MotionType = Dynamic
	idC, bodyC := pool.allocate()
	bodyC.MotionType = Dynamic

	indexOf := map[BodyId]int32{idA: int32(idA.Index()), idB: int32(idB.Index()), idC: int32(idC.Index())}
	active := []int32{indexOf[idA], indexOf[idB], indexOf[idC]}

	contacts := []*Contact{{BodyA: idA, BodyB: idB}}
	islands := buildIslands(active, pool, contacts, nil, indexOf)

	assert.Len(t, islands, 2, "A and B should merge into one island, C stays separate")
	sizes := map[int]int{}
	for _, isl := range islands {
		sizes[len(isl.Bodies)]++
	}
	assert.Equal(t, 1, sizes[2])
	assert.Equal(t, 1, sizes[1])
}

func TestBuildIslandsStaticBodyDoesNotMergeIslands(t *testing.T) {
	pool := newBodyPool()
	idA, bodyA := pool.allocate()
	bodyA.MotionType = Dynamic
	idStatic, bodyStatic := pool.allocate()
	bodyStatic.MotionType = Static
	idB, bodyB := pool.allocate()
	bodyB.MotionType = Dynamic

	indexOf := map[BodyId]int32{idA: int32(idA.Index()), idB: int32(idB.Index())}
	active := []int32{indexOf[idA], indexOf[idB]}

	contacts := []*Contact{
		{BodyA: idA, BodyB: idStatic},
		{BodyA: idStatic, BodyB: idB},
	}
	islands := buildIslands(active, pool, contacts, nil, indexOf)
	assert.Len(t, islands, 2, "a shared static body must not union the two dynamic bodies into one island")
}

func TestBuildIslandsAssignsContactsToOwningIsland(t *testing.T) {
	pool := newBodyPool()
	idA, bodyA := pool.allocate()
	bodyA.MotionType = Dynamic
	idB, bodyB := pool.allocate()
	bodyB.MotionType = Dynamic

	indexOf := map[BodyId]int32{idA: int32(idA.Index()), idB: int32(idB.Index())}
	active := []int32{indexOf[idA], indexOf[idB]}
	contacts := []*Contact{{BodyA: idA, BodyB: idB}}

	islands := buildIslands(active, pool, contacts, nil, indexOf)
	assert.Len(t, islands, 1)
	assert.Len(t, islands[0].Contacts, 1)
}
