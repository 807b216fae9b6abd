// Copyright © 2024 Galvanized Logic Inc.

package physics

// islandBuilder groups active dynamic bodies into simulation islands via
// union-find, so the solver and sleep detection can work one connected
// group at a time (§4.5). A static body is never a member of an island
// (it terminates the union instead of joining it), matching
// gazed-vu/physics/broad.go's uf_find/uf_union/uf_collect_all, renamed
// into idiomatic receivers and generalized to operate over the contact
// graph (and constraint graph) rather than a fixed contactPair slice.
type islandBuilder struct {
	parent map[int32]int32
}

func newIslandBuilder() *islandBuilder {
	return &islandBuilder{parent: map[int32]int32{}}
}

func (u *islandBuilder) find(x int32) int32 {
	p, ok := u.parent[x]
	if !ok {
		return x
	}
	if p == x {
		return x
	}
	root := u.find(p)
	u.parent[x] = root // path compression.
	return root
}

func (u *islandBuilder) union(x, y int32) {
	rx, ry := u.find(x), u.find(y)
	if rx != ry {
		u.parent[ry] = rx
	}
}

// Island is one connected group of dynamic bodies, plus the contacts and
// constraints linking them, solved together each step (§4.5).
type Island struct {
	Bodies      []int32
	Contacts    []*Contact
	Constraints []Constraint

	// Solver iteration counts for this island: the max of the member
	// bodies' per-body overrides, or 0 meaning the world's solver
	// settings apply (§4.5).
	NumVelocitySteps int
	NumPositionSteps int
}

// buildIslands unions every pair of bodies linked by a live contact or
// constraint (skipping static/kinematic endpoints, which never propagate
// an island merge), then groups the result into Island values (§4.5).
// bodyIndices lists every active (non-sleeping) dynamic body's pool
// index as a candidate island member.
func buildIslands(bodyIndices []int32, bodies *bodyPool, contacts []*Contact, constraints []Constraint, indexOf map[BodyId]int32) []Island {
	uf := newIslandBuilder()
	for _, idx := range bodyIndices {
		uf.parent[idx] = idx
	}

	unionIfDynamic := func(a, b BodyId) {
		ba, bb := bodies.get(a), bodies.get(b)
		if ba == nil || bb == nil || !ba.IsDynamic() || !bb.IsDynamic() {
			return
		}
		ia, okA := indexOf[a]
		ib, okB := indexOf[b]
		if okA && okB {
			uf.union(ia, ib)
		}
	}

	for _, c := range contacts {
		if c.sensor {
			continue
		}
		unionIfDynamic(c.BodyA, c.BodyB)
	}
	for _, c := range constraints {
		unionIfDynamic(c.BodyIds())
	}

	islandOf := map[int32]int{}
	var islands []Island
	for _, idx := range bodyIndices {
		root := uf.find(idx)
		i, ok := islandOf[root]
		if !ok {
			i = len(islands)
			islands = append(islands, Island{})
			islandOf[root] = i
		}
		islands[i].Bodies = append(islands[i].Bodies, idx)
	}

	bodyToIsland := map[int32]int{}
	for i, island := range islands {
		for _, idx := range island.Bodies {
			bodyToIsland[idx] = i
		}
	}
	for _, c := range contacts {
		if c.sensor {
			continue
		}
		ba, bb := bodies.get(c.BodyA), bodies.get(c.BodyB)
		if ba == nil || bb == nil {
			continue
		}
		var idx int32
		var ok bool
		if ba.IsDynamic() {
			idx, ok = indexOf[c.BodyA]
		}
		if !ok && bb.IsDynamic() {
			idx, ok = indexOf[c.BodyB]
		}
		if !ok {
			continue
		}
		i := bodyToIsland[idx]
		islands[i].Contacts = append(islands[i].Contacts, c)
	}
	for _, c := range constraints {
		a, b := c.BodyIds()
		ba, bb := bodies.get(a), bodies.get(b)
		if ba == nil || bb == nil {
			continue
		}
		var idx int32
		var ok bool
		if ba.IsDynamic() {
			idx, ok = indexOf[a]
		}
		if !ok && bb.IsDynamic() {
			idx, ok = indexOf[b]
		}
		if !ok {
			continue
		}
		i := bodyToIsland[idx]
		islands[i].Constraints = append(islands[i].Constraints, c)
	}

	for i := range islands {
		for _, idx := range islands[i].Bodies {
			m := bodies.bodies[idx].Motion
			if m == nil {
				continue
			}
			islands[i].NumVelocitySteps = maxIterations(islands[i].NumVelocitySteps, m.VelocityStepsOverride)
			islands[i].NumPositionSteps = maxIterations(islands[i].NumPositionSteps, m.PositionStepsOverride)
		}
	}

	return islands
}

func maxIterations(a, b int) int {
	if b > a {
		return b
	}
	return a
}
