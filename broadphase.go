// Copyright © 2024 Galvanized Logic Inc.

package physics

import "github.com/go-gl/mathgl/mgl64"

// broadphasePair is a candidate colliding pair surfaced by the
// broadphase, before narrow-phase confirms actual contact (§4.1). Field
// names mirror gazed-vu/physics/broad.go's broad_Collision_Pair, the
// union-find island step downstream consumes the same shape of pair.
type broadphasePair struct {
	a, b int32 // body pool indices, a < b.
}

// broadphase owns one dynamic AABB tree per configured broadphase layer
// and finds candidate pairs across layers allowed to collide by the
// owning World's layer matrix (§4.1). Pair-finding walks the smaller
// tree's leaves and queries the larger tree for each, the standard way
// to keep broadphase-pair cost near linear when body counts are skewed
// across layers.
type broadphase struct {
	trees    []*dbvt
	settings *WorldSettings
}

func newBroadphase(settings *WorldSettings) *broadphase {
	trees := make([]*dbvt, len(settings.Layers.BroadphaseLayers))
	for i := range trees {
		trees[i] = newDBVT()
	}
	return &broadphase{trees: trees, settings: settings}
}

// addLayer grows the broadphase to track a newly registered broadphase
// layer (mirrors WorldSettings.AddBroadphaseLayer).
func (bp *broadphase) addLayer() {
	bp.trees = append(bp.trees, newDBVT())
}

// Add inserts body's fat AABB into its object layer's broadphase tree.
func (bp *broadphase) Add(body *RigidBody, bodyIndex int32) {
	layer := bp.settings.Layers.ObjectLayers[body.ObjectLayer].BroadphaseLayer
	bp.trees[layer].Insert(bodyIndex, body.worldBounds)
}

// Remove deletes bodyIndex from its object layer's tree.
func (bp *broadphase) Remove(body *RigidBody, bodyIndex int32) {
	layer := bp.settings.Layers.ObjectLayers[body.ObjectLayer].BroadphaseLayer
	bp.trees[layer].Remove(bodyIndex)
}

// Update recomputes body's fat AABB from its tight bounds (inflated by
// WorldSettings.FatAABBMargin) and reinserts it in the tree if the fat
// bounds no longer contain the tight ones (§4.1's fat-AABB hysteresis,
// avoiding a tree mutation on every tiny motion).
func (bp *broadphase) Update(body *RigidBody, bodyIndex int32, tightBounds AABB) {
	if body.worldBounds.Contains(tightBounds) {
		return
	}
	margin := bp.settings.FatAABBMargin
	m := mgl64.Vec3{margin, margin, margin}
	fat := AABB{Min: tightBounds.Min.Sub(m), Max: tightBounds.Max.Add(m)}
	body.worldBounds = fat
	layer := bp.settings.Layers.ObjectLayers[body.ObjectLayer].BroadphaseLayer
	bp.trees[layer].Update(bodyIndex, fat)
}

// FindPairs returns every candidate pair across all broadphase layers
// allowed to collide, deduplicated, with a < b (§4.1 step 1-2).
func (bp *broadphase) FindPairs() []broadphasePair {
	var pairs []broadphasePair
	seen := map[[2]int32]bool{}
	for i := range bp.trees {
		for j := i; j < len(bp.trees); j++ {
			if !bp.settings.CollidesBroadphaseLayers(i, j) {
				continue
			}
			bp.findTreePairs(bp.trees[i], bp.trees[j], i == j, &pairs, seen)
		}
	}
	return pairs
}

func (bp *broadphase) findTreePairs(treeA, treeB *dbvt, sameTree bool, pairs *[]broadphasePair, seen map[[2]int32]bool) {
	var scratch []int32
	for bodyIndex, leaf := range treeA.leafOf {
		bounds := treeA.nodes[leaf].bounds
		scratch = scratch[:0]
		scratch = treeB.Query(bounds, scratch)
		for _, other := range scratch {
			if sameTree && other <= bodyIndex {
				continue
			}
			a, b := bodyIndex, other
			if a > b {
				a, b = b, a
			}
			key := [2]int32{a, b}
			if seen[key] {
				continue
			}
			seen[key] = true
			*pairs = append(*pairs, broadphasePair{a: a, b: b})
		}
	}
}

// QueryBounds appends to out the body index of every tree leaf across
// every broadphase layer whose AABB overlaps bounds — the coarse pass
// shared by ray, shape, point and AABB-overlap queries (§4.4), which each
// narrow the candidates down to exact shape intersection afterward.
func (bp *broadphase) QueryBounds(bounds AABB, out []int32) []int32 {
	for _, t := range bp.trees {
		out = t.Query(bounds, out)
	}
	return out
}
