package navmesh

import (
	"slices"
)

// chunk holds the arena slots of one SpatialChunkSize² block of tiles.
type chunk struct {
	coord Tile    // chunk coordinate, in chunks
	slots []int32 // arena index + 1, 0 when the tile is empty
	count int
}

// SpatialTree is a chunked 2D index over GridNodes keyed by tile.
//
// Nodes live in a flat arena and are addressed by arena index. Surfaces and
// the path finder hold indices, never pointers. An index is only valid while
// its node is live; removed slots are recycled by later inserts.
type SpatialTree struct {
	chunkSize int
	chunks    map[Tile]*chunk

	nodes []GridNode
	free  []int

	// Dense list of live arena indices, for uniform sampling.
	order   []int
	orderAt []int // arena index -> position in order
}

// NewSpatialTree creates an empty tree with the given chunk edge in tiles.
func NewSpatialTree(chunkSize int) *SpatialTree {
	if chunkSize <= 0 {
		chunkSize = 1
	}
	return &SpatialTree{
		chunkSize: chunkSize,
		chunks:    make(map[Tile]*chunk),
	}
}

// Len returns the number of live nodes.
func (st *SpatialTree) Len() int {
	return len(st.order)
}

// ChunkCount returns the number of non-empty chunks.
func (st *SpatialTree) ChunkCount() int {
	return len(st.chunks)
}

// Node returns the node stored at an arena index.
func (st *SpatialTree) Node(idx int) GridNode {
	return st.nodes[idx]
}

// Lookup returns the arena index of the node at tile.
func (st *SpatialTree) Lookup(tile Tile) (int, bool) {
	coord, slot := st.locate(tile)
	c := st.chunks[coord]
	if c == nil || c.slots[slot] == 0 {
		return -1, false
	}
	return int(c.slots[slot]) - 1, true
}

// Get returns the node at tile.
func (st *SpatialTree) Get(tile Tile) (GridNode, bool) {
	idx, ok := st.Lookup(tile)
	if !ok {
		return GridNode{}, false
	}
	return st.nodes[idx], true
}

// Insert stores a node, replacing any node already at its tile.
// Returns the arena index.
func (st *SpatialTree) Insert(n GridNode) int {
	if idx, ok := st.Lookup(n.Tile); ok {
		st.nodes[idx] = n
		return idx
	}

	var idx int
	if k := len(st.free); k > 0 {
		idx = st.free[k-1]
		st.free = st.free[:k-1]
		st.nodes[idx] = n
		st.orderAt[idx] = len(st.order)
	} else {
		idx = len(st.nodes)
		st.nodes = append(st.nodes, n)
		st.orderAt = append(st.orderAt, len(st.order))
	}
	st.order = append(st.order, idx)

	coord, slot := st.locate(n.Tile)
	c := st.chunks[coord]
	if c == nil {
		c = &chunk{coord: coord, slots: make([]int32, st.chunkSize*st.chunkSize)}
		st.chunks[coord] = c
	}
	c.slots[slot] = int32(idx + 1)
	c.count++
	return idx
}

// Remove deletes the node at tile. Returns its former arena index.
func (st *SpatialTree) Remove(tile Tile) (int, bool) {
	coord, slot := st.locate(tile)
	c := st.chunks[coord]
	if c == nil || c.slots[slot] == 0 {
		return -1, false
	}
	idx := int(c.slots[slot]) - 1
	c.slots[slot] = 0
	c.count--
	if c.count == 0 {
		delete(st.chunks, coord)
	}

	// swap-remove from the dense order
	pos := st.orderAt[idx]
	last := st.order[len(st.order)-1]
	st.order[pos] = last
	st.orderAt[last] = pos
	st.order = st.order[:len(st.order)-1]

	st.orderAt[idx] = -1
	st.nodes[idx] = GridNode{}
	st.free = append(st.free, idx)
	return idx, true
}

// Clear drops every node and chunk.
func (st *SpatialTree) Clear() {
	st.chunks = make(map[Tile]*chunk)
	st.nodes = nil
	st.free = nil
	st.order = nil
	st.orderAt = nil
}

// At returns the arena index of the i-th live node, 0 <= i < Len().
// The order is stable between mutations.
func (st *SpatialTree) At(i int) int {
	return st.order[i]
}

// Neighbours calls fn for every live node among the given offsets of tile.
func (st *SpatialTree) Neighbours(tile Tile, offsets []Tile, fn func(idx int)) {
	for _, d := range offsets {
		if idx, ok := st.Lookup(tile.Add(d)); ok {
			fn(idx)
		}
	}
}

// Neighbours4 returns the arena indices of the orthogonal neighbours of tile.
func (st *SpatialTree) Neighbours4(tile Tile) []int {
	var out []int
	st.Neighbours(tile, orthogonal[:], func(idx int) { out = append(out, idx) })
	return out
}

// Neighbours8 returns the arena indices of all eight neighbours of tile.
func (st *SpatialTree) Neighbours8(tile Tile) []int {
	var out []int
	st.Neighbours(tile, octagonal[:], func(idx int) { out = append(out, idx) })
	return out
}

// Query calls fn for every live node inside the inclusive tile rectangle
// [lo, hi]. Iteration stops when fn returns false.
func (st *SpatialTree) Query(lo, hi Tile, fn func(idx int) bool) {
	if hi.X < lo.X || hi.Y < lo.Y {
		return
	}
	clo, _ := st.locate(lo)
	chi, _ := st.locate(hi)

	// Walk whichever is smaller: the chunk rectangle or the live chunk set.
	span := (chi.X - clo.X + 1) * (chi.Y - clo.Y + 1)
	if span <= len(st.chunks) {
		for cy := clo.Y; cy <= chi.Y; cy++ {
			for cx := clo.X; cx <= chi.X; cx++ {
				if c := st.chunks[Tile{cx, cy}]; c != nil {
					if !st.queryChunk(c, lo, hi, fn) {
						return
					}
				}
			}
		}
		return
	}
	for _, c := range st.sortedChunks() {
		if c.coord.X < clo.X || c.coord.X > chi.X || c.coord.Y < clo.Y || c.coord.Y > chi.Y {
			continue
		}
		if !st.queryChunk(c, lo, hi, fn) {
			return
		}
	}
}

func (st *SpatialTree) queryChunk(c *chunk, lo, hi Tile, fn func(idx int) bool) bool {
	base := Tile{c.coord.X * st.chunkSize, c.coord.Y * st.chunkSize}
	x0, y0 := max(lo.X-base.X, 0), max(lo.Y-base.Y, 0)
	x1, y1 := min(hi.X-base.X, st.chunkSize-1), min(hi.Y-base.Y, st.chunkSize-1)
	for y := y0; y <= y1; y++ {
		row := y * st.chunkSize
		for x := x0; x <= x1; x++ {
			if s := c.slots[row+x]; s != 0 {
				if !fn(int(s) - 1) {
					return false
				}
			}
		}
	}
	return true
}

// Nearest returns the live node closest to target by Euclidean tile
// distance. Ties go to the lower Y, then the lower X.
func (st *SpatialTree) Nearest(target Tile) (int, bool) {
	if st.Len() == 0 {
		return -1, false
	}

	type candidate struct {
		c     *chunk
		bound int
	}
	cands := make([]candidate, 0, len(st.chunks))
	for _, c := range st.chunks {
		cands = append(cands, candidate{c: c, bound: st.chunkDistanceSq(c.coord, target)})
	}
	slices.SortFunc(cands, func(a, b candidate) int {
		if a.bound != b.bound {
			return a.bound - b.bound
		}
		if a.c.coord.less(b.c.coord) {
			return -1
		}
		return 1
	})

	best, bestDist := -1, 0
	for _, cand := range cands {
		if best >= 0 && cand.bound > bestDist {
			break
		}
		base := Tile{cand.c.coord.X * st.chunkSize, cand.c.coord.Y * st.chunkSize}
		for i, s := range cand.c.slots {
			if s == 0 {
				continue
			}
			tile := Tile{base.X + i%st.chunkSize, base.Y + i/st.chunkSize}
			best, bestDist = st.pickCloser(best, bestDist, int(s)-1, tile, target)
		}
	}
	return best, best >= 0
}

// NearestInRange is Nearest restricted to tiles within radius (Chebyshev)
// of target.
func (st *SpatialTree) NearestInRange(target Tile, radius int) (int, bool) {
	best, bestDist := -1, 0
	lo := Tile{target.X - radius, target.Y - radius}
	hi := Tile{target.X + radius, target.Y + radius}
	st.Query(lo, hi, func(idx int) bool {
		best, bestDist = st.pickCloser(best, bestDist, idx, st.nodes[idx].Tile, target)
		return true
	})
	return best, best >= 0
}

func (st *SpatialTree) pickCloser(best, bestDist, idx int, tile, target Tile) (int, int) {
	d := tile.DistanceSq(target)
	if best < 0 || d < bestDist || (d == bestDist && tile.less(st.nodes[best].Tile)) {
		return idx, d
	}
	return best, bestDist
}

// chunkDistanceSq is the squared distance from target to the closest tile of a chunk.
func (st *SpatialTree) chunkDistanceSq(coord, target Tile) int {
	lo := Tile{coord.X * st.chunkSize, coord.Y * st.chunkSize}
	hi := Tile{lo.X + st.chunkSize - 1, lo.Y + st.chunkSize - 1}
	dx := max(lo.X-target.X, 0, target.X-hi.X)
	dy := max(lo.Y-target.Y, 0, target.Y-hi.Y)
	return dx*dx + dy*dy
}

// partitionOutside returns the arena indices of nodes outside [lo, hi].
// Chunks entirely inside are skipped, chunks entirely outside are taken whole.
func (st *SpatialTree) partitionOutside(lo, hi Tile) []int {
	var out []int
	for _, c := range st.sortedChunks() {
		base := Tile{c.coord.X * st.chunkSize, c.coord.Y * st.chunkSize}
		top := Tile{base.X + st.chunkSize - 1, base.Y + st.chunkSize - 1}

		inside := base.X >= lo.X && base.Y >= lo.Y && top.X <= hi.X && top.Y <= hi.Y
		if inside {
			continue
		}
		outside := top.X < lo.X || top.Y < lo.Y || base.X > hi.X || base.Y > hi.Y
		for i, s := range c.slots {
			if s == 0 {
				continue
			}
			if !outside {
				t := Tile{base.X + i%st.chunkSize, base.Y + i/st.chunkSize}
				if t.X >= lo.X && t.X <= hi.X && t.Y >= lo.Y && t.Y <= hi.Y {
					continue
				}
			}
			out = append(out, int(s)-1)
		}
	}
	return out
}

// sortedChunks returns the chunks in (Y, X) order so callers see a stable sequence.
func (st *SpatialTree) sortedChunks() []*chunk {
	out := make([]*chunk, 0, len(st.chunks))
	for _, c := range st.chunks {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *chunk) int {
		if a.coord == b.coord {
			return 0
		}
		if a.coord.less(b.coord) {
			return -1
		}
		return 1
	})
	return out
}

// locate splits a tile into its chunk coordinate and slot index.
func (st *SpatialTree) locate(t Tile) (Tile, int) {
	cx, lx := floorDiv(t.X, st.chunkSize)
	cy, ly := floorDiv(t.Y, st.chunkSize)
	return Tile{cx, cy}, ly*st.chunkSize + lx
}

// floorDiv returns the floored quotient and the non-negative remainder.
func floorDiv(a, b int) (int, int) {
	q, r := a/b, a%b
	if r < 0 {
		q--
		r += b
	}
	return q, r
}
