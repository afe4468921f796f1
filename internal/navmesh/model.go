package navmesh

import (
	"math/rand/v2"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/arnav/internal/logger"
	"github.com/Faultbox/arnav/pkg/math"
)

// Model owns the spatial tree and the surface partition. All writes go
// through Scan, Prune, Clear and Restore.
//
// A Model is not safe for concurrent use.
type Model struct {
	settings ModelSettings
	sampler  HeightSampler
	tree     *SpatialTree

	surfaces map[int]*Surface
	owner    []int // arena index -> surface id, -1 when detached
	nextID   int
	dirty    map[int]struct{}

	// scratch buffers reused across scans
	heights []float32
	hits    []bool
	kern    kernel
}

// NewModel creates an empty model. The settings must already be valid.
func NewModel(settings ModelSettings, sampler HeightSampler) *Model {
	return &Model{
		settings: settings,
		sampler:  sampler,
		tree:     NewSpatialTree(settings.SpatialChunkSize),
		surfaces: make(map[int]*Surface),
		dirty:    make(map[int]struct{}),
	}
}

// Settings returns the model settings.
func (m *Model) Settings() ModelSettings {
	return m.settings
}

// Tree returns the spatial index. Callers must not mutate it.
func (m *Model) Tree() *SpatialTree {
	return m.tree
}

// NodeCount returns the number of walkable tiles.
func (m *Model) NodeCount() int {
	return m.tree.Len()
}

// Surfaces returns the current surfaces ordered by ID.
func (m *Model) Surfaces() []*Surface {
	out := make([]*Surface, 0, len(m.surfaces))
	for _, s := range m.surfaces {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *Surface) int { return a.id - b.id })
	return out
}

// SurfaceAt returns the surface owning tile.
func (m *Model) SurfaceAt(tile Tile) (*Surface, bool) {
	idx, ok := m.tree.Lookup(tile)
	if !ok {
		return nil, false
	}
	s := m.surfaceOf(idx)
	return s, s != nil
}

// Scan samples the square of tiles within rng of origin, classifies each
// tile and updates the tree and surfaces. It returns the tiles that were
// live before the scan and are no longer walkable.
func (m *Model) Scan(origin math.Vec3, rng float32) []Tile {
	ts := m.settings.TileSize
	r := m.settings.TilesInRange(rng)
	k := m.settings.KernelSize / 2
	center := PositionToTile(origin, ts)

	// Sample the region grown by the kernel radius.
	w := 2*(r+k) + 1
	m.heights = resize(m.heights, w*w)
	m.hits = resize(m.hits, w*w)
	corner := Tile{center.X - r - k, center.Y - r - k}
	top := origin.Y + rng
	sampled := 0
	for j := 0; j < w; j++ {
		for i := 0; i < w; i++ {
			p := TileToPosition(Tile{corner.X + i, corner.Y + j}, top, ts)
			h, ok := m.sampler.SampleHeight(p, m.settings.LayerMask)
			m.heights[j*w+i], m.hits[j*w+i] = h, ok
			if ok {
				sampled++
			}
		}
	}

	var deleted []Tile
	added, changed := 0, 0
	for j := k; j < w-k; j++ {
		for i := k; i < w-k; i++ {
			tile := Tile{corner.X + i, corner.Y + j}
			node, ok := m.classify(tile, i, j, w, k)
			if !ok {
				if m.removeTile(tile) {
					deleted = append(deleted, tile)
				}
				continue
			}
			switch m.upsert(node) {
			case upsertAdded:
				added++
			case upsertChanged:
				changed++
			}
		}
	}
	m.resegment()

	logger.Debug("navmesh scan",
		zap.Stringer("center", center),
		zap.Int("radius", r),
		zap.Int("sampled", sampled),
		zap.Int("added", added),
		zap.Int("changed", changed),
		zap.Int("deleted", len(deleted)),
		zap.Int("nodes", m.tree.Len()),
		zap.Int("surfaces", len(m.surfaces)),
	)
	return deleted
}

// classify evaluates the kernel around the sample at (i, j) of a w-wide grid.
func (m *Model) classify(tile Tile, i, j, w, k int) (GridNode, bool) {
	if !m.hits[j*w+i] {
		return GridNode{}, false
	}
	center := m.heights[j*w+i]
	if center < m.settings.MinElevation {
		return GridNode{}, false
	}

	ts := float64(m.settings.TileSize)
	m.kern.reset()
	for dy := -k; dy <= k; dy++ {
		for dx := -k; dx <= k; dx++ {
			at := (j+dy)*w + (i + dx)
			if !m.hits[at] {
				continue
			}
			m.kern.add(float64(dx)*ts, float64(dy)*ts, float64(m.heights[at]))
		}
	}
	mean, deviation, slope := m.kern.evaluate()
	if deviation > float64(m.settings.KernelStdDevTol) || slope > float64(m.settings.MaxSlope) {
		return GridNode{}, false
	}
	return GridNode{
		Tile:      tile,
		Elevation: float32(mean),
		Deviation: float32(deviation),
		Slope:     float32(slope),
	}, true
}

type upsertResult int

const (
	upsertUnchanged upsertResult = iota
	upsertAdded
	upsertChanged
)

// upsert stores node and keeps the surface partition consistent.
func (m *Model) upsert(node GridNode) upsertResult {
	idx, exists := m.tree.Lookup(node.Tile)
	if !exists {
		idx = m.tree.Insert(node)
		m.setOwner(idx, -1)
		m.attach(idx)
		return upsertAdded
	}

	old := m.tree.Node(idx)
	if old.sameAs(node) {
		return upsertUnchanged
	}
	if old.Elevation == node.Elevation {
		m.tree.Insert(node)
		return upsertChanged
	}
	m.detach(idx)
	m.tree.Insert(node)
	m.attach(idx)
	return upsertChanged
}

// removeTile deletes the node at tile, reporting whether one existed.
func (m *Model) removeTile(tile Tile) bool {
	idx, ok := m.tree.Lookup(tile)
	if !ok {
		return false
	}
	m.detach(idx)
	m.tree.Remove(tile)
	return true
}

// Prune removes every node farther than rng (Chebyshev, in tiles) from
// origin and returns the removed tiles.
func (m *Model) Prune(origin math.Vec3, rng float32) []Tile {
	if m.tree.Len() == 0 {
		return nil
	}
	r := m.settings.TilesInRange(rng)
	center := PositionToTile(origin, m.settings.TileSize)
	lo := Tile{center.X - r, center.Y - r}
	hi := Tile{center.X + r, center.Y + r}

	outside := m.tree.partitionOutside(lo, hi)
	removed := make([]Tile, 0, len(outside))
	for _, idx := range outside {
		tile := m.tree.Node(idx).Tile
		m.detach(idx)
		m.tree.Remove(tile)
		removed = append(removed, tile)
	}
	m.resegment()

	logger.Debug("navmesh prune",
		zap.Stringer("center", center),
		zap.Int("radius", r),
		zap.Int("removed", len(removed)),
		zap.Int("nodes", m.tree.Len()),
		zap.Int("surfaces", len(m.surfaces)),
	)
	return removed
}

// Clear removes all nodes and surfaces.
func (m *Model) Clear() {
	m.tree.Clear()
	m.surfaces = make(map[int]*Surface)
	m.dirty = make(map[int]struct{})
	m.owner = nil
	m.nextID = 0
}

// FindRandomPosition returns the position of a node chosen uniformly among
// all live nodes.
func (m *Model) FindRandomPosition(rnd *rand.Rand) (math.Vec3, bool) {
	n := m.tree.Len()
	if n == 0 {
		return math.Vec3{}, false
	}
	idx := m.tree.At(rnd.IntN(n))
	return m.tree.Node(idx).Position(m.settings.TileSize), true
}

// FindRandomPositionInRange is FindRandomPosition restricted to the square
// window of half-extent rng around center.
func (m *Model) FindRandomPositionInRange(rnd *rand.Rand, center math.Vec3, rng float32) (math.Vec3, bool) {
	r := m.settings.TilesInRange(rng)
	c := PositionToTile(center, m.settings.TileSize)
	var candidates []int
	m.tree.Query(Tile{c.X - r, c.Y - r}, Tile{c.X + r, c.Y + r}, func(idx int) bool {
		candidates = append(candidates, idx)
		return true
	})
	if len(candidates) == 0 {
		return math.Vec3{}, false
	}
	idx := candidates[rnd.IntN(len(candidates))]
	return m.tree.Node(idx).Position(m.settings.TileSize), true
}

func (m *Model) surfaceOf(idx int) *Surface {
	if idx < 0 || idx >= len(m.owner) || m.owner[idx] < 0 {
		return nil
	}
	return m.surfaces[m.owner[idx]]
}

func (m *Model) setOwner(idx, id int) {
	for len(m.owner) <= idx {
		m.owner = append(m.owner, -1)
	}
	m.owner[idx] = id
}

func resize[T any](buf []T, n int) []T {
	if cap(buf) < n {
		return make([]T, n)
	}
	return buf[:n]
}
