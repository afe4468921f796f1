package navmesh

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) (*Model, *gridSampler) {
	t.Helper()
	settings := DefaultModelSettings()
	g := newGridSampler(settings.TileSize)
	return NewModel(settings, g), g
}

func scanAt(m *Model, tile Tile, y, rng float32) []Tile {
	return m.Scan(TileToPosition(tile, y, m.settings.TileSize), rng)
}

func TestModel_ScanFlatBlock(t *testing.T) {
	t.Parallel()

	m, g := newTestModel(t)
	g.fill(Tile{0, 0}, Tile{4, 4}, 0)

	deleted := scanAt(m, Tile{2, 2}, 0, 1.0)
	assert.Empty(t, deleted)
	assert.Equal(t, 25, m.NodeCount())
	require.Len(t, m.Surfaces(), 1)
	s := m.Surfaces()[0]
	assert.Equal(t, 25, s.Len())
	assert.Zero(t, s.Elevation())
	lo, hi := s.Bounds()
	assert.Equal(t, Tile{0, 0}, lo)
	assert.Equal(t, Tile{4, 4}, hi)
	requirePartition(t, m)
}

func TestModel_ScanOnlyTouchesRegion(t *testing.T) {
	t.Parallel()

	m, g := newTestModel(t)
	g.fill(Tile{-30, 0}, Tile{30, 0}, 0)

	scanAt(m, Tile{0, 0}, 0, 0.5) // 4 tiles either side
	assert.Equal(t, 9, m.NodeCount())
	for i := 0; i < m.tree.Len(); i++ {
		assert.LessOrEqual(t, m.tree.Node(m.tree.At(i)).Tile.Chebyshev(Tile{0, 0}), 4)
	}
}

func TestModel_Rejections(t *testing.T) {
	t.Parallel()

	t.Run("noise", func(t *testing.T) {
		m, g := newTestModel(t)
		for y := 0; y <= 8; y++ {
			for x := 0; x <= 8; x++ {
				g.heights[Tile{x, y}] = float32((x+y)%2) * 0.6
			}
		}
		scanAt(m, Tile{4, 4}, 1, 0.5)
		assert.Zero(t, m.NodeCount())
	})

	t.Run("steep slope", func(t *testing.T) {
		m, g := newTestModel(t)
		for y := -10; y <= 10; y++ {
			for x := -10; x <= 10; x++ {
				g.heights[Tile{x, y}] = (float32(x) + 0.5) * 0.15 * 0.57735
			}
		}
		scanAt(m, Tile{0, 0}, 2, 1.0)
		assert.Zero(t, m.NodeCount())
	})

	t.Run("gentle slope", func(t *testing.T) {
		m, g := newTestModel(t)
		for y := -10; y <= 10; y++ {
			for x := -10; x <= 10; x++ {
				g.heights[Tile{x, y}] = (float32(x) + 0.5) * 0.15 * 0.2
			}
		}
		scanAt(m, Tile{0, 0}, 2, 1.0)
		assert.Equal(t, 15*15, m.NodeCount())
		assert.Len(t, m.Surfaces(), 1)
		n, ok := m.tree.Get(Tile{0, 0})
		require.True(t, ok)
		assert.InDelta(t, 11.3099, n.Slope, 0.05)
		assert.InDelta(t, 0.015, n.Elevation, 1e-4)
	})

	t.Run("below min elevation", func(t *testing.T) {
		m, g := newTestModel(t)
		g.fill(Tile{0, 0}, Tile{2, 2}, -20)
		g.fill(Tile{5, 0}, Tile{7, 2}, -5)
		scanAt(m, Tile{3, 1}, -4, 1.0)
		assert.Equal(t, 9, m.NodeCount())
		_, ok := m.tree.Get(Tile{1, 1})
		assert.False(t, ok)
		_, ok = m.tree.Get(Tile{6, 1})
		assert.True(t, ok)
	})
}

func TestModel_RescanIsIdempotent(t *testing.T) {
	t.Parallel()

	m, g := newTestModel(t)
	g.fill(Tile{0, 0}, Tile{6, 2}, 0)
	g.fill(Tile{0, 5}, Tile{6, 6}, 0.5)

	scanAt(m, Tile{3, 3}, 1, 1.0)
	before := m.Snapshot()
	surfaces := len(m.Surfaces())

	assert.Empty(t, scanAt(m, Tile{3, 3}, 1, 1.0))
	if diff := cmp.Diff(before, m.Snapshot()); diff != "" {
		t.Errorf("snapshot changed after rescan (-before +after):\n%s", diff)
	}
	assert.Len(t, m.Surfaces(), surfaces)
	requirePartition(t, m)
}

func TestModel_RemovingBridgeSplitsSurface(t *testing.T) {
	t.Parallel()

	m, g := newTestModel(t)
	g.fill(Tile{0, 0}, Tile{6, 2}, 0)
	scanAt(m, Tile{3, 1}, 0, 1.0)
	require.Len(t, m.Surfaces(), 1)

	g.clear(Tile{3, 0}, Tile{3, 2})
	deleted := scanAt(m, Tile{3, 1}, 0, 1.0)
	assert.ElementsMatch(t, []Tile{{3, 0}, {3, 1}, {3, 2}}, deleted)
	assert.Equal(t, 18, m.NodeCount())

	surfaces := m.Surfaces()
	require.Len(t, surfaces, 2)
	assert.Equal(t, 9, surfaces[0].Len())
	assert.Equal(t, 9, surfaces[1].Len())
	assert.NotEqual(t, surfaces[0].Contains(Tile{0, 0}), surfaces[1].Contains(Tile{0, 0}))
	requirePartition(t, m)
}

func TestModel_FillingGapMergesSurfaces(t *testing.T) {
	t.Parallel()

	m, g := newTestModel(t)
	g.fill(Tile{0, 0}, Tile{2, 2}, 0)
	g.fill(Tile{4, 0}, Tile{6, 2}, 0)
	scanAt(m, Tile{3, 1}, 0, 1.0)
	require.Len(t, m.Surfaces(), 2)

	g.fill(Tile{3, 0}, Tile{3, 2}, 0)
	scanAt(m, Tile{3, 1}, 0, 1.0)
	require.Len(t, m.Surfaces(), 1)
	assert.Equal(t, 21, m.Surfaces()[0].Len())
	requirePartition(t, m)
}

func TestModel_LedgeSplitsSurface(t *testing.T) {
	t.Parallel()

	m, g := newTestModel(t)
	g.fill(Tile{0, 0}, Tile{6, 2}, 0)
	scanAt(m, Tile{3, 1}, 1, 1.0)
	require.Len(t, m.Surfaces(), 1)

	// Raising the right part makes the kernels straddling the edge too rough.
	g.fill(Tile{4, 0}, Tile{6, 2}, 0.5)
	deleted := scanAt(m, Tile{3, 1}, 1, 1.0)
	assert.ElementsMatch(t, []Tile{{3, 0}, {3, 1}, {3, 2}, {4, 0}, {4, 1}, {4, 2}}, deleted)

	surfaces := m.Surfaces()
	require.Len(t, surfaces, 2)
	var low, high *Surface
	for _, s := range surfaces {
		if s.Contains(Tile{0, 0}) {
			low = s
		} else {
			high = s
		}
	}
	require.NotNil(t, low)
	require.NotNil(t, high)
	assert.Equal(t, 9, low.Len())
	assert.Equal(t, 6, high.Len())
	assert.InDelta(t, 0.5, high.Elevation(), 1e-6)
	requirePartition(t, m)
}

func TestModel_PruneSplitsSurface(t *testing.T) {
	t.Parallel()

	m := layoutModel(t,
		"0...0",
		"0...0",
		"0...0",
		"0...0",
		"00000",
	)
	require.Len(t, m.Surfaces(), 1)

	removed := m.Prune(TileToPosition(Tile{2, 0}, 0, m.settings.TileSize), 0.4)
	assert.Len(t, removed, 5)
	for _, tile := range removed {
		assert.Equal(t, 4, tile.Y)
	}
	assert.Len(t, m.Surfaces(), 2)
	assert.Equal(t, 8, m.NodeCount())
	requirePartition(t, m)
}

func TestModel_PruneEmptyAndClear(t *testing.T) {
	t.Parallel()

	m, g := newTestModel(t)
	assert.Nil(t, m.Prune(TileToPosition(Tile{0, 0}, 0, m.settings.TileSize), 1))

	g.fill(Tile{0, 0}, Tile{3, 3}, 0)
	scanAt(m, Tile{1, 1}, 0, 1.0)
	require.NotZero(t, m.NodeCount())

	m.Clear()
	assert.Zero(t, m.NodeCount())
	assert.Empty(t, m.Surfaces())
	_, ok := m.SurfaceAt(Tile{0, 0})
	assert.False(t, ok)

	scanAt(m, Tile{1, 1}, 0, 1.0)
	assert.Equal(t, 16, m.NodeCount())
	requirePartition(t, m)
}

func TestModel_RandomPositions(t *testing.T) {
	t.Parallel()

	m := layoutModel(t, "00000000000")
	rnd := rand.New(rand.NewPCG(1, 2))

	_, ok := NewModel(DefaultModelSettings(), newGridSampler(0.15)).FindRandomPosition(rnd)
	assert.False(t, ok)

	seen := make(map[Tile]bool)
	for range 200 {
		p, ok := m.FindRandomPosition(rnd)
		require.True(t, ok)
		tile := PositionToTile(p, m.settings.TileSize)
		_, live := m.tree.Get(tile)
		require.True(t, live, "random position %v is not on a tile", p)
		seen[tile] = true
	}
	assert.Greater(t, len(seen), 5, "positions should spread over the mesh")

	for range 50 {
		p, ok := m.FindRandomPositionInRange(rnd, TileToPosition(Tile{0, 0}, 0, m.settings.TileSize), 0.2)
		require.True(t, ok)
		assert.LessOrEqual(t, PositionToTile(p, m.settings.TileSize).X, 2)
	}
	_, ok = m.FindRandomPositionInRange(rnd, TileToPosition(Tile{0, 50}, 0, m.settings.TileSize), 0.2)
	assert.False(t, ok)
}

func TestModel_SnapshotRestore(t *testing.T) {
	t.Parallel()

	m := layoutModel(t,
		"000..111",
		"000..111",
		"........",
		"22222222",
	)
	snap := m.Snapshot()
	assert.Len(t, snap.Nodes, 20)
	assert.InDelta(t, 20*0.0225, snap.Area(), 1e-5)

	other, _ := newTestModel(t)
	require.NoError(t, other.Restore(snap))
	if diff := cmp.Diff(snap, other.Snapshot()); diff != "" {
		t.Errorf("restored snapshot differs (-want +got):\n%s", diff)
	}
	assert.Len(t, other.Surfaces(), 3)
	requirePartition(t, other)

	bad := snap
	bad.Settings.TileSize = 0.3
	assert.ErrorIs(t, other.Restore(bad), ErrSnapshotMismatch)
	assert.Equal(t, 20, other.NodeCount(), "failed restore leaves the model untouched")
}
