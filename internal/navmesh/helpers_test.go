package navmesh

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Faultbox/arnav/pkg/math"
)

// gridSampler returns one fixed height per tile centre.
type gridSampler struct {
	tileSize float32
	heights  map[Tile]float32
}

func newGridSampler(tileSize float32) *gridSampler {
	return &gridSampler{tileSize: tileSize, heights: make(map[Tile]float32)}
}

func (g *gridSampler) SampleHeight(origin math.Vec3, _ LayerMask) (float32, bool) {
	h, ok := g.heights[PositionToTile(origin, g.tileSize)]
	if !ok || h > origin.Y {
		return 0, false
	}
	return h, true
}

// fill sets every tile of the inclusive rectangle [lo, hi] to height h.
func (g *gridSampler) fill(lo, hi Tile, h float32) {
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			g.heights[Tile{x, y}] = h
		}
	}
}

func (g *gridSampler) clear(lo, hi Tile) {
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			delete(g.heights, Tile{x, y})
		}
	}
}

// layoutModel builds a model from rows of characters: '.' is empty and a
// digit d is a walkable tile at elevation d*0.5. Row i is tile Y = i and
// column j is tile X = j.
func layoutModel(t *testing.T, rows ...string) *Model {
	t.Helper()
	settings := DefaultModelSettings()
	m := NewModel(settings, newGridSampler(settings.TileSize))

	var nodes []GridNode
	for y, row := range rows {
		for x, c := range row {
			if c == '.' {
				continue
			}
			require.True(t, c >= '0' && c <= '9', "bad layout character %q", c)
			nodes = append(nodes, GridNode{Tile: Tile{x, y}, Elevation: float32(c-'0') * 0.5})
		}
	}
	require.NoError(t, m.Restore(Snapshot{Settings: settings, Nodes: nodes}))
	requirePartition(t, m)
	return m
}

// tileCenter returns the world position of a tile of a layout model.
func tileCenter(m *Model, x, y int) math.Vec3 {
	tile := Tile{x, y}
	if n, ok := m.tree.Get(tile); ok {
		return n.Position(m.settings.TileSize)
	}
	return TileToPosition(tile, 0, m.settings.TileSize)
}

// requirePartition checks that the surfaces partition the live nodes into
// maximal step-connected components.
func requirePartition(t *testing.T, m *Model) {
	t.Helper()

	seen := make(map[int]int)
	for _, s := range m.Surfaces() {
		require.False(t, s.IsEmpty(), "surface %d is empty", s.ID())
		for idx := range s.members {
			prev, dup := seen[idx]
			require.False(t, dup, "node %v in surfaces %d and %d", m.tree.Node(idx).Tile, prev, s.ID())
			seen[idx] = s.ID()
			require.Equal(t, s.ID(), m.owner[idx], "owner of %v", m.tree.Node(idx).Tile)
		}
		require.Len(t, m.components(s), 1, "surface %d is not connected", s.ID())
	}
	require.Equal(t, m.tree.Len(), len(seen), "nodes without a surface")

	for i := 0; i < m.tree.Len(); i++ {
		idx := m.tree.At(i)
		for _, n := range m.tree.Neighbours4(m.tree.Node(idx).Tile) {
			if m.connected(idx, n) {
				require.Equal(t, m.owner[idx], m.owner[n],
					"connected neighbours %v and %v in different surfaces", m.tree.Node(idx).Tile, m.tree.Node(n).Tile)
			}
		}
	}
}
