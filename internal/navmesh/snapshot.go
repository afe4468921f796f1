package navmesh

import (
	"errors"
	"fmt"
	"slices"
)

// ErrSnapshotMismatch is returned when a snapshot was taken with a different tile size.
var ErrSnapshotMismatch = errors.New("snapshot tile size does not match model")

// Snapshot is a copy of every walkable tile of a model.
type Snapshot struct {
	Settings ModelSettings
	Nodes    []GridNode // ordered by tile
}

// Area returns the walkable area captured by the snapshot.
func (s Snapshot) Area() float32 {
	return s.Settings.TileArea() * float32(len(s.Nodes))
}

// Snapshot captures the live nodes.
func (m *Model) Snapshot() Snapshot {
	nodes := make([]GridNode, 0, m.tree.Len())
	for i := 0; i < m.tree.Len(); i++ {
		nodes = append(nodes, m.tree.Node(m.tree.At(i)))
	}
	slices.SortFunc(nodes, func(a, b GridNode) int { return compareTiles(a.Tile, b.Tile) })
	return Snapshot{Settings: m.settings, Nodes: nodes}
}

// Restore replaces the model contents with the snapshot nodes and rebuilds
// the surfaces from them.
func (m *Model) Restore(snap Snapshot) error {
	if snap.Settings.TileSize != m.settings.TileSize {
		return fmt.Errorf("%w: snapshot %v, model %v", ErrSnapshotMismatch, snap.Settings.TileSize, m.settings.TileSize)
	}
	m.Clear()
	for _, n := range snap.Nodes {
		m.upsert(n)
	}
	m.resegment()
	return nil
}
