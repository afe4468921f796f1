package navmesh

import (
	"slices"
)

// Surface is a connected set of walkable tiles sharing an elevation plane.
// Adjacent members differ in elevation by at most the model's StepHeight.
//
// A Surface is owned by its Model. The exported methods are read-only and
// reflect the model state at the time of the call.
type Surface struct {
	id      int
	tree    *SpatialTree
	members map[int]struct{} // arena indices
	elevSum float64
}

func newSurface(id int, tree *SpatialTree) *Surface {
	return &Surface{id: id, tree: tree, members: make(map[int]struct{})}
}

// ID returns the surface identifier, unique within a model.
func (s *Surface) ID() int {
	return s.id
}

// Len returns the number of member tiles.
func (s *Surface) Len() int {
	return len(s.members)
}

// IsEmpty reports whether the surface has no members.
func (s *Surface) IsEmpty() bool {
	return len(s.members) == 0
}

// Elevation returns the mean elevation of the members.
func (s *Surface) Elevation() float32 {
	if len(s.members) == 0 {
		return 0
	}
	return float32(s.elevSum / float64(len(s.members)))
}

// Contains reports whether tile is a member.
func (s *Surface) Contains(tile Tile) bool {
	idx, ok := s.tree.Lookup(tile)
	if !ok {
		return false
	}
	return s.has(idx)
}

// Tiles returns the member tiles ordered by Y, then X.
func (s *Surface) Tiles() []Tile {
	out := make([]Tile, 0, len(s.members))
	for idx := range s.members {
		out = append(out, s.tree.Node(idx).Tile)
	}
	slices.SortFunc(out, compareTiles)
	return out
}

// Nodes returns copies of the member nodes ordered by tile.
func (s *Surface) Nodes() []GridNode {
	out := make([]GridNode, 0, len(s.members))
	for idx := range s.members {
		out = append(out, s.tree.Node(idx))
	}
	slices.SortFunc(out, func(a, b GridNode) int { return compareTiles(a.Tile, b.Tile) })
	return out
}

// Bounds returns the inclusive tile rectangle covering the surface.
func (s *Surface) Bounds() (lo, hi Tile) {
	first := true
	for idx := range s.members {
		t := s.tree.Node(idx).Tile
		if first {
			lo, hi = t, t
			first = false
			continue
		}
		lo = Tile{min(lo.X, t.X), min(lo.Y, t.Y)}
		hi = Tile{max(hi.X, t.X), max(hi.Y, t.Y)}
	}
	return lo, hi
}

func (s *Surface) has(idx int) bool {
	_, ok := s.members[idx]
	return ok
}

func (s *Surface) add(idx int) {
	s.members[idx] = struct{}{}
	s.elevSum += float64(s.tree.Node(idx).Elevation)
}

func (s *Surface) remove(idx int) {
	if _, ok := s.members[idx]; !ok {
		return
	}
	delete(s.members, idx)
	s.elevSum -= float64(s.tree.Node(idx).Elevation)
	if len(s.members) == 0 {
		s.elevSum = 0
	}
}

// sortedIndices returns the members ordered by tile, for deterministic walks.
func (s *Surface) sortedIndices() []int {
	out := make([]int, 0, len(s.members))
	for idx := range s.members {
		out = append(out, idx)
	}
	slices.SortFunc(out, func(a, b int) int {
		return compareTiles(s.tree.Node(a).Tile, s.tree.Node(b).Tile)
	})
	return out
}

func compareTiles(a, b Tile) int {
	switch {
	case a == b:
		return 0
	case a.less(b):
		return -1
	default:
		return 1
	}
}
