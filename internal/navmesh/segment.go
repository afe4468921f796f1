package navmesh

import (
	"slices"
)

// connected reports whether two live nodes may belong to the same surface.
func (m *Model) connected(a, b int) bool {
	return absf(m.tree.Node(a).Elevation-m.tree.Node(b).Elevation) <= m.settings.StepHeight
}

// attach puts a detached node into a surface: the largest orthogonally
// adjacent surface within step height, merging any other such surfaces into
// it, or a new surface when none qualifies.
func (m *Model) attach(idx int) {
	tile := m.tree.Node(idx).Tile

	var ids []int
	m.tree.Neighbours(tile, orthogonal[:], func(n int) {
		s := m.surfaceOf(n)
		if s == nil || !m.connected(idx, n) || slices.Contains(ids, s.id) {
			return
		}
		ids = append(ids, s.id)
	})

	if len(ids) == 0 {
		s := m.newSurface()
		s.add(idx)
		m.setOwner(idx, s.id)
		return
	}

	target := m.surfaces[ids[0]]
	for _, id := range ids[1:] {
		s := m.surfaces[id]
		if s.Len() > target.Len() || (s.Len() == target.Len() && s.id < target.id) {
			target = s
		}
	}
	target.add(idx)
	m.setOwner(idx, target.id)
	for _, id := range ids {
		if id != target.id {
			m.merge(m.surfaces[id], target)
		}
	}
}

// detach removes a node from its surface and marks the surface for
// re-segmentation, since the node may have been a bridge.
func (m *Model) detach(idx int) {
	s := m.surfaceOf(idx)
	if s == nil {
		return
	}
	s.remove(idx)
	m.owner[idx] = -1
	m.dirty[s.id] = struct{}{}
}

// merge moves every member of src into dst and destroys src.
func (m *Model) merge(src, dst *Surface) {
	for idx := range src.members {
		dst.add(idx)
		m.owner[idx] = dst.id
	}
	delete(m.surfaces, src.id)
	if _, ok := m.dirty[src.id]; ok {
		delete(m.dirty, src.id)
		m.dirty[dst.id] = struct{}{}
	}
}

func (m *Model) newSurface() *Surface {
	s := newSurface(m.nextID, m.tree)
	m.nextID++
	m.surfaces[s.id] = s
	return s
}

// resegment splits every dirty surface into its connected components and
// destroys empty surfaces. The largest component keeps the surface ID.
func (m *Model) resegment() {
	if len(m.dirty) == 0 {
		return
	}
	ids := make([]int, 0, len(m.dirty))
	for id := range m.dirty {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	m.dirty = make(map[int]struct{})

	for _, id := range ids {
		s := m.surfaces[id]
		if s == nil {
			continue
		}
		if s.IsEmpty() {
			delete(m.surfaces, id)
			continue
		}
		comps := m.components(s)
		if len(comps) < 2 {
			continue
		}

		keep := 0
		for i, c := range comps {
			if len(c) > len(comps[keep]) {
				keep = i
			}
		}
		for i, c := range comps {
			if i == keep {
				continue
			}
			split := m.newSurface()
			for _, idx := range c {
				s.remove(idx)
				split.add(idx)
				m.owner[idx] = split.id
			}
		}
	}
}

// components flood-fills a surface. Components are returned in the order of
// their lowest tile so splits are deterministic.
func (m *Model) components(s *Surface) [][]int {
	seen := make(map[int]struct{}, s.Len())
	var comps [][]int
	var stack []int
	for _, start := range s.sortedIndices() {
		if _, ok := seen[start]; ok {
			continue
		}
		var comp []int
		seen[start] = struct{}{}
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, cur)
			m.tree.Neighbours(m.tree.Node(cur).Tile, orthogonal[:], func(n int) {
				if _, ok := seen[n]; ok || !s.has(n) || !m.connected(cur, n) {
					return
				}
				seen[n] = struct{}{}
				stack = append(stack, n)
			})
		}
		comps = append(comps, comp)
	}
	return comps
}
