package navmesh

// searchState identifies a search node. Air is 0 while standing on a
// surface, otherwise the number of unsupported tiles crossed so far in the
// current jump. From is the surface the jump left, -1 while supported.
type searchState struct {
	Tile Tile
	Air  int
	From int
}

// pathNode is a node of the A* search.
type pathNode struct {
	state  searchState
	g      float32 // Cost from start
	h      float32 // Heuristic (estimated cost to goal)
	f      float32 // Total cost (g + h)
	seq    int     // Insertion order, last tie-break
	parent *pathNode
	index  int // Index in heap
	closed bool
}

// pathHeap implements a priority queue for A* pathfinding.
type pathHeap []*pathNode

func (h pathHeap) Len() int { return len(h) }

func (h pathHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.f != b.f {
		return a.f < b.f
	}
	if a.h != b.h {
		return a.h < b.h
	}
	return a.seq < b.seq
}

func (h pathHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *pathHeap) Push(x any) {
	n := len(*h)
	node := x.(*pathNode)
	node.index = n
	*h = append(*h, node)
}

func (h *pathHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[0 : n-1]
	return node
}
