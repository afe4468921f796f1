package navmesh

import (
	"container/heap"

	"go.uber.org/zap"

	"github.com/Faultbox/arnav/internal/logger"
	"github.com/Faultbox/arnav/pkg/math"
)

// Step costs. Diagonal is sqrt(2) rounded, as on the tile maps this grew from.
const (
	straightCost = float32(1.0)
	diagonalCost = float32(1.414)
)

// searchMode selects which transitions the A* search may take.
type searchMode int

const (
	walkOnly searchMode = iota
	straightJumps
	freeJumps
)

// PathFinding runs path and proximity queries against a Model.
type PathFinding struct {
	model *Model
}

// NewPathFinding creates a path finder reading from model.
func NewPathFinding(model *Model) *PathFinding {
	return &PathFinding{model: model}
}

// CalculatePath finds a path between two world positions. Both ends snap to
// the node under them, or to the nearest node when they are off the mesh.
func (pf *PathFinding) CalculatePath(from, to math.Vec3, agent AgentConfiguration) (Path, bool) {
	if err := agent.Validate(); err != nil {
		logger.Warn("rejecting path query", zap.Error(err))
		return InvalidPath, false
	}
	tree := pf.model.tree
	ts := pf.model.settings.TileSize

	start, ok := pf.resolve(from)
	if !ok {
		return InvalidPath, false
	}
	goalTile := PositionToTile(to, ts)
	goal, onMesh := tree.Lookup(goalTile)
	if !onMesh {
		goal, _ = tree.Nearest(goalTile)
	}

	startSurface := pf.model.surfaceOf(start)
	goalSurface := pf.model.surfaceOf(goal)
	status := PathComplete
	mode := walkOnly

	if startSurface != goalSurface {
		switch agent.Behaviour {
		case SingleSurface:
			if onMesh {
				return InvalidPath, false
			}
			goal = pf.nearestInSurface(startSurface, goalTile)
			status = PathPartial
		case InterSurfacePreferPerformance:
			mode = straightJumps
		case InterSurfacePreferResults:
			mode = freeJumps
		}
	}

	chain := pf.search(start, goal, mode, agent)
	if chain == nil {
		logger.Debug("no path",
			zap.Stringer("from", tree.Node(start).Tile),
			zap.Stringer("to", tree.Node(goal).Tile),
			zap.Stringer("behaviour", agent.Behaviour),
		)
		return InvalidPath, false
	}
	return Path{Waypoints: pf.waypoints(chain), Status: status}, true
}

// resolve snaps a world position to a node index.
func (pf *PathFinding) resolve(pos math.Vec3) (int, bool) {
	tile := PositionToTile(pos, pf.model.settings.TileSize)
	if idx, ok := pf.model.tree.Lookup(tile); ok {
		return idx, true
	}
	return pf.model.tree.Nearest(tile)
}

// nearestInSurface returns the member of s closest to target.
func (pf *PathFinding) nearestInSurface(s *Surface, target Tile) int {
	best, bestDist := -1, 0
	for idx := range s.members {
		best, bestDist = pf.model.tree.pickCloser(best, bestDist, idx, pf.model.tree.Node(idx).Tile, target)
	}
	return best
}

// maxAirSteps is the number of unsupported tiles a jump may cross.
func (pf *PathFinding) maxAirSteps(agent AgentConfiguration) int {
	return int(agent.JumpDistance/pf.model.settings.TileSize + 1e-4)
}

// search runs A* from start to goal and returns the node chain, start first.
func (pf *PathFinding) search(start, goal int, mode searchMode, agent AgentConfiguration) []*pathNode {
	tree := pf.model.tree
	goalTile := tree.Node(goal).Tile
	maxAir := pf.maxAirSteps(agent)

	openSet := &pathHeap{}
	heap.Init(openSet)
	nodes := make(map[searchState]*pathNode)
	seq := 0

	push := func(state searchState, g float32, parent *pathNode) {
		if n, ok := nodes[state]; ok {
			if n.closed || g >= n.g {
				return
			}
			n.g = g
			n.f = g + n.h
			n.parent = parent
			heap.Fix(openSet, n.index)
			return
		}
		n := &pathNode{state: state, g: g, h: octile(state.Tile, goalTile), parent: parent, seq: seq}
		n.f = n.g + n.h
		seq++
		nodes[state] = n
		heap.Push(openSet, n)
	}

	push(searchState{Tile: tree.Node(start).Tile, From: -1}, 0, nil)

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*pathNode)
		current.closed = true

		if current.state.Air == 0 && current.state.Tile == goalTile {
			return reconstruct(current)
		}

		if current.state.Air > 0 {
			pf.expandAirborne(current, maxAir, agent.JumpPenalty, push)
			continue
		}

		idx, _ := tree.Lookup(current.state.Tile)
		surface := pf.model.surfaceOf(idx)
		pf.expandWalk(current, idx, surface, push)

		switch mode {
		case freeJumps:
			pf.expandTakeOff(current, idx, surface, maxAir, agent.JumpPenalty, push)
		case straightJumps:
			if pf.onBoundary(current.state.Tile, surface) {
				pf.expandStraightJumps(current, surface, maxAir, agent.JumpPenalty, push)
			}
		}
	}

	return nil
}

type pushFunc func(state searchState, g float32, parent *pathNode)

// expandWalk adds the tiles reachable on foot: same surface, within step
// height, diagonals only when both orthogonal tiles are walkable too.
func (pf *PathFinding) expandWalk(current *pathNode, idx int, surface *Surface, push pushFunc) {
	tree := pf.model.tree
	tile := current.state.Tile
	for i, d := range octagonal {
		ni, ok := tree.Lookup(tile.Add(d))
		if !ok || !surface.has(ni) || !pf.model.connected(idx, ni) {
			continue
		}
		cost := straightCost
		if i >= 4 {
			if !surface.Contains(Tile{tile.X + d.X, tile.Y}) || !surface.Contains(Tile{tile.X, tile.Y + d.Y}) {
				continue
			}
			cost = diagonalCost
		}
		push(searchState{Tile: tile.Add(d), From: -1}, current.g+cost, current)
	}
}

// expandTakeOff leaves the surface: onto an adjacent surface directly, or
// into an unsupported tile.
func (pf *PathFinding) expandTakeOff(current *pathNode, idx int, surface *Surface, maxAir int, penalty float32, push pushFunc) {
	tree := pf.model.tree
	tile := current.state.Tile
	for i, d := range octagonal {
		cost := stepCost(i) + penalty
		next := tile.Add(d)
		if ni, ok := tree.Lookup(next); ok {
			if landing := pf.model.surfaceOf(ni); landing != nil && landing != surface {
				push(searchState{Tile: next, From: -1}, current.g+cost, current)
			}
			continue
		}
		if maxAir >= 1 {
			push(searchState{Tile: next, Air: 1, From: surface.id}, current.g+cost, current)
		}
	}
}

// expandAirborne continues a jump or lands on any surface but the one it left.
func (pf *PathFinding) expandAirborne(current *pathNode, maxAir int, penalty float32, push pushFunc) {
	tree := pf.model.tree
	s := current.state
	for i, d := range octagonal {
		cost := stepCost(i) + penalty
		next := s.Tile.Add(d)
		if ni, ok := tree.Lookup(next); ok {
			if landing := pf.model.surfaceOf(ni); landing != nil && landing.id != s.From {
				push(searchState{Tile: next, From: -1}, current.g+cost, current)
			}
			continue
		}
		if s.Air < maxAir {
			push(searchState{Tile: next, Air: s.Air + 1, From: s.From}, current.g+cost, current)
		}
	}
}

// expandStraightJumps launches a jump along each of the eight directions and
// lands on the first tile of another surface within the air budget.
func (pf *PathFinding) expandStraightJumps(current *pathNode, surface *Surface, maxAir int, penalty float32, push pushFunc) {
	tree := pf.model.tree
	tile := current.state.Tile
	for i, d := range octagonal {
		cost := stepCost(i) + penalty
		for k := 1; k <= maxAir+1; k++ {
			next := Tile{tile.X + k*d.X, tile.Y + k*d.Y}
			ni, ok := tree.Lookup(next)
			if !ok {
				continue
			}
			if landing := pf.model.surfaceOf(ni); landing != nil && landing != surface {
				push(searchState{Tile: next, From: -1}, current.g+float32(k)*cost, current)
			}
			break
		}
	}
}

// onBoundary reports whether tile has an orthogonal neighbour outside surface.
func (pf *PathFinding) onBoundary(tile Tile, surface *Surface) bool {
	for _, d := range orthogonal {
		if !surface.Contains(tile.Add(d)) {
			return true
		}
	}
	return false
}

// waypoints converts a search chain into supported waypoints. The first
// waypoint on a surface reached by a jump is tagged SurfaceEntry.
func (pf *PathFinding) waypoints(chain []*pathNode) []Waypoint {
	tree := pf.model.tree
	ts := pf.model.settings.TileSize
	out := make([]Waypoint, 0, len(chain))
	prevSurface := -1
	for _, n := range chain {
		if n.state.Air > 0 {
			continue
		}
		idx, _ := tree.Lookup(n.state.Tile)
		node := tree.Node(idx)
		surface := pf.model.owner[idx]

		typ := Walk
		if len(out) > 0 && surface != prevSurface {
			typ = SurfaceEntry
		}
		out = append(out, Waypoint{Position: node.Position(ts), Tile: node.Tile, Type: typ})
		prevSurface = surface
	}
	return out
}

func reconstruct(node *pathNode) []*pathNode {
	var chain []*pathNode
	for node != nil {
		chain = append(chain, node)
		node = node.parent
	}
	// built from goal to start
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

func stepCost(dir int) float32 {
	if dir >= 4 {
		return diagonalCost
	}
	return straightCost
}

// octile estimates the walking cost between two tiles. Penalties are left
// out so the estimate stays admissible.
func octile(a, b Tile) float32 {
	dx := abs(b.X - a.X)
	dy := abs(b.Y - a.Y)
	if dx < dy {
		return float32(dx)*diagonalCost + float32(dy-dx)*straightCost
	}
	return float32(dy)*diagonalCost + float32(dx-dy)*straightCost
}
