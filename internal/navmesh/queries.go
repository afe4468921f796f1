package navmesh

import (
	gomath "math"

	"github.com/Faultbox/arnav/pkg/math"
)

// FindNearestFreePosition returns the centre of the walkable tile nearest to
// source, searching the whole model.
func (pf *PathFinding) FindNearestFreePosition(source math.Vec3) (math.Vec3, bool) {
	tree := pf.model.tree
	idx, ok := tree.Nearest(PositionToTile(source, pf.model.settings.TileSize))
	if !ok {
		return math.Vec3{}, false
	}
	return tree.Node(idx).Position(pf.model.settings.TileSize), true
}

// FindNearestFreePositionInRange is FindNearestFreePosition limited to the
// square window of half-extent rng around source.
func (pf *PathFinding) FindNearestFreePositionInRange(source math.Vec3, rng float32) (math.Vec3, bool) {
	tree := pf.model.tree
	s := pf.model.settings
	idx, ok := tree.NearestInRange(PositionToTile(source, s.TileSize), s.TilesInRange(rng))
	if !ok {
		return math.Vec3{}, false
	}
	return tree.Node(idx).Position(s.TileSize), true
}

// IsOnNavMesh reports whether position lies over a walkable tile and within
// distance of its elevation.
func (pf *PathFinding) IsOnNavMesh(position math.Vec3, distance float32) bool {
	node, ok := pf.model.tree.Get(PositionToTile(position, pf.model.settings.TileSize))
	if !ok {
		return false
	}
	return absf(position.Y-node.Elevation) <= distance
}

// fitEpsilon is the CheckFit edge tolerance, in tiles.
const fitEpsilon = 1e-4

// CheckFit reports whether a square footprint of edge size centred at center
// lies entirely on one surface. Every tile the footprint touches must be
// walkable and belong to the same surface.
func (pf *PathFinding) CheckFit(center math.Vec3, size float32) bool {
	if !(size > 0) {
		return false
	}
	ts := float64(pf.model.settings.TileSize)
	half := float64(size) / 2 / ts

	// Tiles intersecting the open square (c-half, c+half), in tile units.
	// The edges are pulled in by fitEpsilon so a footprint covering whole
	// tiles does not pick up a neighbour through float32 rounding.
	cx, cz := float64(center.X)/ts, float64(center.Z)/ts
	x0 := int(gomath.Floor(cx - half + fitEpsilon))
	x1 := int(gomath.Ceil(cx+half-fitEpsilon)) - 1
	y0 := int(gomath.Floor(cz - half + fitEpsilon))
	y1 := int(gomath.Ceil(cz+half-fitEpsilon)) - 1

	var surface *Surface
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			idx, ok := pf.model.tree.Lookup(Tile{x, y})
			if !ok {
				return false
			}
			s := pf.model.surfaceOf(idx)
			if surface == nil {
				surface = s
			} else if s != surface {
				return false
			}
		}
	}
	return surface != nil
}

// RayCast intersects ray with every surface's elevation plane, keeping only
// hits over a tile of that surface, and returns the closest hit.
func (pf *PathFinding) RayCast(ray math.Ray) (math.Vec3, bool) {
	ts := pf.model.settings.TileSize
	var (
		best  math.Vec3
		bestT float32
		found bool
	)
	for _, s := range pf.model.Surfaces() {
		t, ok := ray.IntersectPlaneY(s.Elevation())
		if !ok || (found && t >= bestT) {
			continue
		}
		p := ray.At(t)
		if !s.Contains(PositionToTile(p, ts)) {
			continue
		}
		best, bestT, found = p, t, true
	}
	return best, found
}
