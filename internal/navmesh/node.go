package navmesh

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/arnav/pkg/math"
)

// Tile is an integer grid coordinate. X follows world X, Y follows world Z.
type Tile struct {
	X, Y int
}

// String returns the tile as "(x,y)".
func (t Tile) String() string {
	return fmt.Sprintf("(%d,%d)", t.X, t.Y)
}

// Add returns t offset by d.
func (t Tile) Add(d Tile) Tile {
	return Tile{t.X + d.X, t.Y + d.Y}
}

// Chebyshev returns the chessboard distance between two tiles.
func (t Tile) Chebyshev(o Tile) int {
	return max(abs(t.X-o.X), abs(t.Y-o.Y))
}

// DistanceSq returns the squared Euclidean distance between two tiles.
func (t Tile) DistanceSq(o Tile) int {
	dx, dy := t.X-o.X, t.Y-o.Y
	return dx*dx + dy*dy
}

// less orders tiles by Y, then X. Used wherever ties need a stable answer.
func (t Tile) less(o Tile) bool {
	if t.Y != o.Y {
		return t.Y < o.Y
	}
	return t.X < o.X
}

// Neighbour offsets. The first four are the orthogonal directions.
var (
	orthogonal = [4]Tile{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	octagonal  = [8]Tile{{1, 0}, {0, 1}, {-1, 0}, {0, -1}, {1, 1}, {-1, 1}, {-1, -1}, {1, -1}}
)

// PositionToTile returns the tile containing a world position.
func PositionToTile(pos math.Vec3, tileSize float32) Tile {
	return Tile{
		X: int(gomath.Floor(float64(pos.X / tileSize))),
		Y: int(gomath.Floor(float64(pos.Z / tileSize))),
	}
}

// TileToPosition returns the world position of a tile centre at the given elevation.
func TileToPosition(t Tile, elevation, tileSize float32) math.Vec3 {
	return math.Vec3{
		X: (float32(t.X) + 0.5) * tileSize,
		Y: elevation,
		Z: (float32(t.Y) + 0.5) * tileSize,
	}
}

// GridNode is the record of one walkable tile.
type GridNode struct {
	Tile      Tile
	Elevation float32 // Mean kernel height in meters
	Deviation float32 // Std-dev of kernel heights
	Slope     float32 // Degrees, from the kernel plane fit
}

// Position returns the world position of the node's tile centre.
func (n GridNode) Position(tileSize float32) math.Vec3 {
	return TileToPosition(n.Tile, n.Elevation, tileSize)
}

// sameAs reports whether a rescan produced the exact same classification.
func (n GridNode) sameAs(o GridNode) bool {
	return n.Tile == o.Tile && n.Elevation == o.Elevation && n.Deviation == o.Deviation && n.Slope == o.Slope
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
