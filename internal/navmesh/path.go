package navmesh

import (
	"fmt"

	"github.com/Faultbox/arnav/pkg/math"
)

// MovementType tags how a waypoint is reached.
type MovementType int

const (
	// Walk reaches the waypoint along contiguous walkable tiles.
	Walk MovementType = iota
	// SurfaceEntry reaches the waypoint by jumping onto a new surface.
	SurfaceEntry
)

// String returns the movement type name.
func (t MovementType) String() string {
	switch t {
	case Walk:
		return "Walk"
	case SurfaceEntry:
		return "SurfaceEntry"
	default:
		return fmt.Sprintf("MovementType(%d)", int(t))
	}
}

// Waypoint is one step of a path.
type Waypoint struct {
	Position math.Vec3
	Tile     Tile
	Type     MovementType
}

// PathStatus reports the outcome of a path query.
type PathStatus int

const (
	// PathInvalid means no path satisfies the constraints.
	PathInvalid PathStatus = iota
	// PathComplete means the path ends at the requested destination.
	PathComplete
	// PathPartial means the path ends at the closest reachable point instead.
	PathPartial
)

// String returns the status name.
func (s PathStatus) String() string {
	switch s {
	case PathInvalid:
		return "PathInvalid"
	case PathComplete:
		return "PathComplete"
	case PathPartial:
		return "PathPartial"
	default:
		return fmt.Sprintf("PathStatus(%d)", int(s))
	}
}

// Path is the result of a path query. It is owned by the caller.
type Path struct {
	Waypoints []Waypoint
	Status    PathStatus
}

// InvalidPath is the empty result returned when no path exists.
var InvalidPath = Path{Status: PathInvalid}

// Jumps returns the number of SurfaceEntry waypoints.
func (p Path) Jumps() int {
	n := 0
	for _, w := range p.Waypoints {
		if w.Type == SurfaceEntry {
			n++
		}
	}
	return n
}

// Length returns the summed world distance between consecutive waypoints.
func (p Path) Length() float32 {
	var total float32
	for i := 1; i < len(p.Waypoints); i++ {
		total += p.Waypoints[i-1].Position.Distance(p.Waypoints[i].Position)
	}
	return total
}
