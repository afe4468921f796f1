package navmesh_test

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/arnav/internal/navmesh"
	"github.com/Faultbox/arnav/internal/scene"
	"github.com/Faultbox/arnav/pkg/math"
)

// room is a 2x2 m floor centred on the origin.
func room() *scene.Scene {
	return &scene.Scene{
		Boxes: []scene.Box{{Name: "floor", Min: [3]float32{-1, -0.1, -1}, Max: [3]float32{1, 0, 1}}},
	}
}

// platforms are two floating 1x1 m boxes, 0.3 m apart and 0.5 m apart in height.
func platforms() *scene.Scene {
	return &scene.Scene{
		Boxes: []scene.Box{
			{Name: "low", Min: [3]float32{0, -0.1, 0}, Max: [3]float32{1, 0, 1}},
			{Name: "high", Min: [3]float32{1.3, 0.4, 0}, Max: [3]float32{2.3, 0.5, 1}},
		},
	}
}

func newNavMesh(t *testing.T, s *scene.Scene) *navmesh.LightshipNavMesh {
	t.Helper()
	nav, err := navmesh.New(navmesh.DefaultModelSettings(), s, navmesh.WithRand(rand.New(rand.NewPCG(7, 11))))
	require.NoError(t, err)
	return nav
}

func TestRoomScan(t *testing.T) {
	t.Parallel()

	nav := newNavMesh(t, room())
	deleted := nav.Scan(math.Vec3{X: 0, Y: 1, Z: 0}, 1.5)

	assert.Empty(t, deleted)
	assert.Equal(t, 14*14, nav.NodeCount())
	assert.InDelta(t, 4.0, nav.Area(), 0.5)
	require.Len(t, nav.Surfaces(), 1)
	assert.InDelta(t, 0, nav.Surfaces()[0].Elevation(), 1e-6)

	p, ok := nav.CalculatePath(math.Vec3{X: -0.9, Z: -0.9}, math.Vec3{X: 0.9, Z: 0.9}, navmesh.DefaultAgentConfiguration())
	require.True(t, ok)
	assert.Equal(t, navmesh.PathComplete, p.Status)
	assert.Zero(t, p.Jumps())
	assert.True(t, nav.CheckFit(math.Vec3{}, 0.5))
	assert.True(t, nav.IsOnNavMesh(math.Vec3{X: 0.5, Y: 0.05, Z: -0.5}, 0.1))
	assert.False(t, nav.IsOnNavMesh(math.Vec3{X: 1.5, Y: 0, Z: 0}, 0.1))

	hit, ok := nav.RayCast(math.NewRay(math.Vec3{X: 0, Y: 1.6, Z: 0}, math.Vec3{X: 0.3, Y: -1, Z: 0.2}))
	require.True(t, ok)
	assert.InDelta(t, 0, hit.Y, 1e-5)
	assert.InDelta(t, 0.48, hit.X, 1e-3)
}

func TestRoomRescanIsIdempotent(t *testing.T) {
	t.Parallel()

	nav := newNavMesh(t, room())
	origin := math.Vec3{X: 0.2, Y: 1.2, Z: -0.1}
	nav.Scan(origin, 1.5)
	before := nav.Snapshot()
	area := nav.Area()

	assert.Empty(t, nav.Scan(origin, 1.5))
	if diff := cmp.Diff(before, nav.Snapshot()); diff != "" {
		t.Errorf("rescan changed the mesh (-before +after):\n%s", diff)
	}
	assert.Equal(t, area, nav.Area())
	assert.Len(t, nav.Surfaces(), 1)
}

func TestRoomPrune(t *testing.T) {
	t.Parallel()

	nav := newNavMesh(t, room())
	nav.Scan(math.Vec3{Y: 1}, 1.5)
	total := nav.NodeCount()
	area := nav.Area()
	tileArea := nav.Settings().TileArea()

	removed := nav.Prune(math.Vec3{}, 0.5)
	assert.Len(t, removed, total-81)
	assert.Equal(t, 81, nav.NodeCount())
	assert.InDelta(t, area-float32(len(removed))*tileArea, nav.Area(), 1e-4)
	for _, tile := range removed {
		assert.Greater(t, tile.Chebyshev(navmesh.Tile{}), 4)
	}
	for _, n := range nav.Snapshot().Nodes {
		assert.LessOrEqual(t, n.Tile.Chebyshev(navmesh.Tile{}), 4)
	}

	assert.Empty(t, nav.Prune(math.Vec3{}, 0.5), "second prune removes nothing")

	nav.Clear()
	assert.Zero(t, nav.NodeCount())
	assert.Zero(t, nav.Area())
	assert.Empty(t, nav.Surfaces())
	_, ok := nav.FindNearestFreePosition(math.Vec3{})
	assert.False(t, ok)
	_, ok = nav.FindRandomPosition()
	assert.False(t, ok)
}

func TestPlatformJump(t *testing.T) {
	t.Parallel()

	nav := newNavMesh(t, platforms())
	nav.Scan(math.Vec3{X: 1.15, Y: 1, Z: 0.5}, 1.5)
	require.Len(t, nav.Surfaces(), 2)
	assert.Equal(t, 7*7+6*7, nav.NodeCount())

	from := math.Vec3{X: 0.5, Y: 0, Z: 0.5}
	to := math.Vec3{X: 1.8, Y: 0.5, Z: 0.5}

	for _, b := range []navmesh.PathFindingBehaviour{navmesh.InterSurfacePreferResults, navmesh.InterSurfacePreferPerformance} {
		agent := navmesh.AgentConfiguration{JumpDistance: 1, JumpPenalty: 2, Behaviour: b}
		p, ok := nav.CalculatePath(from, to, agent)
		require.True(t, ok, b.String())
		assert.Equal(t, navmesh.PathComplete, p.Status, b.String())
		assert.Equal(t, 1, p.Jumps(), b.String())

		var entry navmesh.Waypoint
		for _, w := range p.Waypoints {
			if w.Type == navmesh.SurfaceEntry {
				entry = w
			}
		}
		assert.InDelta(t, 0.5, entry.Position.Y, 1e-5)
		assert.GreaterOrEqual(t, entry.Position.X, float32(1.3))
		last := p.Waypoints[len(p.Waypoints)-1]
		assert.Equal(t, navmesh.PositionToTile(to, nav.Settings().TileSize), last.Tile)
	}

	_, ok := nav.CalculatePath(from, to, navmesh.AgentConfiguration{JumpDistance: 1, Behaviour: navmesh.SingleSurface})
	assert.False(t, ok, "single surface agents cannot reach the other platform")

	_, ok = nav.CalculatePath(from, to, navmesh.AgentConfiguration{JumpDistance: 0.2, Behaviour: navmesh.InterSurfacePreferResults})
	assert.False(t, ok, "the gap is wider than the jump")
}

func TestRandomPositionsStayOnMesh(t *testing.T) {
	t.Parallel()

	nav := newNavMesh(t, platforms())
	nav.Scan(math.Vec3{X: 1.15, Y: 1, Z: 0.5}, 1.5)

	for range 100 {
		p, ok := nav.FindRandomPosition()
		require.True(t, ok)
		assert.True(t, nav.IsOnNavMesh(p, 0.01), "%v", p)
	}
	for range 50 {
		p, ok := nav.FindRandomPositionInRange(math.Vec3{X: 0.5, Z: 0.5}, 0.3)
		require.True(t, ok)
		assert.InDelta(t, 0, p.Y, 1e-5, "only the low platform is within range")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	nav := newNavMesh(t, platforms())
	nav.Scan(math.Vec3{X: 1.15, Y: 1, Z: 0.5}, 1.5)
	snap := nav.Snapshot()

	restored := newNavMesh(t, &scene.Scene{})
	require.NoError(t, restored.Restore(snap))
	assert.Equal(t, nav.NodeCount(), restored.NodeCount())
	assert.Equal(t, nav.Area(), restored.Area())
	assert.Len(t, restored.Surfaces(), 2)
	if diff := cmp.Diff(snap, restored.Snapshot()); diff != "" {
		t.Errorf("restore differs (-want +got):\n%s", diff)
	}
}
