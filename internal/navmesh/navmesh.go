package navmesh

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/Faultbox/arnav/internal/logger"
	"github.com/Faultbox/arnav/pkg/math"
)

// ErrNilSampler is returned by New without a height sampler.
var ErrNilSampler = errors.New("height sampler is required")

// LightshipNavMesh is the public entry point: a navigation model fed by
// periodic scans plus the path finder that queries it.
//
// All methods must be called from one goroutine.
type LightshipNavMesh struct {
	settings    ModelSettings
	model       *Model
	pathFinding *PathFinding
	rnd         *rand.Rand
	area        float32
}

// Option configures a LightshipNavMesh.
type Option func(*LightshipNavMesh)

// WithRand sets the random source used by the random position queries.
func WithRand(rnd *rand.Rand) Option {
	return func(n *LightshipNavMesh) {
		n.rnd = rnd
	}
}

// New validates settings and creates an empty navigation mesh sampling
// geometry through sampler.
func New(settings ModelSettings, sampler HeightSampler, opts ...Option) (*LightshipNavMesh, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model settings: %w", err)
	}
	if sampler == nil {
		return nil, ErrNilSampler
	}

	model := NewModel(settings, sampler)
	n := &LightshipNavMesh{
		settings:    settings,
		model:       model,
		pathFinding: NewPathFinding(model),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.rnd == nil {
		n.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	logger.Info("navmesh created",
		zap.Float32("tileSize", settings.TileSize),
		zap.Int("kernelSize", settings.KernelSize),
		zap.Float32("stepHeight", settings.StepHeight),
		zap.Float32("maxSlope", settings.MaxSlope),
	)
	return n, nil
}

// Settings returns the model settings.
func (n *LightshipNavMesh) Settings() ModelSettings {
	return n.settings
}

// Area returns the total walkable area in square meters.
func (n *LightshipNavMesh) Area() float32 {
	return n.area
}

// NodeCount returns the number of walkable tiles.
func (n *LightshipNavMesh) NodeCount() int {
	return n.model.NodeCount()
}

// Surfaces returns the current surfaces ordered by ID.
func (n *LightshipNavMesh) Surfaces() []*Surface {
	return n.model.Surfaces()
}

// Model returns the underlying model for read-only inspection.
func (n *LightshipNavMesh) Model() *Model {
	return n.model
}

// Scan samples the environment within rng of origin and returns the tiles
// that stopped being walkable.
func (n *LightshipNavMesh) Scan(origin math.Vec3, rng float32) []Tile {
	deleted := n.model.Scan(origin, rng)
	n.updateArea()
	return deleted
}

// Clear removes every tile and surface.
func (n *LightshipNavMesh) Clear() {
	n.model.Clear()
	n.updateArea()
}

// Prune evicts tiles farther than rng from origin and returns them.
// Paths through evicted tiles are not invalidated; callers must not prune
// while such a path is still in use.
func (n *LightshipNavMesh) Prune(origin math.Vec3, rng float32) []Tile {
	removed := n.model.Prune(origin, rng)
	n.updateArea()
	return removed
}

// IsOnNavMesh reports whether position is over a walkable tile and within
// distance of its elevation.
func (n *LightshipNavMesh) IsOnNavMesh(position math.Vec3, distance float32) bool {
	return n.pathFinding.IsOnNavMesh(position, distance)
}

// FindNearestFreePosition returns the walkable tile centre nearest to source.
func (n *LightshipNavMesh) FindNearestFreePosition(source math.Vec3) (math.Vec3, bool) {
	return n.pathFinding.FindNearestFreePosition(source)
}

// FindNearestFreePositionInRange returns the walkable tile centre nearest to
// source within rng.
func (n *LightshipNavMesh) FindNearestFreePositionInRange(source math.Vec3, rng float32) (math.Vec3, bool) {
	return n.pathFinding.FindNearestFreePositionInRange(source, rng)
}

// FindRandomPosition returns a random walkable tile centre.
func (n *LightshipNavMesh) FindRandomPosition() (math.Vec3, bool) {
	return n.model.FindRandomPosition(n.rnd)
}

// FindRandomPositionInRange returns a random walkable tile centre within rng of center.
func (n *LightshipNavMesh) FindRandomPositionInRange(center math.Vec3, rng float32) (math.Vec3, bool) {
	return n.model.FindRandomPositionInRange(n.rnd, center, rng)
}

// CheckFit reports whether a square footprint fits on a single surface.
func (n *LightshipNavMesh) CheckFit(center math.Vec3, size float32) bool {
	return n.pathFinding.CheckFit(center, size)
}

// RayCast returns the closest point where ray meets a walkable surface.
func (n *LightshipNavMesh) RayCast(ray math.Ray) (math.Vec3, bool) {
	return n.pathFinding.RayCast(ray)
}

// CalculatePath finds a path from one world position to another.
func (n *LightshipNavMesh) CalculatePath(from, to math.Vec3, agent AgentConfiguration) (Path, bool) {
	return n.pathFinding.CalculatePath(from, to, agent)
}

// Snapshot captures the walkable tiles.
func (n *LightshipNavMesh) Snapshot() Snapshot {
	return n.model.Snapshot()
}

// Restore replaces the model contents with a snapshot.
func (n *LightshipNavMesh) Restore(snap Snapshot) error {
	if err := n.model.Restore(snap); err != nil {
		return err
	}
	n.updateArea()
	return nil
}

func (n *LightshipNavMesh) updateArea() {
	n.area = n.settings.TileArea() * float32(n.model.NodeCount())
}
