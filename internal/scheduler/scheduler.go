// Package scheduler drives periodic navmesh scans from the device pose.
package scheduler

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/arnav/internal/logger"
	"github.com/Faultbox/arnav/internal/navmesh"
	"github.com/Faultbox/arnav/pkg/math"
)

// Configuration errors.
var (
	ErrInvalidInterval   = errors.New("scan interval must not be negative")
	ErrInvalidScanRange  = errors.New("scan range must be positive")
	ErrInvalidPruneRange = errors.New("prune range must be zero or at least the scan range")
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// RealClock reads the wall clock.
type RealClock struct{}

// Now returns time.Now().
func (RealClock) Now() time.Time {
	return time.Now()
}

// PoseProvider reports the current scan origin, usually the camera position.
// ok is false while tracking is lost.
type PoseProvider interface {
	Pose() (position math.Vec3, ok bool)
}

// PoseFunc adapts a function to PoseProvider.
type PoseFunc func() (math.Vec3, bool)

// Pose calls f.
func (f PoseFunc) Pose() (math.Vec3, bool) {
	return f()
}

// Mesh is the part of the navmesh the scheduler writes to.
type Mesh interface {
	Scan(origin math.Vec3, rng float32) []navmesh.Tile
	Prune(origin math.Vec3, rng float32) []navmesh.Tile
}

// Config controls scan cadence and extents.
type Config struct {
	Interval   time.Duration // Minimum time between scans
	ScanRange  float32       // Half-extent of the scanned square in meters
	PruneRange float32       // Tiles farther than this are evicted, 0 disables
}

// DefaultConfig scans twice a second and keeps five meters around the device.
func DefaultConfig() Config {
	return Config{
		Interval:   500 * time.Millisecond,
		ScanRange:  1.5,
		PruneRange: 5,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Interval < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInterval, c.Interval)
	}
	if !(c.ScanRange > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidScanRange, c.ScanRange)
	}
	if c.PruneRange != 0 && !(c.PruneRange >= c.ScanRange) {
		return fmt.Errorf("%w: %v < %v", ErrInvalidPruneRange, c.PruneRange, c.ScanRange)
	}
	return nil
}

// ScanScheduler rate-limits scans of a Mesh. Call Update once per frame.
type ScanScheduler struct {
	cfg   Config
	mesh  Mesh
	poses PoseProvider
	clock Clock

	last  time.Time
	ran   bool
	scans int
}

// New creates a scheduler. A nil clock uses RealClock.
func New(cfg Config, mesh Mesh, poses PoseProvider, clock Clock) (*ScanScheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scan config: %w", err)
	}
	if mesh == nil || poses == nil {
		return nil, errors.New("scheduler needs a mesh and a pose provider")
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &ScanScheduler{cfg: cfg, mesh: mesh, poses: poses, clock: clock}, nil
}

// Config returns the scheduler configuration.
func (s *ScanScheduler) Config() Config {
	return s.cfg
}

// Scans returns the number of scans run so far.
func (s *ScanScheduler) Scans() int {
	return s.scans
}

// Update scans from the current pose when the interval has elapsed, then
// prunes. It returns every tile removed during this tick and whether a scan
// ran.
func (s *ScanScheduler) Update() ([]navmesh.Tile, bool) {
	now := s.clock.Now()
	if s.ran && now.Sub(s.last) < s.cfg.Interval {
		return nil, false
	}
	pose, ok := s.poses.Pose()
	if !ok {
		return nil, false
	}
	return s.run(now, pose), true
}

// Force scans immediately, ignoring the interval.
func (s *ScanScheduler) Force() ([]navmesh.Tile, bool) {
	pose, ok := s.poses.Pose()
	if !ok {
		return nil, false
	}
	return s.run(s.clock.Now(), pose), true
}

func (s *ScanScheduler) run(now time.Time, pose math.Vec3) []navmesh.Tile {
	removed := s.mesh.Scan(pose, s.cfg.ScanRange)
	if s.cfg.PruneRange > 0 {
		removed = append(removed, s.mesh.Prune(pose, s.cfg.PruneRange)...)
	}
	s.last = now
	s.ran = true
	s.scans++

	logger.Named("scheduler").Debug("scan",
		zap.Int("scan", s.scans),
		zap.Float32("x", pose.X),
		zap.Float32("y", pose.Y),
		zap.Float32("z", pose.Z),
		zap.Int("removed", len(removed)),
	)
	return removed
}
