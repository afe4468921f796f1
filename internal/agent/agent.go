// Package agent moves a point agent along navmesh paths, walking between
// waypoints and jumping onto new surfaces.
package agent

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/arnav/internal/logger"
	"github.com/Faultbox/arnav/internal/navmesh"
	"github.com/Faultbox/arnav/pkg/math"
)

// arrivalThreshold is the distance at which a waypoint counts as reached.
const arrivalThreshold = float32(1e-4)

// Configuration errors.
var (
	ErrInvalidWalkSpeed    = errors.New("walk speed must be positive")
	ErrInvalidJumpDuration = errors.New("jump duration must be positive")
	ErrInvalidJumpHeight   = errors.New("jump height must not be negative")
)

// State is the motion state of an agent.
type State int

const (
	Idle State = iota
	FollowingPath
	JumpInProgress
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case FollowingPath:
		return "FollowingPath"
	case JumpInProgress:
		return "JumpInProgress"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config holds the motion parameters.
type Config struct {
	WalkSpeed    float32 // Meters per second
	JumpDuration float32 // Seconds spent airborne per jump
	JumpHeight   float32 // Apex of the arc above the straight line, meters
}

// DefaultConfig returns a slow walker with a short hop.
func DefaultConfig() Config {
	return Config{
		WalkSpeed:    1.0,
		JumpDuration: 0.5,
		JumpHeight:   0.25,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !(c.WalkSpeed > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidWalkSpeed, c.WalkSpeed)
	}
	if !(c.JumpDuration > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidJumpDuration, c.JumpDuration)
	}
	if !(c.JumpHeight >= 0) {
		return fmt.Errorf("%w: %v", ErrInvalidJumpHeight, c.JumpHeight)
	}
	return nil
}

// Agent follows a path one Update at a time.
type Agent struct {
	cfg      Config
	position math.Vec3
	state    State

	// Current path
	path      []navmesh.Waypoint
	pathIndex int

	// Active jump
	jumpFrom    math.Vec3
	jumpTo      math.Vec3
	jumpElapsed float32
}

// New creates an idle agent at position.
func New(cfg Config, position math.Vec3) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid agent config: %w", err)
	}
	return &Agent{cfg: cfg, position: position}, nil
}

// Position returns the agent's world position.
func (a *Agent) Position() math.Vec3 {
	return a.position
}

// SetPosition teleports the agent and stops any motion.
func (a *Agent) SetPosition(p math.Vec3) {
	a.Stop()
	a.position = p
}

// State returns the motion state.
func (a *Agent) State() State {
	return a.state
}

// Remaining returns the waypoints not reached yet.
func (a *Agent) Remaining() []navmesh.Waypoint {
	if a.pathIndex >= len(a.path) {
		return nil
	}
	return a.path[a.pathIndex:]
}

// SetPath starts following p. The first waypoint is the start tile and is
// skipped. Returns false, leaving the agent unchanged, for an invalid path.
func (a *Agent) SetPath(p navmesh.Path) bool {
	if p.Status == navmesh.PathInvalid || len(p.Waypoints) == 0 {
		return false
	}
	a.Stop()
	if len(p.Waypoints) > 1 {
		a.path = p.Waypoints[1:]
	} else {
		a.path = p.Waypoints
	}
	a.state = FollowingPath
	return true
}

// Stop drops the path. A jump in progress is abandoned where it is.
func (a *Agent) Stop() {
	a.path = nil
	a.pathIndex = 0
	a.jumpElapsed = 0
	a.state = Idle
}

// Update advances the agent by dt seconds. Time left over after reaching a
// waypoint carries on toward the next one. Returns true if the agent moved.
func (a *Agent) Update(dt float32) bool {
	if dt <= 0 || a.state == Idle {
		return false
	}
	start := a.position
	for dt > 0 && a.state != Idle {
		switch a.state {
		case FollowingPath:
			dt = a.walk(dt)
		case JumpInProgress:
			dt = a.fly(dt)
		}
	}
	return a.position != start
}

// walk moves toward the current waypoint and returns the unused time.
func (a *Agent) walk(dt float32) float32 {
	target := a.path[a.pathIndex]
	if target.Type == navmesh.SurfaceEntry {
		a.state = JumpInProgress
		a.jumpFrom = a.position
		a.jumpTo = target.Position
		a.jumpElapsed = 0
		logger.Debug("agent jump",
			zap.Stringer("to", target.Tile),
			zap.Float32("rise", target.Position.Y-a.position.Y),
		)
		return dt
	}

	dist := a.position.Distance(target.Position)
	if dist < arrivalThreshold {
		a.arrive(target.Position)
		return dt
	}
	step := a.cfg.WalkSpeed * dt
	if step >= dist {
		a.arrive(target.Position)
		return dt - dist/a.cfg.WalkSpeed
	}
	a.position = a.position.Add(target.Position.Sub(a.position).Scale(step / dist))
	return 0
}

// fly advances the jump arc and returns the unused time.
func (a *Agent) fly(dt float32) float32 {
	left := a.cfg.JumpDuration - a.jumpElapsed
	used := min(dt, left)
	a.jumpElapsed += used

	if a.jumpElapsed >= a.cfg.JumpDuration {
		a.state = FollowingPath
		a.arrive(a.jumpTo)
		return dt - used
	}
	a.position = arc(a.jumpFrom, a.jumpTo, a.cfg.JumpHeight, a.jumpElapsed/a.cfg.JumpDuration)
	return 0
}

// arrive snaps to the current waypoint and moves on, going idle after the last.
func (a *Agent) arrive(p math.Vec3) {
	a.position = p
	a.pathIndex++
	if a.pathIndex >= len(a.path) {
		logger.Debug("agent arrived", zap.Int("waypoints", len(a.path)))
		a.path = nil
		a.pathIndex = 0
		a.state = Idle
	}
}

// arc interpolates a parabolic jump from a to b peaking height above the chord.
func arc(a, b math.Vec3, height, t float32) math.Vec3 {
	p := a.Lerp(b, t)
	p.Y += 4 * height * t * (1 - t)
	return p
}
