package navmesh

import (
	"fmt"
	"strings"
)

// PathFindingBehaviour selects how the path finder treats destinations on
// other surfaces.
type PathFindingBehaviour int

const (
	// SingleSurface never leaves the starting surface.
	SingleSurface PathFindingBehaviour = iota
	// InterSurfacePreferPerformance only considers straight jumps launched
	// from surface boundary tiles.
	InterSurfacePreferPerformance
	// InterSurfacePreferResults searches unsupported tiles as regular,
	// penalised states and finds any jump within the budget.
	InterSurfacePreferResults
)

var behaviourNames = map[PathFindingBehaviour]string{
	SingleSurface:                 "single_surface",
	InterSurfacePreferPerformance: "prefer_performance",
	InterSurfacePreferResults:     "prefer_results",
}

// String returns the configuration name of the behaviour.
func (b PathFindingBehaviour) String() string {
	if name, ok := behaviourNames[b]; ok {
		return name
	}
	return fmt.Sprintf("PathFindingBehaviour(%d)", int(b))
}

// ParseBehaviour parses a behaviour name as written by String.
func ParseBehaviour(s string) (PathFindingBehaviour, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for b, name := range behaviourNames {
		if name == s {
			return b, nil
		}
	}
	return SingleSurface, fmt.Errorf("unknown path finding behaviour %q", s)
}

// AgentConfiguration holds the per-query movement capabilities of an agent.
type AgentConfiguration struct {
	JumpDistance float32 // Max horizontal gap in meters the agent can cross
	JumpPenalty  float32 // Extra cost per step taken off a surface
	Behaviour    PathFindingBehaviour
}

// DefaultAgentConfiguration returns an agent that can jump a meter.
func DefaultAgentConfiguration() AgentConfiguration {
	return AgentConfiguration{
		JumpDistance: 1.0,
		JumpPenalty:  2.0,
		Behaviour:    InterSurfacePreferResults,
	}
}

// Validate checks that the configuration can be used for a query.
func (a AgentConfiguration) Validate() error {
	if !(a.JumpDistance >= 0) {
		return fmt.Errorf("%w: %v", ErrInvalidJumpDistance, a.JumpDistance)
	}
	if !(a.JumpPenalty >= 0) {
		return fmt.Errorf("%w: %v", ErrInvalidJumpPenalty, a.JumpPenalty)
	}
	if _, ok := behaviourNames[a.Behaviour]; !ok {
		return fmt.Errorf("unknown path finding behaviour %d", int(a.Behaviour))
	}
	return nil
}
