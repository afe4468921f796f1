// Package config handles navigation settings loading and management.
package config

import (
	"fmt"
	"time"

	"github.com/Faultbox/arnav/internal/agent"
	"github.com/Faultbox/arnav/internal/navmesh"
	"github.com/Faultbox/arnav/internal/scheduler"
)

// Config holds all settings.
type Config struct {
	NavMesh NavMeshConfig `yaml:"navmesh"`
	Scan    ScanConfig    `yaml:"scan"`
	Agent   AgentConfig   `yaml:"agent"`
	Store   StoreConfig   `yaml:"store"`
	Scene   SceneConfig   `yaml:"scene"`
	Logging LoggingConfig `yaml:"logging"`
}

// NavMeshConfig holds the model settings.
type NavMeshConfig struct {
	TileSize        float32 `yaml:"tile_size"`
	ChunkSize       int     `yaml:"chunk_size"`
	KernelSize      int     `yaml:"kernel_size"`
	KernelStdDevTol float32 `yaml:"kernel_std_dev_tol"`
	MaxSlope        float32 `yaml:"max_slope"`
	MinElevation    float32 `yaml:"min_elevation"`
	StepHeight      float32 `yaml:"step_height"`
	Layers          []uint  `yaml:"layers"` // Empty means every layer
}

// ScanConfig holds the scan cadence.
type ScanConfig struct {
	Interval   time.Duration `yaml:"interval"`
	Range      float32       `yaml:"range"`
	PruneRange float32       `yaml:"prune_range"`
}

// AgentConfig holds path finding and motion settings.
type AgentConfig struct {
	JumpDistance float32 `yaml:"jump_distance"`
	JumpPenalty  float32 `yaml:"jump_penalty"`
	Behaviour    string  `yaml:"behaviour"`
	WalkSpeed    float32 `yaml:"walk_speed"`
	JumpDuration float32 `yaml:"jump_duration"`
	JumpHeight   float32 `yaml:"jump_height"`
}

// StoreConfig holds snapshot persistence settings.
type StoreConfig struct {
	Path    string `yaml:"path"`    // SQLite file, empty disables persistence
	Session string `yaml:"session"` // Session to resume, empty starts a new one
}

// SceneConfig holds the simulated environment.
type SceneConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	model := navmesh.DefaultModelSettings()
	query := navmesh.DefaultAgentConfiguration()
	motion := agent.DefaultConfig()
	scan := scheduler.DefaultConfig()

	return &Config{
		NavMesh: NavMeshConfig{
			TileSize:        model.TileSize,
			ChunkSize:       model.SpatialChunkSize,
			KernelSize:      model.KernelSize,
			KernelStdDevTol: model.KernelStdDevTol,
			MaxSlope:        model.MaxSlope,
			MinElevation:    model.MinElevation,
			StepHeight:      model.StepHeight,
		},
		Scan: ScanConfig{
			Interval:   scan.Interval,
			Range:      scan.ScanRange,
			PruneRange: scan.PruneRange,
		},
		Agent: AgentConfig{
			JumpDistance: query.JumpDistance,
			JumpPenalty:  query.JumpPenalty,
			Behaviour:    query.Behaviour.String(),
			WalkSpeed:    motion.WalkSpeed,
			JumpDuration: motion.JumpDuration,
			JumpHeight:   motion.JumpHeight,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ModelSettings converts the navmesh section.
func (c *Config) ModelSettings() navmesh.ModelSettings {
	mask := navmesh.AllLayers
	if len(c.NavMesh.Layers) > 0 {
		mask = 0
		for _, l := range c.NavMesh.Layers {
			if l < 32 {
				mask |= 1 << l
			}
		}
	}
	return navmesh.ModelSettings{
		TileSize:         c.NavMesh.TileSize,
		SpatialChunkSize: c.NavMesh.ChunkSize,
		KernelSize:       c.NavMesh.KernelSize,
		KernelStdDevTol:  c.NavMesh.KernelStdDevTol,
		MaxSlope:         c.NavMesh.MaxSlope,
		MinElevation:     c.NavMesh.MinElevation,
		StepHeight:       c.NavMesh.StepHeight,
		LayerMask:        mask,
	}
}

// AgentConfiguration converts the path finding part of the agent section.
func (c *Config) AgentConfiguration() (navmesh.AgentConfiguration, error) {
	b, err := navmesh.ParseBehaviour(c.Agent.Behaviour)
	if err != nil {
		return navmesh.AgentConfiguration{}, err
	}
	return navmesh.AgentConfiguration{
		JumpDistance: c.Agent.JumpDistance,
		JumpPenalty:  c.Agent.JumpPenalty,
		Behaviour:    b,
	}, nil
}

// Motion converts the motion part of the agent section.
func (c *Config) Motion() agent.Config {
	return agent.Config{
		WalkSpeed:    c.Agent.WalkSpeed,
		JumpDuration: c.Agent.JumpDuration,
		JumpHeight:   c.Agent.JumpHeight,
	}
}

// Scheduler converts the scan section.
func (c *Config) Scheduler() scheduler.Config {
	return scheduler.Config{
		Interval:   c.Scan.Interval,
		ScanRange:  c.Scan.Range,
		PruneRange: c.Scan.PruneRange,
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ModelSettings().Validate(); err != nil {
		return fmt.Errorf("navmesh: %w", err)
	}
	if err := c.Scheduler().Validate(); err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	a, err := c.AgentConfiguration()
	if err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := a.Validate(); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.Motion().Validate(); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	return nil
}
