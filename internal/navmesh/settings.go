// Package navmesh implements a grid-based navigability model over scanned
// geometry: tiles are classified walkable, grouped into surfaces of
// consistent elevation and searched for paths, including jumps between
// surfaces.
package navmesh

import (
	"errors"
	"fmt"
)

// ModelSettings errors.
var (
	ErrInvalidTileSize     = errors.New("tile size must be positive")
	ErrInvalidChunkSize    = errors.New("spatial chunk size must be positive")
	ErrInvalidKernelSize   = errors.New("kernel size must be odd and at least 1")
	ErrInvalidMaxSlope     = errors.New("max slope must be within [0, 40] degrees")
	ErrInvalidStepHeight   = errors.New("step height must not be negative")
	ErrInvalidStdDevTol    = errors.New("kernel standard deviation tolerance must not be negative")
	ErrInvalidJumpDistance = errors.New("jump distance must not be negative")
	ErrInvalidJumpPenalty  = errors.New("jump penalty must not be negative")
)

// MaxSlopeLimit is the steepest walkable slope a model can be configured with.
const MaxSlopeLimit = 40

// LayerMask selects which geometry layers count as walkable ground.
// Bit n set means layer n is sampled.
type LayerMask uint32

// AllLayers samples every layer.
const AllLayers LayerMask = ^LayerMask(0)

// Includes reports whether layer is selected by the mask.
func (m LayerMask) Includes(layer uint) bool {
	if layer >= 32 {
		return false
	}
	return m&(1<<layer) != 0
}

// ModelSettings is the immutable configuration of a navigation model.
type ModelSettings struct {
	TileSize         float32   // Edge length of a tile in meters
	SpatialChunkSize int       // Tiles per chunk edge in the spatial tree
	KernelSize       int       // Flatness kernel edge, in tiles (odd)
	KernelStdDevTol  float32   // Max std-dev of kernel heights in meters
	MaxSlope         float32   // Max walkable slope in degrees
	MinElevation     float32   // Tiles below this world height are rejected
	StepHeight       float32   // Max elevation change between connected tiles
	LayerMask        LayerMask // Geometry filter passed to the sampler
}

// DefaultModelSettings returns settings tuned for room-scale AR scans.
func DefaultModelSettings() ModelSettings {
	return ModelSettings{
		TileSize:         0.15,
		SpatialChunkSize: 16,
		KernelSize:       3,
		KernelStdDevTol:  0.2,
		MaxSlope:         25,
		MinElevation:     -10,
		StepHeight:       0.1,
		LayerMask:        AllLayers,
	}
}

// Validate reports the first out-of-range setting.
func (s ModelSettings) Validate() error {
	if !(s.TileSize > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidTileSize, s.TileSize)
	}
	if s.SpatialChunkSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidChunkSize, s.SpatialChunkSize)
	}
	if s.KernelSize < 1 || s.KernelSize%2 == 0 {
		return fmt.Errorf("%w: %d", ErrInvalidKernelSize, s.KernelSize)
	}
	if !(s.MaxSlope >= 0 && s.MaxSlope <= MaxSlopeLimit) {
		return fmt.Errorf("%w: %v", ErrInvalidMaxSlope, s.MaxSlope)
	}
	if !(s.StepHeight >= 0) {
		return fmt.Errorf("%w: %v", ErrInvalidStepHeight, s.StepHeight)
	}
	if !(s.KernelStdDevTol >= 0) {
		return fmt.Errorf("%w: %v", ErrInvalidStdDevTol, s.KernelStdDevTol)
	}
	return nil
}

// TileArea returns the area of a single tile in square meters.
func (s ModelSettings) TileArea() float32 {
	return s.TileSize * s.TileSize
}

// TilesInRange converts a metric range to a tile radius, rounding up.
func (s ModelSettings) TilesInRange(rng float32) int {
	if rng <= 0 {
		return 0
	}
	n := rng / s.TileSize
	r := int(n)
	if float32(r) < n {
		r++
	}
	return r
}
