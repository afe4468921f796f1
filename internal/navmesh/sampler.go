package navmesh

import "github.com/Faultbox/arnav/pkg/math"

// HeightSampler probes scene geometry. SampleHeight casts straight down from
// origin and returns the height of the first surface hit on a layer selected
// by mask. A miss is not an error; the tile is treated as unknown.
type HeightSampler interface {
	SampleHeight(origin math.Vec3, mask LayerMask) (float32, bool)
}

// HeightSamplerFunc adapts a function to HeightSampler.
type HeightSamplerFunc func(origin math.Vec3, mask LayerMask) (float32, bool)

// SampleHeight calls f.
func (f HeightSamplerFunc) SampleHeight(origin math.Vec3, mask LayerMask) (float32, bool) {
	return f(origin, mask)
}
