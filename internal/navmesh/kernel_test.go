package navmesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func gridKernel(height func(dx, dz float64) float64) *kernel {
	var k kernel
	const ts = 0.15
	for j := -1; j <= 1; j++ {
		for i := -1; i <= 1; i++ {
			dx, dz := float64(i)*ts, float64(j)*ts
			k.add(dx, dz, height(dx, dz))
		}
	}
	return &k
}

func TestKernel_Evaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		height    func(dx, dz float64) float64
		mean      float64
		deviation float64
		slope     float64
	}{
		{"flat", func(_, _ float64) float64 { return 1 }, 1, 0, 0},
		{"rising along x", func(dx, _ float64) float64 { return dx }, 0, 0.1225, 45},
		{"rising along z", func(_, dz float64) float64 { return 0.5 + dz }, 0.5, 0.1225, 45},
		{"diagonal", func(dx, dz float64) float64 { return dx + dz }, 0, 0.1732, 54.7356},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, deviation, slope := gridKernel(tt.height).evaluate()
			assert.InDelta(t, tt.mean, mean, 1e-9)
			assert.InDelta(t, tt.deviation, deviation, 1e-3)
			assert.InDelta(t, tt.slope, slope, 1e-3)
		})
	}
}

func TestKernel_Degenerate(t *testing.T) {
	t.Parallel()

	var k kernel
	mean, deviation, slope := k.evaluate()
	assert.Zero(t, mean)
	assert.Zero(t, deviation)
	assert.Zero(t, slope)

	k.add(0, 0, 2)
	mean, deviation, slope = k.evaluate()
	assert.Equal(t, 2.0, mean)
	assert.Zero(t, deviation)
	assert.Zero(t, slope)

	// a single row only constrains the x gradient
	k.reset()
	for i := -1; i <= 1; i++ {
		k.add(float64(i)*0.15, 0, float64(i)*0.15*0.5)
	}
	_, _, slope = k.evaluate()
	assert.InDelta(t, 26.5651, slope, 1e-3)
}
