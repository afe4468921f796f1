package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/arnav/internal/navmesh"
	"github.com/Faultbox/arnav/pkg/math"
)

const sceneYAML = `
boxes:
  - name: floor
    min: [-2, -0.1, -2]
    max: [2, 0, 2]
  - name: table
    min: [0, 0, 0]
    max: [0.5, 0.7, 0.5]
    layer: 1
ramps:
  - name: ramp
    min: [3, 0, 0]
    max: [4, 0.5, 1]
    axis: x
terrains:
  - name: hill
    origin: [10, 1, 10]
    cell_size: 1
    heights:
      - [0, 1]
      - [1, 2]
`

func TestParse(t *testing.T) {
	t.Parallel()

	s, err := Parse([]byte(sceneYAML))
	require.NoError(t, err)
	require.Len(t, s.Boxes, 2)
	require.Len(t, s.Ramps, 1)
	require.Len(t, s.Terrains, 1)
	assert.Equal(t, "table", s.Boxes[1].Name)
	assert.Equal(t, uint(1), s.Boxes[1].Layer)
	assert.Equal(t, [3]float32{0.5, 0.7, 0.5}, s.Boxes[1].Max)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sceneYAML), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, s.Boxes, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"bad axis", "ramps:\n  - {min: [0,0,0], max: [1,1,1], axis: \"y\"}\n", ErrInvalidRampAxis},
		{"zero cell", "terrains:\n  - {cell_size: 0, heights: [[0,0],[0,0]]}\n", ErrInvalidTerrain},
		{"ragged", "terrains:\n  - {cell_size: 1, heights: [[0,0],[0]]}\n", ErrInvalidTerrain},
		{"one row", "terrains:\n  - {cell_size: 1, heights: [[0,0]]}\n", ErrInvalidTerrain},
		{"layer", "boxes:\n  - {min: [0,0,0], max: [1,1,1], layer: 40}\n", ErrInvalidLayer},
		{"flat ramp", "ramps:\n  - {min: [1,0,0], max: [1,1,2], axis: \"x\"}\n", ErrFlatRamp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSampleHeight(t *testing.T) {
	t.Parallel()

	s, err := Parse([]byte(sceneYAML))
	require.NoError(t, err)

	tests := []struct {
		name   string
		origin math.Vec3
		mask   navmesh.LayerMask
		want   float32
		wantOK bool
	}{
		{"floor", math.Vec3{X: -1, Y: 2, Z: -1}, navmesh.AllLayers, 0, true},
		{"table top", math.Vec3{X: 0.25, Y: 2, Z: 0.25}, navmesh.AllLayers, 0.7, true},
		{"table filtered out", math.Vec3{X: 0.25, Y: 2, Z: 0.25}, navmesh.LayerMask(1), 0, true},
		{"probe under table top", math.Vec3{X: 0.25, Y: 0.5, Z: 0.25}, navmesh.AllLayers, 0, true},
		{"ramp middle", math.Vec3{X: 3.5, Y: 2, Z: 0.5}, navmesh.AllLayers, 0.25, true},
		{"terrain centre", math.Vec3{X: 10.5, Y: 5, Z: 10.5}, navmesh.AllLayers, 2, true},
		{"terrain corner", math.Vec3{X: 11, Y: 5, Z: 11}, navmesh.AllLayers, 3, true},
		{"nothing", math.Vec3{X: 50, Y: 2, Z: 50}, navmesh.AllLayers, 0, false},
		{"below floor", math.Vec3{X: 0, Y: -1, Z: -1}, navmesh.AllLayers, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.SampleHeight(tt.origin, tt.mask)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.InDelta(t, tt.want, got, 1e-5)
			}
		})
	}
}

func TestSampleHeight_UnvalidatedScene(t *testing.T) {
	t.Parallel()

	s := &Scene{
		Ramps: []Ramp{{Min: [3]float32{1, 0, 0}, Max: [3]float32{1, 1, 2}, Axis: "x"}},
		Terrains: []Terrain{
			{CellSize: 1},
			{CellSize: 1, Heights: [][]float32{{0, 0}, {0}}},
		},
	}
	assert.NotPanics(t, func() {
		_, ok := s.SampleHeight(math.Vec3{X: 1, Y: 5, Z: 0.5}, navmesh.AllLayers)
		assert.False(t, ok, "a flat ramp and broken terrains have no height")
	})
}

func TestSceneIsHeightSampler(t *testing.T) {
	t.Parallel()

	var _ navmesh.HeightSampler = (*Scene)(nil)
}
