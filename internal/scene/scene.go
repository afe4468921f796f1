// Package scene provides simple static geometry that can be probed like a
// scanned environment: boxes, ramps and height-field terrain.
package scene

import (
	"errors"
	"fmt"
	gomath "math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/arnav/internal/navmesh"
	"github.com/Faultbox/arnav/pkg/math"
)

// Scene description errors.
var (
	ErrInvalidRampAxis = errors.New("ramp axis must be x or z")
	ErrFlatRamp        = errors.New("ramp has no extent along its axis")
	ErrInvalidTerrain  = errors.New("invalid terrain")
	ErrInvalidLayer    = errors.New("layer must be below 32")
)

// Box is a solid axis-aligned block. Its top face is walkable ground.
type Box struct {
	Name  string     `yaml:"name"`
	Min   [3]float32 `yaml:"min"`
	Max   [3]float32 `yaml:"max"`
	Layer uint       `yaml:"layer"`
}

// Ramp is a block whose top rises linearly from Min[1] to Max[1] along Axis.
type Ramp struct {
	Name  string     `yaml:"name"`
	Min   [3]float32 `yaml:"min"`
	Max   [3]float32 `yaml:"max"`
	Axis  string     `yaml:"axis"` // "x" or "z"
	Layer uint       `yaml:"layer"`
}

// Terrain is a height grid. Heights[row][col] is the height at
// (Origin.X + col*CellSize, Origin.Z + row*CellSize).
type Terrain struct {
	Name     string      `yaml:"name"`
	Origin   [3]float32  `yaml:"origin"`
	CellSize float32     `yaml:"cell_size"`
	Heights  [][]float32 `yaml:"heights"`
	Layer    uint        `yaml:"layer"`
}

// Scene is a collection of static geometry.
type Scene struct {
	Boxes    []Box     `yaml:"boxes"`
	Ramps    []Ramp    `yaml:"ramps"`
	Terrains []Terrain `yaml:"terrains"`
}

// Parse decodes and validates a YAML scene description.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding scene: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a YAML scene description from disk.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene file: %w", err)
	}
	return Parse(data)
}

// Validate checks the primitives.
func (s *Scene) Validate() error {
	for i, b := range s.Boxes {
		if b.Layer >= 32 {
			return fmt.Errorf("box %d (%s): %w", i, b.Name, ErrInvalidLayer)
		}
	}
	for i, r := range s.Ramps {
		if r.Layer >= 32 {
			return fmt.Errorf("ramp %d (%s): %w", i, r.Name, ErrInvalidLayer)
		}
		if a := strings.ToLower(r.Axis); a != "x" && a != "z" {
			return fmt.Errorf("ramp %d (%s): %w: %q", i, r.Name, ErrInvalidRampAxis, r.Axis)
		}
		if r.run() == 0 {
			return fmt.Errorf("ramp %d (%s): %w", i, r.Name, ErrFlatRamp)
		}
	}
	for i, t := range s.Terrains {
		if t.Layer >= 32 {
			return fmt.Errorf("terrain %d (%s): %w", i, t.Name, ErrInvalidLayer)
		}
		if !(t.CellSize > 0) {
			return fmt.Errorf("terrain %d (%s): %w: cell size %v", i, t.Name, ErrInvalidTerrain, t.CellSize)
		}
		if len(t.Heights) < 2 {
			return fmt.Errorf("terrain %d (%s): %w: need at least 2 rows", i, t.Name, ErrInvalidTerrain)
		}
		for row, h := range t.Heights {
			if len(h) < 2 || len(h) != len(t.Heights[0]) {
				return fmt.Errorf("terrain %d (%s): %w: row %d has %d columns", i, t.Name, ErrInvalidTerrain, row, len(h))
			}
		}
	}
	return nil
}

// SampleHeight casts straight down from origin and returns the highest
// surface at or below origin.Y on a layer selected by mask.
func (s *Scene) SampleHeight(origin math.Vec3, mask navmesh.LayerMask) (float32, bool) {
	best := float32(-gomath.MaxFloat32)
	found := false
	consider := func(h float32, ok bool) {
		if ok && h <= origin.Y && h > best {
			best, found = h, true
		}
	}

	ray := math.Down(origin)
	for _, b := range s.Boxes {
		if mask.Includes(b.Layer) {
			consider(b.height(ray))
		}
	}
	for _, r := range s.Ramps {
		if mask.Includes(r.Layer) {
			consider(r.height(origin.X, origin.Z))
		}
	}
	for _, t := range s.Terrains {
		if mask.Includes(t.Layer) {
			consider(t.height(origin.X, origin.Z))
		}
	}
	return best, found
}

func (b Box) aabb() math.AABB {
	return math.NewAABB(vec(b.Min), vec(b.Max))
}

func (b Box) height(down math.Ray) (float32, bool) {
	box := b.aabb()
	if down.Origin.Y < box.Max.Y {
		return 0, false // inside or below the block
	}
	// From above, the entry point is always the top face.
	if _, hit := down.IntersectAABB(box); !hit {
		return 0, false
	}
	return box.Max.Y, true
}

func (r Ramp) height(x, z float32) (float32, bool) {
	box := math.NewAABB(vec(r.Min), vec(r.Max))
	if !box.ContainsXZ(x, z) {
		return 0, false
	}
	run := r.run()
	if run == 0 {
		return 0, false
	}
	var frac float32
	if strings.EqualFold(r.Axis, "z") {
		frac = (z - box.Min.Z) / run
	} else {
		frac = (x - box.Min.X) / run
	}
	return box.Min.Y + frac*(box.Max.Y-box.Min.Y), true
}

// run is the horizontal length of the ramp along its axis.
func (r Ramp) run() float32 {
	axis := 0
	if strings.EqualFold(r.Axis, "z") {
		axis = 2
	}
	d := r.Max[axis] - r.Min[axis]
	if d < 0 {
		return -d
	}
	return d
}

// height interpolates the four grid heights around (x, z) bilinearly.
func (t Terrain) height(x, z float32) (float32, bool) {
	rows := len(t.Heights)
	if rows < 2 || len(t.Heights[0]) < 2 || !(t.CellSize > 0) {
		return 0, false
	}
	cols := len(t.Heights[0])

	fx := (x - t.Origin[0]) / t.CellSize
	fz := (z - t.Origin[2]) / t.CellSize
	if fx < 0 || fz < 0 || fx > float32(cols-1) || fz > float32(rows-1) {
		return 0, false
	}

	cx := min(int(fx), cols-2)
	cz := min(int(fz), rows-2)
	fracX := clampf(fx-float32(cx), 0, 1)
	fracZ := clampf(fz-float32(cz), 0, 1)
	if len(t.Heights[cz]) < cx+2 || len(t.Heights[cz+1]) < cx+2 {
		return 0, false // ragged grid built without Validate
	}

	// south edge (lower Z), then north edge, then between them
	south := t.Heights[cz][cx]*(1-fracX) + t.Heights[cz][cx+1]*fracX
	north := t.Heights[cz+1][cx]*(1-fracX) + t.Heights[cz+1][cx+1]*fracX
	return t.Origin[1] + south*(1-fracZ) + north*fracZ, true
}

func vec(a [3]float32) math.Vec3 {
	return math.Vec3{X: a[0], Y: a[1], Z: a[2]}
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
