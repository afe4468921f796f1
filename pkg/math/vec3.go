// Package math provides the small vector and ray types shared by the
// navigation packages. Y is up; the ground plane is XZ.
package math

import "math"

// Vec3 is a world-space point or direction in meters.
type Vec3 struct {
	X, Y, Z float32
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

// Normalize returns a unit vector, or the zero vector for a zero input.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Distance returns the straight-line distance to o.
func (v Vec3) Distance(o Vec3) float32 {
	return v.Sub(o).Length()
}

// HorizontalDistance ignores the Y component.
func (v Vec3) HorizontalDistance(o Vec3) float32 {
	dx, dz := float64(v.X-o.X), float64(v.Z-o.Z)
	return float32(math.Hypot(dx, dz))
}

// Lerp interpolates between v and o. t is not clamped.
func (v Vec3) Lerp(o Vec3, t float32) Vec3 {
	return v.Add(o.Sub(v).Scale(t))
}
