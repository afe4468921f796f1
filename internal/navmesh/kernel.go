package navmesh

import (
	gomath "math"

	"gonum.org/v1/gonum/stat"
)

// kernel accumulates the height samples around one tile.
// Offsets are in meters relative to the centre tile.
type kernel struct {
	dx, dz, h []float64
}

func (k *kernel) reset() {
	k.dx = k.dx[:0]
	k.dz = k.dz[:0]
	k.h = k.h[:0]
}

func (k *kernel) add(dx, dz, h float64) {
	k.dx = append(k.dx, dx)
	k.dz = append(k.dz, dz)
	k.h = append(k.h, h)
}

// evaluate returns the mean height, the population standard deviation of the
// heights and the slope in degrees of the least-squares plane through them.
func (k *kernel) evaluate() (mean, deviation, slope float64) {
	n := len(k.h)
	if n == 0 {
		return 0, 0, 0
	}
	mean, deviation = stat.PopMeanStdDev(k.h, nil)
	if n < 2 {
		return mean, 0, 0
	}

	// h = a*dx + b*dz + c, solved through the centred normal equations.
	sxx := stat.Variance(k.dx, nil)
	szz := stat.Variance(k.dz, nil)
	sxz := stat.Covariance(k.dx, k.dz, nil)
	sxh := stat.Covariance(k.dx, k.h, nil)
	szh := stat.Covariance(k.dz, k.h, nil)

	var a, b float64
	det := sxx*szz - sxz*sxz
	switch {
	case det > 1e-12:
		a = (sxh*szz - szh*sxz) / det
		b = (szh*sxx - sxh*sxz) / det
	case sxx > 1e-12:
		a = sxh / sxx
	case szz > 1e-12:
		b = szh / szz
	}
	slope = gomath.Atan(gomath.Hypot(a, b)) * 180 / gomath.Pi
	return mean, deviation, slope
}
