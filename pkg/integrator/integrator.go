package integrator

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
)

// MinHitDistance is the lower bound of the hit interval; it keeps scattered rays
// from re-hitting the surface they leave because of floating point error
const MinHitDistance = 0.001

// Integrator defines the interface for turning a camera ray into a color
type Integrator interface {
	RayColor(ray core.Ray, world geometry.Shape, sampler core.Sampler) core.Color
}

// Sky gradient endpoints
var (
	horizonColor = core.NewColor(1.0, 1.0, 1.0)
	zenithColor  = core.NewColor(0.5, 0.7, 1.0)
)

// BackgroundGradient returns the sky color seen along a ray that escapes the scene
func BackgroundGradient(r core.Ray) core.Color {
	unitDirection := r.Direction.Unit()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	return horizonColor.Lerp(zenithColor, t)
}
