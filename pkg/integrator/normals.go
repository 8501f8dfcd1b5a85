package integrator

import (
	"math"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
)

// NormalIntegrator shades each hit by its surface normal, mapped from [-1,1] to [0,1].
// Misses show the sky gradient. Useful for checking geometry and camera setup.
type NormalIntegrator struct{}

// NewNormalIntegrator creates a new normal visualization integrator
func NewNormalIntegrator() *NormalIntegrator {
	return &NormalIntegrator{}
}

// RayColor implements Integrator
func (n *NormalIntegrator) RayColor(ray core.Ray, world geometry.Shape, sampler core.Sampler) core.Color {
	hit, isHit := world.Hit(ray, 0, math.Inf(1))
	if !isHit {
		return BackgroundGradient(ray)
	}
	return hit.Normal.Add(core.NewVec3(1, 1, 1)).Multiply(0.5)
}
