package integrator

import (
	"math"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// fixedMaterial scatters every ray in a fixed direction, or absorbs it
type fixedMaterial struct {
	direction   core.Vec3
	attenuation core.Color
	absorb      bool
}

func (m *fixedMaterial) Scatter(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
	if m.absorb {
		return material.ScatterResult{}, false
	}
	return material.ScatterResult{
		Scattered:   core.NewRay(hit.Point, m.direction),
		Attenuation: m.attenuation,
	}, true
}

// alwaysHit reports a hit for every query and counts how often it was asked
type alwaysHit struct {
	mat   material.Material
	calls int
}

func (s *alwaysHit) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	s.calls++
	return &material.HitRecord{
		Point:     ray.At(1),
		Normal:    ray.Direction.Unit().Negate(),
		T:         1,
		FrontFace: true,
		Material:  s.mat,
	}, true
}

func colorNear(a, b core.Color, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance && math.Abs(a.Y-b.Y) <= tolerance && math.Abs(a.Z-b.Z) <= tolerance
}

func TestBackgroundGradient(t *testing.T) {
	tests := []struct {
		name      string
		direction core.Vec3
		expected  core.Color
	}{
		{"Straight up", core.NewVec3(0, 1, 0), core.NewColor(0.5, 0.7, 1.0)},
		{"Straight down", core.NewVec3(0, -1, 0), core.NewColor(1.0, 1.0, 1.0)},
		{"Horizon", core.NewVec3(0, 0, -1), core.NewColor(0.75, 0.85, 1.0)},
		{"Unnormalized up", core.NewVec3(0, 10, 0), core.NewColor(0.5, 0.7, 1.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BackgroundGradient(core.NewRay(core.NewVec3(0, 0, 0), tt.direction))
			if !colorNear(got, tt.expected, 1e-12) {
				t.Errorf("BackgroundGradient(%v) = %v, want %v", tt.direction, got, tt.expected)
			}
		})
	}
}

func TestRayColor_DepthExhaustedIsBlack(t *testing.T) {
	world := &alwaysHit{mat: material.NewLambertian(core.NewColor(1, 1, 1))}
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	for _, depth := range []int{0, -1} {
		got := RayColor(ray, world, depth, core.NewSeededSampler(1))
		if got != (core.Color{}) {
			t.Errorf("depth %d: expected black, got %v", depth, got)
		}
	}
	if world.calls != 0 {
		t.Errorf("No intersection should be tested once depth is exhausted, got %d calls", world.calls)
	}
}

func TestRayColor_MissReturnsSky(t *testing.T) {
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))
	got := RayColor(ray, geometry.ShapeList{}, 5, core.NewSeededSampler(1))

	if !colorNear(got, core.NewColor(0.5, 0.7, 1.0), 1e-12) {
		t.Errorf("Expected sky color, got %v", got)
	}
}

func TestRayColor_AbsorbedIsBlack(t *testing.T) {
	world := &alwaysHit{mat: &fixedMaterial{absorb: true}}
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	got := RayColor(ray, world, 10, core.NewSeededSampler(1))
	if got != (core.Color{}) {
		t.Errorf("Absorbed ray should be black, got %v", got)
	}
}

func TestRayColor_AttenuatesScatteredLight(t *testing.T) {
	// A single sphere below the camera scatters straight up into the sky
	mat := &fixedMaterial{direction: core.NewVec3(0, 1, 0), attenuation: core.NewColor(0.5, 0.25, 1.0)}
	world := geometry.ShapeList{geometry.NewSphere(core.NewVec3(0, -2, 0), 1, mat)}
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, -1, 0))

	got := RayColor(ray, world, 10, core.NewSeededSampler(1))
	expected := core.NewColor(0.25, 0.175, 1.0)
	if !colorNear(got, expected, 1e-12) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestRayColor_RecursionIsBounded(t *testing.T) {
	// Every scattered ray hits again, as between two facing mirrors
	world := &alwaysHit{mat: &fixedMaterial{direction: core.NewVec3(1, 0, 0), attenuation: core.NewColor(1, 1, 1)}}
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0))

	got := RayColor(ray, world, 50, core.NewSeededSampler(1))
	if got != (core.Color{}) {
		t.Errorf("Path that never escapes should be black, got %v", got)
	}
	if world.calls != 50 {
		t.Errorf("Expected exactly 50 intersection tests, got %d", world.calls)
	}
}

func TestPathTracingIntegrator_LambertianStaysInRange(t *testing.T) {
	world := geometry.ShapeList{
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewColor(0.7, 0.3, 0.3))),
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewColor(0.8, 0.8, 0))),
	}
	pt := NewPathTracingIntegrator(50)
	sampler := core.NewSeededSampler(42)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	for i := 0; i < 200; i++ {
		c := pt.RayColor(ray, world, sampler)
		for _, v := range []float64{c.X, c.Y, c.Z} {
			if v < 0 || v > 1 || math.IsNaN(v) {
				t.Fatalf("Color component out of range: %v", c)
			}
		}
	}
}

func TestNormalIntegrator(t *testing.T) {
	world := geometry.ShapeList{geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, nil)}
	normals := NewNormalIntegrator()

	hitRay := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	got := normals.RayColor(hitRay, world, core.NewSeededSampler(1))
	if !colorNear(got, core.NewColor(0.5, 0.5, 1.0), 1e-12) {
		t.Errorf("Expected (0.5, 0.5, 1.0) for a hit facing the camera, got %v", got)
	}

	missRay := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))
	got = normals.RayColor(missRay, world, core.NewSeededSampler(1))
	if !colorNear(got, core.NewColor(0.5, 0.7, 1.0), 1e-12) {
		t.Errorf("Expected sky color for a miss, got %v", got)
	}
}
