package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/loaders"
	"github.com/df07/go-sphere-raytracer/pkg/material"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
)

// ErrNotDescribable is returned when a scene holds shapes or materials that
// have no place in a scene file
var ErrNotDescribable = errors.New("scene cannot be described")

// Defaults applied to fields a scene file leaves out
const (
	defaultVFov            = 90.0
	defaultRefractiveIndex = 1.5
)

// FromDescription builds a scene from a loaded scene description
func FromDescription(desc *loaders.SceneDescription) (*Scene, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	c := desc.Camera
	cameraConfig := renderer.CameraConfig{
		LookFrom:      vecFromArray(c.LookFrom),
		LookAt:        vecFromArray(c.LookAt),
		Up:            vecFromArray(c.Up),
		VFov:          c.VFov,
		AspectRatio:   c.AspectRatio,
		Aperture:      c.Aperture,
		FocusDistance: c.FocusDistance,
	}
	if cameraConfig.Up == (core.Vec3{}) {
		cameraConfig.Up = core.NewVec3(0, 1, 0)
	}
	if cameraConfig.VFov <= 0 {
		cameraConfig.VFov = defaultVFov
	}

	s := NewScene(desc.Name, cameraConfig)
	r := desc.Render
	if r.Width > 0 {
		s.SamplingConfig.Width = r.Width
	}
	if r.Height > 0 {
		s.SamplingConfig.Height = r.Height
	}
	if r.SamplesPerPixel > 0 {
		s.SamplingConfig.SamplesPerPixel = r.SamplesPerPixel
	}
	if r.MaxDepth > 0 {
		s.SamplingConfig.MaxDepth = r.MaxDepth
	}

	for _, sphere := range desc.Spheres {
		mat, err := materialFromDescription(sphere.Material)
		if err != nil {
			return nil, err
		}
		s.AddSphere(vecFromArray(sphere.Center), sphere.Radius, mat)
	}
	return s, nil
}

func materialFromDescription(m loaders.MaterialDescription) (material.Material, error) {
	switch m.Type {
	case loaders.MaterialLambertian:
		return material.NewLambertian(vecFromArray(m.Albedo)), nil
	case loaders.MaterialMetal:
		return material.NewMetal(vecFromArray(m.Albedo), m.Fuzz), nil
	case loaders.MaterialDielectric:
		ior := m.RefractiveIndex
		if ior <= 0 {
			ior = defaultRefractiveIndex
		}
		return material.NewDielectric(ior), nil
	default:
		return nil, fmt.Errorf("%w: %q", loaders.ErrUnknownMaterial, m.Type)
	}
}

// Describe converts the scene into a description that can be written to a scene file
func (s *Scene) Describe() (*loaders.SceneDescription, error) {
	c := s.CameraConfig
	desc := &loaders.SceneDescription{
		Name: s.Name,
		Camera: loaders.CameraDescription{
			LookFrom:      arrayFromVec(c.LookFrom),
			LookAt:        arrayFromVec(c.LookAt),
			Up:            arrayFromVec(c.Up),
			VFov:          c.VFov,
			AspectRatio:   c.AspectRatio,
			Aperture:      c.Aperture,
			FocusDistance: c.FocusDistance,
		},
		Render: loaders.RenderDescription{
			Width:           s.SamplingConfig.Width,
			Height:          s.SamplingConfig.Height,
			SamplesPerPixel: s.SamplingConfig.SamplesPerPixel,
			MaxDepth:        s.SamplingConfig.MaxDepth,
		},
		Spheres: make([]loaders.SphereDescription, 0, len(s.Shapes)),
	}

	for i, shape := range s.Shapes {
		sphere, ok := shape.(*geometry.Sphere)
		if !ok {
			return nil, fmt.Errorf("shape %d (%T): %w", i, shape, ErrNotDescribable)
		}
		mat, err := describeMaterial(sphere.Material)
		if err != nil {
			return nil, fmt.Errorf("shape %d: %w", i, err)
		}
		desc.Spheres = append(desc.Spheres, loaders.SphereDescription{
			Center:   arrayFromVec(sphere.Center),
			Radius:   sphere.Radius,
			Material: mat,
		})
	}
	return desc, nil
}

func describeMaterial(m material.Material) (loaders.MaterialDescription, error) {
	switch mat := m.(type) {
	case *material.Lambertian:
		return loaders.MaterialDescription{Type: loaders.MaterialLambertian, Albedo: arrayFromVec(mat.Albedo)}, nil
	case *material.Metal:
		return loaders.MaterialDescription{Type: loaders.MaterialMetal, Albedo: arrayFromVec(mat.Albedo), Fuzz: mat.Fuzz}, nil
	case *material.Dielectric:
		return loaders.MaterialDescription{Type: loaders.MaterialDielectric, RefractiveIndex: mat.RefractiveIndex}, nil
	default:
		return loaders.MaterialDescription{}, fmt.Errorf("material %T: %w", m, ErrNotDescribable)
	}
}

func vecFromArray(a [3]float64) core.Vec3 {
	return core.NewVec3(a[0], a[1], a[2])
}

func arrayFromVec(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
