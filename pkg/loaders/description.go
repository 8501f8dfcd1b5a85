package loaders

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Material type names used in scene files
const (
	MaterialLambertian = "lambertian"
	MaterialMetal      = "metal"
	MaterialDielectric = "dielectric"
)

var (
	// ErrUnknownMaterial is returned when a sphere names a material type that does not exist
	ErrUnknownMaterial = errors.New("unknown material type")
	// ErrInvalidRadius is returned for zero or non-finite sphere radii
	ErrInvalidRadius = errors.New("invalid sphere radius")
	// ErrInvalidCamera is returned when lookFrom and lookAt coincide, including a missing camera
	ErrInvalidCamera = errors.New("invalid camera")
	// ErrUnsupportedFormat is returned for scene files with an unrecognized extension
	ErrUnsupportedFormat = errors.New("unsupported scene format")
)

// SceneDescription is a format-neutral description of a sphere scene
type SceneDescription struct {
	Name        string              `json:"name,omitempty"`
	Description string              `json:"description,omitempty"`
	Camera      CameraDescription   `json:"camera"`
	Render      RenderDescription   `json:"render"`
	Spheres     []SphereDescription `json:"spheres"`
}

// CameraDescription holds camera placement and lens parameters.
// Zero values are filled with defaults when the scene is built.
type CameraDescription struct {
	LookFrom      [3]float64 `json:"lookFrom"`
	LookAt        [3]float64 `json:"lookAt"`
	Up            [3]float64 `json:"up"`
	VFov          float64    `json:"vfov,omitempty"`
	AspectRatio   float64    `json:"aspectRatio,omitempty"`
	Aperture      float64    `json:"aperture,omitempty"`
	FocusDistance float64    `json:"focusDistance,omitempty"`
}

// RenderDescription holds optional render settings stored with a scene
type RenderDescription struct {
	Width           int `json:"width,omitempty"`
	Height          int `json:"height,omitempty"`
	SamplesPerPixel int `json:"samplesPerPixel,omitempty"`
	MaxDepth        int `json:"maxDepth,omitempty"`
}

// SphereDescription describes one sphere and its material
type SphereDescription struct {
	Center   [3]float64          `json:"center"`
	Radius   float64             `json:"radius"`
	Material MaterialDescription `json:"material"`
}

// MaterialDescription describes a material; unused fields are ignored for the given type
type MaterialDescription struct {
	Type            string     `json:"type"`
	Albedo          [3]float64 `json:"albedo"`
	Fuzz            float64    `json:"fuzz,omitempty"`
	RefractiveIndex float64    `json:"refractiveIndex,omitempty"`
}

// Validate checks every sphere for a usable radius and a known material type,
// then that the camera has a view direction
func (d *SceneDescription) Validate() error {
	for i, s := range d.Spheres {
		if s.Radius == 0 || math.IsNaN(s.Radius) || math.IsInf(s.Radius, 0) {
			return fmt.Errorf("sphere %d: %w: %v", i, ErrInvalidRadius, s.Radius)
		}
		switch s.Material.Type {
		case MaterialLambertian, MaterialMetal, MaterialDielectric:
		default:
			return fmt.Errorf("sphere %d: %w: %q", i, ErrUnknownMaterial, s.Material.Type)
		}
	}

	c := d.Camera
	view := mgl64.Vec3(c.LookFrom).Sub(mgl64.Vec3(c.LookAt)).Len()
	if view == 0 || math.IsNaN(view) || math.IsInf(view, 0) {
		return fmt.Errorf("%w: lookFrom %v and lookAt %v give no view direction", ErrInvalidCamera, c.LookFrom, c.LookAt)
	}
	return nil
}
