package scene

import (
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/loaders"
	"github.com/df07/go-sphere-raytracer/pkg/material"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
)

func TestScene_AddAndHit(t *testing.T) {
	s := NewScene("test", renderer.CameraConfig{})
	if s.GetPrimitiveCount() != 0 {
		t.Fatalf("New scene should be empty, got %d shapes", s.GetPrimitiveCount())
	}

	near := material.NewLambertian(core.NewColor(1, 0, 0))
	far := material.NewLambertian(core.NewColor(0, 1, 0))
	s.AddSphere(core.NewVec3(0, 0, -10), 1, far)
	s.AddSphere(core.NewVec3(0, 0, -5), 1, near)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	hit, ok := s.Hit(ray, 0.001, math.Inf(1))
	if !ok {
		t.Fatal("Expected ray to hit the scene")
	}
	if hit.Material != near || math.Abs(hit.T-4) > 1e-9 {
		t.Errorf("Expected nearest sphere at t=4, got t=%v material=%v", hit.T, hit.Material)
	}

	if _, ok := s.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)), 0.001, math.Inf(1)); ok {
		t.Error("Ray pointing up should miss")
	}
}

func TestScene_SetResolution(t *testing.T) {
	s := NewScene("test", renderer.CameraConfig{AspectRatio: 1})
	s.SetResolution(300, 150)
	if s.SamplingConfig.Width != 300 || s.SamplingConfig.Height != 150 {
		t.Errorf("Unexpected resolution %dx%d", s.SamplingConfig.Width, s.SamplingConfig.Height)
	}
	if s.CameraConfig.AspectRatio != 2 {
		t.Errorf("AspectRatio = %v, want 2", s.CameraConfig.AspectRatio)
	}

	s.SetResolution(0, 150)
	if s.CameraConfig.AspectRatio != 2 {
		t.Errorf("Zero width should leave the aspect ratio alone, got %v", s.CameraConfig.AspectRatio)
	}
}

func TestPresets(t *testing.T) {
	tests := []struct {
		name       string
		minShapes  int
		maxShapes  int
		wantWidth  int
		wantHeight int
	}{
		{"default", 5, 5, 400, 225},
		{"random", 4, 4 + 22*22, 600, 400},
		{"sphere-grid", 101, 101, 640, 360},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Create(tt.name, core.NewSeededSampler(42))
			if err != nil {
				t.Fatalf("Create(%q) failed: %v", tt.name, err)
			}
			count := s.GetPrimitiveCount()
			if count < tt.minShapes || count > tt.maxShapes {
				t.Errorf("Shape count %d outside [%d, %d]", count, tt.minShapes, tt.maxShapes)
			}
			if s.SamplingConfig.Width != tt.wantWidth || s.SamplingConfig.Height != tt.wantHeight {
				t.Errorf("Resolution %dx%d, want %dx%d",
					s.SamplingConfig.Width, s.SamplingConfig.Height, tt.wantWidth, tt.wantHeight)
			}
			if s.Name != tt.name {
				t.Errorf("Name = %q, want %q", s.Name, tt.name)
			}
			if s.Camera() == nil {
				t.Error("Camera() returned nil")
			}
		})
	}
}

func TestNames(t *testing.T) {
	want := []string{"default", "random", "sphere-grid"}
	if got := Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestNewRandomScene_Layout(t *testing.T) {
	s := NewRandomScene(core.NewSeededSampler(7))

	ground, ok := s.Shapes[0].(*geometry.Sphere)
	if !ok || ground.Radius != 1000 || ground.Center != core.NewVec3(0, -1000, 0) {
		t.Errorf("Unexpected ground sphere %+v", s.Shapes[0])
	}

	clearing := core.NewVec3(4, 0.2, 0)
	small := s.Shapes[1 : len(s.Shapes)-3]
	if len(small) == 0 {
		t.Fatal("Expected small spheres")
	}
	for i, shape := range small {
		sphere := shape.(*geometry.Sphere)
		if sphere.Radius != 0.2 || sphere.Center.Y != 0.2 {
			t.Errorf("Small sphere %d has radius %v at height %v", i, sphere.Radius, sphere.Center.Y)
		}
		if sphere.Center.Subtract(clearing).Length() <= 0.9 {
			t.Errorf("Small sphere %d at %v is inside the clearing", i, sphere.Center)
		}
	}

	big := s.Shapes[len(s.Shapes)-3:]
	if _, ok := big[0].(*geometry.Sphere).Material.(*material.Dielectric); !ok {
		t.Error("First big sphere should be glass")
	}
	if _, ok := big[1].(*geometry.Sphere).Material.(*material.Lambertian); !ok {
		t.Error("Second big sphere should be diffuse")
	}
	if metal, ok := big[2].(*geometry.Sphere).Material.(*material.Metal); !ok || metal.Fuzz != 0 {
		t.Error("Third big sphere should be a polished metal")
	}
}

func TestNewRandomScene_Deterministic(t *testing.T) {
	a := NewRandomScene(core.NewSeededSampler(99))
	b := NewRandomScene(core.NewSeededSampler(99))
	if !reflect.DeepEqual(a.Shapes, b.Shapes) {
		t.Error("Same seed should produce the same scene")
	}
}

func TestOklchToRGB(t *testing.T) {
	// Zero chroma is a neutral grey
	grey := oklchToRGB(0.6, 0, 123)
	if math.Abs(grey.X-grey.Y) > 1e-6 || math.Abs(grey.Y-grey.Z) > 1e-6 {
		t.Errorf("Zero chroma should be grey, got %v", grey)
	}

	for hue := 0.0; hue < 360; hue += 30 {
		c := oklchToRGB(0.65, 0.25, hue)
		if c.X < 0 || c.X > 1 || c.Y < 0 || c.Y > 1 || c.Z < 0 || c.Z > 1 {
			t.Errorf("Hue %v out of gamut after clamping: %v", hue, c)
		}
	}
}

func TestDescribe_RoundTrip(t *testing.T) {
	original := NewDefaultScene()

	desc, err := original.Describe()
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if len(desc.Spheres) != original.GetPrimitiveCount() {
		t.Fatalf("Described %d spheres, want %d", len(desc.Spheres), original.GetPrimitiveCount())
	}
	if desc.Spheres[3].Radius != -0.45 || desc.Spheres[3].Material.Type != loaders.MaterialDielectric {
		t.Errorf("Hollow glass not preserved: %+v", desc.Spheres[3])
	}

	rebuilt, err := FromDescription(desc)
	if err != nil {
		t.Fatalf("FromDescription failed: %v", err)
	}
	if !reflect.DeepEqual(rebuilt.Shapes, original.Shapes) {
		t.Error("Shapes changed across describe/build")
	}
	if rebuilt.CameraConfig != original.CameraConfig {
		t.Errorf("Camera changed: %+v vs %+v", rebuilt.CameraConfig, original.CameraConfig)
	}
	if rebuilt.SamplingConfig != original.SamplingConfig {
		t.Errorf("Sampling changed: %+v vs %+v", rebuilt.SamplingConfig, original.SamplingConfig)
	}
}

func TestFromDescription_Defaults(t *testing.T) {
	desc := &loaders.SceneDescription{
		Camera: loaders.CameraDescription{LookFrom: [3]float64{0, 0, 1}},
		Spheres: []loaders.SphereDescription{
			{Center: [3]float64{0, 0, -1}, Radius: 0.5, Material: loaders.MaterialDescription{Type: loaders.MaterialDielectric}},
		},
	}

	s, err := FromDescription(desc)
	if err != nil {
		t.Fatalf("FromDescription failed: %v", err)
	}
	if s.CameraConfig.Up != core.NewVec3(0, 1, 0) {
		t.Errorf("Up = %v, want (0,1,0)", s.CameraConfig.Up)
	}
	if s.CameraConfig.VFov != 90 {
		t.Errorf("VFov = %v, want 90", s.CameraConfig.VFov)
	}
	if s.SamplingConfig != renderer.DefaultSamplingConfig() {
		t.Errorf("Sampling = %+v, want defaults", s.SamplingConfig)
	}
	glass := s.Shapes[0].(*geometry.Sphere).Material.(*material.Dielectric)
	if glass.RefractiveIndex != 1.5 {
		t.Errorf("RefractiveIndex = %v, want 1.5", glass.RefractiveIndex)
	}
}

func TestFromDescription_Errors(t *testing.T) {
	tests := []struct {
		name    string
		sphere  loaders.SphereDescription
		wantErr error
	}{
		{"zero radius", loaders.SphereDescription{Radius: 0, Material: loaders.MaterialDescription{Type: loaders.MaterialMetal}}, loaders.ErrInvalidRadius},
		{"unknown material", loaders.SphereDescription{Radius: 1, Material: loaders.MaterialDescription{Type: "plasma"}}, loaders.ErrUnknownMaterial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromDescription(&loaders.SceneDescription{Spheres: []loaders.SphereDescription{tt.sphere}})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

type flatDisc struct{}

func (flatDisc) Hit(core.Ray, float64, float64) (*material.HitRecord, bool) { return nil, false }

type glowMaterial struct{}

func (glowMaterial) Scatter(core.Ray, material.HitRecord, core.Sampler) (material.ScatterResult, bool) {
	return material.ScatterResult{}, false
}

func TestDescribe_NotDescribable(t *testing.T) {
	s := NewScene("odd", renderer.CameraConfig{})
	s.Add(flatDisc{})
	if _, err := s.Describe(); !errors.Is(err, ErrNotDescribable) {
		t.Errorf("Expected ErrNotDescribable for foreign shape, got %v", err)
	}

	s = NewScene("odd", renderer.CameraConfig{})
	s.AddSphere(core.NewVec3(0, 0, 0), 1, glowMaterial{})
	if _, err := s.Describe(); !errors.Is(err, ErrNotDescribable) {
		t.Errorf("Expected ErrNotDescribable for foreign material, got %v", err)
	}
}

func TestCreate_SceneFile(t *testing.T) {
	dir := t.TempDir()
	path := writeSceneFile(t, dir, "glass_pair.json", namedSceneJSON)

	s, err := Create(path, core.NewSeededSampler(1))
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", path, err)
	}
	if s.Name != "Glass Pair" || s.GetPrimitiveCount() != 2 {
		t.Errorf("Unexpected scene %q with %d shapes", s.Name, s.GetPrimitiveCount())
	}

	// Saved scenes load back through the same path
	gltfPath := filepath.Join(dir, "saved.glb")
	desc, err := s.Describe()
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if err := loaders.SaveScene(desc, gltfPath); err != nil {
		t.Fatalf("SaveScene failed: %v", err)
	}
	loaded, err := Create(gltfPath, nil)
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", gltfPath, err)
	}
	if loaded.GetPrimitiveCount() != 2 {
		t.Errorf("Expected 2 spheres from glb, got %d", loaded.GetPrimitiveCount())
	}
}

func TestCreate_Unknown(t *testing.T) {
	if _, err := Create("cornell", nil); !errors.Is(err, ErrUnknownScene) {
		t.Errorf("Expected ErrUnknownScene, got %v", err)
	}
	if _, err := Create(filepath.Join(t.TempDir(), "missing.json"), nil); err == nil {
		t.Error("Expected error for missing scene file")
	}
}
