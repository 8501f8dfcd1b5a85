package loaders

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sampleSceneJSON = `{
  "name": "three spheres",
  "description": "ground, glass and gold",
  "camera": {
    "lookFrom": [3, 3, 2],
    "lookAt": [0, 0, -1],
    "up": [0, 1, 0],
    "vfov": 20,
    "aspectRatio": 1.5,
    "aperture": 0.5
  },
  "render": {"width": 300, "height": 200, "samplesPerPixel": 16, "maxDepth": 8},
  "spheres": [
    {"center": [0, -100.5, -1], "radius": 100, "material": {"type": "lambertian", "albedo": [0.8, 0.8, 0]}},
    {"center": [-1, 0, -1], "radius": -0.45, "material": {"type": "dielectric", "refractiveIndex": 1.5}},
    {"center": [1, 0, -1], "radius": 0.5, "material": {"type": "metal", "albedo": [0.8, 0.6, 0.2], "fuzz": 0.3}}
  ]
}`

func TestReadJSONScene(t *testing.T) {
	desc, err := ReadJSONScene(strings.NewReader(sampleSceneJSON))
	if err != nil {
		t.Fatalf("ReadJSONScene failed: %v", err)
	}

	if desc.Name != "three spheres" {
		t.Errorf("Name = %q", desc.Name)
	}
	if len(desc.Spheres) != 3 {
		t.Fatalf("Expected 3 spheres, got %d", len(desc.Spheres))
	}
	if desc.Camera.LookFrom != [3]float64{3, 3, 2} || desc.Camera.VFov != 20 || desc.Camera.Aperture != 0.5 {
		t.Errorf("Unexpected camera %+v", desc.Camera)
	}
	if desc.Render != (RenderDescription{Width: 300, Height: 200, SamplesPerPixel: 16, MaxDepth: 8}) {
		t.Errorf("Unexpected render settings %+v", desc.Render)
	}

	glass := desc.Spheres[1]
	if glass.Radius != -0.45 || glass.Material.Type != MaterialDielectric || glass.Material.RefractiveIndex != 1.5 {
		t.Errorf("Unexpected hollow glass sphere %+v", glass)
	}
	metal := desc.Spheres[2]
	if metal.Material.Fuzz != 0.3 || metal.Material.Albedo != [3]float64{0.8, 0.6, 0.2} {
		t.Errorf("Unexpected metal sphere %+v", metal)
	}
}

func TestReadJSONScene_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "unknown material",
			input:   `{"spheres": [{"center": [0,0,0], "radius": 1, "material": {"type": "plastic"}}]}`,
			wantErr: ErrUnknownMaterial,
		},
		{
			name:    "missing material type",
			input:   `{"spheres": [{"center": [0,0,0], "radius": 1, "material": {}}]}`,
			wantErr: ErrUnknownMaterial,
		},
		{
			name:    "zero radius",
			input:   `{"spheres": [{"center": [0,0,0], "radius": 0, "material": {"type": "metal"}}]}`,
			wantErr: ErrInvalidRadius,
		},
		{
			name:    "missing camera",
			input:   `{"spheres": [{"center": [0,0,0], "radius": 1, "material": {"type": "metal"}}]}`,
			wantErr: ErrInvalidCamera,
		},
		{
			name:    "lookFrom equals lookAt",
			input:   `{"camera": {"lookFrom": [1,2,3], "lookAt": [1,2,3]}, "spheres": []}`,
			wantErr: ErrInvalidCamera,
		},
		{
			name:  "unknown field",
			input: `{"spheres": [], "lights": []}`,
		},
		{
			name:  "malformed",
			input: `{"spheres": [`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSONScene(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestJSONScene_SaveAndLoad(t *testing.T) {
	desc, err := ReadJSONScene(strings.NewReader(sampleSceneJSON))
	if err != nil {
		t.Fatalf("ReadJSONScene failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "scene.json")
	if err := SaveScene(desc, path); err != nil {
		t.Fatalf("SaveScene failed: %v", err)
	}
	loaded, err := LoadScene(path)
	if err != nil {
		t.Fatalf("LoadScene failed: %v", err)
	}
	if !reflect.DeepEqual(desc, loaded) {
		t.Errorf("Round trip changed the scene:\nsaved  %+v\nloaded %+v", desc, loaded)
	}
}

func TestLoadScene_UnsupportedFormat(t *testing.T) {
	_, err := LoadScene("scene.pbrt")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
	if err := SaveScene(&SceneDescription{}, filepath.Join(t.TempDir(), "scene.obj")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat on save, got %v", err)
	}
}

func TestLoadJSONScene_MissingFile(t *testing.T) {
	if _, err := LoadJSONScene(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestIsSceneFile(t *testing.T) {
	tests := map[string]bool{
		"scenes/balls.json": true,
		"model.GLB":         true,
		"model.gltf":        true,
		"random":            false,
		"image.png":         false,
	}
	for name, want := range tests {
		if got := IsSceneFile(name); got != want {
			t.Errorf("IsSceneFile(%q) = %v, want %v", name, got, want)
		}
	}
}
