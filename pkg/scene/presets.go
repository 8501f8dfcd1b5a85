package scene

import (
	"errors"
	"fmt"
	"sort"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/loaders"
)

// ErrUnknownScene is returned when a name is neither a preset nor a scene file
var ErrUnknownScene = errors.New("unknown scene")

type preset struct {
	description string
	create      func(sampler core.Sampler) *Scene
}

var presets = map[string]preset{
	"default": {
		description: "Diffuse, hollow glass and metal spheres on a large ground sphere",
		create:      func(core.Sampler) *Scene { return NewDefaultScene() },
	},
	"random": {
		description: "Hundreds of randomly placed small spheres around three large ones",
		create:      NewRandomScene,
	},
	"sphere-grid": {
		description: "10x10 grid of rainbow-colored metallic spheres",
		create:      func(core.Sampler) *Scene { return NewSphereGridScene() },
	},
}

// Names returns the preset scene names in sorted order
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create builds a preset by name, or loads a scene file when name is a path
// with a .json, .gltf or .glb extension. The sampler drives presets that
// place objects randomly.
func Create(name string, sampler core.Sampler) (*Scene, error) {
	if p, ok := presets[name]; ok {
		return p.create(sampler), nil
	}
	if !loaders.IsSceneFile(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}

	desc, err := loaders.LoadScene(name)
	if err != nil {
		return nil, err
	}
	s, err := FromDescription(desc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}
