package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/animation"
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
	"github.com/df07/go-sphere-raytracer/pkg/loaders"
	"github.com/df07/go-sphere-raytracer/pkg/output"
	"github.com/df07/go-sphere-raytracer/pkg/preview"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// testPatternScene renders the gradient test image instead of tracing a scene
const testPatternScene = "test-pattern"

// options holds the parsed command line
type options struct {
	scene        string
	width        int
	height       int
	samples      int
	depth        int
	seed         int64
	integrator   string
	output       string
	preview      bool
	statsOverlay bool
	dumpScene    string
	orbitFrames  int
	orbitDelay   int
}

func main() {
	var opts options
	flag.StringVar(&opts.scene, "scene", "default", "Preset name ("+strings.Join(scene.Names(), ", ")+", "+testPatternScene+") or a .json/.gltf/.glb scene file")
	flag.IntVar(&opts.width, "width", 0, "Image width (0 = scene default)")
	flag.IntVar(&opts.height, "height", 0, "Image height (0 = scene default)")
	flag.IntVar(&opts.samples, "samples", 0, "Samples per pixel (0 = scene default)")
	flag.IntVar(&opts.depth, "depth", 0, "Maximum ray bounces (0 = scene default)")
	flag.Int64Var(&opts.seed, "seed", 0, "Random seed (0 = seed from system entropy)")
	flag.StringVar(&opts.integrator, "integrator", "path", "Integrator: 'path' or 'normals'")
	flag.StringVar(&opts.output, "output", "", "Output image path (default output/<scene>/render_<timestamp>.png)")
	flag.BoolVar(&opts.preview, "preview", false, "Show the finished render in the terminal")
	flag.BoolVar(&opts.statsOverlay, "stats-overlay", false, "Stamp render statistics onto the image")
	flag.StringVar(&opts.dumpScene, "dump-scene", "", "Write the scene to a .json, .gltf or .glb file and exit")
	flag.IntVar(&opts.orbitFrames, "orbit-frames", 0, "Render an orbit animation GIF with this many frames")
	flag.IntVar(&opts.orbitDelay, "orbit-delay", 5, "Orbit frame delay in 100ths of a second")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("Sphere Raytracer")
		fmt.Println("Usage: raytracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Available scenes:")
		for _, info := range scene.BuiltinScenes() {
			fmt.Printf("  %s - %s\n", info.ID, info.Description)
		}
		fmt.Printf("  %s - Gradient image, no ray tracing\n", testPatternScene)
		fmt.Println()
		fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.png")
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, opts, renderer.NewDefaultLogger()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logger core.Logger) error {
	if opts.scene == testPatternScene {
		return renderTestPattern(opts, logger)
	}

	sampler, err := createSampler(opts.seed)
	if err != nil {
		return err
	}

	s, err := createScene(opts.scene, sampler)
	if err != nil {
		return err
	}
	applyOverrides(s, opts)

	if opts.dumpScene != "" {
		return dumpScene(s, opts.dumpScene, logger)
	}

	integ, err := createIntegrator(opts.integrator, s.SamplingConfig.MaxDepth)
	if err != nil {
		return err
	}

	logger.Printf("Rendering scene %q (%d spheres) at %dx%d, %d spp, depth %d\n",
		s.Name, s.GetPrimitiveCount(), s.SamplingConfig.Width, s.SamplingConfig.Height,
		s.SamplingConfig.SamplesPerPixel, s.SamplingConfig.MaxDepth)

	if opts.orbitFrames > 0 {
		return renderOrbit(s, opts, integ, sampler, logger)
	}

	raytracer := renderer.NewRaytracer(s, s.Camera(), s.SamplingConfig, sampler, logger)
	raytracer.SetIntegrator(integ)
	rgba, stats := raytracer.RenderPass()

	var img image.Image = rgba
	if opts.statsOverlay {
		img = output.Annotate(img, output.StatsLines(s.Name, stats))
	}

	filename := opts.output
	if filename == "" {
		filename = createOutputPath(opts.scene, "render", ".png")
	}
	if err := output.Save(img, filename); err != nil {
		return err
	}
	logger.Printf("Render saved as %s\n", filename)

	if opts.preview {
		return preview.Show(ctx, img)
	}
	return nil
}

// createSampler returns a seeded sampler, or an entropy-seeded one for seed 0
func createSampler(seed int64) (*core.RandomSampler, error) {
	if seed != 0 {
		return core.NewSeededSampler(seed), nil
	}
	return core.NewEntropySampler()
}

// createScene resolves a preset name or scene file path
func createScene(name string, sampler core.Sampler) (*scene.Scene, error) {
	if name == "" {
		return nil, errors.New("no scene given")
	}
	return scene.Create(name, sampler)
}

// createIntegrator selects the light transport by name
func createIntegrator(name string, maxDepth int) (integrator.Integrator, error) {
	switch name {
	case "path", "":
		return integrator.NewPathTracingIntegrator(maxDepth), nil
	case "normals":
		return integrator.NewNormalIntegrator(), nil
	default:
		return nil, fmt.Errorf("unknown integrator %q (want 'path' or 'normals')", name)
	}
}

// applyOverrides replaces scene defaults with any values given on the command line
func applyOverrides(s *scene.Scene, opts options) {
	if opts.width > 0 || opts.height > 0 {
		width, height := s.SamplingConfig.Width, s.SamplingConfig.Height
		if opts.width > 0 {
			width = opts.width
		}
		if opts.height > 0 {
			height = opts.height
		}
		s.SetResolution(width, height)
	}
	if opts.samples > 0 {
		s.SamplingConfig.SamplesPerPixel = opts.samples
	}
	if opts.depth > 0 {
		s.SamplingConfig.MaxDepth = opts.depth
	}
}

// createOutputPath builds output/<scene>/<prefix>_<timestamp><ext>.
// Scene file paths use the file name without its extension.
func createOutputPath(sceneName, prefix, ext string) string {
	base := sceneName
	if loaders.IsSceneFile(sceneName) {
		filename := filepath.Base(sceneName)
		base = strings.TrimSuffix(filename, filepath.Ext(filename))
	}
	timestamp := time.Now().Format("20060102_150405")
	return filepath.Join("output", base, fmt.Sprintf("%s_%s%s", prefix, timestamp, ext))
}

func dumpScene(s *scene.Scene, filename string, logger core.Logger) error {
	desc, err := s.Describe()
	if err != nil {
		return err
	}
	if err := loaders.SaveScene(desc, filename); err != nil {
		return err
	}
	logger.Printf("Scene %q written to %s\n", s.Name, filename)
	return nil
}

func renderTestPattern(opts options, logger core.Logger) error {
	width, height := opts.width, opts.height
	if width <= 0 {
		width = 256
	}
	if height <= 0 {
		height = 256
	}

	img := renderer.ToImage(renderer.TestPattern(width, height), width, height)
	filename := opts.output
	if filename == "" {
		filename = createOutputPath(testPatternScene, "render", ".png")
	}
	if err := output.Save(img, filename); err != nil {
		return err
	}
	logger.Printf("Test pattern saved as %s\n", filename)
	return nil
}

// quietLogger drops per-frame progress while an orbit renders
type quietLogger struct{}

func (quietLogger) Printf(string, ...interface{}) {}

func renderOrbit(s *scene.Scene, opts options, integ integrator.Integrator, sampler core.Sampler, logger core.Logger) error {
	delay := max(opts.orbitDelay, 1)
	fps := max(100/delay, 1)
	cameras := animation.Orbit(s.CameraConfig, opts.orbitFrames, fps)

	frames := make([]image.Image, 0, len(cameras))
	for i, cameraConfig := range cameras {
		frameScene := *s
		frameScene.CameraConfig = cameraConfig

		raytracer := renderer.NewRaytracer(s, frameScene.Camera(), s.SamplingConfig, sampler, quietLogger{})
		raytracer.SetIntegrator(integ)
		img, stats := raytracer.RenderPass()
		frames = append(frames, img)
		logger.Printf("Frame %d/%d rendered in %v\n", i+1, len(cameras), stats.Duration)
	}

	filename := opts.output
	if filename == "" {
		filename = createOutputPath(opts.scene, "orbit", ".gif")
	}
	if err := output.SaveGIF(frames, filename, delay); err != nil {
		return err
	}
	logger.Printf("Orbit saved as %s\n", filename)
	return nil
}
