package renderer

import (
	"fmt"
	"image"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
)

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int // Image width in pixels
	Height          int // Image height in pixels
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}
}

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// progressRows controls how often scanline progress is logged
const progressRows = 25

// Render traces a width x height image and returns it as RGBA bytes, top row first.
// Each pixel averages samples path traced rays bounced at most depth times.
// The world is only read; all randomness comes from sampler.
func Render(world geometry.Shape, camera *Camera, width, height, samples, depth int, sampler core.Sampler) []byte {
	pixels, _ := renderPixels(world, camera, integrator.NewPathTracingIntegrator(depth), width, height, samples, sampler, nil)
	return pixels
}

func renderPixels(world geometry.Shape, camera *Camera, integ integrator.Integrator, width, height, samples int,
	sampler core.Sampler, onRow func(remaining int)) ([]byte, RenderStats) {
	if width <= 0 || height <= 0 {
		return []byte{}, RenderStats{}
	}

	pixels := make([]byte, 0, width*height*BytesPerPixel)
	sDenom, tDenom := imagePlaneDenominators(width, height)
	totalSamples := 0

	// Rows run from the top of the viewport (t = 1) down, so output row 0 is the top
	for j := height - 1; j >= 0; j-- {
		if onRow != nil {
			onRow(j + 1)
		}
		for i := 0; i < width; i++ {
			var ps PixelStats
			for n := 0; n < samples; n++ {
				s := (float64(i) + sampler.Get1D()) / sDenom
				t := (float64(j) + sampler.Get1D()) / tDenom
				ray := camera.GetRay(s, t, sampler)
				ps.AddSample(integ.RayColor(ray, world, sampler))
			}
			totalSamples += ps.SampleCount
			rgba := EncodeColor(ps.GetColor())
			pixels = append(pixels, rgba[:]...)
		}
	}

	totalPixels := width * height
	return pixels, RenderStats{
		TotalPixels:    totalPixels,
		TotalSamples:   totalSamples,
		AverageSamples: float64(totalSamples) / float64(totalPixels),
	}
}

// Raytracer renders a world through a camera with a fixed sampling configuration
type Raytracer struct {
	world      geometry.Shape
	camera     *Camera
	integrator integrator.Integrator
	config     SamplingConfig
	sampler    core.Sampler
	logger     core.Logger
}

// NewRaytracer creates a new path tracing raytracer
func NewRaytracer(world geometry.Shape, camera *Camera, config SamplingConfig, sampler core.Sampler, logger core.Logger) *Raytracer {
	return &Raytracer{
		world:      world,
		camera:     camera,
		integrator: integrator.NewPathTracingIntegrator(config.MaxDepth),
		config:     config,
		sampler:    sampler,
		logger:     logger,
	}
}

// SetIntegrator replaces the light transport used for each camera ray
func (rt *Raytracer) SetIntegrator(integ integrator.Integrator) {
	rt.integrator = integ
}

// RenderPass renders the full image once and reports statistics about it
func (rt *Raytracer) RenderPass() (*image.RGBA, RenderStats) {
	start := time.Now()
	onRow := func(remaining int) {
		if remaining == rt.config.Height || remaining%progressRows == 0 {
			rt.logger.Printf("Scanlines remaining: %d\n", remaining)
		}
	}

	pixels, stats := renderPixels(rt.world, rt.camera, rt.integrator,
		rt.config.Width, rt.config.Height, rt.config.SamplesPerPixel, rt.sampler, onRow)
	stats.MaxDepth = rt.config.MaxDepth
	stats.Duration = time.Since(start)

	rt.logger.Printf("Rendered %dx%d, %d samples in %v\n",
		rt.config.Width, rt.config.Height, stats.TotalSamples, stats.Duration)

	return ToImage(pixels, max(rt.config.Width, 0), max(rt.config.Height, 0)), stats
}
