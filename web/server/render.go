package server

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// Output formats for /api/render
const (
	FormatPNG  = "png"
	FormatRGBA = "rgba"
)

// Request limits
const (
	maxDimension = 2000
	maxSamples   = 1000
	maxDepth     = 100
)

// RenderRequest represents a render request from the client.
// Zero sizes and counts fall back to the scene's own settings.
type RenderRequest struct {
	Scene   string // Scene ID (e.g., "random" or "file:three-spheres.json")
	Width   int    // Image width
	Height  int    // Image height
	Samples int    // Samples per pixel
	Depth   int    // Maximum ray bounces
	Seed    int64  // Random seed, 0 = entropy
	Format  string // "png" or "rgba"
}

var renderCounter atomic.Int64

// handleRender renders a scene in one pass and returns it as PNG or raw RGBA bytes
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	sampler, err := newSampler(req.Seed)
	if err != nil {
		log.Printf("Failed to create sampler: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to seed renderer")
		return
	}

	sceneObj, err := s.createScene(req.Scene, sampler)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, scene.ErrUnknownScene) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	applyRequest(sceneObj, req)
	config := sceneObj.SamplingConfig

	renderID := fmt.Sprintf("render-%d", renderCounter.Add(1))
	logger := NewRequestLogger(renderID, log.Default())
	logger.Printf("Rendering %s at %dx%d, %d spp, depth %d", sceneObj.Name,
		config.Width, config.Height, config.SamplesPerPixel, config.MaxDepth)

	raytracer := renderer.NewRaytracer(sceneObj, sceneObj.Camera(), config, sampler, logger)
	img, stats := raytracer.RenderPass()

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Render-Width", strconv.Itoa(config.Width))
	w.Header().Set("X-Render-Height", strconv.Itoa(config.Height))
	w.Header().Set("X-Render-Samples", strconv.Itoa(stats.TotalSamples))
	w.Header().Set("X-Render-Duration-Ms", strconv.FormatInt(stats.Duration.Milliseconds(), 10))

	switch req.Format {
	case FormatRGBA:
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(img.Pix); err != nil {
			logger.Printf("Failed to write pixels: %v", err)
		}
	default:
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			logger.Printf("Failed to encode image: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to encode image")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(buf.Bytes()); err != nil {
			logger.Printf("Failed to write image: %v", err)
		}
	}
}

// parseRenderRequest parses request parameters
func parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: "default", Format: FormatPNG}

	if sceneID := query.Get("scene"); sceneID != "" {
		req.Scene = sceneID
	}
	if format := query.Get("format"); format != "" {
		if format != FormatPNG && format != FormatRGBA {
			return nil, fmt.Errorf("format must be %q or %q, got: %q", FormatPNG, FormatRGBA, format)
		}
		req.Format = format
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 0, 1, maxDimension); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(query, "height", 0, 1, maxDimension); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(query, "samples", 0, 1, maxSamples); err != nil {
		return nil, err
	}
	if req.Depth, err = parseIntParam(query, "depth", 0, 1, maxDepth); err != nil {
		return nil, err
	}
	if req.Seed, err = parseSeedParam(query); err != nil {
		return nil, err
	}

	// Performance warning
	if req.Width*req.Height > 800*600 && req.Samples > 100 {
		log.Printf("Render warning: Large image with high samples may render slowly")
	}
	return req, nil
}

// applyRequest overrides scene settings with those given in the request
func applyRequest(s *scene.Scene, req *RenderRequest) {
	if req.Width > 0 || req.Height > 0 {
		width, height := s.SamplingConfig.Width, s.SamplingConfig.Height
		if req.Width > 0 {
			width = req.Width
		}
		if req.Height > 0 {
			height = req.Height
		}
		s.SetResolution(width, height)
	}
	if req.Samples > 0 {
		s.SamplingConfig.SamplesPerPixel = req.Samples
	}
	if req.Depth > 0 {
		s.SamplingConfig.MaxDepth = req.Depth
	}
}

func newSampler(seed int64) (core.Sampler, error) {
	if seed != 0 {
		return core.NewSeededSampler(seed), nil
	}
	return core.NewEntropySampler()
}
