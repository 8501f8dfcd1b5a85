package server

import (
	"fmt"
	"math"
	"net/http"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
	"github.com/df07/go-sphere-raytracer/pkg/material"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Center       [3]float64             `json:"center"`
	Radius       float64                `json:"radius"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// extractMaterialInfo extracts detailed material information with type assertions
func extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = [3]float64{m.Albedo.X, m.Albedo.Y, m.Albedo.Z}
		properties["color"] = hexColor(m.Albedo)
		return "lambertian", properties

	case *material.Metal:
		properties["albedo"] = [3]float64{m.Albedo.X, m.Albedo.Y, m.Albedo.Z}
		properties["color"] = hexColor(m.Albedo)
		properties["fuzz"] = m.Fuzz
		return "metal", properties

	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["color"] = "#ffffff" // Clear glass
		return "dielectric", properties

	default:
		return "unknown", properties
	}
}

func hexColor(c core.Color) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// inspectPixel casts a ray through the center of pixel (x, y), y counted from
// the top, and returns the nearest sphere it hits. The lens is ignored so the
// answer does not depend on depth of field. The reported T is measured
// in world units from the camera.
func inspectPixel(sceneObj *scene.Scene, pixelX, pixelY int) (*material.HitRecord, *geometry.Sphere, bool) {
	config := sceneObj.SamplingConfig
	pinhole := *sceneObj
	pinhole.CameraConfig.Aperture = 0
	camera := pinhole.Camera()

	s := (float64(pixelX) + 0.5) / float64(max(config.Width-1, 1))
	t := (float64(config.Height-1-pixelY) + 0.5) / float64(max(config.Height-1, 1))
	ray := camera.GetRay(s, t, core.NewSeededSampler(0))
	// Unit direction so hit.T is a world-space distance
	ray = core.NewRay(ray.Origin, ray.Direction.Unit())

	var closest *material.HitRecord
	var hitSphere *geometry.Sphere
	closestSoFar := math.Inf(1)
	for _, shape := range sceneObj.Shapes {
		hit, ok := shape.Hit(ray, integrator.MinHitDistance, closestSoFar)
		if !ok {
			continue
		}
		closest = hit
		closestSoFar = hit.T
		hitSphere, _ = shape.(*geometry.Sphere)
	}
	return closest, hitSphere, closest != nil
}

// handleInspect reports what lies under a pixel of a render
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, err := parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	// The random preset only matches a render made with the same seed
	sceneObj, err := s.createScene(req.Scene, core.NewSeededSampler(req.Seed))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	applyRequest(sceneObj, req)

	query := r.URL.Query()
	pixelX, err := parseIntParam(query, "x", -1, 0, sceneObj.SamplingConfig.Width-1)
	if err != nil || pixelX < 0 {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := parseIntParam(query, "y", -1, 0, sceneObj.SamplingConfig.Height-1)
	if err != nil || pixelY < 0 {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}

	hit, sphere, ok := inspectPixel(sceneObj, pixelX, pixelY)
	if !ok {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	materialType, materialProps := extractMaterialInfo(hit.Material)
	response := InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		Point:        [3]float64{hit.Point.X, hit.Point.Y, hit.Point.Z},
		Normal:       [3]float64{hit.Normal.X, hit.Normal.Y, hit.Normal.Z},
		Distance:     hit.T,
		FrontFace:    hit.FrontFace,
		Properties:   materialProps,
	}
	if sphere != nil {
		response.Center = [3]float64{sphere.Center.X, sphere.Center.Y, sphere.Center.Z}
		response.Radius = sphere.Radius
	}
	writeJSON(w, http.StatusOK, response)
}
