package loaders

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// glTF has no sphere primitive. Each sphere is a node instancing a unit sphere
// mesh, translated to the center and uniformly scaled by the radius. Materials
// map onto the metallic-roughness model:
//
//	lambertian  baseColor = albedo, metallic 0, roughness 1
//	metal       baseColor = albedo, metallic 1, roughness = fuzz
//	dielectric  alphaMode BLEND with KHR_materials_ior
const (
	iorExtension     = "KHR_materials_ior"
	defaultIOR       = 1.5
	gltfGenerator    = "go-sphere-raytracer"
	sphereSegments   = 24
	sphereRings      = 12
	metallicCutoff   = 0.5
	defaultLookDepth = 1.0
)

// LoadGLTFScene loads spheres and the first perspective camera from a .gltf or .glb file
func LoadGLTFScene(filename string) (*SceneDescription, error) {
	doc, err := gltf.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	desc, err := describeDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if desc.Name == "" {
		desc.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return desc, nil
}

// SaveGLTFScene writes the scene as glTF; a .glb extension selects the binary container
func SaveGLTFScene(desc *SceneDescription, filename string) error {
	doc, err := buildDocument(desc)
	if err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(filename), ".glb") {
		err = gltf.SaveBinary(doc, filename)
	} else {
		doc.Buffers[0].EmbeddedResource()
		err = gltf.Save(doc, filename)
	}
	if err != nil {
		return fmt.Errorf("save gltf: %w", err)
	}
	return nil
}

// describeDocument walks the node list; node hierarchies are not composed
func describeDocument(doc *gltf.Document) (*SceneDescription, error) {
	desc := &SceneDescription{}
	if len(doc.Scenes) > 0 {
		desc.Name = doc.Scenes[0].Name
		readSceneExtras(doc.Scenes[0].Extras, desc)
	}

	cameraFound := false
	for i, node := range doc.Nodes {
		switch {
		case node.Mesh != nil:
			sphere, err := describeSphere(doc, node)
			if err != nil {
				return nil, fmt.Errorf("node %d: %w", i, err)
			}
			desc.Spheres = append(desc.Spheres, sphere)
		case node.Camera != nil && !cameraFound:
			camera, err := describeCamera(doc, node)
			if err != nil {
				return nil, fmt.Errorf("node %d: %w", i, err)
			}
			desc.Camera = camera
			cameraFound = true
		}
	}
	return desc, nil
}

func describeSphere(doc *gltf.Document, node *gltf.Node) (SphereDescription, error) {
	if *node.Mesh < 0 || *node.Mesh >= len(doc.Meshes) {
		return SphereDescription{}, fmt.Errorf("mesh index %d out of range", *node.Mesh)
	}

	radius := node.Scale[0]
	if radius == 0 {
		radius = 1
	}

	mat := MaterialDescription{Type: MaterialLambertian, Albedo: [3]float64{0.5, 0.5, 0.5}}
	for _, prim := range doc.Meshes[*node.Mesh].Primitives {
		if prim.Material == nil {
			continue
		}
		if *prim.Material < 0 || *prim.Material >= len(doc.Materials) {
			return SphereDescription{}, fmt.Errorf("material index %d out of range", *prim.Material)
		}
		mat = describeMaterial(doc.Materials[*prim.Material])
		break
	}

	return SphereDescription{
		Center:   node.Translation,
		Radius:   radius,
		Material: mat,
	}, nil
}

func describeMaterial(m *gltf.Material) MaterialDescription {
	if m.AlphaMode == gltf.AlphaBlend {
		return MaterialDescription{Type: MaterialDielectric, RefractiveIndex: readIOR(m.Extensions)}
	}

	base := [4]float64{1, 1, 1, 1}
	metallic, roughness := 1.0, 1.0
	if pbr := m.PBRMetallicRoughness; pbr != nil {
		base = pbr.BaseColorFactorOrDefault()
		metallic = pbr.MetallicFactorOrDefault()
		roughness = pbr.RoughnessFactorOrDefault()
	}
	albedo := [3]float64{base[0], base[1], base[2]}

	if metallic >= metallicCutoff {
		return MaterialDescription{Type: MaterialMetal, Albedo: albedo, Fuzz: roughness}
	}
	return MaterialDescription{Type: MaterialLambertian, Albedo: albedo}
}

// readIOR accepts the extension both as raw JSON from a decoded file and as a plain map
func readIOR(extensions gltf.Extensions) float64 {
	var ext struct {
		IOR *float64 `json:"ior"`
	}
	switch v := extensions[iorExtension].(type) {
	case json.RawMessage:
		if err := json.Unmarshal(v, &ext); err != nil {
			return defaultIOR
		}
	case map[string]any:
		if f, ok := v["ior"].(float64); ok {
			ext.IOR = &f
		}
	}
	if ext.IOR == nil || *ext.IOR <= 0 {
		return defaultIOR
	}
	return *ext.IOR
}

func describeCamera(doc *gltf.Document, node *gltf.Node) (CameraDescription, error) {
	if *node.Camera < 0 || *node.Camera >= len(doc.Cameras) {
		return CameraDescription{}, fmt.Errorf("camera index %d out of range", *node.Camera)
	}
	perspective := doc.Cameras[*node.Camera].Perspective
	if perspective == nil {
		return CameraDescription{}, fmt.Errorf("camera %d is not perspective", *node.Camera)
	}

	extras := extrasMap(node.Extras)
	lookDistance := extras["lookDistance"]
	if lookDistance <= 0 {
		lookDistance = extras["focusDistance"]
	}
	if lookDistance <= 0 {
		lookDistance = defaultLookDepth
	}

	rotation := mgl64.QuatIdent()
	if node.Rotation != [4]float64{} {
		rotation = quatFromGLTF(node.Rotation).Normalize()
	}
	from := mgl64.Vec3(node.Translation)
	forward := rotation.Rotate(mgl64.Vec3{0, 0, -1})

	camera := CameraDescription{
		LookFrom:      from,
		LookAt:        from.Add(forward.Mul(lookDistance)),
		Up:            rotation.Rotate(mgl64.Vec3{0, 1, 0}),
		VFov:          perspective.Yfov * 180 / math.Pi,
		Aperture:      extras["aperture"],
		FocusDistance: extras["focusDistance"],
	}
	if perspective.AspectRatio != nil {
		camera.AspectRatio = *perspective.AspectRatio
	}
	return camera, nil
}

func buildDocument(desc *SceneDescription) (*gltf.Document, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	sceneIndex := 0
	doc := &gltf.Document{
		Asset:  gltf.Asset{Version: "2.0", Generator: gltfGenerator},
		Scene:  &sceneIndex,
		Scenes: []*gltf.Scene{{Name: desc.Name, Extras: sceneExtras(desc)}},
	}

	positions, indices := unitSphereMesh(sphereSegments, sphereRings)
	positionAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, positions)
	indexAccessor := modeler.WriteIndices(doc, indices)

	for i, s := range desc.Spheres {
		materialIndex := len(doc.Materials)
		doc.Materials = append(doc.Materials, buildMaterial(s.Material, fmt.Sprintf("sphere-%d", i)))
		if s.Material.Type == MaterialDielectric && !slices.Contains(doc.ExtensionsUsed, iorExtension) {
			doc.ExtensionsUsed = append(doc.ExtensionsUsed, iorExtension)
		}

		meshIndex := len(doc.Meshes)
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: fmt.Sprintf("sphere-%d", i),
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]int{
					gltf.POSITION: positionAccessor,
					gltf.NORMAL:   normalAccessor,
				},
				Indices:  &indexAccessor,
				Material: &materialIndex,
			}},
		})

		nodeIndex := len(doc.Nodes)
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name:        fmt.Sprintf("sphere-%d", i),
			Mesh:        &meshIndex,
			Translation: s.Center,
			Rotation:    [4]float64{0, 0, 0, 1},
			Scale:       [3]float64{s.Radius, s.Radius, s.Radius},
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, nodeIndex)
	}

	cameraIndex := len(doc.Cameras)
	doc.Cameras = append(doc.Cameras, buildCamera(desc.Camera))
	nodeIndex := len(doc.Nodes)
	doc.Nodes = append(doc.Nodes, buildCameraNode(desc.Camera, cameraIndex))
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, nodeIndex)

	return doc, nil
}

func buildMaterial(m MaterialDescription, name string) *gltf.Material {
	base := [4]float64{m.Albedo[0], m.Albedo[1], m.Albedo[2], 1}
	metallic, roughness := 0.0, 1.0
	mat := &gltf.Material{Name: name}

	switch m.Type {
	case MaterialMetal:
		metallic, roughness = 1.0, m.Fuzz
	case MaterialDielectric:
		base = [4]float64{1, 1, 1, 0}
		roughness = 0
		mat.AlphaMode = gltf.AlphaBlend
		mat.Extensions = gltf.Extensions{iorExtension: map[string]any{"ior": m.RefractiveIndex}}
	}

	mat.PBRMetallicRoughness = &gltf.PBRMetallicRoughness{
		BaseColorFactor: &base,
		MetallicFactor:  &metallic,
		RoughnessFactor: &roughness,
	}
	return mat
}

func buildCamera(c CameraDescription) *gltf.Camera {
	perspective := &gltf.Perspective{
		Yfov:  c.VFov * math.Pi / 180,
		Znear: 0.001,
	}
	if c.AspectRatio > 0 {
		aspect := c.AspectRatio
		perspective.AspectRatio = &aspect
	}
	return &gltf.Camera{Name: "camera", Perspective: perspective}
}

// buildCameraNode orients the node so its local -Z looks from LookFrom to LookAt
func buildCameraNode(c CameraDescription, cameraIndex int) *gltf.Node {
	return &gltf.Node{
		Name:        "camera",
		Camera:      &cameraIndex,
		Translation: c.LookFrom,
		Rotation:    quatToGLTF(cameraRotation(c)),
		Scale:       [3]float64{1, 1, 1},
		Extras: map[string]any{
			"aperture":      c.Aperture,
			"focusDistance": c.FocusDistance,
			"lookDistance":  mgl64.Vec3(c.LookFrom).Sub(mgl64.Vec3(c.LookAt)).Len(),
		},
	}
}

// cameraRotation maps local +X, +Y and +Z onto the camera's right, up and backward axes
func cameraRotation(c CameraDescription) mgl64.Quat {
	up := mgl64.Vec3(c.Up)
	if up == (mgl64.Vec3{}) {
		up = mgl64.Vec3{0, 1, 0}
	}
	w := mgl64.Vec3(c.LookFrom).Sub(mgl64.Vec3(c.LookAt)).Normalize()
	u := up.Cross(w).Normalize()
	v := w.Cross(u)

	basis := mgl64.Mat4FromCols(u.Vec4(0), v.Vec4(0), w.Vec4(0), mgl64.Vec4{0, 0, 0, 1})
	return mgl64.Mat4ToQuat(basis).Normalize()
}

// glTF stores rotations as (x, y, z, w)
func quatToGLTF(q mgl64.Quat) [4]float64 {
	return [4]float64{q.V[0], q.V[1], q.V[2], q.W}
}

func quatFromGLTF(r [4]float64) mgl64.Quat {
	return mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}}
}

func sceneExtras(desc *SceneDescription) map[string]any {
	return map[string]any{
		"description":     desc.Description,
		"width":           desc.Render.Width,
		"height":          desc.Render.Height,
		"samplesPerPixel": desc.Render.SamplesPerPixel,
		"maxDepth":        desc.Render.MaxDepth,
	}
}

func readSceneExtras(extras any, desc *SceneDescription) {
	m := decodeExtras(extras)
	if m == nil {
		return
	}
	if s, ok := m["description"].(string); ok {
		desc.Description = s
	}
	numbers := extrasMap(m)
	desc.Render = RenderDescription{
		Width:           int(numbers["width"]),
		Height:          int(numbers["height"]),
		SamplesPerPixel: int(numbers["samplesPerPixel"]),
		MaxDepth:        int(numbers["maxDepth"]),
	}
}

// extrasMap returns the numeric entries of a decoded extras object
func extrasMap(extras any) map[string]float64 {
	numbers := make(map[string]float64)
	for k, v := range decodeExtras(extras) {
		switch n := v.(type) {
		case float64:
			numbers[k] = n
		case int:
			numbers[k] = float64(n)
		}
	}
	return numbers
}

// decodeExtras returns an extras object as a map whether it is still raw JSON or already decoded
func decodeExtras(extras any) map[string]any {
	switch v := extras.(type) {
	case map[string]any:
		return v
	case json.RawMessage:
		var m map[string]any
		if err := json.Unmarshal(v, &m); err != nil {
			return nil
		}
		return m
	}
	return nil
}

// unitSphereMesh builds a UV sphere of radius 1 centered at the origin
func unitSphereMesh(segments, rings int) ([][3]float32, []uint16) {
	positions := make([][3]float32, 0, (segments+1)*(rings+1))
	for r := 0; r <= rings; r++ {
		phi := math.Pi * float64(r) / float64(rings)
		for s := 0; s <= segments; s++ {
			theta := 2 * math.Pi * float64(s) / float64(segments)
			positions = append(positions, [3]float32{
				float32(math.Sin(phi) * math.Cos(theta)),
				float32(math.Cos(phi)),
				float32(math.Sin(phi) * math.Sin(theta)),
			})
		}
	}

	indices := make([]uint16, 0, segments*rings*6)
	stride := segments + 1
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a := uint16(r*stride + s)
			b := uint16((r+1)*stride + s)
			indices = append(indices, a, a+1, b, b, a+1, b+1)
		}
	}
	return positions, indices
}
