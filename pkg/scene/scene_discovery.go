package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-sphere-raytracer/pkg/loaders"
)

// Scene types reported by discovery
const (
	TypeBuiltin = "builtin"
	TypeFile    = "file"

	builtinGroup = "Built-in Scenes"
	fileGroup    = "Scene Files"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`                 // Unique identifier
	Name        string `json:"name"`               // Scene name
	Description string `json:"description"`        // Optional description
	Group       string `json:"group"`              // Grouping category
	Type        string `json:"type"`               // "builtin" or "file"
	FilePath    string `json:"filePath,omitempty"` // Path to scene file (file type only)
	Spheres     int    `json:"spheres,omitempty"`  // Number of spheres (file type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

// Find returns the scene with the given ID, or false if there is none
func (r ScenesResponse) Find(id string) (SceneInfo, bool) {
	for _, group := range r.Groups {
		for _, info := range group.Scenes {
			if info.ID == id {
				return info, true
			}
		}
	}
	return SceneInfo{}, false
}

// ListSceneFiles scans dir for scene files. A missing directory yields an empty list.
func ListSceneFiles(dir string) ([]SceneInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SceneInfo{}, nil
		}
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := []SceneInfo{}
	for _, entry := range entries {
		if entry.IsDir() || !loaders.IsSceneFile(entry.Name()) {
			continue
		}
		filePath := filepath.Join(dir, entry.Name())
		info, err := ParseSceneMetadata(filePath)
		if err != nil {
			// Skip broken files but keep listing the rest
			fmt.Printf("Warning: failed to parse metadata for %s: %v\n", filePath, err)
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes, nil
}

// ParseSceneMetadata loads a scene file and extracts its name and description.
// The name falls back to the title-cased file name.
func ParseSceneMetadata(filePath string) (SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	info := SceneInfo{
		ID:       "file:" + filename,
		Name:     titleCase(nameWithoutExt),
		Group:    fileGroup,
		Type:     TypeFile,
		FilePath: filePath,
	}

	desc, err := loaders.LoadScene(filePath)
	if err != nil {
		return info, err
	}
	// glTF files without a scene name report the bare file name
	if desc.Name != "" && desc.Name != nameWithoutExt {
		info.Name = desc.Name
	}
	info.Description = desc.Description
	info.Spheres = len(desc.Spheres)
	return info, nil
}

// BuiltinScenes lists the preset scenes
func BuiltinScenes() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(presets))
	for _, name := range Names() {
		scenes = append(scenes, SceneInfo{
			ID:          name,
			Name:        titleCase(name),
			Description: presets[name].description,
			Group:       builtinGroup,
			Type:        TypeBuiltin,
		})
	}
	return scenes
}

// ListAllScenes returns both built-in scenes and the scene files in dir,
// built-in group first
func ListAllScenes(dir string) (ScenesResponse, error) {
	var response ScenesResponse

	files, err := ListSceneFiles(dir)
	if err != nil {
		return response, fmt.Errorf("failed to list scene files: %w", err)
	}

	response.Groups = append(response.Groups, SceneGroup{Name: builtinGroup, Scenes: BuiltinScenes()})
	if len(files) > 0 {
		response.Groups = append(response.Groups, SceneGroup{Name: fileGroup, Scenes: files})
	}
	return response, nil
}

// titleCase converts a filename-style string to title case
// e.g., "sphere-grid" -> "Sphere Grid"
func titleCase(s string) string {
	// Replace hyphens and underscores with spaces
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
