package loaders

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ReadJSONScene parses a JSON scene description from a reader
func ReadJSONScene(reader io.Reader) (*SceneDescription, error) {
	var desc SceneDescription
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&desc); err != nil {
		return nil, fmt.Errorf("failed to decode scene: %w", err)
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return &desc, nil
}

// LoadJSONScene loads a JSON scene description from a file
func LoadJSONScene(filename string) (*SceneDescription, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	desc, err := ReadJSONScene(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return desc, nil
}

// WriteJSONScene writes an indented JSON scene description
func WriteJSONScene(writer io.Writer, desc *SceneDescription) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(desc)
}

// SaveJSONScene writes a JSON scene description to a file
func SaveJSONScene(desc *SceneDescription, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create scene file: %w", err)
	}
	if err := WriteJSONScene(file, desc); err != nil {
		file.Close()
		return fmt.Errorf("failed to write scene: %w", err)
	}
	return file.Close()
}

// IsSceneFile reports whether the path has a scene file extension
func IsSceneFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json", ".gltf", ".glb":
		return true
	}
	return false
}

// LoadScene loads a scene description, choosing the format by file extension
func LoadScene(filename string) (*SceneDescription, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return LoadJSONScene(filename)
	case ".gltf", ".glb":
		return LoadGLTFScene(filename)
	default:
		return nil, fmt.Errorf("%s: %w", filename, ErrUnsupportedFormat)
	}
}

// SaveScene saves a scene description, choosing the format by file extension
func SaveScene(desc *SceneDescription, filename string) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return SaveJSONScene(desc, filename)
	case ".gltf", ".glb":
		return SaveGLTFScene(desc, filename)
	default:
		return fmt.Errorf("%s: %w", filename, ErrUnsupportedFormat)
	}
}
