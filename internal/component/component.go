package component

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var supportedExtensions = map[string]struct{}{
	".yml":  {},
	".yaml": {},
}

// SoftwareComponent describes one named software artifact. Description and
// Repository are nil when the definition omits them.
type SoftwareComponent struct {
	Name        string  `json:"name"`
	Version     string  `json:"version"`
	Description *string `json:"description"`
	Repository  *string `json:"repository"`
}

// Load reads the definition file at path and returns the component it
// describes. The extension is checked before the file is opened.
func Load(path string) (SoftwareComponent, error) {
	if err := checkExtension(path); err != nil {
		return SoftwareComponent{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return SoftwareComponent{}, fmt.Errorf("read definition: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return SoftwareComponent{}, fmt.Errorf("load %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML document into a SoftwareComponent. Keys other than
// name, version, description and repository are ignored.
func Parse(data []byte) (SoftwareComponent, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return SoftwareComponent{}, fmt.Errorf("parse YAML: %w", err)
	}

	fields, err := asMapping(doc)
	if err != nil {
		return SoftwareComponent{}, err
	}

	name, err := requiredString(fields, "name")
	if err != nil {
		return SoftwareComponent{}, err
	}
	version, err := requiredString(fields, "version")
	if err != nil {
		return SoftwareComponent{}, err
	}
	description, err := optionalString(fields, "description")
	if err != nil {
		return SoftwareComponent{}, err
	}
	repository, err := optionalString(fields, "repository")
	if err != nil {
		return SoftwareComponent{}, err
	}

	return SoftwareComponent{
		Name:        name,
		Version:     version,
		Description: description,
		Repository:  repository,
	}, nil
}

func checkExtension(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := supportedExtensions[ext]; !ok {
		return &UnsupportedFormatError{Path: path, Extension: filepath.Ext(path)}
	}
	return nil
}

// asMapping normalises the decoded document into string-keyed fields.
// An empty document yields an empty mapping; non-string keys are dropped.
func asMapping(doc any) (map[string]any, error) {
	switch m := doc.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return m, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			if key, ok := k.(string); ok {
				out[key] = v
			}
		}
		return out, nil
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("document must be a mapping, got %T", doc)}
	}
}

func requiredString(fields map[string]any, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", &ValidationError{Field: key, Message: "is required"}
	}
	value, ok := raw.(string)
	if !ok {
		return "", &ValidationError{Field: key, Message: fmt.Sprintf("must be a string, got %T", raw)}
	}
	return value, nil
}

func optionalString(fields map[string]any, key string) (*string, error) {
	raw, ok := fields[key]
	if !ok || raw == nil {
		return nil, nil
	}
	value, ok := raw.(string)
	if !ok {
		return nil, &ValidationError{Field: key, Message: fmt.Sprintf("must be a string, got %T", raw)}
	}
	return &value, nil
}
