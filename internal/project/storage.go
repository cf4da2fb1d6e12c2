package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads a project file and migrates any legacy structure it contains.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}

	var proj Project
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}

	proj.Normalize()
	return &proj, nil
}

// Save writes the project as indented JSON, creating parent directories as
// needed.
func (p *Project) Save(path string) error {
	p.Normalize()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create project dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadIndex reads the project index file mapping project ids to file paths.
// A missing index is not an error and yields an empty map.
func LoadIndex(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read index: %w", err)
	}

	var index map[string]string
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	if index == nil {
		index = map[string]string{}
	}
	return index, nil
}

// SaveIndex writes the project index, creating parent directories as needed.
func SaveIndex(index map[string]string, path string) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
