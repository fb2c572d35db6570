// Package skills loads skill registries from YAML files.
package skills

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/runoshun/git-epic/internal/domain"
)

// File is the on-disk registry layout:
//
//	skills:
//	  - id: code-review
//	    patterns: ['\breview(ing)?\s+the\s+pr\b']
type File struct {
	Skills []domain.Skill `yaml:"skills"`
}

// Load returns the registry at path. A relative path is resolved against
// baseDir. An empty path yields the built-in registry.
func Load(baseDir, path string) (*domain.SkillRegistry, error) {
	if path == "" {
		return domain.DefaultSkillRegistry(), nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read skill registry: %w", err)
	}
	return Parse(data)
}

// Parse decodes a registry document. Unknown fields are rejected.
func Parse(data []byte) (*domain.SkillRegistry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: skill registry is empty", domain.ErrValidation)
		}
		return nil, fmt.Errorf("%w: parse skill registry: %v", domain.ErrValidation, err)
	}
	if len(f.Skills) == 0 {
		return nil, fmt.Errorf("%w: skill registry has no skills", domain.ErrValidation)
	}
	return domain.NewSkillRegistry(f.Skills)
}
