package pipeline

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFromFile reads pipeline definitions from a YAML file. A missing file
// returns the built-in defaults so a bare deployment works unconfigured.
func LoadFromFile(path string) ([]Definition, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return nil, fmt.Errorf("read pipelines file %s: %w", path, err)
	}

	var doc struct {
		Pipelines []Definition `yaml:"pipelines"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse pipelines file %s: %w", path, err)
	}
	if len(doc.Pipelines) == 0 {
		return nil, fmt.Errorf("pipelines file %s: no pipelines defined", path)
	}

	return doc.Pipelines, nil
}
