package stage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFromFile reads a single Catalog from a YAML file.
func LoadFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		return nil, fmt.Errorf("read catalog file %s: %w", path, err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate catalog file %s: %w", path, err)
	}

	return &c, nil
}

// LoadFromDirectory reads all .yaml/.yml files from a directory and returns
// the catalogs they define. A missing directory returns an empty slice.
func LoadFromDirectory(dir string) ([]Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read catalog directory %s: %w", dir, err)
	}

	var catalogs []Catalog
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		c, err := LoadFromFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		catalogs = append(catalogs, *c)
	}

	return catalogs, nil
}

// Registry holds validated catalogs keyed by name. Built-ins are registered
// first; catalogs loaded from customDir override built-ins with the same name.
type Registry struct {
	byName map[string]*Catalog
}

// NewRegistry builds a Registry from the built-in catalogs plus any custom
// catalogs found in customDir (empty string skips the directory).
func NewRegistry(customDir string) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Catalog)}

	for _, c := range BuiltinCatalogs() {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("builtin catalog %s: %w", c.Name, err)
		}
		r.byName[c.Name] = &c
	}

	if customDir != "" {
		custom, err := LoadFromDirectory(customDir)
		if err != nil {
			return nil, err
		}
		for _, c := range custom {
			r.byName[c.Name] = &c
		}
	}

	return r, nil
}

// Get returns the catalog with the given name.
func (r *Registry) Get(name string) (*Catalog, error) {
	c, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCatalog, name)
	}
	return c, nil
}
