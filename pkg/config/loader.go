package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// loadCatalog reads every *.yaml file under configDir (sorted, so
// workspaces.yaml is merged before workspaces.local.yaml), expands
// environment references, and merges them into one catalog. A missing
// directory yields an empty catalog, valid for pure-stub deployments
// and tests, where workspaces are registered programmatically.
func loadCatalog(configDir string) (*Catalog, error) {
	catalog := &Catalog{Workspaces: map[string]WorkspaceOverlay{}}

	entries, err := os.ReadDir(configDir)
	if os.IsNotExist(err) {
		slog.Warn("Config directory not found, starting with empty catalog",
			"config_dir", configDir)
		return catalog, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := filepath.Ext(e.Name()); ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(configDir, e.Name()))
		}
	}
	sort.Strings(files)

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		var part Catalog
		if err := yaml.Unmarshal(ExpandEnv(data), &part); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}

		// Later files win field-by-field within a workspace overlay.
		if err := mergo.Merge(catalog, part, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging %s: %w", path, err)
		}
		slog.Info("Loaded catalog file", "path", path, "workspaces", len(part.Workspaces))
	}

	return catalog, nil
}
