// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/synoptic/pkg/types"
)

// ManifestFile is the manifest name inside a results folder.
const ManifestFile = "search.yaml"

// Manifest is the on-disk record of a search run. It lets the researcher
// see which query, expansions and filters produced a results folder.
type Manifest struct {
	Query     string          `yaml:"query"`
	Backend   string          `yaml:"backend"`
	Scenarios []string        `yaml:"scenarios"`
	Filters   ManifestFilters `yaml:"filters"`
	Summary   ManifestSummary `yaml:"summary"`
}

// ManifestFilters stores the filter settings of a run.
type ManifestFilters struct {
	MinCitations int `yaml:"min_citations"`
	MinYear      int `yaml:"min_year,omitempty"`
	MaxYear      int `yaml:"max_year,omitempty"`
	BatchSize    int `yaml:"batch_size"`
	MaxBatches   int `yaml:"max_batches"`
}

// ManifestSummary stores result statistics and a timestamp.
type ManifestSummary struct {
	Total         int          `yaml:"total"`
	Kept          int          `yaml:"kept"`
	DupsRemoved   int          `yaml:"duplicates_removed,omitempty"`
	BackendErrors []string     `yaml:"backend_errors,omitempty"`
	Queries       []QueryStats `yaml:"queries,omitempty"`
	Timestamp     time.Time    `yaml:"timestamp"`
}

// NewManifest records a run of backend over the expansions of query.
func NewManifest(query, backend string, scenarios []string, cfg types.SearchConfig) Manifest {
	return Manifest{
		Query:     query,
		Backend:   backend,
		Scenarios: scenarios,
		Filters: ManifestFilters{
			MinCitations: cfg.MinCitations,
			MinYear:      cfg.MinYear,
			MaxYear:      cfg.MaxYear,
			BatchSize:    cfg.BatchSize,
			MaxBatches:   cfg.MaxBatches,
		},
		Summary: ManifestSummary{Timestamp: time.Now().UTC()},
	}
}

// WriteManifest saves m as dir/search.yaml.
func WriteManifest(dir string, m Manifest) error {
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return os.WriteFile(filepath.Join(dir, ManifestFile), data, 0o644)
}

// ReadManifest loads dir/search.yaml.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
