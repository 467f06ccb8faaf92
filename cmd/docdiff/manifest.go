package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest lists document versions to compare in one batch run.
type Manifest struct {
	// DocumentsDir is resolved against the manifest's directory.
	DocumentsDir string       `yaml:"documents_dir"`
	Versions     []VersionRow `yaml:"versions"`
}

// VersionRow names the newest version of a document and the versions it
// is compared with.
type VersionRow struct {
	NewVersion  string `yaml:"new_version"`
	OldVersion  string `yaml:"old_version"`
	OldVersion1 string `yaml:"old_version_1"`
}

// FilePair is one (new, old) comparison.
type FilePair struct {
	New string
	Old string
}

// LoadManifest reads and validates a YAML manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	for i, row := range m.Versions {
		if row.NewVersion == "" || row.OldVersion == "" {
			return nil, fmt.Errorf("manifest row %d: new_version and old_version are required", i+1)
		}
	}

	base := filepath.Dir(path)
	if m.DocumentsDir == "" {
		m.DocumentsDir = base
	} else if !filepath.IsAbs(m.DocumentsDir) {
		m.DocumentsDir = filepath.Join(base, m.DocumentsDir)
	}
	return &m, nil
}

// Pairs expands the rows into comparisons. A row with an intermediate
// version yields (new, old), (new, old_1) and (old_1, old).
func (m *Manifest) Pairs() []FilePair {
	var out []FilePair
	seen := make(map[FilePair]bool)
	add := func(p FilePair) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, row := range m.Versions {
		add(FilePair{New: row.NewVersion, Old: row.OldVersion})
		if row.OldVersion1 != "" {
			add(FilePair{New: row.NewVersion, Old: row.OldVersion1})
			add(FilePair{New: row.OldVersion1, Old: row.OldVersion})
		}
	}
	return out
}

// Path resolves a document name from the manifest.
func (m *Manifest) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(m.DocumentsDir, name)
}
