// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package spartaup

import (
	"cmp"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/invopop/jsonschema"
)

const (
	// DefaultDataDir is where versioned SPARTA datasets are stored
	DefaultDataDir = "data"
	// DefaultBaseline is the ontology file the working copy is seeded from
	DefaultBaseline = "src/ontology/d3fend-protege.ttl"
	// DefaultWorking is the ontology file the collaborators mutate
	DefaultWorking = "src/ontology/d3fend-protege.sparta.ttl"
)

// VersionPattern is the set of SPARTA version identifiers accepted
var VersionPattern = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z._-]*$`)

// ValidateVersion ensures a version identifier can be safely interpolated into the dataset path
func ValidateVersion(version string) error {
	if version == "" {
		return fmt.Errorf("version cannot be empty")
	}
	if !VersionPattern.MatchString(version) || strings.Contains(version, "..") {
		return fmt.Errorf("invalid version %q: must match %s and not contain %q", version, VersionPattern.String(), "..")
	}
	return nil
}

// Paths are the file system locations the pipeline reads and writes, relative to the ontology checkout
type Paths struct {
	DataDir  string `json:"data-dir,omitempty"`
	Baseline string `json:"baseline,omitempty"`
	Working  string `json:"working,omitempty"`
}

// JSONSchemaExtend extends the JSON schema for paths
func (Paths) JSONSchemaExtend(schema *jsonschema.Schema) {
	if dataDir, ok := schema.Properties.Get("data-dir"); ok && dataDir != nil {
		dataDir.Description = "Directory holding sparta_data_v<version>.json datasets"
	}
	if baseline, ok := schema.Properties.Get("baseline"); ok && baseline != nil {
		baseline.Description = "Ontology file the working copy is seeded from"
	}
	if working, ok := schema.Properties.Get("working"); ok && working != nil {
		working.Description = "Ontology file rewritten by the update and format collaborators"
	}
}

// DefaultPaths returns the layout of the D3FEND repository
func DefaultPaths() Paths {
	return Paths{
		DataDir:  DefaultDataDir,
		Baseline: DefaultBaseline,
		Working:  DefaultWorking,
	}
}

// WithDefaults fills every empty path with its default
func (p Paths) WithDefaults() Paths {
	d := DefaultPaths()
	return Paths{
		DataDir:  cmp.Or(p.DataDir, d.DataDir),
		Baseline: cmp.Or(p.Baseline, d.Baseline),
		Working:  cmp.Or(p.Working, d.Working),
	}
}

// Validate ensures the working copy can be seeded from the baseline
func (p Paths) Validate() error {
	if p.Baseline == "" || p.Working == "" {
		return fmt.Errorf("baseline and working paths cannot be empty")
	}
	if filepath.Clean(p.Baseline) == filepath.Clean(p.Working) {
		return fmt.Errorf("working path %q cannot be the baseline", p.Working)
	}
	return nil
}

// Dataset returns the conventional location of the dataset for a version
func (p Paths) Dataset(version string) string {
	return filepath.Join(p.DataDir, fmt.Sprintf("sparta_data_v%s.json", version))
}
