// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package v0 provides the schema for v0 of the system config file for spartaup
//
// v0 allows for breaking changes without a major version increase
package v0

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/invopop/jsonschema"
	"github.com/spf13/afero"
	"github.com/xeipuuv/gojsonschema"

	"github.com/defenseunicorns/spartaup"
	"github.com/defenseunicorns/spartaup/config"
)

// SchemaVersion is the current schema version for configs
const SchemaVersion = "v0"

type versioned struct {
	SchemaVersion string `json:"schema-version"`
}

// Config is the system configuration file for spartaup
type Config struct {
	SchemaVersion string                 `json:"schema-version"`
	FailurePolicy spartaup.FailurePolicy `json:"failure-policy,omitempty"`
	Paths         spartaup.Paths         `json:"paths,omitempty"`
	Collaborators spartaup.Commands      `json:"collaborators,omitempty"`
	Env           map[string]any         `json:"env,omitempty"`
}

// JSONSchemaExtend extends the JSON schema for a config
func (Config) JSONSchemaExtend(schema *jsonschema.Schema) {
	if schemaVersion, ok := schema.Properties.Get("schema-version"); ok && schemaVersion != nil {
		schemaVersion.Description = "Config schema version"
		schemaVersion.Enum = []any{SchemaVersion}
		schemaVersion.AdditionalProperties = jsonschema.FalseSchema
	}

	if env, ok := schema.Properties.Get("env"); ok && env != nil {
		env.Description = "Extra environment variables passed to every collaborator"
		env.PropertyNames = &jsonschema.Schema{
			Pattern: "^[a-zA-Z_]+[a-zA-Z0-9_]*$",
		}
	}
}

// Default returns a valid config that reproduces the D3FEND repository's workflow
func Default() *Config {
	return &Config{
		SchemaVersion: SchemaVersion,
		FailurePolicy: spartaup.DefaultFailurePolicy,
		Paths:         spartaup.DefaultPaths(),
		Collaborators: spartaup.DefaultCommands(),
		Env:           map[string]any{},
	}
}

// Options converts the config into pipeline options
//
// The returned options carry no filesystem, runner or base environment.
func (c *Config) Options() spartaup.Options {
	return spartaup.Options{
		Paths:    c.Paths,
		Commands: c.Collaborators,
		Policy:   c.FailurePolicy,
		ExtraEnv: c.Env,
	}
}

// LoadConfig reads a config from r, filling unset fields with defaults
func LoadConfig(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var v versioned
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}

	switch version := v.SchemaVersion; version {
	case SchemaVersion:
		cfg := &Config{}
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField()); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		cfg.applyDefaults()
		return cfg, Validate(cfg)
	default:
		return nil, fmt.Errorf("unsupported config schema version: expected %q, got %q", SchemaVersion, version)
	}
}

// LoadDefaultConfig loads the config from the default directory
//
// If the configuration file does not exist, this function returns the default config
func LoadDefaultConfig() (*Config, error) {
	dir, err := config.DefaultDirectory()
	if err != nil {
		return nil, err
	}
	return LoadConfigFromFs(afero.NewBasePathFs(afero.NewOsFs(), dir))
}

// LoadConfigFromFs loads the config file from the base directory of fsys
func LoadConfigFromFs(fsys afero.Fs) (*Config, error) {
	f, err := fsys.Open(config.DefaultFileName)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := LoadConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.FailurePolicy == "" {
		c.FailurePolicy = spartaup.DefaultFailurePolicy
	}
	c.Paths = c.Paths.WithDefaults()
	c.Collaborators = c.Collaborators.WithDefaults()
	if c.Env == nil {
		c.Env = map[string]any{}
	}
}

// Since every validation operation leverages the same config, only calculate it once to save some compute cycles
//
// This also prevents any schema changes from occuring at runtime
var schemaOnce = sync.OnceValues(func() (string, error) {
	s := Schema()
	b, err := json.Marshal(s)
	return string(b), err
})

// Validate checks if a config adheres to the JSON schema
func Validate(config *Config) error {
	schema, err := schemaOnce()
	if err != nil {
		return err
	}

	schemaLoader := gojsonschema.NewStringLoader(schema)

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(config))
	if err != nil {
		return err
	}

	var resErr error
	for _, err := range result.Errors() {
		resErr = errors.Join(resErr, errors.New(err.String()))
	}

	if err := config.Paths.WithDefaults().Validate(); err != nil {
		resErr = errors.Join(resErr, err)
	}

	return resErr
}

// Schema returns the JSON schema for the Config type
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}
	return reflector.Reflect(&Config{})
}
