// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package v0

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defenseunicorns/spartaup"
	"github.com/defenseunicorns/spartaup/config"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		expectErr string
		check     func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid config",
			content: `schema-version: v0
failure-policy: strict
paths:
  data-dir: /srv/sparta
env:
  PIPENV_VERBOSITY: -1
collaborators:
  format: [riot, --formatted=turtle, "{{ .Working }}"]`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, spartaup.FailurePolicyStrict, cfg.FailurePolicy)
				assert.Equal(t, spartaup.Paths{
					DataDir:  "/srv/sparta",
					Baseline: spartaup.DefaultBaseline,
					Working:  spartaup.DefaultWorking,
				}, cfg.Paths)
				assert.Equal(t, []string{"riot", "--formatted=turtle", "{{ .Working }}"}, cfg.Collaborators.Format)
				assert.Equal(t, spartaup.DefaultCommands().Update, cfg.Collaborators.Update)
				assert.Len(t, cfg.Env, 1)
			},
		},
		{
			name:    "empty config uses defaults",
			content: `schema-version: v0`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name:      "invalid yaml",
			content:   `invalid: yaml: content`,
			expectErr: "mapping value is not allowed in this context",
		},
		{
			name:      "unsupported schema version",
			content:   `schema-version: v999`,
			expectErr: `unsupported config schema version: expected "v0", got "v999"`,
		},
		{
			name:      "missing schema version",
			content:   `failure-policy: strict`,
			expectErr: `unsupported config schema version: expected "v0", got ""`,
		},
		{
			name: "invalid structure",
			content: `schema-version: v0
paths: "should-be-map"`,
			expectErr: "failed to parse config file",
		},
		{
			name: "unknown field",
			content: `schema-version: v0
shell: zsh`,
			expectErr: "failed to parse config file",
		},
		{
			name: "invalid failure policy",
			content: `schema-version: v0
failure-policy: sometimes`,
			expectErr: "failure-policy",
		},
		{
			name: "invalid env name",
			content: `schema-version: v0
env:
  1BAD: value`,
			expectErr: "env",
		},
		{
			name: "working is baseline",
			content: `schema-version: v0
paths:
  working: src/ontology/d3fend-protege.ttl`,
			expectErr: "cannot be the baseline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(strings.NewReader(tt.content))

			if tt.expectErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.expectErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, SchemaVersion, cfg.SchemaVersion)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}

	t.Run("reader edge cases", func(t *testing.T) {
		content := `schema-version: v0
failure-policy: strict`

		cfg, err := LoadConfig(iotest.OneByteReader(strings.NewReader(content)))
		require.NoError(t, err)
		assert.Equal(t, spartaup.FailurePolicyStrict, cfg.FailurePolicy)

		cfg, err = LoadConfig(iotest.HalfReader(strings.NewReader(content)))
		require.NoError(t, err)
		assert.Equal(t, spartaup.FailurePolicyStrict, cfg.FailurePolicy)

		_, err = LoadConfig(iotest.ErrReader(assert.AnError))
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to read config file")
	})
}

func TestLoadConfigFromFs(t *testing.T) {
	fs := afero.NewMemMapFs()

	cfg, err := LoadConfigFromFs(fs)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	require.NoError(t, afero.WriteFile(fs, config.DefaultFileName, []byte("schema-version: v0\nfailure-policy: strict\n"), 0o644))
	cfg, err = LoadConfigFromFs(fs)
	require.NoError(t, err)
	assert.Equal(t, spartaup.FailurePolicyStrict, cfg.FailurePolicy)

	require.NoError(t, afero.WriteFile(fs, config.DefaultFileName, []byte("schema-version: v999\n"), 0o644))
	_, err = LoadConfigFromFs(fs)
	require.ErrorContains(t, err, "failed to load config file")
}

func TestLoadDefaultConfig(t *testing.T) {
	setupTempHome := func(t *testing.T, configContent string) {
		tmpDir := t.TempDir()
		configDir := filepath.Join(tmpDir, ".spartaup")
		require.NoError(t, os.MkdirAll(configDir, 0o755))

		if configContent != "" {
			configPath := filepath.Join(configDir, config.DefaultFileName)
			require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))
		}

		t.Setenv("HOME", tmpDir)
	}

	t.Run("no config file returns defaults", func(t *testing.T) {
		setupTempHome(t, "")

		cfg, err := LoadDefaultConfig()
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("valid config file loads correctly", func(t *testing.T) {
		setupTempHome(t, `schema-version: v0
failure-policy: strict`)

		cfg, err := LoadDefaultConfig()
		require.NoError(t, err)
		assert.Equal(t, spartaup.FailurePolicyStrict, cfg.FailurePolicy)
	})

	t.Run("invalid config file returns error", func(t *testing.T) {
		setupTempHome(t, `schema-version: v999`)

		_, err := LoadDefaultConfig()
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to load config file")
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Validate(Default()))

	bad := Default()
	bad.SchemaVersion = "v1"
	require.ErrorContains(t, Validate(bad), "schema-version")

	bad = Default()
	bad.FailurePolicy = "sometimes"
	require.ErrorContains(t, Validate(bad), "failure-policy")
}

func TestConfigOptions(t *testing.T) {
	cfg := Default()
	cfg.Env["PIPENV_VERBOSITY"] = -1

	opts := cfg.Options()
	assert.Equal(t, spartaup.DefaultPaths(), opts.Paths)
	assert.Equal(t, spartaup.DefaultCommands(), opts.Commands)
	assert.Equal(t, spartaup.DefaultFailurePolicy, opts.Policy)
	assert.Equal(t, map[string]any{"PIPENV_VERBOSITY": -1}, opts.ExtraEnv)
	assert.Nil(t, opts.Fs)
	assert.Nil(t, opts.Runner)
}

func TestSchema(t *testing.T) {
	b, err := json.Marshal(Schema())
	require.NoError(t, err)

	var s map[string]any
	require.NoError(t, json.Unmarshal(b, &s))

	props, ok := s["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"schema-version", "failure-policy", "paths", "collaborators", "env"} {
		assert.Contains(t, props, key)
	}
	assert.Equal(t, []any{"schema-version"}, s["required"])
}
