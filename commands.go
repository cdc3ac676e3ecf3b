// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package spartaup

import (
	"fmt"
	"os/exec"
	"slices"
	"strings"
	"text/template"

	"github.com/invopop/jsonschema"
)

// Commands are the argv templates used to invoke each external collaborator
//
// Every element is rendered as a text/template against TemplateData.
type Commands struct {
	Acquire  []string `json:"acquire,omitempty"`
	Validate []string `json:"validate,omitempty"`
	Update   []string `json:"update,omitempty"`
	Format   []string `json:"format,omitempty"`
}

// JSONSchemaExtend extends the JSON schema for collaborator commands
func (Commands) JSONSchemaExtend(schema *jsonschema.Schema) {
	descriptions := map[string]string{
		"acquire":  "Command that downloads data/sparta_data_v<version>.json when it is missing",
		"validate": "Command that validates the current ontology state, exit 0 on success",
		"update":   "Command that rewrites the working ontology from the SPARTA dataset",
		"format":   "Command that reformats the working ontology in place",
	}
	for name, desc := range descriptions {
		if prop, ok := schema.Properties.Get(name); ok && prop != nil {
			prop.Description = desc
			minItems := uint64(1)
			prop.MinItems = &minItems
		}
	}
}

// DefaultCommands returns the collaborators used by the D3FEND repository
func DefaultCommands() Commands {
	return Commands{
		Acquire:  []string{"make", "download-sparta", "VERSION={{ .Version }}"},
		Validate: []string{"pipenv", "run", "python", "src/util/test_cases.py"},
		Update:   []string{"pipenv", "run", "python", "src/util/update_sparta.py", "{{ .Version }}"},
		Format:   []string{"ttlfmt", "{{ .Working }}"},
	}
}

// WithDefaults fills every empty command with its default
func (c Commands) WithDefaults() Commands {
	d := DefaultCommands()
	or := func(a, b []string) []string {
		if len(a) == 0 {
			return slices.Clone(b)
		}
		return a
	}
	return Commands{
		Acquire:  or(c.Acquire, d.Acquire),
		Validate: or(c.Validate, d.Validate),
		Update:   or(c.Update, d.Update),
		Format:   or(c.Format, d.Format),
	}
}

// For returns the command template for a collaborator stage
func (c Commands) For(stage Stage) ([]string, error) {
	switch stage {
	case StageCheckData:
		return c.Acquire, nil
	case StageValidate:
		return c.Validate, nil
	case StageUpdate:
		return c.Update, nil
	case StageFormat:
		return c.Format, nil
	default:
		return nil, fmt.Errorf("stage %q has no collaborator", stage)
	}
}

// TemplateData is what command templates are rendered against
type TemplateData struct {
	Version  string
	Dataset  string
	DataDir  string
	Baseline string
	Working  string
}

// NewTemplateData builds the template data for a version and set of paths
func NewTemplateData(version string, paths Paths) TemplateData {
	return TemplateData{
		Version:  version,
		Dataset:  paths.Dataset(version),
		DataDir:  paths.DataDir,
		Baseline: paths.Baseline,
		Working:  paths.Working,
	}
}

// Env returns the environment variables exposed to every collaborator
func (d TemplateData) Env() []string {
	return []string{
		"SPARTA_VERSION=" + d.Version,
		"SPARTA_DATASET=" + d.Dataset,
		"ONTOLOGY_BASELINE=" + d.Baseline,
		"ONTOLOGY_WORKING=" + d.Working,
	}
}

// RenderCommand templates every element of argv
func RenderCommand(argv []string, data TemplateData) ([]string, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("command cannot be empty")
	}

	fm := template.FuncMap{
		"which": exec.LookPath,
	}

	rendered := make([]string, 0, len(argv))
	for i, arg := range argv {
		if !strings.Contains(arg, "{{") {
			rendered = append(rendered, arg)
			continue
		}

		tmpl, err := template.New(fmt.Sprintf("arg[%d]", i)).Funcs(fm).Option("missingkey=error").Parse(arg)
		if err != nil {
			return nil, err
		}

		var buf strings.Builder
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, err
		}
		rendered = append(rendered, buf.String())
	}

	if rendered[0] == "" {
		return nil, fmt.Errorf("command %q rendered an empty program name", argv[0])
	}

	return rendered, nil
}

// CommandString joins argv into a copy-pasteable shell line
func CommandString(argv []string) string {
	parts := make([]string, 0, len(argv))
	for _, arg := range argv {
		if arg == "" || strings.ContainsAny(arg, " \t\n'\"\\$`;&|<>*?#(){}[]!~") {
			arg = "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}
