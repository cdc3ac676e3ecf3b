// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package spartaup

import (
	"fmt"
	"strings"
)

var stageDescriptions = map[Stage]string{
	StageCheckData: "Acquire the dataset if it is missing",
	StageSeed:      "Overwrite the working ontology with the baseline",
	StageValidate:  "Validate the ontology, abort on failure",
	StageUpdate:    "Merge the SPARTA dataset into the working ontology, abort on failure",
	StageFormat:    "Reformat the working ontology",
	StageGuidance:  "Print review instructions",
}

// Explain returns a markdown description of what Run would do
func Explain(version string, opts Options) (string, error) {
	if err := ValidateVersion(version); err != nil {
		return "", err
	}

	p := newPipeline(version, opts)
	if err := p.opts.Paths.Validate(); err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# SPARTA v%s\n\n", version)

	sb.WriteString("| file | path |\n|---|---|\n")
	fmt.Fprintf(&sb, "| dataset | `%s` |\n", p.data.Dataset)
	fmt.Fprintf(&sb, "| baseline | `%s` |\n", p.data.Baseline)
	fmt.Fprintf(&sb, "| working | `%s` |\n\n", p.data.Working)

	fmt.Fprintf(&sb, "Failure policy: `%s`", p.opts.Policy)
	if p.opts.Policy == FailurePolicyStrict {
		sb.WriteString(" (every collaborator failure aborts the run)\n\n")
	} else {
		sb.WriteString(" (acquire and format failures are logged and ignored)\n\n")
	}

	sb.WriteString("## Stages\n\n")
	for i, stage := range Stages() {
		fmt.Fprintf(&sb, "%d. **%s**: %s\n", i+1, stage, stageDescriptions[stage])

		tmpl, err := p.opts.Commands.For(stage)
		if err != nil {
			continue
		}
		argv, err := RenderCommand(tmpl, p.data)
		if err != nil {
			return "", fmt.Errorf("failed to render %s command: %w", stage, err)
		}
		fmt.Fprintf(&sb, "\n   ```sh\n   %s\n   ```\n", CommandString(argv))
	}

	return strings.TrimSpace(sb.String()), nil
}
