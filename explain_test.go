// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package spartaup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplain(t *testing.T) {
	md, err := Explain("1.6", Options{})
	require.NoError(t, err)

	assert.Equal(t, "# SPARTA v1.6\n\n| file | path |\n|---|---|\n"+
		"| dataset | `data/sparta_data_v1.6.json` |\n"+
		"| baseline | `src/ontology/d3fend-protege.ttl` |\n"+
		"| working | `src/ontology/d3fend-protege.sparta.ttl` |\n\n"+
		"Failure policy: `best-effort` (acquire and format failures are logged and ignored)\n\n"+
		"## Stages\n\n"+
		"1. **check-data**: Acquire the dataset if it is missing\n\n   ```sh\n   make download-sparta VERSION=1.6\n   ```\n"+
		"2. **seed**: Overwrite the working ontology with the baseline\n"+
		"3. **validate**: Validate the ontology, abort on failure\n\n   ```sh\n   pipenv run python src/util/test_cases.py\n   ```\n"+
		"4. **update**: Merge the SPARTA dataset into the working ontology, abort on failure\n\n   ```sh\n   pipenv run python src/util/update_sparta.py 1.6\n   ```\n"+
		"5. **format**: Reformat the working ontology\n\n   ```sh\n   ttlfmt src/ontology/d3fend-protege.sparta.ttl\n   ```\n"+
		"6. **guidance**: Print review instructions", md)

	md, err = Explain("1.6", Options{Policy: FailurePolicyStrict, Paths: Paths{DataDir: "/srv/sparta"}})
	require.NoError(t, err)
	assert.Contains(t, md, "| dataset | `/srv/sparta/sparta_data_v1.6.json` |")
	assert.Contains(t, md, "Failure policy: `strict` (every collaborator failure aborts the run)")

	_, err = Explain("../1.6", Options{})
	require.ErrorContains(t, err, "invalid version")

	_, err = Explain("1.6", Options{Commands: Commands{Update: []string{"update", "{{ .Missing }}"}}})
	require.ErrorContains(t, err, "failed to render update command")
}
