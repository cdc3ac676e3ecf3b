// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package spartaup

import (
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/pflag"
)

// FailurePolicy decides what happens when the acquire or format collaborators fail
//
// Validation and update failures are always fatal.
type FailurePolicy string

var _ pflag.Value = (*FailurePolicy)(nil)

const (
	// FailurePolicyBestEffort logs acquire and format failures and keeps going
	FailurePolicyBestEffort FailurePolicy = "best-effort"
	// FailurePolicyStrict aborts on any collaborator failure
	FailurePolicyStrict FailurePolicy = "strict"
	// DefaultFailurePolicy is the failure policy used when none is specified
	DefaultFailurePolicy FailurePolicy = FailurePolicyBestEffort
)

// AvailablePolicies returns a list of available failure policies
func AvailablePolicies() []string {
	return []string{
		string(FailurePolicyBestEffort),
		string(FailurePolicyStrict),
	}
}

// String implements the pflag.Value and fmt.Stringer interfaces
func (f *FailurePolicy) String() string {
	return string(*f)
}

// Set implements the pflag.Value interface
func (f *FailurePolicy) Set(value string) error {
	switch value {
	case string(FailurePolicyBestEffort):
		*f = FailurePolicyBestEffort
	case string(FailurePolicyStrict):
		*f = FailurePolicyStrict
	default:
		return fmt.Errorf("invalid failure policy: %s", value)
	}
	return nil
}

// Type implements the pflag.Value interface
func (f *FailurePolicy) Type() string {
	return "string"
}

// JSONSchema returns the JSON schema for a failure policy
func (FailurePolicy) JSONSchema() *jsonschema.Schema {
	enum := make([]any, 0, len(AvailablePolicies()))
	for _, p := range AvailablePolicies() {
		enum = append(enum, p)
	}
	return &jsonschema.Schema{
		Type:        "string",
		Description: "What to do when the acquire or format collaborators fail",
		Enum:        enum,
		Default:     string(DefaultFailurePolicy),
	}
}
