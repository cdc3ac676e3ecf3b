// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package spartaup

import (
	"fmt"
	"strings"
	"time"
)

// Stage is one step of the update pipeline
type Stage string

const (
	// StageCheckData ensures the versioned SPARTA dataset exists, acquiring it when missing
	StageCheckData Stage = "check-data"
	// StageSeed copies the baseline ontology over the working ontology
	StageSeed Stage = "seed"
	// StageValidate runs the ontology test cases
	StageValidate Stage = "validate"
	// StageUpdate merges the SPARTA dataset into the working ontology
	StageUpdate Stage = "update"
	// StageFormat reformats the working ontology
	StageFormat Stage = "format"
	// StageGuidance tells a human how to review the result
	StageGuidance Stage = "guidance"
)

// Stages returns every stage in execution order
func Stages() []Stage {
	return []Stage{StageCheckData, StageSeed, StageValidate, StageUpdate, StageFormat, StageGuidance}
}

// Status is the outcome of a single stage
type Status string

const (
	// StatusOK means the stage completed
	StatusOK Status = "ok"
	// StatusSkipped means the stage did not need to, or was not allowed to, run
	StatusSkipped Status = "skipped"
	// StatusFailed means the stage failed and stopped the pipeline
	StatusFailed Status = "failed"
	// StatusIgnored means the stage failed but the failure policy let the pipeline continue
	StatusIgnored Status = "ignored"
)

// StageOutcome records what happened during a stage
type StageOutcome struct {
	Stage    Stage
	Status   Status
	Err      error
	Duration time.Duration
}

// Report is the per-stage record of a pipeline run
type Report struct {
	Version string
	Stages  []StageOutcome
}

// Outcome returns the outcome of the given stage, if it was reached
func (r *Report) Outcome(stage Stage) (StageOutcome, bool) {
	if r == nil {
		return StageOutcome{}, false
	}
	for _, o := range r.Stages {
		if o.Stage == stage {
			return o, true
		}
	}
	return StageOutcome{}, false
}

// Ignored returns every stage whose failure was tolerated
func (r *Report) Ignored() []StageOutcome {
	if r == nil {
		return nil
	}
	var ignored []StageOutcome
	for _, o := range r.Stages {
		if o.Status == StatusIgnored {
			ignored = append(ignored, o)
		}
	}
	return ignored
}

func (r *Report) record(stage Stage, status Status, err error, start time.Time) {
	r.Stages = append(r.Stages, StageOutcome{
		Stage:    stage,
		Status:   status,
		Err:      err,
		Duration: time.Since(start),
	})
}

// String renders the report as one line per stage
func (r *Report) String() string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	for _, o := range r.Stages {
		fmt.Fprintf(&sb, "%-10s %s", o.Stage, o.Status)
		if o.Err != nil {
			fmt.Fprintf(&sb, " (%v)", o.Err)
		}
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// StageError is an error raised by a pipeline stage
type StageError struct {
	Stage Stage
	err   error
}

var _ error = &StageError{}

// Error returns the stage and original error message
func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.err.Error())
}

// Unwrap returns the underlying error
func (e *StageError) Unwrap() error {
	return e.err
}

func stageError(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, err: err}
}
