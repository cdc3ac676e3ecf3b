// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package spartaup refreshes the SPARTA techniques in the D3FEND ontology.
package spartaup

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cast"
)

// Options configure a pipeline run
//
// The zero value runs the default collaborators against the D3FEND layout
// in the current directory.
type Options struct {
	Fs       afero.Fs
	Runner   Runner
	Paths    Paths
	Commands Commands
	Policy   FailurePolicy
	// Env is the base environment handed to collaborators, os.Environ() when nil
	Env []string
	// ExtraEnv is appended to Env, values are stringified
	ExtraEnv map[string]any
	Dry      bool
}

func (o Options) withDefaults() Options {
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.Runner == nil {
		o.Runner = NewExecRunner("")
	}
	if o.Env == nil {
		o.Env = os.Environ()
	}
	o.Paths = o.Paths.WithDefaults()
	o.Commands = o.Commands.WithDefaults()
	o.Policy = cmp.Or(o.Policy, DefaultFailurePolicy)
	return o
}

type pipeline struct {
	opts Options
	data TemplateData
	env  []string
}

func newPipeline(version string, opts Options) *pipeline {
	opts = opts.withDefaults()
	data := NewTemplateData(version, opts.Paths)

	env := slices.Clone(opts.Env)
	for _, k := range slices.Sorted(maps.Keys(opts.ExtraEnv)) {
		env = append(env, fmt.Sprintf("%s=%s", k, cast.ToString(opts.ExtraEnv[k])))
	}
	env = append(env, data.Env()...)

	return &pipeline{opts: opts, data: data, env: env}
}

// Run refreshes the working ontology for a SPARTA version
//
// Stages run in order and stop at the first fatal failure, which is returned
// as a *StageError wrapping the collaborator's error. The report is always
// returned, and lists every stage that was reached.
func Run(ctx context.Context, version string, opts Options) (*Report, error) {
	report := &Report{Version: version}

	if err := ValidateVersion(version); err != nil {
		return report, err
	}

	p := newPipeline(version, opts)
	if err := p.opts.Paths.Validate(); err != nil {
		return report, err
	}

	logger := log.FromContext(ctx)

	start := time.Now()
	logger.Debug("run", "version", version, "policy", p.opts.Policy, "dry-run", p.opts.Dry)
	defer func() {
		logger.Debug("ran", "version", version, "duration", time.Since(start))
	}()

	for _, stage := range Stages() {
		stageStart := time.Now()

		if err := ctx.Err(); err != nil {
			report.record(stage, StatusFailed, err, stageStart)
			return report, stageError(stage, err)
		}

		status, err := p.run(ctx, stage, report)
		report.record(stage, status, err, stageStart)

		logger.Debug("completed", "stage", stage, "status", status, "duration", time.Since(stageStart))

		if status == StatusFailed {
			return report, stageError(stage, err)
		}
	}

	return report, nil
}

func (p *pipeline) run(ctx context.Context, stage Stage, report *Report) (Status, error) {
	switch stage {
	case StageCheckData:
		return p.checkData(ctx)
	case StageSeed:
		return p.seed(ctx)
	case StageValidate:
		log.FromContext(ctx).Info("validating ontology")
		if err := p.invoke(ctx, stage); err != nil {
			return StatusFailed, err
		}
		return p.ranOrSkipped(), nil
	case StageUpdate:
		log.FromContext(ctx).Info("updating working ontology", "version", p.data.Version, "working", p.data.Working)
		if err := p.invoke(ctx, stage); err != nil {
			return StatusFailed, err
		}
		return p.ranOrSkipped(), nil
	case StageFormat:
		log.FromContext(ctx).Info("formatting working ontology", "working", p.data.Working)
		if err := p.invoke(ctx, stage); err != nil {
			return p.tolerate(ctx, stage, err)
		}
		return p.ranOrSkipped(), nil
	case StageGuidance:
		return p.guidance(ctx, report)
	default:
		return StatusFailed, fmt.Errorf("unknown stage %q", stage)
	}
}

func (p *pipeline) ranOrSkipped() Status {
	if p.opts.Dry {
		return StatusSkipped
	}
	return StatusOK
}

// tolerate applies the failure policy to an acquire or format failure
func (p *pipeline) tolerate(ctx context.Context, stage Stage, err error) (Status, error) {
	if p.opts.Policy == FailurePolicyStrict {
		return StatusFailed, err
	}
	log.FromContext(ctx).Warn("continuing despite failure", "stage", stage, "policy", p.opts.Policy, "error", err)
	return StatusIgnored, err
}

func (p *pipeline) checkData(ctx context.Context) (Status, error) {
	logger := log.FromContext(ctx)
	dataset := p.data.Dataset

	exists, err := afero.Exists(p.opts.Fs, dataset)
	if err != nil {
		return StatusFailed, err
	}
	if exists {
		logger.Info("found SPARTA dataset", "path", dataset)
		return StatusOK, nil
	}

	logger.Warn("SPARTA dataset missing, acquiring", "version", p.data.Version, "path", dataset, "dry-run", p.opts.Dry)

	if err := p.invoke(ctx, StageCheckData); err != nil {
		return p.tolerate(ctx, StageCheckData, fmt.Errorf("acquire: %w", err))
	}
	if p.opts.Dry {
		return StatusSkipped, nil
	}

	exists, err = afero.Exists(p.opts.Fs, dataset)
	if err != nil {
		return StatusFailed, err
	}
	if !exists {
		return p.tolerate(ctx, StageCheckData, fmt.Errorf("dataset %s still missing after acquisition", dataset))
	}

	logger.Info("acquired SPARTA dataset", "path", dataset)
	return StatusOK, nil
}

func (p *pipeline) seed(ctx context.Context) (Status, error) {
	logger := log.FromContext(ctx)
	src, dst := p.data.Baseline, p.data.Working

	if p.opts.Dry {
		logger.Info("dry run", "seed", dst, "from", src)
		return StatusSkipped, nil
	}

	if err := copyFile(p.opts.Fs, src, dst); err != nil {
		return StatusFailed, fmt.Errorf("failed to seed %s from %s: %w", dst, src, err)
	}

	logger.Info("seeded working ontology", "from", src, "to", dst)
	return StatusOK, nil
}

func (p *pipeline) guidance(ctx context.Context, report *Report) (Status, error) {
	logger := log.FromContext(ctx)

	if p.opts.Dry {
		return StatusSkipped, nil
	}

	for _, o := range report.Ignored() {
		logger.Warn("review ignored failure", "stage", o.Stage, "error", o.Err)
	}

	logger.Info("SPARTA update complete", "version", p.data.Version, "working", p.data.Working)
	printAction(logger, fmt.Sprintf("Compare %s against %s and decide whether to adopt the changes:", p.data.Working, p.data.Baseline))
	logger.Printf("  diff %s %s", p.data.Baseline, p.data.Working)
	printAction(logger, "If the changes look right, replace the baseline with the working copy:")
	logger.Printf("  cp %s %s", p.data.Working, p.data.Baseline)

	return StatusOK, nil
}

// invoke renders and runs the collaborator for a stage
//
// In dry-run mode the command is only printed.
func (p *pipeline) invoke(ctx context.Context, stage Stage) error {
	tmpl, err := p.opts.Commands.For(stage)
	if err != nil {
		return err
	}

	argv, err := RenderCommand(tmpl, p.data)
	if err != nil {
		return fmt.Errorf("failed to render %s command: %w", stage, err)
	}

	logger := log.FromContext(ctx)
	printCommand(logger, argv)

	if p.opts.Dry {
		return nil
	}

	return p.opts.Runner.Run(ctx, argv, p.env)
}

// copyFile overwrites dst with the contents of src, keeping src's permissions
func copyFile(fsys afero.Fs, src, dst string) error {
	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("%s is a directory", src)
	}

	if dir := filepath.Dir(dst); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	out, err := fsys.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	// OpenFile only applies perm when it creates dst
	return fsys.Chmod(dst, fi.Mode().Perm())
}
