// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package spartaup

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"
)

// Runner invokes an external collaborator and blocks until it exits
//
// A non-zero exit must be reported as an error; *exec.ExitError is preferred
// so the exit status can be propagated.
type Runner interface {
	Run(ctx context.Context, argv []string, env []string) error
}

// ExecRunner runs collaborators as child processes sharing the caller's stdio
type ExecRunner struct {
	// Dir is the working directory, empty means the calling process's current directory
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

var _ Runner = (*ExecRunner)(nil)

// NewExecRunner returns an ExecRunner wired to the process's stdio
func NewExecRunner(dir string) *ExecRunner {
	return &ExecRunner{
		Dir:    dir,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run implements Runner
func (r *ExecRunner) Run(ctx context.Context, argv []string, env []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("command cannot be empty")
	}

	log.FromContext(ctx).Debug("exec", "program", argv[0], "args", len(argv)-1, "dir", r.Dir)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = env
	cmd.Dir = r.Dir
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	return cmd.Run()
}
