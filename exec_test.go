// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package spartaup

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner(t *testing.T) {
	dir := t.TempDir()

	var stdout, stderr strings.Builder
	r := &ExecRunner{Dir: dir, Stdout: &stdout, Stderr: &stderr}
	ctx := context.Background()

	require.NoError(t, r.Run(ctx, []string{"sh", "-c", `pwd; echo "$SPARTA_VERSION"; echo oops >&2`}, []string{"SPARTA_VERSION=1.6"}))
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], dir[strings.LastIndex(dir, "/")+1:])
	assert.Equal(t, "1.6", lines[1])
	assert.Equal(t, "oops\n", stderr.String())

	err := r.Run(ctx, []string{"sh", "-c", "exit 3"}, nil)
	var eErr *exec.ExitError
	require.ErrorAs(t, err, &eErr)
	assert.Equal(t, 3, eErr.ExitCode())

	require.EqualError(t, r.Run(ctx, nil, nil), "command cannot be empty")

	err = r.Run(ctx, []string{"definitely-not-a-real-program-spartaup"}, nil)
	require.ErrorIs(t, err, exec.ErrNotFound)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err = r.Run(cancelled, []string{"sh", "-c", "sleep 5"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled) || errors.As(err, &eErr))
}
