// Copyright 2015 Google Inc. All rights reserved
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package execute

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jellolink/gel/internal/linktypes"
)

func TestRunSuccess(t *testing.T) {
	plan := &linktypes.LinkPlan{BackendPath: "/bin/echo", BackendArgs: []string{"hello"}}
	res, err := Run(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello\n", res.Stdout)
}

func TestRunNonZeroExit(t *testing.T) {
	plan := &linktypes.LinkPlan{BackendPath: "/bin/sh", BackendArgs: []string{"-c", "exit 7"}}
	res, err := Run(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, 7, res.ExitCode)
}

func TestRunSpawnFailure(t *testing.T) {
	plan := &linktypes.LinkPlan{BackendPath: "/nonexistent/backend/binary", BackendArgs: nil}
	_, err := Run(context.Background(), plan)
	require.Error(t, err)
	var eerr linktypes.ExecError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, 1, eerr.ExitCode)
}

func TestDryRunQuoting(t *testing.T) {
	plan := &linktypes.LinkPlan{
		BackendPath: "/usr/bin/ld",
		BackendArgs: []string{"-o", "a out", "main.o"},
	}
	got := DryRun(plan)
	assert.Equal(t, "/usr/bin/ld -o 'a out' main.o", got)
}

func TestShellQuoteSafeUnquoted(t *testing.T) {
	assert.Equal(t, "main.o", shellQuote("main.o"))
	assert.Equal(t, "''", shellQuote(""))
}

func TestShellQuoteEscapesSingleQuote(t *testing.T) {
	assert.Equal(t, `'it'\''s'`, shellQuote("it's"))
}

func TestRunCmdCapturesStderr(t *testing.T) {
	res, err := RunCmd(context.Background(), "/bin/sh", []string{"-c", "echo oops 1>&2"})
	require.NoError(t, err)
	assert.Equal(t, "oops\n", res.Stderr)
}
