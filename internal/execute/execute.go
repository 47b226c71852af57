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

// Package execute spawns the backend linker (or an arbitrary passthrough
// command) as a child process and classifies its termination.
package execute

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"syscall"

	"github.com/jellolink/gel/internal/gellog"
	"github.com/jellolink/gel/internal/linktypes"
)

// Run builds `plan.BackendPath plan.BackendArgs`, spawns it, and captures
// stdout/stderr separately. A process-spawn failure (binary missing,
// permission denied) is reported as a linktypes.ExecError rather than
// folded into ExitCode, since in that case there is no exit code at all.
func Run(ctx context.Context, plan *linktypes.LinkPlan) (linktypes.ExecResult, error) {
	gellog.Infof("execute: %s", dryRunString(plan))

	cmd := exec.CommandContext(ctx, plan.BackendPath, plan.BackendArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := linktypes.ExecResult{
		Plan:   plan,
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err == nil {
		result.ExitCode = 0
		return result, nil
	}

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return linktypes.ExecResult{}, linktypes.ExecError{ExitCode: 1, Stderr: err.Error()}
	}

	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		result.ExitCode = 128 + int(status.Signal())
		return result, nil
	}

	result.ExitCode = exitErr.ExitCode()
	return result, nil
}

// DryRun returns the shell-quoted command string without spawning it.
func DryRun(plan *linktypes.LinkPlan) string {
	return dryRunString(plan)
}

func dryRunString(plan *linktypes.LinkPlan) string {
	parts := make([]string, 0, len(plan.BackendArgs)+1)
	parts = append(parts, shellQuote(plan.BackendPath))
	for _, a := range plan.BackendArgs {
		parts = append(parts, shellQuote(a))
	}
	return strings.Join(parts, " ")
}

// shellQuote single-quotes s for POSIX shells, escaping embedded single
// quotes. Arguments that need no quoting are left bare for readability.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if isShellSafe(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isShellSafe(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("_-./=:,+", r):
		default:
			return false
		}
	}
	return true
}

// RunCmd is the generic subprocess runner the Driver uses for the
// compile-only passthrough path: it execs name with args exactly,
// streaming neither stdout nor stderr through classification, and
// returns the same termination semantics as Run.
func RunCmd(ctx context.Context, name string, args []string) (linktypes.ExecResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := linktypes.ExecResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return result, nil
	}

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return linktypes.ExecResult{}, linktypes.ExecError{ExitCode: 1, Stderr: err.Error()}
	}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		result.ExitCode = 128 + int(status.Signal())
		return result, nil
	}
	result.ExitCode = exitErr.ExitCode()
	return result, nil
}

