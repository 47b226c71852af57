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

package emit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jellolink/gel/internal/linktypes"
)

func samplePlan() *linktypes.LinkPlan {
	return &linktypes.LinkPlan{
		Backend:     linktypes.BackendMold,
		BackendPath: "/usr/bin/ld.mold",
		Output:      "app",
		LinkMode:    linktypes.ModeExecutable,
		Inputs:      []linktypes.Input{{Kind: linktypes.InputObject, Path: "main.o"}},
		BackendArgs: []string{"-o", "app", "main.o"},
		RawArgs:     []string{"main.o", "-o", "app"},
	}
}

// assertGoldenEqual fails with a readable diff (via go-diff) if got !=
// want, instead of testify's raw string dump.
func assertGoldenEqual(t *testing.T, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(want, got, true)
	diffs = dmp.DiffCleanupSemantic(diffs)
	t.Errorf("artifact mismatch (want -> got):\n%s", dmp.DiffPrettyText(diffs))
}

func TestPlanJSONDeterministic(t *testing.T) {
	plan := samplePlan()
	a, err := PlanJSON(plan, nil)
	require.NoError(t, err)
	b, err := PlanJSON(plan, nil)
	require.NoError(t, err)
	assertGoldenEqual(t, string(a), string(b))
}

func TestPlanJSONFieldsPresent(t *testing.T) {
	plan := samplePlan()
	data, err := PlanJSON(plan, nil)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"backend": "mold"`)
	assert.Contains(t, s, `"output": "app"`)
	assert.Contains(t, s, `"backend_args"`)
}

func TestDiagnosticsJSONSchema(t *testing.T) {
	diags := []linktypes.Diagnostic{
		{Severity: linktypes.SevError, Code: "E001", Message: "undefined reference to foo", Evidence: []string{"line 1"}},
	}
	data, err := DiagnosticsJSON(diags)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"code": "E001"`)
	assert.Contains(t, s, `"severity": "error"`)
}

func TestDiagnosticsJSONPreservesPlaceholderFields(t *testing.T) {
	diags := []linktypes.Diagnostic{
		{
			Severity: linktypes.SevError, Code: "E004", Message: "relocation against a non-PIC object",
			Evidence: []string{"relocation R_X86_64_PC32"},
			Fixes: []linktypes.Fix{
				{Description: "recompile with -fPIC", Confidence: linktypes.ConfidenceHigh,
					Action: linktypes.FixAction{Kind: linktypes.ActionSuggestRecompile, File: "", Flags: nil}},
				{Description: "add a missing -L search path", Confidence: linktypes.ConfidenceMedium,
					Action: linktypes.FixAction{Kind: linktypes.ActionAddSearchPath, SearchPath: ""}},
			},
		},
	}
	data, err := DiagnosticsJSON(diags)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"file": ""`)
	assert.Contains(t, s, `"flags": []`)
	assert.Contains(t, s, `"search_path": ""`)
	assert.NotContains(t, s, `"flags": null`)
}

func TestFixActionFlagOmittedForNonFlagActions(t *testing.T) {
	diags := []linktypes.Diagnostic{
		{
			Severity: linktypes.SevError, Code: "E002", Message: "cannot find -lfoo",
			Fixes: []linktypes.Fix{
				{Description: "install libfoo-dev", Confidence: linktypes.ConfidenceMedium,
					Action: linktypes.FixAction{Kind: linktypes.ActionSuggestPackage, Package: "libfoo-dev"}},
			},
		},
	}
	data, err := DiagnosticsJSON(diags)
	require.NoError(t, err)
	s := string(data)
	assert.NotContains(t, s, `"flag"`)
}

func TestReplayScriptHasShebangAndBackendComment(t *testing.T) {
	script := string(ReplayScript(samplePlan()))
	assert.Contains(t, script, "#!/bin/sh")
	assert.Contains(t, script, "mold")
	assert.Contains(t, script, "/usr/bin/ld.mold -o app main.o")
}

func TestShellQuoteEscapesSpaces(t *testing.T) {
	assert.Equal(t, "'has space'", shellQuote("has space"))
	assert.Equal(t, "plain", shellQuote("plain"))
}

func TestWriteArtifactsCreatesAllThreeFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "artifacts")
	err := WriteArtifacts(dir, samplePlan(), nil)
	require.NoError(t, err)

	for _, name := range []string{PlanFileName, ScriptFileName, DiagnosticsFileName} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}
}

func TestWriteArtifactsAtomicNoStaleTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteArtifacts(dir, samplePlan(), nil))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}
