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

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jellolink/gel/internal/config"
	"github.com/jellolink/gel/internal/linktypes"
)

func TestNewRootCmdHasExpectedSubcommands(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "link")
	assert.Contains(t, names, "doctor")
	assert.Contains(t, names, "plan")
	assert.Contains(t, names, "init")
}

func TestOptionsFromFlagsFallsBackToConfig(t *testing.T) {
	flagMode = "bogus"
	flagBackend = ""
	flagPlanDir = ""
	defer func() {
		flagMode = "suggest"
		flagPlanDir = ".gel"
	}()

	cfg := &config.Config{
		Backend:     "lld",
		FixMode:     linktypes.FixModeAuto,
		ArtifactDir: "/tmp/artifacts",
	}
	opts := optionsFromFlags(cfg)
	assert.Equal(t, linktypes.FixModeAuto, opts.FixMode)
	assert.Equal(t, "lld", opts.BackendOverride)
	assert.Equal(t, "/tmp/artifacts", opts.PlanDir)
}

func TestOptionsFromFlagsPrefersExplicitFlags(t *testing.T) {
	flagMode = "auto"
	flagBackend = "gold"
	flagPlanDir = "custom-dir"
	defer func() {
		flagMode = "suggest"
		flagBackend = ""
		flagPlanDir = ".gel"
	}()

	cfg := &config.Config{Backend: "lld", FixMode: linktypes.FixModeSuggest}
	opts := optionsFromFlags(cfg)
	assert.Equal(t, linktypes.FixModeAuto, opts.FixMode)
	assert.Equal(t, "gold", opts.BackendOverride)
	assert.Equal(t, "custom-dir", opts.PlanDir)
}

func TestInitCmdWritesConfigAndRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	cmd := newInitCmd()
	require.NoError(t, cmd.RunE(cmd, nil))

	data, err := os.ReadFile(filepath.Join(dir, ".gel.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "fix_mode: suggest")

	assert.Error(t, cmd.RunE(cmd, nil))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "a", firstNonEmpty("a", "b"))
	assert.Equal(t, "b", firstNonEmpty("", "b"))
}
