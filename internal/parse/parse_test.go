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

package parse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jellolink/gel/internal/linktypes"
)

func TestBasicParse(t *testing.T) {
	inv, err := Args([]string{"foo.o", "-o", "out", "-lfoo", "-L/usr/lib"})
	require.NoError(t, err)

	require.Len(t, inv.Inputs, 1)
	assert.Equal(t, linktypes.InputObject, inv.Inputs[0].Kind)
	assert.Equal(t, "foo.o", inv.Inputs[0].Path)

	assert.Equal(t, "out", inv.Output)
	assert.Equal(t, []string{"/usr/lib"}, inv.ExplicitSearchPaths)

	var sawLinkLib bool
	for _, f := range inv.Flags {
		if f.Kind == linktypes.FlagLinkLib {
			sawLinkLib = true
			assert.Equal(t, linktypes.LibRef{Kind: linktypes.LibRefNamed, Name: "foo"}, f.Lib)
		}
	}
	assert.True(t, sawLinkLib)
}

func TestWlForwarding(t *testing.T) {
	inv, err := Args([]string{"foo.o", "-Wl,--as-needed,-rpath,/opt/lib"})
	require.NoError(t, err)

	var sawAsNeeded, sawRpath bool
	for _, f := range inv.Flags {
		switch f.Kind {
		case linktypes.FlagAsNeeded:
			sawAsNeeded = true
		case linktypes.FlagRpath:
			sawRpath = true
			assert.Equal(t, "/opt/lib", f.Value)
		}
	}
	assert.True(t, sawAsNeeded)
	assert.True(t, sawRpath)
}

func TestLinkModeShared(t *testing.T) {
	inv, err := Args([]string{"-shared", "foo.o"})
	require.NoError(t, err)
	assert.Equal(t, linktypes.ModeShared, inv.LinkMode)
}

func TestLinkModeStatic(t *testing.T) {
	inv, err := Args([]string{"-static", "foo.o", "-lfoo"})
	require.NoError(t, err)
	assert.Equal(t, linktypes.ModeStatic, inv.LinkMode)
}

func TestOutputMissingValueIsParseError(t *testing.T) {
	_, err := Args([]string{"foo.o", "-o"})
	require.Error(t, err)
	var perr linktypes.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestWlEmptyYieldsNoTokens(t *testing.T) {
	inv, err := Args([]string{"foo.o", "-Wl,,,"})
	require.NoError(t, err)
	assert.Empty(t, inv.Flags)
}

func TestEmptyArgvDefaultsLater(t *testing.T) {
	inv, err := Args(nil)
	require.NoError(t, err)
	assert.Empty(t, inv.Output) // Normalize fills the a.out default, not Parse
	assert.Empty(t, inv.Inputs)
}

func TestResponseFileExpansion(t *testing.T) {
	dir := t.TempDir()
	rsp := filepath.Join(dir, "args.rsp")
	require.NoError(t, os.WriteFile(rsp, []byte("-lfoo\n-Lbar\n"), 0o644))

	inv, err := Args([]string{"@" + rsp, "main.o"})
	require.NoError(t, err)
	assert.Equal(t, []string{"bar"}, inv.ExplicitSearchPaths)
}

func TestResponseFileUnreadable(t *testing.T) {
	_, err := Args([]string{"@/nonexistent/path/args.rsp"})
	require.Error(t, err)
	var perr linktypes.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Msg, "/nonexistent/path/args.rsp")
}

func TestXlinker(t *testing.T) {
	inv, err := Args([]string{"-Xlinker", "--as-needed"})
	require.NoError(t, err)
	require.Len(t, inv.Flags, 1)
	assert.Equal(t, linktypes.FlagAsNeeded, inv.Flags[0].Kind)
}

func TestFrontendFlagsDropped(t *testing.T) {
	inv, err := Args([]string{"-O2", "-Wall", "-fPIC", "-DNDEBUG", "-Iinclude", "-std=c++17", "-c", "foo.o"})
	require.NoError(t, err)
	assert.Empty(t, inv.Flags)
	require.Len(t, inv.Inputs, 1)
}

func TestIsCompileOnly(t *testing.T) {
	assert.True(t, IsCompileOnly([]string{"-c", "foo.c"}))
	assert.True(t, IsCompileOnly([]string{"foo.c", "-S"}))
	assert.False(t, IsCompileOnly([]string{"foo.o", "-o", "a.out"}))
}
