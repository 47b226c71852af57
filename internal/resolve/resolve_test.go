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

package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jellolink/gel/internal/linktypes"
)

func withFakeFS(t *testing.T, existing map[string]bool) {
	t.Helper()
	orig := statExists
	statExists = func(path string) bool { return existing[path] }
	t.Cleanup(func() { statExists = orig })
}

func withFakeFile(t *testing.T, output string, err error) {
	t.Helper()
	orig := runFile
	runFile = func(ctx context.Context, path string) (string, error) { return output, err }
	t.Cleanup(func() { runFile = orig })
}

func TestStaticPreferenceLastWins(t *testing.T) {
	assert.False(t, StaticPreference(nil))
	assert.True(t, StaticPreference([]linktypes.Flag{{Kind: linktypes.FlagBStatic}}))
	assert.False(t, StaticPreference([]linktypes.Flag{
		{Kind: linktypes.FlagBStatic},
		{Kind: linktypes.FlagBDynamic},
	}))
	assert.True(t, StaticPreference([]linktypes.Flag{
		{Kind: linktypes.FlagBDynamic},
		{Kind: linktypes.FlagBStatic},
	}))
}

func TestResolveNamedPreferStatic(t *testing.T) {
	withFakeFS(t, map[string]bool{"/usr/lib/libfoo.a": true, "/usr/lib/libfoo.so": true})
	r, err := One(context.Background(), linktypes.LibRef{Kind: linktypes.LibRefNamed, Name: "foo"},
		[]string{"/usr/lib"}, true, "")
	require.NoError(t, err)
	assert.Equal(t, "/usr/lib/libfoo.a", r.Path)
	assert.Equal(t, linktypes.LibStatic, r.Kind)
}

func TestResolveNamedPreferShared(t *testing.T) {
	withFakeFS(t, map[string]bool{"/usr/lib/libfoo.a": true, "/usr/lib/libfoo.so": true})
	r, err := One(context.Background(), linktypes.LibRef{Kind: linktypes.LibRefNamed, Name: "foo"},
		[]string{"/usr/lib"}, false, "")
	require.NoError(t, err)
	assert.Equal(t, "/usr/lib/libfoo.so", r.Path)
	assert.Equal(t, linktypes.LibShared, r.Kind)
}

func TestResolveNamedNotFound(t *testing.T) {
	withFakeFS(t, map[string]bool{})
	_, err := One(context.Background(), linktypes.LibRef{Kind: linktypes.LibRefNamed, Name: "missing"},
		[]string{"/usr/lib", "/lib"}, false, "")
	require.Error(t, err)
	var rerr linktypes.ResolveError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "missing", rerr.Lib)
	assert.Equal(t, []string{"/usr/lib", "/lib"}, rerr.Searched)
}

func TestResolvePathKind(t *testing.T) {
	withFakeFS(t, map[string]bool{"/tmp/libx.a": true})
	r, err := One(context.Background(), linktypes.LibRef{Kind: linktypes.LibRefPath, Name: "/tmp/libx.a"}, nil, false, "")
	require.NoError(t, err)
	assert.Equal(t, linktypes.LibStatic, r.Kind)
}

func TestResolveFrameworkSystemThenUser(t *testing.T) {
	withFakeFS(t, map[string]bool{"/Library/Frameworks/Foo.framework/Foo": true})
	r, err := One(context.Background(), linktypes.LibRef{Kind: linktypes.LibRefFramework, Name: "Foo"}, nil, false, "")
	require.NoError(t, err)
	assert.Equal(t, "/Library/Frameworks/Foo.framework/Foo", r.Path)
}

func TestDetectArchAdvisory(t *testing.T) {
	withFakeFS(t, map[string]bool{"/usr/lib/libfoo.so": true})
	withFakeFile(t, "libfoo.so: ELF 64-bit LSB shared object, x86-64, version 1", nil)
	r, err := One(context.Background(), linktypes.LibRef{Kind: linktypes.LibRefNamed, Name: "foo"},
		[]string{"/usr/lib"}, false, "file")
	require.NoError(t, err)
	assert.True(t, r.HasDetected)
	assert.Equal(t, linktypes.ArchX86_64, r.DetectedArch)
}

func TestAllComposesMultiError(t *testing.T) {
	withFakeFS(t, map[string]bool{})
	refs := []linktypes.LibRef{
		{Kind: linktypes.LibRefNamed, Name: "a"},
		{Kind: linktypes.LibRefNamed, Name: "b"},
	}
	_, err := All(context.Background(), refs, []string{"/usr/lib"}, false, "")
	require.Error(t, err)
	var merr linktypes.MultiError
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)
}

func TestAllSingleErrorNotWrapped(t *testing.T) {
	withFakeFS(t, map[string]bool{"/usr/lib/liba.so": true})
	refs := []linktypes.LibRef{
		{Kind: linktypes.LibRefNamed, Name: "a"},
		{Kind: linktypes.LibRefNamed, Name: "b"},
	}
	_, err := All(context.Background(), refs, []string{"/usr/lib"}, false, "")
	require.Error(t, err)
	var rerr linktypes.ResolveError
	assert.ErrorAs(t, err, &rerr)
}
