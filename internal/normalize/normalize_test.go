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

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jellolink/gel/internal/linktypes"
)

func TestDefaultOutput(t *testing.T) {
	inv := &linktypes.Invocation{}
	Invocation(inv)
	assert.Equal(t, "a.out", inv.Output)
}

func TestDedupSearchPaths(t *testing.T) {
	inv := &linktypes.Invocation{ExplicitSearchPaths: []string{"/a", "/b", "/a"}}
	Invocation(inv)
	assert.Equal(t, []string{"/a", "/b"}, inv.ExplicitSearchPaths)
}

func TestPieLastWins(t *testing.T) {
	inv := &linktypes.Invocation{Flags: []linktypes.Flag{
		{Kind: linktypes.FlagPie},
		{Kind: linktypes.FlagNoPie},
	}}
	Invocation(inv)
	require := assert.New(t)
	require.Len(inv.Flags, 1)
	require.Equal(linktypes.FlagNoPie, inv.Flags[0].Kind)
}

func TestDuplicateFlagsDropped(t *testing.T) {
	inv := &linktypes.Invocation{Flags: []linktypes.Flag{
		{Kind: linktypes.FlagGCSections},
		{Kind: linktypes.FlagGCSections},
	}}
	Invocation(inv)
	assert.Len(t, inv.Flags, 1)
}

func TestPositionalSensitiveNeverDeduped(t *testing.T) {
	inv := &linktypes.Invocation{Flags: []linktypes.Flag{
		{Kind: linktypes.FlagBStatic},
		{Kind: linktypes.FlagBDynamic},
		{Kind: linktypes.FlagBStatic},
	}}
	Invocation(inv)
	assert.Len(t, inv.Flags, 3)
}

func TestIdempotent(t *testing.T) {
	inv := &linktypes.Invocation{
		ExplicitSearchPaths: []string{"/a", "/a", "/b"},
		Flags: []linktypes.Flag{
			{Kind: linktypes.FlagPie},
			{Kind: linktypes.FlagGCSections},
			{Kind: linktypes.FlagGCSections},
		},
	}
	Invocation(inv)
	first := *inv
	Invocation(inv)
	assert.Equal(t, first.ExplicitSearchPaths, inv.ExplicitSearchPaths)
	assert.Equal(t, first.Flags, inv.Flags)
	assert.Equal(t, first.Output, inv.Output)
}
