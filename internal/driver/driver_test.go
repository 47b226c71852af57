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

package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jellolink/gel/internal/discovery"
	"github.com/jellolink/gel/internal/linktypes"
)

func TestCollectStaticPathsDedupsAndSorts(t *testing.T) {
	inv := &linktypes.Invocation{
		Inputs: []linktypes.Input{
			{Kind: linktypes.InputArchive, Path: "libz.a"},
			{Kind: linktypes.InputObject, Path: "main.o"},
		},
	}
	resolved := []linktypes.ResolvedLib{
		{Path: "liba.a", Kind: linktypes.LibStatic},
		{Path: "libz.a", Kind: linktypes.LibStatic},
		{Path: "libshared.so", Kind: linktypes.LibShared},
	}
	paths := collectStaticPaths(inv, resolved)
	assert.Equal(t, []string{"liba.a", "libz.a"}, paths)
}

func TestGuessLangDefaultsToC(t *testing.T) {
	assert.Equal(t, discovery.LangC, guessLang([]string{"-c", "main.c", "-o", "main.o"}))
}

func TestGuessLangDetectsCxxSource(t *testing.T) {
	assert.Equal(t, discovery.LangCxx, guessLang([]string{"-c", "widget.cpp", "-o", "widget.o"}))
}

func TestExplainTraceMentionsKeyFields(t *testing.T) {
	p := &linktypes.LinkPlan{
		Backend:  linktypes.BackendMold,
		LinkMode: linktypes.ModeExecutable,
		Output:   "app",
	}
	trace := explainTrace(p)
	assert.Contains(t, trace, "mold")
	assert.Contains(t, trace, "app")
}
