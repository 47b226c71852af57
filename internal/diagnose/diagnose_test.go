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

package diagnose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jellolink/gel/internal/linktypes"
)

func TestUndefinedReferenceMath(t *testing.T) {
	diags := Errors("main.o: in function main:\nmain.c:(.text+0x10): undefined reference to `sqrt'\n")
	require.Len(t, diags, 1)
	assert.Equal(t, "E001", diags[0].Code)
	require.Len(t, diags[0].Fixes, 1)
	assert.Equal(t, "m", diags[0].Fixes[0].Action.Flag.Lib.Name)
}

func TestUndefinedReferenceCxx(t *testing.T) {
	diags := Errors("undefined reference to `std::cout'\n")
	require.Len(t, diags, 1)
	require.Len(t, diags[0].Fixes, 2)
	assert.Equal(t, linktypes.ActionUseCxxDriver, diags[0].Fixes[0].Action.Kind)
}

func TestUndefinedReferenceCxxVersionedSymbol(t *testing.T) {
	diags := Errors("undefined reference to `std::cout@@GLIBCXX_3.4'\n")
	require.Len(t, diags, 1)
	assert.Equal(t, "undefined reference to std::cout@@GLIBCXX_3.4", diags[0].Message)
	assert.Equal(t, []string{"std::cout@@GLIBCXX_3.4"}, diags[0].Evidence)
}

func TestCannotFindDashL(t *testing.T) {
	diags := Errors("/usr/bin/ld: cannot find -lfoo\n")
	require.Len(t, diags, 1)
	assert.Equal(t, "E002", diags[0].Code)
	assert.Equal(t, linktypes.ActionSuggestPackage, diags[0].Fixes[0].Action.Kind)
	assert.Equal(t, "libfoo-dev", diags[0].Fixes[0].Action.Package)
}

func TestDSOMissing(t *testing.T) {
	diags := Errors("/usr/bin/ld: /usr/lib/libfoo.so: DSO missing from command line for libfoo.so\n")
	require.Len(t, diags, 1)
	assert.Equal(t, "E003", diags[0].Code)
	assert.Equal(t, "foo", diags[0].Fixes[0].Action.Flag.Lib.Name)
}

func TestDedupByCodeAndEvidence(t *testing.T) {
	diags := Errors("undefined reference to `sqrt'\nundefined reference to `sqrt'\n")
	assert.Len(t, diags, 1)
}

func TestRuleOrderFirstMatchWins(t *testing.T) {
	diags := Errors("relocation R_X86_64_PC32 against symbol, recompile with -fPIC\n")
	require.Len(t, diags, 1)
	assert.Equal(t, "E004", diags[0].Code)
}

func TestAutoFixableFiltersHighConfidenceOnly(t *testing.T) {
	diags := []linktypes.Diagnostic{
		{Code: "E002", Fixes: []linktypes.Fix{{Confidence: linktypes.ConfidenceMedium}}},
		{Code: "E003", Fixes: []linktypes.Fix{{Confidence: linktypes.ConfidenceHigh}}},
	}
	out := AutoFixable(diags)
	require.Len(t, out, 1)
	assert.Equal(t, "E003", out[0].Code)
}

func TestNoMatchYieldsNoDiagnostics(t *testing.T) {
	diags := Errors("ld: some totally unrecognized message\n")
	assert.Empty(t, diags)
}
