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

package symbols

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jellolink/gel/internal/linktypes"
)

func withFakeNM(t *testing.T, out string, err error) {
	t.Helper()
	orig := runNM
	runNM = func(ctx context.Context, nmPath, path string) ([]byte, error) {
		return []byte(out), err
	}
	t.Cleanup(func() { runNM = orig })
}

func TestExtractBasic(t *testing.T) {
	withFakeNM(t, "foo T 0000000000001000 0000000000000010\nbar U\n_baz t 0000000000002000\n", nil)

	syms, err := Extract(context.Background(), "nm", "liba.a")
	require.NoError(t, err)
	require.Len(t, syms, 3)

	assert.Equal(t, "foo", syms[0].Name)
	assert.Equal(t, linktypes.SymText, syms[0].Kind)
	assert.Equal(t, linktypes.ScopeGlobal, syms[0].Scope)
	assert.True(t, syms[0].HasValue)
	assert.True(t, syms[0].HasSize)
	assert.EqualValues(t, 0x1000, syms[0].Value)
	assert.EqualValues(t, 0x10, syms[0].Size)

	assert.Equal(t, "bar", syms[1].Name)
	assert.Equal(t, linktypes.SymUndefined, syms[1].Kind)
	assert.False(t, syms[1].HasValue)

	assert.Equal(t, linktypes.ScopeLocal, syms[2].Scope)
}

func TestClassifyTypeAllChars(t *testing.T) {
	cases := map[byte]linktypes.SymbolKind{
		'T': linktypes.SymText, 't': linktypes.SymText,
		'D': linktypes.SymData, 'd': linktypes.SymData,
		'B': linktypes.SymBss, 'b': linktypes.SymBss,
		'R': linktypes.SymRodata, 'r': linktypes.SymRodata,
		'U': linktypes.SymUndefined,
		'W': linktypes.SymWeak, 'w': linktypes.SymWeak, 'V': linktypes.SymWeak, 'v': linktypes.SymWeak,
		'C': linktypes.SymCommon, 'c': linktypes.SymCommon,
		'?': linktypes.SymOther,
	}
	for c, want := range cases {
		kind, _ := classifyType(c)
		assert.Equal(t, want, kind, "char %q", c)
	}
}

func TestExtractSkipsMalformedLines(t *testing.T) {
	withFakeNM(t, "good T 1000\n\nbadline\n", nil)
	syms, err := Extract(context.Background(), "nm", "a.o")
	require.NoError(t, err)
	require.Len(t, syms, 1)
	assert.Equal(t, "good", syms[0].Name)
}

func TestExtractNMFailure(t *testing.T) {
	withFakeNM(t, "", assertErr{})
	_, err := Extract(context.Background(), "nm", "missing.a")
	require.Error(t, err)
	var serr linktypes.SymbolError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "missing.a", serr.Path)
}

type assertErr struct{}

func (assertErr) Error() string { return "exit status 1" }

func TestUndefinedAndDefined(t *testing.T) {
	syms := []linktypes.Symbol{
		{Name: "a", Kind: linktypes.SymUndefined, Scope: linktypes.ScopeGlobal},
		{Name: "b", Kind: linktypes.SymText, Scope: linktypes.ScopeGlobal},
		{Name: "c", Kind: linktypes.SymText, Scope: linktypes.ScopeLocal},
		{Name: "d", Kind: linktypes.SymOther, Scope: linktypes.ScopeGlobal},
	}
	undef := Undefined(syms)
	require.Len(t, undef, 1)
	assert.Equal(t, "a", undef[0].Name)

	def := Defined(syms)
	require.Len(t, def, 1)
	assert.Equal(t, "b", def[0].Name)
}

func TestProvidersAndRequirements(t *testing.T) {
	files := []FileSymbols{
		{Path: "libb.a", Symbols: []linktypes.Symbol{
			{Name: "foo", Kind: linktypes.SymText, Scope: linktypes.ScopeGlobal},
		}},
		{Path: "liba.a", Symbols: []linktypes.Symbol{
			{Name: "foo", Kind: linktypes.SymUndefined, Scope: linktypes.ScopeGlobal},
			{Name: "bar", Kind: linktypes.SymUndefined, Scope: linktypes.ScopeGlobal},
		}},
	}

	providers := Providers(files)
	assert.Equal(t, []string{"libb.a"}, providers["foo"])

	reqs := Requirements(files)
	assert.Equal(t, []string{"bar", "foo"}, reqs["liba.a"])
	assert.Empty(t, reqs["libb.a"])
}
