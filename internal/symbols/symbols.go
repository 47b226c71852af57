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

// Package symbols extracts symbol tables from object and archive files
// via an nm(1)-equivalent subprocess, and builds the provider/requirement
// maps that Reorder walks to build its dependency graph.
package symbols

import (
	"bufio"
	"context"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/jellolink/gel/internal/gellog"
	"github.com/jellolink/gel/internal/linktypes"
)

// runNM is overridable in tests.
var runNM = func(ctx context.Context, nmPath, path string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, nmPath, "-P", "-g", path)
	return cmd.Output()
}

// Extract runs `nm -P -g path` and parses every line into a Symbol.
// Malformed lines are skipped with an advisory log, not an error: a
// partially-unparseable listing is still useful to Reorder.
func Extract(ctx context.Context, nmPath, path string) ([]linktypes.Symbol, error) {
	out, err := runNM(ctx, nmPath, path)
	if err != nil {
		return nil, linktypes.SymbolError{Path: path, Msg: "nm failed: " + err.Error()}
	}
	var syms []linktypes.Symbol
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		sym, ok := parseLine(line)
		if !ok {
			gellog.V(2).Infof("symbols: skipping unparseable nm line %q", line)
			continue
		}
		syms = append(syms, sym)
	}
	return syms, nil
}

// parseLine parses one `name type [value [size]]` line.
func parseLine(line string) (linktypes.Symbol, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return linktypes.Symbol{}, false
	}
	name := fields[0]
	typeChar := fields[1]
	if len(typeChar) != 1 {
		return linktypes.Symbol{}, false
	}

	sym := linktypes.Symbol{Name: name}
	sym.Kind, sym.Scope = classifyType(typeChar[0])

	if len(fields) >= 3 {
		if v, err := strconv.ParseUint(fields[2], 16, 64); err == nil {
			sym.Value = v
			sym.HasValue = true
		}
	}
	if len(fields) >= 4 {
		if s, err := strconv.ParseUint(fields[3], 16, 64); err == nil {
			sym.Size = s
			sym.HasSize = true
		}
	}
	return sym, true
}

func classifyType(c byte) (linktypes.SymbolKind, linktypes.SymbolScope) {
	scope := linktypes.ScopeLocal
	if c >= 'A' && c <= 'Z' {
		scope = linktypes.ScopeGlobal
	}
	switch c {
	case 'T', 't':
		return linktypes.SymText, scope
	case 'D', 'd':
		return linktypes.SymData, scope
	case 'B', 'b':
		return linktypes.SymBss, scope
	case 'R', 'r':
		return linktypes.SymRodata, scope
	case 'U':
		return linktypes.SymUndefined, scope
	case 'W', 'w', 'V', 'v':
		return linktypes.SymWeak, scope
	case 'C', 'c':
		return linktypes.SymCommon, scope
	default:
		return linktypes.SymOther, scope
	}
}

// Undefined returns every symbol of kind Undefined.
func Undefined(syms []linktypes.Symbol) []linktypes.Symbol {
	var out []linktypes.Symbol
	for _, s := range syms {
		if s.Kind == linktypes.SymUndefined {
			out = append(out, s)
		}
	}
	return out
}

// Defined returns every Global symbol whose kind is not Undefined or
// Other: these are the symbols a file can supply to satisfy others.
func Defined(syms []linktypes.Symbol) []linktypes.Symbol {
	var out []linktypes.Symbol
	for _, s := range syms {
		if s.Scope != linktypes.ScopeGlobal {
			continue
		}
		if s.Kind == linktypes.SymUndefined || s.Kind == linktypes.SymOther {
			continue
		}
		out = append(out, s)
	}
	return out
}

// FileSymbols pairs a path with its extracted symbol table, so callers
// can carry extraction results around without reopening the file.
type FileSymbols struct {
	Path    string
	Symbols []linktypes.Symbol
}

// Providers builds a symbol name -> set of defining file paths map. The
// inner set is returned as a sorted slice so callers get deterministic
// iteration without needing to sort themselves (spec's determinism
// discipline on hashed containers).
func Providers(files []FileSymbols) map[string][]string {
	sets := make(map[string]map[string]bool)
	for _, f := range files {
		for _, s := range Defined(f.Symbols) {
			if sets[s.Name] == nil {
				sets[s.Name] = make(map[string]bool)
			}
			sets[s.Name][f.Path] = true
		}
	}
	out := make(map[string][]string, len(sets))
	for name, set := range sets {
		paths := make([]string, 0, len(set))
		for p := range set {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		out[name] = paths
	}
	return out
}

// Requirements builds a file path -> sorted list of undefined symbol
// names map.
func Requirements(files []FileSymbols) map[string][]string {
	out := make(map[string][]string, len(files))
	for _, f := range files {
		var names []string
		for _, s := range Undefined(f.Symbols) {
			names = append(names, s.Name)
		}
		sort.Strings(names)
		out[f.Path] = names
	}
	return out
}
