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

// Package reorder builds a symbol-dependency graph over a set of static
// libraries and topologically sorts it, so that a library appears before
// anything it depends on. A dependency cycle is left in its original
// order and reported as a single group-wrap fix instead of an error.
package reorder

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/jellolink/gel/internal/gellog"
	"github.com/jellolink/gel/internal/linktypes"
	"github.com/jellolink/gel/internal/symbols"
)

// Extractor extracts a symbol table for one path; Libs accepts it so
// tests can substitute a fake without shelling out to nm.
type Extractor func(ctx context.Context, path string) ([]linktypes.Symbol, error)

// Result is the outcome of reordering: the (possibly reordered) library
// list, plus any fixes Reorder wants to surface (currently only
// AddGroup, for cycles).
type Result struct {
	Order []string
	Fixes []linktypes.Fix
}

// Libs reorders paths by symbol dependency: A -> B means A has an
// undefined symbol that B defines. The returned order places dependents
// before their dependencies. If extraction fails for every path, the
// input order is returned unchanged with no fixes, logged advisory-only.
func Libs(ctx context.Context, paths []string, extract Extractor) Result {
	if len(paths) == 0 {
		return Result{Order: nil}
	}

	files := make([]symbols.FileSymbols, 0, len(paths))
	failures := 0
	for _, p := range paths {
		syms, err := extract(ctx, p)
		if err != nil {
			gellog.V(1).Infof("reorder: skipping unreadable archive %s: %v", p, err)
			failures++
			continue
		}
		files = append(files, symbols.FileSymbols{Path: p, Symbols: syms})
	}
	if failures == len(paths) {
		return Result{Order: append([]string(nil), paths...)}
	}

	providers := symbols.Providers(files)
	requirements := symbols.Requirements(files)

	edges := buildEdges(files, providers, requirements)

	order, cycle, ok := topoSort(paths, edges)
	if ok {
		return Result{Order: order}
	}

	names := make([]string, len(cycle))
	for i, p := range cycle {
		names[i] = filepath.Base(p)
	}
	sort.Strings(names)

	fix := linktypes.Fix{
		Description: "circular static library dependency among " + joinNames(names) + "; wrap in --start-group/--end-group",
		Confidence:  linktypes.ConfidenceHigh,
		Action:      linktypes.FixAction{Kind: linktypes.ActionAddGroup, Libs: names},
	}
	return Result{Order: append([]string(nil), paths...), Fixes: []linktypes.Fix{fix}}
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}

// buildEdges returns, for every path, the set of paths it must come
// before (its dependencies: things that provide one of its undefined
// symbols).
func buildEdges(files []symbols.FileSymbols, providers map[string][]string, requirements map[string][]string) map[string][]string {
	edges := make(map[string][]string, len(files))
	for _, f := range files {
		var deps []string
		seen := make(map[string]bool)
		for _, sym := range requirements[f.Path] {
			for _, provider := range providers[sym] {
				if provider == f.Path || seen[provider] {
					continue
				}
				seen[provider] = true
				deps = append(deps, provider)
			}
		}
		sort.Strings(deps)
		edges[f.Path] = deps
	}
	return edges
}

const (
	white = 0
	gray  = 1
	black = 2
)

// topoSort runs a DFS over paths using edges (A -> B meaning A depends
// on B), returning an order where dependents precede dependencies. A
// back edge to a node still on the DFS stack marks a cycle; every such
// node, across every disjoint cycle found in the forest, is collected
// into one cycle set rather than stopping at the first. paths not
// present in edges are treated as leaves.
func topoSort(paths []string, edges map[string][]string) (order []string, cycle []string, ok bool) {
	color := make(map[string]int, len(paths))
	var stack []string
	var result []string
	cycleNodes := make(map[string]bool)

	var visit func(p string)
	visit = func(p string) {
		color[p] = gray
		stack = append(stack, p)
		for _, dep := range edges[p] {
			switch color[dep] {
			case white:
				visit(dep)
			case gray:
				for i := len(stack) - 1; i >= 0 && stack[i] != dep; i-- {
					cycleNodes[stack[i]] = true
				}
				cycleNodes[dep] = true
			}
		}
		stack = stack[:len(stack)-1]
		color[p] = black
		result = append(result, p)
	}

	for _, p := range paths {
		if color[p] == white {
			visit(p)
		}
	}

	if len(cycleNodes) > 0 {
		names := make([]string, 0, len(cycleNodes))
		for n := range cycleNodes {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, names, false
	}

	// visit appends each node only after all of its dependencies, so
	// result lists dependencies before their dependents, which is the
	// reverse of what we want: reverse it so dependents precede
	// dependencies.
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result, nil, true
}
