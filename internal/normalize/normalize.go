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

// Package normalize resolves conflicting flag pairs (last-wins),
// deduplicates repeated flags, and applies defaults. It is applied
// exactly once to an Invocation, and is idempotent.
package normalize

import "github.com/jellolink/gel/internal/linktypes"

const defaultOutput = "a.out"

// Invocation normalizes inv in place and also returns it, for chaining.
func Invocation(inv *linktypes.Invocation) *linktypes.Invocation {
	inv.ExplicitSearchPaths = dedupStrings(inv.ExplicitSearchPaths)
	inv.Flags = dropLastWinsPie(inv.Flags)
	inv.Flags = dropDuplicateFlags(inv.Flags)
	if inv.Output == "" {
		inv.Output = defaultOutput
	}
	return inv
}

func dedupStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// dropLastWinsPie resolves -pie vs -no-pie conflicts: whichever of the
// two occurs at the higher index wins, and every occurrence of the
// opposite kind is dropped. If only one of the two kinds is present,
// flags is returned unchanged.
func dropLastWinsPie(flags []linktypes.Flag) []linktypes.Flag {
	lastPieIdx, lastNoPieIdx := -1, -1
	for i, f := range flags {
		switch f.Kind {
		case linktypes.FlagPie:
			lastPieIdx = i
		case linktypes.FlagNoPie:
			lastNoPieIdx = i
		}
	}
	if lastPieIdx == -1 || lastNoPieIdx == -1 {
		return flags
	}

	loserKind := linktypes.FlagNoPie
	if lastNoPieIdx > lastPieIdx {
		loserKind = linktypes.FlagPie
	}
	drop := make(map[int]bool)
	for i, f := range flags {
		if f.Kind == loserKind {
			drop[i] = true
		}
	}
	return filterOut(flags, drop)
}

func filterOut(flags []linktypes.Flag, drop map[int]bool) []linktypes.Flag {
	if len(drop) == 0 {
		return flags
	}
	out := make([]linktypes.Flag, 0, len(flags))
	for i, f := range flags {
		if drop[i] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// dropDuplicateFlags drops a structurally-equal flag on its second and
// later occurrence, except for flags whose position in the stream is
// significant (Flag.IsPositionalSensitive).
func dropDuplicateFlags(flags []linktypes.Flag) []linktypes.Flag {
	seen := make(map[linktypes.Flag]bool, len(flags))
	out := make([]linktypes.Flag, 0, len(flags))
	for _, f := range flags {
		if f.IsPositionalSensitive() {
			out = append(out, f)
			continue
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
