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

// Package resolve maps library references (-lfoo, bare paths,
// -framework Foo) to concrete files on disk, honoring the
// static/dynamic preference derived from the flag stream.
package resolve

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jellolink/gel/internal/gellog"
	"github.com/jellolink/gel/internal/linktypes"
)

// statExists is overridable in tests.
var statExists = func(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// runFile is overridable in tests; it shells out to the platform `file`
// tool for advisory arch detection.
var runFile = func(ctx context.Context, path string) (string, error) {
	out, err := exec.CommandContext(ctx, "file", path).Output()
	return string(out), err
}

const (
	darwinSystemFrameworks = "/System/Library/Frameworks"
	darwinUserFrameworks   = "/Library/Frameworks"
)

// StaticPreference walks flags in order and returns the last of
// {B-static or -static -> true, B-dynamic -> false} seen; defaults to false (prefer
// shared) when neither appears.
func StaticPreference(flags []linktypes.Flag) bool {
	prefer := false
	for _, f := range flags {
		switch f.Kind {
		case linktypes.FlagBStatic, linktypes.FlagStatic:
			prefer = true
		case linktypes.FlagBDynamic:
			prefer = false
		}
	}
	return prefer
}

// References collects every LibRef from the flags (FlagLinkLib) and the
// inputs (InputLib), in encounter order.
func References(inv *linktypes.Invocation) []linktypes.LibRef {
	var refs []linktypes.LibRef
	for _, f := range inv.Flags {
		if f.Kind == linktypes.FlagLinkLib {
			refs = append(refs, f.Lib)
		}
	}
	for _, in := range inv.Inputs {
		if in.Kind == linktypes.InputLib {
			refs = append(refs, in.Lib)
		}
	}
	return refs
}

// SearchPaths concatenates explicit search paths ahead of system ones,
// per spec.md §4.6: explicit ++ system.
func SearchPaths(explicit, system []string) []string {
	out := make([]string, 0, len(explicit)+len(system))
	out = append(out, explicit...)
	out = append(out, system...)
	return out
}

// One resolves a single LibRef against searchPaths, honoring
// preferStatic. fileTool is the path to the `file` binary for advisory
// arch detection; if empty, arch detection is skipped.
func One(ctx context.Context, ref linktypes.LibRef, searchPaths []string, preferStatic bool, fileTool string) (linktypes.ResolvedLib, error) {
	var path string
	var kind linktypes.ResolvedLibKind
	var found bool

	switch ref.Kind {
	case linktypes.LibRefPath:
		if statExists(ref.Name) {
			path, found = ref.Name, true
			if strings.HasSuffix(strings.ToLower(ref.Name), ".a") {
				kind = linktypes.LibStatic
			} else {
				kind = linktypes.LibShared
			}
		}

	case linktypes.LibRefNamed:
		path, kind, found = resolveNamed(ref.Name, searchPaths, preferStatic)

	case linktypes.LibRefFramework:
		for _, candidate := range []string{
			filepath.Join(darwinSystemFrameworks, ref.Name+".framework", ref.Name),
			filepath.Join(darwinUserFrameworks, ref.Name+".framework", ref.Name),
		} {
			if statExists(candidate) {
				path, kind, found = candidate, linktypes.LibShared, true
				break
			}
		}
	}

	if !found {
		return linktypes.ResolvedLib{}, linktypes.ResolveError{Lib: ref.Name, Searched: append([]string(nil), searchPaths...)}
	}

	resolved := linktypes.ResolvedLib{Ref: ref, Path: path, Kind: kind}
	if fileTool != "" {
		if arch, ok := detectArch(ctx, fileTool, path); ok {
			resolved.DetectedArch = arch
			resolved.HasDetected = true
		}
	}
	return resolved, nil
}

func resolveNamed(name string, searchPaths []string, preferStatic bool) (string, linktypes.ResolvedLibKind, bool) {
	staticName := "lib" + name + ".a"
	sharedNames := []string{"lib" + name + ".so", "lib" + name + ".dylib"}

	for _, dir := range searchPaths {
		tryStatic := filepath.Join(dir, staticName)
		var trySharedHits []string
		for _, n := range sharedNames {
			trySharedHits = append(trySharedHits, filepath.Join(dir, n))
		}

		if preferStatic {
			if statExists(tryStatic) {
				return tryStatic, linktypes.LibStatic, true
			}
			for _, s := range trySharedHits {
				if statExists(s) {
					return s, linktypes.LibShared, true
				}
			}
		} else {
			for _, s := range trySharedHits {
				if statExists(s) {
					return s, linktypes.LibShared, true
				}
			}
			if statExists(tryStatic) {
				return tryStatic, linktypes.LibStatic, true
			}
		}
	}
	return "", 0, false
}

// detectArch shells out to the file tool and looks for arch keywords in
// its output. This is advisory: failures and ambiguous output simply
// leave the library's arch undetected.
func detectArch(ctx context.Context, fileTool, path string) (linktypes.Arch, bool) {
	out, err := runFile(ctx, path)
	if err != nil {
		gellog.V(1).Infof("resolve: file tool failed for %s: %v", path, err)
		return linktypes.ArchUnknown, false
	}
	lower := strings.ToLower(out)
	switch {
	case strings.Contains(lower, "x86-64"), strings.Contains(lower, "x86_64"):
		return linktypes.ArchX86_64, true
	case strings.Contains(lower, "aarch64"), strings.Contains(lower, "arm64"):
		return linktypes.ArchAarch64, true
	case strings.Contains(lower, "80386"):
		return linktypes.ArchI686, true
	case strings.Contains(lower, "arm"):
		return linktypes.ArchArmv7, true
	default:
		return linktypes.ArchUnknown, false
	}
}

// All resolves every reference in refs, collecting individual failures
// into a linktypes.MultiError if more than one reference fails.
func All(ctx context.Context, refs []linktypes.LibRef, searchPaths []string, preferStatic bool, fileTool string) ([]linktypes.ResolvedLib, error) {
	var resolved []linktypes.ResolvedLib
	var errs []error
	for _, ref := range refs {
		r, err := One(ctx, ref, searchPaths, preferStatic, fileTool)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		resolved = append(resolved, r)
	}
	switch len(errs) {
	case 0:
		return resolved, nil
	case 1:
		return resolved, errs[0]
	default:
		return resolved, linktypes.MultiError{Errors: errs}
	}
}
