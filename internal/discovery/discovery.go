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

// Package discovery locates the toolchain environment: backend linkers,
// nm, real compilers (avoiding self-reference), system search paths,
// sysroot, and linker versions. Every function here is a pure lookup
// over the process environment and filesystem.
package discovery

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strings"

	"github.com/jellolink/gel/internal/gellog"
	"github.com/jellolink/gel/internal/linktypes"
)

// wrapperNames are the driver's own installed names: RealCompiler filters
// these out of its candidate list to avoid infinite recursion when the
// driver occupies the CC/CXX slot.
var wrapperNames = map[string]bool{
	"gelcc":  true,
	"gelc++": true,
	"geld":   true,
	"gel":    true,
}

// lookPath is overridable in tests.
var lookPath = exec.LookPath

// Backend selects a (Backend, path) pair. override, if non-empty, is a
// forced backend name. preferred, if set, comes from -fuse-ld=…: either a
// backend name or an absolute path to a linker binary. preference is the
// search order to fall back to; nil means linktypes.DefaultPreference().
func Backend(override, preferred string, preference []linktypes.Backend) (linktypes.Backend, string, error) {
	if override != "" {
		b, ok := linktypes.ParseBackend(override)
		if !ok {
			return linktypes.BackendUnknown, "", linktypes.DiscoveryError{Msg: fmt.Sprintf("unknown backend override %q", override)}
		}
		if path, ok := findOnPath(b.CandidateNames()); ok {
			return b, path, nil
		}
		return linktypes.BackendUnknown, "", linktypes.DiscoveryError{Msg: fmt.Sprintf("backend override %q not found on PATH", override)}
	}

	if preferred != "" {
		if b, ok := linktypes.ParseBackend(preferred); ok {
			if path, ok := findOnPath(b.CandidateNames()); ok {
				return b, path, nil
			}
			return linktypes.BackendUnknown, "", linktypes.DiscoveryError{Msg: fmt.Sprintf("preferred backend %q not found on PATH", preferred)}
		}
		if isAbsExisting(preferred) {
			return linktypes.BackendSystem, preferred, nil
		}
	}

	if preference == nil {
		preference = linktypes.DefaultPreference()
	}
	for _, b := range preference {
		if path, ok := findOnPath(b.CandidateNames()); ok {
			return b, path, nil
		}
	}
	return linktypes.BackendUnknown, "", linktypes.DiscoveryError{Msg: "no linker backend found"}
}

func findOnPath(names []string) (string, bool) {
	for _, name := range names {
		if path, err := lookPath(name); err == nil {
			return path, true
		}
	}
	return "", false
}

func isAbsExisting(path string) bool {
	if !strings.HasPrefix(path, "/") {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// NM locates an nm-equivalent: override if it exists, else llvm-nm, then
// nm.
func NM(override string) (string, error) {
	if override != "" {
		if _, err := lookPath(override); err == nil {
			return override, nil
		}
		if isAbsExisting(override) {
			return override, nil
		}
		return "", linktypes.DiscoveryError{Msg: fmt.Sprintf("nm override %q not found", override)}
	}
	for _, name := range []string{"llvm-nm", "nm"} {
		if path, err := lookPath(name); err == nil {
			return path, nil
		}
	}
	return "", linktypes.DiscoveryError{Msg: "no nm-equivalent found"}
}

// FileTool locates the platform `file` binary used for advisory arch
// detection in Resolve. Returns "" if no such tool is on PATH: the
// caller treats arch detection as simply unavailable, not an error.
func FileTool() string {
	path, ok := findOnPath([]string{"file"})
	if !ok {
		return ""
	}
	return path
}

// Lang is the compiler frontend language, used by Compiler/RealCompiler.
type Lang int

const (
	LangC Lang = iota
	LangCxx
)

func (l Lang) String() string {
	if l == LangCxx {
		return "c++"
	}
	return "c"
}

func candidateNamesFor(lang Lang) []string {
	if lang == LangCxx {
		return []string{"c++", "g++", "clang++"}
	}
	return []string{"cc", "gcc", "clang"}
}

func envVarFor(lang Lang) string {
	if lang == LangCxx {
		return "CXX"
	}
	return "CC"
}

// Compiler locates a compiler for lang, honoring CC/CXX first.
func Compiler(lang Lang) (string, error) {
	if env := os.Getenv(envVarFor(lang)); env != "" {
		if path, err := lookPath(env); err == nil {
			return path, nil
		}
		if isAbsExisting(env) {
			return env, nil
		}
	}
	for _, name := range candidateNamesFor(lang) {
		if path, err := lookPath(name); err == nil {
			return path, nil
		}
	}
	return "", linktypes.DiscoveryError{Msg: fmt.Sprintf("no compiler found for %v", lang)}
}

// RealCompiler locates a compiler like Compiler, but skips CC/CXX and
// filters out any candidate whose basename is one of the driver's own
// wrapper names, preventing infinite recursion when the driver is
// installed as CC.
func RealCompiler(lang Lang) (string, error) {
	for _, name := range candidateNamesFor(lang) {
		path, err := lookPath(name)
		if err != nil {
			continue
		}
		base := pathBase(path)
		if wrapperNames[base] {
			gellog.V(1).Infof("discovery: skipping %s (%s), it is one of our own wrapper names", name, path)
			continue
		}
		return path, nil
	}
	return "", linktypes.DiscoveryError{Msg: fmt.Sprintf("no real compiler found for %v", lang)}
}

func pathBase(p string) string {
	i := strings.LastIndexByte(p, '/')
	if i < 0 {
		return p
	}
	return p[i+1:]
}

var searchDirRe = regexp.MustCompile(`SEARCH_DIR\("=?([^"]+)"\)`)

// SearchPaths parses `ld --verbose` output for SEARCH_DIR(...) directives,
// falling back to a platform-sensible default list.
func SearchPaths(ctx context.Context) []string {
	out, err := exec.CommandContext(ctx, "ld", "--verbose").CombinedOutput()
	if err == nil {
		matches := searchDirRe.FindAllStringSubmatch(string(out), -1)
		if len(matches) > 0 {
			paths := make([]string, 0, len(matches))
			for _, m := range matches {
				paths = append(paths, m[1])
			}
			return paths
		}
	}
	gellog.V(1).Infof("discovery: ld --verbose unavailable, using default search paths")
	return defaultSearchPaths()
}

func defaultSearchPaths() []string {
	paths := []string{"/usr/lib", "/usr/local/lib", "/lib"}
	if runtime.GOOS == "darwin" {
		paths = append(paths, "/Library/Developer/CommandLineTools/SDKs/MacOSX.sdk/usr/lib")
	}
	return paths
}

// Sysroot runs `<compiler> --print-sysroot` and accepts non-empty stdout.
func Sysroot(ctx context.Context, compilerPath string) (string, bool) {
	if compilerPath == "" {
		return "", false
	}
	out, err := exec.CommandContext(ctx, compilerPath, "--print-sysroot").Output()
	if err != nil {
		return "", false
	}
	s := strings.TrimSpace(string(out))
	return s, s != ""
}

// LinkerVersion takes the first line of `<path> --version`.
func LinkerVersion(ctx context.Context, path string) (string, error) {
	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return "", linktypes.DiscoveryError{Msg: fmt.Sprintf("%s --version: %v", path, err)}
	}
	lines := strings.SplitN(string(out), "\n", 2)
	return lines[0], nil
}
