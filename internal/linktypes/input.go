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

package linktypes

import (
	"path/filepath"
	"strings"
)

// LibRefKind discriminates the three ways a library can be referenced.
type LibRefKind int

const (
	LibRefNamed LibRefKind = iota
	LibRefPath
	LibRefFramework
)

// LibRef is one library reference: -lfoo, a bare path, or (Darwin)
// -framework Foo.
type LibRef struct {
	Kind LibRefKind
	Name string // the "foo" in -lfoo, the path, or the framework name
}

func (r LibRef) String() string {
	switch r.Kind {
	case LibRefNamed:
		return "-l" + r.Name
	case LibRefFramework:
		return "-framework " + r.Name
	default:
		return r.Name
	}
}

// InputKind discriminates how a positional argument was classified.
type InputKind int

const (
	InputObject InputKind = iota
	InputArchive
	InputSharedObject
	InputLinkerScript
	InputResponseFile
	InputLib
	InputRaw
)

// Input is one positional link input.
type Input struct {
	Kind InputKind
	Path string // meaningful for every kind except InputLib
	Lib  LibRef // meaningful only when Kind == InputLib
}

// ClassifyInput classifies a bare positional argument by extension, per
// spec.md §3: ".o"/".obj" -> object, ".a" -> archive,
// ".so"/".dylib"/".dll" -> shared object, ".ld"/".lds" -> linker script,
// otherwise raw. A positional that names a binary inside a .framework
// bundle (e.g. ".../Foo.framework/Foo", as produced by expanding an
// already-resolved framework reference) classifies as a Lib input, the
// positional-side counterpart to a -framework flag.
func ClassifyInput(path string) Input {
	if name, ok := frameworkBinaryName(path); ok {
		return Input{Kind: InputLib, Lib: LibRef{Kind: LibRefFramework, Name: name}}
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".o", ".obj":
		return Input{Kind: InputObject, Path: path}
	case ".a":
		return Input{Kind: InputArchive, Path: path}
	case ".so", ".dylib", ".dll":
		return Input{Kind: InputSharedObject, Path: path}
	case ".ld", ".lds":
		return Input{Kind: InputLinkerScript, Path: path}
	default:
		return Input{Kind: InputRaw, Path: path}
	}
}

var inputKindNames = [...]string{
	InputObject:       "object",
	InputArchive:      "archive",
	InputSharedObject: "shared_object",
	InputLinkerScript: "linker_script",
	InputResponseFile: "response_file",
	InputLib:          "lib",
	InputRaw:          "raw",
}

// String renders the stable, serializable name of an InputKind.
func (k InputKind) String() string {
	if int(k) < 0 || int(k) >= len(inputKindNames) {
		return "raw"
	}
	return inputKindNames[k]
}

// frameworkBinaryName reports whether path points at the binary inside a
// macOS .framework bundle (".../Name.framework/Name") and, if so, returns
// Name.
func frameworkBinaryName(path string) (string, bool) {
	dir, base := filepath.Split(path)
	dir = strings.TrimSuffix(dir, "/")
	dirBase := filepath.Base(dir)
	if strings.HasSuffix(dirBase, ".framework") && strings.TrimSuffix(dirBase, ".framework") == base {
		return base, true
	}
	return "", false
}
