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

package parse

import (
	"strings"

	"github.com/jellolink/gel/internal/linktypes"
)

// glued extracts the value from "prefix=value" or "prefixvalue" forms;
// ok is false if tok doesn't start with prefix at all.
func glued(tok, prefix string) (string, bool) {
	if !strings.HasPrefix(tok, prefix) {
		return "", false
	}
	rest := tok[len(prefix):]
	rest = strings.TrimPrefix(rest, "=")
	return rest, true
}

// valueFlag resolves a flag that accepts either a glued or a spaced
// value: tok is already known to start with one of names (bare, "=", or
// immediately followed by the value).
func valueFlag(tok string, names []string, q *queue) (string, bool, error) {
	for _, name := range names {
		if tok == name {
			val, ok := q.peek()
			if !ok {
				return "", false, linktypes.ParseError{Msg: "flag " + name + " requires a value"}
			}
			q.pop()
			return val, true, nil
		}
		if strings.HasPrefix(tok, name+"=") {
			return tok[len(name)+1:], true, nil
		}
		// glued, no separator (e.g. -Lpath, -lfoo)
		if len(name) <= 2 && strings.HasPrefix(tok, name) && len(tok) > len(name) {
			return tok[len(name):], true, nil
		}
	}
	return "", false, nil
}

// parseFlag recognizes one flag token, consuming an extra token from q
// for spaced-value forms. It returns either a Flag, an Input (for
// positional-like forwarding, currently unused but kept for symmetry with
// the Input/Lib duality in the data model), or an error.
func parseFlag(tok string, q *queue) (*linktypes.Flag, *linktypes.Input, error) {
	// Aliases normalized up front.
	switch tok {
	case "-(", "--start-group":
		return &linktypes.Flag{Kind: linktypes.FlagStartGroup}, nil, nil
	case "-)", "--end-group":
		return &linktypes.Flag{Kind: linktypes.FlagEndGroup}, nil, nil
	case "-E", "--export-dynamic":
		return &linktypes.Flag{Kind: linktypes.FlagExportDynamic}, nil, nil
	case "-Bstatic", "--Bstatic", "-dn", "-non_shared":
		return &linktypes.Flag{Kind: linktypes.FlagBStatic}, nil, nil
	case "-Bdynamic", "--Bdynamic", "-dy", "-call_shared":
		return &linktypes.Flag{Kind: linktypes.FlagBDynamic}, nil, nil
	case "--whole-archive", "-whole-archive":
		return &linktypes.Flag{Kind: linktypes.FlagWholeArchive}, nil, nil
	case "--no-whole-archive", "-no-whole-archive":
		return &linktypes.Flag{Kind: linktypes.FlagNoWholeArchive}, nil, nil
	case "--push-state":
		return &linktypes.Flag{Kind: linktypes.FlagPushState}, nil, nil
	case "--pop-state":
		return &linktypes.Flag{Kind: linktypes.FlagPopState}, nil, nil
	case "--as-needed":
		return &linktypes.Flag{Kind: linktypes.FlagAsNeeded}, nil, nil
	case "--no-as-needed":
		return &linktypes.Flag{Kind: linktypes.FlagNoAsNeeded}, nil, nil
	case "--gc-sections":
		return &linktypes.Flag{Kind: linktypes.FlagGCSections}, nil, nil
	case "--no-gc-sections":
		return &linktypes.Flag{Kind: linktypes.FlagNoGCSections}, nil, nil
	case "-pie":
		return &linktypes.Flag{Kind: linktypes.FlagPie}, nil, nil
	case "-no-pie", "--no-pie":
		return &linktypes.Flag{Kind: linktypes.FlagNoPie}, nil, nil
	case "-shared", "--shared":
		return &linktypes.Flag{Kind: linktypes.FlagShared}, nil, nil
	case "-static", "--static":
		return &linktypes.Flag{Kind: linktypes.FlagStatic}, nil, nil
	case "-nostdlib", "--nostdlib":
		return &linktypes.Flag{Kind: linktypes.FlagNoStdlib}, nil, nil
	case "-nostartfiles", "--nostartfiles":
		return &linktypes.Flag{Kind: linktypes.FlagNoStartFiles}, nil, nil
	case "-nodefaultlibs", "--nodefaultlibs":
		return &linktypes.Flag{Kind: linktypes.FlagNoDefaultLibs}, nil, nil
	case "-m32":
		return &linktypes.Flag{Kind: linktypes.FlagM32}, nil, nil
	case "-m64":
		return &linktypes.Flag{Kind: linktypes.FlagM64}, nil, nil
	case "--verbose":
		return &linktypes.Flag{Kind: linktypes.FlagVerbose}, nil, nil
	case "--trace":
		return &linktypes.Flag{Kind: linktypes.FlagTrace}, nil, nil
	case "-M", "--print-map":
		return &linktypes.Flag{Kind: linktypes.FlagPrintMap}, nil, nil
	case "-g":
		return &linktypes.Flag{Kind: linktypes.FlagDebug}, nil, nil
	case "-s", "--strip-all":
		return &linktypes.Flag{Kind: linktypes.FlagStripAll}, nil, nil
	case "-S", "--strip-debug":
		return &linktypes.Flag{Kind: linktypes.FlagStripDebug}, nil, nil
	case "-r", "--relocatable":
		return &linktypes.Flag{Kind: linktypes.FlagRelocatable}, nil, nil
	}

	// -framework NAME (Darwin)
	if tok == "-framework" {
		val, ok := q.peek()
		if !ok {
			return nil, nil, linktypes.ParseError{Msg: "flag -framework requires a value"}
		}
		q.pop()
		return &linktypes.Flag{Kind: linktypes.FlagLinkLib, Lib: linktypes.LibRef{Kind: linktypes.LibRefFramework, Name: val}}, nil, nil
	}

	// -o / --output, glued or spaced.
	if val, ok, err := valueFlag(tok, []string{"-o", "--output"}, q); err != nil {
		return nil, nil, err
	} else if ok {
		return &linktypes.Flag{Kind: linktypes.FlagOutput, Value: val}, nil, nil
	}

	// -L / --library-path, glued or spaced.
	if val, ok, err := valueFlag(tok, []string{"-L", "--library-path"}, q); err != nil {
		return nil, nil, err
	} else if ok {
		return &linktypes.Flag{Kind: linktypes.FlagSearchPath, Value: val}, nil, nil
	}

	// -l / --library, glued or spaced.
	if val, ok, err := valueFlag(tok, []string{"-l", "--library"}, q); err != nil {
		return nil, nil, err
	} else if ok {
		return &linktypes.Flag{Kind: linktypes.FlagLinkLib, Lib: linktypes.LibRef{Kind: linktypes.LibRefNamed, Name: val}}, nil, nil
	}

	if val, ok, err := valueFlag(tok, []string{"--sysroot"}, q); err != nil {
		return nil, nil, err
	} else if ok {
		return &linktypes.Flag{Kind: linktypes.FlagSysroot, Value: val}, nil, nil
	}

	if val, ok, err := valueFlag(tok, []string{"--dynamic-linker", "-dynamic-linker"}, q); err != nil {
		return nil, nil, err
	} else if ok {
		return &linktypes.Flag{Kind: linktypes.FlagDynamicLinker, Value: val}, nil, nil
	}

	if val, ok, err := valueFlag(tok, []string{"--rpath-link", "-rpath-link"}, q); err != nil {
		return nil, nil, err
	} else if ok {
		return &linktypes.Flag{Kind: linktypes.FlagRpathLink, Value: val}, nil, nil
	}

	if val, ok, err := valueFlag(tok, []string{"--rpath", "-rpath", "-R"}, q); err != nil {
		return nil, nil, err
	} else if ok {
		return &linktypes.Flag{Kind: linktypes.FlagRpath, Value: val}, nil, nil
	}

	if val, ok, err := valueFlag(tok, []string{"--icf"}, q); err != nil {
		return nil, nil, err
	} else if ok {
		return &linktypes.Flag{Kind: linktypes.FlagICF, Value: val}, nil, nil
	}

	if val, ok := glued(tok, "-stdlib="); ok {
		return &linktypes.Flag{Kind: linktypes.FlagStdlib, Value: val}, nil, nil
	}

	if val, ok, err := valueFlag(tok, []string{"--target"}, q); err != nil {
		return nil, nil, err
	} else if ok {
		return &linktypes.Flag{Kind: linktypes.FlagTarget, Value: val}, nil, nil
	}

	if val, ok, err := valueFlag(tok, []string{"-arch"}, q); err != nil {
		return nil, nil, err
	} else if ok {
		return &linktypes.Flag{Kind: linktypes.FlagArch, Value: val}, nil, nil
	}

	if tok == "-flto" {
		return &linktypes.Flag{Kind: linktypes.FlagLTO, Value: ""}, nil, nil
	}
	if val, ok := glued(tok, "-flto="); ok {
		return &linktypes.Flag{Kind: linktypes.FlagLTO, Value: val}, nil, nil
	}

	if val, ok := glued(tok, "-fuse-ld="); ok {
		return &linktypes.Flag{Kind: linktypes.FlagUseLinker, Value: val}, nil, nil
	}

	if val, ok, err := valueFlag(tok, []string{"-z"}, q); err != nil {
		return nil, nil, err
	} else if ok {
		return &linktypes.Flag{Kind: linktypes.FlagZ, Value: val}, nil, nil
	}

	if val, ok, err := valueFlag(tok, []string{"-soname", "-h", "--soname"}, q); err != nil {
		return nil, nil, err
	} else if ok {
		return &linktypes.Flag{Kind: linktypes.FlagSoname, Value: val}, nil, nil
	}

	if val, ok, err := valueFlag(tok, []string{"--version-script"}, q); err != nil {
		return nil, nil, err
	} else if ok {
		return &linktypes.Flag{Kind: linktypes.FlagVersionScript, Value: val}, nil, nil
	}

	if val, ok, err := valueFlag(tok, []string{"-T", "--script"}, q); err != nil {
		return nil, nil, err
	} else if ok {
		return &linktypes.Flag{Kind: linktypes.FlagLinkerScript, Value: val}, nil, nil
	}

	if val, ok, err := valueFlag(tok, []string{"-Map", "--Map"}, q); err != nil {
		return nil, nil, err
	} else if ok {
		return &linktypes.Flag{Kind: linktypes.FlagMapFile, Value: val}, nil, nil
	}

	// Unrecognized: preserve verbatim.
	return &linktypes.Flag{Kind: linktypes.FlagPassthrough, Passthrough: tok}, nil, nil
}
