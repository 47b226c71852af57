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

// Command gel is installed under four names: gel itself (the link/doctor/
// plan/init subcommands), geld (a direct linker replacement taking raw
// argv), and gelcc/gelc++ (compiler wrappers that forward untouched to the
// real cc/c++ so that make-style builds invoking $(CC) ... -o foo still
// reach the link pipeline when the final link step fires).
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/jellolink/gel/internal/cli"
	"github.com/jellolink/gel/internal/discovery"
	"github.com/jellolink/gel/internal/driver"
	"github.com/jellolink/gel/internal/linktypes"
)

func main() {
	base := filepath.Base(os.Args[0])

	switch base {
	case "gelcc":
		execRealCompiler(discovery.LangC)
	case "gelc++":
		execRealCompiler(discovery.LangCxx)
	case "geld":
		runLinkerReplacement()
	default:
		root := cli.NewRootCmd()
		if err := root.Execute(); err != nil {
			fmt.Fprintln(os.Stderr, "gel:", err)
			os.Exit(1)
		}
	}
}

// execRealCompiler forwards argv untouched to the real cc/c++, replacing
// the current process so exit codes, signals, and stdio all pass through
// unmodified. It never runs the link pipeline itself: that only happens
// when the compiler's own final link step shells out to geld via
// -fuse-ld or a toolchain configured to use it as its linker.
func execRealCompiler(lang discovery.Lang) {
	path, err := discovery.RealCompiler(lang)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gel:", err)
		os.Exit(1)
	}
	argv := append([]string{path}, os.Args[1:]...)
	if err := syscall.Exec(path, argv, os.Environ()); err != nil {
		fmt.Fprintln(os.Stderr, "gel: exec", path, ":", err)
		os.Exit(1)
	}
}

// runLinkerReplacement is what sits behind -fuse-ld=/path/to/geld or a
// CC/CXX triple pointed straight at geld: it receives the raw linker
// invocation as argv and runs it through the full pipeline.
func runLinkerReplacement() {
	opts := driver.Options{
		EmitPlan: false,
		FixMode:  linktypes.FixModeSuggest,
		Stderr:   os.Stderr,
	}
	outcome, err := driver.Run(context.Background(), os.Args[1:], opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "geld:", err)
		os.Exit(1)
	}
	os.Exit(outcome.ExitCode)
}
