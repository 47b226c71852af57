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

// Package driver orchestrates the end-to-end pipeline: parse,
// normalize, discover, resolve, reorder, plan, (optionally) emit, and
// execute, folding in post-failure diagnosis. Each phase runs to
// completion before the next begins; nothing here spawns worker
// goroutines of its own.
package driver

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jellolink/gel/internal/diagnose"
	"github.com/jellolink/gel/internal/discovery"
	"github.com/jellolink/gel/internal/emit"
	"github.com/jellolink/gel/internal/execute"
	"github.com/jellolink/gel/internal/gellog"
	"github.com/jellolink/gel/internal/linktypes"
	"github.com/jellolink/gel/internal/normalize"
	"github.com/jellolink/gel/internal/parse"
	"github.com/jellolink/gel/internal/plan"
	"github.com/jellolink/gel/internal/reorder"
	"github.com/jellolink/gel/internal/resolve"
	"github.com/jellolink/gel/internal/symbols"
	"github.com/jellolink/gel/internal/triple"
)

// Options configures one pipeline run. It is the typed counterpart of
// the link subcommand's flags plus the resolved Config.
type Options struct {
	DryRun           bool
	Explain          bool
	EmitPlan         bool
	PlanDir          string
	FixMode          linktypes.FixMode
	BackendOverride  string
	ExtraSearchPaths []string
	NMOverride       string
	Silent           bool
	Stderr           io.Writer
}

// Outcome is what the Driver returns to its caller (the CLI layer),
// which decides the process exit code from it.
type Outcome struct {
	Plan       *linktypes.LinkPlan
	ExecResult *linktypes.ExecResult
	ExitCode   int
}

// Run executes the full pipeline against argv, per spec.md §4.12's
// twelve-step sequence.
func Run(ctx context.Context, argv []string, opts Options) (*Outcome, error) {
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}

	if parse.IsCompileOnly(argv) {
		return runPassthrough(ctx, argv)
	}

	inv, err := parse.Args(argv)
	if err != nil {
		return nil, err
	}

	normalize.Invocation(inv)

	lang := discovery.LangC
	compilerPath, err := discovery.Compiler(lang)
	var detectedTriple linktypes.Triple
	if err == nil {
		detectedTriple, err = triple.Detect(ctx, compilerPath)
	}
	if err != nil {
		detectedTriple, err = triple.Detect(ctx, "")
		if err != nil {
			return nil, err
		}
	}

	var preferredBackend string
	for _, f := range inv.Flags {
		if f.Kind == linktypes.FlagUseLinker {
			preferredBackend = f.Value
		}
	}
	backend, backendPath, err := discovery.Backend(opts.BackendOverride, preferredBackend, nil)
	if err != nil {
		return nil, err
	}

	explicitPaths := append([]string(nil), opts.ExtraSearchPaths...)
	explicitPaths = append(explicitPaths, inv.ExplicitSearchPaths...)
	systemPaths := discovery.SearchPaths(ctx)
	allSearchPaths := resolve.SearchPaths(explicitPaths, systemPaths)

	refs := resolve.References(inv)
	preferStatic := resolve.StaticPreference(inv.Flags)
	fileTool := discovery.FileTool()
	resolvedLibs, resolveErr := resolve.All(ctx, refs, allSearchPaths, preferStatic, fileTool)
	if resolveErr != nil {
		gellog.Warn("resolve", "continuing with partial library set: %v", resolveErr)
	}

	staticPaths := collectStaticPaths(inv, resolvedLibs)
	nmPath := opts.NMOverride
	if nmPath == "" {
		nmPath, _ = discovery.NM("")
	}
	reorderResult := reorder.Libs(ctx, staticPaths, func(ctx context.Context, path string) ([]linktypes.Symbol, error) {
		return symbols.Extract(ctx, nmPath, path)
	})

	var fixes []linktypes.Fix
	if opts.FixMode == linktypes.FixModeAuto {
		fixes = reorderResult.Fixes
	}

	builtPlan := plan.Build(plan.Input{
		Inv:          inv,
		Triple:       detectedTriple,
		Backend:      backend,
		BackendPath:  backendPath,
		ResolvedLibs: resolvedLibs,
		SearchPaths:  allSearchPaths,
		Fixes:        fixes,
	})

	if opts.Explain {
		fmt.Fprintln(opts.Stderr, explainTrace(builtPlan))
	}

	if opts.EmitPlan {
		if err := emit.WriteArtifacts(opts.PlanDir, builtPlan, nil); err != nil {
			gellog.Warn("emit", "failed to write artifacts: %v", err)
		}
	}

	if opts.DryRun {
		fmt.Fprintln(opts.Stderr, execute.DryRun(builtPlan))
		return &Outcome{Plan: builtPlan, ExitCode: 0}, nil
	}

	execResult, err := execute.Run(ctx, builtPlan)
	if err != nil {
		return nil, err
	}

	var diags []linktypes.Diagnostic
	if execResult.ExitCode != 0 {
		diags = diagnose.Errors(execResult.Stderr)
		execResult = execResult.WithDiagnostics(diags)
	}

	if !opts.Silent {
		for _, d := range diags {
			fmt.Fprintf(opts.Stderr, "%s: %s: %s\n", d.Severity, d.Code, d.Message)
		}
	}

	if opts.EmitPlan {
		if err := emit.WriteArtifacts(opts.PlanDir, builtPlan, diags); err != nil {
			gellog.Warn("emit", "failed to write final artifacts: %v", err)
		}
	}

	exitCode := execResult.ExitCode
	if opts.FixMode == linktypes.FixModeHardFail {
		for _, d := range diags {
			if d.Severity == linktypes.SevError {
				exitCode = 1
				break
			}
		}
	}

	return &Outcome{Plan: builtPlan, ExecResult: &execResult, ExitCode: exitCode}, nil
}

// runPassthrough handles the compile-only short-circuit: when the driver
// occupies a CC/CXX slot directly (as opposed to gelcc/gelc++, which never
// enter the pipeline at all) and receives a -c/-S/-E invocation, it must
// forward unchanged to the real compiler rather than run the link
// pipeline, since there is no link to plan.
func runPassthrough(ctx context.Context, argv []string) (*Outcome, error) {
	compilerPath, err := discovery.RealCompiler(guessLang(argv))
	if err != nil {
		return nil, err
	}
	result, err := execute.RunCmd(ctx, compilerPath, argv)
	if err != nil {
		return nil, err
	}
	return &Outcome{ExecResult: &result, ExitCode: result.ExitCode}, nil
}

// guessLang picks LangCxx when argv names a C++ source file, else LangC.
// This only matters for the compile-only passthrough path: a real
// gelcc/gelc++ wrapper already knows its language from its own basename.
func guessLang(argv []string) discovery.Lang {
	for _, tok := range argv {
		switch {
		case strings.HasSuffix(tok, ".cc"), strings.HasSuffix(tok, ".cpp"),
			strings.HasSuffix(tok, ".cxx"), strings.HasSuffix(tok, ".C"),
			strings.HasSuffix(tok, ".c++"):
			return discovery.LangCxx
		}
	}
	return discovery.LangC
}

// collectStaticPaths gathers every static-library path participating in
// Reorder: Archive inputs plus resolved libs of kind Static.
func collectStaticPaths(inv *linktypes.Invocation, resolved []linktypes.ResolvedLib) []string {
	seen := make(map[string]bool)
	var out []string
	for _, in := range inv.Inputs {
		if in.Kind == linktypes.InputArchive && !seen[in.Path] {
			seen[in.Path] = true
			out = append(out, in.Path)
		}
	}
	for _, r := range resolved {
		if r.Kind == linktypes.LibStatic && !seen[r.Path] {
			seen[r.Path] = true
			out = append(out, r.Path)
		}
	}
	sort.Strings(out)
	return out
}

func explainTrace(p *linktypes.LinkPlan) string {
	return fmt.Sprintf("gel: backend=%s triple=%s mode=%s output=%s inputs=%d resolved_libs=%d",
		p.Backend, p.Triple, p.LinkMode, p.Output, len(p.Inputs), len(p.ResolvedLibs))
}
