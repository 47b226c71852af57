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

// Package plan constructs the immutable LinkPlan artifact and renders
// its canonical backend argument vector. A LinkPlan, once built, is
// never mutated: Execute and Emit only read it.
package plan

import "github.com/jellolink/gel/internal/linktypes"

const defaultOutput = "a.out"

// Input bundles everything Build needs; it mirrors the state the Driver
// has accumulated by the time it calls Plan.
type Input struct {
	Inv          *linktypes.Invocation
	Triple       linktypes.Triple
	Backend      linktypes.Backend
	BackendPath  string
	ResolvedLibs []linktypes.ResolvedLib
	SearchPaths  []string
	Fixes        []linktypes.Fix
}

// Build constructs the immutable LinkPlan from in. Sysroot and
// DynamicLinker are pulled from the first matching flag; Output defaults
// to "a.out" if unset.
func Build(in Input) *linktypes.LinkPlan {
	p := &linktypes.LinkPlan{
		Backend:      in.Backend,
		BackendPath:  in.BackendPath,
		Triple:       in.Triple,
		LinkMode:     in.Inv.LinkMode,
		Output:       in.Inv.Output,
		Inputs:       append([]linktypes.Input(nil), in.Inv.Inputs...),
		Flags:        append([]linktypes.Flag(nil), in.Inv.Flags...),
		SearchPaths:  append([]string(nil), in.SearchPaths...),
		ResolvedLibs: append([]linktypes.ResolvedLib(nil), in.ResolvedLibs...),
		FixesApplied: append([]linktypes.Fix(nil), in.Fixes...),
		RawArgs:      append([]string(nil), in.Inv.RawArgs...),
	}
	if p.Output == "" {
		p.Output = defaultOutput
	}
	for _, f := range p.Flags {
		switch f.Kind {
		case linktypes.FlagSysroot:
			if p.Sysroot == "" {
				p.Sysroot = f.Value
			}
		case linktypes.FlagDynamicLinker:
			if p.DynamicLinker == "" {
				p.DynamicLinker = f.Value
			}
		}
	}
	p.BackendArgs = RenderBackendArgs(p)
	return p
}

// suppressedInStep6 lists the FlagKinds already emitted by steps 1-5 of
// the canonical renderer (or deliberately excluded), so step 6 doesn't
// double-emit them.
var suppressedInStep6 = map[linktypes.FlagKind]bool{
	linktypes.FlagOutput:        true,
	linktypes.FlagSearchPath:    true,
	linktypes.FlagShared:        true,
	linktypes.FlagPie:           true,
	linktypes.FlagStatic:        true,
	linktypes.FlagRelocatable:   true,
	linktypes.FlagNoPie:         true,
	linktypes.FlagSysroot:       true,
	linktypes.FlagDynamicLinker: true,
	linktypes.FlagUseLinker:     true,
	linktypes.FlagTarget:        true,
	linktypes.FlagArch:          true,
	linktypes.FlagM32:           true,
	linktypes.FlagM64:           true,
	linktypes.FlagLTO:           true,
	linktypes.FlagNoStdlib:      true,
	linktypes.FlagNoStartFiles:  true,
	linktypes.FlagNoDefaultLibs: true,
	linktypes.FlagStdlib:        true,
	linktypes.FlagDebug:         true,
}

// RenderBackendArgs renders the canonical backend argument vector for p,
// following the seven-step ordering: output, link mode, search paths,
// sysroot, dynamic linker, remaining flags in original order, then
// inputs. This is a pure function of p: the same plan always renders the
// same vector.
func RenderBackendArgs(p *linktypes.LinkPlan) []string {
	var args []string

	args = append(args, "-o", p.Output)

	switch p.LinkMode {
	case linktypes.ModeShared:
		args = append(args, "-shared")
	case linktypes.ModePie:
		args = append(args, "-pie")
	case linktypes.ModeStatic:
		args = append(args, "-static")
	case linktypes.ModeRelocatable:
		args = append(args, "-r")
	}

	for _, sp := range p.SearchPaths {
		args = append(args, "-L", sp)
	}

	if p.Sysroot != "" {
		args = append(args, "--sysroot="+p.Sysroot)
	}

	if p.DynamicLinker != "" {
		args = append(args, "--dynamic-linker", p.DynamicLinker)
	}

	for _, f := range p.Flags {
		if suppressedInStep6[f.Kind] {
			continue
		}
		args = append(args, renderFlag(f)...)
	}

	for _, in := range p.Inputs {
		args = append(args, renderInput(in)...)
	}

	return args
}

func renderFlag(f linktypes.Flag) []string {
	switch f.Kind {
	case linktypes.FlagLinkLib:
		return renderLibRef(f.Lib)
	case linktypes.FlagRpath:
		return []string{"-rpath", f.Value}
	case linktypes.FlagRpathLink:
		return []string{"-rpath-link", f.Value}
	case linktypes.FlagWholeArchive:
		return []string{"--whole-archive"}
	case linktypes.FlagNoWholeArchive:
		return []string{"--no-whole-archive"}
	case linktypes.FlagStartGroup:
		return []string{"--start-group"}
	case linktypes.FlagEndGroup:
		return []string{"--end-group"}
	case linktypes.FlagAsNeeded:
		return []string{"--as-needed"}
	case linktypes.FlagNoAsNeeded:
		return []string{"--no-as-needed"}
	case linktypes.FlagBStatic:
		return []string{"-Bstatic"}
	case linktypes.FlagBDynamic:
		return []string{"-Bdynamic"}
	case linktypes.FlagPushState:
		return []string{"--push-state"}
	case linktypes.FlagPopState:
		return []string{"--pop-state"}
	case linktypes.FlagGCSections:
		return []string{"--gc-sections"}
	case linktypes.FlagNoGCSections:
		return []string{"--no-gc-sections"}
	case linktypes.FlagICF:
		return []string{"--icf=" + f.Value}
	case linktypes.FlagExportDynamic:
		return []string{"--export-dynamic"}
	case linktypes.FlagZ:
		return []string{"-z", f.Value}
	case linktypes.FlagSoname:
		return []string{"-soname", f.Value}
	case linktypes.FlagVersionScript:
		return []string{"--version-script", f.Value}
	case linktypes.FlagLinkerScript:
		return []string{"-T", f.Value}
	case linktypes.FlagMapFile:
		return []string{"-Map=" + f.Value}
	case linktypes.FlagVerbose:
		return []string{"--verbose"}
	case linktypes.FlagTrace:
		return []string{"--trace"}
	case linktypes.FlagPrintMap:
		return []string{"-M"}
	case linktypes.FlagStripAll:
		return []string{"-s"}
	case linktypes.FlagStripDebug:
		return []string{"-S"}
	case linktypes.FlagPassthrough:
		return []string{f.Passthrough}
	default:
		return nil
	}
}

func renderLibRef(ref linktypes.LibRef) []string {
	switch ref.Kind {
	case linktypes.LibRefNamed:
		return []string{"-l" + ref.Name}
	case linktypes.LibRefFramework:
		return []string{"-framework", ref.Name}
	default:
		return []string{ref.Name}
	}
}

func renderInput(in linktypes.Input) []string {
	switch in.Kind {
	case linktypes.InputResponseFile:
		return []string{"@" + in.Path}
	case linktypes.InputLib:
		return renderLibRef(in.Lib)
	default:
		return []string{in.Path}
	}
}
