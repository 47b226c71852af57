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

// FlagKind enumerates every linker flag semantics the driver understands.
// It is a closed set: adding a new flag means adding a new constant here
// and a new case everywhere FlagKind is switched on.
type FlagKind int

const (
	FlagOutput FlagKind = iota
	FlagSearchPath
	FlagLinkLib
	FlagSysroot
	FlagDynamicLinker
	FlagRpath
	FlagRpathLink
	FlagWholeArchive
	FlagNoWholeArchive
	FlagStartGroup
	FlagEndGroup
	FlagAsNeeded
	FlagNoAsNeeded
	FlagBStatic
	FlagBDynamic
	FlagPushState
	FlagPopState
	FlagGCSections
	FlagNoGCSections
	FlagICF
	FlagExportDynamic
	FlagPie
	FlagNoPie
	FlagShared
	FlagStatic
	FlagRelocatable
	FlagNoStdlib
	FlagNoStartFiles
	FlagNoDefaultLibs
	FlagStdlib
	FlagTarget
	FlagArch
	FlagM32
	FlagM64
	FlagLTO
	FlagUseLinker
	FlagZ
	FlagSoname
	FlagVersionScript
	FlagLinkerScript
	FlagMapFile
	FlagVerbose
	FlagTrace
	FlagPrintMap
	FlagDebug
	FlagStripAll
	FlagStripDebug
	FlagPassthrough
)

// valuedFlags is the set of FlagKinds that carry a string Value.
var valuedFlags = map[FlagKind]bool{
	FlagOutput:        true,
	FlagSearchPath:    true,
	FlagSysroot:       true,
	FlagDynamicLinker: true,
	FlagRpath:         true,
	FlagRpathLink:     true,
	FlagICF:           true,
	FlagStdlib:        true,
	FlagTarget:        true,
	FlagArch:          true,
	FlagLTO:           true,
	FlagUseLinker:     true,
	FlagZ:             true,
	FlagSoname:        true,
	FlagVersionScript: true,
	FlagLinkerScript:  true,
	FlagMapFile:       true,
	FlagPassthrough:   true,
}

// positionalSensitive marks the FlagKinds Normalize must never dedup: a
// second occurrence changes the behavior of the region between it and
// its pair, rather than being redundant.
var positionalSensitive = map[FlagKind]bool{
	FlagBStatic:       true,
	FlagBDynamic:      true,
	FlagWholeArchive:  true,
	FlagNoWholeArchive: true,
	FlagPushState:     true,
	FlagPopState:      true,
	FlagStartGroup:    true,
	FlagEndGroup:      true,
}

// Flag is one parsed command-line flag. Kind discriminates the variant;
// Value holds the flag's argument for valued kinds, LibRef holds the
// library reference for FlagLinkLib, and Passthrough holds the verbatim
// text for FlagPassthrough.
type Flag struct {
	Kind        FlagKind
	Value       string
	Lib         LibRef
	Passthrough string
}

// IsValued reports whether f.Kind carries a meaningful Value.
func (f Flag) IsValued() bool {
	return valuedFlags[f.Kind]
}

// IsPositionalSensitive reports whether f.Kind must never be deduplicated
// by Normalize, because its position in the flag stream is significant.
func (f Flag) IsPositionalSensitive() bool {
	return positionalSensitive[f.Kind]
}

// Equal reports structural equality, used by Normalize's duplicate-drop
// pass.
func (f Flag) Equal(o Flag) bool {
	return f.Kind == o.Kind && f.Value == o.Value && f.Lib == o.Lib && f.Passthrough == o.Passthrough
}

var flagKindNames = map[FlagKind]string{
	FlagOutput:        "output",
	FlagSearchPath:    "search_path",
	FlagLinkLib:       "link_lib",
	FlagSysroot:       "sysroot",
	FlagDynamicLinker: "dynamic_linker",
	FlagRpath:         "rpath",
	FlagRpathLink:     "rpath_link",
	FlagWholeArchive:  "whole_archive",
	FlagNoWholeArchive: "no_whole_archive",
	FlagStartGroup:    "start_group",
	FlagEndGroup:      "end_group",
	FlagAsNeeded:      "as_needed",
	FlagNoAsNeeded:    "no_as_needed",
	FlagBStatic:       "b_static",
	FlagBDynamic:      "b_dynamic",
	FlagPushState:     "push_state",
	FlagPopState:      "pop_state",
	FlagGCSections:    "gc_sections",
	FlagNoGCSections:  "no_gc_sections",
	FlagICF:           "icf",
	FlagExportDynamic: "export_dynamic",
	FlagPie:           "pie",
	FlagNoPie:         "no_pie",
	FlagShared:        "shared",
	FlagStatic:        "static",
	FlagRelocatable:   "relocatable",
	FlagNoStdlib:      "no_stdlib",
	FlagNoStartFiles:  "no_start_files",
	FlagNoDefaultLibs: "no_default_libs",
	FlagStdlib:        "stdlib",
	FlagTarget:        "target",
	FlagArch:          "arch",
	FlagM32:           "m32",
	FlagM64:           "m64",
	FlagLTO:           "lto",
	FlagUseLinker:     "use_linker",
	FlagZ:             "z",
	FlagSoname:        "soname",
	FlagVersionScript: "version_script",
	FlagLinkerScript:  "linker_script",
	FlagMapFile:       "map_file",
	FlagVerbose:       "verbose",
	FlagTrace:         "trace",
	FlagPrintMap:      "print_map",
	FlagDebug:         "debug",
	FlagStripAll:      "strip_all",
	FlagStripDebug:    "strip_debug",
	FlagPassthrough:   "passthrough",
}

// String renders the stable, serializable name of a FlagKind.
func (k FlagKind) String() string {
	if name, ok := flagKindNames[k]; ok {
		return name
	}
	return "unknown"
}
