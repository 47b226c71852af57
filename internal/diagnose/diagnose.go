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

// Package diagnose classifies backend linker stderr output into
// structured diagnostics with suggested fixes, using a priority-ordered
// table of regular-expression rules.
package diagnose

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jellolink/gel/internal/linktypes"
)

// rule is one entry of the priority-ordered diagnostic table: pattern is
// tried against each stderr line in table order, and the first match
// wins. builder receives the capture groups and the raw line.
type rule struct {
	code    string
	pattern *regexp.Regexp
	build   func(groups []string, line string) linktypes.Diagnostic
}

var cxxPrefixes = []string{"std::", "__cxa_", "__gxx_", "operator ", "typeinfo ", "vtable "}

var mathFuncs = map[string]bool{
	"sin": true, "cos": true, "tan": true, "sqrt": true, "pow": true,
	"log": true, "exp": true, "floor": true, "ceil": true, "fabs": true,
}

var stackProtectorSyms = map[string]bool{
	"__stack_chk_fail": true, "__stack_chk_guard": true,
}

func isCxxSymbol(sym string) bool {
	for _, p := range cxxPrefixes {
		if strings.HasPrefix(sym, p) {
			return true
		}
	}
	return false
}

func isPthreadSymbol(sym string) bool { return strings.HasPrefix(sym, "pthread_") }

func undefinedRefFix(sym string) []linktypes.Fix {
	switch {
	case isCxxSymbol(sym):
		return []linktypes.Fix{
			{Description: "relink with the C++ driver", Confidence: linktypes.ConfidenceHigh,
				Action: linktypes.FixAction{Kind: linktypes.ActionUseCxxDriver}},
			{Description: "add -lstdc++", Confidence: linktypes.ConfidenceHigh,
				Action: linktypes.FixAction{Kind: linktypes.ActionAddFlag, Flag: linktypes.Flag{Kind: linktypes.FlagLinkLib, Lib: linktypes.LibRef{Kind: linktypes.LibRefNamed, Name: "stdc++"}}}},
		}
	case mathFuncs[sym]:
		return []linktypes.Fix{{Description: "add -lm", Confidence: linktypes.ConfidenceHigh,
			Action: linktypes.FixAction{Kind: linktypes.ActionAddFlag, Flag: linktypes.Flag{Kind: linktypes.FlagLinkLib, Lib: linktypes.LibRef{Kind: linktypes.LibRefNamed, Name: "m"}}}}}
	case isPthreadSymbol(sym):
		return []linktypes.Fix{{Description: "add -pthread", Confidence: linktypes.ConfidenceHigh,
			Action: linktypes.FixAction{Kind: linktypes.ActionAddFlag, Flag: linktypes.Flag{Kind: linktypes.FlagPassthrough, Passthrough: "-pthread"}}}}
	case stackProtectorSyms[sym]:
		return []linktypes.Fix{{Description: "add -lssp", Confidence: linktypes.ConfidenceHigh,
			Action: linktypes.FixAction{Kind: linktypes.ActionAddFlag, Flag: linktypes.Flag{Kind: linktypes.FlagLinkLib, Lib: linktypes.LibRef{Kind: linktypes.LibRefNamed, Name: "ssp"}}}}}
	default:
		return nil
	}
}

func stripLibExt(s string) string {
	s = strings.TrimSuffix(s, filepath.Ext(s))
	return strings.TrimPrefix(s, "lib")
}

// rules is the priority-ordered table implementing E001-E018.
var rules = []rule{
	{
		code:    "E001",
		pattern: regexp.MustCompile(`undefined reference to \x60?['"]?([\w:~<>,.@+-]+)['"]?`),
		build: func(g []string, line string) linktypes.Diagnostic {
			sym := strings.TrimSpace(g[1])
			return linktypes.Diagnostic{
				Severity: linktypes.SevError, Code: "E001",
				Message:  "undefined reference to " + sym,
				Evidence: []string{sym},
				Fixes:    undefinedRefFix(sym),
			}
		},
	},
	{
		code:    "E002",
		pattern: regexp.MustCompile(`cannot find -l(\S+)|library not found for -l(\S+)|unable to find library -l(\S+)`),
		build: func(g []string, line string) linktypes.Diagnostic {
			name := firstNonEmpty(g[1:])
			return linktypes.Diagnostic{
				Severity: linktypes.SevError, Code: "E002",
				Message:  "cannot find -l" + name,
				Evidence: []string{line},
				Fixes: []linktypes.Fix{
					{Description: "install the development package providing lib" + name, Confidence: linktypes.ConfidenceMedium,
						Action: linktypes.FixAction{Kind: linktypes.ActionSuggestPackage, Package: "lib" + name + "-dev"}},
					{Description: "add a missing -L search path", Confidence: linktypes.ConfidenceMedium,
						Action: linktypes.FixAction{Kind: linktypes.ActionAddSearchPath}},
				},
			}
		},
	},
	{
		code:    "E003",
		pattern: regexp.MustCompile(`DSO missing from command line.*for (\S+\.so\S*)`),
		build: func(g []string, line string) linktypes.Diagnostic {
			name := stripLibExt(filepath.Base(g[1]))
			return linktypes.Diagnostic{
				Severity: linktypes.SevError, Code: "E003",
				Message:  "DSO missing from command line for " + g[1],
				Evidence: []string{line},
				Fixes: []linktypes.Fix{{Description: "add -l" + name, Confidence: linktypes.ConfidenceHigh,
					Action: linktypes.FixAction{Kind: linktypes.ActionAddFlag, Flag: linktypes.Flag{Kind: linktypes.FlagLinkLib, Lib: linktypes.LibRef{Kind: linktypes.LibRefNamed, Name: name}}}}},
			}
		},
	},
	{
		code:    "E004",
		pattern: regexp.MustCompile(`relocation R_\w+|recompile with -fPIC`),
		build: func(g []string, line string) linktypes.Diagnostic {
			return linktypes.Diagnostic{
				Severity: linktypes.SevError, Code: "E004",
				Message:  "relocation against a non-PIC object",
				Evidence: []string{line},
				Fixes: []linktypes.Fix{{Description: "recompile with -fPIC", Confidence: linktypes.ConfidenceHigh,
					Action: linktypes.FixAction{Kind: linktypes.ActionSuggestRecompile, Flags: []string{"-fPIC"}}}},
			}
		},
	},
	{
		code:    "E005",
		pattern: regexp.MustCompile(`skipping incompatible|is incompatible with`),
		build: func(g []string, line string) linktypes.Diagnostic {
			return linktypes.Diagnostic{
				Severity: linktypes.SevError, Code: "E005",
				Message:  "incompatible architecture",
				Evidence: []string{line},
				Fixes: []linktypes.Fix{{Description: "verify the archive and target architectures match", Confidence: linktypes.ConfidenceMedium,
					Action: linktypes.FixAction{Kind: linktypes.ActionSuggestRecompile}}},
			}
		},
	},
	{
		code:    "E006",
		pattern: regexp.MustCompile(`multiple definition of ['"]?([\w:~<>,.@+-]+)['"]?`),
		build: func(g []string, line string) linktypes.Diagnostic {
			sym := strings.TrimSpace(g[1])
			return linktypes.Diagnostic{
				Severity: linktypes.SevError, Code: "E006",
				Message:  "multiple definition of " + sym,
				Evidence: []string{sym},
				Fixes: []linktypes.Fix{{Description: "remove the duplicate definition (likely an ODR violation)", Confidence: linktypes.ConfidenceLow,
					Action: linktypes.FixAction{Kind: linktypes.ActionSuggestRecompile}}},
			}
		},
	},
	{
		code:    "E007",
		pattern: regexp.MustCompile(`file not recognized`),
		build: func(g []string, line string) linktypes.Diagnostic {
			return linktypes.Diagnostic{
				Severity: linktypes.SevError, Code: "E007",
				Message:  "file format not recognized",
				Evidence: []string{line},
				Fixes: []linktypes.Fix{{Description: "rebuild for the correct target architecture", Confidence: linktypes.ConfidenceMedium,
					Action: linktypes.FixAction{Kind: linktypes.ActionSuggestRecompile}}},
			}
		},
	},
	{
		code:    "E008",
		pattern: regexp.MustCompile(`cannot find entry symbol`),
		build: func(g []string, line string) linktypes.Diagnostic {
			return linktypes.Diagnostic{
				Severity: linktypes.SevWarning, Code: "E008",
				Message:  "cannot find entry symbol",
				Evidence: []string{line},
				Fixes: []linktypes.Fix{{Description: "define _start or pass -e <symbol>", Confidence: linktypes.ConfidenceMedium,
					Action: linktypes.FixAction{Kind: linktypes.ActionAddFlag}}},
			}
		},
	},
	{
		code:    "E009",
		pattern: regexp.MustCompile(`version .* not found for symbol`),
		build: func(g []string, line string) linktypes.Diagnostic {
			return linktypes.Diagnostic{
				Severity: linktypes.SevError, Code: "E009",
				Message:  "symbol version not found",
				Evidence: []string{line},
				Fixes: []linktypes.Fix{{Description: "rebuild against the library version that exports this symbol version", Confidence: linktypes.ConfidenceMedium,
					Action: linktypes.FixAction{Kind: linktypes.ActionSuggestRecompile}}},
			}
		},
	},
	{
		code:    "E010",
		pattern: regexp.MustCompile(`hidden symbol .* referenced by DSO`),
		build: func(g []string, line string) linktypes.Diagnostic {
			return linktypes.Diagnostic{
				Severity: linktypes.SevError, Code: "E010",
				Message:  "hidden symbol referenced by a DSO",
				Evidence: []string{line},
				Fixes: []linktypes.Fix{{Description: "export the symbol with default visibility", Confidence: linktypes.ConfidenceHigh,
					Action: linktypes.FixAction{Kind: linktypes.ActionSuggestRecompile, Flags: []string{"-fvisibility=default"}}}},
			}
		},
	},
	{
		code:    "E011",
		pattern: regexp.MustCompile(`defined in discarded section`),
		build: func(g []string, line string) linktypes.Diagnostic {
			return linktypes.Diagnostic{
				Severity: linktypes.SevError, Code: "E011",
				Message:  "symbol defined in a discarded section",
				Evidence: []string{line},
				Fixes: []linktypes.Fix{{Description: "mark the section used, or relink without --gc-sections", Confidence: linktypes.ConfidenceLow,
					Action: linktypes.FixAction{Kind: linktypes.ActionRemoveFlag, Flag: linktypes.Flag{Kind: linktypes.FlagGCSections}}}},
			}
		},
	},
	{
		code:    "E012",
		pattern: regexp.MustCompile(`TLS .* non-TLS|non-TLS .* TLS`),
		build: func(g []string, line string) linktypes.Diagnostic {
			return linktypes.Diagnostic{
				Severity: linktypes.SevError, Code: "E012",
				Message:  "thread-local storage mismatch",
				Evidence: []string{line},
				Fixes: []linktypes.Fix{{Description: "use a consistent thread-local declaration across translation units", Confidence: linktypes.ConfidenceHigh,
					Action: linktypes.FixAction{Kind: linktypes.ActionSuggestRecompile}}},
			}
		},
	},
	{
		code:    "E013",
		pattern: regexp.MustCompile(`read-only segment has dynamic relocations|DT_TEXTREL`),
		build: func(g []string, line string) linktypes.Diagnostic {
			return linktypes.Diagnostic{
				Severity: linktypes.SevWarning, Code: "E013",
				Message:  "read-only segment carries dynamic relocations",
				Evidence: []string{line},
				Fixes: []linktypes.Fix{{Description: "rebuild with -fPIC", Confidence: linktypes.ConfidenceHigh,
					Action: linktypes.FixAction{Kind: linktypes.ActionSuggestRecompile, Flags: []string{"-fPIC"}}}},
			}
		},
	},
	{
		code:    "E014",
		pattern: regexp.MustCompile(`LTO version mismatch|needs LTO plugin`),
		build: func(g []string, line string) linktypes.Diagnostic {
			return linktypes.Diagnostic{
				Severity: linktypes.SevError, Code: "E014",
				Message:  "LTO bytecode version mismatch",
				Evidence: []string{line},
				Fixes: []linktypes.Fix{
					{Description: "rebuild every object with the same compiler version", Confidence: linktypes.ConfidenceHigh,
						Action: linktypes.FixAction{Kind: linktypes.ActionSuggestRecompile}},
					{Description: "pass -fuse-linker-plugin", Confidence: linktypes.ConfidenceMedium,
						Action: linktypes.FixAction{Kind: linktypes.ActionAddFlag, Flag: linktypes.Flag{Kind: linktypes.FlagPassthrough, Passthrough: "-fuse-linker-plugin"}}},
				},
			}
		},
	},
	{
		code:    "E015",
		pattern: regexp.MustCompile(`cannot open output file`),
		build: func(g []string, line string) linktypes.Diagnostic {
			return linktypes.Diagnostic{
				Severity: linktypes.SevError, Code: "E015",
				Message:  "cannot open output file",
				Evidence: []string{line},
			}
		},
	},
	{
		code:    "E016",
		pattern: regexp.MustCompile(`region .* overflowed|will not fit in region`),
		build: func(g []string, line string) linktypes.Diagnostic {
			return linktypes.Diagnostic{
				Severity: linktypes.SevError, Code: "E016",
				Message:  "linker script region overflowed",
				Evidence: []string{line},
				Fixes: []linktypes.Fix{{Description: "shrink the image (-Os) or grow the region size", Confidence: linktypes.ConfidenceLow,
					Action: linktypes.FixAction{Kind: linktypes.ActionSuggestRecompile, Flags: []string{"-Os"}}}},
			}
		},
	},
	{
		code:    "E017",
		pattern: regexp.MustCompile(`GOT overflow`),
		build: func(g []string, line string) linktypes.Diagnostic {
			return linktypes.Diagnostic{
				Severity: linktypes.SevError, Code: "E017",
				Message:  "global offset table overflow",
				Evidence: []string{line},
				Fixes: []linktypes.Fix{{Description: "use -mcmodel=medium and -fvisibility=hidden", Confidence: linktypes.ConfidenceMedium,
					Action: linktypes.FixAction{Kind: linktypes.ActionSuggestRecompile, Flags: []string{"-mcmodel=medium", "-fvisibility=hidden"}}}},
			}
		},
	},
	{
		code:    "E018",
		pattern: regexp.MustCompile(`syntax error.*\.ld`),
		build: func(g []string, line string) linktypes.Diagnostic {
			return linktypes.Diagnostic{
				Severity: linktypes.SevError, Code: "E018",
				Message:  "syntax error in linker script",
				Evidence: []string{line},
			}
		},
	},
}

func firstNonEmpty(ss []string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

// Errors classifies every line of stderr against the rule table in
// order, returning deduplicated diagnostics by (code, joined evidence),
// preserving first-occurrence order.
func Errors(stderr string) []linktypes.Diagnostic {
	var diags []linktypes.Diagnostic
	seen := make(map[string]bool)

	for _, line := range strings.Split(stderr, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		for _, r := range rules {
			m := r.pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			d := r.build(m, line)
			key := d.DedupKey()
			if seen[key] {
				break
			}
			seen[key] = true
			diags = append(diags, d)
			break
		}
	}
	return diags
}

// AutoFixable filters diags to those carrying at least one
// High-confidence fix.
func AutoFixable(diags []linktypes.Diagnostic) []linktypes.Diagnostic {
	var out []linktypes.Diagnostic
	for _, d := range diags {
		if d.AutoFixable() {
			out = append(out, d)
		}
	}
	return out
}
