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

// Package parse turns a raw argv into a structured linktypes.Invocation.
// It drives a left-to-right sweep over the tokens: each step either
// consumes one or two tokens, or expands a macro form (@file, -Wl,…,
// -Xlinker X) and re-feeds the expansion.
package parse

import (
	"os"
	"strings"

	"github.com/jellolink/gel/internal/linktypes"
)

// isFrontendOnly reports whether tok is a compiler-only flag that is
// dropped because it cannot affect linking.
func isFrontendOnly(tok string) bool {
	switch {
	case tok == "-c", tok == "-pipe":
		return true
	case strings.HasPrefix(tok, "-O"):
		return true
	case strings.HasPrefix(tok, "-W") && !strings.HasPrefix(tok, "-Wl,"):
		return true
	case strings.HasPrefix(tok, "-f") && !strings.HasPrefix(tok, "-flto") && !strings.HasPrefix(tok, "-fuse-ld="):
		return true
	case strings.HasPrefix(tok, "-D"):
		return true
	case strings.HasPrefix(tok, "-I"):
		return true
	case strings.HasPrefix(tok, "-std="):
		return true
	default:
		return false
	}
}

// IsCompileOnly is the cheap pre-scan the Driver uses to short-circuit
// into passthrough mode (spec.md §4.1): true if any raw token is exactly
// -c, -S, or -E.
func IsCompileOnly(argv []string) bool {
	for _, tok := range argv {
		if tok == "-c" || tok == "-S" || tok == "-E" {
			return true
		}
	}
	return false
}

// queue is a token stream supporting cheap prepend, used to splice macro
// expansions back in front of the remaining input.
type queue struct {
	toks []string
}

func newQueue(argv []string) *queue {
	return &queue{toks: append([]string(nil), argv...)}
}

func (q *queue) empty() bool { return len(q.toks) == 0 }

func (q *queue) pop() string {
	t := q.toks[0]
	q.toks = q.toks[1:]
	return t
}

func (q *queue) peek() (string, bool) {
	if len(q.toks) == 0 {
		return "", false
	}
	return q.toks[0], true
}

func (q *queue) prepend(toks []string) {
	q.toks = append(append([]string(nil), toks...), q.toks...)
}

// Args parses argv into an Invocation, or returns a linktypes.ParseError.
func Args(argv []string) (*linktypes.Invocation, error) {
	inv := &linktypes.Invocation{RawArgs: append([]string(nil), argv...)}
	q := newQueue(argv)

	for !q.empty() {
		tok := q.pop()

		switch {
		case strings.HasPrefix(tok, "@") && len(tok) > 1:
			expanded, err := expandResponseFile(tok[1:])
			if err != nil {
				return nil, err
			}
			q.prepend(expanded)
			continue

		case strings.HasPrefix(tok, "-Wl,"):
			q.prepend(splitCommaNonEmpty(tok[len("-Wl,"):]))
			continue

		case tok == "-Xlinker":
			val, ok := q.peek()
			if !ok {
				return nil, linktypes.ParseError{Msg: "flag -Xlinker requires a value"}
			}
			q.pop()
			q.prepend([]string{val})
			continue
		}

		if isFrontendOnly(tok) {
			continue
		}

		if !strings.HasPrefix(tok, "-") {
			inv.Inputs = append(inv.Inputs, classifyPositional(tok))
			continue
		}

		flag, consumedInput, err := parseFlag(tok, q)
		if err != nil {
			return nil, err
		}
		if consumedInput != nil {
			inv.Inputs = append(inv.Inputs, *consumedInput)
			continue
		}
		if flag == nil {
			continue
		}
		applyFlag(inv, *flag)
	}

	deriveLinkMode(inv)
	return inv, nil
}

func splitCommaNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func expandResponseFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, linktypes.ParseError{Msg: "cannot read response file " + path}
	}
	var toks []string
	for _, line := range strings.Split(string(data), "\n") {
		for _, tok := range strings.Fields(line) {
			if tok != "" {
				toks = append(toks, tok)
			}
		}
	}
	return toks, nil
}

func classifyPositional(path string) linktypes.Input {
	return linktypes.ClassifyInput(path)
}

// applyFlag records flag into inv: every flag also updates the
// convenience fields (Output, ExplicitSearchPaths) that mirror
// spec.md §3's Invocation shape, alongside appending to Flags so Plan's
// renderer can still walk the flag stream in original order.
func applyFlag(inv *linktypes.Invocation, f linktypes.Flag) {
	inv.Flags = append(inv.Flags, f)
	switch f.Kind {
	case linktypes.FlagOutput:
		inv.Output = f.Value
	case linktypes.FlagSearchPath:
		inv.ExplicitSearchPaths = append(inv.ExplicitSearchPaths, f.Value)
	}
}

func deriveLinkMode(inv *linktypes.Invocation) {
	hasShared, hasPie, hasStatic, hasRelocatable := false, false, false, false
	for _, f := range inv.Flags {
		switch f.Kind {
		case linktypes.FlagShared:
			hasShared = true
		case linktypes.FlagPie:
			hasPie = true
		case linktypes.FlagStatic:
			hasStatic = true
		case linktypes.FlagRelocatable:
			hasRelocatable = true
		}
	}
	switch {
	case hasShared:
		inv.LinkMode = linktypes.ModeShared
	case hasPie:
		inv.LinkMode = linktypes.ModePie
	case hasStatic:
		inv.LinkMode = linktypes.ModeStatic
	case hasRelocatable:
		inv.LinkMode = linktypes.ModeRelocatable
	default:
		inv.LinkMode = linktypes.ModeExecutable
	}
}
