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
	"fmt"
	"strings"
)

// ParseError is returned by Parse when an argv cannot be turned into an
// Invocation.
type ParseError struct {
	Msg string
}

func (e ParseError) Error() string { return "parse: " + e.Msg }

// NormalizeError is returned by Normalize. The current design has no
// failure paths, but the type exists so callers can match on it.
type NormalizeError struct {
	Msg string
}

func (e NormalizeError) Error() string { return "normalize: " + e.Msg }

// DiscoveryError is returned when a required tool (backend, nm, compiler)
// cannot be located.
type DiscoveryError struct {
	Msg string
}

func (e DiscoveryError) Error() string { return "discovery: " + e.Msg }

// ResolveError is returned when a single library reference cannot be
// resolved to a file on disk.
type ResolveError struct {
	Lib      string
	Searched []string
}

func (e ResolveError) Error() string {
	return fmt.Sprintf("resolve: cannot find -l%s, searched: %s", e.Lib, strings.Join(e.Searched, ", "))
}

// SymbolError is returned when symbol extraction for an archive or object
// fails in a way the caller must not silently ignore. Reorder itself
// never surfaces this; archives it can't read are simply skipped.
type SymbolError struct {
	Path string
	Msg  string
}

func (e SymbolError) Error() string { return fmt.Sprintf("symbols: %s: %s", e.Path, e.Msg) }

// ReorderError is unused by the current design (cycles are fixes, not
// errors) but is kept in the taxonomy for completeness and future use.
type ReorderError struct {
	Msg string
}

func (e ReorderError) Error() string { return "reorder: " + e.Msg }

// PlanError indicates a programming bug: Plan.Build received input it
// should never see (e.g. a nil Invocation).
type PlanError struct {
	Msg string
}

func (e PlanError) Error() string { return "plan: " + e.Msg }

// ExecError is returned when the backend process itself could not be
// spawned (not for a nonzero exit, which is a normal ExecResult).
type ExecError struct {
	ExitCode int
	Stderr   string
}

func (e ExecError) Error() string {
	return fmt.Sprintf("exec: exit %d: %s", e.ExitCode, e.Stderr)
}

// MultiError composes several errors from a batched context, most
// commonly multiple unresolved libraries.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap lets errors.Is / errors.As traverse into the composed errors.
func (e MultiError) Unwrap() []error { return e.Errors }

// ErrorToString formats any error from the taxonomy above for the
// driver's "<program>: <error>" user-visible failure line.
func ErrorToString(program string, err error) string {
	return fmt.Sprintf("%s: %v", program, err)
}
