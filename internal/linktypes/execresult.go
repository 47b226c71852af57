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

// ExecResult wraps the plan with what happened when its backend_args were
// run. Execute constructs it with PostDiagnostics nil; the driver attaches
// the diagnostics from diagnose.Errors through WithDiagnostics, which
// returns a new ExecResult rather than mutating this one.
type ExecResult struct {
	Plan            *LinkPlan
	ExitCode        int
	Stdout          string
	Stderr          string
	PostDiagnostics []Diagnostic
}

// WithDiagnostics returns a copy of r with PostDiagnostics replaced.
func (r ExecResult) WithDiagnostics(diags []Diagnostic) ExecResult {
	r.PostDiagnostics = diags
	return r
}
