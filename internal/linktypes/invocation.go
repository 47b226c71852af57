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

// Invocation is the normalized form of a raw argv. Parse builds it once;
// Normalize modifies it once; after that it is read-only.
type Invocation struct {
	RawArgs             []string
	Flags               []Flag
	Inputs              []Input
	Output              string // empty means "unset"; Normalize defaults it to "a.out"
	LinkMode            LinkMode
	ExplicitSearchPaths []string
}

// HasOutput reports whether -o was ever given (before Normalize's
// default-filling runs).
func (inv *Invocation) HasOutput() bool {
	return inv.Output != ""
}
