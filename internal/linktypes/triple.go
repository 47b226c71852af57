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

import "strings"

// Triple identifies a link target: arch[-vendor]-os[-env].
type Triple struct {
	Arch   Arch
	Vendor string // optional, e.g. "unknown", "apple"; empty if absent
	OS     OS
	Env    Env // EnvNone if absent
}

// String renders the hyphen-joined canonical form.
func (t Triple) String() string {
	parts := []string{t.Arch.String()}
	if t.Vendor != "" {
		parts = append(parts, t.Vendor)
	}
	parts = append(parts, t.OS.String())
	if t.Env != EnvNone {
		parts = append(parts, t.Env.String())
	}
	return strings.Join(parts, "-")
}
