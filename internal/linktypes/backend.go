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

// Backend names a concrete linker implementation the driver delegates to.
type Backend int

const (
	BackendUnknown Backend = iota
	BackendMold
	BackendLLD
	BackendGold
	BackendBFD
	BackendSystem
)

var backendNames = [...]string{
	BackendUnknown: "unknown",
	BackendMold:    "mold",
	BackendLLD:     "lld",
	BackendGold:    "gold",
	BackendBFD:     "bfd",
	BackendSystem:  "system",
}

func (b Backend) String() string {
	if int(b) < 0 || int(b) >= len(backendNames) {
		return "unknown"
	}
	return backendNames[b]
}

// ParseBackend maps a backend name (as accepted on --backend or
// JELLO_BACKEND) to a Backend.
func ParseBackend(s string) (Backend, bool) {
	for b, name := range backendNames {
		if name == s && Backend(b) != BackendUnknown {
			return Backend(b), true
		}
	}
	return BackendUnknown, false
}

// CandidateNames returns the executable names to search PATH for, in
// order, for this backend.
func (b Backend) CandidateNames() []string {
	switch b {
	case BackendMold:
		return []string{"mold", "ld.mold"}
	case BackendLLD:
		return []string{"ld.lld", "lld"}
	case BackendGold:
		return []string{"ld.gold"}
	case BackendBFD:
		return []string{"ld.bfd"}
	case BackendSystem:
		return []string{"ld"}
	default:
		return nil
	}
}

// DefaultPreference is the default backend search order used when no
// override or -fuse-ld= preference is given.
func DefaultPreference() []Backend {
	return []Backend{BackendMold, BackendLLD, BackendGold, BackendBFD, BackendSystem}
}

// LinkMode is the output kind the backend is asked to produce.
type LinkMode int

const (
	ModeExecutable LinkMode = iota
	ModeShared
	ModeStatic
	ModePie
	ModeRelocatable
)

var linkModeNames = [...]string{
	ModeExecutable:  "executable",
	ModeShared:      "shared",
	ModeStatic:      "static",
	ModePie:         "pie",
	ModeRelocatable: "relocatable",
}

func (m LinkMode) String() string {
	if int(m) < 0 || int(m) >= len(linkModeNames) {
		return "executable"
	}
	return linkModeNames[m]
}

// ParseLinkMode maps a serialized link mode back to a LinkMode.
func ParseLinkMode(s string) (LinkMode, bool) {
	for m, name := range linkModeNames {
		if name == s {
			return LinkMode(m), true
		}
	}
	return ModeExecutable, false
}

// FixMode is the policy controlling whether suggested fixes are applied.
type FixMode int

const (
	FixModeSuggest FixMode = iota
	FixModeAuto
	FixModeHardFail
)

var fixModeNames = [...]string{
	FixModeSuggest:  "suggest",
	FixModeAuto:     "auto",
	FixModeHardFail: "strict",
}

func (m FixMode) String() string {
	if int(m) < 0 || int(m) >= len(fixModeNames) {
		return "suggest"
	}
	return fixModeNames[m]
}

// ParseFixMode maps the --mode / JELLO_FIX_MODE spelling to a FixMode.
func ParseFixMode(s string) (FixMode, bool) {
	switch s {
	case "auto":
		return FixModeAuto, true
	case "suggest":
		return FixModeSuggest, true
	case "strict":
		return FixModeHardFail, true
	default:
		return FixModeSuggest, false
	}
}
