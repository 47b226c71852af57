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

// Arch is the CPU architecture field of a Triple. It is a closed set:
// switches over Arch should be exhaustive and the default case should
// panic or return an error rather than silently falling through.
type Arch int

const (
	ArchUnknown Arch = iota
	ArchX86_64
	ArchI686
	ArchAarch64
	ArchArmv7
	ArchRiscv32
	ArchRiscv64
	ArchMips
	ArchMipsel
	ArchPowerpc64
	ArchPowerpc64le
	ArchS390x
	ArchWasm32
)

var archNames = [...]string{
	ArchUnknown:     "unknown",
	ArchX86_64:      "x86_64",
	ArchI686:        "i686",
	ArchAarch64:     "aarch64",
	ArchArmv7:       "armv7",
	ArchRiscv32:     "riscv32",
	ArchRiscv64:     "riscv64",
	ArchMips:        "mips",
	ArchMipsel:      "mipsel",
	ArchPowerpc64:   "powerpc64",
	ArchPowerpc64le: "powerpc64le",
	ArchS390x:       "s390x",
	ArchWasm32:      "wasm32",
}

// String renders the canonical triple-component spelling of a.
func (a Arch) String() string {
	if int(a) < 0 || int(a) >= len(archNames) {
		return "unknown"
	}
	return archNames[a]
}

// ParseArch maps a triple-component string back to an Arch. The zero
// value (ArchUnknown) is returned, with ok=false, for anything not in the
// closed set.
func ParseArch(s string) (Arch, bool) {
	for a, name := range archNames {
		if name == s && Arch(a) != ArchUnknown {
			return Arch(a), true
		}
	}
	return ArchUnknown, false
}
