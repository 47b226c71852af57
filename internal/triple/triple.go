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

// Package triple parses and detects target triples (arch[-vendor]-os[-env]).
package triple

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/jellolink/gel/internal/gellog"
	"github.com/jellolink/gel/internal/linktypes"
)

// canonicalizeOS strips a trailing digit run and dot-version suffix, so
// "darwin24.3.0" canonicalizes to "darwin".
func canonicalizeOS(s string) string {
	i := 0
	for i < len(s) && !isDigit(s[i]) {
		i++
	}
	if i == len(s) {
		return s
	}
	return s[:i]
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// isKnownOSToken reports whether tok is a recognized OS name once
// canonicalized, used to resolve the 3-field ambiguity between
// arch-os-env and arch-vendor-os.
func isKnownOSToken(tok string) bool {
	_, ok := linktypes.ParseOS(canonicalizeOS(tok))
	return ok
}

// Parse parses a hyphen-joined triple string, tolerating 2-, 3-, and
// 4-field forms per spec.md §4.4.
func Parse(s string) (linktypes.Triple, error) {
	fields := strings.Split(s, "-")
	var t linktypes.Triple

	switch len(fields) {
	case 1:
		return t, linktypes.ParseError{Msg: fmt.Sprintf("triple %q has no os component", s)}
	case 2:
		// arch-os
		arch, ok := linktypes.ParseArch(fields[0])
		if !ok {
			return t, linktypes.ParseError{Msg: fmt.Sprintf("triple %q: unknown arch %q", s, fields[0])}
		}
		osName := canonicalizeOS(fields[1])
		osv, ok := linktypes.ParseOS(osName)
		if !ok {
			return t, linktypes.ParseError{Msg: fmt.Sprintf("triple %q: unknown os %q", s, fields[1])}
		}
		t.Arch, t.OS = arch, osv
		return t, nil
	case 3:
		arch, ok := linktypes.ParseArch(fields[0])
		if !ok {
			return t, linktypes.ParseError{Msg: fmt.Sprintf("triple %q: unknown arch %q", s, fields[0])}
		}
		t.Arch = arch
		if isKnownOSToken(fields[1]) {
			// arch-os-env
			osv, _ := linktypes.ParseOS(canonicalizeOS(fields[1]))
			t.OS = osv
			if env, ok := linktypes.ParseEnv(fields[2]); ok {
				t.Env = env
			} else {
				return t, linktypes.ParseError{Msg: fmt.Sprintf("triple %q: unknown env %q", s, fields[2])}
			}
			return t, nil
		}
		// arch-vendor-os
		t.Vendor = fields[1]
		osName := canonicalizeOS(fields[2])
		osv, ok := linktypes.ParseOS(osName)
		if !ok {
			return t, linktypes.ParseError{Msg: fmt.Sprintf("triple %q: unknown os %q", s, fields[2])}
		}
		t.OS = osv
		return t, nil
	case 4:
		arch, ok := linktypes.ParseArch(fields[0])
		if !ok {
			return t, linktypes.ParseError{Msg: fmt.Sprintf("triple %q: unknown arch %q", s, fields[0])}
		}
		t.Arch = arch
		t.Vendor = fields[1]
		osName := canonicalizeOS(fields[2])
		osv, ok := linktypes.ParseOS(osName)
		if !ok {
			return t, linktypes.ParseError{Msg: fmt.Sprintf("triple %q: unknown os %q", s, fields[2])}
		}
		t.OS = osv
		if env, ok := linktypes.ParseEnv(fields[3]); ok {
			t.Env = env
		} else {
			return t, linktypes.ParseError{Msg: fmt.Sprintf("triple %q: unknown env %q", s, fields[3])}
		}
		return t, nil
	default:
		return t, linktypes.ParseError{Msg: fmt.Sprintf("triple %q has too many fields", s)}
	}
}

// Detect determines the target triple via the compiler, if given, else a
// host fallback. It tries --print-effective-triple, then -dumpmachine,
// then synthesizes one from uname.
func Detect(ctx context.Context, compilerPath string) (linktypes.Triple, error) {
	if compilerPath != "" {
		if out, err := exec.CommandContext(ctx, compilerPath, "--print-effective-triple").Output(); err == nil {
			if t, perr := Parse(strings.TrimSpace(string(out))); perr == nil {
				return t, nil
			}
		}
		if out, err := exec.CommandContext(ctx, compilerPath, "-dumpmachine").Output(); err == nil {
			if t, perr := Parse(strings.TrimSpace(string(out))); perr == nil {
				return t, nil
			}
		}
		gellog.V(1).Infof("triple: compiler %s did not yield a triple, falling back to host", compilerPath)
	}
	return hostFallback(ctx)
}

// hostFallback synthesizes a triple from uname -m / uname -s, mapping
// anything unrecognized to x86_64/linux per spec.md §4.4.
func hostFallback(ctx context.Context) (linktypes.Triple, error) {
	arch := ArchFromGoArch(runtime.GOARCH)
	osv := osFromGoOS(runtime.GOOS)

	if out, err := exec.CommandContext(ctx, "uname", "-m").Output(); err == nil {
		if a, ok := linktypes.ParseArch(normalizeUname(strings.TrimSpace(string(out)))); ok {
			arch = a
		}
	}
	if out, err := exec.CommandContext(ctx, "uname", "-s").Output(); err == nil {
		if o, ok := linktypes.ParseOS(strings.ToLower(strings.TrimSpace(string(out)))); ok {
			osv = o
		}
	}

	t := linktypes.Triple{Arch: arch, OS: osv}
	switch osv {
	case linktypes.OSLinux:
		t.Env = linktypes.EnvGnu
	case linktypes.OSDarwin:
		t.Env = linktypes.EnvMacho
	}
	return t, nil
}

// normalizeUname maps common `uname -m` spellings to our Arch names.
func normalizeUname(m string) string {
	switch m {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	default:
		return m
	}
}

// ArchFromGoArch maps a GOARCH value to our closed Arch set, defaulting
// unknown arches to x86_64 as spec.md §4.4 requires.
func ArchFromGoArch(goarch string) linktypes.Arch {
	switch goarch {
	case "amd64":
		return linktypes.ArchX86_64
	case "386":
		return linktypes.ArchI686
	case "arm64":
		return linktypes.ArchAarch64
	case "arm":
		return linktypes.ArchArmv7
	case "riscv64":
		return linktypes.ArchRiscv64
	case "mips":
		return linktypes.ArchMips
	case "mipsle":
		return linktypes.ArchMipsel
	case "ppc64":
		return linktypes.ArchPowerpc64
	case "ppc64le":
		return linktypes.ArchPowerpc64le
	case "s390x":
		return linktypes.ArchS390x
	case "wasm":
		return linktypes.ArchWasm32
	default:
		return linktypes.ArchX86_64
	}
}

// osFromGoOS maps a GOOS value to our closed OS set, defaulting unknown
// OSes to linux as spec.md §4.4 requires.
func osFromGoOS(goos string) linktypes.OS {
	switch goos {
	case "linux":
		return linktypes.OSLinux
	case "darwin":
		return linktypes.OSDarwin
	case "freebsd":
		return linktypes.OSFreeBSD
	case "windows":
		return linktypes.OSWindows
	default:
		return linktypes.OSLinux
	}
}
