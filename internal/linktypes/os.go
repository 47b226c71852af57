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

// OS is the operating-system field of a Triple.
type OS int

const (
	OSUnknown OS = iota
	OSLinux
	OSDarwin
	OSFreeBSD
	OSWindows
	OSBare
)

var osNames = [...]string{
	OSUnknown: "unknown",
	OSLinux:   "linux",
	OSDarwin:  "darwin",
	OSFreeBSD: "freebsd",
	OSWindows: "windows",
	OSBare:    "bare",
}

func (o OS) String() string {
	if int(o) < 0 || int(o) >= len(osNames) {
		return "unknown"
	}
	return osNames[o]
}

// ParseOS maps a canonicalized OS string (digits and dot-version suffix
// already stripped by the caller) to an OS.
func ParseOS(s string) (OS, bool) {
	for o, name := range osNames {
		if name == s && OS(o) != OSUnknown {
			return OS(o), true
		}
	}
	return OSUnknown, false
}

// Env is the ABI/environment field of a Triple.
type Env int

const (
	EnvNone Env = iota
	EnvGnu
	EnvGnueabihf
	EnvMusl
	EnvMusleabihf
	EnvAndroid
	EnvMsvc
	EnvMingw32
	EnvEabi
	EnvEabihf
	EnvMacho
)

var envNames = [...]string{
	EnvNone:       "",
	EnvGnu:        "gnu",
	EnvGnueabihf:  "gnueabihf",
	EnvMusl:       "musl",
	EnvMusleabihf: "musleabihf",
	EnvAndroid:    "android",
	EnvMsvc:       "msvc",
	EnvMingw32:    "mingw32",
	EnvEabi:       "eabi",
	EnvEabihf:     "eabihf",
	EnvMacho:      "macho",
}

func (e Env) String() string {
	if int(e) < 0 || int(e) >= len(envNames) {
		return ""
	}
	return envNames[e]
}

// ParseEnv maps a triple-component string to an Env.
func ParseEnv(s string) (Env, bool) {
	for e, name := range envNames {
		if name == s && Env(e) != EnvNone {
			return Env(e), true
		}
	}
	return EnvNone, false
}
