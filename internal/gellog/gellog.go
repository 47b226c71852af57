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

// Package gellog is the driver's leveled logger. It generalizes the
// teacher's plain LogAlways/Logf/Warn/Error helpers (google/kati's
// log.go) into glog-style verbosity levels, matching the
// github.com/golang/glog usage already present in the golang/kati
// refactor of the same codebase.
package gellog

import (
	"flag"
	"fmt"

	glog "github.com/golang/glog"
)

// Level is the log-level enum: quiet, error, warning, info, debug.
type Level int

const (
	LevelQuiet Level = iota
	LevelError
	LevelWarning
	LevelInfo
	LevelDebug
)

var levelNames = [...]string{
	LevelQuiet:   "quiet",
	LevelError:   "error",
	LevelWarning: "warning",
	LevelInfo:    "info",
	LevelDebug:   "debug",
}

func (l Level) String() string {
	if int(l) < 0 || int(l) >= len(levelNames) {
		return "error"
	}
	return levelNames[l]
}

// ParseLevel maps a level name ("quiet" ... "debug") to a Level.
func ParseLevel(s string) (Level, bool) {
	for l, name := range levelNames {
		if name == s {
			return Level(l), true
		}
	}
	return LevelError, false
}

// SetLevel configures glog's -v verbosity to match l: Debug maps to
// glog.V(1), everything else to V(0). Quiet, Error and Warning are not
// told apart: glog's own warning and error output is not filtered.
func SetLevel(l Level) {
	v := "0"
	if l == LevelDebug {
		v = "1"
	}
	if f := flag.Lookup("v"); f != nil {
		_ = f.Value.Set(v)
	}
}

// V reports whether verbosity level v is enabled, same contract as
// glog.V.
func V(level glog.Level) glog.Verbose { return glog.V(level) }

// Infof logs at informational severity.
func Infof(format string, args ...interface{}) { glog.Infof(format, args...) }

// Warningf logs at warning severity.
func Warningf(format string, args ...interface{}) { glog.Warningf(format, args...) }

// Errorf logs at error severity.
func Errorf(format string, args ...interface{}) { glog.Errorf(format, args...) }

// Warn logs a warning attributed to a phase, mirroring the teacher's
// Warn(filename, lineno, …) shape but keyed by pipeline phase instead of
// a source location.
func Warn(phase string, format string, args ...interface{}) {
	glog.Warningf("%s: %s", phase, fmt.Sprintf(format, args...))
}

// Flush flushes buffered log entries; call before process exit.
func Flush() { glog.Flush() }
