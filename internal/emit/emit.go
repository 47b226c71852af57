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

// Package emit serializes a LinkPlan and its diagnostics to the three
// on-disk artifacts the driver promises: linkplan.json, linkplan.sh, and
// diagnostics.json. Every write is atomic (write-temp-then-rename), and
// field order is fixed so the same plan always serializes identically.
package emit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jellolink/gel/internal/linktypes"
)

const (
	PlanFileName        = "linkplan.json"
	ScriptFileName      = "linkplan.sh"
	DiagnosticsFileName = "diagnostics.json"
)

// jsonFlag is the ordered, serializable view of a linktypes.Flag.
type jsonFlag struct {
	Kind        string `json:"kind"`
	Value       string `json:"value,omitempty"`
	Lib         string `json:"lib,omitempty"`
	Passthrough string `json:"passthrough,omitempty"`
}

type jsonInput struct {
	Kind string `json:"kind"`
	Path string `json:"path,omitempty"`
	Lib  string `json:"lib,omitempty"`
}

type jsonResolvedLib struct {
	Ref          string `json:"ref"`
	Path         string `json:"path"`
	Kind         string `json:"kind"`
	DetectedArch string `json:"detected_arch,omitempty"`
}

// jsonFixAction's File, Flags, and SearchPath carry spec placeholder
// semantics: an explicitly empty value ("" or []) is meaningful evidence
// (e.g. SuggestRecompile with no specific flag, AddSearchPath with no
// path yet known) and must be preserved verbatim, never omitted.
type jsonFixAction struct {
	Kind       string   `json:"kind"`
	Flag       string   `json:"flag,omitempty"`
	Libs       []string `json:"libs,omitempty"`
	Package    string   `json:"package,omitempty"`
	File       string   `json:"file"`
	Flags      []string `json:"flags"`
	SearchPath string   `json:"search_path"`
}

type jsonFix struct {
	Description string        `json:"description"`
	Confidence  string        `json:"confidence"`
	Action      jsonFixAction `json:"action"`
}

type jsonDiagnostic struct {
	Severity string    `json:"severity"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Evidence []string  `json:"evidence"`
	Fixes    []jsonFix `json:"fixes"`
}

// jsonPlan is the ordered, serializable view of a LinkPlan. Field order
// here is the field order linkplan.json renders in.
type jsonPlan struct {
	Backend       string           `json:"backend"`
	BackendPath   string           `json:"backend_path"`
	Triple        string           `json:"triple"`
	LinkMode      string           `json:"link_mode"`
	Output        string           `json:"output"`
	Inputs        []jsonInput      `json:"inputs"`
	Flags         []jsonFlag       `json:"flags"`
	SearchPaths   []string         `json:"search_paths"`
	ResolvedLibs  []jsonResolvedLib `json:"resolved_libs"`
	Sysroot       string           `json:"sysroot,omitempty"`
	DynamicLinker string           `json:"dynamic_linker,omitempty"`
	FixesApplied  []jsonFix        `json:"fixes_applied"`
	Diagnostics   []jsonDiagnostic `json:"diagnostics"`
	RawArgs       []string         `json:"raw_args"`
	BackendArgs   []string         `json:"backend_args"`
}

func toJSONFlag(f linktypes.Flag) jsonFlag {
	jf := jsonFlag{Kind: f.Kind.String(), Value: f.Value, Passthrough: f.Passthrough}
	if f.Kind == linktypes.FlagLinkLib {
		jf.Lib = f.Lib.String()
	}
	return jf
}

func toJSONInput(in linktypes.Input) jsonInput {
	ji := jsonInput{Kind: in.Kind.String(), Path: in.Path}
	if in.Kind == linktypes.InputLib {
		ji.Lib = in.Lib.String()
	}
	return ji
}

func toJSONResolvedLib(r linktypes.ResolvedLib) jsonResolvedLib {
	jr := jsonResolvedLib{Ref: r.Ref.String(), Path: r.Path, Kind: r.Kind.String()}
	if r.HasDetected {
		jr.DetectedArch = r.DetectedArch.String()
	}
	return jr
}

func toJSONFix(f linktypes.Fix) jsonFix {
	action := jsonFixAction{
		Kind:       f.Action.Kind.String(),
		Libs:       f.Action.Libs,
		Package:    f.Action.Package,
		File:       f.Action.File,
		Flags:      f.Action.Flags,
		SearchPath: f.Action.SearchPath,
	}
	if action.Flags == nil {
		action.Flags = []string{}
	}
	if f.Action.Kind == linktypes.ActionAddFlag || f.Action.Kind == linktypes.ActionRemoveFlag {
		action.Flag = f.Action.Flag.Kind.String()
	}
	return jsonFix{
		Description: f.Description,
		Confidence:  f.Confidence.String(),
		Action:      action,
	}
}

func toJSONDiagnostic(d linktypes.Diagnostic) jsonDiagnostic {
	jd := jsonDiagnostic{
		Severity: d.Severity.String(),
		Code:     d.Code,
		Message:  d.Message,
		Evidence: d.Evidence,
	}
	for _, f := range d.Fixes {
		jd.Fixes = append(jd.Fixes, toJSONFix(f))
	}
	return jd
}

// toJSONPlan converts plan plus its final diagnostic list into the
// ordered serializable form.
func toJSONPlan(plan *linktypes.LinkPlan, diagnostics []linktypes.Diagnostic) jsonPlan {
	jp := jsonPlan{
		Backend:       plan.Backend.String(),
		BackendPath:   plan.BackendPath,
		Triple:        plan.Triple.String(),
		LinkMode:      plan.LinkMode.String(),
		Output:        plan.Output,
		SearchPaths:   plan.SearchPaths,
		Sysroot:       plan.Sysroot,
		DynamicLinker: plan.DynamicLinker,
		RawArgs:       plan.RawArgs,
		BackendArgs:   plan.BackendArgs,
	}
	for _, in := range plan.Inputs {
		jp.Inputs = append(jp.Inputs, toJSONInput(in))
	}
	for _, f := range plan.Flags {
		jp.Flags = append(jp.Flags, toJSONFlag(f))
	}
	for _, r := range plan.ResolvedLibs {
		jp.ResolvedLibs = append(jp.ResolvedLibs, toJSONResolvedLib(r))
	}
	for _, f := range plan.FixesApplied {
		jp.FixesApplied = append(jp.FixesApplied, toJSONFix(f))
	}
	for _, d := range diagnostics {
		jp.Diagnostics = append(jp.Diagnostics, toJSONDiagnostic(d))
	}
	return jp
}

// PlanJSON renders plan (with diagnostics folded in) as indented JSON,
// matching the linkplan.json schema.
func PlanJSON(plan *linktypes.LinkPlan, diagnostics []linktypes.Diagnostic) ([]byte, error) {
	return json.MarshalIndent(toJSONPlan(plan, diagnostics), "", "  ")
}

// DiagnosticsJSON renders diagnostics alone, in the same per-diagnostic
// schema linkplan.json embeds them with.
func DiagnosticsJSON(diagnostics []linktypes.Diagnostic) ([]byte, error) {
	jds := make([]jsonDiagnostic, 0, len(diagnostics))
	for _, d := range diagnostics {
		jds = append(jds, toJSONDiagnostic(d))
	}
	return json.MarshalIndent(jds, "", "  ")
}

// ReplayScript renders a POSIX shell script that, when executed, runs
// the exact backend with the exact args.
func ReplayScript(plan *linktypes.LinkPlan) []byte {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "#!/bin/sh")
	fmt.Fprintf(&buf, "# replay script for backend %s (%s)\n", plan.Backend.String(), plan.BackendPath)
	buf.WriteString(shellQuote(plan.BackendPath))
	for _, a := range plan.BackendArgs {
		buf.WriteByte(' ')
		buf.WriteString(shellQuote(a))
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("_-./=:,+", r):
		default:
			safe = false
		}
		if !safe {
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// WriteArtifacts creates dir if missing, then atomically writes
// linkplan.json, linkplan.sh, and diagnostics.json into it.
func WriteArtifacts(dir string, plan *linktypes.LinkPlan, diagnostics []linktypes.Diagnostic) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("emit: creating %s: %w", dir, err)
	}

	planJSON, err := PlanJSON(plan, diagnostics)
	if err != nil {
		return fmt.Errorf("emit: marshaling linkplan.json: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, PlanFileName), planJSON, 0o644); err != nil {
		return err
	}

	if err := writeAtomic(filepath.Join(dir, ScriptFileName), ReplayScript(plan), 0o755); err != nil {
		return err
	}

	diagJSON, err := DiagnosticsJSON(diagnostics)
	if err != nil {
		return fmt.Errorf("emit: marshaling diagnostics.json: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, DiagnosticsFileName), diagJSON, 0o644); err != nil {
		return err
	}
	return nil
}

// writeAtomic writes data to a temp file in the same directory as path,
// then renames it over path, so a reader never observes a partial file.
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("emit: creating temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("emit: writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("emit: closing %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("emit: chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("emit: renaming into %s: %w", path, err)
	}
	return nil
}
