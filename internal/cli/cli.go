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

// Package cli defines the gel command-line surface: link, doctor, plan,
// and init subcommands, built with cobra. Basename dispatch (gelcc,
// gelc++, geld) is handled one layer up, in cmd/gel, before this
// package's Execute is ever reached.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/jellolink/gel/internal/config"
	"github.com/jellolink/gel/internal/discovery"
	"github.com/jellolink/gel/internal/driver"
	"github.com/jellolink/gel/internal/emit"
	"github.com/jellolink/gel/internal/gellog"
	"github.com/jellolink/gel/internal/linktypes"
	"github.com/jellolink/gel/internal/triple"
)

var (
	flagDryRun  bool
	flagExplain bool
	flagNoPlan  bool
	flagPlanDir string
	flagMode    string
	flagBackend string
	flagPlanFmt string
)

// NewRootCmd builds the gel root command and its subcommands.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gel",
		Short:         "gel is a deterministic linker driver",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newLinkCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newInitCmd())
	return root
}

func loadConfigOrDefault() *config.Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	cfg, err := config.Load(wd)
	if err != nil {
		gellog.Warningf("cli: config load failed, using defaults: %v", err)
		return &config.Config{ArtifactDir: ".gel"}
	}
	return cfg
}

func newLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                "link [flags] -- <args...>",
		Short:              "run the link pipeline",
		DisableFlagParsing: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfigOrDefault()
			opts := optionsFromFlags(cfg)
			outcome, err := driver.Run(context.Background(), args, opts)
			if err != nil {
				return err
			}
			os.Exit(outcome.ExitCode)
			return nil
		},
	}
	bindLinkFlags(cmd)
	return cmd
}

func bindLinkFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&flagDryRun, "dry-run", "n", false, "print the command, do not execute")
	cmd.Flags().BoolVar(&flagExplain, "explain", false, "write a reasoning trace to stderr")
	cmd.Flags().BoolVar(&flagNoPlan, "no-plan", false, "do not emit linkplan artifacts")
	cmd.Flags().StringVar(&flagPlanDir, "plan-dir", ".gel", "artifact directory")
	cmd.Flags().StringVar(&flagMode, "mode", "suggest", "fix-mode policy: auto|suggest|strict")
	cmd.Flags().StringVar(&flagBackend, "backend", "", "force backend: mold|lld|gold|bfd|system")
}

func optionsFromFlags(cfg *config.Config) driver.Options {
	mode, ok := linktypes.ParseFixMode(flagMode)
	if !ok {
		mode = cfg.FixMode
	}
	planDir := flagPlanDir
	if planDir == "" {
		planDir = cfg.ArtifactDir
	}
	return driver.Options{
		DryRun:           flagDryRun,
		Explain:          flagExplain,
		EmitPlan:         !flagNoPlan,
		PlanDir:          planDir,
		FixMode:          mode,
		BackendOverride:  firstNonEmpty(flagBackend, cfg.Backend),
		ExtraSearchPaths: cfg.ExtraSearchPaths,
		Silent:           cfg.Silent,
		Stderr:           os.Stderr,
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "print detected toolchain and configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg := loadConfigOrDefault()

			ccPath, ccErr := discovery.Compiler(discovery.LangC)
			cxxPath, cxxErr := discovery.Compiler(discovery.LangCxx)

			fmt.Fprintln(cmd.OutOrStdout(), "compilers:")
			printToolStatus(cmd, "cc", ccPath, ccErr)
			printToolStatus(cmd, "c++", cxxPath, cxxErr)

			if ccErr == nil {
				if trip, err := triple.Detect(ctx, ccPath); err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "triple: %s\n", trip)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "backends:")
			for _, b := range linktypes.DefaultPreference() {
				if path, ok := firstFound(b.CandidateNames()); ok {
					version, _ := discovery.LinkerVersion(ctx, path)
					fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s (%s)\n", b, path, version)
				}
			}

			if nm, err := discovery.NM(""); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "nm: %s\n", nm)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "search paths:")
			for _, p := range discovery.SearchPaths(ctx) {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", p)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "config: backend=%q fix_mode=%s emit_plan=%v plan_dir=%q\n",
				cfg.Backend, cfg.FixMode, cfg.EmitPlan, cfg.ArtifactDir)
			return nil
		},
	}
}

func printToolStatus(cmd *cobra.Command, label, path string, err error) {
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: not found\n", label)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", label, path)
}

func firstFound(names []string) (string, bool) {
	for _, n := range names {
		if path, err := exec.LookPath(n); err == nil {
			return path, true
		}
	}
	return "", false
}

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [-f json|shell] -- <args...>",
		Short: "run the pipeline dry, printing the serialized plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfigOrDefault()
			opts := optionsFromFlags(cfg)
			opts.DryRun = true
			opts.EmitPlan = false

			outcome, err := driver.Run(context.Background(), args, opts)
			if err != nil {
				return err
			}

			switch flagPlanFmt {
			case "shell":
				fmt.Fprintln(cmd.OutOrStdout(), string(emit.ReplayScript(outcome.Plan)))
			default:
				data, err := emit.PlanJSON(outcome.Plan, nil)
				if err != nil {
					return err
				}
				var buf []byte
				buf, err = json.MarshalIndent(json.RawMessage(data), "", "  ")
				if err != nil {
					fmt.Fprintln(cmd.OutOrStdout(), string(data))
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), string(buf))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagPlanFmt, "format", "f", "json", "output format: json|shell")
	bindLinkFlags(cmd)
	return cmd
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "write a default project configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			const defaultConfig = `backend: ""
fix_mode: suggest
extra_search_paths: []
emit_plan: false
explain_on_failure: false
silent: false
artifact_dir: .gel
`
			if _, err := os.Stat(".gel.yaml"); err == nil {
				return fmt.Errorf("cli: .gel.yaml already exists")
			}
			return os.WriteFile(".gel.yaml", []byte(defaultConfig), 0o644)
		},
	}
}
