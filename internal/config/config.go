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

// Package config layers the driver's configuration: environment
// variables (JELLO_*) override a project-local config file, which
// overrides a user config file, which overrides built-in defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/jellolink/gel/internal/linktypes"
)

// Config is the resolved, typed view of the driver's configuration,
// after all layers have been merged by Load.
type Config struct {
	Backend           string   // "" means auto-detect
	FixMode           linktypes.FixMode
	ExtraSearchPaths  []string
	EmitPlan          bool
	ExplainOnFailure  bool
	Silent            bool
	ArtifactDir       string
}

const (
	envPrefix         = "JELLO"
	projectConfigName = ".gel"
	userConfigName    = "config"
)

func defaults() map[string]any {
	return map[string]any{
		"backend":            "",
		"fix_mode":           "suggest",
		"extra_search_paths": []string{},
		"emit_plan":          false,
		"explain_on_failure": false,
		"silent":             false,
		"artifact_dir":       ".gel",
	}
}

// Load merges, in increasing priority, built-in defaults, the user
// config file ($XDG_CONFIG_HOME/gel/config.{yaml,toml,json}, or
// ~/.config/gel/config.* when XDG_CONFIG_HOME is unset), the nearest
// project-local .gel.{yaml,toml,json} found from workDir upward, and
// JELLO_* environment variables.
func Load(workDir string) (*Config, error) {
	v := viper.New()

	for key, val := range defaults() {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	userDir := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		userDir = filepath.Join(xdg, "gel")
	} else if home, err := os.UserHomeDir(); err == nil {
		userDir = filepath.Join(home, ".config", "gel")
	}
	if userDir != "" {
		v.AddConfigPath(userDir)
		v.SetConfigName(userConfigName)
		if err := v.MergeInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, linktypes.ParseError{Msg: "reading user config: " + err.Error()}
			}
		}
	}

	projectViper := viper.New()
	projectViper.SetConfigName(projectConfigName)
	for dir := filepath.Clean(workDir); ; dir = filepath.Dir(dir) {
		projectViper.AddConfigPath(dir)
		if filepath.Dir(dir) == dir {
			break
		}
	}
	if err := projectViper.ReadInConfig(); err == nil {
		if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
			return nil, linktypes.ParseError{Msg: "merging project config: " + err.Error()}
		}
	} else if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
		return nil, linktypes.ParseError{Msg: "reading project config: " + err.Error()}
	}

	fixMode, _ := linktypes.ParseFixMode(v.GetString("fix_mode"))

	return &Config{
		Backend:          v.GetString("backend"),
		FixMode:          fixMode,
		ExtraSearchPaths: v.GetStringSlice("extra_search_paths"),
		EmitPlan:         v.GetBool("emit_plan"),
		ExplainOnFailure: v.GetBool("explain_on_failure"),
		Silent:           v.GetBool("silent"),
		ArtifactDir:      v.GetString("artifact_dir"),
	}, nil
}
