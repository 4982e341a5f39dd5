// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for jaml.
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (JAML_*, GEMINI_API_KEY, OPENAI_API_KEY), with
//     a .env file in the working directory loaded first
//   - ~/.jaml/config.toml
//   - ~/.jaml/config.json
//   - Built-in defaults
//
// The configuration directory can be moved with JAML_HOME.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	cfg.Set("ui.theme", "purple")
//	config.Save(cfg)
//
// Watch reloads the file when it changes on disk.
package config
