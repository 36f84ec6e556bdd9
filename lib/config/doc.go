// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for robodash.
//
// Configuration is loaded from a single file specified by either the
// ROBODASH_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks and no automatic file
// search. Commands that run without a config file use [Default].
//
// The configuration file supports environment-specific sections
// (development, staging, production) that override logging, worker and
// path settings when [Config].Environment matches. Production defaults
// to JSON logs.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${ROBODASH_ROOT}, and ${VAR:-default} patterns are expanded.
// No other environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Paths, Logging, Workers, Freshness, Layout, Graph
//   - [Default] -- returns a Config with development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other robodash packages.
package config
