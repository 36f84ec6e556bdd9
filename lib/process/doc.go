// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for robodash
// commands. Fatal is the only place outside the CLI output layer that
// writes to stderr directly: it runs when run() has failed and the
// structured logger may not exist yet.
package process
