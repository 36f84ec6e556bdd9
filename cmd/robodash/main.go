// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// robodash inspects robotics telemetry scenarios: frame trees,
// computation graph layouts and panel worker output.
package main

import (
	"os"

	"github.com/bureau-foundation/robodash/cmd/robodash/commands"
	"github.com/bureau-foundation/robodash/lib/process"
)

func main() {
	root := commands.Root(commands.IO{Stdout: os.Stdout, Stderr: os.Stderr})
	if err := root.Execute(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}
