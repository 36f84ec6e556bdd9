// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"io"
	"os"
)

// exitCoder is implemented by errors that carry their own exit status
// (the CLI's ExitError). Their message has already been printed.
type exitCoder interface {
	ExitCode() int
}

// Fatal reports err and exits. Errors that carry an exit code exit with
// that code silently; everything else prints "error: err" to stderr and
// exits with code 1.
func Fatal(err error) {
	os.Exit(report(os.Stderr, err))
}

// report writes the error line (when one is due) and returns the exit
// status Fatal should use.
func report(w io.Writer, err error) int {
	if coder, ok := err.(exitCoder); ok {
		return coder.ExitCode()
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return 1
}
