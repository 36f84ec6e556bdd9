// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Command is one node of the robodash command tree. A command with
// Subcommands is a group and dispatches on its first argument; any
// other command parses Flags and calls Run.
type Command struct {
	// Name is what the user types, such as "tree" or "replay".
	Name string
	// Summary is the one-line entry in the parent's command list.
	Summary string
	// Description replaces Summary at the top of the command's own help.
	Description string
	// Usage overrides the synthesized usage line.
	Usage    string
	Examples []Example
	// Flags builds a fresh flag set. Nil means the command takes none.
	Flags       func() *pflag.FlagSet
	Subcommands []*Command
	Run         func(args []string) error
	// HelpOutput receives help text. Unset commands inherit their
	// parent's; the root falls back to os.Stderr.
	HelpOutput io.Writer

	parent *Command
}

// Example is one annotated command line in help output.
type Example struct {
	Description string
	Command     string
}

// Execute runs the command tree against args, which exclude the
// program name.
func (c *Command) Execute(args []string) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.PrintHelp(c.helpOutput())
		return nil
	}
	if len(c.Subcommands) > 0 {
		return c.dispatch(args)
	}
	if c.Flags != nil {
		remaining, err := c.parseFlags(args)
		if err != nil {
			return err
		}
		args = remaining
	}
	if c.Run == nil {
		return Internal("%s has neither subcommands nor an action", c.fullName())
	}
	return c.Run(args)
}

func (c *Command) dispatch(args []string) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		c.PrintHelp(c.helpOutput())
		return Validation("%s needs a command", c.fullName())
	}
	for _, sub := range c.Subcommands {
		if sub.Name == args[0] {
			sub.parent = c
			return sub.Execute(args[1:])
		}
	}
	message := fmt.Sprintf("unknown command %q", args[0])
	if suggestion := suggestCommand(args[0], c.Subcommands); suggestion != "" {
		message += fmt.Sprintf(" (did you mean %q?)", suggestion)
	}
	return Validation("%s\n\nRun '%s --help' for usage.", message, c.fullName())
}

// parseFlags returns the positional arguments left after flag
// parsing. pflag's own error output is discarded in favour of a
// validation error that suggests the closest known flag.
func (c *Command) parseFlags(args []string) ([]string, error) {
	flagSet := c.Flags()
	flagSet.SetOutput(io.Discard)
	err := flagSet.Parse(args)
	if err == nil {
		return flagSet.Args(), nil
	}
	message := err.Error()
	if strings.Contains(message, "unknown") {
		// The failed parse may have mutated flagSet; suggest from a fresh one.
		if suggestion := suggestFlag(args, c.Flags()); suggestion != "" {
			message += fmt.Sprintf(" (did you mean %s?)", suggestion)
		}
	}
	return nil, Validation("%s\n\nRun '%s --help' for usage.", message, c.fullName())
}

// PrintHelp writes the command's help text to w.
func (c *Command) PrintHelp(w io.Writer) {
	heading := c.Description
	if heading == "" {
		heading = c.Summary
	}
	if heading != "" {
		fmt.Fprintf(w, "%s\n\n", heading)
	}
	fmt.Fprintf(w, "Usage:\n  %s\n", c.usage())

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		table := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(table, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		table.Flush()
	}
	if c.Flags != nil {
		if usage := c.Flags().FlagUsages(); usage != "" {
			fmt.Fprintf(w, "\nFlags:\n%s", usage)
		}
	}
	for i, example := range c.Examples {
		if i == 0 {
			fmt.Fprintf(w, "\nExamples:\n")
		} else {
			fmt.Fprintln(w)
		}
		if example.Description != "" {
			fmt.Fprintf(w, "  # %s\n", example.Description)
		}
		fmt.Fprintf(w, "  %s\n", example.Command)
	}
	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nRun '%s <command> --help' for more information on a command.\n", c.fullName())
	}
}

func (c *Command) usage() string {
	switch {
	case c.Usage != "":
		return c.Usage
	case len(c.Subcommands) > 0:
		return c.fullName() + " <command>"
	default:
		return c.fullName() + " [flags]"
	}
}

func (c *Command) helpOutput() io.Writer {
	for command := c; command != nil; command = command.parent {
		if command.HelpOutput != nil {
			return command.HelpOutput
		}
	}
	return os.Stderr
}

// fullName is the space-separated path from the root, such as
// "robodash layout".
func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}
