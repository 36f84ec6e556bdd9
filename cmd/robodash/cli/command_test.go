// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	t.Parallel()
	var called string

	root := &Command{
		Name: "robodash",
		Subcommands: []*Command{
			{
				Name: "tree",
				Run: func(args []string) error {
					called = "tree"
					return nil
				},
			},
			{
				Name: "path",
				Run: func(args []string) error {
					called = "path"
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"path"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "path" {
		t.Errorf("dispatched to %q, want %q", called, "path")
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	t.Parallel()
	var direction string
	var receivedArgs []string

	command := &Command{
		Name: "layout",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("layout", pflag.ContinueOnError)
			flagSet.StringVarP(&direction, "direction", "d", "TB", "rank direction")
			return flagSet
		},
		Run: func(args []string) error {
			receivedArgs = args
			return nil
		},
	}

	if err := command.Execute([]string{"warehouse.jsonc", "-d", "LR"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if direction != "LR" {
		t.Errorf("direction = %q, want %q", direction, "LR")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "warehouse.jsonc" {
		t.Errorf("args = %v, want [warehouse.jsonc]", receivedArgs)
	}
}

func TestCommand_Execute_UnknownCommandSuggests(t *testing.T) {
	t.Parallel()
	root := &Command{
		Name: "robodash",
		Subcommands: []*Command{
			{Name: "replay", Run: func([]string) error { return nil }},
			{Name: "layout", Run: func([]string) error { return nil }},
		},
	}

	err := root.Execute([]string{"reply"})
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), `did you mean "replay"?`) {
		t.Errorf("error = %q, want suggestion for replay", err)
	}
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Category != CategoryValidation {
		t.Errorf("error should be a validation ToolError, got %T", err)
	}
}

func TestCommand_Execute_UnknownFlagSuggests(t *testing.T) {
	t.Parallel()
	command := &Command{
		Name: "tree",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("tree", pflag.ContinueOnError)
			flagSet.String("filter", "", "query")
			flagSet.Int("width", 100, "width")
			return flagSet
		},
		Run: func([]string) error { return nil },
	}

	err := command.Execute([]string{"--filtr", "camera"})
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
	if !strings.Contains(err.Error(), "did you mean --filter?") {
		t.Errorf("error = %q, want suggestion for --filter", err)
	}
}

func TestCommand_Execute_HelpWritesToHelpOutput(t *testing.T) {
	t.Parallel()
	var help bytes.Buffer
	root := &Command{
		Name:       "robodash",
		HelpOutput: &help,
		Subcommands: []*Command{
			{
				Name:    "tree",
				Summary: "Print the frame tree",
				Examples: []Example{
					{Description: "Ten seconds later", Command: "robodash tree warehouse --after 10s"},
				},
				Flags: func() *pflag.FlagSet {
					flagSet := pflag.NewFlagSet("tree", pflag.ContinueOnError)
					flagSet.Bool("json", false, "output as JSON")
					return flagSet
				},
				Run: func([]string) error { return nil },
			},
		},
	}

	if err := root.Execute([]string{"tree", "--help"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	output := help.String()
	for _, want := range []string{"Print the frame tree", "robodash tree [flags]", "--json", "# Ten seconds later"} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q:\n%s", want, output)
		}
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	t.Parallel()
	var help bytes.Buffer
	root := &Command{
		Name:        "robodash",
		HelpOutput:  &help,
		Subcommands: []*Command{{Name: "tree", Summary: "Print the frame tree"}},
	}

	if err := root.Execute(nil); err == nil {
		t.Fatal("expected error when no subcommand is given")
	}
	if !strings.Contains(help.String(), "tree") {
		t.Errorf("help should list subcommands, got:\n%s", help.String())
	}
}

func TestCommand_Execute_GroupRejectsLeadingFlag(t *testing.T) {
	t.Parallel()
	var help bytes.Buffer
	root := &Command{
		Name:        "robodash",
		HelpOutput:  &help,
		Subcommands: []*Command{{Name: "tree", Run: func([]string) error { return nil }}},
	}

	err := root.Execute([]string{"--verbose"})
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Category != CategoryValidation {
		t.Fatalf("error = %v, want a validation ToolError", err)
	}
	if !strings.Contains(help.String(), "robodash <command>") {
		t.Errorf("help output missing group usage:\n%s", help.String())
	}
}

func TestCommand_Execute_LeafWithoutRun(t *testing.T) {
	t.Parallel()
	err := (&Command{Name: "orphan"}).Execute(nil)
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Category != CategoryInternal {
		t.Errorf("error = %v, want an internal ToolError", err)
	}
}

func TestCommand_PrintHelp_SeparatesExamples(t *testing.T) {
	t.Parallel()
	var help bytes.Buffer
	command := &Command{
		Name:  "replay",
		Usage: "robodash replay <scenario> [flags]",
		Examples: []Example{
			{Description: "Whole scenario", Command: "robodash replay warehouse"},
			{Command: "robodash replay warehouse --until 5s"},
		},
	}
	command.PrintHelp(&help)

	want := "\nExamples:\n  # Whole scenario\n  robodash replay warehouse\n\n  robodash replay warehouse --until 5s\n"
	if !strings.HasSuffix(help.String(), want) {
		t.Errorf("help output = %q, want suffix %q", help.String(), want)
	}
	if !strings.Contains(help.String(), "Usage:\n  robodash replay <scenario> [flags]\n") {
		t.Errorf("help output missing explicit usage:\n%s", help.String())
	}
}
