// Copyright 2024 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the Cobra command structure for macaroni.
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"zombiezen.com/go/macaroni/internal/config"
	"zombiezen.com/go/macaroni/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalFlags are the flags shared by all subcommands.
type globalFlags struct {
	configPath string
	debug      bool
	color      string
	maxDepth   int
	maxSize    int
}

// NewRootCommand creates the root macaroni command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	flags := new(globalFlags)

	rootCmd := &cobra.Command{
		Use:   "macaroni",
		Short: "Parse Markdown into a position-annotated syntax tree",
		Long: `macaroni parses CommonMark documents, with footnotes, citations,
and strikethrough, into a syntax tree where every node carries its
line, UTF-16 character, and byte offset in the source.

The tree can be printed as JSON for editor tooling, as an indented
human-readable dump, or summarized as an outline of sections.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return unknownCommand(cmd, args[0])
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := "info"
			if flags.debug {
				level = "debug"
			}
			logger := logging.NewWithWriter(cmd.ErrOrStderr(), level)
			logging.SetDefault(logger)
			cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})

	pflags := rootCmd.PersistentFlags()
	pflags.StringVar(&flags.configPath, "config", "", "path to config file (default: search for "+config.FileName+")")
	pflags.BoolVar(&flags.debug, "debug", false, "enable debug logging")
	pflags.StringVar(&flags.color, "color", "auto", "colorize output: auto, always, never")
	pflags.IntVar(&flags.maxDepth, "max-depth", 0, "maximum nesting depth (overrides config)")
	pflags.IntVar(&flags.maxSize, "max-size", 0, "maximum document size in bytes (overrides config)")

	rootCmd.AddCommand(newParseCommand(flags))
	rootCmd.AddCommand(newTreeCommand(flags))
	rootCmd.AddCommand(newOutlineCommand(flags))
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}

// inputArgs accepts at most one input path.
var inputArgs = usageArgs(cobra.MaximumNArgs(1))

// usageArgs marks errors from an argument validator as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &usageError{err}
		}
		return nil
	}
}

// unknownCommand reports an argument to the root command
// that does not name a subcommand.
func unknownCommand(cmd *cobra.Command, name string) error {
	msg := fmt.Sprintf("unknown command %q for %q", name, cmd.CommandPath())
	if suggestions := cmd.SuggestionsFor(name); len(suggestions) > 0 {
		msg += "\n\nDid you mean this?\n\t" + strings.Join(suggestions, "\n\t")
	}
	return &usageError{errors.New(msg)}
}
