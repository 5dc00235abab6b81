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

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"zombiezen.com/go/macaroni/internal/treedump"
)

type treeFlags struct {
	positions bool
}

func newTreeCommand(global *globalFlags) *cobra.Command {
	flags := new(treeFlags)
	cmd := &cobra.Command{
		Use:   "tree [file]",
		Short: "Print the syntax tree in a human-readable form",
		Long: `Parse a Markdown file and print one node per line,
indented by depth, with each node's kind, span, and details.

With no file, or when file is -, read standard input.`,
		Args: inputArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(cmd, global, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			opts := &treedump.Options{Positions: flags.positions}
			if isColorEnabled(global.color, out) {
				opts.Style = newTreeStyles(out).render
			}
			if err := treedump.Write(out, doc, opts); err != nil {
				return &ioError{fmt.Errorf("write output: %w", err)}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&flags.positions, "positions", false, "show line:character positions instead of byte spans")
	return cmd
}
