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
	"github.com/spf13/cobra"

	"zombiezen.com/go/macaroni/outline"
)

func newOutlineCommand(global *globalFlags) *cobra.Command {
	var indent bool
	cmd := &cobra.Command{
		Use:   "outline [file]",
		Short: "Print document symbols and folding ranges as JSON",
		Long: `Parse a Markdown file and print its heading hierarchy
and foldable line ranges as JSON.

With no file, or when file is -, read standard input.`,
		Args: inputArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(cmd, global, args)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), outline.New(doc), indent)
		},
	}
	cmd.Flags().BoolVar(&indent, "indent", false, "indent JSON output")
	return cmd
}
