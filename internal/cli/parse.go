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
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"zombiezen.com/go/macaroni"
)

type parseFlags struct {
	request bool
	indent  bool
}

func newParseCommand(global *globalFlags) *cobra.Command {
	flags := new(parseFlags)
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Print the syntax tree as JSON",
		Long: `Parse a Markdown file and print its block and inline elements as JSON.

With no file, or when file is -, read standard input.

Examples:
  macaroni parse README.md
  macaroni parse --indent < README.md
  echo '{"source": "# Hi"}' | macaroni parse --request`,
		Args: inputArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, global, flags, args)
		},
	}
	cmd.Flags().BoolVar(&flags.request, "request", false, `read a JSON request {"source": "..."} instead of raw Markdown`)
	cmd.Flags().BoolVar(&flags.indent, "indent", false, "indent JSON output")
	return cmd
}

func runParse(cmd *cobra.Command, global *globalFlags, flags *parseFlags, args []string) error {
	in, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	if flags.request {
		req, err := macaroni.DecodeRequest(bytes.NewReader(in.source))
		if err != nil {
			return &usageError{fmt.Errorf("%s: %w", in.name(), err)}
		}
		in.source = []byte(req.Source)
	}
	p, err := newParser(cmd, global, in)
	if err != nil {
		return err
	}
	doc, err := parseInput(cmd, p, in)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), doc.Elements(), flags.indent)
}

func writeJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return &ioError{fmt.Errorf("write output: %w", err)}
	}
	return nil
}
