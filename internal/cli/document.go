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
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"zombiezen.com/go/macaroni"
	"zombiezen.com/go/macaroni/internal/config"
	"zombiezen.com/go/macaroni/internal/logging"
)

// input is a Markdown source read from a file or standard input.
type input struct {
	// path is empty for standard input.
	path   string
	source []byte
}

func (in *input) name() string {
	if in.path == "" {
		return "<stdin>"
	}
	return in.path
}

// readInput reads the file named by the command's argument,
// or standard input if there is no argument or the argument is "-".
func readInput(cmd *cobra.Command, args []string) (*input, error) {
	if len(args) > 0 && args[0] != "-" {
		source, err := os.ReadFile(args[0])
		if err != nil {
			return nil, &ioError{fmt.Errorf("read input: %w", err)}
		}
		return &input{path: args[0], source: source}, nil
	}
	source, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, &ioError{fmt.Errorf("read input: %w", err)}
	}
	return &input{source: source}, nil
}

// newParser builds the parser for in from the configuration file
// and the command-line overrides.
func newParser(cmd *cobra.Command, flags *globalFlags, in *input) (*macaroni.Parser, error) {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)
	cfg, cfgPath, err := config.Resolve(ctx, flags.configPath, in.path)
	if err != nil {
		return nil, err
	}
	if !flags.debug {
		if lvl, ok := logging.ParseLevel(cfg.Log.Level); ok {
			logger.SetLevel(lvl)
		}
	}
	if cfgPath != "" {
		logger.Debug("using configuration", logging.FieldConfig, cfgPath)
	}

	p := cfg.Parser()
	if cmd.Flags().Changed("max-depth") {
		if flags.maxDepth < 0 {
			return nil, &usageError{errors.New("--max-depth must not be negative")}
		}
		p.MaxNestingDepth = flags.maxDepth
	}
	if cmd.Flags().Changed("max-size") {
		p.MaxDocumentSize = flags.maxSize
	}
	return p, nil
}

// parseInput parses in, logging statistics and limit failures.
func parseInput(cmd *cobra.Command, p *macaroni.Parser, in *input) (*macaroni.Document, error) {
	logger := logging.FromContext(cmd.Context())
	start := time.Now()
	doc, err := p.Parse(in.source)
	if err != nil {
		var limitErr *macaroni.LimitError
		if errors.As(err, &limitErr) {
			logger.Warn("document exceeds limit",
				logging.FieldPath, in.name(),
				logging.FieldLimit, limitErr.Limit,
				logging.FieldMax, limitErr.Max,
				logging.FieldOffset, limitErr.Offset,
			)
		}
		return nil, fmt.Errorf("%s: %w", in.name(), err)
	}
	logger.Debug("parsed document",
		logging.FieldPath, in.name(),
		logging.FieldBytes, len(in.source),
		logging.FieldBlocks, doc.BlockCount(),
		logging.FieldInlines, doc.InlineCount(),
		logging.FieldDuration, time.Since(start),
	)
	return doc, nil
}

// loadDocument reads, configures, and parses the command's input.
func loadDocument(cmd *cobra.Command, flags *globalFlags, args []string) (*macaroni.Document, error) {
	in, err := readInput(cmd, args)
	if err != nil {
		return nil, err
	}
	p, err := newParser(cmd, flags, in)
	if err != nil {
		return nil, err
	}
	return parseInput(cmd, p, in)
}
