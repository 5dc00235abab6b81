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

// Package config loads the macaroni command's YAML configuration file.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
	"zombiezen.com/go/macaroni"
	"zombiezen.com/go/macaroni/internal/logging"
)

// FileName is the name of the configuration file
// searched for by [Find].
const FileName = ".macaroni.yaml"

// ErrInvalid is returned by [Load] and [Config.Validate]
// when a configuration file is malformed.
var ErrInvalid = errors.New("invalid configuration")

// Config is the contents of a configuration file.
type Config struct {
	Limits     Limits     `yaml:"limits"`
	Extensions Extensions `yaml:"extensions"`
	Citations  Citations  `yaml:"citations"`
	Log        Log        `yaml:"log"`
}

// Limits bounds the work done for a single document.
// Zero values select the parser defaults.
type Limits struct {
	MaxNestingDepth int `yaml:"maxNestingDepth"`
	// MaxDocumentSize is in bytes. A negative value disables the limit.
	MaxDocumentSize int `yaml:"maxDocumentSize"`
}

// Extensions toggles the syntax extensions beyond CommonMark.
type Extensions struct {
	Footnotes     bool `yaml:"footnotes"`
	Citations     bool `yaml:"citations"`
	Strikethrough bool `yaml:"strikethrough"`
}

// Citations configures citation recognition.
type Citations struct {
	// Keys, if not empty, is the set of citation keys to recognize.
	// Other "@key" text is left as plain text.
	Keys []string `yaml:"keys"`
}

// Log configures diagnostic output.
type Log struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Extensions: Extensions{
			Footnotes:     true,
			Citations:     true,
			Strikethrough: true,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads the configuration file at path.
// Settings missing from the file keep their [Default] values.
func Load(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	logging.FromContext(ctx).Debug("loaded configuration", logging.FieldConfig, path)
	return cfg, nil
}

// Decode reads a configuration from YAML.
// Unknown fields are an error.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports whether the configuration's values are in range.
func (cfg *Config) Validate() error {
	var errs []error
	if cfg.Limits.MaxNestingDepth < 0 {
		errs = append(errs, fmt.Errorf("limits.maxNestingDepth must not be negative (got %d)", cfg.Limits.MaxNestingDepth))
	}
	for i, key := range cfg.Citations.Keys {
		if key == "" {
			errs = append(errs, fmt.Errorf("citations.keys[%d] is empty", i))
		}
	}
	if cfg.Log.Level != "" {
		if _, ok := logging.ParseLevel(cfg.Log.Level); !ok {
			errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, or error", cfg.Log.Level))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Parser returns a parser configured by cfg.
func (cfg *Config) Parser() *macaroni.Parser {
	p := &macaroni.Parser{
		MaxNestingDepth:      cfg.Limits.MaxNestingDepth,
		MaxDocumentSize:      cfg.Limits.MaxDocumentSize,
		DisableFootnotes:     !cfg.Extensions.Footnotes,
		DisableCitations:     !cfg.Extensions.Citations,
		DisableStrikethrough: !cfg.Extensions.Strikethrough,
	}
	if len(cfg.Citations.Keys) > 0 {
		p.CitationMatcher = macaroni.NewCitationKeySet(cfg.Citations.Keys...)
	}
	return p
}
