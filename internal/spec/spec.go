// Copyright 2023 Ross Light
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

// Package spec provides access to the conformance examples,
// Markdown inputs paired with their expected tree dumps
// in the format written by package treedump,
// and to the examples from the CommonMark specification.
package spec

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

// Example is a single example.
// Conformance examples set Tree
// and CommonMark specification examples set HTML.
type Example struct {
	Markdown string
	Tree     string
	HTML     string
	Example  int
	Section  string
}

//go:embed examples.json
var exampleData []byte

// Load returns the conformance examples.
func Load() ([]Example, error) {
	var testsuite []Example
	if err := json.Unmarshal(exampleData, &testsuite); err != nil {
		return nil, fmt.Errorf("load conformance examples: %w", err)
	}
	return testsuite, nil
}

//go:embed spec-0.31.2.json
var commonMarkData []byte

// LoadCommonMark returns the examples from the CommonMark specification.
func LoadCommonMark() ([]Example, error) {
	var testsuite []Example
	if err := json.Unmarshal(commonMarkData, &testsuite); err != nil {
		return nil, fmt.Errorf("load commonmark examples: %w", err)
	}
	return testsuite, nil
}

// Sections returns the distinct section names of the examples
// in order of first appearance.
func Sections(examples []Example) []string {
	var sections []string
	seen := make(map[string]bool)
	for _, ex := range examples {
		if !seen[ex.Section] {
			seen[ex.Section] = true
			sections = append(sections, ex.Section)
		}
	}
	return sections
}
