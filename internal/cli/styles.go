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
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"zombiezen.com/go/macaroni"
)

// treeStyles colors node kinds in tree output.
type treeStyles struct {
	container lipgloss.Style
	leaf      lipgloss.Style
	inline    lipgloss.Style
}

// blockKindNames is the set of block kind names.
var blockKindNames = func() map[string]macaroni.BlockKind {
	m := make(map[string]macaroni.BlockKind)
	for k := macaroni.RootKind; k <= macaroni.FootnoteDefinitionKind; k++ {
		m[k.String()] = k
	}
	return m
}()

func newTreeStyles(w io.Writer) *treeStyles {
	r := lipgloss.NewRenderer(w)
	return &treeStyles{
		container: r.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		leaf:      r.NewStyle().Foreground(lipgloss.Color("10")),
		inline:    r.NewStyle().Foreground(lipgloss.Color("13")),
	}
}

// render styles a node kind name.
func (s *treeStyles) render(kind string) string {
	k, isBlock := blockKindNames[kind]
	switch {
	case !isBlock:
		return s.inline.Render(kind)
	case k.IsContainer():
		return s.container.Render(kind)
	default:
		return s.leaf.Render(kind)
	}
}

// isColorEnabled determines if color should be enabled based on mode and writer.
// Mode values: "auto" (default), "always", "never".
// In auto mode, color is enabled only if the writer is a terminal
// and NO_COLOR is not set.
func isColorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := w.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}
