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

package macaroni

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"zombiezen.com/go/macaroni/internal/spec"
)

// TestBlockStructureMatchesGoldmark compares the block tree shape
// against another CommonMark implementation.
func TestBlockStructureMatchesGoldmark(t *testing.T) {
	inputs := []string{
		"# A\n\nPara\ntwo\n\n---\n",
		"> quote\n> - a\n> - b\n",
		"```go\nx\n```\n\n    indented\n",
		"<div>\nhi\n</div>\n\ntext\n",
		"Title\n=====\n\n* a\n\n  b\n* c\n",
		"[x]: /u\n\n[x]\n",
		"> lazy\ncontinuation\n\n1. one\n2. two\n",
		"- a\n  > b\n\n  c\n- d\n",
		"***\n___\n\n## Closed ##\n",
	}
	md := goldmark.New()
	for _, input := range inputs {
		if diff := diffBlockStructure(md, &Parser{}, input); diff != "" {
			t.Errorf("block structure of %q (-goldmark +macaroni):\n%s", input, diff)
		}
	}
}

func TestCommonMarkBlockStructureMatchesGoldmark(t *testing.T) {
	examples, err := spec.LoadCommonMark()
	if err != nil {
		t.Fatal(err)
	}
	md := goldmark.New()
	for _, ex := range examples {
		if diff := diffBlockStructure(md, commonMarkParser, ex.Markdown); diff != "" {
			t.Errorf("block structure of example %d (%s) %q (-goldmark +macaroni):\n%s",
				ex.Example, ex.Section, ex.Markdown, diff)
		}
	}
}

// diffBlockStructure parses input with both p and md
// and returns a diff of the pre-order block shapes.
func diffBlockStructure(md goldmark.Markdown, p *Parser, input string) string {
	doc, err := p.Parse([]byte(input))
	if err != nil {
		return fmt.Sprintf("parse error: %v", err)
	}
	var got []string
	Walk(doc.Root().AsNode(), &WalkOptions{
		BlocksOnly: true,
		Pre: func(c *Cursor) bool {
			got = append(got, blockShapeLine(c.Depth(), c.Node().Block().Kind()))
			return true
		},
	})

	gmDoc := md.Parser().Parse(text.NewReader([]byte(input)))
	var want []string
	depth := 0
	err = ast.Walk(gmDoc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !isGoldmarkBlock(n) {
			return ast.WalkSkipChildren, nil
		}
		if !entering {
			depth--
			return ast.WalkContinue, nil
		}
		want = append(want, goldmarkShapeLine(depth, n.Kind()))
		depth++
		return ast.WalkContinue, nil
	})
	if err != nil {
		return fmt.Sprintf("goldmark walk: %v", err)
	}
	return cmp.Diff(want, got)
}

// isGoldmarkBlock reports whether n is a block that has a counterpart in
// a [Document]. Goldmark leaves an empty text block in place of a paragraph
// that held only link reference definitions.
func isGoldmarkBlock(n ast.Node) bool {
	switch {
	case n.Type() != ast.TypeBlock && n.Type() != ast.TypeDocument:
		return false
	case n.Kind() == ast.KindTextBlock && n.Lines().Len() == 0 && !n.HasChildren():
		return false
	default:
		return true
	}
}

func blockShapeLine(depth int, kind BlockKind) string {
	name := kind.String()
	switch kind {
	case ATXHeadingKind, SetextHeadingKind:
		name = "heading"
	}
	return fmt.Sprintf("%s%s", strings.Repeat("  ", depth), name)
}

func goldmarkShapeLine(depth int, kind ast.NodeKind) string {
	var name string
	switch kind {
	case ast.KindDocument:
		name = "root"
	case ast.KindParagraph, ast.KindTextBlock:
		name = "paragraph"
	case ast.KindHeading:
		name = "heading"
	case ast.KindBlockquote:
		name = "blockQuote"
	case ast.KindList:
		name = "list"
	case ast.KindListItem:
		name = "listItem"
	case ast.KindFencedCodeBlock:
		name = "fencedCodeBlock"
	case ast.KindCodeBlock:
		name = "indentedCodeBlock"
	case ast.KindThematicBreak:
		name = "thematicBreak"
	case ast.KindHTMLBlock:
		name = "htmlBlock"
	default:
		name = kind.String()
	}
	return fmt.Sprintf("%s%s", strings.Repeat("  ", depth), name)
}
